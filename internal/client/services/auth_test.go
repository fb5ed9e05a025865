package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/client/client"
	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/dmitrijs2005/pairchat/internal/client/repositories/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLogin_PersistsSession(t *testing.T) {
	r := setupRepos(t)
	fc := &fakeClient{session: aliceSession()}
	svc := NewAuthService(fc, r.sessions, r.cache)
	ctx := context.Background()

	u, err := svc.Login(ctx, "alice@example.com", []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, "alice", u.ID)

	saved, err := r.sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "r1", saved.RefreshToken)
}

func TestLogin_Error(t *testing.T) {
	r := setupRepos(t)
	fc := &fakeClient{loginErr: client.ErrUnauthorized}
	svc := NewAuthService(fc, r.sessions, r.cache)

	_, err := svc.Login(context.Background(), "alice@example.com", []byte("nope"))
	assert.ErrorIs(t, err, client.ErrUnauthorized)

	_, err = r.sessions.Load(context.Background())
	assert.ErrorIs(t, err, session.ErrNoSession)
}

func TestSignup_SwitchingAccountDropsCache(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	require.NoError(t, r.sessions.Save(ctx, &models.Session{User: models.User{ID: "someone-else"}}))
	require.NoError(t, r.cache.Upsert(ctx, &models.Message{ID: "old", SenderID: "someone-else", ReceiverID: "x", Text: "t", CreatedAt: time.Now()}))

	svc := NewAuthService(&fakeClient{session: aliceSession()}, r.sessions, r.cache)
	u, err := svc.Signup(ctx, "Alice A", "alice@example.com", []byte("secret1"))
	require.NoError(t, err)
	assert.Equal(t, "Alice A", u.FullName)

	left, err := r.cache.Conversation(ctx, "someone-else", "x")
	require.NoError(t, err)
	assert.Empty(t, left)
}

func TestRestore(t *testing.T) {
	r := setupRepos(t)
	fc := &fakeClient{}
	svc := NewAuthService(fc, r.sessions, r.cache)
	ctx := context.Background()

	_, err := svc.Restore(ctx)
	assert.ErrorIs(t, err, session.ErrNoSession)

	require.NoError(t, r.sessions.Save(ctx, aliceSession()))
	u, err := svc.Restore(ctx)
	require.NoError(t, err)
	assert.Equal(t, "alice", u.ID)
	assert.Equal(t, "a1", fc.access)
	assert.Equal(t, "r1", fc.refresh)
}

func TestSaveTokens(t *testing.T) {
	r := setupRepos(t)
	ctx := context.Background()

	assert.ErrorIs(t, SaveTokens(ctx, r.sessions, "a", "r"), session.ErrNoSession)

	require.NoError(t, r.sessions.Save(ctx, aliceSession()))
	require.NoError(t, SaveTokens(ctx, r.sessions, "a2", "r2"))

	s, err := r.sessions.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "a2", s.AccessToken)
	assert.Equal(t, "r2", s.RefreshToken)
	assert.Equal(t, "alice", s.User.ID)
}

func TestLogout(t *testing.T) {
	tests := []struct {
		name      string
		remoteErr error
		wantErr   bool
	}{
		{"ok", nil, false},
		{"server down still clears", client.ErrUnavailable, false},
		{"other remote error surfaces", &client.APIError{Status: 500, Message: "boom"}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := setupRepos(t)
			ctx := context.Background()
			require.NoError(t, r.sessions.Save(ctx, aliceSession()))

			svc := NewAuthService(&fakeClient{logoutErr: tt.remoteErr}, r.sessions, r.cache)
			err := svc.Logout(ctx)

			if tt.wantErr {
				var apiErr *client.APIError
				assert.ErrorAs(t, err, &apiErr)
			} else {
				assert.NoError(t, err)
			}

			_, lerr := r.sessions.Load(ctx)
			assert.ErrorIs(t, lerr, session.ErrNoSession)
		})
	}
}
