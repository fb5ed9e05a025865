package services

import (
	"context"
	"io"
	"path/filepath"
	"testing"

	"github.com/dmitrijs2005/pairchat/internal/client/client"
	"github.com/dmitrijs2005/pairchat/internal/client/models"
	"github.com/dmitrijs2005/pairchat/internal/client/repositories/messages"
	"github.com/dmitrijs2005/pairchat/internal/client/repositories/session"
	"github.com/stretchr/testify/require"
)

type fakeClient struct {
	session   *models.Session
	loginErr  error
	logoutErr error
	pingErr   error

	partners    []*models.User
	partnersErr error
	partnerHits int

	history    []*models.Message
	historyErr error

	sendErr   error
	lastImage string

	events []models.Event

	download    []byte
	downloadErr error
	downloaded  []string

	access, refresh string
}

func (f *fakeClient) Signup(_ context.Context, fullName, email string, _ []byte) (*models.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	s := *f.session
	s.User.FullName, s.User.Email = fullName, email
	return &s, nil
}

func (f *fakeClient) Login(_ context.Context, _ string, _ []byte) (*models.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	s := *f.session
	return &s, nil
}

func (f *fakeClient) Logout(context.Context) error { return f.logoutErr }

func (f *fakeClient) Check(context.Context) (*models.User, error) { return &f.session.User, nil }

func (f *fakeClient) Partners(context.Context) ([]*models.User, error) {
	f.partnerHits++
	return f.partners, f.partnersErr
}

func (f *fakeClient) History(context.Context, string) ([]*models.Message, error) {
	return f.history, f.historyErr
}

func (f *fakeClient) Send(_ context.Context, peerID, text, image string) (*models.Message, error) {
	if f.sendErr != nil {
		return nil, f.sendErr
	}
	f.lastImage = image
	return &models.Message{ID: "sent-" + text, SenderID: "alice", ReceiverID: peerID, Text: text}, nil
}

func (f *fakeClient) Listen(_ context.Context, handle func(models.Event)) error {
	for _, ev := range f.events {
		handle(ev)
	}
	return nil
}

func (f *fakeClient) Download(_ context.Context, ref string, w io.Writer) (string, error) {
	f.downloaded = append(f.downloaded, ref)
	if f.downloadErr != nil {
		return "", f.downloadErr
	}
	_, err := w.Write(f.download)
	return "application/octet-stream", err
}

func (f *fakeClient) Ping(context.Context) error { return f.pingErr }

func (f *fakeClient) SetTokens(access, refresh string) { f.access, f.refresh = access, refresh }

var _ client.Client = (*fakeClient)(nil)

type repos struct {
	sessions *session.SQLiteRepository
	cache    *messages.SQLiteRepository
}

func setupRepos(t *testing.T) repos {
	t.Helper()
	db, err := client.InitDatabase(context.Background(), filepath.Join(t.TempDir(), "cache.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return repos{sessions: session.NewSQLiteRepository(db), cache: messages.NewSQLiteRepository(db)}
}

func aliceSession() *models.Session {
	return &models.Session{
		User:         models.User{ID: "alice", FullName: "Alice", Email: "alice@example.com"},
		AccessToken:  "a1",
		RefreshToken: "r1",
	}
}
