package httpapi

import (
	"context"
	"net/http"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/server/delivery"
	"github.com/dmitrijs2005/pairchat/internal/server/models"
	"github.com/dmitrijs2005/pairchat/internal/server/services"
)

const (
	aliceID = "11111111-1111-1111-1111-111111111111"
	bobID   = "22222222-2222-2222-2222-222222222222"
	goodJWT = "good-token"
)

type fakeUsers struct {
	signupErr  error
	loginErr   error
	refreshErr error
	updateErr  error
	loggedOut  []string
	lastSignup services.SignupInput
	lastUpdate services.UpdateProfileInput
	users      map[string]*models.User
}

func newFakeUsers() *fakeUsers {
	return &fakeUsers{users: map[string]*models.User{
		aliceID: {ID: aliceID, FullName: "Alice", Email: "alice@example.com"},
		bobID:   {ID: bobID, FullName: "Bob", Email: "bob@example.com"},
	}}
}

func (f *fakeUsers) Signup(_ context.Context, in services.SignupInput) (*services.Session, error) {
	f.lastSignup = in
	if f.signupErr != nil {
		return nil, f.signupErr
	}
	return &services.Session{
		User:      &models.User{ID: aliceID, FullName: in.FullName, Email: in.Email},
		TokenPair: services.TokenPair{AccessToken: "a", RefreshToken: "r"},
	}, nil
}

func (f *fakeUsers) Login(_ context.Context, in services.LoginInput) (*services.Session, error) {
	if f.loginErr != nil {
		return nil, f.loginErr
	}
	return &services.Session{User: f.users[aliceID], TokenPair: services.TokenPair{AccessToken: "a", RefreshToken: "r"}}, nil
}

func (f *fakeUsers) RefreshToken(_ context.Context, token string) (*services.TokenPair, error) {
	if f.refreshErr != nil {
		return nil, f.refreshErr
	}
	return &services.TokenPair{AccessToken: "a2", RefreshToken: token + "-rotated"}, nil
}

func (f *fakeUsers) Logout(_ context.Context, token string) error {
	f.loggedOut = append(f.loggedOut, token)
	return nil
}

func (f *fakeUsers) Profile(_ context.Context, userID string) (*models.User, error) {
	u, ok := f.users[userID]
	if !ok {
		return nil, common.ErrorUnauthorized
	}
	return u, nil
}

func (f *fakeUsers) UpdateProfile(_ context.Context, userID string, in services.UpdateProfileInput) (*models.User, error) {
	f.lastUpdate = in
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	u := *f.users[userID]
	if in.FullName != "" {
		u.FullName = in.FullName
	}
	return &u, nil
}

func (f *fakeUsers) UserIDFromAccessToken(token string) (string, error) {
	switch token {
	case goodJWT:
		return aliceID, nil
	case "expired":
		return "", common.ErrTokenExpired
	default:
		return "", common.ErrInvalidToken
	}
}

type fakeConversations struct {
	users   map[string]*models.User
	history []*models.Message
	queried [2]string
}

func (f *fakeConversations) Partners(_ context.Context, userID string) ([]*models.User, error) {
	out := []*models.User{}
	for id, u := range f.users {
		if id != userID {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeConversations) Peer(_ context.Context, peerID string) (*models.User, error) {
	u, ok := f.users[peerID]
	if !ok {
		return nil, common.ErrorNotFound
	}
	return u, nil
}

func (f *fakeConversations) History(ctx context.Context, userID, peerID string) ([]*models.Message, error) {
	if _, err := f.Peer(ctx, peerID); err != nil {
		return nil, err
	}
	f.queried = [2]string{userID, peerID}
	return f.history, nil
}

type fakeSender struct {
	drafts []delivery.Draft
	err    error
}

func (f *fakeSender) Send(_ context.Context, d delivery.Draft) (*models.Message, error) {
	f.drafts = append(f.drafts, d)
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{ID: "m1", SenderID: d.SenderID, ReceiverID: d.ReceiverID, Text: d.Text}, nil
}

type fakeLinker struct {
	keys []string
}

func (f *fakeLinker) PresignGet(_ context.Context, key string) (string, error) {
	if key == "" || key == "bad" {
		return "", common.ErrorNotFound
	}
	f.keys = append(f.keys, key)
	return "https://s3.example.com/pairchat/" + key + "?X-Amz-Signature=x", nil
}

// identityEcho stands in for the WebSocket handler.
type identityEcho struct{}

func (identityEcho) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, _ := UserIDFromContext(r.Context())
	_, _ = w.Write([]byte(id))
}
