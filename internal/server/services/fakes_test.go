package services

import (
	"context"
	"database/sql"
	"time"

	"github.com/dmitrijs2005/pairchat/internal/common"
	"github.com/dmitrijs2005/pairchat/internal/dbx"
	"github.com/dmitrijs2005/pairchat/internal/server/models"
	messagesrepo "github.com/dmitrijs2005/pairchat/internal/server/repositories/messages"
	refreshtokensrepo "github.com/dmitrijs2005/pairchat/internal/server/repositories/refreshtokens"
	usersrepo "github.com/dmitrijs2005/pairchat/internal/server/repositories/users"
)

type errBoom struct{}

func (errBoom) Error() string { return "boom" }

type fakeUsersRepo struct {
	createErr error
	created   []*models.User

	byEmail map[string]*models.User
	byID    map[string]*models.User
	getErr  error

	list    []*models.User
	listErr error

	updateErr  error
	updateArgs []string
}

func (f *fakeUsersRepo) Create(ctx context.Context, u *models.User) (*models.User, error) {
	if f.createErr != nil {
		return nil, f.createErr
	}
	u.ID = "u-new"
	u.CreatedAt = time.Now()
	f.created = append(f.created, u)
	return u, nil
}

func (f *fakeUsersRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byEmail[email]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	if u, ok := f.byID[id]; ok {
		return u, nil
	}
	return nil, common.ErrorNotFound
}

func (f *fakeUsersRepo) ListExcept(ctx context.Context, id string) ([]*models.User, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	out := make([]*models.User, 0, len(f.list))
	for _, u := range f.list {
		if u.ID != id {
			out = append(out, u)
		}
	}
	return out, nil
}

func (f *fakeUsersRepo) UpdateProfile(ctx context.Context, id, fullName, profilePic string) (*models.User, error) {
	if f.updateErr != nil {
		return nil, f.updateErr
	}
	f.updateArgs = []string{id, fullName, profilePic}
	return &models.User{ID: id, FullName: fullName, ProfilePic: profilePic}, nil
}

type fakeRefreshRepo struct {
	findOut *models.RefreshToken
	findErr error

	delErr  error
	deleted []string

	createErr error
	created   []string

	purged int64
}

func (f *fakeRefreshRepo) Create(ctx context.Context, userID string, token string, validity time.Duration) error {
	if f.createErr != nil {
		return f.createErr
	}
	f.created = append(f.created, userID)
	return nil
}

func (f *fakeRefreshRepo) Find(ctx context.Context, token string) (*models.RefreshToken, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	return f.findOut, nil
}

func (f *fakeRefreshRepo) Delete(ctx context.Context, token string) error {
	if f.delErr != nil {
		return f.delErr
	}
	f.deleted = append(f.deleted, token)
	return nil
}

func (f *fakeRefreshRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	return f.purged, nil
}

type fakeMessagesRepo struct {
	conv    []*models.Message
	convErr error
	asked   [][2]string
}

func (f *fakeMessagesRepo) Append(ctx context.Context, m *models.Message) (*models.Message, error) {
	return m, nil
}

func (f *fakeMessagesRepo) QueryConversation(ctx context.Context, a, b string) ([]*models.Message, error) {
	f.asked = append(f.asked, [2]string{a, b})
	if f.convErr != nil {
		return nil, f.convErr
	}
	return f.conv, nil
}

type fakeRepoManager struct {
	u *fakeUsersRepo
	r *fakeRefreshRepo
	m *fakeMessagesRepo
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error           { return nil }
func (m *fakeRepoManager) Users(db dbx.DBTX) usersrepo.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(db dbx.DBTX) refreshtokensrepo.Repository { return m.r }
func (m *fakeRepoManager) Messages(db dbx.DBTX) messagesrepo.Repository           { return m.m }

type fakeImages struct {
	ref     string
	err     error
	payload string
}

func (f *fakeImages) Store(ctx context.Context, ownerID, payload string) (string, error) {
	f.payload = payload
	if f.err != nil {
		return "", f.err
	}
	return f.ref, nil
}
