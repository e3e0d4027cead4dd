package services

import (
	"context"
	"database/sql"
	"errors"
	"testing"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/dbx"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/server/models"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/users"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeUsersRepo struct {
	createErr error
	getErr    error
}

func (f *fakeUsersRepo) Create(context.Context, *models.User) (*models.User, error) {
	return nil, f.createErr
}

func (f *fakeUsersRepo) GetUserByLogin(context.Context, string) (*models.User, error) {
	return nil, f.getErr
}

func (f *fakeUsersRepo) GetUserByID(context.Context, string) (*models.User, error) {
	return nil, f.getErr
}

type fakeRepoManager struct {
	u users.Repository
}

func (m *fakeRepoManager) RunMigrations(context.Context, *sql.DB) error    { return nil }
func (m *fakeRepoManager) Users(dbx.DBTX) users.Repository                 { return m.u }
func (m *fakeRepoManager) RefreshTokens(dbx.DBTX) refreshtokens.Repository { return nil }

func TestCreateUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u, err := f.users.CreateUser(ctx, "alice", "a@x.com", "password1")
	require.NoError(t, err)
	assert.NotEmpty(t, u.ID)
	assert.NotEqual(t, "password1", string(u.PasswordHash))

	_, err = f.users.CreateUser(ctx, "alice", "other@x.com", "password1")
	assert.ErrorIs(t, err, common.ErrorAlreadyExists)
}

func TestCreateUser_RepoFault(t *testing.T) {
	s := NewUserService(nil, &fakeRepoManager{u: &fakeUsersRepo{createErr: errors.New("db error: boom")}}, logging.Nop{})
	_, err := s.CreateUser(context.Background(), "alice", "a@x.com", "password1")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestVerifyCredentials(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createUser(t, "alice", "a@x.com")

	u, err := f.users.VerifyCredentials(ctx, "alice", "password1")
	require.NoError(t, err)
	assert.Equal(t, created.ID, u.ID)

	_, errWrong := f.users.VerifyCredentials(ctx, "alice", "nope")
	_, errUnknown := f.users.VerifyCredentials(ctx, "ghost", "password1")
	assert.ErrorIs(t, errWrong, common.ErrInvalidCredentials)
	assert.ErrorIs(t, errUnknown, common.ErrInvalidCredentials)
	assert.Equal(t, errWrong, errUnknown)
}

func TestVerifyCredentials_RepoFault(t *testing.T) {
	s := NewUserService(nil, &fakeRepoManager{u: &fakeUsersRepo{getErr: errors.New("db error: boom")}}, logging.Nop{})
	_, err := s.VerifyCredentials(context.Background(), "alice", "pw")
	assert.ErrorIs(t, err, common.ErrorInternal)
}

func TestFindUser(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	created := f.createUser(t, "alice", "a@x.com")

	byID, err := f.users.FindByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "alice", byID.UserName)

	byName, err := f.users.FindByUsername(ctx, "alice")
	require.NoError(t, err)
	assert.Equal(t, created.ID, byName.ID)

	_, err = f.users.FindByID(ctx, "missing")
	assert.ErrorIs(t, err, common.ErrorNotFound)

	s := NewUserService(nil, &fakeRepoManager{u: &fakeUsersRepo{getErr: errors.New("db error: boom")}}, logging.Nop{})
	_, err = s.FindByUsername(ctx, "alice")
	assert.ErrorIs(t, err, common.ErrorInternal)
}
