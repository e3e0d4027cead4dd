// Package services contains server-side business logic: user identity,
// access/refresh token issuance and rotation, and the account flows that
// transports call into.
package services

import (
	"context"
	"database/sql"
	"errors"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/cryptox"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/server/models"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/users"
)

// UserService owns user accounts and password verification.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewUserService constructs a UserService. db may be nil for managers that
// do not use SQL.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, logger logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		logger:      logger.With("module", "services.users"),
	}
}

func (s *UserService) repo() users.Repository {
	return s.repomanager.Users(s.db)
}

// CreateUser hashes password and stores a new user. A taken username or
// email yields common.ErrorAlreadyExists.
func (s *UserService) CreateUser(ctx context.Context, username, email, password string) (*models.User, error) {
	hash, err := cryptox.HashPassword(password)
	if err != nil {
		s.logger.Error(ctx, "password hashing failed", "error", err)
		return nil, common.ErrorInternal
	}

	u, err := s.repo().Create(ctx, &models.User{UserName: username, Email: email, PasswordHash: hash})
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil, err
		}
		s.logger.Error(ctx, "error creating user", "error", err)
		return nil, common.ErrorInternal
	}

	s.logger.Info(ctx, "user created", "user_id", u.ID)
	return u, nil
}

// VerifyCredentials returns the user when password matches. Unknown users
// and wrong passwords both yield common.ErrInvalidCredentials.
func (s *UserService) VerifyCredentials(ctx context.Context, username, password string) (*models.User, error) {
	u, err := s.repo().GetUserByLogin(ctx, username)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			cryptox.BurnCompare(password)
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, common.ErrorInternal
	}

	if err := cryptox.CheckPassword(u.PasswordHash, password); err != nil {
		if errors.Is(err, cryptox.ErrPasswordMismatch) {
			return nil, common.ErrInvalidCredentials
		}
		s.logger.Error(ctx, "error checking password", "user_id", u.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}

func (s *UserService) FindByID(ctx context.Context, id string) (*models.User, error) {
	return s.find(ctx, s.repo().GetUserByID, id)
}

func (s *UserService) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.find(ctx, s.repo().GetUserByLogin, username)
}

func (s *UserService) find(ctx context.Context, get func(context.Context, string) (*models.User, error), key string) (*models.User, error) {
	u, err := get(ctx, key)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			return nil, err
		}
		s.logger.Error(ctx, "error loading user", "error", err)
		return nil, common.ErrorInternal
	}
	return u, nil
}
