// Package tokenstore issues and tracks opaque refresh tokens on top of a
// refreshtokens.Repository.
package tokenstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/server/models"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/refreshtokens"
	"github.com/dmitrijs2005/todoauth/internal/timex"
	"github.com/google/uuid"
)

// randomPartLen characters from common.TokenAlphabet precede the UUID
// suffix of every refresh token.
const randomPartLen = 35

// TxRunner runs fn against a repository whose writes commit together.
type TxRunner func(ctx context.Context, fn func(refreshtokens.Repository) error) error

// Direct is a TxRunner for backends whose single operations are already
// atomic and that have no multi-statement transaction.
func Direct(repo refreshtokens.Repository) TxRunner {
	return func(_ context.Context, fn func(refreshtokens.Repository) error) error {
		return fn(repo)
	}
}

type Store struct {
	repo   refreshtokens.Repository
	clock  timex.Clock
	months int
	tx     TxRunner
}

// New builds a Store. When tx is nil, WithTx falls back to Direct(repo).
func New(repo refreshtokens.Repository, clock timex.Clock, validityMonths int, tx TxRunner) *Store {
	if tx == nil {
		tx = Direct(repo)
	}
	return &Store{repo: repo, clock: clock, months: validityMonths, tx: tx}
}

// NewToken returns a fresh opaque token string.
func NewToken() (string, error) {
	prefix, err := common.MakeRandString(randomPartLen, common.TokenAlphabet)
	if err != nil {
		return "", err
	}
	return prefix + uuid.NewString(), nil
}

// Create persists a new active refresh token for userID bound to jti.
func (s *Store) Create(ctx context.Context, userID, jti string) (*models.RefreshToken, error) {
	token, err := NewToken()
	if err != nil {
		return nil, fmt.Errorf("token generation error: %w", err)
	}

	now := s.clock.Now()
	return s.repo.Create(ctx, &models.RefreshToken{
		UserID:    userID,
		Token:     token,
		JWTID:     jti,
		CreatedAt: now,
		ExpiresAt: now.AddDate(0, s.months, 0),
	})
}

func (s *Store) FindByToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	t, err := s.repo.Find(ctx, token)
	if errors.Is(err, common.ErrorNotFound) {
		return nil, common.ErrTokenNotFound
	}
	return t, err
}

// MarkUsed consumes t. Losing a race to another caller yields
// common.ErrTokenAlreadyUsed.
func (s *Store) MarkUsed(ctx context.Context, t *models.RefreshToken) error {
	err := s.repo.MarkUsed(ctx, t)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrTokenNotFound
	}
	return err
}

func (s *Store) Revoke(ctx context.Context, token string) error {
	err := s.repo.Revoke(ctx, token)
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrTokenNotFound
	}
	return err
}

// WithTx runs fn with a Store whose repository writes commit together.
func (s *Store) WithTx(ctx context.Context, fn func(*Store) error) error {
	return s.tx(ctx, func(repo refreshtokens.Repository) error {
		return fn(&Store{repo: repo, clock: s.clock, months: s.months, tx: Direct(repo)})
	})
}
