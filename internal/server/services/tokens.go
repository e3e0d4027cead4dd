package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/server/auth"
	"github.com/dmitrijs2005/todoauth/internal/server/models"
	"github.com/dmitrijs2005/todoauth/internal/server/tokenstore"
	"github.com/dmitrijs2005/todoauth/internal/timex"
)

// TokenPair bundles a short-lived access token and a long-lived refresh token.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

// UserLookup resolves the owner of a refresh token during rotation.
type UserLookup interface {
	FindByID(ctx context.Context, id string) (*models.User, error)
}

// TokenService issues token pairs and rotates them. Rotation consumes the
// presented refresh token exactly once.
type TokenService struct {
	codec  *auth.Codec
	store  *tokenstore.Store
	users  UserLookup
	clock  timex.Clock
	grace  time.Duration
	logger logging.Logger
}

// NewTokenService wires a TokenService. grace is how long before the access
// token's expiry rotation becomes possible.
func NewTokenService(codec *auth.Codec, store *tokenstore.Store, users UserLookup, clock timex.Clock, grace time.Duration, logger logging.Logger) *TokenService {
	return &TokenService{
		codec:  codec,
		store:  store,
		users:  users,
		clock:  clock,
		grace:  grace,
		logger: logger.With("module", "services.tokens"),
	}
}

// rotation outcomes reported to callers as-is; anything else is internal.
var rotationErrors = []error{
	common.ErrInvalidToken,
	common.ErrTokenStillActive,
	common.ErrTokenNotFound,
	common.ErrTokenRevoked,
	common.ErrTokenAlreadyUsed,
	common.ErrRefreshTokenExpired,
	common.ErrTokenMismatch,
}

func (s *TokenService) classify(ctx context.Context, op string, err error) error {
	for _, known := range rotationErrors {
		if errors.Is(err, known) {
			return known
		}
	}
	s.logger.Error(ctx, op+" failed", "error", err)
	return common.ErrorInternal
}

func (s *TokenService) recoverInternal(ctx context.Context, op string, err *error) {
	if p := recover(); p != nil {
		s.logger.Error(ctx, op+" panicked", "panic", fmt.Sprint(p))
		*err = common.ErrorInternal
	}
}

// Issue mints an access token for user and persists a refresh token bound
// to it. Earlier refresh tokens of the same user stay valid.
func (s *TokenService) Issue(ctx context.Context, user *models.User) (pair *TokenPair, err error) {
	defer s.recoverInternal(ctx, "issue", &err)

	minted, err := s.codec.Mint(user.ID, user.Email)
	if err != nil {
		s.logger.Error(ctx, "mint access token failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	rt, err := s.store.Create(ctx, user.ID, minted.JTI)
	if err != nil {
		s.logger.Error(ctx, "create refresh token failed", "user_id", user.ID, "error", err)
		return nil, common.ErrorInternal
	}
	return &TokenPair{AccessToken: minted.Token, RefreshToken: rt.Token}, nil
}

// Rotate exchanges an (access, refresh) pair issued together for a new
// pair. The access token must be correctly signed and within the grace
// period of its expiry; the refresh token must be active, unexpired and
// bound to that access token. Consuming the old refresh token and creating
// the new one happen in one unit of work.
func (s *TokenService) Rotate(ctx context.Context, accessToken, refreshToken string) (pair *TokenPair, err error) {
	defer s.recoverInternal(ctx, "rotate", &err)

	claims, err := s.codec.Parse(accessToken)
	if err != nil {
		return nil, common.ErrInvalidToken
	}

	now := s.clock.Now()
	if now.Before(claims.ExpiresAt.Time.Add(-s.grace)) {
		return nil, common.ErrTokenStillActive
	}

	rec, err := s.store.FindByToken(ctx, refreshToken)
	if err != nil {
		return nil, s.classify(ctx, "rotate", err)
	}

	switch {
	case rec.IsRevoked:
		return nil, common.ErrTokenRevoked
	case rec.IsUsed:
		return nil, common.ErrTokenAlreadyUsed
	case rec.Expired(now):
		return nil, common.ErrRefreshTokenExpired
	case rec.JWTID != claims.ID || rec.UserID != claims.UserID:
		return nil, common.ErrTokenMismatch
	}

	user, err := s.users.FindByID(ctx, rec.UserID)
	if err != nil {
		return nil, s.classify(ctx, "rotate", fmt.Errorf("load user: %w", err))
	}
	minted, err := s.codec.Mint(user.ID, user.Email)
	if err != nil {
		return nil, s.classify(ctx, "rotate", fmt.Errorf("mint access token: %w", err))
	}

	err = s.store.WithTx(ctx, func(tx *tokenstore.Store) error {
		if err := tx.MarkUsed(ctx, rec); err != nil {
			return err
		}
		next, err := tx.Create(ctx, user.ID, minted.JTI)
		if err != nil {
			return fmt.Errorf("create refresh token: %w", err)
		}
		pair = &TokenPair{AccessToken: minted.Token, RefreshToken: next.Token}
		return nil
	})
	if err != nil {
		return nil, s.classify(ctx, "rotate", err)
	}

	s.logger.Info(ctx, "refresh token rotated", "user_id", rec.UserID, "token_id", rec.ID)
	return pair, nil
}

// Revoke marks refreshToken revoked so it can never be redeemed.
func (s *TokenService) Revoke(ctx context.Context, refreshToken string) (err error) {
	defer s.recoverInternal(ctx, "revoke", &err)

	if err := s.store.Revoke(ctx, refreshToken); err != nil {
		return s.classify(ctx, "revoke", err)
	}
	return nil
}
