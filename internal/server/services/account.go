package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/server/auth"
	"github.com/go-playground/validator/v10"
)

const (
	msgInvalidPayload     = "Invalid payload"
	msgInvalidCredentials = "Invalid username or password"
	msgInvalidToken       = "Invalid token"
	msgUserExists         = "Username or email is already taken"
	msgInternal           = "Internal server error"
)

type Status int

const (
	StatusOK Status = iota
	StatusBadRequest
	StatusInternal
)

type RegisterRequest struct {
	Username string `json:"username" validate:"required"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=6"`
}

type LoginRequest struct {
	Username string `json:"username" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type RefreshRequest struct {
	Token        string `json:"token" validate:"required"`
	RefreshToken string `json:"refreshToken" validate:"required"`
}

type LogoutRequest struct {
	RefreshToken string `json:"refreshToken" validate:"required"`
}

// AuthResult is the response body shared by all account operations.
type AuthResult struct {
	AccessToken  string   `json:"accessToken,omitempty"`
	RefreshToken string   `json:"refreshToken,omitempty"`
	Success      bool     `json:"success"`
	Errors       []string `json:"errors,omitempty"`
	Status       Status   `json:"-"`
}

func success(pair *TokenPair) *AuthResult {
	r := &AuthResult{Success: true, Status: StatusOK}
	if pair != nil {
		r.AccessToken = pair.AccessToken
		r.RefreshToken = pair.RefreshToken
	}
	return r
}

func failure(status Status, msgs ...string) *AuthResult {
	return &AuthResult{Success: false, Errors: msgs, Status: status}
}

// Identity is the authenticated caller as read from a valid access token.
type Identity struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
}

// AccountService implements the register, login, refresh and logout flows
// on top of UserService and TokenService. Callers only ever see the fixed
// messages above; the underlying reason is logged.
type AccountService struct {
	users    *UserService
	tokens   *TokenService
	codec    *auth.Codec
	validate *validator.Validate
	logger   logging.Logger
}

func NewAccountService(users *UserService, tokens *TokenService, codec *auth.Codec, logger logging.Logger) *AccountService {
	return &AccountService{
		users:    users,
		tokens:   tokens,
		codec:    codec,
		validate: validator.New(validator.WithRequiredStructEnabled()),
		logger:   logger.With("module", "services.account"),
	}
}

// check runs struct validation; failures wrap common.ErrInvalidPayload.
func (s *AccountService) check(ctx context.Context, req any) error {
	if err := s.validate.StructCtx(ctx, req); err != nil {
		s.logger.Debug(ctx, "payload rejected", "reason", err.Error())
		return fmt.Errorf("%w: %v", common.ErrInvalidPayload, err)
	}
	return nil
}

func (s *AccountService) Register(ctx context.Context, req RegisterRequest) *AuthResult {
	if err := s.check(ctx, req); err != nil {
		return failure(StatusBadRequest, msgInvalidPayload)
	}

	u, err := s.users.CreateUser(ctx, req.Username, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorAlreadyExists) {
			return failure(StatusBadRequest, msgUserExists)
		}
		return failure(StatusInternal, msgInternal)
	}

	pair, err := s.tokens.Issue(ctx, u)
	if err != nil {
		return failure(StatusInternal, msgInternal)
	}
	return success(pair)
}

func (s *AccountService) Login(ctx context.Context, req LoginRequest) *AuthResult {
	if err := s.check(ctx, req); err != nil {
		return failure(StatusBadRequest, msgInvalidPayload)
	}

	u, err := s.users.VerifyCredentials(ctx, req.Username, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrInvalidCredentials) {
			return failure(StatusBadRequest, msgInvalidCredentials)
		}
		return failure(StatusInternal, msgInternal)
	}

	pair, err := s.tokens.Issue(ctx, u)
	if err != nil {
		return failure(StatusInternal, msgInternal)
	}
	return success(pair)
}

func (s *AccountService) Refresh(ctx context.Context, req RefreshRequest) *AuthResult {
	if err := s.check(ctx, req); err != nil {
		return failure(StatusBadRequest, msgInvalidPayload)
	}

	pair, err := s.tokens.Rotate(ctx, req.Token, req.RefreshToken)
	if err != nil {
		s.logger.Info(ctx, "refresh rejected", "reason", err.Error())
		if errors.Is(err, common.ErrorInternal) {
			return failure(StatusInternal, msgInvalidToken)
		}
		return failure(StatusBadRequest, msgInvalidToken)
	}
	return success(pair)
}

func (s *AccountService) Logout(ctx context.Context, req LogoutRequest) *AuthResult {
	if err := s.check(ctx, req); err != nil {
		return failure(StatusBadRequest, msgInvalidPayload)
	}

	if err := s.tokens.Revoke(ctx, req.RefreshToken); err != nil {
		s.logger.Info(ctx, "logout rejected", "reason", err.Error())
		if errors.Is(err, common.ErrorInternal) {
			return failure(StatusInternal, msgInvalidToken)
		}
		return failure(StatusBadRequest, msgInvalidToken)
	}
	return success(nil)
}

// Authenticate validates a bearer access token, including its expiry.
// Errors match both common.ErrorUnauthorized and the codec's reason.
func (s *AccountService) Authenticate(accessToken string) (*Identity, error) {
	claims, err := s.codec.Validate(accessToken)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrorUnauthorized, err)
	}
	return &Identity{UserID: claims.UserID, Email: claims.Email}, nil
}
