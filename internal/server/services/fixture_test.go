package services

import (
	"context"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/cryptox"
	"github.com/dmitrijs2005/todoauth/internal/logging"
	"github.com/dmitrijs2005/todoauth/internal/server/auth"
	"github.com/dmitrijs2005/todoauth/internal/server/models"
	"github.com/dmitrijs2005/todoauth/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/todoauth/internal/server/tokenstore"
	"github.com/dmitrijs2005/todoauth/internal/timex"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func init() {
	cryptox.Cost = bcrypt.MinCost
}

const (
	accessValidity = 7 * 24 * time.Hour
	grace          = 5 * time.Minute
)

var fixtureStart = time.Date(2024, 2, 1, 8, 0, 0, 0, time.UTC)

type fixture struct {
	clock   *timex.FixedClock
	rm      repomanager.RepositoryManager
	codec   *auth.Codec
	store   *tokenstore.Store
	users   *UserService
	tokens  *TokenService
	account *AccountService
}

func newFixture(t *testing.T) *fixture {
	return newFixtureWith(t, repomanager.NewMemoryRepositoryManager())
}

func newFixtureWith(t *testing.T, rm repomanager.RepositoryManager) *fixture {
	t.Helper()

	key, err := auth.NewSigningKey([]byte("test-secret"))
	require.NoError(t, err)

	clock := &timex.FixedClock{T: fixtureStart}
	codec := auth.NewCodec(key, clock, accessValidity)
	store := tokenstore.New(rm.RefreshTokens(nil), clock, 6, nil)
	log := logging.Nop{}

	users := NewUserService(nil, rm, log)
	tokens := NewTokenService(codec, store, users, clock, grace, log)

	return &fixture{
		clock:   clock,
		rm:      rm,
		codec:   codec,
		store:   store,
		users:   users,
		tokens:  tokens,
		account: NewAccountService(users, tokens, codec, log),
	}
}

func (f *fixture) createUser(t *testing.T, name, email string) *models.User {
	t.Helper()
	u, err := f.users.CreateUser(context.Background(), name, email, "password1")
	require.NoError(t, err)
	return u
}

// nearExpiry moves the clock into the rotation window of a freshly issued
// access token.
func (f *fixture) nearExpiry() {
	f.clock.Advance(accessValidity - time.Minute)
}
