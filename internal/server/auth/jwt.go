// Package auth mints and parses the short-lived HS256 access tokens.
package auth

import (
	"time"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/timex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims carried by an access token. Subject is the user's email.
type Claims struct {
	UserID string `json:"userId"`
	Email  string `json:"email"`
	jwt.RegisteredClaims
}

// Minted is a freshly signed access token with the values the caller
// needs to bind a refresh token to it.
type Minted struct {
	Token     string
	JTI       string
	ExpiresAt time.Time
}

type Codec struct {
	key      *SigningKey
	clock    timex.Clock
	validity time.Duration
	parser   *jwt.Parser
}

func NewCodec(key *SigningKey, clock timex.Clock, validity time.Duration) *Codec {
	return &Codec{
		key:      key,
		clock:    clock,
		validity: validity,
		parser: jwt.NewParser(
			jwt.WithValidMethods([]string{key.Method().Alg()}),
			jwt.WithoutClaimsValidation(),
		),
	}
}

func (c *Codec) Mint(userID, email string) (*Minted, error) {
	now := c.clock.Now()
	exp := now.Add(c.validity)
	jti := uuid.NewString()

	token, err := c.key.Sign(&Claims{
		UserID: userID,
		Email:  email,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   email,
			ID:        jti,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	})
	if err != nil {
		return nil, err
	}

	return &Minted{Token: token, JTI: jti, ExpiresAt: exp.Truncate(time.Second)}, nil
}

// Parse checks structure, algorithm and signature but not expiry. Any
// failure is reported as common.ErrInvalidToken.
func (c *Codec) Parse(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := c.parser.ParseWithClaims(tokenString, claims, c.key.keyFunc)
	if err != nil || !token.Valid {
		return nil, common.ErrInvalidToken
	}
	if claims.ExpiresAt == nil || claims.ID == "" || claims.UserID == "" {
		return nil, common.ErrInvalidToken
	}
	return claims, nil
}

// Validate is Parse plus an expiry check against the codec clock.
func (c *Codec) Validate(tokenString string) (*Claims, error) {
	claims, err := c.Parse(tokenString)
	if err != nil {
		return nil, err
	}
	if !c.clock.Now().Before(claims.ExpiresAt.Time) {
		return nil, common.ErrTokenExpired
	}
	return claims, nil
}
