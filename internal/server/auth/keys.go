package auth

import (
	"errors"
	"fmt"

	"github.com/golang-jwt/jwt/v5"
)

var ErrEmptySecret = errors.New("signing secret is empty")

// SigningKey holds the HMAC secret shared by minting and verification.
// The secret is copied on construction and never changes afterwards.
type SigningKey struct {
	secret []byte
}

func NewSigningKey(secret []byte) (*SigningKey, error) {
	if len(secret) == 0 {
		return nil, ErrEmptySecret
	}
	s := make([]byte, len(secret))
	copy(s, secret)
	return &SigningKey{secret: s}, nil
}

// Method is the only algorithm tokens are signed and accepted with.
func (k *SigningKey) Method() jwt.SigningMethod {
	return jwt.SigningMethodHS256
}

// Sign serialises claims into a compact HS256 JWT.
func (k *SigningKey) Sign(claims jwt.Claims) (string, error) {
	return jwt.NewWithClaims(k.Method(), claims).SignedString(k.secret)
}

// Verify checks sig against signingString (header.payload).
func (k *SigningKey) Verify(signingString string, sig []byte) error {
	return k.Method().Verify(signingString, sig, k.secret)
}

func (k *SigningKey) keyFunc(t *jwt.Token) (any, error) {
	if t.Method.Alg() != k.Method().Alg() {
		return nil, fmt.Errorf("unexpected signing algorithm: %s", t.Method.Alg())
	}
	return k.secret, nil
}
