package auth

import (
	"encoding/base64"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/todoauth/internal/common"
	"github.com/dmitrijs2005/todoauth/internal/timex"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)

func newTestCodec(t *testing.T, secret string) (*Codec, *timex.FixedClock) {
	t.Helper()
	key, err := NewSigningKey([]byte(secret))
	require.NoError(t, err)
	clock := &timex.FixedClock{T: testNow}
	return NewCodec(key, clock, 7*24*time.Hour), clock
}

func TestMintAndParse(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")

	m, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)
	assert.NotEmpty(t, m.JTI)
	assert.Equal(t, testNow.Add(7*24*time.Hour), m.ExpiresAt)

	claims, err := c.Parse(m.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
	assert.Equal(t, "a@x.com", claims.Email)
	assert.Equal(t, "a@x.com", claims.Subject)
	assert.Equal(t, m.JTI, claims.ID)
	assert.True(t, claims.IssuedAt.Time.Equal(testNow))
	assert.True(t, claims.ExpiresAt.Time.Equal(m.ExpiresAt))
}

func TestMint_ClaimNamesAndHeader(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")
	m, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)

	parts := strings.Split(m.Token, ".")
	require.Len(t, parts, 3)

	var header map[string]any
	raw, err := base64.RawURLEncoding.DecodeString(parts[0])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &header))
	assert.Equal(t, "HS256", header["alg"])

	var payload map[string]any
	raw, err = base64.RawURLEncoding.DecodeString(parts[1])
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &payload))
	for _, k := range []string{"userId", "email", "sub", "jti", "iat", "exp"} {
		assert.Contains(t, payload, k)
	}
}

func TestMint_UniqueJTI(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")
	a, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)
	b, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)
	assert.NotEqual(t, a.JTI, b.JTI)
	assert.NotEqual(t, a.Token, b.Token)
}

func TestParse_IgnoresExpiry(t *testing.T) {
	c, clock := newTestCodec(t, "super-secret")
	m, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)

	clock.Advance(30 * 24 * time.Hour)

	_, err = c.Parse(m.Token)
	require.NoError(t, err)

	_, err = c.Validate(m.Token)
	assert.ErrorIs(t, err, common.ErrTokenExpired)
}

func TestValidate_Live(t *testing.T) {
	c, clock := newTestCodec(t, "super-secret")
	m, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)

	clock.Advance(time.Hour)
	claims, err := c.Validate(m.Token)
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestParse_TamperedSignature(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")
	m, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)

	i := len(m.Token) - 5
	repl := byte('A')
	if m.Token[i] == 'A' {
		repl = 'B'
	}
	tampered := m.Token[:i] + string(repl) + m.Token[i+1:]

	_, err = c.Parse(tampered)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_TamperedPayload(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")
	m, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)

	parts := strings.Split(m.Token, ".")
	forged := base64.RawURLEncoding.EncodeToString([]byte(`{"userId":"admin","email":"a@x.com","sub":"a@x.com","jti":"x","exp":9999999999}`))
	_, err = c.Parse(parts[0] + "." + forged + "." + parts[2])
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_WrongSecret(t *testing.T) {
	minter, _ := newTestCodec(t, "right-secret")
	parser, _ := newTestCodec(t, "wrong-secret")

	m, err := minter.Mint("u1", "a@x.com")
	require.NoError(t, err)

	_, err = parser.Parse(m.Token)
	assert.ErrorIs(t, err, common.ErrInvalidToken)
}

func TestParse_AlgorithmSubstitution(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")

	claims := &Claims{
		UserID: "u1",
		Email:  "a@x.com",
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   "a@x.com",
			ID:        "jti-1",
			IssuedAt:  jwt.NewNumericDate(testNow),
			ExpiresAt: jwt.NewNumericDate(testNow.Add(time.Hour)),
		},
	}

	hs384, err := jwt.NewWithClaims(jwt.SigningMethodHS384, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	hs512, err := jwt.NewWithClaims(jwt.SigningMethodHS512, claims).SignedString([]byte("super-secret"))
	require.NoError(t, err)
	none, err := jwt.NewWithClaims(jwt.SigningMethodNone, claims).SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	for name, tok := range map[string]string{"HS384": hs384, "HS512": hs512, "none": none} {
		t.Run(name, func(t *testing.T) {
			_, err := c.Parse(tok)
			assert.ErrorIs(t, err, common.ErrInvalidToken)
		})
	}
}

func TestParse_AlgNameIsCaseSensitive(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")

	m, err := c.Mint("u1", "a@x.com")
	require.NoError(t, err)
	parts := strings.Split(m.Token, ".")
	require.Len(t, parts, 3)

	resign := func(alg string) string {
		header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"` + alg + `","typ":"JWT"}`))
		signing := header + "." + parts[1]
		sig, err := jwt.SigningMethodHS256.Sign(signing, []byte("super-secret"))
		require.NoError(t, err)
		return signing + "." + base64.RawURLEncoding.EncodeToString(sig)
	}

	_, err = c.Parse(resign("hs256"))
	assert.ErrorIs(t, err, common.ErrInvalidToken)

	claims, err := c.Parse(resign("HS256"))
	require.NoError(t, err)
	assert.Equal(t, "u1", claims.UserID)
}

func TestParse_MissingClaims(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")
	key, err := NewSigningKey([]byte("super-secret"))
	require.NoError(t, err)

	noExp, err := key.Sign(&Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{ID: "j"}})
	require.NoError(t, err)
	noJTI, err := key.Sign(&Claims{UserID: "u1", RegisteredClaims: jwt.RegisteredClaims{ExpiresAt: jwt.NewNumericDate(testNow)}})
	require.NoError(t, err)

	for _, tok := range []string{noExp, noJTI} {
		_, err := c.Parse(tok)
		assert.ErrorIs(t, err, common.ErrInvalidToken)
	}
}

func TestParse_Malformed(t *testing.T) {
	c, _ := newTestCodec(t, "super-secret")
	for _, tok := range []string{"", "abc", "a.b.c", "a.b", "....."} {
		_, err := c.Parse(tok)
		assert.ErrorIs(t, err, common.ErrInvalidToken, "token %q", tok)
	}
}

func TestSigningKey(t *testing.T) {
	_, err := NewSigningKey(nil)
	assert.ErrorIs(t, err, ErrEmptySecret)

	secret := []byte("abc")
	key, err := NewSigningKey(secret)
	require.NoError(t, err)
	secret[0] = 'x'

	tok, err := key.Sign(jwt.MapClaims{"a": 1})
	require.NoError(t, err)

	parts := strings.Split(tok, ".")
	sig, err := base64.RawURLEncoding.DecodeString(parts[2])
	require.NoError(t, err)
	assert.NoError(t, key.Verify(parts[0]+"."+parts[1], sig))
	assert.Error(t, key.Verify(parts[0]+"."+parts[1]+"x", sig))
}
