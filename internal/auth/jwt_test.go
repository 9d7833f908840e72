package auth_test

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/guichethq/guichet/internal/auth"
)

func newTestJWTService() *auth.JWTService {
	return auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://api.guichet.city",
		Audience:   "guichet-api",
	})
}

func TestGenerateAccessToken(t *testing.T) {
	service := newTestJWTService()

	token, expiresAt, err := service.GenerateAccessToken("stf_clerk42")
	require.NoError(t, err)
	assert.NotEmpty(t, token)

	// Expiry should be roughly 8 hours out
	expectedExpiry := time.Now().Add(auth.AccessTokenExpiry)
	assert.WithinDuration(t, expectedExpiry, expiresAt, 5*time.Second)
}

func TestValidateAccessToken_Valid(t *testing.T) {
	service := newTestJWTService()

	token, _, err := service.GenerateAccessToken("stf_clerk42")
	require.NoError(t, err)

	staffID, err := service.ValidateAccessToken(token)
	require.NoError(t, err)
	assert.Equal(t, "stf_clerk42", staffID)
}

func TestValidateAccessToken_Malformed(t *testing.T) {
	service := newTestJWTService()

	tests := []string{
		"",
		"not-a-jwt",
		"a.b.c",
	}

	for _, token := range tests {
		_, err := service.ValidateAccessToken(token)
		assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
	}
}

func TestValidateAccessToken_WrongKey(t *testing.T) {
	service := newTestJWTService()
	other := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "a-different-signing-key",
		Issuer:     "https://api.guichet.city",
		Audience:   "guichet-api",
	})

	token, _, err := other.GenerateAccessToken("stf_clerk42")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestValidateAccessToken_WrongIssuer(t *testing.T) {
	service := newTestJWTService()
	other := auth.NewJWTService(auth.JWTConfig{
		SigningKey: "test-secret-key-for-testing-only",
		Issuer:     "https://evil.example",
		Audience:   "guichet-api",
	})

	token, _, err := other.GenerateAccessToken("stf_clerk42")
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(token)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}

func TestValidateAccessToken_Expired(t *testing.T) {
	service := newTestJWTService()

	// Hand-craft an expired token with the same key and claims shape.
	now := time.Now()
	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://api.guichet.city",
			Subject:   "stf_clerk42",
			Audience:  jwt.ClaimStrings{"guichet-api"},
			IssuedAt:  jwt.NewNumericDate(now.Add(-9 * time.Hour)),
			ExpiresAt: jwt.NewNumericDate(now.Add(-1 * time.Hour)),
		},
		StaffID: "stf_clerk42",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte("test-secret-key-for-testing-only"))
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, auth.ErrAccessTokenExpired)
}

func TestValidateAccessToken_RejectsNoneAlgorithm(t *testing.T) {
	service := newTestJWTService()

	claims := auth.Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "https://api.guichet.city",
			Audience:  jwt.ClaimStrings{"guichet-api"},
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		},
		StaffID: "stf_clerk42",
	}
	token := jwt.NewWithClaims(jwt.SigningMethodNone, claims)
	signed, err := token.SignedString(jwt.UnsafeAllowNoneSignatureType)
	require.NoError(t, err)

	_, err = service.ValidateAccessToken(signed)
	assert.ErrorIs(t, err, auth.ErrInvalidAccessToken)
}
