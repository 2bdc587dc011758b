package lti

import (
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func signToken(t *testing.T, secret string, claims jwt.MapClaims) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(secret))
	require.NoError(t, err)
	return signed
}

func baseClaims() jwt.MapClaims {
	return jwt.MapClaims{
		"sub": "lms-user-42",
		"iss": "https://lms.example.edu",
		"aud": "roleplay-trainer",
		"exp": time.Now().Add(time.Hour).Unix(),
	}
}

func TestValidateTokenAcceptsValidToken(t *testing.T) {
	signed := signToken(t, "secret", baseClaims())

	claims, err := ValidateToken(signed, "secret")
	require.NoError(t, err)
	assert.Equal(t, "lms-user-42", claims["sub"])
}

func TestValidateTokenRejectsWrongSecret(t *testing.T) {
	signed := signToken(t, "secret", baseClaims())

	_, err := ValidateToken(signed, "other-secret")
	assert.ErrorIs(t, err, ErrInvalidLaunch)
}

func TestValidateTokenRejectsMissingRequiredClaims(t *testing.T) {
	for _, missing := range []string{"sub", "iss", "aud"} {
		claims := baseClaims()
		delete(claims, missing)
		signed := signToken(t, "secret", claims)

		_, err := ValidateToken(signed, "secret")
		assert.ErrorIsf(t, err, ErrInvalidLaunch, "token without %s should be rejected", missing)
	}
}

func TestValidateTokenRejectsEmptyRequiredClaims(t *testing.T) {
	claims := baseClaims()
	claims["sub"] = ""
	signed := signToken(t, "secret", claims)

	_, err := ValidateToken(signed, "secret")
	assert.ErrorIs(t, err, ErrInvalidLaunch)
}

func TestValidateTokenRejectsExpiredToken(t *testing.T) {
	claims := baseClaims()
	claims["exp"] = time.Now().Add(-time.Hour).Unix()
	signed := signToken(t, "secret", claims)

	_, err := ValidateToken(signed, "secret")
	assert.ErrorIs(t, err, ErrInvalidLaunch)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	_, err := ValidateToken("not-a-token", "secret")
	assert.ErrorIs(t, err, ErrInvalidLaunch)
}
