package lti

import (
	"fmt"

	"github.com/golang-jwt/jwt/v4"
)

// ValidateToken verifies an LTI 1.3-style id_token signed with the shared
// secret (HS256) and returns its claims. Expired tokens are rejected by the
// parser; tokens missing subject, issuer or audience are rejected here.
func ValidateToken(tokenString, secret string) (jwt.MapClaims, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidLaunch, err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("%w: token invalid", ErrInvalidLaunch)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("%w: unexpected claims payload", ErrInvalidLaunch)
	}

	for _, required := range []string{"sub", "iss", "aud"} {
		if claimEmpty(claims[required]) {
			return nil, fmt.Errorf("%w: missing %s claim", ErrInvalidLaunch, required)
		}
	}

	return claims, nil
}

func claimEmpty(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return true
	case string:
		return v == ""
	case []interface{}:
		return len(v) == 0
	}
	return false
}
