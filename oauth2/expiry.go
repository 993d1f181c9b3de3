package oauth2

import (
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// ExpiresAtMillis extracts the expiration instant from a JWT's exp claim as
// epoch milliseconds. It returns nil if the token is not a JWT, cannot be
// decoded, or carries no exp claim. Not every bearer token is a JWT, so none
// of these cases is an error.
func ExpiresAtMillis(token string) *int64 {
	if token == "" {
		return nil
	}
	if strings.Count(token, ".") != 2 {
		return nil
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return nil
	}

	millis := exp.UnixMilli()
	return &millis
}
