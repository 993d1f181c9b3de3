package oauth2

import "encoding/base64"

const (
	authorizationHeader = "Authorization"
	bearerPrefix        = "Bearer "
	basicPrefix         = "Basic "
)

// AuthHeaders returns the Authorization header for a bearer token, or an
// empty map when no token is set.
func AuthHeaders(token string) map[string]string {
	if token == "" {
		return map[string]string{}
	}
	return map[string]string{authorizationHeader: bearerPrefix + token}
}

// BasicAuthHeaders returns the Authorization header for a base64-encoded
// client credential, or an empty map when no credential is set.
func BasicAuthHeaders(credential string) map[string]string {
	if credential == "" {
		return map[string]string{}
	}
	encoded := base64.StdEncoding.EncodeToString([]byte(credential))
	return map[string]string{authorizationHeader: basicPrefix + encoded}
}
