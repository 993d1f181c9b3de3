package auth

import "errors"

var (
	// ErrNoCredential is returned when a credential-based refresh is needed
	// but the session has no credential configured.
	ErrNoCredential = errors.New("cannot refresh token: no credential configured")

	// ErrNoToken is returned by the token source when the session has no
	// token to hand out.
	ErrNoToken = errors.New("auth session has no token")
)
