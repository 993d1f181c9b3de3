package oauth2

import "errors"

// Errors returned during request construction and response parsing.
var (
	ErrInvalidTokenType  = errors.New("invalid token type")
	ErrMissingCredential = errors.New("invalid credential: empty")
	ErrInvalidCredential = errors.New("invalid credential")
	ErrNotAnObject       = errors.New("cannot parse token response from non-object")
	ErrMissingField      = errors.New("missing required field")
)
