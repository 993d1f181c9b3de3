package oauth2

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// TokenResponse represents the response from an OAuth2 token request.
// This is the standard OAuth2 token endpoint response format as defined in
// RFC 6749, extended with the issued_token_type field from RFC 8693.
type TokenResponse struct {
	// AccessToken is the token used to access protected resources.
	// Usage: Include in Authorization header: "Bearer <access_token>"
	AccessToken string

	// TokenType indicates how to use the access token (typically "bearer").
	TokenType string

	// IssuedTokenType identifies the type of the issued token (RFC 8693).
	// Only present in token-exchange responses; becomes the subject token
	// type on the next exchange.
	IssuedTokenType *string

	// ExpiresInSeconds is the lifetime in seconds of the access token.
	// Nil when the server did not declare a lifetime.
	ExpiresInSeconds *int64

	// Scopes are the granted scope tokens. May be fewer than requested.
	Scopes []string
}

// wire form of a token response. Scope is the space-joined string.
type tokenResponseJSON struct {
	AccessToken     string  `json:"access_token"`
	TokenType       string  `json:"token_type"`
	IssuedTokenType *string `json:"issued_token_type,omitempty"`
	ExpiresIn       *int64  `json:"expires_in,omitempty"`
	Scope           string  `json:"scope,omitempty"`
}

// Validate checks that the response carries the fields required by RFC 6749.
func (r *TokenResponse) Validate() error {
	if r.AccessToken == "" {
		return fmt.Errorf("%w: access_token", ErrMissingField)
	}
	if r.TokenType == "" {
		return fmt.Errorf("%w: token_type", ErrMissingField)
	}
	return nil
}

// MarshalJSON writes the wire form. access_token and token_type are always
// present; issued_token_type, expires_in and scope only when set.
func (r TokenResponse) MarshalJSON() ([]byte, error) {
	if err := r.Validate(); err != nil {
		return nil, err
	}

	wire := tokenResponseJSON{
		AccessToken:     r.AccessToken,
		TokenType:       r.TokenType,
		IssuedTokenType: r.IssuedTokenType,
		ExpiresIn:       r.ExpiresInSeconds,
	}
	if len(r.Scopes) > 0 {
		wire.Scope = ToScope(r.Scopes)
	}

	return json.Marshal(wire)
}

// UnmarshalJSON parses the wire form. The top-level value must be a JSON
// object and must carry access_token and token_type.
func (r *TokenResponse) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return fmt.Errorf("%w: %s", ErrNotAnObject, string(data))
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}

	var wire tokenResponseJSON
	if err := json.Unmarshal(data, &wire); err != nil {
		return fmt.Errorf("parsing token response: %w", err)
	}
	if _, ok := fields["access_token"]; !ok {
		return fmt.Errorf("%w: access_token", ErrMissingField)
	}
	if _, ok := fields["token_type"]; !ok {
		return fmt.Errorf("%w: token_type", ErrMissingField)
	}

	r.AccessToken = wire.AccessToken
	r.TokenType = wire.TokenType
	r.IssuedTokenType = wire.IssuedTokenType
	r.ExpiresInSeconds = wire.ExpiresIn
	r.Scopes = nil
	if _, ok := fields["scope"]; ok {
		r.Scopes = ParseScope(wire.Scope)
	}

	return nil
}

// TokenResponseToJSON serializes a validated token response.
func TokenResponseToJSON(r *TokenResponse) (string, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// TokenResponseFromJSON parses and validates a token response. Any top-level
// value that is not a JSON object fails with ErrNotAnObject, including input
// the json package would reject before reaching UnmarshalJSON.
func TokenResponseFromJSON(data []byte) (*TokenResponse, error) {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return nil, fmt.Errorf("%w: %s", ErrNotAnObject, string(data))
	}

	var r TokenResponse
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, err
	}
	return &r, nil
}
