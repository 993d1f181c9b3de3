package oauth2

import (
	"fmt"
	"strings"
)

// ClientCredentialsRequest builds the form fields for a client_credentials
// grant. The credential is split on the first ":" into client ID and client
// secret; a credential without a ":" is treated as a bare client secret and
// the client_id field is omitted. The scope field is always present, even
// when scopes is empty.
func ClientCredentialsRequest(credential string, scopes []string) (map[string]string, error) {
	clientID, clientSecret, err := ParseCredential(credential)
	if err != nil {
		return nil, err
	}

	form := map[string]string{
		GrantTypeField:    string(ClientCredentialsGrant),
		ClientSecretField: clientSecret,
		ScopeField:        ToScope(scopes),
	}
	if clientID != "" {
		form[ClientIDField] = clientID
	}

	return form, nil
}

// TokenExchangeRequest builds the form fields for a token-exchange grant
// (RFC 8693). Both token types must be valid token type identifiers; the
// actor token type is only checked when an actor token is present. The
// actor_token and actor_token_type fields are omitted when actorToken is
// empty.
func TokenExchangeRequest(subjectToken, subjectTokenType, actorToken, actorTokenType string, scopes []string) (map[string]string, error) {
	if !ValidTokenType(subjectTokenType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTokenType, subjectTokenType)
	}
	if actorToken != "" && !ValidTokenType(actorTokenType) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTokenType, actorTokenType)
	}

	form := map[string]string{
		GrantTypeField:        string(TokenExchangeGrant),
		ScopeField:            ToScope(scopes),
		SubjectTokenField:     subjectToken,
		SubjectTokenTypeField: subjectTokenType,
	}
	if actorToken != "" {
		form[ActorTokenField] = actorToken
		form[ActorTokenTypeField] = actorTokenType
	}

	return form, nil
}

// ParseCredential splits a "client_id:client_secret" credential. A value
// without a ":" is a bare client secret and yields an empty client ID. Both
// parts are trimmed of surrounding whitespace.
func ParseCredential(credential string) (clientID, clientSecret string, err error) {
	if credential == "" {
		return "", "", ErrMissingCredential
	}

	parts := strings.SplitN(credential, ":", 2)
	switch len(parts) {
	case 2:
		return strings.TrimSpace(parts[0]), strings.TrimSpace(parts[1]), nil
	case 1:
		return "", strings.TrimSpace(parts[0]), nil
	default:
		return "", "", fmt.Errorf("%w: %s", ErrInvalidCredential, credential)
	}
}
