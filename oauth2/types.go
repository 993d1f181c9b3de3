package oauth2

// GrantType represents the OAuth 2.0 grant type sent to the token endpoint.
type GrantType string

const (
	// ClientCredentialsGrant allows machine-to-machine authentication.
	// Token request includes: client_id (optional), client_secret, scope.
	ClientCredentialsGrant GrantType = "client_credentials"

	// TokenExchangeGrant exchanges one token for another (RFC 8693).
	// Token request includes: subject_token, subject_token_type, scope and
	// optionally actor_token, actor_token_type.
	TokenExchangeGrant GrantType = "urn:ietf:params:oauth:grant-type:token-exchange"
)

// Token type identifiers from RFC 8693 section 3. These are the only values
// accepted for subject_token_type and actor_token_type.
const (
	AccessTokenType  = "urn:ietf:params:oauth:token-type:access_token"
	RefreshTokenType = "urn:ietf:params:oauth:token-type:refresh_token"
	IDTokenType      = "urn:ietf:params:oauth:token-type:id_token"
	SAML1TokenType   = "urn:ietf:params:oauth:token-type:saml1"
	SAML2TokenType   = "urn:ietf:params:oauth:token-type:saml2"
	JWTTokenType     = "urn:ietf:params:oauth:token-type:jwt"
)

// Form field names used in token endpoint requests.
const (
	GrantTypeField        = "grant_type"
	ClientIDField         = "client_id"
	ClientSecretField     = "client_secret"
	ScopeField            = "scope"
	SubjectTokenField     = "subject_token"
	SubjectTokenTypeField = "subject_token_type"
	ActorTokenField       = "actor_token"
	ActorTokenTypeField   = "actor_token_type"
)

var validTokenTypes = map[string]struct{}{
	AccessTokenType:  {},
	RefreshTokenType: {},
	IDTokenType:      {},
	SAML1TokenType:   {},
	SAML2TokenType:   {},
	JWTTokenType:     {},
}

// ValidTokenType reports whether tokenType is one of the token type
// identifiers allowed in a token exchange request.
func ValidTokenType(tokenType string) bool {
	_, ok := validTokenTypes[tokenType]
	return ok
}
