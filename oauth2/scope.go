package oauth2

import "strings"

// CatalogScope is the default scope requested when none is configured.
const CatalogScope = "catalog"

// IsValidScopeToken reports whether scopeToken only contains characters
// allowed by RFC 6749 section 3.3: ASCII 0x21-0x7E excluding 0x22 (") and
// 0x5C (\). The empty string is not a valid scope token.
func IsValidScopeToken(scopeToken string) bool {
	if scopeToken == "" {
		return false
	}
	for i := 0; i < len(scopeToken); i++ {
		c := scopeToken[i]
		if c < 0x21 || c > 0x7E || c == '"' || c == '\\' {
			return false
		}
	}
	return true
}

// ParseScope splits a space-joined scope string into its scope tokens.
func ParseScope(scope string) []string {
	return strings.Split(scope, " ")
}

// ToScope joins scope tokens with single spaces.
func ToScope(scopes []string) string {
	return strings.Join(scopes, " ")
}
