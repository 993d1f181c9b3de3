package auth

import (
	"time"

	xoauth2 "golang.org/x/oauth2"
)

// TokenSource adapts a session to golang.org/x/oauth2, so HTTP stacks built
// on oauth2.Transport can draw their bearer token from a refreshing session.
// The source never mints tokens itself; it hands out whatever the session
// currently holds.
func TokenSource(session *Session) xoauth2.TokenSource {
	return &sessionTokenSource{session: session}
}

type sessionTokenSource struct {
	session *Session
}

func (ts *sessionTokenSource) Token() (*xoauth2.Token, error) {
	snap := ts.session.state.Load()
	if snap.token == "" {
		return nil, ErrNoToken
	}

	token := &xoauth2.Token{
		AccessToken: snap.token,
		TokenType:   "Bearer",
	}
	if snap.expiresAtMillis != nil {
		token.Expiry = time.UnixMilli(*snap.expiresAtMillis)
	}

	return token, nil
}
