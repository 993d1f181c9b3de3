package auth

import (
	"context"
	"time"

	"github.com/jrsteele09/go-oauth-session/oauth2"
	"github.com/jrsteele09/go-oauth-session/rest"
)

// Refresh attempts to replace the session token using the token exchange
// flow. It returns the interval to wait before refreshing again and true
// when the server declared a token lifetime; (0, false) means no further
// refresh is needed, either because the session has no token, refreshing was
// stopped, the response carried no lifetime, or the retry budget was
// exhausted. Exhaustion is logged, never returned as an error: a failed
// background refresh must not break the caller's request path, so the
// session keeps its last known token.
//
// Each failed attempt falls back to a credential-based re-authentication
// before the next retry, so a session with a credential heals itself when
// its token has been rejected.
func (s *Session) Refresh(ctx context.Context, client rest.Client) (time.Duration, bool) {
	if s.Token() == "" || !s.keepRefresh.Load() {
		return 0, false
	}

	var response *oauth2.TokenResponse
	outcome := s.retryPolicy.Run(ctx,
		func(ctx context.Context) error {
			r, err := s.refreshCurrentToken(ctx, client)
			if err != nil {
				return err
			}
			response = r
			return nil
		},
		func(ctx context.Context, attemptErr error) bool {
			// attempt to refresh using the client credential instead of the parent token
			r, err := s.refreshExpiredToken(ctx, client)
			if err != nil || r == nil {
				s.logger.Warn().Err(attemptErr).Msg("Failed to refresh token")
				return false
			}
			response = r
			return true
		},
	)

	if !outcome.OK() || response == nil {
		if outcome.Err != nil {
			s.logger.Warn().Err(outcome.Err).Msg("Token refresh attempts exhausted")
		}
		return 0, false
	}

	s.publish(response)
	s.logger.Debug().Msg("Refreshed session token")

	if response.ExpiresInSeconds != nil {
		return time.Duration(*response.ExpiresInSeconds) * time.Second, true
	}

	return 0, false
}

// refreshCurrentToken performs a normal token exchange refresh, unless the
// current token is already expired, in which case it re-authenticates with
// the credential straight away.
func (s *Session) refreshCurrentToken(ctx context.Context, client rest.Client) (*oauth2.TokenResponse, error) {
	snap := s.state.Load()
	if snap.expiresAtMillis != nil && *snap.expiresAtMillis <= s.nowMillis() {
		return s.refreshExpiredToken(ctx, client)
	}
	return refreshToken(ctx, client, snap.headers, snap.token, snap.tokenType, s.scope, s.serverURI)
}

// refreshExpiredToken re-proves identity with the client credential via
// Basic auth while still exchanging the current token.
func (s *Session) refreshExpiredToken(ctx context.Context, client rest.Client) (*oauth2.TokenResponse, error) {
	if s.credential == "" {
		return nil, ErrNoCredential
	}
	snap := s.state.Load()
	basicHeaders := mergeHeaders(snap.headers, oauth2.BasicAuthHeaders(s.credential))
	return refreshToken(ctx, client, basicHeaders, snap.token, snap.tokenType, s.scope, s.serverURI)
}

// refreshToken posts a token exchange request for the subject token.
func refreshToken(ctx context.Context, client rest.Client, headers map[string]string, subjectToken, subjectTokenType, scope, serverURI string) (*oauth2.TokenResponse, error) {
	form, err := oauth2.TokenExchangeRequest(subjectToken, subjectTokenType, "", "", scopeList(scope))
	if err != nil {
		return nil, err
	}

	response, err := client.PostForm(ctx, serverURI, form, headers)
	if err != nil {
		return nil, err
	}
	if err := response.Validate(); err != nil {
		return nil, err
	}

	return response, nil
}

// FetchToken performs a client credentials grant against serverURI and
// validates the response. Failures propagate to the caller.
func FetchToken(ctx context.Context, client rest.Client, headers map[string]string, credential, scope, serverURI string) (*oauth2.TokenResponse, error) {
	form, err := oauth2.ClientCredentialsRequest(credential, scopeList(scope))
	if err != nil {
		return nil, err
	}

	response, err := client.PostForm(ctx, serverURI, form, headers)
	if err != nil {
		return nil, err
	}
	if err := response.Validate(); err != nil {
		return nil, err
	}

	return response, nil
}

// ExchangeToken performs a token exchange grant against serverURI and
// validates the response. Failures propagate to the caller.
func ExchangeToken(ctx context.Context, client rest.Client, headers map[string]string, subjectToken, subjectTokenType, actorToken, actorTokenType, scope, serverURI string) (*oauth2.TokenResponse, error) {
	form, err := oauth2.TokenExchangeRequest(subjectToken, subjectTokenType, actorToken, actorTokenType, scopeList(scope))
	if err != nil {
		return nil, err
	}

	response, err := client.PostForm(ctx, serverURI, form, headers)
	if err != nil {
		return nil, err
	}
	if err := response.Validate(); err != nil {
		return nil, err
	}

	return response, nil
}

func scopeList(scope string) []string {
	if scope == "" {
		return []string{}
	}
	return []string{scope}
}
