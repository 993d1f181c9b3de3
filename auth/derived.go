package auth

import (
	"context"

	"github.com/jrsteele09/go-oauth-session/internal/utils"
	"github.com/jrsteele09/go-oauth-session/oauth2"
	"github.com/jrsteele09/go-oauth-session/rest"
)

// FromAccessToken creates a session around an existing access token,
// inheriting headers, credential, scope and server URI from the parent. If
// the token is already expired an eager refresh is attempted before
// scheduling; when that refresh fails the session is returned unscheduled
// with the original token. defaultExpiresAtMillis is used for scheduling
// when no expiry can be derived from the token itself; pass nil to skip
// scheduling in that case. A nil scheduler disables background refresh.
func FromAccessToken(ctx context.Context, client rest.Client, scheduler *Scheduler, token string, defaultExpiresAtMillis *int64, parent *Session) *Session {
	session := NewSession(
		parent.Headers(),
		token,
		oauth2.AccessTokenType,
		parent.Credential(),
		parent.Scope(),
		parent.ServerURI(),
		parent.childOptions()...,
	)

	startTimeMillis := session.nowMillis()
	expiresAtMillis := session.ExpiresAtMillis()

	if expiresAtMillis != nil && *expiresAtMillis <= startTimeMillis {
		interval, ok := session.Refresh(ctx, client)
		if ok {
			if refreshed := session.ExpiresAtMillis(); refreshed != nil {
				// use the expiry carried by the refreshed token
				expiresAtMillis = refreshed
			} else {
				expiresAtMillis = utils.Ptr(startTimeMillis + interval.Milliseconds())
			}
		} else {
			// refresh failed, don't reattempt with the original expiration
			expiresAtMillis = nil
		}
	} else if expiresAtMillis == nil && defaultExpiresAtMillis != nil {
		expiresAtMillis = defaultExpiresAtMillis
	}

	if scheduler != nil && expiresAtMillis != nil {
		scheduler.scheduleTokenRefresh(client, session, *expiresAtMillis)
	}

	return session
}

// FromCredential creates a session by performing a client credentials grant
// with the given credential. The grant's failure propagates: a session that
// cannot authenticate at all is not created.
func FromCredential(ctx context.Context, client rest.Client, scheduler *Scheduler, credential string, parent *Session) (*Session, error) {
	startTimeMillis := parent.nowMillis()
	response, err := FetchToken(ctx, client, parent.Headers(), credential, parent.Scope(), parent.ServerURI())
	if err != nil {
		return nil, err
	}
	return fromTokenResponse(client, scheduler, response, startTimeMillis, parent, credential), nil
}

// FromTokenExchange creates a session by exchanging the given token, with
// the parent session's token acting as the actor token. The grant's failure
// propagates.
func FromTokenExchange(ctx context.Context, client rest.Client, scheduler *Scheduler, token, tokenType string, parent *Session) (*Session, error) {
	startTimeMillis := parent.nowMillis()
	response, err := ExchangeToken(
		ctx,
		client,
		parent.Headers(),
		token,
		tokenType,
		parent.Token(),
		parent.TokenType(),
		parent.Scope(),
		parent.ServerURI(),
	)
	if err != nil {
		return nil, err
	}
	return fromTokenResponse(client, scheduler, response, startTimeMillis, parent, parent.Credential()), nil
}

// FromTokenResponse creates a session from a grant response obtained by the
// caller at startTimeMillis, inheriting the parent's credential.
func FromTokenResponse(client rest.Client, scheduler *Scheduler, response *oauth2.TokenResponse, startTimeMillis int64, parent *Session) *Session {
	return fromTokenResponse(client, scheduler, response, startTimeMillis, parent, parent.Credential())
}

func fromTokenResponse(client rest.Client, scheduler *Scheduler, response *oauth2.TokenResponse, startTimeMillis int64, parent *Session, credential string) *Session {
	session := NewSession(
		parent.Headers(),
		response.AccessToken,
		utils.Value(response.IssuedTokenType),
		credential,
		parent.Scope(),
		parent.ServerURI(),
		parent.childOptions()...,
	)

	expiresAtMillis := session.ExpiresAtMillis()
	if expiresAtMillis == nil && response.ExpiresInSeconds != nil {
		expiresAtMillis = utils.Ptr(startTimeMillis + *response.ExpiresInSeconds*1000)
	}

	if scheduler != nil && expiresAtMillis != nil {
		scheduler.scheduleTokenRefresh(client, session, *expiresAtMillis)
	}

	return session
}
