package auth_test

import (
	"context"
	"encoding/base64"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-oauth-session/auth"
	"github.com/jrsteele09/go-oauth-session/internal/utils"
	"github.com/jrsteele09/go-oauth-session/oauth2"
)

func TestRefresh(t *testing.T) {
	ctx := context.Background()

	t.Run("no-op without a token", func(t *testing.T) {
		client := &fakeClient{}
		session := auth.NewSession(map[string]string{}, "", "", testCredential, testScope, testServerURI)

		_, ok := session.Refresh(ctx, client)
		require.False(t, ok)
		require.Zero(t, client.callCount())
	})

	t.Run("normal refresh exchanges the current token", func(t *testing.T) {
		client := &fakeClient{handler: respondWith(tokenResponse("new-token", utils.Ptr(int64(3600))))}
		session := auth.NewSession(
			map[string]string{"X-Client-Version": "1.2.3"},
			"old-token", oauth2.AccessTokenType, testCredential, testScope, testServerURI)

		interval, ok := session.Refresh(ctx, client)
		require.True(t, ok)
		require.Equal(t, time.Hour, interval)

		require.Equal(t, 1, client.callCount())
		call := client.call(0)
		require.Equal(t, testServerURI, call.uri)
		require.Equal(t, "urn:ietf:params:oauth:grant-type:token-exchange", call.form["grant_type"])
		require.Equal(t, "old-token", call.form["subject_token"])
		require.Equal(t, oauth2.AccessTokenType, call.form["subject_token_type"])
		require.Equal(t, testScope, call.form["scope"])
		require.Equal(t, "Bearer old-token", call.headers["Authorization"])
		require.Equal(t, "1.2.3", call.headers["X-Client-Version"])

		require.Equal(t, "new-token", session.Token())
		require.Equal(t, oauth2.AccessTokenType, session.TokenType())
		require.Equal(t, "Bearer new-token", session.Headers()["Authorization"])
		require.Equal(t, "1.2.3", session.Headers()["X-Client-Version"])
	})

	t.Run("success without expires_in updates the token but suggests no reschedule", func(t *testing.T) {
		client := &fakeClient{handler: respondWith(tokenResponse("new-token", nil))}
		session := auth.NewSession(map[string]string{}, "old-token", oauth2.AccessTokenType, "", testScope, testServerURI)

		interval, ok := session.Refresh(ctx, client)
		require.False(t, ok)
		require.Zero(t, interval)
		require.Equal(t, "new-token", session.Token())
	})

	t.Run("expired token re-authenticates with the credential", func(t *testing.T) {
		expired := signedJWT(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
		client := &fakeClient{handler: respondWith(tokenResponse("new-token", utils.Ptr(int64(900))))}
		session := auth.NewSession(map[string]string{}, expired, oauth2.JWTTokenType, testCredential, testScope, testServerURI)

		interval, ok := session.Refresh(ctx, client)
		require.True(t, ok)
		require.Equal(t, 15*time.Minute, interval)

		require.Equal(t, 1, client.callCount())
		call := client.call(0)
		// re-proves identity via Basic auth while still exchanging the old token
		require.Equal(t, "Basic "+basicAuth(testCredential), call.headers["Authorization"])
		require.Equal(t, expired, call.form["subject_token"])
		require.Equal(t, oauth2.JWTTokenType, call.form["subject_token_type"])
		require.Equal(t, "new-token", session.Token())
	})

	t.Run("failed normal refresh heals through the credential fallback", func(t *testing.T) {
		client := &fakeClient{}
		client.handler = func(call fakeCall) (*oauth2.TokenResponse, error) {
			if client.callCount() == 1 {
				return nil, errors.New("server hiccup")
			}
			return tokenResponse("fallback-token", nil), nil
		}
		session := auth.NewSession(map[string]string{}, "old-token", oauth2.AccessTokenType, testCredential, testScope, testServerURI, fastRetry())

		_, ok := session.Refresh(ctx, client)
		require.False(t, ok) // no expires_in in the fallback response
		require.Equal(t, "fallback-token", session.Token())

		require.Equal(t, 2, client.callCount())
		require.Equal(t, "Bearer old-token", client.call(0).headers["Authorization"])
		require.Equal(t, "Basic "+basicAuth(testCredential), client.call(1).headers["Authorization"])
	})

	t.Run("expired token without a credential exhausts and keeps the old token", func(t *testing.T) {
		expired := signedJWT(t, jwt.MapClaims{"exp": time.Now().Add(-time.Hour).Unix()})
		client := &fakeClient{}
		session := auth.NewSession(map[string]string{}, expired, oauth2.JWTTokenType, "", testScope, testServerURI, fastRetry())

		interval, ok := session.Refresh(ctx, client)
		require.False(t, ok)
		require.Zero(t, interval)
		// every attempt degrades to the credential path, which has nothing to use
		require.Zero(t, client.callCount())
		require.Equal(t, expired, session.Token())
	})

	t.Run("persistent wire failures are suppressed", func(t *testing.T) {
		client := &fakeClient{handler: func(fakeCall) (*oauth2.TokenResponse, error) {
			return nil, errors.New("boom")
		}}
		session := auth.NewSession(map[string]string{}, "old-token", oauth2.AccessTokenType, "", testScope, testServerURI, fastRetry())

		_, ok := session.Refresh(ctx, client)
		require.False(t, ok)
		require.Equal(t, "old-token", session.Token())
		require.Equal(t, "Bearer old-token", session.Headers()["Authorization"])
	})

	t.Run("invalid response feeds the retry budget", func(t *testing.T) {
		client := &fakeClient{handler: respondWith(&oauth2.TokenResponse{TokenType: "bearer"})}
		session := auth.NewSession(map[string]string{}, "old-token", oauth2.AccessTokenType, "", testScope, testServerURI, fastRetry())

		_, ok := session.Refresh(ctx, client)
		require.False(t, ok)
		require.Equal(t, "old-token", session.Token())
		require.Equal(t, 2, client.callCount())
	})
}

func TestFetchToken(t *testing.T) {
	ctx := context.Background()

	t.Run("posts a client credentials grant", func(t *testing.T) {
		client := &fakeClient{handler: respondWith(tokenResponse("minted", utils.Ptr(int64(3600))))}

		response, err := auth.FetchToken(ctx, client, map[string]string{}, "id:secret", testScope, testServerURI)
		require.NoError(t, err)
		require.Equal(t, "minted", response.AccessToken)

		call := client.call(0)
		require.Equal(t, "client_credentials", call.form["grant_type"])
		require.Equal(t, "id", call.form["client_id"])
		require.Equal(t, "secret", call.form["client_secret"])
		require.Equal(t, testScope, call.form["scope"])
	})

	t.Run("propagates wire failures", func(t *testing.T) {
		client := &fakeClient{handler: func(fakeCall) (*oauth2.TokenResponse, error) {
			return nil, errors.New("unauthorized")
		}}
		_, err := auth.FetchToken(ctx, client, map[string]string{}, "id:secret", testScope, testServerURI)
		require.Error(t, err)
	})

	t.Run("rejects an empty credential before any call", func(t *testing.T) {
		client := &fakeClient{}
		_, err := auth.FetchToken(ctx, client, map[string]string{}, "", testScope, testServerURI)
		require.ErrorIs(t, err, oauth2.ErrMissingCredential)
		require.Zero(t, client.callCount())
	})
}

func TestExchangeToken(t *testing.T) {
	ctx := context.Background()

	t.Run("posts a token exchange grant with an actor token", func(t *testing.T) {
		client := &fakeClient{handler: respondWith(tokenResponse("exchanged", nil))}

		response, err := auth.ExchangeToken(ctx, client, map[string]string{},
			"subject-token", oauth2.AccessTokenType,
			"actor-token", oauth2.AccessTokenType,
			testScope, testServerURI)
		require.NoError(t, err)
		require.Equal(t, "exchanged", response.AccessToken)

		call := client.call(0)
		require.Equal(t, "subject-token", call.form["subject_token"])
		require.Equal(t, "actor-token", call.form["actor_token"])
	})

	t.Run("rejects an invalid token type before any call", func(t *testing.T) {
		client := &fakeClient{}
		_, err := auth.ExchangeToken(ctx, client, map[string]string{},
			"subject-token", "not-a-token-type", "", "", testScope, testServerURI)
		require.ErrorIs(t, err, oauth2.ErrInvalidTokenType)
		require.Zero(t, client.callCount())
	})
}

func basicAuth(credential string) string {
	return base64.StdEncoding.EncodeToString([]byte(credential))
}
