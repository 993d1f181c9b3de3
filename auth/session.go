// Package auth manages OAuth2 token sessions: the authorization headers for
// outbound calls, the current bearer token and its expiry, and the
// background refresh that keeps the token fresh until the session is
// stopped.
package auth

import (
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/jrsteele09/go-oauth-session/internal/utils"
	"github.com/jrsteele09/go-oauth-session/oauth2"
	"github.com/jrsteele09/go-oauth-session/retry"
)

// snapshot is the refreshable part of a session. It is published as a whole
// through an atomic pointer so concurrent readers never observe a token
// paired with another token's headers or expiry.
type snapshot struct {
	token           string
	tokenType       string
	expiresAtMillis *int64
	headers         map[string]string
}

// Session binds a credential and scope to the headers currently authorized
// for outbound calls. The credential, scope and server URI are fixed at
// construction; the token, its type, its expiry and the derived headers are
// replaced together on every successful refresh.
//
// A session is refreshed either by a Scheduler or by manual Refresh calls,
// not both: the two are not serialized against each other.
type Session struct {
	id          string
	state       atomic.Pointer[snapshot]
	credential  string
	scope       string
	serverURI   string
	keepRefresh atomic.Bool

	retryPolicy retry.Policy
	baseLogger  zerolog.Logger
	logger      zerolog.Logger
	nowFunc     func() time.Time
}

// Option configures a Session at construction time.
type Option func(*Session)

// WithRetryPolicy sets the retry budget used by Refresh.
func WithRetryPolicy(policy retry.Policy) Option {
	return func(s *Session) {
		s.retryPolicy = policy
	}
}

// WithLogger sets the logger used for refresh diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(s *Session) {
		s.baseLogger = logger
	}
}

// WithClock overrides the time source. It can be overridden in tests.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.nowFunc = now
	}
}

// NewSession creates a session from an existing token. The expiry is derived
// from the token itself when it is a JWT. An empty token yields a session
// without an Authorization header; an empty credential means the session
// cannot recover once its token expires.
func NewSession(baseHeaders map[string]string, token, tokenType, credential, scope, serverURI string, options ...Option) *Session {
	s := &Session{
		id:          uuid.New().String(),
		credential:  credential,
		scope:       scope,
		serverURI:   serverURI,
		retryPolicy: retry.DefaultPolicy(),
		baseLogger:  log.Logger,
		nowFunc:     time.Now,
	}
	for _, opt := range options {
		opt(s)
	}

	s.logger = s.baseLogger.With().Str("session_id", s.id).Logger()
	s.keepRefresh.Store(true)
	s.state.Store(&snapshot{
		token:           token,
		tokenType:       tokenType,
		expiresAtMillis: oauth2.ExpiresAtMillis(token),
		headers:         mergeHeaders(baseHeaders, oauth2.AuthHeaders(token)),
	})

	return s
}

// EmptySession returns a session with no token, no credential and the
// default catalog scope. It serves as the root parent for derived sessions.
func EmptySession(options ...Option) *Session {
	return NewSession(map[string]string{}, "", "", "", oauth2.CatalogScope, "", options...)
}

// Headers returns the current outbound headers, including the Authorization
// header for the current token. The returned map must not be modified.
func (s *Session) Headers() map[string]string {
	return s.state.Load().headers
}

// Token returns the current bearer token, or "" when the session has none.
func (s *Session) Token() string {
	return s.state.Load().token
}

// TokenType returns the issuer-declared type of the current token. It is
// used as the subject token type on the next exchange.
func (s *Session) TokenType() string {
	return s.state.Load().tokenType
}

// ExpiresAtMillis returns the epoch-millisecond expiry of the current token,
// or nil when no expiry could be derived.
func (s *Session) ExpiresAtMillis() *int64 {
	return s.state.Load().expiresAtMillis
}

// Scope returns the scope requested on every (re)authentication.
func (s *Session) Scope() string {
	return s.scope
}

// Credential returns the client credential, or "" when none is configured.
func (s *Session) Credential() string {
	return s.credential
}

// ServerURI returns the token endpoint for this session.
func (s *Session) ServerURI() string {
	return s.serverURI
}

// StopRefreshing permanently disables refresh for this session. It is
// idempotent and does not interrupt a refresh already in flight.
func (s *Session) StopRefreshing() {
	s.keepRefresh.Store(false)
}

// publish atomically replaces the token, token type, expiry and headers from
// a successful token response.
func (s *Session) publish(response *oauth2.TokenResponse) {
	old := s.state.Load()
	token := response.AccessToken
	s.state.Store(&snapshot{
		token:           token,
		tokenType:       utils.Value(response.IssuedTokenType),
		expiresAtMillis: oauth2.ExpiresAtMillis(token),
		headers:         mergeHeaders(old.headers, oauth2.AuthHeaders(token)),
	})
}

// childOptions carries a parent's configuration over to a derived session.
func (s *Session) childOptions() []Option {
	return []Option{
		WithRetryPolicy(s.retryPolicy),
		WithLogger(s.baseLogger),
		WithClock(s.nowFunc),
	}
}

func (s *Session) nowMillis() int64 {
	return s.nowFunc().UnixMilli()
}

func mergeHeaders(base, overrides map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(overrides))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range overrides {
		merged[k] = v
	}
	return merged
}
