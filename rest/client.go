// Package rest provides the HTTP transport used to talk to an OAuth2 token
// endpoint: a form-encoded POST returning either a parsed token response or
// a typed error for non-2xx statuses.
package rest

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/jrsteele09/go-oauth-session/oauth2"
)

// maxBodyBytes bounds how much of a response body is read.
const maxBodyBytes = 64 * 1024

// Client posts form-encoded token requests and decodes token responses.
// Implementations map non-2xx responses to an error carrying the HTTP
// status.
type Client interface {
	PostForm(ctx context.Context, uri string, form map[string]string, headers map[string]string) (*oauth2.TokenResponse, error)
}

// HTTPClient is the default Client backed by net/http.
type HTTPClient struct {
	httpClient *http.Client
}

// Option configures an HTTPClient.
type Option func(*HTTPClient)

// WithHTTPClient replaces the underlying *http.Client.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *HTTPClient) {
		c.httpClient = httpClient
	}
}

// NewHTTPClient creates an HTTPClient with a 30 second request timeout
// unless overridden.
func NewHTTPClient(options ...Option) *HTTPClient {
	c := &HTTPClient{
		httpClient: &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

var _ Client = (*HTTPClient)(nil)

// PostForm sends a form-encoded POST to uri with the supplied headers and
// parses the body as a token response. A non-2xx status yields an
// *ErrorResponse; the token response is validated before being returned.
func (c *HTTPClient) PostForm(ctx context.Context, uri string, form map[string]string, headers map[string]string) (*oauth2.TokenResponse, error) {
	values := url.Values{}
	for k, v := range form {
		values.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, uri, strings.NewReader(values.Encode()))
	if err != nil {
		return nil, fmt.Errorf("building token request: %w", err)
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("posting token request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("reading token response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newErrorResponse(resp.StatusCode, body)
	}

	tokenResponse, err := oauth2.TokenResponseFromJSON(body)
	if err != nil {
		return nil, err
	}
	if err := tokenResponse.Validate(); err != nil {
		return nil, err
	}

	return tokenResponse, nil
}

// ErrorResponse is a non-2xx answer from the token endpoint. Code and
// Description come from the RFC 6749 error body when one is present.
type ErrorResponse struct {
	StatusCode  int
	Code        string
	Description string
}

func (e *ErrorResponse) Error() string {
	if e.Code == "" {
		return fmt.Sprintf("token endpoint returned status %d", e.StatusCode)
	}
	if e.Description == "" {
		return fmt.Sprintf("token endpoint returned status %d: %s", e.StatusCode, e.Code)
	}
	return fmt.Sprintf("token endpoint returned status %d: %s: %s", e.StatusCode, e.Code, e.Description)
}

func newErrorResponse(statusCode int, body []byte) *ErrorResponse {
	var wire struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}
	// best effort: error bodies are not always JSON
	_ = json.Unmarshal(body, &wire)

	return &ErrorResponse{
		StatusCode:  statusCode,
		Code:        wire.Error,
		Description: wire.ErrorDescription,
	}
}
