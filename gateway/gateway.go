// Package gateway is the stateless REST boundary to the portal backend.
// Every call is a plain request/response function: no session state lives
// here. Responses arrive in two historical shapes (payload nested under
// "data", or bare at the top level); this package normalizes both into
// one schema at the boundary and fails fast with ErrMalformedResponse
// rather than letting the ambiguity propagate inward.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	// ErrUnavailable is returned when the backend cannot be reached or
	// answers with a server-side failure. Callers recover locally where a
	// cache fallback exists.
	ErrUnavailable = errors.New("backend unavailable")
	// ErrNotFound is returned on a 404 from a lookup endpoint. For the
	// primary profile endpoint this triggers the legacy-endpoint retry.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is returned when a bearer-authenticated call is
	// rejected outright; the token is no longer accepted by the server.
	ErrUnauthorized = errors.New("token rejected")
	// ErrInvalidCredentials is the plain login 401: wrong email or
	// password, with no role-mismatch signal in the message.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrRoleMismatch is a login 401 whose message indicates the account
	// exists but is registered under a different role.
	ErrRoleMismatch = errors.New("account registered under a different role")
	// ErrUnverifiedEmail is the login 403: credentials are right but the
	// email address has not been verified yet.
	ErrUnverifiedEmail = errors.New("email not verified")
	// ErrMalformedResponse is returned when the server reports success
	// but omits a payload the contract requires (token on login, user on
	// profile). Never treated as a degraded success.
	ErrMalformedResponse = errors.New("malformed server response")
)

// Config configures a Client.
type Config struct {
	// BaseURL is the API root including the /api prefix,
	// e.g. "https://portal.example.com/api".
	BaseURL string
	// HTTPClient overrides the transport; nil uses a client with Timeout.
	HTTPClient *http.Client
	// Timeout bounds each request when HTTPClient is nil.
	Timeout time.Duration
	// UserAgent is sent on every request when non-empty.
	UserAgent string
}

// Client issues typed calls against the portal backend. It is immutable
// after construction and safe for concurrent use.
type Client struct {
	baseURL   string
	http      *http.Client
	userAgent string
}

// NewClient validates cfg and returns a Client.
func NewClient(cfg Config) (*Client, error) {
	base := strings.TrimRight(cfg.BaseURL, "/")
	if base == "" {
		return nil, errors.New("gateway: base URL required")
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 15 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	return &Client{
		baseURL:   base,
		http:      httpClient,
		userAgent: cfg.UserAgent,
	}, nil
}

// do issues one request and returns the decoded envelope. Transport
// errors map to ErrUnavailable; HTTP-level rejections are mapped by the
// caller, which knows the endpoint's contract.
func (c *Client) do(ctx context.Context, method, path, bearer string, body any) (*envelope, int, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, 0, err
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, 0, err
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 500 {
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	env := &envelope{}
	data, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if len(data) > 0 {
		// A body that is not JSON on an error status is still a usable
		// rejection; decode failures only matter on success paths.
		_ = json.Unmarshal(data, env)
	}
	return env, resp.StatusCode, nil
}
