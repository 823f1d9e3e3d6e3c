package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/jrsteele09/go-auth-client/session"
)

const (
	defaultLoginPath = "/api/auth/login/"

	contentTypeJSON = "application/json"

	// Error responses larger than this are not worth reading for a reason
	// string.
	maxErrorBodyBytes = 64 * 1024
)

// Client issues the login exchange and wraps arbitrary authenticated calls
// with credential attachment and expiry handling. Centralizing the 401
// handling here means every call site gets uniform expiry behaviour without
// duplicating the logout flow.
type Client struct {
	baseURL    string
	authScheme string // Header scheme, e.g. "Bearer" or "JWT" - deployment fixed
	loginPath  string
	httpClient *http.Client
	sessions   *session.Manager
	logger     zerolog.Logger
}

// Option defines a function type to modify the Client instance.
type Option func(*Client)

// WithHTTPClient overrides the transport. Timeout semantics are delegated to
// it; the gateway imposes none of its own.
func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithLogger sets the logger (a no-op logger is used by default).
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLoginPath overrides the login endpoint path.
func WithLoginPath(path string) Option {
	return func(c *Client) {
		c.loginPath = path
	}
}

// New creates a gateway Client. baseURL is the root of the remote service,
// authScheme the Authorization header prefix the deployment expects.
func New(baseURL, authScheme string, sessions *session.Manager, options ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, errors.New("[gateway.New] baseURL is required")
	}
	if authScheme == "" {
		return nil, errors.New("[gateway.New] authScheme is required")
	}
	if sessions == nil {
		return nil, errors.New("[gateway.New] session manager is required")
	}

	client := &Client{
		baseURL:    baseURL,
		authScheme: authScheme,
		loginPath:  defaultLoginPath,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		sessions:   sessions,
		logger:     zerolog.Nop(),
	}
	for _, opt := range options {
		opt(client)
	}
	return client, nil
}

// LoginResult is the decoded body of a successful login exchange.
type LoginResult struct {
	AccessToken  string             `json:"access"`
	RefreshToken string             `json:"refresh"`
	User         session.UserRecord `json:"user"`
}

type loginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type errorResponse struct {
	Detail string `json:"detail"`
	Err    string `json:"error"`
}

// Login performs a single request/response exchange against the login
// endpoint. It never retries, and it never touches session state: the caller
// decides when (and whether) to persist the result.
//
// A non-success response fails with *AuthenticationError carrying the reason
// from the body's detail field when present. A success response that cannot
// be decoded fails with ErrMalformedResponse.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResult, error) {
	body, err := json.Marshal(loginRequest{Username: username, Password: password})
	if err != nil {
		return nil, errors.Wrap(err, "[Login] failed to marshal credentials")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+c.loginPath, bytes.NewReader(body))
	if err != nil {
		return nil, errors.Wrap(err, "[Login] failed to build request")
	}
	req.Header.Set("Content-Type", contentTypeJSON)
	req.Header.Set("X-Request-ID", uuid.New().String())

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Login] request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		reason := loginFailureReason(resp.Body)
		c.logger.Warn().Int("status", resp.StatusCode).Str("username", username).Msg("login rejected")
		return nil, &AuthenticationError{StatusCode: resp.StatusCode, Reason: reason}
	}

	var result LoginResult
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, errors.Wrap(ErrMalformedResponse, err.Error())
	}
	if result.AccessToken == "" {
		return nil, errors.Wrap(ErrMalformedResponse, "login response missing access token")
	}

	c.logger.Info().Str("username", username).Msg("login succeeded")
	return &result, nil
}

// RequestOption modifies an outbound authenticated request before it is sent.
type RequestOption func(*http.Request)

// WithHeader sets a header on the outbound request. Caller headers are
// applied after the defaults, so they win on collision.
func WithHeader(key, value string) RequestOption {
	return func(r *http.Request) {
		r.Header.Set(key, value)
	}
}

// Do issues an authenticated request. The stored access token is attached as
// "Authorization: <scheme> <token>"; a JSON body, when given, is encoded and
// Content-Type set.
//
// A 401 response means the credential is invalid or expired: the session is
// cleared as a side effect and ErrSessionExpired returned instead of the
// response - the body in that case is authentication-server-defined, not the
// caller's expected payload, so it is discarded. Every other status is
// returned raw for the caller to interpret; the gateway does not unwrap JSON
// for generic requests, only Login decodes.
func (c *Client) Do(ctx context.Context, method, path string, body any, options ...RequestOption) (*http.Response, error) {
	accessToken, ok := c.sessions.AccessToken()
	if !ok {
		return nil, ErrSessionExpired
	}

	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "[Do] failed to marshal body")
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "[Do] failed to build request")
	}
	req.Header.Set("Authorization", c.authScheme+" "+accessToken)
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", contentTypeJSON)
	}
	for _, opt := range options {
		opt(req)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "[Do] request failed")
	}

	if resp.StatusCode == http.StatusUnauthorized {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBodyBytes))
		_ = resp.Body.Close()

		c.logger.Warn().Str("path", path).Msg("access token rejected, clearing session")
		if err := c.sessions.ClearSession(); err != nil {
			return nil, errors.Wrap(err, "[Do] failed to clear session after 401")
		}
		return nil, ErrSessionExpired
	}

	return resp, nil
}

func loginFailureReason(body io.Reader) string {
	var failure errorResponse
	if err := json.NewDecoder(io.LimitReader(body, maxErrorBodyBytes)).Decode(&failure); err == nil {
		if failure.Detail != "" {
			return failure.Detail
		}
		if failure.Err != "" {
			return failure.Err
		}
	}
	return "login failed"
}
