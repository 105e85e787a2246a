package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/quizmaster-app/quiz-gateway/internal/utils"
)

const (
	defaultHTTPTimeout = 15 * time.Second
	defaultRefreshSkew = 30 * time.Second
)

// TokenStore supplies and persists the bearer token for one user session.
// A nil store makes the client anonymous.
type TokenStore interface {
	Token(ctx context.Context) (string, error)
	SetToken(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// Client wraps the upstream QuizMaster API: base URL, JSON codec, bearer
// authorization with preemptive refresh, and a single-flight
// refresh-and-replay on 401.
type Client struct {
	baseURL     string
	httpClient  *http.Client
	tokens      TokenStore
	refreshSkew time.Duration
	logger      utils.Logger
	clock       func() time.Time

	// Single-flight refresh state. Concurrent requests that hit a 401
	// (or an expired exp claim) queue behind one refresh call and are
	// replayed with its result.
	refreshMu  sync.Mutex
	refreshing chan struct{}
	refreshed  string
	refreshErr error
}

type Option func(*Client)

func WithHTTPClient(httpClient *http.Client) Option {
	return func(c *Client) { c.httpClient = httpClient }
}

func WithRefreshSkew(skew time.Duration) Option {
	return func(c *Client) { c.refreshSkew = skew }
}

func WithLogger(logger utils.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) { c.clock = now }
}

func NewClient(baseURL string, opts ...Option) *Client {
	baseURL = strings.TrimRight(strings.TrimSpace(baseURL), "/")

	c := &Client{
		baseURL:     baseURL,
		httpClient:  &http.Client{Timeout: defaultHTTPTimeout},
		refreshSkew: defaultRefreshSkew,
		logger:      utils.NewDefaultLogger(),
		clock:       time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// WithTokens returns a copy of the client bound to one session's token
// store. The copy owns its own refresh coordination.
func (c *Client) WithTokens(tokens TokenStore) *Client {
	return &Client{
		baseURL:     c.baseURL,
		httpClient:  c.httpClient,
		tokens:      tokens,
		refreshSkew: c.refreshSkew,
		logger:      c.logger,
		clock:       c.clock,
	}
}

// BaseURL returns the configured upstream base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ===== REQUEST PIPELINE =====

func (c *Client) doJSON(ctx context.Context, method, path string, requestBody any, responseBody any) error {
	var encoded []byte
	if requestBody != nil {
		var err error
		encoded, err = json.Marshal(requestBody)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}

	token, err := c.currentToken(ctx)
	if err != nil {
		return err
	}

	status, body, err := c.roundTrip(ctx, method, path, encoded, token)
	if err != nil {
		return err
	}

	// Response interceptor: one refresh, one replay. Anonymous clients
	// and refresh-endpoint calls never retry.
	if status == http.StatusUnauthorized && c.tokens != nil && token != "" {
		newToken, refreshErr := c.refreshToken(ctx, token)
		if refreshErr != nil {
			return refreshErr
		}
		status, body, err = c.roundTrip(ctx, method, path, encoded, newToken)
		if err != nil {
			return err
		}
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		return decodeAPIError(status, body)
	}

	if responseBody == nil {
		return nil
	}
	if err := json.Unmarshal(body, responseBody); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, encoded []byte, token string) (int, []byte, error) {
	var body io.Reader
	if encoded != nil {
		body = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return 0, nil, err
	}
	if encoded != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		request.Header.Set("Authorization", "Bearer "+token)
	}

	response, err := c.httpClient.Do(request)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer response.Body.Close()

	payload, err := io.ReadAll(response.Body)
	if err != nil {
		return 0, nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return response.StatusCode, payload, nil
}

func decodeAPIError(status int, body []byte) error {
	apiErr := &APIError{StatusCode: status}

	var payload struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(body, &payload); err == nil {
		if strings.TrimSpace(payload.Message) != "" {
			apiErr.Message = payload.Message
		} else if strings.TrimSpace(payload.Error) != "" {
			apiErr.Message = payload.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(status)
	}
	return apiErr
}

// ===== TOKEN HANDLING =====

// currentToken runs the request interceptor: fetch the session token and
// refresh it preemptively when its exp claim is inside the skew window.
func (c *Client) currentToken(ctx context.Context) (string, error) {
	if c.tokens == nil {
		return "", nil
	}

	token, err := c.tokens.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("failed to read session token: %w", err)
	}
	if token == "" {
		return "", nil
	}

	if c.expiresWithinSkew(token) {
		refreshed, err := c.refreshToken(ctx, token)
		if err != nil {
			return "", err
		}
		return refreshed, nil
	}
	return token, nil
}

// expiresWithinSkew inspects the JWT exp claim without verifying the
// signature; verification belongs to the upstream. Tokens that do not
// parse as JWTs are passed through untouched and left to the 401 path.
func (c *Client) expiresWithinSkew(token string) bool {
	claims := jwt.MapClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, claims); err != nil {
		return false
	}

	expiry, err := claims.GetExpirationTime()
	if err != nil || expiry == nil {
		return false
	}
	return c.clock().Add(c.refreshSkew).After(expiry.Time)
}

// refreshToken performs the single refresh call. Callers that lose the
// race wait for the winner's result instead of issuing their own call.
func (c *Client) refreshToken(ctx context.Context, stale string) (string, error) {
	c.refreshMu.Lock()

	// Another caller may have already rotated the token.
	if current, err := c.tokens.Token(ctx); err == nil && current != "" && current != stale {
		c.refreshMu.Unlock()
		return current, nil
	}

	if c.refreshing != nil {
		done := c.refreshing
		c.refreshMu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		c.refreshMu.Lock()
		token, err := c.refreshed, c.refreshErr
		c.refreshMu.Unlock()
		return token, err
	}

	done := make(chan struct{})
	c.refreshing = done
	c.refreshMu.Unlock()

	token, err := c.performRefresh(ctx, stale)

	c.refreshMu.Lock()
	c.refreshed, c.refreshErr = token, err
	c.refreshing = nil
	close(done)
	c.refreshMu.Unlock()

	return token, err
}

func (c *Client) performRefresh(ctx context.Context, stale string) (string, error) {
	status, body, err := c.roundTrip(ctx, http.MethodPost, "/auth/refresh", nil, stale)
	if err != nil {
		return "", err
	}

	if status < http.StatusOK || status >= http.StatusMultipleChoices {
		// A failed refresh invalidates the whole session.
		if clearErr := c.tokens.Clear(ctx); clearErr != nil {
			c.logger.Error("failed to clear session after refresh failure", "error", clearErr)
		}
		c.logger.Warn("token refresh rejected", "status", status)
		return "", fmt.Errorf("%w: %v", ErrSessionExpired, decodeAPIError(status, body))
	}

	var payload struct {
		Token string `json:"token"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || strings.TrimSpace(payload.Token) == "" {
		return "", fmt.Errorf("%w: refresh returned no token", ErrSessionExpired)
	}

	if err := c.tokens.SetToken(ctx, payload.Token); err != nil {
		return "", fmt.Errorf("failed to persist refreshed token: %w", err)
	}
	return payload.Token, nil
}
