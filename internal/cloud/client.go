// Package cloud implements intents.Source against the remote intents API.
//
// Every request runs through a circuit breaker so a failing API is not
// hammered by agents polling it. There are no retries: a failed call is
// reported to the caller, which decides what to show the agent.
package cloud

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HendryAvila/intent-mcp/internal/intents"
	"github.com/google/uuid"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"
)

const (
	apiPrefix = "/api/v1"

	// DefaultTimeout bounds a single API request when none is configured.
	DefaultTimeout = 15 * time.Second

	// maxErrorBody caps how much of an error response is kept in APIError.
	maxErrorBody = 4 << 10
)

// APIError is a non-2xx response from the intents API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	if e.Message == "" {
		return fmt.Sprintf("intents API returned %d", e.StatusCode)
	}
	return fmt.Sprintf("intents API returned %d: %s", e.StatusCode, e.Message)
}

// Unwrap maps 404 responses to intents.ErrNotFound.
func (e *APIError) Unwrap() error {
	if e.StatusCode == http.StatusNotFound {
		return intents.ErrNotFound
	}
	return nil
}

// BreakerConfig tunes the client's circuit breaker.
type BreakerConfig struct {
	MaxRequests      uint32
	Interval         time.Duration
	Timeout          time.Duration
	FailureThreshold float64
	MinRequests      uint32
}

// DefaultBreakerConfig returns conservative breaker settings.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{
		MaxRequests:      1,
		Interval:         30 * time.Second,
		Timeout:          30 * time.Second,
		FailureThreshold: 0.6,
		MinRequests:      3,
	}
}

// Config holds the client's connection settings.
type Config struct {
	BaseURL   string
	APIKey    string
	Timeout   time.Duration
	UserAgent string
	Breaker   BreakerConfig
}

// Client talks to the intents API. It is safe for concurrent use.
type Client struct {
	baseURL   *url.URL
	apiKey    string
	userAgent string
	http      *http.Client
	breaker   *gobreaker.CircuitBreaker
	log       *zap.Logger
}

var _ intents.Source = (*Client)(nil)

// New creates a Client. The base URL must be absolute.
func New(cfg Config, log *zap.Logger) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parsing API URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("API URL %q must be absolute", cfg.BaseURL)
	}
	if log == nil {
		log = zap.NewNop()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = "intent-mcp"
	}

	log = log.Named("cloud")
	bc := cfg.Breaker
	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "intents-api",
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < bc.MinRequests {
				return false
			}
			ratio := float64(counts.TotalFailures) / float64(counts.Requests)
			return ratio >= bc.FailureThreshold
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			log.Warn("circuit breaker state changed",
				zap.String("breaker", name),
				zap.Stringer("from", from),
				zap.Stringer("to", to),
			)
		},
		IsSuccessful: isSuccessful,
	})

	return &Client{
		baseURL:   u,
		apiKey:    cfg.APIKey,
		userAgent: cfg.UserAgent,
		http:      &http.Client{Timeout: cfg.Timeout},
		breaker:   breaker,
		log:       log,
	}, nil
}

// Close releases idle connections.
func (c *Client) Close() error {
	c.http.CloseIdleConnections()
	return nil
}

// isSuccessful decides what counts against the breaker: transport errors
// and 5xx do, client errors and cancellations do not.
func isSuccessful(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return true
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode < http.StatusInternalServerError
	}
	return false
}

// --- Wire shapes ---

type workspacesResponse struct {
	Workspaces []intents.Workspace `json:"workspaces"`
}

type intentsResponse struct {
	Intents []intents.Intent `json:"intents"`
}

type errorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// --- intents.Source ---

// ListWorkspaces returns the workspaces visible to the API key.
func (c *Client) ListWorkspaces(ctx context.Context) ([]intents.Workspace, error) {
	var resp workspacesResponse
	if err := c.get(ctx, apiPrefix+"/workspaces", &resp); err != nil {
		return nil, fmt.Errorf("listing workspaces: %w", err)
	}
	if resp.Workspaces == nil {
		resp.Workspaces = []intents.Workspace{}
	}
	return resp.Workspaces, nil
}

// ListIntents returns every intent of a workspace. One invalid intent in
// the response fails the whole call.
func (c *Client) ListIntents(ctx context.Context, workspaceID string) ([]intents.Intent, error) {
	if workspaceID == "" {
		return nil, errors.New("workspace id is required in cloud mode")
	}

	var resp intentsResponse
	path := apiPrefix + "/workspaces/" + url.PathEscape(workspaceID) + "/intents"
	if err := c.get(ctx, path, &resp); err != nil {
		return nil, fmt.Errorf("listing intents of %q: %w", workspaceID, err)
	}
	if resp.Intents == nil {
		resp.Intents = []intents.Intent{}
	}
	if err := intents.ValidateAll(resp.Intents); err != nil {
		return nil, fmt.Errorf("listing intents of %q: %w", workspaceID, err)
	}
	for i := range resp.Intents {
		resp.Intents[i].WorkspaceID = workspaceID
	}
	return resp.Intents, nil
}

// GetIntent returns a single intent.
func (c *Client) GetIntent(ctx context.Context, workspaceID, intentID string) (*intents.Intent, error) {
	if workspaceID == "" {
		return nil, errors.New("workspace id is required in cloud mode")
	}

	var in intents.Intent
	path := apiPrefix + "/workspaces/" + url.PathEscape(workspaceID) + "/intents/" + url.PathEscape(intentID)
	if err := c.get(ctx, path, &in); err != nil {
		return nil, fmt.Errorf("getting intent %q: %w", intentID, err)
	}
	if err := intents.Validate(&in); err != nil {
		return nil, err
	}
	in.WorkspaceID = workspaceID
	return &in, nil
}

// --- Transport ---

// get performs a GET through the circuit breaker and decodes the JSON body
// into out.
func (c *Client) get(ctx context.Context, path string, out any) error {
	_, err := c.breaker.Execute(func() (any, error) {
		return nil, c.do(ctx, path, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("intents API temporarily unavailable: %w", err)
	}
	return err
}

func (c *Client) do(ctx context.Context, path string, out any) error {
	u := c.baseURL.JoinPath(path)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.log.Warn("request failed",
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	c.log.Debug("request completed",
		zap.String("path", path),
		zap.String("request_id", requestID),
		zap.Int("status", resp.StatusCode),
		zap.Duration("elapsed", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return readAPIError(resp)
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decoding response: %w", err)
	}
	return nil
}

func readAPIError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	apiErr := &APIError{StatusCode: resp.StatusCode}

	var parsed errorResponse
	if json.Unmarshal(body, &parsed) == nil {
		apiErr.Message = parsed.Message
		if apiErr.Message == "" {
			apiErr.Message = parsed.Error
		}
	}
	if apiErr.Message == "" {
		apiErr.Message = strings.TrimSpace(string(body))
	}
	return apiErr
}
