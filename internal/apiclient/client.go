// Package apiclient calls the dashboard backend over HTTP. It is the first
// tier of the resilient client.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/failsafe-go/failsafe-go"
	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/failsafe-go/failsafe-go/retrypolicy"

	apperrors "socialdash/internal/errors"
	"socialdash/internal/logging"
)

const maxBodyBytes = 4 << 20

// StatusError is returned for any non-2xx response.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("%s %s: status %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("%s %s: status %d", e.Method, e.Path, e.StatusCode)
}

// Unwrap maps the status to an application error so callers can use errors.Is.
func (e *StatusError) Unwrap() error {
	switch e.StatusCode {
	case http.StatusBadRequest:
		return apperrors.ErrValidation
	case http.StatusConflict:
		return apperrors.ErrDuplicate
	case http.StatusUnprocessableEntity:
		return apperrors.ErrInvalidTransition
	case http.StatusNotFound:
		return apperrors.ErrNotFound
	case http.StatusForbidden:
		return apperrors.ErrForbidden
	default:
		return apperrors.ErrConnection
	}
}

// Config configures a Client.
type Config struct {
	BaseURL string
	// Timeout bounds a single HTTP attempt. Zero means no client-side limit.
	Timeout        time.Duration
	MaxRetries     int
	BaseDelay      time.Duration
	CircuitBreaker bool
	HTTPClient     *http.Client
	Logger         logging.Logger
}

// Client is a JSON client for the /api endpoints. Requests carry the bearer
// token set with SetToken and any session cookies the server issued.
type Client struct {
	baseURL  *url.URL
	http     *http.Client
	executor failsafe.Executor[[]byte]
	logger   logging.Logger

	mu    sync.RWMutex
	token string
}

// New creates a Client.
func New(cfg Config) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(cfg.BaseURL, "/"))
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("invalid api base url %q", cfg.BaseURL)
	}
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: cfg.Timeout}
	}
	if httpClient.Jar == nil {
		jar, err := cookiejar.New(nil)
		if err != nil {
			return nil, err
		}
		httpClient.Jar = jar
	}
	return &Client{
		baseURL:  base,
		http:     httpClient,
		executor: newExecutor(cfg),
		logger:   logging.OrDiscard(cfg.Logger),
	}, nil
}

func newExecutor(cfg Config) failsafe.Executor[[]byte] {
	baseDelay := cfg.BaseDelay
	if baseDelay <= 0 {
		baseDelay = 100 * time.Millisecond
	}
	retries := cfg.MaxRetries
	if retries < 0 {
		retries = 0
	}
	retry := retrypolicy.NewBuilder[[]byte]().
		WithBackoff(baseDelay, 10*baseDelay).
		WithMaxRetries(retries).
		WithJitterFactor(0.1).
		HandleIf(func(_ []byte, err error) bool {
			return retryable(err)
		}).
		Build()

	if cfg.CircuitBreaker {
		cb := circuitbreaker.NewBuilder[[]byte]().
			WithFailureThresholdRatio(5, 10).
			WithDelay(15 * time.Second).
			WithSuccessThreshold(1).
			HandleIf(func(_ []byte, err error) bool {
				return retryable(err)
			}).
			Build()
		return failsafe.With[[]byte](retry, cb)
	}
	return failsafe.With[[]byte](retry)
}

// retryable reports whether err is a transport failure or a server-side status.
func retryable(err error) bool {
	if err == nil || errors.Is(err, context.Canceled) {
		return false
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.StatusCode >= 500 || se.StatusCode == http.StatusTooManyRequests
	}
	return true
}

// SetToken sets the bearer token sent with every request.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

func (c *Client) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	var payload []byte
	if in != nil {
		var err error
		if payload, err = json.Marshal(in); err != nil {
			return apperrors.Validation("encode request: %v", err)
		}
	}

	var last error
	body, err := c.executor.WithContext(ctx).Get(func() ([]byte, error) {
		b, err := c.roundTrip(ctx, method, path, query, payload)
		last = err
		return b, err
	})
	if err != nil {
		// report the attempt's own error rather than the policy's wrapper
		if last != nil && !errors.Is(err, circuitbreaker.ErrOpen) {
			err = last
		}
		c.logger.WithFields(logging.Fields{
			"method": method,
			"path":   path,
		}).WithError(err).Debug("api request failed")
		return classify(err)
	}
	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", apperrors.ErrParse, method, path, err)
	}
	return nil
}

func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, payload []byte) ([]byte, error) {
	u := *c.baseURL
	u.Path = u.Path + path
	u.RawQuery = query.Encode()

	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), reader)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			Method:     method,
			Path:       path,
			StatusCode: resp.StatusCode,
			Message:    errorMessage(body),
		}
	}
	return body, nil
}

// classify makes every failure match one of the application errors.
func classify(err error) error {
	var se *StatusError
	switch {
	case errors.As(err, &se):
		return se
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrInvalidTransition),
		errors.Is(err, apperrors.ErrParse),
		errors.Is(err, apperrors.ErrConnection):
		return err
	}
	return fmt.Errorf("%w: %w", apperrors.ErrConnection, err)
}

func errorMessage(body []byte) string {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if json.Unmarshal(body, &payload) == nil {
		if payload.Error != "" {
			return payload.Error
		}
		if payload.Message != "" {
			return payload.Message
		}
	}
	if len(body) > 200 {
		body = body[:200]
	}
	return strings.TrimSpace(string(body))
}
