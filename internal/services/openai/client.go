package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"subburn/internal/services"
)

const (
	DefaultBaseURL     = "https://api.openai.com/v1"
	defaultHTTPTimeout = 120 * time.Second
	maxErrorBodyBytes  = 4 << 10
)

// Config captures the runtime settings required to talk to the API.
type Config struct {
	APIKey         string
	BaseURL        string
	TimeoutSeconds int
}

// Client wraps the OpenAI REST API.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

// Option customizes the client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// NewClient constructs a client using the supplied configuration.
func NewClient(cfg Config, opts ...Option) *Client {
	timeout := defaultHTTPTimeout
	if cfg.TimeoutSeconds > 0 {
		timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	}
	client := &Client{
		cfg: Config{
			APIKey:         strings.TrimSpace(cfg.APIKey),
			BaseURL:        strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
			TimeoutSeconds: cfg.TimeoutSeconds,
		},
		httpClient: &http.Client{Timeout: timeout},
	}
	for _, opt := range opts {
		opt(client)
	}
	if client.cfg.BaseURL == "" {
		client.cfg.BaseURL = DefaultBaseURL
	}
	return client
}

// HasAPIKey reports whether the client was configured with a credential.
func (c *Client) HasAPIKey() bool {
	return c != nil && c.cfg.APIKey != ""
}

// StatusError reports a non-2xx API response.
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
	RetryAfter time.Duration
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s: http %d: %s", e.Op, e.StatusCode, summarizePayloadSnippet(apiErrorMessage(e.Body)))
}

// HTTPStatus exposes the status code to retry classification.
func (e *StatusError) HTTPStatus() int { return e.StatusCode }

// Unwrap maps the status to a services marker.
func (e *StatusError) Unwrap() error {
	switch {
	case e.StatusCode == http.StatusRequestTimeout,
		e.StatusCode == http.StatusTooManyRequests,
		e.StatusCode >= http.StatusInternalServerError:
		return services.ErrTransient
	case e.StatusCode == http.StatusUnauthorized, e.StatusCode == http.StatusForbidden:
		return services.ErrConfiguration
	default:
		return services.ErrValidation
	}
}

func (c *Client) requireKey(op string) error {
	if !c.HasAPIKey() {
		return services.Wrap(services.ErrConfiguration, "openai", op, "api key required", nil)
	}
	return nil
}

func (c *Client) endpoint(path string) (string, error) {
	endpoint, err := url.JoinPath(c.cfg.BaseURL, path)
	if err != nil {
		return "", fmt.Errorf("build url: %w", err)
	}
	return endpoint, nil
}

func (c *Client) postJSON(ctx context.Context, op, path string, payload any, out any) ([]byte, error) {
	endpoint, err := c.endpoint(path)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	encoded, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("%s: encode body: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("%s: new request: %w", op, err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req, op, out)
}

func (c *Client) do(req *http.Request, op string, out any) ([]byte, error) {
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(op, c.timeoutDuration(), err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(op, c.timeoutDuration(), fmt.Errorf("read body: %w", err))
	}
	if resp.StatusCode >= http.StatusMultipleChoices {
		retryAfter, _ := parseRetryAfter(resp.Header.Get("Retry-After"))
		if len(body) > maxErrorBodyBytes {
			body = body[:maxErrorBodyBytes]
		}
		return body, &StatusError{
			Op:         op,
			StatusCode: resp.StatusCode,
			Body:       strings.TrimSpace(string(body)),
			RetryAfter: retryAfter,
		}
	}
	if out != nil {
		if err := json.Unmarshal(body, out); err != nil {
			return body, services.Wrap(services.ErrMalformed, "openai", op, "decode response", err)
		}
	}
	return body, nil
}

// transportError tags context and network failures. Caller cancellation is
// passed through untouched; timeouts become transient.
func transportError(op string, timeout time.Duration, err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%s: %w", op, err)
	}
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return services.Wrap(services.ErrTransient, "openai", op, fmt.Sprintf("timeout=%s", timeout), err)
	}
	return services.Wrap(services.ErrTransient, "openai", op, "http error", err)
}

func (c *Client) timeoutDuration() time.Duration {
	if c == nil || c.httpClient == nil || c.httpClient.Timeout <= 0 {
		return defaultHTTPTimeout
	}
	return c.httpClient.Timeout
}

func apiErrorMessage(body string) string {
	var envelope struct {
		Error *struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.Unmarshal([]byte(body), &envelope); err == nil && envelope.Error != nil && envelope.Error.Message != "" {
		return envelope.Error.Message
	}
	return body
}

func parseRetryAfter(value string) (time.Duration, bool) {
	value = strings.TrimSpace(value)
	if value == "" {
		return 0, false
	}
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds < 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}
	if when, err := http.ParseTime(value); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			return 0, false
		}
		return delay, true
	}
	return 0, false
}

func summarizePayloadSnippet(content string) string {
	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return "<empty>"
	}
	clean := strings.Join(strings.Fields(trimmed), " ")
	const limit = 160
	runes := []rune(clean)
	if len(runes) > limit {
		clean = string(runes[:limit]) + "..."
	}
	return clean
}

// HealthCheck lists models to confirm the endpoint is reachable and the key
// is accepted.
func (c *Client) HealthCheck(ctx context.Context) error {
	const op = "health check"
	if err := c.requireKey(op); err != nil {
		return err
	}
	endpoint, err := c.endpoint("models")
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return fmt.Errorf("%s: new request: %w", op, err)
	}
	_, err = c.do(req, op, nil)
	return err
}
