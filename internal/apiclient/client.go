package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/frahmantamala/campus-resources/internal"
	"github.com/google/uuid"
)

// TokenSource supplies the bearer token and forgets it when the backend rejects it.
type TokenSource interface {
	Token() (string, error)
	Purge() error
}

type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	headers    map[string]string
	timeout    time.Duration
	metrics    *Metrics
	logger     *slog.Logger
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithHeader adds a static header to every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers[key] = value }
}

// WithTimeout bounds each call. The default is no client-side timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithMetrics(m *Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

func New(baseURL string, tokens TokenSource, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		tokens:     tokens,
		headers:    make(map[string]string),
		logger:     logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, body, out)
}

func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, body, out)
}

func (c *Client) Delete(ctx context.Context, path string, body, out any) error {
	return c.Do(ctx, http.MethodDelete, path, nil, body, out)
}

// Do performs an authenticated call. Without a usable token it fails before
// any network I/O. A 401 response purges the stored token.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	token, err := c.tokens.Token()
	if err != nil {
		return err
	}

	err = c.send(ctx, method, path, query, body, out, token)
	if appErr, ok := internal.IsAppError(err); ok && appErr.StatusCode == http.StatusUnauthorized {
		if purgeErr := c.tokens.Purge(); purgeErr != nil {
			c.logger.Error("failed to purge rejected token", "error", purgeErr)
		}
		return internal.ErrTokenRejected.WithCause(err)
	}
	return err
}

// DoAnonymous performs a call without a bearer token, used by sign-in.
func (c *Client) DoAnonymous(ctx context.Context, method, path string, body, out any) error {
	return c.send(ctx, method, path, nil, body, out, "")
}

func (c *Client) send(ctx context.Context, method, path string, query url.Values, body, out any, token string) error {
	ctx, cancel := internal.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return fmt.Errorf("failed to create HTTP request: %w", err)
	}

	requestID := internal.RequestIDFromContext(ctx)
	if requestID == "" {
		requestID = uuid.NewString()
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	for k, v := range c.headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.observe(method, path, 0, time.Since(start))
		c.logger.Error("api request failed",
			"request_id", requestID,
			"method", method,
			"path", path,
			"error", err)
		return internal.NewHTTPError(0, fmt.Sprintf("request to %s failed", path)).WithCause(err)
	}
	defer resp.Body.Close()

	c.metrics.observe(method, path, resp.StatusCode, time.Since(start))

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		message := ParseErrorBody(resp.StatusCode, respBody)
		c.logger.Warn("api request returned error status",
			"request_id", requestID,
			"method", method,
			"path", path,
			"status_code", resp.StatusCode,
			"message", message)
		return internal.NewHTTPError(resp.StatusCode, message)
	}

	c.logger.Debug("api request completed",
		"request_id", requestID,
		"method", method,
		"path", path,
		"status_code", resp.StatusCode,
		"duration_ms", time.Since(start).Milliseconds())

	if out == nil || len(bytes.TrimSpace(respBody)) == 0 {
		return nil
	}
	if err := json.Unmarshal(respBody, out); err != nil {
		return &internal.AppError{
			Type:       internal.ErrorTypeHTTP,
			Code:       internal.ErrCodeDecodeFailed,
			Message:    fmt.Sprintf("unexpected response from %s", path),
			StatusCode: resp.StatusCode,
			Cause:      err,
		}
	}
	return nil
}

type detailItem struct {
	Loc []any  `json:"loc"`
	Msg string `json:"msg"`
}

// ParseErrorBody turns a backend error body into one readable message.
// {detail: "..."} is used as is, {detail: [{loc, msg}]} is flattened to
// "loc.path: msg; ...", anything else falls back to the status text.
func ParseErrorBody(statusCode int, body []byte) string {
	var envelope struct {
		Detail  json.RawMessage `json:"detail"`
		Message string          `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil {
		if msg := flattenDetail(envelope.Detail); msg != "" {
			return msg
		}
		if envelope.Message != "" {
			return envelope.Message
		}
	}

	if text := http.StatusText(statusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", statusCode)
}

func flattenDetail(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}

	var text string
	if err := json.Unmarshal(raw, &text); err == nil {
		return text
	}

	var items []detailItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return ""
	}

	messages := make([]string, 0, len(items))
	for _, item := range items {
		if len(item.Loc) == 0 {
			messages = append(messages, item.Msg)
			continue
		}
		parts := make([]string, len(item.Loc))
		for i, p := range item.Loc {
			parts[i] = fmt.Sprint(p)
		}
		messages = append(messages, strings.Join(parts, ".")+": "+item.Msg)
	}
	return strings.Join(messages, "; ")
}

// StatusOf returns the HTTP status carried by err, or 0.
func StatusOf(err error) int {
	var appErr *internal.AppError
	if errors.As(err, &appErr) {
		return appErr.StatusCode
	}
	return 0
}
