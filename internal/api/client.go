// Package api maps the catalog REST endpoints to typed calls. Functions here
// perform exactly one request each: no caching and no retries.
package api

import (
	"bytes"
	"context"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/errors"
	json "github.com/goccy/go-json"
	"github.com/google/uuid"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.uber.org/zap"

	"github.com/kingrea/backoffice/internal/catalog"
)

// DefaultTimeout bounds a single request when no timeout is configured.
const DefaultTimeout = 15 * time.Second

// maxErrorBody limits how much of an error response is read.
const maxErrorBody = 64 << 10

// Client talks to the catalog REST API.
type Client struct {
	base    *url.URL
	http    *http.Client
	token   string
	timeout time.Duration
	logger  *zap.Logger
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger routes request logs to l.
func WithLogger(l *zap.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithToken sends token as a bearer credential on every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithTimeout overrides DefaultTimeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimSpace(baseURL)
	if trimmed == "" {
		return nil, errors.New("api: base URL is required")
	}
	base, err := url.Parse(strings.TrimRight(trimmed, "/"))
	if err != nil {
		return nil, errors.Wrap(err, "api: parse base URL")
	}
	if base.Scheme != "http" && base.Scheme != "https" {
		return nil, errors.Errorf("api: unsupported scheme %q", base.Scheme)
	}
	c := &Client{
		base:    base,
		timeout: DefaultTimeout,
		logger:  zap.NewNop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	if c.http == nil {
		c.http = &http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
			Timeout:   c.timeout,
		}
	}
	return c, nil
}

// Colors returns the color resource.
func (c *Client) Colors() *Resource[catalog.Color, catalog.ColorDraft] {
	return &Resource[catalog.Color, catalog.ColorDraft]{client: c, path: "/colors"}
}

// Sizes returns the size resource.
func (c *Client) Sizes() *Resource[catalog.Size, catalog.SizeDraft] {
	return &Resource[catalog.Size, catalog.SizeDraft]{client: c, path: "/sizes"}
}

// Variants returns the product variant resource.
func (c *Client) Variants() *VariantResource {
	return &VariantResource{client: c}
}

func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.base
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// do sends one request. body is JSON-encoded when non-nil; out is decoded
// from a 2xx response when non-nil.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "encode request")
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return errors.Wrap(err, "build request")
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", uuid.New().String())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("api: request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.Error(err),
		)
		return errors.Wrapf(err, "%s %s", method, path)
	}
	defer resp.Body.Close()
	c.logger.Debug("api: request",
		zap.String("method", method),
		zap.String("path", path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("duration", time.Since(start)),
		zap.String("request_id", req.Header.Get("X-Request-ID")),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response")
	}
	if err := json.Unmarshal(data, out); err != nil {
		return errors.Wrapf(err, "decode %s %s", method, path)
	}
	return nil
}

func decodeError(resp *http.Response) error {
	se := &ServerError{Status: resp.StatusCode}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil || len(bytes.TrimSpace(data)) == 0 {
		return se
	}
	var payload struct {
		Message string              `json:"message"`
		Error   string              `json:"error"`
		Errors  map[string][]string `json:"errors"`
	}
	if json.Unmarshal(data, &payload) == nil {
		se.Message = payload.Message
		if se.Message == "" {
			se.Message = payload.Error
		}
		se.Fields = payload.Errors
	}
	return se
}

// unwrapRecord decodes a single record that may be wrapped in {"data": ...}.
func unwrapRecord(data []byte, out any) error {
	var envelope struct {
		Data json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(data, &envelope); err == nil {
		if trimmed := bytes.TrimSpace(envelope.Data); len(trimmed) > 0 && trimmed[0] == '{' {
			data = trimmed
		}
	}
	return json.Unmarshal(data, out)
}

func idPath(base string, id int64) string {
	return base + "/" + strconv.FormatInt(id, 10)
}
