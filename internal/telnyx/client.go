package telnyx

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/voxkit/telnyx-mcp-gateway/internal/instrumentation"
	"github.com/voxkit/telnyx-mcp-gateway/internal/logging"
)

// APIError describes a failed Telnyx API call.
type APIError struct {
	Op         string
	StatusCode int
	Detail     string
}

func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("telnyx %s: %s (status %d)", e.Op, e.Detail, e.StatusCode)
	}
	return fmt.Sprintf("telnyx %s: status %d", e.Op, e.StatusCode)
}

// errorEnvelope is the Telnyx error response shape.
type errorEnvelope struct {
	Errors []struct {
		Code   string `json:"code"`
		Title  string `json:"title"`
		Detail string `json:"detail"`
	} `json:"errors"`
}

// Recorder receives per-operation metrics. Implemented by the
// instrumentation package; may be nil when metrics are disabled.
type Recorder interface {
	RecordTelnyxOperation(ctx context.Context, service, operation, status string, duration time.Duration)
}

// Client calls the Telnyx REST API v2.
type Client struct {
	httpClient *http.Client
	baseURL    string
	apiKey     string
	logger     *slog.Logger
	recorder   Recorder
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithBaseURL overrides the API base URL. Used for regional endpoints and
// in tests.
func WithBaseURL(base string) Option {
	return func(c *Client) { c.baseURL = strings.TrimRight(base, "/") }
}

// WithLogger sets the logger used for request logging.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) { c.logger = logger }
}

// WithRecorder sets the metrics recorder for API operations.
func WithRecorder(rec Recorder) Option {
	return func(c *Client) { c.recorder = rec }
}

// NewClient creates a Telnyx API client authenticated with the given key.
func NewClient(apiKey string, opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		baseURL:    "https://api.telnyx.com/v2",
		apiKey:     apiKey,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// do performs a single API call. path is relative to the base URL, query may
// be nil, body is JSON-encoded when non-nil, and the response data is decoded
// into out when out is non-nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	service, operation := splitOp(op)
	ctx, span := instrumentation.StartTelnyxSpan(ctx, service, operation)
	defer func() {
		if err != nil {
			instrumentation.SetSpanError(span, err)
		} else {
			instrumentation.SetSpanSuccess(span)
		}
		span.End()
	}()

	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var reqBody io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode %s request: %w", op, err)
		}
		reqBody = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return fmt.Errorf("build %s request: %w", op, err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(ctx, op, logging.StatusError, time.Since(start))
		return fmt.Errorf("telnyx %s: %w", op, err)
	}
	defer resp.Body.Close()

	c.logger.Debug("telnyx API call",
		logging.Operation(op),
		slog.Int("status_code", resp.StatusCode),
		slog.Duration(logging.KeyDuration, time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		c.record(ctx, op, logging.StatusError, time.Since(start))
		return c.apiError(op, resp)
	}
	c.record(ctx, op, logging.StatusSuccess, time.Since(start))
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", op, err)
	}
	return nil
}

// record reports the call to the metrics recorder.
func (c *Client) record(ctx context.Context, op, status string, duration time.Duration) {
	if c.recorder == nil {
		return
	}
	service, operation := splitOp(op)
	c.recorder.RecordTelnyxOperation(ctx, service, operation, status, duration)
}

// splitOp breaks a "service.operation" name into its labels.
func splitOp(op string) (service, operation string) {
	if i := strings.IndexByte(op, '.'); i >= 0 {
		return op[:i], op[i+1:]
	}
	return op, ""
}

// apiError extracts the first error detail from the Telnyx error envelope.
func (c *Client) apiError(op string, resp *http.Response) error {
	apiErr := &APIError{Op: op, StatusCode: resp.StatusCode}
	var env errorEnvelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err == nil && len(env.Errors) > 0 {
		e := env.Errors[0]
		apiErr.Detail = e.Detail
		if apiErr.Detail == "" {
			apiErr.Detail = e.Title
		}
	}
	return apiErr
}
