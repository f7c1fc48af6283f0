// Package monitorapi is a typed client for the monitor backend's JSON API.
package monitorapi

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/okian/pagewatch/internal/domain/model"
	"github.com/okian/pagewatch/internal/obs"
	"github.com/okian/pagewatch/pkg/logger"
	"github.com/okian/pagewatch/pkg/metrics"
)

// Operation names used in logs and metrics.
const (
	OpListChecks           = "list_checks"
	OpGetCheck             = "get_check"
	OpCreateCheck          = "create_check"
	OpUpdateCheck          = "update_check"
	OpSystemStatus         = "system_status"
	OpSchedulerDiagnostics = "scheduler_diagnostics"
	OpForceSchedulerCheck  = "force_scheduler_check"
	OpManualCheck          = "manual_check"
	OpToggleStatus         = "toggle_status"
	OpDeleteCheck          = "delete_check"
)

const (
	defaultTimeout   = 10 * time.Second
	defaultUserAgent = "pagewatch-dashboard"
	maxBodyBytes     = 4 << 20
	requestIDHeader  = "X-Request-ID"
)

// Client calls the monitor API. It is safe for concurrent use.
type Client struct {
	base      *url.URL
	http      *http.Client
	timeout   time.Duration
	userAgent string
	log       logger.Logger
}

// New creates a client for the API rooted at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimSpace(baseURL))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, baseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		base:      u,
		http:      &http.Client{},
		timeout:   defaultTimeout,
		userAgent: defaultUserAgent,
		log:       logger.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}

	// Copy so a caller-supplied client is not mutated.
	hc := *c.http
	hc.Transport = obs.HTTPTransport(hc.Transport)
	if hc.Timeout == 0 {
		hc.Timeout = c.timeout
	}
	c.http = &hc
	return c, nil
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string {
	return c.base.String()
}

// ListChecks fetches GET /api/checks.
func (c *Client) ListChecks(ctx context.Context) ([]model.Check, error) {
	var out []model.Check
	if err := c.do(ctx, OpListChecks, http.MethodGet, nil, &out, "api", "checks"); err != nil {
		return nil, err
	}
	if out == nil {
		out = []model.Check{}
	}
	return out, nil
}

// GetCheck fetches GET /api/checks/{id}.
func (c *Client) GetCheck(ctx context.Context, id string) (*model.Check, error) {
	var out model.Check
	if err := c.do(ctx, OpGetCheck, http.MethodGet, nil, &out, "api", "checks", id); err != nil {
		return nil, err
	}
	return &out, nil
}

// CreateCheck posts a new check and returns what the server stored.
func (c *Client) CreateCheck(ctx context.Context, in model.NewCheck) (*model.Check, error) {
	var out model.Check
	if err := c.do(ctx, OpCreateCheck, http.MethodPost, in, &out, "api", "checks"); err != nil {
		return nil, err
	}
	return &out, nil
}

// UpdateCheck replaces the editable fields of a check with PUT /api/checks/{id}.
func (c *Client) UpdateCheck(ctx context.Context, id string, in model.NewCheck) (*model.Check, error) {
	var out model.Check
	if err := c.do(ctx, OpUpdateCheck, http.MethodPut, in, &out, "api", "checks", id); err != nil {
		return nil, err
	}
	return &out, nil
}

// SystemStatus fetches GET /api/system-status.
func (c *Client) SystemStatus(ctx context.Context) (*model.SystemStatus, error) {
	var out model.SystemStatus
	if err := c.do(ctx, OpSystemStatus, http.MethodGet, nil, &out, "api", "system-status"); err != nil {
		return nil, err
	}
	return &out, nil
}

// SchedulerDiagnostics fetches GET /api/scheduler-diagnostics.
func (c *Client) SchedulerDiagnostics(ctx context.Context) (*model.SchedulerDiagnostics, error) {
	var out model.SchedulerDiagnostics
	if err := c.do(ctx, OpSchedulerDiagnostics, http.MethodGet, nil, &out, "api", "scheduler-diagnostics"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ForceSchedulerCheck posts an empty POST /api/scheduler-force-check.
func (c *Client) ForceSchedulerCheck(ctx context.Context) (model.ForceCheckResult, error) {
	out := model.ForceCheckResult{}
	if err := c.do(ctx, OpForceSchedulerCheck, http.MethodPost, nil, &out, "api", "scheduler-force-check"); err != nil {
		return nil, err
	}
	return out, nil
}

// ManualCheck runs a check immediately.
func (c *Client) ManualCheck(ctx context.Context, id string) (*model.ManualCheckResult, error) {
	var out model.ManualCheckResult
	if err := c.do(ctx, OpManualCheck, http.MethodPost, nil, &out, "api", "checks", id, "manual-check"); err != nil {
		return nil, err
	}
	return &out, nil
}

// ToggleStatus flips a check between active and paused.
func (c *Client) ToggleStatus(ctx context.Context, id string) (*model.ToggleResult, error) {
	var out model.ToggleResult
	if err := c.do(ctx, OpToggleStatus, http.MethodPost, nil, &out, "api", "checks", id, "toggle-status"); err != nil {
		return nil, err
	}
	return &out, nil
}

// DeleteCheck removes a check.
func (c *Client) DeleteCheck(ctx context.Context, id string) (*model.DeleteResult, error) {
	var out model.DeleteResult
	if err := c.do(ctx, OpDeleteCheck, http.MethodDelete, nil, &out, "api", "checks", id); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) do(ctx context.Context, op, method string, body, out any, path ...string) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return &TransportError{Op: op, Err: fmt.Errorf("encode request: %w", err)}
		}
		reader = bytes.NewReader(buf)
	}

	segments := make([]string, len(path))
	for i, p := range path {
		segments[i] = url.PathEscape(p)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.base.JoinPath(segments...).String(), reader)
	if err != nil {
		return &TransportError{Op: op, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestIDHeader, requestID(ctx))
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	elapsed := float64(time.Since(start).Milliseconds())
	if err != nil {
		metrics.RecordUpstreamRequest(op, "error", elapsed)
		return c.fail(ctx, &TransportError{Op: op, Err: err})
	}
	defer resp.Body.Close()
	metrics.RecordUpstreamRequest(op, strconv.Itoa(resp.StatusCode), elapsed)

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return c.fail(ctx, &TransportError{Op: op, Err: fmt.Errorf("read body: %w", err)})
	}

	c.log.Debug(ctx, "monitor api call",
		logger.String("op", op),
		logger.String("method", method),
		logger.Int("status", resp.StatusCode),
		logger.Float64("duration_ms", elapsed),
	)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.fail(ctx, newAPIError(op, resp, raw))
	}
	if len(bytes.TrimSpace(raw)) == 0 {
		if method == http.MethodGet {
			return c.fail(ctx, &TransportError{Op: op, Err: fmt.Errorf("%w: empty body", ErrDecode)})
		}
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return c.fail(ctx, &TransportError{Op: op, Err: fmt.Errorf("%w: %w", ErrDecode, err)})
	}
	return nil
}

func (c *Client) fail(ctx context.Context, err error) error {
	op := ""
	var te *TransportError
	var ae *APIError
	switch {
	case errors.As(err, &te):
		op = te.Op
	case errors.As(err, &ae):
		op = ae.Op
	}
	metrics.RecordUpstreamError(op, ErrorType(err))
	c.log.Debug(ctx, "monitor api call failed", logger.String("op", op), logger.Error(err))
	return err
}

func newAPIError(op string, resp *http.Response, raw []byte) *APIError {
	e := &APIError{
		Op:         op,
		Status:     resp.StatusCode,
		StatusText: statusText(resp),
	}
	var payload struct {
		Error string `json:"error"`
	}
	if json.Unmarshal(raw, &payload) == nil {
		e.Message = payload.Error
	}
	return e
}

// statusText prefers the reason phrase the server sent.
func statusText(resp *http.Response) string {
	if _, reason, ok := strings.Cut(resp.Status, " "); ok && reason != "" {
		return reason
	}
	return http.StatusText(resp.StatusCode)
}

type requestIDKey struct{}

// ContextWithRequestID makes outbound calls reuse an inbound request ID.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestID(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.NewString()
}
