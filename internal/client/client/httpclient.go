package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"time"

	"github.com/dmitrijs2005/clinicdesk/internal/client/metrics"
	"github.com/dmitrijs2005/clinicdesk/internal/logging"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	defaultTimeout  = 30 * time.Second
	headerRequestID = "X-Request-ID"
)

// TokenSource supplies the bearer token for outgoing requests. An empty
// token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// Request describes one API call. An empty Method means POST, which the
// admin API uses for reads as well as writes.
type Request struct {
	Method  string
	Body    Body
	Headers map[string]string
}

// Envelope is the standard response wrapper.
type Envelope struct {
	Status  *int            `json:"status,omitempty"`
	Message string          `json:"message,omitempty"`
	Data    json.RawMessage `json:"data,omitempty"`
	Errors  []FieldError    `json:"errors,omitempty"`
}

// Blob is a binary response such as a booking export.
type Blob struct {
	Data        []byte
	ContentType string
	Filename    string
}

type Option func(*HTTPClient)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *HTTPClient) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *HTTPClient) { c.timeout = d }
}

func WithLogger(l logging.Logger) Option {
	return func(c *HTTPClient) { c.logger = l }
}

// WithRateLimit caps outgoing requests at rps per second. rps <= 0 disables
// the limiter.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *HTTPClient) {
		if rps <= 0 {
			c.limiter = nil
			return
		}
		if burst < 1 {
			burst = 1
		}
		c.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
}

func WithMetrics(m *metrics.APIMetrics) Option {
	return func(c *HTTPClient) { c.metrics = m }
}

// WithUnauthorizedHandler registers fn to run when the server rejects a
// request that carried a token.
func WithUnauthorizedHandler(fn func(ctx context.Context)) Option {
	return func(c *HTTPClient) { c.onUnauthorized = fn }
}

// HTTPClient is the single choke point for calls to the admin API.
type HTTPClient struct {
	baseURL        string
	tokens         TokenSource
	http           *http.Client
	timeout        time.Duration
	logger         logging.Logger
	limiter        *rate.Limiter
	metrics        *metrics.APIMetrics
	onUnauthorized func(ctx context.Context)
}

func NewHTTPClient(baseURL string, tokens TokenSource, opts ...Option) *HTTPClient {
	c := &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		tokens:  tokens,
		timeout: defaultTimeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.http == nil {
		c.http = &http.Client{}
	}
	if c.timeout > 0 {
		hc := *c.http
		hc.Timeout = c.timeout
		c.http = &hc
	}
	if c.logger == nil {
		c.logger = logging.Nop()
	}
	return c
}

// Send performs a JSON call and returns the envelope when it signals
// success. Failures come back as *ValidationError, *StatusError,
// *BusinessError or *TransportError.
func (c *HTTPClient) Send(ctx context.Context, endpoint string, req Request) (*Envelope, error) {
	done := c.metrics.Start(endpoint)

	resp, token, err := c.do(ctx, endpoint, req, "application/json")
	if err != nil {
		done(metrics.OutcomeTransport)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		done(metrics.OutcomeTransport)
		return nil, &TransportError{Op: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		if !isOK(resp.StatusCode) {
			err := &StatusError{StatusCode: resp.StatusCode}
			done(outcomeOf(err))
			c.handleUnauthorized(ctx, endpoint, token, err)
			return nil, err
		}
		done(metrics.OutcomeTransport)
		return nil, &TransportError{Op: endpoint, Err: fmt.Errorf("decode response: %w", err)}
	}

	if err := normalize(resp.StatusCode, &env); err != nil {
		done(outcomeOf(err))
		c.logger.Debug(ctx, "api request failed", "endpoint", endpoint, "http_status", resp.StatusCode, "error", err)
		c.handleUnauthorized(ctx, endpoint, token, err)
		return nil, err
	}

	done(metrics.OutcomeOK)
	return &env, nil
}

// Download performs a call whose successful response is a raw file. The
// body of a failed response is still read for an error message.
func (c *HTTPClient) Download(ctx context.Context, endpoint string, req Request) (*Blob, error) {
	done := c.metrics.Start(endpoint)

	resp, token, err := c.do(ctx, endpoint, req, "*/*")
	if err != nil {
		done(metrics.OutcomeTransport)
		return nil, err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		done(metrics.OutcomeTransport)
		return nil, &TransportError{Op: endpoint, Err: fmt.Errorf("read response: %w", err)}
	}

	if !isOK(resp.StatusCode) {
		var env Envelope
		var failure error = &StatusError{StatusCode: resp.StatusCode}
		if json.Unmarshal(raw, &env) == nil {
			if nerr := normalize(resp.StatusCode, &env); nerr != nil {
				failure = nerr
			}
		}
		done(outcomeOf(failure))
		c.handleUnauthorized(ctx, endpoint, token, failure)
		return nil, failure
	}

	done(metrics.OutcomeOK)
	return &Blob{
		Data:        raw,
		ContentType: resp.Header.Get("Content-Type"),
		Filename:    filenameOf(resp.Header.Get("Content-Disposition")),
	}, nil
}

func (c *HTTPClient) do(ctx context.Context, endpoint string, req Request, accept string) (*http.Response, string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, "", &TransportError{Op: endpoint, Err: err}
		}
	}

	method := req.Method
	if method == "" {
		method = http.MethodPost
	}

	body, contentType, err := req.Body.encode()
	if err != nil {
		return nil, "", err
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, c.baseURL+endpoint, body)
	if err != nil {
		return nil, "", fmt.Errorf("build request: %w", err)
	}

	for k, v := range req.Headers {
		httpReq.Header.Set(k, v)
	}
	httpReq.Header.Set("Accept", accept)
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	requestID := uuid.NewString()
	httpReq.Header.Set(headerRequestID, requestID)

	var token string
	if c.tokens != nil {
		token = c.tokens.Token()
	}
	if token != "" {
		httpReq.Header.Set("Authorization", "Bearer "+token)
	} else {
		httpReq.Header.Del("Authorization")
	}

	started := time.Now()
	resp, err := c.http.Do(httpReq)
	if err != nil {
		c.logger.Debug(ctx, "api request", "endpoint", endpoint, "request_id", requestID, "error", err)
		return nil, "", &TransportError{Op: endpoint, Err: err}
	}
	c.logger.Debug(ctx, "api request",
		"endpoint", endpoint,
		"method", method,
		"http_status", resp.StatusCode,
		"request_id", requestID,
		"duration", time.Since(started),
	)
	return resp, token, nil
}

// handleUnauthorized reports a rejected credential. A 401 from the login
// endpoint means bad credentials for the new attempt, not an expired token.
func (c *HTTPClient) handleUnauthorized(ctx context.Context, endpoint, token string, err error) {
	if token == "" || endpoint == PathLogin || c.onUnauthorized == nil || !errors.Is(err, ErrUnauthorized) {
		return
	}
	c.onUnauthorized(ctx)
}

// normalize applies the failure precedence: field errors, then the HTTP
// status, then the envelope's own status.
func normalize(httpStatus int, env *Envelope) error {
	if len(env.Errors) > 0 {
		return &ValidationError{StatusCode: httpStatus, Fields: env.Errors}
	}
	if !isOK(httpStatus) {
		return &StatusError{StatusCode: httpStatus, Message: strings.TrimSpace(env.Message)}
	}
	if env.Status != nil && !isSuccessStatus(*env.Status) {
		msg := strings.TrimSpace(env.Message)
		if msg == "" {
			msg = fmt.Sprintf("Request failed with status %d", *env.Status)
		}
		return &BusinessError{Status: *env.Status, Message: msg}
	}
	return nil
}

func isOK(code int) bool { return code >= 200 && code <= 299 }

func isSuccessStatus(code int) bool {
	return code == http.StatusOK || code == http.StatusCreated
}

func outcomeOf(err error) string {
	var (
		ve *ValidationError
		se *StatusError
		be *BusinessError
	)
	switch {
	case errors.As(err, &ve):
		return metrics.OutcomeValidation
	case errors.As(err, &se):
		return metrics.OutcomeStatus
	case errors.As(err, &be):
		return metrics.OutcomeBusiness
	default:
		return metrics.OutcomeTransport
	}
}

func filenameOf(disposition string) string {
	if disposition == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(disposition)
	if err != nil {
		return ""
	}
	return params["filename"]
}
