// Package client is the HTTP client for the remote patent search service. It
// owns request construction, credentials and the classification of transport
// failures; it knows nothing about the shape of a successful payload beyond
// "is it JSON".
package client

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/turtacn/KeyIP-Insight/pkg/errors"
)

const Version = "0.2.0"

const tracerName = "github.com/turtacn/KeyIP-Insight/pkg/client"

// maxErrorBody bounds how much of a failed response is kept for diagnostics.
const maxErrorBody = 512

// Logger defines the logging interface used by the Client.
type Logger interface {
	Debugf(format string, args ...interface{})
	Infof(format string, args ...interface{})
	Errorf(format string, args ...interface{})
}

type noopLogger struct{}

func (noopLogger) Debugf(format string, args ...interface{}) {}
func (noopLogger) Infof(format string, args ...interface{})  {}
func (noopLogger) Errorf(format string, args ...interface{}) {}

// Observer receives one call per HTTP attempt. status is 0 when no response
// was received.
type Observer interface {
	ObserveFetch(endpoint string, status int, elapsed time.Duration)
}

// Client talks to the patent search service.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	token      string
	userAgent  string
	logger     Logger
	observer   Observer
	tracer     trace.Tracer
	retryMax   int
	retryWait  time.Duration
	timeout    time.Duration
}

// HTTPError is the cause attached to an ErrCodeRemoteStatus failure.
type HTTPError struct {
	StatusCode int
	Status     string
	Body       string
	RequestID  string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("patent search: HTTP %d %s [request_id=%s]", e.StatusCode, e.Status, e.RequestID)
}

func (e *HTTPError) IsUnauthorized() bool {
	return e.StatusCode == http.StatusUnauthorized || e.StatusCode == http.StatusForbidden
}

func (e *HTTPError) IsRateLimited() bool {
	return e.StatusCode == http.StatusTooManyRequests
}

func (e *HTTPError) IsServerError() bool {
	return e.StatusCode >= 500 && e.StatusCode < 600
}

// RawPayload is a successfully fetched, syntactically valid JSON body.
type RawPayload struct {
	Body       []byte
	StatusCode int
	RequestID  string
}

// Result returns the parsed document.
func (p *RawPayload) Result() gjson.Result {
	if p == nil {
		return gjson.Result{}
	}
	return gjson.ParseBytes(p.Body)
}

// Empty reports whether the service answered with JSON null, meaning it had
// nothing to say about the query.
func (p *RawPayload) Empty() bool {
	return p == nil || p.Result().Type == gjson.Null
}

// NewClient creates a client for the service at baseURL, authenticating with
// token. Both are required. Any path on baseURL is kept as a prefix of every
// endpoint path.
func NewClient(baseURL, token string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	token = strings.TrimSpace(token)
	if baseURL == "" {
		return nil, errors.InvalidConfig("patent search base URL is empty")
	}
	if token == "" {
		return nil, errors.InvalidConfig("patent search bearer token is empty")
	}

	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInvalidConfig, "invalid patent search base URL")
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, errors.InvalidConfig("patent search base URL scheme must be http or https")
	}
	if parsed.Host == "" {
		return nil, errors.InvalidConfig("patent search base URL has no host")
	}
	parsed.Path = strings.TrimSuffix(parsed.Path, "/")
	parsed.RawQuery = ""
	parsed.Fragment = ""

	c := &Client{
		baseURL:    parsed,
		token:      token,
		httpClient: &http.Client{},
		userAgent:  fmt.Sprintf("keyip-insight/%s", Version),
		logger:     noopLogger{},
		retryWait:  500 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.tracer == nil {
		c.tracer = otel.Tracer(tracerName)
	}
	return c, nil
}

// BaseURL returns the normalized base URL.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// get performs a GET against path with params. Failures are classified as
// ErrCodeRemoteUnreachable (no response), ErrCodeRemoteStatus (non-2xx) or
// ErrCodeDataSourceParseError (body is not JSON).
func (c *Client) get(ctx context.Context, path string, params url.Values) (*RawPayload, error) {
	target := c.baseURL.JoinPath(path)
	target.RawQuery = params.Encode()

	ctx, span := c.tracer.Start(ctx, "patent_search.fetch",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("http.request.method", http.MethodGet),
			attribute.String("url.path", target.Path),
		))
	defer span.End()

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var payload *RawPayload
	attempt := 0
	op := func() error {
		attempt++
		p, err := c.once(ctx, path, target)
		if err != nil {
			if retryable(err) {
				return err
			}
			return backoff.Permanent(err)
		}
		payload = p
		return nil
	}

	var err error
	if c.retryMax > 0 {
		b := backoff.NewExponentialBackOff()
		b.InitialInterval = c.retryWait
		b.MaxElapsedTime = 0
		err = backoff.RetryNotify(op,
			backoff.WithContext(backoff.WithMaxRetries(b, uint64(c.retryMax)), ctx),
			func(err error, wait time.Duration) {
				c.logger.Infof("patent search retry %d after %v: %v", attempt, wait, err)
			})
	} else {
		err = op()
		var perm *backoff.PermanentError
		if errors.As(err, &perm) {
			err = perm.Err
		}
	}

	span.SetAttributes(attribute.Int("patent_search.attempts", attempt))
	if err != nil && errors.GetCode(err) == errors.CodeUnknown {
		err = errors.Wrap(err, errors.ErrCodeRemoteUnreachable, "patent search aborted")
	}
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, string(errors.GetCode(err)))
		return nil, err
	}
	span.SetAttributes(attribute.Int("http.response.status_code", payload.StatusCode))
	return payload, nil
}

func (c *Client) once(ctx context.Context, endpoint string, target *url.URL) (*RawPayload, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target.String(), nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteUnreachable, "failed to build patent search request")
	}

	requestID := uuid.New().String()
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("X-Request-ID", requestID)

	c.logger.Debugf("GET %s token=%s request_id=%s", target.Redacted(), maskToken(c.token), requestID)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.observe(endpoint, 0, time.Since(start))
		c.logger.Errorf("patent search request failed: %v", err)
		return nil, errors.Wrap(err, errors.ErrCodeRemoteUnreachable, "patent search service unreachable").
			WithDetail("endpoint=" + endpoint)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	elapsed := time.Since(start)
	c.observe(endpoint, resp.StatusCode, elapsed)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeRemoteUnreachable, "failed to read patent search response").
			WithDetail("endpoint=" + endpoint)
	}

	c.logger.Debugf("GET %s %d (%v)", endpoint, resp.StatusCode, elapsed)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		httpErr := &HTTPError{
			StatusCode: resp.StatusCode,
			Status:     http.StatusText(resp.StatusCode),
			Body:       truncate(string(body), maxErrorBody),
			RequestID:  requestID,
		}
		c.logger.Errorf("patent search returned %d: %s", resp.StatusCode, httpErr.Body)
		return nil, errors.Wrap(httpErr, errors.ErrCodeRemoteStatus, "patent search service returned an error status").
			WithDetail(fmt.Sprintf("endpoint=%s status=%d", endpoint, resp.StatusCode))
	}

	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || !gjson.ValidBytes(trimmed) {
		return nil, errors.New(errors.ErrCodeDataSourceParseError, "patent search response is not valid JSON").
			WithDetail(fmt.Sprintf("endpoint=%s bytes=%d", endpoint, len(body)))
	}

	return &RawPayload{Body: trimmed, StatusCode: resp.StatusCode, RequestID: requestID}, nil
}

func (c *Client) observe(endpoint string, status int, elapsed time.Duration) {
	if c.observer != nil {
		c.observer.ObserveFetch(endpoint, status, elapsed)
	}
}

// retryable reports whether another attempt could plausibly succeed:
// transport failures, 429 and 5xx.
func retryable(err error) bool {
	switch errors.GetCode(err) {
	case errors.ErrCodeRemoteUnreachable:
		return true
	case errors.ErrCodeRemoteStatus:
		var httpErr *HTTPError
		if errors.As(err, &httpErr) {
			return httpErr.IsServerError() || httpErr.IsRateLimited()
		}
	}
	return false
}

// maskToken keeps the first ten characters of a credential.
func maskToken(token string) string {
	if len(token) > 10 {
		token = token[:10]
	}
	return token + "..."
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}

//Personal.AI order the ending
