// Package transport performs the HTTP calls for venue adapters: one request,
// one response, no retries. It owns rate limiting and the circuit breaker.
package transport

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	"github.com/rs/zerolog"
	"resty.dev/v3"

	"tradegate/internal/circuitbreaker"
	"tradegate/internal/ratelimit"
	"tradegate/pkg/core"
)

// numbers keeps numeric literals as json.Number so order ids and amounts
// survive decoding without float rounding.
var numbers = sonic.Config{UseNumber: true}.Froze()

// Client sends fully signed requests. It implements core.Fetcher.
type Client struct {
	secure   *resty.Client
	insecure *resty.Client
	limiter  *ratelimit.Limiter
	breaker  *circuitbreaker.Breaker
	logger   zerolog.Logger
	config   *core.Config

	mu     sync.RWMutex
	closed bool
}

// NewClient creates a transport client from config.
func NewClient(config *core.Config, logger zerolog.Logger) *Client {
	c := &Client{
		secure:   resty.New(),
		insecure: resty.New().SetTLSClientConfig(&tls.Config{InsecureSkipVerify: true}), //nolint:gosec
		limiter:  ratelimit.New(config.RateLimitRequests, config.RateLimitPeriod),
		logger:   logger.With().Str("component", "transport").Logger(),
		config:   config,
	}
	if config.CircuitBreakerEnabled {
		c.breaker = circuitbreaker.New(circuitbreaker.Config{
			FailThreshold:    config.CircuitBreakerFailThreshold,
			SuccessThreshold: config.CircuitBreakerSuccessThreshold,
			Timeout:          config.CircuitBreakerTimeout,
		})
	}
	return c
}

// SetBucketLimit caps one request class, see ratelimit.ClassTrade and ratelimit.ClassQuery.
func (c *Client) SetBucketLimit(class string, rps, burst int) {
	c.limiter.SetBucket(class, rps, burst)
}

// Breaker returns the circuit breaker, or nil when it is disabled.
func (c *Client) Breaker() *circuitbreaker.Breaker {
	return c.breaker
}

// Close releases idle connections. Fetch fails after Close.
func (c *Client) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	c.closed = true
	return errors.Join(c.secure.Close(), c.insecure.Close())
}

// Fetch sends req.URL verbatim with req.Payload as the body.
// A 2xx response yields the decoded JSON document, the body text when it is
// not JSON, or an empty object when it is empty. Everything else yields a
// *core.ExchangeError and a nil payload.
func (c *Client) Fetch(ctx context.Context, req *core.Request) (int, any, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.closed {
		return 0, nil, c.newError(core.ErrorTypeNetwork, 0, core.ErrClientClosed.Error()).
			WithCode(core.ErrCodeClientClosed).
			WithCause(core.ErrClientClosed)
	}

	if c.breaker != nil && !c.breaker.Allow() {
		return 0, nil, c.newError(core.ErrorTypeNetwork, 0, core.ErrCircuitBreakerOpen.Error()).
			WithCode(core.ErrCodeCircuitBreaker).
			WithCause(core.ErrCircuitBreakerOpen)
	}

	class := ratelimit.ClassQuery
	if req.Op.IsTrading() {
		class = ratelimit.ClassTrade
	}
	if err := c.limiter.Wait(ctx, class); err != nil {
		return 0, nil, c.transportError(err)
	}

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = c.config.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	r := c.clientFor(req).R().SetContext(ctx)
	for k, v := range req.Headers {
		r.SetHeader(k, v)
	}
	if len(req.Payload) > 0 {
		r.SetBody(req.Payload)
	}

	start := time.Now()
	resp, err := r.Execute(req.Method, req.URL)
	elapsed := time.Since(start)
	if err != nil {
		c.record(false)
		c.logger.Warn().Err(err).
			Str("op", req.Op.String()).
			Str("method", req.Method).
			Str("path", req.Path).
			Dur("elapsed", elapsed).
			Msg("http request failed")
		return 0, nil, c.transportError(err)
	}

	status := resp.StatusCode()
	body := resp.Bytes()
	c.logger.Debug().
		Str("op", req.Op.String()).
		Str("method", req.Method).
		Str("path", req.Path).
		Int("status", status).
		Int("size", len(body)).
		Dur("elapsed", elapsed).
		Msg("http response")

	if status >= 200 && status < 300 {
		c.record(true)
		return status, decodeBody(body), nil
	}

	c.record(status < http.StatusInternalServerError)
	return status, nil, c.statusError(status, body)
}

func (c *Client) clientFor(req *core.Request) *resty.Client {
	if c.config.InsecureSkipVerify || !req.VerifyTLS {
		return c.insecure
	}
	return c.secure
}

func (c *Client) record(success bool) {
	if c.breaker != nil {
		c.breaker.Record(success)
	}
}

func (c *Client) newError(t core.ErrorType, status int, message string) *core.ExchangeError {
	return core.NewExchangeError(c.config.Exchange, t, status, message)
}

func (c *Client) transportError(err error) *core.ExchangeError {
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		return c.newError(core.ErrorTypeTimeout, 0, err.Error()).
			WithCode(core.ErrCodeTimeout).
			WithCause(err)
	}
	return c.newError(core.ErrorTypeNetwork, 0, err.Error()).
		WithCode(core.ErrCodeNetwork).
		WithCause(err)
}

func (c *Client) statusError(status int, body []byte) *core.ExchangeError {
	var (
		t    core.ErrorType
		code core.ErrorCode
	)
	switch {
	case status == http.StatusUnauthorized || status == http.StatusForbidden:
		t, code = core.ErrorTypeAuthentication, core.ErrCodeAuth
	case status == http.StatusNotFound:
		t, code = core.ErrorTypeNotFound, core.ErrCodeNotFound
	case status == http.StatusTooManyRequests:
		t, code = core.ErrorTypeRateLimit, core.ErrCodeRateLimit
	case status >= http.StatusInternalServerError:
		t, code = core.ErrorTypeServerError, core.ErrCodeServerError
	default:
		t, code = core.ErrorTypeBadRequest, core.ErrCodeBadRequest
	}
	message := http.StatusText(status)
	if message == "" {
		message = "unexpected status"
	}
	return c.newError(t, status, message).WithCode(code).WithRaw(decodeBody(body))
}

func decodeBody(body []byte) any {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 {
		return map[string]any{}
	}
	var v any
	if err := numbers.Unmarshal(trimmed, &v); err != nil {
		return string(body)
	}
	return v
}
