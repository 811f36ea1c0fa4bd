// Package explorerapi reads address histories from public block explorer HTTP APIs.
package explorerapi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
	"go.uber.org/ratelimit"
	"go.uber.org/zap"
)

const (
	defaultTimeout             = 15 * time.Second
	defaultUserAgent           = "blockinsight7000-addrindex"
	defaultBreakerMinRequests  = 10
	defaultBreakerFailureRatio = 0.6
	defaultBreakerOpenTimeout  = 30 * time.Second
	maxErrorBody               = 512
)

// ErrUnavailable is returned while the circuit breaker rejects requests.
var ErrUnavailable = errors.New("explorer api temporarily unavailable")

// Options configure the shared HTTP client. Zero values fall back to defaults; RPS 0 is unlimited.
type Options struct {
	Timeout             time.Duration
	RPS                 int
	UserAgent           string
	BreakerMinRequests  uint32
	BreakerFailureRatio float64
	BreakerOpenTimeout  time.Duration
}

// StatusError reports a non-2xx answer.
type StatusError struct {
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("GET %s: unexpected status %d: %s", e.URL, e.StatusCode, e.Body)
}

// Client performs rate limited JSON GETs behind a circuit breaker.
type Client struct {
	name      string
	doer      HTTPDoer
	limiter   ratelimit.Limiter
	breaker   *gobreaker.CircuitBreaker
	metrics   Metrics
	timeout   time.Duration
	userAgent string
	logger    *zap.Logger
}

// NewClient builds a client for one explorer.
func NewClient(name string, doer HTTPDoer, metrics Metrics, logger *zap.Logger, opts Options) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.UserAgent == "" {
		opts.UserAgent = defaultUserAgent
	}
	if opts.BreakerMinRequests == 0 {
		opts.BreakerMinRequests = defaultBreakerMinRequests
	}
	if opts.BreakerFailureRatio <= 0 {
		opts.BreakerFailureRatio = defaultBreakerFailureRatio
	}
	if opts.BreakerOpenTimeout <= 0 {
		opts.BreakerOpenTimeout = defaultBreakerOpenTimeout
	}
	if doer == nil {
		doer = http.DefaultClient
	}

	limiter := ratelimit.NewUnlimited()
	if opts.RPS > 0 {
		limiter = ratelimit.New(opts.RPS)
	}

	logger = logger.Named("explorerapi").With(zap.String("api", name))
	return &Client{
		name:    name,
		doer:    doer,
		limiter: limiter,
		breaker: gobreaker.NewCircuitBreaker(gobreaker.Settings{
			Name:    name,
			Timeout: opts.BreakerOpenTimeout,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				ratio := float64(counts.TotalFailures) / float64(counts.Requests)
				return counts.Requests >= opts.BreakerMinRequests && ratio >= opts.BreakerFailureRatio
			},
			OnStateChange: func(_ string, from, to gobreaker.State) {
				logger.Warn("circuit breaker state changed",
					zap.Stringer("from", from),
					zap.Stringer("to", to))
			},
		}),
		metrics:   metrics,
		timeout:   opts.Timeout,
		userAgent: opts.UserAgent,
		logger:    logger,
	}
}

// Name returns the explorer name.
func (c *Client) Name() string {
	return c.name
}

// GetJSON fetches url and decodes the body into out.
func (c *Client) GetJSON(ctx context.Context, operation, url string, out interface{}) (err error) {
	started := time.Now()
	defer func() {
		c.metrics.Observe(operation, err, started)
	}()

	c.limiter.Take()

	_, err = c.breaker.Execute(func() (interface{}, error) {
		return nil, c.get(ctx, url, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%s: %w", c.name, ErrUnavailable)
	}
	return err
}

func (c *Client) get(ctx context.Context, url string, out interface{}) error {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return fmt.Errorf("build request %s: %w", url, err)
	}
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := c.doer.Do(req)
	if err != nil {
		return fmt.Errorf("GET %s: %w", url, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); cerr != nil {
			c.logger.Debug("close response body", zap.Error(cerr))
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return &StatusError{URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s: %w", url, err)
	}
	return nil
}
