package rest

import (
	"bytes"
	"context"
	"devmcp/app/config"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/samber/oops"
	"github.com/sony/gobreaker"
	"golang.org/x/time/rate"
)

const userAgent = "gabia-dev-mcp-server"

// AuthFunc decorates an outgoing request with credentials.
type AuthFunc func(req *http.Request)

func BearerAuth(token string) AuthFunc {
	return func(req *http.Request) {
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}
}

func HeaderAuth(header, value string) AuthFunc {
	return func(req *http.Request) {
		if value != "" {
			req.Header.Set(header, value)
		}
	}
}

func BasicAuth(username, password string) AuthFunc {
	return func(req *http.Request) {
		req.SetBasicAuth(username, password)
	}
}

type Options struct {
	// Service names the upstream in errors and logs
	Service string
	BaseURL string
	Auth    AuthFunc
	HTTP    config.HTTP
	// Transport overrides the default round tripper, e.g. for custom TLS
	Transport http.RoundTripper
}

// Client is a JSON REST client shared by the upstream integrations. Calls
// are rate limited and run through a circuit breaker.
type Client struct {
	service string
	baseURL string
	auth    AuthFunc
	http    *http.Client
	limiter *rate.Limiter
	breaker *gobreaker.CircuitBreaker
}

func New(opts Options) *Client {
	cfg := opts.HTTP

	breaker := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        opts.Service,
		MaxRequests: 1,
		Timeout:     cfg.BreakerTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.BreakerFailures
		},
		IsSuccessful: func(err error) bool {
			var apiErr *APIError
			if errors.As(err, &apiErr) {
				return apiErr.clientFault()
			}
			return err == nil || errors.Is(err, context.Canceled)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			slog.Warn("Circuit breaker state changed",
				slog.String("service", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()),
			)
		},
	})

	return &Client{
		service: opts.Service,
		baseURL: strings.TrimRight(opts.BaseURL, "/"),
		auth:    opts.Auth,
		http: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: opts.Transport,
		},
		limiter: rate.NewLimiter(rate.Limit(cfg.RateLimit), cfg.Burst),
		breaker: breaker,
	}
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

type response struct {
	header http.Header
	body   []byte
}

// Do sends a JSON request to baseURL+path. body, when not nil, is encoded as
// JSON. out receives the decoded response and may be nil.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, body any, out any) (http.Header, error) {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var payload []byte
	if body != nil {
		var err error
		if payload, err = json.Marshal(body); err != nil {
			return nil, oops.In(c.service).Errorf("failed to encode request body: %w", err)
		}
	}

	resp, err := c.execute(ctx, method, target, payload)
	if err != nil {
		return nil, err
	}

	if out != nil && len(bytes.TrimSpace(resp.body)) > 0 {
		if err = json.Unmarshal(resp.body, out); err != nil {
			return resp.header, oops.In(c.service).With("path", path).Errorf("failed to decode response: %w", err)
		}
	}

	return resp.header, nil
}

// Download fetches an absolute URL with the client's credentials and limits.
func (c *Client) Download(ctx context.Context, rawURL string) ([]byte, error) {
	resp, err := c.execute(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}
	return resp.body, nil
}

func (c *Client) execute(ctx context.Context, method, target string, payload []byte) (*response, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, oops.In(c.service).Errorf("rate limiter: %w", err)
	}

	result, err := c.breaker.Execute(func() (interface{}, error) {
		return c.roundTrip(ctx, method, target, payload)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, oops.In(c.service).Errorf("%s: %w", c.service, ErrCircuitOpen)
	}
	if err != nil {
		return nil, err
	}

	return result.(*response), nil
}

func (c *Client) roundTrip(ctx context.Context, method, target string, payload []byte) (*response, error) {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, oops.In(c.service).Errorf("failed to build request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.auth != nil {
		c.auth(req)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, oops.In(c.service).With("method", method).Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, oops.In(c.service).Errorf("failed to read response: %w", err)
	}

	slog.Debug("Upstream call",
		slog.String("service", c.service),
		slog.String("method", method),
		slog.String("path", req.URL.Path),
		slog.Int("status", resp.StatusCode),
		slog.Duration("duration", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &APIError{
			Service:    c.service,
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			Body:       string(data),
		}
	}

	return &response{header: resp.Header, body: data}, nil
}
