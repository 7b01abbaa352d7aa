// Package wire is the HTTP transport shared by the hosted and local
// provider adapters. It posts JSON, applies the per-request deadline and an
// optional token-bucket rate limit, and classifies failures into the
// provider error taxonomy.
package wire

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/drafter/internal/core/domain"
)

// DefaultTimeout is the per-request deadline used when none is configured.
const DefaultTimeout = 45 * time.Second

// maxErrorBody bounds how much of an error response is kept in the error.
const maxErrorBody = 512

// Client sends JSON requests on behalf of one provider.
type Client struct {
	provider string
	http     *http.Client
	timeout  time.Duration
	limiter  *rate.Limiter
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithRateLimit throttles requests to rps per second. Zero disables throttling.
func WithRateLimit(rps float64) Option {
	return func(c *Client) {
		if rps > 0 {
			c.limiter = rate.NewLimiter(rate.Limit(rps), 1)
		}
	}
}

// New creates a client for the named provider.
func New(provider string, timeout time.Duration, opts ...Option) *Client {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		provider: provider,
		http:     &http.Client{},
		timeout:  timeout,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Timeout returns the per-request deadline.
func (c *Client) Timeout() time.Duration {
	return c.timeout
}

// PostJSON sends in as a JSON body to url and decodes the response into out.
// Failures are returned as *domain.ProviderError values.
func (c *Client) PostJSON(ctx context.Context, url string, headers map[string]string, in, out any) error {
	body, err := json.Marshal(in)
	if err != nil {
		return domain.NewProviderError(c.provider, domain.ErrProviderError, 0, fmt.Errorf("marshal request: %w", err))
	}

	resp, cancel, err := c.do(ctx, http.MethodPost, url, headers, bytes.NewReader(body))
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	if err := c.checkStatus(resp); err != nil {
		return err
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return c.classify(fmt.Errorf("decode response: %w", err), 0)
	}
	return nil
}

// Get sends a GET request to url and checks the status. Used for pings.
func (c *Client) Get(ctx context.Context, url string, headers map[string]string) error {
	resp, cancel, err := c.do(ctx, http.MethodGet, url, headers, http.NoBody)
	if err != nil {
		return err
	}
	defer cancel()
	defer resp.Body.Close()

	return c.checkStatus(resp)
}

func (c *Client) do(
	ctx context.Context,
	method, url string,
	headers map[string]string,
	body io.Reader,
) (*http.Response, context.CancelFunc, error) {
	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)

	if c.limiter != nil {
		if err := c.limiter.Wait(reqCtx); err != nil {
			cancel()
			return nil, nil, c.classify(fmt.Errorf("rate limit: %w", err), 0)
		}
	}

	req, err := http.NewRequestWithContext(reqCtx, method, url, body)
	if err != nil {
		cancel()
		return nil, nil, domain.NewProviderError(c.provider, domain.ErrProviderError, 0, fmt.Errorf("create request: %w", err))
	}
	if method == http.MethodPost {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		cancel()
		return nil, nil, c.classify(fmt.Errorf("send request: %w", err), 0)
	}
	return resp, cancel, nil
}

func (c *Client) checkStatus(resp *http.Response) error {
	if resp.StatusCode < http.StatusBadRequest {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
	if err != nil {
		return c.classify(fmt.Errorf("read error response: %w", err), resp.StatusCode)
	}
	msg := strings.TrimSpace(string(data))
	if msg == "" {
		msg = http.StatusText(resp.StatusCode)
	}
	return domain.NewProviderError(c.provider, domain.ErrProviderError, resp.StatusCode, errors.New(msg))
}

// classify maps a transport failure to ErrProviderTimeout or ErrProviderError.
func (c *Client) classify(err error, status int) error {
	if IsTimeout(err) {
		return domain.NewProviderError(c.provider, domain.ErrProviderTimeout, status, err)
	}
	return domain.NewProviderError(c.provider, domain.ErrProviderError, status, err)
}

// IsTimeout reports whether err is a deadline or network timeout.
func IsTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

// JoinURL joins a base URL and a path without doubling slashes.
func JoinURL(base, path string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
