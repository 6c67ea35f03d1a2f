package enrichment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"orgbook/pkg/platform/circuit"
)

const (
	defaultTimeout = 3 * time.Second

	// Responses are small JSON objects; anything larger is suspect.
	maxResponseBytes = 64 << 10
)

// Client queries the company-profile API over HTTP. Requests are bounded by a
// per-call timeout and guarded by a circuit breaker so a flapping upstream
// degrades to fast local failures instead of stalling every batch.
type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	breaker *circuit.Breaker
	logger  *slog.Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithTimeout bounds each lookup call.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithHTTPClient swaps the underlying HTTP client (tests, custom transports).
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) {
		if h != nil {
			c.http = h
		}
	}
}

// WithBreaker replaces the default circuit breaker.
func WithBreaker(b *circuit.Breaker) ClientOption {
	return func(c *Client) {
		if b != nil {
			c.breaker = b
		}
	}
}

// WithLogger sets a logger for breaker transitions.
func WithLogger(logger *slog.Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// NewClient constructs a profile API client rooted at baseURL.
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		http:    &http.Client{},
		timeout: defaultTimeout,
		breaker: circuit.New("enrichment", circuit.WithFailureThreshold(5), circuit.WithSuccessThreshold(2)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Lookup fetches the profile for a normalized domain.
// The request path segment is the normalized key itself.
func (c *Client) Lookup(ctx context.Context, domain string) (Profile, error) {
	if domain == "" {
		return Profile{}, NewLookupError(ErrorNotFound, domain, "empty domain", nil)
	}
	if c.breaker.IsOpen() {
		return Profile{}, NewLookupError(ErrorOutage, domain, "circuit open", ErrCircuitOpen)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := fmt.Sprintf("%s/companies/%s", c.baseURL, url.PathEscape(domain))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Profile{}, NewLookupError(ErrorInternal, domain, "build request", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		c.recordFailure(ctx)
		if errors.Is(err, context.DeadlineExceeded) {
			return Profile{}, NewLookupError(ErrorTimeout, domain, "lookup timed out", err)
		}
		return Profile{}, NewLookupError(ErrorOutage, domain, "lookup request failed", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		// A missing record is a valid upstream answer, not an outage.
		c.recordSuccess(ctx)
		return Profile{}, NewLookupError(ErrorNotFound, domain, "no profile for domain", nil)
	case resp.StatusCode >= 500:
		c.recordFailure(ctx)
		return Profile{}, NewLookupError(ErrorOutage, domain, fmt.Sprintf("upstream returned %d", resp.StatusCode), nil)
	case resp.StatusCode != http.StatusOK:
		c.recordSuccess(ctx)
		return Profile{}, NewLookupError(ErrorBadData, domain, fmt.Sprintf("unexpected status %d", resp.StatusCode), nil)
	}

	var profile Profile
	if err := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes)).Decode(&profile); err != nil {
		c.recordSuccess(ctx)
		return Profile{}, NewLookupError(ErrorBadData, domain, "decode response", err)
	}

	c.recordSuccess(ctx)
	return profile, nil
}

func (c *Client) recordFailure(ctx context.Context) {
	if _, change := c.breaker.RecordFailure(); change.Opened && c.logger != nil {
		c.logger.WarnContext(ctx, "enrichment circuit opened", "breaker", c.breaker.Name())
	}
}

func (c *Client) recordSuccess(ctx context.Context) {
	if _, change := c.breaker.RecordSuccess(); change.Closed && c.logger != nil {
		c.logger.InfoContext(ctx, "enrichment circuit closed", "breaker", c.breaker.Name())
	}
}
