package httpclient

import (
	"context"
	"crypto/tls"
	"math/rand"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"go.uber.org/zap"
)

var userAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/131.0.0.0 Safari/537.36",
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (X11; Linux x86_64; rv:133.0) Gecko/20100101 Firefox/133.0",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/605.1.15 (KHTML, like Gecko) Version/18.2 Safari/605.1.15",
}

// Options configures the polite scraping client.
type Options struct {
	ProxyURL    string
	MinDelay    time.Duration
	MaxDelay    time.Duration
	MaxRetries  int
	BaseBackoff time.Duration
	Timeout     time.Duration
	Logger      *zap.Logger
}

func (o Options) withDefaults() Options {
	if o.MinDelay == 0 {
		o.MinDelay = 2 * time.Second
	}
	if o.MaxDelay < o.MinDelay {
		o.MaxDelay = o.MinDelay + 3*time.Second
	}
	if o.MaxRetries == 0 {
		o.MaxRetries = 3
	}
	if o.BaseBackoff == 0 {
		o.BaseBackoff = 2 * time.Second
	}
	if o.Timeout == 0 {
		o.Timeout = 30 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return o
}

// Client wraps http.Client with per-host pacing, UA rotation and retry on
// 429/503 responses.
type Client struct {
	inner       *http.Client
	log         *zap.Logger
	mu          sync.Mutex
	lastReq     map[string]time.Time
	minDelay    time.Duration
	maxDelay    time.Duration
	maxRetries  int
	baseBackoff time.Duration
}

// New creates a Client with the given options.
func New(opts Options) (*Client, error) {
	opts = opts.withDefaults()

	transport := &http.Transport{
		TLSClientConfig: &tls.Config{MinVersion: tls.VersionTLS12},
	}
	if opts.ProxyURL != "" {
		proxyURL, err := url.Parse(opts.ProxyURL)
		if err != nil {
			return nil, errors.Wrap(err, "httpclient: invalid proxy URL")
		}
		transport.Proxy = http.ProxyURL(proxyURL)
	}

	return &Client{
		inner:       &http.Client{Transport: transport, Timeout: opts.Timeout},
		log:         opts.Logger,
		lastReq:     make(map[string]time.Time),
		minDelay:    opts.MinDelay,
		maxDelay:    opts.MaxDelay,
		maxRetries:  opts.MaxRetries,
		baseBackoff: opts.BaseBackoff,
	}, nil
}

// Do executes a bodiless request, retrying with exponential backoff while
// the host answers 429 or 503.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	c.setHeaders(req)

	if err := c.pace(req.Context(), req.URL.Host); err != nil {
		return nil, err
	}

	for attempt := 0; ; attempt++ {
		resp, err := c.inner.Do(req)
		if err != nil {
			return nil, errors.Wrap(err, "httpclient: request failed")
		}
		if resp.StatusCode != http.StatusTooManyRequests && resp.StatusCode != http.StatusServiceUnavailable {
			return resp, nil
		}
		if attempt+1 >= c.maxRetries {
			return resp, nil
		}
		resp.Body.Close()

		backoff := c.baseBackoff << uint(attempt)
		c.log.Warn("host throttled, backing off",
			zap.String("host", req.URL.Host),
			zap.Int("status", resp.StatusCode),
			zap.Duration("backoff", backoff),
			zap.Int("attempt", attempt+1),
			zap.Int("max_attempts", c.maxRetries),
		)
		select {
		case <-time.After(backoff):
		case <-req.Context().Done():
			return nil, req.Context().Err()
		}
	}
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("User-Agent", userAgents[rand.Intn(len(userAgents))])
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-IN,en;q=0.9,en-US;q=0.8")
	req.Header.Set("DNT", "1")
	req.Header.Set("Upgrade-Insecure-Requests", "1")
}

// pace spaces requests to the same host by a random delay in
// [minDelay, maxDelay).
func (c *Client) pace(ctx context.Context, host string) error {
	c.mu.Lock()
	last, ok := c.lastReq[host]
	c.lastReq[host] = time.Now()
	c.mu.Unlock()

	if !ok {
		return nil
	}

	delay := c.minDelay
	if spread := int64(c.maxDelay - c.minDelay); spread > 0 {
		delay += time.Duration(rand.Int63n(spread))
	}
	if wait := delay - time.Since(last); wait > 0 {
		c.log.Debug("pacing request", zap.String("host", host), zap.Duration("wait", wait))
		select {
		case <-time.After(wait):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	c.lastReq[host] = time.Now()
	c.mu.Unlock()
	return nil
}
