package fetch

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"golang.org/x/time/rate"

	"github.com/MrSnakeDoc/statuswall/internal/domain"
	"github.com/MrSnakeDoc/statuswall/internal/utils"
	"github.com/MrSnakeDoc/statuswall/internal/version"
)

const (
	defaultTimeout      = 10 * time.Second
	defaultMaxBodyBytes = 1 << 20
)

// Options tunes outbound status requests.
type Options struct {
	Timeout      time.Duration // per request, rate-limit wait included
	Retries      int           // extra attempts on transport errors only
	RatePerHost  float64       // requests per second per host, <= 0 disables
	BurstPerHost int
	UserAgent    string
	MaxBodyBytes int64
}

// Response is a fully read, successful (2xx) response.
type Response struct {
	URL         string
	StatusCode  int
	ContentType string
	Body        []byte
}

// Client performs bounded GET requests against third-party status pages.
// It is safe for concurrent use.
type Client struct {
	http     *retryablehttp.Client
	opts     Options
	limiters map[string]*rate.Limiter
	mu       sync.Mutex
}

// New builds a Client. A nil base uses a fresh http.Client.
func New(opts Options, base *http.Client) *Client {
	if opts.Timeout <= 0 {
		opts.Timeout = defaultTimeout
	}
	if opts.MaxBodyBytes <= 0 {
		opts.MaxBodyBytes = defaultMaxBodyBytes
	}
	if opts.UserAgent == "" {
		opts.UserAgent = version.UserAgent()
	}
	if opts.Retries < 0 {
		opts.Retries = 0
	}
	if opts.BurstPerHost <= 0 {
		opts.BurstPerHost = 1
	}
	if base == nil {
		base = &http.Client{}
	}

	rc := retryablehttp.NewClient()
	rc.HTTPClient = base
	rc.Logger = nil
	rc.RetryMax = opts.Retries
	rc.RetryWaitMin = 200 * time.Millisecond
	rc.RetryWaitMax = 2 * time.Second
	// Only transport failures are retried; an HTTP answer is final.
	rc.CheckRetry = func(ctx context.Context, _ *http.Response, err error) (bool, error) {
		if ctx.Err() != nil {
			return false, ctx.Err()
		}
		return err != nil, nil
	}
	// Hand the last response or error back untouched.
	rc.ErrorHandler = func(resp *http.Response, err error, _ int) (*http.Response, error) {
		return resp, err
	}

	return &Client{
		http:     rc,
		opts:     opts,
		limiters: make(map[string]*rate.Limiter),
	}
}

// Get issues a GET and reads the body. Non-2xx codes, network failures and
// timeouts come back as *domain.TransportError.
func (c *Client) Get(ctx context.Context, rawURL string) (Response, error) {
	ctx, cancel := context.WithTimeout(ctx, c.opts.Timeout)
	defer cancel()

	if err := c.waitForRateLimit(ctx, rawURL); err != nil {
		return Response{}, &domain.TransportError{URL: rawURL, Err: err}
	}

	req, err := retryablehttp.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return Response{}, &domain.TransportError{URL: rawURL, Err: err}
	}
	req.Header.Set("User-Agent", c.opts.UserAgent)
	req.Header.Set("Accept", "*/*")

	resp, err := c.http.Do(req)
	if err != nil {
		return Response{}, &domain.TransportError{URL: rawURL, Err: unwrapURLError(err)}
	}
	defer utils.DrainAndClose(resp.Body)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return Response{}, &domain.TransportError{URL: rawURL, StatusCode: resp.StatusCode}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.opts.MaxBodyBytes))
	if err != nil {
		return Response{}, &domain.TransportError{URL: rawURL, Err: fmt.Errorf("read body: %w", err)}
	}

	return Response{
		URL:         rawURL,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
	}, nil
}

func (c *Client) waitForRateLimit(ctx context.Context, rawURL string) error {
	limiter := c.getLimiter(hostOf(rawURL))
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

func (c *Client) getLimiter(host string) *rate.Limiter {
	if c.opts.RatePerHost <= 0 || host == "" {
		return nil
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	limiter, ok := c.limiters[host]
	if ok {
		return limiter
	}
	limiter = rate.NewLimiter(rate.Limit(c.opts.RatePerHost), c.opts.BurstPerHost)
	c.limiters[host] = limiter
	return limiter
}

func hostOf(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return strings.ToLower(u.Host)
}

// unwrapURLError strips the "Get \"url\":" prefix, the URL is reported
// separately.
func unwrapURLError(err error) error {
	var ue *url.Error
	if errors.As(err, &ue) {
		return ue.Err
	}
	return err
}
