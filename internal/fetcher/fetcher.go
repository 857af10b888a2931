// Package fetcher retrieves site front pages under a process-wide concurrency
// cap and request rate. Failures are returned as data, never as errors.
package fetcher

import (
	"context"
	"crypto/tls"
	"fmt"
	"io"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"siteintel/internal/models"
	"siteintel/internal/proxy"
	"siteintel/internal/weburl"
)

const DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

type Config struct {
	Concurrency  int
	Rate         float64
	Burst        int
	MaxRedirects int
	MaxBodyBytes int64
	UserAgent    string
	InsecureTLS  bool
	RetryBackoff time.Duration
}

func DefaultConfig() Config {
	return Config{
		Concurrency:  10,
		Rate:         20,
		Burst:        50,
		MaxRedirects: 3,
		MaxBodyBytes: 5 << 20,
		UserAgent:    DefaultUserAgent,
		RetryBackoff: 500 * time.Millisecond,
	}
}

// Stats is a point-in-time view of fetcher load.
type Stats struct {
	Capacity      int     `json:"capacity"`
	InFlight      int64   `json:"in_flight"`
	RatePerSecond float64 `json:"rate_per_second"`
	Burst         int     `json:"burst"`
	Proxies       int     `json:"proxies"`
	Total         int64   `json:"total_fetches"`
	Failed        int64   `json:"failed_fetches"`
	Retries       int64   `json:"retries"`
}

type Fetcher struct {
	cfg     Config
	client  *http.Client
	permits chan struct{}
	limiter *rate.Limiter
	proxies *proxy.Manager
	log     *log.Logger

	inFlight atomic.Int64
	total    atomic.Int64
	failed   atomic.Int64
	retries  atomic.Int64
}

// New builds a fetcher. Non-positive limits take their defaults, except
// MaxRedirects and RetryBackoff where zero is meaningful. proxies may be nil.
func New(cfg Config, proxies *proxy.Manager, logger *log.Logger) *Fetcher {
	def := DefaultConfig()
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = def.Concurrency
	}
	if cfg.Rate <= 0 {
		cfg.Rate = def.Rate
	}
	if cfg.Burst <= 0 {
		cfg.Burst = def.Burst
	}
	if cfg.MaxRedirects < 0 {
		cfg.MaxRedirects = def.MaxRedirects
	}
	if cfg.MaxBodyBytes <= 0 {
		cfg.MaxBodyBytes = def.MaxBodyBytes
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = def.UserAgent
	}
	if cfg.RetryBackoff < 0 {
		cfg.RetryBackoff = 0
	}
	if logger == nil {
		logger = log.Default()
	}

	transport := &http.Transport{
		Proxy:               proxy.HTTPProxy,
		DialContext:         proxy.Dialer{Timeout: 10 * time.Second}.DialContext,
		TLSHandshakeTimeout: 10 * time.Second,
		TLSClientConfig: &tls.Config{
			InsecureSkipVerify: cfg.InsecureTLS,
			MinVersion:         tls.VersionTLS12,
		},
		ForceAttemptHTTP2:   true,
		MaxIdleConns:        100,
		MaxIdleConnsPerHost: 10,
		IdleConnTimeout:     90 * time.Second,
	}
	maxRedirects := cfg.MaxRedirects
	client := &http.Client{
		Transport: transport,
		CheckRedirect: func(req *http.Request, via []*http.Request) error {
			if len(via) > maxRedirects {
				return http.ErrUseLastResponse
			}
			return nil
		},
	}

	return &Fetcher{
		cfg:     cfg,
		client:  client,
		permits: make(chan struct{}, cfg.Concurrency),
		limiter: rate.NewLimiter(rate.Limit(cfg.Rate), cfg.Burst),
		proxies: proxies,
		log:     logger,
	}
}

// Fetch normalizes domain and fetches its front page, trying https before
// http for bare domains. timeout covers every attempt for this domain.
func (f *Fetcher) Fetch(ctx context.Context, domain string, timeout time.Duration) models.FetchOutcome {
	target, err := weburl.Parse(domain)
	if err != nil {
		return models.Failed(models.ErrInvalidDomain, err.Error())
	}
	return f.fetch(ctx, target.Candidates, timeout)
}

// FetchPage fetches one explicit URL, used for secondary pages of a site.
func (f *Fetcher) FetchPage(ctx context.Context, rawURL string, timeout time.Duration) models.FetchOutcome {
	target, err := weburl.Parse(rawURL)
	if err != nil {
		return models.Failed(models.ErrInvalidDomain, err.Error())
	}
	return f.fetch(ctx, target.Candidates[:1], timeout)
}

func (f *Fetcher) fetch(ctx context.Context, candidates []string, timeout time.Duration) models.FetchOutcome {
	if ctx.Err() != nil {
		return models.Failed(models.ErrSkipped, "request deadline reached before fetch started")
	}
	select {
	case f.permits <- struct{}{}:
	case <-ctx.Done():
		return models.Failed(models.ErrSkipped, "request deadline reached before fetch started")
	}
	defer func() { <-f.permits }()

	f.inFlight.Add(1)
	defer f.inFlight.Add(-1)
	f.total.Add(1)

	// Once started, a fetch runs to its own deadline even if the caller's
	// context ends.
	reqCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)
	defer cancel()
	reqCtx = proxy.WithProxy(reqCtx, f.proxies.Next())

	start := time.Now()
	var last *models.Failure
	for _, u := range candidates {
		resp, fail := f.attempt(reqCtx, u)
		if fail == nil {
			resp.Elapsed = time.Since(start)
			return models.Success(resp)
		}
		last = fail
		if fail.Kind != models.ErrConnection {
			break
		}
		f.log.Debug("fetch attempt failed", "url", u, "err", fail.Detail)
	}

	if last.Kind == models.ErrConnection {
		f.retries.Add(1)
		select {
		case <-time.After(f.cfg.RetryBackoff):
			u := candidates[len(candidates)-1]
			resp, fail := f.attempt(reqCtx, u)
			if fail == nil {
				resp.Elapsed = time.Since(start)
				return models.Success(resp)
			}
			last = fail
		case <-reqCtx.Done():
			last = &models.Failure{Kind: models.ErrFetchTimeout, Detail: fmt.Sprintf("no response within %s", timeout)}
		}
	}

	f.failed.Add(1)
	return models.Failed(last.Kind, last.Detail)
}

func (f *Fetcher) attempt(ctx context.Context, rawURL string) (models.Response, *models.Failure) {
	if err := f.limiter.Wait(ctx); err != nil {
		return models.Response{}, &models.Failure{Kind: models.ErrFetchTimeout, Detail: "rate limit wait exceeds deadline"}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return models.Response{}, &models.Failure{Kind: models.ErrInvalidDomain, Detail: err.Error()}
	}
	req.Header.Set("User-Agent", f.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := f.client.Do(req)
	if err != nil {
		return models.Response{}, classify(ctx, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, f.cfg.MaxBodyBytes))
	if err != nil && len(body) == 0 {
		return models.Response{}, classify(ctx, err)
	}

	final := resp.Request.URL
	return models.Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       decode(body, resp.Header.Get("Content-Type")),
		FinalURL:   final.String(),
		IsHTTPS:    final.Scheme == "https",
	}, nil
}

func (f *Fetcher) Stats() Stats {
	return Stats{
		Capacity:      cap(f.permits),
		InFlight:      f.inFlight.Load(),
		RatePerSecond: f.cfg.Rate,
		Burst:         f.cfg.Burst,
		Proxies:       f.proxies.Len(),
		Total:         f.total.Load(),
		Failed:        f.failed.Load(),
		Retries:       f.retries.Load(),
	}
}
