// Package pipeline runs an AnalysisRequest: it splits the domains into
// batches, fetches and analyzes each batch concurrently and returns one result
// per input domain in input order.
package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/charmbracelet/log"

	"siteintel/internal/analyzer"
	"siteintel/internal/models"
	"siteintel/internal/scoring"
)

// Fetcher is the subset of *fetcher.Fetcher the pipeline needs.
type Fetcher interface {
	Fetch(ctx context.Context, domain string, timeout time.Duration) models.FetchOutcome
	FetchPage(ctx context.Context, rawURL string, timeout time.Duration) models.FetchOutcome
}

type Config struct {
	BatchDelay           time.Duration
	RequestTimeout       time.Duration
	ContactFallbackPages int
	Email                scoring.EmailConfig
	MaxPhones            int
}

func DefaultConfig() Config {
	return Config{
		BatchDelay:           200 * time.Millisecond,
		ContactFallbackPages: 3,
		Email:                scoring.DefaultEmailConfig(),
		MaxPhones:            analyzer.DefaultMaxPhones,
	}
}

// Pipeline is safe for concurrent use; every Run owns its results.
type Pipeline struct {
	fetcher  Fetcher
	analyzer *analyzer.Analyzer
	cfg      Config
	log      *log.Logger
}

func New(f Fetcher, a *analyzer.Analyzer, cfg Config, logger *log.Logger) *Pipeline {
	if logger == nil {
		logger = log.Default()
	}
	return &Pipeline{fetcher: f, analyzer: a, cfg: cfg, log: logger}
}

// Run validates req and analyzes every domain. The only error is a
// *models.ValidationError, returned before anything is fetched. Domains not
// started when ctx (or the configured request timeout) ends are reported as
// Skipped.
func (p *Pipeline) Run(ctx context.Context, req models.AnalysisRequest) ([]models.AnalysisResult, error) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		return nil, err
	}

	if p.cfg.RequestTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.cfg.RequestTimeout)
		defer cancel()
	}

	opts := analyzer.Options{
		EmailPriority:  req.EmailPriority,
		Email:          p.cfg.Email,
		MaxPhones:      p.cfg.MaxPhones,
		IncludeContent: req.IncludeContent,
	}
	timeout := time.Duration(req.Timeout) * time.Second

	started := time.Now()
	results := make([]models.AnalysisResult, len(req.Domains))
	for start := 0; start < len(req.Domains); start += req.BatchSize {
		end := min(start+req.BatchSize, len(req.Domains))

		if start > 0 && p.cfg.BatchDelay > 0 {
			select {
			case <-time.After(p.cfg.BatchDelay):
			case <-ctx.Done():
			}
		}

		var wg sync.WaitGroup
		for i := start; i < end; i++ {
			if ctx.Err() != nil {
				results[i] = p.analyzer.Analyze(ctx, req.Domains[i], models.Failed(models.ErrSkipped, "request deadline reached"), opts)
				continue
			}
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				results[i] = p.analyzeOne(ctx, req.Domains[i], opts, timeout)
			}(i)
		}
		wg.Wait()

		p.log.Debug("batch complete", "from", start, "to", end, "of", len(req.Domains))
	}

	p.log.Info("request complete", "domains", len(req.Domains), "elapsed", time.Since(started).Round(time.Millisecond))
	return results, nil
}

func (p *Pipeline) analyzeOne(ctx context.Context, domain string, opts analyzer.Options, timeout time.Duration) (res models.AnalysisResult) {
	defer func() {
		if r := recover(); r != nil {
			p.log.Error("analysis panicked", "domain", domain, "panic", r)
			res = p.analyzer.Analyze(ctx, domain, models.Failed(models.ErrInternal, fmt.Sprint(r)), opts)
		}
	}()

	outcome := p.fetcher.Fetch(ctx, domain, timeout)
	res = p.analyzer.Analyze(ctx, domain, outcome, opts)

	if res.Status == models.StatusActive && len(res.Emails) == 0 && p.cfg.ContactFallbackPages > 0 {
		p.contactFallback(ctx, &res, opts, timeout)
	}
	if res.Status == models.StatusError {
		p.log.Warn("domain failed", "domain", domain, "detail", res.ErrorDetail)
	}
	return res
}
