package pipeline

import (
	"context"
	"errors"
	"net/url"
	"reflect"
	"strings"
	"sync"
	"testing"
	"time"

	"siteintel/internal/analyzer"
	"siteintel/internal/models"
)

type fakeFetcher struct {
	mu      sync.Mutex
	calls   map[string]int
	delay   map[string]time.Duration
	hang    map[string]bool
	panicOn string
	pages   map[string]string

	started  map[string]time.Time
	finished map[string]time.Time
}

func newFake() *fakeFetcher {
	return &fakeFetcher{
		calls: map[string]int{},
		delay: map[string]time.Duration{},
		hang:  map[string]bool{},
		pages: map[string]string{},

		started:  map[string]time.Time{},
		finished: map[string]time.Time{},
	}
}

func (f *fakeFetcher) Fetch(ctx context.Context, domain string, timeout time.Duration) models.FetchOutcome {
	f.mu.Lock()
	f.calls[domain]++
	f.started[domain] = time.Now()
	d, hang, body := f.delay[domain], f.hang[domain], f.pages[domain]
	f.mu.Unlock()
	defer func() {
		f.mu.Lock()
		f.finished[domain] = time.Now()
		f.mu.Unlock()
	}()

	if domain == f.panicOn {
		panic("boom")
	}
	if hang {
		time.Sleep(50 * time.Millisecond)
		return models.Failed(models.ErrFetchTimeout, "no response within "+timeout.String())
	}
	time.Sleep(d)
	if body == "" {
		body = "<html><title>" + domain + "</title><p>info@" + domain + "</p></html>"
	}
	return models.Success(models.Response{StatusCode: 200, Body: body, FinalURL: "https://" + domain + "/", IsHTTPS: true})
}

func (f *fakeFetcher) FetchPage(ctx context.Context, rawURL string, timeout time.Duration) models.FetchOutcome {
	if ctx.Err() != nil {
		return models.Failed(models.ErrSkipped, "request deadline reached")
	}
	f.mu.Lock()
	f.calls[rawURL]++
	body, ok := f.pages[rawURL]
	f.mu.Unlock()
	if !ok {
		return models.Success(models.Response{StatusCode: 404, Body: "not found", FinalURL: rawURL})
	}
	return models.Success(models.Response{StatusCode: 200, Body: body, FinalURL: rawURL, IsHTTPS: true})
}

func (f *fakeFetcher) count(key string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls[key]
}

func newPipeline(f Fetcher, mod func(*Config)) *Pipeline {
	cfg := DefaultConfig()
	cfg.BatchDelay = 0
	if mod != nil {
		mod(&cfg)
	}
	return New(f, analyzer.New(nil, nil), cfg, nil)
}

func TestBatchDelay(t *testing.T) {
	const delay = 100 * time.Millisecond
	f := newFake()
	f.delay["b.io"] = 30 * time.Millisecond
	f.delay["d.io"] = 30 * time.Millisecond

	batches := [][]string{{"a.io", "b.io"}, {"c.io", "d.io"}, {"e.io", "f.io"}}
	var domains []string
	for _, b := range batches {
		domains = append(domains, b...)
	}

	p := newPipeline(f, func(c *Config) { c.BatchDelay = delay })
	if _, err := p.Run(context.Background(), models.AnalysisRequest{Domains: domains, BatchSize: 2}); err != nil {
		t.Fatalf("Run() error = %v", err)
	}

	// Timer slack on busy machines.
	const slack = 10 * time.Millisecond
	for i := 1; i < len(batches); i++ {
		var prevEnd time.Time
		for _, d := range batches[i-1] {
			if end := f.finished[d]; end.After(prevEnd) {
				prevEnd = end
			}
		}
		for _, d := range batches[i] {
			start, ok := f.started[d]
			if !ok {
				t.Fatalf("%s was never fetched", d)
			}
			if gap := start.Sub(prevEnd); gap < delay-slack {
				t.Errorf("batch %d: %s started %v after the previous batch finished, want at least %v", i, d, gap, delay)
			}
		}
	}
}

func TestRunPreservesOrder(t *testing.T) {
	f := newFake()
	f.delay["c.io"] = 40 * time.Millisecond
	f.delay["a.io"] = 20 * time.Millisecond

	domains := []string{"c.io", "a.io", "b.io", "a.io", "not a domain", "d.io", "c.io"}
	results, err := newPipeline(f, nil).Run(context.Background(), models.AnalysisRequest{
		Domains:   domains,
		BatchSize: 3,
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(results) != len(domains) {
		t.Fatalf("got %d results for %d domains", len(results), len(domains))
	}
	for i, r := range results {
		if r.Domain != domains[i] {
			t.Errorf("results[%d].Domain = %q, want %q", i, r.Domain, domains[i])
		}
	}
	if f.count("a.io") != 2 || f.count("c.io") != 2 {
		t.Errorf("duplicates must be processed independently, calls = %v", f.calls)
	}
	if results[0].Emails[0] != "info@c.io" {
		t.Errorf("results[0].Emails = %v", results[0].Emails)
	}
}

func TestTimeoutIsolation(t *testing.T) {
	f := newFake()
	f.hang["slow.io"] = true

	domains := []string{"a1.io", "a2.io", "a3.io", "a4.io", "slow.io", "a6.io", "a7.io", "a8.io", "a9.io", "a10.io"}
	results, err := newPipeline(f, nil).Run(context.Background(), models.AnalysisRequest{Domains: domains, Timeout: 1})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	for i, r := range results {
		if i == 4 {
			if r.Status != models.StatusError || !strings.HasPrefix(r.ErrorDetail, "FetchTimeout") {
				t.Errorf("slow domain: %q %q", r.Status, r.ErrorDetail)
			}
			continue
		}
		if r.Status != models.StatusActive {
			t.Errorf("results[%d].Status = %q", i, r.Status)
		}
	}
}

func TestRunValidation(t *testing.T) {
	tests := []struct {
		name string
		req  models.AnalysisRequest
	}{
		{"No Domains", models.AnalysisRequest{}},
		{"Batch Too Large", models.AnalysisRequest{Domains: []string{"a.io"}, BatchSize: 21}},
		{"Timeout Too Large", models.AnalysisRequest{Domains: []string{"a.io"}, Timeout: 500}},
		{"Blank Pattern", models.AnalysisRequest{Domains: []string{"a.io"}, EmailPriority: []string{"info@", " "}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFake()
			results, err := newPipeline(f, nil).Run(context.Background(), tt.req)
			if !errors.Is(err, models.ErrInvalidRequest) {
				t.Errorf("err = %v, want ErrInvalidRequest", err)
			}
			if results != nil || len(f.calls) != 0 {
				t.Error("nothing should be fetched for an invalid request")
			}
		})
	}
}

func TestPanicIsolated(t *testing.T) {
	f := newFake()
	f.panicOn = "boom.io"

	results, err := newPipeline(f, nil).Run(context.Background(), models.AnalysisRequest{Domains: []string{"a.io", "boom.io", "b.io"}})
	if err != nil {
		t.Fatal(err)
	}
	if results[1].Status != models.StatusError || results[1].ErrorDetail != "Internal: boom" {
		t.Errorf("got %q %q", results[1].Status, results[1].ErrorDetail)
	}
	if results[0].Status != models.StatusActive || results[2].Status != models.StatusActive {
		t.Error("siblings of a panicking task must complete")
	}
}

func TestRequestDeadlineSkipsRemaining(t *testing.T) {
	f := newFake()
	p := newPipeline(f, func(c *Config) {
		c.RequestTimeout = 50 * time.Millisecond
		c.BatchDelay = 200 * time.Millisecond
	})

	results, err := p.Run(context.Background(), models.AnalysisRequest{
		Domains:   []string{"a.io", "b.io", "c.io"},
		BatchSize: 1,
	})
	if err != nil {
		t.Fatal(err)
	}
	want := []models.SiteStatus{models.StatusActive, models.StatusSkipped, models.StatusSkipped}
	for i, r := range results {
		if r.Status != want[i] {
			t.Errorf("results[%d].Status = %q, want %q", i, r.Status, want[i])
		}
	}
	if f.count("b.io") != 0 {
		t.Error("skipped domains must not be fetched")
	}
	if results[1].SEOGrade != models.GradeF || !strings.HasPrefix(results[1].ErrorDetail, "Skipped") {
		t.Errorf("skipped result = %+v", results[1])
	}
}

func TestCallerCancellationSkips(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	results, err := newPipeline(newFake(), nil).Run(ctx, models.AnalysisRequest{Domains: []string{"a.io", "b.io"}})
	if err != nil {
		t.Fatal(err)
	}
	for i, r := range results {
		if r.Status != models.StatusSkipped || r.Domain == "" {
			t.Errorf("results[%d] = %q %q", i, r.Domain, r.Status)
		}
	}
}

func TestContactFallback(t *testing.T) {
	f := newFake()
	f.pages["acme.io"] = `<html><body><a href="/reach-us">Contact Us</a></body></html>`
	f.pages["https://acme.io/reach-us"] = `<p>Write to <a href="mailto:sales@acme.io">sales</a> or info@acme.io</p>`

	results, err := newPipeline(f, nil).Run(context.Background(), models.AnalysisRequest{Domains: []string{"acme.io"}})
	if err != nil {
		t.Fatal(err)
	}
	r := results[0]
	if want := []string{"info@acme.io", "sales@acme.io"}; !reflect.DeepEqual(r.Emails, want) {
		t.Errorf("Emails = %v, want %v", r.Emails, want)
	}
	if r.ContactPageSource != "https://acme.io/reach-us" {
		t.Errorf("ContactPageSource = %q", r.ContactPageSource)
	}
	if f.count("https://acme.io/contact") != 0 {
		t.Error("fallback should stop at the first productive page")
	}
}

func TestContactFallbackDisabled(t *testing.T) {
	f := newFake()
	f.pages["acme.io"] = `<html><body><a href="/contact">Contact</a></body></html>`
	f.pages["https://acme.io/contact"] = `<p>info@acme.io</p>`

	p := newPipeline(f, func(c *Config) { c.ContactFallbackPages = 0 })
	results, _ := p.Run(context.Background(), models.AnalysisRequest{Domains: []string{"acme.io"}})
	if len(results[0].Emails) != 0 || f.count("https://acme.io/contact") != 0 {
		t.Errorf("fallback ran while disabled: %v", results[0].Emails)
	}
}

func TestFallbackPages(t *testing.T) {
	base, _ := url.Parse("https://acme.io/")
	detected := []models.ContactPage{
		{URL: "https://acme.io/contact-us", LinkText: "Contact", Confidence: 1},
		{URL: "https://other.io/contact", LinkText: "Partner", Confidence: 0.9},
	}

	got := fallbackPages(base, detected, 3)
	want := []string{"https://acme.io/contact-us", "https://acme.io/contact", "https://acme.io/about"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("fallbackPages() = %v, want %v", got, want)
	}
}
