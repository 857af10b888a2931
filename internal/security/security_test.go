package security

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"siteintel/internal/cache"
	"siteintel/internal/models"
)

func TestAnalyze(t *testing.T) {
	tests := []struct {
		name     string
		finalURL string
		headers  http.Header
		expected models.SecurityFlags
	}{
		{
			name:     "No Headers",
			finalURL: "http://acme.io/",
			expected: models.SecurityFlags{},
		},
		{
			name:     "HTTPS Only",
			finalURL: "https://acme.io/",
			headers:  http.Header{},
			expected: models.SecurityFlags{IsHTTPS: true},
		},
		{
			name:     "All Headers",
			finalURL: "HTTPS://acme.io/",
			headers: http.Header{
				"Strict-Transport-Security": {"max-age=63072000"},
				"Content-Security-Policy":   {"default-src 'self'"},
				"X-Frame-Options":           {"DENY"},
			},
			expected: models.SecurityFlags{IsHTTPS: true, HasHSTS: true, HasCSP: true, HasXFrameOptions: true},
		},
		{
			name:     "Empty Header Value",
			finalURL: "https://acme.io/",
			headers:  http.Header{"X-Frame-Options": {" "}},
			expected: models.SecurityFlags{IsHTTPS: true},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Analyze(tt.finalURL, tt.headers); got != tt.expected {
				t.Errorf("got %+v, want %+v", got, tt.expected)
			}
		})
	}
}

func TestDNSChecker(t *testing.T) {
	var calls atomic.Int32
	records := map[string][]string{
		"acme.io":        {"google-site-verification=abc", "v=spf1 include:_spf.google.com ~all"},
		"_dmarc.acme.io": {"v=DMARC1; p=reject"},
	}
	c := &DNSChecker{
		cache: cache.New(),
		lookup: func(_ context.Context, name string) ([]string, error) {
			calls.Add(1)
			if r, ok := records[name]; ok {
				return r, nil
			}
			return nil, errors.New("no such host")
		},
	}

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got := c.Check(context.Background(), "www.acme.io")
			if !got.HasSPF || !got.HasDMARC {
				t.Errorf("Check() = %+v", got)
			}
		}()
	}
	wg.Wait()

	if n := calls.Load(); n > 16 {
		t.Errorf("expected lookups to be shared, got %d", n)
	}
	before := calls.Load()
	c.Check(context.Background(), "shop.acme.io")
	if calls.Load() != before {
		t.Error("expected cached result for the same registrable domain")
	}

	if got := c.Check(context.Background(), "other.io"); got.HasSPF || got.HasDMARC {
		t.Errorf("missing records should read false, got %+v", got)
	}
}
