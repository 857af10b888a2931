package fetcher

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"siteintel/internal/models"
)

func testFetcher(mod func(*Config)) *Fetcher {
	cfg := DefaultConfig()
	cfg.RetryBackoff = 10 * time.Millisecond
	if mod != nil {
		mod(&cfg)
	}
	return New(cfg, nil, nil)
}

func TestFetchPageSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("User-Agent") == "" {
			t.Error("missing user agent")
		}
		w.Header().Set("X-Frame-Options", "DENY")
		fmt.Fprint(w, "<html><title>ok</title></html>")
	}))
	defer srv.Close()

	out := testFetcher(nil).FetchPage(context.Background(), srv.URL, 5*time.Second)
	resp, ok := out.Response()
	if !ok {
		f, _ := out.Failure()
		t.Fatalf("expected success, got %s", f)
	}
	if resp.StatusCode != 200 || !strings.Contains(resp.Body, "<title>ok</title>") {
		t.Errorf("got %d %q", resp.StatusCode, resp.Body)
	}
	if resp.Header.Get("X-Frame-Options") != "DENY" {
		t.Error("headers not carried")
	}
	if resp.IsHTTPS || !strings.HasPrefix(resp.FinalURL, "http://") {
		t.Errorf("FinalURL = %q", resp.FinalURL)
	}
}

func TestFetchFallsBackToHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "plain")
	}))
	defer srv.Close()

	host := strings.TrimPrefix(srv.URL, "http://")
	out := testFetcher(nil).Fetch(context.Background(), host, 5*time.Second)
	resp, ok := out.Response()
	if !ok {
		f, _ := out.Failure()
		t.Fatalf("expected fallback success, got %s", f)
	}
	if !strings.HasPrefix(resp.FinalURL, "http://") || resp.Body != "plain" {
		t.Errorf("got %q %q", resp.FinalURL, resp.Body)
	}
}

func TestRedirectCap(t *testing.T) {
	var srv *httptest.Server
	srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var n int
		fmt.Sscanf(r.URL.Path, "/r/%d", &n)
		http.Redirect(w, r, fmt.Sprintf("%s/r/%d", srv.URL, n+1), http.StatusFound)
	}))
	defer srv.Close()

	f := testFetcher(func(c *Config) { c.MaxRedirects = 2 })
	out := f.FetchPage(context.Background(), srv.URL+"/r/0", 5*time.Second)
	resp, ok := out.Response()
	if !ok {
		t.Fatal("expected the last response to be returned")
	}
	if resp.StatusCode != http.StatusFound || !strings.HasSuffix(resp.FinalURL, "/r/2") {
		t.Errorf("got %d at %q", resp.StatusCode, resp.FinalURL)
	}
}

func TestTimeoutIsNotRetried(t *testing.T) {
	release := make(chan struct{})
	var hits atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits.Add(1)
		select {
		case <-r.Context().Done():
		case <-release:
		}
	}))
	defer srv.Close()
	defer close(release)

	f := testFetcher(nil)
	out := f.FetchPage(context.Background(), srv.URL, 100*time.Millisecond)
	fail, ok := out.Failure()
	if !ok || fail.Kind != models.ErrFetchTimeout {
		t.Fatalf("expected FetchTimeout, got %+v", out)
	}
	if hits.Load() != 1 {
		t.Errorf("expected one attempt, got %d", hits.Load())
	}
	if f.Stats().Retries != 0 {
		t.Error("timeouts must not be retried")
	}
}

func TestConnectionErrorRetriedOnce(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatal(err)
	}
	addr := ln.Addr().String()
	ln.Close()

	f := testFetcher(nil)
	out := f.FetchPage(context.Background(), "http://"+addr, 5*time.Second)
	fail, ok := out.Failure()
	if !ok || fail.Kind != models.ErrConnection {
		t.Fatalf("expected ConnectionError, got %+v", out)
	}
	st := f.Stats()
	if st.Retries != 1 || st.Failed != 1 || st.Total != 1 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestInvalidDomain(t *testing.T) {
	for _, d := range []string{"", "not a domain", "localhost..", "-bad-.com"} {
		out := testFetcher(nil).Fetch(context.Background(), d, time.Second)
		fail, ok := out.Failure()
		if !ok || fail.Kind != models.ErrInvalidDomain {
			t.Errorf("Fetch(%q) = %+v, want InvalidDomain", d, out)
		}
	}
}

func TestCancelledBeforePermit(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	f := testFetcher(nil)
	out := f.FetchPage(ctx, "http://127.0.0.1:1", time.Second)
	fail, ok := out.Failure()
	if !ok || fail.Kind != models.ErrSkipped {
		t.Fatalf("expected Skipped, got %+v", out)
	}
	if f.Stats().Total != 0 {
		t.Error("skipped fetch should not count as started")
	}
}

func TestConcurrencyCap(t *testing.T) {
	var cur, peak atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		n := cur.Add(1)
		for {
			p := peak.Load()
			if n <= p || peak.CompareAndSwap(p, n) {
				break
			}
		}
		time.Sleep(30 * time.Millisecond)
		cur.Add(-1)
		fmt.Fprint(w, "ok")
	}))
	defer srv.Close()

	f := testFetcher(func(c *Config) { c.Concurrency = 2 })
	var wg sync.WaitGroup
	for range 6 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			f.FetchPage(context.Background(), srv.URL, 5*time.Second)
		}()
	}
	wg.Wait()

	if peak.Load() > 2 {
		t.Errorf("peak concurrency %d exceeds cap", peak.Load())
	}
	if st := f.Stats(); st.InFlight != 0 || st.Capacity != 2 || st.Total != 6 {
		t.Errorf("Stats() = %+v", st)
	}
}

func TestBodyLimit(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, strings.Repeat("a", 100))
	}))
	defer srv.Close()

	f := testFetcher(func(c *Config) { c.MaxBodyBytes = 10 })
	resp, ok := f.FetchPage(context.Background(), srv.URL, 5*time.Second).Response()
	if !ok || len(resp.Body) != 10 {
		t.Errorf("body length = %d", len(resp.Body))
	}
}

func TestDecode(t *testing.T) {
	tests := []struct {
		name        string
		body        []byte
		contentType string
		want        string
	}{
		{"UTF-8", []byte("café"), "text/html; charset=utf-8", "café"},
		{"Latin-1 Header", []byte("caf\xe9"), "text/html; charset=iso-8859-1", "café"},
		{"Latin-1 Meta", []byte(`<meta charset="windows-1252"><p>caf` + "\xe9"), "text/html", `<meta charset="windows-1252"><p>café`},
		{"Undeclared UTF-8", []byte("<p>naïve</p>"), "", "<p>naïve</p>"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := decode(tt.body, tt.contentType); got != tt.want {
				t.Errorf("decode() = %q, want %q", got, tt.want)
			}
		})
	}
}
