package proxy

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync/atomic"
)

// Manager hands out proxies round-robin. A nil or empty Manager disables
// proxying.
type Manager struct {
	proxies []*url.URL
	counter uint64
}

// New parses the proxy list. Blank entries are skipped.
func New(proxyList []string) (*Manager, error) {
	var parsed []*url.URL

	for _, p := range proxyList {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		u, err := url.Parse(p)
		if err != nil {
			return nil, fmt.Errorf("invalid proxy URL '%s': %w", p, err)
		}
		switch u.Scheme {
		case "http", "https", "socks5", "socks5h":
		default:
			return nil, fmt.Errorf("invalid proxy URL '%s': unsupported scheme %q", p, u.Scheme)
		}
		if u.Host == "" {
			return nil, fmt.Errorf("invalid proxy URL '%s': missing host", p)
		}
		parsed = append(parsed, u)
	}

	return &Manager{proxies: parsed}, nil
}

func (m *Manager) Next() *url.URL {
	if m == nil || len(m.proxies) == 0 {
		return nil
	}
	n := atomic.AddUint64(&m.counter, 1)
	return m.proxies[(n-1)%uint64(len(m.proxies))]
}

func (m *Manager) Enabled() bool {
	return m != nil && len(m.proxies) > 0
}

func (m *Manager) Len() int {
	if m == nil {
		return 0
	}
	return len(m.proxies)
}

type ctxKey struct{}

// WithProxy pins p for every request made with the returned context, so all
// attempts for one domain leave through the same exit.
func WithProxy(ctx context.Context, p *url.URL) context.Context {
	if p == nil {
		return ctx
	}
	return context.WithValue(ctx, ctxKey{}, p)
}

func FromContext(ctx context.Context) *url.URL {
	p, _ := ctx.Value(ctxKey{}).(*url.URL)
	return p
}

// HTTPProxy is an http.Transport Proxy hook. SOCKS proxies are handled by
// DialContext instead.
func HTTPProxy(req *http.Request) (*url.URL, error) {
	p := FromContext(req.Context())
	if p == nil || isSOCKS(p) {
		return nil, nil
	}
	return p, nil
}

func isSOCKS(p *url.URL) bool {
	return strings.HasPrefix(p.Scheme, "socks5")
}
