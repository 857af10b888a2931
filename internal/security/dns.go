package security

import (
	"context"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/sync/singleflight"

	"siteintel/internal/cache"
	"siteintel/internal/patterns"
	"siteintel/internal/weburl"
)

const dnsCacheTTL = 15 * time.Minute

// MailAuth is the SPF and DMARC posture of a registrable domain.
type MailAuth struct {
	HasSPF   bool
	HasDMARC bool
}

type txtLookup func(ctx context.Context, name string) ([]string, error)

// DNSChecker looks up SPF and DMARC records. Results are cached per
// registrable domain and concurrent lookups for the same domain share one
// query.
type DNSChecker struct {
	lookup txtLookup
	cache  *cache.Store
	group  singleflight.Group
	log    *log.Logger
}

// NewDNSChecker builds a checker on a resolver with a short dial timeout.
func NewDNSChecker(store *cache.Store, logger *log.Logger) *DNSChecker {
	r := &net.Resolver{
		PreferGo: true,
		Dial: func(ctx context.Context, network, address string) (net.Conn, error) {
			d := net.Dialer{Timeout: 3 * time.Second}
			return d.DialContext(ctx, network, address)
		},
	}
	return &DNSChecker{lookup: r.LookupTXT, cache: store, log: logger}
}

// Check never fails; lookup errors read as missing records.
func (c *DNSChecker) Check(ctx context.Context, host string) MailAuth {
	domain := weburl.Registrable(host)
	key := "mailauth:" + domain
	if v, ok := c.cache.Get(key); ok {
		return v.(MailAuth)
	}

	v, _, _ := c.group.Do(key, func() (any, error) {
		res := MailAuth{
			HasSPF:   c.hasTXT(ctx, domain, patterns.SPFPrefix),
			HasDMARC: c.hasTXT(ctx, patterns.DMARCLabel+domain, patterns.DMARCPrefix),
		}
		if ctx.Err() == nil {
			c.cache.Set(key, res, dnsCacheTTL)
		}
		return res, nil
	})
	return v.(MailAuth)
}

func (c *DNSChecker) hasTXT(ctx context.Context, name, prefix string) bool {
	txts, err := c.lookup(ctx, name)
	if err != nil {
		if c.log != nil {
			c.log.Debug("txt lookup failed", "name", name, "err", err)
		}
		return false
	}
	for _, txt := range txts {
		if strings.HasPrefix(strings.ToLower(strings.TrimSpace(txt)), strings.ToLower(prefix)) {
			return true
		}
	}
	return false
}
