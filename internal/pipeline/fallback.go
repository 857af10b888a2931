package pipeline

import (
	"context"
	"net/url"
	"time"

	"siteintel/internal/analyzer"
	"siteintel/internal/models"
	"siteintel/internal/patterns"
	"siteintel/internal/scoring"
	"siteintel/internal/weburl"
)

// contactFallback looks for addresses on secondary pages of the site when the
// front page had none. The first page that yields any wins.
func (p *Pipeline) contactFallback(ctx context.Context, res *models.AnalysisResult, opts analyzer.Options, timeout time.Duration) {
	base, err := url.Parse(res.FinalURL)
	if err != nil || base.Host == "" {
		return
	}

	for _, page := range fallbackPages(base, res.ContactPages, p.cfg.ContactFallbackPages) {
		if ctx.Err() != nil {
			return
		}
		candidates := p.analyzer.ContactEmails(p.fetcher.FetchPage(ctx, page, timeout))
		if emails := scoring.RankEmails(candidates, opts.EmailPriority, opts.Email); len(emails) > 0 {
			res.Emails = emails
			res.ContactPageSource = page
			p.log.Debug("emails found on contact page", "domain", res.Domain, "page", page, "count", len(emails))
			return
		}
	}
}

// fallbackPages lists detected contact pages first, then the common contact
// paths on the site root, without duplicates or the front page itself.
func fallbackPages(base *url.URL, detected []models.ContactPage, limit int) []string {
	seen := map[string]struct{}{weburl.Normalize(base): {}}
	var out []string
	add := func(u *url.URL) {
		if len(out) >= limit {
			return
		}
		key := weburl.Normalize(u)
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, u.String())
	}

	for _, cp := range detected {
		if u, ok := weburl.Resolve(base, cp.URL); ok && weburl.SameSite(u.Hostname(), base.Hostname()) {
			add(u)
		}
	}
	root := &url.URL{Scheme: base.Scheme, Host: base.Host, Path: "/"}
	for _, path := range patterns.ContactFallbackPaths {
		if u, ok := weburl.Resolve(root, path); ok {
			add(u)
		}
	}
	return out
}
