// Package social groups a page's outbound social-network profile links.
package social

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"siteintel/internal/models"
	"siteintel/internal/patterns"
	"siteintel/internal/weburl"
)

// Links is keyed by network. Every network in models.SocialNetworks is
// present, with an empty list when nothing matched.
type Links map[string][]string

// Extract tests every anchor target against patterns.SocialPatterns. A URL
// belongs to the first network that matches; per network, URLs keep the order
// they first appeared in.
func Extract(doc *goquery.Document, base *url.URL) Links {
	links := make(Links, len(models.SocialNetworks))
	for _, n := range models.SocialNetworks {
		links[n] = []string{}
	}
	if doc == nil {
		return links
	}

	seen := make(map[string]struct{})
	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		u, ok := weburl.Resolve(base, a.AttrOr("href", ""))
		if !ok {
			return
		}
		target := u.String()
		if patterns.ShareLinkPattern.MatchString(u.Path) {
			return
		}
		network := Classify(target)
		if network == "" {
			return
		}
		key := network + "|" + strings.TrimRight(strings.ToLower(target), "/")
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		links[network] = append(links[network], target)
	})
	return links
}

// Classify returns the network a URL points at, or "".
func Classify(target string) string {
	for _, p := range patterns.SocialPatterns {
		if p.Pattern.MatchString(target) {
			return p.Network
		}
	}
	return ""
}

// Total counts links across all networks.
func (l Links) Total() int {
	n := 0
	for _, urls := range l {
		n += len(urls)
	}
	return n
}

// Presence reports per network whether any link was found.
func (l Links) Presence() map[string]models.YesNo {
	out := make(map[string]models.YesNo, len(l))
	for network, urls := range l {
		out[network] = models.YesNo(len(urls) > 0)
	}
	return out
}
