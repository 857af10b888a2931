// Package platform classifies a fetched site by the software it runs on and
// by what the site is for.
package platform

import (
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"siteintel/internal/models"
	"siteintel/internal/patterns"
)

// page is the lowercased view of a response that markers are tested against.
type page struct {
	html      string
	generator []string
	assets    []string
	cookies   []string
	headers   http.Header
	host      string
}

func newPage(doc *goquery.Document, raw string, headers http.Header, finalURL string) page {
	p := page{html: strings.ToLower(raw), headers: headers}

	if doc != nil {
		doc.Find("meta[name]").Each(func(_ int, s *goquery.Selection) {
			if strings.EqualFold(s.AttrOr("name", ""), "generator") {
				p.generator = append(p.generator, strings.ToLower(s.AttrOr("content", "")))
			}
		})
		doc.Find("script[src], link[href]").Each(func(_ int, s *goquery.Selection) {
			src := s.AttrOr("src", s.AttrOr("href", ""))
			p.assets = append(p.assets, strings.ToLower(src))
		})
	}
	for _, c := range headers.Values("Set-Cookie") {
		name, _, _ := strings.Cut(c, "=")
		p.cookies = append(p.cookies, strings.ToLower(strings.TrimSpace(name)))
	}
	if u, err := url.Parse(finalURL); err == nil {
		p.host = strings.ToLower(u.Hostname())
	}
	return p
}

func (p page) matches(m patterns.Marker) bool {
	switch m.Kind {
	case patterns.MarkerGenerator:
		return anyContains(p.generator, m.Value)
	case patterns.MarkerAsset:
		return anyContains(p.assets, m.Value)
	case patterns.MarkerHTML:
		return strings.Contains(p.html, m.Value)
	case patterns.MarkerCookie:
		for _, c := range p.cookies {
			if strings.HasPrefix(c, m.Value) {
				return true
			}
		}
		return false
	case patterns.MarkerHeader:
		vals := p.headers.Values(m.Name)
		if len(vals) == 0 {
			return false
		}
		if m.Value == "" {
			return true
		}
		return anyContains(lower(vals), m.Value)
	case patterns.MarkerHost:
		return p.host != "" && strings.HasSuffix(p.host, m.Value)
	}
	return false
}

func anyContains(list []string, v string) bool {
	for _, s := range list {
		if strings.Contains(s, v) {
			return true
		}
	}
	return false
}

func lower(in []string) []string {
	out := make([]string, len(in))
	for i, s := range in {
		out[i] = strings.ToLower(s)
	}
	return out
}

// Detect returns the platform of the first rule in patterns.PlatformRules
// whose markers all match, or models.PlatformUnknown. doc may be nil.
func Detect(doc *goquery.Document, raw string, headers http.Header, finalURL string) models.Platform {
	if headers == nil {
		headers = http.Header{}
	}
	p := newPage(doc, raw, headers, finalURL)

	for _, r := range patterns.PlatformRules {
		if matchAll(p, r.Markers) {
			return r.Platform
		}
	}
	return models.PlatformUnknown
}

func matchAll(p page, markers []patterns.Marker) bool {
	for _, m := range markers {
		if !p.matches(m) {
			return false
		}
	}
	return len(markers) > 0
}
