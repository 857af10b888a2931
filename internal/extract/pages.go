package extract

import (
	"net/url"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"siteintel/internal/models"
	"siteintel/internal/patterns"
	"siteintel/internal/weburl"
)

// MinPageConfidence is the lowest confidence a contact page is kept at.
const MinPageConfidence = 0.3

// ContactPages scores every on-site anchor against the contact keywords.
// Results are unique by normalized URL, keep the best confidence seen and
// are sorted by confidence, ties in document order.
func ContactPages(doc *goquery.Document, base *url.URL) []models.ContactPage {
	if doc == nil || base == nil {
		return []models.ContactPage{}
	}

	self := weburl.Normalize(base)
	index := make(map[string]int)
	pages := []models.ContactPage{}

	doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
		href := strings.TrimSpace(a.AttrOr("href", ""))
		if ignoredLink(href) {
			return
		}
		u, ok := weburl.Resolve(base, href)
		if !ok || !weburl.SameSite(u.Hostname(), base.Hostname()) {
			return
		}
		key := weburl.Normalize(u)
		if key == self {
			return
		}

		text := collapseSpace(a.Text())
		if text == "" {
			text = collapseSpace(a.AttrOr("title", a.AttrOr("aria-label", "")))
		}
		conf := PageConfidence(u.Path, text)
		if conf <= MinPageConfidence {
			return
		}

		if i, dup := index[key]; dup {
			if conf > pages[i].Confidence {
				pages[i].Confidence = conf
				pages[i].LinkText = text
			}
			return
		}
		index[key] = len(pages)
		pages = append(pages, models.ContactPage{URL: key, LinkText: text, Confidence: conf})
	})

	sort.SliceStable(pages, func(i, j int) bool {
		return pages[i].Confidence > pages[j].Confidence
	})
	return pages
}

func ignoredLink(href string) bool {
	if href == "" {
		return true
	}
	l := strings.ToLower(href)
	for _, p := range patterns.IgnoredLinkPrefixes {
		if strings.HasPrefix(l, p) {
			return true
		}
	}
	return false
}

// PageConfidence combines the best keyword weight found in the path with the
// best found in the link text. Matching both adds a small bonus.
func PageConfidence(path, text string) float64 {
	p := strings.NewReplacer("-", " ", "_", " ", "/", " ", ".html", " ", ".php", " ").Replace(strings.ToLower(path))
	p = collapseSpace(p)
	compact := strings.ReplaceAll(p, " ", "")
	t := strings.ToLower(text)

	var inPath, inText float64
	for _, k := range patterns.ContactKeywords {
		if strings.Contains(p, k.Word) || strings.Contains(compact, strings.ReplaceAll(k.Word, " ", "")) {
			inPath = max(inPath, k.Weight)
		}
		if strings.Contains(t, k.Word) {
			inText = max(inText, k.Weight)
		}
	}

	conf := max(inPath, inText)
	if inPath > 0 && inText > 0 {
		conf += 0.1
	}
	return min(conf, 1.0)
}
