package analyzer

import (
	"strings"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"

	"siteintel/internal/models"
)

// CollectSEO reads the on-page signals. A nil document yields all-false
// signals. IsHTTPS is left for the caller.
func CollectSEO(doc *goquery.Document) models.SEOSignals {
	var s models.SEOSignals
	if doc == nil {
		return s
	}

	title := strings.TrimSpace(doc.Find("title").First().Text())
	s.HasTitle = title != ""
	s.TitleLength = utf8.RuneCountInString(title)

	if desc, ok := metaContent(doc, "description"); ok {
		s.HasDescription = true
		s.DescriptionLength = utf8.RuneCountInString(desc)
	}
	_, s.HasViewport = metaContent(doc, "viewport")
	_, s.HasRobots = metaContent(doc, "robots")

	s.H1Count = doc.Find("h1").Length()
	s.HasH2 = doc.Find("h2").Length() > 0
	s.HasCanonical = hasRel(doc, "canonical")
	s.HasPreload = hasRel(doc, "preload")

	s.HasStructuredData = doc.Find(`script[type="application/ld+json"], [itemscope], [itemtype*="schema.org"]`).Length() > 0
	s.HasOpenGraph = doc.Find(`meta[property^="og:"]`).Length() > 0
	s.HasTwitterCard = doc.Find(`meta[name^="twitter:"], meta[property^="twitter:"]`).Length() > 0
	s.HasLazyLoading = doc.Find(`img[loading="lazy"], iframe[loading="lazy"]`).Length() > 0

	imgs := doc.Find("img")
	s.HasAltTags = imgs.Length() > 0 && imgs.FilterFunction(func(_ int, img *goquery.Selection) bool {
		_, ok := img.Attr("alt")
		return !ok
	}).Length() == 0

	lang, _ := doc.Find("html").First().Attr("lang")
	s.HasLang = strings.TrimSpace(lang) != ""
	return s
}

// metaContent finds <meta name=...> case-insensitively. A tag with empty
// content does not count.
func metaContent(doc *goquery.Document, name string) (string, bool) {
	var content string
	var found bool
	doc.Find("meta[name]").EachWithBreak(func(_ int, m *goquery.Selection) bool {
		if !strings.EqualFold(strings.TrimSpace(m.AttrOr("name", "")), name) {
			return true
		}
		content = strings.TrimSpace(m.AttrOr("content", ""))
		found = content != ""
		return !found
	})
	return content, found
}

func hasRel(doc *goquery.Document, rel string) bool {
	found := false
	doc.Find("link[rel]").EachWithBreak(func(_ int, l *goquery.Selection) bool {
		for _, tok := range strings.Fields(l.AttrOr("rel", "")) {
			if strings.EqualFold(tok, rel) {
				found = true
				return false
			}
		}
		return true
	})
	return found
}
