package extract

import (
	"html"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"siteintel/internal/models"
	"siteintel/internal/patterns"
	"siteintel/internal/scoring"
	"siteintel/internal/weburl"
)

type emailSet struct {
	site  string
	seen  map[string]struct{}
	items []models.ContactCandidate
}

func (s *emailSet) add(value string, src models.ContactSource) {
	email, ok := CleanEmail(value)
	if !ok || !ValidEmail(email, s.site) {
		return
	}
	if _, dup := s.seen[email]; dup {
		return
	}
	s.seen[email] = struct{}{}
	s.items = append(s.items, models.ContactCandidate{
		Value:     email,
		Source:    src,
		Order:     len(s.items),
		BaseScore: scoring.BaseScore(src),
	})
}

func (s *emailSet) addAll(text string, src models.ContactSource) {
	for _, m := range patterns.EmailPattern.FindAllString(text, -1) {
		s.add(m, src)
	}
}

// Emails returns valid addresses in the order they were found. Sources are
// visited from most to least explicit so the first-seen source of each
// address is the strongest one.
func Emails(doc *goquery.Document, raw, siteHost string) []models.ContactCandidate {
	set := &emailSet{site: siteHost, seen: make(map[string]struct{})}

	if doc != nil {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if len(href) > 7 && strings.EqualFold(href[:7], "mailto:") {
				for _, addr := range strings.Split(mailtoAddress(href[7:]), ",") {
					set.add(addr, models.SourceMailto)
				}
			}
		})

		doc.Find("script[type='application/ld+json']").Each(func(_ int, s *goquery.Selection) {
			set.addAll(s.Text(), models.SourceStructured)
		})
		doc.Find("[itemprop='email']").Each(func(_ int, s *goquery.Selection) {
			set.addAll(s.AttrOr("content", s.Text()), models.SourceStructured)
		})

		for _, e := range CloudflareEmails(doc) {
			set.add(e, models.SourceObfuscated)
		}

		doc.Find("[data-email], [data-contact], [data-mail], input[type='email'][value], meta[content*='@']").Each(func(_ int, s *goquery.Selection) {
			for _, attr := range []string{"data-email", "data-contact", "data-mail", "value", "content"} {
				if v, ok := s.Attr(attr); ok {
					set.addAll(html.UnescapeString(patterns.Deobfuscate(v)), models.SourceAttribute)
				}
			}
		})

		doc.Find("script").Each(func(_ int, s *goquery.Selection) {
			body := s.Text()
			for _, m := range patterns.JSONEmailPattern.FindAllStringSubmatch(body, -1) {
				set.add(m[1], models.SourceStructured)
			}
			for _, m := range patterns.JSConcatPattern.FindAllStringSubmatch(body, -1) {
				set.add(m[1]+"@"+m[2], models.SourceObfuscated)
			}
		})

		text := VisibleText(doc)
		set.addAll(text, models.SourceText)
		set.addAll(patterns.Deobfuscate(text), models.SourceObfuscated)
	}

	unescaped := patterns.StripUnicodeEscapes(html.UnescapeString(raw))
	for _, m := range patterns.JSConcatPattern.FindAllStringSubmatch(unescaped, -1) {
		set.add(m[1]+"@"+m[2], models.SourceObfuscated)
	}
	set.addAll(unescaped, models.SourceText)
	set.addAll(patterns.Deobfuscate(unescaped), models.SourceObfuscated)

	if set.items == nil {
		return []models.ContactCandidate{}
	}
	return set.items
}

func mailtoAddress(s string) string {
	if i := strings.IndexAny(s, "?#"); i >= 0 {
		s = s[:i]
	}
	if u, err := url.PathUnescape(s); err == nil {
		s = u
	}
	return s
}

// CleanEmail trims wrapping junk from a candidate and returns the lowercase
// address it contains.
func CleanEmail(s string) (string, bool) {
	s = strings.TrimSpace(html.UnescapeString(s))
	if len(s) >= 7 && strings.EqualFold(s[:7], "mailto:") {
		s = s[7:]
	}
	s = patterns.StripUnicodeEscapes(s)
	m := patterns.EmailPattern.FindString(s)
	if m == "" {
		return "", false
	}
	return strings.ToLower(strings.Trim(m, ".-_")), true
}

// ValidEmail rejects placeholders, asset filenames, tracking ids and system
// accounts. Placeholder domains are allowed when they are the analyzed site.
func ValidEmail(email, siteHost string) bool {
	if len(email) < 5 || len(email) > 100 {
		return false
	}
	if !patterns.EmailExact.MatchString(email) || strings.Contains(email, "..") {
		return false
	}
	at := strings.LastIndex(email, "@")
	local, domain := email[:at], email[at+1:]

	if patterns.HasAssetSuffix(email) || patterns.IsNoiseLocalPart(local) || patterns.IsSystemUsername(local) {
		return false
	}
	if patterns.IsPlaceholderDomain(domain) && !weburl.SameSite(domain, siteHost) {
		return false
	}
	return true
}
