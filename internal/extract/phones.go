package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"siteintel/internal/models"
	"siteintel/internal/patterns"
)

const (
	MinPhoneDigits = 10
	MaxPhoneDigits = 15
)

// Phones returns phone numbers from tel: links first, then visible text.
// Duplicates are detected on digits alone.
func Phones(doc *goquery.Document, raw string) []models.ContactCandidate {
	seen := make(map[string]struct{})
	out := []models.ContactCandidate{}

	add := func(value string, src models.ContactSource) {
		value = collapseSpace(value)
		key, ok := PhoneKey(value)
		if !ok {
			return
		}
		if _, dup := seen[key]; dup {
			return
		}
		seen[key] = struct{}{}
		out = append(out, models.ContactCandidate{Value: value, Source: src, Order: len(out)})
	}

	var text string
	if doc != nil {
		doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
			href := strings.TrimSpace(a.AttrOr("href", ""))
			if len(href) > 4 && strings.EqualFold(href[:4], "tel:") {
				v := href[4:]
				if u, err := url.PathUnescape(v); err == nil {
					v = u
				}
				add(v, models.SourceTel)
			}
		})
		text = VisibleText(doc)
	} else {
		text = raw
	}

	for _, loc := range patterns.PhonePattern.FindAllStringIndex(text, -1) {
		if precededByNumber(text[:loc[0]]) {
			continue
		}
		add(text[loc[0]:loc[1]], models.SourceText)
	}
	return out
}

// precededByNumber reports whether a match is glued to a digit or follows a
// currency symbol.
func precededByNumber(prefix string) bool {
	if prefix == "" {
		return false
	}
	if c := prefix[len(prefix)-1]; c >= '0' && c <= '9' {
		return true
	}
	r := []rune(strings.TrimRight(prefix, " "))
	if len(r) == 0 {
		return false
	}
	switch r[len(r)-1] {
	case '$', '€', '£', '¥', '₹':
		return true
	}
	return false
}

// PhoneKey validates a phone candidate and returns its digits. A leading plus
// sign is accepted but dropped, so "+1 555..." and "1-555..." share a key.
func PhoneKey(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" || patterns.DatePattern.MatchString(s) || patterns.PricePattern.MatchString(s) {
		return "", false
	}

	var b strings.Builder
	for i, r := range s {
		switch {
		case r >= '0' && r <= '9':
			b.WriteRune(r)
		case r == '+' && i == 0:
		case r == ' ' || r == '-' || r == '.' || r == '(' || r == ')' || r == '/':
		default:
			return "", false
		}
	}
	digits := b.String()
	if len(digits) < MinPhoneDigits || len(digits) > MaxPhoneDigits {
		return "", false
	}
	if strings.Contains(digits, "1234567890") || strings.Count(digits, digits[:1]) == len(digits) {
		return "", false
	}
	return digits, true
}
