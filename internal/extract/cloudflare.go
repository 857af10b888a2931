package extract

import (
	"encoding/hex"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const cfProtectionPath = "/cdn-cgi/l/email-protection#"

// CloudflareEmails decodes addresses hidden by Cloudflare email protection,
// both data-cfemail spans and protected link targets.
func CloudflareEmails(doc *goquery.Document) []string {
	var out []string
	doc.Find("[data-cfemail]").Each(func(_ int, s *goquery.Selection) {
		if e, ok := DecodeCFEmail(s.AttrOr("data-cfemail", "")); ok {
			out = append(out, e)
		}
	})
	doc.Find("a[href*='" + cfProtectionPath + "']").Each(func(_ int, s *goquery.Selection) {
		href := s.AttrOr("href", "")
		if i := strings.Index(href, cfProtectionPath); i >= 0 {
			if e, ok := DecodeCFEmail(href[i+len(cfProtectionPath):]); ok {
				out = append(out, e)
			}
		}
	})
	return out
}

// DecodeCFEmail reverses the Cloudflare encoding: the first byte is the XOR
// key for every following byte.
func DecodeCFEmail(encoded string) (string, bool) {
	raw, err := hex.DecodeString(strings.TrimSpace(encoded))
	if err != nil || len(raw) < 2 {
		return "", false
	}
	key := raw[0]
	var b strings.Builder
	for _, c := range raw[1:] {
		ch := c ^ key
		if ch < 0x20 || ch > 0x7e {
			return "", false
		}
		b.WriteByte(ch)
	}
	return b.String(), strings.Contains(b.String(), "@")
}
