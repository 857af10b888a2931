package patterns

import (
	"regexp"
	"strings"
)

var (
	// EmailPattern is a permissive address matcher used over text and attributes.
	EmailPattern = regexp.MustCompile(`(?i)\b[a-z0-9](?:[a-z0-9._%+-]*[a-z0-9])?@[a-z0-9](?:[a-z0-9.-]*[a-z0-9])?\.[a-z]{2,}\b`)

	// EmailExact validates a single cleaned candidate.
	EmailExact = regexp.MustCompile(`(?i)^[a-z0-9](?:[a-z0-9._%+-]*[a-z0-9])?@[a-z0-9](?:[a-z0-9.-]*[a-z0-9])?\.[a-z]{2,}$`)

	// PhonePattern accepts international prefixes and grouped digits separated
	// by spaces, dots, dashes or a bracketed area code.
	PhonePattern = regexp.MustCompile(`(?:\+\d{1,3}[\s.-]?)?(?:\(\d{1,5}\)[\s.-]?)?\d{2,5}(?:[\s.-]?\d{2,5}){1,4}`)

	// DatePattern and PricePattern describe digit runs that are not phones.
	DatePattern  = regexp.MustCompile(`^(?:\d{4}[-./]\d{1,2}[-./]\d{1,2}|\d{1,2}[-./]\d{1,2}[-./]\d{2,4})$`)
	PricePattern = regexp.MustCompile(`^\d{1,3}(?:[.,]\d{3})*[.,]\d{2}$`)

	obfuscations = []struct {
		re   *regexp.Regexp
		with string
	}{
		{regexp.MustCompile(`(?i)\s*[\[\(\{]\s*at\s*[\]\)\}]\s*`), "@"},
		{regexp.MustCompile(`(?i)\s*[\[\(\{]\s*dot\s*[\]\)\}]\s*`), "."},
		{regexp.MustCompile(`(?i)&at;`), "@"},
		{regexp.MustCompile(`(?i)&dot;`), "."},
		{regexp.MustCompile(`(\w)\s{1,2}@\s{1,2}(\w)`), "$1@$2"},
		{regexp.MustCompile(`(\w@\w+)\s{1,2}\.\s{1,2}(\w)`), "$1.$2"},
	}

	// JSConcatPattern matches "user" + "@" + "domain.tld" string building.
	JSConcatPattern = regexp.MustCompile(`["']([a-zA-Z0-9._%+-]+)["']\s*\+\s*["']@["']\s*\+\s*["']([a-zA-Z0-9.-]+\.[a-zA-Z]{2,})["']`)

	// JSONEmailPattern matches "email": "..." pairs in inline scripts.
	JSONEmailPattern = regexp.MustCompile(`(?i)"email"\s*:\s*"([^"]*@[^"]*)"`)

	unicodeEscape = regexp.MustCompile(`(?i)\\u[0-9a-f]{4}|\bu003[ce]`)
)

// Deobfuscate rewrites the common human-readable address disguises.
func Deobfuscate(s string) string {
	for _, o := range obfuscations {
		s = o.re.ReplaceAllString(s, o.with)
	}
	return s
}

// StripUnicodeEscapes removes leftover \u003e style escapes.
func StripUnicodeEscapes(s string) string {
	return unicodeEscape.ReplaceAllString(s, " ")
}

var assetExtensions = []string{
	".png", ".jpg", ".jpeg", ".gif", ".svg", ".webp", ".ico", ".bmp",
	".css", ".js", ".json", ".xml", ".pdf", ".doc", ".docx", ".xls", ".xlsx", ".zip", ".rar", ".mp4",
}

// Placeholder and tracking domains. Addresses on the analyzed site's own
// domain are exempt from this list.
var placeholderDomains = map[string]struct{}{
	"example.com": {}, "example.org": {}, "example.net": {},
	"test.com": {}, "test.org": {}, "test.net": {},
	"domain.com": {}, "website.com": {}, "site.com": {},
	"email.com": {}, "mysite.com": {}, "yoursite.com": {},
	"yourdomain.com": {}, "mydomain.com": {}, "company.com": {},
	"sample.com": {}, "localhost": {}, "local.com": {},
	"sentry.io": {}, "tracking.com": {}, "analytics.com": {},
	"google-analytics.com": {}, "googletagmanager.com": {},
	"sentry.wixpress.com": {}, "sentry-next.wixpress.com": {},
	"bugsnag.com": {}, "rollbar.com": {}, "airbrake.io": {},
	"honeybadger.io": {}, "raygun.com": {}, "crashlytics.com": {},
	"noreply.com": {}, "donotreply.com": {}, "no-reply.com": {},
}

var trackingSuffixes = []string{
	".sentry.io", ".wixpress.com", ".bugsnag.com", ".rollbar.com",
	".airbrake.io", ".honeybadger.io", ".raygun.com", ".crashlytics.com",
}

var systemUsernames = map[string]bool{
	"example": true, "test": true, "demo": true, "sample": true, "placeholder": true,
	"dummy": true, "fake": true, "user": true, "root": true, "guest": true,
	"anonymous": true, "unknown": true, "domain": true, "website": true, "email": true,
	"noreply": true, "no-reply": true, "donotreply": true, "do-not-reply": true,
	"mailer-daemon": true, "postmaster": true, "bounce": true, "nobody": true,
	"daemon": true, "system": true, "www": true, "ftp": true, "apache": true, "nginx": true,
	"tracking": true, "analytics": true, "pixel": true, "newsletter": true,
}

var (
	hexLocal  = regexp.MustCompile(`^[a-f0-9]{16,}$`)
	uuidLocal = regexp.MustCompile(`^[a-f0-9]{8}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{4}-[a-f0-9]{12}$`)
	longDigit = regexp.MustCompile(`[0-9]{8,}`)
)

// IsPlaceholderDomain reports whether domain is a known example, tracking or
// error-reporting host.
func IsPlaceholderDomain(domain string) bool {
	d := strings.ToLower(domain)
	if _, ok := placeholderDomains[d]; ok {
		return true
	}
	for _, s := range trackingSuffixes {
		if strings.HasSuffix(d, s) {
			return true
		}
	}
	for _, ext := range assetExtensions {
		if strings.HasSuffix(d, ext) {
			return true
		}
	}
	return false
}

// IsSystemUsername reports whether the local part is a placeholder or machine
// account rather than a reachable inbox.
func IsSystemUsername(local string) bool {
	return systemUsernames[strings.ToLower(local)]
}

// IsNoiseLocalPart catches asset filenames, hashes and tracking ids that the
// address pattern happens to accept.
func IsNoiseLocalPart(local string) bool {
	l := strings.ToLower(local)
	if len(l) > 64 {
		return true
	}
	for _, ext := range assetExtensions {
		if strings.HasSuffix(l, ext) {
			return true
		}
	}
	return hexLocal.MatchString(l) || uuidLocal.MatchString(l) || longDigit.MatchString(l)
}

// HasAssetSuffix reports whether an address ends like a retina image name,
// e.g. logo@2x.png.
func HasAssetSuffix(addr string) bool {
	l := strings.ToLower(addr)
	for _, ext := range assetExtensions {
		if strings.HasSuffix(l, ext) {
			return true
		}
	}
	return false
}

// ContactKeywords are weighted by how strongly they indicate a contact page.
var ContactKeywords = []struct {
	Word   string
	Weight float64
}{
	{"contact us", 1.0},
	{"contact", 0.9},
	{"get in touch", 0.9},
	{"reach us", 0.8},
	{"reach out", 0.8},
	{"kontakt", 0.8},
	{"inquiry", 0.6},
	{"enquiry", 0.6},
	{"support", 0.5},
	{"help", 0.4},
	{"about us", 0.4},
	{"about", 0.35},
}

// ContactFallbackPaths are probed when the homepage yields no address.
var ContactFallbackPaths = []string{
	"/contact", "/contact-us", "/about", "/pages/contact",
}

// IgnoredLinkPrefixes are anchor targets that never point to a page.
var IgnoredLinkPrefixes = []string{"mailto:", "tel:", "javascript:", "#", "data:", "sms:"}
