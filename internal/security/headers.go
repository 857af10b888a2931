// Package security reports a site's transport and mail-authentication posture.
package security

import (
	"net/http"
	"net/url"
	"strings"

	"siteintel/internal/models"
	"siteintel/internal/patterns"
)

// Analyze inspects the final URL and response headers. Each flag is
// independent and false when its header is missing.
func Analyze(finalURL string, headers http.Header) models.SecurityFlags {
	var f models.SecurityFlags
	if u, err := url.Parse(finalURL); err == nil {
		f.IsHTTPS = models.YesNo(strings.EqualFold(u.Scheme, "https"))
	}
	if headers == nil {
		return f
	}
	f.HasHSTS = present(headers, patterns.HeaderHSTS)
	f.HasCSP = present(headers, patterns.HeaderCSP)
	f.HasXFrameOptions = present(headers, patterns.HeaderXFrameOptions)
	return f
}

func present(h http.Header, name string) models.YesNo {
	for _, v := range h.Values(name) {
		if strings.TrimSpace(v) != "" {
			return true
		}
	}
	return false
}
