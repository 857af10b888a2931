// Package weburl normalizes user-supplied domains and compares sites by
// registrable domain.
package weburl

import (
	"errors"
	"fmt"
	"net"
	"net/url"
	"strings"

	"golang.org/x/net/publicsuffix"
)

var ErrInvalidDomain = errors.New("invalid domain")

// Target is a normalized fetch target. Candidates holds the URLs to try in
// order; a bare domain yields https first and http second.
type Target struct {
	Host       string
	Candidates []string
}

// Parse turns user input such as "Example.com", "www.example.com/about" or
// "http://example.com" into a Target.
func Parse(input string) (Target, error) {
	raw := strings.TrimSpace(input)
	if raw == "" {
		return Target{}, fmt.Errorf("%w: empty", ErrInvalidDomain)
	}

	explicit := strings.HasPrefix(strings.ToLower(raw), "http://") || strings.HasPrefix(strings.ToLower(raw), "https://")
	if !explicit {
		raw = "https://" + raw
	}

	u, err := url.Parse(raw)
	if err != nil {
		return Target{}, fmt.Errorf("%w: %v", ErrInvalidDomain, err)
	}
	host := strings.ToLower(strings.TrimSuffix(u.Hostname(), "."))
	if !validHost(host) {
		return Target{}, fmt.Errorf("%w: %q", ErrInvalidDomain, input)
	}

	hostport := host
	if p := u.Port(); p != "" {
		hostport = net.JoinHostPort(host, p)
	}
	path := u.EscapedPath()
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}

	if explicit {
		u.Host = hostport
		u.Fragment = ""
		u.RawFragment = ""
		return Target{Host: host, Candidates: []string{u.String()}}, nil
	}
	return Target{
		Host: host,
		Candidates: []string{
			"https://" + hostport + path,
			"http://" + hostport + path,
		},
	}, nil
}

func validHost(host string) bool {
	if host == "" || len(host) > 253 {
		return false
	}
	if ip := net.ParseIP(host); ip != nil {
		return true
	}
	if host == "localhost" {
		return true
	}
	labels := strings.Split(host, ".")
	if len(labels) < 2 {
		return false
	}
	for _, l := range labels {
		if l == "" || len(l) > 63 || strings.HasPrefix(l, "-") || strings.HasSuffix(l, "-") {
			return false
		}
		for _, r := range l {
			if !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9' || r == '-' || r == '_') {
				return false
			}
		}
	}
	return true
}

// Registrable returns the eTLD+1 for host, or host itself when the public
// suffix list cannot place it (IP addresses, localhost).
func Registrable(host string) string {
	h := strings.ToLower(strings.TrimSuffix(host, "."))
	if hn, _, err := net.SplitHostPort(h); err == nil {
		h = hn
	}
	if net.ParseIP(h) != nil {
		return h
	}
	reg, err := publicsuffix.EffectiveTLDPlusOne(h)
	if err != nil {
		return h
	}
	return reg
}

// SameSite reports whether two hosts share a registrable domain.
func SameSite(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	return Registrable(a) == Registrable(b)
}

// Resolve resolves href against base and returns it when it is an http(s)
// URL. The fragment is dropped.
func Resolve(base *url.URL, href string) (*url.URL, bool) {
	u, err := url.Parse(strings.TrimSpace(href))
	if err != nil {
		return nil, false
	}
	if base != nil {
		u = base.ResolveReference(u)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, false
	}
	if u.Host == "" {
		return nil, false
	}
	u.Fragment = ""
	u.RawFragment = ""
	return u, true
}

// Normalize returns the comparison key for a page URL: lowercase host, no
// fragment, no trailing slash.
func Normalize(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.RawFragment = ""
	c.Host = strings.ToLower(c.Host)
	c.Scheme = strings.ToLower(c.Scheme)
	c.Path = strings.TrimRight(c.Path, "/")
	c.RawPath = ""
	return c.String()
}
