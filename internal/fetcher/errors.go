package fetcher

import (
	"context"
	"errors"
	"net"
	"net/url"
	"strings"
	"unicode/utf8"

	"golang.org/x/net/html/charset"

	"siteintel/internal/models"
)

// classify maps a transport error to a failure kind. Anything that is not a
// timeout counts as a connection failure (DNS, refused, reset, TLS).
func classify(ctx context.Context, err error) *models.Failure {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &models.Failure{Kind: models.ErrFetchTimeout, Detail: "deadline exceeded"}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &models.Failure{Kind: models.ErrFetchTimeout, Detail: netErr.Error()}
	}

	detail := err.Error()
	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		detail = urlErr.Err.Error()
	}
	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		detail = "dns: " + dnsErr.Err
	}
	return &models.Failure{Kind: models.ErrConnection, Detail: strings.TrimSpace(detail)}
}

// decode converts body to UTF-8 using the Content-Type header or an
// in-document charset declaration. Undecodable bodies are returned as is.
func decode(body []byte, contentType string) string {
	enc, name, certain := charset.DetermineEncoding(body, contentType)
	if name == "utf-8" || enc == nil || (!certain && utf8.Valid(body)) {
		return string(body)
	}
	out, err := enc.NewDecoder().Bytes(body)
	if err != nil {
		return string(body)
	}
	return string(out)
}
