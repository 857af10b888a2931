// Package extract pulls contact details out of a fetched page: email
// addresses, phone numbers and links to contact pages.
package extract

import (
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"

	"siteintel/internal/models"
)

// Contacts is everything found on one page. Emails and Phones are in
// extraction order with duplicates removed; ranking happens in scoring.
type Contacts struct {
	Emails []models.ContactCandidate
	Phones []models.ContactCandidate
	Pages  []models.ContactPage
}

// Extract scans doc and the raw body. doc may be nil when the body could not
// be parsed, in which case only raw text scanning runs. base is the page's
// final URL and decides which links and addresses count as on-site.
func Extract(doc *goquery.Document, raw string, base *url.URL) Contacts {
	siteHost := ""
	if base != nil {
		siteHost = base.Hostname()
	}

	var c Contacts
	c.Emails = Emails(doc, raw, siteHost)
	c.Phones = Phones(doc, raw)
	if doc != nil {
		c.Pages = ContactPages(doc, base)
	}
	if c.Pages == nil {
		c.Pages = []models.ContactPage{}
	}
	return c
}

// VisibleText returns the document's text without script, style and template
// content. Every element boundary becomes a space and runs of whitespace are
// collapsed, so adjacent inline elements never glue their words together.
func VisibleText(doc *goquery.Document) string {
	if doc == nil {
		return ""
	}
	var b strings.Builder
	for _, n := range doc.Nodes {
		walkText(n, &b)
	}
	return collapseSpace(b.String())
}

func walkText(n *html.Node, b *strings.Builder) {
	switch n.Type {
	case html.ElementNode:
		switch n.Data {
		case "script", "style", "noscript", "template", "svg", "head":
			return
		}
		b.WriteByte(' ')
		defer b.WriteByte(' ')
	case html.TextNode:
		b.WriteString(n.Data)
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walkText(c, b)
	}
}

func collapseSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
