package analyzer

import (
	"context"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"

	"siteintel/internal/models"
)

const wordpressPage = `<!doctype html>
<html lang="en">
<head>
<meta name="generator" content="WordPress 6.0">
<title>Example Domain Home Page For Testing Purposes</title>
</head>
<body>
<h1>Welcome</h1>
<p>Questions? <a href="mailto:contact@example.com">Email us</a></p>
<a href="https://www.facebook.com/example">Facebook</a>
<a href="/contact-us">Contact Us</a>
</body>
</html>`

func fixedAnalyzer() *Analyzer {
	a := New(nil, nil)
	a.now = func() time.Time { return time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC) }
	return a
}

func TestAnalyzeWordPressScenario(t *testing.T) {
	outcome := models.Success(models.Response{
		StatusCode: 200,
		Header:     http.Header{"Content-Type": {"text/html; charset=utf-8"}},
		Body:       wordpressPage,
		FinalURL:   "https://example.com/",
		IsHTTPS:    true,
	})

	res := fixedAnalyzer().Analyze(context.Background(), "example.com", outcome, DefaultOptions())

	if res.Domain != "example.com" {
		t.Errorf("Domain = %q", res.Domain)
	}
	if res.Platform != models.PlatformWordPress {
		t.Errorf("Platform = %q, want WordPress", res.Platform)
	}
	if res.IsHTTPS.String() != "Yes" {
		t.Errorf("IsHTTPS = %v", res.IsHTTPS)
	}
	if res.HasTitle.String() != "Yes" || res.TitleLength != 45 {
		t.Errorf("HasTitle = %v, TitleLength = %d", res.HasTitle, res.TitleLength)
	}
	if len(res.Emails) == 0 || res.Emails[0] != "contact@example.com" {
		t.Errorf("Emails = %v", res.Emails)
	}
	if res.Status != models.StatusActive {
		t.Errorf("Status = %q", res.Status)
	}
	if len(res.SocialLinks["facebook"]) != 1 || res.TotalSocialLinks != 1 {
		t.Errorf("SocialLinks = %v", res.SocialLinks)
	}
	if len(res.ContactPages) != 1 || res.ContactPages[0].URL != "https://example.com/contact-us" {
		t.Errorf("ContactPages = %+v", res.ContactPages)
	}
	if !res.AnalyzedAt.Equal(time.Date(2026, 3, 1, 9, 30, 0, 0, time.UTC)) {
		t.Errorf("AnalyzedAt = %v", res.AnalyzedAt)
	}
	if res.RawContent != "" {
		t.Error("raw content should only be included on request")
	}
}

func TestAnalyzeFailure(t *testing.T) {
	tests := []struct {
		name       string
		outcome    models.FetchOutcome
		wantStatus models.SiteStatus
		wantDetail string
	}{
		{
			name:       "Timeout",
			outcome:    models.Failed(models.ErrFetchTimeout, "no response within 15s"),
			wantStatus: models.StatusError,
			wantDetail: "FetchTimeout: no response within 15s",
		},
		{
			name:       "Invalid Domain",
			outcome:    models.Failed(models.ErrInvalidDomain, "not a hostname"),
			wantStatus: models.StatusError,
			wantDetail: "InvalidDomain: not a hostname",
		},
		{
			name:       "Skipped",
			outcome:    models.Failed(models.ErrSkipped, "request deadline reached"),
			wantStatus: models.StatusSkipped,
			wantDetail: "Skipped: request deadline reached",
		},
		{
			name:       "Zero Outcome",
			outcome:    models.FetchOutcome{},
			wantStatus: models.StatusError,
			wantDetail: "Internal",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := fixedAnalyzer().Analyze(context.Background(), "acme.io", tt.outcome, DefaultOptions())
			if res.Status != tt.wantStatus {
				t.Errorf("Status = %q, want %q", res.Status, tt.wantStatus)
			}
			if !strings.HasPrefix(res.ErrorDetail, tt.wantDetail) {
				t.Errorf("ErrorDetail = %q, want prefix %q", res.ErrorDetail, tt.wantDetail)
			}
			if res.SEOGrade != models.GradeF || res.SEOScore != 0 {
				t.Errorf("SEO = %d/%s", res.SEOScore, res.SEOGrade)
			}
			if res.Emails == nil || len(res.Emails) != 0 {
				t.Errorf("Emails = %#v", res.Emails)
			}
			if res.Security != (models.SecurityFlags{}) {
				t.Errorf("Security = %+v", res.Security)
			}
			if res.Platform != models.PlatformUnknown {
				t.Errorf("Platform = %q", res.Platform)
			}
		})
	}
}

func TestAnalyzeInactive(t *testing.T) {
	outcome := models.Success(models.Response{
		StatusCode: 404,
		Header:     http.Header{"X-Frame-Options": {"SAMEORIGIN"}},
		Body:       `<html><head><title>Not Found</title></head><body>gone</body></html>`,
		FinalURL:   "http://acme.io/",
	})
	opts := DefaultOptions()
	opts.IncludeContent = true

	res := fixedAnalyzer().Analyze(context.Background(), "acme.io", outcome, opts)
	if res.Status != models.StatusInactive || res.HTTPStatus != 404 {
		t.Errorf("Status = %q (%d)", res.Status, res.HTTPStatus)
	}
	if res.ErrorDetail != "" {
		t.Errorf("ErrorDetail = %q", res.ErrorDetail)
	}
	if res.HasTitle.String() != "Yes" {
		t.Error("expected best-effort analysis of the body")
	}
	if bool(res.IsHTTPS) || !bool(res.Security.HasXFrameOptions) {
		t.Errorf("Security = %+v", res.Security)
	}
	if !strings.Contains(res.RawContent, "gone") {
		t.Error("expected raw content")
	}
}

func TestAnalyzeRespectsPriority(t *testing.T) {
	body := `<p>sales@acme.io</p><p>info@acme.io</p><p>owner@gmail.com</p>`
	outcome := models.Success(models.Response{StatusCode: 200, Body: body, FinalURL: "https://acme.io/"})

	opts := DefaultOptions()
	opts.EmailPriority = []string{"@gmail.com", "sales@"}
	res := fixedAnalyzer().Analyze(context.Background(), "acme.io", outcome, opts)

	want := []string{"owner@gmail.com", "sales@acme.io", "info@acme.io"}
	if strings.Join(res.Emails, ",") != strings.Join(want, ",") {
		t.Errorf("Emails = %v, want %v", res.Emails, want)
	}
}

func TestCollectSEO(t *testing.T) {
	page := `<html lang="en"><head>
<title>Acme Widgets | Handmade widgets since 1999</title>
<meta name="Description" content="` + strings.Repeat("d", 130) + `">
<meta name="viewport" content="width=device-width">
<link rel="canonical" href="https://acme.io/">
<link rel="preload" href="/font.woff2" as="font">
<meta property="og:title" content="Acme">
<meta name="twitter:card" content="summary">
<script type="application/ld+json">{"@type":"Organization"}</script>
</head><body>
<h1>Acme</h1><h2>Widgets</h2>
<img src="a.png" alt="A" loading="lazy"><img src="b.png" alt="">
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(page))
	if err != nil {
		t.Fatal(err)
	}

	s := CollectSEO(doc)
	want := models.SEOSignals{
		HasTitle:          true,
		TitleLength:       42,
		HasDescription:    true,
		DescriptionLength: 130,
		H1Count:           1,
		HasH2:             true,
		HasViewport:       true,
		HasCanonical:      true,
		HasStructuredData: true,
		HasOpenGraph:      true,
		HasTwitterCard:    true,
		HasLazyLoading:    true,
		HasPreload:        true,
		HasAltTags:        true,
		HasLang:           true,
	}
	if s != want {
		t.Errorf("CollectSEO() =\n%+v\nwant\n%+v", s, want)
	}

	if CollectSEO(nil) != (models.SEOSignals{}) {
		t.Error("nil document should yield empty signals")
	}
}
