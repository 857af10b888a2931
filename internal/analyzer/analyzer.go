// Package analyzer turns one fetched page into an AnalysisResult by running
// platform detection, contact extraction, social link extraction, SEO scoring
// and the security checks against it.
package analyzer

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/charmbracelet/log"

	"siteintel/internal/extract"
	"siteintel/internal/models"
	"siteintel/internal/platform"
	"siteintel/internal/scoring"
	"siteintel/internal/security"
	"siteintel/internal/social"
)

const DefaultMaxPhones = 2

// Options are per request. They are passed by value so concurrent requests
// with different priority lists never share state.
type Options struct {
	EmailPriority  []string
	Email          scoring.EmailConfig
	MaxPhones      int
	IncludeContent bool
}

func DefaultOptions() Options {
	return Options{
		EmailPriority: models.DefaultEmailPriority,
		Email:         scoring.DefaultEmailConfig(),
		MaxPhones:     DefaultMaxPhones,
	}
}

type Analyzer struct {
	dns *security.DNSChecker
	log *log.Logger
	now func() time.Time
}

// New returns an analyzer. dns may be nil, in which case SPF and DMARC stay
// false.
func New(dns *security.DNSChecker, logger *log.Logger) *Analyzer {
	if logger == nil {
		logger = log.Default()
	}
	return &Analyzer{dns: dns, log: logger, now: time.Now}
}

// Analyze never fails. A failed outcome yields an Error (or Skipped) result
// with every analytic field at its default.
func (a *Analyzer) Analyze(ctx context.Context, domain string, outcome models.FetchOutcome, opts Options) models.AnalysisResult {
	res := models.NewResult(domain)
	res.AnalyzedAt = a.now().UTC()

	if f, failed := outcome.Failure(); failed {
		res.Status = models.StatusError
		if f.Kind == models.ErrSkipped {
			res.Status = models.StatusSkipped
		}
		res.ErrorDetail = f.String()
		return res
	}
	resp, _ := outcome.Response()

	res.FinalURL = resp.FinalURL
	res.HTTPStatus = resp.StatusCode
	res.DurationMs = resp.Elapsed.Milliseconds()
	res.Status = models.StatusActive
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		res.Status = models.StatusInactive
	}
	if opts.IncludeContent {
		res.RawContent = resp.Body
	}

	base, err := url.Parse(resp.FinalURL)
	if err != nil {
		base = nil
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		a.log.Warn("unparseable body, falling back to raw text", "domain", domain, "err", err)
		doc = nil
	}

	res.Platform = platform.Detect(doc, resp.Body, resp.Header, resp.FinalURL)
	text := extract.VisibleText(doc)
	if doc == nil {
		text = resp.Body
	}
	res.Purpose = platform.ClassifyPurpose(res.Platform, text)

	contacts := extract.Extract(doc, resp.Body, base)
	res.Emails = scoring.RankEmails(contacts.Emails, opts.EmailPriority, opts.Email)
	res.Phones = topPhones(contacts.Phones, opts.MaxPhones)
	res.ContactPages = contacts.Pages

	links := social.Extract(doc, base)
	res.SocialLinks = links
	res.SocialPresence = links.Presence()
	res.TotalSocialLinks = links.Total()

	res.Security = security.Analyze(resp.FinalURL, resp.Header)
	res.IsHTTPS = res.Security.IsHTTPS
	if a.dns != nil && base != nil && ctx.Err() == nil {
		auth := a.dns.Check(ctx, base.Hostname())
		res.Security.HasSPF = models.YesNo(auth.HasSPF)
		res.Security.HasDMARC = models.YesNo(auth.HasDMARC)
	}

	signals := CollectSEO(doc)
	signals.IsHTTPS = bool(res.IsHTTPS)
	applySEO(&res, signals)
	return res
}

// ContactEmails extracts email candidates from a secondary page of the same
// site. Failed outcomes yield nothing.
func (a *Analyzer) ContactEmails(outcome models.FetchOutcome) []models.ContactCandidate {
	resp, ok := outcome.Response()
	if !ok || resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil
	}
	var base *url.URL
	if u, err := url.Parse(resp.FinalURL); err == nil {
		base = u
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.Body))
	if err != nil {
		doc = nil
	}
	siteHost := ""
	if base != nil {
		siteHost = base.Hostname()
	}
	return extract.Emails(doc, resp.Body, siteHost)
}

func topPhones(cs []models.ContactCandidate, limit int) []string {
	out := []string{}
	for _, c := range cs {
		if limit > 0 && len(out) == limit {
			break
		}
		out = append(out, c.Value)
	}
	return out
}

func applySEO(res *models.AnalysisResult, s models.SEOSignals) {
	res.HasTitle = models.YesNo(s.HasTitle)
	res.TitleLength = s.TitleLength
	res.TitleOptimal = models.YesNo(s.HasTitle && scoring.TitleOptimal(s.TitleLength))
	res.HasMetaDescription = models.YesNo(s.HasDescription)
	res.MetaDescriptionLength = s.DescriptionLength
	res.DescriptionOptimal = models.YesNo(s.HasDescription && scoring.DescriptionOptimal(s.DescriptionLength))
	res.H1Count = s.H1Count
	res.HasH2 = models.YesNo(s.HasH2)
	res.HasViewport = models.YesNo(s.HasViewport)
	res.HasCanonical = models.YesNo(s.HasCanonical)
	res.HasRobotsMeta = models.YesNo(s.HasRobots)
	res.HasStructuredData = models.YesNo(s.HasStructuredData)
	res.HasOpenGraph = models.YesNo(s.HasOpenGraph)
	res.HasTwitterCard = models.YesNo(s.HasTwitterCard)
	res.HasLazyLoading = models.YesNo(s.HasLazyLoading)
	res.HasPreload = models.YesNo(s.HasPreload)
	res.HasAltTags = models.YesNo(s.HasAltTags)
	res.HasLang = models.YesNo(s.HasLang)

	res.SEOScore, res.SEOGrade, res.SEOBreakdown = scoring.ScoreSEO(s)
}
