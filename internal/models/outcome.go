package models

import (
	"fmt"
	"net/http"
	"time"
)

type ErrorKind string

const (
	ErrFetchTimeout     ErrorKind = "FetchTimeout"
	ErrConnection       ErrorKind = "ConnectionError"
	ErrHTTP             ErrorKind = "HttpError"
	ErrMalformedContent ErrorKind = "MalformedContent"
	ErrInvalidDomain    ErrorKind = "InvalidDomain"
	ErrSkipped          ErrorKind = "Skipped"
	ErrInternal         ErrorKind = "Internal"
)

// Response is a reachable page. StatusCode may be non-2xx.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       string
	FinalURL   string
	IsHTTPS    bool
	Elapsed    time.Duration
}

type Failure struct {
	Kind   ErrorKind
	Detail string
}

func (f Failure) String() string {
	if f.Detail == "" {
		return string(f.Kind)
	}
	return fmt.Sprintf("%s: %s", f.Kind, f.Detail)
}

// FetchOutcome holds exactly one of a Response or a Failure.
type FetchOutcome struct {
	resp *Response
	fail *Failure
}

func Success(r Response) FetchOutcome {
	return FetchOutcome{resp: &r}
}

func Failed(kind ErrorKind, detail string) FetchOutcome {
	return FetchOutcome{fail: &Failure{Kind: kind, Detail: detail}}
}

// Response returns the response and true when the fetch reached the server.
func (o FetchOutcome) Response() (Response, bool) {
	if o.resp == nil {
		return Response{}, false
	}
	return *o.resp, true
}

// Failure returns the failure and true when the fetch did not reach the server.
// The zero FetchOutcome reports an Internal failure.
func (o FetchOutcome) Failure() (Failure, bool) {
	if o.fail != nil {
		return *o.fail, true
	}
	if o.resp == nil {
		return Failure{Kind: ErrInternal, Detail: "empty fetch outcome"}, true
	}
	return Failure{}, false
}

// ContactSource is where on the page a contact value was found.
type ContactSource string

const (
	SourceMailto     ContactSource = "mailto"
	SourceTel        ContactSource = "tel"
	SourceStructured ContactSource = "structured"
	SourceAttribute  ContactSource = "attribute"
	SourceObfuscated ContactSource = "obfuscated"
	SourceText       ContactSource = "text"
)

type ContactCandidate struct {
	Value     string
	Source    ContactSource
	Order     int
	BaseScore int
}

// SEOSignals are the on-page checks the SEO score is computed from.
type SEOSignals struct {
	HasTitle          bool
	TitleLength       int
	HasDescription    bool
	DescriptionLength int
	H1Count           int
	HasH2             bool
	HasViewport       bool
	HasCanonical      bool
	HasRobots         bool
	HasStructuredData bool
	HasOpenGraph      bool
	HasTwitterCard    bool
	HasLazyLoading    bool
	HasPreload        bool
	HasAltTags        bool
	HasLang           bool
	IsHTTPS           bool
}

const (
	JobQueued     = "queued"
	JobProcessing = "processing"
	JobCompleted  = "completed"
	JobFailed     = "failed"
)

type JobStatus struct {
	ID               string     `json:"job_id"`
	Status           string     `json:"status"`
	Priority         int        `json:"priority"`
	TotalDomains     int        `json:"total_domains"`
	ProcessedDomains int        `json:"processed_domains"`
	CreatedAt        time.Time  `json:"created_at"`
	StartedAt        *time.Time `json:"started_at,omitempty"`
	CompletedAt      *time.Time `json:"completed_at,omitempty"`
	Error            string     `json:"error,omitempty"`
}
