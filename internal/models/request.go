package models

import (
	"errors"
	"fmt"
	"strings"
)

const (
	DefaultBatchSize = 10
	MinBatchSize     = 1
	MaxBatchSize     = 20
	DefaultTimeout   = 15
	MinTimeout       = 1
	MaxTimeout       = 120
	MaxDomains       = 1000

	PriorityLow    = 1
	PriorityNormal = 2
	PriorityHigh   = 3
)

// DefaultEmailPriority applies when a request carries no priority list.
var DefaultEmailPriority = []string{"info@", "sales@", "@gmail.com"}

var ErrInvalidRequest = errors.New("invalid request")

// ValidationError describes why a request was rejected before any fetch.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidRequest }

type AnalysisRequest struct {
	Domains        []string `json:"domains"`
	BatchSize      int      `json:"batch_size"`
	Timeout        int      `json:"timeout"`
	IncludeContent bool     `json:"include_content"`
	EmailPriority  []string `json:"email_priority"`
}

// JobRequest is an AnalysisRequest processed asynchronously by the worker.
type JobRequest struct {
	AnalysisRequest
	Priority    int    `json:"priority"`
	CallbackURL string `json:"callback_url,omitempty"`
}

// Normalize fills zero values with defaults and returns the request.
func (r AnalysisRequest) Normalize() AnalysisRequest {
	if r.BatchSize == 0 {
		r.BatchSize = DefaultBatchSize
	}
	if r.Timeout == 0 {
		r.Timeout = DefaultTimeout
	}
	if len(r.EmailPriority) == 0 {
		r.EmailPriority = append([]string(nil), DefaultEmailPriority...)
	} else {
		r.EmailPriority = append([]string(nil), r.EmailPriority...)
	}
	r.Domains = append([]string(nil), r.Domains...)
	return r
}

// Validate checks a normalized request.
func (r AnalysisRequest) Validate() error {
	if len(r.Domains) == 0 {
		return &ValidationError{Field: "domains", Reason: "at least one domain is required"}
	}
	if len(r.Domains) > MaxDomains {
		return &ValidationError{Field: "domains", Reason: fmt.Sprintf("at most %d domains per request", MaxDomains)}
	}
	if r.BatchSize < MinBatchSize || r.BatchSize > MaxBatchSize {
		return &ValidationError{Field: "batch_size", Reason: fmt.Sprintf("must be between %d and %d", MinBatchSize, MaxBatchSize)}
	}
	if r.Timeout < MinTimeout || r.Timeout > MaxTimeout {
		return &ValidationError{Field: "timeout", Reason: fmt.Sprintf("must be between %d and %d seconds", MinTimeout, MaxTimeout)}
	}
	for i, p := range r.EmailPriority {
		if strings.TrimSpace(p) == "" {
			return &ValidationError{Field: "email_priority", Reason: fmt.Sprintf("pattern %d is blank", i+1)}
		}
	}
	return nil
}

// Normalize applies defaults to the embedded request and the priority.
func (j JobRequest) Normalize() JobRequest {
	j.AnalysisRequest = j.AnalysisRequest.Normalize()
	if j.Priority == 0 {
		j.Priority = PriorityLow
	}
	return j
}

func (j JobRequest) Validate() error {
	if err := j.AnalysisRequest.Validate(); err != nil {
		return err
	}
	if j.Priority < PriorityLow || j.Priority > PriorityHigh {
		return &ValidationError{Field: "priority", Reason: "must be 1 (low), 2 (normal) or 3 (high)"}
	}
	if j.CallbackURL != "" && !strings.HasPrefix(j.CallbackURL, "http://") && !strings.HasPrefix(j.CallbackURL, "https://") {
		return &ValidationError{Field: "callback_url", Reason: "must be an http or https URL"}
	}
	return nil
}
