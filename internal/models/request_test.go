package models

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestAnalysisRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		input   AnalysisRequest
		wantErr bool
		field   string
	}{
		{
			name:  "Defaults Applied",
			input: AnalysisRequest{Domains: []string{"example.org"}},
		},
		{
			name:    "Empty Domain List",
			input:   AnalysisRequest{},
			wantErr: true,
			field:   "domains",
		},
		{
			name:    "Batch Size Too Large",
			input:   AnalysisRequest{Domains: []string{"a.com"}, BatchSize: 21},
			wantErr: true,
			field:   "batch_size",
		},
		{
			name:    "Negative Batch Size",
			input:   AnalysisRequest{Domains: []string{"a.com"}, BatchSize: -1},
			wantErr: true,
			field:   "batch_size",
		},
		{
			name:    "Timeout Out Of Range",
			input:   AnalysisRequest{Domains: []string{"a.com"}, Timeout: 500},
			wantErr: true,
			field:   "timeout",
		},
		{
			name:    "Blank Priority Pattern",
			input:   AnalysisRequest{Domains: []string{"a.com"}, EmailPriority: []string{"info@", "  "}},
			wantErr: true,
			field:   "email_priority",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.input.Normalize().Validate()
			if (err != nil) != tt.wantErr {
				t.Fatalf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err == nil {
				return
			}
			if !errors.Is(err, ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
			var ve *ValidationError
			if !errors.As(err, &ve) || ve.Field != tt.field {
				t.Errorf("expected field %q, got %v", tt.field, err)
			}
		})
	}
}

func TestNormalizeDefaults(t *testing.T) {
	req := AnalysisRequest{Domains: []string{"a.com"}}.Normalize()
	if req.BatchSize != DefaultBatchSize {
		t.Errorf("BatchSize = %d, want %d", req.BatchSize, DefaultBatchSize)
	}
	if req.Timeout != DefaultTimeout {
		t.Errorf("Timeout = %d, want %d", req.Timeout, DefaultTimeout)
	}
	if len(req.EmailPriority) != 3 || req.EmailPriority[0] != "info@" {
		t.Errorf("EmailPriority = %v", req.EmailPriority)
	}

	req.EmailPriority[0] = "changed@"
	if DefaultEmailPriority[0] != "info@" {
		t.Error("Normalize must copy the default priority list")
	}
}

func TestJobRequestValidate(t *testing.T) {
	job := JobRequest{AnalysisRequest: AnalysisRequest{Domains: []string{"a.com"}}}.Normalize()
	if job.Priority != PriorityLow {
		t.Errorf("Priority = %d, want %d", job.Priority, PriorityLow)
	}
	if err := job.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	job.Priority = 4
	if err := job.Validate(); err == nil {
		t.Error("expected priority 4 to be rejected")
	}

	job.Priority = PriorityHigh
	job.CallbackURL = "ftp://example.org/hook"
	if err := job.Validate(); err == nil {
		t.Error("expected non-http callback to be rejected")
	}
}

func TestYesNoJSON(t *testing.T) {
	out, err := json.Marshal(struct {
		A YesNo `json:"a"`
		B YesNo `json:"b"`
	}{A: true})
	if err != nil {
		t.Fatal(err)
	}
	if string(out) != `{"a":"Yes","b":"No"}` {
		t.Errorf("got %s", out)
	}

	var y YesNo
	if err := json.Unmarshal([]byte(`"Yes"`), &y); err != nil || !bool(y) {
		t.Errorf("unmarshal Yes: %v %v", y, err)
	}
	if err := json.Unmarshal([]byte(`false`), &y); err != nil || bool(y) {
		t.Errorf("unmarshal false: %v %v", y, err)
	}
}

func TestFetchOutcome(t *testing.T) {
	ok := Success(Response{StatusCode: 200})
	if _, failed := ok.Failure(); failed {
		t.Error("success outcome reported a failure")
	}
	if r, reached := ok.Response(); !reached || r.StatusCode != 200 {
		t.Errorf("Response() = %v, %v", r, reached)
	}

	bad := Failed(ErrFetchTimeout, "deadline exceeded")
	f, failed := bad.Failure()
	if !failed || f.String() != "FetchTimeout: deadline exceeded" {
		t.Errorf("Failure() = %v, %v", f, failed)
	}

	var zero FetchOutcome
	if f, failed := zero.Failure(); !failed || f.Kind != ErrInternal {
		t.Errorf("zero outcome should be Internal failure, got %v", f)
	}
}

func TestNewResultDefaults(t *testing.T) {
	r := NewResult("a.com")
	if r.SEOGrade != GradeF || r.Platform != PlatformUnknown {
		t.Errorf("unexpected defaults: %+v", r)
	}
	if len(r.SocialLinks) != len(SocialNetworks) {
		t.Errorf("expected %d networks, got %d", len(SocialNetworks), len(r.SocialLinks))
	}
	out, _ := json.Marshal(r)
	var m map[string]any
	_ = json.Unmarshal(out, &m)
	if m["emails"] == nil {
		t.Error("emails should serialize as [] not null")
	}
}
