package main

import (
	"encoding/csv"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"

	"siteintel/internal/models"
	"siteintel/internal/queue"
)

// SubmitResponse is what we send back once a job is queued.
type SubmitResponse struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	TotalDomains int    `json:"total_domains"`
	Priority     int    `json:"priority"`
	Message      string `json:"message"`
}

func (s *server) submitHandler(w http.ResponseWriter, r *http.Request) {
	var req models.JobRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}
	s.submit(w, r, req)
}

// uploadHandler queues a job from a CSV file whose first column holds the
// domains. A leading "domain" header row is skipped. Request options come
// from the remaining form fields.
func (s *server) uploadHandler(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(10 << 20); err != nil {
		s.writeError(w, http.StatusBadRequest, "File too large or malformed")
		return
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Missing 'file' parameter in form data")
		return
	}
	defer file.Close()

	domains, err := readDomainsCSV(file)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, "Invalid CSV format")
		return
	}
	if len(domains) == 0 {
		s.writeError(w, http.StatusBadRequest, "CSV is empty")
		return
	}

	req, err := formRequest(r)
	if err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Domains = domains
	s.submit(w, r, req)
}

func (s *server) submit(w http.ResponseWriter, r *http.Request, req models.JobRequest) {
	req = req.Normalize()
	if err := req.Validate(); err != nil {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	ctx := r.Context()
	jobID := uuid.New().String()
	if err := s.jobs.CreateJob(ctx, jobID, req); err != nil {
		s.log.Error("❌ DB error", "err", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to create job")
		return
	}
	if err := s.queue.Enqueue(ctx, queue.Task{JobID: jobID, Priority: req.Priority}); err != nil {
		s.log.Error("❌ Redis error", "job", jobID, "err", err)
		if err := s.jobs.MarkFailed(ctx, jobID, "could not be queued"); err != nil {
			s.log.Error("mark failed", "job", jobID, "err", err)
		}
		s.writeError(w, http.StatusServiceUnavailable, "Failed to queue job")
		return
	}

	s.log.Info("📥 Job queued", "job", jobID, "domains", len(req.Domains), "priority", req.Priority)
	s.writeJSON(w, http.StatusAccepted, SubmitResponse{
		JobID:        jobID,
		Status:       "submitted",
		TotalDomains: len(req.Domains),
		Priority:     req.Priority,
		Message:      "Job created successfully. Processing started.",
	})
}

func readDomainsCSV(rd io.Reader) ([]string, error) {
	reader := csv.NewReader(rd)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	var domains []string
	for first := true; ; first = false {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if len(record) == 0 {
			continue
		}
		d := strings.TrimSpace(record[0])
		if d == "" || (first && strings.EqualFold(d, "domain")) {
			continue
		}
		domains = append(domains, d)
	}
	return domains, nil
}

func formRequest(r *http.Request) (models.JobRequest, error) {
	var req models.JobRequest
	var err error

	intField := func(name string, dst *int) {
		v := strings.TrimSpace(r.FormValue(name))
		if v == "" || err != nil {
			return
		}
		n, convErr := strconv.Atoi(v)
		if convErr != nil {
			err = &models.ValidationError{Field: name, Reason: "must be an integer"}
			return
		}
		*dst = n
	}
	intField("batch_size", &req.BatchSize)
	intField("timeout", &req.Timeout)
	intField("priority", &req.Priority)
	if err != nil {
		return req, err
	}

	if v := strings.TrimSpace(r.FormValue("include_content")); v != "" {
		b, convErr := strconv.ParseBool(v)
		if convErr != nil {
			return req, &models.ValidationError{Field: "include_content", Reason: "must be true or false"}
		}
		req.IncludeContent = b
	}
	for _, p := range strings.Split(r.FormValue("email_priority"), ",") {
		if p = strings.TrimSpace(p); p != "" {
			req.EmailPriority = append(req.EmailPriority, p)
		}
	}
	req.CallbackURL = strings.TrimSpace(r.FormValue("callback_url"))
	return req, nil
}
