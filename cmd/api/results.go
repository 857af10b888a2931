package main

import (
	"fmt"
	"net/http"

	"siteintel/internal/models"
	"siteintel/internal/report"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// jobPending is returned in place of results while a job is unfinished.
type jobPending struct {
	JobID            string `json:"job_id"`
	Status           string `json:"status"`
	ProcessedDomains int    `json:"processed_domains"`
	TotalDomains     int    `json:"total_domains"`
	Message          string `json:"message"`
}

func (s *server) resultsHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}

	switch job.Status {
	case models.JobCompleted:
	case models.JobFailed:
		s.writeJSON(w, http.StatusConflict, jobPending{
			JobID:            job.ID,
			Status:           job.Status,
			ProcessedDomains: job.ProcessedDomains,
			TotalDomains:     job.TotalDomains,
			Message:          "Job failed: " + job.Error,
		})
		return
	default:
		s.writeJSON(w, http.StatusAccepted, jobPending{
			JobID:            job.ID,
			Status:           job.Status,
			ProcessedDomains: job.ProcessedDomains,
			TotalDomains:     job.TotalDomains,
			Message:          "Job is not finished yet. Poll /jobs/" + job.ID + "/status for progress.",
		})
		return
	}

	results, err := s.jobs.Results(r.Context(), job.ID)
	if err != nil {
		s.log.Error("❌ DB error", "job", job.ID, "err", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to fetch results")
		return
	}
	// Return [] rather than null when a job stored nothing.
	if results == nil {
		results = []models.AnalysisResult{}
	}

	if r.URL.Query().Get("format") == "xlsx" {
		w.Header().Set("Content-Type", xlsxContentType)
		w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "siteintel-"+job.ID+".xlsx"))
		if err := report.WriteXLSX(w, results); err != nil {
			s.log.Error("❌ Error writing workbook", "job", job.ID, "err", err)
		}
		return
	}
	s.writeJSON(w, http.StatusOK, results)
}
