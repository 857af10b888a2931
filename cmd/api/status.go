package main

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"siteintel/internal/models"
	"siteintel/internal/store"
)

func (s *server) statusHandler(w http.ResponseWriter, r *http.Request) {
	job, ok := s.lookupJob(w, r)
	if !ok {
		return
	}
	s.writeJSON(w, http.StatusOK, job)
}

// lookupJob loads the job named in the path, writing the error response
// itself when it cannot.
func (s *server) lookupJob(w http.ResponseWriter, r *http.Request) (models.JobStatus, bool) {
	jobID := chi.URLParam(r, "id")
	job, err := s.jobs.GetJob(r.Context(), jobID)
	if errors.Is(err, store.ErrNotFound) {
		s.writeError(w, http.StatusNotFound, "Job not found")
		return job, false
	}
	if err != nil {
		s.log.Error("❌ DB error", "job", jobID, "err", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to load job")
		return job, false
	}
	return job, true
}

func (s *server) queueStatsHandler(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	lengths, err := s.queue.Lengths(ctx)
	if err != nil {
		s.log.Error("❌ Redis error", "err", err)
		s.writeError(w, http.StatusServiceUnavailable, "Queue unavailable")
		return
	}
	counts, err := s.jobs.CountByStatus(ctx)
	if err != nil {
		s.log.Error("❌ DB error", "err", err)
		s.writeError(w, http.StatusInternalServerError, "Failed to count jobs")
		return
	}

	var pending int64
	for _, n := range lengths {
		pending += n
	}
	s.writeJSON(w, http.StatusOK, map[string]any{
		"queue_length": pending,
		"queues":       lengths,
		"jobs":         counts,
	})
}
