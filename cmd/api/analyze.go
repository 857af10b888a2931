package main

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"siteintel/internal/models"
)

// maxBodyBytes bounds JSON request bodies. A full request of MaxDomains
// domains fits comfortably.
const maxBodyBytes = 1 << 20

func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	return json.NewDecoder(r.Body).Decode(v)
}

func (s *server) analyzeHandler(w http.ResponseWriter, r *http.Request) {
	var req models.AnalysisRequest
	if err := decodeJSON(w, r, &req); err != nil {
		s.writeError(w, http.StatusBadRequest, "invalid JSON body: "+err.Error())
		return
	}

	start := time.Now()
	results, err := s.runner.Run(r.Context(), req)
	if errors.Is(err, models.ErrInvalidRequest) {
		s.writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		s.log.Error("❌ Analysis failed", "err", err)
		s.writeError(w, http.StatusInternalServerError, "analysis failed")
		return
	}

	s.log.Info("✅ Analyzed domains", "domains", len(results), "elapsed", time.Since(start).Round(time.Millisecond))
	s.writeJSON(w, http.StatusOK, results)
}
