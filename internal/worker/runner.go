package worker

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"

	"siteintel/internal/models"
	"siteintel/internal/queue"
)

// DefaultChunkSize is how many domains are analyzed between progress writes.
const DefaultChunkSize = 50

type TaskSource interface {
	Dequeue(ctx context.Context, timeout time.Duration) (queue.Task, error)
}

type JobStore interface {
	LoadRequest(ctx context.Context, id string) (models.JobRequest, error)
	MarkProcessing(ctx context.Context, id string) error
	SaveResults(ctx context.Context, id string, offset int, results []models.AnalysisResult) error
	MarkCompleted(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id, reason string) error
}

type Pipeline interface {
	Run(ctx context.Context, req models.AnalysisRequest) ([]models.AnalysisResult, error)
}

type Runner struct {
	Tasks      TaskSource
	Store      JobStore
	Pipeline   Pipeline
	Log        *log.Logger
	JobTimeout time.Duration
	ChunkSize  int
	HTTPClient *http.Client
}

// Start runs the worker loop until ctx is cancelled.
func (r *Runner) Start(ctx context.Context) {
	r.Log.Info("👷 Worker started. Waiting for tasks...")

	for ctx.Err() == nil {
		task, err := r.Tasks.Dequeue(ctx, 5*time.Second)
		if errors.Is(err, queue.ErrEmpty) {
			continue
		}
		if err != nil {
			if ctx.Err() != nil {
				break
			}
			r.Log.Error("❌ Redis error", "err", err)
			time.Sleep(1 * time.Second)
			continue
		}
		r.Process(ctx, task)
	}
	r.Log.Info("worker stopped")
}

// Process runs one job to completion and records the outcome. Errors are
// logged, never returned, so the loop keeps draining.
func (r *Runner) Process(ctx context.Context, task queue.Task) {
	logger := r.Log.With("job", task.JobID)

	req, err := r.Store.LoadRequest(ctx, task.JobID)
	if err != nil {
		logger.Error("load job", "err", err)
		return
	}
	req = req.Normalize()
	if err := r.Store.MarkProcessing(ctx, task.JobID); err != nil {
		logger.Error("mark processing", "err", err)
		return
	}

	timeout := r.JobTimeout
	if timeout <= 0 {
		timeout = 30 * time.Minute
	}
	jobCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	chunk := r.ChunkSize
	if chunk <= 0 {
		chunk = DefaultChunkSize
	}

	start := time.Now()
	domains := req.Domains
	for offset := 0; offset < len(domains); offset += chunk {
		part := req.AnalysisRequest
		part.Domains = domains[offset:min(offset+chunk, len(domains))]

		results, err := r.Pipeline.Run(jobCtx, part)
		if err != nil {
			r.fail(ctx, logger, req, task.JobID, err.Error())
			return
		}
		if err := r.Store.SaveResults(ctx, task.JobID, offset, results); err != nil {
			r.fail(ctx, logger, req, task.JobID, err.Error())
			return
		}
		logger.Debug("chunk saved", "processed", offset+len(results), "total", len(domains))
	}

	if err := r.Store.MarkCompleted(ctx, task.JobID); err != nil {
		logger.Error("mark completed", "err", err)
		return
	}
	logger.Info("✅ Processed job", "domains", len(domains), "elapsed", time.Since(start).Round(time.Millisecond))
	r.notify(ctx, logger, req, task.JobID, models.JobCompleted, "")
}

func (r *Runner) fail(ctx context.Context, logger *log.Logger, req models.JobRequest, id, reason string) {
	logger.Error("job failed", "reason", reason)
	if err := r.Store.MarkFailed(ctx, id, reason); err != nil {
		logger.Error("mark failed", "err", err)
	}
	r.notify(ctx, logger, req, id, models.JobFailed, reason)
}

type callbackPayload struct {
	JobID        string `json:"job_id"`
	Status       string `json:"status"`
	TotalDomains int    `json:"total_domains"`
	Error        string `json:"error,omitempty"`
}

func (r *Runner) notify(ctx context.Context, logger *log.Logger, req models.JobRequest, id, status, reason string) {
	if req.CallbackURL == "" {
		return
	}
	body, _ := json.Marshal(callbackPayload{JobID: id, Status: status, TotalDomains: len(req.Domains), Error: reason})

	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, req.CallbackURL, bytes.NewReader(body))
	if err != nil {
		logger.Warn("callback", "err", err)
		return
	}
	httpReq.Header.Set("Content-Type", "application/json")

	client := r.HTTPClient
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(httpReq)
	if err != nil {
		logger.Warn("callback failed", "url", req.CallbackURL, "err", err)
		return
	}
	resp.Body.Close()
	if resp.StatusCode >= 300 {
		logger.Warn("callback rejected", "url", req.CallbackURL, "status", resp.StatusCode)
	}
}
