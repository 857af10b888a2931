package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"siteintel/internal/analyzer"
	"siteintel/internal/cache"
	"siteintel/internal/config"
	"siteintel/internal/fetcher"
	"siteintel/internal/logging"
	"siteintel/internal/models"
	"siteintel/internal/pipeline"
	"siteintel/internal/proxy"
	"siteintel/internal/queue"
	"siteintel/internal/security"
	"siteintel/internal/store"
)

const version = "1.4.0"

type analysisRunner interface {
	Run(ctx context.Context, req models.AnalysisRequest) ([]models.AnalysisResult, error)
}

type jobStore interface {
	CreateJob(ctx context.Context, id string, req models.JobRequest) error
	GetJob(ctx context.Context, id string) (models.JobStatus, error)
	MarkFailed(ctx context.Context, id, reason string) error
	Results(ctx context.Context, id string) ([]models.AnalysisResult, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)
}

type jobQueue interface {
	Enqueue(ctx context.Context, t queue.Task) error
	Lengths(ctx context.Context) (map[string]int64, error)
}

// server holds the handler dependencies. jobs and queue are nil when the
// async backend is not configured.
type server struct {
	runner  analysisRunner
	stats   func() fetcher.Stats
	jobs    jobStore
	queue   jobQueue
	log     *log.Logger
	started time.Time
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogJSON)

	// Cancelling ctx on shutdown stops the cache cleanup goroutine.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cache.Default.StartCleanup(ctx, 5*time.Minute)
	logger.Info("✅ Cache eviction goroutine started", "interval", "5m")

	proxies, err := proxy.New(cfg.ProxyList)
	if err != nil {
		logger.Fatal("❌ Failed to initialize proxy manager", "err", err)
	}
	if proxies.Enabled() {
		logger.Info("🛡️  Proxy rotation enabled", "proxies", proxies.Len())
	} else {
		logger.Info("⚠️  No proxies configured. Running with direct connections.")
	}

	f := fetcher.New(cfg.Fetcher(), proxies, logger)
	var dns *security.DNSChecker
	if cfg.DNSChecks {
		dns = security.NewDNSChecker(cache.Default, logger)
	}
	p := pipeline.New(f, analyzer.New(dns, logger), cfg.Pipeline(), logger)

	s := &server{
		runner:  p,
		stats:   f.Stats,
		log:     logger,
		started: time.Now(),
	}

	if cfg.AsyncEnabled() {
		logger.Info("🔌 Connecting to Redis", "addr", cfg.RedisAddr)
		q, err := queue.New(cfg.RedisAddr)
		if err != nil {
			logger.Fatal("❌ Failed to connect to Redis", "err", err)
		}
		defer q.Close()
		logger.Info("✅ Connected to Redis Queue")

		logger.Info("🔌 Connecting to Database...")
		db, err := store.Connect(ctx, cfg.DBURL)
		if err != nil {
			logger.Fatal("❌ Failed to connect to DB", "err", err)
		}
		defer db.Close()
		logger.Info("✅ Connected to PostgreSQL & Migrations Applied")

		s.jobs, s.queue = db, q
	} else {
		logger.Warn("⚠️  REDIS_ADDR or DB_URL not set. Async job endpoints are disabled.")
	}

	// Synchronous analysis of a full request can run for minutes.
	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      s.routes(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 15 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGTERM, syscall.SIGINT)

	go func() {
		logger.Info(fmt.Sprintf("🚀 SiteIntel Engine v%s running on %s", version, cfg.ListenAddr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("❌ Server error", "err", err)
		}
	}()

	<-quit
	logger.Info("⏳ Shutdown signal received, draining in-flight requests...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("❌ Graceful shutdown failed", "err", err)
		return
	}
	logger.Info("✅ Server shut down cleanly.")
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/", s.infoHandler)
	r.Get("/health", s.healthHandler)
	r.Get("/performance", s.performanceHandler)
	r.Post("/analyze", s.analyzeHandler)
	r.Post("/analyze-batch", s.analyzeHandler)

	if s.jobs != nil && s.queue != nil {
		r.Route("/jobs", func(r chi.Router) {
			r.Post("/submit", s.submitHandler)
			r.Post("/upload", s.uploadHandler)
			r.Get("/{id}/status", s.statusHandler)
			r.Get("/{id}/results", s.resultsHandler)
		})
		r.Get("/queue/stats", s.queueStatsHandler)
	}
	return r
}

// enableCORS sets permissive CORS headers for frontend access and answers
// preflight requests directly.
func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.log.Error("❌ Error encoding response", "err", err)
	}
}

func (s *server) writeError(w http.ResponseWriter, status int, msg string) {
	s.writeJSON(w, status, map[string]string{"error": msg})
}

func (s *server) healthHandler(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
	})
}

func (s *server) performanceHandler(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"fetcher":        s.stats(),
		"goroutines":     runtime.NumGoroutine(),
		"uptime_seconds": int64(time.Since(s.started).Seconds()),
	}
	if s.queue != nil {
		lengths, err := s.queue.Lengths(r.Context())
		if err != nil {
			s.log.Warn("queue lengths", "err", err)
		} else {
			resp["queues"] = lengths
		}
	}
	s.writeJSON(w, http.StatusOK, resp)
}

func (s *server) infoHandler(w http.ResponseWriter, r *http.Request) {
	endpoints := map[string]string{
		"POST /analyze":       "Analyze a list of domains and wait for the results",
		"POST /analyze-batch": "Alias of /analyze",
		"GET /performance":    "Fetcher load and queue depth",
		"GET /health":         "Liveness check",
	}
	if s.jobs != nil {
		endpoints["POST /jobs/submit"] = "Queue an analysis job (JSON body)"
		endpoints["POST /jobs/upload"] = "Queue an analysis job from a CSV file (first column = domain)"
		endpoints["GET /jobs/{id}/status"] = "Job progress"
		endpoints["GET /jobs/{id}/results"] = "Job results once completed (?format=xlsx for a workbook)"
		endpoints["GET /queue/stats"] = "Pending tasks per priority and jobs per status"
	}

	guide := map[string]any{
		"service":   "SiteIntel Engine",
		"version":   version,
		"endpoints": endpoints,
		"capabilities": []string{
			"Platform detection (WordPress, Shopify, Wix, Squarespace, Webflow and more)",
			"Contact extraction with Cloudflare email decoding",
			"Priority-ranked emails",
			"SEO score and grade",
			"Social profile links",
			"Security headers, SPF and DMARC",
		},
		"limits": map[string]any{
			"max_domains":  models.MaxDomains,
			"batch_size":   fmt.Sprintf("%d-%d (default %d)", models.MinBatchSize, models.MaxBatchSize, models.DefaultBatchSize),
			"timeout_secs": fmt.Sprintf("%d-%d (default %d)", models.MinTimeout, models.MaxTimeout, models.DefaultTimeout),
		},
		"email_priority_guide": map[string]any{
			"default": models.DefaultEmailPriority,
			"rules": []string{
				"\"info@\" matches local parts starting with info, \"@gmail.com\" matches the domain and its subdomains",
				"Any other pattern is a case-insensitive substring match",
				"Earlier patterns rank higher; the first pattern earns the largest bonus",
				"Emails matching no pattern keep their base score",
				"At most 5 emails are returned per domain",
			},
			"examples": map[string][]string{
				"sales_first":    {"sales@", "info@"},
				"personal_first": {"@gmail.com", "@outlook.com", "info@"},
			},
		},
	}
	s.writeJSON(w, http.StatusOK, guide)
}
