package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"siteintel/internal/analyzer"
	"siteintel/internal/cache"
	"siteintel/internal/config"
	"siteintel/internal/fetcher"
	"siteintel/internal/logging"
	"siteintel/internal/pipeline"
	"siteintel/internal/proxy"
	"siteintel/internal/queue"
	"siteintel/internal/security"
	"siteintel/internal/store"
	"siteintel/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "❌ Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.LogJSON)
	logger.Info("🚀 Starting SiteIntel Worker...")

	if !cfg.AsyncEnabled() {
		logger.Fatal("❌ REDIS_ADDR and DB_URL environment variables are required")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	q, err := queue.New(cfg.RedisAddr)
	if err != nil {
		logger.Fatal("❌ Failed to connect to Redis", "err", err)
	}
	defer q.Close()
	logger.Info("✅ Connected to Redis")

	db, err := store.Connect(ctx, cfg.DBURL)
	if err != nil {
		logger.Fatal("❌ Failed to connect to DB", "err", err)
	}
	defer db.Close()
	logger.Info("✅ Connected to PostgreSQL")

	cache.Default.StartCleanup(ctx, 5*time.Minute)

	proxies, err := proxy.New(cfg.ProxyList)
	if err != nil {
		logger.Fatal("❌ Failed to initialize proxy manager", "err", err)
	}
	if proxies.Enabled() {
		logger.Info("🛡️  Proxy rotation enabled", "proxies", proxies.Len())
	}

	f := fetcher.New(cfg.Fetcher(), proxies, logger)
	var dns *security.DNSChecker
	if cfg.DNSChecks {
		dns = security.NewDNSChecker(cache.Default, logger)
	}

	r := &worker.Runner{
		Tasks:      q,
		Store:      db,
		Pipeline:   pipeline.New(f, analyzer.New(dns, logger), cfg.Pipeline(), logger),
		Log:        logger,
		JobTimeout: cfg.WorkerJobTimeout,
	}
	r.Start(ctx)
}
