package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"siteintel/internal/fetcher"
	"siteintel/internal/pipeline"
	"siteintel/internal/scoring"
)

type Config struct {
	ListenAddr string
	RedisAddr  string
	DBURL      string

	LogLevel string
	LogJSON  bool

	FetchConcurrency int
	FetchRate        float64
	FetchBurst       int
	MaxRedirects     int
	MaxBodyBytes     int64
	UserAgent        string
	InsecureTLS      bool
	RetryBackoff     time.Duration

	BatchDelay           time.Duration
	RequestTimeout       time.Duration
	ContactFallbackPages int
	DNSChecks            bool
	ProxyList            []string
	WorkerJobTimeout     time.Duration
}

func getenv(key, def string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return def
}

// Load reads the environment, after seeding it from a .env file in the
// working directory when one exists. Variables already set win over the file.
func Load() (Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (Config, error) {
	p := parser{}
	cfg := Config{
		ListenAddr: getenv("LISTEN_ADDR", ":8080"),
		RedisAddr:  os.Getenv("REDIS_ADDR"),
		DBURL:      os.Getenv("DB_URL"),
		LogLevel:   getenv("LOG_LEVEL", "info"),
		LogJSON:    p.bool("LOG_JSON", false),

		FetchConcurrency: p.int("FETCH_CONCURRENCY", 10),
		FetchRate:        p.float("FETCH_RATE", 20),
		FetchBurst:       p.int("FETCH_BURST", 50),
		MaxRedirects:     p.int("MAX_REDIRECTS", 3),
		MaxBodyBytes:     int64(p.int("MAX_BODY_BYTES", 5<<20)),
		UserAgent:        getenv("USER_AGENT", fetcher.DefaultUserAgent),
		InsecureTLS:      p.bool("INSECURE_TLS", false),
		RetryBackoff:     time.Duration(p.int("RETRY_BACKOFF_MS", 500)) * time.Millisecond,

		BatchDelay:           time.Duration(p.int("BATCH_DELAY_MS", 200)) * time.Millisecond,
		RequestTimeout:       time.Duration(p.int("REQUEST_TIMEOUT_SECS", 0)) * time.Second,
		ContactFallbackPages: p.int("CONTACT_FALLBACK_PAGES", 3),
		DNSChecks:            p.bool("DNS_CHECKS", true),
		ProxyList:            splitList(os.Getenv("PROXY_LIST")),
		WorkerJobTimeout:     time.Duration(p.int("WORKER_JOB_TIMEOUT_SECS", 1800)) * time.Second,
	}
	if p.err != nil {
		return cfg, p.err
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	switch {
	case c.FetchConcurrency < 1:
		return fmt.Errorf("FETCH_CONCURRENCY must be at least 1, got %d", c.FetchConcurrency)
	case c.FetchRate <= 0:
		return fmt.Errorf("FETCH_RATE must be positive, got %v", c.FetchRate)
	case c.FetchBurst < 1:
		return fmt.Errorf("FETCH_BURST must be at least 1, got %d", c.FetchBurst)
	case c.MaxRedirects < 0:
		return fmt.Errorf("MAX_REDIRECTS must not be negative, got %d", c.MaxRedirects)
	case c.MaxBodyBytes < 1024:
		return fmt.Errorf("MAX_BODY_BYTES must be at least 1024, got %d", c.MaxBodyBytes)
	case c.RetryBackoff < 0 || c.BatchDelay < 0 || c.RequestTimeout < 0:
		return fmt.Errorf("durations must not be negative")
	case c.ContactFallbackPages < 0:
		return fmt.Errorf("CONTACT_FALLBACK_PAGES must not be negative, got %d", c.ContactFallbackPages)
	case c.WorkerJobTimeout <= 0:
		return fmt.Errorf("WORKER_JOB_TIMEOUT_SECS must be positive")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error, got %q", c.LogLevel)
	}
	return nil
}

// AsyncEnabled reports whether the job queue and store are configured.
func (c Config) AsyncEnabled() bool {
	return c.RedisAddr != "" && c.DBURL != ""
}

func (c Config) Fetcher() fetcher.Config {
	return fetcher.Config{
		Concurrency:  c.FetchConcurrency,
		Rate:         c.FetchRate,
		Burst:        c.FetchBurst,
		MaxRedirects: c.MaxRedirects,
		MaxBodyBytes: c.MaxBodyBytes,
		UserAgent:    c.UserAgent,
		InsecureTLS:  c.InsecureTLS,
		RetryBackoff: c.RetryBackoff,
	}
}

func (c Config) Pipeline() pipeline.Config {
	cfg := pipeline.DefaultConfig()
	cfg.BatchDelay = c.BatchDelay
	cfg.RequestTimeout = c.RequestTimeout
	cfg.ContactFallbackPages = c.ContactFallbackPages
	cfg.Email = scoring.DefaultEmailConfig()
	return cfg
}

type parser struct {
	err error
}

func (p *parser) int(key string, def int) int {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%s: %w", key, err)
		}
		return def
	}
	return n
}

func (p *parser) float(key string, def float64) float64 {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%s: %w", key, err)
		}
		return def
	}
	return f
}

func (p *parser) bool(key string, def bool) bool {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return def
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		if p.err == nil {
			p.err = fmt.Errorf("%s: %w", key, err)
		}
		return def
	}
	return b
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
