// Command sitescan analyzes domains in-process and writes the results as
// JSON or as an XLSX workbook.
package main

import (
	"bufio"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"siteintel/internal/analyzer"
	"siteintel/internal/cache"
	"siteintel/internal/config"
	"siteintel/internal/fetcher"
	"siteintel/internal/logging"
	"siteintel/internal/models"
	"siteintel/internal/pipeline"
	"siteintel/internal/proxy"
	"siteintel/internal/report"
	"siteintel/internal/security"
)

func main() {
	file := flag.String("f", "", "File with one domain per line (# starts a comment)")
	output := flag.String("o", "-", "Output path; .xlsx writes a workbook, anything else JSON. - is stdout")
	batch := flag.Int("batch", models.DefaultBatchSize, "Domains analyzed concurrently per batch")
	timeout := flag.Int("timeout", models.DefaultTimeout, "Per-domain timeout in seconds")
	priority := flag.String("priority", "", "Comma-separated email priority patterns")
	content := flag.Bool("content", false, "Include raw page content in the results")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	// Logs go to stderr so JSON on stdout stays clean.
	logger := logging.NewWriter(os.Stderr, cfg.LogLevel, cfg.LogJSON)

	domains := flag.Args()
	if *file != "" {
		f, err := os.Open(*file)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open domain list: %v\n", err)
			os.Exit(1)
		}
		fromFile, err := readDomains(f)
		f.Close()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to read domain list: %v\n", err)
			os.Exit(1)
		}
		domains = append(domains, fromFile...)
	}

	req := models.AnalysisRequest{
		Domains:        domains,
		BatchSize:      *batch,
		Timeout:        *timeout,
		IncludeContent: *content,
		EmailPriority:  splitPatterns(*priority),
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	proxies, err := proxy.New(cfg.ProxyList)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid proxy list: %v\n", err)
		os.Exit(1)
	}
	f := fetcher.New(cfg.Fetcher(), proxies, logger)
	var dns *security.DNSChecker
	if cfg.DNSChecks {
		dns = security.NewDNSChecker(cache.Default, logger)
	}
	p := pipeline.New(f, analyzer.New(dns, logger), cfg.Pipeline(), logger)

	start := time.Now()
	results, err := p.Run(ctx, req)
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}
	logger.Info("✅ Scan finished", "domains", len(results), "elapsed", time.Since(start).Round(time.Millisecond))

	if err := writeOutput(*output, results); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write results: %v\n", err)
		os.Exit(1)
	}
}

// readDomains returns the non-blank, non-comment lines of r.
func readDomains(r io.Reader) ([]string, error) {
	var out []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if i := strings.Index(line, "#"); i >= 0 {
			line = strings.TrimSpace(line[:i])
		}
		if line != "" {
			out = append(out, line)
		}
	}
	return out, sc.Err()
}

func splitPatterns(s string) []string {
	var out []string
	for _, p := range strings.Split(s, ",") {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

func writeOutput(path string, results []models.AnalysisResult) error {
	if path == "-" {
		return encode(os.Stdout, path, results)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := encode(f, path, results); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func encode(w io.Writer, path string, results []models.AnalysisResult) error {
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return report.WriteXLSX(w, results)
	}
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(results)
}
