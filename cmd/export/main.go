// Command export writes the stored results of an analysis job to an XLSX
// workbook.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"siteintel/internal/config"
	"siteintel/internal/models"
	"siteintel/internal/report"
	"siteintel/internal/store"
)

func main() {
	jobID := flag.String("job", "", "Job ID to export")
	outputPath := flag.String("output", "", "Output XLSX file (default siteintel-<job>.xlsx)")
	flag.Parse()

	if *jobID == "" {
		fmt.Fprintln(os.Stderr, "Missing -job")
		flag.Usage()
		os.Exit(2)
	}
	if *outputPath == "" {
		*outputPath = "siteintel-" + *jobID + ".xlsx"
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid configuration: %v\n", err)
		os.Exit(1)
	}
	if cfg.DBURL == "" {
		fmt.Fprintln(os.Stderr, "DB_URL environment variable is required")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	db, err := store.Connect(ctx, cfg.DBURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to connect to DB: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	job, err := db.GetJob(ctx, *jobID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load job: %v\n", err)
		os.Exit(1)
	}
	if job.Status != models.JobCompleted {
		fmt.Fprintf(os.Stderr, "Job %s is %s (%d/%d domains), exporting partial results\n",
			job.ID, job.Status, job.ProcessedDomains, job.TotalDomains)
	}

	results, err := db.Results(ctx, *jobID)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to query results: %v\n", err)
		os.Exit(1)
	}

	f, err := os.Create(*outputPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output file: %v\n", err)
		os.Exit(1)
	}
	if err := report.WriteXLSX(f, results); err != nil {
		f.Close()
		fmt.Fprintf(os.Stderr, "Failed to write workbook: %v\n", err)
		os.Exit(1)
	}
	if err := f.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to write workbook: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Exported %d results to %s\n", len(results), *outputPath)
}
