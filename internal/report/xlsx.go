// Package report renders analysis results as an XLSX workbook with one row
// per domain and a summary sheet.
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	"siteintel/internal/models"
)

const (
	ResultsSheet = "Results"
	SummarySheet = "Summary"
)

// Columns is the header row of the results sheet.
var Columns = func() []string {
	cols := []string{
		"Domain", "Status", "Platform", "Purpose", "HTTPS", "SEO Score", "SEO Grade",
		"Title Length", "Meta Description", "H1 Count", "Open Graph", "Twitter Card", "Structured Data",
		"Emails", "Phones", "Contact Pages",
	}
	for _, n := range models.SocialNetworks {
		cols = append(cols, strings.ToUpper(n[:1])+n[1:])
	}
	return append(cols,
		"Total Social", "HSTS", "CSP", "X-Frame-Options", "SPF", "DMARC",
		"HTTP Status", "Final URL", "Error", "Analyzed At",
	)
}()

func row(r models.AnalysisResult) []any {
	pages := make([]string, 0, len(r.ContactPages))
	for _, p := range r.ContactPages {
		pages = append(pages, p.URL)
	}
	out := []any{
		r.Domain, string(r.Status), string(r.Platform), string(r.Purpose), r.IsHTTPS.String(),
		r.SEOScore, string(r.SEOGrade),
		r.TitleLength, r.HasMetaDescription.String(), r.H1Count,
		r.HasOpenGraph.String(), r.HasTwitterCard.String(), r.HasStructuredData.String(),
		strings.Join(r.Emails, "; "), strings.Join(r.Phones, "; "), strings.Join(pages, "; "),
	}
	for _, n := range models.SocialNetworks {
		out = append(out, strings.Join(r.SocialLinks[n], "; "))
	}
	analyzed := ""
	if !r.AnalyzedAt.IsZero() {
		analyzed = r.AnalyzedAt.UTC().Format(time.RFC3339)
	}
	return append(out,
		r.TotalSocialLinks,
		r.Security.HasHSTS.String(), r.Security.HasCSP.String(), r.Security.HasXFrameOptions.String(),
		r.Security.HasSPF.String(), r.Security.HasDMARC.String(),
		r.HTTPStatus, r.FinalURL, r.ErrorDetail, analyzed,
	)
}

// WriteXLSX writes results in input order followed by a summary sheet.
func WriteXLSX(w io.Writer, results []models.AnalysisResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", ResultsSheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	header := make([]any, len(Columns))
	for i, c := range Columns {
		header[i] = c
	}
	if err := f.SetSheetRow(ResultsSheet, "A1", &header); err != nil {
		return fmt.Errorf("write header: %w", err)
	}
	bold, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return fmt.Errorf("header style: %w", err)
	}
	last, _ := excelize.CoordinatesToCellName(len(Columns), 1)
	if err := f.SetCellStyle(ResultsSheet, "A1", last, bold); err != nil {
		return fmt.Errorf("header style: %w", err)
	}

	for i, r := range results {
		cell, _ := excelize.CoordinatesToCellName(1, i+2)
		values := row(r)
		if err := f.SetSheetRow(ResultsSheet, cell, &values); err != nil {
			return fmt.Errorf("write row %d: %w", i+2, err)
		}
	}

	if err := f.SetPanes(ResultsSheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freeze header: %w", err)
	}
	if len(results) > 0 {
		end, _ := excelize.CoordinatesToCellName(len(Columns), len(results)+1)
		if err := f.AutoFilter(ResultsSheet, "A1:"+end, nil); err != nil {
			return fmt.Errorf("autofilter: %w", err)
		}
	}

	if err := writeSummary(f, results); err != nil {
		return err
	}
	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeSummary(f *excelize.File, results []models.AnalysisResult) error {
	if _, err := f.NewSheet(SummarySheet); err != nil {
		return fmt.Errorf("summary sheet: %w", err)
	}

	rows := [][]any{{"Metric", "Value"}, {"Domains", len(results)}}
	statuses := count(results, func(r models.AnalysisResult) string { return string(r.Status) })
	for _, s := range []models.SiteStatus{models.StatusActive, models.StatusInactive, models.StatusError, models.StatusSkipped} {
		rows = append(rows, []any{"Status " + string(s), statuses[string(s)]})
	}
	withEmails := 0
	for _, r := range results {
		if len(r.Emails) > 0 {
			withEmails++
		}
	}
	rows = append(rows, []any{"With emails", withEmails})

	platforms := count(results, func(r models.AnalysisResult) string { return string(r.Platform) })
	names := make([]string, 0, len(platforms))
	for p := range platforms {
		names = append(names, p)
	}
	sort.Strings(names)
	for _, p := range names {
		rows = append(rows, []any{"Platform " + p, platforms[p]})
	}

	for i, r := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(SummarySheet, cell, &r); err != nil {
			return fmt.Errorf("write summary: %w", err)
		}
	}
	return nil
}

func count(results []models.AnalysisResult, key func(models.AnalysisResult) string) map[string]int {
	out := map[string]int{}
	for _, r := range results {
		out[key(r)]++
	}
	return out
}
