package report

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

const (
	sheetSummary   = "Summary"
	sheetDocuments = "Documents"
	sheetUploads   = "Uploads"
)

// writeXLSX lays the report out on three sheets: run summary, one row per
// analysed document in sorted order, and one row per upload.
func writeXLSX(w io.Writer, r *domain.RunReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", sheetSummary); err != nil {
		return err
	}
	for _, name := range []string{sheetDocuments, sheetUploads} {
		if _, err := f.NewSheet(name); err != nil {
			return err
		}
	}

	summary := [][]any{
		{"Run ID", r.RunID},
		{"Directory", r.Directory},
		{"Started", r.StartedAt.Format(time.RFC3339)},
		{"Total documents", r.Total},
		{"Extraction failures", len(r.ExtractFailures)},
		{"Query", r.Query},
		{"Search matches", len(r.Matches)},
		{"Elapsed seconds", r.Elapsed.Seconds()},
		{"Classification error", r.ClassificationError},
	}
	if err := writeRows(f, sheetSummary, summary); err != nil {
		return err
	}

	matched := make(map[string]bool, len(r.Matches))
	for _, p := range r.Matches {
		matched[p] = true
	}
	docs := [][]any{{"Position", "Path", "Matches query", "Heuristic", "Label"}}
	for i, p := range r.Sorted {
		var heuristic, label string
		if r.Classification != nil {
			heuristic = string(r.Classification.Heuristic[p])
			label = string(r.Classification.Labels[p])
		}
		docs = append(docs, []any{i + 1, p, matched[p], heuristic, label})
	}
	for _, failure := range r.ExtractFailures {
		docs = append(docs, []any{"", failure.Path, false, "", "extract failed: " + failure.Error})
	}
	if err := writeRows(f, sheetDocuments, docs); err != nil {
		return err
	}

	uploads := [][]any{{"Path", "Name", "Remote ID", "MIME type", "Error"}}
	for _, u := range r.Uploads {
		uploads = append(uploads, []any{u.Path, u.Name, u.RemoteID, u.MimeType, u.Error})
	}
	if err := writeRows(f, sheetUploads, uploads); err != nil {
		return err
	}

	_, err := f.WriteTo(w)
	return err
}

func writeRows(f *excelize.File, sheet string, rows [][]any) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("%s row %d: %w", sheet, i+1, err)
		}
	}
	return nil
}
