package cli

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

// printSummary writes the end-of-run summary: totals, search hits, the
// category mapping, analysis time and one line per uploaded file.
func printSummary(w io.Writer, r *domain.RunReport) {
	fmt.Fprintf(w, "Total: %d docs\n", r.Total)
	for _, f := range r.ExtractFailures {
		fmt.Fprintf(w, "Skipped: %s (%s)\n", f.Path, f.Error)
	}
	fmt.Fprintf(w, "Search found: %d\n", len(r.Matches))
	if r.Classification != nil {
		fmt.Fprintf(w, "Classes: %s\n", formatLabels(r.Classification.Labels))
	} else {
		fmt.Fprintf(w, "Classes: unavailable (%s)\n", r.ClassificationError)
	}
	fmt.Fprintf(w, "Time: %.2fs\n", r.Elapsed.Seconds())
	printUploads(w, r.Uploads)
}

func printUploads(w io.Writer, results []domain.UploadResult) int {
	failed := 0
	for _, u := range results {
		if u.OK() {
			fmt.Fprintf(w, "Uploaded: %s\n", u.Name)
			continue
		}
		failed++
		fmt.Fprintf(w, "Upload failed: %s (%s)\n", u.Name, u.Error)
	}
	return failed
}

func formatLabels(labels map[string]domain.Category) string {
	paths := make([]string, 0, len(labels))
	for p := range labels {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	parts := make([]string, 0, len(paths))
	for _, p := range paths {
		parts = append(parts, p+"="+string(labels[p]))
	}
	return "{" + strings.Join(parts, ", ") + "}"
}
