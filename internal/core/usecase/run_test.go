package usecase

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

func newTestRun(source *fakeSource, extractor *fakeExtractor, store *fakeStore, metrics *fakeMetrics) *RunUseCase {
	var uploader ports.DocumentUploader
	if store != nil {
		uploader = NewUploadUseCase(source, store, nil, nil, metrics, UploadOptions{})
	}
	return NewRunUseCase(
		NewLoadCorpusUseCase(source),
		NewExtractUseCase(extractor, metrics),
		NewSortUseCase(extractor, 0),
		NewSearchUseCase(extractor),
		NewClassifyUseCase(extractor, &fakeModel{}, ClassifierOptions{Rules: defaultRules()}),
		uploader,
		metrics,
	)
}

func TestRunProducesFullReport(t *testing.T) {
	source := &fakeSource{
		entries: []ports.FileEntry{
			{Path: "docs/b.docx", Name: "b.docx"},
			{Path: "docs/a.pdf", Name: "a.pdf"},
			{Path: "docs/broken.pdf", Name: "broken.pdf"},
			{Path: "docs/readme.md", Name: "readme.md"},
		},
		files: map[string][]byte{"docs/a.pdf": []byte("a"), "docs/b.docx": []byte("b"), "docs/broken.pdf": []byte("x")},
	}
	extractor := newFakeExtractor(map[string]string{
		"docs/a.pdf":  "Health data study",
		"docs/b.docx": "Code review",
	})
	extractor.errs["docs/broken.pdf"] = domain.WrapError(domain.ErrDecodeFailure, "extract docs/broken.pdf", errors.New("malformed"))
	store := &fakeStore{}
	metrics := &fakeMetrics{}

	report, err := newTestRun(source, extractor, store, metrics).Run(context.Background(), RunOptions{RunID: "r1", Directory: "docs", Query: "DATA"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Total != 3 {
		t.Fatalf("total = %d, want 3", report.Total)
	}
	if len(report.ExtractFailures) != 1 || report.ExtractFailures[0].Path != "docs/broken.pdf" {
		t.Fatalf("unexpected extract failures: %+v", report.ExtractFailures)
	}
	if want := []string{"docs/b.docx", "docs/a.pdf"}; !reflect.DeepEqual(report.Sorted, want) {
		t.Fatalf("sorted = %v, want %v", report.Sorted, want)
	}
	if want := []string{"docs/a.pdf"}; !reflect.DeepEqual(report.Matches, want) {
		t.Fatalf("matches = %v, want %v", report.Matches, want)
	}
	if report.Classification == nil || report.ClassificationError != "" {
		t.Fatalf("expected a classification, got error %q", report.ClassificationError)
	}
	if _, ok := report.Classification.Labels["docs/broken.pdf"]; ok {
		t.Fatalf("undecodable document should not be classified")
	}
	// Every loaded document is uploaded, including the undecodable one.
	if len(report.Uploads) != 3 || len(store.puts) != 3 {
		t.Fatalf("uploads = %d, puts = %d, want 3", len(report.Uploads), len(store.puts))
	}
	if want := []string{"load", "extract", "sort", "search", "classify", "upload"}; !reflect.DeepEqual(metrics.stages, want) {
		t.Fatalf("stages = %v, want %v", metrics.stages, want)
	}
	if metrics.lastCorpusSize != 3 {
		t.Fatalf("corpus size = %d, want 3", metrics.lastCorpusSize)
	}
}

func TestRunEmptyDirectoryRecordsClassificationError(t *testing.T) {
	report, err := newTestRun(&fakeSource{}, newFakeExtractor(nil), nil, &fakeMetrics{}).Run(context.Background(), RunOptions{Directory: "docs"})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if len(report.Sorted) != 0 || len(report.Matches) != 0 {
		t.Fatalf("expected empty sort and search results: %+v", report)
	}
	if report.Classification != nil || report.ClassificationError == "" {
		t.Fatalf("expected recorded classification error, got %+v", report.Classification)
	}
	if report.Uploads != nil {
		t.Fatalf("uploads should be skipped without an uploader")
	}
}

func TestRunMissingDirectoryIsFatal(t *testing.T) {
	source := &fakeSource{listErr: domain.WrapError(domain.ErrDirectoryNotFound, "list docs", errors.New("missing"))}

	_, err := newTestRun(source, newFakeExtractor(nil), nil, &fakeMetrics{}).Run(context.Background(), RunOptions{Directory: "docs"})
	if !domain.IsKind(err, domain.ErrDirectoryNotFound) {
		t.Fatalf("expected ErrDirectoryNotFound, got %v", err)
	}
}
