package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

type RunOptions struct {
	RunID     string
	Directory string
	Query     string
}

// RunUseCase executes the batch: load, extract once, sort, search, classify
// and finally upload the whole corpus.
type RunUseCase struct {
	loader     ports.CorpusLoader
	extract    *ExtractUseCase
	sorter     ports.DocumentSorter
	searcher   ports.DocumentSearcher
	classifier ports.DocumentClassifier
	uploader   ports.DocumentUploader
	metrics    ports.RunMetrics
	clock      func() time.Time
}

func NewRunUseCase(
	loader ports.CorpusLoader,
	extract *ExtractUseCase,
	sorter ports.DocumentSorter,
	searcher ports.DocumentSearcher,
	classifier ports.DocumentClassifier,
	uploader ports.DocumentUploader,
	metrics ports.RunMetrics,
) *RunUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &RunUseCase{
		loader:     loader,
		extract:    extract,
		sorter:     sorter,
		searcher:   searcher,
		classifier: classifier,
		uploader:   uploader,
		metrics:    metrics,
		clock:      time.Now,
	}
}

// Run returns an error only for run-level failures (missing directory,
// cancellation). Per-document and classification failures are recorded in
// the report.
func (uc *RunUseCase) Run(ctx context.Context, opts RunOptions) (*domain.RunReport, error) {
	started := uc.clock()
	report := &domain.RunReport{
		RunID:     opts.RunID,
		Directory: opts.Directory,
		Query:     opts.Query,
		StartedAt: started.UTC(),
	}

	corpus, err := uc.loader.LoadCorpus(ctx, opts.Directory)
	if err != nil {
		return nil, err
	}
	report.Total = len(corpus)
	uc.metrics.SetCorpusSize(len(corpus))
	uc.observe("load", started)

	stageStart := uc.clock()
	analyzable, failures, err := uc.extract.ExtractAll(ctx, corpus)
	if err != nil {
		return nil, fmt.Errorf("extract corpus: %w", err)
	}
	report.ExtractFailures = failures
	uc.observe("extract", stageStart)

	stageStart = uc.clock()
	sorted, err := uc.sorter.Sort(ctx, analyzable)
	if err != nil {
		return nil, err
	}
	report.Sorted = sorted.Paths()
	uc.observe("sort", stageStart)

	stageStart = uc.clock()
	matches, err := uc.searcher.Search(ctx, opts.Query, analyzable)
	if err != nil {
		return nil, err
	}
	report.Matches = matches.Paths()
	uc.observe("search", stageStart)

	stageStart = uc.clock()
	classification, err := uc.classifier.Classify(ctx, analyzable)
	if err != nil {
		slog.Error("classification_failed", "error", err)
		report.ClassificationError = err.Error()
	} else {
		report.Classification = classification
	}
	uc.observe("classify", stageStart)
	report.Elapsed = uc.clock().Sub(started)

	if uc.uploader != nil {
		stageStart = uc.clock()
		report.Uploads = uc.uploader.UploadAll(ctx, corpus)
		uc.observe("upload", stageStart)
	}

	if err := ctx.Err(); err != nil {
		return report, err
	}
	return report, nil
}

func (uc *RunUseCase) observe(stage string, since time.Time) {
	uc.metrics.ObserveStage(stage, uc.clock().Sub(since).Seconds())
}
