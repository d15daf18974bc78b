package usecase

import (
	"context"
	"log/slog"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

type ExtractUseCase struct {
	extractor ports.TextExtractor
	metrics   ports.RunMetrics
}

func NewExtractUseCase(extractor ports.TextExtractor, metrics ports.RunMetrics) *ExtractUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &ExtractUseCase{extractor: extractor, metrics: metrics}
}

// ExtractAll fills the text cache of every document. Documents that fail to
// extract are reported and left out of the returned corpus.
func (uc *ExtractUseCase) ExtractAll(ctx context.Context, docs domain.Corpus) (domain.Corpus, []domain.DocumentFailure, error) {
	ok := make(domain.Corpus, 0, len(docs))
	var failures []domain.DocumentFailure
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			return nil, nil, err
		}
		_, err := documentText(ctx, uc.extractor, doc)
		uc.metrics.ObserveExtract(err)
		if err != nil {
			slog.Warn("document_extract_failed", "path", doc.Path, "error", err)
			failures = append(failures, domain.DocumentFailure{Path: doc.Path, Error: err.Error()})
			continue
		}
		ok = append(ok, doc)
	}
	return ok, failures, nil
}

// documentText returns the cached text of doc, extracting it on first use.
func documentText(ctx context.Context, extractor ports.TextExtractor, doc *domain.Document) (string, error) {
	if text, ok := doc.CachedText(); ok {
		return text, nil
	}
	text, err := extractor.Extract(ctx, doc)
	if err != nil {
		return "", err
	}
	doc.SetText(text)
	return text, nil
}

func corpusTexts(ctx context.Context, extractor ports.TextExtractor, docs domain.Corpus) ([]string, error) {
	texts := make([]string, 0, len(docs))
	for _, doc := range docs {
		text, err := documentText(ctx, extractor, doc)
		if err != nil {
			return nil, err
		}
		texts = append(texts, text)
	}
	return texts, nil
}

type noopMetrics struct{}

func (noopMetrics) ObserveStage(string, float64) {}
func (noopMetrics) ObserveExtract(error)         {}
func (noopMetrics) ObserveUpload(float64, error) {}
func (noopMetrics) SetCorpusSize(int)            {}
