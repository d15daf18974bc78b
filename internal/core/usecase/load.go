package usecase

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

type LoadCorpusUseCase struct {
	source ports.DocumentSource
}

func NewLoadCorpusUseCase(source ports.DocumentSource) *LoadCorpusUseCase {
	return &LoadCorpusUseCase{source: source}
}

// LoadCorpus lists dir without recursing and keeps files with a recognized
// extension, in listing order.
func (uc *LoadCorpusUseCase) LoadCorpus(ctx context.Context, dir string) (domain.Corpus, error) {
	entries, err := uc.source.List(ctx, dir)
	if err != nil {
		return nil, fmt.Errorf("load corpus: %w", err)
	}

	corpus := make(domain.Corpus, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir {
			continue
		}
		if domain.FormatFromName(entry.Name) == domain.FormatUnsupported {
			slog.Debug("corpus_entry_skipped", "path", entry.Path)
			continue
		}
		corpus = append(corpus, domain.NewDocument(entry.Path, entry.Size))
	}
	return corpus, nil
}
