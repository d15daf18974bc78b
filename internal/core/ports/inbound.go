package ports

import (
	"context"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

// CorpusLoader discovers the documents of one run.
type CorpusLoader interface {
	LoadCorpus(ctx context.Context, dir string) (domain.Corpus, error)
}

// DocumentSorter orders documents by their title key.
type DocumentSorter interface {
	Sort(ctx context.Context, docs domain.Corpus) (domain.Corpus, error)
}

// DocumentSearcher filters documents by a case-insensitive substring.
type DocumentSearcher interface {
	Search(ctx context.Context, query string, docs domain.Corpus) (domain.Corpus, error)
}

// DocumentClassifier assigns a category to every document.
type DocumentClassifier interface {
	Classify(ctx context.Context, docs domain.Corpus) (*domain.Classification, error)
}

// DocumentUploader pushes documents to the remote store.
type DocumentUploader interface {
	Upload(ctx context.Context, doc *domain.Document) (domain.UploadResult, error)
	UploadAll(ctx context.Context, docs domain.Corpus) []domain.UploadResult
}
