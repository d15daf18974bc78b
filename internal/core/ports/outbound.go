package ports

import (
	"context"
	"io"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

// FileEntry is one entry of a directory listing.
type FileEntry struct {
	Path  string
	Name  string
	Size  int64
	IsDir bool
}

// DocumentSource lists and opens local documents.
type DocumentSource interface {
	List(ctx context.Context, dir string) ([]FileEntry, error)
	Open(ctx context.Context, path string) (io.ReadCloser, error)
}

// TextExtractor extracts plain text from a document on disk.
type TextExtractor interface {
	Extract(ctx context.Context, doc *domain.Document) (string, error)
}

// LabelModel is the statistical stage of the classifier. It is fit on train
// texts and labels and returns predictions for eval texts.
type LabelModel interface {
	FitPredict(ctx context.Context, train []string, labels []domain.Category, eval []string) ([]domain.Category, error)
}

// RemoteStore receives uploaded documents.
type RemoteStore interface {
	Put(ctx context.Context, name, mimeType string, body io.Reader) (string, error)
}

// EventPublisher announces completed uploads.
type EventPublisher interface {
	PublishUploaded(ctx context.Context, event domain.UploadEvent) error
}

// RunMetrics observes pipeline stages.
type RunMetrics interface {
	ObserveStage(stage string, seconds float64)
	ObserveExtract(err error)
	ObserveUpload(seconds float64, err error)
	SetCorpusSize(n int)
}

// ContentTyper detects a MIME type from the first bytes of a file.
type ContentTyper interface {
	Detect(head []byte) string
}
