package usecase

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

const sniffLen = 3072

type UploadOptions struct {
	RunID string
	// Timeout bounds one remote call; zero means no limit.
	Timeout time.Duration
}

type UploadUseCase struct {
	source  ports.DocumentSource
	store   ports.RemoteStore
	typer   ports.ContentTyper
	events  ports.EventPublisher
	metrics ports.RunMetrics
	opts    UploadOptions
	clock   func() time.Time
}

func NewUploadUseCase(
	source ports.DocumentSource,
	store ports.RemoteStore,
	typer ports.ContentTyper,
	events ports.EventPublisher,
	metrics ports.RunMetrics,
	opts UploadOptions,
) *UploadUseCase {
	if metrics == nil {
		metrics = noopMetrics{}
	}
	return &UploadUseCase{
		source:  source,
		store:   store,
		typer:   typer,
		events:  events,
		metrics: metrics,
		opts:    opts,
		clock:   time.Now,
	}
}

// Upload sends the raw bytes of doc to the remote store under its base name.
func (uc *UploadUseCase) Upload(ctx context.Context, doc *domain.Document) (domain.UploadResult, error) {
	result := domain.UploadResult{Path: doc.Path, Name: doc.Name}

	started := uc.clock()
	remoteID, mimeType, err := uc.put(ctx, doc)
	uc.metrics.ObserveUpload(uc.clock().Sub(started).Seconds(), err)
	result.MimeType = mimeType
	if err != nil {
		err = domain.WrapError(domain.ErrUploadFailure, "upload "+doc.Path, err)
		result.Error = err.Error()
		return result, err
	}
	result.RemoteID = remoteID

	if uc.events != nil {
		event := domain.UploadEvent{
			RunID:      uc.opts.RunID,
			Path:       doc.Path,
			Name:       doc.Name,
			RemoteID:   remoteID,
			MimeType:   mimeType,
			UploadedAt: uc.clock().UTC(),
		}
		if err := uc.events.PublishUploaded(ctx, event); err != nil {
			slog.Warn("upload_event_publish_failed", "path", doc.Path, "error", err)
		}
	}
	return result, nil
}

// UploadAll uploads documents one at a time. A failed document does not stop
// the remaining ones.
func (uc *UploadUseCase) UploadAll(ctx context.Context, docs domain.Corpus) []domain.UploadResult {
	results := make([]domain.UploadResult, 0, len(docs))
	for _, doc := range docs {
		if err := ctx.Err(); err != nil {
			results = append(results, domain.UploadResult{
				Path:  doc.Path,
				Name:  doc.Name,
				Error: domain.WrapError(domain.ErrUploadFailure, "upload "+doc.Path, err).Error(),
			})
			continue
		}
		result, err := uc.Upload(ctx, doc)
		if err != nil {
			slog.Error("document_upload_failed", "path", doc.Path, "error", err)
		} else {
			slog.Info("document_uploaded", "path", doc.Path, "remote_id", result.RemoteID)
		}
		results = append(results, result)
	}
	return results
}

func (uc *UploadUseCase) put(ctx context.Context, doc *domain.Document) (string, string, error) {
	rc, err := uc.source.Open(ctx, doc.Path)
	if err != nil {
		return "", "", err
	}
	defer rc.Close()

	body := bufio.NewReaderSize(rc, sniffLen)
	head, _ := body.Peek(sniffLen)
	mimeType := "application/octet-stream"
	if uc.typer != nil {
		mimeType = uc.typer.Detect(head)
	}

	callCtx := ctx
	if uc.opts.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, uc.opts.Timeout)
		defer cancel()
	}

	remoteID, err := uc.store.Put(callCtx, doc.Name, mimeType, body)
	if err != nil {
		return "", mimeType, fmt.Errorf("put %s: %w", doc.Name, err)
	}
	return remoteID, mimeType, nil
}
