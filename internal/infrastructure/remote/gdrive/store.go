// Package gdrive stores uploaded documents in Google Drive.
package gdrive

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"golang.org/x/time/rate"
	"google.golang.org/api/drive/v3"
	"google.golang.org/api/googleapi"
	"google.golang.org/api/option"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/infrastructure/resilience"
)

type StoreOptions struct {
	// FolderID is the parent folder of new files; empty means My Drive root.
	FolderID string
	// RatePerSecond throttles create calls; zero disables throttling.
	RatePerSecond float64
	Burst         int
	// Executor retries transient failures. Nil means a single attempt.
	Executor *resilience.Executor
}

type Store struct {
	files    *drive.FilesService
	folderID string
	limiter  *rate.Limiter
	executor *resilience.Executor
}

// NewStore builds a Drive client from clientOpts, which carry the session
// established by Authenticate.
func NewStore(ctx context.Context, opts StoreOptions, clientOpts ...option.ClientOption) (*Store, error) {
	svc, err := drive.NewService(ctx, clientOpts...)
	if err != nil {
		return nil, domain.WrapError(domain.ErrAuthentication, "create drive client", err)
	}

	s := &Store{
		files:    svc.Files,
		folderID: opts.FolderID,
		executor: opts.Executor,
	}
	if opts.RatePerSecond > 0 {
		burst := opts.Burst
		if burst <= 0 {
			burst = 1
		}
		s.limiter = rate.NewLimiter(rate.Limit(opts.RatePerSecond), burst)
	}
	return s, nil
}

// Put creates a new Drive file named name holding body. Drive allows
// duplicate names, so every call creates a new file.
func (s *Store) Put(ctx context.Context, name, mimeType string, body io.Reader) (string, error) {
	meta := &drive.File{Name: name, MimeType: mimeType}
	if s.folderID != "" {
		meta.Parents = []string{s.folderID}
	}

	if s.executor == nil {
		return s.create(ctx, meta, body)
	}

	// A retried attempt needs the content again.
	content, err := io.ReadAll(body)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", name, err)
	}
	var id string
	err = s.executor.Do(ctx, "drive.files.create", classifyDriveError, func(ctx context.Context) error {
		var callErr error
		id, callErr = s.create(ctx, meta, bytes.NewReader(content))
		return callErr
	})
	if err != nil && resilience.IsCircuitOpen(err) {
		return "", domain.WrapError(domain.ErrTemporary, "drive create "+name, err)
	}
	return id, err
}

func (s *Store) create(ctx context.Context, meta *drive.File, body io.Reader) (string, error) {
	if s.limiter != nil {
		if err := s.limiter.Wait(ctx); err != nil {
			return "", err
		}
	}

	file, err := s.files.Create(meta).
		Media(body, googleapi.ContentType(meta.MimeType)).
		Fields("id").
		Context(ctx).
		Do()
	if err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusUnauthorized {
			return "", domain.WrapError(domain.ErrAuthentication, "drive create "+meta.Name, err)
		}
		return "", fmt.Errorf("drive create %s: %w", meta.Name, err)
	}
	return file.Id, nil
}

func classifyDriveError(err error) resilience.Verdict {
	var apiErr *googleapi.Error
	if errors.As(err, &apiErr) {
		return resilience.HTTPStatus(apiErr.Code)
	}
	if domain.IsKind(err, domain.ErrAuthentication) {
		return resilience.Ignored
	}
	// Transport failures never reached Drive.
	return resilience.Transient
}
