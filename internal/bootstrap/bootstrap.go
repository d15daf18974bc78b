package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/kirillkom/docshelf/internal/config"
	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
	"github.com/kirillkom/docshelf/internal/core/usecase"
	"github.com/kirillkom/docshelf/internal/infrastructure/classifier/naivebayes"
	"github.com/kirillkom/docshelf/internal/infrastructure/extractor/document"
	"github.com/kirillkom/docshelf/internal/infrastructure/mimedetect"
	"github.com/kirillkom/docshelf/internal/infrastructure/queue/nats"
	"github.com/kirillkom/docshelf/internal/infrastructure/remote/gdrive"
	"github.com/kirillkom/docshelf/internal/infrastructure/resilience"
	"github.com/kirillkom/docshelf/internal/infrastructure/storage/localfs"
	"github.com/kirillkom/docshelf/internal/observability/metrics"
)

type Options struct {
	// Uploads builds the upload sink. Drive login happens here, before any
	// analysis, so a failed session aborts the run early.
	Uploads bool
	// Fs defaults to the OS filesystem.
	Fs afero.Fs
	// Store replaces the configured remote store.
	Store ports.RemoteStore
}

type App struct {
	Config *config.Config
	RunID  string
	Fs     afero.Fs

	Loader     *usecase.LoadCorpusUseCase
	Extract    *usecase.ExtractUseCase
	Sorter     *usecase.SortUseCase
	Searcher   *usecase.SearchUseCase
	Classifier *usecase.ClassifyUseCase
	// Uploader is nil when uploads are disabled.
	Uploader *usecase.UploadUseCase
	Run      *usecase.RunUseCase
	Metrics  *metrics.RunMetrics

	closeFns []func()
}

func New(ctx context.Context, cfg *config.Config, opts Options) (*App, error) {
	fsys := opts.Fs
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	app := &App{
		Config:  cfg,
		RunID:   uuid.NewString(),
		Fs:      fsys,
		Metrics: metrics.NewRunMetrics("docshelf"),
	}

	source := localfs.New(fsys)
	extractor := document.NewExtractor(fsys)

	app.Loader = usecase.NewLoadCorpusUseCase(source)
	app.Extract = usecase.NewExtractUseCase(extractor, app.Metrics)
	app.Sorter = usecase.NewSortUseCase(extractor, cfg.TitleKeyLength)
	app.Searcher = usecase.NewSearchUseCase(extractor)
	app.Classifier = usecase.NewClassifyUseCase(extractor, naivebayes.New(cfg.Classifier.Alpha), usecase.ClassifierOptions{
		Rules:    cfg.Rules(),
		Fallback: domain.Category(cfg.FallbackCategory),
		Policy:   domain.KeywordPolicy(cfg.KeywordPolicy),
		Mode:     domain.ClassifierMode(cfg.Classifier.Mode),
	})

	if opts.Uploads {
		store := opts.Store
		if store == nil {
			var err error
			store, err = newRemoteStore(ctx, cfg, fsys)
			if err != nil {
				return nil, err
			}
		}
		if store != nil {
			var events ports.EventPublisher
			if cfg.NATS.URL != "" {
				publisher, err := nats.Connect(cfg.NATS.URL, cfg.NATS.Subject, nats.Options{
					Executor: resilience.NewExecutor(resilience.DefaultPolicy()),
				})
				if err != nil {
					slog.Warn("upload_events_disabled", "url", cfg.NATS.URL, "error", err)
				} else {
					events = publisher
					app.closeFns = append(app.closeFns, publisher.Close)
				}
			}
			app.Uploader = usecase.NewUploadUseCase(source, store, mimedetect.New(), events, app.Metrics, usecase.UploadOptions{
				RunID:   app.RunID,
				Timeout: cfg.Upload.Timeout,
			})
		}
	}

	var uploader ports.DocumentUploader
	if app.Uploader != nil {
		uploader = app.Uploader
	}
	app.Run = usecase.NewRunUseCase(app.Loader, app.Extract, app.Sorter, app.Searcher, app.Classifier, uploader, app.Metrics)
	return app, nil
}

// newRemoteStore returns nil for the "none" sink.
func newRemoteStore(ctx context.Context, cfg *config.Config, fsys afero.Fs) (ports.RemoteStore, error) {
	switch cfg.Upload.Sink {
	case "none":
		return nil, nil
	case "local":
		mirror, err := localfs.NewMirror(fsys, cfg.Upload.MirrorDir)
		if err != nil {
			return nil, fmt.Errorf("init upload mirror: %w", err)
		}
		return mirror, nil
	default:
		clientOpts, err := gdrive.Authenticate(ctx, gdrive.AuthConfig{
			Mode:              gdrive.AuthMode(cfg.Drive.Auth),
			ClientSecretsFile: cfg.Drive.ClientSecretsFile,
			TokenFile:         cfg.Drive.TokenFile,
			CredentialsFile:   cfg.Drive.CredentialsFile,
			CallbackAddr:      cfg.Drive.CallbackAddr,
			Prompt: func(url string) {
				fmt.Fprintf(os.Stderr, "Open this URL to authorize docshelf:\n%s\n", url)
			},
		})
		if err != nil {
			return nil, err
		}

		storeOpts := gdrive.StoreOptions{
			FolderID:      cfg.Drive.FolderID,
			RatePerSecond: cfg.Upload.RatePerSecond,
			Burst:         cfg.Upload.Burst,
		}
		if cfg.Upload.Retry.Enabled {
			policy := resilience.DefaultPolicy()
			policy.Attempts = cfg.Upload.Retry.Attempts
			policy.Backoff = cfg.Upload.Retry.Backoff
			policy.MaxBackoff = cfg.Upload.Retry.MaxBackoff
			policy.Breaker.Enabled = cfg.Upload.Retry.BreakerEnabled
			storeOpts.Executor = resilience.NewExecutor(policy)
		}
		store, err := gdrive.NewStore(ctx, storeOpts, clientOpts...)
		if err != nil {
			return nil, fmt.Errorf("init drive store: %w", err)
		}
		return store, nil
	}
}

// PushMetrics sends the run's metrics to the configured Pushgateway. A push
// failure is logged and does not fail the run.
func (a *App) PushMetrics(success bool) {
	slog.Info("run_finished", "run_id", a.RunID, "success", success)
	if success {
		a.Metrics.MarkSuccess()
	}
	url := a.Config.Metrics.PushgatewayURL
	if url == "" {
		return
	}
	if err := a.Metrics.Push(url, a.Config.Metrics.Instance); err != nil {
		slog.Warn("metrics_push_failed", "url", url, "error", err)
	}
}

func (a *App) Close() {
	for i := len(a.closeFns) - 1; i >= 0; i-- {
		a.closeFns[i]()
	}
}
