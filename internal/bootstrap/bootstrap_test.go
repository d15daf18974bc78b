package bootstrap

import (
	"context"
	"testing"

	"github.com/spf13/afero"

	"github.com/kirillkom/docshelf/internal/config"
	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/usecase"
	"github.com/kirillkom/docshelf/internal/testsupport/docfixture"
)

func loadConfig(t *testing.T, overrides map[string]any) *config.Config {
	t.Helper()
	t.Chdir(t.TempDir())
	cfg, err := config.Load(config.LoadOptions{Overrides: overrides})
	if err != nil {
		t.Fatalf("config.Load() error = %v", err)
	}
	return cfg
}

func TestNewWiresLocalMirrorPipeline(t *testing.T) {
	cfg := loadConfig(t, map[string]any{
		"input_directory":   "docs",
		"upload.sink":       "local",
		"upload.mirror_dir": "mirror",
	})
	fsys := afero.NewMemMapFs()
	docfixture.Write(t, fsys, "docs/a.pdf", docfixture.PDF(t, "Health study on doctors"))
	docfixture.Write(t, fsys, "docs/b.docx", docfixture.DOCX(t, "Programming school code"))

	app, err := New(context.Background(), cfg, Options{Uploads: true, Fs: fsys})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	defer app.Close()
	if app.Uploader == nil || app.RunID == "" {
		t.Fatalf("expected uploader and run id")
	}

	report, err := app.Run.Run(context.Background(), usecase.RunOptions{RunID: app.RunID, Directory: cfg.InputDirectory, Query: cfg.SearchQuery})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if report.Total != 2 || report.Classification == nil {
		t.Fatalf("unexpected report: %+v", report)
	}
	if got := report.Classification.Labels["docs/a.pdf"]; got != domain.Category("med") {
		t.Fatalf("a.pdf label = %q, want med", got)
	}
	for _, name := range []string{"mirror/a.pdf", "mirror/b.docx"} {
		if ok, _ := afero.Exists(fsys, name); !ok {
			t.Fatalf("expected mirrored file %s", name)
		}
	}
	for _, u := range report.Uploads {
		if !u.OK() {
			t.Fatalf("upload failed: %+v", u)
		}
	}
}

func TestNewWithoutUploadSink(t *testing.T) {
	cfg := loadConfig(t, map[string]any{"upload.sink": "none"})

	app, err := New(context.Background(), cfg, Options{Uploads: true, Fs: afero.NewMemMapFs()})
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	if app.Uploader != nil {
		t.Fatalf("sink none should not build an uploader")
	}
}

func TestNewDriveSinkFailsWithoutCredentials(t *testing.T) {
	cfg := loadConfig(t, map[string]any{
		"drive.auth":             "service-account",
		"drive.credentials_file": "missing.json",
	})

	_, err := New(context.Background(), cfg, Options{Uploads: true, Fs: afero.NewMemMapFs()})
	if !domain.IsKind(err, domain.ErrAuthentication) {
		t.Fatalf("expected ErrAuthentication, got %v", err)
	}
}
