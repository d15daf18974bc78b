package localfs

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

// Storage reads the input corpus and can mirror uploads into basePath.
type Storage struct {
	fs       afero.Fs
	basePath string
}

func New(fsys afero.Fs) *Storage {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Storage{fs: fsys}
}

// NewMirror returns a Storage whose Put copies files under basePath.
func NewMirror(fsys afero.Fs, basePath string) (*Storage, error) {
	s := New(fsys)
	if basePath == "" {
		basePath = "./data/uploads"
	}
	if err := s.fs.MkdirAll(basePath, 0o755); err != nil {
		return nil, fmt.Errorf("create mirror dir: %w", err)
	}
	s.basePath = basePath
	return s, nil
}

func (s *Storage) List(_ context.Context, dir string) ([]ports.FileEntry, error) {
	info, err := s.fs.Stat(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, domain.WrapError(domain.ErrDirectoryNotFound, "list "+dir, err)
		}
		return nil, fmt.Errorf("stat dir %s: %w", dir, err)
	}
	if !info.IsDir() {
		return nil, domain.WrapError(domain.ErrDirectoryNotFound, "list "+dir, fmt.Errorf("%s is not a directory", dir))
	}

	infos, err := afero.ReadDir(s.fs, dir)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", dir, err)
	}
	out := make([]ports.FileEntry, 0, len(infos))
	for _, fi := range infos {
		out = append(out, ports.FileEntry{
			Path:  filepath.Join(dir, fi.Name()),
			Name:  fi.Name(),
			Size:  fi.Size(),
			IsDir: fi.IsDir(),
		})
	}
	return out, nil
}

func (s *Storage) Open(_ context.Context, path string) (io.ReadCloser, error) {
	f, err := s.fs.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open file %s: %w", path, err)
	}
	return f, nil
}

// Put writes body to basePath/name, replacing an existing file of that name.
func (s *Storage) Put(_ context.Context, name, _ string, body io.Reader) (string, error) {
	if s.basePath == "" {
		return "", fmt.Errorf("mirror path is not configured")
	}
	path := filepath.Join(s.basePath, filepath.Base(name))
	f, err := s.fs.Create(path)
	if err != nil {
		return "", fmt.Errorf("create file: %w", err)
	}
	if _, err := io.Copy(f, body); err != nil {
		_ = f.Close()
		return "", fmt.Errorf("write file: %w", err)
	}
	if err := f.Close(); err != nil {
		return "", fmt.Errorf("close file: %w", err)
	}
	return path, nil
}
