package usecase

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

type fakeExtractor struct {
	texts map[string]string
	errs  map[string]error
	calls map[string]int
}

func newFakeExtractor(texts map[string]string) *fakeExtractor {
	return &fakeExtractor{texts: texts, errs: map[string]error{}, calls: map[string]int{}}
}

func (f *fakeExtractor) Extract(_ context.Context, doc *domain.Document) (string, error) {
	f.calls[doc.Path]++
	if err, ok := f.errs[doc.Path]; ok {
		return "", err
	}
	return f.texts[doc.Path], nil
}

func corpusOf(paths ...string) domain.Corpus {
	out := make(domain.Corpus, 0, len(paths))
	for _, p := range paths {
		out = append(out, domain.NewDocument(p, 0))
	}
	return out
}

type fakeSource struct {
	entries []ports.FileEntry
	listErr error
	files   map[string][]byte
	openErr map[string]error
}

func (f *fakeSource) List(_ context.Context, _ string) ([]ports.FileEntry, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	return f.entries, nil
}

func (f *fakeSource) Open(_ context.Context, path string) (io.ReadCloser, error) {
	if err, ok := f.openErr[path]; ok {
		return nil, err
	}
	data, ok := f.files[path]
	if !ok {
		return nil, errors.New("file not found")
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

type fakeModel struct {
	fn    func(train []string, labels []domain.Category, eval []string) ([]domain.Category, error)
	calls int
}

func (f *fakeModel) FitPredict(_ context.Context, train []string, labels []domain.Category, eval []string) ([]domain.Category, error) {
	f.calls++
	if f.fn != nil {
		return f.fn(train, labels, eval)
	}
	return append([]domain.Category(nil), labels[:len(eval)]...), nil
}

type putCall struct {
	name     string
	mimeType string
	body     string
	deadline bool
}

type fakeStore struct {
	puts []putCall
	fail map[string]error
}

func (f *fakeStore) Put(ctx context.Context, name, mimeType string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	_, hasDeadline := ctx.Deadline()
	f.puts = append(f.puts, putCall{name: name, mimeType: mimeType, body: string(data), deadline: hasDeadline})
	if err, ok := f.fail[name]; ok {
		return "", err
	}
	return "id-" + name, nil
}

type fakeTyper struct{ mime string }

func (f fakeTyper) Detect([]byte) string { return f.mime }

type fakePublisher struct {
	events []domain.UploadEvent
	err    error
}

func (f *fakePublisher) PublishUploaded(_ context.Context, event domain.UploadEvent) error {
	f.events = append(f.events, event)
	return f.err
}

type fakeMetrics struct {
	mu             sync.Mutex
	stages         []string
	extractOK      int
	extractFailed  int
	uploadOK       int
	uploadFailed   int
	lastCorpusSize int
}

func (f *fakeMetrics) ObserveStage(stage string, _ float64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stages = append(f.stages, stage)
}

func (f *fakeMetrics) ObserveExtract(err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.extractFailed++
		return
	}
	f.extractOK++
}

func (f *fakeMetrics) ObserveUpload(_ float64, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if err != nil {
		f.uploadFailed++
		return
	}
	f.uploadOK++
}

func (f *fakeMetrics) SetCorpusSize(n int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastCorpusSize = n
}
