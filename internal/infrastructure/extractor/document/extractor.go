package document

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/afero"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

// decoder reads a whole document of the given size.
type decoder func(r io.ReaderAt, size int64) (string, error)

// Extractor turns PDF and DOCX files into plain text.
type Extractor struct {
	fs afero.Fs
}

func NewExtractor(fsys afero.Fs) *Extractor {
	if fsys == nil {
		fsys = afero.NewOsFs()
	}
	return &Extractor{fs: fsys}
}

func (e *Extractor) Extract(ctx context.Context, doc *domain.Document) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	operation := "extract " + doc.Path

	var decode decoder
	switch doc.Format {
	case domain.FormatPDF:
		decode = decodePDF
	case domain.FormatDOCX:
		decode = decodeDOCX
	default:
		return "", domain.WrapError(domain.ErrUnsupportedFormat, operation, fmt.Errorf("no decoder for %q", doc.Name))
	}

	f, err := e.fs.Open(doc.Path)
	if err != nil {
		return "", fmt.Errorf("%s: open: %w", operation, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("%s: stat: %w", operation, err)
	}

	text, err := decode(f, info.Size())
	if err != nil {
		return "", domain.WrapError(domain.ErrDecodeFailure, operation, err)
	}
	slog.Debug("document_extracted", "path", doc.Path, "format", string(doc.Format), "chars", len(text))
	return text, nil
}
