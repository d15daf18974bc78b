package domain

import (
	"path/filepath"
	"strings"
)

type Format string

const (
	FormatPDF         Format = "pdf"
	FormatDOCX        Format = "docx"
	FormatUnsupported Format = "unsupported"
)

// FormatFromName infers the format from the literal, case-sensitive suffix.
func FormatFromName(name string) Format {
	switch {
	case strings.HasSuffix(name, ".pdf"):
		return FormatPDF
	case strings.HasSuffix(name, ".docx"):
		return FormatDOCX
	default:
		return FormatUnsupported
	}
}

// Document is one file of the corpus. Its text is extracted at most once per
// run and then held on the document.
type Document struct {
	Path   string `json:"path" yaml:"path"`
	Name   string `json:"name" yaml:"name"`
	Format Format `json:"format" yaml:"format"`
	Size   int64  `json:"size" yaml:"size"`

	text      string
	extracted bool
}

func NewDocument(path string, size int64) *Document {
	name := filepath.Base(path)
	return &Document{
		Path:   path,
		Name:   name,
		Format: FormatFromName(name),
		Size:   size,
	}
}

func (d *Document) CachedText() (string, bool) {
	return d.text, d.extracted
}

func (d *Document) SetText(text string) {
	d.text = text
	d.extracted = true
}

type Corpus []*Document

func (c Corpus) Paths() []string {
	out := make([]string, 0, len(c))
	for _, doc := range c {
		out = append(out, doc.Path)
	}
	return out
}
