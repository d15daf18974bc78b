package document

import (
	"context"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/testsupport/docfixture"
)

func TestExtractDOCXJoinsParagraphsWithSpace(t *testing.T) {
	fsys := afero.NewMemMapFs()
	docfixture.Write(t, fsys, "docs/b.docx", docfixture.DOCX(t, "Programming school", "code review"))

	text, err := NewExtractor(fsys).Extract(context.Background(), domain.NewDocument("docs/b.docx", 0))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Programming school code review" {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractDOCXSkipsTableParagraphsAndKeepsRunBreaks(t *testing.T) {
	fsys := afero.NewMemMapFs()
	body := `<w:p><w:r><w:t>Title</w:t><w:br/><w:t>line</w:t><w:tab/><w:t>x</w:t></w:r></w:p>` +
		`<w:tbl><w:tr><w:tc><w:p><w:r><w:t>cell</w:t></w:r></w:p></w:tc></w:tr></w:tbl>` +
		`<w:p><w:hyperlink><w:r><w:t>link</w:t></w:r></w:hyperlink></w:p>` +
		`<w:p></w:p>`
	docfixture.Write(t, fsys, "t.docx", docfixture.DOCXFromBody(t, body))

	text, err := NewExtractor(fsys).Extract(context.Background(), domain.NewDocument("t.docx", 0))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	if text != "Title\nline\tx link " {
		t.Fatalf("unexpected text %q", text)
	}
}

func TestExtractPDFJoinsPagesInOrder(t *testing.T) {
	fsys := afero.NewMemMapFs()
	docfixture.Write(t, fsys, "a.pdf", docfixture.PDF(t, "Health study on doctors", "Second page"))

	text, err := NewExtractor(fsys).Extract(context.Background(), domain.NewDocument("a.pdf", 0))
	if err != nil {
		t.Fatalf("Extract() error = %v", err)
	}
	first := strings.Index(text, "Health study on doctors")
	second := strings.Index(text, "Second page")
	if first < 0 || second < 0 || first > second {
		t.Fatalf("expected both pages in order, got %q", text)
	}
}

func TestExtractIsDeterministic(t *testing.T) {
	fsys := afero.NewMemMapFs()
	docfixture.Write(t, fsys, "a.pdf", docfixture.PDF(t, "Repeatable text"))
	docfixture.Write(t, fsys, "b.docx", docfixture.DOCX(t, "one", "two"))
	ex := NewExtractor(fsys)

	for _, path := range []string{"a.pdf", "b.docx"} {
		doc := domain.NewDocument(path, 0)
		first, err := ex.Extract(context.Background(), doc)
		if err != nil {
			t.Fatalf("Extract(%s) error = %v", path, err)
		}
		second, err := ex.Extract(context.Background(), doc)
		if err != nil {
			t.Fatalf("Extract(%s) error = %v", path, err)
		}
		if first != second {
			t.Fatalf("non-deterministic extraction for %s: %q vs %q", path, first, second)
		}
	}
}

func TestExtractUnsupportedFormatIsSignaled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	docfixture.Write(t, fsys, "notes.txt", []byte("plain"))

	_, err := NewExtractor(fsys).Extract(context.Background(), domain.NewDocument("notes.txt", 0))
	if !domain.IsKind(err, domain.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if !strings.Contains(err.Error(), "notes.txt") {
		t.Fatalf("expected path in error, got %v", err)
	}
}

func TestExtractCorruptFilesAreDecodeFailures(t *testing.T) {
	fsys := afero.NewMemMapFs()
	docfixture.Write(t, fsys, "broken.pdf", []byte("%PDF-1.4 not really"))
	docfixture.Write(t, fsys, "broken.docx", []byte("not a zip"))
	ex := NewExtractor(fsys)

	for _, path := range []string{"broken.pdf", "broken.docx"} {
		_, err := ex.Extract(context.Background(), domain.NewDocument(path, 0))
		if !domain.IsKind(err, domain.ErrDecodeFailure) {
			t.Fatalf("expected ErrDecodeFailure for %s, got %v", path, err)
		}
		if !strings.Contains(err.Error(), path) {
			t.Fatalf("expected path in error, got %v", err)
		}
	}
}

func TestExtractDOCXWithoutDocumentPart(t *testing.T) {
	_, err := decodeDOCX(strings.NewReader(""), 0)
	if err == nil {
		t.Fatalf("expected error for empty archive")
	}
}

func TestExtractMissingFile(t *testing.T) {
	_, err := NewExtractor(afero.NewMemMapFs()).Extract(context.Background(), domain.NewDocument("gone.pdf", 0))
	if err == nil {
		t.Fatalf("expected error")
	}
	if domain.IsKind(err, domain.ErrDecodeFailure) {
		t.Fatalf("missing file must not be reported as a decode failure: %v", err)
	}
}

var (
	_ decoder = decodePDF
	_ decoder = decodeDOCX
)

func TestDecodersReadFromOpenedFile(t *testing.T) {
	fsys := afero.NewMemMapFs()
	docfixture.Write(t, fsys, "a.pdf", docfixture.PDF(t, "Health data"))
	docfixture.Write(t, fsys, "b.docx", docfixture.DOCX(t, "Code data"))

	cases := map[string]struct {
		decode decoder
		want   string
	}{
		"a.pdf":  {decode: decodePDF, want: "Health data"},
		"b.docx": {decode: decodeDOCX, want: "Code data"},
	}
	for path, tc := range cases {
		f, err := fsys.Open(path)
		if err != nil {
			t.Fatalf("open %s: %v", path, err)
		}
		info, err := f.Stat()
		if err != nil {
			t.Fatalf("stat %s: %v", path, err)
		}
		text, err := tc.decode(f, info.Size())
		_ = f.Close()
		if err != nil {
			t.Fatalf("decode %s: %v", path, err)
		}
		if !strings.Contains(text, tc.want) {
			t.Fatalf("decode %s = %q, want it to contain %q", path, text, tc.want)
		}
	}
}
