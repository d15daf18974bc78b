package usecase

import (
	"context"
	"reflect"
	"testing"
)

func TestSearchIsCaseInsensitiveAndKeepsOrder(t *testing.T) {
	extractor := newFakeExtractor(map[string]string{
		"c.pdf":  "Big DATA pipelines",
		"a.pdf":  "nothing here",
		"b.docx": "metadata catalog",
	})

	matches, err := NewSearchUseCase(extractor).Search(context.Background(), "Data", corpusOf("c.pdf", "a.pdf", "b.docx"))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	want := []string{"c.pdf", "b.docx"}
	if got := matches.Paths(); !reflect.DeepEqual(got, want) {
		t.Fatalf("matches = %v, want %v", got, want)
	}
}

func TestSearchEmptyQueryMatchesEverything(t *testing.T) {
	extractor := newFakeExtractor(map[string]string{"a.pdf": "", "b.pdf": "text"})

	matches, err := NewSearchUseCase(extractor).Search(context.Background(), "", corpusOf("a.pdf", "b.pdf"))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 2 {
		t.Fatalf("expected every document to match, got %v", matches.Paths())
	}
}

func TestSearchNoMatches(t *testing.T) {
	extractor := newFakeExtractor(map[string]string{"a.pdf": "alpha"})

	matches, err := NewSearchUseCase(extractor).Search(context.Background(), "beta", corpusOf("a.pdf"))
	if err != nil {
		t.Fatalf("Search() error = %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("expected no matches, got %v", matches.Paths())
	}
}
