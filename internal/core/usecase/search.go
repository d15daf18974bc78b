package usecase

import (
	"context"
	"fmt"
	"strings"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

type SearchUseCase struct {
	extractor ports.TextExtractor
}

func NewSearchUseCase(extractor ports.TextExtractor) *SearchUseCase {
	return &SearchUseCase{extractor: extractor}
}

// Search keeps, in input order, the documents whose text contains query
// ignoring case. An empty query matches every document.
func (uc *SearchUseCase) Search(ctx context.Context, query string, docs domain.Corpus) (domain.Corpus, error) {
	needle := strings.ToLower(query)
	out := make(domain.Corpus, 0, len(docs))
	for _, doc := range docs {
		text, err := documentText(ctx, uc.extractor, doc)
		if err != nil {
			return nil, fmt.Errorf("search documents: %w", err)
		}
		if strings.Contains(strings.ToLower(text), needle) {
			out = append(out, doc)
		}
	}
	return out, nil
}
