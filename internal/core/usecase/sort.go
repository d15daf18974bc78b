package usecase

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

const DefaultTitleKeyLength = 30

type SortUseCase struct {
	extractor ports.TextExtractor
	keyLength int
}

func NewSortUseCase(extractor ports.TextExtractor, keyLength int) *SortUseCase {
	if keyLength <= 0 {
		keyLength = DefaultTitleKeyLength
	}
	return &SortUseCase{extractor: extractor, keyLength: keyLength}
}

// Sort returns a new slice ordered by title key. Equal keys keep input order.
func (uc *SortUseCase) Sort(ctx context.Context, docs domain.Corpus) (domain.Corpus, error) {
	texts, err := corpusTexts(ctx, uc.extractor, docs)
	if err != nil {
		return nil, fmt.Errorf("sort documents: %w", err)
	}

	keys := make([]string, len(docs))
	for i, text := range texts {
		keys[i] = TitleKey(text, uc.keyLength)
	}

	order := make([]int, len(docs))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return keys[order[a]] < keys[order[b]]
	})

	out := make(domain.Corpus, 0, len(docs))
	for _, idx := range order {
		out = append(out, docs[idx])
	}
	return out, nil
}

// TitleKey is the first line of the trimmed text, cut to limit characters.
func TitleKey(text string, limit int) string {
	line, _, _ := strings.Cut(strings.TrimSpace(text), "\n")
	runes := []rune(line)
	if len(runes) > limit {
		runes = runes[:limit]
	}
	return string(runes)
}
