package naivebayes

import (
	"errors"
	"math"
	"sort"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

// row is a sparse feature vector with ascending indices.
type row struct {
	indices []int
	values  []float64
}

// vectorizer weights raw term counts by smoothed inverse document frequency
// and L2-normalises every row.
type vectorizer struct {
	vocab map[string]int
	idf   []float64
}

func fitVectorizer(texts []string) (*vectorizer, error) {
	df := make(map[string]int, 256)
	for _, text := range texts {
		seen := make(map[string]struct{}, 64)
		for _, tok := range tokenize(text) {
			if _, ok := seen[tok]; ok {
				continue
			}
			seen[tok] = struct{}{}
			df[tok]++
		}
	}
	if len(df) == 0 {
		return nil, domain.WrapError(domain.ErrDegenerateTrainingSet, "fit vectorizer", errors.New("empty vocabulary"))
	}

	terms := make([]string, 0, len(df))
	for term := range df {
		terms = append(terms, term)
	}
	sort.Strings(terms)

	n := float64(len(texts))
	v := &vectorizer{
		vocab: make(map[string]int, len(terms)),
		idf:   make([]float64, len(terms)),
	}
	for i, term := range terms {
		v.vocab[term] = i
		v.idf[i] = math.Log((1+n)/(1+float64(df[term]))) + 1
	}
	return v, nil
}

func (v *vectorizer) features() int {
	return len(v.idf)
}

// transform ignores terms outside the fitted vocabulary.
func (v *vectorizer) transform(texts []string) []row {
	out := make([]row, 0, len(texts))
	for _, text := range texts {
		counts := make(map[int]float64, 64)
		for _, tok := range tokenize(text) {
			if idx, ok := v.vocab[tok]; ok {
				counts[idx]++
			}
		}

		r := row{
			indices: make([]int, 0, len(counts)),
			values:  make([]float64, 0, len(counts)),
		}
		for idx := range counts {
			r.indices = append(r.indices, idx)
		}
		sort.Ints(r.indices)

		var norm float64
		for _, idx := range r.indices {
			w := counts[idx] * v.idf[idx]
			r.values = append(r.values, w)
			norm += w * w
		}
		if norm > 0 {
			norm = math.Sqrt(norm)
			for i := range r.values {
				r.values[i] /= norm
			}
		}
		out = append(out, r)
	}
	return out
}
