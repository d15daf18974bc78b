package naivebayes

import (
	"fmt"
	"math"
	"sort"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

// model is a multinomial naive Bayes over non-negative feature weights.
type model struct {
	classes        []domain.Category
	classLogPrior  []float64
	featureLogProb [][]float64
}

func fitModel(rows []row, labels []domain.Category, features int, alpha float64) (*model, error) {
	if len(rows) != len(labels) {
		return nil, fmt.Errorf("rows/labels mismatch: %d/%d", len(rows), len(labels))
	}

	classIndex := make(map[domain.Category]int)
	for _, label := range labels {
		classIndex[label] = 0
	}
	classes := make([]domain.Category, 0, len(classIndex))
	for label := range classIndex {
		classes = append(classes, label)
	}
	sort.Slice(classes, func(i, j int) bool { return classes[i] < classes[j] })
	if len(classes) < 2 {
		return nil, domain.WrapError(domain.ErrDegenerateTrainingSet, "fit naive bayes", fmt.Errorf("classes=%v", classes))
	}
	for i, c := range classes {
		classIndex[c] = i
	}

	featureCount := make([][]float64, len(classes))
	for i := range featureCount {
		featureCount[i] = make([]float64, features)
	}
	classCount := make([]float64, len(classes))
	for i, r := range rows {
		c := classIndex[labels[i]]
		classCount[c]++
		for k, idx := range r.indices {
			featureCount[c][idx] += r.values[k]
		}
	}

	m := &model{
		classes:        classes,
		classLogPrior:  make([]float64, len(classes)),
		featureLogProb: make([][]float64, len(classes)),
	}
	total := float64(len(rows))
	for c := range classes {
		m.classLogPrior[c] = math.Log(classCount[c]) - math.Log(total)

		var smoothedTotal float64
		for _, v := range featureCount[c] {
			smoothedTotal += v + alpha
		}
		logTotal := math.Log(smoothedTotal)
		m.featureLogProb[c] = make([]float64, features)
		for j, v := range featureCount[c] {
			m.featureLogProb[c][j] = math.Log(v+alpha) - logTotal
		}
	}
	return m, nil
}

// predict returns the class with the highest joint log likelihood; ties go to
// the class that sorts first.
func (m *model) predict(rows []row) []domain.Category {
	out := make([]domain.Category, 0, len(rows))
	for _, r := range rows {
		best := 0
		bestScore := math.Inf(-1)
		for c := range m.classes {
			score := m.classLogPrior[c]
			for k, idx := range r.indices {
				score += r.values[k] * m.featureLogProb[c][idx]
			}
			if score > bestScore {
				best = c
				bestScore = score
			}
		}
		out = append(out, m.classes[best])
	}
	return out
}
