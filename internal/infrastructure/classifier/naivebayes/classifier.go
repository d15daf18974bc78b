// Package naivebayes is the statistical stage of document classification:
// TF-IDF features and a multinomial naive Bayes model, fit and applied in a
// single call. Nothing is persisted between calls.
package naivebayes

import (
	"context"
	"errors"

	"github.com/kirillkom/docshelf/internal/core/domain"
)

const DefaultAlpha = 1.0

type Classifier struct {
	alpha float64
}

func New(alpha float64) *Classifier {
	if alpha <= 0 {
		alpha = DefaultAlpha
	}
	return &Classifier{alpha: alpha}
}

// FitPredict fits the vectorizer and the model on train and predicts eval.
func (c *Classifier) FitPredict(ctx context.Context, train []string, labels []domain.Category, eval []string) ([]domain.Category, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(train) == 0 {
		return nil, domain.WrapError(domain.ErrDegenerateTrainingSet, "fit predict", errors.New("no training documents"))
	}

	vec, err := fitVectorizer(train)
	if err != nil {
		return nil, err
	}
	m, err := fitModel(vec.transform(train), labels, vec.features(), c.alpha)
	if err != nil {
		return nil, err
	}
	return m.predict(vec.transform(eval)), nil
}
