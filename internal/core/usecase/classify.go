package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/kirillkom/docshelf/internal/core/domain"
	"github.com/kirillkom/docshelf/internal/core/ports"
)

type ClassifierOptions struct {
	Rules    []domain.CategoryRule
	Fallback domain.Category
	Policy   domain.KeywordPolicy
	Mode     domain.ClassifierMode
}

type ClassifyUseCase struct {
	extractor ports.TextExtractor
	model     ports.LabelModel
	rules     []domain.CategoryRule
	fallback  domain.Category
	policy    domain.KeywordPolicy
	mode      domain.ClassifierMode
}

func NewClassifyUseCase(extractor ports.TextExtractor, model ports.LabelModel, opts ClassifierOptions) *ClassifyUseCase {
	rules := make([]domain.CategoryRule, 0, len(opts.Rules))
	for _, rule := range opts.Rules {
		keywords := make([]string, 0, len(rule.Keywords))
		for _, kw := range rule.Keywords {
			if kw = strings.ToLower(kw); kw != "" {
				keywords = append(keywords, kw)
			}
		}
		rules = append(rules, domain.CategoryRule{Name: rule.Name, Keywords: keywords})
	}
	if opts.Fallback == "" {
		opts.Fallback = domain.CategoryMisc
	}
	if opts.Policy == "" {
		opts.Policy = domain.KeywordPolicyLast
	}
	if opts.Mode == "" {
		opts.Mode = domain.ClassifierModeSelf
	}
	return &ClassifyUseCase{
		extractor: extractor,
		model:     model,
		rules:     rules,
		fallback:  opts.Fallback,
		policy:    opts.Policy,
		mode:      opts.Mode,
	}
}

// Classify labels every document with keyword heuristics and then replaces
// those labels with the statistical model's predictions.
func (uc *ClassifyUseCase) Classify(ctx context.Context, docs domain.Corpus) (*domain.Classification, error) {
	if len(docs) == 0 {
		return nil, domain.WrapError(domain.ErrDegenerateTrainingSet, "classify documents", errors.New("empty corpus"))
	}

	texts, err := corpusTexts(ctx, uc.extractor, docs)
	if err != nil {
		return nil, fmt.Errorf("classify documents: %w", err)
	}

	labels := make([]domain.Category, len(texts))
	for i, text := range texts {
		labels[i] = uc.HeuristicLabel(text)
	}
	if distinct := distinctLabels(labels); len(distinct) < 2 {
		return nil, domain.WrapError(
			domain.ErrDegenerateTrainingSet,
			"classify documents",
			fmt.Errorf("need at least two distinct heuristic labels, got %v", distinct),
		)
	}

	var predicted []domain.Category
	switch uc.mode {
	case domain.ClassifierModeLeaveOneOut:
		predicted, err = uc.predictLeaveOneOut(ctx, texts, labels)
	default:
		predicted, err = uc.model.FitPredict(ctx, texts, labels, texts)
	}
	if err != nil {
		return nil, fmt.Errorf("classify documents: %w", err)
	}
	if len(predicted) != len(docs) {
		return nil, domain.WrapError(
			domain.ErrInvalidInput,
			"classify documents",
			fmt.Errorf("predictions/documents mismatch: %d/%d", len(predicted), len(docs)),
		)
	}

	result := &domain.Classification{
		Mode:      uc.mode,
		Labels:    make(map[string]domain.Category, len(docs)),
		Heuristic: make(map[string]domain.Category, len(docs)),
	}
	for i, doc := range docs {
		result.Labels[doc.Path] = predicted[i]
		result.Heuristic[doc.Path] = labels[i]
	}
	return result, nil
}

// HeuristicLabel assigns a category from keyword substrings of the
// lower-cased text according to the configured policy.
func (uc *ClassifyUseCase) HeuristicLabel(text string) domain.Category {
	lower := strings.ToLower(text)
	label := uc.fallback
	bestHits := 0

	for _, rule := range uc.rules {
		switch uc.policy {
		case domain.KeywordPolicyMostHits:
			hits := 0
			for _, kw := range rule.Keywords {
				hits += strings.Count(lower, kw)
			}
			if hits > bestHits {
				bestHits = hits
				label = rule.Name
			}
		case domain.KeywordPolicyFirst:
			if matchesAny(lower, rule.Keywords) {
				return rule.Name
			}
		default:
			if matchesAny(lower, rule.Keywords) {
				label = rule.Name
			}
		}
	}
	return label
}

func (uc *ClassifyUseCase) predictLeaveOneOut(ctx context.Context, texts []string, labels []domain.Category) ([]domain.Category, error) {
	out := make([]domain.Category, len(texts))
	for i := range texts {
		trainTexts := make([]string, 0, len(texts)-1)
		trainLabels := make([]domain.Category, 0, len(texts)-1)
		for j := range texts {
			if j == i {
				continue
			}
			trainTexts = append(trainTexts, texts[j])
			trainLabels = append(trainLabels, labels[j])
		}

		if len(distinctLabels(trainLabels)) < 2 {
			out[i] = labels[i]
			continue
		}
		pred, err := uc.model.FitPredict(ctx, trainTexts, trainLabels, []string{texts[i]})
		if err != nil {
			if domain.IsKind(err, domain.ErrDegenerateTrainingSet) {
				slog.Debug("classify_fold_degenerate", "fold", i, "error", err)
				out[i] = labels[i]
				continue
			}
			return nil, fmt.Errorf("fold %d: %w", i, err)
		}
		if len(pred) != 1 {
			return nil, fmt.Errorf("fold %d: expected one prediction, got %d", i, len(pred))
		}
		out[i] = pred[0]
	}
	return out, nil
}

func matchesAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func distinctLabels(labels []domain.Category) []domain.Category {
	seen := make(map[domain.Category]struct{}, len(labels))
	out := make([]domain.Category, 0, 4)
	for _, label := range labels {
		if _, ok := seen[label]; ok {
			continue
		}
		seen[label] = struct{}{}
		out = append(out, label)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
