package domain

type Category string

const CategoryMisc Category = "misc"

// CategoryRule binds a category to the keywords that label it heuristically.
type CategoryRule struct {
	Name     Category `json:"name" yaml:"name"`
	Keywords []string `json:"keywords" yaml:"keywords"`
}

type KeywordPolicy string

const (
	KeywordPolicyLast     KeywordPolicy = "last"
	KeywordPolicyFirst    KeywordPolicy = "first"
	KeywordPolicyMostHits KeywordPolicy = "most-hits"
)

type ClassifierMode string

const (
	// ClassifierModeSelf fits on the whole corpus and predicts the same
	// documents back: the output is a smoothing pass over the heuristic labels.
	ClassifierModeSelf ClassifierMode = "self"
	// ClassifierModeLeaveOneOut predicts every document with a model fit on
	// all other documents.
	ClassifierModeLeaveOneOut ClassifierMode = "leave-one-out"
)

type Classification struct {
	Mode      ClassifierMode      `json:"mode" yaml:"mode"`
	Labels    map[string]Category `json:"labels" yaml:"labels"`
	Heuristic map[string]Category `json:"heuristic" yaml:"heuristic"`
}
