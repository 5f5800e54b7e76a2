package models

// Label is a sentiment class produced by the classifier.
type Label string

// Sentiment labels. The model is binary; no neutral class exists.
const (
	LabelPositive Label = "POSITIVE"
	LabelNegative Label = "NEGATIVE"
)

// IsValid reports whether l is one of the two known labels.
func (l Label) IsValid() bool {
	return l == LabelPositive || l == LabelNegative
}

// Direction returns +1 for POSITIVE and -1 for anything else.
func (l Label) Direction() float64 {
	if l == LabelPositive {
		return 1
	}
	return -1
}

// LabelScore is one raw (label, score) pair as returned by a model.
type LabelScore struct {
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

// Classification is the validated output of the sentiment model for a
// single text. It is never mutated after creation.
type Classification struct {
	Label      Label   `json:"label"`
	Confidence float64 `json:"confidence"`
}
