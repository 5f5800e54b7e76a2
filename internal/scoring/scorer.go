package scoring

import (
	"math"
	"strings"

	"sentinel/internal/models"
)

// FrictionPenalty is subtracted from the resonance score per friction hit.
const FrictionPenalty = 0.15

// Scorer applies the keyword heuristics to classified feedback.
type Scorer struct {
	vocab Vocabulary
}

// NewScorer creates a scorer for the given vocabulary.
func NewScorer(vocab Vocabulary) *Scorer {
	return &Scorer{vocab: vocab}
}

// Vocabulary returns the profile the scorer matches against.
func (s *Scorer) Vocabulary() Vocabulary {
	return s.vocab
}

// Evaluate matches the friction and security vocabularies against text and
// blends the hits with the classification into an AnalysisResult.
// Blank text yields ErrEmptyInput.
func (s *Scorer) Evaluate(text string, c models.Classification) (models.AnalysisResult, error) {
	if IsBlank(text) {
		return models.AnalysisResult{}, ErrEmptyInput
	}

	lower := strings.ToLower(text)
	friction := MatchTerms(lower, s.vocab.Friction)
	security := MatchTerms(lower, s.vocab.Security)

	return models.AnalysisResult{
		Text:             text,
		Label:            c.Label,
		Confidence:       c.Confidence,
		FrictionHits:     friction,
		SecurityHits:     security,
		Resonance:        ResonanceScore(c.Label, c.Confidence, len(friction)),
		RiskLevel:        levelFor(len(security)),
		FrictionSeverity: levelFor(len(friction)),
	}, nil
}

// MatchTerms returns, in vocabulary order, every term contained in text.
// text must already be lowercased. Each term is reported at most once.
func MatchTerms(text string, terms []string) []string {
	hits := []string{}
	for _, term := range terms {
		if term != "" && strings.Contains(text, term) {
			hits = append(hits, term)
		}
	}
	return hits
}

// ResonanceScore computes (confidence * direction) - (frictionCount * 0.15),
// rounded to three decimal places.
func ResonanceScore(label models.Label, confidence float64, frictionCount int) float64 {
	score := confidence*label.Direction() - float64(frictionCount)*FrictionPenalty
	return math.Round(score*1000) / 1000
}

// IsBlank reports whether text has no non-whitespace content.
func IsBlank(text string) bool {
	return strings.TrimSpace(text) == ""
}

func levelFor(hits int) models.Level {
	if hits > 0 {
		return models.LevelHigh
	}
	return models.LevelLow
}
