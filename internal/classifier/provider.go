package classifier

import (
	"context"
	"fmt"
	"math"
	"strings"

	"sentinel/internal/models"
)

// Provider loads a runnable sentiment model by identifier.
type Provider interface {
	Name() string
	Load(ctx context.Context, modelID string) (Model, error)
}

// Model scores a single text. Implementations must be safe for concurrent use.
type Model interface {
	Run(ctx context.Context, text string) ([]models.LabelScore, error)
}

// labelAliases maps the raw labels models emit to the two known labels.
var labelAliases = map[string]models.Label{
	"POSITIVE": models.LabelPositive,
	"POS":      models.LabelPositive,
	"LABEL_1":  models.LabelPositive,
	"NEGATIVE": models.LabelNegative,
	"NEG":      models.LabelNegative,
	"LABEL_0":  models.LabelNegative,
}

// ParseScores validates raw model output and returns the top-scoring label
// as a Classification.
func ParseScores(scores []models.LabelScore) (models.Classification, error) {
	if len(scores) == 0 {
		return models.Classification{}, fmt.Errorf("%w: no scores", ErrInvalidModelOutput)
	}

	best := -1
	for i, s := range scores {
		if math.IsNaN(s.Score) || math.IsInf(s.Score, 0) || s.Score < 0 || s.Score > 1 {
			return models.Classification{}, fmt.Errorf("%w: score %v for %q out of range", ErrInvalidModelOutput, s.Score, s.Label)
		}
		if best < 0 || s.Score > scores[best].Score {
			best = i
		}
	}

	top := scores[best]
	label, ok := labelAliases[strings.ToUpper(strings.TrimSpace(top.Label))]
	if !ok {
		return models.Classification{}, fmt.Errorf("%w: unknown label %q", ErrInvalidModelOutput, top.Label)
	}

	return models.Classification{Label: label, Confidence: top.Score}, nil
}
