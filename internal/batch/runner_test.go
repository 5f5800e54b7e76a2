package batch

import (
	"context"
	"errors"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sentinel/internal/models"
	"sentinel/internal/scoring"
)

// keywordClassifier labels text containing "bad" or "confusing" negative and
// fails on "boom".
type keywordClassifier struct {
	calls atomic.Int32
}

func (k *keywordClassifier) Classify(_ context.Context, text string) (models.Classification, error) {
	k.calls.Add(1)
	lower := strings.ToLower(text)
	switch {
	case strings.Contains(lower, "boom"):
		return models.Classification{}, errors.New("inference exploded")
	case strings.Contains(lower, "bad"), strings.Contains(lower, "confusing"):
		return models.Classification{Label: models.LabelNegative, Confidence: 0.9}, nil
	default:
		return models.Classification{Label: models.LabelPositive, Confidence: 0.8}, nil
	}
}

func newTestRunner(t *testing.T, opts ...Option) (*Runner, *keywordClassifier) {
	t.Helper()
	vocab, ok := scoring.Builtin(scoring.DefaultVocabulary)
	require.True(t, ok)
	c := &keywordClassifier{}
	return NewRunner(c, scoring.NewScorer(vocab), opts...), c
}

func TestRunner_Run(t *testing.T) {
	runner, _ := newTestRunner(t)

	rows := []string{
		"Checkout is confusing and my password leaked",
		"",
		"Works great",
		"boom",
		"bad \xff bytes",
	}
	results := runner.Run(context.Background(), rows)
	require.Len(t, results, len(rows))

	for i, r := range results {
		assert.Equal(t, i, r.Index)
		assert.Equal(t, rows[i], r.Text)
	}

	first := results[0]
	require.True(t, first.IsOK())
	assert.Equal(t, models.LabelNegative, first.Result.Label)
	assert.Equal(t, []string{"confusing"}, first.Result.FrictionHits)
	assert.Equal(t, []string{"password"}, first.Result.SecurityHits)
	assert.Equal(t, models.LevelHigh, first.Result.RiskLevel)

	assert.Equal(t, models.RowError, results[1].Status)
	assert.Contains(t, results[1].Error, "empty")
	assert.Nil(t, results[1].Result)

	assert.True(t, results[2].IsOK())

	assert.Equal(t, models.RowError, results[3].Status)
	assert.Contains(t, results[3].Error, "inference exploded")

	assert.Equal(t, models.RowError, results[4].Status)
	assert.Contains(t, results[4].Error, "UTF-8")
}

func TestRunner_ConcurrentPreservesOrder(t *testing.T) {
	var mu sync.Mutex
	seen := 0
	runner, classifier := newTestRunner(t, WithWorkers(4), WithRowHook(func(models.RowResult) {
		mu.Lock()
		seen++
		mu.Unlock()
	}))

	rows := make([]string, 50)
	for i := range rows {
		if i%2 == 0 {
			rows[i] = "bad experience"
		} else {
			rows[i] = "lovely"
		}
	}

	results := runner.Run(context.Background(), rows)
	require.Len(t, results, 50)
	for i, r := range results {
		require.True(t, r.IsOK(), "row %d", i)
		assert.Equal(t, i, r.Index)
		want := models.LabelPositive
		if i%2 == 0 {
			want = models.LabelNegative
		}
		assert.Equal(t, want, r.Result.Label, "row %d", i)
	}
	assert.Equal(t, 50, seen)
	assert.Equal(t, int32(50), classifier.calls.Load())
}

func TestRunner_MalformedRowsSkipClassifier(t *testing.T) {
	runner, classifier := newTestRunner(t)

	results := runner.Run(context.Background(), []string{"   ", "\xfe"})
	for _, r := range results {
		assert.Equal(t, models.RowError, r.Status)
		assert.Contains(t, r.Error, ErrMalformedRow.Error())
	}
	assert.Zero(t, classifier.calls.Load())
}

func TestSummarize(t *testing.T) {
	runner, _ := newTestRunner(t)
	results := runner.Run(context.Background(), []string{
		"bad login flow",
		"works great",
		"really confusing",
		"",
	})

	d := Summarize(results)

	assert.Equal(t, 4, d.Total)
	assert.Equal(t, 3, d.Analyzed)
	assert.Equal(t, 1, d.Failed)
	assert.Equal(t, 1, d.Positive)
	assert.Equal(t, 2, d.Negative)
	assert.Equal(t, 0.333, d.PositiveShare)
	assert.Equal(t, 0.667, d.NegativeShare)
	assert.Equal(t, 0.867, d.MeanConfidence)
	assert.Equal(t, 1, d.FrictionFlagged)
	assert.Equal(t, 1, d.SecurityFlagged)
	// (-0.9 + 0.8 + (-0.9-0.15)) / 3
	assert.Equal(t, -0.383, d.MeanResonance)
}

func TestSummarize_Empty(t *testing.T) {
	d := Summarize(nil)
	assert.Equal(t, models.Distribution{}, d)
}
