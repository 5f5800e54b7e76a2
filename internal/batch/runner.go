package batch

import (
	"context"
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"sentinel/internal/models"
)

// Classifier produces a sentiment classification for one text.
type Classifier interface {
	Classify(ctx context.Context, text string) (models.Classification, error)
}

// Evaluator applies the keyword heuristics to a classified text.
type Evaluator interface {
	Evaluate(text string, c models.Classification) (models.AnalysisResult, error)
}

// Runner applies classification and scoring to each row independently.
type Runner struct {
	classifier Classifier
	evaluator  Evaluator
	workers    int
	onRow      func(models.RowResult)
}

// Option configures a Runner.
type Option func(*Runner)

// WithWorkers sets how many rows are analysed at once. Values below 2 run
// rows sequentially.
func WithWorkers(n int) Option {
	return func(r *Runner) {
		r.workers = n
	}
}

// WithRowHook registers a callback invoked after every row.
func WithRowHook(fn func(models.RowResult)) Option {
	return func(r *Runner) {
		r.onRow = fn
	}
}

// NewRunner creates a batch runner.
func NewRunner(c Classifier, e Evaluator, opts ...Option) *Runner {
	r := &Runner{classifier: c, evaluator: e, workers: 1}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Run analyses rows and returns one result per row, index-aligned with the
// input. Failed rows carry Status=error and the reason; they never stop
// the other rows.
func (r *Runner) Run(ctx context.Context, rows []string) []models.RowResult {
	results := make([]models.RowResult, len(rows))

	if r.workers < 2 {
		for i, text := range rows {
			results[i] = r.analyzeRow(ctx, i, text)
		}
		return results
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(r.workers)
	for i, text := range rows {
		g.Go(func() error {
			results[i] = r.analyzeRow(gctx, i, text)
			return nil
		})
	}
	_ = g.Wait()

	return results
}

func (r *Runner) analyzeRow(ctx context.Context, i int, text string) models.RowResult {
	res := models.RowResult{Index: i, Text: text}
	defer func() {
		if r.onRow != nil {
			r.onRow(res)
		}
	}()

	if err := checkRow(text); err != nil {
		return fail(res, err)
	}

	cls, err := r.classifier.Classify(ctx, text)
	if err != nil {
		return fail(res, err)
	}

	ar, err := r.evaluator.Evaluate(text, cls)
	if err != nil {
		return fail(res, err)
	}

	res.Status = models.RowOK
	res.Result = &ar
	return res
}

// checkRow rejects text that cannot be analysed.
func checkRow(text string) error {
	if !utf8.ValidString(text) {
		return fmt.Errorf("%w: text is not valid UTF-8", ErrMalformedRow)
	}
	if strings.TrimSpace(text) == "" {
		return fmt.Errorf("%w: text is empty", ErrMalformedRow)
	}
	return nil
}

func fail(res models.RowResult, err error) models.RowResult {
	res.Status = models.RowError
	res.Error = err.Error()
	res.Result = nil
	return res
}
