package classifier

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/sethvargo/go-retry"

	"sentinel/internal/models"
	"sentinel/internal/validation"
)

// Options configures a Classifier.
type Options struct {
	ModelID        string
	TruncateLength int           // characters kept before inference; <=0 disables
	LoadRetries    uint64        // extra load attempts after the first
	RetryBase      time.Duration // first Fibonacci backoff step
}

// Classifier wraps a pretrained binary sentiment model. The model is loaded
// once per process on first use and shared read-only afterwards. A failed
// load is not remembered, so a later call can recover once the provider is
// reachable again.
type Classifier struct {
	provider Provider
	opts     Options

	mu    sync.Mutex // serialises loading
	model atomic.Pointer[loadedModel]
}

type loadedModel struct {
	model    Model
	loadedAt time.Time
}

// New creates a Classifier. Nothing is loaded until Load, Warm or Classify.
func New(provider Provider, opts Options) *Classifier {
	if opts.RetryBase <= 0 {
		opts.RetryBase = 500 * time.Millisecond
	}
	return &Classifier{provider: provider, opts: opts}
}

// ModelID returns the configured model identifier.
func (c *Classifier) ModelID() string {
	return c.opts.ModelID
}

// ProviderName returns the name of the model provider.
func (c *Classifier) ProviderName() string {
	return c.provider.Name()
}

// TruncateLength returns the number of characters kept before inference.
func (c *Classifier) TruncateLength() int {
	return c.opts.TruncateLength
}

// Ready returns true once the model has been loaded.
func (c *Classifier) Ready() bool {
	return c.model.Load() != nil
}

// LoadedAt returns when the model finished loading, or the zero time.
func (c *Classifier) LoadedAt() time.Time {
	if l := c.model.Load(); l != nil {
		return l.loadedAt
	}
	return time.Time{}
}

// Warm loads the model if it is not loaded yet.
func (c *Classifier) Warm(ctx context.Context) error {
	_, err := c.Load(ctx)
	return err
}

// Load returns the shared model instance, loading it on the first call.
// Concurrent first calls wait for a single load. Failures are wrapped in
// ErrModelLoad.
func (c *Classifier) Load(ctx context.Context) (Model, error) {
	if l := c.model.Load(); l != nil {
		return l.model, nil
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if l := c.model.Load(); l != nil {
		return l.model, nil
	}

	start := time.Now()
	slog.Info("loading sentiment model", "provider", c.provider.Name(), "model", c.opts.ModelID)

	var model Model
	attempt := 0
	backoff := retry.WithMaxRetries(c.opts.LoadRetries, retry.NewFibonacci(c.opts.RetryBase))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		m, err := c.provider.Load(ctx, c.opts.ModelID)
		if err != nil {
			if ShouldRetry(err) {
				slog.Warn("model load failed, retrying", "model", c.opts.ModelID, "attempt", attempt, "error", err)
				return retry.RetryableError(err)
			}
			return err
		}
		model = m
		return nil
	})
	if err != nil {
		slog.Error("model load failed", "model", c.opts.ModelID, "attempts", attempt, "error", err)
		return nil, fmt.Errorf("%w: %s: %w", ErrModelLoad, c.opts.ModelID, err)
	}

	c.model.Store(&loadedModel{model: model, loadedAt: time.Now()})
	slog.Info("sentiment model ready", "model", c.opts.ModelID, "duration", time.Since(start))
	return model, nil
}

// Classify returns the sentiment label and confidence for text. Text longer
// than the truncation length is cut before inference.
func (c *Classifier) Classify(ctx context.Context, text string) (models.Classification, error) {
	if text == "" {
		return models.Classification{}, ErrEmptyText
	}

	model, err := c.Load(ctx)
	if err != nil {
		return models.Classification{}, err
	}

	scores, err := model.Run(ctx, validation.TruncateRunes(text, c.opts.TruncateLength))
	if err != nil {
		return models.Classification{}, fmt.Errorf("classify: %w", err)
	}

	return ParseScores(scores)
}

// Close releases model resources if the model holds any.
func (c *Classifier) Close() error {
	l := c.model.Load()
	if l == nil {
		return nil
	}
	if closer, ok := l.model.(io.Closer); ok {
		return closer.Close()
	}
	return nil
}
