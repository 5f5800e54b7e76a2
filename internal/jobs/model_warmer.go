package jobs

import (
	"context"
	"log/slog"
	"time"
)

// Warmable is a model that can be loaded ahead of the first request.
type Warmable interface {
	ModelID() string
	Ready() bool
	Warm(ctx context.Context) error
}

// DefaultWarmInterval is used when the configured interval is not positive.
const DefaultWarmInterval = time.Minute

// ModelWarmer loads the sentiment model in the background so the first
// analysis does not pay the load cost. Failed loads are retried on every
// tick until one succeeds.
type ModelWarmer struct {
	model    Warmable
	interval time.Duration
	timeout  time.Duration
}

// NewModelWarmer creates a new model warmer. timeout bounds each attempt;
// zero means no bound. A non-positive interval becomes DefaultWarmInterval.
func NewModelWarmer(model Warmable, interval, timeout time.Duration) *ModelWarmer {
	if interval <= 0 {
		interval = DefaultWarmInterval
	}
	return &ModelWarmer{
		model:    model,
		interval: interval,
		timeout:  timeout,
	}
}

// Start begins the warm-up loop. It returns once the model is ready or ctx
// is cancelled.
func (w *ModelWarmer) Start(ctx context.Context) {
	slog.Info("model warmer started", "model", w.model.ModelID(), "interval", w.interval)

	// Run immediately on start
	if w.warm(ctx) {
		return
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("model warmer stopped", "model", w.model.ModelID())
			return
		case <-ticker.C:
			if w.warm(ctx) {
				return
			}
		}
	}
}

// warm makes one load attempt and reports whether the model is ready.
func (w *ModelWarmer) warm(ctx context.Context) bool {
	if w.model.Ready() {
		return true
	}

	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	start := time.Now()
	if err := w.model.Warm(ctx); err != nil {
		slog.Warn("model warm-up failed", "model", w.model.ModelID(), "error", err, "retry_in", w.interval)
		return false
	}

	slog.Info("model warm-up complete", "model", w.model.ModelID(), "duration", time.Since(start))
	return true
}
