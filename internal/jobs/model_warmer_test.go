package jobs

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

type flakyModel struct {
	mu       sync.Mutex
	failures int
	calls    int
	ready    bool
}

func (f *flakyModel) ModelID() string { return "flaky" }

func (f *flakyModel) Ready() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.ready
}

func (f *flakyModel) Warm(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	if f.calls <= f.failures {
		return errors.New("hub unavailable")
	}
	f.ready = true
	return nil
}

func (f *flakyModel) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.calls
}

func TestModelWarmer_ReadyOnFirstAttempt(t *testing.T) {
	m := &flakyModel{}
	w := NewModelWarmer(m, time.Hour, time.Second)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after a successful warm-up")
	}
	if m.Calls() != 1 {
		t.Errorf("Warm called %d times, want 1", m.Calls())
	}
}

func TestModelWarmer_RetriesUntilReady(t *testing.T) {
	m := &flakyModel{failures: 2}
	w := NewModelWarmer(m, 5*time.Millisecond, 0)

	done := make(chan struct{})
	go func() {
		w.Start(context.Background())
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after retries")
	}
	if !m.Ready() {
		t.Error("model should be ready")
	}
	if m.Calls() != 3 {
		t.Errorf("Warm called %d times, want 3", m.Calls())
	}
}

func TestModelWarmer_StopsOnCancel(t *testing.T) {
	m := &flakyModel{failures: 1 << 30}
	w := NewModelWarmer(m, 5*time.Millisecond, 0)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(20 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Start did not return after cancel")
	}
	if m.Ready() {
		t.Error("model should not be ready")
	}
}

func TestModelWarmer_SkipsWhenAlreadyReady(t *testing.T) {
	m := &flakyModel{ready: true}
	NewModelWarmer(m, time.Hour, 0).Start(context.Background())

	if m.Calls() != 0 {
		t.Errorf("Warm called %d times, want 0", m.Calls())
	}
}

func TestModelWarmer_NonPositiveIntervalFallsBack(t *testing.T) {
	for _, interval := range []time.Duration{0, -time.Second} {
		m := &flakyModel{failures: 1 << 30}
		w := NewModelWarmer(m, interval, 0)
		if w.interval != DefaultWarmInterval {
			t.Errorf("interval %v: got %v, want %v", interval, w.interval, DefaultWarmInterval)
		}

		// A failed first attempt must reach the ticker without panicking.
		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		go func() {
			defer close(done)
			w.Start(ctx)
		}()

		time.Sleep(20 * time.Millisecond)
		cancel()

		select {
		case <-done:
		case <-time.After(2 * time.Second):
			t.Fatalf("interval %v: Start did not return after cancel", interval)
		}
		if m.Calls() != 1 {
			t.Errorf("interval %v: Warm called %d times, want 1", interval, m.Calls())
		}
	}
}
