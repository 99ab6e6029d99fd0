package scheduler

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"
)

type countingWarmer struct {
	calls atomic.Int32
	err   error
}

func (w *countingWarmer) Warm(ctx context.Context) error {
	w.calls.Add(1)
	if _, ok := ctx.Deadline(); !ok {
		return errors.New("warm called without a deadline")
	}
	return w.err
}

func TestRunCallsWarmer(t *testing.T) {
	w := &countingWarmer{}
	s := New(w, time.Minute)

	s.run()
	w.err = errors.New("upstream down")
	s.run() // errors are logged, not fatal

	if n := w.calls.Load(); n != 2 {
		t.Fatalf("expected 2 warm calls, got %d", n)
	}
}

func TestStartDisabled(t *testing.T) {
	w := &countingWarmer{}
	s := New(w, 0)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	time.Sleep(20 * time.Millisecond)
	if n := w.calls.Load(); n != 0 {
		t.Fatalf("expected disabled scheduler not to warm, got %d calls", n)
	}
}

func TestStartRunsImmediately(t *testing.T) {
	w := &countingWarmer{}
	s := New(w, time.Hour)
	if err := s.Start(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer s.Stop()

	deadline := time.Now().Add(2 * time.Second)
	for w.calls.Load() == 0 && time.Now().Before(deadline) {
		time.Sleep(5 * time.Millisecond)
	}
	if w.calls.Load() == 0 {
		t.Fatal("expected the first warm to run right after Start")
	}
}
