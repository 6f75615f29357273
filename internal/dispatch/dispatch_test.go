package dispatch

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"go.uber.org/zap"
)

func TestDispatcherRunsTasks(t *testing.T) {
	d := New(2, time.Second, zap.NewNop())
	var ran atomic.Int32
	for i := 0; i < 10; i++ {
		d.Go("count", func(ctx context.Context) error {
			ran.Add(1)
			return nil
		})
	}
	d.Go("fail", func(ctx context.Context) error { return errors.New("boom") })
	d.Go("panic", func(ctx context.Context) error { panic("boom") })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	d.Close(ctx)

	if ran.Load() != 10 {
		t.Fatalf("expected 10 tasks, got %d", ran.Load())
	}
}

func TestDispatcherBoundsConcurrency(t *testing.T) {
	d := New(2, time.Second, zap.NewNop())
	var running, peak atomic.Int32
	for i := 0; i < 6; i++ {
		d.Go("slow", func(ctx context.Context) error {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			time.Sleep(10 * time.Millisecond)
			running.Add(-1)
			return nil
		})
	}
	d.Close(context.Background())

	if peak.Load() > 2 {
		t.Fatalf("expected at most 2 concurrent tasks, got %d", peak.Load())
	}
}

func TestDispatcherDropsAfterClose(t *testing.T) {
	d := New(1, time.Second, zap.NewNop())
	d.Close(context.Background())

	called := false
	d.Go("late", func(ctx context.Context) error {
		called = true
		return nil
	})
	if called {
		t.Fatalf("tasks after close must be dropped")
	}
}
