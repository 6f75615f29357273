package dispatch

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/semaphore"
)

// Dispatcher runs platform side effects off the detection path. At most
// limit tasks run at once; Go blocks only while the pool is full.
type Dispatcher struct {
	sem     *semaphore.Weighted
	limit   int64
	timeout time.Duration
	logger  *zap.Logger
	wg      sync.WaitGroup
	ctx     context.Context
	cancel  context.CancelFunc
}

func New(limit int, timeout time.Duration, logger *zap.Logger) *Dispatcher {
	if limit <= 0 {
		limit = 8
	}
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Dispatcher{
		sem:     semaphore.NewWeighted(int64(limit)),
		limit:   int64(limit),
		timeout: timeout,
		logger:  logger,
		ctx:     ctx,
		cancel:  cancel,
	}
}

// Go schedules fn. Errors are logged under name and otherwise dropped.
func (d *Dispatcher) Go(name string, fn func(ctx context.Context) error) {
	if err := d.sem.Acquire(d.ctx, 1); err != nil {
		d.logger.Warn("dispatcher closed, task dropped", zap.String("task", name))
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		defer d.sem.Release(1)
		defer func() {
			if r := recover(); r != nil {
				d.logger.Error("task panicked", zap.String("task", name), zap.Any("panic", r))
			}
		}()

		ctx, cancel := context.WithTimeout(d.ctx, d.timeout)
		defer cancel()
		if err := fn(ctx); err != nil {
			d.logger.Warn("task failed", zap.String("task", name), zap.Error(err))
		}
	}()
}

// Close waits for running tasks up to ctx, then cancels the rest.
func (d *Dispatcher) Close(ctx context.Context) {
	done := make(chan struct{})
	go func() {
		d.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-ctx.Done():
	}
	d.cancel()
}
