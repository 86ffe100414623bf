package render

import (
	"context"
	"time"
)

// Task runs a function on a fixed interval until canceled.
// A slow run delays the next one; missed ticks are dropped, not queued.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
}

// Repeat calls fn every interval on its own goroutine.
func Repeat(ctx context.Context, interval time.Duration, fn func(now time.Time)) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}

	go func() {
		defer close(t.done)
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case now := <-ticker.C:
				if ctx.Err() != nil {
					return
				}
				fn(now)
			}
		}
	}()
	return t
}

// Cancel stops the task and waits for an in-flight run to return.
// It must not be called from inside fn.
func (t *Task) Cancel() {
	t.cancel()
	<-t.done
}

// Done is closed once the task has stopped.
func (t *Task) Done() <-chan struct{} { return t.done }
