package async

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/report"
)

const (
	defaultBufferSize   = 256
	defaultDrainTimeout = 5 * time.Second
)

// Option configures an Async wrapper.
type Option func(*Async)

// WithBufferSize sets the channel buffer capacity. Default: 256.
func WithBufferSize(n int) Option {
	return func(a *Async) { a.bufSize = n }
}

// WithOnError sets the callback invoked when the inner sink's Write fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(a *Async) { a.errFunc = f }
}

// WithDropOnFull makes Write return immediately (dropping the result) when
// the buffer is full, instead of blocking. Use for sinks where lossiness
// is acceptable (e.g., a non-critical webhook).
func WithDropOnFull() Option {
	return func(a *Async) { a.dropOnFull = true }
}

// Async decouples result production from consumption via a buffered
// channel. The evaluator writes into the channel; a background goroutine
// drains it to the wrapped sink. Errors from the inner sink are passed to
// errFunc rather than propagated.
type Async struct {
	inner      report.Sink
	ch         chan model.CaseResult
	done       chan struct{}
	errFunc    func(error)
	bufSize    int
	dropOnFull bool
	closeOnce  sync.Once
}

// New wraps a report.Sink in an async channel-based writer. The background
// drain goroutine starts immediately.
func New(inner report.Sink, opts ...Option) *Async {
	a := &Async{
		inner:   inner,
		bufSize: defaultBufferSize,
		errFunc: func(err error) { slog.Warn("async sink write error", "error", err) },
	}
	for _, opt := range opts {
		opt(a)
	}
	a.ch = make(chan model.CaseResult, a.bufSize)
	a.done = make(chan struct{})
	go a.drain()
	return a
}

// Write sends the result into the channel. By default, blocks if the
// channel is full (backpressure). With WithDropOnFull, returns nil
// immediately and the result is lost.
func (a *Async) Write(_ context.Context, result model.CaseResult) error {
	if a.dropOnFull {
		select {
		case a.ch <- result:
		default:
			slog.Warn("async sink buffer full, dropping result", "run_id", result.RunID)
		}
		return nil
	}
	a.ch <- result
	return nil
}

// Close closes the channel, waits for the drain goroutine to finish
// (with a timeout), then closes the inner sink.
func (a *Async) Close() error {
	var err error
	a.closeOnce.Do(func() {
		close(a.ch)
		select {
		case <-a.done:
		case <-time.After(defaultDrainTimeout):
			slog.Warn("async sink drain timed out")
		}
		err = a.inner.Close()
	})
	return err
}

// drain reads results from the channel and writes them to the inner sink.
func (a *Async) drain() {
	defer close(a.done)
	for result := range a.ch {
		if err := a.inner.Write(context.Background(), result); err != nil {
			a.errFunc(err)
		}
	}
}
