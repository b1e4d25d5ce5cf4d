package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/report"
)

const (
	defaultBatchSize     = 16
	defaultFlushInterval = 5 * time.Second
	defaultTimeout       = 10 * time.Second
	maxRetries           = 3
)

// Option configures a webhook Sink.
type Option func(*Sink)

// WithHeaders sets custom HTTP headers sent with every POST.
func WithHeaders(h map[string]string) Option {
	return func(s *Sink) { s.headers = h }
}

// WithBatchSize sets the number of results accumulated before a flush.
// Default: 16.
func WithBatchSize(n int) Option {
	return func(s *Sink) { s.batchSize = n }
}

// WithFlushInterval sets the maximum time between flushes. Default: 5s.
func WithFlushInterval(d time.Duration) Option {
	return func(s *Sink) { s.flushInterval = d }
}

// WithTimeout sets the HTTP client timeout. Default: 10s.
func WithTimeout(d time.Duration) Option {
	return func(s *Sink) { s.client.Timeout = d }
}

// WithOnError sets a callback invoked when a timer-triggered flush fails.
// Default: logs a warning via slog.
func WithOnError(f func(error)) Option {
	return func(s *Sink) { s.errFunc = f }
}

// Sink POSTs batched case results to an HTTP endpoint as a JSON array.
// Results accumulate in an internal buffer and are flushed when batchSize
// is reached or flushInterval elapses. Retries on 5xx with exponential
// backoff.
type Sink struct {
	client        *http.Client
	url           string
	verbosity     report.Verbosity
	headers       map[string]string
	batchSize     int
	flushInterval time.Duration
	errFunc       func(error)
	mu            sync.Mutex
	pending       []model.CaseResult
	timer         *time.Timer
}

// New creates a webhook sink targeting the given URL.
func New(url string, verbosity report.Verbosity, opts ...Option) *Sink {
	s := &Sink{
		client:        &http.Client{Timeout: defaultTimeout},
		url:           url,
		verbosity:     verbosity,
		batchSize:     defaultBatchSize,
		flushInterval: defaultFlushInterval,
		errFunc:       func(err error) { slog.Warn("webhook flush error", "error", err) },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Write appends a result to the batch. When batchSize is reached, the
// batch is flushed immediately. A timer is started on the first result so
// the batch flushes even if batchSize is never reached.
func (s *Sink) Write(_ context.Context, result model.CaseResult) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.pending = append(s.pending, report.Format(result, s.verbosity))

	if len(s.pending) >= s.batchSize {
		return s.flushLocked()
	}

	if len(s.pending) == 1 {
		s.timer = time.AfterFunc(s.flushInterval, func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			if err := s.flushLocked(); err != nil {
				s.errFunc(err)
			}
		})
	}
	return nil
}

// Close flushes any remaining results and stops the timer.
func (s *Sink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.timer != nil {
		s.timer.Stop()
	}
	return s.flushLocked()
}

// flushLocked POSTs the pending batch. Caller must hold mu.
func (s *Sink) flushLocked() error {
	if len(s.pending) == 0 {
		return nil
	}
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	batch := s.pending
	s.pending = nil

	body, err := json.Marshal(batch)
	if err != nil {
		return fmt.Errorf("webhook sink: marshal: %w", err)
	}
	return s.post(body)
}

// post sends the batch, retrying on 5xx with exponential backoff.
func (s *Sink) post(body []byte) error {
	var lastErr error
	for attempt := 0; attempt < maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(time.Duration(1<<attempt) * 100 * time.Millisecond)
		}

		req, err := http.NewRequest(http.MethodPost, s.url, bytes.NewReader(body))
		if err != nil {
			return fmt.Errorf("webhook sink: request: %w", err)
		}
		req.Header.Set("Content-Type", "application/json")
		for k, v := range s.headers {
			req.Header.Set(k, v)
		}

		resp, err := s.client.Do(req)
		if err != nil {
			lastErr = err
			continue
		}
		io.Copy(io.Discard, resp.Body)
		resp.Body.Close()

		if resp.StatusCode < 300 {
			return nil
		}
		lastErr = fmt.Errorf("status %d", resp.StatusCode)
		if resp.StatusCode < 500 {
			break // client errors are not retryable
		}
	}
	return fmt.Errorf("webhook sink: post: %w", lastErr)
}
