package webhook

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/report"
)

type capture struct {
	mu      sync.Mutex
	batches [][]model.CaseResult
	headers []http.Header
	fail    int // number of requests to answer with 503 before succeeding
}

func (c *capture) handler(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.fail > 0 {
		c.fail--
		w.WriteHeader(http.StatusServiceUnavailable)
		return
	}
	body, _ := io.ReadAll(r.Body)
	var batch []model.CaseResult
	if err := json.Unmarshal(body, &batch); err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	c.batches = append(c.batches, batch)
	c.headers = append(c.headers, r.Header.Clone())
	w.WriteHeader(http.StatusOK)
}

func TestBatchFlushOnSize(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	s := New(srv.URL, report.Standard, WithBatchSize(2))
	for _, id := range []string{"run-1", "run-2", "run-3"} {
		if err := s.Write(context.Background(), model.CaseResult{RunID: id}); err != nil {
			t.Fatalf("write %s: %v", id, err)
		}
	}
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.batches) != 2 {
		t.Fatalf("batches = %d, want 2", len(c.batches))
	}
	if len(c.batches[0]) != 2 || c.batches[0][0].RunID != "run-1" {
		t.Fatalf("first batch = %+v", c.batches[0])
	}
	if len(c.batches[1]) != 1 || c.batches[1][0].RunID != "run-3" {
		t.Fatalf("final batch = %+v", c.batches[1])
	}
}

func TestRetryOn5xx(t *testing.T) {
	c := &capture{fail: 2}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	s := New(srv.URL, report.Standard, WithBatchSize(1))
	if err := s.Write(context.Background(), model.CaseResult{RunID: "run-r"}); err != nil {
		t.Fatalf("write after retries: %v", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.batches) != 1 {
		t.Fatalf("batches = %d", len(c.batches))
	}
}

func TestCustomHeaders(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	s := New(srv.URL, report.Standard,
		WithBatchSize(1),
		WithHeaders(map[string]string{"Authorization": "Bearer tok"}))
	if err := s.Write(context.Background(), model.CaseResult{}); err != nil {
		t.Fatalf("write: %v", err)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if got := c.headers[0].Get("Authorization"); got != "Bearer tok" {
		t.Fatalf("authorization header = %q", got)
	}
	if got := c.headers[0].Get("Content-Type"); got != "application/json" {
		t.Fatalf("content type = %q", got)
	}
}

func TestCloseWithEmptyBatchIsNoop(t *testing.T) {
	c := &capture{}
	srv := httptest.NewServer(http.HandlerFunc(c.handler))
	defer srv.Close()

	s := New(srv.URL, report.Standard)
	if err := s.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.batches) != 0 {
		t.Fatalf("unexpected POST on empty close: %d", len(c.batches))
	}
}
