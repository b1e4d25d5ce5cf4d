package multi

import (
	"context"
	"errors"
	"testing"

	"github.com/crimson-sun/traceval/internal/model"
)

type recordingSink struct {
	results  []model.CaseResult
	writeErr error
	closed   bool
}

func (r *recordingSink) Write(_ context.Context, result model.CaseResult) error {
	if r.writeErr != nil {
		return r.writeErr
	}
	r.results = append(r.results, result)
	return nil
}

func (r *recordingSink) Close() error {
	r.closed = true
	return nil
}

func TestFanOut(t *testing.T) {
	a, b := &recordingSink{}, &recordingSink{}
	m := New(a, b)

	if err := m.Write(context.Background(), model.CaseResult{RunID: "run-1"}); err != nil {
		t.Fatalf("write: %v", err)
	}
	if len(a.results) != 1 || len(b.results) != 1 {
		t.Fatalf("fan-out missed a sink: a=%d b=%d", len(a.results), len(b.results))
	}

	if err := m.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	if !a.closed || !b.closed {
		t.Fatal("close did not reach all sinks")
	}
}

func TestFailingSinkDoesNotBlockOthers(t *testing.T) {
	bad := &recordingSink{writeErr: errors.New("disk full")}
	good := &recordingSink{}
	m := New(bad, good)

	err := m.Write(context.Background(), model.CaseResult{RunID: "run-2"})
	if err == nil {
		t.Fatal("expected joined error")
	}
	if len(good.results) != 1 {
		t.Fatal("healthy sink skipped after earlier failure")
	}
}
