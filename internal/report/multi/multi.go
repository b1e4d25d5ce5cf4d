package multi

import (
	"context"
	"errors"

	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/report"
)

// Multi fans case results out to multiple report.Sink implementations.
// Each Write delivers the result to every wrapped sink sequentially; if one
// sink fails, the remaining sinks still receive the result.
type Multi struct {
	sinks []report.Sink
}

// New creates a Multi that fans out to the given sinks.
func New(sinks ...report.Sink) *Multi {
	return &Multi{sinks: sinks}
}

// Write delivers the result to every wrapped sink. Errors are collected
// but do not prevent delivery to subsequent sinks.
func (m *Multi) Write(ctx context.Context, result model.CaseResult) error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Write(ctx, result); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close calls Close on every wrapped sink, collecting errors.
func (m *Multi) Close() error {
	var errs []error
	for _, s := range m.sinks {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
