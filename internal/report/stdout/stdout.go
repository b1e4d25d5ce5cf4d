package stdout

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/crimson-sun/traceval/internal/model"
	"github.com/crimson-sun/traceval/internal/report"
)

// Sink writes JSON-encoded case results to a writer, stdout by default.
type Sink struct {
	enc       *json.Encoder
	verbosity report.Verbosity
}

// New creates a stdout Sink with verbosity-aware field omission and
// optional pretty-printed JSON.
func New(verbosity report.Verbosity, pretty bool) *Sink {
	return NewWriter(os.Stdout, verbosity, pretty)
}

// NewWriter creates a Sink targeting an arbitrary writer.
func NewWriter(w io.Writer, verbosity report.Verbosity, pretty bool) *Sink {
	enc := json.NewEncoder(w)
	if pretty {
		enc.SetIndent("", "  ")
	}
	return &Sink{enc: enc, verbosity: verbosity}
}

func (s *Sink) Write(_ context.Context, result model.CaseResult) error {
	if err := s.enc.Encode(report.Format(result, s.verbosity)); err != nil {
		return fmt.Errorf("stdout sink: %w", err)
	}
	return nil
}

func (s *Sink) Close() error {
	return nil
}
