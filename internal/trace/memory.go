package trace

import (
	"github.com/viraptor/basalt/internal/optimize"
)

// MemorySink keeps recorded changes in memory, for tests and for callers
// that want the journal shape without a database. Not safe for concurrent
// use.
type MemorySink struct {
	runs map[string][]Signal
}

// NewMemorySink creates an empty in-memory sink.
func NewMemorySink() *MemorySink {
	return &MemorySink{runs: make(map[string][]Signal)}
}

// RecordChange implements optimize.Sink.
func (m *MemorySink) RecordChange(runToken string, seq int, change optimize.Change) error {
	m.runs[runToken] = append(m.runs[runToken], Signal{
		Seq:     seq,
		Tags:    change.Tags,
		File:    change.Ref.File,
		Line:    change.Ref.Line,
		Column:  change.Ref.Column,
		Message: change.Message,
	})
	return nil
}

// Signals returns the recorded signals of one run, in emission order.
func (m *MemorySink) Signals(runToken string) []Signal {
	return m.runs[runToken]
}
