package optimize

import (
	"fmt"

	"github.com/viraptor/basalt/internal/ast"
)

// Change is one recorded tree rewrite. Tags categorize the rewrite
// ("new_constant", "new_raise", "new_expression"), the ref points at the
// rewritten node's source, and the message is the human-readable account of
// what happened.
type Change struct {
	Tags    string
	Ref     ast.SourceRef
	Message string
}

func (c Change) String() string {
	return fmt.Sprintf("%s %s: %s", c.Ref, c.Tags, c.Message)
}

// Sink receives every change signal as it is emitted, in order. The trace
// journal implements it; tests use an in-memory one.
type Sink interface {
	RecordChange(runToken string, seq int, change Change) error
}
