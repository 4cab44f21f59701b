package ast

import (
	"errors"
	"fmt"
)

// InvariantError reports a violated internal invariant of the optimizer,
// such as an in-place fold encountering a mutable constant as left operand.
// It indicates a defect in an earlier pass, never a user-facing condition,
// and it halts compilation.
type InvariantError struct {
	// Node is the expression at which the violation was detected.
	Node Expression

	// Message describes the violated invariant.
	Message string
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	if e.Node != nil {
		return fmt.Sprintf("internal invariant violated at %s (%s): %s", e.Node.SourceRef(), e.Node.Kind(), e.Message)
	}
	return fmt.Sprintf("internal invariant violated: %s", e.Message)
}

// NewInvariantError creates an InvariantError for a node with a formatted
// message.
func NewInvariantError(node Expression, format string, args ...any) *InvariantError {
	return &InvariantError{Node: node, Message: fmt.Sprintf(format, args...)}
}

// IsInvariantError reports whether err is (or wraps) an InvariantError.
// Uses errors.As to handle wrapped errors.
func IsInvariantError(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
