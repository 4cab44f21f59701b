package ast

import (
	"github.com/viraptor/basalt/internal/value"
)

// RaiseExpression encodes "this expression provably raises" - the
// replacement constant folding produces when the simulator raises the
// operator's real exception. The compiled program raises the identical
// exception kind and message the unoptimized program would.
type RaiseExpression struct {
	exprBase
	errKind value.ErrorKind
	message string
}

// NewRaiseExpression creates a provably-raising replacement node.
func NewRaiseExpression(kind value.ErrorKind, message string, ref SourceRef) *RaiseExpression {
	return &RaiseExpression{exprBase: exprBase{ref: ref}, errKind: kind, message: message}
}

func (r *RaiseExpression) Kind() string { return "RaiseExpression" }

// ErrorKind returns the exception category this expression raises.
func (r *RaiseExpression) ErrorKind() value.ErrorKind { return r.errKind }

// Message returns the exception message.
func (r *RaiseExpression) Message() string { return r.message }

// Compute re-registers the known exception exit and keeps the node. No
// change signal: the node is already fully reduced.
func (r *RaiseExpression) Compute(cc ConstraintContext) (Expression, error) {
	cc.OnExceptionRaiseExit(r.errKind)
	return r, nil
}

// Raising is the node's one observable effect.
func (r *RaiseExpression) ExtractSideEffects() []Expression {
	return []Expression{r}
}
