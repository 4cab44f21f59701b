package ast

import (
	"github.com/viraptor/basalt/internal/value"
)

// CallExpression applies a callable to arguments. Calls are external to the
// operator optimization: nothing is proven about the callee, so a call is
// the canonical side-effecting, possibly-raising, never-constant operand.
type CallExpression struct {
	exprBase
	function string
	args     []Expression
}

// NewCallExpression creates a call of the named function.
func NewCallExpression(function string, args []Expression, ref SourceRef) *CallExpression {
	return &CallExpression{exprBase: exprBase{ref: ref}, function: function, args: args}
}

func (c *CallExpression) Kind() string { return "CallExpression" }

// Function returns the called name.
func (c *CallExpression) Function() string { return c.function }

// Compute conservatively models the call: arbitrary code runs, the argument
// values escape, and any exception may propagate. The node itself is kept.
func (c *CallExpression) Compute(cc ConstraintContext) (Expression, error) {
	cc.OnExceptionRaiseExit(value.AnyError)

	for _, arg := range c.args {
		cc.RemoveKnowledge(arg)
	}

	cc.OnControlFlowEscape(c)

	return c, nil
}

func (c *CallExpression) ExtractSideEffects() []Expression {
	return []Expression{c}
}

func (c *CallExpression) Children() []Expression {
	children := make([]Expression, len(c.args))
	copy(children, c.args)
	return children
}

func (c *CallExpression) SetChild(i int, child Expression) {
	c.args[i] = child
}
