package ast

import (
	"github.com/viraptor/basalt/internal/value"
)

// ConstantRef is an expression proven to evaluate to one fixed value. It is
// both a leaf the tree is built with and the replacement node constant
// folding produces.
type ConstantRef struct {
	exprBase
	val value.Value
}

// NewConstantRef creates a constant reference.
func NewConstantRef(val value.Value, ref SourceRef) *ConstantRef {
	return &ConstantRef{exprBase: exprBase{ref: ref}, val: val}
}

func (c *ConstantRef) Kind() string { return "ConstantRef" }

// Compute on a constant is the identity: the node is already fully reduced,
// so it returns unchanged and emits no effect signals.
func (c *ConstantRef) Compute(cc ConstraintContext) (Expression, error) {
	return c, nil
}

func (c *ConstantRef) IsCompileTimeConstant() bool { return true }

func (c *ConstantRef) ConstantValue() (value.Value, bool) { return c.val, true }

// IsMutable reports whether the constant's value could be mutated in place.
// Only immutable constants may be folded across exception boundaries or
// appear as the left operand of an in-place operation.
func (c *ConstantRef) IsMutable() bool { return value.IsMutable(c.val) }

func (c *ConstantRef) TruthValue() Truth { return TruthOf(value.Truth(c.val)) }

func (c *ConstantRef) MayHaveSideEffects() bool { return false }

func (c *ConstantRef) MayHaveSideEffectsBool() bool { return false }

func (c *ConstantRef) MayRaiseException() bool { return false }

func (c *ConstantRef) MayRaiseExceptionBool() bool { return false }

func (c *ConstantRef) IterationLength() (int, bool) { return value.Len(c.val) }

func (c *ConstantRef) ExtractSideEffects() []Expression { return nil }

// ComputeNegation folds logical negation of a constant directly: the truth
// value is known, and negating it never raises.
func (c *ConstantRef) ComputeNegation(not *NotOperation, cc ConstraintContext) (Expression, error) {
	return cc.CompileTimeComputation(not, func() (value.Value, error) {
		return value.Bool(!value.Truth(c.val)), nil
	}, "Operator 'Not' with constant argument.")
}
