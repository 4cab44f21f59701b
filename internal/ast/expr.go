package ast

import (
	"fmt"

	"github.com/viraptor/basalt/internal/value"
)

// SourceRef locates an expression in its source document, for diagnostics
// and change signals.
type SourceRef struct {
	File   string
	Line   int
	Column int
}

func (r SourceRef) String() string {
	if r.File == "" {
		return fmt.Sprintf("%d:%d", r.Line, r.Column)
	}
	return fmt.Sprintf("%s:%d:%d", r.File, r.Line, r.Column)
}

// Truth is a three-valued truth assessment of an expression. Unknown is
// never guessed away; only provably true or false expressions report a
// definite value.
type Truth int

const (
	TruthUnknown Truth = iota
	TruthFalse
	TruthTrue
)

// Negate flips a truth value; unknown stays unknown.
func (t Truth) Negate() Truth {
	switch t {
	case TruthTrue:
		return TruthFalse
	case TruthFalse:
		return TruthTrue
	default:
		return TruthUnknown
	}
}

// TruthOf lifts a known boolean into a Truth.
func TruthOf(b bool) Truth {
	if b {
		return TruthTrue
	}
	return TruthFalse
}

func (t Truth) String() string {
	switch t {
	case TruthTrue:
		return "true"
	case TruthFalse:
		return "false"
	default:
		return "unknown"
	}
}

// ConstraintContext is the capability surface the optimizer exposes to nodes
// during Compute. Nodes read and mutate the abstract-interpretation state
// only through this interface; the context is passed explicitly to every
// compute call, never held as ambient global state.
type ConstraintContext interface {
	// OnExceptionRaiseExit records that this point may raise an exception
	// of the given category.
	OnExceptionRaiseExit(kind value.ErrorKind)

	// RemoveKnowledge invalidates all previously derived facts about the
	// expression's value.
	RemoveKnowledge(expr Expression)

	// OnControlFlowEscape records that arbitrary side effects may
	// originate at the node.
	OnControlFlowEscape(node Expression)

	// CompileTimeComputation invokes the deferred computation. On success
	// it returns a constant-replacement node; if the computation raises
	// the operator's real exception it returns a "provably raises"
	// replacement instead. Either way a change signal is emitted with the
	// description attached for diagnostics. The returned error is only
	// ever an internal defect, never a language-level outcome.
	CompileTimeComputation(node Expression, computation func() (value.Value, error), description string) (Expression, error)

	// SignalChange notifies that a rewrite occurred, for fixpoint
	// detection and tracing.
	SignalChange(tags string, ref SourceRef, message string)
}

// Expression is the interface of every node in the tree.
type Expression interface {
	// Kind names the node variant for dumps and diagnostics.
	Kind() string

	SourceRef() SourceRef

	// Compute runs one abstract-interpretation step on this node and
	// returns its replacement (itself when unchanged). See the package
	// documentation for the protocol's guarantees.
	Compute(cc ConstraintContext) (Expression, error)

	// IsCompileTimeConstant reports whether the expression provably
	// evaluates to one fixed value on every execution path.
	IsCompileTimeConstant() bool

	// ConstantValue returns the proven value, if any.
	ConstantValue() (value.Value, bool)

	// TruthValue is the expression's three-valued truthiness.
	TruthValue() Truth

	// MayHaveSideEffects reports whether evaluating the expression may
	// have observable effects.
	MayHaveSideEffects() bool

	// MayHaveSideEffectsBool reports whether evaluating the expression
	// in boolean context may have observable effects beyond evaluation
	// itself.
	MayHaveSideEffectsBool() bool

	// MayRaiseException reports whether evaluation may raise.
	MayRaiseException() bool

	// MayRaiseExceptionBool reports whether boolean-context evaluation
	// may raise.
	MayRaiseExceptionBool() bool

	// IterationLength returns the proven iteration length, if any.
	IterationLength() (int, bool)

	// ExtractSideEffects returns the minimal expressions whose
	// evaluation preserves this expression's observable effects.
	ExtractSideEffects() []Expression

	// Children returns the owned operand subtrees in evaluation order.
	Children() []Expression

	// SetChild installs a replacement for the i-th child. Only the
	// optimizer driver calls this, with replacements produced by the
	// child's own Compute.
	SetChild(i int, child Expression)
}

// NegationComputer is the optional capability an expression variant may
// implement to decide its own behavior under logical negation. The NOT node
// delegates through this instead of enumerating operand kinds, so a variant
// can fold or restructure itself (a comparison could flip its comparator,
// a constant folds its truth value). Variants without the capability get the
// generic constant-or-escape handling.
type NegationComputer interface {
	ComputeNegation(not *NotOperation, cc ConstraintContext) (Expression, error)
}

// LiteralConstruction marks literal sequence and mapping constructions.
// The truthiness of a freshly built container depends only on its length,
// which is what lets a NOT node reduce its side effects to the constituent
// element effects.
type LiteralConstruction interface {
	literalConstruction()
}

// exprBase carries the source reference and the conservative defaults of
// the expression contract. Nodes embed it and override what they can prove.
type exprBase struct {
	ref SourceRef
}

func (b *exprBase) SourceRef() SourceRef { return b.ref }

func (b *exprBase) IsCompileTimeConstant() bool { return false }

func (b *exprBase) ConstantValue() (value.Value, bool) { return nil, false }

func (b *exprBase) TruthValue() Truth { return TruthUnknown }

func (b *exprBase) MayHaveSideEffects() bool { return true }

func (b *exprBase) MayHaveSideEffectsBool() bool { return true }

func (b *exprBase) MayRaiseException() bool { return true }

func (b *exprBase) MayRaiseExceptionBool() bool { return true }

func (b *exprBase) IterationLength() (int, bool) { return 0, false }

func (b *exprBase) Children() []Expression { return nil }

func (b *exprBase) SetChild(i int, child Expression) {
	panic(fmt.Sprintf("ast: SetChild(%d) on a node without children", i))
}
