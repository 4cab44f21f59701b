package ast

import (
	"fmt"

	"github.com/viraptor/basalt/internal/operators"
	"github.com/viraptor/basalt/internal/value"
)

// FoldLimits caps what constant folding is willing to compute at compile
// time, to avoid compiling enormous or pathologically expensive constants
// into the program. The values are behavioral constants; override them only
// in tests.
type FoldLimits struct {
	// MaxIterationLength caps the element count of a folded sequence
	// result (repetition and concatenation).
	MaxIterationLength int

	// MaxNumberDigits caps the sum of the base-10 digit counts of two
	// multiplied numbers, guarding against unbounded-size integer
	// results.
	MaxNumberDigits float64
}

// DefaultFoldLimits are the standard folding caps.
var DefaultFoldLimits = FoldLimits{
	MaxIterationLength: 256,
	MaxNumberDigits:    20,
}

// OperationNode is the shared state of every operator application: the
// operator tag, the in-place-suspect flag later passes maintain, and the
// diagnostic accessors. It carries no folding logic of its own.
type OperationNode struct {
	exprBase
	operator       string
	inplaceSuspect bool
}

// Operator returns the operator tag.
func (o *OperationNode) Operator() string { return o.operator }

// MarkAsInplaceSuspect flags the node as a candidate for in-place execution.
func (o *OperationNode) MarkAsInplaceSuspect() { o.inplaceSuspect = true }

// UnmarkAsInplaceSuspect clears the in-place-suspect flag.
func (o *OperationNode) UnmarkAsInplaceSuspect() { o.inplaceSuspect = false }

// IsInplaceSuspect reports the in-place-suspect flag.
func (o *OperationNode) IsInplaceSuspect() bool { return o.inplaceSuspect }

// Detail returns the short diagnostic detail for the node.
func (o *OperationNode) Detail() string { return o.operator }

// Details returns the diagnostic detail map for the node.
func (o *OperationNode) Details() map[string]string {
	return map[string]string{"operator": o.operator}
}

// KnownToBeIterable answers whether the operation's result is provably
// iterable. Always unknown: nothing proves iterability here, and guessing
// could unsoundly enable folds elsewhere.
// TODO: could be true if the operand types said so.
func (o *OperationNode) KnownToBeIterable(count int) Truth {
	return TruthUnknown
}

// BinaryOperation applies a binary operator to two owned operands.
type BinaryOperation struct {
	OperationNode
	table     *operators.Table
	simulator operators.BinaryFunc
	left      Expression
	right     Expression
	limits    FoldLimits
}

// NewBinaryOperation creates a plain binary operation. The operator tag must
// exist in the table and must not be augmented; augmented tags belong to
// NewInPlaceBinaryOperation.
func NewBinaryOperation(table *operators.Table, operator string, left, right Expression, ref SourceRef) (*BinaryOperation, error) {
	if operators.IsAugmented(operator) {
		return nil, fmt.Errorf("augmented operator %q requires an in-place operation node", operator)
	}
	sim, ok := table.Binary(operator)
	if !ok {
		return nil, fmt.Errorf("unknown binary operator %q", operator)
	}
	return &BinaryOperation{
		OperationNode: OperationNode{exprBase: exprBase{ref: ref}, operator: operator},
		table:         table,
		simulator:     sim,
		left:          left,
		right:         right,
		limits:        DefaultFoldLimits,
	}, nil
}

func (b *BinaryOperation) Kind() string { return "BinaryOperation" }

// Left returns the left operand.
func (b *BinaryOperation) Left() Expression { return b.left }

// Right returns the right operand.
func (b *BinaryOperation) Right() Expression { return b.right }

// SetFoldLimits overrides the folding caps, for tests.
func (b *BinaryOperation) SetFoldLimits(limits FoldLimits) { b.limits = limits }

// Compute decides whether and how to fold the application.
//
// Any binary operator application can fail at runtime unless proven
// otherwise, so the unbounded exception exit is registered up front. With
// both operands proven constant the fold-eligibility heuristics run before
// the real computation; an ineligible fold defers to runtime with no new
// facts. With either operand unknown, both operands' knowledge is
// invalidated and a control-flow escape is recorded: their values may now be
// observed or changed by arbitrary code.
func (b *BinaryOperation) Compute(cc ConstraintContext) (Expression, error) {
	cc.OnExceptionRaiseExit(value.AnyError)

	leftValue, leftConstant := b.left.ConstantValue()
	rightValue, rightConstant := b.right.ConstantValue()

	if leftConstant && rightConstant {
		if !b.foldEligible(leftValue, rightValue) {
			return b, nil
		}

		return cc.CompileTimeComputation(b, func() (value.Value, error) {
			return b.simulator(leftValue, rightValue)
		}, fmt.Sprintf("Operator '%s' with constant arguments.", b.operator))
	}

	cc.RemoveKnowledge(b.left)
	cc.RemoveKnowledge(b.right)

	cc.OnControlFlowEscape(b)

	return b, nil
}

// foldEligible applies the cost heuristics that keep compile-time constants
// reasonably sized.
func (b *BinaryOperation) foldEligible(leftValue, rightValue value.Value) bool {
	switch b.operator {
	case "Mult":
		if value.IsInt(rightValue) {
			if length, ok := value.Len(leftValue); ok {
				if exceedsRepeatCap(length, rightValue, b.limits.MaxIterationLength) {
					return false
				}
			}
			if value.IsInt(leftValue) {
				// Estimate the result size with logarithms; if the
				// computation is not achievable with acceptable effort
				// it happens at runtime instead.
				leftMag, leftOK := value.DigitMagnitude(leftValue)
				rightMag, rightOK := value.DigitMagnitude(rightValue)
				if leftOK && rightOK && leftMag+rightMag > b.limits.MaxNumberDigits {
					return false
				}
			}
		}
		if value.IsInt(leftValue) {
			if length, ok := value.Len(rightValue); ok {
				if exceedsRepeatCap(length, leftValue, b.limits.MaxIterationLength) {
					return false
				}
			}
		}
	case "Add":
		leftLen, leftOK := value.Len(leftValue)
		rightLen, rightOK := value.Len(rightValue)
		if leftOK && rightOK && leftLen+rightLen > b.limits.MaxIterationLength {
			return false
		}
	}

	return true
}

// exceedsRepeatCap reports whether repeating a sequence of the given length
// count times would exceed the cap.
func exceedsRepeatCap(length int, count value.Value, limit int) bool {
	n, ok := value.AsInt64(count)
	if !ok {
		// A repeat count beyond int64 exceeds any cap.
		return true
	}
	if n <= 0 || length == 0 {
		return false
	}
	if n > int64(limit) {
		return true
	}
	return int64(length)*n > int64(limit)
}

// An unreduced operator application is its own side-effecting unit: it may
// raise, so it cannot be split below the application.
func (b *BinaryOperation) ExtractSideEffects() []Expression {
	return []Expression{b}
}

func (b *BinaryOperation) Children() []Expression {
	return []Expression{b.left, b.right}
}

func (b *BinaryOperation) SetChild(i int, child Expression) {
	switch i {
	case 0:
		b.left = child
	case 1:
		b.right = child
	default:
		panic(fmt.Sprintf("ast: SetChild(%d) on a binary operation", i))
	}
}

// UnaryOperation applies a unary operator to one owned operand.
type UnaryOperation struct {
	OperationNode
	table     *operators.Table
	simulator operators.UnaryFunc
	operand   Expression
}

// NewUnaryOperation creates a unary operation. The operator tag must exist
// in the table.
func NewUnaryOperation(table *operators.Table, operator string, operand Expression, ref SourceRef) (*UnaryOperation, error) {
	sim, ok := table.Unary(operator)
	if !ok {
		return nil, fmt.Errorf("unknown unary operator %q", operator)
	}
	return &UnaryOperation{
		OperationNode: OperationNode{exprBase: exprBase{ref: ref}, operator: operator},
		table:         table,
		simulator:     sim,
		operand:       operand,
	}, nil
}

func (u *UnaryOperation) Kind() string { return "UnaryOperation" }

// Operand returns the single operand.
func (u *UnaryOperation) Operand() Expression { return u.operand }

// Compute follows the binary contract with a single operand and no size
// heuristics: unary operators do not expand result size combinatorially.
func (u *UnaryOperation) Compute(cc ConstraintContext) (Expression, error) {
	if operandValue, ok := u.operand.ConstantValue(); ok {
		return cc.CompileTimeComputation(u, func() (value.Value, error) {
			return u.simulator(operandValue)
		}, fmt.Sprintf("Operator '%s' with constant argument.", u.operator))
	}

	cc.OnExceptionRaiseExit(value.AnyError)

	cc.RemoveKnowledge(u.operand)

	cc.OnControlFlowEscape(u)

	return u, nil
}

func (u *UnaryOperation) ExtractSideEffects() []Expression {
	return []Expression{u}
}

func (u *UnaryOperation) Children() []Expression {
	return []Expression{u.operand}
}

func (u *UnaryOperation) SetChild(i int, child Expression) {
	if i != 0 {
		panic(fmt.Sprintf("ast: SetChild(%d) on a unary operation", i))
	}
	u.operand = child
}

// NotOperation is logical negation. It folds through the operand's own
// negation capability and derives its queries from the operand's
// boolean-context behavior.
type NotOperation struct {
	UnaryOperation
}

// NewNotOperation creates a logical-not operation.
func NewNotOperation(table *operators.Table, operand Expression, ref SourceRef) (*NotOperation, error) {
	base, err := NewUnaryOperation(table, "Not", operand, ref)
	if err != nil {
		return nil, err
	}
	return &NotOperation{UnaryOperation: *base}, nil
}

func (n *NotOperation) Kind() string { return "NotOperation" }

// Compute asks the operand how it behaves under logical negation. Variants
// without the capability get the generic unary constant-or-escape handling.
// The escape path must hand back the NOT node itself, not the embedded base,
// or the driver would install a replacement that has lost the negation
// queries.
func (n *NotOperation) Compute(cc ConstraintContext) (Expression, error) {
	if negator, ok := n.operand.(NegationComputer); ok {
		return negator.ComputeNegation(n, cc)
	}

	if operandValue, ok := n.operand.ConstantValue(); ok {
		return cc.CompileTimeComputation(n, func() (value.Value, error) {
			return n.simulator(operandValue)
		}, fmt.Sprintf("Operator '%s' with constant argument.", n.operator))
	}

	cc.OnExceptionRaiseExit(value.AnyError)

	cc.RemoveKnowledge(n.operand)

	cc.OnControlFlowEscape(n)

	return n, nil
}

// Negation raises exactly when taking the operand's truth value raises.
func (n *NotOperation) MayRaiseException() bool {
	return n.operand.MayRaiseExceptionBool()
}

func (n *NotOperation) MayRaiseExceptionBool() bool {
	return n.operand.MayRaiseExceptionBool()
}

func (n *NotOperation) TruthValue() Truth {
	return n.operand.TruthValue().Negate()
}

func (n *NotOperation) MayHaveSideEffects() bool {
	return n.operand.MayHaveSideEffects() || n.operand.MayHaveSideEffectsBool()
}

func (n *NotOperation) MayHaveSideEffectsBool() bool {
	return n.operand.MayHaveSideEffectsBool()
}

// ExtractSideEffects reduces through literal container constructions: the
// truthiness of a freshly built container depends only on its length, so
// only the constituent element effects remain. Otherwise the NOT itself is
// the irreducible side-effecting unit.
func (n *NotOperation) ExtractSideEffects() []Expression {
	if _, ok := n.operand.(LiteralConstruction); ok {
		return n.operand.ExtractSideEffects()
	}
	return []Expression{n}
}

// InPlaceBinaryOperation is an augmented operator application ("add and
// assign"). It is only ever folded by lowering to its plain equivalent;
// simulating it directly on a constant left operand would mutate a proven
// constant and is forbidden.
type InPlaceBinaryOperation struct {
	BinaryOperation
}

// NewInPlaceBinaryOperation creates an in-place binary operation. The
// operator tag must be augmented and exist in the table.
func NewInPlaceBinaryOperation(table *operators.Table, operator string, left, right Expression, ref SourceRef) (*InPlaceBinaryOperation, error) {
	if !operators.IsAugmented(operator) {
		return nil, fmt.Errorf("operator %q is not augmented", operator)
	}
	sim, ok := table.Binary(operator)
	if !ok {
		return nil, fmt.Errorf("unknown in-place operator %q", operator)
	}
	return &InPlaceBinaryOperation{
		BinaryOperation: BinaryOperation{
			OperationNode: OperationNode{exprBase: exprBase{ref: ref}, operator: operator},
			table:         table,
			simulator:     sim,
			left:          left,
			right:         right,
			limits:        DefaultFoldLimits,
		},
	}, nil
}

func (i *InPlaceBinaryOperation) Kind() string { return "InPlaceBinaryOperation" }

func (i *InPlaceBinaryOperation) ExtractSideEffects() []Expression {
	return []Expression{i}
}

// Compute lowers the operation to its plain equivalent when the left
// operand is a compile-time constant, then computes the lowered node.
// A mutable constant as left operand means an earlier pass already made an
// unsound decision; that is a fatal defect, not a user error.
func (i *InPlaceBinaryOperation) Compute(cc ConstraintContext) (Expression, error) {
	if leftValue, ok := i.left.ConstantValue(); ok {
		if value.IsMutable(leftValue) {
			return nil, NewInvariantError(i, "in-place %s applied to mutable compile time constant %s", i.operator, value.Repr(leftValue))
		}

		plain, _ := operators.PlainTag(i.operator)
		lowered, err := NewBinaryOperation(i.table, plain, i.left, i.right, i.ref)
		if err != nil {
			return nil, NewInvariantError(i, "lowering %q: %v", i.operator, err)
		}
		lowered.SetFoldLimits(i.limits)

		cc.SignalChange("new_expression", i.ref,
			"Lowered in-place binary operation of compile time constant to binary operation.")

		return lowered.Compute(cc)
	}

	cc.OnExceptionRaiseExit(value.AnyError)

	cc.RemoveKnowledge(i.left)
	cc.RemoveKnowledge(i.right)

	cc.OnControlFlowEscape(i)

	return i, nil
}
