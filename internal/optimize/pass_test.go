package optimize_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/operators"
	"github.com/viraptor/basalt/internal/optimize"
	"github.com/viraptor/basalt/internal/value"
)

var testRef = ast.SourceRef{File: "test.bas", Line: 1, Column: 1}

func intConst(n int64) *ast.ConstantRef {
	return ast.NewConstantRef(value.NewInt(n), testRef)
}

func mustBinary(t *testing.T, op string, left, right ast.Expression) *ast.BinaryOperation {
	t.Helper()
	node, err := ast.NewBinaryOperation(operators.Default(), op, left, right, testRef)
	require.NoError(t, err)
	return node
}

func TestTreeFoldsNestedExpression(t *testing.T) {
	// (2 + 3) * 4
	root := mustBinary(t, "Mult", mustBinary(t, "Add", intConst(2), intConst(3)), intConst(4))

	cc := optimize.NewCollection()
	result, err := optimize.Tree(cc, root)
	require.NoError(t, err)

	folded, ok := result.(*ast.ConstantRef)
	require.True(t, ok, "expected a constant, got %s", result.Kind())
	v, _ := folded.ConstantValue()
	assert.True(t, value.Equal(value.NewInt(20), v))
}

func TestTreeReachesGlobalFixpoint(t *testing.T) {
	root := mustBinary(t, "Add", mustBinary(t, "Mult", intConst(6), intConst(7)), intConst(8))

	cc := optimize.NewCollection()
	result, err := optimize.Tree(cc, root)
	require.NoError(t, err)
	signals := len(cc.Signals())

	// A second full run over the reduced tree changes nothing.
	again, err := optimize.Tree(cc, result)
	require.NoError(t, err)
	assert.Same(t, result, again)
	assert.Len(t, cc.Signals(), signals)
}

func TestTreeStopsAtUnknownOperands(t *testing.T) {
	// (1 + 2) + x reduces the inner fold, keeps the outer application.
	root := mustBinary(t, "Add",
		mustBinary(t, "Add", intConst(1), intConst(2)),
		ast.NewVariableRef("x", testRef))

	cc := optimize.NewCollection()
	result, err := optimize.Tree(cc, root)
	require.NoError(t, err)

	outer, ok := result.(*ast.BinaryOperation)
	require.True(t, ok, "expected the outer operation to survive, got %s", result.Kind())

	left, ok := outer.Left().(*ast.ConstantRef)
	require.True(t, ok, "inner fold must have happened")
	v, _ := left.ConstantValue()
	assert.True(t, value.Equal(value.NewInt(3), v))

	require.Len(t, cc.Signals(), 1)
	assert.Equal(t, "new_constant", cc.Signals()[0].Tags)
}

func TestTreeLowersInPlaceThenFolds(t *testing.T) {
	node, err := ast.NewInPlaceBinaryOperation(operators.Default(), "IAdd",
		intConst(2), intConst(3), testRef)
	require.NoError(t, err)

	cc := optimize.NewCollection()
	result, err := optimize.Tree(cc, node)
	require.NoError(t, err)

	folded, ok := result.(*ast.ConstantRef)
	require.True(t, ok)
	v, _ := folded.ConstantValue()
	assert.True(t, value.Equal(value.NewInt(5), v))

	var lowerings int
	for _, c := range cc.Signals() {
		if c.Tags == "new_expression" {
			lowerings++
		}
	}
	assert.Equal(t, 1, lowerings, "lowering must signal exactly once")
}

func TestTreePropagatesInvariantError(t *testing.T) {
	node, err := ast.NewInPlaceBinaryOperation(operators.Default(), "IAdd",
		ast.NewConstantRef(value.List{value.NewInt(1)}, testRef), intConst(2), testRef)
	require.NoError(t, err)

	cc := optimize.NewCollection()
	_, err = optimize.Tree(cc, node)
	require.Error(t, err)
	assert.True(t, ast.IsInvariantError(err))
}

func TestTreeFoldsProvableRaise(t *testing.T) {
	// 1 + 2/0 becomes an addition with a provably raising operand. The
	// raise replacement survives; the outer fold cannot proceed on it.
	root := mustBinary(t, "Add", intConst(1), mustBinary(t, "Div", intConst(2), intConst(0)))

	cc := optimize.NewCollection()
	result, err := optimize.Tree(cc, root)
	require.NoError(t, err)

	outer, ok := result.(*ast.BinaryOperation)
	require.True(t, ok)
	raise, ok := outer.Right().(*ast.RaiseExpression)
	require.True(t, ok)
	assert.Equal(t, value.ZeroDivisionError, raise.ErrorKind())
}
