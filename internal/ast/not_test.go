package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/operators"
	"github.com/viraptor/basalt/internal/optimize"
	"github.com/viraptor/basalt/internal/value"
)

func notOf(t *testing.T, operand ast.Expression) *ast.NotOperation {
	t.Helper()
	node, err := ast.NewNotOperation(operators.Default(), operand, testRef)
	require.NoError(t, err)
	return node
}

func TestNotFoldsConstantOperand(t *testing.T) {
	cc := optimize.NewCollection()
	node := notOf(t, constant(t, value.NewInt(0)))

	replaced, err := node.Compute(cc)
	require.NoError(t, err)
	requireConstant(t, replaced, value.Bool(true))

	require.Len(t, cc.Signals(), 1)
	assert.Equal(t, "Operator 'Not' with constant argument.", cc.Signals()[0].Message)
	// Negating a known truth value cannot raise.
	assert.Empty(t, cc.ExceptionExits())
}

func TestNotTruthFollowsOperand(t *testing.T) {
	nonEmpty := ast.NewMakeList([]ast.Expression{ast.NewVariableRef("a", testRef)}, testRef)
	empty := ast.NewMakeList(nil, testRef)
	unknown := ast.NewVariableRef("a", testRef)

	assert.Equal(t, ast.TruthFalse, notOf(t, nonEmpty).TruthValue())
	assert.Equal(t, ast.TruthTrue, notOf(t, empty).TruthValue())
	assert.Equal(t, ast.TruthUnknown, notOf(t, unknown).TruthValue())
}

func TestNotRaiseFollowsOperandBoolContext(t *testing.T) {
	// A fresh list's truth check cannot raise even when element
	// evaluation could.
	listOfCall := ast.NewMakeList([]ast.Expression{
		ast.NewCallExpression("f", nil, testRef),
	}, testRef)
	node := notOf(t, listOfCall)

	assert.False(t, node.MayRaiseException())
	assert.False(t, node.MayRaiseExceptionBool())

	risky := notOf(t, ast.NewVariableRef("a", testRef))
	assert.True(t, risky.MayRaiseException())
}

func TestNotReducesSideEffectsThroughLiteralConstruction(t *testing.T) {
	call := ast.NewCallExpression("f", nil, testRef)
	node := notOf(t, ast.NewMakeList([]ast.Expression{call}, testRef))

	effects := node.ExtractSideEffects()
	require.Len(t, effects, 1)
	assert.Same(t, ast.Expression(call), effects[0])
}

func TestNotKeepsItselfAsEffectOtherwise(t *testing.T) {
	node := notOf(t, ast.NewVariableRef("a", testRef))

	effects := node.ExtractSideEffects()
	require.Len(t, effects, 1)
	assert.Same(t, ast.Expression(node), effects[0])
}

func TestNotNonConstantEscapes(t *testing.T) {
	cc := optimize.NewCollection()
	node := notOf(t, ast.NewVariableRef("a", testRef))

	replaced, err := node.Compute(cc)
	require.NoError(t, err)
	assert.Same(t, ast.Expression(node), replaced)
	require.Len(t, cc.Escapes(), 1)
}

func TestNotKeepsNegationQueriesAfterEscape(t *testing.T) {
	// The escape path must return the NOT node itself. Handing back the
	// embedded unary base would strip the truth negation and the
	// boolean-context raise derivation from later passes.
	cc := optimize.NewCollection()
	operand := ast.NewMakeList([]ast.Expression{ast.NewVariableRef("a", testRef)}, testRef)
	node := notOf(t, operand)

	replaced, err := node.Compute(cc)
	require.NoError(t, err)
	require.IsType(t, &ast.NotOperation{}, replaced)
	assert.Equal(t, ast.TruthFalse, replaced.(*ast.NotOperation).TruthValue())
	assert.False(t, replaced.(*ast.NotOperation).MayRaiseExceptionBool())
}
