package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/optimize"
	"github.com/viraptor/basalt/internal/value"
)

func TestMakeListFoldsWhenAllConstant(t *testing.T) {
	cc := optimize.NewCollection()
	node := ast.NewMakeList([]ast.Expression{
		constant(t, value.NewInt(1)),
		constant(t, value.Str("a")),
	}, testRef)

	replaced, err := node.Compute(cc)
	require.NoError(t, err)
	requireConstant(t, replaced, value.List{value.NewInt(1), value.Str("a")})
	require.Len(t, cc.Signals(), 1)
	assert.Equal(t, "List creation with constant arguments.", cc.Signals()[0].Message)
}

func TestMakeListStaysWithUnknownElement(t *testing.T) {
	cc := optimize.NewCollection()
	node := ast.NewMakeList([]ast.Expression{
		constant(t, value.NewInt(1)),
		ast.NewVariableRef("a", testRef),
	}, testRef)

	replaced, err := node.Compute(cc)
	require.NoError(t, err)
	assert.Same(t, ast.Expression(node), replaced)
	assert.Empty(t, cc.Signals())

	// The length is known regardless of the element values.
	length, ok := node.IterationLength()
	require.True(t, ok)
	assert.Equal(t, 2, length)
	assert.Equal(t, ast.TruthTrue, node.TruthValue())
}

func TestMakeTupleFolds(t *testing.T) {
	cc := optimize.NewCollection()
	node := ast.NewMakeTuple([]ast.Expression{constant(t, value.NewInt(7))}, testRef)

	replaced, err := node.Compute(cc)
	require.NoError(t, err)
	requireConstant(t, replaced, value.Tuple{value.NewInt(7)})
}

func TestMakeDictFolds(t *testing.T) {
	cc := optimize.NewCollection()
	node := ast.NewMakeDict([]ast.DictEntry{
		{Key: constant(t, value.Str("a")), Value: constant(t, value.NewInt(1))},
	}, testRef)

	replaced, err := node.Compute(cc)
	require.NoError(t, err)
	requireConstant(t, replaced, value.Dict{{Key: value.Str("a"), Val: value.NewInt(1)}})
}

func TestMakeDictUnhashableKeyRaises(t *testing.T) {
	cc := optimize.NewCollection()
	node := ast.NewMakeDict([]ast.DictEntry{
		{Key: constant(t, value.List{}), Value: constant(t, value.NewInt(1))},
	}, testRef)

	replaced, err := node.Compute(cc)
	require.NoError(t, err)

	raise, ok := replaced.(*ast.RaiseExpression)
	require.True(t, ok, "expected a raise, got %s", replaced.Kind())
	assert.Equal(t, value.TypeError, raise.ErrorKind())
	assert.Equal(t, "unhashable type: 'list'", raise.Message())
}

func TestContainerChildReplacement(t *testing.T) {
	call := ast.NewCallExpression("f", nil, testRef)
	node := ast.NewMakeDict([]ast.DictEntry{
		{Key: constant(t, value.Str("a")), Value: call},
	}, testRef)

	children := node.Children()
	require.Len(t, children, 2)
	assert.Same(t, ast.Expression(call), children[1])

	node.SetChild(1, constant(t, value.NewInt(9)))
	v, ok := node.ConstantValue()
	require.True(t, ok)
	assert.True(t, value.Equal(value.Dict{{Key: value.Str("a"), Val: value.NewInt(9)}}, v))
}
