package ast_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/value"
)

func TestCanonicalDumpShapes(t *testing.T) {
	tests := []struct {
		name string
		expr ast.Expression
		want string
	}{
		{
			name: "constant",
			expr: constant(t, value.NewInt(5)),
			want: `{"kind":"ConstantRef","value":"5"}`,
		},
		{
			name: "string constant",
			expr: constant(t, value.Str("a<b")),
			want: `{"kind":"ConstantRef","value":"'a<b'"}`,
		},
		{
			name: "variable",
			expr: ast.NewVariableRef("x", testRef),
			want: `{"kind":"VariableRef","name":"x"}`,
		},
		{
			name: "raise",
			expr: ast.NewRaiseExpression(value.ZeroDivisionError, "division by zero", testRef),
			want: `{"kind":"RaiseExpression","error":{"kind":"ZeroDivisionError","message":"division by zero"}}`,
		},
		{
			name: "binary",
			expr: binary(t, "Add", ast.NewVariableRef("x", testRef), constant(t, value.NewInt(1))),
			want: `{"kind":"BinaryOperation","operator":"Add","children":[{"kind":"VariableRef","name":"x"},{"kind":"ConstantRef","value":"1"}]}`,
		},
		{
			name: "not",
			expr: notOf(t, ast.NewVariableRef("x", testRef)),
			want: `{"kind":"NotOperation","operator":"Not","children":[{"kind":"VariableRef","name":"x"}]}`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dump, err := ast.CanonicalDump(tc.expr)
			require.NoError(t, err)
			assert.Equal(t, tc.want, string(dump))
		})
	}
}

func TestCanonicalDumpDeterministic(t *testing.T) {
	expr := binary(t, "Mult",
		ast.NewMakeList([]ast.Expression{constant(t, value.NewInt(1))}, testRef),
		ast.NewVariableRef("n", testRef))

	first, err := ast.CanonicalDump(expr)
	require.NoError(t, err)
	second, err := ast.CanonicalDump(expr)
	require.NoError(t, err)
	assert.Equal(t, first, second)
	assert.NotContains(t, string(first), "\n")
}

func TestTreeHashDistinguishesTrees(t *testing.T) {
	a, err := ast.TreeHash(constant(t, value.NewInt(1)))
	require.NoError(t, err)
	b, err := ast.TreeHash(constant(t, value.NewInt(2)))
	require.NoError(t, err)

	assert.Len(t, a, 64)
	assert.NotEqual(t, a, b)

	again, err := ast.TreeHash(constant(t, value.NewInt(1)))
	require.NoError(t, err)
	assert.Equal(t, a, again)
}
