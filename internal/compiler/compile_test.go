package compiler

import (
	"testing"

	"cuelang.org/go/cue/cuecontext"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/operators"
	"github.com/viraptor/basalt/internal/value"
)

func compileDoc(t *testing.T, src string) (ast.Expression, error) {
	t.Helper()
	v := cuecontext.New().CompileString(src)
	return New(operators.Default()).CompileDocument(v)
}

func mustCompile(t *testing.T, src string) ast.Expression {
	t.Helper()
	expr, err := compileDoc(t, src)
	require.NoError(t, err)
	return expr
}

func TestCompileConstant(t *testing.T) {
	tests := []struct {
		name string
		src  string
		want value.Value
	}{
		{"int", `expr: {kind: "const", value: 42}`, value.NewInt(42)},
		{"negative int", `expr: {kind: "const", value: -3}`, value.NewInt(-3)},
		{"float", `expr: {kind: "const", value: 2.5}`, value.Float(2.5)},
		{"string", `expr: {kind: "const", value: "hi"}`, value.Str("hi")},
		{"bool", `expr: {kind: "const", value: true}`, value.Bool(true)},
		{"null", `expr: {kind: "const", value: null}`, value.None{}},
		{"none when absent", `expr: {kind: "const"}`, value.None{}},
		{"list", `expr: {kind: "const", value: [1, 2]}`, value.List{value.NewInt(1), value.NewInt(2)}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			expr := mustCompile(t, tc.src)
			ref, ok := expr.(*ast.ConstantRef)
			require.True(t, ok)
			got, _ := ref.ConstantValue()
			assert.True(t, value.Equal(tc.want, got), "expected %s, got %s",
				value.Repr(tc.want), value.Repr(got))
		})
	}
}

func TestCompileBinary(t *testing.T) {
	expr := mustCompile(t, `expr: {
		kind: "binop"
		op:   "Add"
		left:  {kind: "const", value: 2}
		right: {kind: "name", name: "x"}
	}`)

	node, ok := expr.(*ast.BinaryOperation)
	require.True(t, ok)
	assert.Equal(t, "Add", node.Operator())

	_, ok = node.Left().(*ast.ConstantRef)
	assert.True(t, ok)
	name, ok := node.Right().(*ast.VariableRef)
	require.True(t, ok)
	assert.Equal(t, "x", name.Name())
}

func TestCompileInPlace(t *testing.T) {
	expr := mustCompile(t, `expr: {
		kind: "inplace"
		op:   "Add"
		left:  {kind: "name", name: "x"}
		right: {kind: "const", value: 1}
	}`)

	node, ok := expr.(*ast.InPlaceBinaryOperation)
	require.True(t, ok)
	assert.Equal(t, "IAdd", node.Operator())
}

func TestCompileNot(t *testing.T) {
	expr := mustCompile(t, `expr: {
		kind: "not"
		operand: {kind: "name", name: "x"}
	}`)
	_, ok := expr.(*ast.NotOperation)
	assert.True(t, ok)

	// "unop" with op "Not" builds the same node kind.
	expr = mustCompile(t, `expr: {
		kind: "unop"
		op:   "Not"
		operand: {kind: "const", value: 0}
	}`)
	_, ok = expr.(*ast.NotOperation)
	assert.True(t, ok)
}

func TestCompileContainers(t *testing.T) {
	expr := mustCompile(t, `expr: {
		kind: "dict"
		entries: [
			{key: {kind: "const", value: "a"}, value: {kind: "call", name: "f", args: []}},
		]
	}`)

	node, ok := expr.(*ast.MakeDict)
	require.True(t, ok)
	require.Len(t, node.Children(), 2)

	expr = mustCompile(t, `expr: {
		kind: "tuple"
		elems: [{kind: "const", value: 1}]
	}`)
	_, ok = expr.(*ast.MakeTuple)
	assert.True(t, ok)
}

func TestCompileErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{"missing expr", `other: 1`},
		{"missing kind", `expr: {op: "Add"}`},
		{"unknown kind", `expr: {kind: "frob"}`},
		{"unknown operator", `expr: {
			kind: "binop"
			op:   "Frobnicate"
			left:  {kind: "const", value: 1}
			right: {kind: "const", value: 2}
		}`},
		{"missing operand", `expr: {kind: "unop", op: "USub"}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := compileDoc(t, tc.src)
			require.Error(t, err)
			var cerr *CompileError
			assert.ErrorAs(t, err, &cerr)
		})
	}
}
