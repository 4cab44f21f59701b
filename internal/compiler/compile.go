// Package compiler turns CUE expression documents into tree nodes ready for
// optimization. A document is a struct with an "expr" field holding nested
// node structs, each tagged with a "kind":
//
//	expr: {
//		kind: "binop"
//		op:   "Add"
//		left:  {kind: "const", value: 2}
//		right: {kind: "name", name: "x"}
//	}
//
// Uses the CUE SDK's Go API directly (not CLI subprocess).
package compiler

import (
	"fmt"
	"math/big"

	"cuelang.org/go/cue"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/operators"
	"github.com/viraptor/basalt/internal/value"
)

// Compiler builds tree nodes against one operator table.
type Compiler struct {
	table *operators.Table
}

// New creates a compiler using the given operator table.
func New(table *operators.Table) *Compiler {
	return &Compiler{table: table}
}

// CompileDocument compiles a whole document: the "expr" field is required
// and holds the root expression.
func (c *Compiler) CompileDocument(v cue.Value) (ast.Expression, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	exprVal := v.LookupPath(cue.ParsePath("expr"))
	if !exprVal.Exists() {
		return nil, &CompileError{
			Field:   "expr",
			Message: "expr is required",
			Pos:     v.Pos(),
		}
	}

	return c.CompileExpression(exprVal)
}

// CompileExpression compiles one node struct, recursing into operands.
func (c *Compiler) CompileExpression(v cue.Value) (ast.Expression, error) {
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	kind, err := stringField(v, "kind")
	if err != nil {
		return nil, err
	}

	ref := sourceRef(v)

	switch kind {
	case "const":
		val, err := c.compileConstant(v.LookupPath(cue.ParsePath("value")))
		if err != nil {
			return nil, err
		}
		return ast.NewConstantRef(val, ref), nil

	case "name":
		name, err := stringField(v, "name")
		if err != nil {
			return nil, err
		}
		return ast.NewVariableRef(name, ref), nil

	case "call":
		name, err := stringField(v, "name")
		if err != nil {
			return nil, err
		}
		args, err := c.compileList(v, "args")
		if err != nil {
			return nil, err
		}
		return ast.NewCallExpression(name, args, ref), nil

	case "list":
		elems, err := c.compileList(v, "elems")
		if err != nil {
			return nil, err
		}
		return ast.NewMakeList(elems, ref), nil

	case "tuple":
		elems, err := c.compileList(v, "elems")
		if err != nil {
			return nil, err
		}
		return ast.NewMakeTuple(elems, ref), nil

	case "dict":
		entries, err := c.compileEntries(v)
		if err != nil {
			return nil, err
		}
		return ast.NewMakeDict(entries, ref), nil

	case "binop", "inplace":
		op, err := stringField(v, "op")
		if err != nil {
			return nil, err
		}
		left, err := c.compileChild(v, "left")
		if err != nil {
			return nil, err
		}
		right, err := c.compileChild(v, "right")
		if err != nil {
			return nil, err
		}
		var node ast.Expression
		if kind == "inplace" {
			node, err = ast.NewInPlaceBinaryOperation(c.table, operators.AugmentedTag(op), left, right, ref)
		} else {
			node, err = ast.NewBinaryOperation(c.table, op, left, right, ref)
		}
		if err != nil {
			return nil, &CompileError{Field: "op", Message: err.Error(), Pos: v.Pos()}
		}
		return node, nil

	case "unop":
		op, err := stringField(v, "op")
		if err != nil {
			return nil, err
		}
		operand, err := c.compileChild(v, "operand")
		if err != nil {
			return nil, err
		}
		if op == "Not" {
			return c.newNot(operand, ref, v)
		}
		node, err := ast.NewUnaryOperation(c.table, op, operand, ref)
		if err != nil {
			return nil, &CompileError{Field: "op", Message: err.Error(), Pos: v.Pos()}
		}
		return node, nil

	case "not":
		operand, err := c.compileChild(v, "operand")
		if err != nil {
			return nil, err
		}
		return c.newNot(operand, ref, v)

	default:
		return nil, &CompileError{
			Field:   "kind",
			Message: fmt.Sprintf("unknown expression kind %q", kind),
			Pos:     v.Pos(),
		}
	}
}

func (c *Compiler) newNot(operand ast.Expression, ref ast.SourceRef, v cue.Value) (ast.Expression, error) {
	node, err := ast.NewNotOperation(c.table, operand, ref)
	if err != nil {
		return nil, &CompileError{Field: "op", Message: err.Error(), Pos: v.Pos()}
	}
	return node, nil
}

func (c *Compiler) compileChild(v cue.Value, field string) (ast.Expression, error) {
	child := v.LookupPath(cue.ParsePath(field))
	if !child.Exists() {
		return nil, &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	return c.CompileExpression(child)
}

func (c *Compiler) compileList(v cue.Value, field string) ([]ast.Expression, error) {
	listVal := v.LookupPath(cue.ParsePath(field))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []ast.Expression
	for iter.Next() {
		expr, err := c.CompileExpression(iter.Value())
		if err != nil {
			return nil, err
		}
		out = append(out, expr)
	}
	return out, nil
}

func (c *Compiler) compileEntries(v cue.Value) ([]ast.DictEntry, error) {
	listVal := v.LookupPath(cue.ParsePath("entries"))
	if !listVal.Exists() {
		return nil, nil
	}

	iter, err := listVal.List()
	if err != nil {
		return nil, formatCUEError(err)
	}

	var out []ast.DictEntry
	for iter.Next() {
		entry := iter.Value()
		key, err := c.compileChild(entry, "key")
		if err != nil {
			return nil, err
		}
		val, err := c.compileChild(entry, "value")
		if err != nil {
			return nil, err
		}
		out = append(out, ast.DictEntry{Key: key, Value: val})
	}
	return out, nil
}

// compileConstant maps a CUE scalar or list to a constant value. A missing
// value field means None.
func (c *Compiler) compileConstant(v cue.Value) (value.Value, error) {
	if !v.Exists() {
		return value.None{}, nil
	}
	if err := v.Err(); err != nil {
		return nil, formatCUEError(err)
	}

	switch v.Kind() {
	case cue.NullKind:
		return value.None{}, nil

	case cue.BoolKind:
		b, err := v.Bool()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Bool(b), nil

	case cue.IntKind:
		n, err := v.Int(new(big.Int))
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.IntFromBig(n), nil

	case cue.FloatKind, cue.NumberKind:
		f, err := v.Float64()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Float(f), nil

	case cue.StringKind:
		s, err := v.String()
		if err != nil {
			return nil, formatCUEError(err)
		}
		return value.Str(s), nil

	case cue.ListKind:
		iter, err := v.List()
		if err != nil {
			return nil, formatCUEError(err)
		}
		var elems value.List
		for iter.Next() {
			elem, err := c.compileConstant(iter.Value())
			if err != nil {
				return nil, err
			}
			elems = append(elems, elem)
		}
		return elems, nil

	default:
		return nil, &CompileError{
			Field:   "value",
			Message: fmt.Sprintf("unsupported constant kind %s", v.Kind()),
			Pos:     v.Pos(),
		}
	}
}

func sourceRef(v cue.Value) ast.SourceRef {
	pos := v.Pos()
	if !pos.IsValid() {
		return ast.SourceRef{}
	}
	return ast.SourceRef{
		File:   pos.Filename(),
		Line:   pos.Line(),
		Column: pos.Column(),
	}
}

func stringField(v cue.Value, field string) (string, error) {
	fieldVal := v.LookupPath(cue.ParsePath(field))
	if !fieldVal.Exists() {
		return "", &CompileError{
			Field:   field,
			Message: field + " is required",
			Pos:     v.Pos(),
		}
	}
	s, err := fieldVal.String()
	if err != nil {
		return "", formatCUEError(err)
	}
	return s, nil
}
