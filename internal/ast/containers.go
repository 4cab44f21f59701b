package ast

import (
	"github.com/viraptor/basalt/internal/value"
)

// MakeList is a literal list construction.
type MakeList struct {
	exprBase
	elements []Expression
}

// NewMakeList creates a literal list construction.
func NewMakeList(elements []Expression, ref SourceRef) *MakeList {
	return &MakeList{exprBase: exprBase{ref: ref}, elements: elements}
}

func (m *MakeList) Kind() string { return "MakeList" }

func (m *MakeList) literalConstruction() {}

func (m *MakeList) IsCompileTimeConstant() bool {
	return elementsConstant(m.elements)
}

func (m *MakeList) ConstantValue() (value.Value, bool) {
	vals, ok := elementValues(m.elements)
	if !ok {
		return nil, false
	}
	return value.List(vals), true
}

// Compute replaces the construction with its constant value once every
// element is proven constant.
func (m *MakeList) Compute(cc ConstraintContext) (Expression, error) {
	if val, ok := m.ConstantValue(); ok {
		return cc.CompileTimeComputation(m, func() (value.Value, error) {
			return val, nil
		}, "List creation with constant arguments.")
	}
	return m, nil
}

// A fresh container is truthy exactly when it has elements, known before any
// element value is.
func (m *MakeList) TruthValue() Truth { return TruthOf(len(m.elements) > 0) }

func (m *MakeList) MayHaveSideEffects() bool { return anyElementSideEffects(m.elements) }

func (m *MakeList) MayHaveSideEffectsBool() bool { return false }

func (m *MakeList) MayRaiseException() bool { return anyElementMayRaise(m.elements) }

func (m *MakeList) MayRaiseExceptionBool() bool { return false }

func (m *MakeList) IterationLength() (int, bool) { return len(m.elements), true }

func (m *MakeList) ExtractSideEffects() []Expression { return elementSideEffects(m.elements) }

func (m *MakeList) Children() []Expression {
	children := make([]Expression, len(m.elements))
	copy(children, m.elements)
	return children
}

func (m *MakeList) SetChild(i int, child Expression) { m.elements[i] = child }

// MakeTuple is a literal tuple construction.
type MakeTuple struct {
	exprBase
	elements []Expression
}

// NewMakeTuple creates a literal tuple construction.
func NewMakeTuple(elements []Expression, ref SourceRef) *MakeTuple {
	return &MakeTuple{exprBase: exprBase{ref: ref}, elements: elements}
}

func (m *MakeTuple) Kind() string { return "MakeTuple" }

func (m *MakeTuple) literalConstruction() {}

func (m *MakeTuple) IsCompileTimeConstant() bool {
	return elementsConstant(m.elements)
}

func (m *MakeTuple) ConstantValue() (value.Value, bool) {
	vals, ok := elementValues(m.elements)
	if !ok {
		return nil, false
	}
	return value.Tuple(vals), true
}

func (m *MakeTuple) Compute(cc ConstraintContext) (Expression, error) {
	if val, ok := m.ConstantValue(); ok {
		return cc.CompileTimeComputation(m, func() (value.Value, error) {
			return val, nil
		}, "Tuple creation with constant arguments.")
	}
	return m, nil
}

func (m *MakeTuple) TruthValue() Truth { return TruthOf(len(m.elements) > 0) }

func (m *MakeTuple) MayHaveSideEffects() bool { return anyElementSideEffects(m.elements) }

func (m *MakeTuple) MayHaveSideEffectsBool() bool { return false }

func (m *MakeTuple) MayRaiseException() bool { return anyElementMayRaise(m.elements) }

func (m *MakeTuple) MayRaiseExceptionBool() bool { return false }

func (m *MakeTuple) IterationLength() (int, bool) { return len(m.elements), true }

func (m *MakeTuple) ExtractSideEffects() []Expression { return elementSideEffects(m.elements) }

func (m *MakeTuple) Children() []Expression {
	children := make([]Expression, len(m.elements))
	copy(children, m.elements)
	return children
}

func (m *MakeTuple) SetChild(i int, child Expression) { m.elements[i] = child }

// DictEntry is one key/value pair of a literal dict construction.
type DictEntry struct {
	Key   Expression
	Value Expression
}

// MakeDict is a literal mapping construction.
type MakeDict struct {
	exprBase
	entries []DictEntry
}

// NewMakeDict creates a literal dict construction.
func NewMakeDict(entries []DictEntry, ref SourceRef) *MakeDict {
	return &MakeDict{exprBase: exprBase{ref: ref}, entries: entries}
}

func (m *MakeDict) Kind() string { return "MakeDict" }

func (m *MakeDict) literalConstruction() {}

func (m *MakeDict) IsCompileTimeConstant() bool {
	for _, e := range m.entries {
		if !e.Key.IsCompileTimeConstant() || !e.Value.IsCompileTimeConstant() {
			return false
		}
	}
	return true
}

func (m *MakeDict) ConstantValue() (value.Value, bool) {
	out := make(value.Dict, 0, len(m.entries))
	for _, e := range m.entries {
		k, kok := e.Key.ConstantValue()
		v, vok := e.Value.ConstantValue()
		if !kok || !vok {
			return nil, false
		}
		out = append(out, value.Pair{Key: k, Val: v})
	}
	return out, true
}

// Compute folds a fully constant dict construction. An unhashable key is the
// construction's provable runtime exception, not a fold failure.
func (m *MakeDict) Compute(cc ConstraintContext) (Expression, error) {
	if !m.IsCompileTimeConstant() {
		return m, nil
	}
	return cc.CompileTimeComputation(m, func() (value.Value, error) {
		out := make(value.Dict, 0, len(m.entries))
		for _, e := range m.entries {
			k, _ := e.Key.ConstantValue()
			v, _ := e.Value.ConstantValue()
			if value.IsMutable(k) {
				return nil, value.NewTypeError("unhashable type: '%s'", value.TypeName(k))
			}
			out = append(out, value.Pair{Key: k, Val: v})
		}
		return out, nil
	}, "Dict creation with constant arguments.")
}

func (m *MakeDict) TruthValue() Truth { return TruthOf(len(m.entries) > 0) }

func (m *MakeDict) MayHaveSideEffects() bool {
	for _, e := range m.entries {
		if e.Key.MayHaveSideEffects() || e.Value.MayHaveSideEffects() {
			return true
		}
	}
	return false
}

func (m *MakeDict) MayHaveSideEffectsBool() bool { return false }

func (m *MakeDict) MayRaiseException() bool {
	for _, e := range m.entries {
		if e.Key.MayRaiseException() || e.Value.MayRaiseException() {
			return true
		}
	}
	return false
}

func (m *MakeDict) MayRaiseExceptionBool() bool { return false }

func (m *MakeDict) IterationLength() (int, bool) { return len(m.entries), true }

func (m *MakeDict) ExtractSideEffects() []Expression {
	var effects []Expression
	for _, e := range m.entries {
		effects = append(effects, e.Key.ExtractSideEffects()...)
		effects = append(effects, e.Value.ExtractSideEffects()...)
	}
	return effects
}

func (m *MakeDict) Children() []Expression {
	children := make([]Expression, 0, len(m.entries)*2)
	for _, e := range m.entries {
		children = append(children, e.Key, e.Value)
	}
	return children
}

func (m *MakeDict) SetChild(i int, child Expression) {
	if i%2 == 0 {
		m.entries[i/2].Key = child
	} else {
		m.entries[i/2].Value = child
	}
}

func elementsConstant(elements []Expression) bool {
	for _, e := range elements {
		if !e.IsCompileTimeConstant() {
			return false
		}
	}
	return true
}

func elementValues(elements []Expression) ([]value.Value, bool) {
	vals := make([]value.Value, len(elements))
	for i, e := range elements {
		v, ok := e.ConstantValue()
		if !ok {
			return nil, false
		}
		vals[i] = v
	}
	return vals, true
}

func anyElementSideEffects(elements []Expression) bool {
	for _, e := range elements {
		if e.MayHaveSideEffects() {
			return true
		}
	}
	return false
}

func anyElementMayRaise(elements []Expression) bool {
	for _, e := range elements {
		if e.MayRaiseException() {
			return true
		}
	}
	return false
}

func elementSideEffects(elements []Expression) []Expression {
	var effects []Expression
	for _, e := range elements {
		effects = append(effects, e.ExtractSideEffects()...)
	}
	return effects
}
