package ast

// VariableRef is a reference to a name whose value is not locally evident.
// It never proves a constant; a lookup may raise if the name is unbound.
type VariableRef struct {
	exprBase
	name string
}

// NewVariableRef creates a variable reference.
func NewVariableRef(name string, ref SourceRef) *VariableRef {
	return &VariableRef{exprBase: exprBase{ref: ref}, name: name}
}

func (v *VariableRef) Kind() string { return "VariableRef" }

// Name returns the referenced name.
func (v *VariableRef) Name() string { return v.name }

func (v *VariableRef) Compute(cc ConstraintContext) (Expression, error) {
	return v, nil
}

// Reading a name has no effects of its own.
func (v *VariableRef) MayHaveSideEffects() bool { return false }

func (v *VariableRef) MayHaveSideEffectsBool() bool { return false }

func (v *VariableRef) ExtractSideEffects() []Expression { return nil }
