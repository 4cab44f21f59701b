package operators

import (
	"math/big"

	"github.com/viraptor/basalt/internal/value"
)

func typeErrorUnary(symbol string, operand value.Value) error {
	return value.NewTypeError("bad operand type for unary %s: '%s'", symbol, value.TypeName(operand))
}

func simulateUSub(operand value.Value) (value.Value, error) {
	switch val := operand.(type) {
	case value.Float:
		return -val, nil
	default:
		if b, ok := asBig(operand); ok {
			return value.IntFromBig(new(big.Int).Neg(b)), nil
		}
	}
	return nil, typeErrorUnary("-", operand)
}

func simulateUAdd(operand value.Value) (value.Value, error) {
	switch operand.(type) {
	case value.Float:
		return operand, nil
	default:
		// Unary plus normalizes bools to ints, same as the runtime.
		if b, ok := asBig(operand); ok {
			return value.IntFromBig(b), nil
		}
	}
	return nil, typeErrorUnary("+", operand)
}

func simulateInvert(operand value.Value) (value.Value, error) {
	b, ok := asBig(operand)
	if !ok {
		return nil, typeErrorUnary("~", operand)
	}
	// ~x == -(x+1)
	out := new(big.Int).Add(b, big.NewInt(1))
	return value.IntFromBig(out.Neg(out)), nil
}

func simulateNot(operand value.Value) (value.Value, error) {
	// Truthiness is total over the value domain; logical not never raises.
	return value.Bool(!value.Truth(operand)), nil
}
