package operators

import (
	"math"
	"math/big"

	"github.com/viraptor/basalt/internal/value"
)

// Simulator cutoff for exponents and shift counts. Results beyond this would
// exhaust compile-time memory before the runtime ever saw them; the runtime
// surfaces the same condition as MemoryError.
const maxExpansionBits = 1 << 20

func typeErrorBinary(symbol string, left, right value.Value) error {
	return value.NewTypeError(
		"unsupported operand type(s) for %s: '%s' and '%s'",
		symbol, value.TypeName(left), value.TypeName(right),
	)
}

// asBig converts an int-like operand (Int or Bool) to a big integer.
func asBig(v value.Value) (*big.Int, bool) {
	switch val := v.(type) {
	case value.Bool:
		if val {
			return big.NewInt(1), true
		}
		return big.NewInt(0), true
	case value.Int:
		return val.Big(), true
	default:
		return nil, false
	}
}

// eitherFloat reports whether a numeric pair must be computed in floating
// point.
func eitherFloat(l, r value.Value) bool {
	_, lf := l.(value.Float)
	_, rf := r.(value.Float)
	return lf || rf
}

func simulateAdd(left, right value.Value) (value.Value, error) {
	if value.IsNumber(left) && value.IsNumber(right) {
		if eitherFloat(left, right) {
			lf, _ := value.AsFloat(left)
			rf, _ := value.AsFloat(right)
			return value.Float(lf + rf), nil
		}
		lb, _ := asBig(left)
		rb, _ := asBig(right)
		return value.IntFromBig(new(big.Int).Add(lb, rb)), nil
	}

	switch lv := left.(type) {
	case value.Str:
		if rv, ok := right.(value.Str); ok {
			return lv + rv, nil
		}
	case value.List:
		if rv, ok := right.(value.List); ok {
			out := make(value.List, 0, len(lv)+len(rv))
			out = append(out, lv...)
			out = append(out, rv...)
			return out, nil
		}
	case value.Tuple:
		if rv, ok := right.(value.Tuple); ok {
			out := make(value.Tuple, 0, len(lv)+len(rv))
			out = append(out, lv...)
			out = append(out, rv...)
			return out, nil
		}
	}

	return nil, typeErrorBinary("+", left, right)
}

func simulateSub(left, right value.Value) (value.Value, error) {
	if !value.IsNumber(left) || !value.IsNumber(right) {
		return nil, typeErrorBinary("-", left, right)
	}
	if eitherFloat(left, right) {
		lf, _ := value.AsFloat(left)
		rf, _ := value.AsFloat(right)
		return value.Float(lf - rf), nil
	}
	lb, _ := asBig(left)
	rb, _ := asBig(right)
	return value.IntFromBig(new(big.Int).Sub(lb, rb)), nil
}

func simulateMult(left, right value.Value) (value.Value, error) {
	if value.IsNumber(left) && value.IsNumber(right) {
		if eitherFloat(left, right) {
			lf, _ := value.AsFloat(left)
			rf, _ := value.AsFloat(right)
			return value.Float(lf * rf), nil
		}
		lb, _ := asBig(left)
		rb, _ := asBig(right)
		return value.IntFromBig(new(big.Int).Mul(lb, rb)), nil
	}

	// Sequence repetition, either operand order.
	if value.IsInt(right) {
		if repeated, ok, err := repeatSequence(left, right); ok {
			return repeated, err
		}
	}
	if value.IsInt(left) {
		if repeated, ok, err := repeatSequence(right, left); ok {
			return repeated, err
		}
	}

	return nil, typeErrorBinary("*", left, right)
}

// repeatSequence repeats a sequence value count times. The middle result
// reports whether seq was a sequence at all.
func repeatSequence(seq, count value.Value) (value.Value, bool, error) {
	n, fits := value.AsInt64(count)
	switch sv := seq.(type) {
	case value.Str:
		if !fits {
			return nil, true, overflowRepeat()
		}
		return value.Str(repeatString(string(sv), n)), true, nil
	case value.List:
		if !fits {
			return nil, true, overflowRepeat()
		}
		return value.List(repeatElements(sv, n)), true, nil
	case value.Tuple:
		if !fits {
			return nil, true, overflowRepeat()
		}
		return value.Tuple(repeatElements(sv, n)), true, nil
	default:
		return nil, false, nil
	}
}

func overflowRepeat() error {
	return value.NewRuntimeError(value.OverflowError, "cannot fit 'int' into an index-sized integer")
}

func repeatString(s string, n int64) string {
	if n <= 0 {
		return ""
	}
	out := make([]byte, 0, int64(len(s))*n)
	for i := int64(0); i < n; i++ {
		out = append(out, s...)
	}
	return string(out)
}

func repeatElements(elems []value.Value, n int64) []value.Value {
	if n <= 0 {
		return []value.Value{}
	}
	out := make([]value.Value, 0, int64(len(elems))*n)
	for i := int64(0); i < n; i++ {
		out = append(out, elems...)
	}
	return out
}

func simulateDiv(left, right value.Value) (value.Value, error) {
	if !value.IsNumber(left) || !value.IsNumber(right) {
		return nil, typeErrorBinary("/", left, right)
	}
	rf, _ := value.AsFloat(right)
	if rf == 0 {
		return nil, value.NewZeroDivisionError("division by zero")
	}
	lf, _ := value.AsFloat(left)
	return value.Float(lf / rf), nil
}

func simulateFloorDiv(left, right value.Value) (value.Value, error) {
	if !value.IsNumber(left) || !value.IsNumber(right) {
		return nil, typeErrorBinary("//", left, right)
	}
	if eitherFloat(left, right) {
		lf, _ := value.AsFloat(left)
		rf, _ := value.AsFloat(right)
		if rf == 0 {
			return nil, value.NewZeroDivisionError("float floor division by zero")
		}
		return value.Float(math.Floor(lf / rf)), nil
	}
	lb, _ := asBig(left)
	rb, _ := asBig(right)
	if rb.Sign() == 0 {
		return nil, value.NewZeroDivisionError("integer division or modulo by zero")
	}
	q, _ := floorDivMod(lb, rb)
	return value.IntFromBig(q), nil
}

func simulateMod(left, right value.Value) (value.Value, error) {
	if !value.IsNumber(left) || !value.IsNumber(right) {
		return nil, typeErrorBinary("%", left, right)
	}
	if eitherFloat(left, right) {
		lf, _ := value.AsFloat(left)
		rf, _ := value.AsFloat(right)
		if rf == 0 {
			return nil, value.NewZeroDivisionError("float modulo")
		}
		m := math.Mod(lf, rf)
		// The remainder takes the sign of the divisor.
		if m != 0 && (m < 0) != (rf < 0) {
			m += rf
		}
		return value.Float(m), nil
	}
	lb, _ := asBig(left)
	rb, _ := asBig(right)
	if rb.Sign() == 0 {
		return nil, value.NewZeroDivisionError("integer division or modulo by zero")
	}
	_, m := floorDivMod(lb, rb)
	return value.IntFromBig(m), nil
}

// floorDivMod computes floored division, remainder taking the divisor's sign.
func floorDivMod(a, b *big.Int) (*big.Int, *big.Int) {
	q := new(big.Int)
	m := new(big.Int)
	q.QuoRem(a, b, m)
	if m.Sign() != 0 && (m.Sign() < 0) != (b.Sign() < 0) {
		q.Sub(q, big.NewInt(1))
		m.Add(m, b)
	}
	return q, m
}

func simulatePow(left, right value.Value) (value.Value, error) {
	if !value.IsNumber(left) || !value.IsNumber(right) {
		return nil, typeErrorBinary("** or pow()", left, right)
	}
	if !eitherFloat(left, right) {
		lb, _ := asBig(left)
		rb, _ := asBig(right)
		if rb.Sign() >= 0 {
			if !rb.IsInt64() || rb.Int64() > maxExpansionBits {
				return nil, value.NewRuntimeError(value.MemoryError, "out of memory")
			}
			return value.IntFromBig(new(big.Int).Exp(lb, rb, nil)), nil
		}
		if lb.Sign() == 0 {
			return nil, value.NewZeroDivisionError("0.0 cannot be raised to a negative power")
		}
		// Negative integer exponent degrades to float power.
	}
	lf, _ := value.AsFloat(left)
	rf, _ := value.AsFloat(right)
	if lf == 0 && rf < 0 {
		return nil, value.NewZeroDivisionError("0.0 cannot be raised to a negative power")
	}
	return value.Float(math.Pow(lf, rf)), nil
}

func shiftOperands(symbol string, left, right value.Value) (*big.Int, uint, error) {
	lb, lok := asBig(left)
	rb, rok := asBig(right)
	if !lok || !rok {
		return nil, 0, typeErrorBinary(symbol, left, right)
	}
	if rb.Sign() < 0 {
		return nil, 0, value.NewValueError("negative shift count")
	}
	if !rb.IsInt64() || rb.Int64() > maxExpansionBits {
		return nil, 0, value.NewRuntimeError(value.MemoryError, "out of memory")
	}
	return lb, uint(rb.Int64()), nil
}

func simulateLShift(left, right value.Value) (value.Value, error) {
	lb, n, err := shiftOperands("<<", left, right)
	if err != nil {
		return nil, err
	}
	return value.IntFromBig(new(big.Int).Lsh(lb, n)), nil
}

func simulateRShift(left, right value.Value) (value.Value, error) {
	lb, n, err := shiftOperands(">>", left, right)
	if err != nil {
		return nil, err
	}
	return value.IntFromBig(new(big.Int).Rsh(lb, n)), nil
}

func bitwiseOperands(symbol string, left, right value.Value) (*big.Int, *big.Int, error) {
	lb, lok := asBig(left)
	rb, rok := asBig(right)
	if !lok || !rok {
		return nil, nil, typeErrorBinary(symbol, left, right)
	}
	return lb, rb, nil
}

func simulateBitAnd(left, right value.Value) (value.Value, error) {
	lb, rb, err := bitwiseOperands("&", left, right)
	if err != nil {
		return nil, err
	}
	return value.IntFromBig(new(big.Int).And(lb, rb)), nil
}

func simulateBitOr(left, right value.Value) (value.Value, error) {
	lb, rb, err := bitwiseOperands("|", left, right)
	if err != nil {
		return nil, err
	}
	return value.IntFromBig(new(big.Int).Or(lb, rb)), nil
}

func simulateBitXor(left, right value.Value) (value.Value, error) {
	lb, rb, err := bitwiseOperands("^", left, right)
	if err != nil {
		return nil, err
	}
	return value.IntFromBig(new(big.Int).Xor(lb, rb)), nil
}
