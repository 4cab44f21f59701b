package value

import (
	"math"
	"math/big"
	"strconv"
	"strings"
)

// Value is a sealed interface over the dynamic value domain of the Basalt
// language. Only None, Bool, Int, Float, Str, List, Tuple, and Dict implement
// it. Values of this type are what constant folding proves and computes with;
// they are never shared with runtime code.
type Value interface {
	value() // Sealed - only these types implement it
}

// Kind identifies the concrete type of a Value.
type Kind int

const (
	KindNone Kind = iota
	KindBool
	KindInt
	KindFloat
	KindStr
	KindList
	KindTuple
	KindDict
)

// None represents the language's null value.
type None struct{}

func (None) value() {}

// Bool represents a boolean value.
type Bool bool

func (Bool) value() {}

// Int represents an arbitrary-precision integer. The language's integers are
// unbounded, which is why folded multiplications are cost-capped by digit
// magnitude rather than by machine word width.
type Int struct {
	x *big.Int
}

func (Int) value() {}

// NewInt creates an Int from a machine integer.
func NewInt(n int64) Int {
	return Int{x: big.NewInt(n)}
}

// IntFromBig creates an Int from a big.Int. The argument is copied so later
// mutation of the original cannot alias into a proven constant.
func IntFromBig(x *big.Int) Int {
	return Int{x: new(big.Int).Set(x)}
}

// Big returns a copy of the underlying integer.
func (i Int) Big() *big.Int {
	if i.x == nil {
		return new(big.Int)
	}
	return new(big.Int).Set(i.x)
}

// big returns the underlying integer without copying. Callers must not
// mutate the result.
func (i Int) big() *big.Int {
	if i.x == nil {
		return new(big.Int)
	}
	return i.x
}

// Float represents a 64-bit floating point value.
type Float float64

func (Float) value() {}

// Str represents a string value.
type Str string

func (Str) value() {}

// List represents a mutable sequence.
type List []Value

func (List) value() {}

// Tuple represents an immutable sequence.
type Tuple []Value

func (Tuple) value() {}

// Pair is one key/value entry of a Dict. Dicts preserve insertion order so
// that folded results and canonical dumps are deterministic.
type Pair struct {
	Key Value
	Val Value
}

// Dict represents a mutable mapping as an ordered list of pairs.
type Dict []Pair

func (Dict) value() {}

// KindOf returns the Kind of a value.
func KindOf(v Value) Kind {
	switch v.(type) {
	case None:
		return KindNone
	case Bool:
		return KindBool
	case Int:
		return KindInt
	case Float:
		return KindFloat
	case Str:
		return KindStr
	case List:
		return KindList
	case Tuple:
		return KindTuple
	case Dict:
		return KindDict
	default:
		panic("value: unknown kind")
	}
}

// TypeName returns the language-level type name used in error messages.
func TypeName(v Value) string {
	switch v.(type) {
	case None:
		return "NoneType"
	case Bool:
		return "bool"
	case Int:
		return "int"
	case Float:
		return "float"
	case Str:
		return "str"
	case List:
		return "list"
	case Tuple:
		return "tuple"
	case Dict:
		return "dict"
	default:
		return "object"
	}
}

// Truth reports the truthiness of a value. Truthiness is total over the
// domain: empty containers, zero numbers, the empty string, None, and False
// are falsy; everything else is truthy.
func Truth(v Value) bool {
	switch val := v.(type) {
	case None:
		return false
	case Bool:
		return bool(val)
	case Int:
		return val.big().Sign() != 0
	case Float:
		return float64(val) != 0
	case Str:
		return len(val) != 0
	case List:
		return len(val) != 0
	case Tuple:
		return len(val) != 0
	case Dict:
		return len(val) != 0
	default:
		return true
	}
}

// IsMutable reports whether a value can be mutated in place. Lists and dicts
// are mutable; a tuple is mutable when any of its elements is. Only immutable
// constants may appear as the left operand of an in-place operation.
func IsMutable(v Value) bool {
	switch val := v.(type) {
	case List, Dict:
		return true
	case Tuple:
		for _, elem := range val {
			if IsMutable(elem) {
				return true
			}
		}
		return false
	default:
		return false
	}
}

// Len returns the iteration length of a value, if it has one.
func Len(v Value) (int, bool) {
	switch val := v.(type) {
	case Str:
		return len(val), true
	case List:
		return len(val), true
	case Tuple:
		return len(val), true
	case Dict:
		return len(val), true
	default:
		return 0, false
	}
}

// IsNumber reports whether a value is numeric. Bools count as numbers, as
// they do in arithmetic at runtime.
func IsNumber(v Value) bool {
	switch v.(type) {
	case Bool, Int, Float:
		return true
	default:
		return false
	}
}

// IsInt reports whether a value is usable as a sequence index or repeat
// count.
func IsInt(v Value) bool {
	switch v.(type) {
	case Bool, Int:
		return true
	default:
		return false
	}
}

// AsInt64 extracts a machine integer from an Int or Bool, reporting whether
// the value fits.
func AsInt64(v Value) (int64, bool) {
	switch val := v.(type) {
	case Bool:
		if val {
			return 1, true
		}
		return 0, true
	case Int:
		if !val.big().IsInt64() {
			return 0, false
		}
		return val.big().Int64(), true
	default:
		return 0, false
	}
}

// AsFloat extracts a float from any numeric value.
func AsFloat(v Value) (float64, bool) {
	switch val := v.(type) {
	case Bool:
		if val {
			return 1, true
		}
		return 0, true
	case Int:
		f, _ := new(big.Float).SetInt(val.big()).Float64()
		return f, true
	case Float:
		return float64(val), true
	default:
		return 0, false
	}
}

// DigitMagnitude returns log10 of the absolute value of a nonzero number.
// It reports false for zero and non-numbers, mirroring the guard the
// multiplication fold cap needs: the cap only applies when both operands are
// nonzero numbers.
func DigitMagnitude(v Value) (float64, bool) {
	f, ok := AsFloat(v)
	if !ok || f == 0 {
		return 0, false
	}
	if math.IsInf(f, 0) {
		// Astronomically large integers overflow float64 conversion;
		// treat them as over any reasonable cap.
		return math.Inf(1), true
	}
	return math.Log10(math.Abs(f)), true
}

// Equal reports deep equality of two values. Int/Float cross-kind equality
// follows numeric comparison, matching runtime == semantics.
func Equal(a, b Value) bool {
	switch av := a.(type) {
	case None:
		_, ok := b.(None)
		return ok
	case Bool:
		bv, ok := b.(Bool)
		return ok && av == bv
	case Int:
		switch bv := b.(type) {
		case Int:
			return av.big().Cmp(bv.big()) == 0
		case Float:
			f, _ := AsFloat(av)
			return f == float64(bv)
		}
		return false
	case Float:
		switch bv := b.(type) {
		case Float:
			return av == bv
		case Int:
			f, _ := AsFloat(bv)
			return float64(av) == f
		}
		return false
	case Str:
		bv, ok := b.(Str)
		return ok && av == bv
	case List:
		bv, ok := b.(List)
		return ok && sequenceEqual(av, bv)
	case Tuple:
		bv, ok := b.(Tuple)
		return ok && sequenceEqual(av, bv)
	case Dict:
		bv, ok := b.(Dict)
		if !ok || len(av) != len(bv) {
			return false
		}
		for i := range av {
			if !Equal(av[i].Key, bv[i].Key) || !Equal(av[i].Val, bv[i].Val) {
				return false
			}
		}
		return true
	default:
		return false
	}
}

func sequenceEqual(a, b []Value) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if !Equal(a[i], b[i]) {
			return false
		}
	}
	return true
}

// Repr renders a value the way the language's repr() would, for diagnostics
// and canonical dumps.
func Repr(v Value) string {
	switch val := v.(type) {
	case None:
		return "None"
	case Bool:
		if val {
			return "True"
		}
		return "False"
	case Int:
		return val.big().String()
	case Float:
		return reprFloat(float64(val))
	case Str:
		return reprStr(string(val))
	case List:
		return reprSequence(val, "[", "]", false)
	case Tuple:
		return reprSequence(val, "(", ")", true)
	case Dict:
		var sb strings.Builder
		sb.WriteByte('{')
		for i, pair := range val {
			if i > 0 {
				sb.WriteString(", ")
			}
			sb.WriteString(Repr(pair.Key))
			sb.WriteString(": ")
			sb.WriteString(Repr(pair.Val))
		}
		sb.WriteByte('}')
		return sb.String()
	default:
		return "<unknown>"
	}
}

func reprFloat(f float64) string {
	if math.IsInf(f, 1) {
		return "inf"
	}
	if math.IsInf(f, -1) {
		return "-inf"
	}
	if math.IsNaN(f) {
		return "nan"
	}
	s := strconv.FormatFloat(f, 'g', -1, 64)
	// Integral floats render with a trailing ".0" so they stay visibly
	// distinct from ints.
	if !strings.ContainsAny(s, ".eE") {
		s += ".0"
	}
	return s
}

func reprStr(s string) string {
	var sb strings.Builder
	sb.WriteByte('\'')
	for _, r := range s {
		switch r {
		case '\'':
			sb.WriteString(`\'`)
		case '\\':
			sb.WriteString(`\\`)
		case '\n':
			sb.WriteString(`\n`)
		case '\t':
			sb.WriteString(`\t`)
		case '\r':
			sb.WriteString(`\r`)
		default:
			sb.WriteRune(r)
		}
	}
	sb.WriteByte('\'')
	return sb.String()
}

func reprSequence(elems []Value, open, close string, tupleComma bool) string {
	var sb strings.Builder
	sb.WriteString(open)
	for i, elem := range elems {
		if i > 0 {
			sb.WriteString(", ")
		}
		sb.WriteString(Repr(elem))
	}
	if tupleComma && len(elems) == 1 {
		sb.WriteByte(',')
	}
	sb.WriteString(close)
	return sb.String()
}
