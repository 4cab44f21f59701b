// Package operators holds the operator table: an immutable mapping from
// operator tag to a pure simulator function reproducing the exact runtime
// semantics of that operator. The table is built once at process start and
// injected into operation nodes at construction time; it is never consulted
// through hidden global state.
package operators

import (
	"strings"
	"sync"

	"github.com/viraptor/basalt/internal/value"
)

// BinaryFunc simulates one binary operator. It returns the runtime result or
// the exact *value.RuntimeError the runtime operator would raise.
type BinaryFunc func(left, right value.Value) (value.Value, error)

// UnaryFunc simulates one unary operator.
type UnaryFunc func(operand value.Value) (value.Value, error)

// Table maps operator tags to simulators. A Table is immutable after
// construction.
type Table struct {
	binary map[string]BinaryFunc
	unary  map[string]UnaryFunc
}

// NewTable builds a table from explicit simulator maps. The maps are copied;
// later mutation of the arguments does not affect the table. Primarily useful
// for tests that need instrumented simulators.
func NewTable(binary map[string]BinaryFunc, unary map[string]UnaryFunc) *Table {
	t := &Table{
		binary: make(map[string]BinaryFunc, len(binary)),
		unary:  make(map[string]UnaryFunc, len(unary)),
	}
	for tag, fn := range binary {
		t.binary[tag] = fn
	}
	for tag, fn := range unary {
		t.unary[tag] = fn
	}
	return t
}

// Binary looks up the simulator for a binary operator tag, plain or
// augmented.
func (t *Table) Binary(tag string) (BinaryFunc, bool) {
	fn, ok := t.binary[tag]
	return fn, ok
}

// Unary looks up the simulator for a unary operator tag.
func (t *Table) Unary(tag string) (UnaryFunc, bool) {
	fn, ok := t.unary[tag]
	return fn, ok
}

// BinaryTags returns the known binary tags, augmented ones included.
func (t *Table) BinaryTags() []string {
	tags := make([]string, 0, len(t.binary))
	for tag := range t.binary {
		tags = append(tags, tag)
	}
	return tags
}

// augmentedMarker prefixes the tag of every in-place operator variant. The
// convention is fixed and reversible: "IAdd" lowers to "Add".
const augmentedMarker = "I"

// AugmentedTag derives the in-place tag from a plain one.
func AugmentedTag(plain string) string {
	return augmentedMarker + plain
}

// PlainTag strips the augmentation marker from an in-place tag, reporting
// whether the tag was augmented at all.
func PlainTag(augmented string) (string, bool) {
	return strings.CutPrefix(augmented, augmentedMarker)
}

// IsAugmented reports whether a tag names an in-place operator variant.
func IsAugmented(tag string) bool {
	_, ok := PlainTag(tag)
	return ok
}

var defaultTable = sync.OnceValue(buildDefault)

// Default returns the process-wide operator table with the language's full
// operator set.
func Default() *Table {
	return defaultTable()
}

func buildDefault() *Table {
	binary := map[string]BinaryFunc{
		"Add":      simulateAdd,
		"Sub":      simulateSub,
		"Mult":     simulateMult,
		"Div":      simulateDiv,
		"FloorDiv": simulateFloorDiv,
		"Mod":      simulateMod,
		"Pow":      simulatePow,
		"LShift":   simulateLShift,
		"RShift":   simulateRShift,
		"BitAnd":   simulateBitAnd,
		"BitOr":    simulateBitOr,
		"BitXor":   simulateBitXor,
	}

	// In-place variants share the plain simulators. The distinction is
	// tree-level: an in-place node is only ever folded by lowering to its
	// plain counterpart, never by direct simulation.
	plain := make([]string, 0, len(binary))
	for tag := range binary {
		plain = append(plain, tag)
	}
	for _, tag := range plain {
		binary[AugmentedTag(tag)] = binary[tag]
	}

	unary := map[string]UnaryFunc{
		"USub":   simulateUSub,
		"UAdd":   simulateUAdd,
		"Invert": simulateInvert,
		"Not":    simulateNot,
	}

	return NewTable(binary, unary)
}
