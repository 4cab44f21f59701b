package optimize_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/optimize"
	"github.com/viraptor/basalt/internal/value"
)

type recordingSink struct {
	tokens  []string
	seqs    []int
	changes []optimize.Change
	err     error
}

func (s *recordingSink) RecordChange(runToken string, seq int, change optimize.Change) error {
	s.tokens = append(s.tokens, runToken)
	s.seqs = append(s.seqs, seq)
	s.changes = append(s.changes, change)
	return s.err
}

func TestCollectionRunTokensAreUnique(t *testing.T) {
	a := optimize.NewCollection()
	b := optimize.NewCollection()

	assert.NotEmpty(t, a.RunToken())
	assert.NotEqual(t, a.RunToken(), b.RunToken())
}

func TestCollectionForwardsSignalsToSink(t *testing.T) {
	sink := &recordingSink{}
	cc := optimize.NewCollection()
	cc.SetSink(sink)

	cc.SignalChange("new_constant", testRef, "first")
	cc.SignalChange("new_raise", testRef, "second")

	require.Len(t, sink.changes, 2)
	assert.Equal(t, []int{1, 2}, sink.seqs)
	assert.Equal(t, "first", sink.changes[0].Message)
	assert.Equal(t, "second", sink.changes[1].Message)
	assert.Equal(t, cc.RunToken(), sink.tokens[0])
	assert.NoError(t, cc.SinkErr())
}

func TestCollectionKeepsFirstSinkError(t *testing.T) {
	sink := &recordingSink{err: errors.New("journal closed")}
	cc := optimize.NewCollection()
	cc.SetSink(sink)

	cc.SignalChange("new_constant", testRef, "first")
	cc.SignalChange("new_constant", testRef, "second")

	// Sink trouble never aborts optimization; both signals still landed.
	require.Len(t, cc.Signals(), 2)
	assert.EqualError(t, cc.SinkErr(), "journal closed")
}

func TestCompileTimeComputationSuccess(t *testing.T) {
	cc := optimize.NewCollection()
	node := ast.NewVariableRef("placeholder", testRef)

	replaced, err := cc.CompileTimeComputation(node, func() (value.Value, error) {
		return value.NewInt(42), nil
	}, "Test fold.")
	require.NoError(t, err)

	folded, ok := replaced.(*ast.ConstantRef)
	require.True(t, ok)

	known, ok := cc.Knowledge(folded)
	require.True(t, ok)
	assert.True(t, value.Equal(value.NewInt(42), known))

	cc.RemoveKnowledge(folded)
	_, ok = cc.Knowledge(folded)
	assert.False(t, ok)
}

func TestCompileTimeComputationRaise(t *testing.T) {
	cc := optimize.NewCollection()
	node := ast.NewVariableRef("placeholder", testRef)

	replaced, err := cc.CompileTimeComputation(node, func() (value.Value, error) {
		return nil, value.NewZeroDivisionError("division by zero")
	}, "Test fold.")
	require.NoError(t, err)

	raise, ok := replaced.(*ast.RaiseExpression)
	require.True(t, ok)
	assert.Equal(t, value.ZeroDivisionError, raise.ErrorKind())

	require.Len(t, cc.Signals(), 1)
	assert.Equal(t, "new_raise", cc.Signals()[0].Tags)
	assert.Contains(t, cc.Signals()[0].Message, "ZeroDivisionError")
	assert.Contains(t, cc.ExceptionExits(), value.ZeroDivisionError)
}

func TestCompileTimeComputationDefect(t *testing.T) {
	cc := optimize.NewCollection()
	node := ast.NewVariableRef("placeholder", testRef)

	_, err := cc.CompileTimeComputation(node, func() (value.Value, error) {
		return nil, errors.New("simulator bug")
	}, "Test fold.")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "simulator bug")
	assert.Empty(t, cc.Signals(), "a defect must not masquerade as a rewrite")
}
