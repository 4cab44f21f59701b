package trace

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/optimize"
)

func openTestJournal(t *testing.T) *Journal {
	t.Helper()
	j, err := Open(filepath.Join(t.TempDir(), "trace.db"))
	require.NoError(t, err)
	t.Cleanup(func() { j.Close() })
	return j
}

func TestOpenIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "trace.db")

	j, err := Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())

	j, err = Open(path)
	require.NoError(t, err)
	require.NoError(t, j.Close())
}

func TestRecordAndListSignals(t *testing.T) {
	j := openTestJournal(t)
	ref := ast.SourceRef{File: "x.bas", Line: 3, Column: 7}

	require.NoError(t, j.BeginRun("run-1", "x.bas"))
	require.NoError(t, j.RecordChange("run-1", 1, optimize.Change{
		Tags: "new_constant", Ref: ref, Message: "Operator 'Add' with constant arguments.",
	}))
	require.NoError(t, j.RecordChange("run-1", 2, optimize.Change{
		Tags: "new_raise", Ref: ref, Message: "predicted raise",
	}))

	signals, err := j.ListSignals("run-1")
	require.NoError(t, err)
	require.Len(t, signals, 2)
	assert.Equal(t, 1, signals[0].Seq)
	assert.Equal(t, "new_constant", signals[0].Tags)
	assert.Equal(t, "x.bas", signals[0].File)
	assert.Equal(t, 3, signals[0].Line)
	assert.Equal(t, 7, signals[0].Column)
	assert.Equal(t, "new_raise", signals[1].Tags)
}

func TestRecordChangeIsIdempotent(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.BeginRun("run-1", ""))
	change := optimize.Change{Tags: "new_constant", Message: "once"}
	require.NoError(t, j.RecordChange("run-1", 1, change))
	require.NoError(t, j.RecordChange("run-1", 1, change))

	signals, err := j.ListSignals("run-1")
	require.NoError(t, err)
	assert.Len(t, signals, 1)
}

func TestListRunsCountsSignals(t *testing.T) {
	j := openTestJournal(t)

	require.NoError(t, j.BeginRun("run-a", "a.bas"))
	require.NoError(t, j.BeginRun("run-b", "b.bas"))
	require.NoError(t, j.RecordChange("run-a", 1, optimize.Change{Tags: "new_constant", Message: "m"}))

	runs, err := j.ListRuns()
	require.NoError(t, err)
	require.Len(t, runs, 2)

	byToken := map[string]Run{}
	for _, r := range runs {
		byToken[r.Token] = r
	}
	assert.Equal(t, 1, byToken["run-a"].Signals)
	assert.Equal(t, 0, byToken["run-b"].Signals)
	assert.Equal(t, "a.bas", byToken["run-a"].Source)
}

func TestJournalServesAsSink(t *testing.T) {
	j := openTestJournal(t)

	cc := optimize.NewCollection()
	require.NoError(t, j.BeginRun(cc.RunToken(), "inline"))
	cc.SetSink(j)

	cc.SignalChange("new_constant", ast.SourceRef{Line: 1, Column: 1}, "folded")
	require.NoError(t, cc.SinkErr())

	signals, err := j.ListSignals(cc.RunToken())
	require.NoError(t, err)
	require.Len(t, signals, 1)
	assert.Equal(t, "folded", signals[0].Message)
}

func TestMemorySinkRecordsInOrder(t *testing.T) {
	sink := NewMemorySink()
	cc := optimize.NewCollection()
	cc.SetSink(sink)

	cc.SignalChange("new_expression", ast.SourceRef{Line: 1}, "lowered")
	cc.SignalChange("new_constant", ast.SourceRef{Line: 1}, "folded")

	signals := sink.Signals(cc.RunToken())
	require.Len(t, signals, 2)
	assert.Equal(t, "lowered", signals[0].Message)
	assert.Equal(t, 2, signals[1].Seq)
	assert.Empty(t, sink.Signals("other-run"))
}
