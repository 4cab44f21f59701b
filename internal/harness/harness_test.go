package harness

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestScenariosAgainstGolden(t *testing.T) {
	scenarios, err := LoadScenarios("testdata/scenarios")
	require.NoError(t, err)
	require.NotEmpty(t, scenarios)

	for _, s := range scenarios {
		t.Run(s.Name, func(t *testing.T) {
			require.NoError(t, RunWithGolden(t, s))
		})
	}
}

func TestLoadScenarioRejectsNameless(t *testing.T) {
	path := filepath.Join(t.TempDir(), "broken.yaml")
	require.NoError(t, os.WriteFile(path, []byte("description: no name here\n"), 0o644))

	_, err := LoadScenario(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no name")
}

func TestCheckRejectsWrongOutcome(t *testing.T) {
	s := &Scenario{
		Name: "inline",
		Expr: `expr: {
			kind: "binop"
			op:   "Add"
			left:  {kind: "const", value: 1}
			right: {kind: "const", value: 2}
		}`,
		Expect: ExpectClause{Outcome: "raise", Signals: 1},
	}

	result, err := Run(s)
	require.NoError(t, err)
	assert.Error(t, result.Check(s))

	s.Expect.Outcome = "constant"
	assert.NoError(t, result.Check(s))

	s.Expect.Signals = 5
	assert.Error(t, result.Check(s))
}

func TestRunReportsCompileFailure(t *testing.T) {
	s := &Scenario{
		Name: "bad",
		Expr: `expr: {kind: "frob"}`,
	}
	_, err := Run(s)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad")
}
