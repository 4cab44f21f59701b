// Package harness runs yaml-defined optimization scenarios end to end:
// compile a CUE expression document, optimize it to its fixpoint, and check
// the outcome against expectations and golden dumps.
package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"cuelang.org/go/cue/cuecontext"
	"gopkg.in/yaml.v3"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/compiler"
	"github.com/viraptor/basalt/internal/operators"
	"github.com/viraptor/basalt/internal/optimize"
)

// Scenario defines one optimization conformance case.
type Scenario struct {
	// Name uniquely identifies this scenario and names its golden file.
	Name string `yaml:"name"`

	// Description explains what this scenario validates.
	Description string `yaml:"description"`

	// Expr is the CUE expression document source.
	Expr string `yaml:"expr"`

	// Expect describes the required outcome.
	Expect ExpectClause `yaml:"expect"`
}

// ExpectClause specifies the expected optimization outcome.
type ExpectClause struct {
	// Outcome is "constant", "raise", or "unchanged".
	Outcome string `yaml:"outcome"`

	// Signals is the exact number of change signals the run must emit.
	Signals int `yaml:"signals"`
}

// Result holds the outcome of one scenario run.
type Result struct {
	Root    ast.Expression
	Dump    []byte
	Hash    string
	Signals []optimize.Change
}

// LoadScenario reads one scenario from a yaml file.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading scenario: %w", err)
	}

	var s Scenario
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parsing scenario %s: %w", path, err)
	}
	if s.Name == "" {
		return nil, fmt.Errorf("scenario %s has no name", path)
	}
	return &s, nil
}

// LoadScenarios reads every .yaml scenario in a directory, sorted by file
// name so test order is stable.
func LoadScenarios(dir string) ([]*Scenario, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading scenario dir: %w", err)
	}

	var paths []string
	for _, e := range entries {
		if !e.IsDir() && filepath.Ext(e.Name()) == ".yaml" {
			paths = append(paths, filepath.Join(dir, e.Name()))
		}
	}
	sort.Strings(paths)

	var scenarios []*Scenario
	for _, p := range paths {
		s, err := LoadScenario(p)
		if err != nil {
			return nil, err
		}
		scenarios = append(scenarios, s)
	}
	return scenarios, nil
}

// Run compiles and optimizes the scenario's document.
func Run(s *Scenario) (*Result, error) {
	v := cuecontext.New().CompileString(s.Expr)
	root, err := compiler.New(operators.Default()).CompileDocument(v)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	cc := optimize.NewCollection()
	reduced, err := optimize.Tree(cc, root)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	dump, err := ast.CanonicalDump(reduced)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}
	hash, err := ast.TreeHash(reduced)
	if err != nil {
		return nil, fmt.Errorf("scenario %s: %w", s.Name, err)
	}

	return &Result{
		Root:    reduced,
		Dump:    dump,
		Hash:    hash,
		Signals: cc.Signals(),
	}, nil
}

// Check verifies the result against the scenario's expect clause.
func (r *Result) Check(s *Scenario) error {
	var outcome string
	switch r.Root.(type) {
	case *ast.ConstantRef:
		outcome = "constant"
	case *ast.RaiseExpression:
		outcome = "raise"
	default:
		outcome = "unchanged"
	}

	if s.Expect.Outcome != "" && outcome != s.Expect.Outcome {
		return fmt.Errorf("scenario %s: expected outcome %q, got %q (%s)",
			s.Name, s.Expect.Outcome, outcome, r.Root.Kind())
	}
	if len(r.Signals) != s.Expect.Signals {
		return fmt.Errorf("scenario %s: expected %d signal(s), got %d",
			s.Name, s.Expect.Signals, len(r.Signals))
	}
	return nil
}
