package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viraptor/basalt/internal/ast"
	"github.com/viraptor/basalt/internal/compiler"
	"github.com/viraptor/basalt/internal/operators"
	"github.com/viraptor/basalt/internal/optimize"
	"github.com/viraptor/basalt/internal/trace"
)

// OptimizeResult is the JSON payload of a successful optimize run.
type OptimizeResult struct {
	Source   string          `json:"source"`
	RunToken string          `json:"run_token"`
	Tree     json.RawMessage `json:"tree"`
	TreeHash string          `json:"tree_hash"`
	Signals  []SignalInfo    `json:"signals,omitempty"`
}

// SignalInfo is one change signal in command output.
type SignalInfo struct {
	Tags    string `json:"tags"`
	Ref     string `json:"ref"`
	Message string `json:"message"`
}

// NewOptimizeCommand creates the optimize command.
func NewOptimizeCommand(rootOpts *RootOptions) *cobra.Command {
	var tracePath string

	cmd := &cobra.Command{
		Use:   "optimize <document.cue>",
		Short: "Optimize an expression document to its fixpoint",
		Long: `Compile a CUE expression document and fold every operator application
whose operands are compile time constants, repeating until no further
rewrite is possible. Prints the reduced tree and its hash.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOptimize(rootOpts, args[0], tracePath, cmd)
		},
	}

	cmd.Flags().StringVar(&tracePath, "trace", "", "record change signals to a journal database")

	return cmd
}

func runOptimize(opts *RootOptions, path, tracePath string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	root, err := compileDocument(formatter, path)
	if err != nil {
		return err
	}

	cc := optimize.NewCollection()

	if tracePath != "" {
		journal, err := trace.Open(tracePath)
		if err != nil {
			_ = formatter.Error(ErrCodeJournalError, err.Error(), nil)
			return WrapExitError(ExitCommandError, "opening trace journal", err)
		}
		defer journal.Close()

		if err := journal.BeginRun(cc.RunToken(), path); err != nil {
			_ = formatter.Error(ErrCodeJournalError, err.Error(), nil)
			return WrapExitError(ExitCommandError, "recording trace run", err)
		}
		cc.SetSink(journal)
		formatter.VerboseLog("Recording trace to %s (run %s)", tracePath, cc.RunToken())
	}

	result, err := optimize.Tree(cc, root)
	if err != nil {
		_ = formatter.Error(ErrCodeOptimizeError, err.Error(), nil)
		return WrapExitError(ExitFailure, "optimization failed", err)
	}
	if err := cc.SinkErr(); err != nil {
		_ = formatter.Error(ErrCodeJournalError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "writing trace journal", err)
	}

	dump, err := ast.CanonicalDump(result)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "dumping tree", err)
	}
	hash, err := ast.TreeHash(result)
	if err != nil {
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return WrapExitError(ExitFailure, "hashing tree", err)
	}

	signals := make([]SignalInfo, 0, len(cc.Signals()))
	for _, c := range cc.Signals() {
		signals = append(signals, SignalInfo{
			Tags:    c.Tags,
			Ref:     c.Ref.String(),
			Message: c.Message,
		})
	}

	if formatter.Format == "json" {
		return formatter.Success(OptimizeResult{
			Source:   path,
			RunToken: cc.RunToken(),
			Tree:     json.RawMessage(dump),
			TreeHash: hash,
			Signals:  signals,
		})
	}

	fmt.Fprintln(formatter.Writer, string(dump))
	fmt.Fprintf(formatter.Writer, "hash: %s\n", hash)
	for _, s := range signals {
		fmt.Fprintf(formatter.Writer, "%s %s: %s\n", s.Ref, s.Tags, s.Message)
	}
	return nil
}

// compileDocument loads and compiles one document, mapping failures to the
// shared error output.
func compileDocument(formatter *OutputFormatter, path string) (ast.Expression, error) {
	v, err := LoadDocument(path)
	if err != nil {
		var loadErr *LoadError
		if errors.As(err, &loadErr) {
			_ = formatter.Error(loadErr.Code, loadErr.Message, nil)
			return nil, NewExitError(ExitCommandError, loadErr.Message)
		}
		_ = formatter.Error(ErrCodeGeneric, err.Error(), nil)
		return nil, WrapExitError(ExitCommandError, "loading document", err)
	}

	root, err := compiler.New(operators.Default()).CompileDocument(v)
	if err != nil {
		_ = formatter.Error(ErrCodeCompileFailed, err.Error(), nil)
		return nil, WrapExitError(ExitFailure, "compiling document", err)
	}

	return root, nil
}
