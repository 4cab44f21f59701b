package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/viraptor/basalt/internal/trace"
)

// NewTraceCommand creates the trace command.
func NewTraceCommand(rootOpts *RootOptions) *cobra.Command {
	var runToken string

	cmd := &cobra.Command{
		Use:   "trace <journal.db>",
		Short: "Inspect a recorded trace journal",
		Long: `List the optimization runs recorded in a trace journal, or the
change signals of one run when --run is given.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTrace(rootOpts, args[0], runToken, cmd)
		},
	}

	cmd.Flags().StringVar(&runToken, "run", "", "show the signals of one run")

	return cmd
}

// TraceRuns is the JSON payload listing recorded runs.
type TraceRuns struct {
	Runs []trace.Run `json:"runs"`
}

// TraceSignals is the JSON payload listing one run's signals.
type TraceSignals struct {
	RunToken string         `json:"run_token"`
	Signals  []trace.Signal `json:"signals"`
}

func runTrace(opts *RootOptions, path, runToken string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	journal, err := trace.Open(path)
	if err != nil {
		_ = formatter.Error(ErrCodeJournalError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "opening trace journal", err)
	}
	defer journal.Close()

	if runToken != "" {
		signals, err := journal.ListSignals(runToken)
		if err != nil {
			_ = formatter.Error(ErrCodeJournalError, err.Error(), nil)
			return WrapExitError(ExitCommandError, "listing signals", err)
		}

		if formatter.Format == "json" {
			return formatter.Success(TraceSignals{RunToken: runToken, Signals: signals})
		}
		for _, s := range signals {
			fmt.Fprintf(formatter.Writer, "%4d %s:%d:%d %s: %s\n",
				s.Seq, s.File, s.Line, s.Column, s.Tags, s.Message)
		}
		return nil
	}

	runs, err := journal.ListRuns()
	if err != nil {
		_ = formatter.Error(ErrCodeJournalError, err.Error(), nil)
		return WrapExitError(ExitCommandError, "listing runs", err)
	}

	if formatter.Format == "json" {
		return formatter.Success(TraceRuns{Runs: runs})
	}
	for _, r := range runs {
		fmt.Fprintf(formatter.Writer, "%s  %s  %d signal(s)  %s\n",
			r.Token, r.StartedAt, r.Signals, r.Source)
	}
	return nil
}
