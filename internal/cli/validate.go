package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	Valid  bool   `json:"valid"`
	Source string `json:"source"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <document.cue>",
		Short: "Validate a document without optimizing",
		Long: `Parse and compile a CUE expression document without running the
optimizer. Reports syntax errors, unknown node kinds, and unknown
operator tags.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	if _, err := compileDocument(formatter, path); err != nil {
		return err
	}

	if formatter.Format == "json" {
		return formatter.Success(ValidationResult{Valid: true, Source: path})
	}

	fmt.Fprintln(formatter.Writer, "✓ Document valid")
	return nil
}
