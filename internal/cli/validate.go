package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/schoolbot/internal/schema"
)

// ValidationResult holds validation results.
type ValidationResult struct {
	File     string           `json:"file"`
	Valid    bool             `json:"valid"`
	Problems []schema.Problem `json:"problems,omitempty"`
}

// NewValidateCommand creates the validate command.
func NewValidateCommand(rootOpts *RootOptions) *cobra.Command {
	var showSchema bool

	cmd := &cobra.Command{
		Use:   "validate [snapshot.json]",
		Short: "Check a catalog snapshot file",
		Long: `Validate a JSON catalog snapshot against the CUE catalog schema.

Checks the document shape (subject keys, names, day keys), then that
subject keys are unique and every lesson names an existing subject.
Nothing is written.

Examples:
  schoolbot validate data.json
  schoolbot validate data.json --format json
  schoolbot validate --schema`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if showSchema {
				fmt.Fprint(cmd.OutOrStdout(), schema.Source())
				return nil
			}
			if len(args) == 0 {
				return NewExitError(ExitCommandError, "snapshot file is required")
			}
			return runValidate(rootOpts, args[0], cmd)
		},
	}

	cmd.Flags().BoolVar(&showSchema, "schema", false, "print the CUE schema and exit")

	return cmd
}

func runValidate(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFile, fmt.Sprintf("cannot read %s", path), err.Error())
		return WrapExitError(ExitCommandError, "failed to read snapshot", err)
	}
	formatter.VerboseLog("Read %d byte(s) from %s", len(data), path)

	v, err := schema.New()
	if err != nil {
		return WrapExitError(ExitFailure, "schema unavailable", err)
	}
	if problems := v.Validate(path, data); len(problems) > 0 {
		return outputProblems(formatter, path, problems)
	}

	if opts.Format == "json" {
		return formatter.Success(ValidationResult{File: path, Valid: true})
	}
	return formatter.Success(fmt.Sprintf("✓ %s is a valid catalog snapshot", path))
}

// outputProblems reports snapshot problems and returns an ExitFailure.
func outputProblems(f *OutputFormatter, path string, problems []schema.Problem) error {
	if f.Format == "json" {
		if err := f.Error(problems[0].Code, fmt.Sprintf("%d problem(s) in %s", len(problems), path),
			ValidationResult{File: path, Valid: false, Problems: problems}); err != nil {
			return err
		}
	} else {
		fmt.Fprintf(f.Writer, "✗ %s: %d problem(s)\n", path, len(problems))
		for _, p := range problems {
			fmt.Fprintf(f.Writer, "  %s\n", p.Error())
		}
	}
	return NewExitError(ExitFailure, fmt.Sprintf("%s is not a valid catalog snapshot", path))
}
