package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/schema"
)

// NewImportCommand creates the import command.
func NewImportCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "import <snapshot.json>",
		Short: "Replace the stored catalog with a snapshot file",
		Long: `Validate a JSON snapshot against the catalog schema and, when it is
valid, replace the catalog in the configured storage with it.

An invalid snapshot is reported like validate does and nothing is written.

Example:
  schoolbot import backup.json --config ./schoolbot.yaml`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(rootOpts, args[0], cmd)
		},
	}

	return cmd
}

func runImport(opts *RootOptions, path string, cmd *cobra.Command) error {
	formatter := &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}

	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		_ = formatter.Error(ErrCodeReadFile, fmt.Sprintf("cannot read %s", path), err.Error())
		return WrapExitError(ExitCommandError, "failed to read snapshot", err)
	}

	v, err := schema.New()
	if err != nil {
		return WrapExitError(ExitFailure, "schema unavailable", err)
	}
	snap, problems := v.Decode(path, data)
	if len(problems) > 0 {
		return outputProblems(formatter, path, problems)
	}
	formatter.VerboseLog("Snapshot is valid: %d subject(s), %d day(s)", len(snap.Subjects), len(snap.Schedule))

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		logger = newLogger(opts, cfg, cmd)
	}
	persister, release, err := openPersister(cfg, logger)
	if err != nil {
		_ = formatter.Error(ErrCodeStorage, "failed to open storage", err.Error())
		return WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	defer release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cat := catalog.New(persister, catalog.WithSnapshot(catalog.Empty()), catalog.WithLogger(logger))
	if err := cat.Replace(ctx, snap); err != nil {
		_ = formatter.Error(ErrCodeStorage, "failed to save catalog", err.Error())
		return WrapExitError(ExitFailure, "failed to save catalog", err)
	}

	return formatter.Success(importSummary{
		Source:   path,
		Target:   cfg.Storage.Driver + ":" + cfg.Storage.Path,
		Subjects: len(snap.Subjects),
		Days:     len(snap.Schedule),
	})
}

type importSummary struct {
	Source   string `json:"source"`
	Target   string `json:"target"`
	Subjects int    `json:"subjects"`
	Days     int    `json:"days"`
}

func (s importSummary) String() string {
	return fmt.Sprintf("✓ Imported %d subject(s) and %d day(s) from %s into %s", s.Subjects, s.Days, s.Source, s.Target)
}
