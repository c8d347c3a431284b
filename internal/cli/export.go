package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/schoolbot/internal/catalog"
)

// ExportOptions holds flags for the export command.
type ExportOptions struct {
	*RootOptions
	Output string
}

// NewExportCommand creates the export command.
func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored catalog as a JSON snapshot",
		Long: `Read the catalog from the configured storage and write it as a JSON
snapshot, the same document the json storage driver keeps on disk.

When nothing has been stored yet the built-in default catalog is exported.

Examples:
  schoolbot export > backup.json
  schoolbot export --output backup.json --config ./schoolbot.yaml`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(opts, cmd)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "", "output file (default stdout)")

	return cmd
}

func runExport(opts *ExportOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		logger = newLogger(opts.RootOptions, cfg, cmd)
	}

	persister, release, err := openPersister(cfg, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to open storage", err)
	}
	defer release()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	snap, err := persister.Load(ctx)
	switch {
	case errors.Is(err, catalog.ErrNoSnapshot):
		logger.Info("nothing stored, exporting defaults")
		snap = catalog.Defaults()
	case err != nil:
		return WrapExitError(ExitCommandError, "failed to read catalog", err)
	}

	var rev int64
	if r, ok := persister.(revisioner); ok {
		if rev, err = r.Revision(ctx); err != nil && !errors.Is(err, catalog.ErrNoSnapshot) {
			return WrapExitError(ExitCommandError, "failed to read catalog revision", err)
		}
		logger.Info("exporting catalog", "revision", rev)
	}

	if opts.Output == "" {
		data, err := catalog.EncodeSnapshot(snap)
		if err != nil {
			return WrapExitError(ExitFailure, "failed to encode catalog", err)
		}
		_, err = cmd.OutOrStdout().Write(data)
		return err
	}

	if err := catalog.NewFilePersister(opts.Output).Save(ctx, snap); err != nil {
		return WrapExitError(ExitCommandError, "failed to write snapshot", err)
	}
	f := &OutputFormatter{Format: opts.Format, Writer: cmd.OutOrStdout()}
	return f.Success(exportSummary{
		Path:     opts.Output,
		Subjects: len(snap.Subjects),
		Days:     len(snap.Schedule),
		Revision: rev,
	})
}

// revisioner is implemented by backends that count saves.
type revisioner interface {
	Revision(ctx context.Context) (int64, error)
}

type exportSummary struct {
	Path     string `json:"path"`
	Subjects int    `json:"subjects"`
	Days     int    `json:"days"`
	Revision int64  `json:"revision,omitempty"`
}

func (s exportSummary) String() string {
	msg := fmt.Sprintf("✓ Exported %d subject(s) and %d day(s) to %s", s.Subjects, s.Days, s.Path)
	if s.Revision > 0 {
		msg += fmt.Sprintf(" (revision %d)", s.Revision)
	}
	return msg
}
