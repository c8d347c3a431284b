package cli

import (
	"context"
	"io"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/config"
	"github.com/roach88/schoolbot/internal/engine"
	"github.com/roach88/schoolbot/internal/router"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/transport/console"
)

// ConsoleOptions holds flags for the console command.
type ConsoleOptions struct {
	*RootOptions
	UserID    int64
	FirstName string

	// Persist uses the configured storage instead of a throwaway catalog.
	Persist bool
}

// NewConsoleCommand creates the console command.
func NewConsoleCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ConsoleOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "console",
		Short: "Chat with the bot in the terminal",
		Long: `Open a local chat with the bot. No Telegram connection is needed.

Type text to send it, /command to run a command, :N to press the N-th
inline button and !N to press the N-th main menu button.

By default the catalog starts from the built-in defaults and is thrown
away on exit; --persist works on the configured storage instead.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runConsole(opts, cmd)
		},
	}

	cmd.Flags().Int64Var(&opts.UserID, "user", 1, "user id to chat as")
	cmd.Flags().StringVar(&opts.FirstName, "name", "", "first name shown in the greeting")
	cmd.Flags().BoolVar(&opts.Persist, "persist", false, "read and write the configured storage")

	return cmd
}

func runConsole(opts *ConsoleOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}

	// The terminal belongs to the UI; logs are discarded unless verbose.
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	if opts.Verbose {
		logger = newLogger(opts.RootOptions, cfg, cmd)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	var rt *router.Router
	if opts.Persist {
		r, release, err := newRouter(ctx, cfg, logger)
		if err != nil {
			return err
		}
		defer release()
		rt = r
	} else {
		rt = memoryRouter(cfg, logger)
	}

	screen := console.NewScreen()
	eng := engine.New(rt, screen, engine.WithLogger(logger))
	if err := console.Run(ctx, eng, screen, session.Identity(opts.UserID), opts.FirstName); err != nil {
		return WrapExitError(ExitFailure, "console stopped", err)
	}
	return nil
}

func memoryRouter(cfg config.Config, logger *slog.Logger) *router.Router {
	cat := catalog.New(catalog.NewMemoryPersister(), catalog.WithLogger(logger))
	ropts := []router.Option{router.WithLogger(logger)}
	if id, ok := cfg.AdminIdentity(); ok {
		ropts = append(ropts, router.WithAdmin(id))
	}
	return router.New(cat, session.NewStore(), ropts...)
}
