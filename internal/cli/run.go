package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/config"
	"github.com/roach88/schoolbot/internal/engine"
	"github.com/roach88/schoolbot/internal/health"
	"github.com/roach88/schoolbot/internal/router"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/transport/telegram"
)

// RunOptions holds flags for the run command.
type RunOptions struct {
	*RootOptions

	// NoHealth disables the liveness endpoint.
	NoHealth bool
}

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &RunOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Start the Telegram bot",
		Long: `Start the bot: load the catalog from the configured storage, serve the
liveness endpoint and long-poll Telegram until interrupted.

The bot token is read from telegram.token, SCHOOLBOT_TELEGRAM_TOKEN or
BOT_TOKEN. ADMIN_USER_ID restricts the admin panel to one user.

Example:
  BOT_TOKEN=123:abc ADMIN_USER_ID=42 schoolbot run
  schoolbot run --config ./schoolbot.yaml --verbose`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBot(opts, cmd)
		},
	}

	cmd.Flags().BoolVar(&opts.NoHealth, "no-health", false, "do not serve the liveness endpoint")

	return cmd
}

func runBot(opts *RunOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts.RootOptions)
	if err != nil {
		return err
	}
	if err := cfg.RequireToken(); err != nil {
		return WrapExitError(ExitCommandError, "cannot start bot", err)
	}

	logger := newLogger(opts.RootOptions, cfg, cmd)
	slog.SetDefault(logger)

	parentCtx := cmd.Context()
	if parentCtx == nil {
		parentCtx = context.Background()
	}
	ctx, stop := signal.NotifyContext(parentCtx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	rt, release, err := newRouter(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer release()

	if !opts.NoHealth {
		srv := health.NewServer(cfg.Health.Addr, logger)
		go func() {
			if err := srv.ListenAndServe(ctx); err != nil {
				logger.Error("health endpoint failed", "error", err)
			}
		}()
	}

	bot, err := telegram.Dial(cfg.Telegram.Token, cfg.Telegram.PollTimeout, logger)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to connect to Telegram", err)
	}
	eng := engine.New(rt, bot.Sender(), engine.WithLogger(logger))

	pollErr := make(chan error, 1)
	go func() {
		pollErr <- bot.Poll(ctx, eng)
		eng.Stop()
	}()

	fmt.Fprintln(cmd.OutOrStdout(), "Bot started. Press Ctrl-C to stop.")

	runErr := eng.Run(ctx)
	stop()
	if err := <-pollErr; err != nil && !isShutdown(err) {
		return WrapExitError(ExitFailure, "telegram polling stopped", err)
	}
	if runErr != nil && !isShutdown(runErr) {
		return WrapExitError(ExitFailure, "engine error", runErr)
	}

	logger.Info("bot stopped gracefully")
	return nil
}

// newRouter loads the catalog from configured storage and builds the
// router over it.
func newRouter(ctx context.Context, cfg config.Config, logger *slog.Logger) (*router.Router, func(), error) {
	persister, release, err := openPersister(cfg, logger)
	if err != nil {
		return nil, nil, WrapExitError(ExitCommandError, "failed to open storage", err)
	}

	cat := catalog.New(persister, catalog.WithLogger(logger))
	if err := cat.Load(ctx); err != nil {
		if !catalog.IsPersistFailure(err) {
			release()
			return nil, nil, WrapExitError(ExitCommandError, "failed to load catalog", err)
		}
		logger.Error("could not write initial catalog", "error", err)
	}

	ropts := []router.Option{router.WithLogger(logger)}
	if id, ok := cfg.AdminIdentity(); ok {
		ropts = append(ropts, router.WithAdmin(id))
		logger.Info("admin restricted", "user_id", int64(id))
	} else {
		logger.Warn("ADMIN_USER_ID not set, every user is admin")
	}
	return router.New(cat, session.NewStore(), ropts...), release, nil
}

func isShutdown(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
