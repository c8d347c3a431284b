package telegram

import (
	"context"
	"fmt"
	"log/slog"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/roach88/schoolbot/internal/engine"
)

// Bot owns the Bot API connection.
type Bot struct {
	api         *tgbotapi.BotAPI
	pollTimeout int
	logger      *slog.Logger
}

// Dial authenticates with token and returns a Bot. pollTimeout is the long
// polling timeout in seconds.
func Dial(token string, pollTimeout int, logger *slog.Logger) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, fmt.Errorf("telegram: connect: %w", err)
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("telegram authorized", "username", api.Self.UserName)
	return &Bot{api: api, pollTimeout: pollTimeout, logger: logger}, nil
}

// Sender returns a Sender backed by this connection.
func (b *Bot) Sender() *Sender {
	return NewSender(b.api)
}

// Poll receives updates and enqueues them on eng until ctx is cancelled.
func (b *Bot) Poll(ctx context.Context, eng *engine.Engine) error {
	cfg := tgbotapi.NewUpdate(0)
	cfg.Timeout = b.pollTimeout
	cfg.AllowedUpdates = []string{"message", "callback_query"}

	updates := b.api.GetUpdatesChan(cfg)
	defer b.api.StopReceivingUpdates()

	return Forward(ctx, updates, eng, b.logger)
}

// Forward converts updates to envelopes and enqueues them until ctx is
// cancelled or updates is closed.
func Forward(ctx context.Context, updates <-chan tgbotapi.Update, eng *engine.Engine, logger *slog.Logger) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case u, ok := <-updates:
			if !ok {
				return nil
			}
			env, ok := Envelope(u)
			if !ok {
				logger.Debug("ignoring update", "update_id", u.UpdateID)
				continue
			}
			if !eng.Enqueue(env) {
				return fmt.Errorf("telegram: engine stopped")
			}
		}
	}
}
