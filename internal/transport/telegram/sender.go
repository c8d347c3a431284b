package telegram

import (
	"context"
	"fmt"
	"strings"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/roach88/schoolbot/internal/engine"
	"github.com/roach88/schoolbot/internal/router"
	"github.com/roach88/schoolbot/internal/view"
)

// API is the part of *tgbotapi.BotAPI the sender uses.
type API interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	Request(c tgbotapi.Chattable) (*tgbotapi.APIResponse, error)
}

// Sender delivers router messages through the Bot API.
type Sender struct {
	api API
}

var _ engine.Sender = (*Sender)(nil)

// NewSender creates a Sender.
func NewSender(api API) *Sender {
	return &Sender{api: api}
}

// Deliver sends or edits a message. An edit that would change nothing
// yields engine.ErrNotModified.
func (s *Sender) Deliver(ctx context.Context, env engine.Envelope, msg router.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c := Chattable(env, msg)
	if _, err := s.api.Send(c); err != nil {
		if isNotModified(err) {
			return fmt.Errorf("%w: %v", engine.ErrNotModified, err)
		}
		return fmt.Errorf("telegram: %s: %w", msg.Directive, err)
	}
	return nil
}

// Acknowledge answers a callback query.
func (s *Sender) Acknowledge(ctx context.Context, env engine.Envelope, notice string) error {
	if env.CallbackID == "" {
		return nil
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.api.Request(tgbotapi.NewCallback(env.CallbackID, notice)); err != nil {
		return fmt.Errorf("telegram: answer callback: %w", err)
	}
	return nil
}

// Chattable builds the Bot API request for msg. Edits fall back to a new
// message when there is nothing to edit or the render carries a reply
// keyboard, which Telegram cannot attach to an edited message.
func Chattable(env engine.Envelope, msg router.Message) tgbotapi.Chattable {
	r := msg.Render
	if msg.Directive == router.Edit && env.MessageID != 0 && r.Keyboard != view.KeyboardReply {
		var edit tgbotapi.EditMessageTextConfig
		if r.Keyboard == view.KeyboardInline {
			edit = tgbotapi.NewEditMessageTextAndMarkup(env.Chat, env.MessageID, r.Text, inlineMarkup(r.Rows))
		} else {
			edit = tgbotapi.NewEditMessageText(env.Chat, env.MessageID, r.Text)
		}
		if r.HTML {
			edit.ParseMode = tgbotapi.ModeHTML
		}
		return edit
	}

	out := tgbotapi.NewMessage(env.Chat, r.Text)
	if r.HTML {
		out.ParseMode = tgbotapi.ModeHTML
	}
	switch r.Keyboard {
	case view.KeyboardInline:
		out.ReplyMarkup = inlineMarkup(r.Rows)
	case view.KeyboardReply:
		out.ReplyMarkup = replyMarkup(r.Rows)
	}
	return out
}

func inlineMarkup(rows [][]view.Option) tgbotapi.InlineKeyboardMarkup {
	out := make([][]tgbotapi.InlineKeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.InlineKeyboardButton, 0, len(row))
		for _, o := range row {
			buttons = append(buttons, tgbotapi.NewInlineKeyboardButtonData(o.Label, o.Payload))
		}
		out = append(out, tgbotapi.NewInlineKeyboardRow(buttons...))
	}
	return tgbotapi.NewInlineKeyboardMarkup(out...)
}

func replyMarkup(rows [][]view.Option) tgbotapi.ReplyKeyboardMarkup {
	out := make([][]tgbotapi.KeyboardButton, 0, len(rows))
	for _, row := range rows {
		buttons := make([]tgbotapi.KeyboardButton, 0, len(row))
		for _, o := range row {
			buttons = append(buttons, tgbotapi.NewKeyboardButton(o.Label))
		}
		out = append(out, tgbotapi.NewKeyboardButtonRow(buttons...))
	}
	kb := tgbotapi.NewReplyKeyboard(out...)
	kb.ResizeKeyboard = true
	return kb
}

func isNotModified(err error) bool {
	return strings.Contains(strings.ToLower(err.Error()), "message is not modified")
}
