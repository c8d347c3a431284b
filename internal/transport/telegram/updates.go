package telegram

import (
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/roach88/schoolbot/internal/engine"
	"github.com/roach88/schoolbot/internal/router"
	"github.com/roach88/schoolbot/internal/session"
)

// Envelope converts an update into an engine envelope. ok is false for
// updates the bot does not handle: edits, channel posts, media without text.
func Envelope(u tgbotapi.Update) (env engine.Envelope, ok bool) {
	switch {
	case u.CallbackQuery != nil:
		return fromCallback(u.CallbackQuery)
	case u.Message != nil:
		return fromMessage(u.Message)
	default:
		return engine.Envelope{}, false
	}
}

func fromCallback(q *tgbotapi.CallbackQuery) (engine.Envelope, bool) {
	if q.From == nil {
		return engine.Envelope{}, false
	}
	env := engine.Envelope{
		Event: router.Event{
			Kind:      router.KindAction,
			Caller:    session.Identity(q.From.ID),
			FirstName: q.From.FirstName,
			Payload:   q.Data,
		},
		CallbackID: q.ID,
	}
	if q.Message != nil {
		env.MessageID = q.Message.MessageID
		if q.Message.Chat != nil {
			env.Chat = q.Message.Chat.ID
		}
	}
	if env.Chat == 0 {
		// inline-mode messages have no chat; answer in private
		env.Chat = q.From.ID
	}
	return env, true
}

func fromMessage(m *tgbotapi.Message) (engine.Envelope, bool) {
	if m.From == nil || m.Chat == nil {
		return engine.Envelope{}, false
	}
	ev := router.Event{
		Caller:    session.Identity(m.From.ID),
		FirstName: m.From.FirstName,
	}
	switch {
	case m.IsCommand():
		ev.Kind = router.KindCommand
		ev.Name = m.Command()
		ev.Body = m.CommandArguments()
	case m.Text != "":
		ev.Kind = router.KindText
		ev.Body = m.Text
	default:
		return engine.Envelope{}, false
	}
	return engine.Envelope{Event: ev, Chat: m.Chat.ID}, true
}
