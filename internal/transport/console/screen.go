// Package console runs the bot in a terminal for local testing: no
// Telegram account, same router and engine.
//
// Input lines:
//
//	/cmd args   run a command
//	:N          press inline button N of the latest inline keyboard
//	!N          press reply keyboard button N (sends its label as text)
//	anything    send as text
package console

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/roach88/schoolbot/internal/engine"
	"github.com/roach88/schoolbot/internal/router"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

// Chat is the chat id used for every console envelope.
const Chat int64 = 1

// Author of a bubble.
type Author int

const (
	AuthorUser Author = iota
	AuthorBot
	AuthorToast
)

// Bubble is one line of the conversation.
type Bubble struct {
	ID     int
	Author Author
	Text   string
	Render view.Render
}

// Screen is the console's engine.Sender. It keeps the conversation and the
// keyboards currently on screen.
type Screen struct {
	mu      sync.Mutex
	bubbles []Bubble
	nextID  int
	reply   []view.Option
}

var _ engine.Sender = (*Screen)(nil)

// NewScreen creates an empty screen.
func NewScreen() *Screen {
	return &Screen{}
}

// Deliver appends a bot message, or rewrites one in place for edits.
func (s *Screen) Deliver(ctx context.Context, env engine.Envelope, msg router.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	r := msg.Render
	if msg.Directive == router.Edit && r.Keyboard != view.KeyboardReply {
		for i := range s.bubbles {
			b := &s.bubbles[i]
			if b.ID != env.MessageID || b.Author != AuthorBot {
				continue
			}
			if b.Render.Equal(r) {
				return engine.ErrNotModified
			}
			b.Render = r
			return nil
		}
	}

	if r.Keyboard == view.KeyboardReply {
		s.reply = r.Options()
	}
	s.nextID++
	s.bubbles = append(s.bubbles, Bubble{ID: s.nextID, Author: AuthorBot, Render: r})
	return nil
}

// Acknowledge shows a non-empty notice as a toast.
func (s *Screen) Acknowledge(ctx context.Context, env engine.Envelope, notice string) error {
	if notice == "" {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.bubbles = append(s.bubbles, Bubble{Author: AuthorToast, Text: notice})
	return nil
}

// Bubbles returns a copy of the conversation.
func (s *Screen) Bubbles() []Bubble {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Bubble(nil), s.bubbles...)
}

// ReplyKeyboard returns the reply keyboard currently shown.
func (s *Screen) ReplyKeyboard() []view.Option {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]view.Option(nil), s.reply...)
}

// Input turns a typed line into an envelope from caller. The line is echoed
// into the conversation.
func (s *Screen) Input(line string, caller session.Identity, firstName string) (engine.Envelope, error) {
	line = strings.TrimSpace(line)
	if line == "" {
		return engine.Envelope{}, fmt.Errorf("empty input")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	ev := router.Event{Caller: caller, FirstName: firstName}
	env := engine.Envelope{Chat: Chat}

	switch {
	case strings.HasPrefix(line, "/"):
		name, args, _ := strings.Cut(line[1:], " ")
		ev.Kind = router.KindCommand
		ev.Name = name
		ev.Body = strings.TrimSpace(args)
		s.echo(line)

	case strings.HasPrefix(line, ":"):
		n, err := buttonIndex(line[1:])
		if err != nil {
			return engine.Envelope{}, err
		}
		b, ok := s.latestInline()
		if !ok {
			return engine.Envelope{}, fmt.Errorf("no inline keyboard on screen")
		}
		opts := b.Render.Options()
		if n > len(opts) {
			return engine.Envelope{}, fmt.Errorf("button %d out of range 1..%d", n, len(opts))
		}
		ev.Kind = router.KindAction
		ev.Payload = opts[n-1].Payload
		env.MessageID = b.ID
		env.CallbackID = strconv.Itoa(b.ID)
		s.echo("[" + opts[n-1].Label + "]")

	case strings.HasPrefix(line, "!"):
		n, err := buttonIndex(line[1:])
		if err != nil {
			return engine.Envelope{}, err
		}
		if n > len(s.reply) {
			return engine.Envelope{}, fmt.Errorf("button %d out of range 1..%d", n, len(s.reply))
		}
		ev.Kind = router.KindText
		ev.Body = s.reply[n-1].Label
		s.echo(ev.Body)

	default:
		ev.Kind = router.KindText
		ev.Body = line
		s.echo(line)
	}

	env.Event = ev
	return env, nil
}

func (s *Screen) echo(text string) {
	s.bubbles = append(s.bubbles, Bubble{Author: AuthorUser, Text: text})
}

func (s *Screen) latestInline() (Bubble, bool) {
	for i := len(s.bubbles) - 1; i >= 0; i-- {
		b := s.bubbles[i]
		if b.Author == AuthorBot && b.Render.Keyboard == view.KeyboardInline {
			return b, true
		}
	}
	return Bubble{}, false
}

func buttonIndex(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil || n < 1 {
		return 0, fmt.Errorf("button number must be 1 or more, got %q", s)
	}
	return n, nil
}
