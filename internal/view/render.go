// Package view builds the messages the bot shows: text plus an optional
// keyboard. Every function is pure; callers pass in the catalog data to show.
package view

import (
	"strings"

	"github.com/roach88/schoolbot/internal/action"
)

// Keyboard is the kind of keyboard attached to a message.
type Keyboard int

const (
	// KeyboardNone attaches nothing.
	KeyboardNone Keyboard = iota

	// KeyboardInline attaches buttons under the message; each button carries
	// a payload.
	KeyboardInline

	// KeyboardReply replaces the user's keyboard; pressing a button sends
	// its label as text.
	KeyboardReply
)

func (k Keyboard) String() string {
	switch k {
	case KeyboardInline:
		return "inline"
	case KeyboardReply:
		return "reply"
	default:
		return "none"
	}
}

// Option is one button. Reply keyboard options have no payload.
type Option struct {
	Label   string
	Payload string
}

// Render is a message to show.
type Render struct {
	Text     string
	HTML     bool
	Keyboard Keyboard
	Rows     [][]Option
}

// Options returns every option in display order.
func (r Render) Options() []Option {
	var out []Option
	for _, row := range r.Rows {
		out = append(out, row...)
	}
	return out
}

// Equal reports whether r and o would display identically.
func (r Render) Equal(o Render) bool {
	if r.Text != o.Text || r.HTML != o.HTML || r.Keyboard != o.Keyboard || len(r.Rows) != len(o.Rows) {
		return false
	}
	for i := range r.Rows {
		if len(r.Rows[i]) != len(o.Rows[i]) {
			return false
		}
		for j := range r.Rows[i] {
			if r.Rows[i][j] != o.Rows[i][j] {
				return false
			}
		}
	}
	return true
}

// Plain is a message without a keyboard.
func Plain(text string) Render {
	return Render{Text: text}
}

func inline(text string, rows ...[]Option) Render {
	return Render{Text: text, Keyboard: KeyboardInline, Rows: rows}
}

func button(label string, a action.Action) Option {
	return Option{Label: label, Payload: a.String()}
}

// grid lays options out perRow per row.
func grid(opts []Option, perRow int) [][]Option {
	var rows [][]Option
	for len(opts) > 0 {
		n := min(perRow, len(opts))
		rows = append(rows, opts[:n:n])
		opts = opts[n:]
	}
	return rows
}

func lines(parts ...string) string {
	return strings.Join(parts, "\n")
}
