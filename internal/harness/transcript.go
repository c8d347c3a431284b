package harness

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/roach88/schoolbot/internal/engine"
	"github.com/roach88/schoolbot/internal/router"
	"github.com/roach88/schoolbot/internal/view"
)

// transcript is the harness engine.Sender. It keeps the messages on screen
// so presses can target them and writes everything it is asked to show.
type transcript struct {
	mu       sync.Mutex
	buf      strings.Builder
	messages map[int]view.Render
	nextID   int
	inline   int // id of the latest message with an inline keyboard
}

var _ engine.Sender = (*transcript)(nil)

func newTranscript(name string) *transcript {
	t := &transcript{messages: make(map[int]view.Render)}
	fmt.Fprintf(&t.buf, "=== %s\n", name)
	return t
}

func (t *transcript) Deliver(ctx context.Context, env engine.Envelope, msg router.Message) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	id := env.MessageID
	prev, exists := t.messages[id]
	if msg.Directive != router.Edit || !exists {
		t.nextID++
		id = t.nextID
	} else if prev.Equal(msg.Render) {
		fmt.Fprintf(&t.buf, "<<< edit #%d not modified\n", id)
		return engine.ErrNotModified
	}

	t.messages[id] = msg.Render
	if msg.Render.Keyboard == view.KeyboardInline {
		t.inline = id
	}
	t.writeMessage(msg.Directive, id, msg.Render)
	return nil
}

func (t *transcript) Acknowledge(ctx context.Context, env engine.Envelope, notice string) error {
	if notice == "" {
		return nil
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(&t.buf, "~~~ %s\n", notice)
	return nil
}

// target returns the message a button press lands on.
func (t *transcript) target() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.inline
}

func (t *transcript) step(seq int64, caller int64, what string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(&t.buf, ">>> #%d %d %s\n", seq, caller, what)
}

func (t *transcript) rejected(code string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	fmt.Fprintf(&t.buf, "xxx %s\n", code)
}

func (t *transcript) String() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.buf.String()
}

func (t *transcript) writeMessage(d router.Directive, id int, r view.Render) {
	header := fmt.Sprintf("<<< %s #%d", d, id)
	if r.Keyboard != view.KeyboardNone {
		header += " " + r.Keyboard.String()
	}
	if r.HTML {
		header += " html"
	}
	t.buf.WriteString(header + "\n")

	for _, line := range strings.Split(r.Text, "\n") {
		if line == "" {
			t.buf.WriteString("\n")
			continue
		}
		t.buf.WriteString("    " + line + "\n")
	}

	for _, row := range r.Rows {
		cells := make([]string, len(row))
		for i, o := range row {
			if o.Payload == "" {
				cells[i] = "[" + o.Label + "]"
			} else {
				cells[i] = "[" + o.Label + "](" + o.Payload + ")"
			}
		}
		t.buf.WriteString("    " + strings.Join(cells, " ") + "\n")
	}
}
