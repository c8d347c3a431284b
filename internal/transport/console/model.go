package console

import (
	"context"
	"fmt"
	"html"
	"regexp"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/roach88/schoolbot/internal/engine"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

// styles
var (
	titleStyle  = lipgloss.NewStyle().Bold(true).Underline(true)
	userStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("39")).Bold(true)
	botStyle    = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	toastStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Italic(true)
	buttonStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("63"))
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	errorStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// historySize is how many bubbles View shows.
const historySize = 12

var tagPattern = regexp.MustCompile(`</?[a-zA-Z][^>]*>`)

type processedMsg struct {
	err error
}

// Model is the bubbletea model for a console session.
type Model struct {
	ctx       context.Context
	engine    *engine.Engine
	screen    *Screen
	caller    session.Identity
	firstName string
	input     string
	status    string
	err       error
	busy      bool
}

// NewModel creates a console model. Events are processed synchronously
// through eng.Process, so eng's Run loop must not be running.
func NewModel(ctx context.Context, eng *engine.Engine, screen *Screen, caller session.Identity, firstName string) *Model {
	return &Model{
		ctx:       ctx,
		engine:    eng,
		screen:    screen,
		caller:    caller,
		firstName: firstName,
	}
}

func (m *Model) Init() tea.Cmd {
	return m.submit("/start")
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			if m.busy {
				return m, nil
			}
			line := m.input
			m.input = ""
			return m, m.submit(line)
		case tea.KeyBackspace:
			if r := []rune(m.input); len(r) > 0 {
				m.input = string(r[:len(r)-1])
			}
		case tea.KeySpace:
			m.input += " "
		case tea.KeyRunes:
			m.input += string(msg.Runes)
		}
	case processedMsg:
		m.busy = false
		m.err = msg.err
	}
	return m, nil
}

func (m *Model) submit(line string) tea.Cmd {
	env, err := m.screen.Input(line, m.caller, m.firstName)
	if err != nil {
		m.err = err
		return nil
	}
	m.err = nil
	m.busy = true
	env = m.engine.Stamp(env)
	m.status = fmt.Sprintf("event %d", env.Seq)
	return func() tea.Msg {
		return processedMsg{err: m.engine.Process(m.ctx, env)}
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render("schoolbot console"))
	b.WriteString("\n\n")

	bubbles := m.screen.Bubbles()
	if len(bubbles) > historySize {
		bubbles = bubbles[len(bubbles)-historySize:]
	}
	for _, bub := range bubbles {
		b.WriteString(renderBubble(bub))
		b.WriteString("\n")
	}

	if reply := m.screen.ReplyKeyboard(); len(reply) > 0 {
		labels := make([]string, len(reply))
		for i, o := range reply {
			labels[i] = fmt.Sprintf("!%d %s", i+1, o.Label)
		}
		b.WriteString(buttonStyle.Render(strings.Join(labels, "   ")))
		b.WriteString("\n")
	}

	b.WriteString("\n> " + m.input + "\n")
	if m.err != nil {
		b.WriteString(errorStyle.Render(m.err.Error()) + "\n")
	}
	b.WriteString(statusStyle.Render("[enter] send  [:N] inline button  [!N] reply button  [esc] quit  " + m.status))
	return b.String()
}

func renderBubble(b Bubble) string {
	switch b.Author {
	case AuthorUser:
		return userStyle.Render("you: ") + b.Text
	case AuthorToast:
		return toastStyle.Render("» " + b.Text)
	}

	body := b.Render.Text
	if b.Render.HTML {
		body = PlainText(body)
	}
	if b.Render.Keyboard == view.KeyboardInline {
		var rows []string
		n := 0
		for _, row := range b.Render.Rows {
			cells := make([]string, len(row))
			for i, o := range row {
				n++
				cells[i] = fmt.Sprintf("[%d %s]", n, o.Label)
			}
			rows = append(rows, strings.Join(cells, " "))
		}
		body += "\n" + buttonStyle.Render(strings.Join(rows, "\n"))
	}
	return botStyle.Render(body)
}

// PlainText strips HTML tags and entities from a message body.
func PlainText(s string) string {
	return html.UnescapeString(tagPattern.ReplaceAllString(s, ""))
}

// Run starts an interactive console program.
func Run(ctx context.Context, eng *engine.Engine, screen *Screen, caller session.Identity, firstName string) error {
	p := tea.NewProgram(NewModel(ctx, eng, screen, caller, firstName), tea.WithContext(ctx), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	return nil
}
