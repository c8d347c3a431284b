// Package router turns inbound events into catalog mutations, session
// updates and messages to show.
//
// Three event shapes arrive from a transport: commands, button payloads and
// free text. Payloads decode through package action into a closed set of
// variants and dispatch on Op. Free text first satisfies any pending input
// of the caller, then matches main menu labels, then falls through to an
// "unknown" reply.
//
// Validation failures never escape as errors that stop processing: every
// Handle call yields a Response, and the returned error only describes what
// was rejected so the caller can log it.
//
// The router assumes events for one identity arrive one at a time; the
// engine's single event loop guarantees that.
package router

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/roach88/schoolbot/internal/action"
	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

// EventKind distinguishes inbound event shapes.
type EventKind int

const (
	// KindCommand is a slash command such as /start.
	KindCommand EventKind = iota

	// KindAction is an inline button press carrying a payload.
	KindAction

	// KindText is a free-text message.
	KindText
)

func (k EventKind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindAction:
		return "action"
	case KindText:
		return "text"
	default:
		return "unknown"
	}
}

// Event is one inbound event.
type Event struct {
	Kind   EventKind
	Caller session.Identity

	// FirstName is the caller's display name when the transport knows it.
	FirstName string

	// Name is the command name without the leading slash (KindCommand).
	Name string

	// Payload is the pressed button's payload (KindAction).
	Payload string

	// Body is the message text (KindText).
	Body string
}

// Directive says how a message reaches the user.
type Directive int

const (
	// Send posts a new message.
	Send Directive = iota

	// Edit replaces the message whose button was pressed.
	Edit
)

func (d Directive) String() string {
	if d == Edit {
		return "edit"
	}
	return "send"
}

// Message is one outbound render.
type Message struct {
	Directive Directive
	Render    view.Render
}

// Response is everything produced for one event.
type Response struct {
	// Notice is a short acknowledgement for a button press, shown as a
	// toast. Only set for KindAction events.
	Notice string

	Messages []Message
}

// Router dispatches events. Create one with New.
type Router struct {
	catalog  *catalog.Store
	sessions *session.Store
	admin    session.Identity
	hasAdmin bool
	now      func() time.Time
	logger   *slog.Logger
}

// Option configures a Router.
type Option func(*Router)

// WithAdmin restricts admin actions to id. Without it every caller is admin.
func WithAdmin(id session.Identity) Option {
	return func(r *Router) {
		r.admin = id
		r.hasAdmin = true
	}
}

// WithClock sets the time source used to find tomorrow.
func WithClock(now func() time.Time) Option {
	return func(r *Router) {
		if now != nil {
			r.now = now
		}
	}
}

// WithLogger sets the router logger.
func WithLogger(l *slog.Logger) Option {
	return func(r *Router) {
		if l != nil {
			r.logger = l
		}
	}
}

// New creates a Router over the given catalog and session stores.
func New(c *catalog.Store, s *session.Store, opts ...Option) *Router {
	r := &Router{
		catalog:  c,
		sessions: s,
		now:      time.Now,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// IsAdmin reports whether id may run admin actions.
func (r *Router) IsAdmin(id session.Identity) bool {
	return !r.hasAdmin || id == r.admin
}

// Authorize checks a decoded action against the caller.
func (r *Router) Authorize(id session.Identity, a action.Action) error {
	if a.AdminOnly() && !r.IsAdmin(id) {
		return errUnauthorized(a.Op.String())
	}
	return nil
}

// Handle processes one event.
func (r *Router) Handle(ctx context.Context, ev Event) (Response, error) {
	switch ev.Kind {
	case KindCommand:
		return r.handleCommand(ctx, ev)
	case KindAction:
		return r.handlePayload(ctx, ev)
	case KindText:
		return r.handleText(ctx, ev)
	}
	return Response{}, errMalformed("unknown event kind %d", int(ev.Kind))
}

func (r *Router) handlePayload(ctx context.Context, ev Event) (Response, error) {
	a, err := action.Parse(ev.Payload)
	var pe *action.ParseError
	if errors.As(err, &pe) {
		if pe.AdminOnly() && !r.IsAdmin(ev.Caller) {
			return r.notice(ev, view.NoticeAdminOnly), errUnauthorized(ev.Payload)
		}
		notice := view.NoticeBadNumber
		if pe.Field == "day" {
			notice = view.NoticeUnknownDay
		}
		return r.notice(ev, notice), errMalformed("%v", err)
	}
	if err != nil {
		return r.notice(ev, view.NoticeBadNumber), errMalformed("%v", err)
	}
	return r.dispatch(ctx, ev, a)
}

// dispatch runs the handler for a. Payload and label-table events both end
// up here.
func (r *Router) dispatch(ctx context.Context, ev Event, a action.Action) (Response, error) {
	if err := r.Authorize(ev.Caller, a); err != nil {
		return r.notice(ev, view.NoticeAdminOnly), err
	}
	r.logger.Debug("dispatch", "op", a.Op.String(), "caller", int64(ev.Caller))

	switch a.Op {
	case action.MenuSubjects:
		return r.show(ev, view.SubjectPicker(r.catalog.Subjects())), nil
	case action.MenuDay:
		return r.show(ev, view.DayPicker(r.catalog.Days())), nil
	case action.MenuTomorrow:
		return r.show(ev, r.tomorrow(ev.Caller)), nil
	case action.MenuAdmin, action.Fallback:
		return r.show(ev, view.AdminMenu()), nil
	case action.MenuAddSubject, action.StartSubjectCreation:
		r.sessions.Expect(ev.Caller, session.Pending{Mode: session.ModeNewSubject})
		return r.show(ev, view.AddSubjectPrompt()), nil
	case action.MenuEditHomework:
		return r.show(ev, view.HomeworkSubjectPicker(r.catalog.Subjects())), nil
	case action.MenuRenameSubject:
		return r.show(ev, view.RenameSubjectPicker(r.catalog.Subjects())), nil
	case action.MenuDeleteSubject:
		return r.show(ev, view.DeleteSubjectPicker(r.catalog.Subjects())), nil
	case action.MenuDaysManage:
		return r.show(ev, view.DaysManage()), nil
	case action.MenuDaysCreate:
		return r.show(ev, view.DaysToCreate(r.catalog.MissingDays())), nil
	case action.MenuDaysDelete:
		return r.show(ev, view.DaysToDelete(r.catalog.Days())), nil
	case action.ShowSubject:
		return r.showSubject(ev, a.Subject)
	case action.ShowDay:
		return r.show(ev, view.DaySchedule(a.Day, r.catalog.DaySchedule(a.Day), r.catalog.Days())), nil
	case action.BackMain:
		r.sessions.Cancel(ev.Caller)
		return r.send(view.Home(r.IsAdmin(ev.Caller))), nil
	case action.EditHomework:
		return r.promptFor(ev, a.Subject, session.ModeHomework, view.HomeworkPrompt)
	case action.RenameSubject:
		return r.promptFor(ev, a.Subject, session.ModeRename, view.RenamePrompt)
	case action.DeleteSubject:
		return r.deleteSubject(ctx, ev, a.Subject)
	case action.CreateDay:
		return r.createDay(ctx, ev, a.Day)
	case action.DeleteDay:
		return r.deleteDay(ctx, ev, a.Day)
	case action.MenuEditSchedule, action.SchedDay, action.SchedAddMenu, action.SchedAdd,
		action.SchedEditMenu, action.SchedEditChoose, action.SchedReplace,
		action.SchedDeleteMenu, action.SchedDeleteChoose, action.SchedClear:
		return r.workflow(ctx, ev, a)
	}
	return r.show(ev, view.AdminMenu()), nil
}

func (r *Router) tomorrow(id session.Identity) view.Render {
	day := catalog.Tomorrow(r.now())
	return view.Tomorrow(day, r.catalog.DaySchedule(day), r.IsAdmin(id))
}

func (r *Router) showSubject(ev Event, key string) (Response, error) {
	subj, ok := r.catalog.Subject(key)
	if !ok {
		return r.notice(ev, view.NoticeUnknownSubject), nil
	}
	occ := r.catalog.DaysForSubject(key)
	return r.show(ev, view.SubjectDetail(subj, occ, r.catalog.Subjects())), nil
}

func (r *Router) promptFor(ev Event, key string, mode session.Mode, prompt func(catalog.Subject) view.Render) (Response, error) {
	subj, ok := r.catalog.Subject(key)
	if !ok {
		return r.notice(ev, view.NoticeUnknownSubject), nil
	}
	r.sessions.Expect(ev.Caller, session.Pending{Mode: mode, Subject: key})
	return r.show(ev, prompt(subj)), nil
}

func (r *Router) deleteSubject(ctx context.Context, ev Event, key string) (Response, error) {
	subj, ok := r.catalog.Subject(key)
	if !ok {
		return r.notice(ev, view.NoticeUnknownSubject), nil
	}
	err := r.catalog.DeleteSubject(ctx, key)
	if err != nil && !catalog.IsPersistFailure(err) {
		return r.reject(ev, err)
	}
	return r.applied(ev, r.send(view.MainMenu(view.SubjectDeleted(subj), r.IsAdmin(ev.Caller))), err)
}

func (r *Router) createDay(ctx context.Context, ev Event, day catalog.Day) (Response, error) {
	err := r.catalog.CreateDay(ctx, day)
	if err != nil && !catalog.IsPersistFailure(err) {
		return r.reject(ev, err)
	}
	return r.applied(ev, r.send(view.MainMenu(view.DayCreated(day), r.IsAdmin(ev.Caller))), err)
}

func (r *Router) deleteDay(ctx context.Context, ev Event, day catalog.Day) (Response, error) {
	err := r.catalog.DeleteDay(ctx, day)
	if err != nil && !catalog.IsPersistFailure(err) {
		return r.reject(ev, err)
	}
	return r.applied(ev, r.send(view.MainMenu(view.DayDeleted(day), r.IsAdmin(ev.Caller))), err)
}

// show renders in place for button presses and as a new message otherwise.
// Reply keyboards cannot be attached by editing, so they are always sent.
func (r *Router) show(ev Event, rd view.Render) Response {
	d := Send
	if ev.Kind == KindAction && rd.Keyboard != view.KeyboardReply {
		d = Edit
	}
	return Response{Messages: []Message{{Directive: d, Render: rd}}}
}

func (r *Router) send(rd view.Render) Response {
	return Response{Messages: []Message{{Directive: Send, Render: rd}}}
}

// notice acknowledges a button press with a toast, or replies with plain
// text to commands and free text.
func (r *Router) notice(ev Event, text string) Response {
	if ev.Kind == KindAction {
		return Response{Notice: text}
	}
	return r.send(view.Plain(text))
}

// reject maps a catalog validation error to a notice.
func (r *Router) reject(ev Event, err error) (Response, error) {
	var text string
	switch {
	case catalog.IsNotFound(err), catalog.IsUnknownSubject(err):
		text = view.NoticeUnknownSubject
	case catalog.IsIndexOutOfRange(err):
		text = view.NoticeBadLesson
	case catalog.IsNoChange(err):
		text = view.NoticeSameSubject
	case catalog.IsDuplicateKey(err):
		text = view.NoticeDuplicateKey
	case catalog.IsInvalidSubject(err):
		text = view.NoticeBadKey
	case catalog.IsUnknownDay(err):
		text = view.NoticeUnknownDay
	default:
		r.logger.Error("unexpected catalog error", "error", err)
		text = view.NoticeNotSaved
	}
	return r.notice(ev, text), err
}

// applied finishes a handler whose mutation took effect in memory. A
// persistence failure adds a warning and is passed on.
func (r *Router) applied(ev Event, resp Response, err error) (Response, error) {
	if err == nil {
		return resp, nil
	}
	if ev.Kind == KindAction {
		resp.Notice = view.NoticeNotSaved
	} else {
		resp.Messages = append(resp.Messages, Message{Directive: Send, Render: view.Plain(view.NoticeNotSaved)})
	}
	return resp, err
}
