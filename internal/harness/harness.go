package harness

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/engine"
	"github.com/roach88/schoolbot/internal/router"
	"github.com/roach88/schoolbot/internal/session"
)

// DefaultToday is the date scenarios run on unless they set today.
const DefaultToday = "2024-01-01"

// errSaveFailed is what saves return in fail_saves scenarios.
var errSaveFailed = errors.New("disk full")

// Result is the outcome of a scenario run.
type Result struct {
	Name string `json:"name"`

	// Pass is true when every expectation and assertion held.
	Pass bool `json:"pass"`

	// Errors describes each failed expectation or assertion.
	Errors []string `json:"errors,omitempty"`

	// Transcript is the rendered conversation.
	Transcript string `json:"-"`
}

// AddError adds a failure and marks the result as failed.
func (r *Result) AddError(format string, args ...any) {
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
	r.Pass = false
}

// recorder wraps the router to keep the last response and error, which the
// engine consumes.
type recorder struct {
	router *router.Router
	resp   router.Response
	err    error
}

func (r *recorder) Handle(ctx context.Context, ev router.Event) (router.Response, error) {
	r.resp, r.err = r.router.Handle(ctx, ev)
	return r.resp, r.err
}

// Option configures a run.
type Option func(*runConfig)

type runConfig struct {
	logger *slog.Logger
}

// WithLogger routes component logs to l. Runs are silent by default.
func WithLogger(l *slog.Logger) Option {
	return func(c *runConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// Run executes a scenario against a fresh catalog.
//
// The returned error covers setup failures only; failed expectations are
// reported in the Result.
func Run(ctx context.Context, s *Scenario, opts ...Option) (*Result, error) {
	cfg := runConfig{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
	for _, opt := range opts {
		opt(&cfg)
	}

	today := DefaultToday
	if s.Today != "" {
		today = s.Today
	}
	now, err := time.Parse(time.DateOnly, today)
	if err != nil {
		return nil, fmt.Errorf("today: %w", err)
	}

	seed := catalog.Defaults()
	if s.Seed == SeedEmpty {
		seed = catalog.Empty()
	}

	persister := catalog.NewMemoryPersister()
	if s.FailSaves {
		persister.SaveErr = errSaveFailed
	}
	cat := catalog.New(persister, catalog.WithSnapshot(seed), catalog.WithLogger(cfg.logger))
	sessions := session.NewStore()

	routerOpts := []router.Option{
		router.WithClock(func() time.Time { return now }),
		router.WithLogger(cfg.logger),
	}
	if s.Admin != 0 {
		routerOpts = append(routerOpts, router.WithAdmin(session.Identity(s.Admin)))
	}
	rt := router.New(cat, sessions, routerOpts...)
	rec := &recorder{router: rt}

	ids := make([]string, len(s.Steps))
	for i := range ids {
		ids[i] = fmt.Sprintf("evt-%03d", i+1)
	}
	tr := newTranscript(s.Name)
	eng := engine.New(rec, tr,
		engine.WithIDGenerator(engine.NewFixedGenerator(ids...)),
		engine.WithLogger(cfg.logger),
	)

	result := &Result{Name: s.Name, Pass: true}
	for i, step := range s.Steps {
		caller := step.As
		if caller == 0 {
			caller = s.Admin
		}
		if caller == 0 {
			caller = 1
		}

		env, what := envelope(step, session.Identity(caller))
		if env.Event.Kind == router.KindAction {
			env.MessageID = tr.target()
			env.CallbackID = fmt.Sprintf("cb-%d", i+1)
		}
		env = eng.Stamp(env)
		tr.step(env.Seq, caller, what)

		if err := eng.Process(ctx, env); err != nil {
			return nil, fmt.Errorf("steps[%d]: %w", i, err)
		}
		if rec.err != nil {
			tr.rejected(errorCode(rec.err))
		}

		if step.Expect != nil {
			checkStep(result, i, step.Expect, rec, rt, sessions, session.Identity(caller))
		}
	}

	checkAssertions(result, s.Assertions, cat, persister)
	result.Transcript = tr.String()
	return result, nil
}

func envelope(step Step, caller session.Identity) (engine.Envelope, string) {
	ev := router.Event{Caller: caller, FirstName: step.Name}
	var what string
	switch {
	case step.Command != "":
		name, args, _ := strings.Cut(strings.TrimPrefix(step.Command, "/"), " ")
		ev.Kind = router.KindCommand
		ev.Name = name
		ev.Body = args
		what = "/" + strings.TrimPrefix(step.Command, "/")
	case step.Press != "":
		ev.Kind = router.KindAction
		ev.Payload = step.Press
		what = "press " + step.Press
	default:
		ev.Kind = router.KindText
		ev.Body = step.Say
		what = "say " + step.Say
	}
	return engine.Envelope{Event: ev, Chat: int64(caller)}, what
}

// errorCode names a handler error for transcripts and expectations.
func errorCode(err error) string {
	var (
		re *router.Error
		ce *catalog.Error
	)
	switch {
	case err == nil:
		return "none"
	case errors.As(err, &re):
		return string(re.Code)
	case errors.As(err, &ce):
		return string(ce.Code)
	case catalog.IsPersistFailure(err):
		return "PERSISTENCE_FAILURE"
	default:
		return "ERROR"
	}
}

func checkStep(result *Result, i int, want *Expect, rec *recorder, rt *router.Router, sessions *session.Store, caller session.Identity) {
	resp := rec.resp
	fail := func(format string, args ...any) {
		result.AddError("steps[%d]: "+format, append([]any{i}, args...)...)
	}

	if want.Error != "" {
		if got := errorCode(rec.err); !strings.EqualFold(got, want.Error) {
			fail("error = %s, want %s", got, want.Error)
		}
	}

	if want.Notice != nil {
		got := resp.Notice
		if got == "" && len(resp.Messages) > 0 {
			last := resp.Messages[len(resp.Messages)-1].Render
			if len(last.Rows) == 0 {
				got = last.Text
			}
		}
		if got != *want.Notice {
			fail("notice = %q, want %q", got, *want.Notice)
		}
	}

	if want.Messages != nil && len(resp.Messages) != *want.Messages {
		fail("messages = %d, want %d", len(resp.Messages), *want.Messages)
	}

	needLast := want.Directive != "" || len(want.Contains) > 0 || len(want.Payloads) > 0
	if needLast {
		if len(resp.Messages) == 0 {
			fail("no message delivered")
		} else {
			last := resp.Messages[len(resp.Messages)-1]
			if want.Directive != "" && last.Directive.String() != want.Directive {
				fail("directive = %s, want %s", last.Directive, want.Directive)
			}
			for _, sub := range want.Contains {
				if !strings.Contains(last.Render.Text, sub) {
					fail("text %q does not contain %q", last.Render.Text, sub)
				}
			}
			var payloads []string
			for _, o := range last.Render.Options() {
				payloads = append(payloads, o.Payload)
			}
			for _, p := range want.Payloads {
				if !slices.Contains(payloads, p) {
					fail("payload %q not offered, have %v", p, payloads)
				}
			}
		}
	}

	if want.Phase != "" {
		if got := rt.EditState(caller).Phase.String(); got != want.Phase {
			fail("phase = %s, want %s", got, want.Phase)
		}
	}
	if want.Pending != "" {
		if got := sessions.Get(caller).Pending.Mode.String(); got != want.Pending {
			fail("pending = %s, want %s", got, want.Pending)
		}
	}
}

func checkAssertions(result *Result, assertions []Assertion, cat *catalog.Store, p *catalog.MemoryPersister) {
	for i, a := range assertions {
		fail := func(format string, args ...any) {
			result.AddError("assertions[%d] %s: "+format, append([]any{i, a.Type}, args...)...)
		}
		day := catalog.Day(a.Day)

		switch a.Type {
		case AssertLessons:
			keys, ok := cat.Lessons(day)
			if !ok {
				fail("day %s is absent", day)
				continue
			}
			want := a.Keys
			if want == nil {
				want = []string{}
			}
			if !slices.Equal(keys, want) {
				fail("lessons = %v, want %v", keys, want)
			}

		case AssertDayAbsent:
			if cat.HasDay(day) {
				fail("day %s is present", day)
			}

		case AssertSubject:
			subj, ok := cat.Subject(a.Key)
			if !ok {
				fail("subject %q not found", a.Key)
				continue
			}
			if a.Name != nil && subj.Name != *a.Name {
				fail("name = %q, want %q", subj.Name, *a.Name)
			}
			if a.Homework != nil && subj.Homework != *a.Homework {
				fail("homework = %q, want %q", subj.Homework, *a.Homework)
			}

		case AssertSubjectAbsent:
			if _, ok := cat.Subject(a.Key); ok {
				fail("subject %q exists", a.Key)
			}

		case AssertSubjectCount:
			if n := len(cat.Subjects()); n != a.Count {
				fail("subjects = %d, want %d", n, a.Count)
			}

		case AssertSaves:
			if n := p.Saves(); n != a.Count {
				fail("saves = %d, want %d", n, a.Count)
			}
		}
	}
}
