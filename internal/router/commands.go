package router

import (
	"context"
	"strings"

	"github.com/roach88/schoolbot/internal/action"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

type commandFunc func(r *Router, ctx context.Context, ev Event) (Response, error)

type command struct {
	admin bool
	run   commandFunc
}

var commands = map[string]command{
	"start":      {run: (*Router).cmdStart},
	"help":       {run: (*Router).cmdHelp},
	"tomorrow":   {run: (*Router).cmdTomorrow},
	"cancel":     {run: (*Router).cmdCancel},
	"newsubject": {admin: true, run: (*Router).cmdNewSubject},
	"reload":     {admin: true, run: (*Router).cmdReload},
	"save":       {admin: true, run: (*Router).cmdSave},
}

// Commands returns the known command names.
func Commands() []string {
	return []string{"start", "help", "tomorrow", "cancel", "newsubject", "reload", "save"}
}

// CommandName normalises "/Help@SchoolBot" to "help".
func CommandName(s string) string {
	s = strings.TrimPrefix(strings.TrimSpace(s), "/")
	if i := strings.IndexAny(s, "@ "); i >= 0 {
		s = s[:i]
	}
	return strings.ToLower(s)
}

func (r *Router) handleCommand(ctx context.Context, ev Event) (Response, error) {
	name := CommandName(ev.Name)
	cmd, ok := commands[name]
	if !ok {
		suggestion := nearest(name, Commands(), 2)
		return r.send(view.MainMenu(view.UnknownCommand(suggestion), r.IsAdmin(ev.Caller))), nil
	}
	if cmd.admin && !r.IsAdmin(ev.Caller) {
		return r.send(view.Plain(view.NoticeAdminOnlyCommand)), errUnauthorized("/" + name)
	}
	r.logger.Debug("command", "name", name, "caller", int64(ev.Caller))
	return cmd.run(r, ctx, ev)
}

func (r *Router) cmdStart(ctx context.Context, ev Event) (Response, error) {
	return r.send(view.Greeting(ev.FirstName, r.IsAdmin(ev.Caller))), nil
}

func (r *Router) cmdHelp(ctx context.Context, ev Event) (Response, error) {
	return r.send(view.Help(r.IsAdmin(ev.Caller))), nil
}

func (r *Router) cmdTomorrow(ctx context.Context, ev Event) (Response, error) {
	return r.dispatch(ctx, ev, action.Action{Op: action.MenuTomorrow})
}

func (r *Router) cmdCancel(ctx context.Context, ev Event) (Response, error) {
	text := view.NoticeNothingToCancel
	if r.sessions.Get(ev.Caller) != (session.State{}) {
		text = view.NoticeCancelled
	}
	r.sessions.Cancel(ev.Caller)
	return r.send(view.MainMenu(text, r.IsAdmin(ev.Caller))), nil
}

func (r *Router) cmdNewSubject(ctx context.Context, ev Event) (Response, error) {
	r.sessions.Expect(ev.Caller, session.Pending{Mode: session.ModeNewSubjectStructured})
	return r.send(view.StructuredSubjectPrompt()), nil
}

func (r *Router) cmdReload(ctx context.Context, ev Event) (Response, error) {
	if err := r.catalog.Load(ctx); err != nil {
		return r.send(view.Plain(view.NoticeReloadFailed)), err
	}
	return r.send(view.MainMenu(view.NoticeReloaded, true)), nil
}

func (r *Router) cmdSave(ctx context.Context, ev Event) (Response, error) {
	if err := r.catalog.Save(ctx); err != nil {
		return r.send(view.Plain(view.NoticeNotSaved)), err
	}
	return r.send(view.MainMenu(view.NoticeSaved, true)), nil
}
