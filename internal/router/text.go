package router

import (
	"context"
	"strings"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

func (r *Router) handleText(ctx context.Context, ev Event) (Response, error) {
	body := strings.TrimSpace(ev.Body)

	if p, ok := r.sessions.Take(ev.Caller); ok {
		if !r.IsAdmin(ev.Caller) {
			return r.send(view.MainMenu(view.NoticeEditAdminOnly, false)), errUnauthorized("input " + p.Mode.String())
		}
		return r.consume(ctx, ev, p, body)
	}

	if a, ok := LabelAction(body); ok {
		return r.dispatch(ctx, ev, a)
	}

	admin := r.IsAdmin(ev.Caller)
	return r.send(view.MainMenu(view.UnknownText(suggestLabel(body, admin)), admin)), nil
}

// consume applies free text as the input p was waiting for. p has already
// been cleared from the session.
func (r *Router) consume(ctx context.Context, ev Event, p session.Pending, body string) (Response, error) {
	switch p.Mode {
	case session.ModeHomework:
		return r.consumeHomework(ctx, ev, p.Subject, body)
	case session.ModeRename:
		return r.consumeRename(ctx, ev, p.Subject, body)
	case session.ModeNewSubject:
		return r.consumeNewSubject(ctx, ev, body)
	case session.ModeNewSubjectStructured:
		return r.consumeStructuredSubject(ctx, ev, body)
	}
	return r.send(view.Home(true)), errMalformed("unexpected input mode %s", p.Mode)
}

func (r *Router) consumeHomework(ctx context.Context, ev Event, key, body string) (Response, error) {
	subj, ok := r.catalog.Subject(key)
	if !ok {
		return r.send(view.MainMenu(view.NoticeUnknownSubject+".", true)), nil
	}
	err := r.catalog.SetHomework(ctx, key, body)
	if err != nil && !catalog.IsPersistFailure(err) {
		return r.reject(ev, err)
	}
	return r.applied(ev, r.send(view.MainMenu(view.HomeworkUpdated(subj), true)), err)
}

func (r *Router) consumeRename(ctx context.Context, ev Event, key, body string) (Response, error) {
	subj, ok := r.catalog.Subject(key)
	if !ok {
		return r.send(view.MainMenu(view.NoticeUnknownSubject+".", true)), nil
	}
	if body == "" {
		return r.send(view.MainMenu(view.NoticeNameRequired, true)), errMalformed("empty subject name")
	}
	err := r.catalog.RenameSubject(ctx, key, body)
	if err != nil && !catalog.IsPersistFailure(err) {
		return r.reject(ev, err)
	}
	return r.applied(ev, r.send(view.MainMenu(view.SubjectRenamed(subj.Name, body), true)), err)
}

// consumeNewSubject reads "Name" or "Name: homework" and generates the key.
func (r *Router) consumeNewSubject(ctx context.Context, ev Event, body string) (Response, error) {
	name, hw, _ := strings.Cut(body, ":")
	name, hw = strings.TrimSpace(name), strings.TrimSpace(hw)
	if name == "" {
		return r.send(view.BackOnly(view.NoticeKeyNameRequired)), errMalformed("subject name is required")
	}
	subj, err := r.catalog.CreateSubject(ctx, name, hw)
	if err != nil && !catalog.IsPersistFailure(err) {
		return r.rejectNewSubject(ev, err)
	}
	return r.applied(ev, r.send(view.MainMenu(view.SubjectAdded(subj), true)), err)
}

// consumeStructuredSubject reads "key;name;homework". Homework may be empty
// and may itself contain semicolons.
func (r *Router) consumeStructuredSubject(ctx context.Context, ev Event, body string) (Response, error) {
	parts := strings.SplitN(body, ";", 3)
	if len(parts) < 2 {
		return r.send(view.BackOnly(view.NoticeBadFormat)), errMalformed("want key;name;homework, got %q", body)
	}
	key := strings.ToLower(strings.TrimSpace(parts[0]))
	name := strings.TrimSpace(parts[1])
	hw := ""
	if len(parts) == 3 {
		hw = strings.TrimSpace(parts[2])
	}
	if key == "" || name == "" {
		return r.send(view.BackOnly(view.NoticeKeyNameRequired)), errMalformed("key and name are required")
	}

	err := r.catalog.AddSubject(ctx, key, name, hw)
	if err != nil && !catalog.IsPersistFailure(err) {
		return r.rejectNewSubject(ev, err)
	}
	subj := catalog.Subject{Key: key, Name: name, Homework: hw}
	return r.applied(ev, r.send(view.MainMenu(view.SubjectAdded(subj), true)), err)
}

func (r *Router) rejectNewSubject(ev Event, err error) (Response, error) {
	text := view.NoticeBadKey
	if catalog.IsDuplicateKey(err) {
		text = view.NoticeDuplicateKey
	}
	return r.send(view.BackOnly(text)), err
}
