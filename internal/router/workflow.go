package router

import (
	"context"

	"github.com/roach88/schoolbot/internal/action"
	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

// Phase is the position of a user in the schedule editor.
//
//	Idle ──day──▶ DaySelected ──edit_choose──▶ LessonSelected
//	               ▲   │ add / del_choose / clear      │
//	               │   └───────────────┘               │
//	               └────────────replace────────────────┘
//
// Going back to the day picker returns to Idle from any phase.
type Phase int

const (
	PhaseIdle Phase = iota
	PhaseDaySelected
	PhaseLessonSelected
)

func (p Phase) String() string {
	switch p {
	case PhaseDaySelected:
		return "day_selected"
	case PhaseLessonSelected:
		return "lesson_selected"
	default:
		return "idle"
	}
}

// EditState is the schedule editor state of one user.
type EditState struct {
	Phase  Phase
	Day    catalog.Day
	Lesson int
}

// EditState reports where id is in the schedule editor.
func (r *Router) EditState(id session.Identity) EditState {
	st := r.sessions.Get(id)
	switch {
	case st.EditDay == "":
		return EditState{Phase: PhaseIdle}
	case st.EditLesson > 0:
		return EditState{Phase: PhaseLessonSelected, Day: st.EditDay, Lesson: st.EditLesson}
	default:
		return EditState{Phase: PhaseDaySelected, Day: st.EditDay}
	}
}

func (r *Router) workflow(ctx context.Context, ev Event, a action.Action) (Response, error) {
	if a.Op == action.MenuEditSchedule {
		r.sessions.ResetEdit(ev.Caller)
		return r.show(ev, view.ScheduleDayPicker(r.catalog.Days())), nil
	}
	if a.Op == action.SchedDay {
		r.sessions.SelectDay(ev.Caller, a.Day)
		return r.show(ev, r.editDay(a.Day)), nil
	}

	st := r.EditState(ev.Caller)
	if st.Phase == PhaseIdle {
		return r.notice(ev, view.NoticeSelectDayFirst), errNoEditContext("no day selected")
	}
	day := st.Day

	switch a.Op {
	case action.SchedAddMenu:
		r.sessions.ClearLesson(ev.Caller)
		return r.show(ev, r.addPicker(day)), nil

	case action.SchedAdd:
		err := r.catalog.AppendLesson(ctx, day, a.Subject)
		if err != nil && !catalog.IsPersistFailure(err) {
			return r.reject(ev, err)
		}
		r.sessions.ClearLesson(ev.Caller)
		resp := r.show(ev, r.addPicker(day))
		resp.Notice = view.NoticeLessonAdded
		return r.applied(ev, resp, err)

	case action.SchedEditMenu:
		r.sessions.ClearLesson(ev.Caller)
		return r.show(ev, view.LessonPicker(day, r.catalog.DaySchedule(day))), nil

	case action.SchedEditChoose:
		lessons := r.catalog.DaySchedule(day)
		if a.Index < 1 || a.Index > len(lessons) {
			return r.notice(ev, view.NoticeBadLesson), catalog.NewIndexOutOfRange(day, a.Index, len(lessons))
		}
		r.sessions.SelectLesson(ev.Caller, a.Index)
		return r.show(ev, view.ReplacementPicker(day, lessons[a.Index-1], r.catalog.Subjects())), nil

	case action.SchedReplace:
		if st.Phase != PhaseLessonSelected {
			return r.notice(ev, view.NoticeNoLessonSelected), errNoEditContext("no lesson selected")
		}
		err := r.catalog.ReplaceLessonAt(ctx, day, st.Lesson, a.Subject)
		if err != nil && !catalog.IsPersistFailure(err) {
			return r.reject(ev, err)
		}
		r.sessions.ClearLesson(ev.Caller)
		resp := r.show(ev, r.editDay(day))
		resp.Notice = view.NoticeLessonReplaced
		return r.applied(ev, resp, err)

	case action.SchedDeleteMenu:
		r.sessions.ClearLesson(ev.Caller)
		return r.show(ev, view.DeleteLessonPicker(day, len(r.catalog.DaySchedule(day)))), nil

	case action.SchedDeleteChoose:
		err := r.catalog.RemoveLessonAt(ctx, day, a.Index)
		if err != nil && !catalog.IsPersistFailure(err) {
			return r.reject(ev, err)
		}
		r.sessions.ClearLesson(ev.Caller)
		resp := r.show(ev, r.editDay(day))
		resp.Notice = view.NoticeLessonRemoved
		return r.applied(ev, resp, err)

	case action.SchedClear:
		err := r.catalog.ClearDay(ctx, day)
		if err != nil && !catalog.IsPersistFailure(err) {
			return r.reject(ev, err)
		}
		r.sessions.ClearLesson(ev.Caller)
		resp := r.show(ev, r.editDay(day))
		resp.Notice = view.NoticeDayCleared
		return r.applied(ev, resp, err)
	}
	return r.show(ev, view.AdminMenu()), nil
}

func (r *Router) editDay(day catalog.Day) view.Render {
	return view.EditDay(day, r.catalog.DaySchedule(day))
}

func (r *Router) addPicker(day catalog.Day) view.Render {
	return view.AddLessonPicker(day, r.catalog.DaySchedule(day), r.catalog.Subjects())
}
