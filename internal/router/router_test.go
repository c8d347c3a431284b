package router

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/schoolbot/internal/catalog"
	"github.com/roach88/schoolbot/internal/session"
	"github.com/roach88/schoolbot/internal/view"
)

func TestHandle_BrowseSubjects(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	resp := f.do(t, press(userID, "menu:subjects"))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, Edit, resp.Messages[0].Directive)
	assert.Equal(t, "Выбери предмет:", resp.Messages[0].Render.Text)
	assert.Contains(t, payloadsOf(resp.Messages[0].Render), "subject:math")

	detail := last(t, f.do(t, press(userID, "subject:math")))
	assert.True(t, detail.HTML)
	assert.Contains(t, detail.Text, "<b>Математика</b>")
	assert.Contains(t, detail.Text, "- Понедельник (урок 1)")
	assert.Contains(t, detail.Text, "- Вторник (урок 4)")
}

func TestHandle_UnknownSubjectNotice(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	resp, err := f.router.Handle(context.Background(), press(userID, "subject:ghost"))
	require.NoError(t, err)
	assert.Equal(t, view.NoticeUnknownSubject, resp.Notice)
	assert.Empty(t, resp.Messages)
}

func TestHandle_DaySchedule(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	r := last(t, f.do(t, press(userID, "day:wed")))
	assert.Equal(t, "Расписание на Среда:\n1. Биология\n2. Литература\n3. Английский язык", r.Text)

	r = last(t, f.do(t, press(userID, "day:sun")))
	assert.Equal(t, "На Воскресенье занятий нет.", r.Text)
}

func TestHandle_MenuLabelsAsText(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	resp := f.do(t, say(userID, view.LabelSubjects))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, Send, resp.Messages[0].Directive)
	assert.Equal(t, "Выбери предмет:", resp.Messages[0].Render.Text)

	r := last(t, f.do(t, say(userID, "  "+view.LabelTomorrow+" ")))
	assert.Equal(t, view.KeyboardReply, r.Keyboard)
	assert.Contains(t, r.Text, "ДЗ на завтра (Вторник):")
	assert.Contains(t, r.Text, "1. <b>История</b>: Параграф 12, конспект")
}

func TestHandle_AdminLabelRejectedForUser(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	resp, err := f.router.Handle(context.Background(), say(userID, view.LabelAdmin))
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, view.NoticeAdminOnly, last(t, resp).Text)

	r := last(t, f.do(t, say(adminID, view.LabelAdmin)))
	assert.Equal(t, "Админ-панель:", r.Text)
}

func TestHandle_UnknownTextSuggestsLabel(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	r := last(t, f.do(t, say(userID, "Предметы")))
	assert.Contains(t, r.Text, view.LabelSubjects)

	r = last(t, f.do(t, say(userID, "как дела?")))
	assert.Equal(t, view.UnknownText(""), r.Text)
}

func TestHandle_MainMenuAdminButton(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	user := last(t, f.do(t, cmdEvent(userID, "start")))
	admin := last(t, f.do(t, cmdEvent(adminID, "start")))
	assert.Len(t, user.Options(), 3)
	assert.Len(t, admin.Options(), 4)
}

func TestHandle_UnauthorizedEditNeverMutates(t *testing.T) {
	payloads := []string{
		"menu:admin", "menu:add_subject", "menu:edit_hw", "menu:edit_sched", "menu:rename_subj",
		"menu:del_subject", "menu:days_manage", "menu:days_manage:create", "menu:days_manage:delete",
		"edit:hw:math", "edit:rename:math", "edit:del_subj:math", "edit:add_subject",
		"edit:days:create:sun", "edit:days:delete:mon", "edit:sched:day:mon", "edit:sched:add",
		"edit:sched:add:math", "edit:sched:edit", "edit:sched:edit_choose:1", "edit:sched:replace:geo",
		"edit:sched:del", "edit:sched:del_choose:1", "edit:sched:clear", "edit:sched:days:clear",
		"edit:whatever", "unknown:payload",
		"edit:sched:day:xyz", "edit:sched:del_choose:abc", "edit:sched:edit_choose:two",
		"edit:days:create:funday",
	}
	f := newFixture(t, catalog.Defaults())
	before := f.catalog.Snapshot()

	for _, p := range payloads {
		t.Run(p, func(t *testing.T) {
			resp, err := f.router.Handle(context.Background(), press(userID, p))
			assert.True(t, IsUnauthorized(err), "got %v", err)
			assert.Equal(t, view.NoticeAdminOnly, resp.Notice)
			assert.Empty(t, resp.Messages)
		})
	}
	assert.Equal(t, before, f.catalog.Snapshot())
	assert.Zero(t, f.persister.Saves())
	assert.Equal(t, session.State{}, f.sessions.Get(userID))
}

func TestHandle_NoAdminConfiguredEveryoneIsAdmin(t *testing.T) {
	c := catalog.New(catalog.NewMemoryPersister())
	r := New(c, session.NewStore())

	resp, err := r.Handle(context.Background(), press(userID, "menu:admin"))
	require.NoError(t, err)
	assert.Equal(t, "Админ-панель:", last(t, resp).Text)
	assert.True(t, r.IsAdmin(12345))
}

func TestHandle_FallbackShowsAdminMenu(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	resp, err := f.router.Handle(context.Background(), press(adminID, "edit:sched:nonsense"))
	require.NoError(t, err)
	assert.Equal(t, Edit, resp.Messages[0].Directive)
	assert.Equal(t, "Админ-панель:", last(t, resp).Text)
}

func TestHandle_MalformedPayload(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	f.do(t, press(adminID, "edit:sched:day:mon"))

	resp, err := f.router.Handle(context.Background(), press(adminID, "edit:sched:del_choose:x"))
	assert.True(t, IsMalformedInput(err))
	assert.Equal(t, view.NoticeBadNumber, resp.Notice)

	resp, err = f.router.Handle(context.Background(), press(userID, "day:someday"))
	assert.True(t, IsMalformedInput(err))
	assert.Equal(t, view.NoticeUnknownDay, resp.Notice)
}

func TestHandle_EditHomework(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	prompt := last(t, f.do(t, press(adminID, "edit:hw:phys")))
	assert.Equal(t, "Введи новое ДЗ для Физика сообщением.", prompt.Text)
	assert.Equal(t, session.ModeHomework, f.sessions.Get(adminID).Pending.Mode)

	resp, err := f.router.Handle(context.Background(), say(adminID, "  Задачи 5-9  "))
	require.NoError(t, err)
	assert.Equal(t, "ДЗ для Физика обновлено.", last(t, resp).Text)
	assert.Equal(t, view.KeyboardReply, last(t, resp).Keyboard)

	subj, _ := f.catalog.Subject("phys")
	assert.Equal(t, "Задачи 5-9", subj.Homework)
	assert.False(t, f.sessions.Get(adminID).Pending.Active(), "mode cleared on consume")
}

func TestHandle_PendingTakesPriorityOverLabels(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	f.do(t, press(adminID, "edit:hw:cs"))

	f.do(t, say(adminID, view.LabelSubjects))

	subj, _ := f.catalog.Subject("cs")
	assert.Equal(t, view.LabelSubjects, subj.Homework)
}

func TestHandle_RenameSubject(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	f.do(t, press(adminID, "edit:rename:lit"))

	r := last(t, f.do(t, say(adminID, "Русская литература")))
	assert.Equal(t, "Название предмета обновлено: Литература → Русская литература", r.Text)

	subj, ok := f.catalog.Subject("lit")
	require.True(t, ok)
	assert.Equal(t, "Русская литература", subj.Name)
}

func TestHandle_RenameEmptyRejected(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	f.do(t, press(adminID, "edit:rename:lit"))

	_, err := f.router.Handle(context.Background(), say(adminID, "   "))
	assert.True(t, IsMalformedInput(err))
	subj, _ := f.catalog.Subject("lit")
	assert.Equal(t, "Литература", subj.Name)
}

func TestHandle_PendingInputFromNonAdminIsDropped(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	// A session left over from when the caller was admin.
	f.sessions.Expect(userID, session.Pending{Mode: session.ModeHomework, Subject: "math"})

	resp, err := f.router.Handle(context.Background(), say(userID, "hack"))
	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, view.NoticeEditAdminOnly, last(t, resp).Text)

	subj, _ := f.catalog.Subject("math")
	assert.Equal(t, "Решить задачи №1-10 на стр. 25", subj.Homework)
	assert.False(t, f.sessions.Get(userID).Pending.Active())
}

func TestHandle_AddSubjectSimple(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	prompt := last(t, f.do(t, press(adminID, "menu:add_subject")))
	assert.Contains(t, prompt.Text, "Ключ сгенерируется автоматически.")

	r := last(t, f.do(t, say(adminID, "Физика-2: Задачи 1-5")))
	assert.Equal(t, "Предмет добавлен: Физика-2 (ключ: fizika_2)", r.Text)

	f.do(t, press(adminID, "edit:create_subject"))
	r = last(t, f.do(t, say(adminID, "Физика-2")))
	assert.Equal(t, "Предмет добавлен: Физика-2 (ключ: fizika_2_2)", r.Text)

	subj, ok := f.catalog.Subject("fizika_2")
	require.True(t, ok)
	assert.Equal(t, "Задачи 1-5", subj.Homework)
}

func TestHandle_AddSubjectSimpleEmptyName(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	f.do(t, press(adminID, "menu:add_subject"))

	resp, err := f.router.Handle(context.Background(), say(adminID, ": только дз"))
	assert.True(t, IsMalformedInput(err))
	assert.Equal(t, view.NoticeKeyNameRequired, last(t, resp).Text)
	assert.Len(t, f.catalog.Subjects(), 10)
}

func TestHandle_AddSubjectStructured(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		notice  string
		check   func(error) bool
		created bool
	}{
		{"full", "Art;ИЗО;рисунок; натюрморт", "Предмет добавлен: ИЗО (ключ: art)", nil, true},
		{"no homework", "music;Музыка", "Предмет добавлен: Музыка (ключ: music)", nil, true},
		{"one field", "music", view.NoticeBadFormat, IsMalformedInput, false},
		{"empty name", "music; ;x", view.NoticeKeyNameRequired, IsMalformedInput, false},
		{"duplicate", "math;Алгебра;", view.NoticeDuplicateKey, catalog.IsDuplicateKey, false},
		{"bad key", "му;Музыка", view.NoticeBadKey, catalog.IsInvalidSubject, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t, catalog.Defaults())
			f.do(t, cmdEvent(adminID, "/newsubject"))

			resp, err := f.router.Handle(context.Background(), say(adminID, tt.input))
			assert.Equal(t, tt.notice, last(t, resp).Text)
			if tt.check != nil {
				assert.True(t, tt.check(err), "got %v", err)
			} else {
				assert.NoError(t, err)
			}
			if tt.created {
				assert.Len(t, f.catalog.Subjects(), 11)
			} else {
				assert.Len(t, f.catalog.Subjects(), 10)
			}
			assert.False(t, f.sessions.Get(adminID).Pending.Active())
		})
	}
}

func TestHandle_StructuredHomeworkKeepsSemicolons(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	f.do(t, cmdEvent(adminID, "newsubject"))
	f.do(t, say(adminID, "art;ИЗО;рисунок; натюрморт"))

	subj, ok := f.catalog.Subject("art")
	require.True(t, ok)
	assert.Equal(t, "рисунок; натюрморт", subj.Homework)
}

func TestHandle_DeleteSubject(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	resp := f.do(t, press(adminID, "edit:del_subj:eng"))
	r := last(t, resp)
	assert.Equal(t, Send, resp.Messages[0].Directive)
	assert.Equal(t, "Предмет 'Английский язык' удалён, расписание обновлено.", r.Text)

	for _, d := range catalog.Week {
		keys, _ := f.catalog.Lessons(d)
		assert.NotContains(t, keys, "eng")
	}
}

func TestHandle_DayManagement(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	create := last(t, f.do(t, press(adminID, "menu:days_manage:create")))
	assert.Equal(t, []string{"edit:days:create:sun", "menu:days_manage"}, payloadsOf(create))

	r := last(t, f.do(t, press(adminID, "edit:days:create:sun")))
	assert.Equal(t, "День создан: Воскресенье", r.Text)
	assert.True(t, f.catalog.HasDay(catalog.Sunday))

	r = last(t, f.do(t, press(adminID, "edit:days:delete:sat")))
	assert.Equal(t, "День удалён: Суббота", r.Text)
	assert.False(t, f.catalog.HasDay(catalog.Saturday))

	del := last(t, f.do(t, press(adminID, "menu:days_manage:delete")))
	assert.NotContains(t, payloadsOf(del), "edit:days:delete:sat")
	assert.Contains(t, payloadsOf(del), "edit:days:delete:sun")
}

func TestHandle_BackMainCancelsSession(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	f.do(t, press(adminID, "edit:sched:day:mon"))
	f.do(t, press(adminID, "edit:hw:math"))

	resp := f.do(t, press(adminID, "back:main"))
	require.Len(t, resp.Messages, 1)
	assert.Equal(t, Send, resp.Messages[0].Directive)
	assert.Equal(t, "Главное меню:", resp.Messages[0].Render.Text)
	assert.Equal(t, session.State{}, f.sessions.Get(adminID))
}

func TestHandle_PersistFailureWarns(t *testing.T) {
	f := newFixture(t, catalog.Defaults())
	f.persister.SaveErr = errors.New("disk full")
	f.do(t, press(adminID, "edit:sched:day:fri"))

	resp, err := f.router.Handle(context.Background(), press(adminID, "edit:sched:add:geo"))
	assert.True(t, catalog.IsPersistFailure(err))
	assert.Equal(t, view.NoticeNotSaved, resp.Notice)
	keys, _ := f.catalog.Lessons(catalog.Friday)
	assert.Equal(t, []string{"phys", "eng", "cs", "geo"}, keys)

	f.do(t, press(adminID, "edit:hw:geo"))
	resp, err = f.router.Handle(context.Background(), say(adminID, "Контурная карта"))
	assert.True(t, catalog.IsPersistFailure(err))
	require.Len(t, resp.Messages, 2)
	assert.Equal(t, "ДЗ для География обновлено.", resp.Messages[0].Render.Text)
	assert.Equal(t, view.NoticeNotSaved, resp.Messages[1].Render.Text)
}

func TestHandle_Commands(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	r := last(t, f.do(t, Event{Kind: KindCommand, Caller: userID, Name: "start", FirstName: "Аня"}))
	assert.Contains(t, r.Text, "Привет, Аня!")

	r = last(t, f.do(t, cmdEvent(userID, "/help@SchoolBot")))
	assert.Contains(t, r.Text, "Доступные команды:")

	r = last(t, f.do(t, cmdEvent(userID, "tomorrow")))
	assert.Contains(t, r.Text, "ДЗ на завтра (Вторник):")

	r = last(t, f.do(t, cmdEvent(userID, "hepl")))
	assert.Equal(t, view.UnknownCommand("help"), r.Text)

	r = last(t, f.do(t, cmdEvent(userID, "weather")))
	assert.Equal(t, view.UnknownCommand(""), r.Text)
}

func TestHandle_AdminCommandsRejectedForUser(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	for _, name := range []string{"reload", "save", "newsubject"} {
		resp, err := f.router.Handle(context.Background(), cmdEvent(userID, name))
		assert.True(t, IsUnauthorized(err), name)
		assert.Equal(t, view.NoticeAdminOnlyCommand, last(t, resp).Text)
	}
	assert.Zero(t, f.persister.Saves())
}

func TestHandle_SaveAndReload(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	r := last(t, f.do(t, cmdEvent(adminID, "save")))
	assert.Equal(t, view.NoticeSaved, r.Text)
	assert.Equal(t, 1, f.persister.Saves())

	stored, _ := f.persister.Stored()
	stored.Subjects[0].Name = "Алгебра"
	require.NoError(t, f.persister.Save(context.Background(), stored))

	r = last(t, f.do(t, cmdEvent(adminID, "reload")))
	assert.Equal(t, view.NoticeReloaded, r.Text)
	subj, _ := f.catalog.Subject("math")
	assert.Equal(t, "Алгебра", subj.Name)
}

func TestHandle_Cancel(t *testing.T) {
	f := newFixture(t, catalog.Defaults())

	r := last(t, f.do(t, cmdEvent(adminID, "cancel")))
	assert.Equal(t, view.NoticeNothingToCancel, r.Text)

	f.do(t, press(adminID, "menu:add_subject"))
	r = last(t, f.do(t, cmdEvent(adminID, "cancel")))
	assert.Equal(t, view.NoticeCancelled, r.Text)
	assert.False(t, f.sessions.Get(adminID).Pending.Active())
}

func TestCommandName(t *testing.T) {
	assert.Equal(t, "help", CommandName("/Help@SchoolBot"))
	assert.Equal(t, "start", CommandName("/start payload"))
	assert.Equal(t, "tomorrow", CommandName("tomorrow"))
}
