package view

import (
	"fmt"
	"html"

	"github.com/roach88/schoolbot/internal/action"
	"github.com/roach88/schoolbot/internal/catalog"
)

var back = button(LabelBack, action.Action{Op: action.BackMain})

// MainMenu shows text with the main reply keyboard. Admins also get the
// admin button.
func MainMenu(text string, admin bool) Render {
	rows := [][]Option{
		{{Label: LabelSubjects}, {Label: LabelDays}},
		{{Label: LabelTomorrow}},
	}
	if admin {
		rows = append(rows, []Option{{Label: LabelAdmin}})
	}
	return Render{Text: text, Keyboard: KeyboardReply, Rows: rows}
}

// Home is the main menu reached through the back button.
func Home(admin bool) Render {
	return MainMenu("Главное меню:", admin)
}

// Greeting answers /start.
func Greeting(firstName string, admin bool) Render {
	who := "друг"
	if firstName != "" {
		who = firstName
	}
	return MainMenu(lines(
		fmt.Sprintf("Привет, %s! Я бот с расписанием и домашними заданиями.", who),
		"Выбери действие в меню ниже или набери /help.",
	), admin)
}

// Help lists the commands available to the caller.
func Help(admin bool) Render {
	text := lines(
		"Доступные команды:",
		"/start — приветствие и главное меню",
		"/help — показать эту помощь",
		"/tomorrow — ДЗ на завтра",
		"/cancel — отменить ввод",
	)
	if admin {
		text = lines(text,
			"",
			"Для админа:",
			"/newsubject — добавить предмет в формате ключ;название;дз",
			"/reload — перечитать данные из хранилища",
			"/save — сохранить данные",
		)
	}
	return MainMenu(text, admin)
}

// AdminMenu is the admin panel.
func AdminMenu() Render {
	op := func(label string, o action.Op) []Option {
		return []Option{button(label, action.Action{Op: o})}
	}
	return inline("Админ-панель:",
		op(LabelEditHomework, action.MenuEditHomework),
		op(LabelEditSchedule, action.MenuEditSchedule),
		op(LabelDaysManage, action.MenuDaysManage),
		op(LabelRenameSubject, action.MenuRenameSubject),
		op(LabelAddSubject, action.MenuAddSubject),
		op(LabelDeleteSubject, action.MenuDeleteSubject),
		[]Option{back},
	)
}

// subjectRows lists subjects two per row, each bound to an action built by
// mk, followed by tail.
func subjectRows(subjects []catalog.Subject, mk func(key string) action.Action, tail ...[]Option) [][]Option {
	opts := make([]Option, 0, len(subjects))
	for _, s := range subjects {
		opts = append(opts, button(s.Name, mk(s.Key)))
	}
	return append(grid(opts, 2), tail...)
}

// dayRows lists days two per row, each bound to an action built by mk,
// followed by tail.
func dayRows(days []catalog.Day, mk func(d catalog.Day) action.Action, tail ...[]Option) [][]Option {
	opts := make([]Option, 0, len(days))
	for _, d := range days {
		opts = append(opts, button(d.Label(), mk(d)))
	}
	return append(grid(opts, 2), tail...)
}

// SubjectPicker lists subjects for browsing.
func SubjectPicker(subjects []catalog.Subject) Render {
	return subjectPicker("Выбери предмет:", subjects)
}

func subjectPicker(text string, subjects []catalog.Subject) Render {
	return inline(text, subjectRows(subjects, func(k string) action.Action {
		return action.Action{Op: action.ShowSubject, Subject: k}
	}, []Option{back})...)
}

// SubjectDetail shows a subject, its homework and where it is scheduled,
// keeping the subject list underneath.
func SubjectDetail(subj catalog.Subject, occ []catalog.Occurrence, subjects []catalog.Subject) Render {
	where := "—"
	if len(occ) > 0 {
		var ls []string
		for _, o := range occ {
			ls = append(ls, fmt.Sprintf("- %s (урок %d)", o.Day.Label(), o.Position))
		}
		where = lines(ls...)
	}
	text := fmt.Sprintf("<b>%s</b>\nДЗ: %s\n\nБлижайшие занятия:\n%s",
		html.EscapeString(subj.Name), html.EscapeString(homework(subj.Homework)), where)
	r := subjectPicker(text, subjects)
	r.HTML = true
	return r
}

// DayPicker lists the present days for browsing.
func DayPicker(days []catalog.Day) Render {
	return dayPicker("Выбери день недели:", days)
}

func dayPicker(text string, days []catalog.Day) Render {
	return inline(text, dayRows(days, func(d catalog.Day) action.Action {
		return action.Action{Op: action.ShowDay, Day: d}
	}, []Option{back})...)
}

// DaySchedule shows the lessons of day, keeping the day list underneath.
func DaySchedule(day catalog.Day, lessons []catalog.Lesson, days []catalog.Day) Render {
	if len(lessons) == 0 {
		return dayPicker(noLessons(day), days)
	}
	ls := []string{fmt.Sprintf("Расписание на %s:", day.Label())}
	for _, l := range lessons {
		ls = append(ls, fmt.Sprintf("%d. %s", l.Position, l.Subject.Name))
	}
	return dayPicker(lines(ls...), days)
}

// Tomorrow lists tomorrow's lessons with their homework.
func Tomorrow(day catalog.Day, lessons []catalog.Lesson, admin bool) Render {
	if len(lessons) == 0 {
		return MainMenu(noLessons(day), admin)
	}
	ls := []string{fmt.Sprintf("ДЗ на завтра (%s):", day.Label())}
	for _, l := range lessons {
		ls = append(ls, fmt.Sprintf("%d. <b>%s</b>: %s", l.Position,
			html.EscapeString(l.Subject.Name), html.EscapeString(homework(l.Subject.Homework))))
	}
	r := MainMenu(lines(ls...), admin)
	r.HTML = true
	return r
}

func noLessons(day catalog.Day) string {
	return fmt.Sprintf("На %s занятий нет.", day.Label())
}

func homework(hw string) string {
	if hw == "" {
		return "—"
	}
	return hw
}
