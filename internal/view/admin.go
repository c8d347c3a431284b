package view

import (
	"fmt"
	"strconv"

	"github.com/roach88/schoolbot/internal/action"
	"github.com/roach88/schoolbot/internal/catalog"
)

// BackOnly shows text with a single back-to-main button.
func BackOnly(text string) Render {
	return inline(text, []Option{back})
}

// HomeworkSubjectPicker lists subjects whose homework can be edited.
func HomeworkSubjectPicker(subjects []catalog.Subject) Render {
	return adminSubjectPicker("Выбери предмет для изменения ДЗ:", subjects, action.EditHomework)
}

// RenameSubjectPicker lists subjects to rename.
func RenameSubjectPicker(subjects []catalog.Subject) Render {
	return adminSubjectPicker("Выбери предмет для переименования:", subjects, action.RenameSubject)
}

// DeleteSubjectPicker lists subjects to delete.
func DeleteSubjectPicker(subjects []catalog.Subject) Render {
	return adminSubjectPicker("Выбери предмет для удаления:", subjects, action.DeleteSubject)
}

func adminSubjectPicker(text string, subjects []catalog.Subject, op action.Op) Render {
	return inline(text, subjectRows(subjects, func(k string) action.Action {
		return action.Action{Op: op, Subject: k}
	}, []Option{back})...)
}

// AddSubjectPrompt asks for a new subject in the simple format.
func AddSubjectPrompt() Render {
	return BackOnly(lines(
		"Отправь новым сообщением название предмета.",
		"Можно добавить ДЗ через двоеточие: 'Название: ДЗ'.",
		"Ключ сгенерируется автоматически.",
	))
}

// StructuredSubjectPrompt asks for a new subject as key;name;homework.
func StructuredSubjectPrompt() Render {
	return BackOnly(lines(
		"Отправь новый предмет в формате: ключ;название;дз",
		"ДЗ можно оставить пустым. Ключ: латинские буквы, цифры и _.",
	))
}

// HomeworkPrompt asks for the new homework of subj.
func HomeworkPrompt(subj catalog.Subject) Render {
	return BackOnly(fmt.Sprintf("Введи новое ДЗ для %s сообщением.", subj.Name))
}

// RenamePrompt asks for the new name of subj.
func RenamePrompt(subj catalog.Subject) Render {
	return BackOnly(fmt.Sprintf("Введи новое название для предмета: %s", subj.Name))
}

// Confirmation texts shown with the main menu after free-text input.
func HomeworkUpdated(subj catalog.Subject) string {
	return fmt.Sprintf("ДЗ для %s обновлено.", subj.Name)
}

func SubjectRenamed(oldName, newName string) string {
	return fmt.Sprintf("Название предмета обновлено: %s → %s", oldName, newName)
}

func SubjectAdded(subj catalog.Subject) string {
	return fmt.Sprintf("Предмет добавлен: %s (ключ: %s)", subj.Name, subj.Key)
}

func SubjectDeleted(subj catalog.Subject) string {
	return fmt.Sprintf("Предмет '%s' удалён, расписание обновлено.", subj.Name)
}

func DayCreated(day catalog.Day) string {
	return fmt.Sprintf("День создан: %s", day.Label())
}

func DayDeleted(day catalog.Day) string {
	return fmt.Sprintf("День удалён: %s", day.Label())
}

// UnknownCommand answers an unrecognised command, suggesting the closest
// known one when there is one.
func UnknownCommand(suggestion string) string {
	if suggestion != "" {
		return fmt.Sprintf("Неизвестная команда. Возможно, ты имел в виду /%s? Попробуй /help", suggestion)
	}
	return "Неизвестная команда. Попробуй /help"
}

// UnknownText answers free text that matches nothing.
func UnknownText(suggestion string) string {
	if suggestion != "" {
		return fmt.Sprintf("Не понял сообщение. Может быть, «%s»? Пользуйся кнопками меню или /help.", suggestion)
	}
	return "Не понял сообщение. Пользуйся кнопками меню или /help."
}

// DaysManage is the day management menu.
func DaysManage() Render {
	return inline("Управление днями:",
		[]Option{button(LabelCreateDay, action.Action{Op: action.MenuDaysCreate})},
		[]Option{button(LabelDeleteDay, action.Action{Op: action.MenuDaysDelete})},
		[]Option{button(LabelBack, action.Action{Op: action.MenuAdmin})},
	)
}

// DaysToCreate lists absent days.
func DaysToCreate(missing []catalog.Day) Render {
	return manageDayPicker("Выбери день для создания:", missing, action.CreateDay)
}

// DaysToDelete lists present days.
func DaysToDelete(present []catalog.Day) Render {
	return manageDayPicker("Выбери день для удаления:", present, action.DeleteDay)
}

func manageDayPicker(text string, days []catalog.Day, op action.Op) Render {
	return inline(text, dayRows(days, func(d catalog.Day) action.Action {
		return action.Action{Op: op, Day: d}
	}, []Option{button(LabelBack, action.Action{Op: action.MenuDaysManage})})...)
}

// ScheduleDayPicker starts the schedule editor by listing present days.
func ScheduleDayPicker(days []catalog.Day) Render {
	return inline("Выбери день для редактирования расписания:", dayRows(days, func(d catalog.Day) action.Action {
		return action.Action{Op: action.SchedDay, Day: d}
	}, []Option{back})...)
}

// EditDayText describes the lessons of the day open in the editor.
func EditDayText(day catalog.Day, lessons []catalog.Lesson) string {
	ls := []string{fmt.Sprintf("Редактирование расписания: %s", day.Label())}
	if len(lessons) == 0 {
		ls = append(ls, noLessons(day))
	}
	for _, l := range lessons {
		ls = append(ls, fmt.Sprintf("%d. %s", l.Position, l.Subject.Name))
	}
	return lines(ls...)
}

// EditDay shows the day open in the editor with its sub-actions.
func EditDay(day catalog.Day, lessons []catalog.Lesson) Render {
	op := func(label string, o action.Op) []Option {
		return []Option{button(label, action.Action{Op: o})}
	}
	return inline(EditDayText(day, lessons),
		op(LabelSchedAdd, action.SchedAddMenu),
		op(LabelSchedEdit, action.SchedEditMenu),
		op(LabelSchedDelete, action.SchedDeleteMenu),
		op(LabelSchedClear, action.SchedClear),
		op(LabelToDayPicker, action.MenuEditSchedule),
	)
}

func backToDay(day catalog.Day) []Option {
	return []Option{button(LabelBack, action.Action{Op: action.SchedDay, Day: day})}
}

// AddLessonPicker lists subjects to append to day. It stays on screen after
// each pick so several lessons can be added in a row.
func AddLessonPicker(day catalog.Day, lessons []catalog.Lesson, subjects []catalog.Subject) Render {
	text := lines(EditDayText(day, lessons), "", "Выбери предмет для добавления:")
	return inline(text, subjectRows(subjects, func(k string) action.Action {
		return action.Action{Op: action.SchedAdd, Subject: k}
	}, backToDay(day))...)
}

// LessonPicker lists the lessons of day, one per row, for replacement.
func LessonPicker(day catalog.Day, lessons []catalog.Lesson) Render {
	rows := make([][]Option, 0, len(lessons)+1)
	for _, l := range lessons {
		rows = append(rows, []Option{button(
			fmt.Sprintf("%d. %s", l.Position, l.Subject.Name),
			action.Action{Op: action.SchedEditChoose, Index: l.Position},
		)})
	}
	rows = append(rows, backToDay(day))
	return inline("Выбери урок для редактирования:", rows...)
}

// ReplacementPicker lists subjects to put at lesson.
func ReplacementPicker(day catalog.Day, lesson catalog.Lesson, subjects []catalog.Subject) Render {
	text := fmt.Sprintf("Урок %d (%s), сейчас: %s\nВыбери новый предмет для замены:",
		lesson.Position, day.Label(), lesson.Subject.Name)
	return inline(text, subjectRows(subjects, func(k string) action.Action {
		return action.Action{Op: action.SchedReplace, Subject: k}
	}, backToDay(day))...)
}

// DeleteLessonPicker lists lesson numbers of day, four per row.
func DeleteLessonPicker(day catalog.Day, count int) Render {
	opts := make([]Option, 0, count)
	for i := 1; i <= count; i++ {
		opts = append(opts, button(strconv.Itoa(i), action.Action{Op: action.SchedDeleteChoose, Index: i}))
	}
	return inline("Выбери номер урока для удаления:", append(grid(opts, 4), backToDay(day))...)
}
