package view

// Main menu reply keyboard labels. The router matches incoming text against
// these exact strings.
const (
	LabelSubjects = "📚 Предметы"
	LabelDays     = "📅 Расписание по дню"
	LabelTomorrow = "📝 ДЗ на завтра"
	LabelAdmin    = "⚙️ Админ"
)

// Inline button labels.
const (
	LabelBack          = "⬅️ Назад"
	LabelEditHomework  = "✏️ Ред. ДЗ"
	LabelEditSchedule  = "🗓️ Ред. расписание"
	LabelDaysManage    = "📆 Управление днями"
	LabelRenameSubject = "🔤 Переименовать предмет"
	LabelAddSubject    = "➕ Новый предмет (в базу)"
	LabelDeleteSubject = "🗑️ Удалить предмет"
	LabelCreateDay     = "➕ Создать день"
	LabelDeleteDay     = "🗑️ Удалить день"
	LabelSchedAdd      = "📚 Выбрать предмет"
	LabelSchedEdit     = "✏️ Редактировать урок"
	LabelSchedDelete   = "➖ Удалить предмет"
	LabelSchedClear    = "🧹 Очистить день"
	LabelToDayPicker   = "⬅️ К выбору дня"
)

// Short notices shown as a toast or a plain reply.
const (
	NoticeAdminOnly        = "Только для админа"
	NoticeAdminOnlyCommand = "Эта команда только для админа"
	NoticeSelectDayFirst   = "Сначала выбери день"
	NoticeUnknownSubject   = "Неизвестный предмет"
	NoticeUnknownDay       = "Неизвестный день"
	NoticeBadNumber        = "Неверный номер"
	NoticeBadLesson        = "Неверный номер урока"
	NoticeSameSubject      = "Этот предмет уже установлен"
	NoticeLessonReplaced   = "Урок изменён"
	NoticeLessonAdded      = "Добавлено"
	NoticeLessonRemoved    = "Удалено"
	NoticeDayCleared       = "День очищен"
	NoticeNoLessonSelected = "Ошибка: не выбран урок"
	NoticeNotSaved         = "⚠️ Изменение применено, но не сохранено"
	NoticeSaved            = "Сохранено"
	NoticeReloaded         = "Данные перезагружены"
	NoticeReloadFailed     = "Не удалось перечитать данные"
	NoticeCancelled        = "Отменено"
	NoticeNothingToCancel  = "Нечего отменять"
	NoticeBadFormat        = "Неверный формат. Нужно: ключ;название;дз (дз можно пустым)"
	NoticeKeyNameRequired  = "Ключ и название обязательны."
	NoticeNameRequired     = "Название не может быть пустым."
	NoticeDuplicateKey     = "Такой ключ уже существует."
	NoticeBadKey           = "Ключ может содержать только латинские буквы, цифры и _."
	NoticeEditAdminOnly    = "Редактирование доступно только админу."
)
