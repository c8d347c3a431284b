package catalog

// Defaults returns the catalog a fresh installation starts with.
func Defaults() Snapshot {
	return Snapshot{
		Subjects: []Subject{
			{Key: "math", Name: "Математика", Homework: "Решить задачи №1-10 на стр. 25"},
			{Key: "rus", Name: "Русский язык", Homework: "Упражнение 34, правило выучить"},
			{Key: "eng", Name: "Английский язык", Homework: "Выучить слова unit 3, упр. 5"},
			{Key: "cs", Name: "Информатика", Homework: "Подготовить файл с алгоритмом сортировки"},
			{Key: "hist", Name: "История", Homework: "Параграф 12, конспект"},
			{Key: "phys", Name: "Физика", Homework: "Задачи на законы Ньютона"},
			{Key: "chem", Name: "Химия", Homework: "§8, упр. после параграфа"},
			{Key: "bio", Name: "Биология", Homework: "Опорный конспект по теме клетки"},
			{Key: "lit", Name: "Литература", Homework: "Прочитать главу 4, краткий пересказ"},
			{Key: "geo", Name: "География", Homework: "Карта: обозначить материки и океаны"},
		},
		Schedule: map[Day][]string{
			Monday:    {"math", "rus", "eng", "cs"},
			Tuesday:   {"hist", "phys", "chem", "math"},
			Wednesday: {"bio", "lit", "eng"},
			Thursday:  {"geo", "rus", "math"},
			Friday:    {"phys", "eng", "cs"},
			Saturday:  {"hist", "bio"},
		},
	}
}

// Empty returns a catalog with no subjects and no days.
func Empty() Snapshot {
	return Snapshot{Subjects: []Subject{}, Schedule: map[Day][]string{}}
}
