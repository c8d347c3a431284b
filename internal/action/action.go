// Package action defines the closed set of button payloads the bot emits and
// understands.
//
// A payload is a colon-delimited string "namespace:verb[:arg]*" with the
// namespaces menu, subject, day, back and edit. Parse decodes a payload into
// an Action; String encodes it back. Anything Parse does not recognise
// decodes to Fallback rather than an error.
package action

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/roach88/schoolbot/internal/catalog"
)

// Op identifies an action variant.
type Op int

const (
	// Fallback is any payload outside the known grammar.
	Fallback Op = iota

	MenuSubjects
	MenuDay
	MenuTomorrow
	MenuAdmin
	MenuAddSubject
	MenuEditHomework
	MenuEditSchedule
	MenuRenameSubject
	MenuDeleteSubject
	MenuDaysManage
	MenuDaysCreate
	MenuDaysDelete

	ShowSubject
	ShowDay
	BackMain

	EditHomework
	RenameSubject
	DeleteSubject
	StartSubjectCreation
	CreateDay
	DeleteDay

	SchedDay
	SchedAddMenu
	SchedAdd
	SchedEditMenu
	SchedEditChoose
	SchedReplace
	SchedDeleteMenu
	SchedDeleteChoose
	SchedClear
)

var opNames = map[Op]string{
	Fallback:             "fallback",
	MenuSubjects:         "menu_subjects",
	MenuDay:              "menu_day",
	MenuTomorrow:         "menu_tomorrow",
	MenuAdmin:            "menu_admin",
	MenuAddSubject:       "menu_add_subject",
	MenuEditHomework:     "menu_edit_hw",
	MenuEditSchedule:     "menu_edit_sched",
	MenuRenameSubject:    "menu_rename_subj",
	MenuDeleteSubject:    "menu_del_subject",
	MenuDaysManage:       "menu_days_manage",
	MenuDaysCreate:       "menu_days_create",
	MenuDaysDelete:       "menu_days_delete",
	ShowSubject:          "show_subject",
	ShowDay:              "show_day",
	BackMain:             "back_main",
	EditHomework:         "edit_hw",
	RenameSubject:        "rename_subject",
	DeleteSubject:        "delete_subject",
	StartSubjectCreation: "start_subject_creation",
	CreateDay:            "create_day",
	DeleteDay:            "delete_day",
	SchedDay:             "sched_day",
	SchedAddMenu:         "sched_add_menu",
	SchedAdd:             "sched_add",
	SchedEditMenu:        "sched_edit_menu",
	SchedEditChoose:      "sched_edit_choose",
	SchedReplace:         "sched_replace",
	SchedDeleteMenu:      "sched_del_menu",
	SchedDeleteChoose:    "sched_del_choose",
	SchedClear:           "sched_clear",
}

func (o Op) String() string {
	if n, ok := opNames[o]; ok {
		return n
	}
	return fmt.Sprintf("op(%d)", int(o))
}

// Action is a decoded payload. Only the fields relevant to Op are set.
type Action struct {
	Op      Op
	Subject string
	Day     catalog.Day
	Index   int
}

// AdminOnly reports whether the action requires the admin identity.
// Fallback renders the admin panel, so it is admin-only as well.
func (a Action) AdminOnly() bool {
	switch a.Op {
	case MenuSubjects, MenuDay, MenuTomorrow, ShowSubject, ShowDay, BackMain:
		return false
	default:
		return true
	}
}

// ParseError reports a payload in a known shape whose argument is invalid,
// such as a non-numeric lesson index or an unknown day key.
type ParseError struct {
	Payload string

	// Field is the offending argument: "day" or "index".
	Field  string
	Reason string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("malformed payload %q: %s", e.Payload, e.Reason)
}

// AdminOnly reports whether the payload belongs to the admin-only edit
// namespace.
func (e *ParseError) AdminOnly() bool {
	return strings.HasPrefix(e.Payload, "edit:")
}

var menuVerbs = map[string]Op{
	"subjects":    MenuSubjects,
	"day":         MenuDay,
	"tomorrow":    MenuTomorrow,
	"admin":       MenuAdmin,
	"add_subject": MenuAddSubject,
	"edit_hw":     MenuEditHomework,
	"edit_sched":  MenuEditSchedule,
	"rename_subj": MenuRenameSubject,
	"del_subject": MenuDeleteSubject,
	"days_manage": MenuDaysManage,
}

var subjectVerbs = map[string]Op{
	"hw":       EditHomework,
	"rename":   RenameSubject,
	"del_subj": DeleteSubject,
}

// Parse decodes a payload.
func Parse(payload string) (Action, error) {
	parts := strings.Split(payload, ":")
	switch parts[0] {
	case "menu":
		return parseMenu(parts), nil
	case "subject":
		if len(parts) == 2 && parts[1] != "" {
			return Action{Op: ShowSubject, Subject: parts[1]}, nil
		}
	case "day":
		if len(parts) == 2 {
			d, err := parseDay(payload, parts[1])
			if err != nil {
				return Action{}, err
			}
			return Action{Op: ShowDay, Day: d}, nil
		}
	case "back":
		if len(parts) == 2 && parts[1] == "main" {
			return Action{Op: BackMain}, nil
		}
	case "edit":
		return parseEdit(payload, parts)
	}
	return Action{Op: Fallback}, nil
}

func parseMenu(parts []string) Action {
	switch len(parts) {
	case 2:
		if op, ok := menuVerbs[parts[1]]; ok {
			return Action{Op: op}
		}
	case 3:
		if parts[1] == "days_manage" {
			switch parts[2] {
			case "create":
				return Action{Op: MenuDaysCreate}
			case "delete":
				return Action{Op: MenuDaysDelete}
			}
		}
	}
	return Action{Op: Fallback}
}

func parseEdit(payload string, parts []string) (Action, error) {
	n := len(parts)
	if n < 2 {
		return Action{Op: Fallback}, nil
	}
	switch parts[1] {
	case "hw", "rename", "del_subj":
		if n == 3 && parts[2] != "" {
			return Action{Op: subjectVerbs[parts[1]], Subject: parts[2]}, nil
		}
	case "add_subject", "create_subject":
		if n == 2 {
			return Action{Op: StartSubjectCreation}, nil
		}
	case "days":
		if n == 4 && (parts[2] == "create" || parts[2] == "delete") {
			d, err := parseDay(payload, parts[3])
			if err != nil {
				return Action{}, err
			}
			op := CreateDay
			if parts[2] == "delete" {
				op = DeleteDay
			}
			return Action{Op: op, Day: d}, nil
		}
	case "sched":
		if a, ok, err := parseSched(payload, parts); ok || err != nil {
			return a, err
		}
	}
	if staleSubjectCreation(payload) {
		return Action{Op: StartSubjectCreation}, nil
	}
	return Action{Op: Fallback}, nil
}

func parseSched(payload string, parts []string) (Action, bool, error) {
	n := len(parts)
	if n < 3 {
		return Action{}, false, nil
	}
	verb := parts[2]
	if n == 3 {
		switch verb {
		case "add":
			return Action{Op: SchedAddMenu}, true, nil
		case "edit":
			return Action{Op: SchedEditMenu}, true, nil
		case "del":
			return Action{Op: SchedDeleteMenu}, true, nil
		case "clear":
			return Action{Op: SchedClear}, true, nil
		}
		return Action{}, false, nil
	}
	if n != 4 {
		return Action{}, false, nil
	}
	arg := parts[3]
	switch verb {
	case "day":
		d, err := parseDay(payload, arg)
		if err != nil {
			return Action{}, false, err
		}
		return Action{Op: SchedDay, Day: d}, true, nil
	case "add":
		if arg != "" {
			return Action{Op: SchedAdd, Subject: arg}, true, nil
		}
	case "replace":
		if arg != "" {
			return Action{Op: SchedReplace, Subject: arg}, true, nil
		}
	case "edit_choose", "del_choose":
		idx, err := strconv.Atoi(arg)
		if err != nil {
			return Action{}, false, &ParseError{Payload: payload, Field: "index", Reason: "lesson number must be an integer"}
		}
		op := SchedEditChoose
		if verb == "del_choose" {
			op = SchedDeleteChoose
		}
		return Action{Op: op, Index: idx}, true, nil
	case "days":
		if arg == "clear" {
			return Action{Op: SchedClear}, true, nil
		}
	}
	return Action{}, false, nil
}

// staleSubjectCreation matches buttons left over from older keyboards that
// started subject creation under a different verb.
func staleSubjectCreation(payload string) bool {
	lc := strings.ToLower(payload)
	return (strings.Contains(lc, "add") || strings.Contains(lc, "create")) && strings.Contains(lc, "subj")
}

func parseDay(payload, key string) (catalog.Day, error) {
	d, ok := catalog.ParseDay(key)
	if !ok {
		return "", &ParseError{Payload: payload, Field: "day", Reason: fmt.Sprintf("unknown day %q", key)}
	}
	return d, nil
}

// String encodes a as a payload. Fallback encodes as "menu:admin".
func (a Action) String() string {
	switch a.Op {
	case MenuSubjects:
		return "menu:subjects"
	case MenuDay:
		return "menu:day"
	case MenuTomorrow:
		return "menu:tomorrow"
	case MenuAdmin, Fallback:
		return "menu:admin"
	case MenuAddSubject:
		return "menu:add_subject"
	case MenuEditHomework:
		return "menu:edit_hw"
	case MenuEditSchedule:
		return "menu:edit_sched"
	case MenuRenameSubject:
		return "menu:rename_subj"
	case MenuDeleteSubject:
		return "menu:del_subject"
	case MenuDaysManage:
		return "menu:days_manage"
	case MenuDaysCreate:
		return "menu:days_manage:create"
	case MenuDaysDelete:
		return "menu:days_manage:delete"
	case ShowSubject:
		return "subject:" + a.Subject
	case ShowDay:
		return "day:" + string(a.Day)
	case BackMain:
		return "back:main"
	case EditHomework:
		return "edit:hw:" + a.Subject
	case RenameSubject:
		return "edit:rename:" + a.Subject
	case DeleteSubject:
		return "edit:del_subj:" + a.Subject
	case StartSubjectCreation:
		return "edit:add_subject"
	case CreateDay:
		return "edit:days:create:" + string(a.Day)
	case DeleteDay:
		return "edit:days:delete:" + string(a.Day)
	case SchedDay:
		return "edit:sched:day:" + string(a.Day)
	case SchedAddMenu:
		return "edit:sched:add"
	case SchedAdd:
		return "edit:sched:add:" + a.Subject
	case SchedEditMenu:
		return "edit:sched:edit"
	case SchedEditChoose:
		return "edit:sched:edit_choose:" + strconv.Itoa(a.Index)
	case SchedReplace:
		return "edit:sched:replace:" + a.Subject
	case SchedDeleteMenu:
		return "edit:sched:del"
	case SchedDeleteChoose:
		return "edit:sched:del_choose:" + strconv.Itoa(a.Index)
	case SchedClear:
		return "edit:sched:clear"
	}
	return "menu:admin"
}
