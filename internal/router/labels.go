package router

import (
	"github.com/agnivade/levenshtein"

	"github.com/roach88/schoolbot/internal/action"
	"github.com/roach88/schoolbot/internal/view"
)

// labelTable maps main menu button labels to the action pressing them
// means. Reply keyboards send the label back as plain text, so this is the
// only link between what view shows and what the router dispatches.
var labelTable = map[string]action.Op{
	view.LabelSubjects: action.MenuSubjects,
	view.LabelDays:     action.MenuDay,
	view.LabelTomorrow: action.MenuTomorrow,
	view.LabelAdmin:    action.MenuAdmin,
}

// labelOrder fixes suggestion order for equally distant labels.
var labelOrder = []string{view.LabelSubjects, view.LabelDays, view.LabelTomorrow, view.LabelAdmin}

// LabelAction returns the action bound to a menu label.
func LabelAction(text string) (action.Action, bool) {
	op, ok := labelTable[text]
	if !ok {
		return action.Action{}, false
	}
	return action.Action{Op: op}, true
}

// nearest returns the candidate closest to s by edit distance, or "" when
// none is within maxDist.
func nearest(s string, candidates []string, maxDist int) string {
	best, bestDist := "", maxDist+1
	for _, c := range candidates {
		if d := levenshtein.ComputeDistance(s, c); d < bestDist {
			best, bestDist = c, d
		}
	}
	return best
}

// suggestLabel finds a menu label the user probably meant. Labels the
// caller cannot use are skipped.
func suggestLabel(text string, admin bool) string {
	candidates := labelOrder
	if !admin {
		candidates = candidates[:3]
	}
	maxDist := max(2, len([]rune(text))/3)
	return nearest(text, candidates, maxDist)
}
