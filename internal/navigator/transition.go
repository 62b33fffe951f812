package navigator

import (
	"github.com/edufiliova/navigator/internal/catalog"
	"github.com/edufiliova/navigator/model"
)

// targetStyles are the fixed per-target animations.
var targetStyles = map[model.PageState]model.TransitionStyle{
	model.StateAuth:         model.TransitionScale,
	model.StatePremium:      model.TransitionSlideRight,
	model.StateHelp:         model.TransitionSlideLeft,
	model.StateContact:      model.TransitionSlideLeft,
	model.StateLearnMore:    model.TransitionSlideLeft,
	model.StateHome:         model.TransitionInstant,
	model.StateCourseBrowse: model.TransitionInstant,
}

// PickStyle chooses exactly one transition style for a commit from one
// page to another. A valid explicit style always wins.
func PickStyle(explicit model.TransitionStyle, from, to catalog.PageDescriptor) model.TransitionStyle {
	if explicit.IsValid() {
		return explicit
	}
	if model.IsDashboard(from.State) && model.IsDashboard(to.State) {
		return model.TransitionInstant
	}
	if from.Section != "" && from.Section == to.Section {
		return model.TransitionInstant
	}
	if s, ok := targetStyles[to.State]; ok {
		return s
	}
	return model.TransitionFade
}
