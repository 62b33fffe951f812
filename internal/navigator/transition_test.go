package navigator

import (
	"testing"

	"github.com/edufiliova/navigator/internal/catalog"
	"github.com/edufiliova/navigator/model"
)

func TestPickStyle(t *testing.T) {
	desc := func(s model.PageState, sec catalog.Section) catalog.PageDescriptor {
		return catalog.PageDescriptor{State: s, Section: sec}
	}

	tests := []struct {
		name     string
		explicit model.TransitionStyle
		from, to catalog.PageDescriptor
		want     model.TransitionStyle
	}{
		{
			name:     "explicit wins",
			explicit: model.TransitionSlideLeft,
			from:     desc(model.StateHome, catalog.SectionMarketing),
			to:       desc(model.StateAuth, catalog.SectionAuth),
			want:     model.TransitionSlideLeft,
		},
		{
			name:     "invalid explicit ignored",
			explicit: "spin",
			from:     desc(model.StateHome, catalog.SectionMarketing),
			to:       desc(model.StateAuth, catalog.SectionAuth),
			want:     model.TransitionScale,
		},
		{
			name: "dashboard to dashboard",
			from: desc(model.StateAdminDashboard, catalog.SectionAdmin),
			to:   desc(model.StateTeacherDashboard, catalog.SectionDashboard),
			want: model.TransitionInstant,
		},
		{
			name: "same section",
			from: desc(model.StateAbout, catalog.SectionMarketing),
			to:   desc(model.StatePremium, catalog.SectionMarketing),
			want: model.TransitionInstant,
		},
		{
			name: "premium slides right",
			from: desc(model.StateCourseBrowse, catalog.SectionLearning),
			to:   desc(model.StatePremium, catalog.SectionMarketing),
			want: model.TransitionSlideRight,
		},
		{
			name: "help slides left",
			from: desc(model.StateSettings, catalog.SectionLearning),
			to:   desc(model.StateHelp, catalog.SectionMarketing),
			want: model.TransitionSlideLeft,
		},
		{
			name: "home is instant",
			from: desc(model.StateSettings, catalog.SectionLearning),
			to:   desc(model.StateHome, catalog.SectionMarketing),
			want: model.TransitionInstant,
		},
		{
			name: "default fade",
			from: desc(model.StateHome, catalog.SectionMarketing),
			to:   desc(model.StateSettings, catalog.SectionLearning),
			want: model.TransitionFade,
		},
		{
			name: "unknown descriptors fade",
			want: model.TransitionFade,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PickStyle(tt.explicit, tt.from, tt.to)
			if got != tt.want {
				t.Errorf("PickStyle() = %q, want %q", got, tt.want)
			}
			if !got.IsValid() {
				t.Errorf("PickStyle() returned invalid style %q", got)
			}
		})
	}
}
