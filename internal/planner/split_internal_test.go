package planner

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitplan/internal/catalog"
)

func Test_selectSplit(t *testing.T) {
	tests := []struct {
		name        string
		profile     Profile
		daysPerWeek *int
		want        []Focus
	}{
		{
			name:    "beginner muscle gain is full body three times",
			profile: profile(GoalMuscleGain, catalog.LevelBeginner, 30),
			want:    []Focus{FocusFullBody, FocusFullBody, FocusFullBody},
		},
		{
			name:    "intermediate muscle gain with equipment repeats push pull legs from the start",
			profile: profile(GoalMuscleGain, catalog.LevelIntermediate, 45, catalog.EquipmentDumbbells),
			want:    []Focus{FocusPush, FocusPull, FocusLegs, FocusPush},
		},
		{
			name:    "bodyweight only muscle gain stays full body",
			profile: profile(GoalMuscleGain, catalog.LevelAdvanced, 45),
			want:    []Focus{FocusFullBody, FocusFullBody, FocusFullBody, FocusFullBody, FocusFullBody},
		},
		{
			name:    "advanced fat loss alternates",
			profile: profile(GoalFatLoss, catalog.LevelAdvanced, 60, catalog.EquipmentBarbell),
			want: []Focus{
				FocusFullBody, FocusCardioStrength, FocusFullBody, FocusCardioStrength, FocusFullBody,
			},
		},
		{
			name:        "override is clamped to the minimum",
			profile:     profile(GoalEndurance, catalog.LevelAdvanced, 60),
			daysPerWeek: new(1),
			want:        []Focus{FocusCardioStrength, FocusLegs},
		},
		{
			name:        "override is clamped to the maximum",
			profile:     profile(GoalGeneralFitness, catalog.LevelIntermediate, 60, catalog.EquipmentKettlebell),
			daysPerWeek: new(8),
			want:        []Focus{FocusUpper, FocusLower, FocusFullBody, FocusUpper, FocusLower, FocusFullBody},
		},
		{
			name:        "override within range",
			profile:     profile(GoalEndurance, catalog.LevelBeginner, 30),
			daysPerWeek: new(5),
			want: []Focus{
				FocusCardioStrength, FocusLegs, FocusCardioStrength, FocusUpper, FocusCardioStrength,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := tt.profile
			p.DaysPerWeek = tt.daysPerWeek
			got := selectSplit(p, DefaultPolicy())
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("selectSplit() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestFocus_muscleGroups(t *testing.T) {
	for _, f := range []Focus{
		FocusFullBody, FocusPush, FocusPull, FocusLegs, FocusUpper, FocusLower, FocusCardioStrength,
	} {
		if len(f.Primary()) == 0 {
			t.Errorf("%s has no primary muscle groups", f)
		}
		for _, g := range f.Secondary() {
			for _, p := range f.Primary() {
				if g == p {
					t.Errorf("%s lists %s as both primary and secondary", f, g)
				}
			}
		}
	}
	if !FocusCardioStrength.TrainsCardio() || FocusPush.TrainsCardio() {
		t.Error("only cardio-strength should train cardio")
	}
}
