package conditions

import (
	"reflect"
	"testing"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

func TestExtract(t *testing.T) {
	tests := []struct {
		name    string
		profile nutrition.Profile
		want    []nutrition.ConditionTag
	}{
		{
			name: "empty profile",
			want: []nutrition.ConditionTag{nutrition.GeneralWellness},
		},
		{
			name:    "diagnosed pcos",
			profile: nutrition.Profile{MedicalConditions: []string{"PCOS"}},
			want:    []nutrition.ConditionTag{nutrition.PCOS},
		},
		{
			name:    "polycystic spelled out",
			profile: nutrition.Profile{MedicalConditions: []string{"Polycystic ovary syndrome"}},
			want:    []nutrition.ConditionTag{nutrition.PCOS},
		},
		{
			name:    "one diagnosis matching two rules",
			profile: nutrition.Profile{MedicalConditions: []string{"Hypothyroidism with insulin resistance"}},
			want:    []nutrition.ConditionTag{nutrition.ThyroidHypo, nutrition.DiabetesInsulin},
		},
		{
			name: "symptom labels are normalized",
			profile: nutrition.Profile{Symptoms: []string{
				"Weight gain or difficulty losing weight",
				"Brain fog (or memory issues)",
			}},
			want: []nutrition.ConditionTag{nutrition.PCOS, nutrition.ThyroidHypo, nutrition.StressAdrenal},
		},
		{
			name:    "unknown symptoms are dropped",
			profile: nutrition.Profile{Symptoms: []string{"itchy elbows"}},
			want:    []nutrition.ConditionTag{nutrition.GeneralWellness},
		},
		{
			name:    "stress and sleep flags",
			profile: nutrition.Profile{StressLevel: "Very High", SleepHours: "Less than 6"},
			want:    []nutrition.ConditionTag{nutrition.StressAdrenal},
		},
		{
			name:    "moderate stress does not count",
			profile: nutrition.Profile{StressLevel: "Moderate"},
			want:    []nutrition.ConditionTag{nutrition.GeneralWellness},
		},
		{
			name: "goals",
			profile: nutrition.Profile{Goals: []string{
				"Regulate menstrual cycle",
				"Improve hormone balance",
				"Reduce inflammation",
			}},
			want: []nutrition.ConditionTag{nutrition.PCOS, nutrition.HormoneBalance, nutrition.AntiInflammatory},
		},
		{
			name: "union keeps first-seen order without duplicates",
			profile: nutrition.Profile{
				MedicalConditions: []string{"Endometriosis"},
				Symptoms:          []string{"Heavy bleeding", "Painful periods"},
				Goals:             []string{"Manage PCOS"},
			},
			want: []nutrition.ConditionTag{nutrition.Endometriosis, nutrition.PCOS},
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got := Extract(tc.profile)
			if !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Extract = %v, want %v", got, tc.want)
			}
		})
	}
}

func TestExtractNeverEmptyNorDuplicated(t *testing.T) {
	profiles := []nutrition.Profile{
		{},
		{Symptoms: []string{"Mood swings", "Food cravings", "Stress and anxiety", "Sleep problems"}},
		{MedicalConditions: []string{"PCOS", "pcos", "Polycystic"}, Goals: []string{"pcos"}},
	}
	for _, p := range profiles {
		got := Extract(p)
		if len(got) == 0 {
			t.Fatalf("Extract(%+v) returned empty", p)
		}
		seen := map[nutrition.ConditionTag]bool{}
		for _, tag := range got {
			if seen[tag] {
				t.Fatalf("duplicate tag %s in %v", tag, got)
			}
			seen[tag] = true
		}
	}
}
