package adaptive

import (
	"encoding/json"
	"reflect"
	"strings"
	"testing"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

func TestAdaptations(t *testing.T) {
	tests := []struct {
		name string
		in   nutrition.Feedback
		want []string
	}{
		{"all good", nutrition.Feedback{EnergyLevel: 4, DigestiveHealth: 3, MoodRating: 5}, []string{}},
		{"unrated", nutrition.Feedback{}, []string{}},
		{"low energy", nutrition.Feedback{EnergyLevel: 2, DigestiveHealth: 4, MoodRating: 4}, []string{EnergySupport}},
		{"all low", nutrition.Feedback{EnergyLevel: 1, DigestiveHealth: 2, MoodRating: 1}, []string{EnergySupport, DigestiveSupport, MoodSupport}},
		{"disliked", nutrition.Feedback{EnergyLevel: 5, DislikedMeals: []string{"Dal", " ", "Oats"}},
			[]string{"Replacing Dal and Oats with alternatives you'll enjoy more"}},
		{"low mood and disliked", nutrition.Feedback{MoodRating: 2, DislikedMeals: []string{"Soup"}},
			[]string{MoodSupport, "Replacing Soup with alternatives you'll enjoy more"}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Adaptations(tc.in); !reflect.DeepEqual(got, tc.want) {
				t.Fatalf("Adaptations = %#v, want %#v", got, tc.want)
			}
		})
	}
}

func TestStateFor(t *testing.T) {
	if StateFor(false, false) != StateNoPlanYet || StateFor(false, true) != StateNoPlanYet {
		t.Fatal("no plan should be no_plan_yet")
	}
	if StateFor(true, false) != StatePlanExistsNoFeedback {
		t.Fatal("plan without feedback")
	}
	if StateFor(true, true) != StateFeedbackGiven {
		t.Fatal("plan with feedback")
	}
}

func TestCheckIn(t *testing.T) {
	r := CheckIn(StateNoPlanYet, []string{EnergySupport})
	if !strings.Contains(r.Message, "start your personalized nutrition journey") || len(r.FollowUpQuestions) != 3 || r.AdaptiveRecommendations != nil {
		t.Fatalf("no_plan_yet: %+v", r)
	}
	r = CheckIn(StatePlanExistsNoFeedback, nil)
	if len(r.FollowUpQuestions) != 4 || r.AdaptiveRecommendations != nil {
		t.Fatalf("plan_exists_no_feedback: %+v", r)
	}
	r = CheckIn(StateFeedbackGiven, []string{EnergySupport})
	if len(r.FollowUpQuestions) != 2 || !reflect.DeepEqual(r.AdaptiveRecommendations, []string{EnergySupport}) {
		t.Fatalf("feedback_given: %+v", r)
	}
	if r := CheckIn(StateFeedbackGiven, nil); r.AdaptiveRecommendations == nil {
		t.Fatal("feedback_given should always carry a recommendations list")
	}
}

func TestCheckInJSONRecommendationsKey(t *testing.T) {
	tests := []struct {
		name  string
		state State
		recs  []string
		want  bool
	}{
		{name: "feedback given without adaptations", state: StateFeedbackGiven, recs: Adaptations(nutrition.Feedback{EnergyLevel: 5, DigestiveHealth: 5, MoodRating: 5}), want: true},
		{name: "feedback given with adaptations", state: StateFeedbackGiven, recs: []string{EnergySupport}, want: true},
		{name: "no plan yet", state: StateNoPlanYet, want: false},
		{name: "plan without feedback", state: StatePlanExistsNoFeedback, want: false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			b, err := json.Marshal(CheckIn(tc.state, tc.recs))
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out map[string]any
			if err := json.Unmarshal(b, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if _, ok := out["adaptiveRecommendations"]; ok != tc.want {
				t.Fatalf("adaptiveRecommendations present=%v want %v: %s", ok, tc.want, b)
			}
		})
	}
}

func TestPersonalizedMessage(t *testing.T) {
	got := PersonalizedMessage(nutrition.PhaseLuteal, nil)
	if got != "Balancing your pre-menstrual phase with mood-supporting, satisfying meals" {
		t.Fatalf("message = %q", got)
	}
	got = PersonalizedMessage(nutrition.PhaseMenstrual, []string{"a", "b"})
	want := "Nourishing your body during menstruation with iron-rich, comforting foods. Today's plan includes these personalized adjustments: a, b."
	if got != want {
		t.Fatalf("message = %q", got)
	}
}

func TestFallbackMessage(t *testing.T) {
	if got := FallbackMessage(nutrition.PhaseOvulatory); !strings.Contains(got, "for your ovulatory phase") {
		t.Fatalf("FallbackMessage = %q", got)
	}
}
