package prompts

import (
	"strings"
	"testing"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/guidance"
)

func baseInput() Input {
	return Input{
		Conditions: []nutrition.ConditionTag{nutrition.PCOS, nutrition.StressAdrenal},
		Phase:      nutrition.PhaseLuteal,
		Cuisine:    "Indian",
		Profile:    nutrition.Profile{Diet: "vegetarian", Age: "29"},
	}
}

func TestBuildIncludesGuidance(t *testing.T) {
	p := Build(baseInput())
	if p.System == "" || p.SchemaName != SchemaName || p.Schema == nil {
		t.Fatalf("incomplete prompt: %+v", p)
	}
	for _, want := range []string{
		"HEALTH CONDITIONS: pcos, stress_adrenal",
		"CUISINE PREFERENCE: Indian",
		"MENSTRUAL CYCLE PHASE: Luteal Phase (17-28)",
		"Raw sesame seeds/tahini",
		"insulin_sensitivity",
		"cortisol_regulation",
		"- Diet type: vegetarian",
		"- Age: 29",
		"Culturally authentic to Indian cuisine",
		"CRITICAL: Respond with ONLY valid JSON",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if strings.Contains(p.User, "PREVIOUS DAY FEEDBACK") {
		t.Error("feedback block rendered without feedback")
	}
	for _, style := range guidance.Phase(nutrition.PhaseLuteal).Incorporation() {
		line := "- " + style.Label + ": " + strings.Join(style.Tips, " | ")
		if !strings.Contains(p.User, line) {
			t.Errorf("prompt missing incorporation line %q", line)
		}
	}
}

func TestBuildDefaults(t *testing.T) {
	in := baseInput()
	in.Profile = nutrition.Profile{}
	in.Cuisine = "martian"
	p := Build(in)
	for _, want := range []string{"- Diet type: omnivore", "- Age: adult", "CUISINE PREFERENCE: Mediterranean", "- Health goals: General wellness"} {
		if !strings.Contains(p.User, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildFeedbackBlock(t *testing.T) {
	in := baseInput()
	in.Feedback = &nutrition.Feedback{
		FollowedPlan:  true,
		DislikedMeals: []string{"Dal"},
		EnergyLevel:   2,
		MoodRating:    4,
		Comment:       "too spicy",
	}
	in.Adaptations = []string{"Adding more iron-rich foods and B-vitamins for energy support"}
	p := Build(in)
	for _, want := range []string{
		"PREVIOUS DAY FEEDBACK",
		"- Followed plan: Yes",
		"- Enjoyed meals: None specified",
		"- Disliked meals: Dal",
		"- Energy level: 2/5",
		"- Digestive health: not rated",
		"- Mood: 4/5",
		"- Additional feedback: too spicy",
		"ADAPTATIONS TO MAKE: Adding more iron-rich foods",
	} {
		if !strings.Contains(p.User, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
}

func TestBuildIsDeterministic(t *testing.T) {
	a, b := Build(baseInput()), Build(baseInput())
	if a.User != b.User || a.System != b.System {
		t.Fatal("Build is not deterministic")
	}
}

func TestResearchAppended(t *testing.T) {
	in := baseInput()
	in.Research = FormatResearch([]ResearchItem{{Title: "Seed cycling", Content: strings.Repeat("a", 300)}})
	p := Build(in)
	if !strings.HasSuffix(p.User, "inform your meal planning recommendations.") {
		t.Fatal("research block not at end of prompt")
	}
	if !strings.Contains(p.User, "- Seed cycling: "+strings.Repeat("a", 200)+"...") {
		t.Fatal("research content not truncated to 200 chars")
	}
}

func TestFormatResearchEmpty(t *testing.T) {
	if got := FormatResearch(nil); got != "" {
		t.Fatalf("FormatResearch(nil) = %q", got)
	}
}

func TestTruncateRuneBoundary(t *testing.T) {
	s := strings.Repeat("a", 199) + "é"
	if got := truncate(s, 200); got != strings.Repeat("a", 199) {
		t.Fatalf("truncate split a rune: %q", got)
	}
}

func TestSchemaRequiresAllProperties(t *testing.T) {
	var check func(path string, node map[string]any)
	check = func(path string, node map[string]any) {
		props, ok := node["properties"].(map[string]any)
		if !ok {
			if items, ok := node["items"].(map[string]any); ok {
				check(path+"[]", items)
			}
			return
		}
		req, _ := node["required"].([]string)
		if len(req) != len(props) {
			t.Errorf("%s: %d required of %d properties", path, len(req), len(props))
		}
		if node["additionalProperties"] != false {
			t.Errorf("%s: additionalProperties not false", path)
		}
		for k, v := range props {
			check(path+"."+k, v.(map[string]any))
		}
	}
	check("$", MealPlanSchema())
}
