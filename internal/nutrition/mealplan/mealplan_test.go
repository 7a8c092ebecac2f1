package mealplan

import (
	"context"
	"encoding/json"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/prompts"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

const validPlan = `{"condition_focus":["pcos"],"cuisine_style":"Indian","menstrual_phase":"Luteal Phase",
"breakfast":{"name":"Poha","ingredients":["flattened rice","peas"]},
"lunch":{"name":"Dal","ingredients":["lentils"]},
"dinner":{"name":"Fish curry","ingredients":["fish","coconut milk"]},
"snacks":[{"name":"Chana","ingredients":["chickpeas"]}],
"daily_guidelines":{"foods_to_emphasize":["turmeric"],"foods_to_limit":[],"hydration_tips":[],"timing_recommendations":[]}}`

type fakeGenerator struct {
	out   string
	err   error
	block bool
	calls int
	seen  error
}

func (f *fakeGenerator) GenerateJSONText(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error) {
	f.calls++
	if f.block {
		<-ctx.Done()
		f.seen = ctx.Err()
		return "", ctx.Err()
	}
	return f.out, f.err
}

func testPrompt() prompts.Prompt {
	return prompts.Prompt{System: "sys", User: "user", SchemaName: prompts.SchemaName}
}

var indianKey = FallbackKey{Kind: KindCuisine, Cuisine: "indian", Conditions: []nutrition.ConditionTag{nutrition.PCOS}}

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", `{"a":1}`, `{"a":1}`},
		{"json fence", "```json\n{\"a\":1}\n```", `{"a":1}`},
		{"bare fence", "```\n{\"a\":1}\n```", `{"a":1}`},
		{"prose around", "Here you go: {\"a\":1} enjoy!", `{"a":1}`},
		{"html", `<!DOCTYPE html><p>{"a":"<b>x</b>"}</p>`, `{"a":"x"}`},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := Normalize(tc.in); got != tc.want {
				t.Fatalf("Normalize(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	plan, repaired, err := Parse("```json\n" + validPlan + "\n```")
	if err != nil || repaired {
		t.Fatalf("Parse: repaired=%v err=%v", repaired, err)
	}
	if plan.Breakfast.Name != "Poha" || len(plan.Snacks) != 1 {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestParseRejectsInvalidPlans(t *testing.T) {
	tests := map[string]string{
		"not json":          "I cannot help with that.",
		"missing dinner":    `{"breakfast":{"name":"a","ingredients":["x"]},"lunch":{"name":"b","ingredients":["y"]},"daily_guidelines":{"foods_to_emphasize":["z"]}}`,
		"empty ingredients": `{"breakfast":{"name":"a","ingredients":[]},"lunch":{"name":"b","ingredients":["y"]},"dinner":{"name":"c","ingredients":["z"]},"daily_guidelines":{"foods_to_emphasize":["z"]}}`,
		"no guidelines":     `{"breakfast":{"name":"a","ingredients":["x"]},"lunch":{"name":"b","ingredients":["y"]},"dinner":{"name":"c","ingredients":["z"]}}`,
	}
	for name, raw := range tests {
		t.Run(name, func(t *testing.T) {
			if _, _, err := Parse(raw); !errors.Is(err, ErrGenerationFailed) {
				t.Fatalf("Parse err = %v, want ErrGenerationFailed", err)
			}
		})
	}
}

func TestRequestGenerated(t *testing.T) {
	gen := &fakeGenerator{out: validPlan}
	r := NewRequesterWithTimeout(logger.Nop(), gen, time.Second)
	plan, outcome := r.Request(context.Background(), testPrompt(), indianKey)
	if outcome != OutcomeGenerated {
		t.Fatalf("outcome = %s", outcome)
	}
	if plan.Dinner.Name != "Fish curry" || plan.Adaptations == nil {
		t.Fatalf("unexpected plan: %+v", plan)
	}
}

func TestRequestFillsMissingFields(t *testing.T) {
	raw := `{"breakfast":{"name":"a","ingredients":["x"]},"lunch":{"name":"b","ingredients":["y"]},"dinner":{"name":"c","ingredients":["z"]},"daily_guidelines":{"foods_to_emphasize":["z"]}}`
	r := NewRequesterWithTimeout(logger.Nop(), &fakeGenerator{out: raw}, time.Second)
	key := FallbackKey{Kind: KindDaily, Cuisine: "japanese", Conditions: []nutrition.ConditionTag{nutrition.Endometriosis}, Phase: nutrition.PhaseOvulatory}
	plan, _ := r.Request(context.Background(), testPrompt(), key)
	if plan.CuisineStyle != "Japanese" || plan.MenstrualPhase != "ovulatory" {
		t.Fatalf("defaults not filled: %+v", plan)
	}
	if !reflect.DeepEqual(plan.ConditionFocus, []string{"endometriosis"}) || plan.Snacks == nil {
		t.Fatalf("defaults not filled: %+v", plan)
	}
}

func TestRequestFallsBackOnError(t *testing.T) {
	r := NewRequesterWithTimeout(logger.Nop(), &fakeGenerator{err: errors.New("boom")}, time.Second)
	plan, outcome := r.Request(context.Background(), testPrompt(), indianKey)
	if outcome != OutcomeFallback || outcome.Generated() {
		t.Fatalf("outcome = %s", outcome)
	}
	if plan.Breakfast.Name != "Turmeric Golden Milk Oats" {
		t.Fatalf("expected indian fallback, got %s", plan.Breakfast.Name)
	}
	if !reflect.DeepEqual(plan.ConditionFocus, []string{"pcos"}) {
		t.Fatalf("condition_focus = %v", plan.ConditionFocus)
	}
}

func TestRequestFallsBackOnGarbage(t *testing.T) {
	r := NewRequesterWithTimeout(logger.Nop(), &fakeGenerator{out: "<html>oops</html>"}, time.Second)
	if _, outcome := r.Request(context.Background(), testPrompt(), indianKey); outcome != OutcomeFallback {
		t.Fatalf("outcome = %s", outcome)
	}
}

func TestRequestTimeoutCancelsGeneration(t *testing.T) {
	gen := &fakeGenerator{block: true}
	r := NewRequesterWithTimeout(logger.Nop(), gen, 20*time.Millisecond)
	start := time.Now()
	plan, outcome := r.Request(context.Background(), testPrompt(), FallbackKey{Kind: KindCuisine, Cuisine: "thai"})
	if outcome != OutcomeFallback {
		t.Fatalf("outcome = %s", outcome)
	}
	if !errors.Is(gen.seen, context.DeadlineExceeded) {
		t.Fatalf("generator saw %v, want deadline exceeded", gen.seen)
	}
	if time.Since(start) > 2*time.Second {
		t.Fatal("timeout did not bound the request")
	}
	if plan.CuisineStyle != "Mediterranean" {
		t.Fatalf("expected mediterranean fallback, got %s", plan.CuisineStyle)
	}
}

func TestRequestNilGenerator(t *testing.T) {
	r := NewRequesterWithTimeout(nil, nil, time.Second)
	if _, outcome := r.Request(context.Background(), testPrompt(), indianKey); outcome != OutcomeFallback {
		t.Fatalf("outcome = %s", outcome)
	}
}

func TestFallbackIsByteIdentical(t *testing.T) {
	key := FallbackKey{Kind: KindDaily, Cuisine: "mexican", Phase: nutrition.PhaseLuteal}
	a, _ := json.Marshal(Fallback(key))
	first := Fallback(key)
	first.Breakfast.Ingredients[0] = "mutated"
	first.Snacks[0].Name = "mutated"
	b, _ := json.Marshal(Fallback(key))
	if string(a) != string(b) {
		t.Fatal("fallback plans differ between calls")
	}
}

func TestFallbackSelection(t *testing.T) {
	tests := []struct {
		key       FallbackKey
		breakfast string
	}{
		{FallbackKey{Kind: KindCuisine, Cuisine: "Indian"}, "Turmeric Golden Milk Oats"},
		{FallbackKey{Kind: KindCuisine, Cuisine: "mediterranean"}, "Greek Yogurt Bowl with Nuts"},
		{FallbackKey{Kind: KindCuisine, Cuisine: ""}, "Greek Yogurt Bowl with Nuts"},
		{FallbackKey{Kind: KindDaily}, "Iron-Rich Spinach Smoothie Bowl"},
		{FallbackKey{Kind: KindDaily, Cuisine: "indian"}, "Turmeric Golden Milk Oats"},
	}
	for _, tc := range tests {
		plan := Fallback(tc.key)
		if plan.Breakfast.Name != tc.breakfast {
			t.Errorf("Fallback(%+v).Breakfast = %s, want %s", tc.key, plan.Breakfast.Name, tc.breakfast)
		}
		if _, _, err := Parse(mustJSON(t, plan)); err != nil {
			t.Errorf("fallback %+v does not validate: %v", tc.key, err)
		}
	}
}

func TestDailyFallbackCarriesPhase(t *testing.T) {
	plan := Fallback(FallbackKey{Kind: KindDaily, Phase: nutrition.PhaseFollicular})
	if plan.MenstrualPhase != "follicular" || len(plan.DailyGuidelines.CycleSupport) == 0 {
		t.Fatalf("unexpected daily fallback: %+v", plan)
	}
	if plan.Snacks[0].Name != "Flax Seed Energy Balls" {
		t.Fatalf("snack = %s", plan.Snacks[0].Name)
	}
}

func mustJSON(t *testing.T, v any) string {
	t.Helper()
	b, err := json.Marshal(v)
	if err != nil {
		t.Fatal(err)
	}
	return string(b)
}
