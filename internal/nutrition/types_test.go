package nutrition

import (
	"reflect"
	"testing"
)

func TestMealPlanIngredientsOrder(t *testing.T) {
	p := MealPlan{
		Breakfast: MealItem{Ingredients: []string{"oats"}},
		Lunch:     MealItem{Ingredients: []string{"quinoa", "spinach"}},
		Dinner:    MealItem{Ingredients: []string{"salmon"}},
		Snacks:    []MealItem{{Ingredients: []string{"almonds"}}},
	}
	want := []string{"oats", "quinoa", "spinach", "salmon", "almonds"}
	if got := p.Ingredients(); !reflect.DeepEqual(got, want) {
		t.Fatalf("Ingredients = %v, want %v", got, want)
	}
}

func TestPhaseValid(t *testing.T) {
	for _, p := range Phases() {
		if !p.Valid() {
			t.Fatalf("%s should be valid", p)
		}
	}
	if Phase("lunar").Valid() {
		t.Fatal("unknown phase reported valid")
	}
}
