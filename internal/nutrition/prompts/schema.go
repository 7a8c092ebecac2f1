package prompts

import "sort"

func stringArray() map[string]any {
	return map[string]any{"type": "array", "items": map[string]any{"type": "string"}}
}

func object(props map[string]any) map[string]any {
	required := make([]string, 0, len(props))
	for k := range props {
		required = append(required, k)
	}
	sort.Strings(required)
	return map[string]any{
		"type":                 "object",
		"properties":           props,
		"required":             required,
		"additionalProperties": false,
	}
}

func mealSchema() map[string]any {
	return object(map[string]any{
		"name":                  map[string]any{"type": "string"},
		"ingredients":           stringArray(),
		"preparation_time":      map[string]any{"type": "string"},
		"cooking_method":        map[string]any{"type": "string"},
		"nutritional_focus":     stringArray(),
		"health_benefits":       stringArray(),
		"cultural_authenticity": map[string]any{"type": "string"},
	})
}

// MealPlanSchema is the strict structured-output schema for one daily plan.
// Strict mode requires every property to be listed as required.
func MealPlanSchema() map[string]any {
	return object(map[string]any{
		"condition_focus": stringArray(),
		"cuisine_style":   map[string]any{"type": "string"},
		"menstrual_phase": map[string]any{"type": "string"},
		"cycle_specific_recommendations": object(map[string]any{
			"phase":                 map[string]any{"type": "string"},
			"seed_cycling":          stringArray(),
			"hormone_support_foods": stringArray(),
			"phase_benefits":        stringArray(),
		}),
		"breakfast": mealSchema(),
		"lunch":     mealSchema(),
		"dinner":    mealSchema(),
		"snacks":    map[string]any{"type": "array", "items": mealSchema()},
		"daily_guidelines": object(map[string]any{
			"foods_to_emphasize":     stringArray(),
			"foods_to_limit":         stringArray(),
			"hydration_tips":         stringArray(),
			"timing_recommendations": stringArray(),
			"cycle_support":          stringArray(),
		}),
	})
}
