// Package prompts assembles the meal plan generation prompt and its
// structured-output schema. Everything here is pure string assembly.
package prompts

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/guidance"
)

const SchemaName = "daily_meal_plan"

const systemPrompt = `You are an expert nutritionist specializing in women's health conditions. ` +
	`You create personalized daily meal plans with menstrual cycle phase-specific recommendations. ` +
	`You always answer with a single JSON object and nothing else.`

type Input struct {
	Conditions  []nutrition.ConditionTag
	Phase       nutrition.Phase
	Cuisine     string
	Profile     nutrition.Profile
	Feedback    *nutrition.Feedback
	Adaptations []string
	// Research is a preformatted evidence block, usually from the research
	// service. Empty means none.
	Research string
}

type Prompt struct {
	System     string
	User       string
	SchemaName string
	Schema     map[string]any
}

// Build renders the prompt for one daily plan using the default guidance
// table.
func Build(in Input) Prompt {
	return BuildWith(guidance.Default(), in)
}

func BuildWith(tbl *guidance.Table, in Input) Prompt {
	conds := tbl.ForConditions(in.Conditions)
	cuisine := tbl.Cuisine(in.Cuisine)
	phase := tbl.Phase(in.Phase)

	var focus, include, avoid []string
	for _, c := range conds {
		focus = append(focus, c.DietaryFocus...)
		include = append(include, c.FoodsToInclude...)
		avoid = append(avoid, c.FoodsToAvoid...)
	}
	include = append(include, phase.SupportingFoods...)

	var b strings.Builder
	fmt.Fprintf(&b, "Create a personalized daily meal plan with menstrual cycle phase-specific recommendations.\n\n")
	fmt.Fprintf(&b, "HEALTH CONDITIONS: %s\n", strings.Join(nutrition.TagStrings(in.Conditions), ", "))
	fmt.Fprintf(&b, "CUISINE PREFERENCE: %s\n", cuisine.Name)
	fmt.Fprintf(&b, "DIETARY FOCUS: %s\n\n", strings.Join(focus, ", "))

	fmt.Fprintf(&b, "MENSTRUAL CYCLE PHASE: %s (%s)\n", phase.Name, phase.Days)
	fmt.Fprintf(&b, "- Nutritional focus: %s\n", phase.Focus)
	fmt.Fprintf(&b, "- Foods to limit: %s\n", phase.Avoid)
	fmt.Fprintf(&b, "PHASE-SPECIFIC SEED CYCLING: %s\n", strings.Join(phase.SeedCycling, ", "))
	fmt.Fprintf(&b, "HORMONE SUPPORT: %s\n", strings.Join(phase.SupportingFoods, ", "))
	fmt.Fprintf(&b, "PHASE BENEFITS: %s\n\n", strings.Join(phase.Benefits, " | "))

	b.WriteString("SEED CYCLING INCORPORATION METHODS:\n")
	for _, style := range phase.Incorporation() {
		fmt.Fprintf(&b, "- %s: %s\n", style.Label, strings.Join(style.Tips, " | "))
	}
	b.WriteString("\n")

	fmt.Fprintf(&b, "FOODS TO EMPHASIZE: %s\n", strings.Join(include, ", "))
	fmt.Fprintf(&b, "FOODS TO AVOID/LIMIT: %s\n\n", strings.Join(avoid, ", "))

	b.WriteString("CUISINE ELEMENTS TO INCLUDE:\n")
	fmt.Fprintf(&b, "- Common ingredients: %s\n", strings.Join(cuisine.CommonIngredients, ", "))
	fmt.Fprintf(&b, "- Cooking methods: %s\n", strings.Join(cuisine.CookingMethods, ", "))
	fmt.Fprintf(&b, "- Healthy adaptations: %s\n\n", strings.Join(cuisine.HealthyAdaptations, ", "))

	p := in.Profile
	b.WriteString("USER PROFILE:\n")
	fmt.Fprintf(&b, "- Diet type: %s\n", orDefault(p.Diet, "omnivore"))
	fmt.Fprintf(&b, "- Age: %s\n", orDefault(p.Age, "adult"))
	fmt.Fprintf(&b, "- Current symptoms: %s\n", joinOr(p.Symptoms, "None"))
	fmt.Fprintf(&b, "- Health goals: %s\n", joinOr(p.Goals, "General wellness"))
	if len(p.Allergies) > 0 {
		fmt.Fprintf(&b, "- Allergies (never include): %s\n", strings.Join(p.Allergies, ", "))
	}

	if in.Feedback != nil {
		b.WriteString(feedbackBlock(*in.Feedback, in.Adaptations))
	}

	fmt.Fprintf(&b, "\nCreate a complete daily meal plan that is:\n")
	b.WriteString("1. Therapeutically appropriate for the health conditions\n")
	b.WriteString("2. Includes menstrual cycle phase-specific seed cycling recommendations\n")
	fmt.Fprintf(&b, "3. Culturally authentic to %s cuisine\n", cuisine.Name)
	b.WriteString("4. Practical and accessible\n")
	b.WriteString("5. Nutritionally balanced\n\n")
	fmt.Fprintf(&b, "Set condition_focus to the health conditions above, cuisine_style to %q and menstrual_phase to %q. ", cuisine.Name, phase.Name)
	b.WriteString("Fill cycle_specific_recommendations and daily_guidelines.cycle_support from the phase guidance.\n\n")
	b.WriteString("CRITICAL: Respond with ONLY valid JSON, no markdown formatting, no explanations.")

	if r := strings.TrimSpace(in.Research); r != "" {
		b.WriteString("\n\n")
		b.WriteString(r)
	}

	return Prompt{
		System:     systemPrompt,
		User:       b.String(),
		SchemaName: SchemaName,
		Schema:     MealPlanSchema(),
	}
}

func feedbackBlock(f nutrition.Feedback, adaptations []string) string {
	var b strings.Builder
	b.WriteString("\nPREVIOUS DAY FEEDBACK (adapt based on this):\n")
	fmt.Fprintf(&b, "- Followed plan: %s\n", yesNo(f.FollowedPlan))
	fmt.Fprintf(&b, "- Enjoyed meals: %s\n", joinOr(f.EnjoyedMeals, "None specified"))
	fmt.Fprintf(&b, "- Disliked meals: %s\n", joinOr(f.DislikedMeals, "None"))
	fmt.Fprintf(&b, "- Energy level: %s\n", rating(f.EnergyLevel))
	fmt.Fprintf(&b, "- Digestive health: %s\n", rating(f.DigestiveHealth))
	fmt.Fprintf(&b, "- Mood: %s\n", rating(f.MoodRating))
	fmt.Fprintf(&b, "- Additional feedback: %s\n", orDefault(f.Comment, "None"))
	if len(adaptations) > 0 {
		fmt.Fprintf(&b, "\nADAPTATIONS TO MAKE: %s\n", strings.Join(adaptations, ", "))
	}
	return b.String()
}

// FormatResearch renders evidence snippets the way the prompt expects them.
// Content is cut to 200 bytes on a rune boundary.
func FormatResearch(items []ResearchItem) string {
	if len(items) == 0 {
		return ""
	}
	lines := make([]string, 0, len(items))
	for _, it := range items {
		lines = append(lines, fmt.Sprintf("- %s: %s...", it.Title, truncate(it.Content, 200)))
	}
	return "SCIENTIFIC RESEARCH CONTEXT:\n" + strings.Join(lines, "\n") +
		"\n\nUse this evidence-based research to inform your meal planning recommendations."
}

type ResearchItem struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	cut := n
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut]
}

func rating(v int) string {
	if v <= 0 {
		return "not rated"
	}
	return fmt.Sprintf("%d/5", v)
}

func yesNo(v bool) string {
	if v {
		return "Yes"
	}
	return "No"
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}

func joinOr(items []string, def string) string {
	if len(items) == 0 {
		return def
	}
	return strings.Join(items, ", ")
}
