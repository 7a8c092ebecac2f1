// Package nutrition holds the value types shared by the meal planning
// pipeline: condition tags, cycle phases, the normalized user profile, meal
// plans and daily feedback.
package nutrition

import "time"

type ConditionTag string

const (
	PCOS             ConditionTag = "pcos"
	Endometriosis    ConditionTag = "endometriosis"
	ThyroidHypo      ConditionTag = "thyroid_hypo"
	DiabetesInsulin  ConditionTag = "diabetes_insulin"
	MentalHealth     ConditionTag = "mental_health"
	DigestiveHealth  ConditionTag = "digestive_health"
	Autoimmune       ConditionTag = "autoimmune"
	StressAdrenal    ConditionTag = "stress_adrenal"
	HormoneImbalance ConditionTag = "hormone_imbalance"
	HormoneBalance   ConditionTag = "hormone_balance"
	GeneralChronic   ConditionTag = "general_chronic"
	AntiInflammatory ConditionTag = "anti_inflammatory"
	GeneralWellness  ConditionTag = "general_wellness"
)

func TagStrings(tags []ConditionTag) []string {
	out := make([]string, len(tags))
	for i, t := range tags {
		out[i] = string(t)
	}
	return out
}

type Phase string

const (
	PhaseMenstrual  Phase = "menstrual"
	PhaseFollicular Phase = "follicular"
	PhaseOvulatory  Phase = "ovulatory"
	PhaseLuteal     Phase = "luteal"
)

// Phases lists the cycle phases in cycle order.
func Phases() []Phase {
	return []Phase{PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal}
}

func (p Phase) Valid() bool {
	switch p {
	case PhaseMenstrual, PhaseFollicular, PhaseOvulatory, PhaseLuteal:
		return true
	}
	return false
}

// Profile is the typed, defaulted view of a user's onboarding answers.
type Profile struct {
	Age               string
	Diet              string
	Symptoms          []string
	Goals             []string
	MedicalConditions []string
	Allergies         []string
	LastPeriod        *time.Time
	CycleLength       int
	Irregular         bool
	StressLevel       string
	SleepHours        string
	ExerciseLevel     string
	WaterIntake       string
}

type MealItem struct {
	Name                 string   `json:"name" yaml:"name" validate:"required"`
	Ingredients          []string `json:"ingredients" yaml:"ingredients" validate:"min=1"`
	PreparationTime      string   `json:"preparation_time" yaml:"preparation_time"`
	CookingMethod        string   `json:"cooking_method" yaml:"cooking_method"`
	NutritionalFocus     []string `json:"nutritional_focus" yaml:"nutritional_focus"`
	HealthBenefits       []string `json:"health_benefits" yaml:"health_benefits"`
	CulturalAuthenticity string   `json:"cultural_authenticity" yaml:"cultural_authenticity"`
}

type DailyGuidelines struct {
	FoodsToEmphasize      []string `json:"foods_to_emphasize" yaml:"foods_to_emphasize" validate:"min=1"`
	FoodsToLimit          []string `json:"foods_to_limit" yaml:"foods_to_limit"`
	HydrationTips         []string `json:"hydration_tips" yaml:"hydration_tips"`
	TimingRecommendations []string `json:"timing_recommendations" yaml:"timing_recommendations"`
	CycleSupport          []string `json:"cycle_support,omitempty" yaml:"cycle_support"`
}

type CycleRecommendations struct {
	Phase               string   `json:"phase" yaml:"phase"`
	SeedCycling         []string `json:"seed_cycling" yaml:"seed_cycling"`
	HormoneSupportFoods []string `json:"hormone_support_foods" yaml:"hormone_support_foods"`
	PhaseBenefits       []string `json:"phase_benefits" yaml:"phase_benefits"`
}

type MealPlan struct {
	ConditionFocus       []string              `json:"condition_focus" yaml:"condition_focus"`
	CuisineStyle         string                `json:"cuisine_style" yaml:"cuisine_style"`
	MenstrualPhase       string                `json:"menstrual_phase,omitempty" yaml:"menstrual_phase"`
	CycleRecommendations *CycleRecommendations `json:"cycle_specific_recommendations,omitempty" yaml:"cycle_specific_recommendations"`
	Breakfast            MealItem              `json:"breakfast" yaml:"breakfast"`
	Lunch                MealItem              `json:"lunch" yaml:"lunch"`
	Dinner               MealItem              `json:"dinner" yaml:"dinner"`
	Snacks               []MealItem            `json:"snacks" yaml:"snacks" validate:"dive"`
	DailyGuidelines      DailyGuidelines       `json:"daily_guidelines" yaml:"daily_guidelines"`
	Adaptations          []string              `json:"adaptations" yaml:"adaptations"`
}

// Meals returns breakfast, lunch, dinner then snacks.
func (p MealPlan) Meals() []MealItem {
	out := make([]MealItem, 0, 3+len(p.Snacks))
	out = append(out, p.Breakfast, p.Lunch, p.Dinner)
	return append(out, p.Snacks...)
}

// Ingredients flattens every meal's ingredients in meal order.
func (p MealPlan) Ingredients() []string {
	var out []string
	for _, m := range p.Meals() {
		out = append(out, m.Ingredients...)
	}
	return out
}

// Feedback is a user's self-report on one day's plan. Ratings run 1-5; zero
// means the rating was not given.
type Feedback struct {
	Date                string         `json:"date" validate:"omitempty,datetime=2006-01-02"`
	FollowedPlan        bool           `json:"followedPlan"`
	EnjoyedMeals        []string       `json:"enjoyedMeals" validate:"max=16,dive,max=200"`
	DislikedMeals       []string       `json:"dislikedMeals" validate:"max=16,dive,max=200"`
	EnergyLevel         int            `json:"energyLevel" validate:"min=0,max=5"`
	DigestiveHealth     int            `json:"digestiveHealth" validate:"min=0,max=5"`
	MoodRating          int            `json:"moodRating" validate:"min=0,max=5"`
	SymptomsImprovement map[string]int `json:"symptomsImprovement,omitempty"`
	Comment             string         `json:"feedback" validate:"max=4000"`
}

// IngredientCard is a research-backed food suggestion shown in chat.
type IngredientCard struct {
	Name        string `json:"name" yaml:"name"`
	Description string `json:"description" yaml:"description"`
	Emoji       string `json:"emoji" yaml:"emoji"`
	Lazy        string `json:"lazy" yaml:"lazy"`
	Tasty       string `json:"tasty" yaml:"tasty"`
	Healthy     string `json:"healthy" yaml:"healthy"`
}
