package mealplan

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/guidance"
)

//go:embed fallbacks.yaml
var fallbackData []byte

const (
	setIndian        = "indian"
	setMediterranean = "mediterranean"
	setDaily         = "daily"
)

type Kind string

const (
	// KindCuisine is a plan requested for a cuisine (daily, weekly and monthly
	// cuisine plans).
	KindCuisine Kind = "cuisine"
	// KindDaily is the adaptive plan for today.
	KindDaily Kind = "daily"
)

// FallbackKey selects the static plan served when generation fails.
type FallbackKey struct {
	Kind       Kind
	Cuisine    string
	Conditions []nutrition.ConditionTag
	Phase      nutrition.Phase
}

var (
	fallbackOnce sync.Once
	fallbackSets map[string]nutrition.MealPlan
	fallbackErr  error
)

func loadFallbacks() (map[string]nutrition.MealPlan, error) {
	fallbackOnce.Do(func() {
		var sets map[string]nutrition.MealPlan
		if err := yaml.Unmarshal(fallbackData, &sets); err != nil {
			fallbackErr = fmt.Errorf("decode fallbacks: %w", err)
			return
		}
		for _, k := range []string{setIndian, setMediterranean, setDaily} {
			if _, ok := sets[k]; !ok {
				fallbackErr = fmt.Errorf("fallbacks missing set %q", k)
				return
			}
		}
		fallbackSets = sets
	})
	return fallbackSets, fallbackErr
}

func setFor(key FallbackKey) string {
	cuisine := guidance.NormalizeCuisine(key.Cuisine)
	switch {
	case cuisine == setIndian:
		return setIndian
	case key.Kind == KindDaily:
		return setDaily
	default:
		return setMediterranean
	}
}

// Fallback returns a fresh copy of the static plan for key. Repeated calls
// with equal keys return equal plans.
func Fallback(key FallbackKey) nutrition.MealPlan {
	sets, err := loadFallbacks()
	if err != nil {
		panic(err)
	}
	plan := clonePlan(sets[setFor(key)])
	plan.ConditionFocus = nutrition.TagStrings(key.Conditions)
	if key.Phase.Valid() {
		plan.MenstrualPhase = string(key.Phase)
	}
	plan.Adaptations = []string{}
	return plan
}

func clonePlan(p nutrition.MealPlan) nutrition.MealPlan {
	out := p
	out.ConditionFocus = cloneStrings(p.ConditionFocus)
	if p.CycleRecommendations != nil {
		cr := *p.CycleRecommendations
		cr.SeedCycling = cloneStrings(cr.SeedCycling)
		cr.HormoneSupportFoods = cloneStrings(cr.HormoneSupportFoods)
		cr.PhaseBenefits = cloneStrings(cr.PhaseBenefits)
		out.CycleRecommendations = &cr
	}
	out.Breakfast = cloneMeal(p.Breakfast)
	out.Lunch = cloneMeal(p.Lunch)
	out.Dinner = cloneMeal(p.Dinner)
	out.Snacks = make([]nutrition.MealItem, len(p.Snacks))
	for i, s := range p.Snacks {
		out.Snacks[i] = cloneMeal(s)
	}
	g := p.DailyGuidelines
	out.DailyGuidelines = nutrition.DailyGuidelines{
		FoodsToEmphasize:      cloneStrings(g.FoodsToEmphasize),
		FoodsToLimit:          cloneStrings(g.FoodsToLimit),
		HydrationTips:         cloneStrings(g.HydrationTips),
		TimingRecommendations: cloneStrings(g.TimingRecommendations),
		CycleSupport:          cloneStrings(g.CycleSupport),
	}
	out.Adaptations = cloneStrings(p.Adaptations)
	return out
}

func cloneMeal(m nutrition.MealItem) nutrition.MealItem {
	m.Ingredients = cloneStrings(m.Ingredients)
	m.NutritionalFocus = cloneStrings(m.NutritionalFocus)
	m.HealthBenefits = cloneStrings(m.HealthBenefits)
	return m
}

func cloneStrings(in []string) []string {
	if in == nil {
		return nil
	}
	return append([]string(nil), in...)
}
