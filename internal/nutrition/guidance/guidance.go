// Package guidance is the static nutrition knowledge base: per-condition
// dietary guidance, per-phase cycle guidance and cuisine profiles.
package guidance

import (
	_ "embed"
	"fmt"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

const DefaultCuisine = "mediterranean"

//go:embed guidance.yaml
var embedded []byte

type ConditionGuidance struct {
	Name           string   `yaml:"name" json:"name"`
	DietaryFocus   []string `yaml:"dietary_focus" json:"dietary_focus"`
	FoodsToInclude []string `yaml:"foods_to_include" json:"foods_to_include"`
	FoodsToAvoid   []string `yaml:"foods_to_avoid" json:"foods_to_avoid"`
	MealTiming     []string `yaml:"meal_timing" json:"meal_timing_considerations"`
}

type PhaseGuidance struct {
	Phase           nutrition.Phase `yaml:"-" json:"phase"`
	Name            string          `yaml:"name" json:"name"`
	Days            string          `yaml:"days" json:"days"`
	Description     string          `yaml:"description" json:"description"`
	Focus           string          `yaml:"focus" json:"focus"`
	Avoid           string          `yaml:"avoid" json:"avoid"`
	SeedCycling     []string        `yaml:"seed_cycling" json:"seed_cycling"`
	SupportingFoods []string        `yaml:"supporting_foods" json:"supporting_foods"`
	Benefits        []string        `yaml:"benefits" json:"benefits"`
	// Three ways to work the seeds into a day, from least effort to most
	// therapeutic.
	Convenience []string                   `yaml:"convenience" json:"lazy_incorporation"`
	Flavor      []string                   `yaml:"flavor" json:"tasty_incorporation"`
	Efficacy    []string                   `yaml:"efficacy" json:"healthy_incorporation"`
	Message     string                     `yaml:"message" json:"message"`
	ChatFoods   []nutrition.IngredientCard `yaml:"chat_foods" json:"-"`
}

// IncorporationStyle is one way of working the phase seeds into meals.
type IncorporationStyle struct {
	Label string
	Tips  []string
}

// Incorporation returns the convenience, flavor and efficacy styles in that
// order.
func (p PhaseGuidance) Incorporation() []IncorporationStyle {
	return []IncorporationStyle{
		{Label: "Lazy", Tips: p.Convenience},
		{Label: "Tasty", Tips: p.Flavor},
		{Label: "Healthy", Tips: p.Efficacy},
	}
}

type CuisineProfile struct {
	Key                string   `yaml:"-" json:"key"`
	Name               string   `yaml:"name" json:"name"`
	CommonIngredients  []string `yaml:"common_ingredients" json:"common_ingredients"`
	CookingMethods     []string `yaml:"cooking_methods" json:"cooking_methods"`
	StapleFoods        []string `yaml:"staple_foods" json:"staple_foods"`
	HealthyAdaptations []string `yaml:"healthy_adaptations" json:"healthy_adaptations"`
}

type Table struct {
	Conditions map[string]ConditionGuidance `yaml:"conditions"`
	Phases     map[string]PhaseGuidance     `yaml:"phases"`
	Cuisines   map[string]CuisineProfile    `yaml:"cuisines"`
}

// Load decodes a guidance table and checks that every phase and the default
// cuisine are present.
func Load(data []byte) (*Table, error) {
	var t Table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("decode guidance: %w", err)
	}
	for _, p := range nutrition.Phases() {
		g, ok := t.Phases[string(p)]
		if !ok {
			return nil, fmt.Errorf("guidance missing phase %q", p)
		}
		g.Phase = p
		t.Phases[string(p)] = g
	}
	for key, c := range t.Cuisines {
		c.Key = key
		t.Cuisines[key] = c
	}
	if _, ok := t.Cuisines[DefaultCuisine]; !ok {
		return nil, fmt.Errorf("guidance missing default cuisine %q", DefaultCuisine)
	}
	return &t, nil
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the embedded table. The embedded data is validated by
// tests, so a decode failure here is a build defect.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Load(embedded)
		if err != nil {
			panic(err)
		}
		defaultTable = t
	})
	return defaultTable
}

func (t *Table) Condition(tag nutrition.ConditionTag) (ConditionGuidance, bool) {
	g, ok := t.Conditions[string(tag)]
	return g, ok
}

// ForConditions returns guidance for the tags that have any, in tag order.
func (t *Table) ForConditions(tags []nutrition.ConditionTag) []ConditionGuidance {
	out := make([]ConditionGuidance, 0, len(tags))
	for _, tag := range tags {
		if g, ok := t.Condition(tag); ok {
			out = append(out, g)
		}
	}
	return out
}

// Phase returns guidance for p. An invalid phase gets menstrual guidance.
func (t *Table) Phase(p nutrition.Phase) PhaseGuidance {
	if g, ok := t.Phases[string(p)]; ok {
		return g
	}
	return t.Phases[string(nutrition.PhaseMenstrual)]
}

// Cuisine looks up a cuisine by case-insensitive key. Unknown names get the
// Mediterranean profile.
func (t *Table) Cuisine(name string) CuisineProfile {
	if c, ok := t.Cuisines[NormalizeCuisine(name)]; ok {
		return c
	}
	return t.Cuisines[DefaultCuisine]
}

func NormalizeCuisine(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

func Condition(tag nutrition.ConditionTag) (ConditionGuidance, bool) {
	return Default().Condition(tag)
}

func Phase(p nutrition.Phase) PhaseGuidance { return Default().Phase(p) }

func Cuisine(name string) CuisineProfile { return Default().Cuisine(name) }
