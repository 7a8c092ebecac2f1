package mealplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

// ErrGenerationFailed covers every way a generated plan can be unusable:
// transport errors, timeouts, undecodable output and failed validation.
var ErrGenerationFailed = errors.New("meal plan generation failed")

var (
	doctypeRe     = regexp.MustCompile(`(?i)<!DOCTYPE[^>]*>`)
	htmlTagRe     = regexp.MustCompile(`<[^>]*>`)
	outerObjectRe = regexp.MustCompile(`\{[\s\S]*\}`)
	validate      = validator.New(validator.WithRequiredStructEnabled())
)

// Normalize strips the wrappers models put around JSON: code fences, text
// before the first brace or after the last one, and stray HTML.
func Normalize(raw string) string {
	s := strings.TrimSpace(raw)
	switch {
	case strings.HasPrefix(s, "```json"):
		s = strings.TrimSpace(strings.TrimPrefix(s, "```json"))
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	case strings.HasPrefix(s, "```"):
		s = strings.TrimSpace(strings.TrimPrefix(s, "```"))
		s = strings.TrimSpace(strings.TrimSuffix(s, "```"))
	}
	start, end := strings.Index(s, "{"), strings.LastIndex(s, "}")
	if start != -1 && end > start {
		s = s[start : end+1]
	}
	s = doctypeRe.ReplaceAllString(s, "")
	return htmlTagRe.ReplaceAllString(s, "")
}

// Parse decodes raw model output into a validated plan. The second return
// reports whether the permissive extraction was needed.
func Parse(raw string) (nutrition.MealPlan, bool, error) {
	plan, err := decode(Normalize(raw))
	repaired := false
	if err != nil {
		m := outerObjectRe.FindString(raw)
		if m == "" {
			return nutrition.MealPlan{}, false, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		plan, err = decode(m)
		if err != nil {
			return nutrition.MealPlan{}, false, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		repaired = true
	}
	if err := validate.Struct(plan); err != nil {
		return nutrition.MealPlan{}, repaired, fmt.Errorf("%w: invalid plan: %v", ErrGenerationFailed, err)
	}
	return plan, repaired, nil
}

func decode(s string) (nutrition.MealPlan, error) {
	var plan nutrition.MealPlan
	if err := json.Unmarshal([]byte(s), &plan); err != nil {
		return nutrition.MealPlan{}, err
	}
	return plan, nil
}
