// Package mealplan turns a prompt into a validated meal plan. Generation
// failures of any kind degrade to a static plan; callers never see an error.
package mealplan

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/guidance"
	"github.com/yungbote/winnie-backend/internal/nutrition/prompts"
	"github.com/yungbote/winnie-backend/internal/observability"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

const DefaultTimeout = 20 * time.Second

// Generator is the slice of the LLM client the requester needs.
type Generator interface {
	GenerateJSONText(ctx context.Context, system, user, schemaName string, schema map[string]any) (string, error)
}

type Outcome string

const (
	OutcomeGenerated Outcome = "generated"
	// OutcomeRepaired means the output only decoded after permissive
	// extraction.
	OutcomeRepaired Outcome = "repaired"
	OutcomeFallback Outcome = "fallback"
)

func (o Outcome) Generated() bool { return o != OutcomeFallback }

type Requester struct {
	log     *logger.Logger
	gen     Generator
	timeout time.Duration
}

// NewRequesterWithTimeout bounds each generation by timeout (DefaultTimeout
// when non-positive). A nil generator always serves the fallback.
func NewRequesterWithTimeout(log *logger.Logger, gen Generator, timeout time.Duration) *Requester {
	if log == nil {
		log = logger.Nop()
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Requester{log: log.With("service", "MealPlanRequester"), gen: gen, timeout: timeout}
}

// Request generates a plan for p. On any failure it returns the fallback plan
// for key.
func (r *Requester) Request(ctx context.Context, p prompts.Prompt, key FallbackKey) (nutrition.MealPlan, Outcome) {
	plan, outcome, err := r.generate(ctx, p)
	if err != nil {
		r.log.Warn("Meal plan generation failed, serving fallback", "kind", key.Kind, "cuisine", key.Cuisine, "error", err)
		plan, outcome = Fallback(key), OutcomeFallback
	} else {
		fillDefaults(&plan, key)
	}
	observability.Current().ObserveMealPlan(string(key.Kind), string(outcome))
	return plan, outcome
}

func (r *Requester) generate(ctx context.Context, p prompts.Prompt) (nutrition.MealPlan, Outcome, error) {
	if r.gen == nil {
		return nutrition.MealPlan{}, "", fmt.Errorf("%w: no generator configured", ErrGenerationFailed)
	}
	ctx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	ctx, span := observability.StartSpan(ctx, "mealplan.generate")
	defer span.End()

	start := time.Now()
	raw, err := r.gen.GenerateJSONText(ctx, p.System, p.User, p.SchemaName, p.Schema)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nutrition.MealPlan{}, "", fmt.Errorf("%w: timed out after %s", ErrGenerationFailed, r.timeout)
		}
		return nutrition.MealPlan{}, "", fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	plan, repaired, err := Parse(raw)
	if err != nil {
		span.RecordError(err)
		return nutrition.MealPlan{}, "", err
	}
	r.log.Debug("Meal plan generated", "duration_ms", time.Since(start).Milliseconds(), "repaired", repaired)
	if repaired {
		return plan, OutcomeRepaired, nil
	}
	return plan, OutcomeGenerated, nil
}

func fillDefaults(plan *nutrition.MealPlan, key FallbackKey) {
	if len(plan.ConditionFocus) == 0 {
		plan.ConditionFocus = nutrition.TagStrings(key.Conditions)
	}
	if plan.CuisineStyle == "" {
		plan.CuisineStyle = guidance.Cuisine(key.Cuisine).Name
	}
	if plan.MenstrualPhase == "" && key.Phase.Valid() {
		plan.MenstrualPhase = string(key.Phase)
	}
	if plan.Snacks == nil {
		plan.Snacks = []nutrition.MealItem{}
	}
	if plan.Adaptations == nil {
		plan.Adaptations = []string{}
	}
}
