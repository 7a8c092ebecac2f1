package services

import (
	"context"
	"fmt"
	"strings"

	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/conditions"
	"github.com/yungbote/winnie-backend/internal/nutrition/cycle"
	"github.com/yungbote/winnie-backend/internal/nutrition/mealplan"
	"github.com/yungbote/winnie-backend/internal/nutrition/prompts"
	"github.com/yungbote/winnie-backend/internal/nutrition/shopping"
	"github.com/yungbote/winnie-backend/internal/observability"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

const (
	daysPerWeek   = 7
	weeksPerMonth = 4
)

var weekdayNames = [daysPerWeek]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}

type MealPlanResult struct {
	Success            bool               `json:"success"`
	MealPlan           nutrition.MealPlan `json:"mealPlan"`
	ShoppingList       shopping.List      `json:"shoppingList"`
	DetectedConditions []string           `json:"detectedConditions"`
	Message            string             `json:"message"`
}

type PlanDay struct {
	DayName string             `json:"dayName"`
	Date    string             `json:"date"`
	Meals   nutrition.MealPlan `json:"meals"`
}

type WeeklyPlan struct {
	Week               int           `json:"week"`
	Days               []PlanDay     `json:"days"`
	WeeklyShoppingList shopping.List `json:"weeklyShoppingList"`
	WeeklyNotes        []string      `json:"weeklyNotes"`
}

type NutritionalSummary struct {
	FocusAreas   []string `json:"focusAreas"`
	KeyNutrients []string `json:"keyNutrients"`
	HealthGoals  []string `json:"healthGoals"`
}

type MonthlyPlan struct {
	Month               string             `json:"month"`
	Year                int                `json:"year"`
	Weeks               []WeeklyPlan       `json:"weeks"`
	MonthlyShoppingList shopping.List      `json:"monthlyShoppingList"`
	NutritionalSummary  NutritionalSummary `json:"nutritionalSummary"`
}

type WeeklyResult struct {
	Success  bool `json:"success"`
	MealPlan struct {
		WeeklyPlan WeeklyPlan `json:"weeklyPlan"`
	} `json:"mealPlan"`
	ShoppingList       shopping.List `json:"shoppingList"`
	DetectedConditions []string      `json:"detectedConditions"`
	Message            string        `json:"message"`
}

type MonthlyResult struct {
	Success  bool `json:"success"`
	MealPlan struct {
		MonthlyPlan MonthlyPlan `json:"monthlyPlan"`
	} `json:"mealPlan"`
	ShoppingList       shopping.List `json:"shoppingList"`
	DetectedConditions []string      `json:"detectedConditions"`
	Message            string        `json:"message"`
}

type MealPlanService interface {
	Daily(ctx context.Context, cuisine string) (*MealPlanResult, error)
	Weekly(ctx context.Context, cuisine string) (*WeeklyResult, error)
	Monthly(ctx context.Context, cuisine string) (*MonthlyResult, error)
	// ForProfile generates one plan without touching storage. It is the
	// shared core of the endpoints above and of the evaluation runs.
	ForProfile(ctx context.Context, p nutrition.Profile, conds []nutrition.ConditionTag, cuisine string, phase nutrition.Phase) (nutrition.MealPlan, mealplan.Outcome)
}

type mealPlanService struct {
	log       *logger.Logger
	profiles  ProfileService
	research  ResearchService
	requester *mealplan.Requester
	now       Clock
}

func NewMealPlanService(log *logger.Logger, profiles ProfileService, research ResearchService, requester *mealplan.Requester, now Clock) MealPlanService {
	return &mealPlanService{
		log:       log.With("service", "MealPlanService"),
		profiles:  profiles,
		research:  research,
		requester: requester,
		now:       clockOrDefault(now),
	}
}

type planContext struct {
	profile nutrition.Profile
	conds   []nutrition.ConditionTag
	phase   nutrition.Phase
	cuisine string
}

func (ms *mealPlanService) load(ctx context.Context, cuisine string) (planContext, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return planContext{}, err
	}
	p, err := ms.profiles.Normalized(ctx, userID)
	if err != nil {
		return planContext{}, err
	}
	return planContext{
		profile: p,
		conds:   conditions.Extract(p),
		phase:   cycle.Resolve(cycle.Input{LastPeriod: p.LastPeriod, Irregular: p.Irregular, CycleLength: p.CycleLength, Today: ms.now()}),
		cuisine: cuisineOrDefault(cuisine),
	}, nil
}

func (ms *mealPlanService) ForProfile(ctx context.Context, p nutrition.Profile, conds []nutrition.ConditionTag, cuisine string, phase nutrition.Phase) (nutrition.MealPlan, mealplan.Outcome) {
	cuisine = cuisineOrDefault(cuisine)
	research := ""
	if ms.research != nil {
		research = ms.research.Context(ctx, ResearchQuery(conds, cuisine, phase))
	}
	prompt := prompts.Build(prompts.Input{
		Conditions: conds,
		Phase:      phase,
		Cuisine:    cuisine,
		Profile:    p,
		Research:   research,
	})
	plan, outcome := ms.requester.Request(ctx, prompt, mealplan.FallbackKey{
		Kind:       mealplan.KindCuisine,
		Cuisine:    cuisine,
		Conditions: conds,
		Phase:      phase,
	})
	return plan, outcome
}

func (ms *mealPlanService) generate(ctx context.Context, kind, cuisine string) (planContext, nutrition.MealPlan, error) {
	pc, err := ms.load(ctx, cuisine)
	if err != nil {
		return planContext{}, nutrition.MealPlan{}, err
	}
	ctx, span := observability.StartSpan(ctx, "mealplan."+kind)
	defer span.End()
	plan, outcome := ms.ForProfile(ctx, pc.profile, pc.conds, pc.cuisine, pc.phase)
	ms.log.Info("Meal plan ready",
		"kind", kind,
		"cuisine", pc.cuisine,
		"phase", string(pc.phase),
		"conditions", strings.Join(nutrition.TagStrings(pc.conds), ","),
		"outcome", string(outcome),
	)
	return pc, plan, nil
}

func (ms *mealPlanService) Daily(ctx context.Context, cuisine string) (*MealPlanResult, error) {
	pc, plan, err := ms.generate(ctx, "daily", cuisine)
	if err != nil {
		return nil, err
	}
	return &MealPlanResult{
		Success:            true,
		MealPlan:           plan,
		ShoppingList:       shopping.FromPlan(plan),
		DetectedConditions: nutrition.TagStrings(pc.conds),
		Message:            fmt.Sprintf("Generated %s meal plan for your health profile", pc.cuisine),
	}, nil
}

// weekFrom repeats base over seven consecutive days starting today.
func (ms *mealPlanService) weekFrom(base nutrition.MealPlan, week int) WeeklyPlan {
	today := ms.now()
	days := make([]PlanDay, 0, daysPerWeek)
	for i := 0; i < daysPerWeek; i++ {
		days = append(days, PlanDay{
			DayName: weekdayNames[i],
			Date:    today.AddDate(0, 0, i).Format(types.DateLayout),
			Meals:   base,
		})
	}
	return WeeklyPlan{
		Week:               week,
		Days:               days,
		WeeklyShoppingList: weeklyShopping(days),
		WeeklyNotes:        []string{},
	}
}

func weeklyShopping(days []PlanDay) shopping.List {
	lists := make([]shopping.List, 0, len(days))
	for _, d := range days {
		lists = append(lists, shopping.FromPlan(d.Meals))
	}
	return shopping.Merge(lists...)
}

func (ms *mealPlanService) Weekly(ctx context.Context, cuisine string) (*WeeklyResult, error) {
	pc, base, err := ms.generate(ctx, "weekly", cuisine)
	if err != nil {
		return nil, err
	}
	week := ms.weekFrom(base, 1)
	out := &WeeklyResult{
		Success:            true,
		ShoppingList:       week.WeeklyShoppingList,
		DetectedConditions: nutrition.TagStrings(pc.conds),
		Message:            fmt.Sprintf("Generated 7-day %s meal plan for your health profile", pc.cuisine),
	}
	out.MealPlan.WeeklyPlan = week
	return out, nil
}

func (ms *mealPlanService) Monthly(ctx context.Context, cuisine string) (*MonthlyResult, error) {
	pc, base, err := ms.generate(ctx, "monthly", cuisine)
	if err != nil {
		return nil, err
	}
	today := ms.now()
	weeks := make([]WeeklyPlan, 0, weeksPerMonth)
	lists := make([]shopping.List, 0, weeksPerMonth)
	for w := 1; w <= weeksPerMonth; w++ {
		week := ms.weekFrom(base, w)
		weeks = append(weeks, week)
		lists = append(lists, week.WeeklyShoppingList)
	}
	month := MonthlyPlan{
		Month:               today.Month().String(),
		Year:                today.Year(),
		Weeks:               weeks,
		MonthlyShoppingList: shopping.Merge(lists...),
		NutritionalSummary: NutritionalSummary{
			FocusAreas:   nutrition.TagStrings(pc.conds),
			KeyNutrients: []string{"protein", "fiber", "omega-3", "vitamins", "minerals"},
			HealthGoals:  []string{"hormonal balance", "energy optimization", "digestive health"},
		},
	}
	out := &MonthlyResult{
		Success:            true,
		ShoppingList:       month.MonthlyShoppingList,
		DetectedConditions: nutrition.TagStrings(pc.conds),
		Message:            fmt.Sprintf("Generated 4-week %s meal plan for your health profile", pc.cuisine),
	}
	out.MealPlan.MonthlyPlan = month
	return out, nil
}
