package services

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/data/repos"
	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/nutrition/adaptive"
	"github.com/yungbote/winnie-backend/internal/nutrition/conditions"
	"github.com/yungbote/winnie-backend/internal/nutrition/cycle"
	"github.com/yungbote/winnie-backend/internal/nutrition/mealplan"
	"github.com/yungbote/winnie-backend/internal/nutrition/prompts"
	"github.com/yungbote/winnie-backend/internal/nutrition/shopping"
	"github.com/yungbote/winnie-backend/internal/platform/apierr"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type DailyPlanInput struct {
	// PreviousFeedback overrides yesterday's stored feedback when set.
	PreviousFeedback  *nutrition.Feedback `json:"previousFeedback"`
	CuisinePreference string              `json:"cuisinePreference"`
}

type DailyService interface {
	CheckIn(ctx context.Context) (adaptive.CheckInResponse, error)
	// GenerateToday builds, stores and returns today's plan, replacing any
	// plan already stored for today.
	GenerateToday(ctx context.Context, in DailyPlanInput) (*types.DailyMealPlan, error)
	// Today returns nil, nil when no plan exists for today.
	Today(ctx context.Context) (*types.DailyMealPlan, error)
	SubmitFeedback(ctx context.Context, f nutrition.Feedback) (*types.DailyFeedback, error)
}

type dailyService struct {
	log          *logger.Logger
	profiles     ProfileService
	research     ResearchService
	requester    *mealplan.Requester
	planRepo     repos.DailyMealPlanRepo
	feedbackRepo repos.DailyFeedbackRepo
	now          Clock
}

func NewDailyService(
	log *logger.Logger,
	profiles ProfileService,
	research ResearchService,
	requester *mealplan.Requester,
	planRepo repos.DailyMealPlanRepo,
	feedbackRepo repos.DailyFeedbackRepo,
	now Clock,
) DailyService {
	return &dailyService{
		log:          log.With("service", "DailyService"),
		profiles:     profiles,
		research:     research,
		requester:    requester,
		planRepo:     planRepo,
		feedbackRepo: feedbackRepo,
		now:          clockOrDefault(now),
	}
}

var (
	errNoMealPlan     = apierr.Newf(http.StatusNotFound, "no_meal_plan", "no meal plan found for this date")
	errFeedbackExists = apierr.Newf(http.StatusConflict, "feedback_exists", "feedback for this date was already submitted")
)

func (ds *dailyService) today() time.Time { return ds.now().UTC() }

func (ds *dailyService) dateKey(t time.Time) string { return t.Format(types.DateLayout) }

// yesterday loads yesterday's plan and feedback rows; either may be nil.
func (ds *dailyService) yesterday(ctx context.Context, userID uuid.UUID) (*types.DailyMealPlan, *types.DailyFeedback, error) {
	date := ds.dateKey(ds.today().AddDate(0, 0, -1))
	plan, err := ds.planRepo.GetByUserAndDate(ctx, nil, userID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("load yesterday's plan: %w", err)
	}
	fb, err := ds.feedbackRepo.GetByUserAndDate(ctx, nil, userID, date)
	if err != nil {
		return nil, nil, fmt.Errorf("load yesterday's feedback: %w", err)
	}
	return plan, fb, nil
}

func (ds *dailyService) CheckIn(ctx context.Context) (adaptive.CheckInResponse, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return adaptive.CheckInResponse{}, err
	}
	plan, fb, err := ds.yesterday(ctx, userID)
	if err != nil {
		return adaptive.CheckInResponse{}, err
	}
	var adaptations []string
	if fb != nil {
		adaptations = adaptive.Adaptations(fb.Value())
	}
	return adaptive.CheckIn(adaptive.StateFor(plan != nil, fb != nil), adaptations), nil
}

func (ds *dailyService) GenerateToday(ctx context.Context, in DailyPlanInput) (*types.DailyMealPlan, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if in.PreviousFeedback != nil {
		if err := validate.Struct(in.PreviousFeedback); err != nil {
			return nil, invalidRequest(err)
		}
	}
	profile, _, err := ds.profiles.Optional(ctx, userID)
	if err != nil {
		return nil, err
	}
	today := ds.today()
	phase := cycle.Resolve(cycle.Input{
		LastPeriod:  profile.LastPeriod,
		Irregular:   profile.Irregular,
		CycleLength: profile.CycleLength,
		Today:       today,
	})
	conds := conditions.Extract(profile)
	cuisine := cuisineOrDefault(in.CuisinePreference)

	feedback := in.PreviousFeedback
	if feedback == nil {
		_, stored, err := ds.yesterday(ctx, userID)
		if err != nil {
			return nil, err
		}
		if stored != nil {
			v := stored.Value()
			feedback = &v
		}
	}
	adaptations := []string{}
	if feedback != nil {
		adaptations = adaptive.Adaptations(*feedback)
	}

	research := ""
	if ds.research != nil {
		research = ds.research.Context(ctx, ResearchQuery(conds, cuisine, phase))
	}
	prompt := prompts.Build(prompts.Input{
		Conditions:  conds,
		Phase:       phase,
		Cuisine:     cuisine,
		Profile:     profile,
		Feedback:    feedback,
		Adaptations: adaptations,
		Research:    research,
	})
	plan, outcome := ds.requester.Request(ctx, prompt, mealplan.FallbackKey{
		Kind:       mealplan.KindDaily,
		Cuisine:    cuisine,
		Conditions: conds,
		Phase:      phase,
	})

	message := adaptive.PersonalizedMessage(phase, adaptations)
	if outcome.Generated() {
		plan.Adaptations = adaptations
	} else {
		message = adaptive.FallbackMessage(phase)
	}
	plan.MenstrualPhase = string(phase)

	row := dailyRow(userID, ds.dateKey(today), plan, message, outcome.Generated())
	saved, err := ds.planRepo.Upsert(ctx, nil, row)
	if err != nil {
		ds.log.Warn("Failed to save daily meal plan", "user_id", userID, "error", err)
		return nil, fmt.Errorf("save daily meal plan: %w", err)
	}
	ds.log.Info("Daily meal plan saved",
		"user_id", userID,
		"date", saved.Date,
		"phase", string(phase),
		"outcome", string(outcome),
		"adaptations", strings.Join(adaptations, "; "),
	)
	return saved, nil
}

func dailyRow(userID uuid.UUID, date string, plan nutrition.MealPlan, message string, generated bool) *types.DailyMealPlan {
	snacks := plan.Snacks
	if snacks == nil {
		snacks = []nutrition.MealItem{}
	}
	adaptations := plan.Adaptations
	if adaptations == nil {
		adaptations = []string{}
	}
	return &types.DailyMealPlan{
		UserID:              userID,
		Date:                date,
		MenstrualPhase:      plan.MenstrualPhase,
		CuisineStyle:        plan.CuisineStyle,
		PersonalizedMessage: message,
		Breakfast:           datatypes.NewJSONType(plan.Breakfast),
		Lunch:               datatypes.NewJSONType(plan.Lunch),
		Dinner:              datatypes.NewJSONType(plan.Dinner),
		Snacks:              datatypes.NewJSONSlice(snacks),
		DailyGuidelines:     datatypes.NewJSONType(plan.DailyGuidelines),
		ShoppingList:        datatypes.NewJSONType(map[string][]string(shopping.FromPlan(plan))),
		Adaptations:         datatypes.NewJSONSlice(adaptations),
		Generated:           generated,
	}
}

func (ds *dailyService) Today(ctx context.Context) (*types.DailyMealPlan, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	plan, err := ds.planRepo.GetByUserAndDate(ctx, nil, userID, ds.dateKey(ds.today()))
	if err != nil {
		return nil, fmt.Errorf("load today's plan: %w", err)
	}
	return plan, nil
}

func (ds *dailyService) SubmitFeedback(ctx context.Context, f nutrition.Feedback) (*types.DailyFeedback, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	f.Date = strings.TrimSpace(f.Date)
	if f.Date == "" {
		f.Date = ds.dateKey(ds.today())
	}
	if err := validate.Struct(f); err != nil {
		return nil, invalidRequest(err)
	}
	plan, err := ds.planRepo.GetByUserAndDate(ctx, nil, userID, f.Date)
	if err != nil {
		return nil, fmt.Errorf("load plan for feedback: %w", err)
	}
	if plan == nil {
		return nil, errNoMealPlan
	}
	saved, err := ds.feedbackRepo.Create(ctx, nil, types.FeedbackFromValue(userID, plan.ID, f))
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return nil, errFeedbackExists
	}
	if err != nil {
		ds.log.Warn("Failed to save feedback", "user_id", userID, "date", f.Date, "error", err)
		return nil, fmt.Errorf("save feedback: %w", err)
	}
	return saved, nil
}
