package services

import (
	"context"
	"fmt"
	"net/http"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/data/repos"
	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/platform/apierr"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

// OnboardingInput is the onboarding questionnaire as the client submits it.
type OnboardingInput struct {
	Age               string         `json:"age" validate:"max=32"`
	Height            string         `json:"height" validate:"max=32"`
	Weight            string         `json:"weight" validate:"max=32"`
	Diet              string         `json:"diet" validate:"max=64"`
	Symptoms          []string       `json:"symptoms" validate:"max=64,dive,max=200"`
	Goals             []string       `json:"goals" validate:"max=64,dive,max=200"`
	MedicalConditions []string       `json:"medicalConditions" validate:"max=64,dive,max=200"`
	Medications       []string       `json:"medications" validate:"max=64,dive,max=200"`
	Allergies         []string       `json:"allergies" validate:"max=64,dive,max=200"`
	Lifestyle         map[string]any `json:"lifestyle"`
	LastPeriodDate    string         `json:"lastPeriodDate" validate:"max=32"`
	CycleLength       string         `json:"cycleLength" validate:"max=16"`
	PeriodLength      string         `json:"periodLength" validate:"max=16"`
	IrregularPeriods  bool           `json:"irregularPeriods"`
	StressLevel       string         `json:"stressLevel" validate:"max=32"`
	SleepHours        string         `json:"sleepHours" validate:"max=32"`
	ExerciseLevel     string         `json:"exerciseLevel" validate:"max=32"`
	WaterIntake       string         `json:"waterIntake" validate:"max=32"`
}

func (in OnboardingInput) toProfile(userID uuid.UUID) *types.HealthProfile {
	return &types.HealthProfile{
		UserID:            userID,
		Age:               in.Age,
		Height:            in.Height,
		Weight:            in.Weight,
		Diet:              in.Diet,
		Symptoms:          datatypes.NewJSONSlice(nonNil(in.Symptoms)),
		Goals:             datatypes.NewJSONSlice(nonNil(in.Goals)),
		MedicalConditions: datatypes.NewJSONSlice(nonNil(in.MedicalConditions)),
		Medications:       datatypes.NewJSONSlice(nonNil(in.Medications)),
		Allergies:         datatypes.NewJSONSlice(nonNil(in.Allergies)),
		Lifestyle:         datatypes.JSONMap(in.Lifestyle),
		LastPeriodDate:    in.LastPeriodDate,
		CycleLength:       in.CycleLength,
		PeriodLength:      in.PeriodLength,
		IrregularPeriods:  in.IrregularPeriods,
		StressLevel:       in.StressLevel,
		SleepHours:        in.SleepHours,
		ExerciseLevel:     in.ExerciseLevel,
		WaterIntake:       in.WaterIntake,
	}
}

func nonNil(in []string) []string {
	if in == nil {
		return []string{}
	}
	return in
}

type ProfileService interface {
	SaveOnboarding(ctx context.Context, in OnboardingInput) (*types.HealthProfile, error)
	// Get returns the caller and their profile, which is nil before
	// onboarding.
	Get(ctx context.Context) (*types.User, *types.HealthProfile, error)
	// Normalized returns the typed profile for userID, failing with
	// profile_required when the user has not onboarded.
	Normalized(ctx context.Context, userID uuid.UUID) (nutrition.Profile, error)
	// Optional is Normalized without the onboarding requirement.
	Optional(ctx context.Context, userID uuid.UUID) (nutrition.Profile, bool, error)
}

type profileService struct {
	db          *gorm.DB
	log         *logger.Logger
	userRepo    repos.UserRepo
	profileRepo repos.HealthProfileRepo
	now         Clock
}

func NewProfileService(db *gorm.DB, log *logger.Logger, userRepo repos.UserRepo, profileRepo repos.HealthProfileRepo, now Clock) ProfileService {
	return &profileService{
		db:          db,
		log:         log.With("service", "ProfileService"),
		userRepo:    userRepo,
		profileRepo: profileRepo,
		now:         clockOrDefault(now),
	}
}

var errProfileRequired = apierr.Newf(http.StatusBadRequest, "profile_required", "complete onboarding before requesting a meal plan")

func (ps *profileService) SaveOnboarding(ctx context.Context, in OnboardingInput) (*types.HealthProfile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate.Struct(in); err != nil {
		return nil, invalidRequest(err)
	}
	saved, err := ps.profileRepo.Upsert(ctx, nil, in.toProfile(userID))
	if err != nil {
		ps.log.Warn("Failed to save onboarding", "user_id", userID, "error", err)
		return nil, fmt.Errorf("save onboarding: %w", err)
	}
	return saved, nil
}

func (ps *profileService) Get(ctx context.Context) (*types.User, *types.HealthProfile, error) {
	userID, err := requireUser(ctx)
	if err != nil {
		return nil, nil, err
	}
	u, err := ps.userRepo.GetByID(ctx, nil, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load user: %w", err)
	}
	if u == nil {
		return nil, nil, errUnauthorized
	}
	p, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nil, nil, fmt.Errorf("load profile: %w", err)
	}
	return u, p, nil
}

func (ps *profileService) Normalized(ctx context.Context, userID uuid.UUID) (nutrition.Profile, error) {
	p, ok, err := ps.Optional(ctx, userID)
	if err != nil {
		return nutrition.Profile{}, err
	}
	if !ok {
		return nutrition.Profile{}, errProfileRequired
	}
	return p, nil
}

func (ps *profileService) Optional(ctx context.Context, userID uuid.UUID) (nutrition.Profile, bool, error) {
	row, err := ps.profileRepo.GetByUserID(ctx, nil, userID)
	if err != nil {
		return nutrition.Profile{}, false, fmt.Errorf("load profile: %w", err)
	}
	if row == nil {
		return nutrition.Profile{}, false, nil
	}
	return row.Normalize(ps.now()), true, nil
}
