package health

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/nutrition"
)

// DateLayout is the civil-date key used for daily plans and feedback.
const DateLayout = time.DateOnly

// DailyMealPlan is the persisted plan for one user and day.
type DailyMealPlan struct {
	ID                  uuid.UUID                                     `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID                                     `gorm:"type:uuid;not null;uniqueIndex:idx_daily_plan_user_date,priority:1" json:"user_id"`
	Date                string                                        `gorm:"not null;uniqueIndex:idx_daily_plan_user_date,priority:2" json:"date"`
	MenstrualPhase      string                                        `gorm:"not null" json:"menstrualPhase"`
	CuisineStyle        string                                        `json:"cuisineStyle"`
	PersonalizedMessage string                                        `gorm:"type:text" json:"personalizedMessage"`
	Breakfast           datatypes.JSONType[nutrition.MealItem]        `gorm:"not null" json:"breakfast"`
	Lunch               datatypes.JSONType[nutrition.MealItem]        `gorm:"not null" json:"lunch"`
	Dinner              datatypes.JSONType[nutrition.MealItem]        `gorm:"not null" json:"dinner"`
	Snacks              datatypes.JSONSlice[nutrition.MealItem]       `gorm:"not null" json:"snacks"`
	DailyGuidelines     datatypes.JSONType[nutrition.DailyGuidelines] `gorm:"not null" json:"dailyGuidelines"`
	ShoppingList        datatypes.JSONType[map[string][]string]       `json:"shoppingList"`
	Adaptations         datatypes.JSONSlice[string]                   `json:"adaptations"`
	Generated           bool                                          `gorm:"not null;default:false" json:"-"`
	CreatedAt           time.Time                                     `gorm:"not null" json:"created_at"`
	UpdatedAt           time.Time                                     `gorm:"not null" json:"updated_at"`
}

func (DailyMealPlan) TableName() string { return "daily_meal_plan" }

func (p *DailyMealPlan) BeforeCreate(*gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// Plan rebuilds the meal plan value from the stored columns.
func (p *DailyMealPlan) Plan() nutrition.MealPlan {
	snacks := []nutrition.MealItem(p.Snacks)
	if snacks == nil {
		snacks = []nutrition.MealItem{}
	}
	adaptations := []string(p.Adaptations)
	if adaptations == nil {
		adaptations = []string{}
	}
	return nutrition.MealPlan{
		CuisineStyle:    p.CuisineStyle,
		MenstrualPhase:  p.MenstrualPhase,
		Breakfast:       p.Breakfast.Data(),
		Lunch:           p.Lunch.Data(),
		Dinner:          p.Dinner.Data(),
		Snacks:          snacks,
		DailyGuidelines: p.DailyGuidelines.Data(),
		Adaptations:     adaptations,
	}
}

// DailyFeedback is a user's report on the plan for Date.
type DailyFeedback struct {
	ID                  uuid.UUID                          `gorm:"type:uuid;primaryKey" json:"id"`
	UserID              uuid.UUID                          `gorm:"type:uuid;not null;uniqueIndex:idx_daily_feedback_user_date,priority:1" json:"user_id"`
	MealPlanID          uuid.UUID                          `gorm:"type:uuid;not null;index" json:"meal_plan_id"`
	MealPlan            *DailyMealPlan                     `gorm:"constraint:OnDelete:CASCADE;foreignKey:MealPlanID;references:ID" json:"-"`
	Date                string                             `gorm:"not null;uniqueIndex:idx_daily_feedback_user_date,priority:2" json:"date"`
	FollowedPlan        bool                               `json:"followedPlan"`
	EnjoyedMeals        datatypes.JSONSlice[string]        `json:"enjoyedMeals"`
	DislikedMeals       datatypes.JSONSlice[string]        `json:"dislikedMeals"`
	SymptomsImprovement datatypes.JSONType[map[string]int] `json:"symptomsImprovement"`
	EnergyLevel         int                                `json:"energyLevel"`
	DigestiveHealth     int                                `json:"digestiveHealth"`
	MoodRating          int                                `json:"moodRating"`
	Feedback            string                             `gorm:"type:text" json:"feedback"`
	CreatedAt           time.Time                          `gorm:"not null" json:"created_at"`
}

func (DailyFeedback) TableName() string { return "daily_feedback" }

func (f *DailyFeedback) BeforeCreate(*gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}

// Value converts the row into the feedback value the planner consumes.
func (f *DailyFeedback) Value() nutrition.Feedback {
	return nutrition.Feedback{
		Date:                f.Date,
		FollowedPlan:        f.FollowedPlan,
		EnjoyedMeals:        []string(f.EnjoyedMeals),
		DislikedMeals:       []string(f.DislikedMeals),
		EnergyLevel:         f.EnergyLevel,
		DigestiveHealth:     f.DigestiveHealth,
		MoodRating:          f.MoodRating,
		SymptomsImprovement: f.SymptomsImprovement.Data(),
		Comment:             f.Feedback,
	}
}

// FeedbackFromValue builds a row for userID and planID.
func FeedbackFromValue(userID, planID uuid.UUID, v nutrition.Feedback) *DailyFeedback {
	return &DailyFeedback{
		UserID:              userID,
		MealPlanID:          planID,
		Date:                v.Date,
		FollowedPlan:        v.FollowedPlan,
		EnjoyedMeals:        datatypes.NewJSONSlice(v.EnjoyedMeals),
		DislikedMeals:       datatypes.NewJSONSlice(v.DislikedMeals),
		SymptomsImprovement: datatypes.NewJSONType(v.SymptomsImprovement),
		EnergyLevel:         v.EnergyLevel,
		DigestiveHealth:     v.DigestiveHealth,
		MoodRating:          v.MoodRating,
		Feedback:            v.Comment,
	}
}
