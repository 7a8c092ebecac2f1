package testutil

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/nutrition"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:       uuid.New(),
		Email:    email,
		Password: "pw",
		Name:     "Test User",
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedPlan(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, date string) *types.DailyMealPlan {
	tb.Helper()
	p := &types.DailyMealPlan{
		UserID:         userID,
		Date:           date,
		MenstrualPhase: string(nutrition.PhaseFollicular),
		Breakfast:      datatypes.NewJSONType(nutrition.MealItem{Name: "Oats", Ingredients: []string{"oats"}}),
		Lunch:          datatypes.NewJSONType(nutrition.MealItem{Name: "Salad", Ingredients: []string{"spinach"}}),
		Dinner:         datatypes.NewJSONType(nutrition.MealItem{Name: "Fish", Ingredients: []string{"fish"}}),
		Snacks:         datatypes.NewJSONSlice([]nutrition.MealItem{}),
		DailyGuidelines: datatypes.NewJSONType(nutrition.DailyGuidelines{
			FoodsToEmphasize: []string{"greens"},
		}),
	}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed plan: %v", err)
	}
	return p
}
