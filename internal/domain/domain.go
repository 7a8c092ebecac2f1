// Package domain re-exports the persisted models so callers can import a
// single package.
package domain

import (
	"github.com/google/uuid"

	"github.com/yungbote/winnie-backend/internal/domain/chat"
	"github.com/yungbote/winnie-backend/internal/domain/health"
	"github.com/yungbote/winnie-backend/internal/domain/user"
	"github.com/yungbote/winnie-backend/internal/nutrition"
)

type User = user.User

type HealthProfile = health.HealthProfile
type DailyMealPlan = health.DailyMealPlan
type DailyFeedback = health.DailyFeedback

type ChatMessage = chat.ChatMessage

const DateLayout = health.DateLayout

func FeedbackFromValue(userID, planID uuid.UUID, v nutrition.Feedback) *DailyFeedback {
	return health.FeedbackFromValue(userID, planID, v)
}

// Models lists every table in migration order.
func Models() []any {
	return []any{
		&User{},
		&HealthProfile{},
		&DailyMealPlan{},
		&DailyFeedback{},
		&ChatMessage{},
	}
}
