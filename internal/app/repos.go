package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/data/repos"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type Repos struct {
	User          repos.UserRepo
	HealthProfile repos.HealthProfileRepo
	DailyMealPlan repos.DailyMealPlanRepo
	DailyFeedback repos.DailyFeedbackRepo
	ChatMessage   repos.ChatMessageRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		User:          repos.NewUserRepo(db, log),
		HealthProfile: repos.NewHealthProfileRepo(db, log),
		DailyMealPlan: repos.NewDailyMealPlanRepo(db, log),
		DailyFeedback: repos.NewDailyFeedbackRepo(db, log),
		ChatMessage:   repos.NewChatMessageRepo(db, log),
	}
}
