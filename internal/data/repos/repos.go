package repos

import (
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/data/repos/chat"
	"github.com/yungbote/winnie-backend/internal/data/repos/health"
	"github.com/yungbote/winnie-backend/internal/data/repos/user"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo
type HealthProfileRepo = health.HealthProfileRepo
type DailyMealPlanRepo = health.DailyMealPlanRepo
type DailyFeedbackRepo = health.DailyFeedbackRepo
type ChatMessageRepo = chat.ChatMessageRepo

func NewUserRepo(db *gorm.DB, log *logger.Logger) UserRepo { return user.NewUserRepo(db, log) }

func NewHealthProfileRepo(db *gorm.DB, log *logger.Logger) HealthProfileRepo {
	return health.NewHealthProfileRepo(db, log)
}

func NewDailyMealPlanRepo(db *gorm.DB, log *logger.Logger) DailyMealPlanRepo {
	return health.NewDailyMealPlanRepo(db, log)
}

func NewDailyFeedbackRepo(db *gorm.DB, log *logger.Logger) DailyFeedbackRepo {
	return health.NewDailyFeedbackRepo(db, log)
}

func NewChatMessageRepo(db *gorm.DB, log *logger.Logger) ChatMessageRepo {
	return chat.NewChatMessageRepo(db, log)
}
