package app

import (
	"gorm.io/gorm"

	"github.com/yungbote/winnie-backend/internal/nutrition/mealplan"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
	"github.com/yungbote/winnie-backend/internal/platform/openai"
	"github.com/yungbote/winnie-backend/internal/services"
)

type Services struct {
	Auth       services.AuthService
	Profile    services.ProfileService
	Research   services.ResearchService
	MealPlan   services.MealPlanService
	Daily      services.DailyService
	Chat       services.ChatService
	Evaluation services.EvaluationService
}

func wireServices(db *gorm.DB, log *logger.Logger, cfg Config, repos Repos, clients Clients) Services {
	log.Info("Wiring services...")

	// A nil client must reach the services as a nil interface.
	var (
		chatGen  services.ChatGenerator
		evalGen  services.EvaluationGenerator
		planGen  mealplan.Generator
		embedder services.Embedder
	)
	if clients.LLM != nil {
		planGen, embedder = clients.LLM, clients.LLM
		// Chat replies fall back to local guidance, so a failed call is not retried.
		chatGen = openai.WithMaxRetries(clients.LLM, 0)
		evalGen = openai.WithTemperature(clients.LLM, 0.3)
	}

	requester := mealplan.NewRequesterWithTimeout(log, planGen, cfg.MealPlanTimeout)
	auth := services.NewAuthService(db, log, repos.User, repos.ChatMessage, cfg.JWTSecretKey, cfg.AccessTokenTTL)
	profile := services.NewProfileService(db, log, repos.User, repos.HealthProfile, nil)
	research := services.NewResearchService(log, embedder, clients.VectorStore, clients.Cache, cfg.Research)
	mealPlans := services.NewMealPlanService(log, profile, research, requester, nil)
	chat := services.NewChatService(log, chatGen, profile, repos.ChatMessage, cfg.ChatTimeout)

	return Services{
		Auth:       auth,
		Profile:    profile,
		Research:   research,
		MealPlan:   mealPlans,
		Daily:      services.NewDailyService(log, profile, research, requester, repos.DailyMealPlan, repos.DailyFeedback, nil),
		Chat:       chat,
		Evaluation: services.NewEvaluationService(log, evalGen, profile, mealPlans, research, chat),
	}
}
