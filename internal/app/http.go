package app

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/winnie-backend/internal/http"
	httpH "github.com/yungbote/winnie-backend/internal/http/handlers"
	httpMW "github.com/yungbote/winnie-backend/internal/http/middleware"
	"github.com/yungbote/winnie-backend/internal/observability"
	"github.com/yungbote/winnie-backend/internal/platform/envutil"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health     *httpH.HealthHandler
	Auth       *httpH.AuthHandler
	Profile    *httpH.ProfileHandler
	Nutrition  *httpH.NutritionHandler
	Daily      *httpH.DailyHandler
	Chat       *httpH.ChatHandler
	Evaluation *httpH.EvaluationHandler
}

func wireHandlers(log *logger.Logger, services Services) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:     httpH.NewHealthHandler(),
		Auth:       httpH.NewAuthHandler(services.Auth),
		Profile:    httpH.NewProfileHandler(services.Profile),
		Nutrition:  httpH.NewNutritionHandler(services.MealPlan),
		Daily:      httpH.NewDailyHandler(services.Daily),
		Chat:       httpH.NewChatHandler(services.Chat),
		Evaluation: httpH.NewEvaluationHandler(services.Evaluation, services.Research),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, handlers Handlers, middleware Middleware, metrics *observability.Metrics) *gin.Engine {
	serviceName := ""
	if envutil.Bool("OTEL_ENABLED", false) {
		serviceName = cfg.ServiceName
	}
	return http.NewRouter(http.RouterConfig{
		Log:               log,
		ServiceName:       serviceName,
		AllowedOrigins:    cfg.AllowedOrigins,
		Metrics:           metrics,
		HealthHandler:     handlers.Health,
		AuthHandler:       handlers.Auth,
		AuthMiddleware:    middleware.Auth,
		ProfileHandler:    handlers.Profile,
		NutritionHandler:  handlers.Nutrition,
		DailyHandler:      handlers.Daily,
		ChatHandler:       handlers.Chat,
		EvaluationHandler: handlers.Evaluation,
	})
}
