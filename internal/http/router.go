package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/winnie-backend/internal/http/handlers"
	httpMW "github.com/yungbote/winnie-backend/internal/http/middleware"
	"github.com/yungbote/winnie-backend/internal/observability"
	"github.com/yungbote/winnie-backend/internal/platform/logger"
)

type RouterConfig struct {
	Log            *logger.Logger
	ServiceName    string
	AllowedOrigins []string
	Metrics        *observability.Metrics

	AuthHandler       *httpH.AuthHandler
	AuthMiddleware    *httpMW.AuthMiddleware
	ProfileHandler    *httpH.ProfileHandler
	NutritionHandler  *httpH.NutritionHandler
	DailyHandler      *httpH.DailyHandler
	ChatHandler       *httpH.ChatHandler
	EvaluationHandler *httpH.EvaluationHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.AllowedOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}

	api := r.Group("/api")
	{
		// Auth (public)
		if cfg.AuthHandler != nil {
			api.POST("/auth/register", cfg.AuthHandler.Register)
			api.POST("/auth/login", cfg.AuthHandler.Login)
		}
	}

	protected := api.Group("/")
	{
		// Middleware
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Auth (protected)
		if cfg.AuthHandler != nil {
			protected.POST("/auth/logout", cfg.AuthHandler.Logout)
		}

		// Profile
		if cfg.ProfileHandler != nil {
			protected.GET("/profile", cfg.ProfileHandler.GetProfile)
			protected.POST("/onboarding", cfg.ProfileHandler.SaveOnboarding)
		}

		// Meal plans
		if cfg.NutritionHandler != nil {
			protected.POST("/nutrition/meal-plan", cfg.NutritionHandler.MealPlan)
			protected.POST("/nutrition/meal-plan/weekly", cfg.NutritionHandler.WeeklyMealPlan)
			protected.POST("/nutrition/meal-plan/monthly", cfg.NutritionHandler.MonthlyMealPlan)
		}

		// Daily adaptive loop
		if cfg.DailyHandler != nil {
			protected.GET("/daily/check-in", cfg.DailyHandler.CheckIn)
			protected.POST("/daily/meal-plan", cfg.DailyHandler.GenerateMealPlan)
			protected.GET("/daily/meal-plan/today", cfg.DailyHandler.TodaysMealPlan)
			protected.POST("/daily/feedback", cfg.DailyHandler.SubmitFeedback)
		}

		// Chat
		if cfg.ChatHandler != nil {
			protected.POST("/chat", cfg.ChatHandler.Send)
			protected.GET("/chat/history", cfg.ChatHandler.History)
		}

		// Evaluation
		if cfg.EvaluationHandler != nil {
			protected.GET("/evaluation/meal-plan-quality", cfg.EvaluationHandler.MealPlanQuality)
			protected.GET("/evaluation/adaptive-responses", cfg.EvaluationHandler.AdaptiveResponses)
			protected.GET("/evaluation/research-quality", cfg.EvaluationHandler.ResearchQuality)
			protected.GET("/evaluation/chatbot-performance", cfg.EvaluationHandler.ChatbotPerformance)
			protected.GET("/evaluation/rag-metrics", cfg.EvaluationHandler.RAGMetrics)
			protected.GET("/evaluation/comprehensive-report", cfg.EvaluationHandler.ComprehensiveReport)
			protected.GET("/research/status", cfg.EvaluationHandler.ResearchStatus)
		}
	}

	return r
}
