package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/winnie-backend/internal/http/response"
	"github.com/yungbote/winnie-backend/internal/services"
)

type EvaluationHandler struct {
	eval     services.EvaluationService
	research services.ResearchService
	now      func() time.Time
}

func NewEvaluationHandler(eval services.EvaluationService, research services.ResearchService) *EvaluationHandler {
	return &EvaluationHandler{eval: eval, research: research, now: time.Now}
}

func (h *EvaluationHandler) metrics(c *gin.Context, metrics any) {
	response.RespondOK(c, gin.H{
		"success":   true,
		"metrics":   metrics,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// GET /api/evaluation/meal-plan-quality
func (h *EvaluationHandler) MealPlanQuality(c *gin.Context) {
	m, err := h.eval.MealPlanQuality(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.metrics(c, m)
}

// GET /api/evaluation/adaptive-responses
func (h *EvaluationHandler) AdaptiveResponses(c *gin.Context) {
	m, err := h.eval.AdaptiveResponses(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.metrics(c, m)
}

// GET /api/evaluation/research-quality
func (h *EvaluationHandler) ResearchQuality(c *gin.Context) {
	m, err := h.eval.ResearchQuality(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.metrics(c, m)
}

// GET /api/evaluation/chatbot-performance
func (h *EvaluationHandler) ChatbotPerformance(c *gin.Context) {
	m, err := h.eval.ChatbotPerformance(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.metrics(c, m)
}

// GET /api/evaluation/rag-metrics
func (h *EvaluationHandler) RAGMetrics(c *gin.Context) {
	m, err := h.eval.RAGMetrics(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	h.metrics(c, m)
}

// GET /api/evaluation/comprehensive-report
func (h *EvaluationHandler) ComprehensiveReport(c *gin.Context) {
	rep, err := h.eval.ComprehensiveReport(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":   true,
		"report":    rep,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

// GET /api/research/status
func (h *EvaluationHandler) ResearchStatus(c *gin.Context) {
	response.RespondOK(c, h.research.Status(c.Request.Context()))
}
