package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/winnie-backend/internal/http/response"
	"github.com/yungbote/winnie-backend/internal/nutrition"
	"github.com/yungbote/winnie-backend/internal/services"
)

type DailyHandler struct {
	daily services.DailyService
}

func NewDailyHandler(daily services.DailyService) *DailyHandler {
	return &DailyHandler{daily: daily}
}

// GET /api/daily/check-in
func (h *DailyHandler) CheckIn(c *gin.Context) {
	res, err := h.daily.CheckIn(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/daily/meal-plan
func (h *DailyHandler) GenerateMealPlan(c *gin.Context) {
	var req services.DailyPlanInput
	if !bindJSON(c, &req, true) {
		return
	}
	plan, err := h.daily.GenerateToday(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success":  true,
		"mealPlan": plan,
		"message":  "Today's personalized meal plan is ready!",
	})
}

// GET /api/daily/meal-plan/today
func (h *DailyHandler) TodaysMealPlan(c *gin.Context) {
	plan, err := h.daily.Today(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	if plan == nil {
		response.RespondOK(c, gin.H{"success": false, "message": "No meal plan found for today. Let's create one!"})
		return
	}
	response.RespondOK(c, gin.H{"success": true, "mealPlan": plan})
}

// POST /api/daily/feedback
func (h *DailyHandler) SubmitFeedback(c *gin.Context) {
	var req nutrition.Feedback
	if !bindJSON(c, &req, false) {
		return
	}
	if _, err := h.daily.SubmitFeedback(c.Request.Context(), req); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"success": true,
		"message": "Thank you for your feedback! I'll use this to personalize tomorrow's meal plan.",
	})
}
