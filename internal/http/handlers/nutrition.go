package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/winnie-backend/internal/http/response"
	"github.com/yungbote/winnie-backend/internal/services"
)

type NutritionHandler struct {
	plans services.MealPlanService
}

func NewNutritionHandler(plans services.MealPlanService) *NutritionHandler {
	return &NutritionHandler{plans: plans}
}

type mealPlanReq struct {
	CuisinePreference string `json:"cuisinePreference" binding:"max=64"`
}

// POST /api/nutrition/meal-plan
func (h *NutritionHandler) MealPlan(c *gin.Context) {
	var req mealPlanReq
	if !bindJSON(c, &req, true) {
		return
	}
	res, err := h.plans.Daily(c.Request.Context(), req.CuisinePreference)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/nutrition/meal-plan/weekly
func (h *NutritionHandler) WeeklyMealPlan(c *gin.Context) {
	var req mealPlanReq
	if !bindJSON(c, &req, true) {
		return
	}
	res, err := h.plans.Weekly(c.Request.Context(), req.CuisinePreference)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/nutrition/meal-plan/monthly
func (h *NutritionHandler) MonthlyMealPlan(c *gin.Context) {
	var req mealPlanReq
	if !bindJSON(c, &req, true) {
		return
	}
	res, err := h.plans.Monthly(c.Request.Context(), req.CuisinePreference)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, res)
}
