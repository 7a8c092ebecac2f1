package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/winnie-backend/internal/http/response"
	"github.com/yungbote/winnie-backend/internal/services"
)

type ProfileHandler struct {
	profiles services.ProfileService
}

func NewProfileHandler(profiles services.ProfileService) *ProfileHandler {
	return &ProfileHandler{profiles: profiles}
}

// GET /api/profile
func (h *ProfileHandler) GetProfile(c *gin.Context) {
	user, profile, err := h.profiles.Get(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"user": user, "onboarding": profile})
}

// POST /api/onboarding
func (h *ProfileHandler) SaveOnboarding(c *gin.Context) {
	var req services.OnboardingInput
	if !bindJSON(c, &req, false) {
		return
	}
	profile, err := h.profiles.SaveOnboarding(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "data": profile})
}
