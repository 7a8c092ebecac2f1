package handlers

import (
	"github.com/gin-gonic/gin"

	types "github.com/yungbote/winnie-backend/internal/domain"
	"github.com/yungbote/winnie-backend/internal/http/response"
	"github.com/yungbote/winnie-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

func (ah *AuthHandler) session(c *gin.Context, user *types.User, token string) {
	response.RespondOK(c, gin.H{
		"user":         user,
		"access_token": token,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
	})
}

// POST /api/auth/register
func (ah *AuthHandler) Register(c *gin.Context) {
	var req services.RegisterInput
	if !bindJSON(c, &req, false) {
		return
	}
	user, token, err := ah.authService.Register(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	ah.session(c, user, token)
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req services.LoginInput
	if !bindJSON(c, &req, false) {
		return
	}
	user, token, err := ah.authService.Login(c.Request.Context(), req)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	ah.session(c, user, token)
}

// POST /api/auth/logout
func (ah *AuthHandler) Logout(c *gin.Context) {
	if err := ah.authService.Logout(c.Request.Context()); err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, gin.H{"success": true, "message": "Logged out successfully and chat history cleared"})
}
