package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/winnie-backend/internal/http/response"
)

// bindJSON decodes the body into dst and writes the 400 itself on failure.
// An empty body leaves dst untouched when optional is set.
func bindJSON(c *gin.Context, dst any, optional bool) bool {
	err := c.ShouldBindJSON(dst)
	if err == nil || (optional && errors.Is(err, io.EOF)) {
		return true
	}
	response.RespondError(c, http.StatusBadRequest, "invalid_request", err)
	return false
}
