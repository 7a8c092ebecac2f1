package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/winnie-backend/internal/http/response"
	"github.com/yungbote/winnie-backend/internal/services"
)

type ChatHandler struct {
	chat services.ChatService
}

func NewChatHandler(chat services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

type sendMessageReq struct {
	Message string `json:"message"`
}

// POST /api/chat
func (h *ChatHandler) Send(c *gin.Context) {
	var req sendMessageReq
	if !bindJSON(c, &req, false) {
		return
	}
	reply, err := h.chat.Send(c.Request.Context(), req.Message)
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, reply)
}

// GET /api/chat/history
func (h *ChatHandler) History(c *gin.Context) {
	msgs, err := h.chat.History(c.Request.Context())
	if err != nil {
		response.RespondErr(c, err)
		return
	}
	response.RespondOK(c, msgs)
}
