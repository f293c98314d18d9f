package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/career_compass/internal/api/middleware"
	"github.com/qs3c/career_compass/internal/model/dto"
	"github.com/qs3c/career_compass/internal/pkg/response"
	"github.com/qs3c/career_compass/internal/service"
)

type ChatHandler struct {
	chatService *service.ChatService
}

func NewChatHandler(chatService *service.ChatService) *ChatHandler {
	return &ChatHandler{
		chatService: chatService,
	}
}

// Chat 发送一条消息并获取回复
// POST /api/chat
func (h *ChatHandler) Chat(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	var req dto.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err)
		return
	}

	resp, err := h.chatService.Chat(c.Request.Context(), user, &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrSessionNotFound):
			response.NotFoundError(c, "Session not found")
		case errors.Is(err, service.ErrReplyFailed):
			response.UpstreamError(c, "Failed to generate a reply, please try again")
		default:
			slog.ErrorContext(c.Request.Context(), "chat failed",
				slog.Int64("user_id", user.ID),
				slog.String("error", err.Error()),
			)
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}

// ListSessions 当前用户的会话列表
// GET /api/sessions
func (h *ChatHandler) ListSessions(c *gin.Context) {
	user, ok := middleware.GetCurrentUser(c)
	if !ok {
		response.AuthError(c, "")
		return
	}

	resp, err := h.chatService.ListSessions(c.Request.Context(), user)
	if err != nil {
		slog.ErrorContext(c.Request.Context(), "list sessions failed",
			slog.Int64("user_id", user.ID),
			slog.String("error", err.Error()),
		)
		response.ServerError(c, "")
		return
	}

	response.Success(c, resp)
}
