package handler

import (
	"errors"
	"log/slog"

	"github.com/gin-gonic/gin"

	"github.com/qs3c/career_compass/internal/model/dto"
	"github.com/qs3c/career_compass/internal/pkg/response"
	"github.com/qs3c/career_compass/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

// Register 用户注册
// POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err)
		return
	}

	resp, err := h.authService.Register(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrEmailExists):
			response.ConflictError(c, "Email already exists")
		default:
			slog.ErrorContext(c.Request.Context(), "register failed", slog.String("error", err.Error()))
			response.ServerError(c, "")
		}
		return
	}

	response.Created(c, resp)
}

// Login 用户登录
// POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ParamError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			response.AuthError(c, "Invalid credentials")
		default:
			slog.ErrorContext(c.Request.Context(), "login failed", slog.String("error", err.Error()))
			response.ServerError(c, "")
		}
		return
	}

	response.Success(c, resp)
}
