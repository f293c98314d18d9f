package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/qs3c/career_compass/internal/pkg/response"
	"github.com/qs3c/career_compass/internal/service"
)

type HealthHandler struct {
	healthService *service.HealthService
}

func NewHealthHandler(healthService *service.HealthService) *HealthHandler {
	return &HealthHandler{
		healthService: healthService,
	}
}

// Health 健康检查，依赖异常时仍返回 200
// GET /health
func (h *HealthHandler) Health(c *gin.Context) {
	response.Success(c, h.healthService.Check(c.Request.Context()))
}
