package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/service"
)

type OptimizeHandler struct {
	service *service.OptimizationService
}

func NewOptimizeHandler(service *service.OptimizationService) *OptimizeHandler {
	return &OptimizeHandler{service: service}
}

// Optimize handles POST /api/v1/optimize.
func (h *OptimizeHandler) Optimize(c *gin.Context) {
	var req service.OptimizationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.NewValidationError("body", err.Error()))
		return
	}

	rec, err := h.service.Optimize(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, rec)
}
