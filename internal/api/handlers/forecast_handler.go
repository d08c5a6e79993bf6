package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/service"
)

type ForecastHandler struct {
	service *service.ForecastService
}

func NewForecastHandler(service *service.ForecastService) *ForecastHandler {
	return &ForecastHandler{service: service}
}

// Forecast handles POST /api/v1/forecast.
func (h *ForecastHandler) Forecast(c *gin.Context) {
	var req service.ForecastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.NewValidationError("body", err.Error()))
		return
	}

	result, err := h.service.Forecast(c.Request.Context(), req)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ModelAccuracy handles GET /api/v1/models/accuracy.
func (h *ForecastHandler) ModelAccuracy(c *gin.Context) {
	reports := h.service.ModelAccuracy()
	if len(reports) == 0 {
		respondError(c, domain.ErrModelNotTrained)
		return
	}

	c.JSON(http.StatusOK, gin.H{"models": reports})
}
