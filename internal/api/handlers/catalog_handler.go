package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/retailpulse/forecast-engine/internal/domain"
	"github.com/retailpulse/forecast-engine/internal/service"
)

type CatalogHandler struct {
	service *service.CatalogService
}

func NewCatalogHandler(service *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{service: service}
}

// ClassifyPosted handles POST /api/v1/catalog/abc with a caller-supplied
// catalog body.
func (h *CatalogHandler) ClassifyPosted(c *gin.Context) {
	var req struct {
		Catalog []service.CatalogEntryRequest `json:"catalog"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, domain.NewValidationError("body", err.Error()))
		return
	}

	result, err := h.service.ClassifyCatalog(req.Catalog)
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

// ClassifyStored handles GET /api/v1/catalog/abc over the products the
// engine already knows.
func (h *CatalogHandler) ClassifyStored(c *gin.Context) {
	result, err := h.service.ClassifyProducts(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusOK, result)
}
