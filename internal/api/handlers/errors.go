package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/retailpulse/forecast-engine/internal/domain"
)

// Error codes surfaced to API clients.
const (
	codeInvalidInput        = "INVALID_INPUT"
	codeNotFound            = "NOT_FOUND"
	codeModelNotReady       = "MODEL_NOT_READY"
	codeUpstreamUnavailable = "UPSTREAM_UNAVAILABLE"
	codeInternal            = "INTERNAL_ERROR"
)

// respondError maps the domain error taxonomy onto HTTP statuses.
// Unexpected errors are logged in full but surfaced generically.
func respondError(c *gin.Context, err error) {
	switch {
	case domain.IsValidation(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error(), "code": codeInvalidInput})
	case domain.IsNotFound(err):
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error(), "code": codeNotFound})
	case errors.Is(err, domain.ErrModelNotTrained):
		c.JSON(http.StatusConflict, gin.H{"error": err.Error(), "code": codeModelNotReady})
	case errors.Is(err, domain.ErrUpstreamUnavailable):
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error(), "code": codeUpstreamUnavailable})
	default:
		log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error", "code": codeInternal})
	}
}
