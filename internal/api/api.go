// internal/api/api.go
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/retailpulse/forecast-engine/internal/api/handlers"
	"github.com/retailpulse/forecast-engine/internal/api/middleware"
	"github.com/retailpulse/forecast-engine/internal/service"
)

type Services struct {
	ForecastService     *service.ForecastService
	OptimizationService *service.OptimizationService
	CatalogService      *service.CatalogService
}

func NewRouter(services *Services, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())

	corsConfig := cors.Config{
		AllowOrigins:     []string{"http://localhost:3000", "http://127.0.0.1:3000"},
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization"},
		ExposeHeaders:    []string{"Content-Length"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(allowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(allowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	apiGroup := router.Group("/api/v1")

	if services != nil {
		if services.ForecastService != nil {
			forecastHandler := handlers.NewForecastHandler(services.ForecastService)
			apiGroup.POST("/forecast", forecastHandler.Forecast)
			apiGroup.GET("/models/accuracy", forecastHandler.ModelAccuracy)
		}

		if services.OptimizationService != nil {
			optimizeHandler := handlers.NewOptimizeHandler(services.OptimizationService)
			apiGroup.POST("/optimize", optimizeHandler.Optimize)
		}

		if services.CatalogService != nil {
			catalogHandler := handlers.NewCatalogHandler(services.CatalogService)
			catalogGroup := apiGroup.Group("/catalog")
			{
				catalogGroup.POST("/abc", catalogHandler.ClassifyPosted)
				catalogGroup.GET("/abc", catalogHandler.ClassifyStored)
			}
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
