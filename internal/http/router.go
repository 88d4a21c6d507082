package http

import (
	"log/slog"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"go.ngs.io/knmi-forecast/internal/config"
	"go.ngs.io/knmi-forecast/internal/usecase"
)

// SetupRouter creates and configures the Gin router.
func SetupRouter(forecastUC *usecase.ForecastUseCase, cfg config.ServerConfig, logger *slog.Logger) *gin.Engine {
	router := gin.Default()

	// Allow all origins unless a list is configured.
	corsConfig := cors.DefaultConfig()
	if len(cfg.CORSAllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.CORSAllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	router.Use(cors.New(corsConfig))

	handler := NewHandler(forecastUC, cfg.MaxUploadBytes, logger)

	v1 := router.Group("/v1")
	v1.GET("/datasets", handler.ListDatasets)
	v1.GET("/measurements", handler.ListMeasurements)

	forecasts := v1.Group("/forecasts")
	forecasts.POST("/extract", handler.ExtractForecast)

	router.GET("/health", handler.HealthCheck)
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
