package handlers

import (
	"log/slog"
	"net/http"
	"time"

	config "sales-forecast-api/configs"
	"sales-forecast-api/pkg/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// NewRouter wires services and handlers into a gin engine. It is shared by
// the standalone server and the serverless entry point.
func NewRouter(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	if logger == nil {
		logger = slog.Default()
	}

	location, err := time.LoadLocation(cfg.TimeZone)
	if err != nil {
		logger.Warn("Unknown time zone, using UTC", slog.String("time_zone", cfg.TimeZone))
		location = time.UTC
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	// サービスの初期化
	metrics := services.NewForecastMetrics(registry)
	monitoringService := services.NewMonitoringService(location)
	forecastService := services.NewSalesForecastService(services.ForecastOptions{
		Seed:              cfg.ForecastSeed,
		Epochs:            cfg.ForecastEpochs,
		LearningRate:      cfg.ForecastLearningRate,
		MaxConcurrentFits: cfg.MaxConcurrentFits,
	}, metrics, logger)
	datasetStore := services.NewSalesDatasetStore(forecastService.Validator())
	parser := services.NewSalesFileParser(logger)

	// ハンドラーの初期化
	adminHandler := NewAdminHandler(cfg)
	monitoringHandler := NewMonitoringHandler(monitoringService)
	maxBodyBytes := cfg.MaxUploadMB << 20
	salesHandler := NewSalesHandler(parser, datasetStore, metrics, maxBodyBytes, logger)
	forecastHandler := NewForecastHandler(forecastService, datasetStore, maxBodyBytes)
	forecastLimiter := NewRateLimiter(cfg.ForecastRateLimit, cfg.ForecastRateBurst, logger)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(corsMiddleware(cfg))

	r.GET("/health", adminHandler.HealthCheck)
	r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	v1 := r.Group("/api/v1")
	v1.Use(apiKeyMiddleware(cfg.APIKey))
	{
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		monitoring := v1.Group("/monitoring")
		{
			monitoring.GET("/logs", monitoringHandler.GetLogs)
		}

		sales := v1.Group("/sales")
		{
			sales.POST("/upload", adminHandler.MaintenanceGuard(), salesHandler.UploadSales)
			sales.GET("/datasets", salesHandler.ListDatasets)
			sales.GET("/datasets/:id/products", salesHandler.GetDatasetProducts)
			sales.GET("/datasets/:id/statistics", salesHandler.GetProductStatistics)
			sales.DELETE("/datasets/:id", salesHandler.DeleteDataset)
		}

		v1.POST("/forecast", adminHandler.MaintenanceGuard(), forecastLimiter.Middleware(), forecastHandler.PredictSales)
	}

	return r
}

// apiKeyMiddleware 認証ミドルウェア（APIキー未設定の場合は認証なし）
func apiKeyMiddleware(apiKey string) gin.HandlerFunc {
	return func(c *gin.Context) {
		if apiKey == "" {
			c.Next()
			return
		}
		if c.GetHeader("X-API-KEY") != apiKey {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
			return
		}
		c.Next()
	}
}

func corsMiddleware(cfg *config.Config) gin.HandlerFunc {
	if len(cfg.AllowedOrigins) == 0 {
		return cors.Default()
	}
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = cfg.AllowedOrigins
	corsConfig.AddAllowHeaders("X-API-KEY")
	return cors.New(corsConfig)
}
