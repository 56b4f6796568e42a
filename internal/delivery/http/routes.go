package http

import (
	"github.com/gin-gonic/gin"

	"github.com/vanshika2720/Sustainable-Food-Tracker/config"
)

// SetupRouter creates and configures the Gin router
func SetupRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	// Set Gin mode based on environment
	if cfg.Server.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()

	// Global middleware
	router.Use(RecoveryMiddleware())
	router.Use(LoggerMiddleware())
	router.Use(CORSMiddleware(cfg.Server.AllowedOrigins))

	// Health check endpoint
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	if cfg.RateLimit.PerIP > 0 {
		v1.Use(RateLimitMiddleware(cfg.RateLimit.PerIP))
	}
	v1.Use(ProfileMiddleware())
	{
		v1.POST("/lookup", handler.Lookup)
		v1.GET("/search", handler.SearchProducts)

		products := v1.Group("/products")
		{
			products.GET("/:barcode", handler.GetProduct)
		}

		profile := v1.Group("/profile")
		{
			profile.GET("", handler.GetProfile)
			profile.GET("/history", handler.GetHistory)
			profile.DELETE("/history", handler.ClearHistory)
		}
	}

	return router
}
