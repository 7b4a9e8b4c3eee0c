package api

import (
	"github.com/gin-gonic/gin"
)

// SetupRoutes sets up the API routes; allowedOrigins may be empty
func SetupRoutes(handler *Handler, allowedOrigins []string) *gin.Engine {
	router := gin.New()

	// Middleware
	router.Use(Recovery())
	router.Use(CORS(allowedOrigins))
	router.Use(Logger())

	// Health check
	router.GET("/health", handler.HealthCheck)

	// API v1
	v1 := router.Group("/api/v1")
	{
		audits := v1.Group("/audits")
		{
			audits.POST("", handler.RunAudit)
			audits.POST("/report.html", handler.AuditReportHTML)
		}
	}

	return router
}
