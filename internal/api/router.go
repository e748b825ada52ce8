package api

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/avrentals/backend/internal/api/handlers"
	"github.com/avrentals/backend/internal/config"
	"github.com/avrentals/backend/internal/metrics"
	"github.com/avrentals/backend/internal/middleware"
	"github.com/avrentals/backend/internal/translation"
)

// NewRouter builds the HTTP surface: the public translate endpoints, the
// key-guarded admin endpoints, and the operational endpoints.
func NewRouter(cfg *config.Config, gateway *translation.Gateway, store *translation.Store) *gin.Engine {
	gin.SetMode(cfg.GinMode)

	r := gin.New()
	r.Use(gin.Logger(), gin.Recovery())
	r.Use(metrics.HTTPMetrics())
	r.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.AllowedOrigins,
		AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Authorization"},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}))

	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	translate := handlers.NewTranslateHandler(gateway)
	admin := handlers.NewTranslationAdminHandler(store, gateway)

	apiGroup := r.Group("/api")
	{
		public := apiGroup.Group("")
		public.Use(middleware.RateLimit(cfg.PublicRateLimit, cfg.PublicRateBurst))
		{
			public.POST("/translate", translate.Translate)
			// Kept for clients that still send batches with PUT.
			public.PUT("/translate", translate.Translate)
			public.GET("/translate/stats", translate.Stats)
			public.POST("/translate/preload", translate.Preload)
		}

		apiGroup.GET("/auth/status", middleware.AuthStatus(cfg.AdminKey))
		apiGroup.POST("/auth/verify", middleware.VerifyAdminKey(cfg.AdminKey))

		adminGroup := apiGroup.Group("/admin")
		adminGroup.Use(middleware.RequireAdminKey(cfg.AdminKey))
		{
			adminGroup.GET("/translations", admin.List)
			adminGroup.POST("/translations", admin.Create)
			adminGroup.PUT("/translations", admin.BulkUpdate)
			adminGroup.DELETE("/translations", admin.Delete)
			adminGroup.GET("/translations/export", admin.Export)

			adminGroup.POST("/translate/invalidate", translate.Invalidate)
		}
	}

	return r
}
