package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/yuefen/wearwise/internal/domain/auth"
	"github.com/yuefen/wearwise/internal/infra/config"
)

// NewRouter wires up the HTTP handlers and returns a configured server.
func NewRouter(cfg *config.Config, handler *Handler, authSvc auth.Service) *http.Server {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(handler.logger),
		corsMiddleware(nil),
		errorHandlingMiddleware(handler.logger),
		rateLimitMiddleware(cfg.HTTP.RateLimit, handler.logger),
	)

	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := router.Group("/api/v1")

	authGroup := api.Group("/auth")
	{
		authGroup.POST("/register", handler.Register)
		authGroup.POST("/login", handler.Login)
		authGroup.POST("/refresh", handler.Refresh)
		authGroup.GET("/google/login", handler.GoogleLogin)
		authGroup.GET("/google/callback", handler.GoogleCallback)
	}

	authed := api.Group("", authMiddleware(authSvc))
	{
		authed.GET("/me", handler.Profile)
		authed.POST("/logout", handler.Logout)

		authed.POST("/items", handler.CreateItem)
		authed.GET("/items", handler.ListItems)
		authed.GET("/items/:id", handler.GetItem)
		authed.PUT("/items/:id", handler.UpdateItem)
		authed.DELETE("/items/:id", handler.DeleteItem)
		authed.PUT("/items/:id/image", handler.UploadItemImage)
		authed.POST("/items/search", handler.SearchItems)

		authed.POST("/outfits/suggest", handler.SuggestOutfits)
		authed.POST("/trips/pack", handler.PackTrip)

		authed.POST("/wear", handler.RecordWear)
		authed.GET("/wear/today", handler.WornToday)
	}

	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        withRetry(router, cfg.HTTP.Retry, handler.logger),
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}

func requestLogger(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		latency := time.Since(start)
		logger.Info("http request", "method", c.Request.Method, "path", c.Request.URL.Path, "status", c.Writer.Status(), "latency_ms", latency.Milliseconds())
	}
}
