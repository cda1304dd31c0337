package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yanqian/taskhub/internal/domain/token"
	"github.com/yanqian/taskhub/internal/infra/config"
)

// NewAuthRouter wires the authentication service endpoints.
func NewAuthRouter(cfg *config.Config, handler *AuthHandler, verifier *token.Verifier, logger *slog.Logger) *http.Server {
	router := newEngine(cfg, logger)
	requireAuth := authMiddleware(verifier, logger)

	api := router.Group(cfg.HTTP.BasePath)
	{
		api.POST("/register", handler.Register)
		api.POST("/login", handler.Login)
		api.POST("/refresh", handler.Refresh)
		api.POST("/logout", requireAuth, handler.Logout)
		api.GET("/me", requireAuth, handler.Me)
	}

	return newServer(cfg, router)
}

// NewTaskRouter wires the task service endpoints. Every route requires a valid token.
func NewTaskRouter(cfg *config.Config, handler *TaskHandler, verifier *token.Verifier, logger *slog.Logger) *http.Server {
	router := newEngine(cfg, logger)

	api := router.Group(cfg.HTTP.BasePath, authMiddleware(verifier, logger))
	{
		api.GET("/me", handler.Me)
		api.GET("/tasks", handler.List)
		api.POST("/tasks", handler.Create)
		api.GET("/tasks/:id", handler.Get)
		api.PUT("/tasks/:id", handler.Update)
		api.DELETE("/tasks/:id", handler.Delete)
	}

	return newServer(cfg, router)
}

func newEngine(cfg *config.Config, logger *slog.Logger) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()
	router.Use(
		gin.Recovery(),
		requestLogger(logger),
		corsMiddleware(cfg.HTTP.AllowedOrigins),
		errorHandlingMiddleware(logger),
	)
	router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	return router
}

func newServer(cfg *config.Config, router *gin.Engine) *http.Server {
	return &http.Server{
		Addr:           cfg.HTTP.Address,
		Handler:        router,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		MaxHeaderBytes: 1 << 20,
	}
}
