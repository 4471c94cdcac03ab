package apiHttp

import (
	"net/http"
	"time"

	ginzap "github.com/gin-contrib/zap"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/chess2earn/backend/docs"
	"github.com/chess2earn/backend/pkg/auth"
	"github.com/chess2earn/backend/pkg/limiter"
	"github.com/chess2earn/backend/pkg/logger"
	"github.com/chess2earn/backend/pkg/validator"

	internalV1 "github.com/chess2earn/backend/internal/api/http/internal/v1"
	"github.com/chess2earn/backend/internal/config"
	"github.com/chess2earn/backend/internal/service"

	"github.com/gin-gonic/gin"
)

var startedAt = time.Now()

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	config       *config.Config
	db           *sqlx.DB
	cache        redis.UniversalClient
}

func NewHandlers(
	services *service.Services,
	tokenManager auth.TokenManager,
	cfg *config.Config,
	db *sqlx.DB,
	cache redis.UniversalClient,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		config:       cfg,
		db:           db,
		cache:        cache,
	}
}

func (h *Handler) Init(cfg *config.Config) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()

	validator.RegisterGinValidator()

	router.Use(
		ginzap.Ginzap(logger.Logger(), time.RFC3339, true),
		limiter.LimitWith(limiter.Options{
			Every: time.Minute / time.Duration(cfg.Limiter.GeneralPerMinute),
			Burst: cfg.Limiter.GeneralBurst,
			TTL:   cfg.Limiter.TTL,
		}),
		corsMiddleware(cfg.CORS.AllowedOrigins),
	)
	router.Use(ginzap.RecoveryWithZap(logger.Logger(), true))

	if cfg.HttpServer.SwaggerEnabled {
		router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.NewHandler()))
	}

	router.GET("/health", healthCheck)
	router.GET("/health/ready", h.readyCheck)

	h.initAPI(router)

	return router
}

func healthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"message":   "Chess2Earn API is running",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
		"uptime":    time.Since(startedAt).Seconds(),
	})
}

// readyCheck reports whether the backing stores answer, so the orchestrator
// only routes traffic to instances that can actually serve it.
func (h *Handler) readyCheck(c *gin.Context) {
	ctx := c.Request.Context()

	if err := h.db.PingContext(ctx); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "database unavailable",
		})
		return
	}

	if err := h.cache.Ping(ctx).Err(); err != nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"success": false,
			"error":   "cache unavailable",
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (h *Handler) initAPI(router *gin.Engine) {
	internalHandlersV1 := internalV1.NewHandler(h.services, h.tokenManager, h.config)
	api := router.Group("/api")
	internalHandlersV1.Init(api)
}
