package v1

import (
	"net/http"
	"time"

	"github.com/chess2earn/backend/pkg/limiter"

	"github.com/gin-gonic/gin"
)

// The product surface beyond auth is not built yet. The route groups are
// registered behind the session gate and their rate limiters so clients
// integrate against the final contract while the handlers answer 501.
func (h *Handler) initProductRoutes(api *gin.RouterGroup) {
	gameSyncLimiter := limiter.LimitWith(limiter.Options{
		Every:   time.Hour / time.Duration(h.config.Limiter.GameSyncPerHour),
		Burst:   h.config.Limiter.GameSyncPerHour,
		TTL:     h.config.Limiter.TTL,
		Code:    CodeRateLimitExceeded,
		Message: "Too many game sync requests, please try again later",
	})
	leaderboardLimiter := limiter.LimitWith(limiter.Options{
		Every:   time.Minute / time.Duration(h.config.Limiter.LeaderboardPerMinute),
		Burst:   h.config.Limiter.LeaderboardPerMinute,
		TTL:     h.config.Limiter.TTL,
		Code:    CodeRateLimitExceeded,
		Message: "Too many leaderboard requests, please try again later",
	})

	wallet := api.Group("/wallet", h.userIdentityMiddleware)
	{
		wallet.GET("", h.notImplemented)
		wallet.GET("/transactions", h.notImplemented)
		wallet.POST("/convert/gems-to-diamonds", h.notImplemented)
		wallet.POST("/convert/diamonds-to-rtd", h.notImplemented)
		wallet.POST("/withdraw", h.notImplemented)
	}

	games := api.Group("/games", h.userIdentityMiddleware)
	{
		games.GET("", h.notImplemented)
		games.POST("/sync", gameSyncLimiter, h.notImplemented)
		games.GET("/:id/analysis", h.notImplemented)
	}

	quests := api.Group("/quests", h.userIdentityMiddleware)
	{
		quests.GET("", h.notImplemented)
		quests.POST("/:id/claim", h.notImplemented)
	}

	leaderboard := api.Group("/leaderboard", leaderboardLimiter, h.optionalUserIdentityMiddleware)
	{
		leaderboard.GET("", h.notImplemented)
	}

	tournaments := api.Group("/tournaments", h.userIdentityMiddleware)
	{
		tournaments.GET("", h.notImplemented)
		tournaments.POST("/:id/join", h.notImplemented)
	}

	market := api.Group("/market", h.userIdentityMiddleware)
	{
		market.GET("/listings", h.notImplemented)
		market.POST("/listings", h.notImplemented)
	}

	stats := api.Group("/stats", h.userIdentityMiddleware)
	{
		stats.GET("", h.notImplemented)
	}
}

func (h *Handler) notImplemented(c *gin.Context) {
	c.JSON(http.StatusNotImplemented, ErrorStruct{
		Success: false,
		Error:   "Not implemented yet",
		Code:    CodeNotImplemented,
	})
}
