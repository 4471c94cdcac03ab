package v1

import (
	"github.com/chess2earn/backend/internal/config"
	"github.com/chess2earn/backend/internal/service"
	"github.com/chess2earn/backend/pkg/auth"

	"github.com/gin-gonic/gin"
)

// @title Chess2Earn API
// @version 1.0
// @description Gamified chess-rewards backend

// @BasePath /api

// @securityDefinitions.apikey UserAuth
// @in header
// @name Authorization

type Handler struct {
	services     *service.Services
	tokenManager auth.TokenManager
	config       *config.Config
}

func NewHandler(
	services *service.Services,
	tokenManager auth.TokenManager,
	config *config.Config,
) *Handler {
	return &Handler{
		services:     services,
		tokenManager: tokenManager,
		config:       config,
	}
}

func (h *Handler) Init(api *gin.RouterGroup) {
	h.initAuthRoutes(api)
	h.initUsersRoutes(api)
	h.initProductRoutes(api)
}
