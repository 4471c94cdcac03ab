package v1

import (
	"net/http"

	"github.com/chess2earn/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (h *Handler) initUsersRoutes(api *gin.RouterGroup) {
	users := api.Group("/users", h.userIdentityMiddleware)
	{
		users.GET("/profile", h.getProfile)
		users.PUT("/profile", h.notImplemented)
		users.POST("/link-chesscom", h.notImplemented)
		users.GET("/referrals", h.notImplemented)
	}
}

// @Summary Get Profile
// @Tags Users
// @Description Get the authenticated user's public profile
// @ModuleID getProfile
// @Accept  json
// @Produce  json
// @Success 200 {object} successStruct{data=userProfile}
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /users/profile [get]
func (h *Handler) getProfile(c *gin.Context) {
	userID, err := getUserUUID(c)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid token")
		return
	}

	user, err := h.services.Users.GetOneByID(c.Request.Context(), userID)
	if err != nil {
		logger.Error("get profile failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
		return
	}

	successResponse(c, http.StatusOK, "", userProjection(user))
}
