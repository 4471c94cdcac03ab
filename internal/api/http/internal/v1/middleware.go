package v1

import (
	"errors"
	"net/http"
	"strings"

	"github.com/chess2earn/backend/internal/domain"
	"github.com/chess2earn/backend/pkg/logger"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	authorizationHeader = "Authorization"
	userCtx             = "userId"
	userRecordCtx       = "user"
)

// userIdentityMiddleware gates every protected route: the bearer token must
// carry a valid signature and expiry, and its subject must still be an
// existing, verified user.
func (h *Handler) userIdentityMiddleware(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, CodeMissingToken, "Access token required")
		return
	}

	subject, err := h.tokenManager.Parse(token)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			errorResponse(c, http.StatusUnauthorized, CodeTokenExpired, "Token expired")
			return
		}
		errorResponse(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid token")
		return
	}

	userID, err := uuid.Parse(subject)
	if err != nil {
		errorResponse(c, http.StatusUnauthorized, CodeInvalidToken, "Invalid token")
		return
	}

	user, err := h.services.Users.GetOneByID(c.Request.Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			errorResponse(c, http.StatusUnauthorized, CodeUserNotFound, "User not found")
			return
		}
		logger.Error("load user for auth failed", zap.Error(err))
		errorResponse(c, http.StatusInternalServerError, CodeInternalError, "Internal server error")
		return
	}

	if !user.Verified {
		errorResponse(c, http.StatusUnauthorized, CodeEmailNotVerified, "Email not verified")
		return
	}

	c.Set(userCtx, userID)
	c.Set(userRecordCtx, userProjection(user))
}

// optionalUserIdentityMiddleware attaches the user identity when a valid
// token is present and silently proceeds unauthenticated otherwise.
func (h *Handler) optionalUserIdentityMiddleware(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		c.Next()
		return
	}

	subject, err := h.tokenManager.Parse(token)
	if err != nil {
		c.Next()
		return
	}

	if userID, err := uuid.Parse(subject); err == nil {
		c.Set(userCtx, userID)
	}

	c.Next()
}

func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader(authorizationHeader)
	if header == "" {
		return "", false
	}

	headerParts := strings.Split(header, " ")
	if len(headerParts) != 2 || headerParts[0] != "Bearer" || headerParts[1] == "" {
		return "", false
	}

	return headerParts[1], true
}

func getUserUUID(c *gin.Context) (uuid.UUID, error) {
	id, ok := c.Get(userCtx)
	if !ok {
		return uuid.Nil, errors.New("user id not found")
	}

	userID, ok := id.(uuid.UUID)
	if !ok {
		return uuid.Nil, errors.New("user id has wrong type")
	}

	return userID, nil
}
