package v1

import (
	"net/http"
	"time"

	"github.com/chess2earn/backend/internal/domain"
	"github.com/chess2earn/backend/pkg/limiter"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func (h *Handler) initAuthRoutes(api *gin.RouterGroup) {
	authLimiter := limiter.LimitWith(limiter.Options{
		Every:   time.Minute / time.Duration(h.config.Limiter.AuthPerMinute),
		Burst:   h.config.Limiter.AuthPerMinute,
		TTL:     h.config.Limiter.TTL,
		Code:    CodeRateLimitExceeded,
		Message: "Too many authentication attempts, please try again later",
	})

	auth := api.Group("/auth")
	{
		auth.POST("/register", authLimiter, h.register)
		auth.POST("/verify", authLimiter, h.verify)
		auth.POST("/resend-code", authLimiter, h.resendCode)
		auth.POST("/login", authLimiter, h.login)
		auth.POST("/refresh", h.refresh)
	}
}

type registerRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Username string `json:"username" binding:"required,min=3,max=20,username"`
}

type registerResponse struct {
	UserID        uuid.UUID `json:"userId"`
	Email         string    `json:"email"`
	Username      string    `json:"username"`
	CodeExpiresAt time.Time `json:"codeExpiresAt"`
}

// @Summary Register
// @Tags Auth
// @Description Create (or resume) a registration and email a verification code
// @ModuleID register
// @Accept  json
// @Produce  json
// @Param input body registerRequest true "registration info"
// @Success 201 {object} successStruct{data=registerResponse}
// @Failure 400 {object} ErrorStruct
// @Failure 429 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/register [post]
func (h *Handler) register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Users.Register(c.Request.Context(), req.Email, req.Username)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusCreated, "Verification code sent to email", registerResponse{
		UserID:        result.UserID,
		Email:         result.Email,
		Username:      result.Username,
		CodeExpiresAt: result.CodeExpiresAt,
	})
}

type verifyRequest struct {
	Email string `json:"email" binding:"required,email"`
	Code  string `json:"code" binding:"required,len=6,numeric"`
}

type verifyResponse struct {
	Token string      `json:"token"`
	User  userProfile `json:"user"`
}

type userProfile struct {
	ID              uuid.UUID `json:"id"`
	Username        string    `json:"username"`
	Email           string    `json:"email"`
	Verified        bool      `json:"verified"`
	GemsBalance     float64   `json:"gemsBalance"`
	Diamonds        float64   `json:"diamonds"`
	RTDBalance      float64   `json:"rtdBalance"`
	KnowledgePoints int       `json:"knowledgePoints"`
	ReferralCode    string    `json:"referralCode"`
	CreatedAt       time.Time `json:"createdAt"`
}

func userProjection(user *domain.User) userProfile {
	return userProfile{
		ID:              user.ID,
		Username:        user.Username,
		Email:           user.Email,
		Verified:        user.Verified,
		GemsBalance:     user.GemsBalance,
		Diamonds:        user.Diamonds,
		RTDBalance:      user.RTDBalance,
		KnowledgePoints: user.KnowledgePoints,
		ReferralCode:    user.ReferralCode,
		CreatedAt:       user.CreatedAt,
	}
}

// @Summary Verify Email
// @Tags Auth
// @Description Consume a verification code and issue a session token
// @ModuleID verify
// @Accept  json
// @Produce  json
// @Param input body verifyRequest true "email and code"
// @Success 200 {object} successStruct{data=verifyResponse}
// @Failure 400 {object} ValidationErrorStruct
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/verify [post]
func (h *Handler) verify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Users.Verify(c.Request.Context(), req.Email, req.Code)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, "Email verified successfully", verifyResponse{
		Token: result.Token,
		User:  userProjection(result.User),
	})
}

type emailRequest struct {
	Email string `json:"email" binding:"required,email"`
}

type resendResponse struct {
	Email         string    `json:"email"`
	CodeExpiresAt time.Time `json:"codeExpiresAt"`
}

// @Summary Resend Code
// @Tags Auth
// @Description Reissue a verification code, at most once per two minutes
// @ModuleID resendCode
// @Accept  json
// @Produce  json
// @Param input body emailRequest true "email"
// @Success 200 {object} successStruct{data=resendResponse}
// @Failure 404 {object} ErrorStruct
// @Failure 429 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/resend-code [post]
func (h *Handler) resendCode(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Users.ResendCode(c.Request.Context(), req.Email)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, "New verification code sent", resendResponse{
		Email:         result.Email,
		CodeExpiresAt: result.CodeExpiresAt,
	})
}

type loginResponse struct {
	UserID        uuid.UUID `json:"userId"`
	Email         string    `json:"email"`
	CodeExpiresAt time.Time `json:"codeExpiresAt"`
}

// @Summary Login
// @Tags Auth
// @Description Email a login code to a verified user
// @ModuleID login
// @Accept  json
// @Produce  json
// @Param input body emailRequest true "email"
// @Success 200 {object} successStruct{data=loginResponse}
// @Failure 400 {object} ErrorStruct
// @Failure 404 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Router /auth/login [post]
func (h *Handler) login(c *gin.Context) {
	var req emailRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		validationErrorResponse(c, err)
		return
	}

	result, err := h.services.Users.Login(c.Request.Context(), req.Email)
	if err != nil {
		serviceErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, "Verification code sent to email", loginResponse{
		UserID:        result.UserID,
		Email:         result.Email,
		CodeExpiresAt: result.CodeExpiresAt,
	})
}

type refreshResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// @Summary Refresh Token
// @Tags Auth
// @Description Issue a new token from a possibly expired but validly signed one
// @ModuleID refresh
// @Accept  json
// @Produce  json
// @Success 200 {object} successStruct{data=refreshResponse}
// @Failure 401 {object} ErrorStruct
// @Failure 500 {object} ErrorStruct
// @Security UserAuth
// @Router /auth/refresh [post]
func (h *Handler) refresh(c *gin.Context) {
	token, ok := bearerToken(c)
	if !ok {
		errorResponse(c, http.StatusUnauthorized, CodeMissingToken, "Token required")
		return
	}

	result, err := h.services.Users.Refresh(c.Request.Context(), token)
	if err != nil {
		refreshErrorResponse(c, err)
		return
	}

	successResponse(c, http.StatusOK, "", refreshResponse{
		Token:     result.Token,
		ExpiresAt: result.ExpiresAt,
	})
}
