package handler

import (
	"net/http"
	"time"

	"github.com/arclyte/accounts/internal/constants"
	"github.com/arclyte/accounts/internal/dto"
	apperrors "github.com/arclyte/accounts/internal/errors"
	"github.com/arclyte/accounts/internal/service"
	ctxutil "github.com/arclyte/accounts/pkg/context"
	"github.com/arclyte/accounts/pkg/logger"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	authService  *service.AuthService
	refreshTTL   time.Duration
	secureCookie bool
}

func NewAuthHandler(authService *service.AuthService, refreshTTL time.Duration, secureCookie bool) *AuthHandler {
	return &AuthHandler{
		authService:  authService,
		refreshTTL:   refreshTTL,
		secureCookie: secureCookie,
	}
}

// Register creates a new user, or updates an existing one when the
// payload carries an id.
func (h *AuthHandler) Register(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Register")

	var req dto.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid registration request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	user, err := h.authService.CreateUser(ctx, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Registration failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Registration failed", apperrors.GetErrorMessage(err)))
		return
	}

	status := http.StatusCreated
	if req.ID != nil && *req.ID != "" {
		status = http.StatusOK
	}
	c.JSON(status, user)
}

// Login authenticates a user and returns a token pair. The refresh
// token is also set as an httpOnly cookie.
func (h *AuthHandler) Login(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Login")

	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid login request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	pair, err := h.authService.Login(ctx, &req)
	if err != nil {
		logger.WarnWithContext(ctx, "Login failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Authentication failed", apperrors.GetErrorMessage(err)))
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, pair)
}

// GenerateOTP issues a one-time code for the identified user. The code
// is delivered out of band, so the response stays generic.
func (h *AuthHandler) GenerateOTP(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "GenerateOTP")

	var req dto.OTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid OTP request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	if _, err := h.authService.GenerateOTP(ctx, req.Identifier); err != nil {
		logger.WarnWithContext(ctx, "OTP generation failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("OTP generation failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("OTP generated."))
}

// Refresh rotates the token pair. The refresh token may arrive in the
// body or in the cookie set at login.
func (h *AuthHandler) Refresh(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "Refresh")

	var req dto.RefreshRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid refresh request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	refreshToken := req.RefreshToken
	if refreshToken == "" {
		if fromCookie, err := c.Cookie(constants.RefreshTokenCookie); err == nil {
			refreshToken = fromCookie
		}
	}
	if refreshToken == "" {
		c.JSON(http.StatusUnauthorized, constants.BuildErrorResponse("Token refresh failed", "Refresh token is required."))
		return
	}

	pair, err := h.authService.RefreshTokens(ctx, refreshToken, req.AccessToken)
	if err != nil {
		logger.WarnWithContext(ctx, "Token refresh failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Token refresh failed", apperrors.GetErrorMessage(err)))
		return
	}

	h.setRefreshCookie(c, pair.RefreshToken)
	c.JSON(http.StatusOK, pair)
}

// ResetPassword replaces the user's password.
func (h *AuthHandler) ResetPassword(c *gin.Context) {
	ctx := ctxutil.NewContextWithRequest(c.Request.Context(), c.Request, "handler", "ResetPassword")

	var req dto.ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		logger.WarnWithContext(ctx, "Invalid password reset request").
			Err(err).
			Log()
		c.JSON(http.StatusBadRequest, constants.BuildErrorResponse("Invalid request format", err.Error()))
		return
	}

	if err := h.authService.ResetPassword(ctx, req.Identifier, req.Password); err != nil {
		logger.WarnWithContext(ctx, "Password reset failed").
			Err(err).
			Log()
		status := apperrors.ToHTTPStatus(err)
		c.JSON(status, constants.BuildErrorResponse("Password reset failed", apperrors.GetErrorMessage(err)))
		return
	}

	c.JSON(http.StatusOK, constants.BuildSuccessResponse("Password has been reset."))
}

func (h *AuthHandler) setRefreshCookie(c *gin.Context, refreshToken string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(
		constants.RefreshTokenCookie,
		refreshToken,
		int(h.refreshTTL.Seconds()),
		constants.CookiePath,
		"",
		h.secureCookie,
		true,
	)
}
