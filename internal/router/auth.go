package router

import (
	"github.com/arclyte/accounts/internal/constants"
	"github.com/arclyte/accounts/internal/middleware"
	"github.com/gin-gonic/gin"
)

// authRoutes defines the authentication routes. Login and OTP
// generation are rate limited per client IP.
func (r *Router) authRoutes(rg *gin.RouterGroup) {
	auth := rg.Group("/auth")
	{
		auth.POST("/register", r.authHandler.Register)
		auth.POST("/login", middleware.RateLimit(
			r.redisClient,
			constants.RateLimitKeyLogin,
			r.cfg.RateLimit.LoginMax,
			r.cfg.RateLimit.Window,
		), r.authHandler.Login)
		auth.POST("/otp/generate", middleware.RateLimit(
			r.redisClient,
			constants.RateLimitKeyOTP,
			r.cfg.RateLimit.OTPMax,
			r.cfg.RateLimit.Window,
		), r.authHandler.GenerateOTP)
		auth.POST("/refresh", r.authHandler.Refresh)
		auth.POST("/reset-password", r.authHandler.ResetPassword)
	}
}
