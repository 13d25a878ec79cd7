package router

import (
	"github.com/gin-gonic/gin"

	"collabtrack/internal/api/handler"
	"collabtrack/internal/api/middleware"
)

// registerAuthRoutes 认证相关(无需token), 登录与注册按 IP 限流
func registerAuthRoutes(v1 *gin.RouterGroup, authHandler *handler.AuthHandler, limiter *middleware.RateLimiter) {
	authGroup := v1.Group("/auth")

	throttled := []gin.HandlerFunc{}
	if limiter != nil {
		throttled = append(throttled, limiter.Middleware())
	}

	authGroup.POST("/register", append(throttled, authHandler.Register)...)
	authGroup.POST("/login", append(throttled, authHandler.Login)...)
	authGroup.POST("/refresh", authHandler.Refresh)
}
