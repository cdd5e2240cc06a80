package router

import (
	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/middleware"
	"agroconnect/internal/infrastructure/ratelimit"
	"agroconnect/pkg/response"
)

// Setup mounts every route under /api. limiter may be nil to disable per-IP
// throttling.
func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware, limiter *ratelimit.RateLimiter) {
	e.HTTPErrorHandler = func(err error, c echo.Context) {
		if c.Response().Committed {
			return
		}
		_ = response.Error(c, err)
	}

	api := e.Group("/api")
	if limiter != nil {
		api.Use(middleware.RateLimit(limiter))
	}

	SetupHealthRouter(api)
	SetupImageRouter(api)
	SetupUserRouter(api, authMiddleware)
	SetupProduceRouter(api, authMiddleware, roleMiddleware)
	SetupChatRouter(api, authMiddleware)
	SetupNotificationRouter(api, authMiddleware)
}
