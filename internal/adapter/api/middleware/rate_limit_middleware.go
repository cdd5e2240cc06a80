package middleware

import (
	"math"
	"strconv"

	"github.com/labstack/echo/v4"

	"agroconnect/internal/infrastructure/ratelimit"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/logger"
	"agroconnect/pkg/response"
)

// RateLimit throttles requests per client IP using the limiter's API rule.
func RateLimit(limiter *ratelimit.RateLimiter) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ip := c.RealIP()
			ok, wait := limiter.Allow(ip, ratelimit.ActionAPI)
			if !ok {
				logger.WithFields(map[string]interface{}{"ip": ip, "wait": wait}).Warn("Rate limit exceeded")
				c.Response().Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(wait.Seconds()))))
				return response.Error(c, errors.TooManyRequests("Rate limit exceeded", wait))
			}
			return next(c)
		}
	}
}
