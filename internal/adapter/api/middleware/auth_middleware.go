package middleware

import (
	"strings"

	"github.com/labstack/echo/v4"

	"agroconnect/internal/infrastructure/firebase"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/logger"
	"agroconnect/pkg/response"
)

const uidKey = "uid"

type AuthMiddleware struct {
	verifiers []firebase.TokenVerifier
}

// NewAuthMiddleware accepts a token when any verifier does, tried in order.
func NewAuthMiddleware(verifiers ...firebase.TokenVerifier) *AuthMiddleware {
	return &AuthMiddleware{
		verifiers: verifiers,
	}
}

func (m *AuthMiddleware) Authenticate(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		authHeader := c.Request().Header.Get("Authorization")
		if authHeader == "" {
			return response.Error(c, errors.Unauthorized("Authorization header is required", nil))
		}

		parts := strings.SplitN(authHeader, " ", 2)
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			return response.Error(c, errors.Unauthorized("Invalid authorization format", nil))
		}

		uid, err := m.verify(c, parts[1])
		if err != nil {
			logger.Debug("Token rejected for %s: %v", c.Path(), err)
			return response.Error(c, errors.Unauthorized("Invalid or expired token", err))
		}

		c.Set(uidKey, uid)
		return next(c)
	}
}

func (m *AuthMiddleware) verify(c echo.Context, token string) (string, error) {
	var lastErr error
	for _, v := range m.verifiers {
		uid, err := v.VerifyToken(c.Request().Context(), token)
		if err == nil {
			return uid, nil
		}
		lastErr = err
	}
	if lastErr == nil {
		lastErr = errors.Unauthorized("No token verifier configured", nil)
	}
	return "", lastErr
}

// UserID returns the authenticated user of the request.
func UserID(c echo.Context) string {
	uid, _ := c.Get(uidKey).(string)
	return uid
}
