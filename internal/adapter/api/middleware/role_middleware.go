package middleware

import (
	"github.com/labstack/echo/v4"

	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/response"
)

type RoleMiddleware struct {
	userRepo repository.UserRepository
}

func NewRoleMiddleware(userRepo repository.UserRepository) *RoleMiddleware {
	return &RoleMiddleware{
		userRepo: userRepo,
	}
}

// RequireRole lets the request through only when the authenticated user has
// role. It must run after Authenticate.
func (m *RoleMiddleware) RequireRole(role string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			uid := UserID(c)
			if uid == "" {
				return response.Error(c, errors.Unauthorized("Authentication required", nil))
			}

			user, err := m.userRepo.GetByID(c.Request().Context(), uid)
			if err != nil {
				if errors.Is(err, errors.CodeNotFound) {
					return response.Error(c, errors.Forbidden("User profile not found", err))
				}
				return response.Error(c, err)
			}

			if user.Role != role {
				return response.Error(c, errors.Forbidden("Only "+role+"s can do this", nil))
			}

			return next(c)
		}
	}
}
