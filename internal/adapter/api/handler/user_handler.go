package handler

import (
	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/middleware"
	"agroconnect/internal/domain/entity"
	"agroconnect/internal/usecase"
	"agroconnect/pkg/response"
)

type UserHandler struct {
	userUseCase *usecase.UserUseCase
}

func NewUserHandler(userUseCase *usecase.UserUseCase) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
	}
}

type updateProfileRequest struct {
	Name            *string `json:"name" validate:"omitempty,min=1"`
	Phone           *string `json:"phone"`
	Location        *string `json:"location"`
	ProfileImageURL *string `json:"profileImageUrl"`
}

func (h *UserHandler) GetProfile(c echo.Context) error {
	user, err := h.userUseCase.GetProfile(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"user": user,
	})
}

func (h *UserHandler) UpdateProfile(c echo.Context) error {
	var req updateProfileRequest
	if err := bindStrict(c, &req); err != nil {
		return response.Error(c, err)
	}

	user, err := h.userUseCase.UpdateProfile(c.Request().Context(), middleware.UserID(c), entity.ProfileUpdate{
		Name:            req.Name,
		Phone:           req.Phone,
		Location:        req.Location,
		ProfileImageURL: req.ProfileImageURL,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"user": user,
	})
}

func (h *UserHandler) GetUser(c echo.Context) error {
	profile, err := h.userUseCase.GetPublicProfile(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"user": profile,
	})
}
