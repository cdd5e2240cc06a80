package handler

import (
	"fmt"
	"strconv"

	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/middleware"
	"agroconnect/internal/domain/entity"
	"agroconnect/internal/usecase"
	"agroconnect/pkg/response"
	"agroconnect/pkg/utils"
)

type NotificationHandler struct {
	notificationUseCase *usecase.NotificationUseCase
}

func NewNotificationHandler(notificationUseCase *usecase.NotificationUseCase) *NotificationHandler {
	return &NotificationHandler{
		notificationUseCase: notificationUseCase,
	}
}

func (h *NotificationHandler) List(c echo.Context) error {
	limit := utils.GetLimit(c, usecase.DefaultNotificationLimit)
	unreadOnly, _ := strconv.ParseBool(c.QueryParam("unreadOnly"))

	notifications, err := h.notificationUseCase.List(c.Request().Context(), middleware.UserID(c), limit, unreadOnly)
	if err != nil {
		return response.Error(c, err)
	}
	if notifications == nil {
		notifications = []*entity.Notification{}
	}

	return response.Success(c, map[string]interface{}{
		"notifications": notifications,
		"count":         len(notifications),
	})
}

func (h *NotificationHandler) UnreadCount(c echo.Context) error {
	count, err := h.notificationUseCase.UnreadCount(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"unreadCount": count,
	})
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	if err := h.notificationUseCase.MarkRead(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Message(c, "Notification marked as read")
}

func (h *NotificationHandler) MarkAllRead(c echo.Context) error {
	n, err := h.notificationUseCase.MarkAllRead(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Message(c, fmt.Sprintf("Marked %d notifications as read", n))
}

func (h *NotificationHandler) Delete(c echo.Context) error {
	if err := h.notificationUseCase.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Message(c, "Notification deleted")
}
