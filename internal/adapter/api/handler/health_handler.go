package handler

import (
	"time"

	"github.com/labstack/echo/v4"

	"agroconnect/pkg/response"
)

type HealthHandler struct {
	service string
	now     func() time.Time
}

var healthHandler *HealthHandler

func NewHealthHandler(service string) *HealthHandler {
	return &HealthHandler{
		service: service,
		now:     time.Now,
	}
}

func SetupHealthHandler(service string) {
	healthHandler = NewHealthHandler(service)
}

func GetHealthHandler() *HealthHandler {
	return healthHandler
}

func (h *HealthHandler) CheckHealth(c echo.Context) error {
	return response.Success(c, map[string]string{
		"status":    "ok",
		"service":   h.service,
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}
