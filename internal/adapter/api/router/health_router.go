package router

import (
	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/handler"
)

func SetupHealthRouter(api *echo.Group) {
	healthHandler := handler.GetHealthHandler()
	api.GET("/health", healthHandler.CheckHealth)
}
