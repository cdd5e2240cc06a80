package router

import (
	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/handler"
)

// SetupImageRouter exposes stored images without authentication.
func SetupImageRouter(api *echo.Group) {
	imageHandler := handler.GetImageHandler()
	api.GET("/images/:imageId", imageHandler.Serve)
}
