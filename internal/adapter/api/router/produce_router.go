package router

import (
	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/handler"
	"agroconnect/internal/adapter/api/middleware"
	"agroconnect/internal/domain/entity"
)

func SetupProduceRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware, roleMiddleware *middleware.RoleMiddleware) {
	produceHandler := handler.GetProduceHandler()
	farmerOnly := roleMiddleware.RequireRole(entity.RoleFarmer)

	produce := api.Group("/produce")
	produce.Use(authMiddleware.Authenticate)

	produce.GET("", produceHandler.List)
	produce.GET("/mine", produceHandler.ListMine, farmerOnly)
	produce.GET("/:id", produceHandler.Get)

	// Create checks the farmer role itself so it can report a missing profile as 404.
	produce.POST("", produceHandler.Create)
	produce.PUT("/:id", produceHandler.Update)
	produce.DELETE("/:id", produceHandler.Delete)
	produce.POST("/:id/upload", produceHandler.UploadImage, farmerOnly)
}
