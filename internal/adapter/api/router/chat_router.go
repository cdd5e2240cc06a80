package router

import (
	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/handler"
	"agroconnect/internal/adapter/api/middleware"
)

func SetupChatRouter(api *echo.Group, authMiddleware *middleware.AuthMiddleware) {
	chatHandler := handler.GetChatHandler()

	chat := api.Group("/chat")
	chat.Use(authMiddleware.Authenticate)

	chat.POST("/room", chatHandler.ResolveRoom)
	chat.GET("/rooms", chatHandler.ListRooms)

	chat.POST("/message", chatHandler.SendMessage)
	chat.GET("/:chatRoomId/messages", chatHandler.ListMessages)
	chat.PUT("/:chatRoomId/read", chatHandler.MarkRead)
}
