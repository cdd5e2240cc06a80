package handler

import (
	"encoding/json"

	"github.com/labstack/echo/v4"

	"agroconnect/internal/usecase"
	"agroconnect/pkg/errors"
)

var (
	chatHandler         *ChatHandler
	notificationHandler *NotificationHandler
	produceHandler      *ProduceHandler
	imageHandler        *ImageHandler
	userHandler         *UserHandler
)

func Setup(
	chatUseCase *usecase.ChatUseCase,
	notificationUseCase *usecase.NotificationUseCase,
	produceUseCase *usecase.ProduceUseCase,
	imageUseCase *usecase.ImageUseCase,
	userUseCase *usecase.UserUseCase,
) {
	chatHandler = NewChatHandler(chatUseCase)
	notificationHandler = NewNotificationHandler(notificationUseCase)
	produceHandler = NewProduceHandler(produceUseCase, imageUseCase)
	imageHandler = NewImageHandler(imageUseCase)
	userHandler = NewUserHandler(userUseCase)
}

func GetChatHandler() *ChatHandler {
	return chatHandler
}

func GetNotificationHandler() *NotificationHandler {
	return notificationHandler
}

func GetProduceHandler() *ProduceHandler {
	return produceHandler
}

func GetImageHandler() *ImageHandler {
	return imageHandler
}

func GetUserHandler() *UserHandler {
	return userHandler
}

// bindStrict decodes a JSON body rejecting fields the request type does not
// declare, then validates it.
func bindStrict(c echo.Context, dst interface{}) error {
	dec := json.NewDecoder(c.Request().Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return errors.BadRequest("Invalid request body: "+err.Error(), err)
	}
	return c.Validate(dst)
}

func bind(c echo.Context, dst interface{}) error {
	if err := c.Bind(dst); err != nil {
		return errors.BadRequest("Invalid request body", err)
	}
	return c.Validate(dst)
}
