package handler

import (
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/middleware"
	"agroconnect/internal/domain/entity"
	"agroconnect/internal/usecase"
	"agroconnect/pkg/response"
	"agroconnect/pkg/utils"
)

type ChatHandler struct {
	chatUseCase *usecase.ChatUseCase
}

func NewChatHandler(chatUseCase *usecase.ChatUseCase) *ChatHandler {
	return &ChatHandler{
		chatUseCase: chatUseCase,
	}
}

type resolveRoomRequest struct {
	OtherUserID string `json:"otherUserId" validate:"required"`
	ProduceID   string `json:"produceId"`
	ProduceName string `json:"produceName"`
}

type sendMessageRequest struct {
	ChatRoomID string `json:"chatRoomId" validate:"required"`
	Text       string `json:"text" validate:"required"`
}

type chatRoomResponse struct {
	*entity.ChatRoom
	ChatRoomID string `json:"chatRoomId"`
}

type messageResponse struct {
	*entity.Message
	MessageID string `json:"messageId"`
}

// ResolveRoom answers 201 when the room was created by this call and 200 when
// it already existed.
func (h *ChatHandler) ResolveRoom(c echo.Context) error {
	var req resolveRoomRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	room, created, err := h.chatUseCase.ResolveRoom(c.Request().Context(), middleware.UserID(c), usecase.ResolveRoomInput{
		OtherUserID: req.OtherUserID,
		ProduceID:   req.ProduceID,
		ProduceName: req.ProduceName,
	})
	if err != nil {
		return response.Error(c, err)
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	return c.JSON(status, chatRoomResponse{ChatRoom: room, ChatRoomID: room.ID})
}

func (h *ChatHandler) ListRooms(c echo.Context) error {
	rooms, err := h.chatUseCase.ListRooms(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}
	if rooms == nil {
		rooms = []*entity.ChatRoom{}
	}

	return response.Success(c, map[string]interface{}{
		"chatRooms": rooms,
	})
}

func (h *ChatHandler) SendMessage(c echo.Context) error {
	var req sendMessageRequest
	if err := bind(c, &req); err != nil {
		return response.Error(c, err)
	}

	msg, err := h.chatUseCase.SendMessage(c.Request().Context(), middleware.UserID(c), usecase.SendMessageInput{
		ChatRoomID: req.ChatRoomID,
		Text:       req.Text,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, messageResponse{Message: msg, MessageID: msg.ID})
}

func (h *ChatHandler) ListMessages(c echo.Context) error {
	limit := utils.GetLimit(c, usecase.DefaultMessageLimit)

	messages, err := h.chatUseCase.ListMessages(
		c.Request().Context(),
		middleware.UserID(c),
		c.Param("chatRoomId"),
		limit,
		c.QueryParam("before"),
	)
	if err != nil {
		return response.Error(c, err)
	}
	if messages == nil {
		messages = []*entity.Message{}
	}

	return response.Success(c, map[string]interface{}{
		"messages": messages,
	})
}

func (h *ChatHandler) MarkRead(c echo.Context) error {
	n, err := h.chatUseCase.MarkRoomRead(c.Request().Context(), middleware.UserID(c), c.Param("chatRoomId"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Message(c, fmt.Sprintf("Marked %d messages as read", n))
}
