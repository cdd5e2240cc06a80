package usecase

import (
	"context"

	"golang.org/x/sync/errgroup"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/internal/infrastructure/ratelimit"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/logger"
)

const (
	DefaultMessageLimit = 50
	MaxMessageLimit     = 100
	unknownUserName     = "Unknown"
)

type ChatUseCase struct {
	roomRepo    repository.ChatRoomRepository
	messageRepo repository.MessageRepository
	userRepo    repository.UserRepository
	fanOut      *FanOut
	dispatcher  TaskDispatcher
	rateLimiter RateLimiter
}

func NewChatUseCase(
	roomRepo repository.ChatRoomRepository,
	messageRepo repository.MessageRepository,
	userRepo repository.UserRepository,
	fanOut *FanOut,
	dispatcher TaskDispatcher,
	rateLimiter RateLimiter,
) *ChatUseCase {
	return &ChatUseCase{
		roomRepo:    roomRepo,
		messageRepo: messageRepo,
		userRepo:    userRepo,
		fanOut:      fanOut,
		dispatcher:  dispatcher,
		rateLimiter: rateLimiter,
	}
}

type ResolveRoomInput struct {
	OtherUserID string
	ProduceID   string
	ProduceName string
}

type SendMessageInput struct {
	ChatRoomID string
	Text       string
}

// ResolveRoom returns the room shared by the caller and the other user,
// creating it on first contact. created reports whether this call made it.
func (uc *ChatUseCase) ResolveRoom(ctx context.Context, currentUserID string, input ResolveRoomInput) (*entity.ChatRoom, bool, error) {
	if input.OtherUserID == "" {
		return nil, false, errors.BadRequest("otherUserId is required", nil)
	}
	if input.OtherUserID == currentUserID {
		return nil, false, errors.BadRequest("Cannot create chat with yourself", nil)
	}

	roomID := entity.DirectRoomID(currentUserID, input.OtherUserID)
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err == nil {
		return room, false, nil
	}
	if !errors.Is(err, errors.CodeNotFound) {
		return nil, false, err
	}

	// Rooms created before deterministic keys live under random ids.
	rooms, err := uc.roomRepo.ListByParticipant(ctx, currentUserID)
	if err != nil {
		return nil, false, err
	}
	for _, r := range rooms {
		if r.HasParticipant(input.OtherUserID) {
			return r, false, nil
		}
	}

	if ok, wait := allow(uc.rateLimiter, currentUserID, ratelimit.ActionCreateRoom); !ok {
		return nil, false, errors.TooManyRequests("Too many new chats. Please wait before starting another", wait)
	}

	var currentUser, otherUser *entity.User
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		u, err := uc.userRepo.GetByID(gctx, currentUserID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return nil
			}
			return err
		}
		currentUser = u
		return nil
	})
	g.Go(func() error {
		u, err := uc.userRepo.GetByID(gctx, input.OtherUserID)
		if err != nil {
			if errors.Is(err, errors.CodeNotFound) {
				return errors.NotFound("Other user", err)
			}
			return err
		}
		otherUser = u
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, false, err
	}

	room = &entity.ChatRoom{
		ID:             roomID,
		ParticipantIDs: []string{currentUserID, input.OtherUserID},
		ParticipantNames: map[string]string{
			currentUserID:     displayName(currentUser),
			input.OtherUserID: displayName(otherUser),
		},
		ProduceID:   optional(input.ProduceID),
		ProduceName: optional(input.ProduceName),
	}

	stored, created, err := uc.roomRepo.CreateIfAbsent(ctx, room)
	if err != nil {
		return nil, false, err
	}
	if created {
		logger.Debug("Chat room %s created for %s and %s", roomID, currentUserID, input.OtherUserID)
	}
	return stored, created, nil
}

func (uc *ChatUseCase) ListRooms(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	return uc.roomRepo.ListByParticipant(ctx, userID)
}

// SendMessage appends a message and notifies the other participant in the
// background.
func (uc *ChatUseCase) SendMessage(ctx context.Context, senderID string, input SendMessageInput) (*entity.Message, error) {
	if input.ChatRoomID == "" || input.Text == "" {
		return nil, errors.BadRequest("chatRoomId and text are required", nil)
	}

	room, err := uc.participantRoom(ctx, senderID, input.ChatRoomID)
	if err != nil {
		return nil, err
	}

	if ok, wait := allow(uc.rateLimiter, senderID, ratelimit.ActionSendMessage); !ok {
		return nil, errors.TooManyRequests("Too many messages. Please slow down", wait)
	}

	msg := &entity.Message{
		ChatRoomID: room.ID,
		SenderID:   senderID,
		Text:       input.Text,
		IsRead:     false,
	}
	if err := uc.messageRepo.Append(ctx, msg); err != nil {
		return nil, err
	}

	if recipientID := room.OtherParticipant(senderID); recipientID != "" {
		uc.notifyMessage(msg, recipientID)
	}
	return msg, nil
}

func (uc *ChatUseCase) notifyMessage(msg *entity.Message, recipientID string) {
	if uc.dispatcher == nil || uc.fanOut == nil {
		return
	}
	eventID := "message/" + msg.ChatRoomID + "/" + msg.ID
	senderID, text := msg.SenderID, msg.Text
	uc.dispatcher.Submit("fanout.new_message", func(ctx context.Context) error {
		return uc.fanOut.NewMessage(ctx, eventID, recipientID, uc.fanOut.SenderName(ctx, senderID), text)
	})
}

// ListMessages pages backwards through a room, returning each page oldest
// first.
func (uc *ChatUseCase) ListMessages(ctx context.Context, requesterID, roomID string, limit int, beforeMessageID string) ([]*entity.Message, error) {
	if _, err := uc.participantRoom(ctx, requesterID, roomID); err != nil {
		return nil, err
	}
	return uc.messageRepo.List(ctx, roomID, clampLimit(limit, DefaultMessageLimit, MaxMessageLimit), beforeMessageID)
}

// MarkRoomRead marks everything the other participant sent as read.
func (uc *ChatUseCase) MarkRoomRead(ctx context.Context, requesterID, roomID string) (int, error) {
	if _, err := uc.participantRoom(ctx, requesterID, roomID); err != nil {
		return 0, err
	}
	return uc.messageRepo.MarkReadExcept(ctx, roomID, requesterID)
}

func (uc *ChatUseCase) participantRoom(ctx context.Context, userID, roomID string) (*entity.ChatRoom, error) {
	room, err := uc.roomRepo.GetByID(ctx, roomID)
	if err != nil {
		return nil, err
	}
	if !room.HasParticipant(userID) {
		return nil, errors.Forbidden("You are not a participant in this chat", nil)
	}
	return room, nil
}

func displayName(u *entity.User) string {
	if u == nil || u.Name == "" {
		return unknownUserName
	}
	return u.Name
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

func clampLimit(limit, def, max int) int {
	if limit <= 0 {
		return def
	}
	if limit > max {
		return max
	}
	return limit
}
