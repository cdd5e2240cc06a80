package usecase

import (
	"context"
	"fmt"
	"unicode/utf16"

	"github.com/google/uuid"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/logger"
)

const (
	maxBodyUnits      = 100
	defaultSenderName = "Someone"
)

var notificationNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("agroconnect/notifications"))

// FanOut turns one domain event into notifications for every interested
// user. Each recipient gets an id derived from the event id, so replaying an
// event rewrites the same documents instead of duplicating them.
type FanOut struct {
	userRepo         repository.UserRepository
	roomRepo         repository.ChatRoomRepository
	notificationRepo repository.NotificationRepository
}

func NewFanOut(
	userRepo repository.UserRepository,
	roomRepo repository.ChatRoomRepository,
	notificationRepo repository.NotificationRepository,
) *FanOut {
	return &FanOut{
		userRepo:         userRepo,
		roomRepo:         roomRepo,
		notificationRepo: notificationRepo,
	}
}

// NewListing notifies every buyer about a freshly listed produce.
func (f *FanOut) NewListing(ctx context.Context, eventID, produceID, produceName, category, farmerName string) (int, error) {
	buyers, err := f.userRepo.ListByRole(ctx, entity.RoleBuyer)
	if err != nil {
		return 0, err
	}

	recipients := make([]string, len(buyers))
	for i, b := range buyers {
		recipients[i] = b.ID
	}

	title := "New Produce Available!"
	body := fmt.Sprintf("%s just listed %s (%s)", farmerName, produceName, category)
	return f.deliver(ctx, eventID, recipients, title, body, &produceID)
}

// ListingReady notifies everyone who has a chat room about the produce,
// each of them once.
func (f *FanOut) ListingReady(ctx context.Context, eventID, produceID, produceName, farmerName string) (int, error) {
	rooms, err := f.roomRepo.ListByProduce(ctx, produceID)
	if err != nil {
		return 0, err
	}

	seen := make(map[string]struct{})
	var recipients []string
	for _, room := range rooms {
		for _, uid := range room.ParticipantIDs {
			if _, ok := seen[uid]; ok {
				continue
			}
			seen[uid] = struct{}{}
			recipients = append(recipients, uid)
		}
	}

	title := "Produce Now Ready!"
	body := fmt.Sprintf("%s by %s is now ready for sale", produceName, farmerName)
	return f.deliver(ctx, eventID, recipients, title, body, &produceID)
}

// NewMessage notifies the recipient of a chat message.
func (f *FanOut) NewMessage(ctx context.Context, eventID, recipientID, senderName, text string) error {
	title := fmt.Sprintf("New message from %s", senderName)
	_, err := f.deliver(ctx, eventID, []string{recipientID}, title, TruncateBody(text), nil)
	return err
}

// SenderName resolves the display name used in message notifications.
func (f *FanOut) SenderName(ctx context.Context, senderID string) string {
	user, err := f.userRepo.GetByID(ctx, senderID)
	if err != nil {
		if !errors.Is(err, errors.CodeNotFound) {
			logger.WithError(err).WithField("senderId", senderID).Warn("Sender lookup failed")
		}
		return defaultSenderName
	}
	if user.Name == "" {
		return defaultSenderName
	}
	return user.Name
}

func (f *FanOut) deliver(ctx context.Context, eventID string, recipients []string, title, body string, produceID *string) (int, error) {
	if len(recipients) == 0 {
		return 0, nil
	}

	notifications := make([]*entity.Notification, len(recipients))
	for i, uid := range recipients {
		notifications[i] = &entity.Notification{
			ID:        NotificationID(eventID, uid),
			UserID:    uid,
			Title:     title,
			Body:      body,
			ProduceID: produceID,
			IsRead:    false,
		}
	}

	if err := f.notificationRepo.CreateBatch(ctx, notifications); err != nil {
		return 0, err
	}
	return len(notifications), nil
}

// NotificationID is stable for a given event and recipient.
func NotificationID(eventID, recipientID string) string {
	return uuid.NewSHA1(notificationNamespace, []byte(eventID+"/"+recipientID)).String()
}

// TruncateBody caps text at 100 UTF-16 code units followed by "...". A
// surrogate pair straddling the cut is dropped whole.
func TruncateBody(text string) string {
	units := utf16.Encode([]rune(text))
	if len(units) <= maxBodyUnits {
		return text
	}
	cut := units[:maxBodyUnits]
	if isHighSurrogate(cut[len(cut)-1]) {
		cut = cut[:len(cut)-1]
	}
	return string(utf16.Decode(cut)) + "..."
}

func isHighSurrogate(u uint16) bool {
	return u >= 0xd800 && u < 0xdc00
}
