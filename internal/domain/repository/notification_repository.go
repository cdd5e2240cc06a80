package repository

import (
	"context"

	"agroconnect/internal/domain/entity"
)

type NotificationRepository interface {
	// CreateBatch stores all notifications atomically per chunk of at most
	// MaxBatchWrites. A notification whose ID already exists, or was deleted,
	// is skipped, so replaying an event never resets read state.
	CreateBatch(ctx context.Context, notifications []*entity.Notification) error
	GetByID(ctx context.Context, id string) (*entity.Notification, error)
	ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*entity.Notification, error)
	CountUnread(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, id string) error
	MarkAllRead(ctx context.Context, userID string) (int, error)
	// Delete is permanent: the ID is never created again.
	Delete(ctx context.Context, id string) error
}

// MaxBatchWrites is the write cap of one Firestore commit.
const MaxBatchWrites = 500
