package repository

import (
	"context"

	"agroconnect/internal/domain/entity"
)

type ChatRoomRepository interface {
	GetByID(ctx context.Context, id string) (*entity.ChatRoom, error)
	// CreateIfAbsent stores room under room.ID unless a document already
	// exists there. created is false when another writer got there first, in
	// which case the stored room is returned.
	CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (stored *entity.ChatRoom, created bool, err error)
	ListByParticipant(ctx context.Context, userID string) ([]*entity.ChatRoom, error)
	ListByProduce(ctx context.Context, produceID string) ([]*entity.ChatRoom, error)
}

type MessageRepository interface {
	// Append writes msg and updates the room summary in one atomic commit.
	Append(ctx context.Context, msg *entity.Message) error
	GetByID(ctx context.Context, roomID, messageID string) (*entity.Message, error)
	// List returns at most limit messages, oldest first, that precede
	// beforeID. An unknown beforeID is ignored.
	List(ctx context.Context, roomID string, limit int, beforeID string) ([]*entity.Message, error)
	// MarkReadExcept flips every unread message not sent by readerID.
	MarkReadExcept(ctx context.Context, roomID, readerID string) (int, error)
}
