package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/retry"
)

type firestoreChatRoomRepository struct {
	store
}

func NewFirestoreChatRoomRepository(client *firestore.Client, policy retry.Policy) repository.ChatRoomRepository {
	return &firestoreChatRoomRepository{store{client: client, policy: policy}}
}

func (r *firestoreChatRoomRepository) rooms() *firestore.CollectionRef {
	return r.client.Collection(chatRoomsCollection)
}

func (r *firestoreChatRoomRepository) GetByID(ctx context.Context, id string) (*entity.ChatRoom, error) {
	doc, err := r.get(ctx, r.rooms().Doc(id))
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Chat room", err)
		}
		return nil, errors.Internal("Failed to get chat room", err)
	}
	return roomFromDoc(doc)
}

func (r *firestoreChatRoomRepository) CreateIfAbsent(ctx context.Context, room *entity.ChatRoom) (*entity.ChatRoom, bool, error) {
	ref := r.rooms().Doc(room.ID)
	err := r.retry(ctx, func() error {
		_, err := ref.Create(ctx, room)
		return err
	})
	if status.Code(err) == codes.AlreadyExists {
		existing, err := r.GetByID(ctx, room.ID)
		if err != nil {
			return nil, false, err
		}
		return existing, false, nil
	}
	if err != nil {
		return nil, false, errors.Internal("Failed to create chat room", err)
	}

	// Re-read so createdAt carries the server value.
	stored, err := r.GetByID(ctx, room.ID)
	if err != nil {
		return room, true, nil
	}
	return stored, true, nil
}

func (r *firestoreChatRoomRepository) ListByParticipant(ctx context.Context, userID string) ([]*entity.ChatRoom, error) {
	q := r.rooms().
		Where("participantIds", "array-contains", userID).
		OrderBy("lastMessageTime", firestore.Desc)
	docs, err := r.getAll(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to list chat rooms", err)
	}
	return roomsFromDocs(docs)
}

func (r *firestoreChatRoomRepository) ListByProduce(ctx context.Context, produceID string) ([]*entity.ChatRoom, error) {
	docs, err := r.getAll(ctx, r.rooms().Where("produceId", "==", produceID))
	if err != nil {
		return nil, errors.Internal("Failed to list chat rooms for produce", err)
	}
	return roomsFromDocs(docs)
}

func roomFromDoc(doc *firestore.DocumentSnapshot) (*entity.ChatRoom, error) {
	var room entity.ChatRoom
	if err := doc.DataTo(&room); err != nil {
		return nil, errors.Internal("Failed to parse chat room data", err)
	}
	room.ID = doc.Ref.ID
	return &room, nil
}

func roomsFromDocs(docs []*firestore.DocumentSnapshot) ([]*entity.ChatRoom, error) {
	rooms := make([]*entity.ChatRoom, 0, len(docs))
	for _, doc := range docs {
		room, err := roomFromDoc(doc)
		if err != nil {
			return nil, err
		}
		rooms = append(rooms, room)
	}
	return rooms, nil
}
