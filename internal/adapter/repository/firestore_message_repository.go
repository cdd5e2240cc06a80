package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/retry"
)

type firestoreMessageRepository struct {
	store
}

func NewFirestoreMessageRepository(client *firestore.Client, policy retry.Policy) repository.MessageRepository {
	return &firestoreMessageRepository{store{client: client, policy: policy}}
}

func (r *firestoreMessageRepository) messages(roomID string) *firestore.CollectionRef {
	return r.client.Collection(chatRoomsCollection).Doc(roomID).Collection(messagesCollection)
}

func (r *firestoreMessageRepository) Append(ctx context.Context, msg *entity.Message) error {
	roomRef := r.client.Collection(chatRoomsCollection).Doc(msg.ChatRoomID)
	msgRef := r.messages(msg.ChatRoomID).NewDoc()

	var results []*firestore.WriteResult
	err := r.retry(ctx, func() error {
		batch := r.client.Batch()
		batch.Set(msgRef, msg)
		batch.Update(roomRef, []firestore.Update{
			{Path: "lastMessage", Value: msg.Text},
			{Path: "lastMessageTime", Value: firestore.ServerTimestamp},
		})
		var err error
		results, err = batch.Commit(ctx)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Chat room", err)
		}
		return errors.Internal("Failed to send message", err)
	}

	msg.ID = msgRef.ID
	if len(results) > 0 {
		msg.Timestamp = results[0].UpdateTime
	}
	return nil
}

func (r *firestoreMessageRepository) GetByID(ctx context.Context, roomID, messageID string) (*entity.Message, error) {
	doc, err := r.get(ctx, r.messages(roomID).Doc(messageID))
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Message", err)
		}
		return nil, errors.Internal("Failed to get message", err)
	}
	return messageFromDoc(roomID, doc)
}

func (r *firestoreMessageRepository) List(ctx context.Context, roomID string, limit int, beforeID string) ([]*entity.Message, error) {
	q := r.messages(roomID).
		OrderBy("timestamp", firestore.Desc).
		OrderBy(firestore.DocumentID, firestore.Desc)

	if beforeID != "" {
		before, err := r.get(ctx, r.messages(roomID).Doc(beforeID))
		switch {
		case err == nil:
			q = q.StartAfter(before)
		case !isNotFound(err):
			return nil, errors.Internal("Failed to load message cursor", err)
		}
	}

	docs, err := r.getAll(ctx, q.Limit(limit))
	if err != nil {
		return nil, errors.Internal("Failed to fetch messages", err)
	}

	// newest-first page, returned oldest-first
	messages := make([]*entity.Message, len(docs))
	for i, doc := range docs {
		msg, err := messageFromDoc(roomID, doc)
		if err != nil {
			return nil, err
		}
		messages[len(docs)-1-i] = msg
	}
	return messages, nil
}

func (r *firestoreMessageRepository) MarkReadExcept(ctx context.Context, roomID, readerID string) (int, error) {
	q := r.messages(roomID).
		Where("isRead", "==", false).
		Where("senderId", "!=", readerID)
	docs, err := r.getAll(ctx, q)
	if err != nil {
		return 0, errors.Internal("Failed to load unread messages", err)
	}

	refs := make([]*firestore.DocumentRef, len(docs))
	for i, doc := range docs {
		refs[i] = doc.Ref
	}
	err = r.commitChunked(ctx, refs, func(b *firestore.WriteBatch, _ int, ref *firestore.DocumentRef) {
		b.Update(ref, []firestore.Update{{Path: "isRead", Value: true}})
	})
	if err != nil {
		return 0, errors.Internal("Failed to mark messages as read", err)
	}
	return len(refs), nil
}

func messageFromDoc(roomID string, doc *firestore.DocumentSnapshot) (*entity.Message, error) {
	var msg entity.Message
	if err := doc.DataTo(&msg); err != nil {
		return nil, errors.Internal("Failed to parse message data", err)
	}
	msg.ID = doc.Ref.ID
	msg.ChatRoomID = roomID
	return &msg, nil
}
