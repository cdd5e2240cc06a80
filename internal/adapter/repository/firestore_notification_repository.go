package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"cloud.google.com/go/firestore/apiv1/firestorepb"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/retry"
)

type firestoreNotificationRepository struct {
	store
}

func NewFirestoreNotificationRepository(client *firestore.Client, policy retry.Policy) repository.NotificationRepository {
	return &firestoreNotificationRepository{store{client: client, policy: policy}}
}

func (r *firestoreNotificationRepository) notifications() *firestore.CollectionRef {
	return r.client.Collection(notificationsCollection)
}

func (r *firestoreNotificationRepository) tombstones() *firestore.CollectionRef {
	return r.client.Collection(notificationTombstonesCollection)
}

func (r *firestoreNotificationRepository) CreateBatch(ctx context.Context, notifications []*entity.Notification) error {
	for start := 0; start < len(notifications); start += repository.MaxBatchWrites {
		end := start + repository.MaxBatchWrites
		if end > len(notifications) {
			end = len(notifications)
		}
		if err := r.createChunk(ctx, notifications[start:end]); err != nil {
			return errors.Internal("Failed to create notifications", err)
		}
	}
	return nil
}

// createChunk creates every notification of chunk whose id was never stored
// or deleted, in one transaction. Existing documents keep their read state.
func (r *firestoreNotificationRepository) createChunk(ctx context.Context, chunk []*entity.Notification) error {
	refs := make([]*firestore.DocumentRef, len(chunk))
	var known []*firestore.DocumentRef
	for i, n := range chunk {
		if n.ID == "" {
			refs[i] = r.notifications().NewDoc()
			continue
		}
		refs[i] = r.notifications().Doc(n.ID)
		known = append(known, refs[i], r.tombstones().Doc(n.ID))
	}

	err := r.retry(ctx, func() error {
		return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			stored := make(map[string]bool)
			if len(known) > 0 {
				snaps, err := tx.GetAll(known)
				if err != nil {
					return err
				}
				for i, snap := range snaps {
					if snap.Exists() {
						stored[known[i].ID] = true
					}
				}
			}
			for i, n := range chunk {
				if n.ID != "" && stored[n.ID] {
					continue
				}
				if err := tx.Create(refs[i], n); err != nil {
					return err
				}
			}
			return nil
		})
	})
	if err != nil {
		return err
	}

	for i, n := range chunk {
		n.ID = refs[i].ID
	}
	return nil
}

func (r *firestoreNotificationRepository) GetByID(ctx context.Context, id string) (*entity.Notification, error) {
	doc, err := r.get(ctx, r.notifications().Doc(id))
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Notification", err)
		}
		return nil, errors.Internal("Failed to get notification", err)
	}
	return notificationFromDoc(doc)
}

func (r *firestoreNotificationRepository) ListByUser(ctx context.Context, userID string, limit int, unreadOnly bool) ([]*entity.Notification, error) {
	q := r.notifications().Where("userId", "==", userID)
	if unreadOnly {
		q = q.Where("isRead", "==", false)
	}
	q = q.OrderBy("createdAt", firestore.Desc).Limit(limit)

	docs, err := r.getAll(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to fetch notifications", err)
	}

	notifications := make([]*entity.Notification, 0, len(docs))
	for _, doc := range docs {
		n, err := notificationFromDoc(doc)
		if err != nil {
			return nil, err
		}
		notifications = append(notifications, n)
	}
	return notifications, nil
}

func (r *firestoreNotificationRepository) unread(userID string) firestore.Query {
	return r.notifications().
		Where("userId", "==", userID).
		Where("isRead", "==", false)
}

func (r *firestoreNotificationRepository) CountUnread(ctx context.Context, userID string) (int64, error) {
	var count int64
	err := r.retry(ctx, func() error {
		q := r.unread(userID)
		result, err := q.NewAggregationQuery().WithCount("unread").Get(ctx)
		if err != nil {
			return err
		}
		if v, ok := result["unread"].(*firestorepb.Value); ok {
			count = v.GetIntegerValue()
		}
		return nil
	})
	if err != nil {
		return 0, errors.Internal("Failed to get unread count", err)
	}
	return count, nil
}

func (r *firestoreNotificationRepository) MarkRead(ctx context.Context, id string) error {
	err := r.retry(ctx, func() error {
		_, err := r.notifications().Doc(id).Update(ctx, []firestore.Update{{Path: "isRead", Value: true}})
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("Notification", err)
		}
		return errors.Internal("Failed to mark notification as read", err)
	}
	return nil
}

func (r *firestoreNotificationRepository) MarkAllRead(ctx context.Context, userID string) (int, error) {
	docs, err := r.getAll(ctx, r.unread(userID))
	if err != nil {
		return 0, errors.Internal("Failed to load unread notifications", err)
	}

	refs := make([]*firestore.DocumentRef, len(docs))
	for i, doc := range docs {
		refs[i] = doc.Ref
	}
	err = r.commitChunked(ctx, refs, func(b *firestore.WriteBatch, _ int, ref *firestore.DocumentRef) {
		b.Update(ref, []firestore.Update{{Path: "isRead", Value: true}})
	})
	if err != nil {
		return 0, errors.Internal("Failed to mark all as read", err)
	}
	return len(refs), nil
}

// Delete removes the notification and leaves a tombstone under the same id so
// a replayed event cannot bring it back.
func (r *firestoreNotificationRepository) Delete(ctx context.Context, id string) error {
	err := r.retry(ctx, func() error {
		_, err := r.client.Batch().
			Delete(r.notifications().Doc(id)).
			Set(r.tombstones().Doc(id), map[string]interface{}{"deletedAt": firestore.ServerTimestamp}).
			Commit(ctx)
		return err
	})
	if err != nil {
		return errors.Internal("Failed to delete notification", err)
	}
	return nil
}

func notificationFromDoc(doc *firestore.DocumentSnapshot) (*entity.Notification, error) {
	var n entity.Notification
	if err := doc.DataTo(&n); err != nil {
		return nil, errors.Internal("Failed to parse notification data", err)
	}
	n.ID = doc.Ref.ID
	return &n, nil
}
