package repository

import (
	"context"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/retry"
)

const (
	usersCollection         = "users"
	produceCollection       = "produce"
	chatRoomsCollection     = "chatRooms"
	messagesCollection      = "messages"
	notificationsCollection = "notifications"

	notificationTombstonesCollection = "notificationTombstones"
)

// store is embedded by every Firestore repository.
type store struct {
	client *firestore.Client
	policy retry.Policy
}

func (s store) retry(ctx context.Context, op func() error) error {
	return retry.Do(ctx, s.policy, op)
}

func (s store) get(ctx context.Context, ref *firestore.DocumentRef) (*firestore.DocumentSnapshot, error) {
	var snap *firestore.DocumentSnapshot
	err := s.retry(ctx, func() error {
		var err error
		snap, err = ref.Get(ctx)
		return err
	})
	return snap, err
}

func (s store) getAll(ctx context.Context, q firestore.Query) ([]*firestore.DocumentSnapshot, error) {
	var docs []*firestore.DocumentSnapshot
	err := s.retry(ctx, func() error {
		docs = docs[:0]
		iter := q.Documents(ctx)
		defer iter.Stop()
		for {
			doc, err := iter.Next()
			if err == iterator.Done {
				return nil
			}
			if err != nil {
				return err
			}
			docs = append(docs, doc)
		}
	})
	return docs, err
}

// commitChunked applies write to every ref in atomic batches of at most
// MaxBatchWrites.
func (s store) commitChunked(ctx context.Context, refs []*firestore.DocumentRef, write func(b *firestore.WriteBatch, i int, ref *firestore.DocumentRef)) error {
	for start := 0; start < len(refs); start += repository.MaxBatchWrites {
		end := start + repository.MaxBatchWrites
		if end > len(refs) {
			end = len(refs)
		}
		err := s.retry(ctx, func() error {
			batch := s.client.Batch()
			for i := start; i < end; i++ {
				write(batch, i, refs[i])
			}
			_, err := batch.Commit(ctx)
			return err
		})
		if err != nil {
			return err
		}
	}
	return nil
}

func isNotFound(err error) bool {
	return status.Code(err) == codes.NotFound
}
