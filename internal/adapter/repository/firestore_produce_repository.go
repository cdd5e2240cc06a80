package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/retry"
)

type firestoreProduceRepository struct {
	store
}

func NewFirestoreProduceRepository(client *firestore.Client, policy retry.Policy) repository.ProduceRepository {
	return &firestoreProduceRepository{store{client: client, policy: policy}}
}

func (r *firestoreProduceRepository) produce() *firestore.CollectionRef {
	return r.client.Collection(produceCollection)
}

func (r *firestoreProduceRepository) Create(ctx context.Context, produce *entity.Produce) error {
	ref := r.produce().NewDoc()
	if produce.ImageURLs == nil {
		produce.ImageURLs = []string{}
	}

	var result *firestore.WriteResult
	err := r.retry(ctx, func() error {
		var err error
		result, err = ref.Set(ctx, produce)
		return err
	})
	if err != nil {
		return errors.Internal("Failed to create produce", err)
	}

	produce.ID = ref.ID
	produce.CreatedAt = result.UpdateTime
	produce.UpdatedAt = result.UpdateTime
	return nil
}

func (r *firestoreProduceRepository) GetByID(ctx context.Context, id string) (*entity.Produce, error) {
	doc, err := r.get(ctx, r.produce().Doc(id))
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("Produce", err)
		}
		return nil, errors.Internal("Failed to fetch produce", err)
	}
	return produceFromDoc(doc)
}

func (r *firestoreProduceRepository) List(ctx context.Context, filter entity.ProduceFilter) ([]*entity.Produce, error) {
	q := r.produce().Query
	if filter.Status != "" {
		q = q.Where("status", "==", filter.Status)
	}
	if filter.Category != "" {
		q = q.Where("category", "==", filter.Category)
	}
	q = q.OrderBy("createdAt", firestore.Desc)

	if filter.StartAfter != "" {
		cursor, err := r.get(ctx, r.produce().Doc(filter.StartAfter))
		switch {
		case err == nil:
			q = q.StartAfter(cursor)
		case !isNotFound(err):
			return nil, errors.Internal("Failed to load produce cursor", err)
		}
	}

	docs, err := r.getAll(ctx, q.Limit(filter.Limit))
	if err != nil {
		return nil, errors.Internal("Failed to fetch produce", err)
	}
	return produceFromDocs(docs)
}

func (r *firestoreProduceRepository) ListByFarmer(ctx context.Context, farmerID string) ([]*entity.Produce, error) {
	q := r.produce().
		Where("farmerId", "==", farmerID).
		OrderBy("createdAt", firestore.Desc)
	docs, err := r.getAll(ctx, q)
	if err != nil {
		return nil, errors.Internal("Failed to fetch your produce", err)
	}
	return produceFromDocs(docs)
}

// Update reads the current status and writes the change in one transaction,
// so concurrent editors each see the status the other left behind.
func (r *firestoreProduceRepository) Update(ctx context.Context, id string, update entity.ProduceUpdate) (string, error) {
	updates := produceUpdates(update)
	updates = append(updates, firestore.Update{Path: "updatedAt", Value: firestore.ServerTimestamp})
	ref := r.produce().Doc(id)

	var previous string
	err := r.retry(ctx, func() error {
		return r.client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
			snap, err := tx.Get(ref)
			if err != nil {
				return err
			}
			previous = ""
			if status, err := snap.DataAt("status"); err == nil {
				previous, _ = status.(string)
			}
			return tx.Update(ref, updates)
		})
	})
	if err != nil {
		if isNotFound(err) {
			return "", errors.NotFound("Produce", err)
		}
		return "", errors.Internal("Failed to update produce", err)
	}
	return previous, nil
}

func (r *firestoreProduceRepository) Delete(ctx context.Context, id string) error {
	err := r.retry(ctx, func() error {
		_, err := r.produce().Doc(id).Delete(ctx)
		return err
	})
	if err != nil {
		return errors.Internal("Failed to delete produce", err)
	}
	return nil
}

func produceUpdates(u entity.ProduceUpdate) []firestore.Update {
	var updates []firestore.Update
	set := func(path string, value interface{}) {
		updates = append(updates, firestore.Update{Path: path, Value: value})
	}

	if u.Name != nil {
		set("name", *u.Name)
	}
	if u.Description != nil {
		set("description", *u.Description)
	}
	if u.Category != nil {
		set("category", *u.Category)
	}
	if u.Price != nil {
		set("price", *u.Price)
	}
	if u.Unit != nil {
		set("unit", *u.Unit)
	}
	if u.Quantity != nil {
		set("quantity", *u.Quantity)
	}
	if u.Status != nil {
		set("status", *u.Status)
	}
	if u.Location != nil {
		set("location", *u.Location)
	}
	if u.ImageURLs != nil {
		set("imageUrls", *u.ImageURLs)
	}
	if u.ExpectedReadyDate != nil {
		set("expectedReadyDate", *u.ExpectedReadyDate)
	} else if u.ClearExpectedReadyDate {
		set("expectedReadyDate", nil)
	}
	return updates
}

func produceFromDoc(doc *firestore.DocumentSnapshot) (*entity.Produce, error) {
	var p entity.Produce
	if err := doc.DataTo(&p); err != nil {
		return nil, errors.Internal("Failed to parse produce data", err)
	}
	p.ID = doc.Ref.ID
	return &p, nil
}

func produceFromDocs(docs []*firestore.DocumentSnapshot) ([]*entity.Produce, error) {
	list := make([]*entity.Produce, 0, len(docs))
	for _, doc := range docs {
		p, err := produceFromDoc(doc)
		if err != nil {
			return nil, err
		}
		list = append(list, p)
	}
	return list, nil
}
