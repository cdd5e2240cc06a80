package repository

import (
	"context"

	"agroconnect/internal/domain/entity"
)

type ProduceRepository interface {
	Create(ctx context.Context, produce *entity.Produce) error
	GetByID(ctx context.Context, id string) (*entity.Produce, error)
	List(ctx context.Context, filter entity.ProduceFilter) ([]*entity.Produce, error)
	ListByFarmer(ctx context.Context, farmerID string) ([]*entity.Produce, error)
	// Update applies update atomically and returns the status the listing had
	// just before it.
	Update(ctx context.Context, id string, update entity.ProduceUpdate) (previousStatus string, err error)
	Delete(ctx context.Context, id string) error
}
