package repository

import (
	"context"

	"agroconnect/internal/domain/entity"
)

type ImageRepository interface {
	// Save assigns image.ID.
	Save(ctx context.Context, image *entity.Image) error
	GetByID(ctx context.Context, id string) (*entity.Image, error)
	DeleteByProduce(ctx context.Context, produceID string) (int64, error)
}
