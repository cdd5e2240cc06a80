package repository

import (
	"context"

	"agroconnect/internal/domain/entity"
)

type UserRepository interface {
	GetByID(ctx context.Context, id string) (*entity.User, error)
	ListByRole(ctx context.Context, role string) ([]*entity.User, error)
	Update(ctx context.Context, id string, update entity.ProfileUpdate) error
}
