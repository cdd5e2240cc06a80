package repository

import (
	"context"

	"cloud.google.com/go/firestore"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/retry"
)

type firestoreUserRepository struct {
	store
}

func NewFirestoreUserRepository(client *firestore.Client, policy retry.Policy) repository.UserRepository {
	return &firestoreUserRepository{store{client: client, policy: policy}}
}

func (r *firestoreUserRepository) GetByID(ctx context.Context, id string) (*entity.User, error) {
	doc, err := r.get(ctx, r.client.Collection(usersCollection).Doc(id))
	if err != nil {
		if isNotFound(err) {
			return nil, errors.NotFound("User", err)
		}
		return nil, errors.Internal("Failed to get user", err)
	}
	return userFromDoc(doc)
}

func (r *firestoreUserRepository) ListByRole(ctx context.Context, role string) ([]*entity.User, error) {
	docs, err := r.getAll(ctx, r.client.Collection(usersCollection).Where("role", "==", role))
	if err != nil {
		return nil, errors.Internal("Failed to list users", err)
	}

	users := make([]*entity.User, 0, len(docs))
	for _, doc := range docs {
		user, err := userFromDoc(doc)
		if err != nil {
			return nil, err
		}
		users = append(users, user)
	}
	return users, nil
}

func (r *firestoreUserRepository) Update(ctx context.Context, id string, update entity.ProfileUpdate) error {
	var updates []firestore.Update
	if update.Name != nil {
		updates = append(updates, firestore.Update{Path: "name", Value: *update.Name})
	}
	if update.Phone != nil {
		updates = append(updates, firestore.Update{Path: "phone", Value: *update.Phone})
	}
	if update.Location != nil {
		updates = append(updates, firestore.Update{Path: "location", Value: *update.Location})
	}
	if update.ProfileImageURL != nil {
		updates = append(updates, firestore.Update{Path: "profileImageUrl", Value: *update.ProfileImageURL})
	}
	if len(updates) == 0 {
		return nil
	}

	err := r.retry(ctx, func() error {
		_, err := r.client.Collection(usersCollection).Doc(id).Update(ctx, updates)
		return err
	})
	if err != nil {
		if isNotFound(err) {
			return errors.NotFound("User", err)
		}
		return errors.Internal("Failed to update profile", err)
	}
	return nil
}

func userFromDoc(doc *firestore.DocumentSnapshot) (*entity.User, error) {
	var user entity.User
	if err := doc.DataTo(&user); err != nil {
		return nil, errors.Internal("Failed to parse user data", err)
	}
	user.ID = doc.Ref.ID
	return &user, nil
}
