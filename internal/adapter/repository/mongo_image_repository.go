package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
)

const imagesCollection = "images"

type imageDocument struct {
	ID           primitive.ObjectID `bson:"_id,omitempty"`
	ProduceID    string             `bson:"produceId"`
	FarmerID     string             `bson:"farmerId"`
	Filename     string             `bson:"filename"`
	OriginalName string             `bson:"originalName"`
	MimeType     string             `bson:"mimetype"`
	Size         int64              `bson:"size"`
	Data         []byte             `bson:"data"`
	CreatedAt    time.Time          `bson:"createdAt"`
	UpdatedAt    time.Time          `bson:"updatedAt"`
}

func (d *imageDocument) toEntity() *entity.Image {
	return &entity.Image{
		ID:           d.ID.Hex(),
		ProduceID:    d.ProduceID,
		FarmerID:     d.FarmerID,
		Filename:     d.Filename,
		OriginalName: d.OriginalName,
		MimeType:     d.MimeType,
		Size:         d.Size,
		Data:         d.Data,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

type mongoImageRepository struct {
	collection *mongo.Collection
}

func NewMongoImageRepository(db *mongo.Database) repository.ImageRepository {
	return &mongoImageRepository{collection: db.Collection(imagesCollection)}
}

// EnsureImageIndexes creates the lookup indexes used by cleanup and listing.
func EnsureImageIndexes(ctx context.Context, db *mongo.Database) error {
	_, err := db.Collection(imagesCollection).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "produceId", Value: 1}}},
		{Keys: bson.D{{Key: "farmerId", Value: 1}}},
	})
	return err
}

func (r *mongoImageRepository) Save(ctx context.Context, image *entity.Image) error {
	now := time.Now().UTC()
	doc := imageDocument{
		ID:           primitive.NewObjectID(),
		ProduceID:    image.ProduceID,
		FarmerID:     image.FarmerID,
		Filename:     image.Filename,
		OriginalName: image.OriginalName,
		MimeType:     image.MimeType,
		Size:         image.Size,
		Data:         image.Data,
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if _, err := r.collection.InsertOne(ctx, doc); err != nil {
		return errors.Internal("Failed to upload image", err)
	}

	image.ID = doc.ID.Hex()
	image.CreatedAt = now
	image.UpdatedAt = now
	return nil
}

func (r *mongoImageRepository) GetByID(ctx context.Context, id string) (*entity.Image, error) {
	oid, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, errors.NotFound("Image", err)
	}

	var doc imageDocument
	err = r.collection.FindOne(ctx, bson.M{"_id": oid}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errors.NotFound("Image", err)
	}
	if err != nil {
		return nil, errors.Internal("Failed to retrieve image", err)
	}
	return doc.toEntity(), nil
}

func (r *mongoImageRepository) DeleteByProduce(ctx context.Context, produceID string) (int64, error) {
	res, err := r.collection.DeleteMany(ctx, bson.M{"produceId": produceID})
	if err != nil {
		return 0, errors.Internal("Failed to delete produce images", err)
	}
	return res.DeletedCount, nil
}
