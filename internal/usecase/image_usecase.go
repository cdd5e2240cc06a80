package usecase

import (
	"context"
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/logger"
)

const (
	MaxImageSize = 5 << 20

	StorageMongo    = "mongodb"
	StorageFirebase = "firebase"
)

type UploadImageInput struct {
	ProduceID    string
	FarmerID     string
	OriginalName string
	Data         []byte
}

type UploadImageResult struct {
	ImageURL string `json:"imageUrl"`
	ImageID  string `json:"imageId,omitempty"`
	Storage  string `json:"storage"`
}

// ImageUseCase stores produce photos in MongoDB when it is configured and
// falls back to the object store otherwise.
type ImageUseCase struct {
	imageRepo repository.ImageRepository
	objects   ObjectStore
}

func NewImageUseCase(imageRepo repository.ImageRepository, objects ObjectStore) *ImageUseCase {
	return &ImageUseCase{imageRepo: imageRepo, objects: objects}
}

func (uc *ImageUseCase) Upload(ctx context.Context, input UploadImageInput) (*UploadImageResult, error) {
	if len(input.Data) == 0 {
		return nil, errors.BadRequest("No image file provided", nil)
	}
	if len(input.Data) > MaxImageSize {
		return nil, errors.BadRequest("Image must be 5MB or smaller", nil)
	}

	mtype := mimetype.Detect(input.Data)
	if !strings.HasPrefix(mtype.String(), "image/") {
		return nil, errors.BadRequest("Only image files are allowed", nil)
	}

	produceID := input.ProduceID
	if produceID == "" {
		produceID = "temp"
	}
	ext := filepath.Ext(input.OriginalName)
	if ext == "" {
		ext = mtype.Extension()
	}
	filename := uuid.NewString() + ext

	if uc.imageRepo != nil {
		image := &entity.Image{
			ProduceID:    produceID,
			FarmerID:     input.FarmerID,
			Filename:     filename,
			OriginalName: input.OriginalName,
			MimeType:     mtype.String(),
			Size:         int64(len(input.Data)),
			Data:         input.Data,
		}
		if err := uc.imageRepo.Save(ctx, image); err != nil {
			return nil, err
		}
		return &UploadImageResult{ImageURL: image.ServeURL(), ImageID: image.ID, Storage: StorageMongo}, nil
	}

	if uc.objects != nil {
		url, err := uc.objects.Upload(ctx, produceImagePrefix(produceID)+filename, input.Data, mtype.String())
		if err != nil {
			return nil, errors.Internal("Failed to upload image", err)
		}
		return &UploadImageResult{ImageURL: url, Storage: StorageFirebase}, nil
	}

	return nil, errors.Internal("Image storage is not configured", nil)
}

func (uc *ImageUseCase) Get(ctx context.Context, id string) (*entity.Image, error) {
	if uc.imageRepo == nil {
		return nil, errors.NotFound("Image", nil)
	}
	return uc.imageRepo.GetByID(ctx, id)
}

// CleanupProduce removes every stored image of a produce listing.
func (uc *ImageUseCase) CleanupProduce(ctx context.Context, produceID string) error {
	if uc.imageRepo != nil {
		n, err := uc.imageRepo.DeleteByProduce(ctx, produceID)
		if err != nil {
			return err
		}
		logger.Debug("Removed %d stored images of produce %s", n, produceID)
	}
	if uc.objects != nil {
		if _, err := uc.objects.DeletePrefix(ctx, produceImagePrefix(produceID)); err != nil {
			return errors.Internal("Failed to delete produce images", err)
		}
	}
	return nil
}

func produceImagePrefix(produceID string) string {
	return "produce_images/" + produceID + "/"
}
