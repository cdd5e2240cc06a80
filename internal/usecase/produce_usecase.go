package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	"agroconnect/internal/domain/entity"
	"agroconnect/internal/domain/repository"
	"agroconnect/pkg/errors"
)

const (
	DefaultProduceLimit = 20
	MaxProduceLimit     = 100
)

type ProduceUseCase struct {
	produceRepo repository.ProduceRepository
	userRepo    repository.UserRepository
	fanOut      *FanOut
	images      *ImageUseCase
	dispatcher  TaskDispatcher
}

func NewProduceUseCase(
	produceRepo repository.ProduceRepository,
	userRepo repository.UserRepository,
	fanOut *FanOut,
	images *ImageUseCase,
	dispatcher TaskDispatcher,
) *ProduceUseCase {
	return &ProduceUseCase{
		produceRepo: produceRepo,
		userRepo:    userRepo,
		fanOut:      fanOut,
		images:      images,
		dispatcher:  dispatcher,
	}
}

type CreateProduceInput struct {
	Name              string
	Description       string
	Category          string
	Price             float64
	Unit              string
	Quantity          float64
	Status            string
	Location          string
	ExpectedReadyDate *time.Time
	ImageURLs         []string
}

// Create lists new produce for a farmer and tells buyers about it.
func (uc *ProduceUseCase) Create(ctx context.Context, farmerID string, input CreateProduceInput) (*entity.Produce, error) {
	farmer, err := uc.userRepo.GetByID(ctx, farmerID)
	if err != nil {
		if errors.Is(err, errors.CodeNotFound) {
			return nil, errors.NotFound("Farmer profile", err)
		}
		return nil, err
	}
	if farmer.Role != entity.RoleFarmer {
		return nil, errors.Forbidden("Only farmers can add produce", nil)
	}

	produce := &entity.Produce{
		FarmerID:          farmerID,
		FarmerName:        farmer.Name,
		Name:              input.Name,
		Description:       input.Description,
		Category:          input.Category,
		Price:             input.Price,
		Unit:              input.Unit,
		Quantity:          input.Quantity,
		Status:            input.Status,
		ImageURLs:         input.ImageURLs,
		Location:          input.Location,
		ExpectedReadyDate: input.ExpectedReadyDate,
	}
	if produce.Status == "" {
		produce.Status = entity.ProduceReady
	}
	if produce.Location == "" {
		produce.Location = farmer.Location
	}
	if produce.ImageURLs == nil {
		produce.ImageURLs = []string{}
	}

	if err := uc.produceRepo.Create(ctx, produce); err != nil {
		return nil, err
	}

	eventID := "produce/" + produce.ID + "/listed"
	p := *produce
	uc.submit("fanout.new_listing", func(ctx context.Context) error {
		_, err := uc.fanOut.NewListing(ctx, eventID, p.ID, p.Name, p.Category, p.FarmerName)
		return err
	})

	return produce, nil
}

func (uc *ProduceUseCase) List(ctx context.Context, filter entity.ProduceFilter) ([]*entity.Produce, error) {
	filter.Limit = clampLimit(filter.Limit, DefaultProduceLimit, MaxProduceLimit)
	return uc.produceRepo.List(ctx, filter)
}

func (uc *ProduceUseCase) Get(ctx context.Context, id string) (*entity.Produce, error) {
	return uc.produceRepo.GetByID(ctx, id)
}

func (uc *ProduceUseCase) ListMine(ctx context.Context, farmerID string) ([]*entity.Produce, error) {
	return uc.produceRepo.ListByFarmer(ctx, farmerID)
}

// Update edits an owned listing. Moving it from unready to ready notifies
// everyone who has chatted about it.
func (uc *ProduceUseCase) Update(ctx context.Context, userID, id string, update entity.ProduceUpdate) (*entity.Produce, error) {
	existing, err := uc.produceRepo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if existing.FarmerID != userID {
		return nil, errors.Forbidden("You can only edit your own produce", nil)
	}

	previous, err := uc.produceRepo.Update(ctx, id, update)
	if err != nil {
		return nil, err
	}

	if update.BecomesReady(previous) {
		// Every transition is its own event.
		eventID := "produce/" + id + "/ready/" + uuid.NewString()
		name, farmerName := existing.Name, existing.FarmerName
		uc.submit("fanout.listing_ready", func(ctx context.Context) error {
			_, err := uc.fanOut.ListingReady(ctx, eventID, id, name, farmerName)
			return err
		})
	}

	return uc.produceRepo.GetByID(ctx, id)
}

func (uc *ProduceUseCase) Delete(ctx context.Context, userID, id string) error {
	existing, err := uc.produceRepo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if existing.FarmerID != userID {
		return errors.Forbidden("You can only delete your own produce", nil)
	}

	if uc.images != nil {
		uc.submit("images.cleanup", func(ctx context.Context) error {
			return uc.images.CleanupProduce(ctx, id)
		})
	}

	return uc.produceRepo.Delete(ctx, id)
}

func (uc *ProduceUseCase) submit(name string, run func(ctx context.Context) error) {
	if uc.dispatcher == nil {
		return
	}
	uc.dispatcher.Submit(name, run)
}
