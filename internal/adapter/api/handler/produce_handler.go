package handler

import (
	"encoding/json"
	"io"
	"time"

	"github.com/labstack/echo/v4"

	"agroconnect/internal/adapter/api/middleware"
	"agroconnect/internal/domain/entity"
	"agroconnect/internal/usecase"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/response"
	"agroconnect/pkg/utils"
)

type ProduceHandler struct {
	produceUseCase *usecase.ProduceUseCase
	imageUseCase   *usecase.ImageUseCase
}

func NewProduceHandler(produceUseCase *usecase.ProduceUseCase, imageUseCase *usecase.ImageUseCase) *ProduceHandler {
	return &ProduceHandler{
		produceUseCase: produceUseCase,
		imageUseCase:   imageUseCase,
	}
}

type createProduceRequest struct {
	Name              string     `json:"name" validate:"required"`
	Description       string     `json:"description"`
	Category          string     `json:"category" validate:"required"`
	Price             float64    `json:"price" validate:"gte=0"`
	Unit              string     `json:"unit" validate:"required"`
	Quantity          float64    `json:"quantity" validate:"gte=0"`
	Status            string     `json:"status" validate:"omitempty,oneof=ready unready"`
	Location          string     `json:"location"`
	ExpectedReadyDate *time.Time `json:"expectedReadyDate"`
	ImageURLs         []string   `json:"imageUrls"`
}

type updateProduceRequest struct {
	Name              *string      `json:"name" validate:"omitempty,min=1"`
	Description       *string      `json:"description"`
	Category          *string      `json:"category" validate:"omitempty,min=1"`
	Price             *float64     `json:"price" validate:"omitempty,gte=0"`
	Unit              *string      `json:"unit" validate:"omitempty,min=1"`
	Quantity          *float64     `json:"quantity" validate:"omitempty,gte=0"`
	Status            *string      `json:"status" validate:"omitempty,oneof=ready unready"`
	Location          *string      `json:"location"`
	ImageURLs         *[]string    `json:"imageUrls"`
	ExpectedReadyDate nullableTime `json:"expectedReadyDate"`
}

// nullableTime tells an explicit null apart from an absent field.
type nullableTime struct {
	Set   bool
	Value *time.Time
}

func (t *nullableTime) UnmarshalJSON(b []byte) error {
	t.Set = true
	if string(b) == "null" {
		return nil
	}
	var v time.Time
	if err := json.Unmarshal(b, &v); err != nil {
		return err
	}
	t.Value = &v
	return nil
}

func (r updateProduceRequest) toUpdate() entity.ProduceUpdate {
	update := entity.ProduceUpdate{
		Name:        r.Name,
		Description: r.Description,
		Category:    r.Category,
		Price:       r.Price,
		Unit:        r.Unit,
		Quantity:    r.Quantity,
		Status:      r.Status,
		Location:    r.Location,
		ImageURLs:   r.ImageURLs,
	}
	if r.ExpectedReadyDate.Set {
		if r.ExpectedReadyDate.Value == nil {
			update.ClearExpectedReadyDate = true
		} else {
			update.ExpectedReadyDate = r.ExpectedReadyDate.Value
		}
	}
	return update
}

func (h *ProduceHandler) Create(c echo.Context) error {
	var req createProduceRequest
	if err := bindStrict(c, &req); err != nil {
		return response.Error(c, err)
	}

	produce, err := h.produceUseCase.Create(c.Request().Context(), middleware.UserID(c), usecase.CreateProduceInput{
		Name:              req.Name,
		Description:       req.Description,
		Category:          req.Category,
		Price:             req.Price,
		Unit:              req.Unit,
		Quantity:          req.Quantity,
		Status:            req.Status,
		Location:          req.Location,
		ExpectedReadyDate: req.ExpectedReadyDate,
		ImageURLs:         req.ImageURLs,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Created(c, produce)
}

func (h *ProduceHandler) List(c echo.Context) error {
	items, err := h.produceUseCase.List(c.Request().Context(), entity.ProduceFilter{
		Status:     c.QueryParam("status"),
		Category:   c.QueryParam("category"),
		Limit:      utils.GetLimit(c, usecase.DefaultProduceLimit),
		StartAfter: c.QueryParam("startAfter"),
	})
	if err != nil {
		return response.Error(c, err)
	}

	return produceList(c, items)
}

func (h *ProduceHandler) ListMine(c echo.Context) error {
	items, err := h.produceUseCase.ListMine(c.Request().Context(), middleware.UserID(c))
	if err != nil {
		return response.Error(c, err)
	}

	return produceList(c, items)
}

func (h *ProduceHandler) Get(c echo.Context) error {
	produce, err := h.produceUseCase.Get(c.Request().Context(), c.Param("id"))
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"produce": produce,
	})
}

func (h *ProduceHandler) Update(c echo.Context) error {
	var req updateProduceRequest
	if err := bindStrict(c, &req); err != nil {
		return response.Error(c, err)
	}

	produce, err := h.produceUseCase.Update(c.Request().Context(), middleware.UserID(c), c.Param("id"), req.toUpdate())
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, map[string]interface{}{
		"produce": produce,
	})
}

func (h *ProduceHandler) Delete(c echo.Context) error {
	if err := h.produceUseCase.Delete(c.Request().Context(), middleware.UserID(c), c.Param("id")); err != nil {
		return response.Error(c, err)
	}

	return response.Message(c, "Produce deleted successfully")
}

// UploadImage stores the multipart "image" part for a listing.
func (h *ProduceHandler) UploadImage(c echo.Context) error {
	file, err := c.FormFile("image")
	if err != nil {
		return response.Error(c, errors.BadRequest("No image file provided", err))
	}
	if file.Size > usecase.MaxImageSize {
		return response.Error(c, errors.BadRequest("Image must be 5MB or smaller", nil))
	}

	src, err := file.Open()
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read image", err))
	}
	defer src.Close()

	data, err := io.ReadAll(io.LimitReader(src, usecase.MaxImageSize+1))
	if err != nil {
		return response.Error(c, errors.BadRequest("Failed to read image", err))
	}

	result, err := h.imageUseCase.Upload(c.Request().Context(), usecase.UploadImageInput{
		ProduceID:    c.Param("id"),
		FarmerID:     middleware.UserID(c),
		OriginalName: file.Filename,
		Data:         data,
	})
	if err != nil {
		return response.Error(c, err)
	}

	return response.Success(c, result)
}

func produceList(c echo.Context, items []*entity.Produce) error {
	if items == nil {
		items = []*entity.Produce{}
	}
	return response.Success(c, map[string]interface{}{
		"produce": items,
		"count":   len(items),
	})
}
