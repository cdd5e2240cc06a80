package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"agroconnect/internal/usecase"
	"agroconnect/pkg/response"
)

const imageCacheControl = "public, max-age=86400"

type ImageHandler struct {
	imageUseCase *usecase.ImageUseCase
}

func NewImageHandler(imageUseCase *usecase.ImageUseCase) *ImageHandler {
	return &ImageHandler{
		imageUseCase: imageUseCase,
	}
}

// Serve streams an image stored in MongoDB. It is public so <img> tags work
// without a token.
func (h *ImageHandler) Serve(c echo.Context) error {
	img, err := h.imageUseCase.Get(c.Request().Context(), c.Param("imageId"))
	if err != nil {
		return response.Error(c, err)
	}

	c.Response().Header().Set("Cache-Control", imageCacheControl)
	return c.Blob(http.StatusOK, img.MimeType, img.Data)
}
