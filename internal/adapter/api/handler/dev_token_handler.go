package handler

import (
	"github.com/labstack/echo/v4"

	"agroconnect/internal/infrastructure/firebase"
	"agroconnect/pkg/errors"
	"agroconnect/pkg/logger"
	"agroconnect/pkg/response"
)

type DevTokenHandler struct {
	issuer *firebase.DevTokenIssuer
}

var devTokenHandler *DevTokenHandler

func NewDevTokenHandler(issuer *firebase.DevTokenIssuer) *DevTokenHandler {
	return &DevTokenHandler{
		issuer: issuer,
	}
}

func SetupDevTokenHandler(issuer *firebase.DevTokenIssuer) {
	devTokenHandler = NewDevTokenHandler(issuer)
}

func GetDevTokenHandler() *DevTokenHandler {
	return devTokenHandler
}

// IssueToken mints a bearer token for any uid. Only mounted in development.
func (h *DevTokenHandler) IssueToken(c echo.Context) error {
	uid := c.Param("uid")
	if uid == "" {
		return response.Error(c, errors.BadRequest("uid is required", nil))
	}

	token, err := h.issuer.Issue(uid)
	if err != nil {
		return response.Error(c, errors.Internal("Failed to issue token", err))
	}

	logger.Debug("Issued development token for %s", uid)
	return response.Success(c, map[string]string{
		"token": token,
	})
}
