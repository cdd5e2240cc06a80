package utils

import (
	"strconv"

	"github.com/labstack/echo/v4"
)

const MaxPageSize = 100

// GetLimit reads the "limit" query parameter, falling back to def when it is
// missing or not a positive integer and clamping it to MaxPageSize.
func GetLimit(c echo.Context, def int) int {
	limit, err := strconv.Atoi(c.QueryParam("limit"))
	if err != nil || limit <= 0 {
		return def
	}
	if limit > MaxPageSize {
		return MaxPageSize
	}
	return limit
}
