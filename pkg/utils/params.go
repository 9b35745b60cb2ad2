package utils

import (
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
)

// PaginationParams are the raw page and limit query values. Zero means unset.
type PaginationParams struct {
	Page  int
	Limit int
}

// GetPaginationParams reads page and limit. Non-numeric values count as unset.
func GetPaginationParams(c echo.Context) PaginationParams {
	page, _ := strconv.Atoi(c.QueryParam("page"))
	limit, _ := strconv.Atoi(c.QueryParam("limit"))

	return PaginationParams{
		Page:  page,
		Limit: limit,
	}
}

// ParseIDParam parses a positive integer path parameter.
func ParseIDParam(c echo.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func QueryBool(c echo.Context, name string) bool {
	value, err := strconv.ParseBool(strings.TrimSpace(c.QueryParam(name)))
	return err == nil && value
}
