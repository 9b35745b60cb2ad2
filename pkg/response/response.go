package response

import (
	"errors"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	apperrors "filehub/pkg/errors"
	"filehub/pkg/logger"
)

type ErrorInfo struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type MessageResponse struct {
	Message string `json:"message"`
}

type CountResponse struct {
	Message      string `json:"message"`
	DeletedCount int    `json:"deletedCount"`
}

type FavoriteResponse struct {
	Message  string `json:"message"`
	Favorite bool   `json:"favorite"`
}

func Success(c echo.Context, data interface{}) error {
	return c.JSON(http.StatusOK, data)
}

func Message(c echo.Context, message string) error {
	return c.JSON(http.StatusOK, MessageResponse{Message: message})
}

func Count(c echo.Context, message string, count int) error {
	return c.JSON(http.StatusOK, CountResponse{Message: message, DeletedCount: count})
}

func Error(c echo.Context, err error) error {
	var validationErr validator.ValidationErrors
	if errors.As(err, &validationErr) {
		return handleValidationError(c, validationErr)
	}

	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		if appErr.Status >= http.StatusInternalServerError {
			logger.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, appErr)
		}
		return c.JSON(appErr.Status, ErrorInfo{
			Code:    appErr.Code,
			Message: appErr.Message,
		})
	}

	var httpErr *echo.HTTPError
	if errors.As(err, &httpErr) {
		return c.JSON(httpErr.Code, ErrorInfo{
			Code:    strings.ToUpper(strings.ReplaceAll(http.StatusText(httpErr.Code), " ", "_")),
			Message: http.StatusText(httpErr.Code),
		})
	}

	logger.Error("%s %s: %v", c.Request().Method, c.Request().URL.Path, err)
	return c.JSON(http.StatusInternalServerError, ErrorInfo{
		Code:    apperrors.CodeInternal,
		Message: "An unexpected error occurred",
	})
}

func handleValidationError(c echo.Context, validationErr validator.ValidationErrors) error {
	message := "Invalid input data"
	if len(validationErr) > 0 {
		err := validationErr[0]
		field := strings.ToLower(err.Field())

		switch err.Tag() {
		case "required":
			message = field + " is required"
		case "min":
			message = field + " must contain at least " + err.Param() + " item(s)"
		case "gt":
			message = field + " must be greater than " + err.Param()
		default:
			message = field + " is invalid"
		}
	}

	return c.JSON(http.StatusBadRequest, ErrorInfo{
		Code:    "VALIDATION_ERROR",
		Message: message,
	})
}
