package errors

import (
	"errors"
	"fmt"
	"net/http"
)

const (
	CodeNotFound           = "NOT_FOUND"
	CodeBadRequest         = "BAD_REQUEST"
	CodeEmptySelection     = "EMPTY_SELECTION"
	CodeMalformedUpload    = "MALFORMED_UPLOAD"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeDuplicateID        = "DUPLICATE_ID"
	CodeInternal           = "INTERNAL_ERROR"
)

type AppError struct {
	Code    string
	Message string
	Status  int
	Err     error
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func NotFound(resource string, err error) *AppError {
	return &AppError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s not found", resource),
		Status:  http.StatusNotFound,
		Err:     err,
	}
}

func BadRequest(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBadRequest,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// EmptySelection is returned by batch operations called without ids.
func EmptySelection(message string) *AppError {
	return &AppError{
		Code:    CodeEmptySelection,
		Message: message,
		Status:  http.StatusBadRequest,
	}
}

func MalformedUpload(message string, err error) *AppError {
	return &AppError{
		Code:    CodeMalformedUpload,
		Message: message,
		Status:  http.StatusBadRequest,
		Err:     err,
	}
}

// BackendUnavailable wraps I/O failures of the storage medium, timeouts included.
func BackendUnavailable(message string, err error) *AppError {
	return &AppError{
		Code:    CodeBackendUnavailable,
		Message: message,
		Status:  http.StatusServiceUnavailable,
		Err:     err,
	}
}

// DuplicateID signals a broken id assignment. It is a programming error, not user input.
func DuplicateID(id int64) *AppError {
	return &AppError{
		Code:    CodeDuplicateID,
		Message: fmt.Sprintf("file record %d already exists", id),
		Status:  http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:    CodeInternal,
		Message: message,
		Status:  http.StatusInternalServerError,
		Err:     err,
	}
}

func TooManyRequests(message string) *AppError {
	return &AppError{
		Code:    "TOO_MANY_REQUESTS",
		Message: message,
		Status:  http.StatusTooManyRequests,
		Err:     nil,
	}
}

func Is(err error, code string) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}
