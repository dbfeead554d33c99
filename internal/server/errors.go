// internal/server/errors.go
package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/labstack/echo/v4"

	apperrors "review-pipeline/internal/common/errors"
)

// APIError is the JSON error envelope every endpoint returns on failure.
type APIError struct {
	Status  int      `json:"-"`
	Code    string   `json:"code"`
	Message string   `json:"message"`
	Details []string `json:"details,omitempty"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(details []string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "VALIDATION_ERROR",
		Message: "request payload failed validation",
		Details: details,
	}
}

func NewBadRequestError(message string) *APIError {
	return &APIError{
		Status:  http.StatusBadRequest,
		Code:    "BAD_REQUEST",
		Message: message,
	}
}

// ErrorHandler translates pipeline error codes into HTTP statuses.
// Usage: e.HTTPErrorHandler = server.ErrorHandler
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	var apiErr *APIError
	var stdErr *apperrors.StandardError
	var httpErr *echo.HTTPError

	switch {
	case errors.As(err, &apiErr):
		// already shaped
	case errors.As(err, &stdErr):
		apiErr = &APIError{
			Status:  statusForCode(stdErr.Code),
			Code:    string(stdErr.Code),
			Message: stdErr.Message,
		}
	case errors.As(err, &httpErr):
		apiErr = &APIError{
			Status:  httpErr.Code,
			Code:    "HTTP_ERROR",
			Message: fmt.Sprintf("%v", httpErr.Message),
		}
	default:
		apiErr = &APIError{
			Status:  http.StatusInternalServerError,
			Code:    "INTERNAL_ERROR",
			Message: "an unexpected error occurred",
		}
	}

	_ = c.JSON(apiErr.Status, apiErr)
}

func statusForCode(code apperrors.ErrorCode) int {
	switch code {
	case apperrors.ErrCodeApplicationNotFound, apperrors.ErrCodeReviewNotFound:
		return http.StatusNotFound
	case apperrors.ErrCodeInvalidStage, apperrors.ErrCodeInvalidPrecondition:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
