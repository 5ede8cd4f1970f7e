package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"sales-forecast-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// errorStatus maps pipeline errors to an HTTP status and a stable error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, services.ErrInvalidStartDate):
		return http.StatusBadRequest, "INVALID_START_DATE"
	case errors.Is(err, services.ErrUnsupportedFile):
		return http.StatusBadRequest, "UNSUPPORTED_FILE"
	case errors.Is(err, services.ErrUnknownProduct):
		return http.StatusNotFound, "UNKNOWN_PRODUCT"
	case errors.Is(err, services.ErrDatasetNotFound):
		return http.StatusNotFound, "DATASET_NOT_FOUND"
	case errors.Is(err, services.ErrEmptyTrainingSet):
		return http.StatusUnprocessableEntity, "EMPTY_TRAINING_SET"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return http.StatusRequestTimeout, "CANCELLED"
	default:
		return http.StatusInternalServerError, "INTERNAL_ERROR"
	}
}

// respondError writes a failure response for err.
func respondError(c *gin.Context, err error) {
	status, code := errorStatus(err)
	c.JSON(status, gin.H{
		"success":    false,
		"error_code": code,
		"error":      err.Error(),
	})
}

// respondBadRequest writes a 400 response for invalid input.
func respondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{
		"success":    false,
		"error_code": "INVALID_REQUEST",
		"error":      message,
	})
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}

// respondTooLarge writes a 413 response for a body over limit bytes.
func respondTooLarge(c *gin.Context, limit int64) {
	c.JSON(http.StatusRequestEntityTooLarge, gin.H{
		"success":    false,
		"error_code": "PAYLOAD_TOO_LARGE",
		"error":      fmt.Sprintf("request body exceeds %d bytes", limit),
	})
}
