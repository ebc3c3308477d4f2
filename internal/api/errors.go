package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ra-risk-server/internal/domain"
	"github.com/ra-risk-server/internal/middleware"
)

// ErrorResponse wraps an APIError under "error".
type ErrorResponse struct {
	Error *domain.APIError `json:"error"`
}

func abortWithError(c *gin.Context, status int, code, message, details string) {
	apiErr := domain.NewAPIError(code, message, details, c.GetString(middleware.CorrelationKey))
	_ = c.Error(apiErr)
	c.AbortWithStatusJSON(status, ErrorResponse{Error: apiErr})
}

// bindJSON decodes the body into req and writes the 4xx itself on failure.
func bindJSON(c *gin.Context, req any) bool {
	err := c.ShouldBindJSON(req)
	if err == nil {
		return true
	}

	var maxBytes *http.MaxBytesError
	switch {
	case errors.Is(err, io.EOF):
		abortWithError(c, http.StatusBadRequest, domain.ErrMissingInput, "No data received", "")
	case errors.As(err, &maxBytes):
		abortWithError(c, http.StatusRequestEntityTooLarge, domain.ErrInvalidInput, "Request body too large", "")
	default:
		abortWithError(c, http.StatusBadRequest, domain.ErrInvalidInput, "Invalid request body", err.Error())
	}
	return false
}

// abortWithDomainError maps validation and store errors onto statuses.
func abortWithDomainError(c *gin.Context, err error) {
	var missing *domain.MissingFieldsError
	var invalid *domain.ValidationError

	switch {
	case errors.As(err, &missing):
		abortWithError(c, http.StatusBadRequest, domain.ErrMissingInput, missing.Error(), "")
	case errors.As(err, &invalid):
		abortWithError(c, http.StatusBadRequest, domain.ErrValidation, invalid.Message, invalid.Field)
	case errors.Is(err, domain.ErrNotFound):
		abortWithError(c, http.StatusNotFound, domain.ErrNotFoundCode, "Feedback not found", "")
	case errors.Is(err, domain.ErrFeedbackDisabled):
		abortWithError(c, http.StatusServiceUnavailable, domain.ErrServiceDisabled, "Feedback storage is not configured", "")
	default:
		abortWithError(c, http.StatusInternalServerError, domain.ErrStorage, "Storage operation failed", "")
	}
}
