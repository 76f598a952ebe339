package handler

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/kemalefekolayli/madlen-case-study/internal/domain"
)

type errorResponse struct {
	Timestamp time.Time         `json:"timestamp"`
	Status    int               `json:"status"`
	Error     string            `json:"error"`
	Message   string            `json:"message"`
	Details   map[string]string `json:"details,omitempty"`
}

// respondError maps domain errors to HTTP statuses. Unrecognized errors come
// back as a generic 500 with full detail logged server-side only.
func respondError(c *gin.Context, err error) {
	status := statusForError(err)
	message := err.Error()

	if status == http.StatusInternalServerError && !errors.Is(err, domain.ErrAPIKeyNotConfigured) {
		slog.Error("unexpected error", "path", c.FullPath(), "error", err)
		message = "An unexpected error occurred. Please try again later."
	} else {
		slog.Warn("request failed", "path", c.FullPath(), "status", status, "error", err)
	}

	c.AbortWithStatusJSON(status, errorResponse{
		Timestamp: time.Now(),
		Status:    status,
		Error:     http.StatusText(status),
		Message:   message,
	})
}

func statusForError(err error) int {
	switch {
	case errors.Is(err, domain.ErrSessionNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrSessionLimitReached),
		errors.Is(err, domain.ErrMessageLimitReached),
		errors.Is(err, domain.ErrInvalidModel),
		errors.Is(err, domain.ErrVisionNotSupported),
		errors.Is(err, domain.ErrInvalidImage):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrImageTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, domain.ErrUpstreamService):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// publicMessage is the sanitized error text sent on streaming responses.
func publicMessage(err error) string {
	if statusForError(err) == http.StatusInternalServerError && !errors.Is(err, domain.ErrAPIKeyNotConfigured) {
		slog.Error("unexpected streaming error", "error", err)
		return "An unexpected error occurred. Please try again later."
	}
	return err.Error()
}

// respondValidationError reports request binding failures with per-field
// details.
func respondValidationError(c *gin.Context, err error) {
	details := map[string]string{}
	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		for _, fe := range verrs {
			details[fieldName(fe)] = validationMessage(fe)
		}
	}

	slog.Warn("validation failed", "path", c.FullPath(), "details", details)

	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Timestamp: time.Now(),
		Status:    http.StatusBadRequest,
		Error:     http.StatusText(http.StatusBadRequest),
		Message:   "Validation failed",
		Details:   details,
	})
}

func respondFieldError(c *gin.Context, field, message string) {
	c.AbortWithStatusJSON(http.StatusBadRequest, errorResponse{
		Timestamp: time.Now(),
		Status:    http.StatusBadRequest,
		Error:     http.StatusText(http.StatusBadRequest),
		Message:   "Validation failed",
		Details:   map[string]string{field: message},
	})
}

func fieldName(fe validator.FieldError) string {
	name := fe.Field()
	if name == "" {
		return fe.StructField()
	}
	return name
}

func validationMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}
