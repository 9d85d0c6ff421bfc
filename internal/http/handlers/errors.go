package handlers

import (
	"errors"
	"net/http"

	"motorent/internal/domain"
	"motorent/internal/http/middleware"
	"motorent/internal/services"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error     string `json:"error"`
	Code      string `json:"code,omitempty"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
	Message   string `json:"message"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	c.JSON(status, ErrorResponse{
		Error:     message,
		Code:      code,
		Details:   details,
		RequestID: middleware.GetRequestID(c),
		Message:   message,
	})
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	var transition domain.InvalidTransitionError
	switch {
	case errors.Is(err, services.ErrInvalidCredentials):
		respondError(c, http.StatusUnauthorized, "invalid_credentials", err.Error(), nil)
	case domain.IsValidation(err):
		var details any
		if fields := domain.ValidationFields(err); len(fields) > 0 {
			details = fields
		}
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), details)
	case domain.IsForbidden(err):
		respondError(c, http.StatusForbidden, "forbidden", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.As(err, &transition):
		respondError(c, http.StatusConflict, "invalid_transition", err.Error(), gin.H{"from": transition.From, "to": transition.To})
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		middleware.LogError(c, err)
		respondError(c, http.StatusInternalServerError, "internal_error", "サーバーエラーが発生しました", nil)
	}
}
