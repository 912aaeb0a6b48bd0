// Package httputil writes API error responses.
package httputil

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/questionit/api/internal/errors"
)

// ErrorResponse is the body of every error response. Error is the generic kind derived
// from the status; Code is the stable domain code of coded errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
	Code    string `json:"code,omitempty"`
}

type errorKind struct {
	sentinel error
	status   int
	kind     string
	message  string
}

// errorKinds is checked in order; the first sentinel err wraps wins.
var errorKinds = []errorKind{
	{apperrors.ErrNotFound, http.StatusNotFound, "not_found", "The requested resource was not found"},
	{apperrors.ErrConflict, http.StatusConflict, "conflict", "A conflict occurred with existing data"},
	{apperrors.ErrInvalidInput, http.StatusUnprocessableEntity, "invalid_input", ""},
	{apperrors.ErrBadRequest, http.StatusBadRequest, "bad_request", "The request is malformed"},
	{apperrors.ErrUnauthorized, http.StatusUnauthorized, "unauthorized", "Authentication is required"},
	{apperrors.ErrForbidden, http.StatusForbidden, "forbidden", "You don't have permission to access this resource"},
	{apperrors.ErrTooManyRequests, http.StatusTooManyRequests, "rate_limit_exceeded", "Too many requests"},
}

var internalError = ErrorResponse{
	Error:   "internal_error",
	Message: "An internal error occurred",
}

// HandleErrorGin writes the response for err. Coded errors keep the status of their
// sentinel and expose their code and message. Errors wrapping no sentinel become a 500
// without details.
func HandleErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if err == nil {
		return
	}

	status, response := http.StatusInternalServerError, internalError
	for _, k := range errorKinds {
		if apperrors.Is(err, k.sentinel) {
			status = k.status
			response = ErrorResponse{Error: k.kind, Message: k.message}
			if response.Message == "" {
				response.Message = err.Error()
			}
			break
		}
	}

	var coded *apperrors.CodedError
	if status != http.StatusInternalServerError && apperrors.As(err, &coded) {
		response.Code = coded.Code
		response.Message = coded.Message
	}

	if logger != nil {
		ctx := context.Background()
		if c.Request != nil {
			ctx = c.Request.Context()
		}
		level := slog.LevelInfo
		if status >= http.StatusInternalServerError {
			level = slog.LevelError
		}
		logger.Log(ctx, level, "request failed",
			slog.Int("status_code", status),
			slog.String("error_kind", response.Error),
			slog.String("code", response.Code),
			slog.Any("error", err),
		)
	}

	c.JSON(status, response)
}

// HandleBadRequestGin writes a 400 for bodies or parameters that could not be parsed.
func HandleBadRequestGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("bad request", slog.Any("error", err))
	}
	c.JSON(http.StatusBadRequest, ErrorResponse{Error: "bad_request", Message: err.Error()})
}

// HandleValidationErrorGin writes a 422 for requests failing validation.
func HandleValidationErrorGin(c *gin.Context, err error, logger *slog.Logger) {
	if logger != nil {
		logger.Warn("validation failed", slog.Any("error", err))
	}
	c.JSON(http.StatusUnprocessableEntity, ErrorResponse{Error: "validation_error", Message: err.Error()})
}
