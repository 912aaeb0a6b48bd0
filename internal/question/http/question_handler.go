// Package http provides the HTTP handlers of the question endpoints.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authHTTP "github.com/questionit/api/internal/auth/http"
	"github.com/questionit/api/internal/httputil"
	"github.com/questionit/api/internal/question/http/dto"
	"github.com/questionit/api/internal/question/usecase"
	customValidation "github.com/questionit/api/internal/validation"
)

// QuestionHandler handles question submission and cleanup.
type QuestionHandler struct {
	questionUseCase usecase.QuestionUseCase
	logger          *slog.Logger
}

// NewQuestionHandler creates a new question handler with required dependencies.
func NewQuestionHandler(questionUseCase usecase.QuestionUseCase, logger *slog.Logger) *QuestionHandler {
	return &QuestionHandler{
		questionUseCase: questionUseCase,
		logger:          logger,
	}
}

// AskHandler submits a question. Stored, muted and dropped questions all answer 204 so
// the emitter cannot tell them apart.
// POST /v1/questions
func (h *QuestionHandler) AskHandler(c *gin.Context) {
	auth, ok := authHTTP.GetAuth(c.Request.Context())
	if !ok {
		auth = authDomain.Anonymous()
	}

	var req dto.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	if _, err := h.questionUseCase.Ask(c.Request.Context(), auth, req.ToDomain(c.ClientIP())); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// DeleteMutedHandler deletes the caller's pending questions containing a blocked word.
// DELETE /v1/questions/muted
func (h *QuestionHandler) DeleteMutedHandler(c *gin.Context) {
	auth, ok := authHTTP.GetAuth(c.Request.Context())
	if !ok || auth.IsAnonymous() {
		httputil.HandleErrorGin(c, authDomain.ErrInvalidExpiredToken, h.logger)
		return
	}

	deleted, err := h.questionUseCase.DeletePendingMuted(c.Request.Context(), auth)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.DeletedResponse{Count: deleted})
}
