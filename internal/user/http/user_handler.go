// Package http provides HTTP handlers for user-related operations.
package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authHTTP "github.com/questionit/api/internal/auth/http"
	"github.com/questionit/api/internal/httputil"
	"github.com/questionit/api/internal/user/http/dto"
	"github.com/questionit/api/internal/user/usecase"
	customValidation "github.com/questionit/api/internal/validation"
)

// UserHandler handles user-related HTTP requests
type UserHandler struct {
	userUseCase usecase.UseCase
	logger      *slog.Logger
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userUseCase usecase.UseCase, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		userUseCase: userUseCase,
		logger:      logger,
	}
}

func (h *UserHandler) requireUser(c *gin.Context) (*authDomain.AuthContext, bool) {
	auth, ok := authHTTP.GetAuth(c.Request.Context())
	if !ok || auth.IsAnonymous() {
		httputil.HandleErrorGin(c, authDomain.ErrInvalidExpiredToken, h.logger)
		return nil, false
	}
	return auth, true
}

// MeHandler returns the caller's profile and settings. Relationship counts need ReadRelationship.
// GET /v1/users/me
func (h *UserHandler) MeHandler(c *gin.Context) {
	auth, ok := h.requireUser(c)
	if !ok {
		return
	}

	profile, err := h.userUseCase.Profile(
		c.Request.Context(),
		auth.User,
		auth.Rights.Has(authDomain.ReadRelationship),
	)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToMeResponse(profile))
}

// GetBlockedWordsHandler returns the caller's blocked words.
// GET /v1/users/me/blocked-words
func (h *UserHandler) GetBlockedWordsHandler(c *gin.Context) {
	auth, ok := h.requireUser(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.ToBlockedWordsResponse(auth.User))
}

// UpdateBlockedWordsHandler replaces the caller's blocked words.
// PUT /v1/users/me/blocked-words
func (h *UserHandler) UpdateBlockedWordsHandler(c *gin.Context) {
	auth, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req dto.BlockedWordsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}
	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return
	}

	user, err := h.userUseCase.UpdateBlockedWords(c.Request.Context(), auth, req.Words)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToBlockedWordsResponse(user))
}

// UpdateSettingsHandler changes safe mode, blocked word handling and anonymous questions.
// PUT /v1/users/me/settings
func (h *UserHandler) UpdateSettingsHandler(c *gin.Context) {
	auth, ok := h.requireUser(c)
	if !ok {
		return
	}

	var req dto.SettingsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return
	}

	user, err := h.userUseCase.UpdateSettings(c.Request.Context(), auth, req.ToDomain())
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.ToSettingsResponse(user))
}
