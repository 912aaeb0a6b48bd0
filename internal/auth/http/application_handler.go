package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/auth/http/dto"
	authUseCase "github.com/questionit/api/internal/auth/usecase"
	"github.com/questionit/api/internal/httputil"
	customValidation "github.com/questionit/api/internal/validation"
)

// ApplicationHandler handles application management and subscription endpoints.
// Every route requires a first-party credential.
type ApplicationHandler struct {
	applicationUseCase authUseCase.ApplicationUseCase
	logger             *slog.Logger
}

// NewApplicationHandler creates a new application handler with required dependencies.
func NewApplicationHandler(applicationUseCase authUseCase.ApplicationUseCase, logger *slog.Logger) *ApplicationHandler {
	return &ApplicationHandler{
		applicationUseCase: applicationUseCase,
		logger:             logger,
	}
}

func (h *ApplicationHandler) bind(c *gin.Context) (*dto.ApplicationRequest, bool) {
	var req dto.ApplicationRequest

	if err := c.ShouldBindJSON(&req); err != nil {
		httputil.HandleValidationErrorGin(c, err, h.logger)
		return nil, false
	}

	if err := req.Validate(); err != nil {
		httputil.HandleValidationErrorGin(c, customValidation.WrapValidationError(err), h.logger)
		return nil, false
	}
	return &req, true
}

// CreateHandler registers an application.
// POST /v1/applications
// Returns 201 Created with the application, key included.
func (h *ApplicationHandler) CreateHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}

	app, err := h.applicationUseCase.Create(c.Request.Context(), auth.User.ID, &authDomain.CreateApplicationInput{
		Name:   req.Name,
		URL:    req.URL,
		Rights: req.Rights,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusCreated, dto.MapApplicationToResponse(app))
}

// ListHandler lists the caller's applications.
// GET /v1/applications
func (h *ApplicationHandler) ListHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	apps, err := h.applicationUseCase.List(c.Request.Context(), auth.User.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapApplicationsToListResponse(apps))
}

// UpdateHandler edits an application.
// PUT /v1/applications/:id
func (h *ApplicationHandler) UpdateHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}
	req, ok := h.bind(c)
	if !ok {
		return
	}

	app, err := h.applicationUseCase.Update(c.Request.Context(), auth.User.ID, id, &authDomain.UpdateApplicationInput{
		Name:   req.Name,
		URL:    req.URL,
		Rights: req.Rights,
	})
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapApplicationToResponse(app))
}

// RegenerateKeyHandler replaces the application key, invalidating delegated credentials.
// POST /v1/applications/:id/key
func (h *ApplicationHandler) RegenerateKeyHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	app, err := h.applicationUseCase.RegenerateKey(c.Request.Context(), auth.User.ID, id)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapApplicationToResponse(app))
}

// DeleteHandler deletes an application with its handshakes and sessions.
// DELETE /v1/applications/:id
// Returns 204 No Content.
func (h *ApplicationHandler) DeleteHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.applicationUseCase.Delete(c.Request.Context(), auth.User.ID, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}

// ListSubscriptionsHandler lists the applications holding a session of the caller.
// GET /v1/subscriptions
func (h *ApplicationHandler) ListSubscriptionsHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	apps, err := h.applicationUseCase.ListSubscribed(c.Request.Context(), auth.User.ID)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSubscriptionsToListResponse(apps))
}

// UnsubscribeHandler revokes every session the caller granted to an application.
// DELETE /v1/subscriptions/:id
// Returns 204 No Content.
func (h *ApplicationHandler) UnsubscribeHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}
	id, ok := uuidParam(c, "id", h.logger)
	if !ok {
		return
	}

	if err := h.applicationUseCase.Unsubscribe(c.Request.Context(), auth.User.ID, id); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
