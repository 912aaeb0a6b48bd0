package http

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/questionit/api/internal/auth/http/dto"
	authUseCase "github.com/questionit/api/internal/auth/usecase"
	"github.com/questionit/api/internal/httputil"
)

// SessionHandler handles session listing and revocation.
type SessionHandler struct {
	sessionUseCase authUseCase.SessionUseCase
	logger         *slog.Logger
}

// NewSessionHandler creates a new session handler with required dependencies.
func NewSessionHandler(sessionUseCase authUseCase.SessionUseCase, logger *slog.Logger) *SessionHandler {
	return &SessionHandler{
		sessionUseCase: sessionUseCase,
		logger:         logger,
	}
}

// ListHandler lists the caller's live sessions.
// GET /v1/tokens
func (h *SessionHandler) ListHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	views, err := h.sessionUseCase.List(c.Request.Context(), auth)
	if err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.JSON(http.StatusOK, dto.MapSessionViewsToListResponse(views))
}

// RevokeHandler revokes a session. Credentials without InternalUseOnly always revoke
// themselves, whatever :jti names.
// DELETE /v1/tokens/:jti
// Returns 204 No Content.
func (h *SessionHandler) RevokeHandler(c *gin.Context) {
	auth, ok := requireUser(c, h.logger)
	if !ok {
		return
	}

	if err := h.sessionUseCase.Revoke(c.Request.Context(), auth, c.Param("jti")); err != nil {
		httputil.HandleErrorGin(c, err, h.logger)
		return
	}

	c.Data(http.StatusNoContent, "application/json", nil)
}
