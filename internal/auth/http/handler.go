package http

import (
	"fmt"
	"log/slog"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/httputil"
)

// requireUser returns the authorization context of an authenticated caller, writing a 401
// response when the request is anonymous.
func requireUser(c *gin.Context, logger *slog.Logger) (*authDomain.AuthContext, bool) {
	auth, ok := GetAuth(c.Request.Context())
	if !ok || auth.IsAnonymous() {
		httputil.HandleErrorGin(c, authDomain.ErrInvalidExpiredToken, logger)
		return nil, false
	}
	return auth, true
}

// uuidParam parses the path parameter name as a UUID, writing a 422 response on failure.
func uuidParam(c *gin.Context, name string, logger *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param(name))
	if err != nil {
		httputil.HandleValidationErrorGin(c,
			fmt.Errorf("invalid %s format: must be a valid UUID", name),
			logger)
		return uuid.Nil, false
	}
	return id, true
}
