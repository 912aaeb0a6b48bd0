package http

import (
	"log/slog"
	"strings"

	"github.com/gin-gonic/gin"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authUseCase "github.com/questionit/api/internal/auth/usecase"
	apperrors "github.com/questionit/api/internal/errors"
	"github.com/questionit/api/internal/httputil"
)

const bearerPrefix = "bearer "

// bearerToken extracts the credential of an "Authorization: Bearer <token>" header.
// The scheme is matched case-insensitively.
func bearerToken(c *gin.Context) (string, bool) {
	header := c.GetHeader("Authorization")
	if len(header) < len(bearerPrefix) || !strings.EqualFold(header[:len(bearerPrefix)], bearerPrefix) {
		return "", false
	}
	token := strings.TrimSpace(header[len(bearerPrefix):])
	return token, token != ""
}

// AuthenticationMiddleware requires a valid bearer credential.
//
// The credential is verified, its session looked up and touched with the client IP, and
// the resulting authorization context stored in the request context (see GetAuth).
//
// Error handling:
//   - Missing or malformed Authorization header → 401 invalid_expired_token
//   - Invalid, expired or revoked credential → 401 invalid_expired_token
//   - Banned user → 403 banned_user
//   - Deleted user → 404 user_not_found
func AuthenticationMiddleware(useCase authUseCase.AuthenticationUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, ok := bearerToken(c)
		if !ok {
			logger.Debug("authentication failed: missing or malformed authorization header")
			httputil.HandleErrorGin(c, authDomain.ErrInvalidExpiredToken, logger)
			c.Abort()
			return
		}

		auth, err := useCase.Authenticate(c.Request.Context(), raw, c.ClientIP())
		if err != nil {
			logger.Debug("authentication failed", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithAuth(c.Request.Context(), auth))

		logger.Debug("authentication successful",
			slog.String("user_id", auth.User.ID.String()),
			slog.Bool("application", auth.ApplicationID() != nil))

		c.Next()
	}
}

// OptionalAuthenticationMiddleware authenticates when a credential is present and falls
// back to the anonymous context otherwise. A banned user is still rejected.
func OptionalAuthenticationMiddleware(useCase authUseCase.AuthenticationUseCase, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		raw, _ := bearerToken(c)

		auth, err := useCase.AuthenticateOrAnonymous(c.Request.Context(), raw, c.ClientIP())
		if err != nil {
			logger.Debug("optional authentication failed", slog.Any("error", err))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Request = c.Request.WithContext(WithAuth(c.Request.Context(), auth))
		c.Next()
	}
}

// RightsMiddleware requires every capability in caps.
//
// It MUST run after one of the authentication middlewares. Anonymous contexts pass:
// endpoints that reject anonymous callers use AuthenticationMiddleware.
//
// Error handling:
//   - No authorization context → 401 Unauthorized
//   - Missing capability → 403 invalid_token_rights
func RightsMiddleware(logger *slog.Logger, caps ...authDomain.Rights) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth, ok := GetAuth(c.Request.Context())
		if !ok {
			logger.Error("rights middleware: no authorization context")
			httputil.HandleErrorGin(c, apperrors.ErrUnauthorized, logger)
			c.Abort()
			return
		}

		if err := authDomain.RequireCapabilities(auth, caps...); err != nil {
			logger.Debug("authorization failed: insufficient rights",
				slog.Int64("rights", int64(auth.Rights)))
			httputil.HandleErrorGin(c, err, logger)
			c.Abort()
			return
		}

		c.Next()
	}
}
