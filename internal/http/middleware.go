package http

import (
	"log/slog"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"

	apperrors "github.com/questionit/api/internal/errors"
	"github.com/questionit/api/internal/httputil"
)

// errBannedIP is returned to clients whose address is on the ban list.
var errBannedIP = apperrors.Coded(apperrors.ErrForbidden, "banned_ip", "address is banned")

// IPBanChecker reports whether an address is banned.
type IPBanChecker interface {
	IsIPBanned(ip string, includeTor bool) bool
}

// CustomLoggerMiddleware logs one line per request with its request ID.
func CustomLoggerMiddleware(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		path := c.Request.URL.Path

		c.Next()

		attrs := []any{
			slog.String("request_id", requestid.Get(c)),
			slog.String("method", c.Request.Method),
			slog.String("path", path),
			slog.Int("status", c.Writer.Status()),
			slog.Duration("duration", time.Since(start)),
			slog.String("client_ip", c.ClientIP()),
		}
		if len(c.Errors) > 0 {
			attrs = append(attrs, slog.String("errors", c.Errors.String()))
		}

		switch {
		case c.Writer.Status() >= 500:
			logger.Error("http request", attrs...)
		case c.Writer.Status() >= 400:
			logger.Warn("http request", attrs...)
		default:
			logger.Info("http request", attrs...)
		}
	}
}

// BannedIPMiddleware rejects requests from banned addresses with 403 banned_ip. Tor
// exit nodes are not rejected here; question intake drops them for safe-mode receivers.
func BannedIPMiddleware(checker IPBanChecker, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		ip := c.ClientIP()
		if checker.IsIPBanned(ip, false) {
			logger.Info("rejected banned address", slog.String("client_ip", ip))
			httputil.HandleErrorGin(c, errBannedIP, logger)
			c.Abort()
			return
		}
		c.Next()
	}
}
