package http

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// anyOrigin in CORS_ALLOW_ORIGINS allows every origin.
const anyOrigin = "*"

// createCORSMiddleware returns the CORS policy for browser clients of the API, or nil
// when CORS is disabled or no origin is configured.
//
// Credentials travel in the Authorization header, never in cookies, so credentialed
// CORS is off and a wildcard origin is acceptable for delegated applications running in
// the browser. Retry-After is exposed for rate-limited clients.
func createCORSMiddleware(enabled bool, allowOriginsStr string, logger *slog.Logger) gin.HandlerFunc {
	if !enabled {
		return nil
	}

	origins := parseOrigins(allowOriginsStr)
	if len(origins) == 0 {
		logger.Warn("CORS enabled but no origins configured, CORS will not be applied")
		return nil
	}

	cfg := cors.Config{
		AllowMethods: []string{
			http.MethodGet,
			http.MethodPost,
			http.MethodPut,
			http.MethodDelete,
		},
		AllowHeaders:  []string{"Authorization", "Content-Type"},
		ExposeHeaders: []string{"X-Request-Id", "Retry-After"},
		MaxAge:        12 * time.Hour,
	}

	for _, origin := range origins {
		if origin == anyOrigin {
			cfg.AllowAllOrigins = true
			break
		}
	}
	if !cfg.AllowAllOrigins {
		cfg.AllowOrigins = origins
	}

	logger.Info("CORS enabled",
		slog.Bool("any_origin", cfg.AllowAllOrigins),
		slog.Any("origins", origins))

	return cors.New(cfg)
}

// parseOrigins splits a comma-separated origin list, dropping blanks.
func parseOrigins(originsStr string) []string {
	if originsStr == "" {
		return nil
	}

	var origins []string
	for _, part := range strings.Split(originsStr, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
