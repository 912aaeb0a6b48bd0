// Package http provides HTTP server implementation and request handlers.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authHTTP "github.com/questionit/api/internal/auth/http"
	authUseCase "github.com/questionit/api/internal/auth/usecase"
	"github.com/questionit/api/internal/config"
	"github.com/questionit/api/internal/metrics"
	questionHTTP "github.com/questionit/api/internal/question/http"
	userHTTP "github.com/questionit/api/internal/user/http"
)

// Server represents the HTTP server
type Server struct {
	db     *sql.DB
	server *http.Server
	router *gin.Engine
	logger *slog.Logger
}

// Handlers groups the route handlers mounted by SetupRouter.
type Handlers struct {
	Handshake   *authHTTP.HandshakeHandler
	Application *authHTTP.ApplicationHandler
	Session     *authHTTP.SessionHandler
	User        *userHTTP.UserHandler
	Question    *questionHTTP.QuestionHandler
}

// NewServer creates a new HTTP server
func NewServer(
	db *sql.DB,
	host string,
	port int,
	logger *slog.Logger,
) *Server {
	return &Server{
		db:     db,
		logger: logger,
		server: &http.Server{
			Addr:         fmt.Sprintf("%s:%d", host, port),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
	}
}

// SetupRouter builds the gin engine with every API route.
//
// metricsProvider and banChecker are optional. When banChecker is set, requests from
// banned addresses are rejected before reaching any /v1 route.
func (s *Server) SetupRouter(
	cfg *config.Config,
	handlers Handlers,
	authenticationUseCase authUseCase.AuthenticationUseCase,
	metricsProvider *metrics.Provider,
	banChecker IPBanChecker,
) {
	gin.SetMode(cfg.GetGinMode())

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if cors := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); cors != nil {
		router.Use(cors)
	}
	if metricsProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(metricsProvider.MeterProvider(), cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	if banChecker != nil {
		v1.Use(BannedIPMiddleware(banChecker, s.logger))
	}

	requireAuth := authHTTP.AuthenticationMiddleware(authenticationUseCase, s.logger)
	optionalAuth := authHTTP.OptionalAuthenticationMiddleware(authenticationUseCase, s.logger)
	internalOnly := authHTTP.RightsMiddleware(s.logger, authDomain.InternalUseOnly)

	limited := func(handlers ...gin.HandlerFunc) []gin.HandlerFunc {
		if !cfg.RateLimitEnabled {
			return handlers
		}
		return append(handlers, authHTTP.RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	// Handshake
	handshake := []gin.HandlerFunc{}
	if cfg.RateLimitHandshakeEnabled {
		handshake = append(handshake, authHTTP.IPRateLimitMiddleware(
			cfg.RateLimitHandshakeRequestsPerSec,
			cfg.RateLimitHandshakeBurst,
			s.logger,
		))
	}
	v1.POST("/applications/token", append(handshake, handlers.Handshake.RequestTokenHandler)...)
	v1.GET("/applications/token/:token", handlers.Handshake.DetailsHandler)
	v1.POST("/token/create", append(handshake, handlers.Handshake.ExchangeHandler)...)

	authenticated := v1.Group("", limited(requireAuth)...)
	{
		authenticated.POST("/applications/approve", internalOnly, handlers.Handshake.ApproveHandler)

		authenticated.GET("/tokens", handlers.Session.ListHandler)
		authenticated.DELETE("/tokens/:jti", handlers.Session.RevokeHandler)

		applications := authenticated.Group("/applications", internalOnly)
		{
			applications.GET("", handlers.Application.ListHandler)
			applications.POST("", handlers.Application.CreateHandler)
			applications.PUT("/:id", handlers.Application.UpdateHandler)
			applications.POST("/:id/key", handlers.Application.RegenerateKeyHandler)
			applications.DELETE("/:id", handlers.Application.DeleteHandler)
		}

		subscriptions := authenticated.Group("/subscriptions", internalOnly)
		{
			subscriptions.GET("", handlers.Application.ListSubscriptionsHandler)
			subscriptions.DELETE("/:id", handlers.Application.UnsubscribeHandler)
		}

		users := authenticated.Group("/users/me")
		{
			users.GET("", handlers.User.MeHandler)
			users.GET("/blocked-words", authHTTP.RightsMiddleware(s.logger, authDomain.ManageBlockedWords),
				handlers.User.GetBlockedWordsHandler)
			users.PUT("/blocked-words", authHTTP.RightsMiddleware(s.logger, authDomain.ManageBlockedWords),
				handlers.User.UpdateBlockedWordsHandler)
			users.PUT("/settings", internalOnly, handlers.User.UpdateSettingsHandler)
		}

		authenticated.DELETE("/questions/muted", authHTTP.RightsMiddleware(s.logger, authDomain.DeleteQuestion),
			handlers.Question.DeleteMutedHandler)
	}

	v1.POST("/questions", append(limited(optionalAuth),
		authHTTP.RightsMiddleware(s.logger, authDomain.SendQuestion),
		handlers.Question.AskHandler)...)

	s.router = router
	s.server.Handler = router
}

// GetHandler returns the http.Handler for testing purposes.
func (s *Server) GetHandler() http.Handler {
	return s.server.Handler
}

// Start starts the HTTP server
func (s *Server) Start(ctx context.Context) error {
	if s.server.Handler == nil {
		s.server.Handler = s.router
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	return s.server.Shutdown(ctx)
}

func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports ready once the database answers a ping.
func (s *Server) readinessHandler(c *gin.Context) {
	database := "ok"
	if s.db == nil {
		database = "error"
	} else {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := s.db.PingContext(ctx); err != nil {
			s.logger.Warn("readiness check failed", slog.Any("error", err))
			database = "error"
		}
	}

	if database != "ok" {
		c.JSON(http.StatusServiceUnavailable, gin.H{
			"status":     "not_ready",
			"components": gin.H{"database": database},
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"status":     "ready",
		"components": gin.H{"database": database},
	})
}
