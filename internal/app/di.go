// Package app provides dependency injection container for assembling application components.
package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/questionit/api/internal/config"
	"github.com/questionit/api/internal/database"
	"github.com/questionit/api/internal/http"
	"github.com/questionit/api/internal/metrics"
	outboxRepository "github.com/questionit/api/internal/outbox/repository"
	outboxService "github.com/questionit/api/internal/outbox/service"
	outboxUsecase "github.com/questionit/api/internal/outbox/usecase"
	userHTTP "github.com/questionit/api/internal/user/http"
	userRepository "github.com/questionit/api/internal/user/repository"
	userUsecase "github.com/questionit/api/internal/user/usecase"
)

// Container holds all application dependencies and provides methods to access them.
// It follows the lazy initialization pattern - components are created on first access.
type Container struct {
	// Configuration
	config *config.Config

	// Infrastructure
	logger          *slog.Logger
	db              *sql.DB
	metricsProvider *metrics.Provider
	businessMetrics metrics.BusinessMetrics
	amqpPublisher   *outboxService.AMQPPublisher

	// Managers
	txManager database.TxManager

	// Repositories
	userRepo   userUsecase.UserRepository
	outboxRepo outboxUsecase.OutboxEventRepository

	// Use Cases
	userUseCase   userUsecase.UseCase
	outboxUseCase outboxUsecase.UseCase

	// Servers and Workers
	httpServer    *http.Server
	metricsServer *http.MetricsServer

	auth       authComponents
	moderation moderationComponents
	question   questionComponents

	// Initialization flags and mutex for thread-safety
	mu                  sync.Mutex
	loggerInit          sync.Once
	dbInit              sync.Once
	txManagerInit       sync.Once
	metricsInit         sync.Once
	businessMetricsInit sync.Once
	userRepoInit        sync.Once
	outboxRepoInit      sync.Once
	userUseCaseInit     sync.Once
	outboxUseCaseInit   sync.Once
	httpServerInit      sync.Once
	metricsServerInit   sync.Once
	initErrors          map[string]error
}

// NewContainer creates a new dependency injection container with the provided configuration.
func NewContainer(cfg *config.Config) *Container {
	return &Container{
		config:     cfg,
		initErrors: make(map[string]error),
	}
}

// once runs init the first time key is requested and replays its error afterwards.
func (c *Container) once(o *sync.Once, key string, init func() error) error {
	o.Do(func() {
		if err := init(); err != nil {
			c.mu.Lock()
			c.initErrors[key] = err
			c.mu.Unlock()
		}
	})
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.initErrors[key]
}

// Config returns the application configuration.
func (c *Container) Config() *config.Config {
	return c.config
}

// Logger returns the configured logger instance.
// It creates a new logger on first access based on the log level in configuration.
func (c *Container) Logger() *slog.Logger {
	c.loggerInit.Do(func() {
		c.logger = c.initLogger()
	})
	return c.logger
}

// DB returns the database connection.
// It creates and configures the database connection on first access.
func (c *Container) DB() (*sql.DB, error) {
	err := c.once(&c.dbInit, "db", func() (err error) {
		c.db, err = c.initDB()
		return err
	})
	return c.db, err
}

// TxManager returns the transaction manager.
// It requires a database connection to be initialized first.
func (c *Container) TxManager() (database.TxManager, error) {
	err := c.once(&c.txManagerInit, "txManager", func() error {
		db, err := c.DB()
		if err != nil {
			return fmt.Errorf("failed to get database for tx manager: %w", err)
		}
		c.txManager = database.NewTxManager(db)
		return nil
	})
	return c.txManager, err
}

// MetricsProvider returns the Prometheus-backed meter provider, or nil when metrics are disabled.
func (c *Container) MetricsProvider() (*metrics.Provider, error) {
	err := c.once(&c.metricsInit, "metricsProvider", func() (err error) {
		if !c.config.MetricsEnabled {
			return nil
		}
		c.metricsProvider, err = metrics.NewProvider(c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create metrics provider: %w", err)
		}
		return nil
	})
	return c.metricsProvider, err
}

// BusinessMetrics returns the business metrics recorder. It is a no-op when metrics are disabled.
func (c *Container) BusinessMetrics() (metrics.BusinessMetrics, error) {
	err := c.once(&c.businessMetricsInit, "businessMetrics", func() (err error) {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			c.businessMetrics = metrics.NewNoOpBusinessMetrics()
			return nil
		}
		c.businessMetrics, err = metrics.NewBusinessMetrics(provider.MeterProvider(), c.config.MetricsNamespace)
		if err != nil {
			return fmt.Errorf("failed to create business metrics: %w", err)
		}
		return nil
	})
	return c.businessMetrics, err
}

// UserRepository returns the user repository instance.
func (c *Container) UserRepository() (userUsecase.UserRepository, error) {
	err := c.once(&c.userRepoInit, "userRepo", func() (err error) {
		c.userRepo, err = c.initUserRepository()
		return err
	})
	return c.userRepo, err
}

// OutboxRepository returns the outbox event repository instance.
func (c *Container) OutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	err := c.once(&c.outboxRepoInit, "outboxRepo", func() (err error) {
		c.outboxRepo, err = c.initOutboxRepository()
		return err
	})
	return c.outboxRepo, err
}

// UserUseCase returns the user use case instance.
func (c *Container) UserUseCase() (userUsecase.UseCase, error) {
	err := c.once(&c.userUseCaseInit, "userUseCase", func() (err error) {
		c.userUseCase, err = c.initUserUseCase()
		return err
	})
	return c.userUseCase, err
}

// OutboxUseCase returns the outbox use case instance.
func (c *Container) OutboxUseCase() (outboxUsecase.UseCase, error) {
	err := c.once(&c.outboxUseCaseInit, "outboxUseCase", func() (err error) {
		c.outboxUseCase, err = c.initOutboxUseCase()
		return err
	})
	return c.outboxUseCase, err
}

// HTTPServer returns the HTTP server with its router set up.
func (c *Container) HTTPServer() (*http.Server, error) {
	err := c.once(&c.httpServerInit, "httpServer", func() (err error) {
		c.httpServer, err = c.initHTTPServer()
		return err
	})
	return c.httpServer, err
}

// MetricsServer returns the metrics server, or nil when metrics are disabled.
func (c *Container) MetricsServer() (*http.MetricsServer, error) {
	err := c.once(&c.metricsServerInit, "metricsServer", func() error {
		provider, err := c.MetricsProvider()
		if err != nil {
			return err
		}
		if provider == nil {
			return nil
		}
		c.metricsServer = http.NewMetricsServer(c.config.ServerHost, c.config.MetricsPort, c.Logger(), provider)
		return nil
	})
	return c.metricsServer, err
}

// Shutdown performs cleanup of all initialized resources.
// It should be called when the application is shutting down.
func (c *Container) Shutdown(ctx context.Context) error {
	var shutdownErrors []error

	if c.httpServer != nil {
		if err := c.httpServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("http server shutdown: %w", err))
		}
	}

	if c.metricsServer != nil {
		if err := c.metricsServer.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics server shutdown: %w", err))
		}
	}

	if c.moderation.pool != nil {
		c.moderation.pool.Close()
	}

	if c.moderation.redisClient != nil {
		if err := c.moderation.redisClient.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("redis close: %w", err))
		}
	}

	if c.amqpPublisher != nil {
		if err := c.amqpPublisher.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("amqp close: %w", err))
		}
	}

	if c.metricsProvider != nil {
		if err := c.metricsProvider.Shutdown(ctx); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("metrics provider shutdown: %w", err))
		}
	}

	if c.db != nil {
		if err := c.db.Close(); err != nil {
			shutdownErrors = append(shutdownErrors, fmt.Errorf("database close: %w", err))
		}
	}

	return errors.Join(shutdownErrors...)
}

// initLogger creates and configures a structured logger based on the log level.
func (c *Container) initLogger() *slog.Logger {
	var logLevel slog.Level
	switch c.config.LogLevel {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})

	return slog.New(handler)
}

// initDB creates and configures the database connection.
func (c *Container) initDB() (*sql.DB, error) {
	db, err := database.Connect(database.Config{
		Driver:             c.config.DBDriver,
		ConnectionString:   c.config.DBConnectionString,
		MaxOpenConnections: c.config.DBMaxOpenConnections,
		MaxIdleConnections: c.config.DBMaxIdleConnections,
		ConnMaxLifetime:    c.config.DBConnMaxLifetime,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

// initUserRepository creates the user repository instance.
func (c *Container) initUserRepository() (userUsecase.UserRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for user repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return userRepository.NewMySQLUserRepository(db), nil
	case "postgres":
		return userRepository.NewPostgreSQLUserRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initOutboxRepository creates the outbox event repository instance.
func (c *Container) initOutboxRepository() (outboxUsecase.OutboxEventRepository, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for outbox repository: %w", err)
	}

	switch c.config.DBDriver {
	case "mysql":
		return outboxRepository.NewMySQLOutboxEventRepository(db), nil
	case "postgres":
		return outboxRepository.NewPostgreSQLOutboxEventRepository(db), nil
	default:
		return nil, fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
}

// initUserUseCase creates the user use case with all its dependencies.
func (c *Container) initUserUseCase() (userUsecase.UseCase, error) {
	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for user use case: %w", err)
	}

	userRepo, err := c.UserRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get user repository for user use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for user use case: %w", err)
	}

	baseUseCase := userUsecase.NewUserUseCase(txManager, userRepo, outboxRepo)

	if c.config.MetricsEnabled {
		businessMetrics, err := c.BusinessMetrics()
		if err != nil {
			return nil, fmt.Errorf("failed to get business metrics for user use case: %w", err)
		}
		return userUsecase.NewUserUseCaseWithMetrics(baseUseCase, businessMetrics), nil
	}

	return baseUseCase, nil
}

// initOutboxUseCase creates the outbox use case. Question notifications go to the
// broker when AMQP_URL is set and are only logged otherwise.
func (c *Container) initOutboxUseCase() (outboxUsecase.UseCase, error) {
	logger := c.Logger()

	txManager, err := c.TxManager()
	if err != nil {
		return nil, fmt.Errorf("failed to get tx manager for outbox use case: %w", err)
	}

	outboxRepo, err := c.OutboxRepository()
	if err != nil {
		return nil, fmt.Errorf("failed to get outbox repository for outbox use case: %w", err)
	}

	useCaseConfig := outboxUsecase.Config{
		Interval:   c.config.OutboxInterval,
		BatchSize:  c.config.OutboxBatchSize,
		MaxRetries: c.config.OutboxMaxRetries,
		Retention:  c.config.OutboxRetention,
	}

	var eventProcessor outboxUsecase.EventProcessor = outboxUsecase.NewLoggingEventProcessor(logger)
	if c.config.AMQPURL != "" {
		c.amqpPublisher = outboxService.NewAMQPPublisher(c.config.AMQPURL, logger)
		eventProcessor = outboxUsecase.NewAMQPEventProcessor(
			c.amqpPublisher,
			c.config.NotificationQueue,
			eventProcessor,
			logger,
		)
	}

	return outboxUsecase.NewOutboxUseCase(useCaseConfig, txManager, outboxRepo, eventProcessor, logger), nil
}

// initUserHandler creates the user HTTP handler.
func (c *Container) initUserHandler() (*userHTTP.UserHandler, error) {
	userUseCase, err := c.UserUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get user use case for user handler: %w", err)
	}
	return userHTTP.NewUserHandler(userUseCase, c.Logger()), nil
}

// initHTTPServer creates the HTTP server and mounts every route.
func (c *Container) initHTTPServer() (*http.Server, error) {
	db, err := c.DB()
	if err != nil {
		return nil, fmt.Errorf("failed to get database for http server: %w", err)
	}

	handlers, err := c.handlers()
	if err != nil {
		return nil, err
	}

	authenticationUseCase, err := c.AuthenticationUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get authentication use case for http server: %w", err)
	}

	metricsProvider, err := c.MetricsProvider()
	if err != nil {
		return nil, err
	}

	server := http.NewServer(db, c.config.ServerHost, c.config.ServerPort, c.Logger())
	server.SetupRouter(c.config, handlers, authenticationUseCase, metricsProvider, c.BanList())

	return server, nil
}

func (c *Container) handlers() (http.Handlers, error) {
	handshake, err := c.HandshakeHandler()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get handshake handler: %w", err)
	}
	application, err := c.ApplicationHandler()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get application handler: %w", err)
	}
	session, err := c.SessionHandler()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get session handler: %w", err)
	}
	user, err := c.initUserHandler()
	if err != nil {
		return http.Handlers{}, err
	}
	question, err := c.QuestionHandler()
	if err != nil {
		return http.Handlers{}, fmt.Errorf("failed to get question handler: %w", err)
	}

	return http.Handlers{
		Handshake:   handshake,
		Application: application,
		Session:     session,
		User:        user,
		Question:    question,
	}, nil
}
