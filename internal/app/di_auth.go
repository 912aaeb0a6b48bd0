package app

import (
	"context"
	"fmt"
	"sync"

	authHTTP "github.com/questionit/api/internal/auth/http"
	authRepository "github.com/questionit/api/internal/auth/repository"
	authMySQL "github.com/questionit/api/internal/auth/repository/mysql"
	authService "github.com/questionit/api/internal/auth/service"
	authUseCase "github.com/questionit/api/internal/auth/usecase"
)

// authComponents holds the lazily built auth context.
type authComponents struct {
	keys             *authService.Keys
	signer           authService.CredentialSigner
	cipher           authService.HandshakeCipher
	keyService       authService.KeyService
	validatorService authService.ValidatorService

	sessionRepo   authUseCase.SessionRepository
	appRepo       authUseCase.ApplicationRepository
	handshakeRepo authUseCase.HandshakeTokenRepository

	authenticationUseCase authUseCase.AuthenticationUseCase
	handshakeUseCase      authUseCase.HandshakeUseCase
	applicationUseCase    authUseCase.ApplicationUseCase
	sessionUseCase        authUseCase.SessionUseCase

	servicesInit       sync.Once
	reposInit          sync.Once
	authenticationInit sync.Once
	handshakeInit      sync.Once
	applicationInit    sync.Once
	sessionInit        sync.Once
}

// AuthServices derives the subkeys from the server secret, unwrapping it with the
// configured KMS key first, and builds the credential services on top of them.
func (c *Container) AuthServices() (*authService.Keys, error) {
	err := c.once(&c.auth.servicesInit, "authServices", c.initAuthServices)
	return c.auth.keys, err
}

func (c *Container) initAuthServices() error {
	secret, err := authService.NewSecretUnwrapper().Unwrap(
		context.Background(),
		c.config.SecretKMSKeyURI,
		c.config.JWTSecret,
	)
	if err != nil {
		return fmt.Errorf("failed to load server secret: %w", err)
	}

	keys, err := authService.DeriveKeys(secret)
	if err != nil {
		return fmt.Errorf("failed to derive keys: %w", err)
	}

	cipher, err := authService.NewHandshakeCipher(keys.Handshake)
	if err != nil {
		return fmt.Errorf("failed to create handshake cipher: %w", err)
	}

	keyService, err := authService.NewKeyService(keys.Fingerprint)
	if err != nil {
		return fmt.Errorf("failed to create key service: %w", err)
	}

	c.auth.keys = keys
	c.auth.signer = authService.NewJWTSigner(keys.Signing)
	c.auth.cipher = cipher
	c.auth.keyService = keyService
	c.auth.validatorService = authService.NewValidatorService()
	return nil
}

// initAuthRepositories creates the session, application and handshake repositories for
// the configured database driver.
func (c *Container) initAuthRepositories() error {
	db, err := c.DB()
	if err != nil {
		return fmt.Errorf("failed to get database for auth repositories: %w", err)
	}

	switch c.config.DBDriver {
	case "postgres":
		c.auth.sessionRepo = authRepository.NewPostgreSQLSessionRepository(db)
		c.auth.appRepo = authRepository.NewPostgreSQLApplicationRepository(db)
		c.auth.handshakeRepo = authRepository.NewPostgreSQLHandshakeTokenRepository(db)
	case "mysql":
		c.auth.sessionRepo = authMySQL.NewMySQLSessionRepository(db)
		c.auth.appRepo = authMySQL.NewMySQLApplicationRepository(db)
		c.auth.handshakeRepo = authMySQL.NewMySQLHandshakeTokenRepository(db)
	default:
		return fmt.Errorf("unsupported database driver: %s", c.config.DBDriver)
	}
	return nil
}

func (c *Container) authRepositories() error {
	return c.once(&c.auth.reposInit, "authRepositories", c.initAuthRepositories)
}

// authDependencies makes sure services and repositories are built.
func (c *Container) authDependencies() error {
	if _, err := c.AuthServices(); err != nil {
		return err
	}
	return c.authRepositories()
}

// AuthenticationUseCase returns the use case resolving bearer credentials.
func (c *Container) AuthenticationUseCase() (authUseCase.AuthenticationUseCase, error) {
	err := c.once(&c.auth.authenticationInit, "authenticationUseCase", func() error {
		if err := c.authDependencies(); err != nil {
			return err
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			return err
		}

		baseUseCase := authUseCase.NewAuthenticationUseCase(
			c.auth.sessionRepo,
			c.auth.appRepo,
			userRepo,
			c.BanList(),
			c.auth.signer,
			c.auth.keyService,
			c.Logger(),
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for authentication use case: %w", err)
			}
			c.auth.authenticationUseCase = authUseCase.NewAuthenticationUseCaseWithMetrics(baseUseCase, businessMetrics)
			return nil
		}

		c.auth.authenticationUseCase = baseUseCase
		return nil
	})
	return c.auth.authenticationUseCase, err
}

// HandshakeUseCase returns the delegated-application handshake use case.
func (c *Container) HandshakeUseCase() (authUseCase.HandshakeUseCase, error) {
	err := c.once(&c.auth.handshakeInit, "handshakeUseCase", func() error {
		if err := c.authDependencies(); err != nil {
			return err
		}
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for handshake use case: %w", err)
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			return err
		}

		baseUseCase := authUseCase.NewHandshakeUseCase(
			c.config,
			txManager,
			c.auth.appRepo,
			c.auth.handshakeRepo,
			c.auth.sessionRepo,
			userRepo,
			c.auth.cipher,
			c.auth.signer,
			c.auth.keyService,
			c.auth.validatorService,
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for handshake use case: %w", err)
			}
			c.auth.handshakeUseCase = authUseCase.NewHandshakeUseCaseWithMetrics(baseUseCase, businessMetrics)
			return nil
		}

		c.auth.handshakeUseCase = baseUseCase
		return nil
	})
	return c.auth.handshakeUseCase, err
}

// ApplicationUseCase returns the application management use case.
func (c *Container) ApplicationUseCase() (authUseCase.ApplicationUseCase, error) {
	err := c.once(&c.auth.applicationInit, "applicationUseCase", func() error {
		if err := c.authDependencies(); err != nil {
			return err
		}
		txManager, err := c.TxManager()
		if err != nil {
			return fmt.Errorf("failed to get tx manager for application use case: %w", err)
		}

		baseUseCase := authUseCase.NewApplicationUseCase(
			c.config,
			txManager,
			c.auth.appRepo,
			c.auth.handshakeRepo,
			c.auth.sessionRepo,
			c.auth.keyService,
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for application use case: %w", err)
			}
			c.auth.applicationUseCase = authUseCase.NewApplicationUseCaseWithMetrics(baseUseCase, businessMetrics)
			return nil
		}

		c.auth.applicationUseCase = baseUseCase
		return nil
	})
	return c.auth.applicationUseCase, err
}

// SessionUseCase returns the session use case.
func (c *Container) SessionUseCase() (authUseCase.SessionUseCase, error) {
	err := c.once(&c.auth.sessionInit, "sessionUseCase", func() error {
		if err := c.authDependencies(); err != nil {
			return err
		}
		userRepo, err := c.UserRepository()
		if err != nil {
			return err
		}

		baseUseCase := authUseCase.NewSessionUseCase(
			c.config,
			c.auth.sessionRepo,
			c.auth.handshakeRepo,
			userRepo,
			c.auth.signer,
		)

		if c.config.MetricsEnabled {
			businessMetrics, err := c.BusinessMetrics()
			if err != nil {
				return fmt.Errorf("failed to get business metrics for session use case: %w", err)
			}
			c.auth.sessionUseCase = authUseCase.NewSessionUseCaseWithMetrics(baseUseCase, businessMetrics)
			return nil
		}

		c.auth.sessionUseCase = baseUseCase
		return nil
	})
	return c.auth.sessionUseCase, err
}

// Sweeper returns the background job deleting expired sessions and handshakes.
func (c *Container) Sweeper() (*authUseCase.Sweeper, error) {
	sessionUseCase, err := c.SessionUseCase()
	if err != nil {
		return nil, fmt.Errorf("failed to get session use case for sweeper: %w", err)
	}
	return authUseCase.NewSweeper(sessionUseCase, c.config.SweepInterval, c.config.SweepGrace, c.Logger()), nil
}

// HandshakeHandler returns the HTTP handler for the application handshake.
func (c *Container) HandshakeHandler() (*authHTTP.HandshakeHandler, error) {
	useCase, err := c.HandshakeUseCase()
	if err != nil {
		return nil, err
	}
	return authHTTP.NewHandshakeHandler(useCase, c.Logger()), nil
}

// ApplicationHandler returns the HTTP handler for application management.
func (c *Container) ApplicationHandler() (*authHTTP.ApplicationHandler, error) {
	useCase, err := c.ApplicationUseCase()
	if err != nil {
		return nil, err
	}
	return authHTTP.NewApplicationHandler(useCase, c.Logger()), nil
}

// SessionHandler returns the HTTP handler for session listing and revocation.
func (c *Container) SessionHandler() (*authHTTP.SessionHandler, error) {
	useCase, err := c.SessionUseCase()
	if err != nil {
		return nil, err
	}
	return authHTTP.NewSessionHandler(useCase, c.Logger()), nil
}
