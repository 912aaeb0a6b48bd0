// Package usecase defines business logic interfaces for authentication, the application
// handshake, application management and sessions.
package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	userDomain "github.com/questionit/api/internal/user/domain"
)

// SessionRepository defines persistence operations for sessions.
// Implementations must support transaction-aware operations via context propagation.
type SessionRepository interface {
	// Create stores a new session.
	Create(ctx context.Context, session *authDomain.Session) error

	// GetByJTI retrieves a session by credential identifier. Returns ErrSessionNotFound if not found.
	GetByJTI(ctx context.Context, jti string) (*authDomain.Session, error)

	// Touch persists the last use of a session.
	Touch(ctx context.Context, session *authDomain.Session) error

	// ListByUser returns the sessions of a user that are still valid at now.
	ListByUser(ctx context.Context, userID uuid.UUID, now time.Time) ([]*authDomain.Session, error)

	// DeleteByJTI removes a session. Returns ErrSessionNotFound if nothing was deleted.
	DeleteByJTI(ctx context.Context, jti string) error

	DeleteByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error)
	DeleteByUserAndApplication(ctx context.Context, userID, applicationID uuid.UUID) (int64, error)
	DeleteExpired(ctx context.Context, before time.Time) (int64, error)
	CountExpired(ctx context.Context, before time.Time) (int64, error)
}

// ApplicationRepository defines persistence operations for third-party applications.
// Implementations must support transaction-aware operations via context propagation.
type ApplicationRepository interface {
	Create(ctx context.Context, app *authDomain.Application) error
	Update(ctx context.Context, app *authDomain.Application) error

	// GetByID retrieves an application. Returns ErrApplicationNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Application, error)

	// GetByKey retrieves an application by key. Returns ErrApplicationNotFound if not found.
	GetByKey(ctx context.Context, key string) (*authDomain.Application, error)

	ListByOwner(ctx context.Context, ownerID uuid.UUID) ([]*authDomain.Application, error)
	ListSubscribed(ctx context.Context, userID uuid.UUID, now time.Time) ([]*authDomain.Application, error)
	CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error)
	NameExists(ctx context.Context, ownerID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// HandshakeTokenRepository defines persistence operations for handshake tokens.
// Implementations must support transaction-aware operations via context propagation.
type HandshakeTokenRepository interface {
	Create(ctx context.Context, token *authDomain.HandshakeToken) error

	// GetByToken retrieves a handshake token. Returns ErrHandshakeTokenNotFound if not found.
	GetByToken(ctx context.Context, token string) (*authDomain.HandshakeToken, error)

	// GetByTokenForUpdate is GetByToken holding a row lock for the surrounding transaction.
	GetByTokenForUpdate(ctx context.Context, token string) (*authDomain.HandshakeToken, error)

	// Approve sets owner and validator hash. Returns ErrTokenAlreadyApproved if an owner is set.
	Approve(ctx context.Context, id uuid.UUID, ownerID uuid.UUID, validatorHash string) error

	// Delete removes a handshake token. Returns ErrHandshakeTokenNotFound if nothing was deleted.
	Delete(ctx context.Context, id uuid.UUID) error

	DeleteByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error)
	DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error)
	CountCreatedBefore(ctx context.Context, before time.Time) (int64, error)
}

// UserRepository is the read side of users needed to resolve the acting user.
type UserRepository interface {
	// GetByID retrieves a user. Returns ErrUserNotFound if not found.
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)

	GetRelationships(ctx context.Context, id uuid.UUID) (*userDomain.Relationships, error)
}

// BanChecker answers ban-list lookups against the current snapshot.
type BanChecker interface {
	IsAccountBanned(accountID string) bool
	IsTwitterIDBanned(twitterID string) bool
}

// AuthenticationUseCase turns a bearer credential into the authorization context of a request.
type AuthenticationUseCase interface {
	// Authenticate verifies raw, checks its session is still live and resolves the acting
	// user and effective rights. The session's last use is recorded from ip.
	//
	// Returns ErrInvalidExpiredToken for bad, expired or revoked credentials, ErrUserNotFound
	// when the user is gone and ErrBannedUser when the user is banned.
	Authenticate(ctx context.Context, raw string, ip string) (*authDomain.AuthContext, error)

	// AuthenticateOrAnonymous is Authenticate that falls back to an anonymous context on
	// every failure except ErrBannedUser.
	AuthenticateOrAnonymous(ctx context.Context, raw string, ip string) (*authDomain.AuthContext, error)
}

// HandshakeUseCase implements the delegated-application handshake.
type HandshakeUseCase interface {
	// RequestToken creates a pending handshake for the application owning the key.
	RequestToken(
		ctx context.Context,
		input *authDomain.RequestHandshakeInput,
	) (*authDomain.RequestHandshakeOutput, error)

	// Details describes a pending handshake before the user approves it.
	Details(ctx context.Context, token string) (*authDomain.HandshakeDetails, error)

	// Approve attaches user to a pending handshake, or deletes it on denial.
	Approve(
		ctx context.Context,
		user *userDomain.User,
		input *authDomain.ApproveHandshakeInput,
	) (*authDomain.ApproveHandshakeOutput, error)

	// Exchange consumes an approved handshake and issues the application session.
	// At most one exchange per handshake succeeds.
	Exchange(
		ctx context.Context,
		input *authDomain.ExchangeHandshakeInput,
	) (*authDomain.ExchangeHandshakeOutput, error)
}

// ApplicationUseCase manages the applications a user registered and the ones they granted access to.
type ApplicationUseCase interface {
	Create(
		ctx context.Context,
		ownerID uuid.UUID,
		input *authDomain.CreateApplicationInput,
	) (*authDomain.Application, error)

	Update(
		ctx context.Context,
		ownerID uuid.UUID,
		id uuid.UUID,
		input *authDomain.UpdateApplicationInput,
	) (*authDomain.Application, error)

	// RegenerateKey replaces the application key, which invalidates every credential
	// issued under the previous one.
	RegenerateKey(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) (*authDomain.Application, error)

	// Delete removes an application with its pending handshakes and sessions.
	Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error

	List(ctx context.Context, ownerID uuid.UUID) ([]*authDomain.Application, error)
	ListSubscribed(ctx context.Context, userID uuid.UUID) ([]*authDomain.Application, error)

	// Unsubscribe revokes every session the user granted to an application.
	Unsubscribe(ctx context.Context, userID uuid.UUID, applicationID uuid.UUID) error
}

// SessionUseCase manages first-party sessions and session lifecycle.
type SessionUseCase interface {
	// IssueFirstParty creates a session for the platform's own client.
	IssueFirstParty(ctx context.Context, userID uuid.UUID, ip string) (*authDomain.IssueSessionOutput, error)

	List(ctx context.Context, auth *authDomain.AuthContext) ([]*authDomain.SessionView, error)

	// Revoke deletes a session. Only first-party credentials may name a session other
	// than their own; any other caller revokes the session it authenticated with.
	Revoke(ctx context.Context, auth *authDomain.AuthContext, jti string) error

	// CleanupExpired deletes sessions expired for longer than grace and handshake tokens
	// past their window plus grace. With dryRun it only counts them.
	CleanupExpired(ctx context.Context, grace time.Duration, dryRun bool) (*authDomain.CleanupResult, error)
}
