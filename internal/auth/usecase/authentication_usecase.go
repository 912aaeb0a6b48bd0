package usecase

import (
	"context"
	"crypto/subtle"
	"errors"
	"log/slog"
	"time"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authService "github.com/questionit/api/internal/auth/service"
)

// authenticationUseCase implements AuthenticationUseCase.
type authenticationUseCase struct {
	sessionRepo SessionRepository
	appRepo     ApplicationRepository
	userRepo    UserRepository
	bans        BanChecker
	signer      authService.CredentialSigner
	keyService  authService.KeyService
	logger      *slog.Logger
	now         func() time.Time
}

// Authenticate resolves a bearer credential.
//
// This method:
// 1. Verifies the credential signature and expiry
// 2. Loads the session by jti; a missing or expired row means the credential was revoked
// 3. For application credentials, checks the application still exists with the same key
// 4. Records the last use of the session
// 5. Loads the user and rejects banned users
// 6. Resolves the effective rights
//
// Application sessions whose application is gone or whose key was rotated are deleted
// on the way out.
func (a *authenticationUseCase) Authenticate(
	ctx context.Context,
	raw string,
	ip string,
) (*authDomain.AuthContext, error) {
	claims, err := a.signer.Verify(raw)
	if err != nil {
		return nil, authDomain.ErrInvalidExpiredToken
	}

	session, err := a.sessionRepo.GetByJTI(ctx, claims.ID())
	if err != nil {
		if errors.Is(err, authDomain.ErrSessionNotFound) {
			return nil, authDomain.ErrInvalidExpiredToken
		}
		return nil, err
	}

	now := a.now()
	if session.IsExpired(now) || session.UserID != claims.Subject() {
		return nil, authDomain.ErrInvalidExpiredToken
	}

	if appClaims, ok := claims.(authDomain.ApplicationClaims); ok {
		if err := a.checkApplication(ctx, session, appClaims); err != nil {
			return nil, err
		}
	}

	session.Touch(ip, now)
	if err := a.sessionRepo.Touch(ctx, session); err != nil {
		return nil, err
	}

	user, err := a.userRepo.GetByID(ctx, claims.Subject())
	if err != nil {
		return nil, err
	}

	if a.bans.IsAccountBanned(user.ID.String()) ||
		(user.TwitterID != "" && a.bans.IsTwitterIDBanned(user.TwitterID)) {
		return nil, authDomain.ErrBannedUser
	}

	return &authDomain.AuthContext{
		User:    user,
		Rights:  authDomain.EffectiveRights(claims),
		Session: session,
		Claims:  claims,
	}, nil
}

func (a *authenticationUseCase) checkApplication(
	ctx context.Context,
	session *authDomain.Session,
	claims authDomain.ApplicationClaims,
) error {
	app, err := a.appRepo.GetByID(ctx, claims.ApplicationID)
	if err != nil {
		if !errors.Is(err, authDomain.ErrApplicationNotFound) {
			return err
		}
		a.dropSession(ctx, session)
		return authDomain.ErrInvalidExpiredToken
	}

	fingerprint := a.keyService.Fingerprint(app.Key)
	if subtle.ConstantTimeCompare([]byte(fingerprint), []byte(claims.KeyFingerprint)) != 1 {
		a.dropSession(ctx, session)
		return authDomain.ErrInvalidExpiredToken
	}
	return nil
}

// dropSession removes a session that can never authenticate again.
func (a *authenticationUseCase) dropSession(ctx context.Context, session *authDomain.Session) {
	err := a.sessionRepo.DeleteByJTI(ctx, session.JTI)
	if err != nil && !errors.Is(err, authDomain.ErrSessionNotFound) && a.logger != nil {
		a.logger.Warn("failed to delete stale session",
			slog.String("session_id", session.ID.String()),
			slog.Any("error", err),
		)
	}
}

// AuthenticateOrAnonymous resolves a bearer credential when one is present. Only a
// rejected credential (invalid, expired, revoked, or its user deleted) falls back to
// anonymous access; banned users and storage failures are returned.
func (a *authenticationUseCase) AuthenticateOrAnonymous(
	ctx context.Context,
	raw string,
	ip string,
) (*authDomain.AuthContext, error) {
	if raw == "" {
		return authDomain.Anonymous(), nil
	}

	auth, err := a.Authenticate(ctx, raw, ip)
	switch {
	case err == nil:
		return auth, nil
	case errors.Is(err, authDomain.ErrInvalidExpiredToken), errors.Is(err, authDomain.ErrUserNotFound):
		return authDomain.Anonymous(), nil
	default:
		return nil, err
	}
}

// NewAuthenticationUseCase creates a new AuthenticationUseCase with the provided dependencies.
func NewAuthenticationUseCase(
	sessionRepo SessionRepository,
	appRepo ApplicationRepository,
	userRepo UserRepository,
	bans BanChecker,
	signer authService.CredentialSigner,
	keyService authService.KeyService,
	logger *slog.Logger,
) AuthenticationUseCase {
	return &authenticationUseCase{
		sessionRepo: sessionRepo,
		appRepo:     appRepo,
		userRepo:    userRepo,
		bans:        bans,
		signer:      signer,
		keyService:  keyService,
		logger:      logger,
		now:         func() time.Time { return time.Now().UTC() },
	}
}
