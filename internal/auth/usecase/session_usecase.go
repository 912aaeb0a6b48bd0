package usecase

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	authService "github.com/questionit/api/internal/auth/service"
	"github.com/questionit/api/internal/config"
)

// sessionUseCase implements SessionUseCase.
type sessionUseCase struct {
	config        *config.Config
	sessionRepo   SessionRepository
	handshakeRepo HandshakeTokenRepository
	userRepo      UserRepository
	signer        authService.CredentialSigner
	now           func() time.Time
}

// IssueFirstParty signs a first-party credential for userID and stores its session.
func (s *sessionUseCase) IssueFirstParty(
	ctx context.Context,
	userID uuid.UUID,
	ip string,
) (*authDomain.IssueSessionOutput, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	claims := authDomain.FirstPartyClaims{
		UserID:    user.ID,
		JTI:       uuid.NewString(),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.config.FirstPartySessionExpiration),
	}

	token, err := s.signer.Sign(claims)
	if err != nil {
		return nil, err
	}

	session := &authDomain.Session{
		ID:          uuid.Must(uuid.NewV7()),
		JTI:         claims.JTI,
		UserID:      user.ID,
		OpenIP:      ip,
		LastIP:      ip,
		LastLoginAt: now,
		ExpiresAt:   claims.ExpiresAt,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, err
	}

	return &authDomain.IssueSessionOutput{Token: token, Session: session}, nil
}

// List returns the live sessions of the acting user, flagging the one in use.
func (s *sessionUseCase) List(ctx context.Context, auth *authDomain.AuthContext) ([]*authDomain.SessionView, error) {
	if auth.IsAnonymous() {
		return nil, authDomain.ErrInvalidExpiredToken
	}

	sessions, err := s.sessionRepo.ListByUser(ctx, auth.User.ID, s.now())
	if err != nil {
		return nil, err
	}

	views := make([]*authDomain.SessionView, 0, len(sessions))
	for _, session := range sessions {
		views = append(views, &authDomain.SessionView{
			Session: session,
			Current: auth.Session != nil && session.JTI == auth.Session.JTI,
		})
	}
	return views, nil
}

// Revoke deletes a session of the acting user.
func (s *sessionUseCase) Revoke(ctx context.Context, auth *authDomain.AuthContext, jti string) error {
	if auth.IsAnonymous() || auth.Session == nil {
		return authDomain.ErrInvalidExpiredToken
	}

	if jti == "" || !auth.Rights.Has(authDomain.InternalUseOnly) {
		jti = auth.Session.JTI
	}

	session, err := s.sessionRepo.GetByJTI(ctx, jti)
	if err != nil {
		if errors.Is(err, authDomain.ErrSessionNotFound) {
			return authDomain.ErrResourceNotFound
		}
		return err
	}
	if session.UserID != auth.User.ID {
		return authDomain.ErrForbidden
	}

	if err := s.sessionRepo.DeleteByJTI(ctx, jti); err != nil {
		if errors.Is(err, authDomain.ErrSessionNotFound) {
			return authDomain.ErrResourceNotFound
		}
		return err
	}
	return nil
}

// CleanupExpired removes sessions and handshake tokens nobody can use anymore.
func (s *sessionUseCase) CleanupExpired(
	ctx context.Context,
	grace time.Duration,
	dryRun bool,
) (*authDomain.CleanupResult, error) {
	now := s.now()
	sessionsBefore := now.Add(-grace)
	tokensBefore := now.Add(-s.config.HandshakeExpiration - grace)

	result := &authDomain.CleanupResult{DryRun: dryRun}
	var err error

	if dryRun {
		if result.Sessions, err = s.sessionRepo.CountExpired(ctx, sessionsBefore); err != nil {
			return nil, err
		}
		if result.HandshakeTokens, err = s.handshakeRepo.CountCreatedBefore(ctx, tokensBefore); err != nil {
			return nil, err
		}
		return result, nil
	}

	if result.Sessions, err = s.sessionRepo.DeleteExpired(ctx, sessionsBefore); err != nil {
		return nil, err
	}
	if result.HandshakeTokens, err = s.handshakeRepo.DeleteCreatedBefore(ctx, tokensBefore); err != nil {
		return nil, err
	}
	return result, nil
}

// NewSessionUseCase creates a new SessionUseCase with the provided dependencies.
func NewSessionUseCase(
	config *config.Config,
	sessionRepo SessionRepository,
	handshakeRepo HandshakeTokenRepository,
	userRepo UserRepository,
	signer authService.CredentialSigner,
) SessionUseCase {
	return &sessionUseCase{
		config:        config,
		sessionRepo:   sessionRepo,
		handshakeRepo: handshakeRepo,
		userRepo:      userRepo,
		signer:        signer,
		now:           func() time.Time { return time.Now().UTC() },
	}
}
