package usecase

import (
	"context"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/metrics"
	userDomain "github.com/questionit/api/internal/user/domain"
)

// record emits the operation counter and duration histogram for one call.
func record(ctx context.Context, m metrics.BusinessMetrics, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}

	m.RecordOperation(ctx, "auth", operation, status)
	m.RecordDuration(ctx, "auth", operation, time.Since(start), status)
}

// authenticationUseCaseWithMetrics decorates AuthenticationUseCase with metrics instrumentation.
type authenticationUseCaseWithMetrics struct {
	next    AuthenticationUseCase
	metrics metrics.BusinessMetrics
}

// NewAuthenticationUseCaseWithMetrics wraps an AuthenticationUseCase with metrics recording.
func NewAuthenticationUseCaseWithMetrics(useCase AuthenticationUseCase, m metrics.BusinessMetrics) AuthenticationUseCase {
	return &authenticationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Authenticate records metrics for credential authentication.
func (a *authenticationUseCaseWithMetrics) Authenticate(
	ctx context.Context,
	raw string,
	ip string,
) (*authDomain.AuthContext, error) {
	start := time.Now()
	auth, err := a.next.Authenticate(ctx, raw, ip)
	record(ctx, a.metrics, "authenticate", start, err)
	if err == nil {
		a.metrics.RecordCredential(ctx, auth.Kind())
	}
	return auth, err
}

// AuthenticateOrAnonymous records metrics for optional credential authentication.
func (a *authenticationUseCaseWithMetrics) AuthenticateOrAnonymous(
	ctx context.Context,
	raw string,
	ip string,
) (*authDomain.AuthContext, error) {
	start := time.Now()
	auth, err := a.next.AuthenticateOrAnonymous(ctx, raw, ip)
	record(ctx, a.metrics, "authenticate_optional", start, err)
	if err == nil {
		a.metrics.RecordCredential(ctx, auth.Kind())
	}
	return auth, err
}

// handshakeUseCaseWithMetrics decorates HandshakeUseCase with metrics instrumentation.
type handshakeUseCaseWithMetrics struct {
	next    HandshakeUseCase
	metrics metrics.BusinessMetrics
}

// NewHandshakeUseCaseWithMetrics wraps a HandshakeUseCase with metrics recording.
func NewHandshakeUseCaseWithMetrics(useCase HandshakeUseCase, m metrics.BusinessMetrics) HandshakeUseCase {
	return &handshakeUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// RequestToken records metrics for handshake requests.
func (h *handshakeUseCaseWithMetrics) RequestToken(
	ctx context.Context,
	input *authDomain.RequestHandshakeInput,
) (*authDomain.RequestHandshakeOutput, error) {
	start := time.Now()
	output, err := h.next.RequestToken(ctx, input)
	record(ctx, h.metrics, "handshake_request", start, err)
	return output, err
}

// Details records metrics for handshake detail lookups.
func (h *handshakeUseCaseWithMetrics) Details(ctx context.Context, token string) (*authDomain.HandshakeDetails, error) {
	start := time.Now()
	details, err := h.next.Details(ctx, token)
	record(ctx, h.metrics, "handshake_details", start, err)
	return details, err
}

// Approve records metrics for handshake approvals and denials.
func (h *handshakeUseCaseWithMetrics) Approve(
	ctx context.Context,
	user *userDomain.User,
	input *authDomain.ApproveHandshakeInput,
) (*authDomain.ApproveHandshakeOutput, error) {
	start := time.Now()
	output, err := h.next.Approve(ctx, user, input)
	record(ctx, h.metrics, "handshake_approve", start, err)
	return output, err
}

// Exchange records metrics for handshake exchanges.
func (h *handshakeUseCaseWithMetrics) Exchange(
	ctx context.Context,
	input *authDomain.ExchangeHandshakeInput,
) (*authDomain.ExchangeHandshakeOutput, error) {
	start := time.Now()
	output, err := h.next.Exchange(ctx, input)
	record(ctx, h.metrics, "handshake_exchange", start, err)
	return output, err
}

// applicationUseCaseWithMetrics decorates ApplicationUseCase with metrics instrumentation.
type applicationUseCaseWithMetrics struct {
	next    ApplicationUseCase
	metrics metrics.BusinessMetrics
}

// NewApplicationUseCaseWithMetrics wraps an ApplicationUseCase with metrics recording.
func NewApplicationUseCaseWithMetrics(useCase ApplicationUseCase, m metrics.BusinessMetrics) ApplicationUseCase {
	return &applicationUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// Create records metrics for application creation.
func (a *applicationUseCaseWithMetrics) Create(
	ctx context.Context,
	ownerID uuid.UUID,
	input *authDomain.CreateApplicationInput,
) (*authDomain.Application, error) {
	start := time.Now()
	app, err := a.next.Create(ctx, ownerID, input)
	record(ctx, a.metrics, "application_create", start, err)
	return app, err
}

// Update records metrics for application updates.
func (a *applicationUseCaseWithMetrics) Update(
	ctx context.Context,
	ownerID uuid.UUID,
	id uuid.UUID,
	input *authDomain.UpdateApplicationInput,
) (*authDomain.Application, error) {
	start := time.Now()
	app, err := a.next.Update(ctx, ownerID, id, input)
	record(ctx, a.metrics, "application_update", start, err)
	return app, err
}

// RegenerateKey records metrics for application key rotation.
func (a *applicationUseCaseWithMetrics) RegenerateKey(
	ctx context.Context,
	ownerID uuid.UUID,
	id uuid.UUID,
) (*authDomain.Application, error) {
	start := time.Now()
	app, err := a.next.RegenerateKey(ctx, ownerID, id)
	record(ctx, a.metrics, "application_regenerate_key", start, err)
	return app, err
}

// Delete records metrics for application deletion.
func (a *applicationUseCaseWithMetrics) Delete(ctx context.Context, ownerID uuid.UUID, id uuid.UUID) error {
	start := time.Now()
	err := a.next.Delete(ctx, ownerID, id)
	record(ctx, a.metrics, "application_delete", start, err)
	return err
}

// List records metrics for application listing.
func (a *applicationUseCaseWithMetrics) List(ctx context.Context, ownerID uuid.UUID) ([]*authDomain.Application, error) {
	start := time.Now()
	apps, err := a.next.List(ctx, ownerID)
	record(ctx, a.metrics, "application_list", start, err)
	return apps, err
}

// ListSubscribed records metrics for subscription listing.
func (a *applicationUseCaseWithMetrics) ListSubscribed(
	ctx context.Context,
	userID uuid.UUID,
) ([]*authDomain.Application, error) {
	start := time.Now()
	apps, err := a.next.ListSubscribed(ctx, userID)
	record(ctx, a.metrics, "subscription_list", start, err)
	return apps, err
}

// Unsubscribe records metrics for subscription removal.
func (a *applicationUseCaseWithMetrics) Unsubscribe(ctx context.Context, userID uuid.UUID, applicationID uuid.UUID) error {
	start := time.Now()
	err := a.next.Unsubscribe(ctx, userID, applicationID)
	record(ctx, a.metrics, "subscription_delete", start, err)
	return err
}

// sessionUseCaseWithMetrics decorates SessionUseCase with metrics instrumentation.
type sessionUseCaseWithMetrics struct {
	next    SessionUseCase
	metrics metrics.BusinessMetrics
}

// NewSessionUseCaseWithMetrics wraps a SessionUseCase with metrics recording.
func NewSessionUseCaseWithMetrics(useCase SessionUseCase, m metrics.BusinessMetrics) SessionUseCase {
	return &sessionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

// IssueFirstParty records metrics for first-party session issuance.
func (s *sessionUseCaseWithMetrics) IssueFirstParty(
	ctx context.Context,
	userID uuid.UUID,
	ip string,
) (*authDomain.IssueSessionOutput, error) {
	start := time.Now()
	output, err := s.next.IssueFirstParty(ctx, userID, ip)
	record(ctx, s.metrics, "session_issue", start, err)
	return output, err
}

// List records metrics for session listing.
func (s *sessionUseCaseWithMetrics) List(
	ctx context.Context,
	auth *authDomain.AuthContext,
) ([]*authDomain.SessionView, error) {
	start := time.Now()
	views, err := s.next.List(ctx, auth)
	record(ctx, s.metrics, "session_list", start, err)
	return views, err
}

// Revoke records metrics for session revocation.
func (s *sessionUseCaseWithMetrics) Revoke(ctx context.Context, auth *authDomain.AuthContext, jti string) error {
	start := time.Now()
	err := s.next.Revoke(ctx, auth, jti)
	record(ctx, s.metrics, "session_revoke", start, err)
	return err
}

// CleanupExpired records metrics for expiry sweeps.
func (s *sessionUseCaseWithMetrics) CleanupExpired(
	ctx context.Context,
	grace time.Duration,
	dryRun bool,
) (*authDomain.CleanupResult, error) {
	start := time.Now()
	result, err := s.next.CleanupExpired(ctx, grace, dryRun)
	record(ctx, s.metrics, "session_cleanup", start, err)
	return result, err
}
