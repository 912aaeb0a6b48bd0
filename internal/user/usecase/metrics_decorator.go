package usecase

import (
	"context"
	"time"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/metrics"
	"github.com/questionit/api/internal/user/domain"
)

// userUseCaseWithMetrics decorates UseCase with metrics instrumentation.
// Reads are not recorded.
type userUseCaseWithMetrics struct {
	UseCase
	metrics metrics.BusinessMetrics
}

// NewUserUseCaseWithMetrics wraps a UseCase with metrics recording for writes.
func NewUserUseCaseWithMetrics(useCase UseCase, m metrics.BusinessMetrics) UseCase {
	return &userUseCaseWithMetrics{
		UseCase: useCase,
		metrics: m,
	}
}

func (u *userUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, err error) {
	status := "success"
	if err != nil {
		status = "error"
	}
	u.metrics.RecordOperation(ctx, "user", operation, status)
	u.metrics.RecordDuration(ctx, "user", operation, time.Since(start), status)
}

// Create records metrics for user creation.
func (u *userUseCaseWithMetrics) Create(ctx context.Context, input *domain.CreateUserInput) (*domain.User, error) {
	start := time.Now()
	user, err := u.UseCase.Create(ctx, input)
	u.record(ctx, "create", start, err)
	return user, err
}

// UpdateBlockedWords records metrics for blocked word updates.
func (u *userUseCaseWithMetrics) UpdateBlockedWords(
	ctx context.Context,
	auth *authDomain.AuthContext,
	words []string,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.UseCase.UpdateBlockedWords(ctx, auth, words)
	u.record(ctx, "update_blocked_words", start, err)
	return user, err
}

// UpdateSettings records metrics for settings updates.
func (u *userUseCaseWithMetrics) UpdateSettings(
	ctx context.Context,
	auth *authDomain.AuthContext,
	input *domain.UpdateSettingsInput,
) (*domain.User, error) {
	start := time.Now()
	user, err := u.UseCase.UpdateSettings(ctx, auth, input)
	u.record(ctx, "update_settings", start, err)
	return user, err
}
