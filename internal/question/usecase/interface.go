// Package usecase implements question submission and the cleanup of muted questions.
package usecase

import (
	"context"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/moderation"
	outboxDomain "github.com/questionit/api/internal/outbox/domain"
	"github.com/questionit/api/internal/question/domain"
	userDomain "github.com/questionit/api/internal/user/domain"
)

// QuestionRepository persists questions.
type QuestionRepository interface {
	Create(ctx context.Context, question *domain.Question) error
	ListPendingByReceiver(ctx context.Context, receiverID uuid.UUID) ([]*domain.Question, error)
	DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error)
}

// UserRepository resolves question receivers. Returns ErrUserNotFound if not found.
type UserRepository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*userDomain.User, error)
}

// OutboxEventRepository records notifications in the question transaction.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// IPBanChecker answers IP ban lookups, optionally counting Tor exits as banned.
type IPBanChecker interface {
	IsIPBanned(ip string, includeTor bool) bool
}

// Moderator decides whether texts must be muted for a receiver.
type Moderator interface {
	Match(ctx context.Context, texts []string, blockedWords []string, opts moderation.MatchOptions) (bool, error)
}

// QuestionUseCase handles question submission.
type QuestionUseCase interface {
	// Ask submits a question to a user. A question may be dropped silently; the output
	// reports it but callers must not disclose it to the emitter.
	Ask(ctx context.Context, auth *authDomain.AuthContext, input *domain.AskInput) (*domain.AskOutput, error)

	// DeletePendingMuted deletes the caller's unanswered questions matching their blocked
	// words and returns how many were deleted.
	DeletePendingMuted(ctx context.Context, auth *authDomain.AuthContext) (int64, error)
}
