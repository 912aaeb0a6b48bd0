package usecase

import (
	"context"
	"time"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/metrics"
	"github.com/questionit/api/internal/question/domain"
)

// questionUseCaseWithMetrics decorates QuestionUseCase with metrics instrumentation.
type questionUseCaseWithMetrics struct {
	next    QuestionUseCase
	metrics metrics.BusinessMetrics
}

// NewQuestionUseCaseWithMetrics wraps a QuestionUseCase with metrics recording.
// Successful submissions are also counted by moderation outcome.
func NewQuestionUseCaseWithMetrics(useCase QuestionUseCase, m metrics.BusinessMetrics) QuestionUseCase {
	return &questionUseCaseWithMetrics{
		next:    useCase,
		metrics: m,
	}
}

func (q *questionUseCaseWithMetrics) record(ctx context.Context, operation string, start time.Time, status string) {
	q.metrics.RecordOperation(ctx, "question", operation, status)
	q.metrics.RecordDuration(ctx, "question", operation, time.Since(start), status)
}

// Ask records metrics for question submission.
func (q *questionUseCaseWithMetrics) Ask(
	ctx context.Context,
	auth *authDomain.AuthContext,
	input *domain.AskInput,
) (*domain.AskOutput, error) {
	start := time.Now()
	output, err := q.next.Ask(ctx, auth, input)

	if err != nil {
		q.record(ctx, "ask", start, "error")
		return output, err
	}

	outcome := metrics.QuestionStored
	switch {
	case output.Dropped:
		outcome = metrics.QuestionDropped
	case output.Question.Muted:
		outcome = metrics.QuestionMuted
	}
	q.record(ctx, "ask", start, "success")
	q.metrics.RecordQuestion(ctx, outcome)
	return output, nil
}

// DeletePendingMuted records metrics for muted question cleanup.
func (q *questionUseCaseWithMetrics) DeletePendingMuted(ctx context.Context, auth *authDomain.AuthContext) (int64, error) {
	start := time.Now()
	deleted, err := q.next.DeletePendingMuted(ctx, auth)

	status := "success"
	if err != nil {
		status = "error"
	}
	q.record(ctx, "delete_pending_muted", start, status)
	return deleted, err
}
