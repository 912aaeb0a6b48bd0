package usecase

import (
	"context"
	"log/slog"

	"github.com/questionit/api/internal/outbox/domain"
)

// LoggingEventProcessor logs events without delivering them anywhere. It is used
// when no message broker is configured.
type LoggingEventProcessor struct {
	logger *slog.Logger
}

// NewLoggingEventProcessor creates a LoggingEventProcessor. A nil logger discards output.
func NewLoggingEventProcessor(logger *slog.Logger) *LoggingEventProcessor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &LoggingEventProcessor{logger: logger}
}

// Process logs known event types. Undecodable payloads are an error so the event is
// retried and eventually marked failed.
func (p *LoggingEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	switch event.EventType {
	case domain.EventTypeUserCreated:
		payload, err := domain.DecodePayload[domain.UserCreatedPayload](event)
		if err != nil {
			return err
		}
		p.logger.InfoContext(ctx, "user created",
			slog.String("user_id", payload.UserID.String()),
			slog.String("slug", payload.Slug),
		)
	case domain.EventTypeQuestionReceived:
		payload, err := domain.DecodePayload[domain.QuestionReceivedPayload](event)
		if err != nil {
			return err
		}
		p.logger.InfoContext(ctx, "question received",
			slog.String("question_id", payload.QuestionID.String()),
			slog.String("receiver_id", payload.ReceiverID.String()),
			slog.Bool("anonymous", payload.EmitterID == nil),
			slog.Bool("is_poll", payload.IsPoll),
		)
	default:
		p.logger.WarnContext(ctx, "unknown outbox event type", slog.String("event_type", event.EventType))
	}
	return nil
}
