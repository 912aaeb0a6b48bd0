package usecase

import (
	"context"
	"log/slog"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/questionit/api/internal/outbox/domain"
)

// Publisher sends a message to a named queue.
type Publisher interface {
	Publish(ctx context.Context, queue string, msg amqp.Publishing) error
}

// AMQPEventProcessor forwards question notifications to a message queue. Other
// event types are handed to the fallback processor.
type AMQPEventProcessor struct {
	publisher Publisher
	queue     string
	fallback  EventProcessor
	logger    *slog.Logger
}

// NewAMQPEventProcessor creates a new AMQPEventProcessor
func NewAMQPEventProcessor(
	publisher Publisher,
	queue string,
	fallback EventProcessor,
	logger *slog.Logger,
) *AMQPEventProcessor {
	return &AMQPEventProcessor{
		publisher: publisher,
		queue:     queue,
		fallback:  fallback,
		logger:    logger,
	}
}

// Process publishes question.received payloads as persistent JSON messages.
func (p *AMQPEventProcessor) Process(ctx context.Context, event *domain.OutboxEvent) error {
	if event.EventType != domain.EventTypeQuestionReceived {
		return p.fallback.Process(ctx, event)
	}

	msg := amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    event.ID.String(),
		Type:         event.EventType,
		Timestamp:    time.Now().UTC(),
		Body:         []byte(event.Payload),
	}
	if err := p.publisher.Publish(ctx, p.queue, msg); err != nil {
		return err
	}

	if p.logger != nil {
		p.logger.Debug("published notification",
			slog.String("event_id", event.ID.String()),
			slog.String("queue", p.queue),
		)
	}
	return nil
}
