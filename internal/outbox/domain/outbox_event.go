// Package domain defines the core outbox domain entities and types.
package domain

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	apperrors "github.com/questionit/api/internal/errors"
)

// OutboxEventStatus represents the status of an outbox event
type OutboxEventStatus string

const (
	OutboxEventStatusPending   OutboxEventStatus = "pending"
	OutboxEventStatusProcessed OutboxEventStatus = "processed"
	OutboxEventStatusFailed    OutboxEventStatus = "failed"
)

// Event types written to the outbox.
const (
	EventTypeUserCreated      = "user.created"
	EventTypeQuestionReceived = "question.received"
)

// OutboxEvent represents an event in the transactional outbox pattern
type OutboxEvent struct {
	ID          uuid.UUID
	EventType   string
	Payload     string
	Status      OutboxEventStatus
	Retries     int
	LastError   *string
	ProcessedAt *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// UserCreatedPayload is the body of a user.created event.
type UserCreatedPayload struct {
	UserID uuid.UUID `json:"user_id"`
	Slug   string    `json:"slug"`
	Name   string    `json:"name"`
}

// QuestionReceivedPayload is the body of a question.received event. EmitterID is
// omitted for anonymous questions.
type QuestionReceivedPayload struct {
	QuestionID uuid.UUID  `json:"question_id"`
	ReceiverID uuid.UUID  `json:"receiver_id"`
	EmitterID  *uuid.UUID `json:"emitter_id,omitempty"`
	IsPoll     bool       `json:"is_poll"`
	CreatedAt  time.Time  `json:"created_at"`
}

// MarkProcessed records a successful delivery.
func (e *OutboxEvent) MarkProcessed(at time.Time) {
	e.Status = OutboxEventStatusProcessed
	e.ProcessedAt = &at
}

// MarkFailed records a failed delivery attempt. The event stays pending until it has
// failed maxRetries times.
func (e *OutboxEvent) MarkFailed(cause error, maxRetries int) {
	e.Retries++
	msg := cause.Error()
	e.LastError = &msg
	if e.Retries >= maxRetries {
		e.Status = OutboxEventStatusFailed
	}
}

// DecodePayload unmarshals the JSON payload of e into a T.
func DecodePayload[T any](e *OutboxEvent) (T, error) {
	var payload T
	if err := json.Unmarshal([]byte(e.Payload), &payload); err != nil {
		return payload, apperrors.Wrapf(err, "failed to decode %s payload", e.EventType)
	}
	return payload, nil
}

// NewEvent builds a pending event with payload encoded as JSON.
func NewEvent(eventType string, payload any) (*OutboxEvent, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal event payload")
	}
	return &OutboxEvent{
		ID:        uuid.Must(uuid.NewV7()),
		EventType: eventType,
		Payload:   string(body),
		Status:    OutboxEventStatusPending,
	}, nil
}
