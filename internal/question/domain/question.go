// Package domain defines the question entity and its limits.
package domain

import (
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/questionit/api/internal/errors"
)

// Question limits.
const (
	MaxContentLength    = 500
	MaxPollOptionLength = 64
	MinPollOptions      = 2
	MaxPollOptions      = 4
	// MaxNewLines is the number of line breaks kept in a question; later ones become spaces.
	MaxNewLines = 10
)

// Question is a message sent to a user, optionally carrying poll options.
type Question struct {
	ID         uuid.UUID
	ReceiverID uuid.UUID
	// OwnerID is the public emitter, nil for anonymous questions.
	OwnerID *uuid.UUID
	// PrivateOwnerID is the authenticated emitter, kept even for anonymous questions.
	PrivateOwnerID *uuid.UUID
	Content        string
	PollOptions    []string
	EmitterIP      string
	Muted          bool
	AnsweredAt     *time.Time
	CreatedAt      time.Time
}

// IsAnonymous reports whether the emitter is hidden.
func (q *Question) IsAnonymous() bool {
	return q.OwnerID == nil
}

// IsPending reports whether the question is still waiting for an answer.
func (q *Question) IsPending() bool {
	return q.AnsweredAt == nil
}

// Texts returns the content followed by the poll options, the inputs of moderation.
func (q *Question) Texts() []string {
	texts := make([]string, 0, 1+len(q.PollOptions))
	texts = append(texts, q.Content)
	return append(texts, q.PollOptions...)
}

// AskInput is a question submission.
type AskInput struct {
	ReceiverID  uuid.UUID
	Content     string
	PollOptions []string
	Anonymous   bool
	IP          string
}

// AskOutput is the outcome of a submission. Dropped questions are neither stored nor
// reported to the emitter as an error.
type AskOutput struct {
	Question *Question
	Dropped  bool
}

var repeatedNewLines = regexp.MustCompile(`\n+`)

// CleanContent keeps the first MaxNewLines line breaks, turns the remaining ones and
// tabs into spaces, collapses blank lines and trims the result.
func CleanContent(text string) string {
	parts := strings.Split(text, "\n")
	if len(parts) > MaxNewLines {
		text = strings.Join(parts[:MaxNewLines], "\n") + " " + strings.Join(parts[MaxNewLines:], " ")
	}
	text = repeatedNewLines.ReplaceAllString(text, "\n")
	text = strings.ReplaceAll(text, "\t", " ")
	return strings.TrimSpace(text)
}

// Domain-specific errors for question operations.
var (
	// ErrAnonymousQuestionsNotAllowed indicates the receiver refuses anonymous questions.
	ErrAnonymousQuestionsNotAllowed = errors.Coded(
		errors.ErrForbidden,
		"dont_allow_anonymous_questions",
		"this user does not accept anonymous questions",
	)

	// ErrCantSendQuestionToYourself indicates a signed question targeting its own emitter.
	ErrCantSendQuestionToYourself = errors.Coded(
		errors.ErrBadRequest,
		"cant_send_question_to_yourself",
		"you cannot send a question to yourself",
	)
)
