// Package domain defines the core user domain entities and types.
package domain

import (
	"time"

	"github.com/google/uuid"

	"github.com/questionit/api/internal/errors"
)

// User represents a platform account.
type User struct {
	ID        uuid.UUID
	Slug      string
	Name      string
	TwitterID string
	// BlockedWords are matched whole-word and case-insensitive against incoming questions.
	BlockedWords []string
	// SafeMode enables the global muted-words dictionary for incoming questions.
	SafeMode bool
	// DropQuestionsOnBlockedWord discards matching questions instead of muting them.
	DropQuestionsOnBlockedWord bool
	AllowAnonymous             bool
	CreatedAt                  time.Time
	UpdatedAt                  time.Time
}

// Relationships holds follower counts, disclosed only to callers allowed to read them.
type Relationships struct {
	Followers int64
	Following int64
}

// Profile is the public view of a user.
type Profile struct {
	User          *User
	Relationships *Relationships
}

// CreateUserInput contains the data needed to create a user.
type CreateUserInput struct {
	Slug      string
	Name      string
	TwitterID string
}

// UpdateSettingsInput changes moderation and privacy settings. Nil fields keep their value.
type UpdateSettingsInput struct {
	SafeMode                   *bool
	DropQuestionsOnBlockedWord *bool
	AllowAnonymous             *bool
}

// Domain-specific errors for user operations.
var (
	// ErrUserNotFound indicates the requested user does not exist.
	ErrUserNotFound = errors.Coded(errors.ErrNotFound, "user_not_found", "user not found")

	// ErrUserAlreadyExists indicates a user with the same slug or Twitter id already exists.
	ErrUserAlreadyExists = errors.Coded(errors.ErrConflict, "user_already_exists", "user already exists")
)
