// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	"time"

	"github.com/google/uuid"
)

// UserResponse is the public view of a user.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Slug      string    `json:"slug"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// RelationshipsResponse carries follower counts.
type RelationshipsResponse struct {
	Followers int64 `json:"followers"`
	Following int64 `json:"following"`
}

// ProfileResponse is a user with optional relationship counts.
type ProfileResponse struct {
	UserResponse
	Relationships *RelationshipsResponse `json:"relationships,omitempty"`
}

// SettingsResponse carries the moderation settings of the acting user.
type SettingsResponse struct {
	BlockedWords               []string `json:"blocked_words"`
	SafeMode                   bool     `json:"safe_mode"`
	DropQuestionsOnBlockedWord bool     `json:"drop_questions_on_blocked_word"`
	AllowAnonymous             bool     `json:"allow_anonymous"`
}

// MeResponse is the acting user's own profile, settings included.
type MeResponse struct {
	ProfileResponse
	Settings SettingsResponse `json:"settings"`
}

// BlockedWordsResponse lists the blocked words of the acting user.
type BlockedWordsResponse struct {
	Words []string `json:"words"`
}
