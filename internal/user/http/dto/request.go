// Package dto provides data transfer objects for the user HTTP layer.
package dto

import (
	validation "github.com/jellydator/validation"

	"github.com/questionit/api/internal/user/domain"
)

// BlockedWordsRequest replaces the blocked words list. Word rules are enforced by the use case.
type BlockedWordsRequest struct {
	Words []string `json:"words"`
}

// Validate checks the list size.
func (r *BlockedWordsRequest) Validate() error {
	return validation.ValidateStruct(r,
		validation.Field(&r.Words, validation.NotNil, validation.Length(0, 256)),
	)
}

// SettingsRequest changes moderation and privacy settings. Omitted fields keep their value.
type SettingsRequest struct {
	SafeMode                   *bool `json:"safe_mode"`
	DropQuestionsOnBlockedWord *bool `json:"drop_questions_on_blocked_word"`
	AllowAnonymous             *bool `json:"allow_anonymous"`
}

// ToDomain converts the request to the use case input.
func (r *SettingsRequest) ToDomain() *domain.UpdateSettingsInput {
	return &domain.UpdateSettingsInput{
		SafeMode:                   r.SafeMode,
		DropQuestionsOnBlockedWord: r.DropQuestionsOnBlockedWord,
		AllowAnonymous:             r.AllowAnonymous,
	}
}
