package dto

import (
	"github.com/questionit/api/internal/user/domain"
)

// ToUserResponse converts a domain User to its public representation.
func ToUserResponse(user *domain.User) UserResponse {
	return UserResponse{
		ID:        user.ID,
		Slug:      user.Slug,
		Name:      user.Name,
		CreatedAt: user.CreatedAt,
	}
}

// ToProfileResponse converts a domain Profile. Relationships are omitted when not loaded.
func ToProfileResponse(profile *domain.Profile) ProfileResponse {
	response := ProfileResponse{UserResponse: ToUserResponse(profile.User)}
	if profile.Relationships != nil {
		response.Relationships = &RelationshipsResponse{
			Followers: profile.Relationships.Followers,
			Following: profile.Relationships.Following,
		}
	}
	return response
}

// ToSettingsResponse extracts the moderation settings of a user.
func ToSettingsResponse(user *domain.User) SettingsResponse {
	words := user.BlockedWords
	if words == nil {
		words = []string{}
	}
	return SettingsResponse{
		BlockedWords:               words,
		SafeMode:                   user.SafeMode,
		DropQuestionsOnBlockedWord: user.DropQuestionsOnBlockedWord,
		AllowAnonymous:             user.AllowAnonymous,
	}
}

// ToMeResponse converts the acting user's profile and settings.
func ToMeResponse(profile *domain.Profile) MeResponse {
	return MeResponse{
		ProfileResponse: ToProfileResponse(profile),
		Settings:        ToSettingsResponse(profile.User),
	}
}

// ToBlockedWordsResponse extracts the blocked words of a user.
func ToBlockedWordsResponse(user *domain.User) BlockedWordsResponse {
	words := user.BlockedWords
	if words == nil {
		words = []string{}
	}
	return BlockedWordsResponse{Words: words}
}
