// Package usecase implements the user business logic and orchestrates user domain operations.
package usecase

import (
	"context"
	"strings"
	"time"

	validation "github.com/jellydator/validation"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/database"
	outboxDomain "github.com/questionit/api/internal/outbox/domain"
	"github.com/questionit/api/internal/user/domain"
	appValidation "github.com/questionit/api/internal/validation"
)

// UseCase defines the interface for user business logic operations
type UseCase interface {
	Create(ctx context.Context, input *domain.CreateUserInput) (*domain.User, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetBySlug(ctx context.Context, slug string) (*domain.User, error)
	Profile(ctx context.Context, user *domain.User, withRelationships bool) (*domain.Profile, error)
	UpdateBlockedWords(ctx context.Context, auth *authDomain.AuthContext, words []string) (*domain.User, error)
	UpdateSettings(
		ctx context.Context,
		auth *authDomain.AuthContext,
		input *domain.UpdateSettingsInput,
	) (*domain.User, error)
}

// UserRepository interface defines user repository operations
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetBySlug(ctx context.Context, slug string) (*domain.User, error)
	GetRelationships(ctx context.Context, id uuid.UUID) (*domain.Relationships, error)
	UpdateBlockedWords(ctx context.Context, user *domain.User) error
	UpdateSettings(ctx context.Context, user *domain.User) error
}

// OutboxEventRepository is the write side of the outbox used by user operations
type OutboxEventRepository interface {
	Create(ctx context.Context, event *outboxDomain.OutboxEvent) error
}

// UserUseCase handles user-related business logic
type UserUseCase struct {
	txManager  database.TxManager
	userRepo   UserRepository
	outboxRepo OutboxEventRepository
	now        func() time.Time
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	txManager database.TxManager,
	userRepo UserRepository,
	outboxRepo OutboxEventRepository,
) UseCase {
	return &UserUseCase{
		txManager:  txManager,
		userRepo:   userRepo,
		outboxRepo: outboxRepo,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

func validateCreateUserInput(input *domain.CreateUserInput) error {
	err := validation.ValidateStruct(input,
		validation.Field(&input.Slug,
			validation.Required.Error("slug is required"),
			appValidation.Slug,
		),
		validation.Field(&input.Name,
			validation.Required.Error("name is required"),
			appValidation.NotBlank,
			appValidation.Name,
		),
		validation.Field(&input.TwitterID,
			appValidation.NoWhitespace,
			validation.Length(0, 64),
		),
	)
	return appValidation.WrapValidationError(err)
}

// Create registers a new user and records a user.created event in the same transaction.
// New accounts accept anonymous questions and start with safe mode enabled.
func (uc *UserUseCase) Create(ctx context.Context, input *domain.CreateUserInput) (*domain.User, error) {
	if err := validateCreateUserInput(input); err != nil {
		return nil, err
	}

	now := uc.now()
	user := &domain.User{
		ID:             uuid.Must(uuid.NewV7()),
		Slug:           input.Slug,
		Name:           strings.TrimSpace(input.Name),
		TwitterID:      input.TwitterID,
		BlockedWords:   []string{},
		SafeMode:       true,
		AllowAnonymous: true,
		CreatedAt:      now,
		UpdatedAt:      now,
	}

	err := uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		if err := uc.userRepo.Create(ctx, user); err != nil {
			return err
		}

		event, err := outboxDomain.NewEvent(outboxDomain.EventTypeUserCreated, outboxDomain.UserCreatedPayload{
			UserID: user.ID,
			Slug:   user.Slug,
			Name:   user.Name,
		})
		if err != nil {
			return err
		}
		return uc.outboxRepo.Create(ctx, event)
	})
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Get retrieves a user by ID
func (uc *UserUseCase) Get(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return uc.userRepo.GetByID(ctx, id)
}

// GetBySlug retrieves a user by slug
func (uc *UserUseCase) GetBySlug(ctx context.Context, slug string) (*domain.User, error) {
	return uc.userRepo.GetBySlug(ctx, slug)
}

// Profile builds the public profile of user. Relationship counts are loaded only
// when withRelationships is set.
func (uc *UserUseCase) Profile(
	ctx context.Context,
	user *domain.User,
	withRelationships bool,
) (*domain.Profile, error) {
	profile := &domain.Profile{User: user}
	if !withRelationships {
		return profile, nil
	}

	relationships, err := uc.userRepo.GetRelationships(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	profile.Relationships = relationships
	return profile, nil
}

// acting returns the user behind auth, rejecting anonymous contexts.
func acting(auth *authDomain.AuthContext, caps ...authDomain.Rights) (*domain.User, error) {
	if auth.IsAnonymous() {
		return nil, authDomain.ErrInvalidExpiredToken
	}
	if err := authDomain.RequireCapabilities(auth, caps...); err != nil {
		return nil, err
	}
	return auth.User, nil
}

// UpdateBlockedWords replaces the blocked words of the acting user. Words are trimmed
// and deduplicated case-insensitively, keeping the first spelling.
func (uc *UserUseCase) UpdateBlockedWords(
	ctx context.Context,
	auth *authDomain.AuthContext,
	words []string,
) (*domain.User, error) {
	user, err := acting(auth, authDomain.ManageBlockedWords)
	if err != nil {
		return nil, err
	}

	cleaned := make([]string, 0, len(words))
	seen := make(map[string]struct{}, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		key := strings.ToLower(word)
		if _, ok := seen[key]; ok {
			continue
		}
		seen[key] = struct{}{}
		cleaned = append(cleaned, word)
	}

	err = validation.Validate(cleaned, validation.Each(appValidation.BlockedWord))
	if err != nil {
		return nil, appValidation.WrapValidationError(err)
	}

	updated := *user
	updated.BlockedWords = cleaned
	updated.UpdatedAt = uc.now()
	if err := uc.userRepo.UpdateBlockedWords(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}

// UpdateSettings changes the moderation and privacy settings of the acting user.
func (uc *UserUseCase) UpdateSettings(
	ctx context.Context,
	auth *authDomain.AuthContext,
	input *domain.UpdateSettingsInput,
) (*domain.User, error) {
	user, err := acting(auth, authDomain.InternalUseOnly)
	if err != nil {
		return nil, err
	}

	updated := *user
	if input.SafeMode != nil {
		updated.SafeMode = *input.SafeMode
	}
	if input.DropQuestionsOnBlockedWord != nil {
		updated.DropQuestionsOnBlockedWord = *input.DropQuestionsOnBlockedWord
	}
	if input.AllowAnonymous != nil {
		updated.AllowAnonymous = *input.AllowAnonymous
	}
	updated.UpdatedAt = uc.now()

	if err := uc.userRepo.UpdateSettings(ctx, &updated); err != nil {
		return nil, err
	}
	return &updated, nil
}
