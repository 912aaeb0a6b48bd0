package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	userDomain "github.com/questionit/api/internal/user/domain"
)

// UserCreator creates user accounts.
type UserCreator interface {
	Create(ctx context.Context, input *userDomain.CreateUserInput) (*userDomain.User, error)
}

// RunCreateUser creates a user account, typically for bootstrap and local testing.
func RunCreateUser(
	ctx context.Context,
	userUseCase UserCreator,
	logger *slog.Logger,
	writer io.Writer,
	slug string,
	name string,
	twitterID string,
	format string,
) error {
	out, err := newPrinter(writer, format)
	if err != nil {
		return err
	}

	logger.Info("creating user", slog.String("slug", slug))

	user, err := userUseCase.Create(ctx, &userDomain.CreateUserInput{
		Slug:      slug,
		Name:      name,
		TwitterID: twitterID,
	})
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}

	if err := out.print(map[string]any{
		"id":              user.ID.String(),
		"slug":            user.Slug,
		"name":            user.Name,
		"twitter_id":      user.TwitterID,
		"safe_mode":       user.SafeMode,
		"allow_anonymous": user.AllowAnonymous,
		"created_at":      user.CreatedAt.Format(time.RFC3339),
	}, "User created successfully\nID:   %s\nSlug: %s\nName: %s\n", user.ID, user.Slug, user.Name); err != nil {
		return err
	}

	logger.Info("user created", slog.String("user_id", user.ID.String()))
	return nil
}
