package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"

	authUseCase "github.com/questionit/api/internal/auth/usecase"
)

// cliSessionIP is recorded as the opening address of sessions issued from the command line.
const cliSessionIP = "127.0.0.1"

// RunCreateSession issues a first-party credential for an existing user and prints it.
// The token is only shown once.
func RunCreateSession(
	ctx context.Context,
	sessionUseCase authUseCase.SessionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	userID string,
	format string,
) error {
	out, err := newPrinter(writer, format)
	if err != nil {
		return err
	}

	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user ID format: %w", err)
	}

	issued, err := sessionUseCase.IssueFirstParty(ctx, id, cliSessionIP)
	if err != nil {
		return fmt.Errorf("failed to create session: %w", err)
	}

	expiresAt := issued.Session.ExpiresAt.Format(time.RFC3339)
	if err := out.print(map[string]any{
		"token":      issued.Token,
		"jti":        issued.Session.JTI,
		"user_id":    issued.Session.UserID.String(),
		"expires_at": expiresAt,
	}, "Session created successfully\nToken:      %s\nExpires at: %s\n\nWARNING: Save the token securely. It will not be shown again.\n",
		issued.Token, expiresAt); err != nil {
		return err
	}

	logger.Info("session created",
		slog.String("user_id", id.String()),
		slog.String("jti", issued.Session.JTI),
	)
	return nil
}
