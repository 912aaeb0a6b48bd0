package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	authUseCase "github.com/questionit/api/internal/auth/usecase"
)

// RunSweepExpired deletes expired sessions and stale handshake tokens once.
// Supports dry-run mode to preview deletion counts and both text/JSON output formats.
//
// Requirements: Database must be migrated and accessible.
func RunSweepExpired(
	ctx context.Context,
	sessionUseCase authUseCase.SessionUseCase,
	logger *slog.Logger,
	writer io.Writer,
	grace time.Duration,
	dryRun bool,
	format string,
) error {
	if grace < 0 {
		return fmt.Errorf("grace must not be negative, got: %s", grace)
	}
	out, err := newPrinter(writer, format)
	if err != nil {
		return err
	}

	logger.Info("sweeping expired sessions",
		slog.Duration("grace", grace),
		slog.Bool("dry_run", dryRun),
	)

	result, err := sessionUseCase.CleanupExpired(ctx, grace, dryRun)
	if err != nil {
		return fmt.Errorf("failed to sweep expired sessions: %w", err)
	}

	verb := "Successfully deleted"
	if dryRun {
		verb = "Dry-run mode: Would delete"
	}
	if err := out.print(map[string]any{
		"sessions":         result.Sessions,
		"handshake_tokens": result.HandshakeTokens,
		"grace":            grace.String(),
		"dry_run":          result.DryRun,
	}, "%s %d expired session(s) and %d handshake token(s)\n", verb, result.Sessions, result.HandshakeTokens); err != nil {
		return err
	}

	logger.Info("sweep completed",
		slog.Int64("sessions", result.Sessions),
		slog.Int64("handshake_tokens", result.HandshakeTokens),
		slog.Bool("dry_run", dryRun),
	)
	return nil
}
