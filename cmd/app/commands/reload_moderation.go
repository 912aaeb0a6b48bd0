package commands

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

// RefreshPublisher signals running instances to reload moderation data.
type RefreshPublisher interface {
	Publish(ctx context.Context) error
}

// RunReloadModeration asks every running server to reload the muted-words dictionary
// and the ban list without waiting for the next refresh tick.
func RunReloadModeration(
	ctx context.Context,
	publisher RefreshPublisher,
	logger *slog.Logger,
	writer io.Writer,
) error {
	if err := publisher.Publish(ctx); err != nil {
		return fmt.Errorf("failed to request moderation reload: %w", err)
	}

	_, _ = fmt.Fprintln(writer, "Moderation reload requested")
	logger.Info("moderation reload requested")
	return nil
}
