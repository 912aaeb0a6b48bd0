// Package commands implements the questionit CLI commands.
package commands

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/golang-migrate/migrate/v4"

	"github.com/questionit/api/internal/app"
)

// Stdout is where commands write their results.
var Stdout io.Writer = os.Stdout

// printer writes a command result either as indented JSON or as text.
type printer struct {
	w    io.Writer
	json bool
}

func newPrinter(w io.Writer, format string) (*printer, error) {
	switch format {
	case "text":
		return &printer{w: w}, nil
	case "json":
		return &printer{w: w, json: true}, nil
	default:
		return nil, fmt.Errorf("invalid format: %s (valid options: text, json)", format)
	}
}

// print writes fields in JSON mode and the formatted text otherwise.
func (p *printer) print(fields map[string]any, text string, args ...any) error {
	if !p.json {
		_, err := fmt.Fprintf(p.w, text, args...)
		return err
	}
	out, err := json.MarshalIndent(fields, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	_, err = fmt.Fprintln(p.w, string(out))
	return err
}

func closeContainer(container *app.Container, logger *slog.Logger) {
	if err := container.Shutdown(context.Background()); err != nil {
		logger.Error("failed to shutdown container", slog.Any("error", err))
	}
}

func closeMigrate(m *migrate.Migrate, logger *slog.Logger) {
	if srcErr, dbErr := m.Close(); srcErr != nil || dbErr != nil {
		logger.Error("failed to close migrate",
			slog.Any("source_error", srcErr),
			slog.Any("database_error", dbErr),
		)
	}
}
