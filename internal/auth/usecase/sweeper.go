package usecase

import (
	"context"
	"log/slog"
	"time"
)

// Sweeper periodically deletes expired sessions and stale handshake tokens.
// Expiry is enforced on every read; the sweeper only reclaims storage.
type Sweeper struct {
	sessions SessionUseCase
	interval time.Duration
	grace    time.Duration
	logger   *slog.Logger
}

// Start runs the sweep loop until ctx is cancelled.
func (s *Sweeper) Start(ctx context.Context) error {
	if s.logger != nil {
		s.logger.Info("starting session sweeper",
			slog.Duration("interval", s.interval),
			slog.Duration("grace", s.grace),
		)
	}

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if s.logger != nil {
				s.logger.Info("stopping session sweeper")
			}
			return ctx.Err()
		case <-ticker.C:
			s.sweep(ctx)
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	result, err := s.sessions.CleanupExpired(ctx, s.grace, false)
	if err != nil {
		if s.logger != nil {
			s.logger.Error("failed to sweep expired sessions", slog.Any("error", err))
		}
		return
	}
	if s.logger != nil && (result.Sessions > 0 || result.HandshakeTokens > 0) {
		s.logger.Info("swept expired sessions",
			slog.Int64("sessions", result.Sessions),
			slog.Int64("handshake_tokens", result.HandshakeTokens),
		)
	}
}

// NewSweeper creates a new Sweeper.
func NewSweeper(sessions SessionUseCase, interval, grace time.Duration, logger *slog.Logger) *Sweeper {
	return &Sweeper{
		sessions: sessions,
		interval: interval,
		grace:    grace,
		logger:   logger,
	}
}
