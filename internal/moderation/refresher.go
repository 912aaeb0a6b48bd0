package moderation

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/questionit/api/internal/errors"
)

// ErrRefreshChannelDisabled indicates Publish was called without a Redis client.
var ErrRefreshChannelDisabled = apperrors.New("moderation refresh channel is not configured")

// Reloader reloads one piece of moderation data.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Refresher reloads the muted-words dictionary and the ban list on a ticker and whenever
// a signal arrives on the Redis refresh channel, so every instance picks up edits.
type Refresher struct {
	reloaders []Reloader
	client    *redis.Client
	channel   string
	interval  time.Duration
	logger    *slog.Logger
}

// NewRefresher creates a Refresher. A nil client disables the pub/sub channel.
func NewRefresher(
	client *redis.Client,
	channel string,
	interval time.Duration,
	logger *slog.Logger,
	reloaders ...Reloader,
) *Refresher {
	return &Refresher{
		reloaders: reloaders,
		client:    client,
		channel:   channel,
		interval:  interval,
		logger:    logger,
	}
}

// ReloadAll runs every reloader once. Failures are logged and the previous data kept.
func (r *Refresher) ReloadAll(ctx context.Context) {
	for _, reloader := range r.reloaders {
		if err := reloader.Reload(ctx); err != nil {
			r.logger.Warn("failed to reload moderation data", slog.Any("error", err))
		}
	}
}

// Start runs the refresh loop until ctx is cancelled.
func (r *Refresher) Start(ctx context.Context) error {
	r.logger.Info("starting moderation refresher",
		slog.Duration("interval", r.interval),
		slog.Bool("pubsub", r.client != nil),
	)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	var signals <-chan *redis.Message
	if r.client != nil {
		pubsub := r.client.Subscribe(ctx, r.channel)
		defer func() {
			_ = pubsub.Close()
		}()
		signals = pubsub.Channel()
	}

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("stopping moderation refresher")
			return ctx.Err()
		case <-ticker.C:
			r.ReloadAll(ctx)
		case msg, ok := <-signals:
			if !ok {
				signals = nil
				continue
			}
			r.logger.Info("moderation refresh requested", slog.String("payload", msg.Payload))
			r.ReloadAll(ctx)
		}
	}
}

// Publish asks every subscribed instance to reload.
func (r *Refresher) Publish(ctx context.Context) error {
	if r.client == nil {
		return ErrRefreshChannelDisabled
	}
	if err := r.client.Publish(ctx, r.channel, time.Now().UTC().Format(time.RFC3339)).Err(); err != nil {
		return apperrors.Wrap(err, "failed to publish moderation refresh")
	}
	return nil
}
