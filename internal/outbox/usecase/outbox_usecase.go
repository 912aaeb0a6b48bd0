// Package usecase delivers events written to the transactional outbox.
package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/questionit/api/internal/database"
	"github.com/questionit/api/internal/outbox/domain"
)

const purgeInterval = time.Hour

// Config holds outbox use case configuration
type Config struct {
	Interval   time.Duration
	BatchSize  int
	MaxRetries int
	// Retention is how long processed events are kept. Zero keeps them forever.
	Retention time.Duration
}

// OutboxEventRepository persists outbox events.
type OutboxEventRepository interface {
	Create(ctx context.Context, event *domain.OutboxEvent) error
	GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error)
	Update(ctx context.Context, event *domain.OutboxEvent) error
	DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error)
}

// EventProcessor delivers a single event.
type EventProcessor interface {
	Process(ctx context.Context, event *domain.OutboxEvent) error
}

// UseCase runs outbox delivery.
type UseCase interface {
	Start(ctx context.Context) error
	ProcessEvents(ctx context.Context) error
	PurgeProcessed(ctx context.Context) (int64, error)
}

// OutboxUseCase polls pending events and hands them to an EventProcessor.
type OutboxUseCase struct {
	config     Config
	txManager  database.TxManager
	outboxRepo OutboxEventRepository
	processor  EventProcessor
	logger     *slog.Logger
	now        func() time.Time
}

// NewOutboxUseCase creates a new OutboxUseCase. A nil logger discards output.
func NewOutboxUseCase(
	config Config,
	txManager database.TxManager,
	outboxRepo OutboxEventRepository,
	processor EventProcessor,
	logger *slog.Logger,
) *OutboxUseCase {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &OutboxUseCase{
		config:     config,
		txManager:  txManager,
		outboxRepo: outboxRepo,
		processor:  processor,
		logger:     logger.With("component", "outbox"),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Start delivers pending events every Interval, and purges old processed events hourly
// when a retention is set, until ctx is done.
func (uc *OutboxUseCase) Start(ctx context.Context) error {
	uc.logger.Info("starting outbox processor",
		slog.Duration("interval", uc.config.Interval),
		slog.Int("batch_size", uc.config.BatchSize),
		slog.Duration("retention", uc.config.Retention),
	)

	deliver := time.NewTicker(uc.config.Interval)
	defer deliver.Stop()

	var purge <-chan time.Time
	if uc.config.Retention > 0 {
		t := time.NewTicker(purgeInterval)
		defer t.Stop()
		purge = t.C
	}

	for {
		select {
		case <-ctx.Done():
			uc.logger.Info("stopping outbox processor")
			return ctx.Err()
		case <-deliver.C:
			if err := uc.ProcessEvents(ctx); err != nil {
				uc.logger.Error("outbox batch failed", slog.Any("error", err))
			}
		case <-purge:
			if _, err := uc.PurgeProcessed(ctx); err != nil {
				uc.logger.Error("outbox purge failed", slog.Any("error", err))
			}
		}
	}
}

// ProcessEvents delivers one batch of pending events inside a transaction. A failed
// delivery is recorded on the event; only storage errors abort the batch.
func (uc *OutboxUseCase) ProcessEvents(ctx context.Context) error {
	return uc.txManager.WithTx(ctx, func(ctx context.Context) error {
		events, err := uc.outboxRepo.GetPendingEvents(ctx, uc.config.BatchSize)
		if err != nil {
			return err
		}
		if len(events) > 0 {
			uc.logger.Debug("delivering outbox batch", slog.Int("count", len(events)))
		}

		for _, event := range events {
			uc.deliver(ctx, event)
			if err := uc.outboxRepo.Update(ctx, event); err != nil {
				return err
			}
		}
		return nil
	})
}

func (uc *OutboxUseCase) deliver(ctx context.Context, event *domain.OutboxEvent) {
	err := uc.processor.Process(ctx, event)
	if err == nil {
		event.MarkProcessed(uc.now())
		return
	}

	event.MarkFailed(err, uc.config.MaxRetries)
	level := slog.LevelWarn
	if event.Status == domain.OutboxEventStatusFailed {
		level = slog.LevelError
	}
	uc.logger.Log(ctx, level, "outbox delivery failed",
		slog.String("event_id", event.ID.String()),
		slog.String("event_type", event.EventType),
		slog.Int("retries", event.Retries),
		slog.Any("error", err),
	)
}

// PurgeProcessed deletes events processed longer ago than the retention period.
func (uc *OutboxUseCase) PurgeProcessed(ctx context.Context) (int64, error) {
	if uc.config.Retention <= 0 {
		return 0, nil
	}

	deleted, err := uc.outboxRepo.DeleteProcessedBefore(ctx, uc.now().Add(-uc.config.Retention))
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		uc.logger.Info("purged processed outbox events", slog.Int64("count", deleted))
	}
	return deleted, nil
}
