// Package repository stores outbox events in PostgreSQL or MySQL.
package repository

import (
	"context"
	"database/sql"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/questionit/api/internal/database"
	"github.com/questionit/api/internal/outbox/domain"
)

const outboxColumns = "id, event_type, payload, status, retries, last_error, processed_at, created_at, updated_at"

// dialect covers the two differences between the supported databases: bind variable
// syntax and UUID storage (native uuid versus BINARY(16)). Scanning needs no dialect
// since uuid.UUID reads both forms.
type dialect struct {
	numbered bool
	binaryID bool
}

// sql rewrites the ? bind variables of query for the dialect.
func (d dialect) sql(query string) string {
	if !d.numbered {
		return query
	}
	var b strings.Builder
	n := 0
	for _, r := range query {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func (d dialect) id(id uuid.UUID) (any, error) {
	if !d.binaryID {
		return id, nil
	}
	return id.MarshalBinary()
}

// OutboxEventRepository persists outbox events. Every method joins the transaction
// carried by ctx, if any.
type OutboxEventRepository struct {
	db      *sql.DB
	dialect dialect
}

// NewPostgreSQLOutboxEventRepository returns a repository for PostgreSQL.
func NewPostgreSQLOutboxEventRepository(db *sql.DB) *OutboxEventRepository {
	return &OutboxEventRepository{db: db, dialect: dialect{numbered: true}}
}

// NewMySQLOutboxEventRepository returns a repository for MySQL.
func NewMySQLOutboxEventRepository(db *sql.DB) *OutboxEventRepository {
	return &OutboxEventRepository{db: db, dialect: dialect{binaryID: true}}
}

// Create inserts a new outbox event
func (r *OutboxEventRepository) Create(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := r.dialect.id(event.ID)
	if err != nil {
		return err
	}

	_, err = database.GetTx(ctx, r.db).ExecContext(ctx,
		r.dialect.sql(`INSERT INTO outbox_events (`+outboxColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?, NOW(), NOW())`),
		id, event.EventType, event.Payload, event.Status, event.Retries, event.LastError, event.ProcessedAt,
	)
	return err
}

// GetPendingEvents locks and returns up to limit pending events, oldest first. Rows
// locked by another processor are skipped.
func (r *OutboxEventRepository) GetPendingEvents(ctx context.Context, limit int) ([]*domain.OutboxEvent, error) {
	rows, err := database.GetTx(ctx, r.db).QueryContext(ctx,
		r.dialect.sql(`SELECT `+outboxColumns+` FROM outbox_events
			WHERE status = ?
			ORDER BY created_at ASC
			LIMIT ?
			FOR UPDATE SKIP LOCKED`),
		domain.OutboxEventStatusPending, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close() //nolint:errcheck

	var events []*domain.OutboxEvent
	for rows.Next() {
		e := &domain.OutboxEvent{}
		if err := rows.Scan(&e.ID, &e.EventType, &e.Payload, &e.Status, &e.Retries,
			&e.LastError, &e.ProcessedAt, &e.CreatedAt, &e.UpdatedAt); err != nil {
			return nil, err
		}
		events = append(events, e)
	}
	return events, rows.Err()
}

// Update stores the delivery state of an event
func (r *OutboxEventRepository) Update(ctx context.Context, event *domain.OutboxEvent) error {
	id, err := r.dialect.id(event.ID)
	if err != nil {
		return err
	}

	_, err = database.GetTx(ctx, r.db).ExecContext(ctx,
		r.dialect.sql(`UPDATE outbox_events
			SET status = ?, retries = ?, last_error = ?, processed_at = ?, updated_at = NOW()
			WHERE id = ?`),
		event.Status, event.Retries, event.LastError, event.ProcessedAt, id,
	)
	return err
}

// DeleteProcessedBefore removes events delivered before the given time.
func (r *OutboxEventRepository) DeleteProcessedBefore(ctx context.Context, before time.Time) (int64, error) {
	result, err := database.GetTx(ctx, r.db).ExecContext(ctx,
		r.dialect.sql(`DELETE FROM outbox_events WHERE status = ? AND processed_at < ?`),
		domain.OutboxEventStatusProcessed, before,
	)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
