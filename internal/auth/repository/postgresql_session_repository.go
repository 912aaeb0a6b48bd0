// Package repository implements persistence for sessions, applications and handshake tokens.
//
// PostgreSQL repositories live in this package and use native UUID columns. MySQL
// repositories live in the mysql subpackage and store UUIDs as BINARY(16). Every method
// honors a transaction carried by the context through database.GetTx().
package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	authDomain "github.com/questionit/api/internal/auth/domain"
	"github.com/questionit/api/internal/database"
	apperrors "github.com/questionit/api/internal/errors"
)

const sessionColumns = `id, jti, user_id, application_id, rights, open_ip, last_ip, last_login_at, expires_at, created_at, updated_at`

// PostgreSQLSessionRepository implements Session persistence for PostgreSQL.
type PostgreSQLSessionRepository struct {
	db *sql.DB
}

// Create inserts a new Session.
func (p *PostgreSQLSessionRepository) Create(ctx context.Context, session *authDomain.Session) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO sessions (` + sessionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.ID,
		session.JTI,
		session.UserID,
		nullUUID(session.ApplicationID),
		nullRights(session.Rights),
		session.OpenIP,
		session.LastIP,
		session.LastLoginAt,
		session.ExpiresAt,
		session.CreatedAt,
		session.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create session")
	}
	return nil
}

// GetByJTI retrieves a Session by credential identifier. Returns ErrSessionNotFound
// if it doesn't exist.
func (p *PostgreSQLSessionRepository) GetByJTI(ctx context.Context, jti string) (*authDomain.Session, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE jti = $1`

	session, err := scanPostgreSQLSession(querier.QueryRowContext(ctx, query, jti))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}
	return session, nil
}

// Touch records the last authenticated use of a session.
func (p *PostgreSQLSessionRepository) Touch(ctx context.Context, session *authDomain.Session) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE sessions SET last_ip = $1, last_login_at = $2, updated_at = $3 WHERE id = $4`

	_, err := querier.ExecContext(ctx, query, session.LastIP, session.LastLoginAt, session.UpdatedAt, session.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to touch session")
	}
	return nil
}

// ListByUser returns the unexpired sessions of a user, newest first.
func (p *PostgreSQLSessionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authDomain.Session, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + sessionColumns + ` FROM sessions
			  WHERE user_id = $1 AND expires_at > $2
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, userID, now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions")
	}
	defer func() {
		_ = rows.Close()
	}()

	sessions := make([]*authDomain.Session, 0)
	for rows.Next() {
		session, err := scanPostgreSQLSession(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan session")
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate sessions")
	}
	return sessions, nil
}

// DeleteByJTI removes a session. Returns ErrSessionNotFound when nothing was deleted.
func (p *PostgreSQLSessionRepository) DeleteByJTI(ctx context.Context, jti string) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE jti = $1`, jti)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return requireAffected(result, authDomain.ErrSessionNotFound)
}

// DeleteByApplication removes every session of an application.
func (p *PostgreSQLSessionRepository) DeleteByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE application_id = $1`, applicationID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete application sessions")
	}
	return result.RowsAffected()
}

// DeleteByUserAndApplication removes the sessions a user granted to an application.
func (p *PostgreSQLSessionRepository) DeleteByUserAndApplication(
	ctx context.Context,
	userID, applicationID uuid.UUID,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	query := `DELETE FROM sessions WHERE user_id = $1 AND application_id = $2`

	result, err := querier.ExecContext(ctx, query, userID, applicationID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete subscription sessions")
	}
	return result.RowsAffected()
}

// DeleteExpired removes sessions that expired before the given time.
func (p *PostgreSQLSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}
	return result.RowsAffected()
}

// CountExpired counts sessions that expired before the given time.
func (p *PostgreSQLSessionRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at < $1`, before).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired sessions")
	}
	return count, nil
}

func scanPostgreSQLSession(row interface{ Scan(...any) error }) (*authDomain.Session, error) {
	var session authDomain.Session
	var applicationID uuid.NullUUID
	var rights sql.NullInt64

	err := row.Scan(
		&session.ID,
		&session.JTI,
		&session.UserID,
		&applicationID,
		&rights,
		&session.OpenIP,
		&session.LastIP,
		&session.LastLoginAt,
		&session.ExpiresAt,
		&session.CreatedAt,
		&session.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if applicationID.Valid {
		session.ApplicationID = &applicationID.UUID
	}
	if rights.Valid {
		r := authDomain.Rights(rights.Int64)
		session.Rights = &r
	}
	return &session, nil
}

// NewPostgreSQLSessionRepository creates a new PostgreSQL Session repository.
func NewPostgreSQLSessionRepository(db *sql.DB) *PostgreSQLSessionRepository {
	return &PostgreSQLSessionRepository{db: db}
}
