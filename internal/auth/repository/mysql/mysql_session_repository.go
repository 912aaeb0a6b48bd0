package mysql

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

// MySQLSessionRepository implements Session persistence for MySQL.
type MySQLSessionRepository struct {
	db *sql.DB
}

// Create inserts a new Session.
func (m *MySQLSessionRepository) Create(ctx context.Context, session *authDomain.Session) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO sessions (` + sessionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	var rights sql.NullInt64
	if session.Rights != nil {
		rights = sql.NullInt64{Int64: int64(*session.Rights), Valid: true}
	}

	_, err := querier.ExecContext(
		ctx,
		query,
		uuidBytes(session.ID),
		session.JTI,
		uuidBytes(session.UserID),
		nullUUIDBytes(session.ApplicationID),
		rights,
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
func (m *MySQLSessionRepository) GetByJTI(ctx context.Context, jti string) (*authDomain.Session, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + sessionColumns + ` FROM sessions WHERE jti = ?`

	session, err := scanMySQLSession(querier.QueryRowContext(ctx, query, jti))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrSessionNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get session")
	}
	return session, nil
}

// Touch records the last authenticated use of a session.
func (m *MySQLSessionRepository) Touch(ctx context.Context, session *authDomain.Session) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE sessions SET last_ip = ?, last_login_at = ?, updated_at = ? WHERE id = ?`

	_, err := querier.ExecContext(
		ctx,
		query,
		session.LastIP,
		session.LastLoginAt,
		session.UpdatedAt,
		uuidBytes(session.ID),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to touch session")
	}
	return nil
}

// ListByUser returns the unexpired sessions of a user, newest first.
func (m *MySQLSessionRepository) ListByUser(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authDomain.Session, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + sessionColumns + ` FROM sessions
			  WHERE user_id = ? AND expires_at > ?
			  ORDER BY created_at DESC`

	rows, err := querier.QueryContext(ctx, query, uuidBytes(userID), now)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list sessions")
	}
	defer func() {
		_ = rows.Close()
	}()

	sessions := make([]*authDomain.Session, 0)
	for rows.Next() {
		session, err := scanMySQLSession(rows)
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
func (m *MySQLSessionRepository) DeleteByJTI(ctx context.Context, jti string) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE jti = ?`, jti)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete session")
	}
	return requireAffected(result, authDomain.ErrSessionNotFound)
}

// DeleteByApplication removes every session of an application.
func (m *MySQLSessionRepository) DeleteByApplication(ctx context.Context, applicationID uuid.UUID) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE application_id = ?`, uuidBytes(applicationID))
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete application sessions")
	}
	return result.RowsAffected()
}

// DeleteByUserAndApplication removes the sessions a user granted to an application.
func (m *MySQLSessionRepository) DeleteByUserAndApplication(
	ctx context.Context,
	userID, applicationID uuid.UUID,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	query := `DELETE FROM sessions WHERE user_id = ? AND application_id = ?`

	result, err := querier.ExecContext(ctx, query, uuidBytes(userID), uuidBytes(applicationID))
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete subscription sessions")
	}
	return result.RowsAffected()
}

// DeleteExpired removes sessions that expired before the given time.
func (m *MySQLSessionRepository) DeleteExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM sessions WHERE expires_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete expired sessions")
	}
	return result.RowsAffected()
}

// CountExpired counts sessions that expired before the given time.
func (m *MySQLSessionRepository) CountExpired(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM sessions WHERE expires_at < ?`, before).Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count expired sessions")
	}
	return count, nil
}

func scanMySQLSession(row interface{ Scan(...any) error }) (*authDomain.Session, error) {
	var session authDomain.Session
	var idBytes, userIDBytes, applicationIDBytes []byte
	var rights sql.NullInt64

	err := row.Scan(
		&idBytes,
		&session.JTI,
		&userIDBytes,
		&applicationIDBytes,
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

	if session.ID, err = parseUUID(idBytes, "session id"); err != nil {
		return nil, err
	}
	if session.UserID, err = parseUUID(userIDBytes, "user id"); err != nil {
		return nil, err
	}
	if session.ApplicationID, err = parseNullUUID(applicationIDBytes, "application id"); err != nil {
		return nil, err
	}
	if rights.Valid {
		r := authDomain.Rights(rights.Int64)
		session.Rights = &r
	}
	return &session, nil
}

// NewMySQLSessionRepository creates a new MySQL Session repository.
func NewMySQLSessionRepository(db *sql.DB) *MySQLSessionRepository {
	return &MySQLSessionRepository{db: db}
}
