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

const applicationColumns = `id, owner_id, name, url, app_key, default_rights, created_at, updated_at`

// MySQLApplicationRepository implements Application persistence for MySQL.
type MySQLApplicationRepository struct {
	db *sql.DB
}

// Create inserts a new Application.
func (m *MySQLApplicationRepository) Create(ctx context.Context, app *authDomain.Application) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO applications (` + applicationColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?)`

	_, err := querier.ExecContext(
		ctx,
		query,
		uuidBytes(app.ID),
		uuidBytes(app.OwnerID),
		app.Name,
		app.URL,
		app.Key,
		int64(app.DefaultRights),
		app.CreatedAt,
		app.UpdatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create application")
	}
	return nil
}

// Update modifies the mutable fields of an Application.
func (m *MySQLApplicationRepository) Update(ctx context.Context, app *authDomain.Application) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE applications
			  SET name = ?,
				  url = ?,
				  app_key = ?,
				  default_rights = ?,
				  updated_at = ?
			  WHERE id = ?`

	_, err := querier.ExecContext(
		ctx,
		query,
		app.Name,
		app.URL,
		app.Key,
		int64(app.DefaultRights),
		app.UpdatedAt,
		uuidBytes(app.ID),
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update application")
	}
	// MySQL reports zero affected rows for an update that changes nothing, so the
	// existence check is left to the caller.
	return nil
}

// GetByID retrieves an Application. Returns ErrApplicationNotFound if it doesn't exist.
func (m *MySQLApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Application, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = ?`

	return m.getOne(querier.QueryRowContext(ctx, query, uuidBytes(id)))
}

// GetByKey retrieves an Application by its key. Returns ErrApplicationNotFound if none matches.
func (m *MySQLApplicationRepository) GetByKey(ctx context.Context, key string) (*authDomain.Application, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE app_key = ?`

	return m.getOne(querier.QueryRowContext(ctx, query, key))
}

func (m *MySQLApplicationRepository) getOne(row *sql.Row) (*authDomain.Application, error) {
	app, err := scanMySQLApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get application")
	}
	return app, nil
}

// ListByOwner returns the applications registered by a user ordered by name.
func (m *MySQLApplicationRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*authDomain.Application, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE owner_id = ? ORDER BY name`

	return m.list(ctx, querier, query, uuidBytes(ownerID))
}

// ListSubscribed returns the distinct applications holding an unexpired session for a user.
func (m *MySQLApplicationRepository) ListSubscribed(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authDomain.Application, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT ` + applicationColumns + ` FROM applications
			  WHERE id IN (
				  SELECT application_id FROM sessions
				  WHERE user_id = ? AND application_id IS NOT NULL AND expires_at > ?
			  )
			  ORDER BY name`

	return m.list(ctx, querier, query, uuidBytes(userID), now)
}

func (m *MySQLApplicationRepository) list(
	ctx context.Context,
	querier database.Querier,
	query string,
	args ...any,
) ([]*authDomain.Application, error) {
	rows, err := querier.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list applications")
	}
	defer func() {
		_ = rows.Close()
	}()

	apps := make([]*authDomain.Application, 0)
	for rows.Next() {
		app, err := scanMySQLApplication(rows)
		if err != nil {
			return nil, apperrors.Wrap(err, "failed to scan application")
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate applications")
	}
	return apps, nil
}

// CountByOwner counts the applications registered by a user.
func (m *MySQLApplicationRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, m.db)

	var count int
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE owner_id = ?`, uuidBytes(ownerID)).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count applications")
	}
	return count, nil
}

// NameExists reports whether the owner has another application with the same name,
// compared case-insensitively. excludeID skips the application being renamed.
func (m *MySQLApplicationRepository) NameExists(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
	excludeID *uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, m.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM applications
				  WHERE owner_id = ? AND LOWER(name) = LOWER(?) AND (? IS NULL OR id <> ?)
			  )`

	exclude := nullUUIDBytes(excludeID)

	var exists bool
	if err := querier.QueryRowContext(ctx, query, uuidBytes(ownerID), name, exclude, exclude).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check application name")
	}
	return exists, nil
}

// Delete removes an Application. Returns ErrApplicationNotFound when nothing was deleted.
func (m *MySQLApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM applications WHERE id = ?`, uuidBytes(id))
	if err != nil {
		return apperrors.Wrap(err, "failed to delete application")
	}
	return requireAffected(result, authDomain.ErrApplicationNotFound)
}

func scanMySQLApplication(row interface{ Scan(...any) error }) (*authDomain.Application, error) {
	var app authDomain.Application
	var idBytes, ownerIDBytes []byte
	var rights int64

	err := row.Scan(
		&idBytes,
		&ownerIDBytes,
		&app.Name,
		&app.URL,
		&app.Key,
		&rights,
		&app.CreatedAt,
		&app.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if app.ID, err = parseUUID(idBytes, "application id"); err != nil {
		return nil, err
	}
	if app.OwnerID, err = parseUUID(ownerIDBytes, "owner id"); err != nil {
		return nil, err
	}
	app.DefaultRights = authDomain.Rights(rights)
	return &app, nil
}

// NewMySQLApplicationRepository creates a new MySQL Application repository.
func NewMySQLApplicationRepository(db *sql.DB) *MySQLApplicationRepository {
	return &MySQLApplicationRepository{db: db}
}
