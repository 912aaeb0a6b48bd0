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

const applicationColumns = `id, owner_id, name, url, app_key, default_rights, created_at, updated_at`

// PostgreSQLApplicationRepository implements Application persistence for PostgreSQL.
type PostgreSQLApplicationRepository struct {
	db *sql.DB
}

// Create inserts a new Application.
func (p *PostgreSQLApplicationRepository) Create(ctx context.Context, app *authDomain.Application) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO applications (` + applicationColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`

	_, err := querier.ExecContext(
		ctx,
		query,
		app.ID,
		app.OwnerID,
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
func (p *PostgreSQLApplicationRepository) Update(ctx context.Context, app *authDomain.Application) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE applications
			  SET name = $1,
				  url = $2,
				  app_key = $3,
				  default_rights = $4,
				  updated_at = $5
			  WHERE id = $6`

	result, err := querier.ExecContext(
		ctx,
		query,
		app.Name,
		app.URL,
		app.Key,
		int64(app.DefaultRights),
		app.UpdatedAt,
		app.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update application")
	}
	return requireAffected(result, authDomain.ErrApplicationNotFound)
}

// GetByID retrieves an Application. Returns ErrApplicationNotFound if it doesn't exist.
func (p *PostgreSQLApplicationRepository) GetByID(ctx context.Context, id uuid.UUID) (*authDomain.Application, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE id = $1`

	return p.getOne(querier.QueryRowContext(ctx, query, id))
}

// GetByKey retrieves an Application by its key. Returns ErrApplicationNotFound if none matches.
func (p *PostgreSQLApplicationRepository) GetByKey(ctx context.Context, key string) (*authDomain.Application, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE app_key = $1`

	return p.getOne(querier.QueryRowContext(ctx, query, key))
}

func (p *PostgreSQLApplicationRepository) getOne(row *sql.Row) (*authDomain.Application, error) {
	app, err := scanPostgreSQLApplication(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrApplicationNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get application")
	}
	return app, nil
}

// ListByOwner returns the applications registered by a user ordered by name.
func (p *PostgreSQLApplicationRepository) ListByOwner(
	ctx context.Context,
	ownerID uuid.UUID,
) ([]*authDomain.Application, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + applicationColumns + ` FROM applications WHERE owner_id = $1 ORDER BY name`

	return p.list(ctx, querier, query, ownerID)
}

// ListSubscribed returns the distinct applications holding an unexpired session for a user.
func (p *PostgreSQLApplicationRepository) ListSubscribed(
	ctx context.Context,
	userID uuid.UUID,
	now time.Time,
) ([]*authDomain.Application, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT ` + applicationColumns + ` FROM applications
			  WHERE id IN (
				  SELECT application_id FROM sessions
				  WHERE user_id = $1 AND application_id IS NOT NULL AND expires_at > $2
			  )
			  ORDER BY name`

	return p.list(ctx, querier, query, userID, now)
}

func (p *PostgreSQLApplicationRepository) list(
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
		app, err := scanPostgreSQLApplication(rows)
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
func (p *PostgreSQLApplicationRepository) CountByOwner(ctx context.Context, ownerID uuid.UUID) (int, error) {
	querier := database.GetTx(ctx, p.db)

	var count int
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM applications WHERE owner_id = $1`, ownerID).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count applications")
	}
	return count, nil
}

// NameExists reports whether the owner has another application with the same name,
// compared case-insensitively. excludeID skips the application being renamed.
func (p *PostgreSQLApplicationRepository) NameExists(
	ctx context.Context,
	ownerID uuid.UUID,
	name string,
	excludeID *uuid.UUID,
) (bool, error) {
	querier := database.GetTx(ctx, p.db)

	query := `SELECT EXISTS (
				  SELECT 1 FROM applications
				  WHERE owner_id = $1 AND LOWER(name) = LOWER($2) AND ($3::uuid IS NULL OR id <> $3)
			  )`

	var exists bool
	if err := querier.QueryRowContext(ctx, query, ownerID, name, nullUUID(excludeID)).Scan(&exists); err != nil {
		return false, apperrors.Wrap(err, "failed to check application name")
	}
	return exists, nil
}

// Delete removes an Application. Returns ErrApplicationNotFound when nothing was deleted.
func (p *PostgreSQLApplicationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM applications WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete application")
	}
	return requireAffected(result, authDomain.ErrApplicationNotFound)
}

func scanPostgreSQLApplication(row interface{ Scan(...any) error }) (*authDomain.Application, error) {
	var app authDomain.Application
	var rights int64

	err := row.Scan(
		&app.ID,
		&app.OwnerID,
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
	app.DefaultRights = authDomain.Rights(rights)
	return &app, nil
}

// NewPostgreSQLApplicationRepository creates a new PostgreSQL Application repository.
func NewPostgreSQLApplicationRepository(db *sql.DB) *PostgreSQLApplicationRepository {
	return &PostgreSQLApplicationRepository{db: db}
}
