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

const handshakeTokenColumns = `id, token, application_id, redirect_to, validator_hash, owner_id, created_at`

// PostgreSQLHandshakeTokenRepository implements HandshakeToken persistence for PostgreSQL.
type PostgreSQLHandshakeTokenRepository struct {
	db *sql.DB
}

// Create inserts a new HandshakeToken.
func (p *PostgreSQLHandshakeTokenRepository) Create(ctx context.Context, token *authDomain.HandshakeToken) error {
	querier := database.GetTx(ctx, p.db)

	query := `INSERT INTO application_tokens (` + handshakeTokenColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := querier.ExecContext(
		ctx,
		query,
		token.ID,
		token.Token,
		token.ApplicationID,
		token.RedirectTo,
		nullString(token.ValidatorHash),
		nullUUID(token.OwnerID),
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create handshake token")
	}
	return nil
}

// GetByToken retrieves a HandshakeToken by its opaque string. Returns
// ErrHandshakeTokenNotFound if it doesn't exist.
func (p *PostgreSQLHandshakeTokenRepository) GetByToken(
	ctx context.Context,
	token string,
) (*authDomain.HandshakeToken, error) {
	query := `SELECT ` + handshakeTokenColumns + ` FROM application_tokens WHERE token = $1`
	return p.getOne(ctx, query, token)
}

// GetByTokenForUpdate is GetByToken with a row lock held until the surrounding
// transaction ends.
func (p *PostgreSQLHandshakeTokenRepository) GetByTokenForUpdate(
	ctx context.Context,
	token string,
) (*authDomain.HandshakeToken, error) {
	query := `SELECT ` + handshakeTokenColumns + ` FROM application_tokens WHERE token = $1 FOR UPDATE`
	return p.getOne(ctx, query, token)
}

func (p *PostgreSQLHandshakeTokenRepository) getOne(
	ctx context.Context,
	query string,
	token string,
) (*authDomain.HandshakeToken, error) {
	querier := database.GetTx(ctx, p.db)

	var handshake authDomain.HandshakeToken
	var validatorHash sql.NullString
	var ownerID uuid.NullUUID

	err := querier.QueryRowContext(ctx, query, token).Scan(
		&handshake.ID,
		&handshake.Token,
		&handshake.ApplicationID,
		&handshake.RedirectTo,
		&validatorHash,
		&ownerID,
		&handshake.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrHandshakeTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get handshake token")
	}

	if validatorHash.Valid {
		handshake.ValidatorHash = &validatorHash.String
	}
	if ownerID.Valid {
		handshake.OwnerID = &ownerID.UUID
	}
	return &handshake, nil
}

// Approve attaches an owner and a validator hash to a token that has no owner yet.
// Returns ErrTokenAlreadyApproved when another approval won the race.
func (p *PostgreSQLHandshakeTokenRepository) Approve(
	ctx context.Context,
	id uuid.UUID,
	ownerID uuid.UUID,
	validatorHash string,
) error {
	querier := database.GetTx(ctx, p.db)

	query := `UPDATE application_tokens SET owner_id = $1, validator_hash = $2
			  WHERE id = $3 AND owner_id IS NULL`

	result, err := querier.ExecContext(ctx, query, ownerID, validatorHash, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to approve handshake token")
	}
	return requireAffected(result, authDomain.ErrTokenAlreadyApproved)
}

// Delete removes a HandshakeToken. Returns ErrHandshakeTokenNotFound when nothing was
// deleted, which is how a concurrent consumer is detected.
func (p *PostgreSQLHandshakeTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM application_tokens WHERE id = $1`, id)
	if err != nil {
		return apperrors.Wrap(err, "failed to delete handshake token")
	}
	return requireAffected(result, authDomain.ErrHandshakeTokenNotFound)
}

// DeleteByApplication removes every pending handshake of an application.
func (p *PostgreSQLHandshakeTokenRepository) DeleteByApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM application_tokens WHERE application_id = $1`, applicationID)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete application handshake tokens")
	}
	return result.RowsAffected()
}

// DeleteCreatedBefore removes handshake tokens created before the given time.
func (p *PostgreSQLHandshakeTokenRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM application_tokens WHERE created_at < $1`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete stale handshake tokens")
	}
	return result.RowsAffected()
}

// CountCreatedBefore counts handshake tokens created before the given time.
func (p *PostgreSQLHandshakeTokenRepository) CountCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, p.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM application_tokens WHERE created_at < $1`, before).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count stale handshake tokens")
	}
	return count, nil
}

// NewPostgreSQLHandshakeTokenRepository creates a new PostgreSQL HandshakeToken repository.
func NewPostgreSQLHandshakeTokenRepository(db *sql.DB) *PostgreSQLHandshakeTokenRepository {
	return &PostgreSQLHandshakeTokenRepository{db: db}
}
