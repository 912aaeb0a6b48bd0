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

const handshakeTokenColumns = `id, token, application_id, redirect_to, validator_hash, owner_id, created_at`

// MySQLHandshakeTokenRepository implements HandshakeToken persistence for MySQL.
type MySQLHandshakeTokenRepository struct {
	db *sql.DB
}

// Create inserts a new HandshakeToken.
func (m *MySQLHandshakeTokenRepository) Create(ctx context.Context, token *authDomain.HandshakeToken) error {
	querier := database.GetTx(ctx, m.db)

	query := `INSERT INTO application_tokens (` + handshakeTokenColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?)`

	var validatorHash sql.NullString
	if token.ValidatorHash != nil {
		validatorHash = sql.NullString{String: *token.ValidatorHash, Valid: true}
	}

	_, err := querier.ExecContext(
		ctx,
		query,
		uuidBytes(token.ID),
		token.Token,
		uuidBytes(token.ApplicationID),
		token.RedirectTo,
		validatorHash,
		nullUUIDBytes(token.OwnerID),
		token.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create handshake token")
	}
	return nil
}

// GetByToken retrieves a HandshakeToken by its opaque string. Returns
// ErrHandshakeTokenNotFound if it doesn't exist.
func (m *MySQLHandshakeTokenRepository) GetByToken(
	ctx context.Context,
	token string,
) (*authDomain.HandshakeToken, error) {
	query := `SELECT ` + handshakeTokenColumns + ` FROM application_tokens WHERE token = ?`
	return m.getOne(ctx, query, token)
}

// GetByTokenForUpdate is GetByToken with a row lock held until the surrounding
// transaction ends.
func (m *MySQLHandshakeTokenRepository) GetByTokenForUpdate(
	ctx context.Context,
	token string,
) (*authDomain.HandshakeToken, error) {
	query := `SELECT ` + handshakeTokenColumns + ` FROM application_tokens WHERE token = ? FOR UPDATE`
	return m.getOne(ctx, query, token)
}

func (m *MySQLHandshakeTokenRepository) getOne(
	ctx context.Context,
	query string,
	token string,
) (*authDomain.HandshakeToken, error) {
	querier := database.GetTx(ctx, m.db)

	var handshake authDomain.HandshakeToken
	var idBytes, applicationIDBytes, ownerIDBytes []byte
	var validatorHash sql.NullString

	err := querier.QueryRowContext(ctx, query, token).Scan(
		&idBytes,
		&handshake.Token,
		&applicationIDBytes,
		&handshake.RedirectTo,
		&validatorHash,
		&ownerIDBytes,
		&handshake.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, authDomain.ErrHandshakeTokenNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get handshake token")
	}

	if handshake.ID, err = parseUUID(idBytes, "handshake token id"); err != nil {
		return nil, err
	}
	if handshake.ApplicationID, err = parseUUID(applicationIDBytes, "application id"); err != nil {
		return nil, err
	}
	if handshake.OwnerID, err = parseNullUUID(ownerIDBytes, "owner id"); err != nil {
		return nil, err
	}
	if validatorHash.Valid {
		handshake.ValidatorHash = &validatorHash.String
	}
	return &handshake, nil
}

// Approve attaches an owner and a validator hash to a token that has no owner yet.
// Returns ErrTokenAlreadyApproved when another approval won the race.
func (m *MySQLHandshakeTokenRepository) Approve(
	ctx context.Context,
	id uuid.UUID,
	ownerID uuid.UUID,
	validatorHash string,
) error {
	querier := database.GetTx(ctx, m.db)

	query := `UPDATE application_tokens SET owner_id = ?, validator_hash = ?
			  WHERE id = ? AND owner_id IS NULL`

	result, err := querier.ExecContext(ctx, query, uuidBytes(ownerID), validatorHash, uuidBytes(id))
	if err != nil {
		return apperrors.Wrap(err, "failed to approve handshake token")
	}
	return requireAffected(result, authDomain.ErrTokenAlreadyApproved)
}

// Delete removes a HandshakeToken. Returns ErrHandshakeTokenNotFound when nothing was deleted.
func (m *MySQLHandshakeTokenRepository) Delete(ctx context.Context, id uuid.UUID) error {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM application_tokens WHERE id = ?`, uuidBytes(id))
	if err != nil {
		return apperrors.Wrap(err, "failed to delete handshake token")
	}
	return requireAffected(result, authDomain.ErrHandshakeTokenNotFound)
}

// DeleteByApplication removes every pending handshake of an application.
func (m *MySQLHandshakeTokenRepository) DeleteByApplication(
	ctx context.Context,
	applicationID uuid.UUID,
) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(
		ctx,
		`DELETE FROM application_tokens WHERE application_id = ?`,
		uuidBytes(applicationID),
	)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete application handshake tokens")
	}
	return result.RowsAffected()
}

// DeleteCreatedBefore removes handshake tokens created before the given time.
func (m *MySQLHandshakeTokenRepository) DeleteCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	result, err := querier.ExecContext(ctx, `DELETE FROM application_tokens WHERE created_at < ?`, before)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete stale handshake tokens")
	}
	return result.RowsAffected()
}

// CountCreatedBefore counts handshake tokens created before the given time.
func (m *MySQLHandshakeTokenRepository) CountCreatedBefore(ctx context.Context, before time.Time) (int64, error) {
	querier := database.GetTx(ctx, m.db)

	var count int64
	err := querier.QueryRowContext(ctx, `SELECT COUNT(*) FROM application_tokens WHERE created_at < ?`, before).
		Scan(&count)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to count stale handshake tokens")
	}
	return count, nil
}

// NewMySQLHandshakeTokenRepository creates a new MySQL HandshakeToken repository.
func NewMySQLHandshakeTokenRepository(db *sql.DB) *MySQLHandshakeTokenRepository {
	return &MySQLHandshakeTokenRepository{db: db}
}
