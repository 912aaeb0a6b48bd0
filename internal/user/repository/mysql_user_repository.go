package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/questionit/api/internal/database"
	"github.com/questionit/api/internal/user/domain"

	apperrors "github.com/questionit/api/internal/errors"
)

// MySQLUserRepository handles user persistence for MySQL
type MySQLUserRepository struct {
	db *sql.DB
}

// NewMySQLUserRepository creates a new MySQLUserRepository
func NewMySQLUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *MySQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	// Convert UUID to bytes for MySQL BINARY(16)
	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	words, err := encodeWords(user.BlockedWords)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		uuidBytes,
		user.Slug,
		user.Name,
		nullTwitterID(user.TwitterID),
		words,
		user.SafeMode,
		user.DropQuestionsOnBlockedWord,
		user.AllowAnonymous,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		if isMySQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *MySQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT ` + userColumns + ` FROM users WHERE id = ?`
	return r.get(ctx, query, uuidBytes)
}

// GetBySlug retrieves a user by slug. The column collation is case-insensitive.
func (r *MySQLUserRepository) GetBySlug(ctx context.Context, slug string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE slug = ?`
	return r.get(ctx, query, slug)
}

func (r *MySQLUserRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	var (
		user      domain.User
		idBytes   []byte
		twitterID sql.NullString
		words     []byte
	)
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&idBytes,
		&user.Slug,
		&user.Name,
		&twitterID,
		&words,
		&user.SafeMode,
		&user.DropQuestionsOnBlockedWord,
		&user.AllowAnonymous,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		return nil, apperrors.Wrap(err, "failed to get user")
	}

	// Convert bytes back to UUID
	if err := user.ID.UnmarshalBinary(idBytes); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}

	user.TwitterID = twitterID.String
	if user.BlockedWords, err = decodeWords(words); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetRelationships counts followers and followed users
func (r *MySQLUserRepository) GetRelationships(ctx context.Context, id uuid.UUID) (*domain.Relationships, error) {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := id.MarshalBinary()
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `SELECT
				(SELECT COUNT(*) FROM follows WHERE followed_id = ?),
				(SELECT COUNT(*) FROM follows WHERE follower_id = ?)`

	var relationships domain.Relationships
	if err := querier.QueryRowContext(ctx, query, uuidBytes, uuidBytes).Scan(
		&relationships.Followers,
		&relationships.Following,
	); err != nil {
		return nil, apperrors.Wrap(err, "failed to count relationships")
	}
	return &relationships, nil
}

// UpdateBlockedWords replaces the blocked words of a user
func (r *MySQLUserRepository) UpdateBlockedWords(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	words, err := encodeWords(user.BlockedWords)
	if err != nil {
		return err
	}

	query := `UPDATE users SET blocked_words = ?, updated_at = ? WHERE id = ?`

	result, err := querier.ExecContext(ctx, query, words, user.UpdatedAt, uuidBytes)
	if err != nil {
		return apperrors.Wrap(err, "failed to update blocked words")
	}
	return requireAffected(result)
}

// UpdateSettings persists the moderation and privacy settings of a user
func (r *MySQLUserRepository) UpdateSettings(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	uuidBytes, err := user.ID.MarshalBinary()
	if err != nil {
		return apperrors.Wrap(err, "failed to marshal UUID")
	}

	query := `UPDATE users
			  SET safe_mode = ?,
				  drop_questions_on_blocked_word = ?,
				  allow_anonymous = ?,
				  updated_at = ?
			  WHERE id = ?`

	result, err := querier.ExecContext(
		ctx,
		query,
		user.SafeMode,
		user.DropQuestionsOnBlockedWord,
		user.AllowAnonymous,
		user.UpdatedAt,
		uuidBytes,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update settings")
	}
	return requireAffected(result)
}

// isMySQLUniqueViolation checks if the error is a MySQL unique constraint violation
func isMySQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// MySQL: "Error 1062: Duplicate entry"
	return strings.Contains(errMsg, "duplicate entry") || strings.Contains(errMsg, "1062")
}
