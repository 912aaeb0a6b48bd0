// Package repository provides data persistence implementations for user entities.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"strings"

	"github.com/google/uuid"

	"github.com/questionit/api/internal/database"
	"github.com/questionit/api/internal/user/domain"

	apperrors "github.com/questionit/api/internal/errors"
)

const userColumns = `id, slug, name, twitter_id, blocked_words, safe_mode,
	drop_questions_on_blocked_word, allow_anonymous, created_at, updated_at`

// PostgreSQLUserRepository handles user persistence for PostgreSQL
type PostgreSQLUserRepository struct {
	db *sql.DB
}

// NewPostgreSQLUserRepository creates a new PostgreSQLUserRepository
func NewPostgreSQLUserRepository(db *sql.DB) *PostgreSQLUserRepository {
	return &PostgreSQLUserRepository{
		db: db,
	}
}

// Create inserts a new user
func (r *PostgreSQLUserRepository) Create(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	words, err := encodeWords(user.BlockedWords)
	if err != nil {
		return err
	}

	query := `INSERT INTO users (` + userColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		user.ID,
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
		if isPostgreSQLUniqueViolation(err) {
			return domain.ErrUserAlreadyExists
		}
		return apperrors.Wrap(err, "failed to create user")
	}
	return nil
}

// GetByID retrieves a user by ID
func (r *PostgreSQLUserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.get(ctx, query, id)
}

// GetBySlug retrieves a user by slug, ignoring case
func (r *PostgreSQLUserRepository) GetBySlug(ctx context.Context, slug string) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(slug) = LOWER($1)`
	return r.get(ctx, query, slug)
}

func (r *PostgreSQLUserRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	querier := database.GetTx(ctx, r.db)

	var (
		user      domain.User
		twitterID sql.NullString
		words     []byte
	)
	err := querier.QueryRowContext(ctx, query, arg).Scan(
		&user.ID,
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

	user.TwitterID = twitterID.String
	if user.BlockedWords, err = decodeWords(words); err != nil {
		return nil, err
	}
	return &user, nil
}

// GetRelationships counts followers and followed users
func (r *PostgreSQLUserRepository) GetRelationships(ctx context.Context, id uuid.UUID) (*domain.Relationships, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT
				(SELECT COUNT(*) FROM follows WHERE followed_id = $1),
				(SELECT COUNT(*) FROM follows WHERE follower_id = $1)`

	var relationships domain.Relationships
	if err := querier.QueryRowContext(ctx, query, id).Scan(
		&relationships.Followers,
		&relationships.Following,
	); err != nil {
		return nil, apperrors.Wrap(err, "failed to count relationships")
	}
	return &relationships, nil
}

// UpdateBlockedWords replaces the blocked words of a user
func (r *PostgreSQLUserRepository) UpdateBlockedWords(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	words, err := encodeWords(user.BlockedWords)
	if err != nil {
		return err
	}

	query := `UPDATE users SET blocked_words = $1, updated_at = $2 WHERE id = $3`

	result, err := querier.ExecContext(ctx, query, words, user.UpdatedAt, user.ID)
	if err != nil {
		return apperrors.Wrap(err, "failed to update blocked words")
	}
	return requireAffected(result)
}

// UpdateSettings persists the moderation and privacy settings of a user
func (r *PostgreSQLUserRepository) UpdateSettings(ctx context.Context, user *domain.User) error {
	querier := database.GetTx(ctx, r.db)

	query := `UPDATE users
			  SET safe_mode = $1,
				  drop_questions_on_blocked_word = $2,
				  allow_anonymous = $3,
				  updated_at = $4
			  WHERE id = $5`

	result, err := querier.ExecContext(
		ctx,
		query,
		user.SafeMode,
		user.DropQuestionsOnBlockedWord,
		user.AllowAnonymous,
		user.UpdatedAt,
		user.ID,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to update settings")
	}
	return requireAffected(result)
}

// isPostgreSQLUniqueViolation checks if the error is a PostgreSQL unique constraint violation
func isPostgreSQLUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	errMsg := strings.ToLower(err.Error())
	// PostgreSQL: "duplicate key value violates unique constraint" or "pq: duplicate key"
	return strings.Contains(errMsg, "duplicate key") || strings.Contains(errMsg, "unique constraint")
}

func nullTwitterID(id string) sql.NullString {
	return sql.NullString{String: id, Valid: id != ""}
}

func encodeWords(words []string) (string, error) {
	if words == nil {
		words = []string{}
	}
	b, err := json.Marshal(words)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal blocked words")
	}
	return string(b), nil
}

func decodeWords(b []byte) ([]string, error) {
	words := []string{}
	if len(b) == 0 {
		return words, nil
	}
	if err := json.Unmarshal(b, &words); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal blocked words")
	}
	return words, nil
}

func requireAffected(result sql.Result) error {
	affected, err := result.RowsAffected()
	if err != nil {
		return apperrors.Wrap(err, "failed to read affected rows")
	}
	if affected == 0 {
		return domain.ErrUserNotFound
	}
	return nil
}
