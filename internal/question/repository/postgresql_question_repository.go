// Package repository provides question persistence for PostgreSQL and MySQL.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/questionit/api/internal/database"
	apperrors "github.com/questionit/api/internal/errors"
	"github.com/questionit/api/internal/question/domain"
)

const questionColumns = `id, receiver_id, owner_id, private_owner_id, content, poll_options,
	emitter_ip, muted, answered_at, created_at`

// PostgreSQLQuestionRepository handles question persistence for PostgreSQL
type PostgreSQLQuestionRepository struct {
	db *sql.DB
}

// NewPostgreSQLQuestionRepository creates a new PostgreSQLQuestionRepository
func NewPostgreSQLQuestionRepository(db *sql.DB) *PostgreSQLQuestionRepository {
	return &PostgreSQLQuestionRepository{db: db}
}

// Create inserts a new question
func (r *PostgreSQLQuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	querier := database.GetTx(ctx, r.db)

	options, err := encodeOptions(question.PollOptions)
	if err != nil {
		return err
	}

	query := `INSERT INTO questions (` + questionColumns + `)
			  VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = querier.ExecContext(
		ctx,
		query,
		question.ID,
		question.ReceiverID,
		question.OwnerID,
		question.PrivateOwnerID,
		question.Content,
		options,
		question.EmitterIP,
		question.Muted,
		question.AnsweredAt,
		question.CreatedAt,
	)
	if err != nil {
		return apperrors.Wrap(err, "failed to create question")
	}
	return nil
}

// ListPendingByReceiver returns the unanswered questions of a receiver, oldest first.
func (r *PostgreSQLQuestionRepository) ListPendingByReceiver(
	ctx context.Context,
	receiverID uuid.UUID,
) ([]*domain.Question, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + questionColumns + ` FROM questions
			  WHERE receiver_id = $1 AND answered_at IS NULL
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, receiverID)
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending questions")
	}
	defer rows.Close() //nolint:errcheck

	var questions []*domain.Question
	for rows.Next() {
		var (
			question domain.Question
			ownerID  uuid.NullUUID
			private  uuid.NullUUID
			options  []byte
		)
		if err := rows.Scan(
			&question.ID,
			&question.ReceiverID,
			&ownerID,
			&private,
			&question.Content,
			&options,
			&question.EmitterIP,
			&question.Muted,
			&question.AnsweredAt,
			&question.CreatedAt,
		); err != nil {
			return nil, apperrors.Wrap(err, "failed to scan question")
		}
		if ownerID.Valid {
			question.OwnerID = &ownerID.UUID
		}
		if private.Valid {
			question.PrivateOwnerID = &private.UUID
		}
		if question.PollOptions, err = decodeOptions(options); err != nil {
			return nil, err
		}
		questions = append(questions, &question)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.Wrap(err, "failed to iterate questions")
	}
	return questions, nil
}

// DeleteByIDs removes the given questions and returns how many rows were deleted.
func (r *PostgreSQLQuestionRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	querier := database.GetTx(ctx, r.db)

	values := make([]string, len(ids))
	for i, id := range ids {
		values[i] = id.String()
	}

	query := `DELETE FROM questions WHERE id = ANY($1::uuid[])`

	result, err := querier.ExecContext(ctx, query, pq.StringArray(values))
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete questions")
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return deleted, nil
}

func encodeOptions(options []string) (string, error) {
	if options == nil {
		options = []string{}
	}
	b, err := json.Marshal(options)
	if err != nil {
		return "", apperrors.Wrap(err, "failed to marshal poll options")
	}
	return string(b), nil
}

func decodeOptions(b []byte) ([]string, error) {
	if len(b) == 0 {
		return nil, nil
	}
	var options []string
	if err := json.Unmarshal(b, &options); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal poll options")
	}
	if len(options) == 0 {
		return nil, nil
	}
	return options, nil
}
