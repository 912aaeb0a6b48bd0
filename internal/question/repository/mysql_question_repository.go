package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/google/uuid"

	"github.com/questionit/api/internal/database"
	apperrors "github.com/questionit/api/internal/errors"
	"github.com/questionit/api/internal/question/domain"
)

// MySQLQuestionRepository handles question persistence for MySQL, storing UUIDs as BINARY(16).
type MySQLQuestionRepository struct {
	db *sql.DB
}

// NewMySQLQuestionRepository creates a new MySQLQuestionRepository
func NewMySQLQuestionRepository(db *sql.DB) *MySQLQuestionRepository {
	return &MySQLQuestionRepository{db: db}
}

func uuidBytes(id uuid.UUID) []byte {
	b, _ := id.MarshalBinary()
	return b
}

func nullUUIDBytes(id *uuid.UUID) []byte {
	if id == nil {
		return nil
	}
	return uuidBytes(*id)
}

func parseNullUUID(b []byte) (*uuid.UUID, error) {
	if b == nil {
		return nil, nil
	}
	var id uuid.UUID
	if err := id.UnmarshalBinary(b); err != nil {
		return nil, apperrors.Wrap(err, "failed to unmarshal UUID")
	}
	return &id, nil
}

// Create inserts a new question
func (r *MySQLQuestionRepository) Create(ctx context.Context, question *domain.Question) error {
	querier := database.GetTx(ctx, r.db)

	options, err := encodeOptions(question.PollOptions)
	if err != nil {
		return err
	}

	query := `INSERT INTO questions (` + questionColumns + `)
			  VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	_, err = querier.ExecContext(
		ctx,
		query,
		uuidBytes(question.ID),
		uuidBytes(question.ReceiverID),
		nullUUIDBytes(question.OwnerID),
		nullUUIDBytes(question.PrivateOwnerID),
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
func (r *MySQLQuestionRepository) ListPendingByReceiver(
	ctx context.Context,
	receiverID uuid.UUID,
) ([]*domain.Question, error) {
	querier := database.GetTx(ctx, r.db)

	query := `SELECT ` + questionColumns + ` FROM questions
			  WHERE receiver_id = ? AND answered_at IS NULL
			  ORDER BY created_at ASC`

	rows, err := querier.QueryContext(ctx, query, uuidBytes(receiverID))
	if err != nil {
		return nil, apperrors.Wrap(err, "failed to list pending questions")
	}
	defer rows.Close() //nolint:errcheck

	var questions []*domain.Question
	for rows.Next() {
		var (
			question domain.Question
			id       []byte
			receiver []byte
			ownerID  []byte
			private  []byte
			options  []byte
		)
		if err := rows.Scan(
			&id,
			&receiver,
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

		if err := question.ID.UnmarshalBinary(id); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal question id")
		}
		if err := question.ReceiverID.UnmarshalBinary(receiver); err != nil {
			return nil, apperrors.Wrap(err, "failed to unmarshal receiver id")
		}
		if question.OwnerID, err = parseNullUUID(ownerID); err != nil {
			return nil, err
		}
		if question.PrivateOwnerID, err = parseNullUUID(private); err != nil {
			return nil, err
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
func (r *MySQLQuestionRepository) DeleteByIDs(ctx context.Context, ids []uuid.UUID) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	querier := database.GetTx(ctx, r.db)

	args := make([]any, len(ids))
	for i, id := range ids {
		args[i] = uuidBytes(id)
	}
	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(ids)), ", ")

	query := `DELETE FROM questions WHERE id IN (` + placeholders + `)`

	result, err := querier.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to delete questions")
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return 0, apperrors.Wrap(err, "failed to read affected rows")
	}
	return deleted, nil
}
