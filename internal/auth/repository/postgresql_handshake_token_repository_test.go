package repository

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	authDomain "github.com/questionit/api/internal/auth/domain"
)

var handshakeRowColumns = []string{
	"id", "token", "application_id", "redirect_to", "validator_hash", "owner_id", "created_at",
}

func TestPostgreSQLHandshakeTokenRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLHandshakeTokenRepository(db)
	now := time.Now().UTC()

	token := &authDomain.HandshakeToken{
		ID:            uuid.Must(uuid.NewV7()),
		Token:         "opaque",
		ApplicationID: uuid.Must(uuid.NewV7()),
		RedirectTo:    authDomain.OutOfBand,
		CreatedAt:     now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO application_tokens")).
		WithArgs(token.ID, "opaque", token.ApplicationID, "oob", sql.NullString{}, uuid.NullUUID{}, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), token))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLHandshakeTokenRepository_Get(t *testing.T) {
	now := time.Now().UTC()
	id := uuid.Must(uuid.NewV7())
	appID := uuid.Must(uuid.NewV7())
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success_Pending", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHandshakeTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM application_tokens WHERE token = $1")).
			WithArgs("opaque").
			WillReturnRows(sqlmock.NewRows(handshakeRowColumns).
				AddRow(id.String(), "opaque", appID.String(), "https://c.example/cb", nil, nil, now))

		token, err := repo.GetByToken(context.Background(), "opaque")
		require.NoError(t, err)
		assert.Equal(t, id, token.ID)
		assert.Equal(t, appID, token.ApplicationID)
		assert.False(t, token.IsApproved())
		assert.Nil(t, token.ValidatorHash)
	})

	t.Run("Success_ApprovedForUpdate", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHandshakeTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM application_tokens WHERE token = $1 FOR UPDATE")).
			WithArgs("opaque").
			WillReturnRows(sqlmock.NewRows(handshakeRowColumns).
				AddRow(id.String(), "opaque", appID.String(), "oob", "hash", ownerID.String(), now))

		token, err := repo.GetByTokenForUpdate(context.Background(), "opaque")
		require.NoError(t, err)
		require.NotNil(t, token.OwnerID)
		assert.Equal(t, ownerID, *token.OwnerID)
		require.NotNil(t, token.ValidatorHash)
		assert.Equal(t, "hash", *token.ValidatorHash)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHandshakeTokenRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM application_tokens WHERE token = $1")).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByToken(context.Background(), "missing")
		assert.ErrorIs(t, err, authDomain.ErrHandshakeTokenNotFound)
	})
}

func TestPostgreSQLHandshakeTokenRepository_Approve(t *testing.T) {
	id := uuid.Must(uuid.NewV7())
	ownerID := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHandshakeTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $3 AND owner_id IS NULL")).
			WithArgs(ownerID, "hash", id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Approve(context.Background(), id, ownerID, "hash"))
	})

	t.Run("Error_AlreadyApproved", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHandshakeTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("WHERE id = $3 AND owner_id IS NULL")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Approve(context.Background(), id, ownerID, "hash"), authDomain.ErrTokenAlreadyApproved)
	})
}

func TestPostgreSQLHandshakeTokenRepository_Delete(t *testing.T) {
	id := uuid.Must(uuid.NewV7())

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHandshakeTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM application_tokens WHERE id = $1")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Delete(context.Background(), id))
	})

	t.Run("Error_AlreadyConsumed", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLHandshakeTokenRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM application_tokens WHERE id = $1")).
			WithArgs(id).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Delete(context.Background(), id), authDomain.ErrHandshakeTokenNotFound)
	})
}

func TestPostgreSQLHandshakeTokenRepository_Cleanup(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLHandshakeTokenRepository(db)
	ctx := context.Background()
	appID := uuid.Must(uuid.NewV7())
	before := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM application_tokens WHERE application_id = $1")).
		WithArgs(appID).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM application_tokens WHERE created_at < $1")).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 5))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM application_tokens WHERE created_at < $1")).
		WithArgs(before).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(6))

	count, err := repo.DeleteByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = repo.DeleteCreatedBefore(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, int64(5), count)

	count, err = repo.CountCreatedBefore(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, int64(6), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
