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

var applicationRowColumns = []string{
	"id", "owner_id", "name", "url", "app_key", "default_rights", "created_at", "updated_at",
}

func TestPostgreSQLApplicationRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLApplicationRepository(db)
	now := time.Now().UTC()

	app := &authDomain.Application{
		ID:            uuid.Must(uuid.NewV7()),
		OwnerID:       uuid.Must(uuid.NewV7()),
		Name:          "Cool client",
		URL:           "https://client.example.com",
		Key:           "app-key",
		DefaultRights: authDomain.SendQuestion,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO applications")).
		WithArgs(app.ID, app.OwnerID, app.Name, app.URL, app.Key, int64(1), now, now).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), app))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLApplicationRepository_GetByKey(t *testing.T) {
	now := time.Now().UTC()

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLApplicationRepository(db)
		id := uuid.Must(uuid.NewV7())
		ownerID := uuid.Must(uuid.NewV7())

		mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE app_key = $1")).
			WithArgs("app-key").
			WillReturnRows(sqlmock.NewRows(applicationRowColumns).
				AddRow(id.String(), ownerID.String(), "Client", "https://c.example", "app-key", int64(3), now, now))

		app, err := repo.GetByKey(context.Background(), "app-key")
		require.NoError(t, err)
		assert.Equal(t, id, app.ID)
		assert.Equal(t, ownerID, app.OwnerID)
		assert.Equal(t, authDomain.SendQuestion|authDomain.AnswerQuestion, app.DefaultRights)
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLApplicationRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE app_key = $1")).
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByKey(context.Background(), "missing")
		assert.ErrorIs(t, err, authDomain.ErrApplicationNotFound)
	})
}

func TestPostgreSQLApplicationRepository_GetByID_NotFound(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLApplicationRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE id = $1")).
		WithArgs(id).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), id)
	assert.ErrorIs(t, err, authDomain.ErrApplicationNotFound)
}

func TestPostgreSQLApplicationRepository_Update(t *testing.T) {
	now := time.Now().UTC()
	app := &authDomain.Application{
		ID:            uuid.Must(uuid.NewV7()),
		Name:          "Renamed",
		URL:           "https://c.example",
		Key:           "new-key",
		DefaultRights: authDomain.LikeQuestion,
		UpdatedAt:     now,
	}

	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLApplicationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE applications")).
			WithArgs("Renamed", "https://c.example", "new-key", int64(4), now, app.ID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.Update(context.Background(), app))
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLApplicationRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("UPDATE applications")).
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.Update(context.Background(), app), authDomain.ErrApplicationNotFound)
	})
}

func TestPostgreSQLApplicationRepository_Lists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLApplicationRepository(db)
	ctx := context.Background()
	now := time.Now().UTC()
	userID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("FROM applications WHERE owner_id = $1 ORDER BY name")).
		WithArgs(userID).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).
			AddRow(uuid.NewString(), userID.String(), "A", "", "k1", int64(1), now, now).
			AddRow(uuid.NewString(), userID.String(), "B", "", "k2", int64(2), now, now))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT application_id FROM sessions")).
		WithArgs(userID, now).
		WillReturnRows(sqlmock.NewRows(applicationRowColumns).
			AddRow(uuid.NewString(), uuid.NewString(), "Other", "", "k3", int64(1), now, now))

	owned, err := repo.ListByOwner(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, owned, 2)

	subscribed, err := repo.ListSubscribed(ctx, userID, now)
	require.NoError(t, err)
	require.Len(t, subscribed, 1)
	assert.Equal(t, "Other", subscribed[0].Name)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLApplicationRepository_CountAndNameExists(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLApplicationRepository(db)
	ctx := context.Background()
	ownerID := uuid.Must(uuid.NewV7())
	excludeID := uuid.Must(uuid.NewV7())

	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM applications WHERE owner_id = $1")).
		WithArgs(ownerID).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(3))
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(name) = LOWER($2)")).
		WithArgs(ownerID, "client", uuid.NullUUID{}).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(true))
	mock.ExpectQuery(regexp.QuoteMeta("LOWER(name) = LOWER($2)")).
		WithArgs(ownerID, "client", uuid.NullUUID{UUID: excludeID, Valid: true}).
		WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))

	count, err := repo.CountByOwner(ctx, ownerID)
	require.NoError(t, err)
	assert.Equal(t, 3, count)

	exists, err := repo.NameExists(ctx, ownerID, "client", nil)
	require.NoError(t, err)
	assert.True(t, exists)

	exists, err = repo.NameExists(ctx, ownerID, "client", &excludeID)
	require.NoError(t, err)
	assert.False(t, exists)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLApplicationRepository_Delete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLApplicationRepository(db)
	id := uuid.Must(uuid.NewV7())

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM applications WHERE id = $1")).
		WithArgs(id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete(context.Background(), id), authDomain.ErrApplicationNotFound)
}
