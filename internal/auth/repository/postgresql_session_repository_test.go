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

func newMockDB(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db, mock
}

var sessionRowColumns = []string{
	"id", "jti", "user_id", "application_id", "rights", "open_ip", "last_ip",
	"last_login_at", "expires_at", "created_at", "updated_at",
}

func TestPostgreSQLSessionRepository_Create(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLSessionRepository(db)
	now := time.Now().UTC()
	appID := uuid.Must(uuid.NewV7())
	rights := authDomain.SendQuestion | authDomain.LikeQuestion

	session := &authDomain.Session{
		ID:            uuid.Must(uuid.NewV7()),
		JTI:           uuid.NewString(),
		UserID:        uuid.Must(uuid.NewV7()),
		ApplicationID: &appID,
		Rights:        &rights,
		OpenIP:        "10.0.0.1",
		LastIP:        "10.0.0.1",
		LastLoginAt:   now,
		ExpiresAt:     now.Add(2 * time.Hour),
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sessions")).
		WithArgs(
			session.ID, session.JTI, session.UserID,
			uuid.NullUUID{UUID: appID, Valid: true},
			sql.NullInt64{Int64: int64(rights), Valid: true},
			"10.0.0.1", "10.0.0.1",
			sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(), sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Create(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLSessionRepository_GetByJTI(t *testing.T) {
	now := time.Now().UTC()
	userID := uuid.Must(uuid.NewV7())
	appID := uuid.Must(uuid.NewV7())

	t.Run("Success_ApplicationSession", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSessionRepository(db)
		id := uuid.Must(uuid.NewV7())

		rows := sqlmock.NewRows(sessionRowColumns).AddRow(
			id.String(), "jti-1", userID.String(), appID.String(), int64(5),
			"10.0.0.1", "10.0.0.2", now, now.Add(time.Hour), now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE jti = $1")).
			WithArgs("jti-1").
			WillReturnRows(rows)

		session, err := repo.GetByJTI(context.Background(), "jti-1")
		require.NoError(t, err)

		assert.Equal(t, id, session.ID)
		assert.Equal(t, userID, session.UserID)
		require.NotNil(t, session.ApplicationID)
		assert.Equal(t, appID, *session.ApplicationID)
		require.NotNil(t, session.Rights)
		assert.Equal(t, authDomain.SendQuestion|authDomain.LikeQuestion, *session.Rights)
		assert.Equal(t, "10.0.0.2", session.LastIP)
		assert.False(t, session.IsFirstParty())
	})

	t.Run("Success_FirstPartySession", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSessionRepository(db)

		rows := sqlmock.NewRows(sessionRowColumns).AddRow(
			uuid.NewString(), "jti-2", userID.String(), nil, nil,
			"10.0.0.1", "10.0.0.1", now, now.Add(time.Hour), now, now,
		)
		mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE jti = $1")).
			WithArgs("jti-2").
			WillReturnRows(rows)

		session, err := repo.GetByJTI(context.Background(), "jti-2")
		require.NoError(t, err)
		assert.Nil(t, session.ApplicationID)
		assert.Nil(t, session.Rights)
		assert.True(t, session.IsFirstParty())
	})

	t.Run("Error_NotFound", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSessionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE jti = $1")).
			WithArgs("missing").
			WillReturnError(sql.ErrNoRows)

		_, err := repo.GetByJTI(context.Background(), "missing")
		assert.ErrorIs(t, err, authDomain.ErrSessionNotFound)
	})

	t.Run("Error_Database", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSessionRepository(db)

		mock.ExpectQuery(regexp.QuoteMeta("FROM sessions WHERE jti = $1")).
			WillReturnError(assert.AnError)

		_, err := repo.GetByJTI(context.Background(), "jti")
		assert.ErrorIs(t, err, assert.AnError)
		assert.NotErrorIs(t, err, authDomain.ErrSessionNotFound)
	})
}

func TestPostgreSQLSessionRepository_Touch(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLSessionRepository(db)
	now := time.Now().UTC()
	session := &authDomain.Session{ID: uuid.Must(uuid.NewV7())}
	session.Touch("192.168.1.1", now)

	mock.ExpectExec(regexp.QuoteMeta("UPDATE sessions SET last_ip = $1, last_login_at = $2, updated_at = $3 WHERE id = $4")).
		WithArgs("192.168.1.1", now, now, session.ID).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Touch(context.Background(), session))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgreSQLSessionRepository_ListByUser(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLSessionRepository(db)
	now := time.Now().UTC()
	userID := uuid.Must(uuid.NewV7())

	rows := sqlmock.NewRows(sessionRowColumns).
		AddRow(uuid.NewString(), "jti-1", userID.String(), nil, nil, "ip", "ip", now, now.Add(time.Hour), now, now).
		AddRow(uuid.NewString(), "jti-2", userID.String(), nil, nil, "ip", "ip", now, now.Add(time.Hour), now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM sessions")).
		WithArgs(userID, now).
		WillReturnRows(rows)

	sessions, err := repo.ListByUser(context.Background(), userID, now)
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	assert.Equal(t, "jti-1", sessions[0].JTI)
	assert.Equal(t, "jti-2", sessions[1].JTI)
}

func TestPostgreSQLSessionRepository_DeleteByJTI(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSessionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE jti = $1")).
			WithArgs("jti").
			WillReturnResult(sqlmock.NewResult(0, 1))

		assert.NoError(t, repo.DeleteByJTI(context.Background(), "jti"))
	})

	t.Run("Error_NothingDeleted", func(t *testing.T) {
		db, mock := newMockDB(t)
		repo := NewPostgreSQLSessionRepository(db)

		mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE jti = $1")).
			WithArgs("jti").
			WillReturnResult(sqlmock.NewResult(0, 0))

		assert.ErrorIs(t, repo.DeleteByJTI(context.Background(), "jti"), authDomain.ErrSessionNotFound)
	})
}

func TestPostgreSQLSessionRepository_Deletes(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewPostgreSQLSessionRepository(db)
	ctx := context.Background()
	userID := uuid.Must(uuid.NewV7())
	appID := uuid.Must(uuid.NewV7())
	before := time.Now().UTC()

	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE application_id = $1")).
		WithArgs(appID).
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE user_id = $1 AND application_id = $2")).
		WithArgs(userID, appID).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sessions WHERE expires_at < $1")).
		WithArgs(before).
		WillReturnResult(sqlmock.NewResult(0, 7))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM sessions WHERE expires_at < $1")).
		WithArgs(before).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(4))

	count, err := repo.DeleteByApplication(ctx, appID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	count, err = repo.DeleteByUserAndApplication(ctx, userID, appID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = repo.DeleteExpired(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, int64(7), count)

	count, err = repo.CountExpired(ctx, before)
	require.NoError(t, err)
	assert.Equal(t, int64(4), count)

	assert.NoError(t, mock.ExpectationsWereMet())
}
