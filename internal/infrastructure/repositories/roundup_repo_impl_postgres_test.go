package repositories

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

func newPostgresMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)
	return db, mock
}

func TestRoundupRepository_Postgres_InsertUsesOnConflictDoNothing(t *testing.T) {
	db, mock := newPostgresMockDB(t)
	repo := NewRoundupRepository(db)

	mock.ExpectExec(`INSERT INTO "base_batch_roundup" .* ON CONFLICT \("user_id","tx_hash"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	created, err := repo.InsertIfAbsent(context.Background(), newRoundup(uuid.New(), "0xaaa", "2.5", time.Time{}))
	require.NoError(t, err)
	require.True(t, created)

	mock.ExpectExec(`INSERT INTO "base_batch_roundup" .* ON CONFLICT \("user_id","tx_hash"\) DO NOTHING`).
		WillReturnResult(sqlmock.NewResult(0, 0))
	created, err = repo.InsertIfAbsent(context.Background(), newRoundup(uuid.New(), "0xaaa", "2.5", time.Time{}))
	require.NoError(t, err)
	require.False(t, created)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoundupRepository_Postgres_UniqueViolationIsDuplicate(t *testing.T) {
	db, mock := newPostgresMockDB(t)
	repo := NewRoundupRepository(db)

	mock.ExpectExec(`INSERT INTO "base_batch_roundup"`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.UniqueViolation, ConstraintName: "base_batch_roundup_user_tx_key"})
	created, err := repo.InsertIfAbsent(context.Background(), newRoundup(uuid.New(), "0xaaa", "2.5", time.Time{}))
	require.NoError(t, err)
	require.False(t, created)

	mock.ExpectExec(`INSERT INTO "base_batch_roundup"`).
		WillReturnError(&pgconn.PgError{Code: pgerrcode.ForeignKeyViolation})
	_, err = repo.InsertIfAbsent(context.Background(), newRoundup(uuid.New(), "0xbbb", "2.5", time.Time{}))
	require.Error(t, err)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestRoundupRepository_Postgres_MarkDepositedIsSingleUpdate(t *testing.T) {
	db, mock := newPostgresMockDB(t)
	repo := NewRoundupRepository(db)

	mock.ExpectExec(`UPDATE "base_batch_roundup" SET .*"status"=.* WHERE user_id = \$\d+ AND status = \$\d+`).
		WillReturnResult(sqlmock.NewResult(0, 3))
	updated, err := repo.MarkDeposited(context.Background(), uuid.New(), "0xdeposit", time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(3), updated)

	mock.ExpectExec(`UPDATE "base_batch_roundup"`).WillReturnError(errors.New("connection reset"))
	_, err = repo.MarkDeposited(context.Background(), uuid.New(), "0xdeposit", time.Now())
	require.EqualError(t, err, "connection reset")

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestIsUniqueViolation(t *testing.T) {
	require.True(t, isUniqueViolation(gorm.ErrDuplicatedKey))
	require.True(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.UniqueViolation}))
	require.False(t, isUniqueViolation(&pgconn.PgError{Code: pgerrcode.CheckViolation}))
	require.False(t, isUniqueViolation(errors.New("boom")))
}
