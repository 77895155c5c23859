package repositories

import (
	"context"
	"testing"
	"time"

	"coffee-change.backend/internal/domain/entities"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func seedUser(t *testing.T, repo *UserRepository, wallet string) *entities.User {
	t.Helper()
	u, _, err := repo.GetOrCreate(context.Background(), wallet)
	require.NoError(t, err)
	return u
}

func newRoundup(userID uuid.UUID, hash, usdc string, createdAt time.Time) *entities.Roundup {
	amount := decimal.RequireFromString(usdc)
	return &entities.Roundup{
		UserID:        userID,
		TxHash:        hash,
		UsdcAmount:    amount,
		RoundupAmount: entities.RoundupFor(amount),
		CreatedAt:     createdAt,
	}
}

func TestRoundupRepository_InsertIfAbsent(t *testing.T) {
	db := newTestDB(t)
	createLedgerTables(t, db)
	users := NewUserRepository(db)
	repo := NewRoundupRepository(db)
	ctx := context.Background()
	user := seedUser(t, users, "0xabc")

	r := newRoundup(user.ID, "0xaaa", "2.5", time.Time{})
	created, err := repo.InsertIfAbsent(ctx, r)
	require.NoError(t, err)
	require.True(t, created)
	require.NotEqual(t, uuid.Nil, r.ID)
	require.False(t, r.CreatedAt.IsZero())

	created, err = repo.InsertIfAbsent(ctx, newRoundup(user.ID, "0xaaa", "2.5", time.Time{}))
	require.NoError(t, err)
	require.False(t, created, "same (user, tx_hash) must not insert twice")

	other := seedUser(t, users, "0xdef")
	created, err = repo.InsertIfAbsent(ctx, newRoundup(other.ID, "0xaaa", "2.5", time.Time{}))
	require.NoError(t, err)
	require.True(t, created, "uniqueness is per user")

	hashes, err := repo.ListTxHashes(ctx, user.ID)
	require.NoError(t, err)
	require.Equal(t, []string{"0xaaa"}, hashes)
}

func TestRoundupRepository_ListByStatusNewestFirst(t *testing.T) {
	db := newTestDB(t)
	createLedgerTables(t, db)
	users := NewUserRepository(db)
	repo := NewRoundupRepository(db)
	ctx := context.Background()
	user := seedUser(t, users, "0xabc")

	base := time.Now().Add(-time.Hour)
	for i, hash := range []string{"0x01", "0x02", "0x03"} {
		_, err := repo.InsertIfAbsent(ctx, newRoundup(user.ID, hash, "1.25", base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	pending, err := repo.ListByStatus(ctx, user.ID, false)
	require.NoError(t, err)
	require.Len(t, pending, 3)
	require.Equal(t, "0x03", pending[0].TxHash)
	require.Equal(t, "0x01", pending[2].TxHash)
	require.True(t, pending[0].RoundupAmount.Equal(decimal.RequireFromString("0.75")))
	require.False(t, pending[0].DepositTxHash.Valid)

	deposited, err := repo.ListByStatus(ctx, user.ID, true)
	require.NoError(t, err)
	require.Empty(t, deposited)
}

func TestRoundupRepository_MarkDeposited(t *testing.T) {
	db := newTestDB(t)
	createLedgerTables(t, db)
	users := NewUserRepository(db)
	repo := NewRoundupRepository(db)
	ctx := context.Background()
	user := seedUser(t, users, "0xabc")
	other := seedUser(t, users, "0xdef")

	_, err := repo.InsertIfAbsent(ctx, newRoundup(user.ID, "0x01", "2.5", time.Time{}))
	require.NoError(t, err)
	_, err = repo.InsertIfAbsent(ctx, newRoundup(user.ID, "0x02", "3.45", time.Time{}))
	require.NoError(t, err)
	_, err = repo.InsertIfAbsent(ctx, newRoundup(other.ID, "0x03", "1.5", time.Time{}))
	require.NoError(t, err)

	now := time.Now()
	updated, err := repo.MarkDeposited(ctx, user.ID, "0xdeposit", now)
	require.NoError(t, err)
	require.Equal(t, int64(2), updated)

	updated, err = repo.MarkDeposited(ctx, user.ID, "0xdeposit2", now)
	require.NoError(t, err)
	require.Equal(t, int64(0), updated)

	deposited, err := repo.ListByStatus(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, deposited, 2)
	for _, r := range deposited {
		require.True(t, r.Deposited)
		require.Equal(t, "0xdeposit", r.DepositTxHash.String)
		require.True(t, r.DepositedAt.Valid)
	}
	require.True(t, entities.SumRoundups(deposited).Equal(decimal.RequireFromString("1.05")))

	otherPending, err := repo.ListByStatus(ctx, other.ID, false)
	require.NoError(t, err)
	require.Len(t, otherPending, 1)
}

func TestRoundupRepository_MarkDepositedWithoutHash(t *testing.T) {
	db := newTestDB(t)
	createLedgerTables(t, db)
	users := NewUserRepository(db)
	repo := NewRoundupRepository(db)
	ctx := context.Background()
	user := seedUser(t, users, "0xabc")

	_, err := repo.InsertIfAbsent(ctx, newRoundup(user.ID, "0x01", "2.5", time.Time{}))
	require.NoError(t, err)

	updated, err := repo.MarkDeposited(ctx, user.ID, "", time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(1), updated)

	deposited, err := repo.ListByStatus(ctx, user.ID, true)
	require.NoError(t, err)
	require.Len(t, deposited, 1)
	require.False(t, deposited[0].DepositTxHash.Valid)
}

func TestRoundupRepository_DBErrorBranches(t *testing.T) {
	db := newTestDB(t)
	repo := NewRoundupRepository(db)
	ctx := context.Background()
	id := uuid.New()

	_, err := repo.ListTxHashes(ctx, id)
	require.Error(t, err)

	_, err = repo.InsertIfAbsent(ctx, newRoundup(id, "0x01", "2.5", time.Time{}))
	require.Error(t, err)

	_, err = repo.ListByStatus(ctx, id, false)
	require.Error(t, err)

	_, err = repo.MarkDeposited(ctx, id, "0x", time.Now())
	require.Error(t, err)
}
