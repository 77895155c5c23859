package repositories

import (
	"context"
	"time"

	"coffee-change.backend/internal/domain/entities"
	"github.com/google/uuid"
)

// RoundupRepository defines round-up ledger operations
type RoundupRepository interface {
	ListTxHashes(ctx context.Context, userID uuid.UUID) ([]string, error)
	// InsertIfAbsent inserts the row unless (user_id, tx_hash) already exists.
	InsertIfAbsent(ctx context.Context, roundup *entities.Roundup) (created bool, err error)
	// ListByStatus returns the user's rows with the given deposited flag, newest first.
	ListByStatus(ctx context.Context, userID uuid.UUID, deposited bool) ([]*entities.Roundup, error)
	// MarkDeposited flips every pending row of the user in one statement.
	MarkDeposited(ctx context.Context, userID uuid.UUID, depositTxHash string, at time.Time) (int64, error)
}
