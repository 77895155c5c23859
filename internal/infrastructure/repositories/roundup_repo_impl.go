package repositories

import (
	"context"
	"errors"
	"time"

	"coffee-change.backend/internal/domain/entities"
	"coffee-change.backend/internal/infrastructure/models"
	"coffee-change.backend/pkg/utils"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/volatiletech/null/v8"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// RoundupRepository implements round-up ledger operations
type RoundupRepository struct {
	db *gorm.DB
}

// NewRoundupRepository creates a new round-up repository
func NewRoundupRepository(db *gorm.DB) *RoundupRepository {
	return &RoundupRepository{db: db}
}

// ListTxHashes returns every transaction hash recorded for the user
func (r *RoundupRepository) ListTxHashes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	var hashes []string
	if err := GetDB(ctx, r.db).Model(&models.Roundup{}).
		Where("user_id = ?", userID).
		Pluck("tx_hash", &hashes).Error; err != nil {
		return nil, err
	}
	return hashes, nil
}

// InsertIfAbsent inserts the round-up unless the user already has a row for
// the same transaction hash. A unique violation counts as "already there".
func (r *RoundupRepository) InsertIfAbsent(ctx context.Context, roundup *entities.Roundup) (bool, error) {
	m := r.toModel(roundup)
	if m.ID == uuid.Nil {
		m.ID = utils.GenerateUUIDv7()
	}
	if m.CreatedAt.IsZero() {
		m.CreatedAt = time.Now()
	}

	res := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "user_id"}, {Name: "tx_hash"}},
			DoNothing: true,
		}).
		Create(m)
	if res.Error != nil {
		if isUniqueViolation(res.Error) {
			return false, nil
		}
		return false, res.Error
	}
	if res.RowsAffected == 0 {
		return false, nil
	}

	roundup.ID = m.ID
	roundup.CreatedAt = m.CreatedAt
	return true, nil
}

// ListByStatus returns the user's rows with the given deposited flag, newest first
func (r *RoundupRepository) ListByStatus(ctx context.Context, userID uuid.UUID, deposited bool) ([]*entities.Roundup, error) {
	var ms []models.Roundup
	if err := GetDB(ctx, r.db).
		Where("user_id = ? AND status = ?", userID, deposited).
		Order("created_at DESC, id DESC").
		Find(&ms).Error; err != nil {
		return nil, err
	}

	items := make([]*entities.Roundup, 0, len(ms))
	for i := range ms {
		items = append(items, r.toEntity(&ms[i]))
	}
	return items, nil
}

// MarkDeposited flips all pending rows of the user to deposited in one statement
func (r *RoundupRepository) MarkDeposited(ctx context.Context, userID uuid.UUID, depositTxHash string, at time.Time) (int64, error) {
	updates := map[string]interface{}{
		"status":       true,
		"deposited_at": at,
	}
	if depositTxHash != "" {
		updates["deposit_tx_hash"] = depositTxHash
	}

	res := GetDB(ctx, r.db).Model(&models.Roundup{}).
		Where("user_id = ? AND status = ?", userID, false).
		Updates(updates)
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *RoundupRepository) toModel(e *entities.Roundup) *models.Roundup {
	return &models.Roundup{
		ID:            e.ID,
		UserID:        e.UserID,
		TxHash:        e.TxHash,
		UsdcAmount:    e.UsdcAmount,
		RoundupAmount: e.RoundupAmount,
		Deposited:     e.Deposited,
		DepositTxHash: e.DepositTxHash.Ptr(),
		DepositedAt:   e.DepositedAt.Ptr(),
		CreatedAt:     e.CreatedAt,
	}
}

func (r *RoundupRepository) toEntity(m *models.Roundup) *entities.Roundup {
	return &entities.Roundup{
		ID:            m.ID,
		UserID:        m.UserID,
		TxHash:        m.TxHash,
		UsdcAmount:    m.UsdcAmount,
		RoundupAmount: m.RoundupAmount,
		Deposited:     m.Deposited,
		DepositTxHash: null.StringFromPtr(m.DepositTxHash),
		DepositedAt:   null.TimeFromPtr(m.DepositedAt),
		CreatedAt:     m.CreatedAt,
	}
}

func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation
}
