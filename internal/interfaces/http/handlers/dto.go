package handlers

import (
	"time"

	"github.com/google/uuid"

	"coffee-change.backend/internal/domain/entities"
)

// roundupRow is the wire shape of a ledger row. Amounts are JSON numbers.
type roundupRow struct {
	ID            uuid.UUID  `json:"id"`
	UserID        uuid.UUID  `json:"user_id"`
	TxHash        string     `json:"tx_hash"`
	UsdcAmount    float64    `json:"usdc_amount"`
	RoundupAmount float64    `json:"roundup_amount"`
	Status        bool       `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	DepositTxHash *string    `json:"deposit_tx_hash,omitempty"`
	DepositedAt   *time.Time `json:"deposited_at,omitempty"`
}

func toRoundupRows(items []*entities.Roundup) []roundupRow {
	rows := make([]roundupRow, 0, len(items))
	for _, r := range items {
		rows = append(rows, roundupRow{
			ID:            r.ID,
			UserID:        r.UserID,
			TxHash:        r.TxHash,
			UsdcAmount:    r.UsdcAmount.InexactFloat64(),
			RoundupAmount: r.RoundupAmount.InexactFloat64(),
			Status:        r.Deposited,
			CreatedAt:     r.CreatedAt,
			DepositTxHash: r.DepositTxHash.Ptr(),
			DepositedAt:   r.DepositedAt.Ptr(),
		})
	}
	return rows
}
