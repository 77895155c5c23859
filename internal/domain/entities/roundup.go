package entities

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/volatiletech/null/v8"
)

// DepositThreshold is the pending total at which a user may deposit.
var DepositThreshold = decimal.NewFromInt(1)

// Roundup is the spare change recorded for one outgoing USDC transfer
type Roundup struct {
	ID            uuid.UUID       `json:"id"`
	UserID        uuid.UUID       `json:"user_id"`
	TxHash        string          `json:"tx_hash"`
	UsdcAmount    decimal.Decimal `json:"usdc_amount"`
	RoundupAmount decimal.Decimal `json:"roundup_amount"`
	Deposited     bool            `json:"status"`
	DepositTxHash null.String     `json:"deposit_tx_hash"`
	DepositedAt   null.Time       `json:"deposited_at"`
	CreatedAt     time.Time       `json:"created_at"`
}

// RoundupFor returns ceil(amount) - amount.
func RoundupFor(amount decimal.Decimal) decimal.Decimal {
	return amount.Ceil().Sub(amount)
}

// SumRoundups totals the roundup amount of the given rows.
func SumRoundups(items []*Roundup) decimal.Decimal {
	total := decimal.Zero
	for _, r := range items {
		total = total.Add(r.RoundupAmount)
	}
	return total
}

// CanDeposit reports whether a pending total reaches the deposit threshold.
func CanDeposit(totalPending decimal.Decimal) bool {
	return totalPending.GreaterThanOrEqual(DepositThreshold)
}

// PendingRoundups is the not-yet-deposited view of a user's ledger
type PendingRoundups struct {
	UserID       *uuid.UUID
	Roundups     []*Roundup
	TotalPending decimal.Decimal
	CanDeposit   bool
}

// DepositedRoundups is the deposited view of a user's ledger
type DepositedRoundups struct {
	UserID         *uuid.UUID
	Roundups       []*Roundup
	TotalDeposited decimal.Decimal
}

// DepositResult is the outcome of finalizing a deposit
type DepositResult struct {
	UserID        uuid.UUID
	UpdatedCount  int64
	DepositTxHash string
}
