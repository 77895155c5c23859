package entities

import (
	"errors"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultTokenDecimals is the USDC precision used when the source omits decimals.
const DefaultTokenDecimals = 6

// maxTokenDecimals matches the scale of the stored NUMERIC(38,18) amounts.
const maxTokenDecimals = 18

var (
	ErrMissingTxHash   = errors.New("transfer has no transaction hash")
	ErrMalformedAmount = errors.New("transfer amount is malformed")
)

// TransferRecord is an outgoing token transfer as delivered by the transfer
// source. Any field may be absent.
type TransferRecord struct {
	TxHash   *string
	Value    *string
	Decimals *string
}

// Transfer is a parsed transfer with its amount in whole token units
type Transfer struct {
	TxHash string
	Amount decimal.Decimal
}

// ParseTransfer validates a raw record. A missing hash yields ErrMissingTxHash;
// the returned Transfer still carries the hash when only the amount is bad.
func ParseTransfer(rec TransferRecord) (Transfer, error) {
	if rec.TxHash == nil || strings.TrimSpace(*rec.TxHash) == "" {
		return Transfer{}, ErrMissingTxHash
	}
	t := Transfer{TxHash: strings.ToLower(strings.TrimSpace(*rec.TxHash))}

	if rec.Value == nil {
		return t, ErrMalformedAmount
	}
	raw := strings.TrimSpace(*rec.Value)
	if raw == "" || strings.Trim(raw, "0123456789") != "" {
		return t, ErrMalformedAmount
	}
	value, err := decimal.NewFromString(raw)
	if err != nil {
		return t, ErrMalformedAmount
	}

	decimals := DefaultTokenDecimals
	if rec.Decimals != nil && strings.TrimSpace(*rec.Decimals) != "" {
		d, err := strconv.Atoi(strings.TrimSpace(*rec.Decimals))
		if err != nil || d < 0 || d > maxTokenDecimals {
			return t, ErrMalformedAmount
		}
		decimals = d
	}

	amount := value.Shift(-int32(decimals))
	if !amount.IsPositive() {
		return t, ErrMalformedAmount
	}
	t.Amount = amount
	return t, nil
}

// SyncResult reports what one sync call did
type SyncResult struct {
	UserID             uuid.UUID
	IsNewUser          bool
	NewRecords         int
	SkippedDuplicates  int
	SkippedWholeDollar int
	TotalFetched       int
	Message            string
}
