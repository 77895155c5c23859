package entities

import (
	"math/big"
	"time"

	"github.com/shopspring/decimal"
)

// PriceSource tells where an ETH price came from
type PriceSource string

const (
	PriceSourceOracle   PriceSource = "oracle"
	PriceSourceCache    PriceSource = "cache"
	PriceSourceFallback PriceSource = "fallback"
)

// EthPrice is the USD price of one ETH
type EthPrice struct {
	Price     decimal.Decimal `json:"price"`
	UpdatedAt time.Time       `json:"updatedAt"`
	Source    PriceSource     `json:"source"`
}

// OracleReading is a raw oracle value with 18 decimals and its unix age
type OracleReading struct {
	Value *big.Int
	Age   *big.Int
}

// DepositQuote is the ETH needed to deposit the pending round-ups
type DepositQuote struct {
	TotalPending decimal.Decimal
	EthPrice     EthPrice
	RequiredEth  decimal.Decimal
	CanDeposit   bool
}

// ContractPosition mirrors s_userPositions on the CoffeeChange contract
type ContractPosition struct {
	DepositsInContract  *big.Int
	DepositedInAave     *big.Int
	FirstContributionAt *big.Int
	TimestampToWithdraw *big.Int
	ContractBalanceWei  *big.Int
}

// Position combines the on-chain position with the stored deposit history
type Position struct {
	WalletAddress  string
	Onchain        ContractPosition
	TotalDeposited decimal.Decimal
}

// WeiToEth converts a wei amount to ETH.
func WeiToEth(wei *big.Int) decimal.Decimal {
	if wei == nil {
		return decimal.Zero
	}
	return decimal.NewFromBigInt(wei, -18)
}
