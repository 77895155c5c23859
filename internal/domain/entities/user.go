package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// User is the owner of a wallet that round-ups are tracked for
type User struct {
	ID            uuid.UUID `json:"id"`
	WalletAddress string    `json:"walletAddress"`
	CreatedAt     time.Time `json:"createdAt"`
}

// WalletInput is the request body shared by the wallet-scoped endpoints
type WalletInput struct {
	WalletAddress string `json:"walletAddress"`
}

// MarkDepositedInput is the request body for deposit finalization
type MarkDepositedInput struct {
	WalletAddress string `json:"walletAddress"`
	TxHash        string `json:"txHash"`
}

// NormalizeWallet returns the canonical lowercase form of a wallet address.
func NormalizeWallet(address string) string {
	return strings.ToLower(strings.TrimSpace(address))
}
