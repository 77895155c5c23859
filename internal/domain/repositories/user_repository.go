package repositories

import (
	"context"

	"coffee-change.backend/internal/domain/entities"
)

// UserRepository defines user data operations
type UserRepository interface {
	GetByWalletAddress(ctx context.Context, walletAddress string) (*entities.User, error)
	// GetOrCreate returns the user for the wallet, creating it when absent.
	// created is true only for the call that inserted the row.
	GetOrCreate(ctx context.Context, walletAddress string) (user *entities.User, created bool, err error)
	Count(ctx context.Context) (int64, error)
	ListWalletAddresses(ctx context.Context) ([]string, error)
}
