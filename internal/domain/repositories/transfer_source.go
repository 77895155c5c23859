package repositories

import (
	"context"

	"coffee-change.backend/internal/domain/entities"
)

// TransferSource lists a wallet's outgoing transfers of the tracked token, newest first
type TransferSource interface {
	ListOutgoingTransfers(ctx context.Context, walletAddress string) ([]entities.TransferRecord, error)
}
