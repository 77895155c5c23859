package usecases

import (
	"context"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"coffee-change.backend/internal/domain/entities"
	domainerrors "coffee-change.backend/internal/domain/errors"
	"coffee-change.backend/pkg/logger"
)

// PositionReader reads a wallet's position from the CoffeeChange vault
type PositionReader interface {
	Position(ctx context.Context, walletAddress string) (*entities.ContractPosition, error)
}

// PortfolioUsecase combines the on-chain vault position with the ledger
type PortfolioUsecase struct {
	contract PositionReader
	balance  *BalanceUsecase
}

// NewPortfolioUsecase creates a new portfolio usecase. contract is nil when
// no RPC endpoint is configured.
func NewPortfolioUsecase(contract PositionReader, balance *BalanceUsecase) *PortfolioUsecase {
	return &PortfolioUsecase{
		contract: contract,
		balance:  balance,
	}
}

// GetPosition returns the vault position of the wallet
func (u *PortfolioUsecase) GetPosition(ctx context.Context, walletAddress string) (*entities.Position, error) {
	wallet := strings.TrimSpace(walletAddress)
	if wallet == "" {
		return nil, domainerrors.BadRequest("Wallet address is required")
	}
	if !common.IsHexAddress(wallet) {
		return nil, domainerrors.BadRequest("Invalid wallet address")
	}
	if u.contract == nil {
		return nil, domainerrors.ServiceUnavailable("On-chain reads are not configured")
	}

	onchain, err := u.contract.Position(ctx, wallet)
	if err != nil {
		logger.Error(ctx, "Failed to read vault position",
			zap.String("wallet", wallet),
			zap.Error(err))
		return nil, domainerrors.BadGateway("Failed to read on-chain position", err)
	}

	total, err := u.balance.TotalDeposited(ctx, wallet)
	if err != nil {
		return nil, err
	}

	return &entities.Position{
		WalletAddress:  entities.NormalizeWallet(wallet),
		Onchain:        *onchain,
		TotalDeposited: total,
	}, nil
}
