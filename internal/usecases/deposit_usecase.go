package usecases

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"go.uber.org/zap"

	"coffee-change.backend/internal/domain/entities"
	domainerrors "coffee-change.backend/internal/domain/errors"
	"coffee-change.backend/internal/domain/repositories"
	"coffee-change.backend/pkg/logger"
	"coffee-change.backend/pkg/metrics"
)

var nowUTC = func() time.Time { return time.Now().UTC() }

// ReceiptFetcher looks up a mined transaction receipt
type ReceiptFetcher interface {
	GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error)
}

// DepositUsecase finalizes deposits of pending round-ups
type DepositUsecase struct {
	userRepo      repositories.UserRepository
	roundupRepo   repositories.RoundupRepository
	uow           repositories.UnitOfWork
	receipts      ReceiptFetcher
	verifyReceipt bool
}

// NewDepositUsecase creates a new deposit usecase. receipts may be nil, in
// which case receipt verification is skipped.
func NewDepositUsecase(
	userRepo repositories.UserRepository,
	roundupRepo repositories.RoundupRepository,
	uow repositories.UnitOfWork,
	receipts ReceiptFetcher,
	verifyReceipt bool,
) *DepositUsecase {
	return &DepositUsecase{
		userRepo:      userRepo,
		roundupRepo:   roundupRepo,
		uow:           uow,
		receipts:      receipts,
		verifyReceipt: verifyReceipt,
	}
}

// FinalizeDeposit flips every pending round-up of the wallet to deposited and
// stamps them with the deposit hash.
func (u *DepositUsecase) FinalizeDeposit(ctx context.Context, walletAddress, depositTxHash string) (*entities.DepositResult, error) {
	wallet := entities.NormalizeWallet(walletAddress)
	if wallet == "" {
		return nil, domainerrors.BadRequest("Wallet address is required")
	}
	txHash := strings.ToLower(strings.TrimSpace(depositTxHash))

	user, err := u.userRepo.GetByWalletAddress(ctx, wallet)
	if err != nil {
		if errors.Is(err, domainerrors.ErrNotFound) {
			return nil, domainerrors.NotFound("User not found")
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	if err := u.checkReceipt(ctx, txHash); err != nil {
		return nil, err
	}

	result := &entities.DepositResult{UserID: user.ID, DepositTxHash: txHash}
	err = u.uow.Do(ctx, func(txCtx context.Context) error {

		updated, err := u.roundupRepo.MarkDeposited(txCtx, user.ID, txHash, nowUTC())
		if err != nil {
			return fmt.Errorf("mark deposited: %w", err)
		}
		result.UpdatedCount = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.DepositsFinalized.Inc()
	metrics.RoundupsDeposited.Add(float64(result.UpdatedCount))
	logger.Info(ctx, "Deposit finalized",
		zap.String("wallet", wallet),
		zap.String("deposit_tx_hash", txHash),
		zap.Int64("updated", result.UpdatedCount))

	return result, nil
}

func (u *DepositUsecase) checkReceipt(ctx context.Context, txHash string) error {
	if !u.verifyReceipt || txHash == "" {
		return nil
	}
	if u.receipts == nil {
		logger.Warn(ctx, "Receipt verification enabled without RPC client, skipping")
		return nil
	}

	receipt, err := u.receipts.GetTransactionReceipt(ctx, txHash)
	if err != nil || receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		logger.Warn(ctx, "Deposit transaction not confirmed",
			zap.String("deposit_tx_hash", txHash),
			zap.Error(err))
		return domainerrors.NewAppError(http.StatusBadRequest, domainerrors.CodeBadRequest, "Deposit transaction is not confirmed", domainerrors.ErrDepositNotConfirmed)
	}
	return nil
}
