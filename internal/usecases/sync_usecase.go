package usecases

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"coffee-change.backend/internal/domain/entities"
	domainerrors "coffee-change.backend/internal/domain/errors"
	"coffee-change.backend/internal/domain/repositories"
	"coffee-change.backend/pkg/logger"
	"coffee-change.backend/pkg/metrics"
	"coffee-change.backend/pkg/utils"
)

const (
	msgSourceUnavailable = "User created but no transactions found"
	msgNoTransfers       = "No USDC transactions found for this wallet"
)

// SyncUsecase imports a wallet's outgoing USDC transfers into the round-up ledger
type SyncUsecase struct {
	userRepo    repositories.UserRepository
	roundupRepo repositories.RoundupRepository
	source      repositories.TransferSource
}

// NewSyncUsecase creates a new sync usecase
func NewSyncUsecase(
	userRepo repositories.UserRepository,
	roundupRepo repositories.RoundupRepository,
	source repositories.TransferSource,
) *SyncUsecase {
	return &SyncUsecase{
		userRepo:    userRepo,
		roundupRepo: roundupRepo,
		source:      source,
	}
}

// Sync records a round-up for every new non-whole-dollar transfer of the
// wallet. A first-time wallet only gets its most recent transfer imported.
func (u *SyncUsecase) Sync(ctx context.Context, walletAddress string) (*entities.SyncResult, error) {
	wallet := entities.NormalizeWallet(walletAddress)
	if wallet == "" {
		return nil, domainerrors.BadRequest("Wallet address is required")
	}

	user, created, err := u.userRepo.GetOrCreate(ctx, wallet)
	if err != nil {
		metrics.SyncRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, fmt.Errorf("get or create user: %w", err)
	}

	known, err := u.knownHashes(ctx, user)
	if err != nil {
		metrics.SyncRuns.WithLabelValues(metrics.OutcomeFailed).Inc()
		return nil, err
	}

	result := &entities.SyncResult{UserID: user.ID, IsNewUser: created}

	items, err := u.source.ListOutgoingTransfers(ctx, wallet)
	if err != nil {
		logger.Warn(ctx, "Transfer source unavailable",
			zap.String("wallet", wallet),
			zap.Error(err))
		metrics.SyncRuns.WithLabelValues(metrics.OutcomeSourceUnavailable).Inc()
		result.Message = msgSourceUnavailable
		return result, nil
	}
	if len(items) == 0 {
		metrics.SyncRuns.WithLabelValues(metrics.OutcomeNoTransfers).Inc()
		result.Message = msgNoTransfers
		return result, nil
	}

	result.TotalFetched = len(items)
	toProcess := items
	if created {
		toProcess = items[:1]
	}

	handled := make(map[string]struct{}, len(toProcess))
	for _, rec := range toProcess {
		u.processTransfer(ctx, user, rec, known, handled, result)
	}

	result.Message = fmt.Sprintf("Synced %d new transactions, skipped %d duplicates", result.NewRecords, result.SkippedDuplicates)
	metrics.SyncRuns.WithLabelValues(metrics.OutcomeSynced).Inc()

	logger.Info(ctx, "Wallet synced",
		zap.String("wallet", wallet),
		zap.Bool("new_user", created),
		zap.Int("fetched", result.TotalFetched),
		zap.Int("inserted", result.NewRecords),
		zap.Int("duplicates", result.SkippedDuplicates),
		zap.Int("whole_dollar", result.SkippedWholeDollar))

	return result, nil
}

func (u *SyncUsecase) knownHashes(ctx context.Context, user *entities.User) (map[string]struct{}, error) {
	hashes, err := u.roundupRepo.ListTxHashes(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("list known transactions: %w", err)
	}
	known := make(map[string]struct{}, len(hashes))
	for _, h := range hashes {
		known[strings.ToLower(strings.TrimSpace(h))] = struct{}{}
	}
	return known, nil
}

func (u *SyncUsecase) processTransfer(
	ctx context.Context,
	user *entities.User,
	rec entities.TransferRecord,
	known, handled map[string]struct{},
	result *entities.SyncResult,
) {
	transfer, parseErr := entities.ParseTransfer(rec)
	if errors.Is(parseErr, entities.ErrMissingTxHash) {
		logger.Debug(ctx, "Skipping transfer without hash")
		return
	}
	hash := transfer.TxHash

	if _, ok := handled[hash]; ok {
		result.SkippedDuplicates++
		metrics.SyncTransfers.WithLabelValues(metrics.TransferDuplicate).Inc()
		return
	}
	if _, ok := known[hash]; ok {
		handled[hash] = struct{}{}
		result.SkippedDuplicates++
		metrics.SyncTransfers.WithLabelValues(metrics.TransferDuplicate).Inc()
		logger.Debug(ctx, "Skipping known transfer", zap.String("tx_hash", utils.ShortHash(hash)))
		return
	}
	if parseErr != nil {
		handled[hash] = struct{}{}
		metrics.SyncTransfers.WithLabelValues(metrics.TransferMalformed).Inc()
		logger.Warn(ctx, "Skipping transfer with malformed amount",
			zap.String("tx_hash", hash),
			zap.Error(parseErr))
		return
	}

	roundup := entities.RoundupFor(transfer.Amount)
	if roundup.IsZero() {
		handled[hash] = struct{}{}
		result.SkippedWholeDollar++
		metrics.SyncTransfers.WithLabelValues(metrics.TransferWholeDollar).Inc()
		logger.Debug(ctx, "Skipping whole-dollar transfer",
			zap.String("tx_hash", utils.ShortHash(hash)),
			zap.String("amount", transfer.Amount.String()))
		return
	}

	handled[hash] = struct{}{}
	inserted, err := u.roundupRepo.InsertIfAbsent(ctx, &entities.Roundup{
		UserID:        user.ID,
		TxHash:        hash,
		UsdcAmount:    transfer.Amount,
		RoundupAmount: roundup,
	})
	if err != nil {
		metrics.SyncTransfers.WithLabelValues(metrics.TransferFailed).Inc()
		logger.Error(ctx, "Failed to insert roundup",
			zap.String("tx_hash", hash),
			zap.Error(err))
		return
	}

	known[hash] = struct{}{}
	if !inserted {
		result.SkippedDuplicates++
		metrics.SyncTransfers.WithLabelValues(metrics.TransferDuplicate).Inc()
		return
	}

	result.NewRecords++
	metrics.SyncTransfers.WithLabelValues(metrics.TransferInserted).Inc()
	logger.Debug(ctx, "Recorded roundup",
		zap.String("tx_hash", utils.ShortHash(hash)),
		zap.String("amount", transfer.Amount.String()),
		zap.String("roundup", roundup.String()))
}
