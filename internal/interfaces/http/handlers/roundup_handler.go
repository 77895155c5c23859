package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"coffee-change.backend/internal/domain/entities"
	domainerrors "coffee-change.backend/internal/domain/errors"
	"coffee-change.backend/internal/interfaces/http/response"
	"coffee-change.backend/internal/usecases"
)

const msgWalletRequired = "Wallet address is required"

type syncService interface {
	Sync(ctx context.Context, walletAddress string) (*entities.SyncResult, error)
}

type balanceService interface {
	GetPending(ctx context.Context, walletAddress string) (*entities.PendingRoundups, error)
	GetDeposited(ctx context.Context, walletAddress string) (*entities.DepositedRoundups, error)
}

type depositService interface {
	FinalizeDeposit(ctx context.Context, walletAddress, depositTxHash string) (*entities.DepositResult, error)
}

// RoundupHandler handles the round-up ledger endpoints
type RoundupHandler struct {
	syncUsecase    syncService
	balanceUsecase balanceService
	depositUsecase depositService
}

// NewRoundupHandler creates a new round-up handler
func NewRoundupHandler(
	syncUsecase *usecases.SyncUsecase,
	balanceUsecase *usecases.BalanceUsecase,
	depositUsecase *usecases.DepositUsecase,
) *RoundupHandler {
	return &RoundupHandler{
		syncUsecase:    syncUsecase,
		balanceUsecase: balanceUsecase,
		depositUsecase: depositUsecase,
	}
}

// SyncTransactions imports the wallet's outgoing USDC transfers
// POST /api/sync-transactions
func (h *RoundupHandler) SyncTransactions(c *gin.Context) {
	wallet, ok := bindWallet(c)
	if !ok {
		return
	}

	result, err := h.syncUsecase.Sync(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"success":             true,
		"userId":              result.UserID,
		"isNewUser":           result.IsNewUser,
		"newTransactions":     result.NewRecords,
		"skippedDuplicates":   result.SkippedDuplicates,
		"skippedWholeNumbers": result.SkippedWholeDollar,
		"totalFromApi":        result.TotalFetched,
		"message":             result.Message,
	})
}

// GetRoundups returns the pending round-ups
// POST /api/get-roundups
func (h *RoundupHandler) GetRoundups(c *gin.Context) {
	wallet, ok := bindWallet(c)
	if !ok {
		return
	}

	view, err := h.balanceUsecase.GetPending(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{
		"success":      true,
		"roundups":     toRoundupRows(view.Roundups),
		"totalPending": view.TotalPending.InexactFloat64(),
		"canDeposit":   view.CanDeposit,
	}
	if view.UserID != nil {
		body["userId"] = *view.UserID
	}
	response.Success(c, http.StatusOK, body)
}

// GetDepositedRoundups returns the deposited round-ups
// POST /api/get-deposited-roundups
func (h *RoundupHandler) GetDepositedRoundups(c *gin.Context) {
	wallet, ok := bindWallet(c)
	if !ok {
		return
	}

	view, err := h.balanceUsecase.GetDeposited(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	body := gin.H{
		"success":        true,
		"roundups":       toRoundupRows(view.Roundups),
		"totalDeposited": view.TotalDeposited.InexactFloat64(),
	}
	if view.UserID != nil {
		body["userId"] = *view.UserID
	}
	response.Success(c, http.StatusOK, body)
}

// MarkDeposited finalizes a deposit of every pending round-up
// POST /api/mark-deposited
func (h *RoundupHandler) MarkDeposited(c *gin.Context) {
	var input entities.MarkDepositedInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return
	}
	if strings.TrimSpace(input.WalletAddress) == "" {
		response.Error(c, domainerrors.BadRequest(msgWalletRequired))
		return
	}

	result, err := h.depositUsecase.FinalizeDeposit(c.Request.Context(), input.WalletAddress, input.TxHash)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"success":       true,
		"updatedCount":  result.UpdatedCount,
		"depositTxHash": result.DepositTxHash,
		"message":       fmt.Sprintf("Marked %d roundups as deposited", result.UpdatedCount),
	})
}

func bindWallet(c *gin.Context) (string, bool) {
	var input entities.WalletInput
	if err := c.ShouldBindJSON(&input); err != nil {
		response.Error(c, domainerrors.BadRequest("Invalid request body"))
		return "", false
	}
	if strings.TrimSpace(input.WalletAddress) == "" {
		response.Error(c, domainerrors.BadRequest(msgWalletRequired))
		return "", false
	}
	return input.WalletAddress, true
}
