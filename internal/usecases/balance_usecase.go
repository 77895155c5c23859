package usecases

import (
	"context"
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"coffee-change.backend/internal/domain/entities"
	domainerrors "coffee-change.backend/internal/domain/errors"
	"coffee-change.backend/internal/domain/repositories"
)

// BalanceUsecase serves the pending and deposited views of a user's ledger
type BalanceUsecase struct {
	userRepo    repositories.UserRepository
	roundupRepo repositories.RoundupRepository
}

// NewBalanceUsecase creates a new balance usecase
func NewBalanceUsecase(userRepo repositories.UserRepository, roundupRepo repositories.RoundupRepository) *BalanceUsecase {
	return &BalanceUsecase{
		userRepo:    userRepo,
		roundupRepo: roundupRepo,
	}
}

// GetPending returns the user's pending round-ups newest first. An unknown
// wallet yields an empty view rather than an error.
func (u *BalanceUsecase) GetPending(ctx context.Context, walletAddress string) (*entities.PendingRoundups, error) {
	user, rows, err := u.listForWallet(ctx, walletAddress, false)
	if err != nil {
		return nil, err
	}
	out := &entities.PendingRoundups{
		Roundups:     rows,
		TotalPending: entities.SumRoundups(rows),
	}
	out.CanDeposit = entities.CanDeposit(out.TotalPending)
	if user != nil {
		out.UserID = &user.ID
	}
	return out, nil
}

// GetDeposited returns the user's deposited round-ups newest first
func (u *BalanceUsecase) GetDeposited(ctx context.Context, walletAddress string) (*entities.DepositedRoundups, error) {
	user, rows, err := u.listForWallet(ctx, walletAddress, true)
	if err != nil {
		return nil, err
	}
	out := &entities.DepositedRoundups{
		Roundups:       rows,
		TotalDeposited: entities.SumRoundups(rows),
	}
	if user != nil {
		out.UserID = &user.ID
	}
	return out, nil
}

// TotalDeposited sums the deposited round-ups of a wallet
func (u *BalanceUsecase) TotalDeposited(ctx context.Context, walletAddress string) (decimal.Decimal, error) {
	view, err := u.GetDeposited(ctx, walletAddress)
	if err != nil {
		return decimal.Zero, err
	}
	return view.TotalDeposited, nil
}

func (u *BalanceUsecase) listForWallet(ctx context.Context, walletAddress string, deposited bool) (*entities.User, []*entities.Roundup, error) {
	wallet := entities.NormalizeWallet(walletAddress)
	if wallet == "" {
		return nil, nil, domainerrors.BadRequest("Wallet address is required")
	}

	user, err := u.userRepo.GetByWalletAddress(ctx, wallet)
	if errors.Is(err, domainerrors.ErrNotFound) {
		return nil, []*entities.Roundup{}, nil
	}
	if err != nil {
		return nil, nil, fmt.Errorf("get user: %w", err)
	}

	rows, err := u.roundupRepo.ListByStatus(ctx, user.ID, deposited)
	if err != nil {
		return nil, nil, fmt.Errorf("list roundups: %w", err)
	}
	if rows == nil {
		rows = []*entities.Roundup{}
	}
	return user, rows, nil
}
