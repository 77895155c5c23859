package handlers

import (
	"context"
	"math/big"
	"net/http"

	"github.com/gin-gonic/gin"

	"coffee-change.backend/internal/domain/entities"
	"coffee-change.backend/internal/interfaces/http/response"
	"coffee-change.backend/internal/usecases"
)

type priceService interface {
	GetEthPrice(ctx context.Context) *entities.EthPrice
	Quote(ctx context.Context, walletAddress string) (*entities.DepositQuote, error)
}

type portfolioService interface {
	GetPosition(ctx context.Context, walletAddress string) (*entities.Position, error)
}

// PriceHandler handles ETH price, deposit quote and vault position endpoints
type PriceHandler struct {
	priceUsecase     priceService
	portfolioUsecase portfolioService
}

// NewPriceHandler creates a new price handler
func NewPriceHandler(priceUsecase *usecases.PriceUsecase, portfolioUsecase *usecases.PortfolioUsecase) *PriceHandler {
	return &PriceHandler{
		priceUsecase:     priceUsecase,
		portfolioUsecase: portfolioUsecase,
	}
}

// GetPrice returns the current ETH/USD price
// GET /api/price
func (h *PriceHandler) GetPrice(c *gin.Context) {
	price := h.priceUsecase.GetEthPrice(c.Request.Context())
	response.Success(c, http.StatusOK, gin.H{
		"success":  true,
		"ethPrice": price.Price.InexactFloat64(),
		"age":      price.UpdatedAt.Unix(),
		"source":   price.Source,
	})
}

// DepositQuote returns the ETH needed to deposit the pending round-ups
// POST /api/deposit-quote
func (h *PriceHandler) DepositQuote(c *gin.Context) {
	wallet, ok := bindWallet(c)
	if !ok {
		return
	}

	quote, err := h.priceUsecase.Quote(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, gin.H{
		"success":      true,
		"totalPending": quote.TotalPending.InexactFloat64(),
		"ethPrice":     quote.EthPrice.Price.InexactFloat64(),
		"priceSource":  quote.EthPrice.Source,
		"requiredEth":  quote.RequiredEth.InexactFloat64(),
		"requiredWei":  quote.RequiredEth.Shift(18).Ceil().String(),
		"canDeposit":   quote.CanDeposit,
	})
}

// GetPosition returns the wallet's CoffeeChange vault position
// POST /api/position
func (h *PriceHandler) GetPosition(c *gin.Context) {
	wallet, ok := bindWallet(c)
	if !ok {
		return
	}

	pos, err := h.portfolioUsecase.GetPosition(c.Request.Context(), wallet)
	if err != nil {
		response.Error(c, err)
		return
	}

	onchain := pos.Onchain
	response.Success(c, http.StatusOK, gin.H{
		"success":                        true,
		"walletAddress":                  pos.WalletAddress,
		"depositsInContract":             entities.WeiToEth(onchain.DepositsInContract).InexactFloat64(),
		"depositedInAave":                entities.WeiToEth(onchain.DepositedInAave).InexactFloat64(),
		"userFirstContributionTimestamp": bigString(onchain.FirstContributionAt),
		"timestampToWithdraw":            bigString(onchain.TimestampToWithdraw),
		"contractBalanceEth":             entities.WeiToEth(onchain.ContractBalanceWei).InexactFloat64(),
		"totalDeposited":                 pos.TotalDeposited.InexactFloat64(),
	})
}

func bigString(n *big.Int) string {
	if n == nil {
		return "0"
	}
	return n.String()
}
