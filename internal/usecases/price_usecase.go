package usecases

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"coffee-change.backend/internal/domain/entities"
	"coffee-change.backend/pkg/logger"
	"coffee-change.backend/pkg/redis"
)

const ethPriceCacheKey = "coffeechange:eth_price"

var (
	priceCacheEnabled = redis.Enabled
	priceCacheGet     = redis.Get
	priceCacheSet     = redis.Set
)

// OracleReader reads the raw ETH/USD oracle value
type OracleReader interface {
	Read(ctx context.Context) (*entities.OracleReading, error)
}

// PriceUsecase resolves the ETH price and deposit quotes
type PriceUsecase struct {
	oracle   OracleReader
	balance  *BalanceUsecase
	fallback decimal.Decimal
	cacheTTL time.Duration
}

// NewPriceUsecase creates a new price usecase. oracle may be nil, in which
// case the fallback price is always served.
func NewPriceUsecase(oracle OracleReader, balance *BalanceUsecase, fallback decimal.Decimal, cacheTTL time.Duration) *PriceUsecase {
	return &PriceUsecase{
		oracle:   oracle,
		balance:  balance,
		fallback: fallback,
		cacheTTL: cacheTTL,
	}
}

// GetEthPrice never fails: cache, then oracle, then the configured fallback.
func (u *PriceUsecase) GetEthPrice(ctx context.Context) *entities.EthPrice {
	if cached := u.cachedPrice(ctx); cached != nil {
		return cached
	}

	if u.oracle != nil {
		reading, err := u.oracle.Read(ctx)
		switch {
		case err != nil:
			logger.Warn(ctx, "Oracle read failed, using fallback price", zap.Error(err))
		case reading.Value == nil || reading.Value.Sign() <= 0:
			logger.Warn(ctx, "Oracle returned no price, using fallback price")
		default:
			price := &entities.EthPrice{
				Price:  decimal.NewFromBigInt(reading.Value, -18),
				Source: entities.PriceSourceOracle,
			}
			if reading.Age != nil {
				price.UpdatedAt = time.Unix(reading.Age.Int64(), 0).UTC()
			}
			u.storePrice(ctx, price)
			return price
		}
	}

	return &entities.EthPrice{
		Price:     u.fallback,
		UpdatedAt: nowUTC(),
		Source:    entities.PriceSourceFallback,
	}
}

// Quote returns the ETH needed to deposit the wallet's pending round-ups
func (u *PriceUsecase) Quote(ctx context.Context, walletAddress string) (*entities.DepositQuote, error) {
	pending, err := u.balance.GetPending(ctx, walletAddress)
	if err != nil {
		return nil, err
	}

	price := u.GetEthPrice(ctx)
	required := decimal.Zero
	if price.Price.IsPositive() {
		required = pending.TotalPending.DivRound(price.Price, 18)
	}

	return &entities.DepositQuote{
		TotalPending: pending.TotalPending,
		EthPrice:     *price,
		RequiredEth:  required,
		CanDeposit:   pending.CanDeposit,
	}, nil
}

func (u *PriceUsecase) cachedPrice(ctx context.Context) *entities.EthPrice {
	if !priceCacheEnabled() {
		return nil
	}
	raw, err := priceCacheGet(ctx, ethPriceCacheKey)
	if err != nil {
		if !redis.IsNil(err) {
			logger.Warn(ctx, "Price cache read failed", zap.Error(err))
		}
		return nil
	}
	var price entities.EthPrice
	if err := json.Unmarshal([]byte(raw), &price); err != nil || !price.Price.IsPositive() {
		return nil
	}
	price.Source = entities.PriceSourceCache
	return &price
}

func (u *PriceUsecase) storePrice(ctx context.Context, price *entities.EthPrice) {
	if !priceCacheEnabled() || u.cacheTTL <= 0 {
		return
	}
	raw, err := json.Marshal(price)
	if err != nil {
		return
	}
	if err := priceCacheSet(ctx, ethPriceCacheKey, string(raw), u.cacheTTL); err != nil {
		logger.Warn(ctx, "Price cache write failed", zap.Error(fmt.Errorf("set %s: %w", ethPriceCacheKey, err)))
	}
}
