package usecases_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"coffee-change.backend/internal/domain/entities"
	"coffee-change.backend/internal/usecases"
	"coffee-change.backend/pkg/redis"
)

var fallbackPrice = decimal.NewFromInt(2500)

func oracleValue(t *testing.T, s string) *big.Int {
	t.Helper()
	v, ok := new(big.Int).SetString(s, 10)
	require.True(t, ok)
	return v
}

func useMiniRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	srv, err := miniredis.Run()
	if err != nil {
		t.Skipf("skip: miniredis unavailable in this environment: %v", err)
	}
	c := goredis.NewClient(&goredis.Options{Addr: srv.Addr()})
	redis.SetClient(c)
	t.Cleanup(func() {
		redis.SetClient(nil)
		_ = c.Close()
		srv.Close()
	})
	return srv
}

func TestPriceUsecase_GetEthPrice_FromOracle(t *testing.T) {
	oracle := new(MockOracleReader)
	oracle.On("Read", mock.Anything).Return(&entities.OracleReading{
		Value: oracleValue(t, "3125500000000000000000"),
		Age:   big.NewInt(1700000000),
	}, nil).Once()
	uc := usecases.NewPriceUsecase(oracle, nil, fallbackPrice, 30*time.Second)

	price := uc.GetEthPrice(context.Background())
	assert.Equal(t, entities.PriceSourceOracle, price.Source)
	assert.True(t, price.Price.Equal(decimal.RequireFromString("3125.5")))
	assert.Equal(t, int64(1700000000), price.UpdatedAt.Unix())
}

func TestPriceUsecase_GetEthPrice_Fallbacks(t *testing.T) {
	cases := []struct {
		name  string
		setup func(o *MockOracleReader)
	}{
		{name: "oracle error", setup: func(o *MockOracleReader) {
			o.On("Read", mock.Anything).Return(nil, errors.New("execution reverted")).Once()
		}},
		{name: "zero value", setup: func(o *MockOracleReader) {
			o.On("Read", mock.Anything).Return(&entities.OracleReading{Value: big.NewInt(0), Age: big.NewInt(0)}, nil).Once()
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			oracle := new(MockOracleReader)
			tc.setup(oracle)
			uc := usecases.NewPriceUsecase(oracle, nil, fallbackPrice, 30*time.Second)

			price := uc.GetEthPrice(context.Background())
			assert.Equal(t, entities.PriceSourceFallback, price.Source)
			assert.True(t, price.Price.Equal(fallbackPrice))
		})
	}

	t.Run("no oracle", func(t *testing.T) {
		uc := usecases.NewPriceUsecase(nil, nil, fallbackPrice, 30*time.Second)
		price := uc.GetEthPrice(context.Background())
		assert.Equal(t, entities.PriceSourceFallback, price.Source)
		assert.False(t, price.UpdatedAt.IsZero())
	})
}

func TestPriceUsecase_GetEthPrice_Cached(t *testing.T) {
	srv := useMiniRedis(t)

	oracle := new(MockOracleReader)
	oracle.On("Read", mock.Anything).Return(&entities.OracleReading{
		Value: oracleValue(t, "2000000000000000000000"),
		Age:   big.NewInt(1700000000),
	}, nil).Once()
	uc := usecases.NewPriceUsecase(oracle, nil, fallbackPrice, 30*time.Second)

	first := uc.GetEthPrice(context.Background())
	assert.Equal(t, entities.PriceSourceOracle, first.Source)

	second := uc.GetEthPrice(context.Background())
	assert.Equal(t, entities.PriceSourceCache, second.Source)
	assert.True(t, second.Price.Equal(decimal.NewFromInt(2000)))
	oracle.AssertNumberOfCalls(t, "Read", 1)

	srv.FastForward(31 * time.Second)
	oracle.On("Read", mock.Anything).Return(&entities.OracleReading{
		Value: oracleValue(t, "2100000000000000000000"),
		Age:   big.NewInt(1700000031),
	}, nil).Once()

	third := uc.GetEthPrice(context.Background())
	assert.Equal(t, entities.PriceSourceOracle, third.Source)
	assert.True(t, third.Price.Equal(decimal.NewFromInt(2100)))
}

func TestPriceUsecase_GetEthPrice_FallbackNotCached(t *testing.T) {
	srv := useMiniRedis(t)

	uc := usecases.NewPriceUsecase(nil, nil, fallbackPrice, 30*time.Second)
	_ = uc.GetEthPrice(context.Background())
	assert.False(t, srv.Exists("coffeechange:eth_price"))
}

func TestPriceUsecase_Quote(t *testing.T) {
	users := new(MockUserRepository)
	roundups := new(MockRoundupRepository)
	balance := usecases.NewBalanceUsecase(users, roundups)

	user := &entities.User{ID: uuid.New()}
	users.On("GetByWalletAddress", mock.Anything, syncWallet).Return(user, nil).Once()
	roundups.On("ListByStatus", mock.Anything, user.ID, false).Return([]*entities.Roundup{
		pendingRow(user.ID, "0x1", "0.5", 0),
		pendingRow(user.ID, "0x2", "0.55", 0),
	}, nil).Once()

	uc := usecases.NewPriceUsecase(nil, balance, fallbackPrice, 30*time.Second)
	quote, err := uc.Quote(context.Background(), syncWallet)
	require.NoError(t, err)
	assert.True(t, quote.TotalPending.Equal(decimal.RequireFromString("1.05")))
	assert.True(t, quote.RequiredEth.Equal(decimal.RequireFromString("0.00042")))
	assert.True(t, quote.CanDeposit)
	assert.Equal(t, entities.PriceSourceFallback, quote.EthPrice.Source)
}

func TestPriceUsecase_QuoteUnknownWallet(t *testing.T) {
	users := new(MockUserRepository)
	users.On("GetByWalletAddress", mock.Anything, syncWallet).Return(nil, errors.New("db down")).Once()
	balance := usecases.NewBalanceUsecase(users, new(MockRoundupRepository))

	uc := usecases.NewPriceUsecase(nil, balance, fallbackPrice, 30*time.Second)
	_, err := uc.Quote(context.Background(), syncWallet)
	require.Error(t, err)
}
