package usecases_test

import (
	"context"
	"time"

	"github.com/ethereum/go-ethereum/core/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"coffee-change.backend/internal/domain/entities"
)

// Mock UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
}

func (m *MockUnitOfWork) Do(ctx context.Context, f func(context.Context) error) error {
	m.Called(ctx, f)
	return f(ctx)
}

// Mock UserRepository
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByWalletAddress(ctx context.Context, walletAddress string) (*entities.User, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *MockUserRepository) GetOrCreate(ctx context.Context, walletAddress string) (*entities.User, bool, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, false, args.Error(2)
	}
	return args.Get(0).(*entities.User), args.Bool(1), args.Error(2)
}

func (m *MockUserRepository) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockUserRepository) ListWalletAddresses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

// Mock RoundupRepository
type MockRoundupRepository struct {
	mock.Mock
}

func (m *MockRoundupRepository) ListTxHashes(ctx context.Context, userID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockRoundupRepository) InsertIfAbsent(ctx context.Context, roundup *entities.Roundup) (bool, error) {
	args := m.Called(ctx, roundup)
	return args.Bool(0), args.Error(1)
}

func (m *MockRoundupRepository) ListByStatus(ctx context.Context, userID uuid.UUID, deposited bool) ([]*entities.Roundup, error) {
	args := m.Called(ctx, userID, deposited)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Roundup), args.Error(1)
}

func (m *MockRoundupRepository) MarkDeposited(ctx context.Context, userID uuid.UUID, depositTxHash string, at time.Time) (int64, error) {
	args := m.Called(ctx, userID, depositTxHash, at)
	return args.Get(0).(int64), args.Error(1)
}

// Mock TransferSource
type MockTransferSource struct {
	mock.Mock
}

func (m *MockTransferSource) ListOutgoingTransfers(ctx context.Context, walletAddress string) ([]entities.TransferRecord, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.TransferRecord), args.Error(1)
}

// Mock OracleReader
type MockOracleReader struct {
	mock.Mock
}

func (m *MockOracleReader) Read(ctx context.Context) (*entities.OracleReading, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.OracleReading), args.Error(1)
}

// Mock PositionReader
type MockPositionReader struct {
	mock.Mock
}

func (m *MockPositionReader) Position(ctx context.Context, walletAddress string) (*entities.ContractPosition, error) {
	args := m.Called(ctx, walletAddress)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.ContractPosition), args.Error(1)
}

// Mock ReceiptFetcher
type MockReceiptFetcher struct {
	mock.Mock
}

func (m *MockReceiptFetcher) GetTransactionReceipt(ctx context.Context, txHash string) (*types.Receipt, error) {
	args := m.Called(ctx, txHash)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Receipt), args.Error(1)
}

func strPtr(s string) *string { return &s }

func transfer(hash, value string) entities.TransferRecord {
	return entities.TransferRecord{TxHash: strPtr(hash), Value: strPtr(value), Decimals: strPtr("6")}
}
