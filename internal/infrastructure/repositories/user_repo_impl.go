package repositories

import (
	"context"
	"errors"
	"time"

	"coffee-change.backend/internal/domain/entities"
	domainerrors "coffee-change.backend/internal/domain/errors"
	"coffee-change.backend/internal/infrastructure/models"
	"coffee-change.backend/pkg/utils"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// UserRepository implements user data operations
type UserRepository struct {
	db *gorm.DB
}

// NewUserRepository creates a new user repository
func NewUserRepository(db *gorm.DB) *UserRepository {
	return &UserRepository{db: db}
}

// GetByWalletAddress gets a user by its normalized wallet address
func (r *UserRepository) GetByWalletAddress(ctx context.Context, walletAddress string) (*entities.User, error) {
	var m models.User
	if err := GetDB(ctx, r.db).Where("wallet_address = ?", walletAddress).First(&m).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domainerrors.ErrNotFound
		}
		return nil, err
	}
	return r.toEntity(&m), nil
}

// GetOrCreate looks the wallet up and inserts it when missing. Two callers
// racing on a new wallet both get the same row; only one sees created=true.
func (r *UserRepository) GetOrCreate(ctx context.Context, walletAddress string) (*entities.User, bool, error) {
	user, err := r.GetByWalletAddress(ctx, walletAddress)
	if err == nil {
		return user, false, nil
	}
	if !errors.Is(err, domainerrors.ErrNotFound) {
		return nil, false, err
	}

	m := &models.User{
		ID:            utils.GenerateUUIDv7(),
		WalletAddress: walletAddress,
		CreatedAt:     time.Now(),
	}
	res := GetDB(ctx, r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "wallet_address"}}, DoNothing: true}).
		Create(m)
	if res.Error != nil && !isUniqueViolation(res.Error) {
		return nil, false, res.Error
	}
	if res.Error == nil && res.RowsAffected == 1 {
		return r.toEntity(m), true, nil
	}

	user, err = r.GetByWalletAddress(ctx, walletAddress)
	if err != nil {
		return nil, false, err
	}
	return user, false, nil
}

// Count returns the number of users
func (r *UserRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&models.User{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// ListWalletAddresses returns every known wallet, oldest user first
func (r *UserRepository) ListWalletAddresses(ctx context.Context) ([]string, error) {
	var wallets []string
	if err := GetDB(ctx, r.db).Model(&models.User{}).
		Order("created_at ASC").
		Pluck("wallet_address", &wallets).Error; err != nil {
		return nil, err
	}
	return wallets, nil
}

func (r *UserRepository) toEntity(m *models.User) *entities.User {
	return &entities.User{
		ID:            m.ID,
		WalletAddress: m.WalletAddress,
		CreatedAt:     m.CreatedAt,
	}
}
