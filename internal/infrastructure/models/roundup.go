package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Roundup struct {
	ID            uuid.UUID       `gorm:"type:uuid;primaryKey"`
	UserID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:base_batch_roundup_user_tx_key,priority:1"`
	TxHash        string          `gorm:"type:text;not null;uniqueIndex:base_batch_roundup_user_tx_key,priority:2"`
	UsdcAmount    decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	RoundupAmount decimal.Decimal `gorm:"type:numeric(38,18);not null"`
	Deposited     bool            `gorm:"column:status;not null"`
	DepositTxHash *string         `gorm:"type:text"`
	DepositedAt   *time.Time
	CreatedAt     time.Time
}

func (Roundup) TableName() string {
	return "base_batch_roundup"
}
