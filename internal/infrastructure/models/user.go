package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID            uuid.UUID `gorm:"type:uuid;primaryKey"`
	WalletAddress string    `gorm:"type:text;uniqueIndex;not null"`
	CreatedAt     time.Time
}

func (User) TableName() string {
	return "base_batch_user"
}
