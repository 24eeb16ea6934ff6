package model

import (
	"time"
)

// UserLock is a cross-process lease on a user's ledger
type UserLock struct {
	UserID    uint64    `gorm:"primaryKey;not null"`
	Owner     string    `gorm:"not null;size:64"`
	LockedAt  time.Time `gorm:"not null"`
	ExpiresAt time.Time `gorm:"not null;index:idx_user_locks_expires_at"`
	CreatedAt time.Time `gorm:"not null"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for UserLock
func (UserLock) TableName() string {
	return "user_locks"
}
