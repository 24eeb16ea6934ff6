package model

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"gorm.io/datatypes"
)

// Transaction represents a deposit or withdrawal request
type Transaction struct {
	ID            string `gorm:"primaryKey;type:uuid"`
	UserID        uint64 `gorm:"not null;index:idx_transactions_user_created,priority:1"`
	Username      string `gorm:"not null;size:50"`
	Kind          string `gorm:"not null;size:10"`
	AmountInCents int64  `gorm:"not null;check:chk_transactions_amount,amount_in_cents > 0"`
	Status        string `gorm:"not null;size:10;index:idx_transactions_status"`
	Method        string `gorm:"not null;size:20"`
	Proof         string `gorm:"type:text"`
	Account       datatypes.JSONType[*entity.PayoutAccount]
	CreatedAt     time.Time `gorm:"not null;index:idx_transactions_user_created,priority:2,sort:desc"`
	DecidedAt     *time.Time

	User User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Transaction
func (Transaction) TableName() string {
	return "transactions"
}
