package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// TradingPosition is a persisted leveraged position
type TradingPosition struct {
	ID             string              `gorm:"primaryKey;type:uuid"`
	UserID         uint64              `gorm:"not null;index:idx_positions_user_status,priority:1"`
	Market         string              `gorm:"not null;size:10"`
	Direction      string              `gorm:"not null;size:4"`
	EntryPrice     decimal.Decimal     `gorm:"not null;type:numeric(20,4)"`
	Margin         int64               `gorm:"not null"`
	Leverage       int64               `gorm:"not null"`
	LedgerMode     string              `gorm:"not null;size:10"`
	Status         string              `gorm:"not null;size:10;index:idx_positions_user_status,priority:2"`
	OpenedAt       time.Time           `gorm:"not null"`
	ClosePrice     decimal.NullDecimal `gorm:"type:numeric(20,4)"`
	ClosedAt       *time.Time
	RealizedProfit int64 `gorm:"not null;default:0"`

	User User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for TradingPosition
func (TradingPosition) TableName() string {
	return "trading_positions"
}
