package model

import "time"

// Wager is a persisted player wager; bot wagers are never stored
type Wager struct {
	ID         string    `gorm:"primaryKey;type:uuid"`
	UserID     uint64    `gorm:"not null;index:idx_wagers_user_placed,priority:1"`
	Username   string    `gorm:"not null;size:50"`
	RoundID    string    `gorm:"not null;size:32;index:idx_wagers_round_status,priority:1"`
	Mode       string    `gorm:"not null;size:10"`
	Selection  string    `gorm:"not null;size:20"`
	Stake      int64     `gorm:"not null"`
	Multiplier int64     `gorm:"not null"`
	LedgerMode string    `gorm:"not null;size:10"`
	Status     string    `gorm:"not null;size:10;index:idx_wagers_round_status,priority:2"`
	Payout     int64     `gorm:"not null;default:0"`
	PlacedAt   time.Time `gorm:"not null;index:idx_wagers_user_placed,priority:2,sort:desc"`
	SettledAt  *time.Time

	User User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for Wager
func (Wager) TableName() string {
	return "wagers"
}
