package model

import "time"

// LedgerEntry is one applied balance mutation. Reference is unique so a
// mutation can be applied only once.
type LedgerEntry struct {
	ID           string    `gorm:"primaryKey;type:uuid"`
	UserID       uint64    `gorm:"not null;index:idx_ledger_entries_user_created,priority:1"`
	Mode         string    `gorm:"not null;size:10"`
	Delta        int64     `gorm:"not null"`
	Kind         string    `gorm:"not null;size:30"`
	Reference    string    `gorm:"not null;size:120;uniqueIndex:idx_ledger_entries_reference"`
	BalanceAfter int64     `gorm:"not null"`
	CreatedAt    time.Time `gorm:"not null;index:idx_ledger_entries_user_created,priority:2,sort:desc"`

	User User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for LedgerEntry
func (LedgerEntry) TableName() string {
	return "ledger_entries"
}
