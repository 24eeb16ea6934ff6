package model

import "time"

// RoundOutcome is the drawn result of one round
type RoundOutcome struct {
	RoundID string    `gorm:"primaryKey;size:32"`
	Mode    string    `gorm:"not null;size:10;index:idx_round_outcomes_mode_drawn,priority:1"`
	Number  int       `gorm:"not null;check:chk_round_outcomes_number,number BETWEEN 0 AND 9"`
	Size    string    `gorm:"not null;size:5"`
	Color   string    `gorm:"not null;size:12"`
	Forced  bool      `gorm:"not null;default:false"`
	DrawnAt time.Time `gorm:"not null;index:idx_round_outcomes_mode_drawn,priority:2,sort:desc"`
}

// TableName specifies the table name for RoundOutcome
func (RoundOutcome) TableName() string {
	return "round_outcomes"
}
