package model

import "time"

// Setting is an operator-configured key/value pair
type Setting struct {
	Key       string    `gorm:"primaryKey;size:100"`
	Value     string    `gorm:"not null;type:text"`
	UpdatedAt time.Time `gorm:"not null"`
}

// TableName specifies the table name for Setting
func (Setting) TableName() string {
	return "settings"
}
