package model

import "time"

// ChatMessage is one message of a support thread
type ChatMessage struct {
	ID        string    `gorm:"primaryKey;type:uuid"`
	UserID    uint64    `gorm:"not null;index:idx_chat_messages_user_created,priority:1"`
	Sender    string    `gorm:"not null;size:10"`
	Text      string    `gorm:"not null;type:text"`
	Status    string    `gorm:"not null;size:10"`
	CreatedAt time.Time `gorm:"not null;index:idx_chat_messages_user_created,priority:2"`

	User User `gorm:"foreignKey:UserID;references:ID"`
}

// TableName specifies the table name for ChatMessage
func (ChatMessage) TableName() string {
	return "chat_messages"
}
