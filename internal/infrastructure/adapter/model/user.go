package model

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"gorm.io/datatypes"
)

// User represents the database model for accounts
type User struct {
	ID             uint64  `gorm:"primaryKey;autoIncrement"`
	Phone          string  `gorm:"not null;size:20;uniqueIndex:idx_users_phone"`
	Email          *string `gorm:"size:255;uniqueIndex:idx_users_email"`
	Username       string  `gorm:"not null;size:50"`
	DisplayName    string  `gorm:"size:100"`
	AvatarURL      string  `gorm:"type:text"`
	PasswordHash   string  `gorm:"not null;size:100"`
	Role           string  `gorm:"not null;size:20;default:user"`
	RealBalance    int64   `gorm:"not null;default:0;check:chk_users_real_balance,real_balance >= 0"` // cents
	DemoBalance    int64   `gorm:"not null;default:0;check:chk_users_demo_balance,demo_balance >= 0"` // cents
	ActiveMode     string  `gorm:"not null;size:10;default:real"`
	Banned         bool    `gorm:"not null;default:false"`
	PayoutAccounts datatypes.JSONType[[]entity.PayoutAccount]
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// TableName specifies the table name for User
func (User) TableName() string {
	return "users"
}
