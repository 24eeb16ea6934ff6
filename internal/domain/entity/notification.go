package entity

import "time"

// NotificationType is the visual category of a notification
type NotificationType string

// Notification types
const (
	NotifyWin  NotificationType = "win"
	NotifyLoss NotificationType = "loss"
	NotifyInfo NotificationType = "info"
)

// Notification is a transient message shown to one user
type Notification struct {
	ID         string
	UserID     uint64
	Type       NotificationType
	Title      string
	Message    string
	Amount     string
	Accent     string
	BallNumber *int
	CreatedAt  time.Time
	// ShownAt is set when the item becomes the active one
	ShownAt *time.Time
}
