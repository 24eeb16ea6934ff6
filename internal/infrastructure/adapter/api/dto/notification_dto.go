package dto

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// NotificationResponse is the notification currently on display
type NotificationResponse struct {
	ID         string     `json:"id"`
	Type       string     `json:"type"`
	Title      string     `json:"title"`
	Message    string     `json:"message"`
	Amount     string     `json:"amount,omitempty"`
	Accent     string     `json:"accent,omitempty"`
	BallNumber *int       `json:"ballNumber,omitempty"`
	CreatedAt  time.Time  `json:"createdAt"`
	ShownAt    *time.Time `json:"shownAt,omitempty"`
	Pending    int        `json:"pending"`
}

// NewNotificationResponse renders the active notification and the backlog size
func NewNotificationResponse(n *entity.Notification, pending int) NotificationResponse {
	return NotificationResponse{
		ID:         n.ID,
		Type:       string(n.Type),
		Title:      n.Title,
		Message:    n.Message,
		Amount:     n.Amount,
		Accent:     n.Accent,
		BallNumber: n.BallNumber,
		CreatedAt:  n.CreatedAt,
		ShownAt:    n.ShownAt,
		Pending:    pending,
	}
}
