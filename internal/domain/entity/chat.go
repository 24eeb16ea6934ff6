package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// ChatSender is the party that wrote a message
type ChatSender string

// Chat senders
const (
	SenderUser   ChatSender = "user"
	SenderAdmin  ChatSender = "admin"
	SenderSystem ChatSender = "system"
)

// ChatStatus is the delivery state of a message
type ChatStatus string

// Chat statuses
const (
	ChatSent      ChatStatus = "sent"
	ChatDelivered ChatStatus = "delivered"
	ChatRead      ChatStatus = "read"
)

// MaxChatTextLength bounds a single message
const MaxChatTextLength = 2000

// ChatMessage is one entry of a user's support thread
type ChatMessage struct {
	ID        string
	UserID    uint64 // thread owner
	Sender    ChatSender
	Text      string
	CreatedAt time.Time
	Status    ChatStatus
}

// NewChatMessage validates and builds a sent message
func NewChatMessage(id string, userID uint64, sender ChatSender, text string, at time.Time) (*ChatMessage, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, fmt.Errorf("%w: empty message", errs.ErrInvalidRequest)
	}
	if len(text) > MaxChatTextLength {
		return nil, fmt.Errorf("%w: message longer than %d bytes", errs.ErrInvalidRequest, MaxChatTextLength)
	}
	return &ChatMessage{
		ID:        id,
		UserID:    userID,
		Sender:    sender,
		Text:      text,
		CreatedAt: at,
		Status:    ChatSent,
	}, nil
}

// EffectiveStatus reports a sent message as delivered once it is older than delay
func (m *ChatMessage) EffectiveStatus(now time.Time, delay time.Duration) ChatStatus {
	if m.Status == ChatSent && now.Sub(m.CreatedAt) >= delay {
		return ChatDelivered
	}
	return m.Status
}
