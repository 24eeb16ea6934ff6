package persistence

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// ChatThread summarizes one user's support thread for the operator
type ChatThread struct {
	UserID      uint64
	LastMessage *entity.ChatMessage
	// Unread counts user messages the operator has not read
	Unread int
}

// ChatRepository stores support threads
type ChatRepository interface {
	// Append adds a message to its thread
	Append(ctx context.Context, message *entity.ChatMessage) error

	// ListThread returns a user's thread, oldest first
	ListThread(ctx context.Context, userID uint64) ([]*entity.ChatMessage, error)

	// MarkRead marks every message in the thread written by one of senders as read
	MarkRead(ctx context.Context, userID uint64, senders []entity.ChatSender) (int64, error)

	// ListThreads returns every thread, most recently active first
	ListThreads(ctx context.Context) ([]ChatThread, error)
}
