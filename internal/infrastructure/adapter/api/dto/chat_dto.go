package dto

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/chat"
)

// ChatMessageRequest sends a message on a thread
type ChatMessageRequest struct {
	Text string `json:"text" binding:"required,max=2000"`
}

// ChatMessageResponse is one message of a thread
type ChatMessageResponse struct {
	ID        string    `json:"id"`
	UserID    uint64    `json:"userId"`
	Sender    string    `json:"sender"`
	Text      string    `json:"text"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

// NewChatMessageResponse renders a message
func NewChatMessageResponse(m *entity.ChatMessage) ChatMessageResponse {
	return ChatMessageResponse{
		ID:        m.ID,
		UserID:    m.UserID,
		Sender:    string(m.Sender),
		Text:      m.Text,
		Status:    string(m.Status),
		CreatedAt: m.CreatedAt,
	}
}

// NewChatThread renders a thread oldest first
func NewChatThread(msgs []*entity.ChatMessage) []ChatMessageResponse {
	out := make([]ChatMessageResponse, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, NewChatMessageResponse(m))
	}
	return out
}

// ThreadSummaryResponse is one row of the operator inbox
type ThreadSummaryResponse struct {
	UserID      uint64               `json:"userId"`
	Username    string               `json:"username"`
	LastMessage *ChatMessageResponse `json:"lastMessage,omitempty"`
	Unread      int                  `json:"unread"`
}

// NewThreadSummaryList renders the operator inbox
func NewThreadSummaryList(threads []chat.ThreadSummary) []ThreadSummaryResponse {
	out := make([]ThreadSummaryResponse, 0, len(threads))
	for _, t := range threads {
		row := ThreadSummaryResponse{UserID: t.UserID, Username: t.Username, Unread: t.Unread}
		if t.LastMessage != nil {
			msg := NewChatMessageResponse(t.LastMessage)
			row.LastMessage = &msg
		}
		out = append(out, row)
	}
	return out
}

// MarkReadResponse reports how many messages were marked read
type MarkReadResponse struct {
	Marked int64 `json:"marked"`
}
