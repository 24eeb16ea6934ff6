package repository

import (
	"context"
	"sort"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// ChatRepository implements ChatRepository interface using GORM
type ChatRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewChatRepository creates a new ChatRepository instance
func NewChatRepository(db *gorm.DB, logger coreport.Logger) *ChatRepository {
	return &ChatRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func chatToEntity(m *model.ChatMessage) *entity.ChatMessage {
	return &entity.ChatMessage{
		ID:        m.ID,
		UserID:    m.UserID,
		Sender:    entity.ChatSender(m.Sender),
		Text:      m.Text,
		CreatedAt: m.CreatedAt,
		Status:    entity.ChatStatus(m.Status),
	}
}

func (r *ChatRepository) fail(operation string, err error, userID uint64) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err,
		errs.ErrNotFound, errs.ErrDuplicateReference, map[string]any{"user_id": userID})
}

// Append adds a message to its thread
func (r *ChatRepository) Append(ctx context.Context, message *entity.ChatMessage) error {
	m := model.ChatMessage{
		ID:        message.ID,
		UserID:    message.UserID,
		Sender:    string(message.Sender),
		Text:      message.Text,
		Status:    string(message.Status),
		CreatedAt: message.CreatedAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.fail("appending chat message", err, message.UserID)
	}
	return nil
}

// ListThread returns a user's thread, oldest first
func (r *ChatRepository) ListThread(ctx context.Context, userID uint64) ([]*entity.ChatMessage, error) {
	var rows []model.ChatMessage
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("created_at, id").Find(&rows).Error; err != nil {
		return nil, r.fail("listing chat thread", err, userID)
	}

	out := make([]*entity.ChatMessage, 0, len(rows))
	for i := range rows {
		out = append(out, chatToEntity(&rows[i]))
	}
	return out, nil
}

// MarkRead marks the thread's unread messages from senders as read
func (r *ChatRepository) MarkRead(ctx context.Context, userID uint64, senders []entity.ChatSender) (int64, error) {
	names := make([]string, len(senders))
	for i, s := range senders {
		names[i] = string(s)
	}

	result := r.db.WithContext(ctx).Model(&model.ChatMessage{}).
		Where("user_id = ? AND sender IN ? AND status <> ?", userID, names, string(entity.ChatRead)).
		Update("status", string(entity.ChatRead))
	if result.Error != nil {
		return 0, r.fail("marking chat read", result.Error, userID)
	}
	return result.RowsAffected, nil
}

// threadRow is one line of the inbox aggregate
type threadRow struct {
	UserID uint64
	Unread int
}

// ListThreads returns every thread, most recently active first
func (r *ChatRepository) ListThreads(ctx context.Context) ([]persistence.ChatThread, error) {
	db := r.db.WithContext(ctx)

	var latest []model.ChatMessage
	err := db.Raw(`
		SELECT DISTINCT ON (user_id) *
		FROM chat_messages
		ORDER BY user_id, created_at DESC, id DESC`).
		Scan(&latest).Error
	if err != nil {
		return nil, r.fail("listing chat threads", err, 0)
	}

	var counts []threadRow
	err = db.Model(&model.ChatMessage{}).
		Select("user_id, COUNT(*) AS unread").
		Where("sender = ? AND status <> ?", string(entity.SenderUser), string(entity.ChatRead)).
		Group("user_id").
		Scan(&counts).Error
	if err != nil {
		return nil, r.fail("counting unread chat", err, 0)
	}

	unread := make(map[uint64]int, len(counts))
	for _, c := range counts {
		unread[c.UserID] = c.Unread
	}

	out := make([]persistence.ChatThread, 0, len(latest))
	for i := range latest {
		out = append(out, persistence.ChatThread{
			UserID:      latest[i].UserID,
			LastMessage: chatToEntity(&latest[i]),
			Unread:      unread[latest[i].UserID],
		})
	}
	sortThreads(out)
	return out, nil
}

func sortThreads(threads []persistence.ChatThread) {
	sort.Slice(threads, func(i, j int) bool {
		return threads[i].LastMessage.CreatedAt.After(threads[j].LastMessage.CreatedAt)
	})
}
