package chat

import (
	"context"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/google/uuid"
)

// Config tunes the support chat
type Config struct {
	// DeliveryDelay is how long a sent message stays "sent" before it reads as delivered
	DeliveryDelay time.Duration
	// Greeting opens every new thread; empty disables it
	Greeting string
}

// DefaultConfig delivers after one second
func DefaultConfig() Config {
	return Config{
		DeliveryDelay: time.Second,
		Greeting:      "Hi %s! How can we help you today?",
	}
}

// ThreadSummary is one row of the operator's inbox
type ThreadSummary struct {
	UserID      uint64
	Username    string
	LastMessage *entity.ChatMessage
	Unread      int
}

// Service runs the per-user support threads between players and operators
type Service struct {
	repo         persistence.ChatRepository
	users        persistence.UserRepository
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          Config
}

// NewService creates a chat service
func NewService(
	repo persistence.ChatRepository,
	users persistence.UserRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	return &Service{
		repo:         repo,
		users:        users,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
	}
}

// Send appends a message to userID's thread
func (s *Service) Send(ctx context.Context, userID uint64, sender entity.ChatSender, text string) (*entity.ChatMessage, error) {
	if sender != entity.SenderUser && sender != entity.SenderAdmin {
		return nil, fmt.Errorf("%w: sender %q cannot write", errs.ErrInvalidRequest, sender)
	}
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	msg, err := entity.NewChatMessage(uuid.NewString(), user.ID, sender, text, now)
	if err != nil {
		return nil, err
	}

	if err := s.greet(ctx, user, now); err != nil {
		return nil, err
	}
	if err := s.repo.Append(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to append chat message: %w", err)
	}

	s.logger.Debug("Chat message sent", map[string]any{
		"user_id": user.ID,
		"sender":  string(sender),
	})
	return msg, nil
}

// greet opens an empty thread with the system greeting, already read
func (s *Service) greet(ctx context.Context, user *entity.User, now time.Time) error {
	if s.cfg.Greeting == "" {
		return nil
	}
	thread, err := s.repo.ListThread(ctx, user.ID)
	if err != nil {
		return err
	}
	if len(thread) > 0 {
		return nil
	}
	hello, err := entity.NewChatMessage(uuid.NewString(), user.ID, entity.SenderSystem, fmt.Sprintf(s.cfg.Greeting, user.Username), now)
	if err != nil {
		return err
	}
	hello.Status = entity.ChatRead
	return s.repo.Append(ctx, hello)
}

// Thread returns userID's messages, oldest first, with delivery applied
func (s *Service) Thread(ctx context.Context, userID uint64) ([]*entity.ChatMessage, error) {
	msgs, err := s.repo.ListThread(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.timeProvider.Now()
	for _, m := range msgs {
		m.Status = m.EffectiveStatus(now, s.cfg.DeliveryDelay)
	}
	return msgs, nil
}

// MarkRead marks what the other side wrote in userID's thread as read by reader
func (s *Service) MarkRead(ctx context.Context, userID uint64, reader entity.ChatSender) (int64, error) {
	var senders []entity.ChatSender
	switch reader {
	case entity.SenderUser:
		senders = []entity.ChatSender{entity.SenderAdmin, entity.SenderSystem}
	case entity.SenderAdmin:
		senders = []entity.ChatSender{entity.SenderUser}
	default:
		return 0, fmt.Errorf("%w: reader %q", errs.ErrInvalidRequest, reader)
	}
	return s.repo.MarkRead(ctx, userID, senders)
}

// Threads lists every thread for the operator, most recently active first
func (s *Service) Threads(ctx context.Context) ([]ThreadSummary, error) {
	threads, err := s.repo.ListThreads(ctx)
	if err != nil {
		return nil, err
	}

	now := s.timeProvider.Now()
	out := make([]ThreadSummary, 0, len(threads))
	for _, th := range threads {
		summary := ThreadSummary{UserID: th.UserID, LastMessage: th.LastMessage, Unread: th.Unread}
		if th.LastMessage != nil {
			th.LastMessage.Status = th.LastMessage.EffectiveStatus(now, s.cfg.DeliveryDelay)
		}
		if u, err := s.users.GetByID(ctx, th.UserID); err == nil {
			summary.Username = u.Username
		} else if !errs.IsNotFoundError(err) {
			return nil, err
		}
		out = append(out, summary)
	}
	return out, nil
}
