package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
)

// ChatRepository is the in-memory persistence.ChatRepository
type ChatRepository struct {
	s *Store
}

func (r *ChatRepository) Append(_ context.Context, message *entity.ChatMessage) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := *message
	r.s.chat = append(r.s.chat, &c)
	return nil
}

func (r *ChatRepository) ListThread(_ context.Context, userID uint64) ([]*entity.ChatMessage, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.ChatMessage
	for _, m := range r.s.chat {
		if m.UserID == userID {
			c := *m
			out = append(out, &c)
		}
	}
	return out, nil
}

func (r *ChatRepository) MarkRead(_ context.Context, userID uint64, senders []entity.ChatSender) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var n int64
	for _, m := range r.s.chat {
		if m.UserID == userID && m.Status != entity.ChatRead && slices.Contains(senders, m.Sender) {
			m.Status = entity.ChatRead
			n++
		}
	}
	return n, nil
}

func (r *ChatRepository) ListThreads(_ context.Context) ([]persistence.ChatThread, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	byUser := make(map[uint64]*persistence.ChatThread)
	for _, m := range r.s.chat {
		th, ok := byUser[m.UserID]
		if !ok {
			th = &persistence.ChatThread{UserID: m.UserID}
			byUser[m.UserID] = th
		}
		c := *m
		th.LastMessage = &c
		if m.Sender == entity.SenderUser && m.Status != entity.ChatRead {
			th.Unread++
		}
	}

	out := make([]persistence.ChatThread, 0, len(byUser))
	for _, th := range byUser {
		out = append(out, *th)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].LastMessage.CreatedAt.After(out[j].LastMessage.CreatedAt)
	})
	return out, nil
}

// SettingRepository is the in-memory persistence.SettingRepository
type SettingRepository struct {
	s *Store
}

func (r *SettingRepository) Get(_ context.Context, key string) (string, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	v, ok := r.s.settings[key]
	if !ok {
		return "", errs.ErrNotFound
	}
	return v, nil
}

func (r *SettingRepository) Set(_ context.Context, key, value string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.settings[key] = value
	return nil
}

// UserLockRepository is the in-memory persistence.UserLockRepository
type UserLockRepository struct {
	s *Store
}

func (r *UserLockRepository) AcquireLock(_ context.Context, userID uint64, owner string, ttl time.Duration) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.timeProvider.Now()
	if l, ok := r.s.locks[userID]; ok && l.owner != owner && now.Before(l.expiresAt) {
		return errs.ErrUserLocked
	}
	r.s.locks[userID] = userLock{owner: owner, expiresAt: now.Add(ttl)}
	return nil
}

func (r *UserLockRepository) ReleaseLock(_ context.Context, userID uint64, owner string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if l, ok := r.s.locks[userID]; ok && l.owner == owner {
		delete(r.s.locks, userID)
	}
	return nil
}
