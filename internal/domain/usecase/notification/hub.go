package notification

import (
	"context"
	"sync"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
	"github.com/google/uuid"
)

// DefaultDisplayDuration is how long one notification stays active
const DefaultDisplayDuration = 3 * time.Second

type userQueue struct {
	active  *entity.Notification
	backlog []entity.Notification
}

// Hub keeps, per user, one active notification and a FIFO backlog. The
// active item expires after the display duration and the next one takes
// its place; nothing is dropped or overwritten under bursts.
type Hub struct {
	mu           sync.Mutex
	queues       map[uint64]*userQueue
	lastPrune    time.Time
	display      time.Duration
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

var _ usecase.Notifier = (*Hub)(nil)

// NewHub creates a notification hub
func NewHub(display time.Duration, timeProvider coreport.TimeProvider, logger coreport.Logger) *Hub {
	if display <= 0 {
		display = DefaultDisplayDuration
	}
	return &Hub{
		queues:       make(map[uint64]*userQueue),
		display:      display,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Notify appends a notification to the user's backlog
func (h *Hub) Notify(_ context.Context, n entity.Notification) {
	if n.UserID == 0 {
		return
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	now := h.timeProvider.Now()
	n.CreatedAt = now
	n.ShownAt = nil

	h.mu.Lock()
	q, ok := h.queues[n.UserID]
	if !ok {
		q = &userQueue{}
		h.queues[n.UserID] = q
	}
	q.backlog = append(q.backlog, n)
	h.advance(q, now)
	h.prune(now)
	h.mu.Unlock()

	h.logger.Debug("Notification queued", map[string]any{
		"user_id": n.UserID,
		"type":    n.Type,
		"title":   n.Title,
	})
}

// advance expires the active item and promotes the next one; callers hold
// h.mu. Each promoted item is shown from the moment its predecessor expired,
// so an unobserved burst still gives every item its full display slot.
func (h *Hub) advance(q *userQueue, now time.Time) {
	for {
		var freeAt time.Time
		if q.active != nil {
			expiresAt := q.active.ShownAt.Add(h.display)
			if now.Before(expiresAt) {
				return
			}
			freeAt = expiresAt
			q.active = nil
		}
		if len(q.backlog) == 0 {
			return
		}

		next := q.backlog[0]
		q.backlog = q.backlog[1:]
		shown := next.CreatedAt
		if freeAt.After(shown) {
			shown = freeAt
		}
		next.ShownAt = &shown
		q.active = &next
	}
}

// prune drops the queues of users nobody polls once they drain. It runs
// at most once per display duration; callers hold h.mu.
func (h *Hub) prune(now time.Time) {
	if now.Sub(h.lastPrune) < h.display {
		return
	}
	h.lastPrune = now

	for userID, q := range h.queues {
		h.advance(q, now)
		if q.active == nil && len(q.backlog) == 0 {
			delete(h.queues, userID)
		}
	}
}

// Active returns the user's currently displayed notification, if any
func (h *Hub) Active(userID uint64) *entity.Notification {
	h.mu.Lock()
	defer h.mu.Unlock()

	q, ok := h.queues[userID]
	if !ok {
		return nil
	}
	h.advance(q, h.timeProvider.Now())
	if q.active == nil {
		delete(h.queues, userID)
		return nil
	}
	n := *q.active
	return &n
}

// Pending returns how many notifications wait behind the active one
func (h *Hub) Pending(userID uint64) int {
	h.mu.Lock()
	defer h.mu.Unlock()

	if q, ok := h.queues[userID]; ok {
		h.advance(q, h.timeProvider.Now())
		return len(q.backlog)
	}
	return 0
}
