package memory

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// WagerRepository is the in-memory persistence.WagerRepository
type WagerRepository struct {
	s *Store
}

func (r *WagerRepository) Create(ctx context.Context, wager *entity.Wager) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, dup := r.s.wagers[wager.ID]; dup {
		return errs.ErrDuplicateReference
	}
	r.s.wagers[wager.ID] = cloneWager(wager)
	r.s.wagerOrder = append(r.s.wagerOrder, wager.ID)

	id := wager.ID
	r.s.journal(ctx, func() {
		delete(r.s.wagers, id)
		r.s.wagerOrder = removeID(r.s.wagerOrder, id)
	})
	return nil
}

func (r *WagerRepository) GetByID(_ context.Context, id string) (*entity.Wager, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w, ok := r.s.wagers[id]
	if !ok {
		return nil, errs.ErrWagerNotFound
	}
	return cloneWager(w), nil
}

func (r *WagerRepository) ListPendingByRound(_ context.Context, roundID string) ([]*entity.Wager, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Wager
	for _, id := range r.s.wagerOrder {
		w := r.s.wagers[id]
		if w.RoundID == roundID && w.Status == entity.WagerPending {
			out = append(out, cloneWager(w))
		}
	}
	return out, nil
}

func (r *WagerRepository) ListByUser(_ context.Context, userID uint64, limit int) ([]*entity.Wager, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Wager
	for i := len(r.s.wagerOrder) - 1; i >= 0; i-- {
		w := r.s.wagers[r.s.wagerOrder[i]]
		if w.UserID != userID {
			continue
		}
		out = append(out, cloneWager(w))
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}

func (r *WagerRepository) MarkSettled(ctx context.Context, id string, status entity.WagerStatus, payout int64, settledAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	w, ok := r.s.wagers[id]
	if !ok {
		return false, errs.ErrWagerNotFound
	}
	prev := cloneWager(w)
	if err := w.MarkSettled(status, payout, settledAt); err != nil {
		return false, nil
	}
	r.s.journal(ctx, func() { r.s.wagers[id] = prev })
	return true, nil
}

func removeID(ids []string, id string) []string {
	for i, v := range ids {
		if v == id {
			return append(ids[:i], ids[i+1:]...)
		}
	}
	return ids
}
