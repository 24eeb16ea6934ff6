package memory

import (
	"context"
	"slices"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// LedgerRepository is the in-memory persistence.LedgerRepository
type LedgerRepository struct {
	s *Store
}

func (r *LedgerRepository) Apply(ctx context.Context, entry *entity.LedgerEntry) (int64, bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[entry.UserID]
	if !ok {
		return 0, false, errs.ErrUserNotFound
	}
	if _, dup := r.s.entries[entry.Reference]; dup {
		return u.Balance(entry.Mode), false, nil
	}

	balance, err := u.Apply(entry.Mode, entry.Delta, r.s.timeProvider)
	if err != nil {
		return balance, false, err
	}

	entry.BalanceAfter = balance
	stored := *entry
	r.s.entries[entry.Reference] = &stored
	r.s.entryOrder = append(r.s.entryOrder, entry.Reference)

	ref, userID, mode, delta := entry.Reference, entry.UserID, entry.Mode, entry.Delta
	r.s.journal(ctx, func() {
		if cur, ok := r.s.users[userID]; ok {
			cur.SetBalance(mode, cur.Balance(mode)-delta, r.s.timeProvider)
		}
		delete(r.s.entries, ref)
		r.s.entryOrder = slices.DeleteFunc(r.s.entryOrder, func(s string) bool { return s == ref })
	})
	return balance, true, nil
}

func (r *LedgerRepository) GetByReference(_ context.Context, reference string) (*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	e, ok := r.s.entries[reference]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *e
	return &c, nil
}

func (r *LedgerRepository) ListByUser(_ context.Context, userID uint64, limit int) ([]*entity.LedgerEntry, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.LedgerEntry
	for i := len(r.s.entryOrder) - 1; i >= 0; i-- {
		e := r.s.entries[r.s.entryOrder[i]]
		if e.UserID != userID {
			continue
		}
		c := *e
		out = append(out, &c)
		if limit > 0 && len(out) == limit {
			break
		}
	}
	return out, nil
}
