package memory

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
)

// TransactionRepository is the in-memory persistence.TransactionRepository
type TransactionRepository struct {
	s *Store
}

func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.users[transaction.UserID]; !ok {
		return errs.ErrUserNotFound
	}
	if _, dup := r.s.transactions[transaction.ID]; dup {
		return errs.ErrDuplicateReference
	}
	r.s.transactions[transaction.ID] = cloneTransaction(transaction)
	r.s.txOrder = append(r.s.txOrder, transaction.ID)

	id := transaction.ID
	r.s.journal(ctx, func() {
		delete(r.s.transactions, id)
		r.s.txOrder = removeID(r.s.txOrder, id)
	})
	return nil
}

func (r *TransactionRepository) GetByID(_ context.Context, id string) (*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transactions[id]
	if !ok {
		return nil, errs.ErrTransactionNotFound
	}
	return cloneTransaction(t), nil
}

func (r *TransactionRepository) List(_ context.Context, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.Transaction
	for i := len(r.s.txOrder) - 1; i >= 0; i-- {
		t := r.s.transactions[r.s.txOrder[i]]
		if filter.UserID != 0 && t.UserID != filter.UserID {
			continue
		}
		if filter.Kind != "" && t.Kind != filter.Kind {
			continue
		}
		if filter.Status != "" && t.Status != filter.Status {
			continue
		}
		out = append(out, cloneTransaction(t))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *TransactionRepository) Decide(ctx context.Context, id string, status entity.TransactionStatus, decidedAt time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.transactions[id]
	if !ok {
		return false, errs.ErrTransactionNotFound
	}
	if t.Status != entity.StatusPending {
		return false, nil
	}
	prev := cloneTransaction(t)
	t.Status = status
	t.DecidedAt = &decidedAt
	r.s.journal(ctx, func() { r.s.transactions[id] = prev })
	return true, nil
}
