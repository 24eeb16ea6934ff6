package memory

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
)

// PositionRepository is the in-memory persistence.PositionRepository
type PositionRepository struct {
	s *Store
}

func (r *PositionRepository) Create(ctx context.Context, position *entity.TradingPosition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, dup := r.s.positions[position.ID]; dup {
		return errs.ErrDuplicateReference
	}
	r.s.positions[position.ID] = clonePosition(position)
	r.s.posOrder = append(r.s.posOrder, position.ID)

	id := position.ID
	r.s.journal(ctx, func() {
		delete(r.s.positions, id)
		r.s.posOrder = removeID(r.s.posOrder, id)
	})
	return nil
}

func (r *PositionRepository) GetByID(_ context.Context, id string) (*entity.TradingPosition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.positions[id]
	if !ok {
		return nil, errs.ErrPositionNotFound
	}
	return clonePosition(p), nil
}

func (r *PositionRepository) List(_ context.Context, filter persistence.PositionFilter) ([]*entity.TradingPosition, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.TradingPosition
	for i := len(r.s.posOrder) - 1; i >= 0; i-- {
		p := r.s.positions[r.s.posOrder[i]]
		if filter.UserID != 0 && p.UserID != filter.UserID {
			continue
		}
		if filter.Market != "" && p.Market != filter.Market {
			continue
		}
		if filter.Status != "" && p.Status != filter.Status {
			continue
		}
		out = append(out, clonePosition(p))
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *PositionRepository) MarkClosed(ctx context.Context, position *entity.TradingPosition) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.positions[position.ID]
	if !ok {
		return false, errs.ErrPositionNotFound
	}
	if stored.Status != entity.PositionOpen {
		return false, nil
	}
	prev := clonePosition(stored)
	r.s.positions[position.ID] = clonePosition(position)
	id := position.ID
	r.s.journal(ctx, func() { r.s.positions[id] = prev })
	return true, nil
}
