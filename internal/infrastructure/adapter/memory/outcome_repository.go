package memory

import (
	"context"
	"sort"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// OutcomeRepository is the in-memory persistence.OutcomeRepository
type OutcomeRepository struct {
	s *Store
}

func (r *OutcomeRepository) Create(_ context.Context, outcome *entity.RoundOutcome) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, dup := r.s.outcomes[outcome.RoundID]; dup {
		return errs.ErrDuplicateReference
	}
	c := *outcome
	r.s.outcomes[outcome.RoundID] = &c
	return nil
}

func (r *OutcomeRepository) GetByRoundID(_ context.Context, roundID string) (*entity.RoundOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	o, ok := r.s.outcomes[roundID]
	if !ok {
		return nil, errs.ErrNotFound
	}
	c := *o
	return &c, nil
}

func (r *OutcomeRepository) ListRecent(_ context.Context, mode entity.GameMode, limit int) ([]*entity.RoundOutcome, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var out []*entity.RoundOutcome
	for _, o := range r.s.outcomes {
		if o.Mode == mode {
			c := *o
			out = append(out, &c)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].DrawnAt.Equal(out[j].DrawnAt) {
			return out[i].RoundID > out[j].RoundID
		}
		return out[i].DrawnAt.After(out[j].DrawnAt)
	})
	return out[:limitOf(len(out), limit)], nil
}
