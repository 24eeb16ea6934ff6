package memory

import (
	"context"
	"sort"
	"strconv"
	"strings"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
)

// UserRepository is the in-memory persistence.UserRepository
type UserRepository struct {
	s *Store
}

func (r *UserRepository) GetByID(_ context.Context, id uint64) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	u, ok := r.s.users[id]
	if !ok {
		return nil, errs.ErrUserNotFound
	}
	return cloneUser(u), nil
}

func (r *UserRepository) FindByIdentity(_ context.Context, identity string) (*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, id := range r.sortedIDs() {
		if u := r.s.users[id]; u.MatchesIdentity(identity) {
			return cloneUser(u), nil
		}
	}
	return nil, errs.ErrUserNotFound
}

func (r *UserRepository) ExistsByUsername(_ context.Context, username string, exceptID uint64) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for id, u := range r.s.users {
		if id != exceptID && strings.EqualFold(u.Username, username) {
			return true, nil
		}
	}
	return false, nil
}

// conflicts checks the unique columns; callers hold the lock
func (r *UserRepository) conflicts(u *entity.User) bool {
	for id, other := range r.s.users {
		if id == u.ID {
			continue
		}
		if other.Phone == u.Phone ||
			(u.Email != "" && strings.EqualFold(other.Email, u.Email)) ||
			(u.Username != "" && strings.EqualFold(other.Username, u.Username)) {
			return true
		}
	}
	return false
}

func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if user.ID != 0 {
		if _, exists := r.s.users[user.ID]; exists {
			return errs.ErrDuplicateRegistration
		}
	}
	if r.conflicts(user) {
		return errs.ErrDuplicateRegistration
	}
	if user.ID == 0 {
		r.s.nextUserID++
		user.ID = r.s.nextUserID
	} else if user.ID > r.s.nextUserID {
		r.s.nextUserID = user.ID
	}

	id := user.ID
	r.s.users[id] = cloneUser(user)
	r.s.journal(ctx, func() { delete(r.s.users, id) })
	return nil
}

func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.users[user.ID]
	if !ok {
		return errs.ErrUserNotFound
	}
	if r.conflicts(user) {
		return errs.ErrDuplicateRegistration
	}

	prev := cloneUser(stored)
	next := entity.RestoreUser(*cloneUser(user), stored.Balance(entity.LedgerReal), stored.Balance(entity.LedgerDemo))
	r.s.users[user.ID] = next
	r.s.journal(ctx, func() { r.s.users[prev.ID] = prev })
	return nil
}

func (r *UserRepository) List(_ context.Context, filter persistence.UserFilter) ([]*entity.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	search := strings.ToLower(strings.TrimSpace(filter.Search))
	var out []*entity.User
	for _, id := range r.sortedIDs() {
		u := r.s.users[id]
		if search != "" && !matchesSearch(u, search) {
			continue
		}
		out = append(out, cloneUser(u))
	}

	if filter.Offset >= len(out) {
		return []*entity.User{}, nil
	}
	out = out[filter.Offset:]
	return out[:limitOf(len(out), filter.Limit)], nil
}

func (r *UserRepository) sortedIDs() []uint64 {
	ids := make([]uint64, 0, len(r.s.users))
	for id := range r.s.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

func matchesSearch(u *entity.User, search string) bool {
	for _, field := range []string{strconv.FormatUint(u.ID, 10), u.Username, u.DisplayName, u.Email, u.Phone} {
		if strings.Contains(strings.ToLower(field), search) {
			return true
		}
	}
	return false
}
