package wager

import (
	"sync"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// ModeLocks holds one mutex per game mode. Placement into a mode and the
// scheduler's settlement of that mode take the same lock.
type ModeLocks struct {
	locks map[entity.GameMode]*sync.Mutex
}

// NewModeLocks creates a lock for every game mode
func NewModeLocks() *ModeLocks {
	l := &ModeLocks{locks: make(map[entity.GameMode]*sync.Mutex)}
	for _, m := range entity.AllModes() {
		l.locks[m] = &sync.Mutex{}
	}
	return l
}

// Lock acquires the mode's lock and returns its release
func (l *ModeLocks) Lock(mode entity.GameMode) func() {
	mu, ok := l.locks[mode]
	if !ok {
		return func() {}
	}
	mu.Lock()
	return mu.Unlock
}
