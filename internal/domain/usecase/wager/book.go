package wager

import (
	"sort"
	"sync"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
)

// Book is the operator's live view of wagers on open rounds, bots
// included. It is never the source of truth for settlement.
type Book struct {
	mu      sync.RWMutex
	byRound map[string][]*entity.Wager
}

// NewBook creates an empty book
func NewBook() *Book {
	return &Book{byRound: make(map[string][]*entity.Wager)}
}

// Add records a wager under its round
func (b *Book) Add(w *entity.Wager) {
	c := *w
	b.mu.Lock()
	b.byRound[w.RoundID] = append(b.byRound[w.RoundID], &c)
	b.mu.Unlock()
}

// RemoveThrough drops every round of the mode up to and including index,
// covering rounds whose boundary was skipped. It reports how many wagers went.
func (b *Book) RemoveThrough(mode entity.GameMode, index int64) int {
	b.mu.Lock()
	defer b.mu.Unlock()

	n := 0
	for id, ws := range b.byRound {
		if i, ok := clock.ParseIndex(mode, id); ok && i <= index {
			n += len(ws)
			delete(b.byRound, id)
		}
	}
	return n
}

// List returns the round's wagers in placement order
func (b *Book) List(roundID string) []entity.Wager {
	b.mu.RLock()
	defer b.mu.RUnlock()

	out := make([]entity.Wager, 0, len(b.byRound[roundID]))
	for _, w := range b.byRound[roundID] {
		out = append(out, *w)
	}
	return out
}

// ListMode returns every wager of the mode across open rounds, newest round first
func (b *Book) ListMode(mode entity.GameMode) []entity.Wager {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var rounds []string
	for id, ws := range b.byRound {
		if len(ws) > 0 && ws[0].Mode == mode {
			rounds = append(rounds, id)
		}
	}
	sort.Sort(sort.Reverse(sort.StringSlice(rounds)))

	var out []entity.Wager
	for _, id := range rounds {
		for _, w := range b.byRound[id] {
			out = append(out, *w)
		}
	}
	return out
}

// RoundStats aggregates the real players' exposure on a round
type RoundStats struct {
	RoundID     string
	Wagers      int
	Bots        int
	TotalStake  int64
	BySelection map[string]int64
	// PayoutByDigit is what settlement would credit for each possible number
	PayoutByDigit [10]int64
}

// Stats aggregates a round. Bot wagers are counted but never add to amounts.
func (b *Book) Stats(roundID string, table entity.PayoutTable) RoundStats {
	stats := RoundStats{RoundID: roundID, BySelection: make(map[string]int64)}
	for _, w := range b.List(roundID) {
		if w.IsBot {
			stats.Bots++
			continue
		}
		stats.Wagers++
		stats.TotalStake += w.Cost()
		stats.BySelection[w.Selection.String()] += w.Cost()
		for n := 0; n <= 9; n++ {
			o, _ := entity.NewRoundOutcome(roundID, w.Mode, n, false, w.PlacedAt)
			if _, payout := w.Resolve(*o, table); payout > 0 {
				stats.PayoutByDigit[n] += payout
			}
		}
	}
	return stats
}
