package scheduler

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/eventbus"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/notification"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/outcome"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/override"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/settlement"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wager"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/memory"
	coremocks "github.com/amirhossein-jamali/wingo-engine/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var roundStart = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

type fakeTicker struct {
	c chan time.Time
}

func (t *fakeTicker) C() <-chan time.Time { return t.c }
func (t *fakeTicker) Stop()               {}

type fixture struct {
	mu   sync.Mutex
	now  time.Time
	next int

	ticker    *fakeTicker
	store     *memory.Store
	ledger    *ledger.Service
	overrides *override.Channel
	book      *wager.Book
	placement *wager.Service
	scheduler *Scheduler
	drawn     []entity.RoundOutcome
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{now: roundStart.Add(10 * time.Second), ticker: &fakeTicker{c: make(chan time.Time)}}

	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().RunAndReturn(func() time.Time {
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.now
	}).Maybe()
	mockTime.EXPECT().NewTicker(coreport.Duration(time.Second)).Return(f.ticker).Maybe()

	mockRandom := coremocks.NewMockRandomSource(t)
	mockRandom.EXPECT().Intn(10).RunAndReturn(func(n int) int {
		f.mu.Lock()
		defer f.mu.Unlock()
		v := f.next % n
		f.next++
		return v
	}).Maybe()

	log := logger.NewNoopLogger()
	f.store = memory.NewStore(mockTime)
	f.ledger = ledger.NewService(f.store, nil, mockTime, log, ledger.DefaultConfig())
	t.Cleanup(f.ledger.Shutdown)

	hub := notification.NewHub(3*time.Second, mockTime, log)
	bus := eventbus.NewBus(log)
	bus.Subscribe(event.TypeOutcomeDrawn, func(_ context.Context, e event.Event) {
		f.drawn = append(f.drawn, e.(event.OutcomeDrawn).Outcome)
	})

	clk := clock.New(clock.DefaultLockWindow)
	locks := wager.NewModeLocks()
	f.book = wager.NewBook()
	f.overrides = override.NewChannel(log)

	cfg := wager.DefaultConfig()
	cfg.BotsEnabled = false
	f.placement = wager.NewService(f.store, f.ledger, clk, f.book, locks, hub, nil, mockTime, log, cfg)
	settler := settlement.NewSettler(f.store, f.ledger, hub, bus, entity.DefaultPayoutTable(), mockTime, log)

	f.scheduler = New(clk, outcome.NewGenerator(mockRandom, mockTime), f.overrides, f.store.Outcomes(), settler,
		f.book, locks, bus, mockTime, log, Config{Modes: []entity.GameMode{entity.Mode30s}, Tick: time.Second, HistorySize: 25, SeedCount: 20})
	return f
}

func (f *fixture) advance(d time.Duration) {
	f.mu.Lock()
	f.now = f.now.Add(d)
	f.mu.Unlock()
}

func (f *fixture) roundID(offset int64) string {
	return clock.RoundID(entity.Mode30s, clock.Index(entity.Mode30s, roundStart)+offset)
}

func TestScheduler_LoadSeedsEmptyHistory(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.scheduler.Load(context.Background()))

	history := f.scheduler.History(entity.Mode30s, 0)
	require.Len(t, history, 20)
	assert.Equal(t, f.roundID(-2), history[0].RoundID)
	assert.Equal(t, f.roundID(-21), history[19].RoundID)

	stored, err := f.store.Outcomes().ListRecent(context.Background(), entity.Mode30s, 100)
	require.NoError(t, err)
	assert.Len(t, stored, 20)

	// a second load reads the store instead of seeding again
	require.NoError(t, f.scheduler.Load(context.Background()))
	assert.Len(t, f.scheduler.History(entity.Mode30s, 0), 20)
	assert.Len(t, f.scheduler.History(entity.Mode30s, 5), 5)
}

func TestScheduler_BoundaryUsesPrediction(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.scheduler.Load(ctx))

	f.scheduler.Tick(ctx)
	require.Len(t, f.drawn, 1)
	assert.Equal(t, f.roundID(-1), f.drawn[0].RoundID)

	predicted, ok := f.scheduler.Prediction(entity.Mode30s)
	require.True(t, ok)

	// nothing new until the boundary
	f.scheduler.Tick(ctx)
	assert.Len(t, f.drawn, 1)

	f.advance(21 * time.Second)
	f.scheduler.Tick(ctx)
	require.Len(t, f.drawn, 2)
	assert.Equal(t, f.roundID(0), f.drawn[1].RoundID)
	assert.Equal(t, predicted, f.drawn[1].Number)
	assert.False(t, f.drawn[1].Forced)

	history := f.scheduler.History(entity.Mode30s, 0)
	assert.Equal(t, f.roundID(0), history[0].RoundID)
	assert.Len(t, history, 22)
}

func TestScheduler_OverrideWinsAndSettles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.scheduler.Load(ctx))
	f.scheduler.Tick(ctx)

	u := entity.RestoreUser(entity.User{Phone: "0812", Username: "budi", Role: entity.RoleUser, ActiveMode: entity.LedgerReal}, 1000000, 0)
	require.NoError(t, f.store.GetUserRepository(ctx).Create(ctx, u))

	w, err := f.placement.Place(ctx, wager.PlaceRequest{UserID: u.ID, Mode: entity.Mode30s, Selection: "8", Stake: 10000, Multiplier: 1})
	require.NoError(t, err)
	assert.Len(t, f.book.List(w.RoundID), 1)

	require.NoError(t, f.overrides.SetOverride(entity.Mode30s, 8))
	f.advance(21 * time.Second)
	f.scheduler.Tick(ctx)

	require.Len(t, f.drawn, 2)
	assert.Equal(t, 8, f.drawn[1].Number)
	assert.True(t, f.drawn[1].Forced)
	_, pending := f.overrides.Peek(entity.Mode30s)
	assert.False(t, pending)

	settled, err := f.store.GetWagerRepository(ctx).GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WagerWin, settled.Status)

	balance, err := f.ledger.Balance(ctx, u.ID, entity.LedgerReal)
	require.NoError(t, err)
	assert.Equal(t, int64(1000000-10000+90000), balance)
	assert.Empty(t, f.book.List(w.RoundID))

	// the override applies to one round only
	f.advance(30 * time.Second)
	f.scheduler.Tick(ctx)
	require.Len(t, f.drawn, 3)
	assert.Equal(t, f.roundID(1), f.drawn[2].RoundID)
	assert.False(t, f.drawn[2].Forced)
}

func TestScheduler_RetriesIncompleteSettlement(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.scheduler.Load(ctx))
	f.scheduler.Tick(ctx)

	// the owner is missing, so the winning credit fails until it exists
	w := &entity.Wager{ID: "w-late", UserID: 777, RoundID: f.roundID(0), Mode: entity.Mode30s,
		Selection: entity.GreenSelection, Stake: 10000, Multiplier: 1, LedgerMode: entity.LedgerReal, Status: entity.WagerPending}
	require.NoError(t, f.store.GetWagerRepository(ctx).Create(ctx, w))

	require.NoError(t, f.overrides.SetOverride(entity.Mode30s, 3))
	f.advance(21 * time.Second)
	f.scheduler.Tick(ctx)
	assert.Equal(t, []string{f.roundID(0)}, f.scheduler.Unsettled(entity.Mode30s))

	f.scheduler.Tick(ctx)
	assert.Equal(t, []string{f.roundID(0)}, f.scheduler.Unsettled(entity.Mode30s))

	u := entity.RestoreUser(entity.User{ID: 777, Phone: "0813", Username: "late", Role: entity.RoleUser, ActiveMode: entity.LedgerReal}, 0, 0)
	require.NoError(t, f.store.GetUserRepository(ctx).Create(ctx, u))

	f.scheduler.Tick(ctx)
	assert.Empty(t, f.scheduler.Unsettled(entity.Mode30s))

	settled, err := f.store.GetWagerRepository(ctx).GetByID(ctx, w.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WagerWin, settled.Status)

	balance, err := f.ledger.Balance(ctx, 777, entity.LedgerReal)
	require.NoError(t, err)
	assert.Equal(t, settled.Payout, balance)
	assert.Positive(t, balance)

	// the retried round is drawn once
	assert.Len(t, f.drawn, 2)
}

func TestScheduler_SkipsMissedBoundaries(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	require.NoError(t, f.scheduler.Load(ctx))
	f.scheduler.Tick(ctx)

	// bot wagers land in the book during the rounds that are about to be skipped
	f.book.Add(&entity.Wager{ID: "bot-3", RoundID: f.roundID(3), Mode: entity.Mode30s, IsBot: true})
	f.book.Add(&entity.Wager{ID: "bot-10", RoundID: f.roundID(10), Mode: entity.Mode30s, IsBot: true})

	f.advance(5 * time.Minute)
	f.scheduler.Tick(ctx)

	require.Len(t, f.drawn, 2)
	assert.Equal(t, f.roundID(9), f.drawn[1].RoundID)

	_, err := f.store.Outcomes().GetByRoundID(ctx, f.roundID(3))
	assert.Error(t, err)

	assert.Empty(t, f.book.List(f.roundID(3)))
	assert.Len(t, f.book.List(f.roundID(10)), 1)
}

func TestScheduler_ReusesPersistedOutcome(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	existing, err := entity.NewRoundOutcome(f.roundID(-1), entity.Mode30s, 6, false, roundStart)
	require.NoError(t, err)
	require.NoError(t, f.store.Outcomes().Create(ctx, existing))
	require.NoError(t, f.scheduler.Load(ctx))

	f.scheduler.Tick(ctx)
	assert.Empty(t, f.drawn)

	history := f.scheduler.History(entity.Mode30s, 0)
	require.Len(t, history, 1)
	assert.Equal(t, 6, history[0].Number)
}

func TestScheduler_RunStopsOnCancel(t *testing.T) {
	f := newFixture(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- f.scheduler.Run(ctx) }()

	// the first receive happens after the startup tick
	f.ticker.c <- time.Time{}
	f.advance(30 * time.Second)
	f.ticker.c <- time.Time{}
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("scheduler did not stop")
	}
	assert.Len(t, f.scheduler.History(entity.Mode30s, 0), 22)
}
