package settlement

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/eventbus"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/notification"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wager"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/memory"
	coremocks "github.com/amirhossein-jamali/wingo-engine/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	now       time.Time
	store     *memory.Store
	ledger    *ledger.Service
	hub       *notification.Hub
	placement *wager.Service
	settler   *Settler

	mu     sync.Mutex
	events []event.Event
}

func newFixture(t *testing.T) *fixture {
	f := &fixture{now: time.Date(2024, 1, 1, 0, 0, 10, 0, time.UTC)}

	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().RunAndReturn(func() time.Time { return f.now }).Maybe()

	log := logger.NewNoopLogger()
	f.store = memory.NewStore(mockTime)
	f.ledger = ledger.NewService(f.store, nil, mockTime, log, ledger.DefaultConfig())
	t.Cleanup(f.ledger.Shutdown)
	f.hub = notification.NewHub(3*time.Second, mockTime, log)

	bus := eventbus.NewBus(log)
	bus.SubscribeAll(func(_ context.Context, e event.Event) {
		f.mu.Lock()
		f.events = append(f.events, e)
		f.mu.Unlock()
	})

	cfg := wager.DefaultConfig()
	cfg.BotsEnabled = false
	f.placement = wager.NewService(f.store, f.ledger, clock.New(clock.DefaultLockWindow), wager.NewBook(), wager.NewModeLocks(),
		f.hub, nil, mockTime, log, cfg)
	f.settler = NewSettler(f.store, f.ledger, f.hub, bus, entity.DefaultPayoutTable(), mockTime, log)
	return f
}

func (f *fixture) seedUser(t *testing.T, real int64) *entity.User {
	u := entity.RestoreUser(entity.User{Phone: "0812", Username: "budi", Role: entity.RoleUser, ActiveMode: entity.LedgerReal}, real, 0)
	require.NoError(t, f.store.GetUserRepository(context.Background()).Create(context.Background(), u))
	return u
}

func (f *fixture) place(ctx context.Context, req wager.PlaceRequest) (*entity.Wager, error) {
	return f.placement.Place(ctx, req)
}

func (f *fixture) balance(t *testing.T, userID uint64, mode entity.LedgerMode) int64 {
	b, err := f.ledger.Balance(context.Background(), userID, mode)
	require.NoError(t, err)
	return b
}

func (f *fixture) outcome(t *testing.T, roundID string, n int) entity.RoundOutcome {
	o, err := entity.NewRoundOutcome(roundID, entity.Mode30s, n, false, f.now)
	require.NoError(t, err)
	return *o
}

func TestSettler_PaysWinnersOnce(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, 10000000)
	ctx := context.Background()

	digit, err := f.place(ctx, wager.PlaceRequest{UserID: u.ID, Mode: entity.Mode30s, Selection: "7", Stake: 100000, Multiplier: 1})
	require.NoError(t, err)
	small, err := f.place(ctx, wager.PlaceRequest{UserID: u.ID, Mode: entity.Mode30s, Selection: "Small", Stake: 100000, Multiplier: 2})
	require.NoError(t, err)
	assert.Equal(t, int64(9700000), f.balance(t, u.ID, entity.LedgerReal))

	outcome := f.outcome(t, digit.RoundID, 7)
	report := f.settler.Settle(ctx, outcome)
	assert.Equal(t, 2, report.Settled)
	assert.Equal(t, 1, report.Wins)
	assert.Equal(t, 1, report.Losses)
	assert.Equal(t, int64(900000), report.PaidOut)
	assert.Equal(t, int64(10600000), f.balance(t, u.ID, entity.LedgerReal))

	again := f.settler.Settle(ctx, outcome)
	assert.Zero(t, again.Settled)
	assert.Equal(t, int64(10600000), f.balance(t, u.ID, entity.LedgerReal))

	won, err := f.store.GetWagerRepository(ctx).GetByID(ctx, digit.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WagerWin, won.Status)
	assert.Equal(t, int64(900000), won.Payout)

	lost, err := f.store.GetWagerRepository(ctx).GetByID(ctx, small.ID)
	require.NoError(t, err)
	assert.Equal(t, entity.WagerLoss, lost.Status)
	assert.Zero(t, lost.Payout)

	f.mu.Lock()
	defer f.mu.Unlock()
	require.Len(t, f.events, 2)
	settled := f.events[0].(event.WagerSettled)
	assert.Equal(t, digit.ID, settled.WagerID)
	assert.Equal(t, entity.WagerWin, settled.Status)
}

func TestSettler_WinNotificationCarriesBall(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, 10000000)
	ctx := context.Background()

	w, err := f.place(ctx, wager.PlaceRequest{UserID: u.ID, Mode: entity.Mode30s, Selection: "4", Stake: 1000, Multiplier: 1})
	require.NoError(t, err)
	f.settler.Settle(ctx, f.outcome(t, w.RoundID, 4))

	// skip past the placement notice
	f.now = f.now.Add(3 * time.Second)
	active := f.hub.Active(u.ID)
	require.NotNil(t, active)
	assert.Equal(t, entity.NotifyWin, active.Type)
	assert.Equal(t, "90.00", active.Amount)
	require.NotNil(t, active.BallNumber)
	assert.Equal(t, 4, *active.BallNumber)
}

func TestSettler_VioletTintedPrimaryPaysPartial(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, 10000000)
	ctx := context.Background()

	w, err := f.place(ctx, wager.PlaceRequest{UserID: u.ID, Mode: entity.Mode30s, Selection: "Green", Stake: 100000, Multiplier: 1})
	require.NoError(t, err)

	report := f.settler.Settle(ctx, f.outcome(t, w.RoundID, 5))
	assert.Equal(t, int64(150000), report.PaidOut)
}

func TestSettler_DigitSevenExample(t *testing.T) {
	f := newFixture(t)
	u := f.seedUser(t, 100000)
	ctx := context.Background()

	w, err := f.place(ctx, wager.PlaceRequest{UserID: u.ID, Mode: entity.Mode30s, Selection: "7", Stake: 1000, Multiplier: 1})
	require.NoError(t, err)
	f.settler.Settle(ctx, f.outcome(t, w.RoundID, 7))

	assert.Equal(t, int64(100000-1000+9000), f.balance(t, u.ID, entity.LedgerReal))
}

func TestSettler_DemoWagerPaysDemoLedger(t *testing.T) {
	f := newFixture(t)
	u := entity.RestoreUser(entity.User{Phone: "0813", Username: "sari", Role: entity.RoleUser, ActiveMode: entity.LedgerDemo}, 50000, 5000000)
	require.NoError(t, f.store.GetUserRepository(context.Background()).Create(context.Background(), u))
	ctx := context.Background()

	w, err := f.place(ctx, wager.PlaceRequest{UserID: u.ID, Mode: entity.Mode30s, Selection: "Big", Stake: 100000, Multiplier: 1})
	require.NoError(t, err)

	// the player switches back to real before the round closes
	_, err = f.ledger.SetMode(ctx, u.ID, entity.LedgerReal)
	require.NoError(t, err)
	report := f.settler.Settle(ctx, f.outcome(t, w.RoundID, 9))

	assert.Equal(t, int64(190000), report.PaidOut)
	assert.Equal(t, int64(5000000-100000+190000), f.balance(t, u.ID, entity.LedgerDemo))
	assert.Equal(t, int64(50000), f.balance(t, u.ID, entity.LedgerReal))
}

func TestSettler_SkipsBotWagers(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	bot := &entity.Wager{ID: "bot-1", Username: "Dragon3", RoundID: "r-bot", Mode: entity.Mode30s,
		Selection: entity.DigitSelection(1), Stake: 100000, Multiplier: 1, LedgerMode: entity.LedgerReal, Status: entity.WagerPending, IsBot: true}
	require.NoError(t, f.store.GetWagerRepository(ctx).Create(ctx, bot))

	report := f.settler.Settle(ctx, f.outcome(t, "r-bot", 1))
	assert.Zero(t, report.Settled)
	assert.Zero(t, report.Failed)
}

func TestSettler_FailedCreditLeavesWagerPending(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	u := f.seedUser(t, 50000)

	orphan := &entity.Wager{ID: "w-orphan", UserID: 999, RoundID: "r-x", Mode: entity.Mode30s,
		Selection: entity.GreenSelection, Stake: 1000, Multiplier: 1, LedgerMode: entity.LedgerReal, Status: entity.WagerPending}
	require.NoError(t, f.store.GetWagerRepository(ctx).Create(ctx, orphan))
	valid := &entity.Wager{ID: "w-valid", UserID: u.ID, RoundID: "r-x", Mode: entity.Mode30s,
		Selection: entity.GreenSelection, Stake: 1000, Multiplier: 1, LedgerMode: entity.LedgerReal, Status: entity.WagerPending}
	require.NoError(t, f.store.GetWagerRepository(ctx).Create(ctx, valid))

	outcome := f.outcome(t, "r-x", 3)
	report := f.settler.Settle(ctx, outcome)
	assert.Equal(t, 1, report.Failed)
	assert.Equal(t, 1, report.Settled)
	assert.False(t, report.Complete())

	stored, err := f.store.GetWagerRepository(ctx).GetByID(ctx, "w-orphan")
	require.NoError(t, err)
	assert.Equal(t, entity.WagerPending, stored.Status)

	// the failure does not hold back the other wager of the round
	paid, err := f.store.GetWagerRepository(ctx).GetByID(ctx, "w-valid")
	require.NoError(t, err)
	assert.Equal(t, entity.WagerWin, paid.Status)
	assert.Positive(t, paid.Payout)
	assert.Equal(t, 50000+paid.Payout, f.balance(t, u.ID, entity.LedgerReal))

	// once the owner exists a second pass settles the leftover wager only
	late := entity.RestoreUser(entity.User{ID: 999, Phone: "0899", Username: "late", Role: entity.RoleUser, ActiveMode: entity.LedgerReal}, 0, 0)
	require.NoError(t, f.store.GetUserRepository(ctx).Create(ctx, late))

	retry := f.settler.Settle(ctx, outcome)
	assert.True(t, retry.Complete())
	assert.Equal(t, 1, retry.Settled)
	assert.Equal(t, paid.Payout, f.balance(t, 999, entity.LedgerReal))
	assert.Equal(t, 50000+paid.Payout, f.balance(t, u.ID, entity.LedgerReal))
}
