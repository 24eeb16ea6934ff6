package ledger

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/memory"
	coremocks "github.com/amirhossein-jamali/wingo-engine/mocks/port/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store   *memory.Store
	service *Service
	userID  uint64
}

func newFixture(t *testing.T, real, demo int64) *fixture {
	mockTime := timeAt(t)

	store := memory.NewStore(mockTime)
	u := entity.RestoreUser(entity.User{Phone: "0811", Username: "budi", Role: entity.RoleUser, ActiveMode: entity.LedgerReal}, real, demo)
	require.NoError(t, store.GetUserRepository(context.Background()).Create(context.Background(), u))

	cfg := DefaultConfig()
	cfg.LockTTL = time.Second
	svc := NewService(store, store.Locks(), mockTime, logger.NewNoopLogger(), cfg)
	t.Cleanup(svc.Shutdown)
	return &fixture{store: store, service: svc, userID: u.ID}
}

func (f *fixture) mutation(amount int64, ref string) usecase.Mutation {
	return usecase.Mutation{UserID: f.userID, Mode: entity.LedgerReal, Amount: amount, Kind: entity.EntryWagerStake, Reference: ref}
}

func TestService_CreditDebit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 10000000, 0)

	balance, err := f.service.Debit(ctx, f.mutation(100000, "stake-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(9900000), balance)

	balance, err = f.service.Credit(ctx, f.mutation(900000, "payout-1"))
	require.NoError(t, err)
	assert.Equal(t, int64(10800000), balance)

	history, err := f.service.History(ctx, f.userID, 10)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "payout-1", history[0].Reference)
}

func TestService_DebitInsufficientFunds(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 500, 0)

	_, err := f.service.Debit(ctx, f.mutation(501, "stake-1"))
	assert.True(t, errs.IsInsufficientFundsError(err))

	balance, err := f.service.Balance(ctx, f.userID, entity.LedgerReal)
	require.NoError(t, err)
	assert.Equal(t, int64(500), balance)
}

func TestService_ReferenceAppliedOnce(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, 0)

	for i := 0; i < 3; i++ {
		balance, err := f.service.Credit(ctx, f.mutation(190000, "wager:w1:payout"))
		require.NoError(t, err)
		assert.Equal(t, int64(190000), balance)
	}
}

func TestService_ConcurrentDebitsNeverOverdraw(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 50000, 0)

	var ok, rejected atomic.Int64
	var wg sync.WaitGroup
	for i := 0; i < 80; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := f.service.Debit(ctx, f.mutation(1000, fmt.Sprintf("stake-%d", i)))
			if err == nil {
				ok.Add(1)
			} else if errs.IsInsufficientFundsError(err) {
				rejected.Add(1)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(50), ok.Load())
	assert.Equal(t, int64(30), rejected.Load())
	balance, err := f.service.Balance(ctx, f.userID, entity.LedgerReal)
	require.NoError(t, err)
	assert.Equal(t, int64(0), balance)
}

func TestService_Validation(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 0, 0)

	_, err := f.service.Credit(ctx, usecase.Mutation{Mode: entity.LedgerReal, Amount: 1, Reference: "r"})
	assert.ErrorIs(t, err, errs.ErrInvalidUserID)
	_, err = f.service.Credit(ctx, f.mutation(0, "r"))
	assert.ErrorIs(t, err, errs.ErrInvalidAmount)
	_, err = f.service.Credit(ctx, f.mutation(1, ""))
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestService_ResetDemo(t *testing.T) {
	ctx := context.Background()

	t.Run("Below threshold restores default", func(t *testing.T) {
		f := newFixture(t, 0, 499999)
		balance, err := f.service.ResetDemo(ctx, f.userID)
		require.NoError(t, err)
		assert.Equal(t, int64(5000000), balance)
	})

	t.Run("At threshold is refused", func(t *testing.T) {
		f := newFixture(t, 0, 500000)
		_, err := f.service.ResetDemo(ctx, f.userID)
		assert.ErrorIs(t, err, errs.ErrDemoResetNotAllowed)

		balance, err := f.service.Balance(ctx, f.userID, entity.LedgerDemo)
		require.NoError(t, err)
		assert.Equal(t, int64(500000), balance)
	})
}

func TestService_SetMode(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000, 2000)

	u, err := f.service.SetMode(ctx, f.userID, entity.LedgerDemo)
	require.NoError(t, err)
	assert.Equal(t, entity.LedgerDemo, u.ActiveMode)
	assert.Equal(t, int64(2000), u.ActiveBalance())
	assert.Equal(t, int64(1000), u.Balance(entity.LedgerReal))

	_, err = f.service.SetMode(ctx, f.userID, "gold")
	assert.ErrorIs(t, err, errs.ErrInvalidRequest)
}

func TestService_Adjust(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, 1000, 0)

	balance, err := f.service.Adjust(ctx, f.userID, entity.LedgerReal, 250, "admin:1")
	require.NoError(t, err)
	assert.Equal(t, int64(250), balance)

	entry, err := f.store.GetLedgerRepository(ctx).GetByReference(ctx, "admin:1")
	require.NoError(t, err)
	assert.Equal(t, int64(-750), entry.Delta)
	assert.Equal(t, entity.EntryAdminAdjust, entry.Kind)
}

type cancelKey struct{}

// cancelingStore cancels the caller's context from inside the ledger write
type cancelingStore struct {
	*memory.Store
}

func (s cancelingStore) GetLedgerRepository(ctx context.Context) persistence.LedgerRepository {
	return cancelingLedger{s.Store.GetLedgerRepository(ctx)}
}

type cancelingLedger struct {
	persistence.LedgerRepository
}

func (l cancelingLedger) Apply(ctx context.Context, entry *entity.LedgerEntry) (int64, bool, error) {
	if cancel, ok := ctx.Value(cancelKey{}).(context.CancelFunc); ok {
		cancel()
	}
	return l.LedgerRepository.Apply(ctx, entry)
}

func TestService_DebitReportsOutcomeWhenCallerCancelsMidWrite(t *testing.T) {
	f := newFixture(t, 100000, 0)
	svc := NewService(cancelingStore{f.store}, f.store.Locks(), timeAt(t), logger.NewNoopLogger(), DefaultConfig())
	t.Cleanup(svc.Shutdown)

	for i := 0; i < 40; i++ {
		parent, cancel := context.WithCancel(context.Background())
		ctx := context.WithValue(parent, cancelKey{}, context.CancelFunc(cancel))

		balance, err := svc.Debit(ctx, f.mutation(1000, fmt.Sprintf("stake-%d", i)))
		require.NoError(t, err)
		assert.Equal(t, int64(100000-(i+1)*1000), balance)
		assert.ErrorIs(t, ctx.Err(), context.Canceled)
		cancel()
	}

	balance, err := svc.Balance(context.Background(), f.userID, entity.LedgerReal)
	require.NoError(t, err)
	assert.Equal(t, int64(60000), balance)

	history, err := svc.History(context.Background(), f.userID, 100)
	require.NoError(t, err)
	assert.Len(t, history, 40)
}

func timeAt(t *testing.T) *coremocks.MockTimeProvider {
	mockTime := coremocks.NewMockTimeProvider(t)
	mockTime.EXPECT().Now().Return(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)).Maybe()
	return mockTime
}
