package repository_test

import (
	"context"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/database/dbtest"
	timeprovider "github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/time"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createUser(t *testing.T, td *dbtest.TestDatabase, phone, username string) *entity.User {
	t.Helper()
	ctx := context.Background()

	u, err := entity.NewUser(phone, "hash", username, 0, timeprovider.NewRealTimeProvider())
	require.NoError(t, err)
	require.NoError(t, td.UoW.GetUserRepository(ctx).Create(ctx, u))
	require.NotZero(t, u.ID)
	return u
}

func ledgerEntry(userID uint64, mode entity.LedgerMode, delta int64, ref string) *entity.LedgerEntry {
	return &entity.LedgerEntry{UserID: userID, Mode: mode, Delta: delta, Kind: entity.EntryAdminAdjust, Reference: ref}
}

func TestIntegration_Users(t *testing.T) {
	td := dbtest.Setup(t)
	ctx := context.Background()
	users := td.UoW.GetUserRepository(ctx)

	u := createUser(t, td, "081234567890", "Alice")
	u.Email = "Alice@Example.com"
	u.PayoutAccounts = []entity.PayoutAccount{{ID: "acc-1", Type: entity.PayoutBank, BankName: "BCA", AccountName: "Alice", AccountNumber: "123"}}
	require.NoError(t, users.Update(ctx, u))

	t.Run("IdentityWithoutLeadingZero", func(t *testing.T) {
		got, err := users.FindByIdentity(ctx, "81234567890")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
	})

	t.Run("IdentityByEmailIgnoresCase", func(t *testing.T) {
		got, err := users.FindByIdentity(ctx, "alice@example.COM")
		require.NoError(t, err)
		assert.Equal(t, u.ID, got.ID)
		require.Len(t, got.PayoutAccounts, 1)
		assert.Equal(t, "BCA", got.PayoutAccounts[0].BankName)
	})

	t.Run("DuplicatePhone", func(t *testing.T) {
		dup, err := entity.NewUser("081234567890", "hash", "Other", 0, timeprovider.NewRealTimeProvider())
		require.NoError(t, err)
		assert.ErrorIs(t, users.Create(ctx, dup), errs.ErrDuplicateRegistration)
	})

	t.Run("UsernameCaseInsensitive", func(t *testing.T) {
		taken, err := users.ExistsByUsername(ctx, "alice", 0)
		require.NoError(t, err)
		assert.True(t, taken)

		taken, err = users.ExistsByUsername(ctx, "alice", u.ID)
		require.NoError(t, err)
		assert.False(t, taken)
	})

	t.Run("Search", func(t *testing.T) {
		createUser(t, td, "081200000099", "Bob")
		found, err := users.List(ctx, persistence.UserFilter{Search: "ali"})
		require.NoError(t, err)
		require.Len(t, found, 1)
		assert.Equal(t, "Alice", found[0].Username)
	})

	t.Run("UnknownUser", func(t *testing.T) {
		_, err := users.GetByID(ctx, 999999)
		assert.ErrorIs(t, err, errs.ErrUserNotFound)
	})
}

func TestIntegration_LedgerApply(t *testing.T) {
	td := dbtest.Setup(t)
	ctx := context.Background()
	ledger := td.UoW.GetLedgerRepository(ctx)
	u := createUser(t, td, "0811", "Carol")

	balance, applied, err := ledger.Apply(ctx, ledgerEntry(u.ID, entity.LedgerReal, 10000, "test:1"))
	require.NoError(t, err)
	assert.True(t, applied)
	assert.Equal(t, int64(10000), balance)

	balance, applied, err = ledger.Apply(ctx, ledgerEntry(u.ID, entity.LedgerReal, 10000, "test:1"))
	require.NoError(t, err)
	assert.False(t, applied, "same reference applies once")
	assert.Equal(t, int64(10000), balance)

	_, _, err = ledger.Apply(ctx, ledgerEntry(u.ID, entity.LedgerReal, -20000, "test:2"))
	assert.True(t, errs.IsInsufficientFundsError(err))

	_, _, err = ledger.Apply(ctx, ledgerEntry(u.ID, entity.LedgerDemo, 500, "test:3"))
	require.NoError(t, err)

	stored, err := td.UoW.GetUserRepository(ctx).GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), stored.Balance(entity.LedgerReal))
	assert.Equal(t, int64(500), stored.Balance(entity.LedgerDemo))

	entries, err := ledger.ListByUser(ctx, u.ID, 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entry, err := ledger.GetByReference(ctx, "test:1")
	require.NoError(t, err)
	assert.Equal(t, int64(10000), entry.BalanceAfter)

	_, _, err = ledger.Apply(ctx, ledgerEntry(424242, entity.LedgerReal, 1, "test:4"))
	assert.ErrorIs(t, err, errs.ErrUserNotFound)
}

func TestIntegration_LedgerRollsBackWithUnitOfWork(t *testing.T) {
	td := dbtest.Setup(t)
	ctx := context.Background()
	u := createUser(t, td, "0812", "Dave")

	err := persistence.WithinTransaction(ctx, td.UoW, func(txCtx context.Context) error {
		if _, _, err := td.UoW.GetLedgerRepository(txCtx).Apply(txCtx, ledgerEntry(u.ID, entity.LedgerReal, 700, "rb:1")); err != nil {
			return err
		}
		return errs.ErrInvalidState
	})
	require.ErrorIs(t, err, errs.ErrInvalidState)

	stored, err := td.UoW.GetUserRepository(ctx).GetByID(ctx, u.ID)
	require.NoError(t, err)
	assert.Zero(t, stored.Balance(entity.LedgerReal))

	_, err = td.UoW.GetLedgerRepository(ctx).GetByReference(ctx, "rb:1")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestIntegration_WagersSettleOnce(t *testing.T) {
	td := dbtest.Setup(t)
	ctx := context.Background()
	wagers := td.UoW.GetWagerRepository(ctx)
	u := createUser(t, td, "0813", "Erin")

	w, err := entity.NewWager(uuid.NewString(), u.ID, u.Username, "20240101100010001", entity.Mode30s,
		entity.DigitSelection(7), 1000, 2, entity.LedgerReal, time.Now())
	require.NoError(t, err)
	require.NoError(t, wagers.Create(ctx, w))

	pending, err := wagers.ListPendingByRound(ctx, w.RoundID)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, entity.DigitSelection(7), pending[0].Selection)

	changed, err := wagers.MarkSettled(ctx, w.ID, entity.WagerWin, 18000, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)

	changed, err = wagers.MarkSettled(ctx, w.ID, entity.WagerLoss, 0, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	_, err = wagers.MarkSettled(ctx, uuid.NewString(), entity.WagerLoss, 0, time.Now())
	assert.ErrorIs(t, err, errs.ErrWagerNotFound)
}

func TestIntegration_PositionsAndOutcomes(t *testing.T) {
	td := dbtest.Setup(t)
	ctx := context.Background()
	u := createUser(t, td, "0814", "Finn")
	positions := td.UoW.GetPositionRepository(ctx)

	p, err := entity.NewTradingPosition(uuid.NewString(), u.ID, entity.MarketPreA, entity.DirectionBuy,
		decimal.RequireFromString("1000.5"), 10000, 10, entity.LedgerDemo, time.Now())
	require.NoError(t, err)
	require.NoError(t, positions.Create(ctx, p))

	require.NoError(t, p.MarkClosed(decimal.RequireFromString("1010.5"), time.Now()))
	changed, err := positions.MarkClosed(ctx, p)
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = positions.MarkClosed(ctx, p)
	require.NoError(t, err)
	assert.False(t, changed)

	stored, err := positions.GetByID(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, stored.ClosePrice.Equal(decimal.RequireFromString("1010.5")))
	assert.Equal(t, p.RealizedProfit, stored.RealizedProfit)

	open, err := positions.List(ctx, persistence.PositionFilter{UserID: u.ID, Status: entity.PositionOpen})
	require.NoError(t, err)
	assert.Empty(t, open)

	outcomes := td.UoW.Outcomes()
	o, err := entity.NewRoundOutcome("10001", entity.Mode30s, 5, false, time.Now())
	require.NoError(t, err)
	require.NoError(t, outcomes.Create(ctx, o))
	assert.ErrorIs(t, outcomes.Create(ctx, o), errs.ErrDuplicateReference)

	got, err := outcomes.GetByRoundID(ctx, "10001")
	require.NoError(t, err)
	assert.Equal(t, entity.ColorGreenViolet, got.Color)

	_, err = outcomes.GetByRoundID(ctx, "missing")
	assert.ErrorIs(t, err, errs.ErrNotFound)
}

func TestIntegration_TransactionsDecideOnce(t *testing.T) {
	td := dbtest.Setup(t)
	ctx := context.Background()
	u := createUser(t, td, "0815", "Gina")
	txns := td.UoW.GetTransactionRepository(ctx)
	tp := timeprovider.NewRealTimeProvider()

	account := entity.PayoutAccount{ID: "acc-1", Type: entity.PayoutEWallet, BankName: "DANA", AccountName: "Gina", AccountNumber: "0815"}
	w, err := entity.NewWithdrawal(uuid.NewString(), u.ID, u.Username, 5000000, account, tp)
	require.NoError(t, err)
	require.NoError(t, txns.Create(ctx, w))

	stored, err := txns.GetByID(ctx, w.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.Account)
	assert.Equal(t, "DANA", stored.Account.BankName)

	changed, err := txns.Decide(ctx, w.ID, entity.StatusFailed, time.Now())
	require.NoError(t, err)
	assert.True(t, changed)
	changed, err = txns.Decide(ctx, w.ID, entity.StatusSuccess, time.Now())
	require.NoError(t, err)
	assert.False(t, changed)

	orphan, err := entity.NewDeposit(uuid.NewString(), 999999, "ghost", 2000000, "proof", tp)
	require.NoError(t, err)
	assert.ErrorIs(t, txns.Create(ctx, orphan), errs.ErrUserNotFound)

	pending, err := txns.List(ctx, persistence.TransactionFilter{Status: entity.StatusPending})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestIntegration_ChatSettingsAndLocks(t *testing.T) {
	td := dbtest.Setup(t)
	ctx := context.Background()
	a := createUser(t, td, "0816", "Hana")
	b := createUser(t, td, "0817", "Ivan")
	chat := td.UoW.Chat()

	base := time.Now()
	for i, m := range []struct {
		user   uint64
		sender entity.ChatSender
	}{{a.ID, entity.SenderUser}, {a.ID, entity.SenderUser}, {b.ID, entity.SenderUser}, {a.ID, entity.SenderAdmin}} {
		msg, err := entity.NewChatMessage(uuid.NewString(), m.user, m.sender, "hello", base.Add(time.Duration(i)*time.Second))
		require.NoError(t, err)
		require.NoError(t, chat.Append(ctx, msg))
	}

	threads, err := chat.ListThreads(ctx)
	require.NoError(t, err)
	require.Len(t, threads, 2)
	assert.Equal(t, a.ID, threads[0].UserID)
	assert.Equal(t, 2, threads[0].Unread)

	n, err := chat.MarkRead(ctx, a.ID, []entity.ChatSender{entity.SenderUser})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	settings := td.UoW.Settings()
	_, err = settings.Get(ctx, "wallet.qris_image")
	assert.ErrorIs(t, err, errs.ErrNotFound)
	require.NoError(t, settings.Set(ctx, "wallet.qris_image", "https://a/1.png"))
	require.NoError(t, settings.Set(ctx, "wallet.qris_image", "https://a/2.png"))
	v, err := settings.Get(ctx, "wallet.qris_image")
	require.NoError(t, err)
	assert.Equal(t, "https://a/2.png", v)

	locks := td.UoW.Locks()
	require.NoError(t, locks.AcquireLock(ctx, a.ID, "node-1", time.Minute))
	require.NoError(t, locks.AcquireLock(ctx, a.ID, "node-1", time.Minute), "owner may renew")
	assert.ErrorIs(t, locks.AcquireLock(ctx, a.ID, "node-2", time.Minute), errs.ErrUserLocked)
	require.NoError(t, locks.ReleaseLock(ctx, a.ID, "node-1"))
	require.NoError(t, locks.AcquireLock(ctx, a.ID, "node-2", time.Minute))

	require.NoError(t, locks.AcquireLock(ctx, b.ID, "node-1", -time.Second))
	removed, err := locks.CleanupExpiredLocks(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), removed)
}
