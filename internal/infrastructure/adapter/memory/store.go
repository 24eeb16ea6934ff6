package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
)

// Store is a process-local implementation of every persistence port. It is
// used by the memory database driver and by use case tests. Transactions
// are serialized and rolled back through an undo journal; readers outside a
// transaction see uncommitted writes.
type Store struct {
	mu   sync.Mutex
	txMu sync.Mutex

	timeProvider coreport.TimeProvider

	nextUserID   uint64
	users        map[uint64]*entity.User
	entries      map[string]*entity.LedgerEntry
	entryOrder   []string
	wagers       map[string]*entity.Wager
	wagerOrder   []string
	outcomes     map[string]*entity.RoundOutcome
	positions    map[string]*entity.TradingPosition
	posOrder     []string
	transactions map[string]*entity.Transaction
	txOrder      []string
	chat         []*entity.ChatMessage
	settings     map[string]string
	locks        map[uint64]userLock
}

type userLock struct {
	owner     string
	expiresAt time.Time
}

var _ persistence.UnitOfWork = (*Store)(nil)

// NewStore creates an empty store
func NewStore(timeProvider coreport.TimeProvider) *Store {
	return &Store{
		timeProvider: timeProvider,
		users:        make(map[uint64]*entity.User),
		entries:      make(map[string]*entity.LedgerEntry),
		wagers:       make(map[string]*entity.Wager),
		outcomes:     make(map[string]*entity.RoundOutcome),
		positions:    make(map[string]*entity.TradingPosition),
		transactions: make(map[string]*entity.Transaction),
		settings:     make(map[string]string),
		locks:        make(map[uint64]userLock),
	}
}

type txKey struct{}

type memTx struct {
	store *Store
	undo  []func()
	done  bool
}

func (s *Store) txFrom(ctx context.Context) *memTx {
	tx, ok := ctx.Value(txKey{}).(*memTx)
	if !ok || tx.store != s || tx.done {
		return nil
	}
	return tx
}

// journal registers an undo step; callers hold s.mu
func (s *Store) journal(ctx context.Context, undo func()) {
	if tx := s.txFrom(ctx); tx != nil {
		tx.undo = append(tx.undo, undo)
	}
}

// Begin starts a transaction
func (s *Store) Begin(ctx context.Context) (context.Context, error) {
	if s.txFrom(ctx) != nil {
		return nil, errs.ErrInvalidState
	}
	s.txMu.Lock()
	return context.WithValue(ctx, txKey{}, &memTx{store: s}), nil
}

// Commit keeps the transaction's writes
func (s *Store) Commit(ctx context.Context) error {
	tx := s.txFrom(ctx)
	if tx == nil {
		return errs.ErrInvalidState
	}
	tx.done = true
	tx.undo = nil
	s.txMu.Unlock()
	return nil
}

// Rollback undoes the transaction's writes in reverse order
func (s *Store) Rollback(ctx context.Context) error {
	tx := s.txFrom(ctx)
	if tx == nil {
		return errs.ErrInvalidState
	}
	s.mu.Lock()
	for i := len(tx.undo) - 1; i >= 0; i-- {
		tx.undo[i]()
	}
	s.mu.Unlock()
	tx.done = true
	tx.undo = nil
	s.txMu.Unlock()
	return nil
}

func (s *Store) GetUserRepository(context.Context) persistence.UserRepository {
	return &UserRepository{s}
}

func (s *Store) GetLedgerRepository(context.Context) persistence.LedgerRepository {
	return &LedgerRepository{s}
}

func (s *Store) GetWagerRepository(context.Context) persistence.WagerRepository {
	return &WagerRepository{s}
}

func (s *Store) GetPositionRepository(context.Context) persistence.PositionRepository {
	return &PositionRepository{s}
}

func (s *Store) GetTransactionRepository(context.Context) persistence.TransactionRepository {
	return &TransactionRepository{s}
}

// Outcomes, Chat, Settings and Locks expose the repositories that never take part in a transaction
func (s *Store) Outcomes() persistence.OutcomeRepository { return &OutcomeRepository{s} }
func (s *Store) Chat() persistence.ChatRepository        { return &ChatRepository{s} }
func (s *Store) Settings() persistence.SettingRepository {
	return &SettingRepository{s}
}
func (s *Store) Locks() persistence.UserLockRepository { return &UserLockRepository{s} }

func cloneUser(u *entity.User) *entity.User {
	c := *u
	c.PayoutAccounts = slices.Clone(u.PayoutAccounts)
	return &c
}

func cloneWager(w *entity.Wager) *entity.Wager {
	c := *w
	return &c
}

func clonePosition(p *entity.TradingPosition) *entity.TradingPosition {
	c := *p
	return &c
}

func cloneTransaction(t *entity.Transaction) *entity.Transaction {
	c := *t
	if t.Account != nil {
		acc := *t.Account
		c.Account = &acc
	}
	return &c
}

func limitOf(n, limit int) int {
	if limit <= 0 || limit > n {
		return n
	}
	return limit
}
