package ledger

import (
	"context"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
	"github.com/google/uuid"
)

// Config tunes the ledger
type Config struct {
	QueueSize int
	// LockTTL bounds how long a cross-process user lock is held; zero disables locking
	LockTTL            time.Duration
	DemoDefault        int64 // cents
	DemoResetThreshold int64 // cents
}

// DefaultConfig returns the stock demo amounts: 50000.00 restored below 5000.00
func DefaultConfig() Config {
	return Config{
		QueueSize:          DefaultQueueSize,
		DemoDefault:        5000000,
		DemoResetThreshold: 500000,
	}
}

// Service is the single writer of user balances
type Service struct {
	uow          persistence.UnitOfWork
	locks        persistence.UserLockRepository
	queue        *QueueManager
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          Config
	instanceID   string
}

var _ usecase.Ledger = (*Service)(nil)

// NewService creates a ledger service. locks may be nil.
func NewService(
	uow persistence.UnitOfWork,
	locks persistence.UserLockRepository,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	return &Service{
		uow:          uow,
		locks:        locks,
		queue:        NewQueueManager(logger, cfg.QueueSize),
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
		instanceID:   uuid.NewString(),
	}
}

// Credit adds m.Amount to the user's m.Mode balance
func (s *Service) Credit(ctx context.Context, m usecase.Mutation) (int64, error) {
	return s.apply(ctx, m, 1)
}

// Debit subtracts m.Amount from the user's m.Mode balance
func (s *Service) Debit(ctx context.Context, m usecase.Mutation) (int64, error) {
	return s.apply(ctx, m, -1)
}

// Balance returns the current balance of one ledger mode
func (s *Service) Balance(ctx context.Context, userID uint64, mode entity.LedgerMode) (int64, error) {
	u, err := s.uow.GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return 0, err
	}
	return u.Balance(mode), nil
}

func validateMutation(m usecase.Mutation) error {
	if m.UserID == 0 {
		return errs.ErrInvalidUserID
	}
	if m.Amount <= 0 {
		return fmt.Errorf("%w: ledger amount must be positive", errs.ErrInvalidAmount)
	}
	if m.Mode != entity.LedgerReal && m.Mode != entity.LedgerDemo {
		return fmt.Errorf("%w: unknown ledger mode %q", errs.ErrInvalidRequest, m.Mode)
	}
	if m.Reference == "" {
		return fmt.Errorf("%w: ledger reference is required", errs.ErrInvalidRequest)
	}
	return nil
}

func (s *Service) apply(ctx context.Context, m usecase.Mutation, sign int64) (int64, error) {
	if err := validateMutation(m); err != nil {
		return 0, err
	}

	return s.queue.Enqueue(ctx, m.UserID, func(ctx context.Context) (int64, error) {
		return s.applyEntry(ctx, &entity.LedgerEntry{
			ID:        uuid.NewString(),
			UserID:    m.UserID,
			Mode:      m.Mode,
			Delta:     sign * m.Amount,
			Kind:      m.Kind,
			Reference: m.Reference,
			CreatedAt: s.timeProvider.Now(),
		})
	})
}

// applyEntry runs on the user's queue worker
func (s *Service) applyEntry(ctx context.Context, entry *entity.LedgerEntry) (int64, error) {
	if s.locks != nil && s.cfg.LockTTL > 0 {
		if err := s.locks.AcquireLock(ctx, entry.UserID, s.instanceID, s.cfg.LockTTL); err != nil {
			return 0, err
		}
		defer func() {
			if err := s.locks.ReleaseLock(context.WithoutCancel(ctx), entry.UserID, s.instanceID); err != nil {
				s.logger.Warn("Failed to release user lock", map[string]any{"user_id": entry.UserID, "error": err.Error()})
			}
		}()
	}

	balance, applied, err := s.uow.GetLedgerRepository(ctx).Apply(ctx, entry)
	if err != nil {
		fields := errs.LogFieldsOf(err)
		fields["user_id"] = entry.UserID
		fields["reference"] = entry.Reference
		fields["delta"] = entity.AmountInCentsToString(entry.Delta)
		s.logger.Warn("Ledger mutation rejected", fields)
		return balance, err
	}

	if !applied {
		s.logger.Debug("Ledger reference already applied", map[string]any{
			"user_id":   entry.UserID,
			"reference": entry.Reference,
		})
		return balance, nil
	}

	s.logger.Debug("Ledger mutation applied", map[string]any{
		"user_id":   entry.UserID,
		"mode":      entry.Mode,
		"kind":      entry.Kind,
		"reference": entry.Reference,
		"delta":     entity.AmountInCentsToString(entry.Delta),
		"balance":   entity.AmountInCentsToString(balance),
	})
	return balance, nil
}

// SetMode switches which ledger the user's play draws from. Balances are untouched.
func (s *Service) SetMode(ctx context.Context, userID uint64, mode entity.LedgerMode) (*entity.User, error) {
	if mode != entity.LedgerReal && mode != entity.LedgerDemo {
		return nil, fmt.Errorf("%w: unknown ledger mode %q", errs.ErrInvalidRequest, mode)
	}

	repo := s.uow.GetUserRepository(ctx)
	u, err := repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	u.ActiveMode = mode
	u.UpdatedAt = s.timeProvider.Now()
	if err := repo.Update(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// ResetDemo restores the default demo balance while the demo balance is
// below the reset threshold
func (s *Service) ResetDemo(ctx context.Context, userID uint64) (int64, error) {
	if userID == 0 {
		return 0, errs.ErrInvalidUserID
	}

	return s.queue.Enqueue(ctx, userID, func(ctx context.Context) (int64, error) {
		u, err := s.uow.GetUserRepository(ctx).GetByID(ctx, userID)
		if err != nil {
			return 0, err
		}

		current := u.Balance(entity.LedgerDemo)
		if current >= s.cfg.DemoResetThreshold {
			return current, fmt.Errorf("%w: demo balance %s is not below %s", errs.ErrDemoResetNotAllowed,
				entity.AmountInCentsToString(current), entity.AmountInCentsToString(s.cfg.DemoResetThreshold))
		}

		return s.applyEntry(ctx, &entity.LedgerEntry{
			ID:        uuid.NewString(),
			UserID:    userID,
			Mode:      entity.LedgerDemo,
			Delta:     s.cfg.DemoDefault - current,
			Kind:      entity.EntryDemoReset,
			Reference: "demo-reset:" + uuid.NewString(),
			CreatedAt: s.timeProvider.Now(),
		})
	})
}

// Adjust moves a balance to target through an admin_adjust entry
func (s *Service) Adjust(ctx context.Context, userID uint64, mode entity.LedgerMode, target int64, reference string) (int64, error) {
	if target < 0 {
		return 0, errs.ErrNegativeAmount
	}

	return s.queue.Enqueue(ctx, userID, func(ctx context.Context) (int64, error) {
		u, err := s.uow.GetUserRepository(ctx).GetByID(ctx, userID)
		if err != nil {
			return 0, err
		}
		delta := target - u.Balance(mode)
		if delta == 0 {
			return target, nil
		}
		return s.applyEntry(ctx, &entity.LedgerEntry{
			ID:        uuid.NewString(),
			UserID:    userID,
			Mode:      mode,
			Delta:     delta,
			Kind:      entity.EntryAdminAdjust,
			Reference: reference,
			CreatedAt: s.timeProvider.Now(),
		})
	})
}

// History returns the user's ledger entries, newest first
func (s *Service) History(ctx context.Context, userID uint64, limit int) ([]*entity.LedgerEntry, error) {
	return s.uow.GetLedgerRepository(ctx).ListByUser(ctx, userID, limit)
}

// Shutdown drains the per-user queues
func (s *Service) Shutdown() {
	s.queue.Shutdown()
}
