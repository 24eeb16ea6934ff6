package repository

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LedgerRepository applies balance mutations under a row lock on the user
type LedgerRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewLedgerRepository creates a new LedgerRepository instance
func NewLedgerRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *LedgerRepository {
	return &LedgerRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func balanceColumn(mode entity.LedgerMode) string {
	if mode == entity.LedgerDemo {
		return "demo_balance"
	}
	return "real_balance"
}

func balanceOf(m *model.User, mode entity.LedgerMode) int64 {
	if mode == entity.LedgerDemo {
		return m.DemoBalance
	}
	return m.RealBalance
}

func entryToEntity(m *model.LedgerEntry) *entity.LedgerEntry {
	return &entity.LedgerEntry{
		ID:           m.ID,
		UserID:       m.UserID,
		Mode:         entity.LedgerMode(m.Mode),
		Delta:        m.Delta,
		Kind:         entity.EntryKind(m.Kind),
		Reference:    m.Reference,
		BalanceAfter: m.BalanceAfter,
		CreatedAt:    m.CreatedAt,
	}
}

// Apply locks the user row, skips references that were already applied,
// and otherwise moves the balance and journals the entry in one transaction
func (r *LedgerRepository) Apply(ctx context.Context, entry *entity.LedgerEntry) (int64, bool, error) {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = r.timeProvider.Now()
	}

	var balance int64
	applied := false
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user model.User
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&user, entry.UserID).Error; err != nil {
			return err
		}
		balance = balanceOf(&user, entry.Mode)

		var seen int64
		if err := tx.Model(&model.LedgerEntry{}).Where("reference = ?", entry.Reference).Count(&seen).Error; err != nil {
			return err
		}
		if seen > 0 {
			return nil
		}

		next, err := entity.AddCents(balance, entry.Delta)
		if err != nil {
			return err
		}
		if next < 0 {
			return errs.NewInsufficientFundsError(entry.UserID, string(entry.Mode),
				entity.AmountInCentsToString(-entry.Delta), entity.AmountInCentsToString(balance))
		}

		if err := tx.Model(&model.User{}).Where("id = ?", user.ID).Updates(map[string]any{
			balanceColumn(entry.Mode): next,
			"updated_at":              entry.CreatedAt,
		}).Error; err != nil {
			return err
		}

		entry.BalanceAfter = next
		row := model.LedgerEntry{
			ID:           entry.ID,
			UserID:       entry.UserID,
			Mode:         string(entry.Mode),
			Delta:        entry.Delta,
			Kind:         string(entry.Kind),
			Reference:    entry.Reference,
			BalanceAfter: next,
			CreatedAt:    entry.CreatedAt,
		}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		balance, applied = next, true
		return nil
	})

	if err != nil && r.errorClassifier.IsDuplicateKeyError(err) {
		// a concurrent writer journaled the same reference first
		return r.currentBalance(ctx, entry.UserID, entry.Mode)
	}
	if err != nil {
		return balance, false, handleDatabaseError(r.logger, r.errorClassifier, "applying ledger entry", err,
			errs.ErrUserNotFound, errs.ErrDuplicateReference, map[string]any{
				"user_id":   entry.UserID,
				"reference": entry.Reference,
				"delta":     entry.Delta,
			})
	}

	if applied {
		r.logger.Debug("Ledger entry applied", map[string]any{
			"user_id":       entry.UserID,
			"reference":     entry.Reference,
			"mode":          entry.Mode,
			"delta":         entity.AmountInCentsToString(entry.Delta),
			"balance_after": entity.AmountInCentsToString(balance),
		})
	}
	return balance, applied, nil
}

func (r *LedgerRepository) currentBalance(ctx context.Context, userID uint64, mode entity.LedgerMode) (int64, bool, error) {
	var user model.User
	if err := r.db.WithContext(ctx).First(&user, userID).Error; err != nil {
		return 0, false, handleDatabaseError(r.logger, r.errorClassifier, "reading balance", err,
			errs.ErrUserNotFound, errs.ErrDuplicateReference, map[string]any{"user_id": userID})
	}
	return balanceOf(&user, mode), false, nil
}

// GetByReference retrieves an applied entry
func (r *LedgerRepository) GetByReference(ctx context.Context, reference string) (*entity.LedgerEntry, error) {
	var m model.LedgerEntry
	if err := r.db.WithContext(ctx).Where("reference = ?", reference).First(&m).Error; err != nil {
		return nil, handleDatabaseError(r.logger, r.errorClassifier, "getting ledger entry", err,
			errs.ErrNotFound, errs.ErrDuplicateReference, map[string]any{"reference": reference})
	}
	return entryToEntity(&m), nil
}

// ListByUser returns a user's entries, newest first
func (r *LedgerRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.LedgerEntry, error) {
	var rows []model.LedgerEntry
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Limit(pageLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, handleDatabaseError(r.logger, r.errorClassifier, "listing ledger entries", err,
			errs.ErrNotFound, errs.ErrDuplicateReference, map[string]any{"user_id": userID})
	}

	out := make([]*entity.LedgerEntry, 0, len(rows))
	for i := range rows {
		out = append(out, entryToEntity(&rows[i]))
	}
	return out, nil
}
