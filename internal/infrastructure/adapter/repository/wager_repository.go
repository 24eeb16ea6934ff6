package repository

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// WagerRepository implements WagerRepository interface using GORM
type WagerRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewWagerRepository creates a new WagerRepository instance
func NewWagerRepository(db *gorm.DB, logger coreport.Logger) *WagerRepository {
	return &WagerRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func wagerToModel(w *entity.Wager) model.Wager {
	return model.Wager{
		ID:         w.ID,
		UserID:     w.UserID,
		Username:   w.Username,
		RoundID:    w.RoundID,
		Mode:       string(w.Mode),
		Selection:  w.Selection.String(),
		Stake:      w.Stake,
		Multiplier: w.Multiplier,
		LedgerMode: string(w.LedgerMode),
		Status:     string(w.Status),
		Payout:     w.Payout,
		PlacedAt:   w.PlacedAt,
		SettledAt:  w.SettledAt,
	}
}

func wagerToEntity(m *model.Wager) (*entity.Wager, error) {
	sel, err := entity.ParseSelection(m.Selection)
	if err != nil {
		return nil, err
	}
	return &entity.Wager{
		ID:         m.ID,
		UserID:     m.UserID,
		Username:   m.Username,
		RoundID:    m.RoundID,
		Mode:       entity.GameMode(m.Mode),
		Selection:  sel,
		Stake:      m.Stake,
		Multiplier: m.Multiplier,
		LedgerMode: entity.LedgerMode(m.LedgerMode),
		Status:     entity.WagerStatus(m.Status),
		Payout:     m.Payout,
		PlacedAt:   m.PlacedAt,
		SettledAt:  m.SettledAt,
	}, nil
}

func wagersToEntities(rows []model.Wager) ([]*entity.Wager, error) {
	out := make([]*entity.Wager, 0, len(rows))
	for i := range rows {
		w, err := wagerToEntity(&rows[i])
		if err != nil {
			return nil, err
		}
		out = append(out, w)
	}
	return out, nil
}

func (r *WagerRepository) fail(operation string, err error, fields map[string]any) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err,
		errs.ErrWagerNotFound, errs.ErrDuplicateReference, fields)
}

// Create saves a pending wager
func (r *WagerRepository) Create(ctx context.Context, wager *entity.Wager) error {
	m := wagerToModel(wager)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.fail("creating wager", err, map[string]any{"wager_id": wager.ID, "user_id": wager.UserID})
	}
	return nil
}

// GetByID retrieves a wager
func (r *WagerRepository) GetByID(ctx context.Context, id string) (*entity.Wager, error) {
	var m model.Wager
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.fail("getting wager", err, map[string]any{"wager_id": id})
	}
	return wagerToEntity(&m)
}

// ListPendingByRound returns the round's unsettled wagers in placement order
func (r *WagerRepository) ListPendingByRound(ctx context.Context, roundID string) ([]*entity.Wager, error) {
	var rows []model.Wager
	err := r.db.WithContext(ctx).
		Where("round_id = ? AND status = ?", roundID, string(entity.WagerPending)).
		Order("placed_at, id").
		Find(&rows).Error
	if err != nil {
		return nil, r.fail("listing pending wagers", err, map[string]any{"round_id": roundID})
	}
	return wagersToEntities(rows)
}

// ListByUser returns a user's wagers, newest first
func (r *WagerRepository) ListByUser(ctx context.Context, userID uint64, limit int) ([]*entity.Wager, error) {
	var rows []model.Wager
	err := r.db.WithContext(ctx).
		Where("user_id = ?", userID).
		Order("placed_at DESC").
		Limit(pageLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, r.fail("listing user wagers", err, map[string]any{"user_id": userID})
	}
	return wagersToEntities(rows)
}

// MarkSettled moves a pending wager to its final status
func (r *WagerRepository) MarkSettled(ctx context.Context, id string, status entity.WagerStatus, payout int64, settledAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Wager{}).
		Where("id = ? AND status = ?", id, string(entity.WagerPending)).
		Updates(map[string]any{
			"status":     string(status),
			"payout":     payout,
			"settled_at": settledAt,
		})
	if result.Error != nil {
		return false, r.fail("settling wager", result.Error, map[string]any{"wager_id": id})
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
