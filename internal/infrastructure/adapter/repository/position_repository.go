package repository

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PositionRepository implements PositionRepository interface using GORM
type PositionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewPositionRepository creates a new PositionRepository instance
func NewPositionRepository(db *gorm.DB, logger coreport.Logger) *PositionRepository {
	return &PositionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func positionToModel(p *entity.TradingPosition) model.TradingPosition {
	m := model.TradingPosition{
		ID:             p.ID,
		UserID:         p.UserID,
		Market:         string(p.Market),
		Direction:      string(p.Direction),
		EntryPrice:     p.EntryPrice,
		Margin:         p.Margin,
		Leverage:       p.Leverage,
		LedgerMode:     string(p.LedgerMode),
		Status:         string(p.Status),
		OpenedAt:       p.OpenedAt,
		ClosedAt:       p.ClosedAt,
		RealizedProfit: p.RealizedProfit,
	}
	if p.ClosedAt != nil {
		m.ClosePrice = decimal.NewNullDecimal(p.ClosePrice)
	}
	return m
}

func positionToEntity(m *model.TradingPosition) *entity.TradingPosition {
	p := &entity.TradingPosition{
		ID:             m.ID,
		UserID:         m.UserID,
		Market:         entity.MarketID(m.Market),
		Direction:      entity.Direction(m.Direction),
		EntryPrice:     m.EntryPrice,
		Margin:         m.Margin,
		Leverage:       m.Leverage,
		LedgerMode:     entity.LedgerMode(m.LedgerMode),
		Status:         entity.PositionStatus(m.Status),
		OpenedAt:       m.OpenedAt,
		ClosedAt:       m.ClosedAt,
		RealizedProfit: m.RealizedProfit,
	}
	if m.ClosePrice.Valid {
		p.ClosePrice = m.ClosePrice.Decimal
	}
	return p
}

func (r *PositionRepository) fail(operation string, err error, fields map[string]any) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err,
		errs.ErrPositionNotFound, errs.ErrDuplicateReference, fields)
}

// Create saves an open position
func (r *PositionRepository) Create(ctx context.Context, position *entity.TradingPosition) error {
	m := positionToModel(position)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.fail("creating position", err, map[string]any{"position_id": position.ID, "user_id": position.UserID})
	}
	return nil
}

// GetByID retrieves a position
func (r *PositionRepository) GetByID(ctx context.Context, id string) (*entity.TradingPosition, error) {
	var m model.TradingPosition
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.fail("getting position", err, map[string]any{"position_id": id})
	}
	return positionToEntity(&m), nil
}

// List returns matching positions, newest first
func (r *PositionRepository) List(ctx context.Context, filter persistence.PositionFilter) ([]*entity.TradingPosition, error) {
	q := r.db.WithContext(ctx).Model(&model.TradingPosition{})
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Market != "" {
		q = q.Where("market = ?", string(filter.Market))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var rows []model.TradingPosition
	if err := q.Order("opened_at DESC").Limit(pageLimit(filter.Limit)).Find(&rows).Error; err != nil {
		return nil, r.fail("listing positions", err, map[string]any{"user_id": filter.UserID})
	}

	out := make([]*entity.TradingPosition, 0, len(rows))
	for i := range rows {
		out = append(out, positionToEntity(&rows[i]))
	}
	return out, nil
}

// MarkClosed persists the close of a position that is still open
func (r *PositionRepository) MarkClosed(ctx context.Context, position *entity.TradingPosition) (bool, error) {
	m := positionToModel(position)
	result := r.db.WithContext(ctx).Model(&model.TradingPosition{}).
		Where("id = ? AND status = ?", position.ID, string(entity.PositionOpen)).
		Updates(map[string]any{
			"status":          m.Status,
			"close_price":     m.ClosePrice,
			"closed_at":       m.ClosedAt,
			"realized_profit": m.RealizedProfit,
		})
	if result.Error != nil {
		return false, r.fail("closing position", result.Error, map[string]any{"position_id": position.ID})
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, position.ID); err != nil {
		return false, err
	}
	return false, nil
}
