package repository

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// OutcomeRepository implements OutcomeRepository interface using GORM
type OutcomeRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewOutcomeRepository creates a new OutcomeRepository instance
func NewOutcomeRepository(db *gorm.DB, logger coreport.Logger) *OutcomeRepository {
	return &OutcomeRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

func outcomeToEntity(m *model.RoundOutcome) *entity.RoundOutcome {
	return &entity.RoundOutcome{
		RoundID: m.RoundID,
		Mode:    entity.GameMode(m.Mode),
		Number:  m.Number,
		Size:    entity.Size(m.Size),
		Color:   entity.Color(m.Color),
		Forced:  m.Forced,
		DrawnAt: m.DrawnAt,
	}
}

func (r *OutcomeRepository) fail(operation string, err error, fields map[string]any) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err,
		errs.ErrNotFound, errs.ErrDuplicateReference, fields)
}

// Create stores a drawn outcome; a round can only be drawn once
func (r *OutcomeRepository) Create(ctx context.Context, outcome *entity.RoundOutcome) error {
	m := model.RoundOutcome{
		RoundID: outcome.RoundID,
		Mode:    string(outcome.Mode),
		Number:  outcome.Number,
		Size:    string(outcome.Size),
		Color:   string(outcome.Color),
		Forced:  outcome.Forced,
		DrawnAt: outcome.DrawnAt,
	}
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.fail("creating outcome", err, map[string]any{"round_id": outcome.RoundID})
	}
	return nil
}

// GetByRoundID retrieves a round's outcome
func (r *OutcomeRepository) GetByRoundID(ctx context.Context, roundID string) (*entity.RoundOutcome, error) {
	var m model.RoundOutcome
	if err := r.db.WithContext(ctx).Where("round_id = ?", roundID).First(&m).Error; err != nil {
		return nil, r.fail("getting outcome", err, map[string]any{"round_id": roundID})
	}
	return outcomeToEntity(&m), nil
}

// ListRecent returns the mode's latest outcomes, newest first
func (r *OutcomeRepository) ListRecent(ctx context.Context, mode entity.GameMode, limit int) ([]*entity.RoundOutcome, error) {
	var rows []model.RoundOutcome
	err := r.db.WithContext(ctx).
		Where("mode = ?", string(mode)).
		Order("drawn_at DESC").
		Limit(pageLimit(limit)).
		Find(&rows).Error
	if err != nil {
		return nil, r.fail("listing outcomes", err, map[string]any{"mode": mode})
	}

	out := make([]*entity.RoundOutcome, 0, len(rows))
	for i := range rows {
		out = append(out, outcomeToEntity(&rows[i]))
	}
	return out, nil
}
