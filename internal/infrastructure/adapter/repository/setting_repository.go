package repository

import (
	"context"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SettingRepository stores operator settings as key/value rows
type SettingRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewSettingRepository creates a new SettingRepository instance
func NewSettingRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *SettingRepository {
	return &SettingRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// Get returns a setting's value
func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var m model.Setting
	if err := r.db.WithContext(ctx).Where("key = ?", key).First(&m).Error; err != nil {
		return "", handleDatabaseError(r.logger, r.errorClassifier, "getting setting", err,
			errs.ErrNotFound, errs.ErrDuplicateReference, map[string]any{"key": key})
	}
	return m.Value, nil
}

// Set upserts a setting
func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	m := model.Setting{Key: key, Value: value, UpdatedAt: r.timeProvider.Now()}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&m).Error
	if err != nil {
		return handleDatabaseError(r.logger, r.errorClassifier, "setting value", err,
			errs.ErrNotFound, errs.ErrDuplicateReference, map[string]any{"key": key})
	}

	r.logger.Info("Setting updated", map[string]any{"key": key})
	return nil
}
