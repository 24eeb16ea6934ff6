package migration

import (
	"context"
	"fmt"

	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// step is one versioned schema change
type step struct {
	version string
	details string
	run     func(ctx context.Context, db *gorm.DB) error
}

// MigrationManager manages database migrations
type MigrationManager struct {
	db               *gorm.DB
	logger           coreport.Logger
	timeProvider     coreport.TimeProvider
	advancedIndexMgr *AdvancedIndexManager
	steps            []step
}

// NewMigrationManager creates a new migration manager
func NewMigrationManager(db *gorm.DB, logger coreport.Logger, timeProvider coreport.TimeProvider) *MigrationManager {
	m := &MigrationManager{
		db:               db,
		logger:           logger,
		timeProvider:     timeProvider,
		advancedIndexMgr: NewAdvancedIndexManager(db, logger),
	}
	m.steps = []step{
		{version: "1.0.0", details: "Base schema", run: m.autoMigrateModels},
		{version: "1.1.0", details: "Lookup and partial indexes", run: m.advancedIndexMgr.CreateAdvancedIndexes},
		{version: "1.1.1", details: "Storage parameters", run: m.advancedIndexMgr.CreatePerformanceTweaks},
	}
	return m
}

// CurrentSchemaVersion is the version the newest step brings the schema to
func (m *MigrationManager) CurrentSchemaVersion() string {
	return m.steps[len(m.steps)-1].version
}

// MigrateAll applies every step that has not been recorded yet
func (m *MigrationManager) MigrateAll(ctx context.Context) error {
	m.logger.Info("Starting database migrations", map[string]any{
		"target_version": m.CurrentSchemaVersion(),
	})

	if err := m.db.WithContext(ctx).AutoMigrate(&model.MigrationVersion{}); err != nil {
		m.logger.Error("Failed to create migration version table", map[string]any{
			"error": err.Error(),
		})
		return err
	}

	applied, err := m.AppliedVersions(ctx)
	if err != nil {
		return err
	}

	for _, s := range m.steps {
		if applied[s.version] {
			continue
		}

		m.logger.Info("Applying migration", map[string]any{
			"version": s.version,
			"details": s.details,
		})
		err := m.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
			if err := s.run(ctx, tx); err != nil {
				return err
			}
			return m.setVersion(ctx, tx, s.version, s.details)
		})
		if err != nil {
			m.logger.Error("Migration failed", map[string]any{
				"version": s.version,
				"error":   err.Error(),
			})
			return fmt.Errorf("migration %s: %w", s.version, err)
		}
	}

	m.logger.Info("Database migrations completed successfully", map[string]any{
		"version": m.CurrentSchemaVersion(),
	})
	return nil
}

// AppliedVersions returns the recorded migration versions
func (m *MigrationManager) AppliedVersions(ctx context.Context) (map[string]bool, error) {
	var rows []model.MigrationVersion
	if err := m.db.WithContext(ctx).Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make(map[string]bool, len(rows))
	for _, r := range rows {
		out[r.Version] = true
	}
	return out, nil
}

// setVersion records a new migration version
func (m *MigrationManager) setVersion(ctx context.Context, tx *gorm.DB, version string, details string) error {
	return tx.WithContext(ctx).Create(&model.MigrationVersion{
		Version:   version,
		AppliedAt: m.timeProvider.Now(),
		Details:   details,
	}).Error
}

// autoMigrateModels creates every table from its model
func (m *MigrationManager) autoMigrateModels(ctx context.Context, db *gorm.DB) error {
	return db.WithContext(ctx).AutoMigrate(
		&model.User{},
		&model.UserLock{},
		&model.LedgerEntry{},
		&model.Wager{},
		&model.TradingPosition{},
		&model.RoundOutcome{},
		&model.Transaction{},
		&model.ChatMessage{},
		&model.Setting{},
	)
}
