package migration

import (
	"context"

	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"gorm.io/gorm"
)

// AdvancedIndexManager manages PostgreSQL-specific indexes the model tags cannot express
type AdvancedIndexManager struct {
	db     *gorm.DB
	logger coreport.Logger
}

// NewAdvancedIndexManager creates a new advanced index manager
func NewAdvancedIndexManager(db *gorm.DB, logger coreport.Logger) *AdvancedIndexManager {
	return &AdvancedIndexManager{
		db:     db,
		logger: logger,
	}
}

var advancedIndexes = []struct {
	name string
	sql  string
}{
	// handles are unique regardless of case
	{"idx_users_username_lower", `CREATE UNIQUE INDEX IF NOT EXISTS idx_users_username_lower ON users (LOWER(username))`},
	{"idx_users_email_lower", `CREATE INDEX IF NOT EXISTS idx_users_email_lower ON users (LOWER(email))`},
	// the operator queue only ever scans pending requests
	{"idx_transactions_pending", `CREATE INDEX IF NOT EXISTS idx_transactions_pending ON transactions (created_at DESC) WHERE status = 'pending'`},
	{"idx_wagers_pending_round", `CREATE INDEX IF NOT EXISTS idx_wagers_pending_round ON wagers (round_id, placed_at) WHERE status = 'Pending'`},
	{"idx_positions_open_market", `CREATE INDEX IF NOT EXISTS idx_positions_open_market ON trading_positions (market) WHERE status = 'Open'`},
	{"idx_chat_messages_unread", `CREATE INDEX IF NOT EXISTS idx_chat_messages_unread ON chat_messages (user_id) WHERE sender = 'user' AND status <> 'read'`},
	{"idx_ledger_entries_created_at_brin", `CREATE INDEX IF NOT EXISTS idx_ledger_entries_created_at_brin ON ledger_entries USING BRIN (created_at) WITH (pages_per_range = 32)`},
}

// CreateAdvancedIndexes creates the expression and partial indexes
func (m *AdvancedIndexManager) CreateAdvancedIndexes(ctx context.Context, db *gorm.DB) error {
	m.logger.Info("Creating advanced PostgreSQL indexes", nil)

	for _, idx := range advancedIndexes {
		if err := db.WithContext(ctx).Exec(idx.sql).Error; err != nil {
			m.logger.Error("Failed to create index", map[string]any{
				"index": idx.name,
				"error": err.Error(),
			})
			return err
		}
	}
	return nil
}

// CreatePerformanceTweaks applies storage parameters to the hot tables
func (m *AdvancedIndexManager) CreatePerformanceTweaks(ctx context.Context, db *gorm.DB) error {
	for _, stmt := range []string{
		`ALTER TABLE users SET (fillfactor = 80)`,
		`ALTER TABLE wagers SET (fillfactor = 90)`,
		`ALTER TABLE ledger_entries ALTER COLUMN user_id SET STATISTICS 1000`,
	} {
		if err := db.WithContext(ctx).Exec(stmt).Error; err != nil {
			m.logger.Warn("Failed to apply PostgreSQL tweak", map[string]any{
				"statement": stmt,
				"error":     err.Error(),
			})
			return err
		}
	}
	return nil
}
