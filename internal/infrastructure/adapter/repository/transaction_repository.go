package repository

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// TransactionRepository implements TransactionRepository interface using GORM
type TransactionRepository struct {
	db              *gorm.DB
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewTransactionRepository creates a new TransactionRepository instance
func NewTransactionRepository(db *gorm.DB, logger coreport.Logger) *TransactionRepository {
	return &TransactionRepository{
		db:              db,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// entityToModel converts a transaction entity to a database model
func (r *TransactionRepository) entityToModel(t *entity.Transaction) model.Transaction {
	return model.Transaction{
		ID:            t.ID,
		UserID:        t.UserID,
		Username:      t.Username,
		Kind:          string(t.Kind),
		AmountInCents: t.AmountInCents,
		Status:        string(t.Status),
		Method:        t.Method,
		Proof:         t.Proof,
		Account:       datatypes.NewJSONType(t.Account),
		CreatedAt:     t.CreatedAt,
		DecidedAt:     t.DecidedAt,
	}
}

func (r *TransactionRepository) modelToEntity(m *model.Transaction) *entity.Transaction {
	return &entity.Transaction{
		ID:            m.ID,
		UserID:        m.UserID,
		Username:      m.Username,
		Kind:          entity.TransactionKind(m.Kind),
		AmountInCents: m.AmountInCents,
		Status:        entity.TransactionStatus(m.Status),
		Method:        m.Method,
		Proof:         m.Proof,
		Account:       m.Account.Data(),
		CreatedAt:     m.CreatedAt,
		DecidedAt:     m.DecidedAt,
	}
}

func (r *TransactionRepository) fail(operation string, err error, fields map[string]any) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err,
		errs.ErrTransactionNotFound, errs.ErrDuplicateReference, fields)
}

// Create saves a pending request
func (r *TransactionRepository) Create(ctx context.Context, transaction *entity.Transaction) error {
	m := r.entityToModel(transaction)
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.fail("creating transaction", err, map[string]any{
			"transaction_id": transaction.ID,
			"user_id":        transaction.UserID,
		})
	}

	r.logger.Info("Transaction created successfully", map[string]any{
		"transaction_id": transaction.ID,
		"user_id":        transaction.UserID,
		"kind":           transaction.Kind,
		"amount":         transaction.Amount(),
	})
	return nil
}

// GetByID retrieves a request
func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*entity.Transaction, error) {
	var m model.Transaction
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&m).Error; err != nil {
		return nil, r.fail("getting transaction", err, map[string]any{"transaction_id": id})
	}
	return r.modelToEntity(&m), nil
}

// List returns matching requests, newest first
func (r *TransactionRepository) List(ctx context.Context, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	q := r.db.WithContext(ctx).Model(&model.Transaction{})
	if filter.UserID != 0 {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Kind != "" {
		q = q.Where("kind = ?", string(filter.Kind))
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}

	var rows []model.Transaction
	if err := q.Order("created_at DESC").Limit(pageLimit(filter.Limit)).Find(&rows).Error; err != nil {
		return nil, r.fail("listing transactions", err, map[string]any{"user_id": filter.UserID})
	}

	out := make([]*entity.Transaction, 0, len(rows))
	for i := range rows {
		out = append(out, r.modelToEntity(&rows[i]))
	}
	return out, nil
}

// Decide moves a pending request to status
func (r *TransactionRepository) Decide(ctx context.Context, id string, status entity.TransactionStatus, decidedAt time.Time) (bool, error) {
	result := r.db.WithContext(ctx).Model(&model.Transaction{}).
		Where("id = ? AND status = ?", id, string(entity.StatusPending)).
		Updates(map[string]any{
			"status":     string(status),
			"decided_at": decidedAt,
		})
	if result.Error != nil {
		return false, r.fail("deciding transaction", result.Error, map[string]any{"transaction_id": id})
	}
	if result.RowsAffected > 0 {
		return true, nil
	}

	if _, err := r.GetByID(ctx, id); err != nil {
		return false, err
	}
	return false, nil
}
