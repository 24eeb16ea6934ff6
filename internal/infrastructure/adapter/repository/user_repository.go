package repository

import (
	"context"
	"strings"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/model"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// UserRepository implements UserRepository interface using GORM
type UserRepository struct {
	db              *gorm.DB
	timeProvider    coreport.TimeProvider
	logger          coreport.Logger
	errorClassifier *ErrorClassifier
}

// NewUserRepository creates a new UserRepository instance
func NewUserRepository(db *gorm.DB, timeProvider coreport.TimeProvider, logger coreport.Logger) *UserRepository {
	return &UserRepository{
		db:              db,
		timeProvider:    timeProvider,
		logger:          logger,
		errorClassifier: NewErrorClassifier(),
	}
}

// userToEntity converts a user model to an entity
func userToEntity(m *model.User) *entity.User {
	u := entity.User{
		ID:             m.ID,
		Phone:          m.Phone,
		Username:       m.Username,
		DisplayName:    m.DisplayName,
		AvatarURL:      m.AvatarURL,
		PasswordHash:   m.PasswordHash,
		Role:           entity.Role(m.Role),
		ActiveMode:     entity.LedgerMode(m.ActiveMode),
		Banned:         m.Banned,
		PayoutAccounts: m.PayoutAccounts.Data(),
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
	if m.Email != nil {
		u.Email = *m.Email
	}
	return entity.RestoreUser(u, m.RealBalance, m.DemoBalance)
}

// userToModel converts a user entity to a database model
func userToModel(u *entity.User) model.User {
	m := model.User{
		ID:             u.ID,
		Phone:          u.Phone,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		AvatarURL:      u.AvatarURL,
		PasswordHash:   u.PasswordHash,
		Role:           string(u.Role),
		RealBalance:    u.Balance(entity.LedgerReal),
		DemoBalance:    u.Balance(entity.LedgerDemo),
		ActiveMode:     string(u.ActiveMode),
		Banned:         u.Banned,
		PayoutAccounts: datatypes.NewJSONType(u.PayoutAccounts),
		CreatedAt:      u.CreatedAt,
		UpdatedAt:      u.UpdatedAt,
	}
	if u.Email != "" {
		email := strings.ToLower(u.Email)
		m.Email = &email
	}
	return m
}

func (r *UserRepository) fail(operation string, err error, userID uint64) error {
	return handleDatabaseError(r.logger, r.errorClassifier, operation, err,
		errs.ErrUserNotFound, errs.ErrDuplicateRegistration, map[string]any{"user_id": userID})
}

// GetByID retrieves a user by ID
func (r *UserRepository) GetByID(ctx context.Context, id uint64) (*entity.User, error) {
	var m model.User
	if err := r.db.WithContext(ctx).First(&m, id).Error; err != nil {
		return nil, r.fail("getting user", err, id)
	}
	return userToEntity(&m), nil
}

// FindByIdentity resolves a phone number or an email address
func (r *UserRepository) FindByIdentity(ctx context.Context, identity string) (*entity.User, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return nil, errs.ErrUserNotFound
	}

	normalized := entity.NormalizePhone(identity)
	phones := []string{identity, normalized, "0" + normalized}

	var m model.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = LOWER(?) OR phone IN ?", identity, phones).
		Order("id").
		First(&m).Error
	if err != nil {
		return nil, r.fail("finding user by identity", err, 0)
	}
	return userToEntity(&m), nil
}

// ExistsByUsername reports whether another user already holds the handle
func (r *UserRepository) ExistsByUsername(ctx context.Context, username string, exceptID uint64) (bool, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.User{}).
		Where("LOWER(username) = LOWER(?) AND id <> ?", strings.TrimSpace(username), exceptID).
		Count(&count).Error
	if err != nil {
		return false, r.fail("checking username", err, exceptID)
	}
	return count > 0, nil
}

// Create creates a new user and assigns its ID
func (r *UserRepository) Create(ctx context.Context, user *entity.User) error {
	m := userToModel(user)
	m.ID = 0
	if err := r.db.WithContext(ctx).Create(&m).Error; err != nil {
		return r.fail("creating user", err, 0)
	}
	user.ID = m.ID

	r.logger.Info("User created successfully", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
		"role":     user.Role,
	})
	return nil
}

// Update saves every field except the balances
func (r *UserRepository) Update(ctx context.Context, user *entity.User) error {
	m := userToModel(user)
	result := r.db.WithContext(ctx).Model(&model.User{}).
		Where("id = ?", user.ID).
		Updates(map[string]any{
			"phone":           m.Phone,
			"email":           m.Email,
			"username":        m.Username,
			"display_name":    m.DisplayName,
			"avatar_url":      m.AvatarURL,
			"password_hash":   m.PasswordHash,
			"role":            m.Role,
			"active_mode":     m.ActiveMode,
			"banned":          m.Banned,
			"payout_accounts": m.PayoutAccounts,
			"updated_at":      r.timeProvider.Now(),
		})
	if result.Error != nil {
		return r.fail("updating user", result.Error, user.ID)
	}
	if result.RowsAffected == 0 {
		return errs.ErrUserNotFound
	}
	return nil
}

// List returns users ordered by ID, optionally filtered by a search term
func (r *UserRepository) List(ctx context.Context, filter persistence.UserFilter) ([]*entity.User, error) {
	q := r.db.WithContext(ctx).Model(&model.User{})

	if search := strings.ToLower(strings.TrimSpace(filter.Search)); search != "" {
		like := "%" + search + "%"
		q = q.Where(
			"CAST(id AS TEXT) LIKE ? OR LOWER(username) LIKE ? OR LOWER(display_name) LIKE ? OR LOWER(COALESCE(email, '')) LIKE ? OR phone LIKE ?",
			like, like, like, like, like,
		)
	}

	var rows []model.User
	err := q.Order("id").
		Limit(pageLimit(filter.Limit)).
		Offset(filter.Offset).
		Find(&rows).Error
	if err != nil {
		return nil, r.fail("listing users", err, 0)
	}

	out := make([]*entity.User, 0, len(rows))
	for i := range rows {
		out = append(out, userToEntity(&rows[i]))
	}
	return out, nil
}
