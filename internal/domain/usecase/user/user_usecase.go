package user

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/auth"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
)

// BalanceAdjuster moves a balance to an exact target through the ledger
type BalanceAdjuster interface {
	Adjust(ctx context.Context, userID uint64, mode entity.LedgerMode, target int64, reference string) (int64, error)
}

// Config tunes account creation
type Config struct {
	DemoBalance       int64 // cents granted at registration
	MinPasswordLength int
}

// DefaultConfig grants 50000.00 demo money and requires six character passwords
func DefaultConfig() Config {
	return Config{DemoBalance: 5000000, MinPasswordLength: 6}
}

// UserUseCase handles registration, login, profiles and operator edits
type UserUseCase struct {
	userRepo     persistence.UserRepository
	hasher       auth.PasswordHasher
	tokens       auth.TokenIssuer
	balances     BalanceAdjuster
	notifier     usecase.Notifier
	random       coreport.RandomSource
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          Config
}

// NewUserUseCase creates a new UserUseCase
func NewUserUseCase(
	userRepo persistence.UserRepository,
	hasher auth.PasswordHasher,
	tokens auth.TokenIssuer,
	balances BalanceAdjuster,
	notifier usecase.Notifier,
	random coreport.RandomSource,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *UserUseCase {
	return &UserUseCase{
		userRepo:     userRepo,
		hasher:       hasher,
		tokens:       tokens,
		balances:     balances,
		notifier:     notifier,
		random:       random,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
	}
}

// GetUser returns a user by id
func (u *UserUseCase) GetUser(ctx context.Context, userID uint64) (*entity.User, error) {
	return u.userRepo.GetByID(ctx, userID)
}
