package wallet

import (
	"context"
	"fmt"
	"sync"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
	"github.com/google/uuid"
)

// Config holds the wallet limits
type Config struct {
	MinDeposit  int64 // cents
	MinWithdraw int64 // cents
	DefaultQRIS string
}

// DefaultConfig requires 20000.00 per deposit and 50000.00 per withdrawal
func DefaultConfig() Config {
	return Config{MinDeposit: 2000000, MinWithdraw: 5000000}
}

// DepositRequest asks for a deposit to be credited once an operator verifies the proof
type DepositRequest struct {
	UserID uint64
	Amount int64 // cents
	Proof  string
}

// WithdrawRequest asks for a payout to one of the user's saved accounts
type WithdrawRequest struct {
	UserID    uint64
	Amount    int64 // cents
	AccountID string
}

// Service handles deposit and withdrawal requests and their operator decisions
type Service struct {
	uow          persistence.UnitOfWork
	settings     persistence.SettingRepository
	ledger       usecase.Ledger
	notifier     usecase.Notifier
	publisher    event.Publisher
	validator    *RequestValidator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          Config

	// decideMu serializes Decide
	decideMu sync.Mutex
}

// NewService creates a wallet service
func NewService(
	uow persistence.UnitOfWork,
	settings persistence.SettingRepository,
	ledger usecase.Ledger,
	notifier usecase.Notifier,
	publisher event.Publisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	return &Service{
		uow:          uow,
		settings:     settings,
		ledger:       ledger,
		notifier:     notifier,
		publisher:    publisher,
		validator:    NewRequestValidator(cfg),
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
	}
}

func (s *Service) activeUser(ctx context.Context, userID uint64) (*entity.User, error) {
	user, err := s.uow.GetUserRepository(ctx).GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, errs.ErrAccountBanned
	}
	return user, nil
}

// Deposit records a pending deposit. No money moves until it is approved.
func (s *Service) Deposit(ctx context.Context, req DepositRequest) (*entity.Transaction, error) {
	if err := s.validator.ValidateDeposit(req); err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}

	txn, err := entity.NewDeposit(uuid.NewString(), user.ID, user.Username, req.Amount, req.Proof, s.timeProvider)
	if err != nil {
		return nil, err
	}
	if err := s.uow.GetTransactionRepository(ctx).Create(ctx, txn); err != nil {
		return nil, fmt.Errorf("failed to save deposit: %w", err)
	}

	s.logger.Info("Deposit requested", map[string]any{
		"transaction_id": txn.ID,
		"user_id":        user.ID,
		"amount":         txn.Amount(),
	})
	s.notifier.Notify(ctx, entity.Notification{
		UserID:  user.ID,
		Type:    entity.NotifyInfo,
		Title:   "Deposit submitted",
		Message: "Your deposit is waiting for verification",
		Amount:  txn.Amount(),
	})
	return txn, nil
}

// Withdraw debits the real balance immediately and records a pending
// withdrawal to the chosen saved account
func (s *Service) Withdraw(ctx context.Context, req WithdrawRequest) (*entity.Transaction, error) {
	if err := s.validator.ValidateWithdraw(req); err != nil {
		return nil, err
	}
	user, err := s.activeUser(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	account, err := user.FindPayoutAccount(req.AccountID)
	if err != nil {
		return nil, err
	}

	txn, err := entity.NewWithdrawal(uuid.NewString(), user.ID, user.Username, req.Amount, account, s.timeProvider)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Debit(ctx, usecase.Mutation{
		UserID:    user.ID,
		Mode:      entity.LedgerReal,
		Amount:    txn.AmountInCents,
		Kind:      entity.EntryWithdraw,
		Reference: txn.RequestReference(),
	}); err != nil {
		return nil, err
	}

	if err := s.uow.GetTransactionRepository(ctx).Create(ctx, txn); err != nil {
		s.refund(ctx, txn)
		return nil, fmt.Errorf("failed to save withdrawal: %w", err)
	}

	s.logger.Info("Withdrawal requested", map[string]any{
		"transaction_id": txn.ID,
		"user_id":        user.ID,
		"amount":         txn.Amount(),
		"method":         txn.Method,
	})
	s.notifier.Notify(ctx, entity.Notification{
		UserID:  user.ID,
		Type:    entity.NotifyInfo,
		Title:   "Withdrawal submitted",
		Message: fmt.Sprintf("To %s %s", account.BankName, account.AccountNumber),
		Amount:  txn.Amount(),
	})
	return txn, nil
}

// refund returns a withdrawal's debit; the reference makes repeats no-ops
func (s *Service) refund(ctx context.Context, txn *entity.Transaction) error {
	_, err := s.ledger.Credit(ctx, usecase.Mutation{
		UserID:    txn.UserID,
		Mode:      entity.LedgerReal,
		Amount:    txn.AmountInCents,
		Kind:      entity.EntryWithdrawRefund,
		Reference: txn.RefundReference(),
	})
	if err != nil {
		s.logger.Error("Withdrawal refund failed", map[string]any{
			"transaction_id": txn.ID,
			"user_id":        txn.UserID,
			"error":          err.Error(),
		})
	}
	return err
}

// History returns a user's deposits and withdrawals, newest first
func (s *Service) History(ctx context.Context, userID uint64, limit int) ([]*entity.Transaction, error) {
	return s.uow.GetTransactionRepository(ctx).List(ctx, persistence.TransactionFilter{UserID: userID, Limit: limit})
}

// List returns requests for the operator view
func (s *Service) List(ctx context.Context, filter persistence.TransactionFilter) ([]*entity.Transaction, error) {
	return s.uow.GetTransactionRepository(ctx).List(ctx, filter)
}

func centsString(cents int64) string {
	return entity.AmountInCentsToString(cents)
}
