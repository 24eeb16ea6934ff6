package entity

import (
	"fmt"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	tport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
)

// TransactionKind distinguishes deposits from withdrawals
type TransactionKind string

// Transaction kinds
const (
	KindDeposit  TransactionKind = "deposit"
	KindWithdraw TransactionKind = "withdraw"
)

// TransactionStatus is the operator decision state of a transaction
type TransactionStatus string

// TransactionStatus constants
const (
	StatusPending TransactionStatus = "pending"
	StatusSuccess TransactionStatus = "success"
	StatusFailed  TransactionStatus = "failed"
)

// Payment methods
const (
	MethodQRIS         = "QRIS"
	MethodBankTransfer = "Bank Transfer"
	MethodEWallet      = "E-Wallet"
)

// Decision is the operator's verdict on a pending transaction
type Decision string

// Decisions
const (
	DecisionApprove Decision = "approve"
	DecisionReject  Decision = "reject"
)

// ParseDecision validates an operator action
func ParseDecision(s string) (Decision, error) {
	switch Decision(s) {
	case DecisionApprove, DecisionReject:
		return Decision(s), nil
	default:
		return "", fmt.Errorf("%w: unknown action %q", errs.ErrInvalidRequest, s)
	}
}

// Transaction is a deposit or withdrawal request awaiting an operator decision
type Transaction struct {
	ID            string
	UserID        uint64
	Username      string
	Kind          TransactionKind
	AmountInCents int64
	Status        TransactionStatus
	Method        string
	Proof         string         // deposit evidence payload
	Account       *PayoutAccount // withdrawal destination snapshot
	CreatedAt     time.Time
	DecidedAt     *time.Time
}

// NewDeposit builds a pending deposit request
func NewDeposit(id string, userID uint64, username string, amount int64, proof string, timeProvider tport.TimeProvider) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: deposit must be positive", errs.ErrInvalidAmount)
	}
	return &Transaction{
		ID:            id,
		UserID:        userID,
		Username:      username,
		Kind:          KindDeposit,
		AmountInCents: amount,
		Status:        StatusPending,
		Method:        MethodQRIS,
		Proof:         proof,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// NewWithdrawal builds a pending withdrawal to a saved account
func NewWithdrawal(id string, userID uint64, username string, amount int64, account PayoutAccount, timeProvider tport.TimeProvider) (*Transaction, error) {
	if userID == 0 {
		return nil, errs.ErrInvalidUserID
	}
	if amount <= 0 {
		return nil, fmt.Errorf("%w: withdrawal must be positive", errs.ErrInvalidAmount)
	}
	return &Transaction{
		ID:            id,
		UserID:        userID,
		Username:      username,
		Kind:          KindWithdraw,
		AmountInCents: amount,
		Status:        StatusPending,
		Method:        account.Type.Method(),
		Account:       &account,
		CreatedAt:     timeProvider.Now(),
	}, nil
}

// Amount returns the amount with two decimal places
func (t *Transaction) Amount() string {
	return AmountInCentsToString(t.AmountInCents)
}

// Decide moves a pending transaction to its terminal status
func (t *Transaction) Decide(d Decision, timeProvider tport.TimeProvider) error {
	if t.Status != StatusPending {
		return fmt.Errorf("%w: transaction %s is %s", errs.ErrInvalidState, t.ID, t.Status)
	}
	now := timeProvider.Now()
	t.DecidedAt = &now
	if d == DecisionApprove {
		t.Status = StatusSuccess
	} else {
		t.Status = StatusFailed
	}
	return nil
}

// DecisionStatus is the terminal status a decision leads to
func (d Decision) Status() TransactionStatus {
	if d == DecisionApprove {
		return StatusSuccess
	}
	return StatusFailed
}

// RequestReference is the ledger reference of the money movement at request time
func (t *Transaction) RequestReference() string {
	return string(t.Kind) + ":" + t.ID + ":request"
}

// CreditReference is the ledger reference of an approved deposit
func (t *Transaction) CreditReference() string {
	return "deposit:" + t.ID + ":credit"
}

// RefundReference is the ledger reference of a rejected withdrawal's refund
func (t *Transaction) RefundReference() string {
	return "withdraw:" + t.ID + ":refund"
}
