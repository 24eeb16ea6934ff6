package error

import (
	"errors"
	"fmt"
	"net/http"
)

// Error codes for standardized API responses
const (
	// 4xxx - Client errors
	CodeInvalidRequest        = 4000
	CodeInsufficientFunds     = 4001
	CodeInvalidAmount         = 4002
	CodeInvalidUserID         = 4003
	CodeDuplicateReference    = 4004
	CodeConstraintViolation   = 4005
	CodeAmountOverflow        = 4006
	CodeInvalidSelection      = 4007
	CodeStaleRound            = 4008
	CodeInvalidGameMode       = 4009
	CodeUnauthorized          = 4010
	CodeInvalidState          = 4011
	CodeDemoResetNotAllowed   = 4012
	CodeInvalidCredentials    = 4013
	CodeInvalidMarket         = 4014
	CodeForbidden             = 4030
	CodeAccountBanned         = 4031
	CodeUserNotFound          = 4040
	CodeWagerNotFound         = 4041
	CodePositionNotFound      = 4042
	CodeTransactionNotFound   = 4043
	CodeNotFound              = 4044
	CodeAccountNotFound       = 4045
	CodeDuplicateRegistration = 4090
	CodeUserLocked            = 4230

	// 5xxx - Server errors
	CodeInternalServer     = 5000
	CodeDatabaseConnection = 5030
)

// Base error types
var (
	// ErrInsufficientFunds is returned when the targeted balance cannot cover a debit
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned when an amount is malformed or below the allowed minimum
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrInvalidUserID is returned when the user ID is not a positive integer
	ErrInvalidUserID = errors.New("user ID must be positive")

	// ErrNegativeAmount is returned when an amount is negative
	ErrNegativeAmount = errors.New("amount cannot be negative")

	// ErrAmountOverflow is returned when the amount is too large and would cause overflow
	ErrAmountOverflow = errors.New("amount is too large and would cause overflow")

	// ErrInvalidSelection is returned for a wager selection outside the known variants
	ErrInvalidSelection = errors.New("invalid selection")

	// ErrStaleRound is returned when a wager targets a round that is locked or no longer open
	ErrStaleRound = errors.New("round is no longer accepting wagers")

	// ErrInvalidGameMode is returned for an unknown game mode
	ErrInvalidGameMode = errors.New("invalid game mode")

	// ErrInvalidMarket is returned for an unknown market or an operation the market does not support
	ErrInvalidMarket = errors.New("invalid market")

	// ErrInvalidState is returned when an entity is not in a state that allows the operation
	ErrInvalidState = errors.New("invalid state for operation")

	// ErrDemoResetNotAllowed is returned when the demo balance is still above the reset threshold
	ErrDemoResetNotAllowed = errors.New("demo balance reset not allowed")

	// ErrInvalidCredentials is returned when identity or password do not match
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrAccountBanned is returned when a banned account tries to log in or play
	ErrAccountBanned = errors.New("account is banned")

	// ErrDuplicateRegistration is returned when phone, email or username already belong to someone
	ErrDuplicateRegistration = errors.New("identity already registered")

	// ErrDuplicateReference is returned when a ledger reference was already applied
	ErrDuplicateReference = errors.New("ledger reference already applied")

	// ErrUserNotFound is returned when the requested user doesn't exist
	ErrUserNotFound = errors.New("user not found")

	// ErrWagerNotFound is returned when the requested wager doesn't exist
	ErrWagerNotFound = errors.New("wager not found")

	// ErrPositionNotFound is returned when the requested trading position doesn't exist
	ErrPositionNotFound = errors.New("position not found")

	// ErrTransactionNotFound is returned when the requested deposit or withdrawal doesn't exist
	ErrTransactionNotFound = errors.New("transaction not found")

	// ErrAccountNotFound is returned when a saved payout account doesn't exist
	ErrAccountNotFound = errors.New("payout account not found")

	// ErrNotFound is returned when a generic resource is not found
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidRequest is returned when the request format is invalid
	ErrInvalidRequest = errors.New("invalid request")

	// ErrUnauthorized is returned when a request carries no valid session
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the caller's role does not allow the operation
	ErrForbidden = errors.New("forbidden")

	// ErrInternalServer is returned for unexpected server-side errors
	ErrInternalServer = errors.New("internal server error")

	// ErrUserLocked is returned when a user is locked by another operation
	ErrUserLocked = errors.New("user is locked by another operation")

	// ErrDatabaseConnection is returned when there's a problem connecting to the database
	ErrDatabaseConnection = errors.New("database connection error")

	// ErrConstraintViolation is returned when a database constraint is violated
	ErrConstraintViolation = errors.New("database constraint violation")
)

// ErrorCode returns standardized error codes for known errors
func ErrorCode(err error) int {
	switch {
	case errors.Is(err, ErrInsufficientFunds):
		return CodeInsufficientFunds
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrNegativeAmount):
		return CodeInvalidAmount
	case errors.Is(err, ErrInvalidUserID):
		return CodeInvalidUserID
	case errors.Is(err, ErrDuplicateReference):
		return CodeDuplicateReference
	case errors.Is(err, ErrAmountOverflow):
		return CodeAmountOverflow
	case errors.Is(err, ErrInvalidSelection):
		return CodeInvalidSelection
	case errors.Is(err, ErrStaleRound):
		return CodeStaleRound
	case errors.Is(err, ErrInvalidGameMode):
		return CodeInvalidGameMode
	case errors.Is(err, ErrInvalidMarket):
		return CodeInvalidMarket
	case errors.Is(err, ErrInvalidState):
		return CodeInvalidState
	case errors.Is(err, ErrDemoResetNotAllowed):
		return CodeDemoResetNotAllowed
	case errors.Is(err, ErrInvalidCredentials):
		return CodeInvalidCredentials
	case errors.Is(err, ErrUnauthorized):
		return CodeUnauthorized
	case errors.Is(err, ErrForbidden):
		return CodeForbidden
	case errors.Is(err, ErrAccountBanned):
		return CodeAccountBanned
	case errors.Is(err, ErrUserNotFound):
		return CodeUserNotFound
	case errors.Is(err, ErrWagerNotFound):
		return CodeWagerNotFound
	case errors.Is(err, ErrPositionNotFound):
		return CodePositionNotFound
	case errors.Is(err, ErrTransactionNotFound):
		return CodeTransactionNotFound
	case errors.Is(err, ErrAccountNotFound):
		return CodeAccountNotFound
	case errors.Is(err, ErrNotFound):
		return CodeNotFound
	case errors.Is(err, ErrDuplicateRegistration):
		return CodeDuplicateRegistration
	case errors.Is(err, ErrUserLocked):
		return CodeUserLocked
	case errors.Is(err, ErrConstraintViolation):
		return CodeConstraintViolation
	case errors.Is(err, ErrInvalidRequest):
		return CodeInvalidRequest
	case errors.Is(err, ErrDatabaseConnection):
		return CodeDatabaseConnection
	default:
		return CodeInternalServer
	}
}

// HTTPStatus maps a domain error onto the HTTP status the API answers with
func HTTPStatus(err error) int {
	code := ErrorCode(err)
	switch {
	case code == CodeUnauthorized || code == CodeInvalidCredentials:
		return http.StatusUnauthorized
	case code == CodeForbidden || code == CodeAccountBanned:
		return http.StatusForbidden
	case code >= 4040 && code < 4050:
		return http.StatusNotFound
	case code == CodeDuplicateRegistration || code == CodeDuplicateReference ||
		code == CodeUserLocked || code == CodeInvalidState || code == CodeStaleRound:
		return http.StatusConflict
	case code == CodeDatabaseConnection:
		return http.StatusServiceUnavailable
	case code >= 4000 && code < 5000:
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

// InsufficientFundsError provides detailed error information for a rejected debit
type InsufficientFundsError struct {
	UserID      uint64
	LedgerMode  string
	Amount      string
	CurrBalance string
}

// Error implements the error interface
func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient %s funds for user %d: required %s, available %s",
		e.LedgerMode, e.UserID, e.Amount, e.CurrBalance)
}

// Is checks if the target error is an ErrInsufficientFunds
func (e *InsufficientFundsError) Is(target error) bool {
	return target == ErrInsufficientFunds
}

// LogFields returns a map of fields for structured logging
func (e *InsufficientFundsError) LogFields() map[string]any {
	return map[string]any{
		"error_type":      "insufficient_funds",
		"user_id":         e.UserID,
		"ledger_mode":     e.LedgerMode,
		"amount":          e.Amount,
		"current_balance": e.CurrBalance,
		"error_code":      CodeInsufficientFunds,
	}
}

// NewInsufficientFundsError creates a new detailed insufficient funds error
func NewInsufficientFundsError(userID uint64, ledgerMode, amount, currentBalance string) error {
	return &InsufficientFundsError{
		UserID:      userID,
		LedgerMode:  ledgerMode,
		Amount:      amount,
		CurrBalance: currentBalance,
	}
}

// StaleRoundError describes a wager aimed at a round that no longer takes bets
type StaleRoundError struct {
	Mode             string
	RequestedRoundID string
	OpenRoundID      string
	SecondsRemaining int64
}

// Error implements the error interface
func (e *StaleRoundError) Error() string {
	return fmt.Sprintf("round %s of mode %s is not open for wagers (open round %s, %ds remaining)",
		e.RequestedRoundID, e.Mode, e.OpenRoundID, e.SecondsRemaining)
}

// Is checks if the target error is an ErrStaleRound
func (e *StaleRoundError) Is(target error) bool {
	return target == ErrStaleRound
}

// LogFields returns a map of fields for structured logging
func (e *StaleRoundError) LogFields() map[string]any {
	return map[string]any{
		"error_type":         "stale_round",
		"mode":               e.Mode,
		"requested_round_id": e.RequestedRoundID,
		"open_round_id":      e.OpenRoundID,
		"seconds_remaining":  e.SecondsRemaining,
		"error_code":         CodeStaleRound,
	}
}

// NewStaleRoundError creates a new stale round rejection
func NewStaleRoundError(mode, requestedRoundID, openRoundID string, secondsRemaining int64) error {
	return &StaleRoundError{
		Mode:             mode,
		RequestedRoundID: requestedRoundID,
		OpenRoundID:      openRoundID,
		SecondsRemaining: secondsRemaining,
	}
}

// SettlementError wraps a failure while settling a single wager
type SettlementError struct {
	WagerID string
	RoundID string
	UserID  uint64
	Stage   string
	Err     error
}

// Error implements the error interface
func (e *SettlementError) Error() string {
	return fmt.Sprintf("settlement of wager %s in round %s failed at %s: %v",
		e.WagerID, e.RoundID, e.Stage, e.Err)
}

// Unwrap returns the underlying error
func (e *SettlementError) Unwrap() error {
	return e.Err
}

// LogFields returns a map of fields for structured logging
func (e *SettlementError) LogFields() map[string]any {
	return map[string]any{
		"error_type": "settlement_error",
		"wager_id":   e.WagerID,
		"round_id":   e.RoundID,
		"user_id":    e.UserID,
		"stage":      e.Stage,
		"error":      e.Err.Error(),
		"error_code": ErrorCode(e.Err),
	}
}

// NewSettlementError creates a settlement failure for one wager
func NewSettlementError(wagerID, roundID string, userID uint64, stage string, err error) error {
	return &SettlementError{
		WagerID: wagerID,
		RoundID: roundID,
		UserID:  userID,
		Stage:   stage,
		Err:     err,
	}
}

// IsInsufficientFundsError checks if the error is related to insufficient funds
func IsInsufficientFundsError(err error) bool {
	return errors.Is(err, ErrInsufficientFunds)
}

// IsStaleRoundError checks if the error is a stale round rejection
func IsStaleRoundError(err error) bool {
	return errors.Is(err, ErrStaleRound)
}

// IsDuplicateReferenceError checks if the error reports an already applied ledger reference
func IsDuplicateReferenceError(err error) bool {
	return errors.Is(err, ErrDuplicateReference)
}

// IsUserNotFoundError checks if the error is a user not found error
func IsUserNotFoundError(err error) bool {
	return errors.Is(err, ErrUserNotFound)
}

// IsNotFoundError checks if the error is any "not found" type of error
func IsNotFoundError(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrUserNotFound) ||
		errors.Is(err, ErrWagerNotFound) ||
		errors.Is(err, ErrPositionNotFound) ||
		errors.Is(err, ErrTransactionNotFound) ||
		errors.Is(err, ErrAccountNotFound)
}

// IsUserLockedError checks if the error is related to a locked user
func IsUserLockedError(err error) bool {
	return errors.Is(err, ErrUserLocked)
}

// LogFieldsOf returns structured fields for typed errors and a plain error field otherwise
func LogFieldsOf(err error) map[string]any {
	var withFields interface{ LogFields() map[string]any }
	if errors.As(err, &withFields) {
		return withFields.LogFields()
	}
	return map[string]any{
		"error":      err.Error(),
		"error_code": ErrorCode(err),
	}
}
