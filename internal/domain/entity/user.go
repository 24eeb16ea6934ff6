package entity

import (
	"fmt"
	"strings"
	"time"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
)

// Role is the permission level of an account
type Role string

// Roles
const (
	RoleUser       Role = "user"
	RoleAdmin      Role = "admin"
	RoleSuperAdmin Role = "super_admin"
)

// ParseRole validates a role name
func ParseRole(s string) (Role, error) {
	switch r := Role(strings.ToLower(strings.TrimSpace(s))); r {
	case RoleUser, RoleAdmin, RoleSuperAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("%w: unknown role %q", errs.ErrInvalidRequest, s)
	}
}

// IsOperator reports whether the role may use the operator surface
func (r Role) IsOperator() bool {
	return r == RoleAdmin || r == RoleSuperAdmin
}

// LedgerMode selects which of a user's two balances an operation targets
type LedgerMode string

// Ledger modes
const (
	LedgerReal LedgerMode = "real"
	LedgerDemo LedgerMode = "demo"
)

// ParseLedgerMode validates a ledger mode name
func ParseLedgerMode(s string) (LedgerMode, error) {
	switch m := LedgerMode(strings.ToLower(strings.TrimSpace(s))); m {
	case LedgerReal, LedgerDemo:
		return m, nil
	default:
		return "", fmt.Errorf("%w: unknown ledger mode %q", errs.ErrInvalidRequest, s)
	}
}

// PayoutAccountType is the rail a withdrawal goes out on
type PayoutAccountType string

// Payout account types
const (
	PayoutBank    PayoutAccountType = "bank"
	PayoutEWallet PayoutAccountType = "ewallet"
)

// Method is the withdrawal method label for this account type
func (t PayoutAccountType) Method() string {
	if t == PayoutEWallet {
		return MethodEWallet
	}
	return MethodBankTransfer
}

// PayoutAccount is a saved withdrawal destination
type PayoutAccount struct {
	ID            string            `json:"id"`
	Type          PayoutAccountType `json:"type"`
	BankName      string            `json:"bankName"`
	AccountName   string            `json:"accountName"`
	AccountNumber string            `json:"accountNumber"`
}

// User is a player or operator account with a real and a demo balance
type User struct {
	ID             uint64
	Phone          string
	Email          string
	Username       string
	DisplayName    string
	AvatarURL      string
	PasswordHash   string
	Role           Role
	realBalance    int64 // cents
	demoBalance    int64 // cents
	ActiveMode     LedgerMode
	Banned         bool
	PayoutAccounts []PayoutAccount
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// NewUser creates a user with an empty real balance and the given demo balance
func NewUser(phone, passwordHash, username string, demoBalance int64, timeProvider coreport.TimeProvider) (*User, error) {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil, fmt.Errorf("%w: phone is required", errs.ErrInvalidRequest)
	}
	if passwordHash == "" {
		return nil, fmt.Errorf("%w: password is required", errs.ErrInvalidRequest)
	}
	if demoBalance < 0 {
		return nil, errs.ErrNegativeAmount
	}

	now := timeProvider.Now()
	return &User{
		Phone:        phone,
		Username:     username,
		DisplayName:  "Member",
		PasswordHash: passwordHash,
		Role:         RoleUser,
		demoBalance:  demoBalance,
		ActiveMode:   LedgerReal,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// RestoreUser rebuilds a user from storage, bypassing validation
func RestoreUser(u User, realBalance, demoBalance int64) *User {
	u.realBalance = realBalance
	u.demoBalance = demoBalance
	return &u
}

// Balance returns the balance of the given ledger in cents
func (u *User) Balance(mode LedgerMode) int64 {
	if mode == LedgerDemo {
		return u.demoBalance
	}
	return u.realBalance
}

// ActiveBalance returns the balance of the currently active ledger
func (u *User) ActiveBalance() int64 {
	return u.Balance(u.ActiveMode)
}

// GetBalance returns the given ledger's balance with two decimal places
func (u *User) GetBalance(mode LedgerMode) string {
	return AmountInCentsToString(u.Balance(mode))
}

// SetBalance overwrites a ledger balance (repositories, demo reset)
func (u *User) SetBalance(mode LedgerMode, cents int64, timeProvider coreport.TimeProvider) {
	if mode == LedgerDemo {
		u.demoBalance = cents
	} else {
		u.realBalance = cents
	}
	u.UpdatedAt = timeProvider.Now()
}

// Apply adds a signed delta to a ledger. A debit that would take the balance
// below zero fails without changing anything.
func (u *User) Apply(mode LedgerMode, delta int64, timeProvider coreport.TimeProvider) (int64, error) {
	current := u.Balance(mode)
	next, err := AddCents(current, delta)
	if err != nil {
		return current, err
	}
	if next < 0 {
		return current, errs.NewInsufficientFundsError(u.ID, string(mode), AmountInCentsToString(-delta), AmountInCentsToString(current))
	}
	u.SetBalance(mode, next, timeProvider)
	return next, nil
}

// IsOperator reports whether the user may use the operator surface
func (u *User) IsOperator() bool {
	return u.Role.IsOperator()
}

// FindPayoutAccount looks up a saved account by id
func (u *User) FindPayoutAccount(id string) (PayoutAccount, error) {
	for _, acc := range u.PayoutAccounts {
		if acc.ID == id {
			return acc, nil
		}
	}
	return PayoutAccount{}, errs.ErrAccountNotFound
}

// AddPayoutAccount appends a saved account
func (u *User) AddPayoutAccount(acc PayoutAccount, timeProvider coreport.TimeProvider) error {
	if acc.ID == "" || acc.AccountNumber == "" || acc.AccountName == "" {
		return fmt.Errorf("%w: incomplete payout account", errs.ErrInvalidRequest)
	}
	if acc.Type != PayoutBank && acc.Type != PayoutEWallet {
		return fmt.Errorf("%w: unknown account type %q", errs.ErrInvalidRequest, acc.Type)
	}
	u.PayoutAccounts = append(u.PayoutAccounts, acc)
	u.UpdatedAt = timeProvider.Now()
	return nil
}

// RemovePayoutAccount deletes a saved account by id
func (u *User) RemovePayoutAccount(id string, timeProvider coreport.TimeProvider) error {
	for i, acc := range u.PayoutAccounts {
		if acc.ID == id {
			u.PayoutAccounts = append(u.PayoutAccounts[:i:i], u.PayoutAccounts[i+1:]...)
			u.UpdatedAt = timeProvider.Now()
			return nil
		}
	}
	return errs.ErrAccountNotFound
}

// NormalizePhone strips whitespace and a single leading zero so that
// "0812..." and "812..." name the same account
func NormalizePhone(phone string) string {
	return strings.TrimPrefix(strings.TrimSpace(phone), "0")
}

// MatchesIdentity reports whether identity names this user by phone or email
func (u *User) MatchesIdentity(identity string) bool {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return false
	}
	if u.Email != "" && strings.EqualFold(u.Email, identity) {
		return true
	}
	return u.Phone == identity || NormalizePhone(u.Phone) == NormalizePhone(identity)
}
