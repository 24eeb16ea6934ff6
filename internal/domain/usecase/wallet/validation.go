package wallet

import (
	"fmt"
	"strings"

	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// RequestValidator checks deposit and withdrawal requests against the wallet limits
type RequestValidator struct {
	minDeposit  int64
	minWithdraw int64
}

// NewRequestValidator creates a validator for the configured minimums
func NewRequestValidator(cfg Config) *RequestValidator {
	return &RequestValidator{minDeposit: cfg.MinDeposit, minWithdraw: cfg.MinWithdraw}
}

// ValidateDeposit validates a deposit request
func (v *RequestValidator) ValidateDeposit(req DepositRequest) error {
	if req.UserID == 0 {
		return errs.ErrInvalidUserID
	}
	if err := v.validateAmount(req.Amount, v.minDeposit); err != nil {
		return err
	}
	if strings.TrimSpace(req.Proof) == "" {
		return fmt.Errorf("%w: deposit proof is required", errs.ErrInvalidRequest)
	}
	return nil
}

// ValidateWithdraw validates a withdrawal request
func (v *RequestValidator) ValidateWithdraw(req WithdrawRequest) error {
	if req.UserID == 0 {
		return errs.ErrInvalidUserID
	}
	if err := v.validateAmount(req.Amount, v.minWithdraw); err != nil {
		return err
	}
	if strings.TrimSpace(req.AccountID) == "" {
		return fmt.Errorf("%w: payout account is required", errs.ErrInvalidRequest)
	}
	return nil
}

func (v *RequestValidator) validateAmount(amount, minimum int64) error {
	if amount < 0 {
		return errs.ErrNegativeAmount
	}
	if amount < minimum {
		return fmt.Errorf("%w: minimum is %s", errs.ErrInvalidAmount, centsString(minimum))
	}
	return nil
}
