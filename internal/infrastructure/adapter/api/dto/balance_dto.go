package dto

import "github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"

// BalanceResponse reports both ledgers of a user
type BalanceResponse struct {
	Real       string `json:"real"`
	Demo       string `json:"demo"`
	ActiveMode string `json:"activeMode"`
	Active     string `json:"active"`
}

// NewBalanceResponse renders a user's balances
func NewBalanceResponse(u *entity.User) BalanceResponse {
	return BalanceResponse{
		Real:       u.GetBalance(entity.LedgerReal),
		Demo:       u.GetBalance(entity.LedgerDemo),
		ActiveMode: string(u.ActiveMode),
		Active:     entity.AmountInCentsToString(u.ActiveBalance()),
	}
}

// LedgerModeRequest switches the active ledger
type LedgerModeRequest struct {
	Mode string `json:"mode" binding:"required,oneof=real demo"`
}

// DemoResetResponse carries the demo balance after a reset
type DemoResetResponse struct {
	Demo string `json:"demo"`
}
