package dto

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// DepositRequest submits a deposit with its payment proof
type DepositRequest struct {
	Amount string `json:"amount" binding:"required,money"`
	Proof  string `json:"proof" binding:"required"`
}

// WithdrawRequest asks for a payout to a saved account
type WithdrawRequest struct {
	Amount    string `json:"amount" binding:"required,money"`
	AccountID string `json:"accountId" binding:"required"`
}

// TransactionResponse represents a deposit or withdrawal request
type TransactionResponse struct {
	ID        string            `json:"id"`
	UserID    uint64            `json:"userId"`
	Username  string            `json:"username"`
	Kind      string            `json:"kind"`
	Amount    string            `json:"amount"`
	Status    string            `json:"status"`
	Method    string            `json:"method"`
	Proof     string            `json:"proof,omitempty"`
	Account   *PayoutAccountDTO `json:"account,omitempty"`
	CreatedAt time.Time         `json:"createdAt"`
	DecidedAt *time.Time        `json:"decidedAt,omitempty"`
}

// NewTransactionResponse renders a transaction
func NewTransactionResponse(t *entity.Transaction) TransactionResponse {
	resp := TransactionResponse{
		ID:        t.ID,
		UserID:    t.UserID,
		Username:  t.Username,
		Kind:      string(t.Kind),
		Amount:    entity.AmountInCentsToString(t.AmountInCents),
		Status:    string(t.Status),
		Method:    t.Method,
		Proof:     t.Proof,
		CreatedAt: t.CreatedAt,
		DecidedAt: t.DecidedAt,
	}
	if t.Account != nil {
		acc := newPayoutAccountDTO(*t.Account)
		resp.Account = &acc
	}
	return resp
}

// NewTransactionList renders transactions
func NewTransactionList(txns []*entity.Transaction) []TransactionResponse {
	out := make([]TransactionResponse, 0, len(txns))
	for _, t := range txns {
		out = append(out, NewTransactionResponse(t))
	}
	return out
}

// TransactionQuery filters the operator's transaction list
type TransactionQuery struct {
	UserID uint64 `form:"userId"`
	Kind   string `form:"kind" binding:"omitempty,oneof=deposit withdraw"`
	Status string `form:"status" binding:"omitempty,oneof=pending success failed"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// QRISRequest sets the deposit QR image
type QRISRequest struct {
	ImageURL string `json:"imageUrl" binding:"required,url"`
}

// QRISResponse carries the deposit QR image
type QRISResponse struct {
	ImageURL string `json:"imageUrl"`
}
