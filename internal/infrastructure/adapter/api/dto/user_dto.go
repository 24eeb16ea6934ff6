package dto

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// PayoutAccountDTO is a saved withdrawal destination
type PayoutAccountDTO struct {
	ID            string `json:"id"`
	Type          string `json:"type"`
	BankName      string `json:"bankName"`
	AccountName   string `json:"accountName"`
	AccountNumber string `json:"accountNumber"`
}

// UserResponse is the public view of an account
type UserResponse struct {
	ID             uint64             `json:"id"`
	Phone          string             `json:"phone"`
	Email          string             `json:"email,omitempty"`
	Username       string             `json:"username"`
	DisplayName    string             `json:"displayName,omitempty"`
	AvatarURL      string             `json:"avatarUrl,omitempty"`
	Role           string             `json:"role"`
	Banned         bool               `json:"banned"`
	Balance        BalanceResponse    `json:"balance"`
	PayoutAccounts []PayoutAccountDTO `json:"payoutAccounts"`
	CreatedAt      time.Time          `json:"createdAt"`
}

// NewUserResponse renders an account
func NewUserResponse(u *entity.User) UserResponse {
	accounts := make([]PayoutAccountDTO, 0, len(u.PayoutAccounts))
	for _, acc := range u.PayoutAccounts {
		accounts = append(accounts, newPayoutAccountDTO(acc))
	}
	return UserResponse{
		ID:             u.ID,
		Phone:          u.Phone,
		Email:          u.Email,
		Username:       u.Username,
		DisplayName:    u.DisplayName,
		AvatarURL:      u.AvatarURL,
		Role:           string(u.Role),
		Banned:         u.Banned,
		Balance:        NewBalanceResponse(u),
		PayoutAccounts: accounts,
		CreatedAt:      u.CreatedAt,
	}
}

// NewUserList renders a page of accounts
func NewUserList(users []*entity.User) []UserResponse {
	out := make([]UserResponse, 0, len(users))
	for _, u := range users {
		out = append(out, NewUserResponse(u))
	}
	return out
}

func newPayoutAccountDTO(acc entity.PayoutAccount) PayoutAccountDTO {
	return PayoutAccountDTO{
		ID:            acc.ID,
		Type:          string(acc.Type),
		BankName:      acc.BankName,
		AccountName:   acc.AccountName,
		AccountNumber: acc.AccountNumber,
	}
}

// ProfileRequest edits the caller's own profile; omitted fields are unchanged
type ProfileRequest struct {
	Username    *string `json:"username" binding:"omitempty,min=3,max=32"`
	DisplayName *string `json:"displayName" binding:"omitempty,max=64"`
	Email       *string `json:"email" binding:"omitempty,email"`
	AvatarURL   *string `json:"avatarUrl" binding:"omitempty,url"`
}

// PayoutAccountRequest saves a withdrawal destination
type PayoutAccountRequest struct {
	Type          string `json:"type" binding:"required,oneof=bank ewallet"`
	BankName      string `json:"bankName" binding:"required,max=64"`
	AccountName   string `json:"accountName" binding:"required,max=128"`
	AccountNumber string `json:"accountNumber" binding:"required,max=64"`
}

// AdminUserUpdateRequest is an operator's edit of an account. Balances are
// exact targets, not deltas.
type AdminUserUpdateRequest struct {
	Username    *string `json:"username" binding:"omitempty,min=3,max=32"`
	Role        *string `json:"role" binding:"omitempty,oneof=user admin super_admin"`
	Banned      *bool   `json:"banned"`
	RealBalance *string `json:"realBalance" binding:"omitempty,money"`
	DemoBalance *string `json:"demoBalance" binding:"omitempty,money"`
}

// UserListQuery filters the operator's account list
type UserListQuery struct {
	Search string `form:"search"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}
