package user

import (
	"context"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/google/uuid"
)

// AdminUpdate holds an operator's edit of an account; nil leaves a field as is
type AdminUpdate struct {
	Username    *string
	Role        *entity.Role
	Banned      *bool
	RealBalance *int64 // cents
	DemoBalance *int64 // cents
}

// ListUsers returns accounts for the operator view
func (u *UserUseCase) ListUsers(ctx context.Context, filter persistence.UserFilter) ([]*entity.User, error) {
	return u.userRepo.List(ctx, filter)
}

// AdminUpdateUser applies an operator edit. Only a super admin may change
// roles; balance targets go through the ledger as admin adjustments.
func (u *UserUseCase) AdminUpdateUser(ctx context.Context, actorRole entity.Role, userID uint64, upd AdminUpdate) (*entity.User, error) {
	if !actorRole.IsOperator() {
		return nil, errs.ErrForbidden
	}
	if upd.Role != nil && actorRole != entity.RoleSuperAdmin {
		return nil, errs.ErrForbidden
	}
	for _, target := range []*int64{upd.RealBalance, upd.DemoBalance} {
		if target != nil && *target < 0 {
			return nil, errs.ErrNegativeAmount
		}
	}

	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		if err := u.setUsername(ctx, user, *upd.Username); err != nil {
			return nil, err
		}
	}
	if upd.Role != nil {
		user.Role = *upd.Role
	}
	if upd.Banned != nil {
		user.Banned = *upd.Banned
	}
	user.UpdatedAt = u.timeProvider.Now()

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}

	for mode, target := range map[entity.LedgerMode]*int64{entity.LedgerReal: upd.RealBalance, entity.LedgerDemo: upd.DemoBalance} {
		if target == nil {
			continue
		}
		balance, err := u.balances.Adjust(ctx, userID, mode, *target, "admin:"+uuid.NewString())
		if err != nil {
			return nil, err
		}
		u.logger.Info("Balance adjusted by operator", map[string]any{
			"user_id": userID,
			"mode":    mode,
			"balance": entity.AmountInCentsToString(balance),
		})
	}

	return u.userRepo.GetByID(ctx, userID)
}
