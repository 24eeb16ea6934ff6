package user

import (
	"context"
	"strings"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

// Session is the result of a successful login
type Session struct {
	User      *entity.User
	Token     string
	ExpiresAt time.Time
}

// Login authenticates by phone or email. Unknown identities and wrong
// passwords fail the same way.
func (u *UserUseCase) Login(ctx context.Context, identity, password string) (*Session, error) {
	identity = strings.TrimSpace(identity)
	if identity == "" || password == "" {
		return nil, errs.ErrInvalidCredentials
	}

	user, err := u.userRepo.FindByIdentity(ctx, identity)
	if err != nil {
		if errs.IsUserNotFoundError(err) {
			return nil, errs.ErrInvalidCredentials
		}
		return nil, err
	}

	if err := u.hasher.Compare(user.PasswordHash, password); err != nil {
		u.logger.Warn("Login rejected", map[string]any{"user_id": user.ID})
		return nil, errs.ErrInvalidCredentials
	}
	if user.Banned {
		return nil, errs.ErrAccountBanned
	}

	token, expiresAt, err := u.tokens.Issue(user)
	if err != nil {
		return nil, err
	}

	if user.IsOperator() {
		u.notifier.Notify(ctx, entity.Notification{
			UserID:  user.ID,
			Type:    entity.NotifyInfo,
			Title:   "Mode " + string(user.Role),
			Message: "Welcome back, Administrator",
		})
	}

	u.logger.Info("User logged in", map[string]any{"user_id": user.ID, "role": user.Role})
	return &Session{User: user, Token: token, ExpiresAt: expiresAt}, nil
}

// ProfileUpdate holds the fields a user may change on their own profile; nil leaves a field as is
type ProfileUpdate struct {
	Username    *string
	DisplayName *string
	Email       *string
	AvatarURL   *string
}

// UpdateProfile applies a profile change
func (u *UserUseCase) UpdateProfile(ctx context.Context, userID uint64, upd ProfileUpdate) (*entity.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	if upd.Username != nil {
		if err := u.setUsername(ctx, user, *upd.Username); err != nil {
			return nil, err
		}
	}
	if upd.DisplayName != nil {
		user.DisplayName = strings.TrimSpace(*upd.DisplayName)
	}
	if upd.Email != nil {
		user.Email = strings.TrimSpace(*upd.Email)
	}
	if upd.AvatarURL != nil {
		user.AvatarURL = strings.TrimSpace(*upd.AvatarURL)
	}
	user.UpdatedAt = u.timeProvider.Now()

	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

func (u *UserUseCase) setUsername(ctx context.Context, user *entity.User, username string) error {
	username = strings.TrimSpace(username)
	if username == "" {
		return errs.ErrInvalidRequest
	}
	if strings.EqualFold(username, user.Username) {
		user.Username = username
		return nil
	}
	taken, err := u.userRepo.ExistsByUsername(ctx, username, user.ID)
	if err != nil {
		return err
	}
	if taken {
		return errs.ErrDuplicateRegistration
	}
	user.Username = username
	return nil
}

// AddPayoutAccount saves a withdrawal destination on the user's profile
func (u *UserUseCase) AddPayoutAccount(ctx context.Context, userID uint64, acc entity.PayoutAccount) (*entity.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.AddPayoutAccount(acc, u.timeProvider); err != nil {
		return nil, err
	}
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// RemovePayoutAccount deletes a saved withdrawal destination
func (u *UserUseCase) RemovePayoutAccount(ctx context.Context, userID uint64, accountID string) (*entity.User, error) {
	user, err := u.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := user.RemovePayoutAccount(accountID, u.timeProvider); err != nil {
		return nil, err
	}
	if err := u.userRepo.Update(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}
