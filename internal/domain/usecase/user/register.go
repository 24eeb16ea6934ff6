package user

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
)

const usernameAttempts = 5

// RegisterRequest carries a new account's credentials
type RegisterRequest struct {
	Phone    string
	Password string
}

// Register creates a player account with the default demo balance and a
// generated MemberNNNNN username
func (u *UserUseCase) Register(ctx context.Context, req RegisterRequest) (*entity.User, error) {
	phone := strings.TrimSpace(req.Phone)
	if !isPhone(phone) {
		return nil, fmt.Errorf("%w: phone must be 8 to 15 digits", errs.ErrInvalidRequest)
	}
	if len(req.Password) < u.cfg.MinPasswordLength {
		return nil, fmt.Errorf("%w: password must be at least %d characters", errs.ErrInvalidRequest, u.cfg.MinPasswordLength)
	}

	if _, err := u.userRepo.FindByIdentity(ctx, phone); err == nil {
		return nil, errs.ErrDuplicateRegistration
	} else if !errs.IsUserNotFoundError(err) {
		return nil, err
	}

	username, err := u.generateUsername(ctx)
	if err != nil {
		return nil, err
	}

	hash, err := u.hasher.Hash(req.Password)
	if err != nil {
		return nil, err
	}

	user, err := entity.NewUser(phone, hash, username, u.cfg.DemoBalance, u.timeProvider)
	if err != nil {
		return nil, err
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		u.logger.Error("Failed to create user", map[string]any{
			"phone": phone,
			"error": err.Error(),
		})
		return nil, err
	}

	u.logger.Info("User registered", map[string]any{
		"user_id":  user.ID,
		"username": user.Username,
	})
	return user, nil
}

func (u *UserUseCase) generateUsername(ctx context.Context) (string, error) {
	for i := 0; i < usernameAttempts; i++ {
		name := "Member" + strconv.Itoa(10000+u.random.Intn(90000))
		taken, err := u.userRepo.ExistsByUsername(ctx, name, 0)
		if err != nil {
			return "", err
		}
		if !taken {
			return name, nil
		}
	}
	return "", fmt.Errorf("%w: could not allocate a username", errs.ErrInternalServer)
}

func isPhone(s string) bool {
	if len(s) < 8 || len(s) > 15 {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// SeedUser describes an account created at startup
type SeedUser struct {
	Phone       string `yaml:"phone"`
	Email       string `yaml:"email"`
	Password    string `yaml:"password"`
	Username    string `yaml:"username"`
	DisplayName string `yaml:"display_name"`
	Role        string `yaml:"role"`
	RealBalance string `yaml:"real_balance"`
	DemoBalance string `yaml:"demo_balance"`
}

// SeedUsers creates the configured accounts that do not exist yet
func (u *UserUseCase) SeedUsers(ctx context.Context, seeds []SeedUser) error {
	for _, seed := range seeds {
		if _, err := u.userRepo.FindByIdentity(ctx, seed.Phone); err == nil {
			u.logger.Info("Seed user already exists", map[string]any{"phone": seed.Phone})
			continue
		} else if !errs.IsUserNotFoundError(err) {
			return err
		}

		if err := u.seedUser(ctx, seed); err != nil {
			return fmt.Errorf("seeding %s: %w", seed.Phone, err)
		}
	}

	u.logger.Info("Seed users created or verified", map[string]any{"count": len(seeds)})
	return nil
}

func (u *UserUseCase) seedUser(ctx context.Context, seed SeedUser) error {
	role := entity.RoleUser
	if seed.Role != "" {
		r, err := entity.ParseRole(seed.Role)
		if err != nil {
			return err
		}
		role = r
	}
	real, err := parseOptionalAmount(seed.RealBalance)
	if err != nil {
		return err
	}
	demo, err := parseOptionalAmount(seed.DemoBalance)
	if err != nil {
		return err
	}

	hash, err := u.hasher.Hash(seed.Password)
	if err != nil {
		return err
	}
	user, err := entity.NewUser(seed.Phone, hash, seed.Username, 0, u.timeProvider)
	if err != nil {
		return err
	}
	user.Email = seed.Email
	user.Role = role
	if seed.DisplayName != "" {
		user.DisplayName = seed.DisplayName
	}

	if err := u.userRepo.Create(ctx, user); err != nil {
		return err
	}

	for mode, amount := range map[entity.LedgerMode]int64{entity.LedgerReal: real, entity.LedgerDemo: demo} {
		if amount == 0 {
			continue
		}
		ref := fmt.Sprintf("seed:%d:%s", user.ID, mode)
		if _, err := u.balances.Adjust(ctx, user.ID, mode, amount, ref); err != nil && !errors.Is(err, errs.ErrDuplicateReference) {
			return err
		}
	}

	u.logger.Info("Seed user created", map[string]any{"user_id": user.ID, "role": role})
	return nil
}

func parseOptionalAmount(s string) (int64, error) {
	if strings.TrimSpace(s) == "" {
		return 0, nil
	}
	return entity.ValidateAndConvertAmount(s)
}
