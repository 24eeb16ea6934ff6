package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/ledger"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/notification"
	userUseCase "github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// UserHandler handles account, balance and notification requests
type UserHandler struct {
	users  *userUseCase.UserUseCase
	ledger *ledger.Service
	hub    *notification.Hub
	logger coreport.Logger
}

// NewUserHandler creates a new user handler instance
func NewUserHandler(
	users *userUseCase.UserUseCase,
	ledger *ledger.Service,
	hub *notification.Hub,
	logger coreport.Logger,
) *UserHandler {
	return &UserHandler{
		users:  users,
		ledger: ledger,
		hub:    hub,
		logger: logger,
	}
}

// Me handles GET /me
func (h *UserHandler) Me(c *gin.Context) {
	user, err := h.users.GetUser(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "get_user", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// UpdateProfile handles PATCH /me
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	var req dto.ProfileRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	user, err := h.users.UpdateProfile(c.Request.Context(), middleware.UserID(c), userUseCase.ProfileUpdate{
		Username:    req.Username,
		DisplayName: req.DisplayName,
		Email:       req.Email,
		AvatarURL:   req.AvatarURL,
	})
	if err != nil {
		respondError(c, h.logger, "update_profile", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// SetMode handles PUT /me/mode
func (h *UserHandler) SetMode(c *gin.Context) {
	var req dto.LedgerModeRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	mode, err := entity.ParseLedgerMode(req.Mode)
	if err != nil {
		respondError(c, h.logger, "set_mode", err)
		return
	}

	user, err := h.ledger.SetMode(c.Request.Context(), middleware.UserID(c), mode)
	if err != nil {
		respondError(c, h.logger, "set_mode", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBalanceResponse(user))
}

// ResetDemo handles POST /me/demo/reset
func (h *UserHandler) ResetDemo(c *gin.Context) {
	demo, err := h.ledger.ResetDemo(c.Request.Context(), middleware.UserID(c))
	if err != nil {
		respondError(c, h.logger, "reset_demo", err)
		return
	}
	c.JSON(http.StatusOK, dto.DemoResetResponse{Demo: entity.AmountInCentsToString(demo)})
}

// AddPayoutAccount handles POST /me/accounts
func (h *UserHandler) AddPayoutAccount(c *gin.Context) {
	var req dto.PayoutAccountRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	user, err := h.users.AddPayoutAccount(c.Request.Context(), middleware.UserID(c), entity.PayoutAccount{
		ID:            uuid.NewString(),
		Type:          entity.PayoutAccountType(req.Type),
		BankName:      req.BankName,
		AccountName:   req.AccountName,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		respondError(c, h.logger, "add_payout_account", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// RemovePayoutAccount handles DELETE /me/accounts/:accountId
func (h *UserHandler) RemovePayoutAccount(c *gin.Context) {
	user, err := h.users.RemovePayoutAccount(c.Request.Context(), middleware.UserID(c), c.Param("accountId"))
	if err != nil {
		respondError(c, h.logger, "remove_payout_account", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

// ActiveNotification handles GET /notifications/active. 204 when nothing is on display.
func (h *UserHandler) ActiveNotification(c *gin.Context) {
	userID := middleware.UserID(c)
	n := h.hub.Active(userID)
	if n == nil {
		c.Status(http.StatusNoContent)
		return
	}
	c.JSON(http.StatusOK, dto.NewNotificationResponse(n, h.hub.Pending(userID)))
}

// ListUsers handles GET /admin/users
func (h *UserHandler) ListUsers(c *gin.Context) {
	var q dto.UserListQuery
	if !bindQuery(c, h.logger, &q) {
		return
	}

	users, err := h.users.ListUsers(c.Request.Context(), persistence.UserFilter{
		Search: q.Search,
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		respondError(c, h.logger, "list_users", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserList(users))
}

// AdminUpdateUser handles PATCH /admin/users/:userId
func (h *UserHandler) AdminUpdateUser(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, h.logger, "admin_update_user", err)
		return
	}

	var req dto.AdminUserUpdateRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	upd := userUseCase.AdminUpdate{Username: req.Username, Banned: req.Banned}
	if req.Role != nil {
		role, err := entity.ParseRole(*req.Role)
		if err != nil {
			respondError(c, h.logger, "admin_update_user", err)
			return
		}
		upd.Role = &role
	}
	if upd.RealBalance, err = optionalCents(req.RealBalance); err != nil {
		respondError(c, h.logger, "admin_update_user", err)
		return
	}
	if upd.DemoBalance, err = optionalCents(req.DemoBalance); err != nil {
		respondError(c, h.logger, "admin_update_user", err)
		return
	}

	user, err := h.users.AdminUpdateUser(c.Request.Context(), middleware.Role(c), userID, upd)
	if err != nil {
		respondError(c, h.logger, "admin_update_user", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewUserResponse(user))
}

func optionalCents(amount *string) (*int64, error) {
	if amount == nil {
		return nil, nil
	}
	cents, err := entity.ValidateAndConvertAmount(*amount)
	if err != nil {
		return nil, err
	}
	return &cents, nil
}
