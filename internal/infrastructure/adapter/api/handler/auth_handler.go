package handler

import (
	"net/http"

	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	userUseCase "github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/user"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

// AuthHandler handles registration and login
type AuthHandler struct {
	users  *userUseCase.UserUseCase
	logger coreport.Logger
}

// NewAuthHandler creates a new auth handler instance
func NewAuthHandler(users *userUseCase.UserUseCase, logger coreport.Logger) *AuthHandler {
	return &AuthHandler{users: users, logger: logger}
}

// Register handles POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req dto.RegisterRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	user, err := h.users.Register(c.Request.Context(), userUseCase.RegisterRequest{
		Phone:    req.Phone,
		Password: req.Password,
	})
	if err != nil {
		respondError(c, h.logger, "register", err)
		return
	}

	c.JSON(http.StatusCreated, dto.NewUserResponse(user))
}

// Login handles POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}

	session, err := h.users.Login(c.Request.Context(), req.Identity, req.Password)
	if err != nil {
		respondError(c, h.logger, "login", err)
		return
	}

	c.JSON(http.StatusOK, dto.SessionResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.NewUserResponse(session.User),
	})
}
