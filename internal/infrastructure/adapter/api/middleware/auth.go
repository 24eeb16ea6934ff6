package middleware

import (
	"net/http"
	"strings"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	domainerr "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	authport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/auth"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/gin-gonic/gin"
)

const (
	userIDKey = "auth.user_id"
	roleKey   = "auth.role"
)

// Auth requires a valid bearer token and stores the caller in the context
func Auth(tokens authport.TokenIssuer) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		scheme, token, ok := strings.Cut(header, " ")
		if !ok || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(token) == "" {
			abortUnauthorized(c, "Missing bearer token")
			return
		}

		claims, err := tokens.Parse(strings.TrimSpace(token))
		if err != nil {
			abortUnauthorized(c, "Invalid or expired token")
			return
		}

		c.Set(userIDKey, claims.UserID)
		c.Set(roleKey, claims.Role)
		c.Next()
	}
}

// RequireOperator rejects callers that are not admin or super_admin
func RequireOperator() gin.HandlerFunc {
	return func(c *gin.Context) {
		if !Role(c).IsOperator() {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.ErrorResponse{
				Code:    domainerr.ErrorCode(domainerr.ErrForbidden),
				Message: "Operator role required",
			})
			return
		}
		c.Next()
	}
}

// UserID returns the authenticated caller's id, zero when unauthenticated
func UserID(c *gin.Context) uint64 {
	id, _ := c.Get(userIDKey)
	v, _ := id.(uint64)
	return v
}

// Role returns the authenticated caller's role
func Role(c *gin.Context) entity.Role {
	r, _ := c.Get(roleKey)
	v, _ := r.(entity.Role)
	return v
}

func abortUnauthorized(c *gin.Context, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.ErrorResponse{
		Code:    domainerr.ErrorCode(domainerr.ErrUnauthorized),
		Message: message,
	})
}
