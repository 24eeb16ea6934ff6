package routes

import (
	"net/http"

	authport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/auth"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/handler"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
	"github.com/go-chi/cors"
)

// Handlers groups every HTTP handler the API serves
type Handlers struct {
	Auth        *handler.AuthHandler
	User        *handler.UserHandler
	Round       *handler.RoundHandler
	Trading     *handler.TradingHandler
	Transaction *handler.TransactionHandler
	Chat        *handler.ChatHandler
	Health      *handler.HealthHandler
}

// SetupRoutes configures all the routes for the API
func SetupRoutes(router *gin.Engine, h Handlers, tokens authport.TokenIssuer) {
	router.GET("/health", h.Health.Health)

	authRoutes := router.Group("/auth")
	{
		authRoutes.POST("/register", h.Auth.Register)
		authRoutes.POST("/login", h.Auth.Login)
	}

	router.GET("/rounds/:mode", h.Round.CurrentRound)
	router.GET("/rounds/:mode/history", h.Round.History)
	router.GET("/markets/:market", h.Trading.Market)

	user := router.Group("/", middleware.Auth(tokens))
	{
		user.GET("/me", h.User.Me)
		user.PATCH("/me", h.User.UpdateProfile)
		user.PUT("/me/mode", h.User.SetMode)
		user.POST("/me/demo/reset", h.User.ResetDemo)
		user.POST("/me/accounts", h.User.AddPayoutAccount)
		user.DELETE("/me/accounts/:accountId", h.User.RemovePayoutAccount)
		user.GET("/notifications/active", h.User.ActiveNotification)

		user.POST("/wagers", h.Round.PlaceWager)
		user.GET("/wagers", h.Round.WagerHistory)

		user.POST("/positions", h.Trading.OpenPosition)
		user.GET("/positions", h.Trading.Positions)
		user.POST("/positions/close", h.Trading.CloseBulk)
		user.POST("/positions/:id/close", h.Trading.ClosePosition)

		user.POST("/wallet/deposits", h.Transaction.Deposit)
		user.POST("/wallet/withdrawals", h.Transaction.Withdraw)
		user.GET("/wallet/transactions", h.Transaction.History)
		user.GET("/wallet/qris", h.Transaction.QRIS)

		user.GET("/chat", h.Chat.Thread)
		user.POST("/chat", h.Chat.Send)
		user.POST("/chat/read", h.Chat.MarkRead)
	}

	admin := router.Group("/admin", middleware.Auth(tokens), middleware.RequireOperator())
	{
		admin.GET("/users", h.User.ListUsers)
		admin.PATCH("/users/:userId", h.User.AdminUpdateUser)

		admin.GET("/wagers", h.Round.LiveWagers)
		admin.GET("/rounds/:mode", h.Round.RoundStats)
		admin.PUT("/overrides/:mode", h.Round.SetOverride)
		admin.DELETE("/overrides/:mode", h.Round.ClearOverride)
		admin.POST("/markets/:market/events", h.Trading.ForceMarketEvent)

		admin.GET("/transactions", h.Transaction.List)
		admin.POST("/transactions/:id/:action", h.Transaction.Decide)
		admin.PUT("/qris", h.Transaction.SetQRIS)

		admin.GET("/chat", h.Chat.Threads)
		admin.GET("/chat/:userId", h.Chat.AdminThread)
		admin.POST("/chat/:userId", h.Chat.AdminSend)
		admin.POST("/chat/:userId/read", h.Chat.AdminMarkRead)
	}
}

// SetupMiddlewares configures global middlewares for the API
func SetupMiddlewares(router *gin.Engine, logger coreport.Logger, timeProvider coreport.TimeProvider) {
	router.Use(middleware.ErrorHandler(logger))
	router.Use(middleware.Logger(logger, timeProvider))
}

// WithCORS wraps the router with the cross-origin policy. An empty origin
// list allows every origin.
func WithCORS(next http.Handler, allowedOrigins []string, maxAge int) http.Handler {
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"*"}
	}
	return cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           maxAge,
	})(next)
}
