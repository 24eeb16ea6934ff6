package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wallet"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// TransactionHandler handles deposit and withdrawal requests
type TransactionHandler struct {
	wallet *wallet.Service
	logger coreport.Logger
}

// NewTransactionHandler creates a new transaction handler instance
func NewTransactionHandler(wallet *wallet.Service, logger coreport.Logger) *TransactionHandler {
	return &TransactionHandler{wallet: wallet, logger: logger}
}

// Deposit handles POST /wallet/deposits
func (h *TransactionHandler) Deposit(c *gin.Context) {
	var req dto.DepositRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	amount, err := entity.ValidateAndConvertAmount(req.Amount)
	if err != nil {
		respondError(c, h.logger, "deposit", err)
		return
	}

	txn, err := h.wallet.Deposit(c.Request.Context(), wallet.DepositRequest{
		UserID: middleware.UserID(c),
		Amount: amount,
		Proof:  req.Proof,
	})
	if err != nil {
		respondError(c, h.logger, "deposit", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTransactionResponse(txn))
}

// Withdraw handles POST /wallet/withdrawals
func (h *TransactionHandler) Withdraw(c *gin.Context) {
	var req dto.WithdrawRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	amount, err := entity.ValidateAndConvertAmount(req.Amount)
	if err != nil {
		respondError(c, h.logger, "withdraw", err)
		return
	}

	txn, err := h.wallet.Withdraw(c.Request.Context(), wallet.WithdrawRequest{
		UserID:    middleware.UserID(c),
		Amount:    amount,
		AccountID: req.AccountID,
	})
	if err != nil {
		respondError(c, h.logger, "withdraw", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewTransactionResponse(txn))
}

// History handles GET /wallet/transactions
func (h *TransactionHandler) History(c *gin.Context) {
	var q dto.HistoryQuery
	if !bindQuery(c, h.logger, &q) {
		return
	}
	txns, err := h.wallet.History(c.Request.Context(), middleware.UserID(c), q.Limit)
	if err != nil {
		respondError(c, h.logger, "transaction_history", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionList(txns))
}

// QRIS handles GET /wallet/qris
func (h *TransactionHandler) QRIS(c *gin.Context) {
	url, err := h.wallet.QRIS(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "qris", err)
		return
	}
	c.JSON(http.StatusOK, dto.QRISResponse{ImageURL: url})
}

// List handles GET /admin/transactions
func (h *TransactionHandler) List(c *gin.Context) {
	var q dto.TransactionQuery
	if !bindQuery(c, h.logger, &q) {
		return
	}
	txns, err := h.wallet.List(c.Request.Context(), persistence.TransactionFilter{
		UserID: q.UserID,
		Kind:   entity.TransactionKind(q.Kind),
		Status: entity.TransactionStatus(q.Status),
		Limit:  q.Limit,
	})
	if err != nil {
		respondError(c, h.logger, "list_transactions", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewTransactionList(txns))
}

// Decide handles POST /admin/transactions/:id/:action
func (h *TransactionHandler) Decide(c *gin.Context) {
	decision, err := entity.ParseDecision(c.Param("action"))
	if err != nil {
		respondError(c, h.logger, "decide_transaction", err)
		return
	}

	txn, err := h.wallet.Decide(c.Request.Context(), c.Param("id"), decision)
	if err != nil {
		respondError(c, h.logger, "decide_transaction", err)
		return
	}

	h.logger.Info("Transaction decided", map[string]any{
		"transaction_id": txn.ID,
		"decision":       decision,
		"operator":       middleware.UserID(c),
	})
	c.JSON(http.StatusOK, dto.NewTransactionResponse(txn))
}

// SetQRIS handles PUT /admin/qris
func (h *TransactionHandler) SetQRIS(c *gin.Context) {
	var req dto.QRISRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if err := h.wallet.SetQRIS(c.Request.Context(), req.ImageURL); err != nil {
		respondError(c, h.logger, "set_qris", err)
		return
	}
	c.JSON(http.StatusOK, dto.QRISResponse{ImageURL: req.ImageURL})
}
