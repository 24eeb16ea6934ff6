package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/chat"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// ChatHandler serves the support threads for players and operators
type ChatHandler struct {
	chat   *chat.Service
	logger coreport.Logger
}

// NewChatHandler creates a new chat handler instance
func NewChatHandler(chat *chat.Service, logger coreport.Logger) *ChatHandler {
	return &ChatHandler{chat: chat, logger: logger}
}

// Thread handles GET /chat
func (h *ChatHandler) Thread(c *gin.Context) {
	h.thread(c, middleware.UserID(c))
}

// Send handles POST /chat
func (h *ChatHandler) Send(c *gin.Context) {
	h.send(c, middleware.UserID(c), entity.SenderUser)
}

// MarkRead handles POST /chat/read
func (h *ChatHandler) MarkRead(c *gin.Context) {
	h.markRead(c, middleware.UserID(c), entity.SenderUser)
}

// Threads handles GET /admin/chat
func (h *ChatHandler) Threads(c *gin.Context) {
	threads, err := h.chat.Threads(c.Request.Context())
	if err != nil {
		respondError(c, h.logger, "chat_threads", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewThreadSummaryList(threads))
}

// AdminThread handles GET /admin/chat/:userId
func (h *ChatHandler) AdminThread(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, h.logger, "chat_thread", err)
		return
	}
	h.thread(c, userID)
}

// AdminSend handles POST /admin/chat/:userId
func (h *ChatHandler) AdminSend(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, h.logger, "chat_send", err)
		return
	}
	h.send(c, userID, entity.SenderAdmin)
}

// AdminMarkRead handles POST /admin/chat/:userId/read
func (h *ChatHandler) AdminMarkRead(c *gin.Context) {
	userID, err := pathUserID(c)
	if err != nil {
		respondError(c, h.logger, "chat_mark_read", err)
		return
	}
	h.markRead(c, userID, entity.SenderAdmin)
}

func (h *ChatHandler) thread(c *gin.Context, userID uint64) {
	msgs, err := h.chat.Thread(c.Request.Context(), userID)
	if err != nil {
		respondError(c, h.logger, "chat_thread", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewChatThread(msgs))
}

func (h *ChatHandler) send(c *gin.Context, userID uint64, sender entity.ChatSender) {
	var req dto.ChatMessageRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	msg, err := h.chat.Send(c.Request.Context(), userID, sender, req.Text)
	if err != nil {
		respondError(c, h.logger, "chat_send", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewChatMessageResponse(msg))
}

func (h *ChatHandler) markRead(c *gin.Context, userID uint64, reader entity.ChatSender) {
	n, err := h.chat.MarkRead(c.Request.Context(), userID, reader)
	if err != nil {
		respondError(c, h.logger, "chat_mark_read", err)
		return
	}
	c.JSON(http.StatusOK, dto.MarkReadResponse{Marked: n})
}
