package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/override"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/trading"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

// TradingHandler serves markets and leveraged positions
type TradingHandler struct {
	trading   *trading.Service
	overrides *override.Channel
	logger    coreport.Logger
}

// NewTradingHandler creates a new trading handler instance
func NewTradingHandler(trading *trading.Service, overrides *override.Channel, logger coreport.Logger) *TradingHandler {
	return &TradingHandler{trading: trading, overrides: overrides, logger: logger}
}

// Market handles GET /markets/:market
func (h *TradingHandler) Market(c *gin.Context) {
	market, err := entity.ParseMarket(c.Param("market"))
	if err != nil {
		respondError(c, h.logger, "market", err)
		return
	}
	snap, err := h.trading.Markets().Snapshot(market)
	if err != nil {
		respondError(c, h.logger, "market", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewMarketResponse(snap))
}

// OpenPosition handles POST /positions
func (h *TradingHandler) OpenPosition(c *gin.Context) {
	var req dto.OpenPositionRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	market, err := entity.ParseMarket(req.Market)
	if err != nil {
		respondError(c, h.logger, "open_position", err)
		return
	}
	direction, err := entity.ParseDirection(req.Direction)
	if err != nil {
		respondError(c, h.logger, "open_position", err)
		return
	}
	margin, err := entity.ValidateAndConvertAmount(req.Margin)
	if err != nil {
		respondError(c, h.logger, "open_position", err)
		return
	}

	p, err := h.trading.Open(c.Request.Context(), trading.OpenRequest{
		UserID:    middleware.UserID(c),
		Market:    market,
		Direction: direction,
		Margin:    margin,
		Leverage:  req.Leverage,
	})
	if err != nil {
		respondError(c, h.logger, "open_position", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewPositionResponse(p))
}

// Positions handles GET /positions
func (h *TradingHandler) Positions(c *gin.Context) {
	var q dto.PositionQuery
	if !bindQuery(c, h.logger, &q) {
		return
	}
	var market entity.MarketID
	if q.Market != "" {
		m, err := entity.ParseMarket(q.Market)
		if err != nil {
			respondError(c, h.logger, "positions", err)
			return
		}
		market = m
	}

	positions, err := h.trading.Positions(c.Request.Context(), middleware.UserID(c), market, entity.PositionStatus(q.Status), q.Limit)
	if err != nil {
		respondError(c, h.logger, "positions", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPositionList(positions))
}

// ClosePosition handles POST /positions/:id/close
func (h *TradingHandler) ClosePosition(c *gin.Context) {
	p, err := h.trading.Close(c.Request.Context(), middleware.UserID(c), c.Param("id"))
	if err != nil {
		respondError(c, h.logger, "close_position", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewPositionResponse(p))
}

// CloseBulk handles POST /positions/close
func (h *TradingHandler) CloseBulk(c *gin.Context) {
	var req dto.BulkCloseRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	market, err := entity.ParseMarket(req.Market)
	if err != nil {
		respondError(c, h.logger, "close_bulk", err)
		return
	}
	if req.Filter == "" {
		req.Filter = string(entity.CloseAll)
	}
	filter, err := entity.ParseCloseFilter(req.Filter)
	if err != nil {
		respondError(c, h.logger, "close_bulk", err)
		return
	}

	result, err := h.trading.CloseBulk(c.Request.Context(), middleware.UserID(c), market, filter)
	if err != nil {
		respondError(c, h.logger, "close_bulk", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewBulkCloseResponse(result))
}

// ForceMarketEvent handles POST /admin/markets/:market/events
func (h *TradingHandler) ForceMarketEvent(c *gin.Context) {
	market, err := entity.ParseMarket(c.Param("market"))
	if err != nil {
		respondError(c, h.logger, "force_market_event", err)
		return
	}
	var req dto.MarketEventRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	evt, err := entity.ParseMarketEvent(req.Event)
	if err != nil {
		respondError(c, h.logger, "force_market_event", err)
		return
	}
	if err := h.overrides.ForceMarketEvent(market, evt); err != nil {
		respondError(c, h.logger, "force_market_event", err)
		return
	}

	h.logger.Info("Market event forced", map[string]any{
		"market":   market,
		"event":    evt,
		"operator": middleware.UserID(c),
	})
	c.Status(http.StatusNoContent)
}
