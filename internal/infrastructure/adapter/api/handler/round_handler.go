package handler

import (
	"net/http"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/override"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/scheduler"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wager"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/dto"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/api/middleware"
	"github.com/gin-gonic/gin"
)

const defaultHistoryLimit = 10

// RoundHandler serves rounds, wagers and the operator's round controls
type RoundHandler struct {
	clock        *clock.Clock
	scheduler    *scheduler.Scheduler
	wagers       *wager.Service
	book         *wager.Book
	overrides    *override.Channel
	payouts      entity.PayoutTable
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewRoundHandler creates a new round handler instance
func NewRoundHandler(
	clk *clock.Clock,
	sched *scheduler.Scheduler,
	wagers *wager.Service,
	book *wager.Book,
	overrides *override.Channel,
	payouts entity.PayoutTable,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *RoundHandler {
	return &RoundHandler{
		clock:        clk,
		scheduler:    sched,
		wagers:       wagers,
		book:         book,
		overrides:    overrides,
		payouts:      payouts,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

func (h *RoundHandler) mode(c *gin.Context) (entity.GameMode, bool) {
	mode, err := entity.ParseGameMode(c.Param("mode"))
	if err != nil {
		respondError(c, h.logger, "parse_mode", err)
		return "", false
	}
	return mode, true
}

// CurrentRound handles GET /rounds/:mode
func (h *RoundHandler) CurrentRound(c *gin.Context) {
	mode, ok := h.mode(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, dto.NewRoundResponse(h.clock.Snapshot(mode, h.timeProvider.Now())))
}

// History handles GET /rounds/:mode/history
func (h *RoundHandler) History(c *gin.Context) {
	mode, ok := h.mode(c)
	if !ok {
		return
	}
	var q dto.HistoryQuery
	if !bindQuery(c, h.logger, &q) {
		return
	}
	if q.Limit == 0 {
		q.Limit = defaultHistoryLimit
	}
	c.JSON(http.StatusOK, dto.NewOutcomeList(h.scheduler.History(mode, q.Limit)))
}

// PlaceWager handles POST /wagers
func (h *RoundHandler) PlaceWager(c *gin.Context) {
	var req dto.PlaceWagerRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	mode, err := entity.ParseGameMode(req.Mode)
	if err != nil {
		respondError(c, h.logger, "place_wager", err)
		return
	}
	stake, err := entity.ValidateAndConvertAmount(req.Stake)
	if err != nil {
		respondError(c, h.logger, "place_wager", err)
		return
	}
	if req.Multiplier == 0 {
		req.Multiplier = 1
	}

	w, err := h.wagers.Place(c.Request.Context(), wager.PlaceRequest{
		UserID:     middleware.UserID(c),
		Mode:       mode,
		Selection:  req.Selection,
		Stake:      stake,
		Multiplier: req.Multiplier,
		RoundID:    req.RoundID,
	})
	if err != nil {
		respondError(c, h.logger, "place_wager", err)
		return
	}
	c.JSON(http.StatusCreated, dto.NewWagerResponse(w))
}

// WagerHistory handles GET /wagers
func (h *RoundHandler) WagerHistory(c *gin.Context) {
	var q dto.HistoryQuery
	if !bindQuery(c, h.logger, &q) {
		return
	}
	wagers, err := h.wagers.History(c.Request.Context(), middleware.UserID(c), q.Limit)
	if err != nil {
		respondError(c, h.logger, "wager_history", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewWagerList(wagers))
}

// LiveWagers handles GET /admin/wagers?mode=. Bot wagers are included.
func (h *RoundHandler) LiveWagers(c *gin.Context) {
	mode, err := entity.ParseGameMode(c.DefaultQuery("mode", string(entity.Mode30s)))
	if err != nil {
		respondError(c, h.logger, "live_wagers", err)
		return
	}
	c.JSON(http.StatusOK, dto.NewWagerViewList(h.wagers.OperatorView(mode)))
}

// RoundStats handles GET /admin/rounds/:mode
func (h *RoundHandler) RoundStats(c *gin.Context) {
	mode, ok := h.mode(c)
	if !ok {
		return
	}

	round := h.clock.Snapshot(mode, h.timeProvider.Now())
	resp := dto.NewRoundStatsResponse(round, h.book.Stats(round.RoundID, h.payouts))
	if n, ok := h.overrides.Peek(mode); ok {
		resp.Override = &n
	}
	if n, ok := h.scheduler.Prediction(mode); ok {
		resp.Prediction = &n
	}
	resp.Unsettled = h.scheduler.Unsettled(mode)
	c.JSON(http.StatusOK, resp)
}

// SetOverride handles PUT /admin/overrides/:mode
func (h *RoundHandler) SetOverride(c *gin.Context) {
	mode, ok := h.mode(c)
	if !ok {
		return
	}
	var req dto.OverrideRequest
	if !bindJSON(c, h.logger, &req) {
		return
	}
	if err := h.overrides.SetOverride(mode, *req.Number); err != nil {
		respondError(c, h.logger, "set_override", err)
		return
	}

	h.logger.Info("Outcome override set", map[string]any{
		"mode":     mode,
		"number":   *req.Number,
		"operator": middleware.UserID(c),
	})
	c.Status(http.StatusNoContent)
}

// ClearOverride handles DELETE /admin/overrides/:mode
func (h *RoundHandler) ClearOverride(c *gin.Context) {
	mode, ok := h.mode(c)
	if !ok {
		return
	}
	h.overrides.ClearOverride(mode)
	c.Status(http.StatusNoContent)
}
