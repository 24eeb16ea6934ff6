package dto

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/wager"
)

// RoundResponse describes the open round of a mode
type RoundResponse struct {
	Mode             string    `json:"mode"`
	RoundID          string    `json:"roundId"`
	SecondsRemaining int64     `json:"secondsRemaining"`
	StartsAt         time.Time `json:"startsAt"`
	EndsAt           time.Time `json:"endsAt"`
	Locked           bool      `json:"locked"`
}

// NewRoundResponse renders a clock snapshot
func NewRoundResponse(s clock.Snapshot) RoundResponse {
	return RoundResponse{
		Mode:             string(s.Mode),
		RoundID:          s.RoundID,
		SecondsRemaining: s.SecondsRemaining,
		StartsAt:         s.StartsAt,
		EndsAt:           s.EndsAt,
		Locked:           s.Locked,
	}
}

// OutcomeResponse is one drawn round
type OutcomeResponse struct {
	RoundID string    `json:"roundId"`
	Mode    string    `json:"mode"`
	Number  int       `json:"number"`
	Size    string    `json:"size"`
	Color   string    `json:"color"`
	DrawnAt time.Time `json:"drawnAt"`
}

// NewOutcomeList renders round history. Whether an outcome was forced is
// never exposed.
func NewOutcomeList(outcomes []entity.RoundOutcome) []OutcomeResponse {
	out := make([]OutcomeResponse, 0, len(outcomes))
	for _, o := range outcomes {
		out = append(out, OutcomeResponse{
			RoundID: o.RoundID,
			Mode:    string(o.Mode),
			Number:  o.Number,
			Size:    string(o.Size),
			Color:   string(o.Color),
			DrawnAt: o.DrawnAt,
		})
	}
	return out
}

// HistoryQuery bounds a list request
type HistoryQuery struct {
	Limit int `form:"limit" binding:"omitempty,min=1,max=500"`
}

// PlaceWagerRequest places a wager on the open round
type PlaceWagerRequest struct {
	Mode       string `json:"mode" binding:"required,gamemode"`
	Selection  string `json:"selection" binding:"required,selection"`
	Stake      string `json:"stake" binding:"required,money"`
	Multiplier int64  `json:"multiplier" binding:"omitempty,min=1"`
	RoundID    string `json:"roundId"`
}

// WagerResponse is one wager
type WagerResponse struct {
	ID         string     `json:"id"`
	Username   string     `json:"username"`
	RoundID    string     `json:"roundId"`
	Mode       string     `json:"mode"`
	Selection  string     `json:"selection"`
	Stake      string     `json:"stake"`
	Multiplier int64      `json:"multiplier"`
	Cost       string     `json:"cost"`
	LedgerMode string     `json:"ledgerMode"`
	Status     string     `json:"status"`
	Payout     string     `json:"payout"`
	PlacedAt   time.Time  `json:"placedAt"`
	SettledAt  *time.Time `json:"settledAt,omitempty"`
	IsBot      bool       `json:"isBot,omitempty"`
}

// NewWagerResponse renders a wager
func NewWagerResponse(w *entity.Wager) WagerResponse {
	return WagerResponse{
		ID:         w.ID,
		Username:   w.Username,
		RoundID:    w.RoundID,
		Mode:       string(w.Mode),
		Selection:  w.Selection.String(),
		Stake:      entity.AmountInCentsToString(w.Stake),
		Multiplier: w.Multiplier,
		Cost:       entity.AmountInCentsToString(w.Cost()),
		LedgerMode: string(w.LedgerMode),
		Status:     string(w.Status),
		Payout:     entity.AmountInCentsToString(w.Payout),
		PlacedAt:   w.PlacedAt,
		SettledAt:  w.SettledAt,
		IsBot:      w.IsBot,
	}
}

// NewWagerList renders wagers
func NewWagerList(wagers []*entity.Wager) []WagerResponse {
	out := make([]WagerResponse, 0, len(wagers))
	for _, w := range wagers {
		out = append(out, NewWagerResponse(w))
	}
	return out
}

// NewWagerViewList renders the operator view of live wagers
func NewWagerViewList(wagers []entity.Wager) []WagerResponse {
	out := make([]WagerResponse, 0, len(wagers))
	for i := range wagers {
		out = append(out, NewWagerResponse(&wagers[i]))
	}
	return out
}

// RoundStatsResponse is the operator view of a round's exposure
type RoundStatsResponse struct {
	Round         RoundResponse     `json:"round"`
	Wagers        int               `json:"wagers"`
	Bots          int               `json:"bots"`
	TotalStake    string            `json:"totalStake"`
	BySelection   map[string]string `json:"bySelection"`
	PayoutByDigit [10]string        `json:"payoutByDigit"`
	Override      *int              `json:"override,omitempty"`
	Prediction    *int              `json:"prediction,omitempty"`
	// Unsettled lists finished rounds still waiting on a settlement retry
	Unsettled []string `json:"unsettled,omitempty"`
}

// NewRoundStatsResponse renders a round's aggregates
func NewRoundStatsResponse(round clock.Snapshot, stats wager.RoundStats) RoundStatsResponse {
	resp := RoundStatsResponse{
		Round:       NewRoundResponse(round),
		Wagers:      stats.Wagers,
		Bots:        stats.Bots,
		TotalStake:  entity.AmountInCentsToString(stats.TotalStake),
		BySelection: make(map[string]string, len(stats.BySelection)),
	}
	for sel, amount := range stats.BySelection {
		resp.BySelection[sel] = entity.AmountInCentsToString(amount)
	}
	for n, amount := range stats.PayoutByDigit {
		resp.PayoutByDigit[n] = entity.AmountInCentsToString(amount)
	}
	return resp
}

// OverrideRequest forces the next outcome of a mode
type OverrideRequest struct {
	Number *int `json:"number" binding:"required,min=0,max=9"`
}
