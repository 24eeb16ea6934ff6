package dto

import (
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/trading"
)

// CandleDTO is one OHLC bar
type CandleDTO struct {
	OpenTime time.Time `json:"openTime"`
	Open     string    `json:"open"`
	High     string    `json:"high"`
	Low      string    `json:"low"`
	Close    string    `json:"close"`
}

// MarketResponse is a market's current state
type MarketResponse struct {
	Market    string      `json:"market"`
	Price     string      `json:"price"`
	UpdatedAt time.Time   `json:"updatedAt"`
	Candles   []CandleDTO `json:"candles"`
}

// NewMarketResponse renders a market snapshot
func NewMarketResponse(s entity.MarketSnapshot) MarketResponse {
	candles := make([]CandleDTO, 0, len(s.Candles))
	for _, c := range s.Candles {
		candles = append(candles, CandleDTO{
			OpenTime: c.OpenTime,
			Open:     c.Open.StringFixed(4),
			High:     c.High.StringFixed(4),
			Low:      c.Low.StringFixed(4),
			Close:    c.Close.StringFixed(4),
		})
	}
	return MarketResponse{
		Market:    string(s.Market),
		Price:     s.Price.StringFixed(4),
		UpdatedAt: s.UpdatedAt,
		Candles:   candles,
	}
}

// OpenPositionRequest opens a leveraged position
type OpenPositionRequest struct {
	Market    string `json:"market" binding:"required,market"`
	Direction string `json:"direction" binding:"required,oneof=Buy Sell"`
	Margin    string `json:"margin" binding:"required,money"`
	Leverage  int64  `json:"leverage" binding:"omitempty,min=1"`
}

// PositionResponse is one trading position
type PositionResponse struct {
	ID             string     `json:"id"`
	Market         string     `json:"market"`
	Direction      string     `json:"direction"`
	EntryPrice     string     `json:"entryPrice"`
	Margin         string     `json:"margin"`
	Leverage       int64      `json:"leverage"`
	LedgerMode     string     `json:"ledgerMode"`
	Status         string     `json:"status"`
	OpenedAt       time.Time  `json:"openedAt"`
	ClosePrice     string     `json:"closePrice,omitempty"`
	ClosedAt       *time.Time `json:"closedAt,omitempty"`
	RealizedProfit string     `json:"realizedProfit"`
}

// NewPositionResponse renders a position
func NewPositionResponse(p *entity.TradingPosition) PositionResponse {
	resp := PositionResponse{
		ID:             p.ID,
		Market:         string(p.Market),
		Direction:      string(p.Direction),
		EntryPrice:     p.EntryPrice.StringFixed(4),
		Margin:         entity.AmountInCentsToString(p.Margin),
		Leverage:       p.Leverage,
		LedgerMode:     string(p.LedgerMode),
		Status:         string(p.Status),
		OpenedAt:       p.OpenedAt,
		ClosedAt:       p.ClosedAt,
		RealizedProfit: entity.AmountInCentsToString(p.RealizedProfit),
	}
	if p.ClosedAt != nil {
		resp.ClosePrice = p.ClosePrice.StringFixed(4)
	}
	return resp
}

// NewPositionList renders positions
func NewPositionList(positions []*entity.TradingPosition) []PositionResponse {
	out := make([]PositionResponse, 0, len(positions))
	for _, p := range positions {
		out = append(out, NewPositionResponse(p))
	}
	return out
}

// PositionQuery filters the caller's positions
type PositionQuery struct {
	Market string `form:"market" binding:"omitempty,market"`
	Status string `form:"status" binding:"omitempty,oneof=Open Closed"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=500"`
}

// BulkCloseRequest closes a set of the caller's open positions on a market
type BulkCloseRequest struct {
	Market string `json:"market" binding:"required,market"`
	Filter string `json:"filter" binding:"omitempty,oneof=All Profit Loss"`
}

// BulkCloseResponse summarises a bulk close
type BulkCloseResponse struct {
	Closed []PositionResponse `json:"closed"`
	Credit string             `json:"credit"`
	Profit string             `json:"profit"`
}

// NewBulkCloseResponse renders a bulk close result
func NewBulkCloseResponse(r *trading.BulkResult) BulkCloseResponse {
	return BulkCloseResponse{
		Closed: NewPositionList(r.Closed),
		Credit: entity.AmountInCentsToString(r.Credit),
		Profit: entity.AmountInCentsToString(r.Profit),
	}
}

// MarketEventRequest forces the next synthetic market move
type MarketEventRequest struct {
	Event string `json:"event" binding:"required,oneof=Pump Dump"`
}
