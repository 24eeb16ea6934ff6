package pricefeed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/gorilla/websocket"
	"github.com/shopspring/decimal"
)

const (
	defaultReconnectDelay = 5 * time.Second
	pongWait              = 10 * time.Second
)

// CandleSink receives parsed bars
type CandleSink interface {
	ApplyCandle(ctx context.Context, market entity.MarketID, c entity.Candle) error
}

// KlineClient streams kline bars from a Binance-style websocket into a market
type KlineClient struct {
	url            string
	market         entity.MarketID
	reconnectDelay time.Duration
	dialer         *websocket.Dialer
	sink           CandleSink
	logger         coreport.Logger
}

// NewKlineClient creates a client feeding market from url
func NewKlineClient(url string, market entity.MarketID, reconnectDelay time.Duration, sink CandleSink, logger coreport.Logger) *KlineClient {
	if reconnectDelay <= 0 {
		reconnectDelay = defaultReconnectDelay
	}
	return &KlineClient{
		url:            url,
		market:         market,
		reconnectDelay: reconnectDelay,
		dialer:         websocket.DefaultDialer,
		sink:           sink,
		logger:         logger,
	}
}

// Run keeps the stream open until ctx is cancelled, reconnecting after
// every disconnect
func (k *KlineClient) Run(ctx context.Context) error {
	for {
		err := k.stream(ctx)
		if ctx.Err() != nil {
			return nil
		}
		k.logger.Warn("Price feed disconnected", map[string]any{
			"url":             k.url,
			"market":          k.market,
			"error":           errString(err),
			"reconnect_after": k.reconnectDelay.String(),
		})

		timer := time.NewTimer(k.reconnectDelay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil
		case <-timer.C:
		}
	}
}

func (k *KlineClient) stream(ctx context.Context) error {
	conn, _, err := k.dialer.DialContext(ctx, k.url, nil)
	if err != nil {
		return fmt.Errorf("dialing price feed: %w", err)
	}
	defer conn.Close()

	k.logger.Info("Connected to price feed", map[string]any{"url": k.url, "market": k.market})

	conn.SetPingHandler(func(appData string) error {
		return conn.WriteControl(websocket.PongMessage, []byte(appData), time.Now().Add(pongWait))
	})

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			_ = conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		candle, err := ParseKline(message)
		if err != nil {
			k.logger.Warn("Dropping malformed price tick", map[string]any{"market": k.market, "error": err.Error()})
			continue
		}
		if err := k.sink.ApplyCandle(ctx, k.market, candle); err != nil {
			k.logger.Warn("Price tick rejected", map[string]any{"market": k.market, "error": err.Error()})
		}
	}
}

type klineBar struct {
	OpenTime int64  `json:"t"`
	Open     string `json:"o"`
	High     string `json:"h"`
	Low      string `json:"l"`
	Close    string `json:"c"`
}

type klineEvent struct {
	EventType string          `json:"e"`
	Kline     *klineBar       `json:"k"`
	Data      json.RawMessage `json:"data"`
}

// ParseKline decodes a kline event. Combined-stream envelopes
// ({"stream": ..., "data": {...}}) are unwrapped.
func ParseKline(message []byte) (entity.Candle, error) {
	var evt klineEvent
	if err := json.Unmarshal(message, &evt); err != nil {
		return entity.Candle{}, fmt.Errorf("decoding kline: %w", err)
	}
	if evt.Kline == nil && len(evt.Data) > 0 {
		return ParseKline(evt.Data)
	}
	if evt.Kline == nil {
		return entity.Candle{}, errors.New("message carries no kline")
	}
	if evt.EventType != "" && evt.EventType != "kline" {
		return entity.Candle{}, fmt.Errorf("unexpected event type %q", evt.EventType)
	}

	bar := evt.Kline
	var (
		c   entity.Candle
		err error
	)
	c.OpenTime = time.UnixMilli(bar.OpenTime).UTC()
	if c.Open, err = decimal.NewFromString(bar.Open); err != nil {
		return entity.Candle{}, fmt.Errorf("open price: %w", err)
	}
	if c.High, err = decimal.NewFromString(bar.High); err != nil {
		return entity.Candle{}, fmt.Errorf("high price: %w", err)
	}
	if c.Low, err = decimal.NewFromString(bar.Low); err != nil {
		return entity.Candle{}, fmt.Errorf("low price: %w", err)
	}
	if c.Close, err = decimal.NewFromString(bar.Close); err != nil {
		return entity.Candle{}, fmt.Errorf("close price: %w", err)
	}
	if bar.OpenTime <= 0 || !c.Valid() {
		return entity.Candle{}, errors.New("kline fails range checks")
	}
	return c, nil
}

func errString(err error) string {
	if err == nil {
		return ""
	}
	return err.Error()
}
