package pricefeed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleKline = `{"e":"kline","E":1700000001000,"s":"BTCUSDT","k":{"t":1700000000000,"T":1700000000999,"i":"1s","o":"100.50","h":"101.00","l":"100.00","c":"100.75","x":true}}`

func TestParseKline(t *testing.T) {
	c, err := ParseKline([]byte(sampleKline))
	require.NoError(t, err)

	assert.Equal(t, time.UnixMilli(1700000000000).UTC(), c.OpenTime)
	assert.Equal(t, "100.5", c.Open.String())
	assert.Equal(t, "101", c.High.String())
	assert.Equal(t, "100", c.Low.String())
	assert.Equal(t, "100.75", c.Close.String())
}

func TestParseKline_CombinedStream(t *testing.T) {
	c, err := ParseKline([]byte(`{"stream":"btcusdt@kline_1s","data":` + sampleKline + `}`))
	require.NoError(t, err)
	assert.Equal(t, "100.75", c.Close.String())
}

func TestParseKline_RejectsMalformed(t *testing.T) {
	cases := map[string]string{
		"not json":       `{`,
		"no kline":       `{"e":"trade"}`,
		"wrong type":     `{"e":"trade","k":{"t":1,"o":"1","h":"1","l":"1","c":"1"}}`,
		"bad number":     `{"e":"kline","k":{"t":1,"o":"x","h":"1","l":"1","c":"1"}}`,
		"inverted range": `{"e":"kline","k":{"t":1,"o":"1","h":"1","l":"2","c":"1"}}`,
		"zero price":     `{"e":"kline","k":{"t":1,"o":"0","h":"1","l":"0","c":"1"}}`,
		"no open time":   `{"e":"kline","k":{"o":"1","h":"1","l":"1","c":"1"}}`,
	}
	for name, msg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseKline([]byte(msg))
			assert.Error(t, err)
		})
	}
}

type recordingSink struct {
	mu      sync.Mutex
	candles []entity.Candle
	got     chan struct{}
}

func (s *recordingSink) ApplyCandle(_ context.Context, market entity.MarketID, c entity.Candle) error {
	s.mu.Lock()
	s.candles = append(s.candles, c)
	s.mu.Unlock()
	s.got <- struct{}{}
	return nil
}

func TestKlineClient_StreamsIntoSink(t *testing.T) {
	upgrader := websocket.Upgrader{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			return
		}
		defer conn.Close()
		_ = conn.WriteMessage(websocket.TextMessage, []byte(`garbage`))
		_ = conn.WriteMessage(websocket.TextMessage, []byte(sampleKline))
		_, _, _ = conn.ReadMessage()
	}))
	defer server.Close()

	sink := &recordingSink{got: make(chan struct{}, 4)}
	client := NewKlineClient("ws"+strings.TrimPrefix(server.URL, "http"), entity.Market55Five, 10*time.Millisecond, sink, logger.NewNoopLogger())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- client.Run(ctx) }()

	select {
	case <-sink.got:
	case <-time.After(5 * time.Second):
		t.Fatal("no candle received")
	}
	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("client did not stop")
	}

	sink.mu.Lock()
	defer sink.mu.Unlock()
	require.Len(t, sink.candles, 1)
	assert.Equal(t, "100.75", sink.candles[0].Close.String())
}
