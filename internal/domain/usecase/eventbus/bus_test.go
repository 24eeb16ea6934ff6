package eventbus

import (
	"context"
	"testing"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/infrastructure/adapter/logger"
	"github.com/stretchr/testify/assert"
)

func TestBus_DispatchOrderAndPanicIsolation(t *testing.T) {
	bus := NewBus(logger.NewNoopLogger())
	var calls []string

	bus.Subscribe(event.TypeOutcomeDrawn, func(context.Context, event.Event) { calls = append(calls, "first") })
	bus.Subscribe(event.TypeOutcomeDrawn, func(context.Context, event.Event) { panic("boom") })
	bus.Subscribe(event.TypeOutcomeDrawn, func(context.Context, event.Event) { calls = append(calls, "third") })
	bus.SubscribeAll(func(_ context.Context, e event.Event) { calls = append(calls, "all:"+string(e.Type())) })
	bus.Subscribe(event.TypeWagerSettled, func(context.Context, event.Event) { calls = append(calls, "wrong") })

	bus.Publish(context.Background(), event.OutcomeDrawn{Outcome: entity.RoundOutcome{RoundID: "r", Number: 3}})

	assert.Equal(t, []string{"first", "third", "all:outcome.drawn"}, calls)
}

func TestBus_HandlerReceivesPayload(t *testing.T) {
	bus := NewBus(logger.NewNoopLogger())

	var got event.WagerSettled
	bus.Subscribe(event.TypeWagerSettled, func(_ context.Context, e event.Event) {
		got = e.(event.WagerSettled)
	})

	bus.Publish(context.Background(), event.WagerSettled{WagerID: "w1", Status: entity.WagerWin, Payout: 900})
	assert.Equal(t, "w1", got.WagerID)
	assert.Equal(t, int64(900), got.Payout)
}
