package event

import (
	"context"
	"time"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
)

// Type names an event kind; it doubles as the subject suffix on external brokers
type Type string

// Event types
const (
	TypeOutcomeDrawn       Type = "outcome.drawn"
	TypeWagerSettled       Type = "wager.settled"
	TypePositionClosed     Type = "position.closed"
	TypeTransactionDecided Type = "transaction.decided"
)

// Event is the base interface for all events
type Event interface {
	Type() Type
}

// OutcomeDrawn is emitted once per round when its outcome is recorded
type OutcomeDrawn struct {
	Outcome entity.RoundOutcome
}

func (OutcomeDrawn) Type() Type { return TypeOutcomeDrawn }

// WagerSettled is emitted when a wager leaves Pending
type WagerSettled struct {
	WagerID    string
	UserID     uint64
	RoundID    string
	Mode       entity.GameMode
	Selection  string
	Status     entity.WagerStatus
	Cost       int64
	Payout     int64
	LedgerMode entity.LedgerMode
	SettledAt  time.Time
}

func (WagerSettled) Type() Type { return TypeWagerSettled }

// PositionClosed is emitted when a trading position closes
type PositionClosed struct {
	PositionID string
	UserID     uint64
	Market     entity.MarketID
	ClosePrice string
	Profit     int64
	Credit     int64
	ClosedAt   time.Time
}

func (PositionClosed) Type() Type { return TypePositionClosed }

// TransactionDecided is emitted when an operator decides a deposit or withdrawal
type TransactionDecided struct {
	TransactionID string
	UserID        uint64
	Kind          entity.TransactionKind
	Status        entity.TransactionStatus
	Amount        int64
	DecidedAt     time.Time
}

func (TransactionDecided) Type() Type { return TypeTransactionDecided }

// Handler reacts to one event
type Handler func(ctx context.Context, e Event)

// Publisher emits events to whoever subscribed
type Publisher interface {
	Publish(ctx context.Context, e Event)
}

// Subscriber registers handlers per event type
type Subscriber interface {
	Subscribe(t Type, h Handler)
}
