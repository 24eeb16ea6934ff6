package trading

import (
	"context"
	"fmt"
	"sync"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Config bounds positions
type Config struct {
	MinMargin       int64 // cents
	DefaultLeverage int64
	MaxLeverage     int64
}

// DefaultConfig requires a 1000.00 margin and allows up to 100x
func DefaultConfig() Config {
	return Config{MinMargin: 100000, DefaultLeverage: 10, MaxLeverage: 100}
}

// OpenRequest opens a position on a market
type OpenRequest struct {
	UserID    uint64
	Market    entity.MarketID
	Direction entity.Direction
	Margin    int64 // cents
	Leverage  int64 // zero for the default
}

// BulkResult summarises a bulk close
type BulkResult struct {
	Closed []*entity.TradingPosition
	Credit int64
	Profit int64
}

// Service opens and closes leveraged positions
type Service struct {
	uow          persistence.UnitOfWork
	ledger       usecase.Ledger
	markets      *Markets
	publisher    event.Publisher
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          Config

	mu        sync.Mutex
	userLocks map[uint64]*sync.Mutex
}

// NewService creates a trading service
func NewService(
	uow persistence.UnitOfWork,
	ledger usecase.Ledger,
	markets *Markets,
	publisher event.Publisher,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	return &Service{
		uow:          uow,
		ledger:       ledger,
		markets:      markets,
		publisher:    publisher,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
		userLocks:    make(map[uint64]*sync.Mutex),
	}
}

// lockUser serializes closes of one user's positions
func (s *Service) lockUser(userID uint64) func() {
	s.mu.Lock()
	l, ok := s.userLocks[userID]
	if !ok {
		l = &sync.Mutex{}
		s.userLocks[userID] = l
	}
	s.mu.Unlock()

	l.Lock()
	return l.Unlock
}

// Open debits the margin from the active ledger and opens a position at the current price
func (s *Service) Open(ctx context.Context, req OpenRequest) (*entity.TradingPosition, error) {
	if req.Margin < s.cfg.MinMargin {
		return nil, fmt.Errorf("%w: minimum margin is %s", errs.ErrInvalidAmount, entity.AmountInCentsToString(s.cfg.MinMargin))
	}
	leverage := req.Leverage
	if leverage == 0 {
		leverage = s.cfg.DefaultLeverage
	}
	if leverage < 1 || leverage > s.cfg.MaxLeverage {
		return nil, fmt.Errorf("%w: leverage must be between 1 and %d", errs.ErrInvalidRequest, s.cfg.MaxLeverage)
	}

	user, err := s.uow.GetUserRepository(ctx).GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, errs.ErrAccountBanned
	}

	price, err := s.markets.Price(req.Market)
	if err != nil {
		return nil, err
	}

	p, err := entity.NewTradingPosition(uuid.NewString(), user.ID, req.Market, req.Direction, price, req.Margin, leverage, user.ActiveMode, s.timeProvider.Now())
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Debit(ctx, usecase.Mutation{
		UserID:    p.UserID,
		Mode:      p.LedgerMode,
		Amount:    p.Margin,
		Kind:      entity.EntryPositionMargin,
		Reference: p.MarginReference(),
	}); err != nil {
		return nil, err
	}

	if err := s.uow.GetPositionRepository(ctx).Create(ctx, p); err != nil {
		s.logger.Error("Failed to record position, refunding margin", map[string]any{"position_id": p.ID, "error": err.Error()})
		if _, refundErr := s.ledger.Credit(context.WithoutCancel(ctx), usecase.Mutation{
			UserID:    p.UserID,
			Mode:      p.LedgerMode,
			Amount:    p.Margin,
			Kind:      entity.EntryPositionRefund,
			Reference: p.MarginReference() + ":refund",
		}); refundErr != nil {
			s.logger.Error("Margin refund failed", map[string]any{"position_id": p.ID, "error": refundErr.Error()})
		}
		return nil, err
	}

	s.logger.Info("Position opened", map[string]any{
		"position_id": p.ID,
		"user_id":     p.UserID,
		"market":      p.Market,
		"direction":   p.Direction,
		"entry":       p.EntryPrice.String(),
		"margin":      entity.AmountInCentsToString(p.Margin),
		"leverage":    p.Leverage,
	})
	return p, nil
}

// Close closes one of the user's open positions at the current price
func (s *Service) Close(ctx context.Context, userID uint64, positionID string) (*entity.TradingPosition, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	p, err := s.uow.GetPositionRepository(ctx).GetByID(ctx, positionID)
	if err != nil {
		return nil, err
	}
	if p.UserID != userID {
		return nil, errs.ErrPositionNotFound
	}
	if p.Status != entity.PositionOpen {
		return nil, fmt.Errorf("%w: position %s is already closed", errs.ErrInvalidState, p.ID)
	}

	price, err := s.markets.Price(p.Market)
	if err != nil {
		return nil, err
	}
	if _, err := s.closeAt(ctx, p, price); err != nil {
		return nil, err
	}
	return p, nil
}

// CloseBulk closes the user's open positions on a market that match the
// filter, all at one price snapshot
func (s *Service) CloseBulk(ctx context.Context, userID uint64, market entity.MarketID, filter entity.CloseFilter) (*BulkResult, error) {
	unlock := s.lockUser(userID)
	defer unlock()

	price, err := s.markets.Price(market)
	if err != nil {
		return nil, err
	}

	open, err := s.uow.GetPositionRepository(ctx).List(ctx, persistence.PositionFilter{
		UserID: userID,
		Market: market,
		Status: entity.PositionOpen,
	})
	if err != nil {
		return nil, err
	}

	result := &BulkResult{}
	for _, p := range open {
		if !filter.Matches(p.Profit(price)) {
			continue
		}
		closed, err := s.closeAt(ctx, p, price)
		if err != nil {
			s.logger.Error("Bulk close stopped", map[string]any{"position_id": p.ID, "error": err.Error()})
			return result, err
		}
		if !closed {
			continue
		}
		result.Closed = append(result.Closed, p)
		result.Credit += p.CloseCredit(price)
		result.Profit += p.RealizedProfit
	}
	return result, nil
}

// closeAt credits first and marks second; the close reference keeps a
// retried credit from paying twice
func (s *Service) closeAt(ctx context.Context, p *entity.TradingPosition, price decimal.Decimal) (bool, error) {
	credit := p.CloseCredit(price)
	if credit > 0 {
		if _, err := s.ledger.Credit(ctx, usecase.Mutation{
			UserID:    p.UserID,
			Mode:      p.LedgerMode,
			Amount:    credit,
			Kind:      entity.EntryPositionClose,
			Reference: p.CloseReference(),
		}); err != nil {
			return false, err
		}
	}

	now := s.timeProvider.Now()
	if err := p.MarkClosed(price, now); err != nil {
		return false, err
	}
	moved, err := s.uow.GetPositionRepository(ctx).MarkClosed(ctx, p)
	if err != nil || !moved {
		return false, err
	}

	s.publisher.Publish(ctx, event.PositionClosed{
		PositionID: p.ID,
		UserID:     p.UserID,
		Market:     p.Market,
		ClosePrice: price.String(),
		Profit:     p.RealizedProfit,
		Credit:     credit,
		ClosedAt:   now,
	})
	s.logger.Info("Position closed", map[string]any{
		"position_id": p.ID,
		"user_id":     p.UserID,
		"price":       price.String(),
		"profit":      entity.AmountInCentsToString(p.RealizedProfit),
	})
	return true, nil
}

// Positions lists the user's positions, newest first
func (s *Service) Positions(ctx context.Context, userID uint64, market entity.MarketID, status entity.PositionStatus, limit int) ([]*entity.TradingPosition, error) {
	return s.uow.GetPositionRepository(ctx).List(ctx, persistence.PositionFilter{
		UserID: userID,
		Market: market,
		Status: status,
		Limit:  limit,
	})
}

// Markets exposes the market book
func (s *Service) Markets() *Markets {
	return s.markets
}
