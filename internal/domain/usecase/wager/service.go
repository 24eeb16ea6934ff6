package wager

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/usecase/clock"
	"github.com/google/uuid"
)

// Config bounds what a single wager may be
type Config struct {
	MinStake      int64 // cents
	MaxMultiplier int64
	BotsEnabled   bool
}

// DefaultConfig allows stakes from 1.00 with multipliers up to 100
func DefaultConfig() Config {
	return Config{MinStake: 100, MaxMultiplier: 100, BotsEnabled: true}
}

// PlaceRequest is a player's wager request
type PlaceRequest struct {
	UserID     uint64
	Mode       entity.GameMode
	Selection  string
	Stake      int64 // cents
	Multiplier int64
	// RoundID is optional; when set it must name the open round
	RoundID string
}

// Service places wagers
type Service struct {
	uow          persistence.UnitOfWork
	ledger       usecase.Ledger
	clock        *clock.Clock
	book         *Book
	locks        *ModeLocks
	notifier     usecase.Notifier
	bots         *BotGenerator
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
	cfg          Config
}

// NewService creates a wager placement service
func NewService(
	uow persistence.UnitOfWork,
	ledger usecase.Ledger,
	clk *clock.Clock,
	book *Book,
	locks *ModeLocks,
	notifier usecase.Notifier,
	bots *BotGenerator,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
	cfg Config,
) *Service {
	return &Service{
		uow:          uow,
		ledger:       ledger,
		clock:        clk,
		book:         book,
		locks:        locks,
		notifier:     notifier,
		bots:         bots,
		timeProvider: timeProvider,
		logger:       logger,
		cfg:          cfg,
	}
}

func (s *Service) validate(req PlaceRequest) (entity.Selection, error) {
	if req.UserID == 0 {
		return entity.Selection{}, errs.ErrInvalidUserID
	}
	if !req.Mode.Valid() {
		return entity.Selection{}, fmt.Errorf("%w: %q", errs.ErrInvalidGameMode, req.Mode)
	}
	sel, err := entity.ParseSelection(req.Selection)
	if err != nil {
		return entity.Selection{}, err
	}
	if req.Stake < s.cfg.MinStake {
		return entity.Selection{}, fmt.Errorf("%w: minimum stake is %s", errs.ErrInvalidAmount, entity.AmountInCentsToString(s.cfg.MinStake))
	}
	if req.Multiplier < 1 || req.Multiplier > s.cfg.MaxMultiplier {
		return entity.Selection{}, fmt.Errorf("%w: multiplier must be between 1 and %d", errs.ErrInvalidAmount, s.cfg.MaxMultiplier)
	}
	return sel, nil
}

// Place debits the stake from the user's active ledger and records a
// pending wager on the open round of req.Mode
func (s *Service) Place(ctx context.Context, req PlaceRequest) (*entity.Wager, error) {
	sel, err := s.validate(req)
	if err != nil {
		return nil, err
	}

	user, err := s.uow.GetUserRepository(ctx).GetByID(ctx, req.UserID)
	if err != nil {
		return nil, err
	}
	if user.Banned {
		return nil, errs.ErrAccountBanned
	}

	unlock := s.locks.Lock(req.Mode)
	defer unlock()

	now := s.timeProvider.Now()
	snap := s.clock.Snapshot(req.Mode, now)
	if snap.Locked || (req.RoundID != "" && req.RoundID != snap.RoundID) {
		return nil, errs.NewStaleRoundError(string(req.Mode), req.RoundID, snap.RoundID, snap.SecondsRemaining)
	}

	w, err := entity.NewWager(uuid.NewString(), user.ID, user.Username, snap.RoundID, req.Mode, sel, req.Stake, req.Multiplier, user.ActiveMode, now)
	if err != nil {
		return nil, err
	}

	if _, err := s.ledger.Debit(ctx, usecase.Mutation{
		UserID:    user.ID,
		Mode:      w.LedgerMode,
		Amount:    w.Cost(),
		Kind:      entity.EntryWagerStake,
		Reference: w.StakeReference(),
	}); err != nil {
		return nil, err
	}

	if err := s.uow.GetWagerRepository(ctx).Create(ctx, w); err != nil {
		s.refund(w, err)
		return nil, err
	}

	s.book.Add(w)
	s.notifier.Notify(ctx, entity.Notification{
		UserID:  user.ID,
		Type:    entity.NotifyInfo,
		Title:   "Bet placed",
		Message: fmt.Sprintf("%s: %s", w.Mode, w.Selection),
		Amount:  entity.AmountInCentsToString(w.Cost()),
		Accent:  w.Selection.Accent(),
	})

	if w.LedgerMode == entity.LedgerReal && s.cfg.BotsEnabled && s.bots != nil {
		s.book.Add(s.bots.Generate(w.Mode, w.RoundID))
	}

	s.logger.Info("Wager placed", map[string]any{
		"wager_id":    w.ID,
		"user_id":     w.UserID,
		"round_id":    w.RoundID,
		"selection":   w.Selection.String(),
		"cost":        entity.AmountInCentsToString(w.Cost()),
		"ledger_mode": w.LedgerMode,
	})
	return w, nil
}

// refund returns the stake of a wager that could not be recorded
func (s *Service) refund(w *entity.Wager, cause error) {
	s.logger.Error("Failed to record wager, refunding stake", map[string]any{
		"wager_id": w.ID,
		"user_id":  w.UserID,
		"error":    cause.Error(),
	})
	if _, err := s.ledger.Credit(context.Background(), usecase.Mutation{
		UserID:    w.UserID,
		Mode:      w.LedgerMode,
		Amount:    w.Cost(),
		Kind:      entity.EntryWagerRefund,
		Reference: w.StakeReference() + ":refund",
	}); err != nil {
		s.logger.Error("Stake refund failed", map[string]any{"wager_id": w.ID, "error": err.Error()})
	}
}

// History returns the user's wagers, newest first
func (s *Service) History(ctx context.Context, userID uint64, limit int) ([]*entity.Wager, error) {
	return s.uow.GetWagerRepository(ctx).ListByUser(ctx, userID, limit)
}

// OperatorView returns the live wagers of a mode, bots included
func (s *Service) OperatorView(mode entity.GameMode) []entity.Wager {
	return s.book.ListMode(mode)
}
