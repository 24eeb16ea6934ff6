package settlement

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	coreport "github.com/amirhossein-jamali/wingo-engine/internal/domain/port/core"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/persistence"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
)

// SettleReport summarises one settlement pass
type SettleReport struct {
	RoundID string
	Settled int
	Wins    int
	Losses  int
	Failed  int
	PaidOut int64
	// LoadFailed is set when the pending wagers could not be listed at all
	LoadFailed bool
}

// Complete reports whether the pass left no wager pending
func (r SettleReport) Complete() bool {
	return r.Failed == 0 && !r.LoadFailed
}

// Settler resolves a round's pending wagers against its outcome
type Settler struct {
	uow          persistence.UnitOfWork
	ledger       usecase.Ledger
	notifier     usecase.Notifier
	publisher    event.Publisher
	table        entity.PayoutTable
	timeProvider coreport.TimeProvider
	logger       coreport.Logger
}

// NewSettler creates a settler
func NewSettler(
	uow persistence.UnitOfWork,
	ledger usecase.Ledger,
	notifier usecase.Notifier,
	publisher event.Publisher,
	table entity.PayoutTable,
	timeProvider coreport.TimeProvider,
	logger coreport.Logger,
) *Settler {
	return &Settler{
		uow:          uow,
		ledger:       ledger,
		notifier:     notifier,
		publisher:    publisher,
		table:        table,
		timeProvider: timeProvider,
		logger:       logger,
	}
}

// Settle settles every pending wager of the outcome's round. A failing
// wager is logged, counted in Failed and left pending; it never blocks the
// rest. Calling Settle again for the same outcome only touches wagers that
// are still pending, so the caller retries incomplete reports.
func (s *Settler) Settle(ctx context.Context, outcome entity.RoundOutcome) SettleReport {
	report := SettleReport{RoundID: outcome.RoundID}

	pending, err := s.uow.GetWagerRepository(ctx).ListPendingByRound(ctx, outcome.RoundID)
	if err != nil {
		s.logger.Error("Failed to load pending wagers", map[string]any{"round_id": outcome.RoundID, "error": err.Error()})
		report.LoadFailed = true
		return report
	}

	for _, w := range pending {
		if w.IsBot {
			continue
		}
		moved, err := s.settleOne(ctx, w, outcome)
		if err != nil {
			report.Failed++
			s.logger.Error("Wager settlement failed", errs.LogFieldsOf(err))
			continue
		}
		if !moved {
			continue
		}
		report.Settled++
		if w.Status == entity.WagerWin {
			report.Wins++
			report.PaidOut += w.Payout
		} else {
			report.Losses++
		}
	}

	s.logger.Info("Round settled", map[string]any{
		"round_id": outcome.RoundID,
		"number":   outcome.Number,
		"settled":  report.Settled,
		"wins":     report.Wins,
		"losses":   report.Losses,
		"failed":   report.Failed,
		"paid_out": entity.AmountInCentsToString(report.PaidOut),
	})
	return report
}

// settleOne credits first and marks second; the payout reference keeps a
// retried credit from paying twice
func (s *Settler) settleOne(ctx context.Context, w *entity.Wager, outcome entity.RoundOutcome) (bool, error) {
	status, payout := w.Resolve(outcome, s.table)

	if payout > 0 {
		if _, err := s.ledger.Credit(ctx, usecase.Mutation{
			UserID:    w.UserID,
			Mode:      w.LedgerMode,
			Amount:    payout,
			Kind:      entity.EntryWagerPayout,
			Reference: w.PayoutReference(),
		}); err != nil {
			return false, errs.NewSettlementError(w.ID, w.RoundID, w.UserID, "credit", err)
		}
	}

	now := s.timeProvider.Now()
	moved, err := s.uow.GetWagerRepository(ctx).MarkSettled(ctx, w.ID, status, payout, now)
	if err != nil {
		return false, errs.NewSettlementError(w.ID, w.RoundID, w.UserID, "mark", err)
	}
	if !moved {
		return false, nil
	}
	if err := w.MarkSettled(status, payout, now); err != nil {
		return false, errs.NewSettlementError(w.ID, w.RoundID, w.UserID, "mark", err)
	}

	s.notifier.Notify(ctx, s.notificationFor(w, outcome))
	s.publisher.Publish(ctx, event.WagerSettled{
		WagerID:    w.ID,
		UserID:     w.UserID,
		RoundID:    w.RoundID,
		Mode:       w.Mode,
		Selection:  w.Selection.String(),
		Status:     w.Status,
		Cost:       w.Cost(),
		Payout:     w.Payout,
		LedgerMode: w.LedgerMode,
		SettledAt:  now,
	})
	return true, nil
}

func (s *Settler) notificationFor(w *entity.Wager, outcome entity.RoundOutcome) entity.Notification {
	if w.Status == entity.WagerWin {
		n := entity.Notification{
			UserID:  w.UserID,
			Type:    entity.NotifyWin,
			Title:   "You won",
			Message: fmt.Sprintf("Round %s: %s", w.RoundID, w.Selection),
			Amount:  entity.AmountInCentsToString(w.Payout),
			Accent:  w.Selection.Accent(),
		}
		if w.Selection.IsDigit() {
			number := outcome.Number
			n.BallNumber = &number
		}
		return n
	}
	return entity.Notification{
		UserID:  w.UserID,
		Type:    entity.NotifyLoss,
		Title:   "You lost",
		Message: fmt.Sprintf("Round %s: %s", w.RoundID, w.Selection),
		Amount:  entity.AmountInCentsToString(w.Cost()),
		Accent:  w.Selection.Accent(),
	}
}
