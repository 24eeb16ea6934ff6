package wallet

import (
	"context"
	"fmt"

	"github.com/amirhossein-jamali/wingo-engine/internal/domain/entity"
	errs "github.com/amirhossein-jamali/wingo-engine/internal/domain/error"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/event"
	"github.com/amirhossein-jamali/wingo-engine/internal/domain/port/usecase"
)

// Decide applies an operator decision to a pending request.
//
// Approving a deposit credits the real balance; rejecting a withdrawal refunds
// it. The other two combinations only change the status. Money moves before
// the status does, under references that make a retried decision harmless.
func (s *Service) Decide(ctx context.Context, transactionID string, decision entity.Decision) (*entity.Transaction, error) {
	s.decideMu.Lock()
	defer s.decideMu.Unlock()

	repo := s.uow.GetTransactionRepository(ctx)
	txn, err := repo.GetByID(ctx, transactionID)
	if err != nil {
		return nil, err
	}
	if txn.Status != entity.StatusPending {
		return nil, fmt.Errorf("%w: transaction %s is %s", errs.ErrInvalidState, txn.ID, txn.Status)
	}

	switch {
	case txn.Kind == entity.KindDeposit && decision == entity.DecisionApprove:
		if _, err := s.ledger.Credit(ctx, usecase.Mutation{
			UserID:    txn.UserID,
			Mode:      entity.LedgerReal,
			Amount:    txn.AmountInCents,
			Kind:      entity.EntryDeposit,
			Reference: txn.CreditReference(),
		}); err != nil {
			return nil, fmt.Errorf("failed to credit deposit: %w", err)
		}
	case txn.Kind == entity.KindWithdraw && decision == entity.DecisionReject:
		if err := s.refund(ctx, txn); err != nil {
			return nil, fmt.Errorf("failed to refund withdrawal: %w", err)
		}
	}

	if err := txn.Decide(decision, s.timeProvider); err != nil {
		return nil, err
	}
	changed, err := repo.Decide(ctx, txn.ID, txn.Status, *txn.DecidedAt)
	if err != nil {
		return nil, err
	}
	if !changed {
		return nil, fmt.Errorf("%w: transaction %s was already decided", errs.ErrInvalidState, txn.ID)
	}

	s.logger.Info("Transaction decided", map[string]any{
		"transaction_id": txn.ID,
		"user_id":        txn.UserID,
		"kind":           string(txn.Kind),
		"status":         string(txn.Status),
	})

	s.notifier.Notify(ctx, decisionNotice(txn))
	s.publisher.Publish(ctx, event.TransactionDecided{
		TransactionID: txn.ID,
		UserID:        txn.UserID,
		Kind:          txn.Kind,
		Status:        txn.Status,
		Amount:        txn.AmountInCents,
		DecidedAt:     *txn.DecidedAt,
	})
	return txn, nil
}

func decisionNotice(txn *entity.Transaction) entity.Notification {
	n := entity.Notification{
		UserID: txn.UserID,
		Type:   entity.NotifyInfo,
		Amount: txn.Amount(),
	}
	switch {
	case txn.Kind == entity.KindDeposit && txn.Status == entity.StatusSuccess:
		n.Title, n.Message = "Deposit approved", "The amount was added to your balance"
	case txn.Kind == entity.KindDeposit:
		n.Title, n.Message = "Deposit rejected", "Contact support if you believe this is a mistake"
	case txn.Status == entity.StatusSuccess:
		n.Title, n.Message = "Withdrawal sent", "The payout is on its way to your account"
	default:
		n.Title, n.Message = "Withdrawal rejected", "The amount was returned to your balance"
	}
	return n
}
