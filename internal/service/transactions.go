package service

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	apperrors "serata/internal/errors"
	"serata/internal/feed"
	"serata/internal/logger"
	"serata/internal/metrics"
	"serata/internal/models"
	"serata/internal/repository"
)

// TransactionService records purchases. It never issues or cancels tickets
// on its own; the ticket paths stay with TicketService and the repositories.
type TransactionService struct {
	repos *repository.Repositories
	feed  *feed.Feed
}

func (s *TransactionService) Open(ctx context.Context, req *models.OpenTransactionRequest) (*models.Transaction, error) {
	te, err := s.repos.Events.GetTicketedEventByEventID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, apperrors.NotFound("ticketing for event", req.EventID)
	}
	if te.TicketingStatus != models.TicketingActive {
		return nil, apperrors.Conflict(apperrors.CodeTicketingInactive,
			"ticketing for event %d is %s", req.EventID, te.TicketingStatus)
	}

	txn := &models.Transaction{
		TicketedEventID: te.ID,
		Status:          models.TransactionPending,
		PaymentMethod:   req.PaymentMethod,
	}
	if err := s.repos.Transactions.Create(ctx, txn); err != nil {
		return nil, err
	}

	return txn, nil
}

func (s *TransactionService) Get(ctx context.Context, id int64) (*models.Transaction, error) {
	txn, err := s.repos.Transactions.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if txn == nil {
		return nil, apperrors.NotFound("transaction", id)
	}
	return txn, nil
}

func (s *TransactionService) Attach(ctx context.Context, id int64, req *models.AttachTicketsRequest) (*models.Transaction, error) {
	txn, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	te, err := s.repos.Events.GetTicketedEventByID(ctx, txn.TicketedEventID)
	if err != nil {
		return nil, err
	}
	maxPerUser := 0
	if te != nil {
		maxPerUser = te.MaxTicketsPerUser
	}

	if err := s.repos.Transactions.Attach(ctx, id, req.TicketIDs, maxPerUser); err != nil {
		return nil, err
	}

	return s.Get(ctx, id)
}

func (s *TransactionService) Complete(ctx context.Context, id int64, amount decimal.Decimal) (*models.Transaction, error) {
	txn, err := s.repos.Transactions.Complete(ctx, id, amount)
	if err != nil {
		if apperrors.IsConsistency(err) {
			metrics.ConsistencyFailure()
			logger.Get().Error("Transaction total mismatch", "transaction_id", id, "error", err)
		}
		return nil, err
	}

	metrics.TransactionCompleted()
	if te, terr := s.repos.Events.GetTicketedEventByID(ctx, txn.TicketedEventID); terr == nil && te != nil {
		s.feed.Publish(te.EventID, models.SubjectTransactionComplete, models.TransactionCompletedEvent{
			TransactionID: txn.ID,
			TotalAmount:   txn.TotalAmount,
			TicketsCount:  txn.TicketsCount,
			Timestamp:     time.Now(),
		})
	}

	return txn, nil
}

func (s *TransactionService) Fail(ctx context.Context, id int64, reason string) (*models.Transaction, error) {
	if err := s.repos.Transactions.Fail(ctx, id, reason); err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

func (s *TransactionService) Refund(ctx context.Context, id int64, reason string) (*models.Transaction, error) {
	txn, err := s.repos.Transactions.Refund(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	if te, terr := s.repos.Events.GetTicketedEventByID(ctx, txn.TicketedEventID); terr == nil && te != nil {
		s.feed.Publish(te.EventID, models.SubjectTransactionRefunded, models.TransactionRefundedEvent{
			TransactionID: txn.ID,
			TicketsCount:  txn.TicketsCount,
			Timestamp:     time.Now(),
		})
	}

	return txn, nil
}

// FailStalePending closes pending transactions older than ttl. Used by the
// reaper; returns how many it closed.
func (s *TransactionService) FailStalePending(ctx context.Context, ttl time.Duration) (int, error) {
	ids, err := s.repos.Transactions.StalePending(ctx, time.Now().UTC().Add(-ttl))
	if err != nil {
		return 0, err
	}

	failed := 0
	for _, id := range ids {
		if err := s.repos.Transactions.Fail(ctx, id, "expired"); err != nil {
			logger.Get().Warn("Failed to expire stale transaction", "transaction_id", id, "error", err)
			continue
		}
		failed++
	}

	return failed, nil
}
