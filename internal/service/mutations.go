package service

import (
	"context"
	"time"

	"serata/internal/config"
	apperrors "serata/internal/errors"
	"serata/internal/feed"
	"serata/internal/models"
	"serata/internal/repository"
)

// MutationService covers post-sale holder changes: name changes for a fee
// and resale listings. Both leave the capacity ledger untouched.
type MutationService struct {
	repos  *repository.Repositories
	feed   *feed.Feed
	fiscal config.FiscalConfig
}

func (s *MutationService) ticketWithEvent(ctx context.Context, ticketID int64) (*models.Ticket, *models.TicketedEvent, error) {
	ticket, err := s.repos.Tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, nil, err
	}
	if ticket == nil {
		return nil, nil, apperrors.NotFound("ticket", ticketID)
	}

	te, err := s.repos.Events.GetTicketedEventByID(ctx, ticket.TicketedEventID)
	if err != nil {
		return nil, nil, err
	}
	if te == nil {
		return nil, nil, apperrors.NotFound("ticketed event", ticket.TicketedEventID)
	}

	return ticket, te, nil
}

func (s *MutationService) CreateNameChange(ctx context.Context, req *models.CreateNameChangeRequest) (*models.NameChange, error) {
	if req.NewHolder.FirstName == "" || req.NewHolder.LastName == "" {
		return nil, apperrors.Validation(apperrors.CodeMissingHolderIdentity,
			"new holder requires first and last name")
	}

	ticket, te, err := s.ticketWithEvent(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}

	if !te.AllowsChangeName {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"event %d does not allow name changes", te.EventID)
	}
	if ticket.Status != models.TicketValid {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"ticket %d is %s, holder can no longer change", ticket.ID, ticket.Status)
	}
	if ticket.Holder == nil {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"ticket %d is not nominative", ticket.ID)
	}

	nc := &models.NameChange{
		TicketID:  req.TicketID,
		OldHolder: *ticket.Holder,
		NewHolder: req.NewHolder,
		Fee:       s.fiscal.NameChangeFee,
		Status:    models.NameChangePending,
	}
	if err := s.repos.Mutations.CreateNameChange(ctx, nc); err != nil {
		return nil, err
	}

	return nc, nil
}

func (s *MutationService) GetNameChange(ctx context.Context, id int64) (*models.NameChange, error) {
	nc, err := s.repos.Mutations.GetNameChange(ctx, id)
	if err != nil {
		return nil, err
	}
	if nc == nil {
		return nil, apperrors.NotFound("name change", id)
	}
	return nc, nil
}

func (s *MutationService) ApproveNameChange(ctx context.Context, id int64) (*models.NameChange, error) {
	nc, err := s.repos.Mutations.ApproveNameChange(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, te, terr := s.ticketWithEvent(ctx, nc.TicketID); terr == nil {
		s.feed.Publish(te.EventID, models.SubjectNameChangeCompleted, models.NameChangeCompletedEvent{
			NameChangeID: nc.ID,
			TicketID:     nc.TicketID,
			Timestamp:    time.Now(),
		})
	}

	return nc, nil
}

func (s *MutationService) RejectNameChange(ctx context.Context, id int64, reason string) (*models.NameChange, error) {
	if err := s.repos.Mutations.RejectNameChange(ctx, id, reason); err != nil {
		return nil, err
	}
	return s.GetNameChange(ctx, id)
}

func (s *MutationService) CreateResale(ctx context.Context, req *models.CreateResaleRequest) (*models.Resale, error) {
	if !req.Causale.Valid() {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput,
			"unknown causale %q", req.Causale)
	}
	if req.Price.IsNegative() {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput,
			"price must not be negative")
	}

	ticket, te, err := s.ticketWithEvent(ctx, req.TicketID)
	if err != nil {
		return nil, err
	}

	if !te.AllowsResale {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"event %d does not allow resale", te.EventID)
	}
	if ticket.Status != models.TicketValid {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"ticket %d is %s and cannot be listed", ticket.ID, ticket.Status)
	}
	// Resale is capped at face value.
	if req.Price.GreaterThan(ticket.Price) {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput,
			"asking price %s exceeds face value %s", req.Price.String(), ticket.Price.String())
	}

	resale := &models.Resale{
		TicketID:       req.TicketID,
		Price:          req.Price,
		Causale:        req.Causale,
		Status:         models.ResaleListed,
		SellerVerified: ticket.Holder != nil,
	}
	if err := s.repos.Mutations.CreateResale(ctx, resale); err != nil {
		return nil, err
	}

	s.feed.Publish(te.EventID, models.SubjectResaleListed, models.ResaleListedEvent{
		ResaleID:  resale.ID,
		TicketID:  resale.TicketID,
		Price:     resale.Price,
		Causale:   resale.Causale,
		Timestamp: time.Now(),
	})

	return resale, nil
}

func (s *MutationService) GetResale(ctx context.Context, id int64) (*models.Resale, error) {
	resale, err := s.repos.Mutations.GetResale(ctx, id)
	if err != nil {
		return nil, err
	}
	if resale == nil {
		return nil, apperrors.NotFound("resale", id)
	}
	return resale, nil
}

func (s *MutationService) CompleteResale(ctx context.Context, id int64, buyer models.HolderIdentity) (*models.Resale, error) {
	if buyer.FirstName == "" || buyer.LastName == "" {
		return nil, apperrors.Validation(apperrors.CodeMissingHolderIdentity,
			"buyer requires first and last name")
	}

	resale, err := s.repos.Mutations.CompleteResale(ctx, id, buyer)
	if err != nil {
		return nil, err
	}

	if _, te, terr := s.ticketWithEvent(ctx, resale.TicketID); terr == nil {
		s.feed.Publish(te.EventID, models.SubjectResaleSold, models.ResaleSoldEvent{
			ResaleID:  resale.ID,
			TicketID:  resale.TicketID,
			Timestamp: time.Now(),
		})
	}

	return resale, nil
}

func (s *MutationService) CancelResale(ctx context.Context, id int64) (*models.Resale, error) {
	if err := s.repos.Mutations.CloseResale(ctx, id, models.ResaleCancelled); err != nil {
		return nil, err
	}
	return s.GetResale(ctx, id)
}

// ExpireResales closes listings older than the window. Used by the reaper.
func (s *MutationService) ExpireResales(ctx context.Context, window time.Duration) (int, error) {
	n, err := s.repos.Mutations.ExpireListedBefore(ctx, time.Now().UTC().Add(-window))
	return int(n), err
}
