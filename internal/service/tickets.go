package service

import (
	"context"
	"time"

	"serata/internal/access"
	"serata/internal/config"
	apperrors "serata/internal/errors"
	"serata/internal/feed"
	"serata/internal/fiscal"
	"serata/internal/logger"
	"serata/internal/metrics"
	"serata/internal/models"
	"serata/internal/repository"
)

// TicketService issues, cancels and validates tickets. Every capacity move
// happens inside a repository transaction; this layer only gates the
// operations and emits observability.
type TicketService struct {
	repos  *repository.Repositories
	feed   *feed.Feed
	fiscal config.FiscalConfig
}

func (s *TicketService) Issue(ctx context.Context, sectorID int64, req *models.IssueTicketRequest) (*models.IssueTicketResponse, error) {
	if !req.TicketType.Valid() {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput,
			"unknown ticket type %q", req.TicketType)
	}

	sector, err := s.repos.Sectors.GetByID(ctx, sectorID)
	if err != nil {
		return nil, err
	}
	if sector == nil {
		return nil, apperrors.NotFound("sector", sectorID)
	}

	te, err := s.repos.Events.GetTicketedEventByID(ctx, sector.TicketedEvent)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, apperrors.NotFound("ticketed event", sector.TicketedEvent)
	}

	if te.TicketingStatus != models.TicketingActive {
		return nil, apperrors.Conflict(apperrors.CodeTicketingInactive,
			"ticketing for event %d is %s", te.EventID, te.TicketingStatus)
	}

	// Nominative events require the holder before any seat is touched.
	if te.Nominative {
		if req.Holder == nil || req.Holder.FirstName == "" || req.Holder.LastName == "" {
			return nil, apperrors.Validation(apperrors.CodeMissingHolderIdentity,
				"this event requires holder first and last name at issuance")
		}
	}

	sealFn := func(ticketedEventID, progressive int64, issuedAt time.Time) string {
		return fiscal.Seal(s.fiscal.SystemCode, ticketedEventID, progressive, issuedAt)
	}

	ticket, err := s.repos.Tickets.Issue(ctx, sectorID, req, sealFn)
	if err != nil {
		if apperrors.CodeOf(err) == apperrors.CodeInsufficientCapacity {
			metrics.CapacityConflict(sector.Name)
		}
		return nil, err
	}

	metrics.TicketIssued(sector.Name)
	s.feed.Publish(te.EventID, models.SubjectTicketIssued, models.TicketIssuedEvent{
		TicketID:    ticket.ID,
		SectorID:    sectorID,
		Progressive: ticket.Progressive,
		Price:       ticket.Price,
		Remaining:   sector.AvailableSeats - 1,
		Timestamp:   time.Now(),
	})

	qr, err := fiscal.QRDataURI(ticket.FiscalSeal, s.fiscal.QRSize)
	if err != nil {
		// The ticket is already committed; a QR rendering failure only
		// degrades the response.
		logger.Get().Error("Failed to render ticket QR", "ticket_id", ticket.ID, "error", err)
		qr = ""
	}

	return &models.IssueTicketResponse{Ticket: *ticket, QRDataURI: qr}, nil
}

func (s *TicketService) Get(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket, err := s.repos.Tickets.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperrors.NotFound("ticket", id)
	}
	return ticket, nil
}

func (s *TicketService) ListByEvent(ctx context.Context, eventID int64, status models.TicketStatus, page, pageSize int) ([]models.Ticket, error) {
	te, err := s.repos.Events.GetTicketedEventByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, apperrors.NotFound("ticketing for event", eventID)
	}
	return s.repos.Tickets.ListByTicketedEvent(ctx, te.ID, status, page, pageSize)
}

func (s *TicketService) Cancel(ctx context.Context, id int64, req *models.CancelTicketRequest) (*models.Ticket, error) {
	ticket, err := s.repos.Tickets.Cancel(ctx, id, req.ReasonCode, req.Note)
	if err != nil {
		return nil, err
	}

	te, terr := s.repos.Events.GetTicketedEventByID(ctx, ticket.TicketedEventID)

	metrics.TicketCancelled(req.ReasonCode)
	if terr == nil && te != nil {
		s.feed.Publish(te.EventID, models.SubjectTicketCancelled, models.TicketCancelledEvent{
			TicketID:   ticket.ID,
			SectorID:   ticket.SectorID,
			ReasonCode: req.ReasonCode,
			Timestamp:  time.Now(),
		})
	}

	return ticket, nil
}

// Use validates a ticket at the gate. The scanner must be assigned to the
// event and allowed on the ticket's sector.
func (s *TicketService) Use(ctx context.Context, id int64, req *models.UseTicketRequest, resolver *ScannerService) (*models.Ticket, error) {
	ticket, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	te, err := s.repos.Events.GetTicketedEventByID(ctx, ticket.TicketedEventID)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, apperrors.NotFound("ticketed event", ticket.TicketedEventID)
	}

	assignment, err := resolver.Resolve(ctx, req.ScannerUserID, te.EventID)
	if err != nil {
		return nil, err
	}
	if !access.CanScan(assignment, ticket.SectorID, access.CapabilityTickets) {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"user %d may not validate tickets in sector %d", req.ScannerUserID, ticket.SectorID)
	}

	used, err := s.repos.Tickets.Use(ctx, id)
	if err != nil {
		return nil, err
	}

	s.feed.Publish(te.EventID, models.SubjectTicketUsed, models.TicketUsedEvent{
		TicketID:  used.ID,
		SectorID:  used.SectorID,
		ScannerID: req.ScannerUserID,
		Timestamp: time.Now(),
	})

	return used, nil
}
