package service

import (
	"context"

	apperrors "serata/internal/errors"
	"serata/internal/feed"
	"serata/internal/models"
	"serata/internal/repository"
)

// SectorService manages the capacity buckets of a ticketed event. The sum
// of sector capacities may never exceed the event's total capacity.
type SectorService struct {
	repos *repository.Repositories
	feed  *feed.Feed
}

func (s *SectorService) Create(ctx context.Context, eventID int64, req *models.CreateSectorRequest) (*models.Sector, error) {
	te, err := s.repos.Events.GetTicketedEventByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, apperrors.NotFound("ticketing for event", eventID)
	}

	sum, err := s.repos.Sectors.CapacitySum(ctx, te.ID)
	if err != nil {
		return nil, err
	}
	if sum+req.Capacity > te.TotalCapacity {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput,
			"sector capacities would total %d, exceeding the event capacity of %d",
			sum+req.Capacity, te.TotalCapacity)
	}

	if req.PriceIntero.IsNegative() || req.PriceRidotto.IsNegative() {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput,
			"prices must not be negative")
	}

	sector := &models.Sector{
		TicketedEvent: te.ID,
		Name:          req.Name,
		Capacity:      req.Capacity,
		PriceIntero:   req.PriceIntero,
		PriceRidotto:  req.PriceRidotto,
		Active:        true,
	}
	sector.AvailableSeats = req.Capacity

	if err := s.repos.Sectors.Create(ctx, sector); err != nil {
		return nil, err
	}

	return sector, nil
}

func (s *SectorService) Get(ctx context.Context, id int64) (*models.Sector, error) {
	sector, err := s.repos.Sectors.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sector == nil {
		return nil, apperrors.NotFound("sector", id)
	}
	return sector, nil
}

func (s *SectorService) ListByEvent(ctx context.Context, eventID int64) ([]models.Sector, error) {
	te, err := s.repos.Events.GetTicketedEventByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, apperrors.NotFound("ticketing for event", eventID)
	}
	return s.repos.Sectors.ListByTicketedEvent(ctx, te.ID)
}

// Update applies a capacity resize, an active toggle and price changes, in
// that order. Resizing below the sold count is refused by the repository.
func (s *SectorService) Update(ctx context.Context, id int64, req *models.UpdateSectorRequest) (*models.Sector, error) {
	sector, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, apperrors.Validation(apperrors.CodeInvalidInput,
				"capacity must not be negative")
		}

		te, err := s.ticketedEventByID(ctx, sector.TicketedEvent)
		if err != nil {
			return nil, err
		}
		sum, err := s.repos.Sectors.CapacitySum(ctx, sector.TicketedEvent)
		if err != nil {
			return nil, err
		}
		if sum-sector.Capacity+*req.Capacity > te.TotalCapacity {
			return nil, apperrors.Validation(apperrors.CodeInvalidInput,
				"sector capacities would total %d, exceeding the event capacity of %d",
				sum-sector.Capacity+*req.Capacity, te.TotalCapacity)
		}

		sector, err = s.repos.Sectors.Resize(ctx, id, *req.Capacity)
		if err != nil {
			return nil, err
		}
	}

	if req.Active != nil {
		if err := s.repos.Sectors.SetActive(ctx, id, *req.Active); err != nil {
			return nil, err
		}
		sector.Active = *req.Active
	}

	if req.PriceIntero != nil || req.PriceRidotto != nil {
		if req.PriceIntero != nil && req.PriceIntero.IsNegative() ||
			req.PriceRidotto != nil && req.PriceRidotto.IsNegative() {
			return nil, apperrors.Validation(apperrors.CodeInvalidInput,
				"prices must not be negative")
		}
		if err := s.repos.Sectors.UpdatePrices(ctx, id, req); err != nil {
			return nil, err
		}
		if req.PriceIntero != nil {
			sector.PriceIntero = *req.PriceIntero
		}
		if req.PriceRidotto != nil {
			sector.PriceRidotto = *req.PriceRidotto
		}
	}

	return sector, nil
}

func (s *SectorService) ticketedEventByID(ctx context.Context, id int64) (*models.TicketedEvent, error) {
	te, err := s.repos.Events.GetTicketedEventByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, apperrors.NotFound("ticketed event", id)
	}
	return te, nil
}
