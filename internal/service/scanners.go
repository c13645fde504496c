package service

import (
	"context"

	"serata/internal/cache"
	apperrors "serata/internal/errors"
	"serata/internal/logger"
	"serata/internal/models"
	"serata/internal/repository"
)

// ScannerService manages validation-agent assignments and resolves them on
// the scan hot path, with a Redis read-through cache.
type ScannerService struct {
	repos *repository.Repositories
	cache *cache.Client
}

func (s *ScannerService) Assign(ctx context.Context, req *models.CreateScannerAssignmentRequest) (*models.ScannerAssignment, error) {
	event, err := s.repos.Events.GetByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.NotFound("event", req.EventID)
	}

	assignment := &models.ScannerAssignment{
		UserID:           req.UserID,
		EventID:          req.EventID,
		CanScanLists:     req.CanScanLists,
		CanScanTables:    req.CanScanTables,
		CanScanTickets:   req.CanScanTickets,
		AllowedSectorIDs: req.AllowedSectorIDs,
	}
	if err := s.repos.Scanners.Upsert(ctx, assignment); err != nil {
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateScannerAssignment(ctx, req.UserID, req.EventID); err != nil {
			logger.Get().Warn("Failed to invalidate scanner assignment cache",
				"user_id", req.UserID, "event_id", req.EventID, "error", err)
		}
	}

	return assignment, nil
}

// Resolve returns the assignment for (user, event), or nil when none
// exists. Cache failures fall through to the database.
func (s *ScannerService) Resolve(ctx context.Context, userID, eventID int64) (*models.ScannerAssignment, error) {
	if s.cache != nil {
		if assignment, err := s.cache.GetScannerAssignment(ctx, userID, eventID); err == nil {
			return assignment, nil
		}
	}

	assignment, err := s.repos.Scanners.Get(ctx, userID, eventID)
	if err != nil {
		return nil, err
	}

	if assignment != nil && s.cache != nil {
		if err := s.cache.SetScannerAssignment(ctx, assignment); err != nil {
			logger.Get().Warn("Failed to cache scanner assignment",
				"user_id", userID, "event_id", eventID, "error", err)
		}
	}

	return assignment, nil
}

func (s *ScannerService) Revoke(ctx context.Context, userID, eventID int64) error {
	if err := s.repos.Scanners.Delete(ctx, userID, eventID); err != nil {
		return err
	}

	if s.cache != nil {
		if err := s.cache.InvalidateScannerAssignment(ctx, userID, eventID); err != nil {
			logger.Get().Warn("Failed to invalidate scanner assignment cache",
				"user_id", userID, "event_id", eventID, "error", err)
		}
	}

	return nil
}
