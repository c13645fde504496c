package service

import (
	"context"
	"time"

	"serata/internal/cache"
	apperrors "serata/internal/errors"
	"serata/internal/feed"
	"serata/internal/logger"
	"serata/internal/models"
	"serata/internal/repository"
	"serata/internal/search"
)

// EventService owns the event lifecycle and the ticketing configuration
// attached to it.
type EventService struct {
	repos  *repository.Repositories
	feed   *feed.Feed
	cache  *cache.Client
	search *search.ElasticsearchClient
}

func (s *EventService) Create(ctx context.Context, req *models.CreateEventRequest) (*models.Event, error) {
	if !req.EndsAt.After(req.StartsAt) {
		return nil, apperrors.Validation(apperrors.CodeInvalidInput,
			"event must end after it starts")
	}

	event := &models.Event{
		Name:      req.Name,
		StartsAt:  req.StartsAt,
		EndsAt:    req.EndsAt,
		Status:    models.EventDraft,
		IsPublic:  req.IsPublic,
		Organizer: req.Organizer,
	}

	if err := s.repos.Events.Create(ctx, event); err != nil {
		return nil, err
	}

	s.invalidateListCache(ctx)
	s.indexEvent(ctx, event)

	return event, nil
}

func (s *EventService) Get(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.repos.Events.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if event == nil {
		return nil, apperrors.NotFound("event", id)
	}
	return event, nil
}

func (s *EventService) List(ctx context.Context, query, date string, page, pageSize int) ([]models.Event, error) {
	// Full-text queries go to Elasticsearch when available; plain listing
	// stays on Postgres.
	if query != "" && s.search != nil {
		events, err := s.search.Search(ctx, query, date, page, pageSize)
		if err == nil {
			return events, nil
		}
		logger.Get().Warn("Search fell back to database", "error", err)
	}

	return s.repos.Events.List(ctx, query, date, page, pageSize)
}

// Advance moves the event one step forward in its lifecycle. There is no
// backward transition; closed is terminal.
func (s *EventService) Advance(ctx context.Context, id int64) (*models.Event, error) {
	event, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	next, ok := event.Status.Next()
	if !ok {
		return nil, apperrors.State(apperrors.CodeNoTransitionDefined,
			"event %d is %s, no further transition exists", id, event.Status)
	}

	if err := s.repos.Events.AdvanceStatus(ctx, id, event.Status, next); err != nil {
		return nil, err
	}
	event.Status = next

	// Closing the event closes ticketing with it.
	if next == models.EventClosed {
		if te, err := s.repos.Events.GetTicketedEventByEventID(ctx, id); err == nil && te != nil {
			if te.TicketingStatus == models.TicketingActive || te.TicketingStatus == models.TicketingSuspended {
				if err := s.repos.Events.UpdateTicketingStatus(ctx, te.ID, te.TicketingStatus, models.TicketingClosed); err != nil {
					logger.Get().Error("Failed to close ticketing with event", "event_id", id, "error", err)
				}
			}
		}
	}

	s.invalidateListCache(ctx)
	s.indexEvent(ctx, event)
	s.feed.Publish(id, models.SubjectEventAdvanced, models.EventAdvancedEvent{
		EventID:   id,
		Status:    next,
		Timestamp: time.Now(),
	})

	return event, nil
}

// Delete removes an event and everything under it via cascade. It is limited
// to drafts: once an event is scheduled, tickets carrying fiscal seals may
// exist and their progressives must stay on record, so later states can only
// advance to closed.
func (s *EventService) Delete(ctx context.Context, id int64) error {
	event, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if event.Status != models.EventDraft {
		return apperrors.Conflict(apperrors.CodeNotAllowed,
			"only draft events can be deleted, event %d is %s", id, event.Status)
	}

	if err := s.repos.Events.Delete(ctx, id); err != nil {
		return err
	}

	s.invalidateListCache(ctx)
	if s.search != nil {
		if err := s.search.DeleteEvent(ctx, id); err != nil {
			logger.Get().Warn("Failed to remove event from search index", "event_id", id, "error", err)
		}
	}

	return nil
}

// ActivateTicketing creates the ticketed-event record for an event. One per
// event; activating twice is a conflict.
func (s *EventService) ActivateTicketing(ctx context.Context, eventID int64, req *models.ActivateTicketingRequest) (*models.TicketedEvent, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if event.Status == models.EventClosed {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"event %d is closed", eventID)
	}

	existing, err := s.repos.Events.GetTicketedEventByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"event %d already has ticketing", eventID)
	}

	te := &models.TicketedEvent{
		EventID:           eventID,
		TotalCapacity:     req.TotalCapacity,
		MaxTicketsPerUser: req.MaxTicketsPerUser,
		TicketingStatus:   models.TicketingActive,
		AllowsChangeName:  req.AllowsChangeName,
		AllowsResale:      req.AllowsResale,
		Nominative:        req.Nominative,
	}

	if err := s.repos.Events.CreateTicketedEvent(ctx, te); err != nil {
		return nil, err
	}

	s.feed.Publish(eventID, models.SubjectTicketingChanged, models.TicketingChangedEvent{
		EventID:   eventID,
		Status:    te.TicketingStatus,
		Timestamp: time.Now(),
	})

	return te, nil
}

func (s *EventService) GetTicketing(ctx context.Context, eventID int64) (*models.TicketedEvent, error) {
	te, err := s.repos.Events.GetTicketedEventByEventID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if te == nil {
		return nil, apperrors.NotFound("ticketing for event", eventID)
	}
	return te, nil
}

// UpdateTicketing applies a suspend/resume action and flag changes.
// Suspending blocks new issues but never touches issued tickets or seats.
func (s *EventService) UpdateTicketing(ctx context.Context, eventID int64, req *models.UpdateTicketingRequest) (*models.TicketedEvent, error) {
	event, err := s.Get(ctx, eventID)
	if err != nil {
		return nil, err
	}

	te, err := s.GetTicketing(ctx, eventID)
	if err != nil {
		return nil, err
	}

	switch req.Action {
	case "":
		// Flags only.
	case "suspend":
		if !te.TicketingStatus.CanSuspend(event.Status) {
			return nil, apperrors.State(apperrors.CodeNoTransitionDefined,
				"ticketing for event %d cannot be suspended while %s", eventID, te.TicketingStatus)
		}
		if err := s.repos.Events.UpdateTicketingStatus(ctx, te.ID, te.TicketingStatus, models.TicketingSuspended); err != nil {
			return nil, err
		}
		te.TicketingStatus = models.TicketingSuspended
	case "resume":
		if !te.TicketingStatus.CanResume(event.Status) {
			return nil, apperrors.State(apperrors.CodeNoTransitionDefined,
				"ticketing for event %d cannot be resumed while %s", eventID, te.TicketingStatus)
		}
		if err := s.repos.Events.UpdateTicketingStatus(ctx, te.ID, te.TicketingStatus, models.TicketingActive); err != nil {
			return nil, err
		}
		te.TicketingStatus = models.TicketingActive
	default:
		return nil, apperrors.Validation(apperrors.CodeInvalidInput,
			"unknown action %q", req.Action)
	}

	if req.AllowsChangeName != nil || req.AllowsResale != nil {
		if err := s.repos.Events.UpdateTicketingFlags(ctx, te.ID, req.AllowsChangeName, req.AllowsResale); err != nil {
			return nil, err
		}
		if req.AllowsChangeName != nil {
			te.AllowsChangeName = *req.AllowsChangeName
		}
		if req.AllowsResale != nil {
			te.AllowsResale = *req.AllowsResale
		}
	}

	if req.Action != "" {
		s.feed.Publish(eventID, models.SubjectTicketingChanged, models.TicketingChangedEvent{
			EventID:   eventID,
			Status:    te.TicketingStatus,
			Timestamp: time.Now(),
		})
	}

	return te, nil
}

// CachedList returns the cached JSON body for an events page, if present.
func (s *EventService) CachedList(ctx context.Context, page, pageSize int) ([]byte, bool) {
	if s.cache == nil {
		return nil, false
	}
	raw, err := s.cache.GetEventsListRaw(ctx, page, pageSize)
	if err != nil {
		return nil, false
	}
	return raw, true
}

// StoreList caches a rendered events page. Best-effort.
func (s *EventService) StoreList(ctx context.Context, page, pageSize int, response any) {
	if s.cache == nil {
		return
	}
	if err := s.cache.SetEventsList(ctx, page, pageSize, response); err != nil {
		logger.Get().Warn("Failed to cache events list", "error", err)
	}
}

func (s *EventService) invalidateListCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateEventsList(ctx); err != nil {
		logger.Get().Warn("Failed to invalidate events list cache", "error", err)
	}
}

func (s *EventService) indexEvent(ctx context.Context, event *models.Event) {
	if s.search == nil || !event.IsPublic {
		return
	}
	if err := s.search.IndexEvent(ctx, event); err != nil {
		logger.Get().Warn("Failed to index event", "event_id", event.ID, "error", err)
	}
}
