package repository

import (
	"context"
	"database/sql"
	"fmt"

	"serata/internal/database"
	apperrors "serata/internal/errors"
	"serata/internal/models"
)

type EventRepository struct {
	db *database.DB
}

func NewEventRepository(db *database.DB) *EventRepository {
	return &EventRepository{db: db}
}

func (r *EventRepository) Create(ctx context.Context, event *models.Event) error {
	query := `
		INSERT INTO events (name, starts_at, ends_at, status, is_public, organizer)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		event.Name,
		event.StartsAt,
		event.EndsAt,
		event.Status,
		event.IsPublic,
		event.Organizer,
	).Scan(&event.ID, &event.CreatedAt, &event.UpdatedAt)
}

func (r *EventRepository) GetByID(ctx context.Context, id int64) (*models.Event, error) {
	event := &models.Event{}
	query := `
		SELECT id, name, starts_at, ends_at, status, is_public, organizer, created_at, updated_at
		FROM events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&event.ID,
		&event.Name,
		&event.StartsAt,
		&event.EndsAt,
		&event.Status,
		&event.IsPublic,
		&event.Organizer,
		&event.CreatedAt,
		&event.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return event, err
}

func (r *EventRepository) List(ctx context.Context, query, date string, page, pageSize int) ([]models.Event, error) {
	var events []models.Event
	var args []interface{}
	argIndex := 1

	sqlQuery := `
		SELECT id, name, starts_at, ends_at, status, is_public, organizer, created_at, updated_at
		FROM events
		WHERE 1=1`

	if query != "" {
		sqlQuery += fmt.Sprintf(" AND name ILIKE $%d", argIndex)
		args = append(args, "%"+query+"%")
		argIndex++
	}

	if date != "" {
		sqlQuery += fmt.Sprintf(" AND DATE(starts_at) = $%d", argIndex)
		args = append(args, date)
		argIndex++
	}

	sqlQuery += " ORDER BY id"

	if page > 0 && pageSize > 0 {
		offset := (page - 1) * pageSize
		sqlQuery += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, pageSize, offset)
	}

	rows, err := r.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var event models.Event
		err := rows.Scan(
			&event.ID,
			&event.Name,
			&event.StartsAt,
			&event.EndsAt,
			&event.Status,
			&event.IsPublic,
			&event.Organizer,
			&event.CreatedAt,
			&event.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		events = append(events, event)
	}

	return events, rows.Err()
}

// AdvanceStatus moves the event from to next. The conditional update makes
// concurrent advances race safely: the loser matches zero rows.
func (r *EventRepository) AdvanceStatus(ctx context.Context, id int64, from, to models.EventStatus) error {
	query := `UPDATE events SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3`

	res, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.State(apperrors.CodeNoTransitionDefined,
			"event %d is no longer in status %s", id, from)
	}

	return nil
}

// Delete removes the event; owned ticketing rows go with it via cascade.
func (r *EventRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM events WHERE id = $1`, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFound("event", id)
	}

	return nil
}

func (r *EventRepository) CreateTicketedEvent(ctx context.Context, te *models.TicketedEvent) error {
	query := `
		INSERT INTO ticketed_events
			(event_id, total_capacity, max_tickets_per_user, ticketing_status,
			 allows_change_name, allows_resale, nominative)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, tickets_sold, tickets_cancelled, total_revenue, next_progressive, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		te.EventID,
		te.TotalCapacity,
		te.MaxTicketsPerUser,
		te.TicketingStatus,
		te.AllowsChangeName,
		te.AllowsResale,
		te.Nominative,
	).Scan(&te.ID, &te.TicketsSold, &te.TicketsCancelled, &te.TotalRevenue,
		&te.NextProgressive, &te.CreatedAt, &te.UpdatedAt)
}

func (r *EventRepository) GetTicketedEventByEventID(ctx context.Context, eventID int64) (*models.TicketedEvent, error) {
	te := &models.TicketedEvent{}
	query := `
		SELECT id, event_id, total_capacity, max_tickets_per_user, ticketing_status,
		       tickets_sold, tickets_cancelled, total_revenue,
		       allows_change_name, allows_resale, nominative, next_progressive,
		       created_at, updated_at
		FROM ticketed_events
		WHERE event_id = $1`

	err := r.db.QueryRowContext(ctx, query, eventID).Scan(
		&te.ID,
		&te.EventID,
		&te.TotalCapacity,
		&te.MaxTicketsPerUser,
		&te.TicketingStatus,
		&te.TicketsSold,
		&te.TicketsCancelled,
		&te.TotalRevenue,
		&te.AllowsChangeName,
		&te.AllowsResale,
		&te.Nominative,
		&te.NextProgressive,
		&te.CreatedAt,
		&te.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return te, err
}

func (r *EventRepository) GetTicketedEventByID(ctx context.Context, id int64) (*models.TicketedEvent, error) {
	te := &models.TicketedEvent{}
	query := `
		SELECT id, event_id, total_capacity, max_tickets_per_user, ticketing_status,
		       tickets_sold, tickets_cancelled, total_revenue,
		       allows_change_name, allows_resale, nominative, next_progressive,
		       created_at, updated_at
		FROM ticketed_events
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&te.ID,
		&te.EventID,
		&te.TotalCapacity,
		&te.MaxTicketsPerUser,
		&te.TicketingStatus,
		&te.TicketsSold,
		&te.TicketsCancelled,
		&te.TotalRevenue,
		&te.AllowsChangeName,
		&te.AllowsResale,
		&te.Nominative,
		&te.NextProgressive,
		&te.CreatedAt,
		&te.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return te, err
}

// UpdateTicketingStatus flips active/suspended. Pure availability gate: no
// seat is reserved or released here.
func (r *EventRepository) UpdateTicketingStatus(ctx context.Context, id int64, from, to models.TicketingStatus) error {
	query := `UPDATE ticketed_events SET ticketing_status = $1, updated_at = NOW() WHERE id = $2 AND ticketing_status = $3`

	res, err := r.db.ExecContext(ctx, query, to, id, from)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.State(apperrors.CodeNoTransitionDefined,
			"ticketing %d is no longer in status %s", id, from)
	}

	return nil
}

func (r *EventRepository) UpdateTicketingFlags(ctx context.Context, id int64, allowsChangeName, allowsResale *bool) error {
	query := `
		UPDATE ticketed_events
		SET allows_change_name = COALESCE($1, allows_change_name),
		    allows_resale = COALESCE($2, allows_resale),
		    updated_at = NOW()
		WHERE id = $3`

	_, err := r.db.ExecContext(ctx, query, allowsChangeName, allowsResale, id)
	return err
}
