package repository

import (
	"context"
	"database/sql"

	"serata/internal/database"
	apperrors "serata/internal/errors"
	"serata/internal/models"
)

type SectorRepository struct {
	db *database.DB
}

func NewSectorRepository(db *database.DB) *SectorRepository {
	return &SectorRepository{db: db}
}

func (r *SectorRepository) Create(ctx context.Context, sector *models.Sector) error {
	query := `
		INSERT INTO sectors (ticketed_event_id, name, capacity, available_seats, price_intero, price_ridotto, active)
		VALUES ($1, $2, $3, $3, $4, $5, $6)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		sector.TicketedEvent,
		sector.Name,
		sector.Capacity,
		sector.PriceIntero,
		sector.PriceRidotto,
		sector.Active,
	).Scan(&sector.ID, &sector.CreatedAt, &sector.UpdatedAt)
}

func (r *SectorRepository) GetByID(ctx context.Context, id int64) (*models.Sector, error) {
	sector := &models.Sector{}
	query := `
		SELECT id, ticketed_event_id, name, capacity, available_seats,
		       price_intero, price_ridotto, active, created_at, updated_at
		FROM sectors
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&sector.ID,
		&sector.TicketedEvent,
		&sector.Name,
		&sector.Capacity,
		&sector.AvailableSeats,
		&sector.PriceIntero,
		&sector.PriceRidotto,
		&sector.Active,
		&sector.CreatedAt,
		&sector.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return sector, err
}

func (r *SectorRepository) ListByTicketedEvent(ctx context.Context, ticketedEventID int64) ([]models.Sector, error) {
	query := `
		SELECT id, ticketed_event_id, name, capacity, available_seats,
		       price_intero, price_ridotto, active, created_at, updated_at
		FROM sectors
		WHERE ticketed_event_id = $1
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query, ticketedEventID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sectors []models.Sector
	for rows.Next() {
		var s models.Sector
		err := rows.Scan(
			&s.ID,
			&s.TicketedEvent,
			&s.Name,
			&s.Capacity,
			&s.AvailableSeats,
			&s.PriceIntero,
			&s.PriceRidotto,
			&s.Active,
			&s.CreatedAt,
			&s.UpdatedAt,
		)
		if err != nil {
			return nil, err
		}
		sectors = append(sectors, s)
	}

	return sectors, rows.Err()
}

// CapacitySum returns the sum of sector capacities for the ticketed event,
// used to keep the sum within the event's total capacity.
func (r *SectorRepository) CapacitySum(ctx context.Context, ticketedEventID int64) (int, error) {
	var sum int
	err := r.db.QueryRowContext(ctx,
		`SELECT COALESCE(SUM(capacity), 0) FROM sectors WHERE ticketed_event_id = $1`,
		ticketedEventID,
	).Scan(&sum)
	return sum, err
}

// Resize changes the sector capacity while holding the row lock. Shrinking
// below the sold count is refused; available seats move by the same delta as
// capacity so sold seats are untouched.
func (r *SectorRepository) Resize(ctx context.Context, id int64, newCapacity int) (*models.Sector, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	sector := &models.Sector{}
	err = tx.QueryRowContext(ctx, `
		SELECT id, ticketed_event_id, name, capacity, available_seats,
		       price_intero, price_ridotto, active, created_at, updated_at
		FROM sectors
		WHERE id = $1
		FOR UPDATE`, id).Scan(
		&sector.ID,
		&sector.TicketedEvent,
		&sector.Name,
		&sector.Capacity,
		&sector.AvailableSeats,
		&sector.PriceIntero,
		&sector.PriceRidotto,
		&sector.Active,
		&sector.CreatedAt,
		&sector.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("sector", id)
	}
	if err != nil {
		return nil, err
	}

	sold := sector.Capacity - sector.AvailableSeats
	if newCapacity < sold {
		return nil, apperrors.Conflict(apperrors.CodeBelowSoldCount,
			"sector %d has %d sold seats, cannot shrink capacity to %d", id, sold, newCapacity)
	}

	err = tx.QueryRowContext(ctx, `
		UPDATE sectors
		SET capacity = $1, available_seats = $2, updated_at = NOW()
		WHERE id = $3
		RETURNING capacity, available_seats, updated_at`,
		newCapacity, newCapacity-sold, id,
	).Scan(&sector.Capacity, &sector.AvailableSeats, &sector.UpdatedAt)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return sector, nil
}

// SetActive toggles sales for the sector. Issued tickets are unaffected.
func (r *SectorRepository) SetActive(ctx context.Context, id int64, active bool) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE sectors SET active = $1, updated_at = NOW() WHERE id = $2`,
		active, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFound("sector", id)
	}

	return nil
}

func (r *SectorRepository) UpdatePrices(ctx context.Context, id int64, sector *models.UpdateSectorRequest) error {
	query := `
		UPDATE sectors
		SET price_intero = COALESCE($1, price_intero),
		    price_ridotto = COALESCE($2, price_ridotto),
		    updated_at = NOW()
		WHERE id = $3`

	res, err := r.db.ExecContext(ctx, query, sector.PriceIntero, sector.PriceRidotto, id)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return apperrors.NotFound("sector", id)
	}

	return nil
}
