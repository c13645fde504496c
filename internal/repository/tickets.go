package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"serata/internal/database"
	apperrors "serata/internal/errors"
	"serata/internal/models"
)

// SealFunc computes the fiscal seal for a ticket once its progressive number
// is known. It runs inside the issue transaction and must not block.
type SealFunc func(ticketedEventID, progressive int64, issuedAt time.Time) string

type TicketRepository struct {
	db *database.DB
}

func NewTicketRepository(db *database.DB) *TicketRepository {
	return &TicketRepository{db: db}
}

// Issue atomically sells one seat: the sector row is locked, the seat is
// decremented, the gapless progressive is drawn from the ticketed event and
// the ticket row is inserted, all in one transaction. Concurrent issues
// against the same sector serialize on the row lock, so availability can
// never go negative and progressives never collide.
func (r *TicketRepository) Issue(ctx context.Context, sectorID int64, req *models.IssueTicketRequest, sealFn SealFunc) (*models.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		ticketedEventID int64
		available       int
		active          bool
		priceIntero     decimal.Decimal
		priceRidotto    decimal.Decimal
	)
	err = tx.QueryRowContext(ctx, `
		SELECT ticketed_event_id, available_seats, active, price_intero, price_ridotto
		FROM sectors
		WHERE id = $1
		FOR UPDATE`, sectorID).Scan(&ticketedEventID, &available, &active, &priceIntero, &priceRidotto)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("sector", sectorID)
	}
	if err != nil {
		return nil, err
	}

	if !active {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"sector %d is not on sale", sectorID)
	}
	if available < 1 {
		return nil, apperrors.Conflict(apperrors.CodeInsufficientCapacity,
			"sector %d has no seats left", sectorID)
	}

	price := priceIntero
	if req.TicketType == models.TicketRidotto {
		price = priceRidotto
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sectors SET available_seats = available_seats - 1, updated_at = NOW() WHERE id = $1`,
		sectorID); err != nil {
		return nil, err
	}

	var progressive int64
	err = tx.QueryRowContext(ctx, `
		UPDATE ticketed_events
		SET next_progressive = next_progressive + 1,
		    tickets_sold = tickets_sold + 1,
		    total_revenue = total_revenue + $1,
		    updated_at = NOW()
		WHERE id = $2
		RETURNING next_progressive`, price, ticketedEventID).Scan(&progressive)
	if err != nil {
		return nil, err
	}

	issuedAt := time.Now().UTC()
	ticket := &models.Ticket{
		SectorID:        sectorID,
		TicketedEventID: ticketedEventID,
		Progressive:     progressive,
		TicketType:      req.TicketType,
		Status:          models.TicketValid,
		Holder:          req.Holder,
		Price:           price,
		FiscalSeal:      sealFn(ticketedEventID, progressive, issuedAt),
		IssuedAt:        issuedAt,
	}

	var firstName, lastName, document *string
	if req.Holder != nil {
		firstName = &req.Holder.FirstName
		lastName = &req.Holder.LastName
		if req.Holder.Document != "" {
			document = &req.Holder.Document
		}
	}

	err = tx.QueryRowContext(ctx, `
		INSERT INTO tickets
			(sector_id, ticketed_event_id, progressive, ticket_type, status,
			 holder_first_name, holder_last_name, holder_document,
			 price, fiscal_seal, issued_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING id`,
		ticket.SectorID, ticket.TicketedEventID, ticket.Progressive,
		ticket.TicketType, ticket.Status,
		firstName, lastName, document,
		ticket.Price, ticket.FiscalSeal, ticket.IssuedAt,
	).Scan(&ticket.ID)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return ticket, nil
}

// Cancel voids a valid ticket and returns its seat to the sector. Used
// tickets are immutable and a second cancel is refused, so the seat can
// never be released twice.
func (r *TicketRepository) Cancel(ctx context.Context, ticketID int64, reasonCode string, note *string) (*models.Ticket, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	ticket, err := scanTicketForUpdate(ctx, tx, ticketID)
	if err != nil {
		return nil, err
	}

	switch ticket.Status {
	case models.TicketUsed:
		return nil, apperrors.Conflict(apperrors.CodeTicketUsed,
			"ticket %d was already used", ticketID)
	case models.TicketCancelled:
		return nil, apperrors.Conflict(apperrors.CodeAlreadyCancelled,
			"ticket %d is already cancelled", ticketID)
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE tickets
		SET status = $1, cancel_reason = $2, cancel_note = $3, cancelled_at = $4
		WHERE id = $5`,
		models.TicketCancelled, reasonCode, note, now, ticketID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE sectors SET available_seats = available_seats + 1, updated_at = NOW() WHERE id = $1`,
		ticket.SectorID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE ticketed_events
		SET tickets_sold = tickets_sold - 1,
		    tickets_cancelled = tickets_cancelled + 1,
		    total_revenue = total_revenue - $1,
		    updated_at = NOW()
		WHERE id = $2`,
		ticket.Price, ticket.TicketedEventID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	ticket.Status = models.TicketCancelled
	ticket.CancelReason = &reasonCode
	ticket.CancelNote = note
	ticket.CancelledAt = &now

	return ticket, nil
}

// Use marks a valid ticket as used at the gate. The conditional update is
// the whole race guard: of two concurrent scans only one matches the row.
func (r *TicketRepository) Use(ctx context.Context, ticketID int64) (*models.Ticket, error) {
	now := time.Now().UTC()
	res, err := r.db.ExecContext(ctx, `
		UPDATE tickets
		SET status = $1, used_at = $2
		WHERE id = $3 AND status = $4`,
		models.TicketUsed, now, ticketID, models.TicketValid)
	if err != nil {
		return nil, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 1 {
		return r.GetByID(ctx, ticketID)
	}

	ticket, err := r.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}
	if ticket == nil {
		return nil, apperrors.NotFound("ticket", ticketID)
	}
	switch ticket.Status {
	case models.TicketUsed:
		return nil, apperrors.Conflict(apperrors.CodeTicketUsed,
			"ticket %d was already used", ticketID)
	default:
		return nil, apperrors.Conflict(apperrors.CodeAlreadyCancelled,
			"ticket %d is cancelled", ticketID)
	}
}

func (r *TicketRepository) GetByID(ctx context.Context, id int64) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	var firstName, lastName, document sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, sector_id, ticketed_event_id, progressive, ticket_type, status,
		       holder_first_name, holder_last_name, holder_document,
		       price, fiscal_seal, cancel_reason, cancel_note,
		       issued_at, used_at, cancelled_at
		FROM tickets
		WHERE id = $1`, id).Scan(
		&ticket.ID,
		&ticket.SectorID,
		&ticket.TicketedEventID,
		&ticket.Progressive,
		&ticket.TicketType,
		&ticket.Status,
		&firstName,
		&lastName,
		&document,
		&ticket.Price,
		&ticket.FiscalSeal,
		&ticket.CancelReason,
		&ticket.CancelNote,
		&ticket.IssuedAt,
		&ticket.UsedAt,
		&ticket.CancelledAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if firstName.Valid {
		ticket.Holder = &models.HolderIdentity{
			FirstName: firstName.String,
			LastName:  lastName.String,
			Document:  document.String,
		}
	}

	return ticket, nil
}

func (r *TicketRepository) ListByTicketedEvent(ctx context.Context, ticketedEventID int64, status models.TicketStatus, page, pageSize int) ([]models.Ticket, error) {
	query := `
		SELECT id, sector_id, ticketed_event_id, progressive, ticket_type, status,
		       holder_first_name, holder_last_name, holder_document,
		       price, fiscal_seal, cancel_reason, cancel_note,
		       issued_at, used_at, cancelled_at
		FROM tickets
		WHERE ticketed_event_id = $1`

	args := []interface{}{ticketedEventID}
	argIndex := 2
	if status != "" {
		query += fmt.Sprintf(" AND status = $%d", argIndex)
		args = append(args, status)
		argIndex++
	}

	query += ` ORDER BY progressive`
	if page > 0 && pageSize > 0 {
		query += fmt.Sprintf(" LIMIT $%d OFFSET $%d", argIndex, argIndex+1)
		args = append(args, pageSize, (page-1)*pageSize)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanTickets(rows)
}

func scanTickets(rows *sql.Rows) ([]models.Ticket, error) {
	var tickets []models.Ticket
	for rows.Next() {
		var t models.Ticket
		var firstName, lastName, document sql.NullString
		err := rows.Scan(
			&t.ID,
			&t.SectorID,
			&t.TicketedEventID,
			&t.Progressive,
			&t.TicketType,
			&t.Status,
			&firstName,
			&lastName,
			&document,
			&t.Price,
			&t.FiscalSeal,
			&t.CancelReason,
			&t.CancelNote,
			&t.IssuedAt,
			&t.UsedAt,
			&t.CancelledAt,
		)
		if err != nil {
			return nil, err
		}
		if firstName.Valid {
			t.Holder = &models.HolderIdentity{
				FirstName: firstName.String,
				LastName:  lastName.String,
				Document:  document.String,
			}
		}
		tickets = append(tickets, t)
	}
	return tickets, rows.Err()
}

func scanTicketForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*models.Ticket, error) {
	ticket := &models.Ticket{}
	var firstName, lastName, document sql.NullString

	err := tx.QueryRowContext(ctx, `
		SELECT id, sector_id, ticketed_event_id, progressive, ticket_type, status,
		       holder_first_name, holder_last_name, holder_document,
		       price, fiscal_seal, cancel_reason, cancel_note,
		       issued_at, used_at, cancelled_at
		FROM tickets
		WHERE id = $1
		FOR UPDATE`, id).Scan(
		&ticket.ID,
		&ticket.SectorID,
		&ticket.TicketedEventID,
		&ticket.Progressive,
		&ticket.TicketType,
		&ticket.Status,
		&firstName,
		&lastName,
		&document,
		&ticket.Price,
		&ticket.FiscalSeal,
		&ticket.CancelReason,
		&ticket.CancelNote,
		&ticket.IssuedAt,
		&ticket.UsedAt,
		&ticket.CancelledAt,
	)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("ticket", id)
	}
	if err != nil {
		return nil, err
	}

	if firstName.Valid {
		ticket.Holder = &models.HolderIdentity{
			FirstName: firstName.String,
			LastName:  lastName.String,
			Document:  document.String,
		}
	}

	return ticket, nil
}
