package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"

	"serata/internal/database"
	apperrors "serata/internal/errors"
	"serata/internal/models"
)

// MutationRepository covers the post-sale paths: name changes and resales.
// Neither path ever touches the capacity ledger; the seat stays sold and
// only the holder moves.
type MutationRepository struct {
	db *database.DB
}

func NewMutationRepository(db *database.DB) *MutationRepository {
	return &MutationRepository{db: db}
}

func (r *MutationRepository) CreateNameChange(ctx context.Context, nc *models.NameChange) error {
	query := `
		INSERT INTO name_changes
			(ticket_id, old_first_name, old_last_name, old_document,
			 new_first_name, new_last_name, new_document, fee, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		nc.TicketID,
		nullable(nc.OldHolder.FirstName),
		nullable(nc.OldHolder.LastName),
		nullable(nc.OldHolder.Document),
		nc.NewHolder.FirstName,
		nc.NewHolder.LastName,
		nullable(nc.NewHolder.Document),
		nc.Fee,
		models.NameChangePending,
	).Scan(&nc.ID, &nc.CreatedAt, &nc.UpdatedAt)
}

func (r *MutationRepository) GetNameChange(ctx context.Context, id int64) (*models.NameChange, error) {
	nc := &models.NameChange{}
	var oldFirst, oldLast, oldDoc, newDoc sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, ticket_id, old_first_name, old_last_name, old_document,
		       new_first_name, new_last_name, new_document,
		       fee, status, reject_reason, created_at, updated_at
		FROM name_changes
		WHERE id = $1`, id).Scan(
		&nc.ID,
		&nc.TicketID,
		&oldFirst,
		&oldLast,
		&oldDoc,
		&nc.NewHolder.FirstName,
		&nc.NewHolder.LastName,
		&newDoc,
		&nc.Fee,
		&nc.Status,
		&nc.RejectReason,
		&nc.CreatedAt,
		&nc.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	nc.OldHolder = models.HolderIdentity{
		FirstName: oldFirst.String,
		LastName:  oldLast.String,
		Document:  oldDoc.String,
	}
	nc.NewHolder.Document = newDoc.String

	return nc, err
}

// ApproveNameChange overwrites the ticket holder with the requested identity
// in the same transaction that closes the request. The ticket keeps its id,
// progressive and fiscal seal.
func (r *MutationRepository) ApproveNameChange(ctx context.Context, id int64) (*models.NameChange, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		ticketID          int64
		status            models.NameChangeStatus
		newFirst, newLast string
		newDoc            sql.NullString
	)
	err = tx.QueryRowContext(ctx, `
		SELECT ticket_id, status, new_first_name, new_last_name, new_document
		FROM name_changes
		WHERE id = $1
		FOR UPDATE`, id).Scan(&ticketID, &status, &newFirst, &newLast, &newDoc)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("name change", id)
	}
	if err != nil {
		return nil, err
	}

	if status != models.NameChangePending {
		return nil, apperrors.State(apperrors.CodeNoTransitionDefined,
			"name change %d is already %s", id, status)
	}

	// The event flag may have been switched off while the request sat
	// pending, so both preconditions are re-read under the ticket lock.
	var (
		ticketStatus     models.TicketStatus
		allowsChangeName bool
	)
	err = tx.QueryRowContext(ctx, `
		SELECT t.status, te.allows_change_name
		FROM tickets t
		JOIN ticketed_events te ON te.id = t.ticketed_event_id
		WHERE t.id = $1
		FOR UPDATE OF t`,
		ticketID).Scan(&ticketStatus, &allowsChangeName)
	if err != nil {
		return nil, err
	}
	if ticketStatus != models.TicketValid {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"ticket %d is %s, holder can no longer change", ticketID, ticketStatus)
	}
	if !allowsChangeName {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"event no longer allows name changes for ticket %d", ticketID)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tickets
		SET holder_first_name = $1, holder_last_name = $2, holder_document = $3
		WHERE id = $4`,
		newFirst, newLast, newDoc, ticketID); err != nil {
		return nil, err
	}

	if _, err := tx.ExecContext(ctx,
		`UPDATE name_changes SET status = $1, updated_at = NOW() WHERE id = $2`,
		models.NameChangeCompleted, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetNameChange(ctx, id)
}

func (r *MutationRepository) RejectNameChange(ctx context.Context, id int64, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE name_changes
		SET status = $1, reject_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		models.NameChangeRejected, reason, id, models.NameChangePending)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		nc, err := r.GetNameChange(ctx, id)
		if err != nil {
			return err
		}
		if nc == nil {
			return apperrors.NotFound("name change", id)
		}
		return apperrors.State(apperrors.CodeNoTransitionDefined,
			"name change %d is already %s", id, nc.Status)
	}

	return nil
}

// CreateResale lists a ticket for transfer. A partial unique index allows at
// most one listed row per ticket; a duplicate surfaces as a conflict.
func (r *MutationRepository) CreateResale(ctx context.Context, resale *models.Resale) error {
	query := `
		INSERT INTO resales (ticket_id, price, causale, status, seller_verified)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, listed_at`

	err := r.db.QueryRowContext(ctx, query,
		resale.TicketID,
		resale.Price,
		resale.Causale,
		models.ResaleListed,
		resale.SellerVerified,
	).Scan(&resale.ID, &resale.ListedAt)

	if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
		return apperrors.Conflict(apperrors.CodeDuplicateListing,
			"ticket %d already has an active listing", resale.TicketID)
	}

	return err
}

func (r *MutationRepository) GetResale(ctx context.Context, id int64) (*models.Resale, error) {
	resale := &models.Resale{}
	var buyerFirst, buyerLast, buyerDoc sql.NullString

	err := r.db.QueryRowContext(ctx, `
		SELECT id, ticket_id, price, causale, status, seller_verified,
		       buyer_first_name, buyer_last_name, buyer_document,
		       listed_at, closed_at
		FROM resales
		WHERE id = $1`, id).Scan(
		&resale.ID,
		&resale.TicketID,
		&resale.Price,
		&resale.Causale,
		&resale.Status,
		&resale.SellerVerified,
		&buyerFirst,
		&buyerLast,
		&buyerDoc,
		&resale.ListedAt,
		&resale.ClosedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	if buyerFirst.Valid {
		resale.Buyer = &models.HolderIdentity{
			FirstName: buyerFirst.String,
			LastName:  buyerLast.String,
			Document:  buyerDoc.String,
		}
	}

	return resale, nil
}

// CompleteResale transfers the ticket to the buyer and closes the listing.
// The seat was already sold, so no sector or counter moves here.
func (r *MutationRepository) CompleteResale(ctx context.Context, id int64, buyer models.HolderIdentity) (*models.Resale, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		ticketID int64
		status   models.ResaleStatus
	)
	err = tx.QueryRowContext(ctx,
		`SELECT ticket_id, status FROM resales WHERE id = $1 FOR UPDATE`,
		id).Scan(&ticketID, &status)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("resale", id)
	}
	if err != nil {
		return nil, err
	}

	if status != models.ResaleListed {
		return nil, apperrors.State(apperrors.CodeNoTransitionDefined,
			"resale %d is already %s", id, status)
	}

	var ticketStatus models.TicketStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM tickets WHERE id = $1 FOR UPDATE`,
		ticketID).Scan(&ticketStatus)
	if err != nil {
		return nil, err
	}
	if ticketStatus != models.TicketValid {
		return nil, apperrors.Conflict(apperrors.CodeNotAllowed,
			"ticket %d is %s and cannot be transferred", ticketID, ticketStatus)
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE tickets
		SET holder_first_name = $1, holder_last_name = $2, holder_document = $3
		WHERE id = $4`,
		buyer.FirstName, buyer.LastName, nullable(buyer.Document), ticketID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE resales
		SET status = $1, buyer_first_name = $2, buyer_last_name = $3, buyer_document = $4, closed_at = $5
		WHERE id = $6`,
		models.ResaleSold, buyer.FirstName, buyer.LastName, nullable(buyer.Document), now, id); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetResale(ctx, id)
}

// CloseResale moves a listed resale to cancelled or rejected.
func (r *MutationRepository) CloseResale(ctx context.Context, id int64, to models.ResaleStatus) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE resales
		SET status = $1, closed_at = NOW()
		WHERE id = $2 AND status = $3`,
		to, id, models.ResaleListed)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		resale, err := r.GetResale(ctx, id)
		if err != nil {
			return err
		}
		if resale == nil {
			return apperrors.NotFound("resale", id)
		}
		return apperrors.State(apperrors.CodeNoTransitionDefined,
			"resale %d is already %s", id, resale.Status)
	}

	return nil
}

// ExpireListedBefore closes listings older than the cutoff. Used by the
// reaper; returns how many rows it expired.
func (r *MutationRepository) ExpireListedBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `
		UPDATE resales
		SET status = $1, closed_at = NOW()
		WHERE status = $2 AND listed_at < $3`,
		models.ResaleExpired, models.ResaleListed, cutoff)
	if err != nil {
		return 0, err
	}

	return res.RowsAffected()
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
