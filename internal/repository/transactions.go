package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"

	"serata/internal/database"
	apperrors "serata/internal/errors"
	"serata/internal/models"
)

type TransactionRepository struct {
	db *database.DB
}

func NewTransactionRepository(db *database.DB) *TransactionRepository {
	return &TransactionRepository{db: db}
}

func (r *TransactionRepository) Create(ctx context.Context, txn *models.Transaction) error {
	query := `
		INSERT INTO transactions (ticketed_event_id, status, payment_method)
		VALUES ($1, $2, $3)
		RETURNING id, total_amount, tickets_count, created_at, updated_at`

	return r.db.QueryRowContext(ctx, query,
		txn.TicketedEventID,
		models.TransactionPending,
		txn.PaymentMethod,
	).Scan(&txn.ID, &txn.TotalAmount, &txn.TicketsCount, &txn.CreatedAt, &txn.UpdatedAt)
}

func (r *TransactionRepository) GetByID(ctx context.Context, id int64) (*models.Transaction, error) {
	txn := &models.Transaction{}
	query := `
		SELECT id, ticketed_event_id, status, payment_method, total_amount,
		       tickets_count, failure_reason, completed_at, created_at, updated_at
		FROM transactions
		WHERE id = $1`

	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&txn.ID,
		&txn.TicketedEventID,
		&txn.Status,
		&txn.PaymentMethod,
		&txn.TotalAmount,
		&txn.TicketsCount,
		&txn.FailureReason,
		&txn.CompletedAt,
		&txn.CreatedAt,
		&txn.UpdatedAt,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT t.id, t.sector_id, t.ticketed_event_id, t.progressive, t.ticket_type, t.status,
		       t.holder_first_name, t.holder_last_name, t.holder_document,
		       t.price, t.fiscal_seal, t.cancel_reason, t.cancel_note,
		       t.issued_at, t.used_at, t.cancelled_at
		FROM tickets t
		JOIN transaction_tickets tt ON tt.ticket_id = t.id
		WHERE tt.transaction_id = $1
		ORDER BY t.progressive`, id)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	txn.Tickets, err = scanTickets(rows)
	if err != nil {
		return nil, err
	}

	return txn, nil
}

// Attach links tickets to a pending transaction. The transaction row is
// locked first so a concurrent complete cannot slip between the status check
// and the inserts. Tickets must belong to the same ticketed event, be valid,
// and not already belong to another transaction.
func (r *TransactionRepository) Attach(ctx context.Context, txnID int64, ticketIDs []int64, maxTicketsPerUser int) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	var (
		status          models.TransactionStatus
		ticketedEventID int64
		ticketsCount    int
	)
	err = tx.QueryRowContext(ctx, `
		SELECT status, ticketed_event_id, tickets_count
		FROM transactions
		WHERE id = $1
		FOR UPDATE`, txnID).Scan(&status, &ticketedEventID, &ticketsCount)
	if err == sql.ErrNoRows {
		return apperrors.NotFound("transaction", txnID)
	}
	if err != nil {
		return err
	}

	if status != models.TransactionPending {
		return apperrors.Conflict(apperrors.CodeTransactionClosed,
			"transaction %d is %s, tickets can only be attached while pending", txnID, status)
	}

	if maxTicketsPerUser > 0 && ticketsCount+len(ticketIDs) > maxTicketsPerUser {
		return apperrors.Conflict(apperrors.CodeNotAllowed,
			"transaction %d would exceed the limit of %d tickets", txnID, maxTicketsPerUser)
	}

	for _, ticketID := range ticketIDs {
		var tStatus models.TicketStatus
		var tEvent int64
		err := tx.QueryRowContext(ctx,
			`SELECT status, ticketed_event_id FROM tickets WHERE id = $1 FOR UPDATE`,
			ticketID).Scan(&tStatus, &tEvent)
		if err == sql.ErrNoRows {
			return apperrors.NotFound("ticket", ticketID)
		}
		if err != nil {
			return err
		}
		if tEvent != ticketedEventID {
			return apperrors.Validation(apperrors.CodeInvalidInput,
				"ticket %d belongs to a different event", ticketID)
		}
		if tStatus != models.TicketValid {
			return apperrors.Conflict(apperrors.CodeNotAllowed,
				"ticket %d is %s and cannot be sold", ticketID, tStatus)
		}

		_, err = tx.ExecContext(ctx,
			`INSERT INTO transaction_tickets (transaction_id, ticket_id) VALUES ($1, $2)`,
			txnID, ticketID)
		if err != nil {
			if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
				return apperrors.Conflict(apperrors.CodeNotAllowed,
					"ticket %d is already attached to a transaction", ticketID)
			}
			return err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET tickets_count = tickets_count + $1, updated_at = NOW()
		WHERE id = $2`, len(ticketIDs), txnID); err != nil {
		return err
	}

	return tx.Commit()
}

// Complete closes a pending transaction. The settled amount must equal the
// sum of the attached ticket prices; a mismatch aborts the transaction and
// surfaces as a consistency failure, never as a silent correction.
func (r *TransactionRepository) Complete(ctx context.Context, txnID int64, amount decimal.Decimal) (*models.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var status models.TransactionStatus
	err = tx.QueryRowContext(ctx,
		`SELECT status FROM transactions WHERE id = $1 FOR UPDATE`,
		txnID).Scan(&status)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("transaction", txnID)
	}
	if err != nil {
		return nil, err
	}

	if status != models.TransactionPending {
		return nil, apperrors.Conflict(apperrors.CodeTransactionClosed,
			"transaction %d is already %s", txnID, status)
	}

	var expected decimal.Decimal
	err = tx.QueryRowContext(ctx, `
		SELECT COALESCE(SUM(t.price), 0)
		FROM tickets t
		JOIN transaction_tickets tt ON tt.ticket_id = t.id
		WHERE tt.transaction_id = $1`, txnID).Scan(&expected)
	if err != nil {
		return nil, err
	}

	if !amount.Equal(expected) {
		return nil, apperrors.Consistency(
			"transaction %d settled amount %s does not match ticket total %s",
			txnID, amount.String(), expected.String())
	}

	now := time.Now().UTC()
	if _, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, total_amount = $2, completed_at = $3, updated_at = NOW()
		WHERE id = $4`,
		models.TransactionCompleted, amount, now, txnID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, txnID)
}

// Fail marks a pending transaction as failed. Attached tickets stay valid;
// voiding them is the caller's decision, not an automatic side effect.
func (r *TransactionRepository) Fail(ctx context.Context, txnID int64, reason string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, failure_reason = $2, updated_at = NOW()
		WHERE id = $3 AND status = $4`,
		models.TransactionFailed, reason, txnID, models.TransactionPending)
	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		txn, err := r.GetByID(ctx, txnID)
		if err != nil {
			return err
		}
		if txn == nil {
			return apperrors.NotFound("transaction", txnID)
		}
		return apperrors.Conflict(apperrors.CodeTransactionClosed,
			"transaction %d is already %s", txnID, txn.Status)
	}

	return nil
}

// Refund reverts a completed transaction: every still-valid member ticket is
// cancelled and its seat released, in one transaction. Used tickets are left
// alone. Lock order is transaction, then tickets, then sectors, then the
// ticketed event, matching the other write paths.
func (r *TransactionRepository) Refund(ctx context.Context, txnID int64, reason string) (*models.Transaction, error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	var (
		status          models.TransactionStatus
		ticketedEventID int64
	)
	err = tx.QueryRowContext(ctx,
		`SELECT status, ticketed_event_id FROM transactions WHERE id = $1 FOR UPDATE`,
		txnID).Scan(&status, &ticketedEventID)
	if err == sql.ErrNoRows {
		return nil, apperrors.NotFound("transaction", txnID)
	}
	if err != nil {
		return nil, err
	}

	if status != models.TransactionCompleted {
		return nil, apperrors.Conflict(apperrors.CodeTransactionClosed,
			"transaction %d is %s, only completed transactions can be refunded", txnID, status)
	}

	rows, err := tx.QueryContext(ctx, `
		SELECT t.id, t.sector_id, t.price
		FROM tickets t
		JOIN transaction_tickets tt ON tt.ticket_id = t.id
		WHERE tt.transaction_id = $1 AND t.status = $2
		ORDER BY t.id
		FOR UPDATE OF t`, txnID, models.TicketValid)
	if err != nil {
		return nil, err
	}

	type member struct {
		id       int64
		sectorID int64
		price    decimal.Decimal
	}
	var members []member
	for rows.Next() {
		var m member
		if err := rows.Scan(&m.id, &m.sectorID, &m.price); err != nil {
			rows.Close()
			return nil, err
		}
		members = append(members, m)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	revenue := decimal.Zero
	for _, m := range members {
		if _, err := tx.ExecContext(ctx, `
			UPDATE tickets
			SET status = $1, cancel_reason = 'refund', cancelled_at = $2
			WHERE id = $3`,
			models.TicketCancelled, now, m.id); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx,
			`UPDATE sectors SET available_seats = available_seats + 1, updated_at = NOW() WHERE id = $1`,
			m.sectorID); err != nil {
			return nil, err
		}
		revenue = revenue.Add(m.price)
	}

	if len(members) > 0 {
		if _, err := tx.ExecContext(ctx, `
			UPDATE ticketed_events
			SET tickets_sold = tickets_sold - $1,
			    tickets_cancelled = tickets_cancelled + $1,
			    total_revenue = total_revenue - $2,
			    updated_at = NOW()
			WHERE id = $3`,
			len(members), revenue, ticketedEventID); err != nil {
			return nil, err
		}
	}

	if _, err := tx.ExecContext(ctx, `
		UPDATE transactions
		SET status = $1, failure_reason = $2, updated_at = NOW()
		WHERE id = $3`,
		models.TransactionRefunded, reason, txnID); err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	return r.GetByID(ctx, txnID)
}

// StalePending returns ids of pending transactions older than the cutoff,
// for the reaper to fail.
func (r *TransactionRepository) StalePending(ctx context.Context, cutoff time.Time) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM transactions WHERE status = $1 AND created_at < $2 ORDER BY id`,
		models.TransactionPending, cutoff)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
