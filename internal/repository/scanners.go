package repository

import (
	"context"
	"database/sql"

	"serata/internal/database"
	"serata/internal/models"
)

type ScannerRepository struct {
	db *database.DB
}

func NewScannerRepository(db *database.DB) *ScannerRepository {
	return &ScannerRepository{db: db}
}

// Upsert replaces the assignment for the (user, event) pair. Re-assigning is
// the normal way to change capabilities or sector scope.
func (r *ScannerRepository) Upsert(ctx context.Context, a *models.ScannerAssignment) error {
	query := `
		INSERT INTO scanner_assignments
			(user_id, event_id, can_scan_lists, can_scan_tables, can_scan_tickets, allowed_sector_ids)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (user_id, event_id) DO UPDATE SET
			can_scan_lists = EXCLUDED.can_scan_lists,
			can_scan_tables = EXCLUDED.can_scan_tables,
			can_scan_tickets = EXCLUDED.can_scan_tickets,
			allowed_sector_ids = EXCLUDED.allowed_sector_ids
		RETURNING id, created_at`

	return r.db.QueryRowContext(ctx, query,
		a.UserID,
		a.EventID,
		a.CanScanLists,
		a.CanScanTables,
		a.CanScanTickets,
		a.AllowedSectorIDs,
	).Scan(&a.ID, &a.CreatedAt)
}

func (r *ScannerRepository) Get(ctx context.Context, userID, eventID int64) (*models.ScannerAssignment, error) {
	a := &models.ScannerAssignment{}
	query := `
		SELECT id, user_id, event_id, can_scan_lists, can_scan_tables, can_scan_tickets,
		       allowed_sector_ids, created_at
		FROM scanner_assignments
		WHERE user_id = $1 AND event_id = $2`

	err := r.db.QueryRowContext(ctx, query, userID, eventID).Scan(
		&a.ID,
		&a.UserID,
		&a.EventID,
		&a.CanScanLists,
		&a.CanScanTables,
		&a.CanScanTickets,
		&a.AllowedSectorIDs,
		&a.CreatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, nil
	}

	return a, err
}

func (r *ScannerRepository) Delete(ctx context.Context, userID, eventID int64) error {
	_, err := r.db.ExecContext(ctx,
		`DELETE FROM scanner_assignments WHERE user_id = $1 AND event_id = $2`,
		userID, eventID)
	return err
}
