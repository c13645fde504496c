package database

import (
	"fmt"
	"log/slog"
)

func (db *DB) RunMigrations() error {
	slog.Info("Running database migrations...")

	migrations := []string{
		createEventsTable,
		createTicketedEventsTable,
		createSectorsTable,
		createTicketsTable,
		createTransactionsTable,
		createTransactionTicketsTable,
		createNameChangesTable,
		createResalesTable,
		createScannerAssignmentsTable,
		createResaleActiveListingIndex,
		createTicketsSectorStatusIndex,
	}

	for i, migration := range migrations {
		slog.Info("Running migration", "step", i+1)
		if _, err := db.Exec(migration); err != nil {
			return fmt.Errorf("migration %d failed: %w", i+1, err)
		}
	}

	slog.Info("All migrations completed successfully")
	return nil
}

const createEventsTable = `
CREATE TABLE IF NOT EXISTS events (
    id SERIAL PRIMARY KEY,
    name VARCHAR(500) NOT NULL,
    starts_at TIMESTAMP NOT NULL,
    ends_at TIMESTAMP NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'draft',
    is_public BOOLEAN NOT NULL DEFAULT FALSE,
    organizer VARCHAR(255) NOT NULL,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('draft', 'scheduled', 'ongoing', 'closed'))
);`

const createTicketedEventsTable = `
CREATE TABLE IF NOT EXISTS ticketed_events (
    id SERIAL PRIMARY KEY,
    event_id INTEGER NOT NULL UNIQUE REFERENCES events(id) ON DELETE CASCADE,
    total_capacity INTEGER NOT NULL,
    max_tickets_per_user INTEGER NOT NULL DEFAULT 0,
    ticketing_status VARCHAR(20) NOT NULL DEFAULT 'active',
    tickets_sold INTEGER NOT NULL DEFAULT 0,
    tickets_cancelled INTEGER NOT NULL DEFAULT 0,
    total_revenue DECIMAL(12,2) NOT NULL DEFAULT 0,
    allows_change_name BOOLEAN NOT NULL DEFAULT FALSE,
    allows_resale BOOLEAN NOT NULL DEFAULT FALSE,
    nominative BOOLEAN NOT NULL DEFAULT FALSE,
    next_progressive BIGINT NOT NULL DEFAULT 0,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (ticketing_status IN ('draft', 'active', 'suspended', 'closed')),
    CHECK (total_capacity > 0)
);`

const createSectorsTable = `
CREATE TABLE IF NOT EXISTS sectors (
    id SERIAL PRIMARY KEY,
    ticketed_event_id INTEGER NOT NULL REFERENCES ticketed_events(id) ON DELETE CASCADE,
    name VARCHAR(255) NOT NULL,
    capacity INTEGER NOT NULL,
    available_seats INTEGER NOT NULL,
    price_intero DECIMAL(10,2) NOT NULL,
    price_ridotto DECIMAL(10,2) NOT NULL,
    active BOOLEAN NOT NULL DEFAULT TRUE,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(ticketed_event_id, name),
    CHECK (capacity >= 0),
    CHECK (available_seats >= 0 AND available_seats <= capacity)
);`

const createTicketsTable = `
CREATE TABLE IF NOT EXISTS tickets (
    id SERIAL PRIMARY KEY,
    sector_id INTEGER NOT NULL REFERENCES sectors(id) ON DELETE CASCADE,
    ticketed_event_id INTEGER NOT NULL REFERENCES ticketed_events(id) ON DELETE CASCADE,
    progressive BIGINT NOT NULL,
    ticket_type VARCHAR(10) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'valid',
    holder_first_name VARCHAR(100),
    holder_last_name VARCHAR(100),
    holder_document VARCHAR(100),
    price DECIMAL(10,2) NOT NULL,
    fiscal_seal VARCHAR(64) NOT NULL,
    cancel_reason VARCHAR(100),
    cancel_note TEXT,
    issued_at TIMESTAMP NOT NULL DEFAULT NOW(),
    used_at TIMESTAMP,
    cancelled_at TIMESTAMP,

    UNIQUE(ticketed_event_id, progressive),
    CHECK (ticket_type IN ('intero', 'ridotto')),
    CHECK (status IN ('valid', 'used', 'cancelled'))
);`

const createTransactionsTable = `
CREATE TABLE IF NOT EXISTS transactions (
    id SERIAL PRIMARY KEY,
    ticketed_event_id INTEGER NOT NULL REFERENCES ticketed_events(id) ON DELETE CASCADE,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    payment_method VARCHAR(50) NOT NULL,
    total_amount DECIMAL(12,2) NOT NULL DEFAULT 0,
    tickets_count INTEGER NOT NULL DEFAULT 0,
    failure_reason TEXT,
    completed_at TIMESTAMP,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('pending', 'completed', 'failed', 'refunded'))
);`

const createTransactionTicketsTable = `
CREATE TABLE IF NOT EXISTS transaction_tickets (
    id SERIAL PRIMARY KEY,
    transaction_id INTEGER NOT NULL REFERENCES transactions(id) ON DELETE CASCADE,
    ticket_id INTEGER NOT NULL UNIQUE REFERENCES tickets(id) ON DELETE CASCADE,
    attached_at TIMESTAMP NOT NULL DEFAULT NOW()
);`

const createNameChangesTable = `
CREATE TABLE IF NOT EXISTS name_changes (
    id SERIAL PRIMARY KEY,
    ticket_id INTEGER NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
    old_first_name VARCHAR(100),
    old_last_name VARCHAR(100),
    old_document VARCHAR(100),
    new_first_name VARCHAR(100) NOT NULL,
    new_last_name VARCHAR(100) NOT NULL,
    new_document VARCHAR(100),
    fee DECIMAL(10,2) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'pending',
    reject_reason TEXT,
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),
    updated_at TIMESTAMP NOT NULL DEFAULT NOW(),

    CHECK (status IN ('pending', 'completed', 'rejected'))
);`

const createResalesTable = `
CREATE TABLE IF NOT EXISTS resales (
    id SERIAL PRIMARY KEY,
    ticket_id INTEGER NOT NULL REFERENCES tickets(id) ON DELETE CASCADE,
    price DECIMAL(10,2) NOT NULL,
    causale VARCHAR(20) NOT NULL,
    status VARCHAR(20) NOT NULL DEFAULT 'listed',
    seller_verified BOOLEAN NOT NULL DEFAULT FALSE,
    buyer_first_name VARCHAR(100),
    buyer_last_name VARCHAR(100),
    buyer_document VARCHAR(100),
    listed_at TIMESTAMP NOT NULL DEFAULT NOW(),
    closed_at TIMESTAMP,

    CHECK (causale IN ('impediment', 'renunciation', 'error', 'other')),
    CHECK (status IN ('listed', 'sold', 'cancelled', 'expired', 'rejected'))
);`

const createScannerAssignmentsTable = `
CREATE TABLE IF NOT EXISTS scanner_assignments (
    id SERIAL PRIMARY KEY,
    user_id INTEGER NOT NULL,
    event_id INTEGER NOT NULL REFERENCES events(id) ON DELETE CASCADE,
    can_scan_lists BOOLEAN NOT NULL DEFAULT FALSE,
    can_scan_tables BOOLEAN NOT NULL DEFAULT FALSE,
    can_scan_tickets BOOLEAN NOT NULL DEFAULT FALSE,
    allowed_sector_ids INTEGER[] NOT NULL DEFAULT '{}',
    created_at TIMESTAMP NOT NULL DEFAULT NOW(),

    UNIQUE(user_id, event_id)
);`

// At most one active listing per ticket, enforced at write time.
const createResaleActiveListingIndex = `
CREATE UNIQUE INDEX IF NOT EXISTS resales_one_listed_per_ticket_idx
ON resales (ticket_id) WHERE status = 'listed';`

const createTicketsSectorStatusIndex = `
CREATE INDEX IF NOT EXISTS tickets_sector_status_idx
ON tickets (sector_id, status);`
