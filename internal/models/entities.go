package models

import (
	"time"

	"github.com/lib/pq"
	"github.com/shopspring/decimal"
)

// Event is the parent entity owning ticketing, guest lists and tables.
type Event struct {
	ID        int64       `json:"id" db:"id"`
	Name      string      `json:"name" db:"name"`
	StartsAt  time.Time   `json:"starts_at" db:"starts_at"`
	EndsAt    time.Time   `json:"ends_at" db:"ends_at"`
	Status    EventStatus `json:"status" db:"status"`
	IsPublic  bool        `json:"is_public" db:"is_public"`
	Organizer string      `json:"organizer" db:"organizer"`
	CreatedAt time.Time   `json:"created_at" db:"created_at"`
	UpdatedAt time.Time   `json:"updated_at" db:"updated_at"`
}

// TicketedEvent is created when ticketing is activated for an event.
// The denormalized counters are updated inside the same transaction as the
// ticket writes and must always equal the aggregates over the tickets.
type TicketedEvent struct {
	ID                int64           `json:"id" db:"id"`
	EventID           int64           `json:"event_id" db:"event_id"`
	TotalCapacity     int             `json:"total_capacity" db:"total_capacity"`
	MaxTicketsPerUser int             `json:"max_tickets_per_user" db:"max_tickets_per_user"`
	TicketingStatus   TicketingStatus `json:"ticketing_status" db:"ticketing_status"`
	TicketsSold       int             `json:"tickets_sold" db:"tickets_sold"`
	TicketsCancelled  int             `json:"tickets_cancelled" db:"tickets_cancelled"`
	TotalRevenue      decimal.Decimal `json:"total_revenue" db:"total_revenue"`
	AllowsChangeName  bool            `json:"allows_change_name" db:"allows_change_name"`
	AllowsResale      bool            `json:"allows_resale" db:"allows_resale"`
	Nominative        bool            `json:"nominative" db:"nominative"`
	NextProgressive   int64           `json:"-" db:"next_progressive"`
	CreatedAt         time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt         time.Time       `json:"updated_at" db:"updated_at"`
}

// Sector is a sellable capacity bucket of a ticketed event.
// Invariant: 0 <= available_seats <= capacity, and
// capacity - available_seats == count(tickets valid or used).
type Sector struct {
	ID             int64           `json:"id" db:"id"`
	TicketedEvent  int64           `json:"ticketed_event_id" db:"ticketed_event_id"`
	Name           string          `json:"name" db:"name"`
	Capacity       int             `json:"capacity" db:"capacity"`
	AvailableSeats int             `json:"available_seats" db:"available_seats"`
	PriceIntero    decimal.Decimal `json:"price_intero" db:"price_intero"`
	PriceRidotto   decimal.Decimal `json:"price_ridotto" db:"price_ridotto"`
	Active         bool            `json:"active" db:"active"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at" db:"updated_at"`
}

// Ticket is one issued admission. Progressive numbers are gapless per
// ticketed event; the fiscal seal is fixed at issuance.
type Ticket struct {
	ID              int64           `json:"id" db:"id"`
	SectorID        int64           `json:"sector_id" db:"sector_id"`
	TicketedEventID int64           `json:"ticketed_event_id" db:"ticketed_event_id"`
	Progressive     int64           `json:"progressive" db:"progressive"`
	TicketType      TicketType      `json:"ticket_type" db:"ticket_type"`
	Status          TicketStatus    `json:"status" db:"status"`
	Holder          *HolderIdentity `json:"holder,omitempty"`
	Price           decimal.Decimal `json:"price" db:"price"`
	FiscalSeal      string          `json:"fiscal_seal" db:"fiscal_seal"`
	CancelReason    *string         `json:"cancel_reason,omitempty" db:"cancel_reason"`
	CancelNote      *string         `json:"cancel_note,omitempty" db:"cancel_note"`
	IssuedAt        time.Time       `json:"issued_at" db:"issued_at"`
	UsedAt          *time.Time      `json:"used_at,omitempty" db:"used_at"`
	CancelledAt     *time.Time      `json:"cancelled_at,omitempty" db:"cancelled_at"`
}

// HolderIdentity is present only on nominative tickets.
type HolderIdentity struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Document  string `json:"document,omitempty"`
}

// Transaction groups the tickets of one purchase. The ticket set is
// immutable once completed; refund cancels member tickets but keeps the
// record.
type Transaction struct {
	ID              int64             `json:"id" db:"id"`
	TicketedEventID int64             `json:"ticketed_event_id" db:"ticketed_event_id"`
	Status          TransactionStatus `json:"status" db:"status"`
	PaymentMethod   string            `json:"payment_method" db:"payment_method"`
	TotalAmount     decimal.Decimal   `json:"total_amount" db:"total_amount"`
	TicketsCount    int               `json:"tickets_count" db:"tickets_count"`
	FailureReason   *string           `json:"failure_reason,omitempty" db:"failure_reason"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty" db:"completed_at"`
	CreatedAt       time.Time         `json:"created_at" db:"created_at"`
	UpdatedAt       time.Time         `json:"updated_at" db:"updated_at"`
	Tickets         []Ticket          `json:"tickets,omitempty"` // filled separately
}

// NameChange replaces the holder of one ticket for a fixed fee. It never
// creates a new ticket identity.
type NameChange struct {
	ID           int64            `json:"id" db:"id"`
	TicketID     int64            `json:"ticket_id" db:"ticket_id"`
	OldHolder    HolderIdentity   `json:"old_holder"`
	NewHolder    HolderIdentity   `json:"new_holder"`
	Fee          decimal.Decimal  `json:"fee" db:"fee"`
	Status       NameChangeStatus `json:"status" db:"status"`
	RejectReason *string          `json:"reject_reason,omitempty" db:"reject_reason"`
	CreatedAt    time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time        `json:"updated_at" db:"updated_at"`
}

// Resale lists one valid ticket for transfer. Completing it moves the
// holder without touching the capacity ledger: the seat was already sold.
type Resale struct {
	ID             int64           `json:"id" db:"id"`
	TicketID       int64           `json:"ticket_id" db:"ticket_id"`
	Price          decimal.Decimal `json:"price" db:"price"`
	Causale        ResaleCausale   `json:"causale" db:"causale"`
	Status         ResaleStatus    `json:"status" db:"status"`
	SellerVerified bool            `json:"seller_verified" db:"seller_verified"`
	Buyer          *HolderIdentity `json:"buyer,omitempty"`
	ListedAt       time.Time       `json:"listed_at" db:"listed_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty" db:"closed_at"`
}

// ScannerAssignment maps a validation agent to an event. An empty
// AllowedSectorIDs set means every sector.
type ScannerAssignment struct {
	ID               int64         `json:"id" db:"id"`
	UserID           int64         `json:"user_id" db:"user_id"`
	EventID          int64         `json:"event_id" db:"event_id"`
	CanScanLists     bool          `json:"can_scan_lists" db:"can_scan_lists"`
	CanScanTables    bool          `json:"can_scan_tables" db:"can_scan_tables"`
	CanScanTickets   bool          `json:"can_scan_tickets" db:"can_scan_tickets"`
	AllowedSectorIDs pq.Int64Array `json:"allowed_sector_ids" db:"allowed_sector_ids"`
	CreatedAt        time.Time     `json:"created_at" db:"created_at"`
}
