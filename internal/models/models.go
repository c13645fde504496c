package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateEventRequest - body for POST /api/events
type CreateEventRequest struct {
	Name      string    `json:"name" binding:"required"`
	StartsAt  time.Time `json:"starts_at" binding:"required"`
	EndsAt    time.Time `json:"ends_at" binding:"required"`
	IsPublic  bool      `json:"is_public"`
	Organizer string    `json:"organizer" binding:"required"`
}

type CreateEventResponse struct {
	ID     int64       `json:"id"`
	Status EventStatus `json:"status"`
}

type AdvanceEventResponse struct {
	ID     int64       `json:"id"`
	Status EventStatus `json:"status"`
}

// ActivateTicketingRequest - body for POST /api/events/:id/ticketing
type ActivateTicketingRequest struct {
	TotalCapacity     int  `json:"total_capacity" binding:"required,min=1"`
	MaxTicketsPerUser int  `json:"max_tickets_per_user"`
	AllowsChangeName  bool `json:"allows_change_name"`
	AllowsResale      bool `json:"allows_resale"`
	Nominative        bool `json:"nominative"`
}

// UpdateTicketingRequest - body for PATCH /api/events/:id/ticketing.
// Action is "suspend" or "resume"; flag pointers are applied when set.
type UpdateTicketingRequest struct {
	Action           string `json:"action,omitempty"`
	AllowsChangeName *bool  `json:"allows_change_name,omitempty"`
	AllowsResale     *bool  `json:"allows_resale,omitempty"`
}

// CreateSectorRequest - body for POST /api/events/:id/sectors
type CreateSectorRequest struct {
	Name         string          `json:"name" binding:"required"`
	Capacity     int             `json:"capacity" binding:"required,min=1"`
	PriceIntero  decimal.Decimal `json:"price_intero" binding:"required"`
	PriceRidotto decimal.Decimal `json:"price_ridotto" binding:"required"`
}

// UpdateSectorRequest - body for PATCH /api/sectors/:id
type UpdateSectorRequest struct {
	Capacity     *int             `json:"capacity,omitempty"`
	Active       *bool            `json:"active,omitempty"`
	PriceIntero  *decimal.Decimal `json:"price_intero,omitempty"`
	PriceRidotto *decimal.Decimal `json:"price_ridotto,omitempty"`
}

// IssueTicketRequest - body for POST /api/sectors/:id/tickets
type IssueTicketRequest struct {
	TicketType TicketType      `json:"ticket_type" binding:"required"`
	Holder     *HolderIdentity `json:"holder,omitempty"`
}

// IssueTicketResponse carries the persisted ticket plus a rendered QR of the
// fiscal seal for the dashboard to print or email.
type IssueTicketResponse struct {
	Ticket    Ticket `json:"ticket"`
	QRDataURI string `json:"qr_data_uri"`
}

// CancelTicketRequest - body for POST /api/tickets/:id/cancel
type CancelTicketRequest struct {
	ReasonCode string  `json:"reason_code" binding:"required"`
	Note       *string `json:"note,omitempty"`
}

// UseTicketRequest - body for POST /api/tickets/:id/use (scanner path)
type UseTicketRequest struct {
	ScannerUserID int64 `json:"scanner_user_id" binding:"required"`
}

// OpenTransactionRequest - body for POST /api/transactions
type OpenTransactionRequest struct {
	EventID       int64  `json:"event_id" binding:"required"`
	PaymentMethod string `json:"payment_method" binding:"required"`
}

type OpenTransactionResponse struct {
	ID int64 `json:"id"`
}

// AttachTicketsRequest - body for POST /api/transactions/:id/tickets
type AttachTicketsRequest struct {
	TicketIDs []int64 `json:"ticket_ids" binding:"required,min=1"`
}

// CompleteTransactionRequest - body for POST /api/transactions/:id/complete
type CompleteTransactionRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// FailTransactionRequest - body for POST /api/transactions/:id/fail
type FailTransactionRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateNameChangeRequest - body for POST /api/name-changes
type CreateNameChangeRequest struct {
	TicketID  int64          `json:"ticket_id" binding:"required"`
	NewHolder HolderIdentity `json:"new_holder" binding:"required"`
}

// RejectNameChangeRequest - body for POST /api/name-changes/:id/reject
type RejectNameChangeRequest struct {
	Reason string `json:"reason" binding:"required"`
}

// CreateResaleRequest - body for POST /api/resales
type CreateResaleRequest struct {
	TicketID int64           `json:"ticket_id" binding:"required"`
	Price    decimal.Decimal `json:"price" binding:"required"`
	Causale  ResaleCausale   `json:"causale" binding:"required"`
}

// CompleteResaleRequest - body for POST /api/resales/:id/complete
type CompleteResaleRequest struct {
	Buyer HolderIdentity `json:"buyer" binding:"required"`
}

// CreateScannerAssignmentRequest - body for POST /api/scanner-assignments
type CreateScannerAssignmentRequest struct {
	UserID           int64   `json:"user_id" binding:"required"`
	EventID          int64   `json:"event_id" binding:"required"`
	CanScanLists     bool    `json:"can_scan_lists"`
	CanScanTables    bool    `json:"can_scan_tables"`
	CanScanTickets   bool    `json:"can_scan_tickets"`
	AllowedSectorIDs []int64 `json:"allowed_sector_ids"`
}

// ListEventsResponseItem - element of GET /api/events
type ListEventsResponseItem struct {
	ID       int64       `json:"id"`
	Name     string      `json:"name"`
	Status   EventStatus `json:"status"`
	StartsAt time.Time   `json:"starts_at"`
	IsPublic bool        `json:"is_public"`
}

type ListEventsResponse []ListEventsResponseItem

// ErrorResponse is the uniform error body.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}
