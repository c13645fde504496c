package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// NATS subjects mirrored onto the dashboard feed.
const (
	SubjectTicketIssued        = "ticket.issued"
	SubjectTicketCancelled     = "ticket.cancelled"
	SubjectTicketUsed          = "ticket.used"
	SubjectTransactionComplete = "transaction.completed"
	SubjectTransactionRefunded = "transaction.refunded"
	SubjectEventAdvanced       = "event.advanced"
	SubjectTicketingChanged    = "ticketing.changed"
	SubjectResaleListed        = "resale.listed"
	SubjectResaleSold          = "resale.sold"
	SubjectNameChangeCompleted = "namechange.completed"
)

// Frame types pushed to dashboard clients.
const (
	FrameActivity = "activity"
	FrameAlert    = "alert"
	FrameRefresh  = "refresh"
)

// Frame is one push-channel message. Purely observational: a dropped or
// duplicated frame must never be read back as ledger state.
type Frame struct {
	Type      string    `json:"type"`
	EventID   int64     `json:"event_id"`
	Subject   string    `json:"subject,omitempty"`
	Payload   any       `json:"payload,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// Alert is a dismissible dashboard notification.
type Alert struct {
	ID        int64     `json:"id"`
	EventID   int64     `json:"event_id"`
	Severity  string    `json:"severity"`
	Message   string    `json:"message"`
	Timestamp time.Time `json:"timestamp"`
}

type TicketIssuedEvent struct {
	TicketID    int64           `json:"ticket_id"`
	SectorID    int64           `json:"sector_id"`
	Progressive int64           `json:"progressive"`
	Price       decimal.Decimal `json:"price"`
	Remaining   int             `json:"remaining_seats"`
	Timestamp   time.Time       `json:"timestamp"`
}

type TicketCancelledEvent struct {
	TicketID   int64     `json:"ticket_id"`
	SectorID   int64     `json:"sector_id"`
	ReasonCode string    `json:"reason_code"`
	Timestamp  time.Time `json:"timestamp"`
}

type TicketUsedEvent struct {
	TicketID  int64     `json:"ticket_id"`
	SectorID  int64     `json:"sector_id"`
	ScannerID int64     `json:"scanner_id"`
	Timestamp time.Time `json:"timestamp"`
}

type TransactionCompletedEvent struct {
	TransactionID int64           `json:"transaction_id"`
	TotalAmount   decimal.Decimal `json:"total_amount"`
	TicketsCount  int             `json:"tickets_count"`
	Timestamp     time.Time       `json:"timestamp"`
}

type TransactionRefundedEvent struct {
	TransactionID int64     `json:"transaction_id"`
	TicketsCount  int       `json:"tickets_count"`
	Timestamp     time.Time `json:"timestamp"`
}

type EventAdvancedEvent struct {
	EventID   int64       `json:"event_id"`
	Status    EventStatus `json:"status"`
	Timestamp time.Time   `json:"timestamp"`
}

type TicketingChangedEvent struct {
	EventID   int64           `json:"event_id"`
	Status    TicketingStatus `json:"status"`
	Timestamp time.Time       `json:"timestamp"`
}

type ResaleListedEvent struct {
	ResaleID  int64           `json:"resale_id"`
	TicketID  int64           `json:"ticket_id"`
	Price     decimal.Decimal `json:"price"`
	Causale   ResaleCausale   `json:"causale"`
	Timestamp time.Time       `json:"timestamp"`
}

type ResaleSoldEvent struct {
	ResaleID  int64     `json:"resale_id"`
	TicketID  int64     `json:"ticket_id"`
	Timestamp time.Time `json:"timestamp"`
}

type NameChangeCompletedEvent struct {
	NameChangeID int64     `json:"name_change_id"`
	TicketID     int64     `json:"ticket_id"`
	Timestamp    time.Time `json:"timestamp"`
}
