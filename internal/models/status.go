package models

// EventStatus is the coarse lifecycle of an event. Transitions run strictly
// forward through the table below; closed is terminal.
type EventStatus string

const (
	EventDraft     EventStatus = "draft"
	EventScheduled EventStatus = "scheduled"
	EventOngoing   EventStatus = "ongoing"
	EventClosed    EventStatus = "closed"
)

var eventStatusNext = map[EventStatus]EventStatus{
	EventDraft:     EventScheduled,
	EventScheduled: EventOngoing,
	EventOngoing:   EventClosed,
}

// Next returns the single legal successor status, or false when the current
// status is terminal or unknown.
func (s EventStatus) Next() (EventStatus, bool) {
	next, ok := eventStatusNext[s]
	return next, ok
}

func (s EventStatus) Valid() bool {
	switch s {
	case EventDraft, EventScheduled, EventOngoing, EventClosed:
		return true
	}
	return false
}

// TicketingStatus gates availability independently of the event status.
// Suspending never touches the capacity ledger.
type TicketingStatus string

const (
	TicketingDraft     TicketingStatus = "draft"
	TicketingActive    TicketingStatus = "active"
	TicketingSuspended TicketingStatus = "suspended"
	TicketingClosed    TicketingStatus = "closed"
)

// CanSuspend reports whether active ticketing may be paused given the parent
// event status.
func (s TicketingStatus) CanSuspend(event EventStatus) bool {
	return s == TicketingActive && event != EventClosed
}

// CanResume reports whether suspended ticketing may be reactivated.
func (s TicketingStatus) CanResume(event EventStatus) bool {
	return s == TicketingSuspended && event != EventClosed
}

type TicketStatus string

const (
	TicketValid     TicketStatus = "valid"
	TicketUsed      TicketStatus = "used"
	TicketCancelled TicketStatus = "cancelled"
)

type TicketType string

const (
	TicketIntero  TicketType = "intero"
	TicketRidotto TicketType = "ridotto"
)

func (t TicketType) Valid() bool {
	return t == TicketIntero || t == TicketRidotto
}

type TransactionStatus string

const (
	TransactionPending   TransactionStatus = "pending"
	TransactionCompleted TransactionStatus = "completed"
	TransactionFailed    TransactionStatus = "failed"
	TransactionRefunded  TransactionStatus = "refunded"
)

type NameChangeStatus string

const (
	NameChangePending   NameChangeStatus = "pending"
	NameChangeCompleted NameChangeStatus = "completed"
	NameChangeRejected  NameChangeStatus = "rejected"
)

type ResaleStatus string

const (
	ResaleListed    ResaleStatus = "listed"
	ResaleSold      ResaleStatus = "sold"
	ResaleCancelled ResaleStatus = "cancelled"
	ResaleExpired   ResaleStatus = "expired"
	ResaleRejected  ResaleStatus = "rejected"
)

// ResaleCausale is the regulated reason code for listing a ticket.
type ResaleCausale string

const (
	CausaleImpediment   ResaleCausale = "impediment"
	CausaleRenunciation ResaleCausale = "renunciation"
	CausaleError        ResaleCausale = "error"
	CausaleOther        ResaleCausale = "other"
)

func (c ResaleCausale) Valid() bool {
	switch c {
	case CausaleImpediment, CausaleRenunciation, CausaleError, CausaleOther:
		return true
	}
	return false
}
