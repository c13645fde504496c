package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind classifies an error for transport mapping and logging.
type Kind int

const (
	KindUnknown Kind = iota
	KindValidation
	KindConflict
	KindState
	KindConsistency
	KindNotFound
)

// Machine-readable codes returned to API clients.
const (
	CodeInsufficientCapacity  = "insufficient_capacity"
	CodeBelowSoldCount        = "below_sold_count"
	CodeAlreadyCancelled      = "already_cancelled"
	CodeTicketUsed            = "ticket_used"
	CodeMissingHolderIdentity = "missing_holder_identity"
	CodeNoTransitionDefined   = "no_transition_defined"
	CodeTicketingInactive     = "ticketing_inactive"
	CodeDuplicateListing      = "duplicate_active_listing"
	CodeNotAllowed            = "operation_not_allowed"
	CodeTotalMismatch         = "total_amount_mismatch"
	CodeTransactionClosed     = "transaction_closed"
	CodeNotFound              = "not_found"
	CodeInvalidInput          = "invalid_input"
)

// Error carries the taxonomy kind plus a stable client-facing code.
type Error struct {
	Kind    Kind
	Code    string
	Message string
	Err     error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Err
}

func Validation(code, format string, args ...any) *Error {
	return &Error{Kind: KindValidation, Code: code, Message: fmt.Sprintf(format, args...)}
}

func Conflict(code, format string, args ...any) *Error {
	return &Error{Kind: KindConflict, Code: code, Message: fmt.Sprintf(format, args...)}
}

func State(code, format string, args ...any) *Error {
	return &Error{Kind: KindState, Code: code, Message: fmt.Sprintf(format, args...)}
}

// Consistency marks a broken internal invariant. The enclosing transaction
// must be aborted; this is never a client mistake.
func Consistency(format string, args ...any) *Error {
	return &Error{Kind: KindConsistency, Code: CodeTotalMismatch, Message: fmt.Sprintf(format, args...)}
}

func NotFound(entity string, id any) *Error {
	return &Error{Kind: KindNotFound, Code: CodeNotFound, Message: fmt.Sprintf("%s %v not found", entity, id)}
}

func Wrap(kind Kind, code string, err error, message string) *Error {
	return &Error{Kind: kind, Code: code, Message: message, Err: err}
}

// KindOf returns the taxonomy kind of err, or KindUnknown.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

func CodeOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Code
	}
	return ""
}

func IsValidation(err error) bool  { return KindOf(err) == KindValidation }
func IsConflict(err error) bool    { return KindOf(err) == KindConflict }
func IsState(err error) bool       { return KindOf(err) == KindState }
func IsConsistency(err error) bool { return KindOf(err) == KindConsistency }
func IsNotFound(err error) bool    { return KindOf(err) == KindNotFound }

// HTTPStatus maps the taxonomy onto response codes. Consistency errors are
// deliberately a 500: they indicate a bug, not a client mistake.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindValidation:
		return http.StatusBadRequest
	case KindConflict, KindState:
		return http.StatusConflict
	case KindNotFound:
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}
