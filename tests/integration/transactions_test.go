package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"serata/internal/models"
)

// TestTransaction_CompleteMatchingTotal walks the happy path: open, attach,
// complete with the exact ticket total.
func TestTransaction_CompleteMatchingTotal(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 4, false)

	a := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})
	b := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketRidotto})

	txn := client.OpenTransaction(t, event.ID, "card")
	if txn.Status != models.TransactionPending {
		t.Fatalf("Expected pending transaction, got %s", txn.Status)
	}

	attached := client.AttachTickets(t, txn.ID, []int64{a.Ticket.ID, b.Ticket.ID})
	if attached.TicketsCount != 2 {
		t.Fatalf("Expected 2 attached tickets, got %d", attached.TicketsCount)
	}

	total := a.Ticket.Price.Add(b.Ticket.Price)
	completed := client.CompleteTransaction(t, txn.ID, models.CompleteTransactionRequest{Amount: total})
	if completed.Status != models.TransactionCompleted {
		t.Fatalf("Expected completed, got %s", completed.Status)
	}
	if !completed.TotalAmount.Equal(total) {
		t.Fatalf("Expected total %s, got %s", total, completed.TotalAmount)
	}
	if completed.CompletedAt == nil {
		t.Fatal("CompletedAt missing on a completed transaction")
	}
}

// TestTransaction_MismatchedTotalIsLoud verifies a wrong settled amount is a
// 500 consistency failure, never a silent correction, and leaves the
// transaction pending.
func TestTransaction_MismatchedTotalIsLoud(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 2, false)

	a := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	txn := client.OpenTransaction(t, event.ID, "cash")
	client.AttachTickets(t, txn.ID, []int64{a.Ticket.ID})

	wrong := a.Ticket.Price.Add(decimal.NewFromInt(1))
	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/transactions/%d/complete", txn.ID),
		models.CompleteTransactionRequest{Amount: wrong})
	errResp := expectError(t, resp, http.StatusInternalServerError)
	if errResp.Code != "total_amount_mismatch" {
		t.Fatalf("Expected total_amount_mismatch, got %q", errResp.Code)
	}

	// The aborted complete left the transaction open; the right amount
	// still works.
	client.CompleteTransaction(t, txn.ID, models.CompleteTransactionRequest{Amount: a.Ticket.Price})
}

// TestTransaction_AttachAfterCompleteRefused verifies the ticket set is
// immutable once the transaction closes.
func TestTransaction_AttachAfterCompleteRefused(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 3, false)

	a := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})
	b := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	txn := client.OpenTransaction(t, event.ID, "card")
	client.AttachTickets(t, txn.ID, []int64{a.Ticket.ID})
	client.CompleteTransaction(t, txn.ID, models.CompleteTransactionRequest{Amount: a.Ticket.Price})

	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/transactions/%d/tickets", txn.ID),
		models.AttachTicketsRequest{TicketIDs: []int64{b.Ticket.ID}})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "transaction_closed" {
		t.Fatalf("Expected transaction_closed, got %q", errResp.Code)
	}
}

// TestTransaction_RefundReleasesSeats verifies refunding cancels the member
// tickets and frees their seats, while used tickets stay used.
func TestTransaction_RefundReleasesSeats(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 3, false)

	a := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})
	b := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	txn := client.OpenTransaction(t, event.ID, "card")
	client.AttachTickets(t, txn.ID, []int64{a.Ticket.ID, b.Ticket.ID})
	client.CompleteTransaction(t, txn.ID,
		models.CompleteTransactionRequest{Amount: a.Ticket.Price.Add(b.Ticket.Price)})

	// Use one ticket before the refund.
	client.CreateScannerAssignment(t, models.CreateScannerAssignmentRequest{
		UserID:         9002,
		EventID:        event.ID,
		CanScanTickets: true,
	})
	client.UseTicket(t, a.Ticket.ID, 9002)

	refunded := client.RefundTransaction(t, txn.ID, "event moved")
	if refunded.Status != models.TransactionRefunded {
		t.Fatalf("Expected refunded, got %s", refunded.Status)
	}

	if got := client.GetTicket(t, a.Ticket.ID); got.Status != models.TicketUsed {
		t.Fatalf("Used ticket touched by refund: %s", got.Status)
	}
	if got := client.GetTicket(t, b.Ticket.ID); got.Status != models.TicketCancelled {
		t.Fatalf("Expected member ticket cancelled by refund, got %s", got.Status)
	}

	after := client.GetSector(t, sector.ID)
	if after.AvailableSeats != 2 {
		t.Fatalf("Expected 2 seats free after refund (1 used stays), got %d", after.AvailableSeats)
	}
}
