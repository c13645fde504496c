package integration

import (
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"serata/internal/models"
)

// TestTicketing_IssueUntilSoldOut exercises the core capacity guarantee:
// with capacity 2, the third issue is refused, and a cancel frees exactly
// one seat for a later issue.
func TestTicketing_IssueUntilSoldOut(t *testing.T) {
	client := requireServer(t)
	_, _, sector := setupTicketedEvent(t, client, 2, false)

	first := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})
	second := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	if first.Ticket.Progressive == second.Ticket.Progressive {
		t.Fatalf("Progressive numbers collided: %d", first.Ticket.Progressive)
	}
	if first.Ticket.FiscalSeal == "" || second.Ticket.FiscalSeal == "" {
		t.Fatal("Issued tickets are missing fiscal seals")
	}
	if !strings.HasPrefix(first.QRDataURI, "data:image/png;base64,") {
		t.Fatalf("Expected a PNG data URI, got %q", first.QRDataURI[:min(40, len(first.QRDataURI))])
	}

	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/sectors/%d/tickets", sector.ID),
		models.IssueTicketRequest{TicketType: models.TicketIntero})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "insufficient_capacity" {
		t.Fatalf("Expected insufficient_capacity, got %q", errResp.Code)
	}

	client.CancelTicket(t, first.Ticket.ID, "customer_request")

	reissued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketRidotto})
	if reissued.Ticket.Progressive <= second.Ticket.Progressive {
		t.Fatalf("Progressive went backwards after cancel: %d <= %d",
			reissued.Ticket.Progressive, second.Ticket.Progressive)
	}

	updated := client.GetSector(t, sector.ID)
	if updated.AvailableSeats != 0 {
		t.Fatalf("Expected 0 available seats, got %d", updated.AvailableSeats)
	}
}

// TestTicketing_CancelledSeatsNeverDoubleRelease verifies a second cancel is
// refused so a seat cannot be returned twice.
func TestTicketing_CancelledSeatsNeverDoubleRelease(t *testing.T) {
	client := requireServer(t)
	_, _, sector := setupTicketedEvent(t, client, 3, false)

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})
	client.CancelTicket(t, issued.Ticket.ID, "customer_request")

	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/tickets/%d/cancel", issued.Ticket.ID),
		models.CancelTicketRequest{ReasonCode: "customer_request"})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "already_cancelled" {
		t.Fatalf("Expected already_cancelled, got %q", errResp.Code)
	}

	sector2 := client.GetSector(t, sector.ID)
	if sector2.AvailableSeats != 3 {
		t.Fatalf("Expected all 3 seats available after single cancel, got %d", sector2.AvailableSeats)
	}
}

// TestTicketing_NominativeRequiresHolder checks the holder gate fires before
// any seat is touched.
func TestTicketing_NominativeRequiresHolder(t *testing.T) {
	client := requireServer(t)
	_, _, sector := setupTicketedEvent(t, client, 2, true)

	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/sectors/%d/tickets", sector.ID),
		models.IssueTicketRequest{TicketType: models.TicketIntero})
	errResp := expectError(t, resp, http.StatusBadRequest)
	if errResp.Code != "missing_holder_identity" {
		t.Fatalf("Expected missing_holder_identity, got %q", errResp.Code)
	}

	after := client.GetSector(t, sector.ID)
	if after.AvailableSeats != 2 {
		t.Fatalf("Rejected issue consumed a seat: %d available", after.AvailableSeats)
	}

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{
		TicketType: models.TicketIntero,
		Holder:     holder("Giulia", "Bianchi"),
	})
	if issued.Ticket.Holder == nil || issued.Ticket.Holder.FirstName != "Giulia" {
		t.Fatalf("Holder not persisted: %+v", issued.Ticket.Holder)
	}
}

// TestTicketing_SuspendBlocksIssuance verifies suspended ticketing refuses
// new issues without touching issued tickets.
func TestTicketing_SuspendBlocksIssuance(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 3, false)

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	client.UpdateTicketing(t, event.ID, models.UpdateTicketingRequest{Action: "suspend"})

	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/sectors/%d/tickets", sector.ID),
		models.IssueTicketRequest{TicketType: models.TicketIntero})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "ticketing_inactive" {
		t.Fatalf("Expected ticketing_inactive, got %q", errResp.Code)
	}

	// The issued ticket is untouched and can still be cancelled.
	ticket := client.GetTicket(t, issued.Ticket.ID)
	if ticket.Status != models.TicketValid {
		t.Fatalf("Suspend changed an issued ticket to %s", ticket.Status)
	}

	client.UpdateTicketing(t, event.ID, models.UpdateTicketingRequest{Action: "resume"})
	client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})
}

// TestTicketing_SectorResizeBelowSold verifies shrinking under the sold
// count is refused.
func TestTicketing_SectorResizeBelowSold(t *testing.T) {
	client := requireServer(t)
	_, _, sector := setupTicketedEvent(t, client, 5, false)

	client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})
	client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	one := 1
	resp := client.makeRequest(t, "PATCH", fmt.Sprintf("/api/sectors/%d", sector.ID),
		models.UpdateSectorRequest{Capacity: &one})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "below_sold_count" {
		t.Fatalf("Expected below_sold_count, got %q", errResp.Code)
	}

	// Shrinking to exactly the sold count is allowed and zeroes availability.
	two := 2
	resp = client.makeRequest(t, "PATCH", fmt.Sprintf("/api/sectors/%d", sector.ID),
		models.UpdateSectorRequest{Capacity: &two})
	var resized models.Sector
	decode(t, resp, http.StatusOK, &resized)
	if resized.AvailableSeats != 0 || resized.Capacity != 2 {
		t.Fatalf("Expected capacity 2 with 0 available, got %d/%d", resized.AvailableSeats, resized.Capacity)
	}
}

// TestEvent_LifecycleIsForwardOnly walks draft through closed and verifies
// the terminal state refuses another advance.
func TestEvent_LifecycleIsForwardOnly(t *testing.T) {
	client := requireServer(t)
	event, _, _ := setupTicketedEvent(t, client, 2, false)

	want := []models.EventStatus{models.EventScheduled, models.EventOngoing, models.EventClosed}
	for _, expected := range want {
		out := client.AdvanceEvent(t, event.ID)
		if out.Status != expected {
			t.Fatalf("Expected status %s, got %s", expected, out.Status)
		}
	}

	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/events/%d/advance", event.ID), nil)
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "no_transition_defined" {
		t.Fatalf("Expected no_transition_defined, got %q", errResp.Code)
	}

	// Closing the event closed ticketing with it.
	te := client.GetTicketing(t, event.ID)
	if te.TicketingStatus != models.TicketingClosed {
		t.Fatalf("Expected ticketing closed with the event, got %s", te.TicketingStatus)
	}
}

// TestEvent_DeleteDraftOnly verifies drafts delete with cascade while any
// later status refuses deletion.
func TestEvent_DeleteDraftOnly(t *testing.T) {
	client := requireServer(t)

	draft := client.CreateEvent(t, models.CreateEventRequest{
		Name:      fmt.Sprintf("Draft Night %d", time.Now().UnixNano()),
		StartsAt:  time.Now().Add(24 * time.Hour),
		EndsAt:    time.Now().Add(30 * time.Hour),
		Organizer: "integration-suite",
	})

	resp := client.makeRequest(t, "DELETE", fmt.Sprintf("/api/events/%d", draft.ID), nil)
	if resp.StatusCode != http.StatusNoContent {
		t.Fatalf("Expected 204 deleting a draft, got %d", resp.StatusCode)
	}
	resp.Body.Close()

	resp = client.makeRequest(t, "GET", fmt.Sprintf("/api/events/%d", draft.ID), nil)
	expectError(t, resp, http.StatusNotFound)

	event, _, _ := setupTicketedEvent(t, client, 2, false)
	client.AdvanceEvent(t, event.ID)
	resp = client.makeRequest(t, "DELETE", fmt.Sprintf("/api/events/%d", event.ID), nil)
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "operation_not_allowed" {
		t.Fatalf("Expected operation_not_allowed, got %q", errResp.Code)
	}
}
