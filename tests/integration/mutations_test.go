package integration

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/shopspring/decimal"

	"serata/internal/models"
)

// TestNameChange_ApproveTransfersHolder verifies the approved change
// overwrites the holder while keeping ticket id, progressive and seal.
func TestNameChange_ApproveTransfersHolder(t *testing.T) {
	client := requireServer(t)
	_, _, sector := setupTicketedEvent(t, client, 2, true)

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{
		TicketType: models.TicketIntero,
		Holder:     holder("Marco", "Rossi"),
	})

	nc := client.CreateNameChange(t, models.CreateNameChangeRequest{
		TicketID:  issued.Ticket.ID,
		NewHolder: models.HolderIdentity{FirstName: "Luca", LastName: "Verdi"},
	})
	if nc.Status != models.NameChangePending {
		t.Fatalf("Expected pending name change, got %s", nc.Status)
	}
	if nc.OldHolder.LastName != "Rossi" {
		t.Fatalf("Old holder not recorded: %+v", nc.OldHolder)
	}
	if nc.Fee.IsZero() {
		t.Fatal("Name change fee missing")
	}

	approved := client.ApproveNameChange(t, nc.ID)
	if approved.Status != models.NameChangeCompleted {
		t.Fatalf("Expected completed, got %s", approved.Status)
	}

	after := client.GetTicket(t, issued.Ticket.ID)
	if after.Holder == nil || after.Holder.LastName != "Verdi" {
		t.Fatalf("Holder not transferred: %+v", after.Holder)
	}
	if after.Progressive != issued.Ticket.Progressive || after.FiscalSeal != issued.Ticket.FiscalSeal {
		t.Fatal("Name change altered the ticket identity")
	}
}

// TestNameChange_RequiresEventFlag verifies the allows_change_name gate.
func TestNameChange_RequiresEventFlag(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 2, true)

	off := false
	client.UpdateTicketing(t, event.ID, models.UpdateTicketingRequest{AllowsChangeName: &off})

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{
		TicketType: models.TicketIntero,
		Holder:     holder("Anna", "Neri"),
	})

	resp := client.makeRequest(t, "POST", "/api/name-changes", models.CreateNameChangeRequest{
		TicketID:  issued.Ticket.ID,
		NewHolder: models.HolderIdentity{FirstName: "Sara", LastName: "Galli"},
	})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "operation_not_allowed" {
		t.Fatalf("Expected operation_not_allowed, got %q", errResp.Code)
	}
}

// TestNameChange_ApprovalRechecksEventFlag verifies the allows_change_name
// gate holds at approval time, not only at request time.
func TestNameChange_ApprovalRechecksEventFlag(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 2, true)

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{
		TicketType: models.TicketIntero,
		Holder:     holder("Giulia", "Ferri"),
	})
	nc := client.CreateNameChange(t, models.CreateNameChangeRequest{
		TicketID:  issued.Ticket.ID,
		NewHolder: models.HolderIdentity{FirstName: "Marta", LastName: "Greco"},
	})

	// The flag flips off while the request is still pending.
	off := false
	client.UpdateTicketing(t, event.ID, models.UpdateTicketingRequest{AllowsChangeName: &off})

	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/name-changes/%d/approve", nc.ID), nil)
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "operation_not_allowed" {
		t.Fatalf("Expected operation_not_allowed, got %q", errResp.Code)
	}

	ticket := client.GetTicket(t, issued.Ticket.ID)
	if ticket.Holder == nil || ticket.Holder.LastName != "Ferri" {
		t.Fatalf("Holder changed despite refused approval: %+v", ticket.Holder)
	}

	// The request stays pending; re-enabling the flag lets it through.
	on := true
	client.UpdateTicketing(t, event.ID, models.UpdateTicketingRequest{AllowsChangeName: &on})

	approved := client.ApproveNameChange(t, nc.ID)
	if approved.Status != models.NameChangeCompleted {
		t.Fatalf("Expected completed, got %s", approved.Status)
	}
}

// TestResale_RequiresEventFlag verifies the allows_resale gate.
func TestResale_RequiresEventFlag(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 2, false)

	off := false
	client.UpdateTicketing(t, event.ID, models.UpdateTicketingRequest{AllowsResale: &off})

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	resp := client.makeRequest(t, "POST", "/api/resales", models.CreateResaleRequest{
		TicketID: issued.Ticket.ID,
		Price:    issued.Ticket.Price,
		Causale:  models.CausaleImpediment,
	})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "operation_not_allowed" {
		t.Fatalf("Expected operation_not_allowed, got %q", errResp.Code)
	}
}

// TestResale_CompleteTransfersWithoutLedgerMove verifies a sold resale
// moves the holder and leaves seat accounting untouched.
func TestResale_CompleteTransfersWithoutLedgerMove(t *testing.T) {
	client := requireServer(t)
	_, _, sector := setupTicketedEvent(t, client, 2, true)

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{
		TicketType: models.TicketIntero,
		Holder:     holder("Paolo", "Conti"),
	})
	before := client.GetSector(t, sector.ID)

	resale := client.CreateResale(t, models.CreateResaleRequest{
		TicketID: issued.Ticket.ID,
		Price:    issued.Ticket.Price,
		Causale:  models.CausaleImpediment,
	})
	if resale.Status != models.ResaleListed {
		t.Fatalf("Expected listed, got %s", resale.Status)
	}
	if !resale.SellerVerified {
		t.Fatal("Nominative ticket should list as seller-verified")
	}

	sold := client.CompleteResale(t, resale.ID, models.HolderIdentity{
		FirstName: "Elena", LastName: "Riva",
	})
	if sold.Status != models.ResaleSold {
		t.Fatalf("Expected sold, got %s", sold.Status)
	}

	after := client.GetTicket(t, issued.Ticket.ID)
	if after.Holder == nil || after.Holder.LastName != "Riva" {
		t.Fatalf("Ticket not transferred to buyer: %+v", after.Holder)
	}

	sectorAfter := client.GetSector(t, sector.ID)
	if sectorAfter.AvailableSeats != before.AvailableSeats {
		t.Fatalf("Resale moved the capacity ledger: %d -> %d",
			before.AvailableSeats, sectorAfter.AvailableSeats)
	}
}

// TestResale_PriceCappedAtFaceValue verifies listing above face value is a
// validation error.
func TestResale_PriceCappedAtFaceValue(t *testing.T) {
	client := requireServer(t)
	_, _, sector := setupTicketedEvent(t, client, 2, false)

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	resp := client.makeRequest(t, "POST", "/api/resales", models.CreateResaleRequest{
		TicketID: issued.Ticket.ID,
		Price:    issued.Ticket.Price.Add(decimal.NewFromInt(10)),
		Causale:  models.CausaleRenunciation,
	})
	errResp := expectError(t, resp, http.StatusBadRequest)
	if errResp.Code != "invalid_input" {
		t.Fatalf("Expected invalid_input, got %q", errResp.Code)
	}
}

// TestResale_SecondListingRefused verifies the one-active-listing rule with
// sequential requests and after cancellation.
func TestResale_SecondListingRefused(t *testing.T) {
	client := requireServer(t)
	_, _, sector := setupTicketedEvent(t, client, 2, false)

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	first := client.CreateResale(t, models.CreateResaleRequest{
		TicketID: issued.Ticket.ID,
		Price:    issued.Ticket.Price,
		Causale:  models.CausaleImpediment,
	})

	resp := client.makeRequest(t, "POST", "/api/resales", models.CreateResaleRequest{
		TicketID: issued.Ticket.ID,
		Price:    issued.Ticket.Price,
		Causale:  models.CausaleImpediment,
	})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "duplicate_active_listing" {
		t.Fatalf("Expected duplicate_active_listing, got %q", errResp.Code)
	}

	// Cancelling the listing makes room for a new one.
	resp = client.makeRequest(t, "POST", fmt.Sprintf("/api/resales/%d/cancel", first.ID), nil)
	decode(t, resp, http.StatusOK, nil)

	client.CreateResale(t, models.CreateResaleRequest{
		TicketID: issued.Ticket.ID,
		Price:    issued.Ticket.Price,
		Causale:  models.CausaleError,
	})
}

// TestScanner_SectorScopeEnforced verifies a scanner restricted to one
// sector cannot validate tickets of another.
func TestScanner_SectorScopeEnforced(t *testing.T) {
	client := requireServer(t)
	event, _, sector := setupTicketedEvent(t, client, 4, false)

	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	// Assigned to a different sector only.
	client.CreateScannerAssignment(t, models.CreateScannerAssignmentRequest{
		UserID:           9003,
		EventID:          event.ID,
		CanScanTickets:   true,
		AllowedSectorIDs: []int64{issued.Ticket.SectorID + 1000},
	})

	resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/tickets/%d/use", issued.Ticket.ID),
		models.UseTicketRequest{ScannerUserID: 9003})
	errResp := expectError(t, resp, http.StatusConflict)
	if errResp.Code != "operation_not_allowed" {
		t.Fatalf("Expected operation_not_allowed, got %q", errResp.Code)
	}

	// Re-assign with the empty set, meaning every sector.
	client.CreateScannerAssignment(t, models.CreateScannerAssignmentRequest{
		UserID:         9003,
		EventID:        event.ID,
		CanScanTickets: true,
	})

	used := client.UseTicket(t, issued.Ticket.ID, 9003)
	if used.Status != models.TicketUsed {
		t.Fatalf("Expected used, got %s", used.Status)
	}
}
