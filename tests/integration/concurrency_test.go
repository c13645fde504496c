package integration

import (
	"fmt"
	"net/http"
	"sync"
	"testing"

	"serata/internal/models"
)

// TestConcurrency_IssueNeverOversells fires more concurrent issue requests
// than the sector has seats and verifies exactly capacity succeed, every
// progressive is unique, and availability lands on zero.
func TestConcurrency_IssueNeverOversells(t *testing.T) {
	client := requireServer(t)

	const capacity = 10
	const attempts = 25

	_, _, sector := setupTicketedEvent(t, client, capacity, false)

	var wg sync.WaitGroup
	results := make(chan *models.IssueTicketResponse, attempts)
	conflicts := make(chan string, attempts)

	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/sectors/%d/tickets", sector.ID),
				models.IssueTicketRequest{TicketType: models.TicketIntero})
			defer resp.Body.Close()

			switch resp.StatusCode {
			case http.StatusCreated:
				var out models.IssueTicketResponse
				if err := decodeBody(resp, &out); err != nil {
					t.Errorf("Failed to decode issue response: %v", err)
					return
				}
				results <- &out
			case http.StatusConflict:
				conflicts <- "conflict"
			default:
				t.Errorf("Unexpected status %d from concurrent issue", resp.StatusCode)
			}
		}()
	}

	wg.Wait()
	close(results)
	close(conflicts)

	issued := 0
	progressives := make(map[int64]bool)
	seals := make(map[string]bool)
	for r := range results {
		issued++
		if progressives[r.Ticket.Progressive] {
			t.Fatalf("Duplicate progressive %d", r.Ticket.Progressive)
		}
		progressives[r.Ticket.Progressive] = true
		if seals[r.Ticket.FiscalSeal] {
			t.Fatalf("Duplicate fiscal seal %s", r.Ticket.FiscalSeal)
		}
		seals[r.Ticket.FiscalSeal] = true
	}

	if issued != capacity {
		t.Fatalf("Expected exactly %d issued tickets, got %d (%d conflicts)",
			capacity, issued, len(conflicts))
	}

	after := client.GetSector(t, sector.ID)
	if after.AvailableSeats != 0 {
		t.Fatalf("Expected 0 available seats after sellout, got %d", after.AvailableSeats)
	}
}

// TestConcurrency_DoubleUseSingleWinner races two validations of the same
// ticket; exactly one must win.
func TestConcurrency_DoubleUseSingleWinner(t *testing.T) {
	client := requireServer(t)

	event, _, sector := setupTicketedEvent(t, client, 2, false)
	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	client.CreateScannerAssignment(t, models.CreateScannerAssignmentRequest{
		UserID:         9001,
		EventID:        event.ID,
		CanScanTickets: true,
	})

	const racers = 5
	var wg sync.WaitGroup
	statuses := make(chan int, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := client.makeRequest(t, "POST", fmt.Sprintf("/api/tickets/%d/use", issued.Ticket.ID),
				models.UseTicketRequest{ScannerUserID: 9001})
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}

	wg.Wait()
	close(statuses)

	winners := 0
	for status := range statuses {
		switch status {
		case http.StatusOK:
			winners++
		case http.StatusConflict:
		default:
			t.Fatalf("Unexpected status %d from concurrent use", status)
		}
	}

	if winners != 1 {
		t.Fatalf("Expected exactly one successful validation, got %d", winners)
	}

	ticket := client.GetTicket(t, issued.Ticket.ID)
	if ticket.Status != models.TicketUsed {
		t.Fatalf("Expected ticket used, got %s", ticket.Status)
	}
}

// TestConcurrency_SingleActiveResale races listings of the same ticket; the
// partial unique index must admit exactly one.
func TestConcurrency_SingleActiveResale(t *testing.T) {
	client := requireServer(t)

	_, _, sector := setupTicketedEvent(t, client, 2, false)
	issued := client.IssueTicket(t, sector.ID, models.IssueTicketRequest{TicketType: models.TicketIntero})

	const racers = 4
	var wg sync.WaitGroup
	statuses := make(chan int, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := client.makeRequest(t, "POST", "/api/resales", models.CreateResaleRequest{
				TicketID: issued.Ticket.ID,
				Price:    issued.Ticket.Price,
				Causale:  models.CausaleImpediment,
			})
			resp.Body.Close()
			statuses <- resp.StatusCode
		}()
	}

	wg.Wait()
	close(statuses)

	created := 0
	for status := range statuses {
		switch status {
		case http.StatusCreated:
			created++
		case http.StatusConflict:
		default:
			t.Fatalf("Unexpected status %d from concurrent resale listing", status)
		}
	}

	if created != 1 {
		t.Fatalf("Expected exactly one active listing, got %d", created)
	}
}
