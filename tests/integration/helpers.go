package integration

import (
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"serata/internal/models"
)

const (
	APIBaseURL = "http://localhost:8081"
)

// requireServer skips the test when no API server is listening. The suite
// runs against a live stack (Postgres plus the API binary); it is not a
// unit-test substitute.
func requireServer(t *testing.T) *TestClient {
	t.Helper()

	client := NewTestClient(APIBaseURL)
	resp, err := client.HTTPClient.Get(APIBaseURL + "/health")
	if err != nil {
		t.Skipf("API server not reachable at %s: %v", APIBaseURL, err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Skipf("API server unhealthy at %s: status %d", APIBaseURL, resp.StatusCode)
	}

	return client
}

// setupTicketedEvent creates a fresh event with active ticketing and one
// sector, returning all three. Event names are unique per call so parallel
// runs do not collide on the sector name constraint.
func setupTicketedEvent(t *testing.T, client *TestClient, capacity int, nominative bool) (*models.Event, *models.TicketedEvent, *models.Sector) {
	t.Helper()

	event := client.CreateEvent(t, models.CreateEventRequest{
		Name:      fmt.Sprintf("Test Night %d", time.Now().UnixNano()),
		StartsAt:  time.Now().Add(24 * time.Hour),
		EndsAt:    time.Now().Add(30 * time.Hour),
		IsPublic:  false,
		Organizer: "integration-suite",
	})

	te := client.ActivateTicketing(t, event.ID, models.ActivateTicketingRequest{
		TotalCapacity:    capacity,
		AllowsChangeName: true,
		AllowsResale:     true,
		Nominative:       nominative,
	})

	sector := client.CreateSector(t, event.ID, models.CreateSectorRequest{
		Name:         "Main Floor",
		Capacity:     capacity,
		PriceIntero:  decimal.NewFromInt(25),
		PriceRidotto: decimal.NewFromInt(15),
	})

	return event, te, sector
}

// holder returns a throwaway nominative identity.
func holder(first, last string) *models.HolderIdentity {
	return &models.HolderIdentity{FirstName: first, LastName: last, Document: "AA0000000"}
}
