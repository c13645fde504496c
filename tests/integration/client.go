package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"testing"
	"time"

	"serata/internal/models"
)

// TestClient provides methods for testing the API
type TestClient struct {
	BaseURL    string
	HTTPClient *http.Client
}

// NewTestClient creates a new test client
func NewTestClient(baseURL string) *TestClient {
	return &TestClient{
		BaseURL: baseURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// makeRequest makes an HTTP request and returns the response
func (c *TestClient) makeRequest(t *testing.T, method, path string, body interface{}) *http.Response {
	t.Helper()

	var reqBody io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("Failed to marshal request body: %v", err)
		}
		reqBody = bytes.NewBuffer(jsonBody)
	}

	req, err := http.NewRequest(method, c.BaseURL+path, reqBody)
	if err != nil {
		t.Fatalf("Failed to create request: %v", err)
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		t.Fatalf("Failed to make request: %v", err)
	}

	return resp
}

// decode reads a JSON response body into out, failing the test on any error.
func decode(t *testing.T, resp *http.Response, expectedStatus int, out interface{}) {
	t.Helper()
	defer resp.Body.Close()

	if resp.StatusCode != expectedStatus {
		body, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(body))
	}
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("Failed to decode response: %v", err)
		}
	}
}

// decodeBody reads a JSON body without status assertions, for goroutines
// that must not call t.Fatalf.
func decodeBody(resp *http.Response, out interface{}) error {
	return json.NewDecoder(resp.Body).Decode(out)
}

// expectError asserts a failed response and returns its error body.
func expectError(t *testing.T, resp *http.Response, expectedStatus int) models.ErrorResponse {
	t.Helper()
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != expectedStatus {
		t.Fatalf("Expected status %d, got %d. Body: %s", expectedStatus, resp.StatusCode, string(body))
	}

	var errResp models.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err != nil {
		t.Fatalf("Failed to decode error response %q: %v", string(body), err)
	}
	return errResp
}

// HealthCheck verifies the API is up
func (c *TestClient) HealthCheck(t *testing.T) {
	resp := c.makeRequest(t, "GET", "/health", nil)
	decode(t, resp, http.StatusOK, nil)
}

// CreateEvent creates a new event
func (c *TestClient) CreateEvent(t *testing.T, req models.CreateEventRequest) *models.Event {
	resp := c.makeRequest(t, "POST", "/api/events", req)
	var event models.Event
	decode(t, resp, http.StatusCreated, &event)
	return &event
}

// ListEvents lists all events
func (c *TestClient) ListEvents(t *testing.T) []models.ListEventsResponseItem {
	resp := c.makeRequest(t, "GET", "/api/events", nil)
	var events []models.ListEventsResponseItem
	decode(t, resp, http.StatusOK, &events)
	return events
}

// AdvanceEvent moves an event one lifecycle step forward
func (c *TestClient) AdvanceEvent(t *testing.T, eventID int64) models.AdvanceEventResponse {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/events/%d/advance", eventID), nil)
	var out models.AdvanceEventResponse
	decode(t, resp, http.StatusOK, &out)
	return out
}

// ActivateTicketing enables ticketing for an event
func (c *TestClient) ActivateTicketing(t *testing.T, eventID int64, req models.ActivateTicketingRequest) *models.TicketedEvent {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/events/%d/ticketing", eventID), req)
	var te models.TicketedEvent
	decode(t, resp, http.StatusCreated, &te)
	return &te
}

// GetTicketing fetches the ticketing record for an event
func (c *TestClient) GetTicketing(t *testing.T, eventID int64) *models.TicketedEvent {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/events/%d/ticketing", eventID), nil)
	var te models.TicketedEvent
	decode(t, resp, http.StatusOK, &te)
	return &te
}

// UpdateTicketing applies a suspend/resume action or flag change
func (c *TestClient) UpdateTicketing(t *testing.T, eventID int64, req models.UpdateTicketingRequest) *models.TicketedEvent {
	resp := c.makeRequest(t, "PATCH", fmt.Sprintf("/api/events/%d/ticketing", eventID), req)
	var te models.TicketedEvent
	decode(t, resp, http.StatusOK, &te)
	return &te
}

// CreateSector adds a capacity sector to a ticketed event
func (c *TestClient) CreateSector(t *testing.T, eventID int64, req models.CreateSectorRequest) *models.Sector {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/events/%d/sectors", eventID), req)
	var sector models.Sector
	decode(t, resp, http.StatusCreated, &sector)
	return &sector
}

// GetSector fetches one sector
func (c *TestClient) GetSector(t *testing.T, sectorID int64) *models.Sector {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/sectors/%d", sectorID), nil)
	var sector models.Sector
	decode(t, resp, http.StatusOK, &sector)
	return &sector
}

// IssueTicket issues one ticket in a sector
func (c *TestClient) IssueTicket(t *testing.T, sectorID int64, req models.IssueTicketRequest) *models.IssueTicketResponse {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/sectors/%d/tickets", sectorID), req)
	var out models.IssueTicketResponse
	decode(t, resp, http.StatusCreated, &out)
	return &out
}

// CancelTicket voids a ticket and releases its seat
func (c *TestClient) CancelTicket(t *testing.T, ticketID int64, reason string) *models.Ticket {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/tickets/%d/cancel", ticketID),
		models.CancelTicketRequest{ReasonCode: reason})
	var ticket models.Ticket
	decode(t, resp, http.StatusOK, &ticket)
	return &ticket
}

// GetTicket fetches one ticket
func (c *TestClient) GetTicket(t *testing.T, ticketID int64) *models.Ticket {
	resp := c.makeRequest(t, "GET", fmt.Sprintf("/api/tickets/%d", ticketID), nil)
	var ticket models.Ticket
	decode(t, resp, http.StatusOK, &ticket)
	return &ticket
}

// OpenTransaction opens a pending purchase transaction
func (c *TestClient) OpenTransaction(t *testing.T, eventID int64, method string) *models.Transaction {
	resp := c.makeRequest(t, "POST", "/api/transactions",
		models.OpenTransactionRequest{EventID: eventID, PaymentMethod: method})
	var txn models.Transaction
	decode(t, resp, http.StatusCreated, &txn)
	return &txn
}

// AttachTickets attaches tickets to a pending transaction
func (c *TestClient) AttachTickets(t *testing.T, txnID int64, ticketIDs []int64) *models.Transaction {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/transactions/%d/tickets", txnID),
		models.AttachTicketsRequest{TicketIDs: ticketIDs})
	var txn models.Transaction
	decode(t, resp, http.StatusOK, &txn)
	return &txn
}

// CompleteTransaction settles a pending transaction
func (c *TestClient) CompleteTransaction(t *testing.T, txnID int64, req models.CompleteTransactionRequest) *models.Transaction {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/transactions/%d/complete", txnID), req)
	var txn models.Transaction
	decode(t, resp, http.StatusOK, &txn)
	return &txn
}

// RefundTransaction reverts a completed transaction
func (c *TestClient) RefundTransaction(t *testing.T, txnID int64, reason string) *models.Transaction {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/transactions/%d/refund", txnID),
		models.FailTransactionRequest{Reason: reason})
	var txn models.Transaction
	decode(t, resp, http.StatusOK, &txn)
	return &txn
}

// CreateNameChange requests a holder change for a ticket
func (c *TestClient) CreateNameChange(t *testing.T, req models.CreateNameChangeRequest) *models.NameChange {
	resp := c.makeRequest(t, "POST", "/api/name-changes", req)
	var nc models.NameChange
	decode(t, resp, http.StatusCreated, &nc)
	return &nc
}

// ApproveNameChange approves a pending name change
func (c *TestClient) ApproveNameChange(t *testing.T, id int64) *models.NameChange {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/name-changes/%d/approve", id), nil)
	var nc models.NameChange
	decode(t, resp, http.StatusOK, &nc)
	return &nc
}

// CreateResale lists a ticket for resale
func (c *TestClient) CreateResale(t *testing.T, req models.CreateResaleRequest) *models.Resale {
	resp := c.makeRequest(t, "POST", "/api/resales", req)
	var resale models.Resale
	decode(t, resp, http.StatusCreated, &resale)
	return &resale
}

// CompleteResale transfers the listed ticket to a buyer
func (c *TestClient) CompleteResale(t *testing.T, id int64, buyer models.HolderIdentity) *models.Resale {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/resales/%d/complete", id),
		models.CompleteResaleRequest{Buyer: buyer})
	var resale models.Resale
	decode(t, resp, http.StatusOK, &resale)
	return &resale
}

// CreateScannerAssignment assigns a validation agent to an event
func (c *TestClient) CreateScannerAssignment(t *testing.T, req models.CreateScannerAssignmentRequest) *models.ScannerAssignment {
	resp := c.makeRequest(t, "POST", "/api/scanner-assignments", req)
	var assignment models.ScannerAssignment
	decode(t, resp, http.StatusCreated, &assignment)
	return &assignment
}

// UseTicket validates a ticket at the gate
func (c *TestClient) UseTicket(t *testing.T, ticketID, scannerUserID int64) *models.Ticket {
	resp := c.makeRequest(t, "POST", fmt.Sprintf("/api/tickets/%d/use", ticketID),
		models.UseTicketRequest{ScannerUserID: scannerUserID})
	var ticket models.Ticket
	decode(t, resp, http.StatusOK, &ticket)
	return &ticket
}
