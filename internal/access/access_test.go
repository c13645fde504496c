package access

import (
	"testing"

	"serata/internal/models"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func assignment(tickets bool, sectors ...int64) *models.ScannerAssignment {
	return &models.ScannerAssignment{
		UserID:           7,
		EventID:          1,
		CanScanTickets:   tickets,
		CanScanLists:     true,
		AllowedSectorIDs: pq.Int64Array(sectors),
	}
}

func TestCapabilityMustBeGranted(t *testing.T) {
	a := assignment(false)
	assert.False(t, CanScan(a, 10, CapabilityTickets))
	assert.True(t, CanScan(a, 10, CapabilityLists))
	assert.False(t, CanScan(a, 10, CapabilityTables))
}

func TestEmptySectorSetMeansAllSectors(t *testing.T) {
	a := assignment(true)
	assert.True(t, CanScan(a, 1, CapabilityTickets))
	assert.True(t, CanScan(a, 999, CapabilityTickets))
}

func TestRestrictedSectorSet(t *testing.T) {
	a := assignment(true, 3, 5)
	assert.True(t, CanScan(a, 3, CapabilityTickets))
	assert.True(t, CanScan(a, 5, CapabilityTickets))
	assert.False(t, CanScan(a, 4, CapabilityTickets))
}

func TestRestrictionAppliesPerCapability(t *testing.T) {
	// The sector restriction gates every capability, not just tickets.
	a := assignment(true, 3)
	assert.False(t, CanScan(a, 4, CapabilityLists))
	assert.True(t, CanScan(a, 3, CapabilityLists))
}

func TestNilAssignmentDeniesEverything(t *testing.T) {
	assert.False(t, CanScan(nil, 1, CapabilityTickets))
}

func TestUnknownCapabilityDenied(t *testing.T) {
	a := assignment(true)
	assert.False(t, CanScan(a, 1, Capability("stage")))
}
