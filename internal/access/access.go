package access

import "serata/internal/models"

// Capability is one of the scanning permissions of an assignment.
type Capability string

const (
	CapabilityLists   Capability = "lists"
	CapabilityTables  Capability = "tables"
	CapabilityTickets Capability = "tickets"
)

// CanScan reports whether the assignment may validate against the sector.
// An empty allowed-sector set means every sector of the event. Pure
// function; called on every validation attempt.
func CanScan(assignment *models.ScannerAssignment, sectorID int64, capability Capability) bool {
	if assignment == nil {
		return false
	}

	var granted bool
	switch capability {
	case CapabilityLists:
		granted = assignment.CanScanLists
	case CapabilityTables:
		granted = assignment.CanScanTables
	case CapabilityTickets:
		granted = assignment.CanScanTickets
	}
	if !granted {
		return false
	}

	if len(assignment.AllowedSectorIDs) == 0 {
		return true
	}

	for _, id := range assignment.AllowedSectorIDs {
		if id == sectorID {
			return true
		}
	}
	return false
}
