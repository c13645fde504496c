package repository

import (
	"serata/internal/database"
)

type Repositories struct {
	Events       *EventRepository
	Sectors      *SectorRepository
	Tickets      *TicketRepository
	Transactions *TransactionRepository
	Mutations    *MutationRepository
	Scanners     *ScannerRepository
}

func NewRepositories(db *database.DB) *Repositories {
	return &Repositories{
		Events:       NewEventRepository(db),
		Sectors:      NewSectorRepository(db),
		Tickets:      NewTicketRepository(db),
		Transactions: NewTransactionRepository(db),
		Mutations:    NewMutationRepository(db),
		Scanners:     NewScannerRepository(db),
	}
}
