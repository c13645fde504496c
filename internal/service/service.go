package service

import (
	"serata/internal/cache"
	"serata/internal/config"
	"serata/internal/feed"
	"serata/internal/repository"
	"serata/internal/search"
)

// Services wires the business layer. Cache and search are optional: a nil
// client degrades to database-only behavior.
type Services struct {
	Events       *EventService
	Sectors      *SectorService
	Tickets      *TicketService
	Transactions *TransactionService
	Mutations    *MutationService
	Scanners     *ScannerService
}

func NewServices(repos *repository.Repositories, fd *feed.Feed, cacheClient *cache.Client, searchClient *search.ElasticsearchClient, cfg *config.Config) *Services {
	events := &EventService{
		repos:  repos,
		feed:   fd,
		cache:  cacheClient,
		search: searchClient,
	}

	return &Services{
		Events:  events,
		Sectors: &SectorService{repos: repos, feed: fd},
		Tickets: &TicketService{
			repos:  repos,
			feed:   fd,
			fiscal: cfg.Fiscal,
		},
		Transactions: &TransactionService{repos: repos, feed: fd},
		Mutations: &MutationService{
			repos:  repos,
			feed:   fd,
			fiscal: cfg.Fiscal,
		},
		Scanners: &ScannerService{repos: repos, cache: cacheClient},
	}
}
