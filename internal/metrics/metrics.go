package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ticketsIssued = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_issued_total",
			Help: "Tickets issued per sector",
		},
		[]string{"sector"},
	)

	ticketsCancelled = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tickets_cancelled_total",
			Help: "Tickets cancelled per reason code",
		},
		[]string{"reason"},
	)

	capacityConflicts = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "capacity_conflicts_total",
			Help: "Issue attempts rejected for insufficient capacity",
		},
		[]string{"sector"},
	)

	transactionsCompleted = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "transactions_completed_total",
			Help: "Transactions that reached completed",
		},
	)

	consistencyFailures = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "consistency_failures_total",
			Help: "Aborted operations due to broken internal invariants",
		},
	)

	feedFramesDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "feed_frames_dropped_total",
			Help: "Feed frames dropped on slow subscribers",
		},
	)

	reaperSweeps = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "reaper_sweeps_total",
			Help: "Records closed by the background reaper",
		},
		[]string{"kind"},
	)
)

func TicketIssued(sector string)      { ticketsIssued.WithLabelValues(sector).Inc() }
func TicketCancelled(reason string)   { ticketsCancelled.WithLabelValues(reason).Inc() }
func CapacityConflict(sector string)  { capacityConflicts.WithLabelValues(sector).Inc() }
func TransactionCompleted()           { transactionsCompleted.Inc() }
func ConsistencyFailure()             { consistencyFailures.Inc() }
func FeedFrameDropped()               { feedFramesDropped.Inc() }
func ReaperSwept(kind string, n int)  { reaperSweeps.WithLabelValues(kind).Add(float64(n)) }
