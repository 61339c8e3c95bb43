package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RequestsCreated = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armory_requests_created_total",
		Help: "Equipment requests created, by type.",
	}, []string{"type"})

	RequestsProcessed = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armory_requests_processed_total",
		Help: "Equipment requests processed, by type and outcome.",
	}, []string{"type", "outcome"})

	ItemsIssued = promauto.NewCounter(prometheus.CounterOpts{
		Name: "armory_items_issued_total",
		Help: "Items checked out to officers.",
	})

	ItemsReturned = promauto.NewCounter(prometheus.CounterOpts{
		Name: "armory_items_returned_total",
		Help: "Items returned to their pools.",
	})

	LedgerWriteFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "armory_ledger_write_failures_total",
		Help: "Officer-history ledger writes that failed and were swallowed.",
	})

	LoginAttempts = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "armory_login_attempts_total",
		Help: "Login attempts, by outcome.",
	}, []string{"outcome"})
)
