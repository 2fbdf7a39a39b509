// Package metrics declares the Prometheus collectors of the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "microfinance"

// LoanQuotes counts quote computations by outcome (ok, incomplete, invalid, cached).
var LoanQuotes = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "loan",
	Name:      "quotes_total",
	Help:      "Total loan quote computations by outcome.",
}, []string{"outcome"})

var LoansOriginated = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "loan",
	Name:      "originated_total",
	Help:      "Total loans originated.",
})

var PaymentsRecorded = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "loan",
	Name:      "payments_total",
	Help:      "Total loan repayments recorded.",
})

var JournalEntriesPosted = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "journal_entries_total",
	Help:      "Total journal entries posted.",
})

// Reports counts report builds by report name and verdict.
var Reports = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: namespace,
	Subsystem: "ledger",
	Name:      "reports_total",
	Help:      "Total accounting reports built, by report and balance verdict.",
}, []string{"report", "balanced"})

var HTTPDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: namespace,
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by route and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

// Verdict renders a balance flag as a label value.
func Verdict(balanced bool) string {
	if balanced {
		return "true"
	}
	return "false"
}
