// Package metrics declares the Prometheus collectors exported on /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// ─── HTTP ───────────────────────────────────────────────────────────────────

var HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
	Namespace: "backoffice",
	Subsystem: "http",
	Name:      "request_duration_seconds",
	Help:      "HTTP request latency by method, route and status.",
	Buckets:   prometheus.DefBuckets,
}, []string{"method", "route", "status"})

var RateLimited = promauto.NewCounter(prometheus.CounterOpts{
	Namespace: "backoffice",
	Subsystem: "http",
	Name:      "rate_limited_total",
	Help:      "Total requests rejected by the per-client rate limiter.",
})

// ─── Ledger ─────────────────────────────────────────────────────────────────

// LedgerEntries counts appended ledger rows. owner is debt or expense,
// kind is payment, addition, payment_void or addition_void.
var LedgerEntries = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "backoffice",
	Subsystem: "ledger",
	Name:      "entries_total",
	Help:      "Total ledger entries appended.",
}, []string{"owner", "kind"})

var LedgerRejections = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "backoffice",
	Subsystem: "ledger",
	Name:      "rejections_total",
	Help:      "Total ledger mutations rejected by validation.",
}, []string{"owner", "reason"})

// ─── Reminders ──────────────────────────────────────────────────────────────

var DueDebts = promauto.NewGauge(prometheus.GaugeOpts{
	Namespace: "backoffice",
	Subsystem: "reminder",
	Name:      "due_debts",
	Help:      "Unpaid debts due within the reminder window at the last scan.",
})

var DueScans = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "backoffice",
	Subsystem: "reminder",
	Name:      "scans_total",
	Help:      "Total due-debt scans by result.",
}, []string{"result"})

// ─── Inventory ──────────────────────────────────────────────────────────────

var StockMovements = promauto.NewCounterVec(prometheus.CounterOpts{
	Namespace: "backoffice",
	Subsystem: "inventory",
	Name:      "stock_movements_total",
	Help:      "Total stock movements recorded by direction.",
}, []string{"type"})
