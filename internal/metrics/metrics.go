// Package metrics collects and exposes Prometheus metrics.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder is the metrics interface consumed by the service layer.
type Recorder interface {
	RecordGroupCreated()
	RecordExpenseCreated()
	RecordSplitMismatch()
	RecordAuthFailure()
}

// Collector records metrics into a Prometheus registry.
type Collector struct {
	groupsCreated   prometheus.Counter
	expensesCreated prometheus.Counter
	splitMismatches prometheus.Counter
	authFailures    prometheus.Counter
}

// NewCollector creates a Collector and registers its metrics with reg.
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		groupsCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitly_groups_created_total",
			Help: "Total number of groups created",
		}),
		expensesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitly_expenses_created_total",
			Help: "Total number of expenses created",
		}),
		splitMismatches: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitly_split_mismatches_total",
			Help: "Total number of expense creations rejected for a split-sum mismatch",
		}),
		authFailures: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "splitly_auth_failures_total",
			Help: "Total number of failed authentication attempts",
		}),
	}

	reg.MustRegister(
		c.groupsCreated,
		c.expensesCreated,
		c.splitMismatches,
		c.authFailures,
	)

	return c
}

func (c *Collector) RecordGroupCreated()   { c.groupsCreated.Inc() }
func (c *Collector) RecordExpenseCreated() { c.expensesCreated.Inc() }
func (c *Collector) RecordSplitMismatch()  { c.splitMismatches.Inc() }
func (c *Collector) RecordAuthFailure()    { c.authFailures.Inc() }

// Nop is a Recorder that discards everything. Used in tests.
type Nop struct{}

func (Nop) RecordGroupCreated()   {}
func (Nop) RecordExpenseCreated() {}
func (Nop) RecordSplitMismatch()  {}
func (Nop) RecordAuthFailure()    {}

// Handler returns the HTTP handler for Prometheus scrapes.
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}
