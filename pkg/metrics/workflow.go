package metrics

import (
	"strings"

	"github.com/prometheus/client_golang/prometheus"
)

// WorkflowMetrics counts order workflow outcomes and audit pipeline appends.
type WorkflowMetrics struct {
	ordersProcessed *prometheus.CounterVec
	auditAppends    *prometheus.CounterVec
	auditFailures   prometheus.Counter
}

// NewWorkflowMetrics registers the workflow metrics on the provided registerer.
func NewWorkflowMetrics(reg prometheus.Registerer) *WorkflowMetrics {
	if reg == nil {
		return &WorkflowMetrics{}
	}
	processed := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "orders_processed_total",
		Help: "Order processing attempts by outcome.",
	}, []string{"outcome"})
	appends := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "audit_log_appends_total",
		Help: "Audit log rows appended by entity kind.",
	}, []string{"model"})
	failures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "audit_log_append_failures_total",
		Help: "Audit log appends that failed and were dropped.",
	})
	reg.MustRegister(processed, appends, failures)
	return &WorkflowMetrics{
		ordersProcessed: processed,
		auditAppends:    appends,
		auditFailures:   failures,
	}
}

// IncOrderProcessed records an order processing attempt outcome.
func (m *WorkflowMetrics) IncOrderProcessed(outcome string) {
	if m == nil || m.ordersProcessed == nil {
		return
	}
	m.ordersProcessed.WithLabelValues(normalizeLabel(outcome)).Inc()
}

// IncAuditAppend records a successful audit append for the named model.
func (m *WorkflowMetrics) IncAuditAppend(model string) {
	if m == nil || m.auditAppends == nil {
		return
	}
	m.auditAppends.WithLabelValues(normalizeLabel(model)).Inc()
}

// IncAuditFailure records a dropped audit append.
func (m *WorkflowMetrics) IncAuditFailure() {
	if m == nil || m.auditFailures == nil {
		return
	}
	m.auditFailures.Inc()
}

func normalizeLabel(value string) string {
	value = strings.TrimSpace(strings.ToLower(value))
	if value == "" {
		return "unknown"
	}
	return value
}
