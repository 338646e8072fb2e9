// Package monitoring records per-operation timings and row counts for
// algebra operations and exports them as Prometheus metrics.
package monitoring

import (
	"sort"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// operationDuration tracks algebra operation latency
	operationDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "linframe_operation_duration_seconds",
		Help:    "Algebra operation duration in seconds",
		Buckets: prometheus.ExponentialBuckets(0.0001, 2, 14), // 0.1ms to ~1.6s
	}, []string{"operation"})

	// operationRows counts result rows produced per operation
	operationRows = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linframe_operation_rows_total",
		Help: "Total result rows produced by algebra operations",
	}, []string{"operation"})

	// operationErrors counts failed operations
	operationErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "linframe_operation_errors_total",
		Help: "Total failed algebra operations",
	}, []string{"operation"})
)

// OperationMetrics represents one recorded operation.
type OperationMetrics struct {
	Operation     string        `json:"operation"`
	Duration      time.Duration `json:"duration"`
	RowsProcessed int64         `json:"rows_processed"`
	Failed        bool          `json:"failed"`
}

// DefaultHistory is the number of recent operations a collector keeps.
const DefaultHistory = 1024

// MetricsCollector keeps the most recent operations in a fixed-size ring and
// running totals over everything it has recorded.
type MetricsCollector struct {
	mu      sync.RWMutex
	history []OperationMetrics
	next    int
	full    bool
	totals  MetricsSummary
	enabled bool
}

// NewMetricsCollector creates a collector keeping DefaultHistory operations.
func NewMetricsCollector(enabled bool) *MetricsCollector {
	return NewMetricsCollectorSize(enabled, DefaultHistory)
}

// NewMetricsCollectorSize creates a collector keeping the last size
// operations. Sizes below 1 keep one.
func NewMetricsCollectorSize(enabled bool, size int) *MetricsCollector {
	return &MetricsCollector{history: make([]OperationMetrics, max(size, 1)), enabled: enabled}
}

// IsEnabled returns whether metrics collection is enabled.
func (mc *MetricsCollector) IsEnabled() bool {
	mc.mu.RLock()
	defer mc.mu.RUnlock()
	return mc.enabled
}

// SetEnabled enables or disables metrics collection.
func (mc *MetricsCollector) SetEnabled(enabled bool) {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	mc.enabled = enabled
}

// RecordOperation runs fn and, when enabled, records its duration and the
// number of rows it reports.
func (mc *MetricsCollector) RecordOperation(operation string, fn func() (int, error)) error {
	if !mc.IsEnabled() {
		_, err := fn()
		return err
	}

	start := time.Now()
	rows, err := fn()
	duration := time.Since(start)

	operationDuration.WithLabelValues(operation).Observe(duration.Seconds())
	if err != nil {
		operationErrors.WithLabelValues(operation).Inc()
	} else {
		operationRows.WithLabelValues(operation).Add(float64(rows))
	}

	mc.mu.Lock()
	mc.record(OperationMetrics{
		Operation:     operation,
		Duration:      duration,
		RowsProcessed: int64(rows),
		Failed:        err != nil,
	})
	mc.mu.Unlock()

	return err
}

func (mc *MetricsCollector) record(m OperationMetrics) {
	mc.history[mc.next] = m
	mc.next = (mc.next + 1) % len(mc.history)
	if mc.next == 0 {
		mc.full = true
	}

	if mc.totals.OperationCounts == nil {
		mc.totals.OperationCounts = make(map[string]int)
	}
	mc.totals.TotalOperations++
	mc.totals.TotalDuration += m.Duration
	mc.totals.TotalRows += m.RowsProcessed
	mc.totals.OperationCounts[m.Operation]++
	if m.Failed {
		mc.totals.Failures++
	}
}

// GetMetrics returns the retained operations, oldest first.
func (mc *MetricsCollector) GetMetrics() []OperationMetrics {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if !mc.full {
		result := make([]OperationMetrics, mc.next)
		copy(result, mc.history[:mc.next])
		return result
	}
	result := make([]OperationMetrics, 0, len(mc.history))
	result = append(result, mc.history[mc.next:]...)
	return append(result, mc.history[:mc.next]...)
}

// Clear drops the retained operations and resets the totals.
func (mc *MetricsCollector) Clear() {
	mc.mu.Lock()
	defer mc.mu.Unlock()
	clear(mc.history)
	mc.next = 0
	mc.full = false
	mc.totals = MetricsSummary{}
}

// GetSummary returns aggregate statistics over every recorded operation,
// including those that fell out of the retained history.
func (mc *MetricsCollector) GetSummary() MetricsSummary {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	if mc.totals.TotalOperations == 0 {
		return MetricsSummary{}
	}
	summary := mc.totals
	summary.OperationCounts = make(map[string]int, len(mc.totals.OperationCounts))
	for op, n := range mc.totals.OperationCounts {
		summary.OperationCounts[op] = n
	}
	summary.AverageDuration = summary.TotalDuration / time.Duration(summary.TotalOperations)
	return summary
}

// MetricsSummary provides aggregate statistics for collected metrics.
type MetricsSummary struct {
	TotalOperations int            `json:"total_operations"`
	Failures        int            `json:"failures"`
	TotalDuration   time.Duration  `json:"total_duration"`
	TotalRows       int64          `json:"total_rows"`
	OperationCounts map[string]int `json:"operation_counts"`
	AverageDuration time.Duration  `json:"average_duration"`
}

// Operations returns the recorded operation names in sorted order.
func (s MetricsSummary) Operations() []string {
	ops := make([]string, 0, len(s.OperationCounts))
	for op := range s.OperationCounts {
		ops = append(ops, op)
	}
	sort.Strings(ops)
	return ops
}
