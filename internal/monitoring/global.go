package monitoring

import (
	"sync"
)

//nolint:gochecknoglobals // process-wide collector, like the global config
var (
	globalCollector *MetricsCollector
	globalMutex     sync.RWMutex
)

// SetGlobalCollector sets the global metrics collector.
func SetGlobalCollector(collector *MetricsCollector) {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	globalCollector = collector
}

// GetGlobalCollector returns the global metrics collector, or nil.
func GetGlobalCollector() *MetricsCollector {
	globalMutex.RLock()
	defer globalMutex.RUnlock()
	return globalCollector
}

// RecordGlobalOperation records an operation using the global collector.
// Without one, fn just runs.
func RecordGlobalOperation(operation string, fn func() (int, error)) error {
	collector := GetGlobalCollector()
	if collector == nil {
		_, err := fn()
		return err
	}
	return collector.RecordOperation(operation, fn)
}

// EnableGlobalMonitoring installs an enabled collector unless one is
// already enabled.
func EnableGlobalMonitoring() {
	globalMutex.Lock()
	defer globalMutex.Unlock()
	if globalCollector == nil {
		globalCollector = NewMetricsCollector(true)
		return
	}
	globalCollector.SetEnabled(true)
}

// DisableGlobalMonitoring disables the global metrics collector.
func DisableGlobalMonitoring() {
	if collector := GetGlobalCollector(); collector != nil {
		collector.SetEnabled(false)
	}
}

// GetGlobalSummary returns a summary from the global collector.
func GetGlobalSummary() MetricsSummary {
	collector := GetGlobalCollector()
	if collector == nil {
		return MetricsSummary{}
	}
	return collector.GetSummary()
}
