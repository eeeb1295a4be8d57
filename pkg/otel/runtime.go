package otel

import (
	"time"

	hostmetrics "go.opentelemetry.io/contrib/instrumentation/host"
	"go.opentelemetry.io/contrib/instrumentation/runtime"
)

// StartRuntimeMetrics starts Go runtime and host metric collection on the
// global meter provider: allocations, GC pauses, CPU, network and disk.
func StartRuntimeMetrics() error {
	if err := runtime.Start(
		runtime.WithMinimumReadMemStatsInterval(30 * time.Second),
	); err != nil {
		return err
	}

	return hostmetrics.Start()
}
