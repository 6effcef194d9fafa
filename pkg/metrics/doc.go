// Package metrics exposes Prometheus instrumentation for the onboarding flow:
// subscription attempt outcomes and latency, directives served to renderers,
// throttled subscribe requests and live sessions.
//
// All recording methods are safe on a nil *Metrics, so callers can keep an
// optional field without guarding every call.
//
//	m, err := metrics.New(prometheus.NewRegistry(), metrics.WithSessionCount(registry.Len))
//	if err != nil {
//	    return err
//	}
//	router.Handle("/metrics", m.Handler())
package metrics
