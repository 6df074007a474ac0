// Package metrics exposes Prometheus counters and gauges for the server.
// Every counter here is an atomic update made by the caller immediately
// before or after a Log Facade call, never while the facade's own mutex
// is held, so metrics bookkeeping can never be the thing that makes a
// facade operation suspend.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics bundles the collectors registered against a private registry,
// so embedding the server in a test never collides with
// prometheus.DefaultRegisterer.
type Metrics struct {
	Registry *prometheus.Registry

	ConnectionsTotal       prometheus.Counter
	ConnectionsInFlight    prometheus.Gauge
	RecordsAppendedTotal   prometheus.Counter
	RecordsOverwrittenTotal prometheus.Counter
	BytesEchoedTotal       prometheus.Counter
	SeekMalformedTotal     prometheus.Counter
	SeekAppliedTotal       prometheus.Counter
}

// New builds a Metrics bundle and registers every collector.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		Registry: reg,
		ConnectionsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aesdlogd",
			Name:      "connections_total",
			Help:      "Total TCP connections accepted.",
		}),
		ConnectionsInFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "aesdlogd",
			Name:      "connections_in_flight",
			Help:      "Connections currently being served.",
		}),
		RecordsAppendedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aesdlogd",
			Name:      "records_appended_total",
			Help:      "Records appended to the ring log.",
		}),
		RecordsOverwrittenTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aesdlogd",
			Name:      "records_overwritten_total",
			Help:      "Records evicted from the ring because it was full.",
		}),
		BytesEchoedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aesdlogd",
			Name:      "bytes_echoed_total",
			Help:      "Bytes written back to clients as log echoes.",
		}),
		SeekMalformedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aesdlogd",
			Name:      "seek_malformed_total",
			Help:      "Seek directives rejected as malformed or out of range.",
		}),
		SeekAppliedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "aesdlogd",
			Name:      "seek_applied_total",
			Help:      "Seek directives successfully applied to a cursor.",
		}),
	}

	reg.MustRegister(
		m.ConnectionsTotal,
		m.ConnectionsInFlight,
		m.RecordsAppendedTotal,
		m.RecordsOverwrittenTotal,
		m.BytesEchoedTotal,
		m.SeekMalformedTotal,
		m.SeekAppliedTotal,
	)

	return m
}
