package relay

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the relay's Prometheus instruments.
type Metrics struct {
	peersConnected prometheus.Gauge
	peersAccepted  prometheus.Counter
	acceptErrors   prometheus.Counter
	bytesReceived  prometheus.Counter
	bytesForwarded prometheus.Counter
	sendErrors     prometheus.Counter
}

func newMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		peersConnected: f.NewGauge(prometheus.GaugeOpts{
			Name: "logrelay_peers_connected",
			Help: "Currently connected relay peers",
		}),
		peersAccepted: f.NewCounter(prometheus.CounterOpts{
			Name: "logrelay_peers_accepted_total",
			Help: "Total peer connections accepted",
		}),
		acceptErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "logrelay_accept_errors_total",
			Help: "Total failed accept calls",
		}),
		bytesReceived: f.NewCounter(prometheus.CounterOpts{
			Name: "logrelay_bytes_received_total",
			Help: "Bytes read from peers",
		}),
		bytesForwarded: f.NewCounter(prometheus.CounterOpts{
			Name: "logrelay_bytes_forwarded_total",
			Help: "Bytes written to peers by broadcast",
		}),
		sendErrors: f.NewCounter(prometheus.CounterOpts{
			Name: "logrelay_send_errors_total",
			Help: "Failed writes to peers during broadcast",
		}),
	}
}
