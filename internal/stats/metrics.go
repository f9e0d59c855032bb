package stats

import (
	"github.com/prometheus/client_golang/prometheus"
)

// SnapshotSource yields the current aggregate.
type SnapshotSource interface {
	Snapshot() Snapshot
}

// MetricsCollector exposes aggregate counters as Prometheus metrics, reading
// one snapshot per scrape.
type MetricsCollector struct {
	src SnapshotSource

	messages *prometheus.Desc
	recent   *prometheus.Desc
	minLen   *prometheus.Desc
	maxLen   *prometheus.Desc
	totalLen *prometheus.Desc
}

// NewMetricsCollector creates a collector over src. Register it with a
// prometheus.Registerer to publish it.
func NewMetricsCollector(src SnapshotSource) *MetricsCollector {
	return &MetricsCollector{
		src: src,
		messages: prometheus.NewDesc("logstats_messages_total",
			"Matched log messages by level", []string{"level"}, nil),
		recent: prometheus.NewDesc("logstats_recent_messages",
			"Matched log messages in the retention window", nil, nil),
		minLen: prometheus.NewDesc("logstats_message_length_min",
			"Smallest non-empty message length in bytes", nil, nil),
		maxLen: prometheus.NewDesc("logstats_message_length_max",
			"Largest message length in bytes", nil, nil),
		totalLen: prometheus.NewDesc("logstats_message_length_bytes_total",
			"Sum of message lengths in bytes", nil, nil),
	}
}

// Describe implements prometheus.Collector.
func (c *MetricsCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.messages
	ch <- c.recent
	ch <- c.minLen
	ch <- c.maxLen
	ch <- c.totalLen
}

// Collect implements prometheus.Collector.
func (c *MetricsCollector) Collect(ch chan<- prometheus.Metric) {
	s := c.src.Snapshot()
	for level, n := range s.Levels {
		ch <- prometheus.MustNewConstMetric(c.messages, prometheus.CounterValue, float64(n), level.String())
	}
	ch <- prometheus.MustNewConstMetric(c.recent, prometheus.GaugeValue, float64(s.Recent))
	ch <- prometheus.MustNewConstMetric(c.totalLen, prometheus.CounterValue, float64(s.TotalLen))
	if s.HasLengths {
		ch <- prometheus.MustNewConstMetric(c.minLen, prometheus.GaugeValue, float64(s.MinLen))
		ch <- prometheus.MustNewConstMetric(c.maxLen, prometheus.GaugeValue, float64(s.MaxLen))
	}
}
