package observability

import "github.com/prometheus/client_golang/prometheus"

// BusStats is a point-in-time view of one bus.
type BusStats struct {
	Name        string
	Subscribers int
	Buffered    int
}

// StatsSource reports the current buses. *namedbus.Directory implements it.
type StatsSource interface {
	Stats() []BusStats
}

// Collector exposes directory state as Prometheus gauges. Values are read
// from the source on every scrape, so nothing is cached between scrapes.
type Collector struct {
	source StatsSource

	buses       *prometheus.Desc
	subscribers *prometheus.Desc
	buffered    *prometheus.Desc
}

var _ prometheus.Collector = (*Collector)(nil)

// NewCollector creates a collector for source. Register it with a
// prometheus.Registerer to expose it.
func NewCollector(source StatsSource) *Collector {
	return &Collector{
		source: source,
		buses: prometheus.NewDesc(
			"namedbus_buses",
			"Number of live buses.",
			nil, nil,
		),
		subscribers: prometheus.NewDesc(
			"namedbus_subscribers",
			"Number of subscribers registered on a bus.",
			[]string{"bus"}, nil,
		),
		buffered: prometheus.NewDesc(
			"namedbus_buffered_events",
			"Number of events waiting in a bus's delay buffer.",
			[]string{"bus"}, nil,
		),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.buses
	ch <- c.subscribers
	ch <- c.buffered
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	stats := c.source.Stats()
	ch <- prometheus.MustNewConstMetric(c.buses, prometheus.GaugeValue, float64(len(stats)))
	for _, s := range stats {
		ch <- prometheus.MustNewConstMetric(c.subscribers, prometheus.GaugeValue, float64(s.Subscribers), s.Name)
		ch <- prometheus.MustNewConstMetric(c.buffered, prometheus.GaugeValue, float64(s.Buffered), s.Name)
	}
}
