// Prometheus collectors for the per-tick aggregate series
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"rescuesim/internal/telemetry"
)

// Collector exports the aggregate mission series as prometheus metrics. It
// implements the simulator's stats observer and is scraped through the
// admin server's /metrics endpoint.
type Collector struct {
	registry *prometheus.Registry

	ticks        prometheus.Counter
	coverage     prometheus.Gauge
	found        prometheus.Gauge
	rescued      prometheus.Gauge
	activeDrones prometheus.Gauge
}

// NewCollector creates a Collector with its own registry.
func NewCollector(missionID string) *Collector {
	labels := prometheus.Labels{"mission_id": missionID}
	c := &Collector{
		registry: prometheus.NewRegistry(),
		ticks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace:   "rescuesim",
			Name:        "ticks_total",
			Help:        "Number of simulation ticks executed.",
			ConstLabels: labels,
		}),
		coverage: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rescuesim",
			Name:        "coverage_ratio",
			Help:        "Fraction of non-obstacle cells visited by at least one drone.",
			ConstLabels: labels,
		}),
		found: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rescuesim",
			Name:        "victims_found",
			Help:        "Distinct victims ever detected by the swarm.",
			ConstLabels: labels,
		}),
		rescued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rescuesim",
			Name:        "victims_rescued",
			Help:        "Victims delivered to a hub.",
			ConstLabels: labels,
		}),
		activeDrones: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   "rescuesim",
			Name:        "active_drones",
			Help:        "Drones not in the failed state.",
			ConstLabels: labels,
		}),
	}
	c.registry.MustRegister(c.ticks, c.coverage, c.found, c.rescued, c.activeDrones)
	return c
}

// ObserveStats updates all metrics from one aggregate record.
func (c *Collector) ObserveStats(row telemetry.StatsRow) {
	c.ticks.Inc()
	c.coverage.Set(row.Coverage)
	c.found.Set(float64(row.Found))
	c.rescued.Set(float64(row.Rescued))
	c.activeDrones.Set(float64(row.ActiveDrones))
}

// Registry exposes the underlying registry for the HTTP handler.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
