package telemetry

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Collector holds the process's Prometheus instruments for the
// simulation core. It is deliberately passive: nothing in internal/world
// imports it or prometheus directly, per the ambient-stack note that the
// core exposes counters without owning an HTTP transport. The host
// process (cmd/kartoffelsd) registers Collector and feeds it from the
// snapshot/event streams it already subscribes to.
type Collector struct {
	AliveBots prometheus.Gauge
	QueuedBots prometheus.Gauge
	DeadBots   prometheus.Gauge

	TickDuration prometheus.Histogram
	BotsKilled   prometheus.Counter
}

// NewCollector constructs a Collector with a world id label baked into
// the constant label set, so a multi-world process can register one per
// world without name collisions.
func NewCollector(worldID string) *Collector {
	labels := prometheus.Labels{"world": worldID}

	return &Collector{
		AliveBots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "kartoffels_alive_bots",
			Help:        "Number of bots currently alive in the world.",
			ConstLabels: labels,
		}),
		QueuedBots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "kartoffels_queued_bots",
			Help:        "Number of bots waiting to spawn.",
			ConstLabels: labels,
		}),
		DeadBots: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "kartoffels_dead_bots",
			Help:        "Number of dead bots still retained for observers.",
			ConstLabels: labels,
		}),
		TickDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:        "kartoffels_tick_duration_seconds",
			Help:        "Wall-clock time spent resolving one world tick.",
			ConstLabels: labels,
			Buckets:     prometheus.DefBuckets,
		}),
		BotsKilled: prometheus.NewCounter(prometheus.CounterOpts{
			Name:        "kartoffels_bots_killed_total",
			Help:        "Total bot deaths resolved across all ticks.",
			ConstLabels: labels,
		}),
	}
}

// MustRegister registers every instrument on reg, panicking on a
// duplicate-registration error — matching promauto's convention for
// process-lifetime collectors that must never fail to register.
func (c *Collector) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(c.AliveBots, c.QueuedBots, c.DeadBots, c.TickDuration, c.BotsKilled)
}

// SetCounts updates the population gauges from a snapshot's bot counts.
func (c *Collector) SetCounts(alive, queued, dead int) {
	c.AliveBots.Set(float64(alive))
	c.QueuedBots.Set(float64(queued))
	c.DeadBots.Set(float64(dead))
}

// ObserveTick records how long a tick took to resolve.
func (c *Collector) ObserveTick(d time.Duration) {
	c.TickDuration.Observe(d.Seconds())
}

// RecordKills adds n to the total kill counter.
func (c *Collector) RecordKills(n int) {
	if n <= 0 {
		return
	}
	c.BotsKilled.Add(float64(n))
}
