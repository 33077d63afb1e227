// Package metrics exports combat activity as Prometheus metrics.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/milk9111/combatcore/ecs/component"
	"github.com/milk9111/combatcore/ecs/system"
	"github.com/milk9111/combatcore/pool"
)

const namespace = "combatcore"

// Collector implements the observer hooks of the combat systems and the
// pool manager.
type Collector struct {
	damage      *prometheus.CounterVec
	defeats     *prometheus.CounterVec
	spawned     *prometheus.CounterVec
	terminated  *prometheus.CounterVec
	acquired    *prometheus.CounterVec
	inFlight    prometheus.Gauge
	entities    prometheus.Gauge
	tickSeconds prometheus.Histogram
}

var (
	_ system.Observer = (*Collector)(nil)
	_ pool.Observer   = (*Collector)(nil)
)

// New creates the collector and registers it with reg. A nil reg uses the
// default registerer.
func New(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		damage: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "damage_dealt_total",
			Help:      "Final damage applied, by faction of the damaged entity.",
		}, []string{"faction"}),
		defeats: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "defeats_total",
			Help:      "Combatants defeated, by faction.",
		}, []string{"faction"}),
		spawned: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projectiles_spawned_total",
			Help:      "Projectiles launched, by faction of the shooter.",
		}, []string{"faction"}),
		terminated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "projectiles_terminated_total",
			Help:      "Projectiles ended, by reason.",
		}, []string{"reason"}),
		acquired: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pool_acquired_total",
			Help:      "Pool acquisitions, by kind and whether they overflowed.",
		}, []string{"kind", "overflow"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "projectiles_in_flight",
			Help:      "Projectiles currently flying.",
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "entities",
			Help:      "Live entities in the world.",
		}),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "tick_duration_seconds",
			Help:      "Wall time spent in one simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 12),
		}),
	}
	for _, col := range []prometheus.Collector{
		c.damage, c.defeats, c.spawned, c.terminated, c.acquired,
		c.inFlight, c.entities, c.tickSeconds,
	} {
		if err := reg.Register(col); err != nil {
			return nil, err
		}
	}
	return c, nil
}

func (c *Collector) DamageDealt(f component.Faction, amount int) {
	c.damage.WithLabelValues(f.String()).Add(float64(amount))
}

func (c *Collector) Defeated(f component.Faction) {
	c.defeats.WithLabelValues(f.String()).Inc()
}

func (c *Collector) ProjectileSpawned(f component.Faction) {
	c.spawned.WithLabelValues(f.String()).Inc()
	c.inFlight.Inc()
}

func (c *Collector) ProjectileTerminated(reason component.TerminateReason) {
	c.terminated.WithLabelValues(string(reason)).Inc()
	c.inFlight.Dec()
}

func (c *Collector) PoolAcquired(kind int, overflow bool) {
	c.acquired.WithLabelValues(strconv.Itoa(kind), strconv.FormatBool(overflow)).Inc()
}

// ObserveTick records one tick's wall time and the live entity count.
func (c *Collector) ObserveTick(d time.Duration, entities int) {
	c.tickSeconds.Observe(d.Seconds())
	c.entities.Set(float64(entities))
}
