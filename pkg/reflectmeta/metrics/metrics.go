// Package metrics exposes Prometheus instrumentation for a reflectmeta.Store.
package metrics

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/tendant/reflect-metadata/pkg/reflectmeta"
)

// Lookup result label values
const (
	ResultHit       = "hit"
	ResultDelegated = "delegated"
	ResultMiss      = "miss"
)

// Collector holds the metrics of one store
type Collector struct {
	defines   prometheus.Counter
	lookups   *prometheus.CounterVec
	targets   prometheus.GaugeFunc
	slots     prometheus.GaugeFunc
	delegates prometheus.GaugeFunc
}

// Instrument creates the store metrics, registers them with reg and attaches
// the counting hooks to store.
func Instrument(store *reflectmeta.Store, reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		defines: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "reflectmeta_defines_total",
			Help: "Metadata definitions stored",
		}),
		lookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "reflectmeta_lookups_total",
			Help: "Metadata lookups by result",
		}, []string{"result"}),
		targets: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "reflectmeta_targets",
			Help: "Targets carrying metadata",
		}, func() float64 { return float64(store.Stats().Targets) }),
		slots: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "reflectmeta_property_slots",
			Help: "Materialized (target, property) slots",
		}, func() float64 { return float64(store.Stats().Slots) }),
		delegates: prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Name: "reflectmeta_delegates",
			Help: "Recorded delegate references",
		}, func() float64 { return float64(store.Stats().Delegates) }),
	}

	for _, collector := range []prometheus.Collector{c.defines, c.lookups, c.targets, c.slots, c.delegates} {
		if err := reg.Register(collector); err != nil {
			return nil, fmt.Errorf("failed to register metric: %w", err)
		}
	}

	store.Use(c.Hooks())
	return c, nil
}

// Hooks returns the store hooks that feed the counters
func (c *Collector) Hooks() *reflectmeta.Hooks {
	return &reflectmeta.Hooks{
		AfterDefine: []reflectmeta.AfterDefineHook{
			func(reflectmeta.Definition) { c.defines.Inc() },
		},
		OnLookup: []reflectmeta.LookupHook{
			func(lookup reflectmeta.Lookup) {
				c.lookups.WithLabelValues(lookupResult(lookup)).Inc()
			},
		},
	}
}

// Defines returns the definitions counter
func (c *Collector) Defines() prometheus.Counter {
	return c.defines
}

// Lookups returns the lookup counter for a result label
func (c *Collector) Lookups(result string) prometheus.Counter {
	return c.lookups.WithLabelValues(result)
}

func lookupResult(lookup reflectmeta.Lookup) string {
	switch {
	case lookup.Delegated:
		return ResultDelegated
	case lookup.Found:
		return ResultHit
	default:
		return ResultMiss
	}
}
