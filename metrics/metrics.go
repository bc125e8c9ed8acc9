/*package metrics records counters and timings for a property pass in a
Prometheus registry. Since a pass is a batch job rather than a server, the
registry is dumped in the textfile exposition format at the end of a run
instead of being scraped.

Every method accepts a nil *Recorder and does nothing, so engines can take
an optional recorder without checking it.
*/
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "gohalo"

// Recorder owns the registry and the metrics of one run.
type Recorder struct {
	reg       *prometheus.Registry
	groups    *prometheus.CounterVec
	particles *prometheus.CounterVec
	fallbacks *prometheus.CounterVec
	stages    *prometheus.HistogramVec
}

// New creates a Recorder with all metrics registered.
func New() *Recorder {
	r := &Recorder{reg: prometheus.NewRegistry()}

	r.groups = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "groups_processed_total",
		Help:      "Groups processed, by parallelization strategy.",
	}, []string{"strategy"})
	r.particles = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "particles_processed_total",
		Help:      "Group member particles processed, by strategy.",
	}, []string{"strategy"})
	r.fallbacks = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "fallbacks_total",
		Help:      "Quantities that fell back to a size-based proxy.",
	}, []string{"field"})
	r.stages = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "stage_duration_seconds",
		Help:      "Wall clock duration of each stage of a property pass.",
		Buckets:   prometheus.ExponentialBuckets(1e-3, 4, 10),
	}, []string{"stage"})

	r.reg.MustRegister(r.groups, r.particles, r.fallbacks, r.stages)
	return r
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// Group records one group of n particles processed with the given strategy.
func (r *Recorder) Group(strategy string, n int) {
	if r == nil {
		return
	}
	r.groups.WithLabelValues(strategy).Inc()
	r.particles.WithLabelValues(strategy).Add(float64(n))
}

// Fallback records one fallback of the named field.
func (r *Recorder) Fallback(field string) {
	if r == nil {
		return
	}
	r.fallbacks.WithLabelValues(field).Inc()
}

// Stage records the time since start for the named stage. It is meant to be
// used as `defer rec.Stage("name", time.Now())`.
func (r *Recorder) Stage(name string, start time.Time) {
	if r == nil {
		return
	}
	r.stages.WithLabelValues(name).Observe(time.Since(start).Seconds())
}

// WriteTextfile writes every metric in the registry to path.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, r.reg)
}
