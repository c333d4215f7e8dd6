// Package metrics exposes prometheus instruments for discovery passes and the
// shared finalize redirection. A nil *Recorder is valid and records nothing.
package metrics

import (
	"github.com/kingrea/companions/internal/marker"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "companions"

// Recorder groups every instrument the core updates.
type Recorder struct {
	companions    *prometheus.CounterVec
	resolveErrors *prometheus.CounterVec
	collisions    *prometheus.CounterVec
	passes        *prometheus.CounterVec
	finalized     prometheus.Counter
	augmented     *prometheus.CounterVec
	augmentErrors prometheus.Counter
	interceptRefs prometheus.Gauge
	helperRefs    prometheus.Gauge
	tenants       prometheus.Gauge
	installations prometheus.Counter
}

// New registers the instruments with reg. Pass a fresh prometheus.Registry in
// tests so counters do not leak between cases.
func New(reg prometheus.Registerer) *Recorder {
	f := promauto.With(reg)
	return &Recorder{
		companions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "registered_total",
			Help:      "Companion records handed to the host registry.",
		}, []string{"tenant", "variant"}),
		resolveErrors: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "resolution_failures_total",
			Help:      "Markers skipped because a definition or companion could not be resolved.",
		}, []string{"tenant", "variant"}),
		collisions: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "name_collisions_total",
			Help:      "Companion names produced twice within a tenant.",
		}, []string{"tenant"}),
		passes: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "discovery_passes_total",
			Help:      "Discovery passes executed per tenant.",
		}, []string{"tenant"}),
		finalized: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "finalize_events_total",
			Help:      "Host finalize events observed by the redirection.",
		}),
		augmented: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "augmented_entities_total",
			Help:      "Finalize events that received companion back-references.",
		}, []string{"variant"}),
		augmentErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "augment_failures_total",
			Help:      "Augmentation steps that failed after the original finalize ran.",
		}),
		interceptRefs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "interception_refs",
			Help:      "Holders of the shared finalize redirection.",
		}),
		helperRefs: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "shared_helper_refs",
			Help:      "Holders of the condition catalog.",
		}),
		tenants: f.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "augmented_tenants",
			Help:      "Tenants whose discovery pass has run.",
		}),
		installations: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "interception_installs_total",
			Help:      "Times the finalize redirection was installed.",
		}),
	}
}

func (r *Recorder) CompanionRegistered(tenant string, variant marker.Kind) {
	if r == nil {
		return
	}
	r.companions.WithLabelValues(tenant, string(variant)).Inc()
}

func (r *Recorder) ResolutionFailed(tenant string, variant marker.Kind) {
	if r == nil {
		return
	}
	r.resolveErrors.WithLabelValues(tenant, string(variant)).Inc()
}

func (r *Recorder) NameCollision(tenant string) {
	if r == nil {
		return
	}
	r.collisions.WithLabelValues(tenant).Inc()
}

func (r *Recorder) DiscoveryPass(tenant string) {
	if r == nil {
		return
	}
	r.passes.WithLabelValues(tenant).Inc()
}

func (r *Recorder) FinalizeObserved() {
	if r == nil {
		return
	}
	r.finalized.Inc()
}

func (r *Recorder) Augmented(variant marker.Kind) {
	if r == nil {
		return
	}
	r.augmented.WithLabelValues(string(variant)).Inc()
}

func (r *Recorder) AugmentFailed() {
	if r == nil {
		return
	}
	r.augmentErrors.Inc()
}

func (r *Recorder) InterceptionRefs(n int) {
	if r == nil {
		return
	}
	r.interceptRefs.Set(float64(n))
}

func (r *Recorder) InterceptionInstalled() {
	if r == nil {
		return
	}
	r.installations.Inc()
}

func (r *Recorder) HelperRefs(n int) {
	if r == nil {
		return
	}
	r.helperRefs.Set(float64(n))
}

func (r *Recorder) Tenants(n int) {
	if r == nil {
		return
	}
	r.tenants.Set(float64(n))
}
