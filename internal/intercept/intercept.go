// Package intercept owns the single shared redirection over the host's
// finalize routine. The redirection runs the original routine first and then
// writes companion back-references onto marked definitions. Holders are
// reference counted so the redirection is installed on the first Acquire and
// removed on the last Release.
package intercept

import (
	"errors"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
	"github.com/kingrea/companions/internal/metrics"
	"github.com/kingrea/companions/internal/refcount"
)

// ErrUnresolved is returned when a marked definition's companion is not in
// the registry at finalize time.
var ErrUnresolved = errors.New("intercept: companion not registered")

const resource = "finalize interception"

// Manager installs and removes the redirection.
type Manager struct {
	lifecycle content.Lifecycle
	registry  content.Registry
	counter   *refcount.Counter
	active    *Handle
	log       *zap.Logger
	metrics   *metrics.Recorder
	accept    func(tenant string) bool
}

// Option configures a Manager.
type Option func(*Manager)

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(m *Manager) {
		if l != nil {
			m.log = l
		}
	}
}

// WithMetrics records finalize events and holder counts.
func WithMetrics(r *metrics.Recorder) Option {
	return func(m *Manager) { m.metrics = r }
}

// WithTenantFilter limits augmentation to definitions whose tenant passes
// accept.
func WithTenantFilter(accept func(tenant string) bool) Option {
	return func(m *Manager) { m.accept = accept }
}

// New returns a Manager over lifecycle that resolves companions in registry.
func New(lifecycle content.Lifecycle, registry content.Registry, opts ...Option) *Manager {
	m := &Manager{
		lifecycle: lifecycle,
		registry:  registry,
		counter:   refcount.New(resource),
		log:       zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Acquire adds a holder, installing the redirection on the first one. Every
// holder of one installation receives the same handle. A handle removed while
// holders remain is reinstalled in place.
func (m *Manager) Acquire() *Handle {
	first := m.counter.Acquire()
	if first || !m.active.Active() {
		m.install()
	}
	m.metrics.InterceptionRefs(m.counter.Count())
	return m.active
}

// Release drops a holder and removes the redirection when none remain. A nil
// handle, a handle from an earlier installation, or a release with no holders
// returns a *refcount.UsageError.
func (m *Manager) Release(h *Handle) error {
	if h == nil {
		return &refcount.UsageError{Resource: resource, Detail: "release of nil handle"}
	}
	if h != m.active {
		return &refcount.UsageError{Resource: resource, Detail: fmt.Sprintf("release of stale handle %s", h.ID())}
	}
	last, err := m.counter.Release()
	if err != nil {
		return err
	}
	m.metrics.InterceptionRefs(m.counter.Count())
	if last {
		h.Remove()
		m.active = nil
		m.log.Debug("finalize redirection removed", zap.String("handle", h.ID()))
	}
	return nil
}

// Refs returns the number of holders.
func (m *Manager) Refs() int {
	return m.counter.Count()
}

// Installed reports whether the redirection is in place.
func (m *Manager) Installed() bool {
	return m.active.Active()
}

// Handle returns the current installation, or nil.
func (m *Manager) Handle() *Handle {
	return m.active
}

func (m *Manager) install() {
	h := m.active
	if h == nil {
		h = &Handle{id: uuid.New(), lifecycle: m.lifecycle}
	}
	original := m.lifecycle.FinalizeFunc()
	h.original = m.lifecycle.SwapFinalize(m.redirect(original))
	h.removed = false
	m.active = h
	m.metrics.InterceptionInstalled()
	m.log.Debug("finalize redirection installed", zap.String("handle", h.ID()))
}

func (m *Manager) redirect(original content.FinalizeFunc) content.FinalizeFunc {
	return func(e *content.Entity, createDefinition bool) {
		original(e, createDefinition)
		m.augment(e)
	}
}

// augment never lets a failure escape into the host.
func (m *Manager) augment(e *content.Entity) {
	m.metrics.FinalizeObserved()
	if e == nil || e.Definition == nil || len(e.Definition.Markers) == 0 {
		return
	}
	def := e.Definition
	if m.accept != nil && !m.accept(def.Tenant) {
		return
	}
	log := m.log.With(zap.String("tenant", def.Tenant), zap.String("entity", def.Name))
	defer func() {
		if r := recover(); r != nil {
			m.metrics.AugmentFailed()
			log.Error("augment entity panicked", zap.Any("panic", r))
		}
	}()
	for _, mk := range def.Markers.Ordered() {
		if err := m.apply(e, def, mk); err != nil {
			m.metrics.AugmentFailed()
			log.Error("augment entity failed", zap.String("variant", string(mk.Kind)), zap.Error(err))
			continue
		}
		m.metrics.Augmented(mk.Kind)
	}
}

func (m *Manager) apply(e *content.Entity, def *content.Definition, mk marker.Marker) error {
	switch mk.Kind {
	case marker.KindBanner:
		item, err := m.resolve(def.Tenant, content.BannerItemName(def.Name))
		if err != nil {
			return err
		}
		def.Banner = e.Type
		def.BannerItem = item
	case marker.KindCritter:
		item, err := m.resolve(def.Tenant, content.CritterItemName(def.Name))
		if err != nil {
			return err
		}
		e.CatchItem = item
	default:
		return fmt.Errorf("%w: %q", marker.ErrUnknownKind, mk.Kind)
	}
	return nil
}

func (m *Manager) resolve(tenant, name string) (content.ID, error) {
	id, ok := m.registry.Lookup(tenant, content.CategoryCollectible, name)
	if !ok {
		return content.None, fmt.Errorf("%w: %s.%s", ErrUnresolved, tenant, name)
	}
	return id, nil
}
