// Package lifecycle gates discovery per tenant and balances the shared
// resources tenants hold: the finalize interception and the condition
// catalog.
package lifecycle

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/kingrea/companions/internal/bestiary"
	"github.com/kingrea/companions/internal/intercept"
	"github.com/kingrea/companions/internal/logging"
	"github.com/kingrea/companions/internal/metrics"
	"github.com/kingrea/companions/internal/scan"
	"github.com/kingrea/companions/internal/synth"
)

// Coordinator runs discovery at most once per tenant until the tenant is
// forgotten.
type Coordinator struct {
	state   *State
	synth   *synth.Synthesizer
	manager *intercept.Manager
	log     *zap.Logger
	metrics *metrics.Recorder
	load    func() (*bestiary.Catalog, error)
}

// Option configures a Coordinator.
type Option func(*Coordinator)

// WithState shares bookkeeping, typically with an intercept tenant filter.
func WithState(s *State) Option {
	return func(c *Coordinator) {
		if s != nil {
			c.state = s
		}
	}
}

// WithLogger sets the diagnostic logger.
func WithLogger(l *zap.Logger) Option {
	return func(c *Coordinator) {
		if l != nil {
			c.log = l
		}
	}
}

// WithMetrics records tenant and helper counts.
func WithMetrics(m *metrics.Recorder) Option {
	return func(c *Coordinator) { c.metrics = m }
}

// WithCatalogLoader replaces the condition catalog constructor.
func WithCatalogLoader(load func() (*bestiary.Catalog, error)) Option {
	return func(c *Coordinator) {
		if load != nil {
			c.load = load
		}
	}
}

// New returns a Coordinator that synthesizes with s and holds m.
func New(s *synth.Synthesizer, m *intercept.Manager, opts ...Option) *Coordinator {
	c := &Coordinator{
		synth:   s,
		manager: m,
		log:     zap.NewNop(),
		load:    bestiary.Load,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.state == nil {
		c.state = NewState()
	}
	return c
}

// State exposes the coordinator's bookkeeping.
func (c *Coordinator) State() *State {
	return c.state
}

// EnsureAugmented runs the discovery pass for u unless its tenant has already
// been augmented, then takes the tenant's hold on the finalize interception.
// It reports whether discovery ran. The error carries name collisions and
// registration failures from the pass; the tenant counts as augmented even
// then.
func (c *Coordinator) EnsureAugmented(u scan.Unit) (bool, error) {
	if scan.Absent(u) {
		return false, nil
	}
	tenant := u.Name()
	log := logging.Tenant(c.log, tenant)
	if c.state.Augmented(tenant) {
		log.Debug("discovery skipped, tenant already augmented")
		return false, nil
	}
	report := c.synth.Run(u, c.log)
	c.state.reports[tenant] = report
	c.state.tenants[tenant] = c.manager.Acquire()
	c.metrics.Tenants(len(c.state.tenants))
	log.Info("discovery pass complete",
		zap.Int("registered", report.Registered()),
		zap.Int("skipped", report.Skipped),
		zap.Int("interception_refs", c.manager.Refs()),
	)
	if report.Err != nil {
		return true, fmt.Errorf("lifecycle: %s: %w", tenant, report.Err)
	}
	return true, nil
}

// Forget drops tenant so a later load re-runs discovery, and releases its
// hold on the interception. Forgetting an unknown tenant does nothing.
func (c *Coordinator) Forget(tenant string) error {
	handle, ok := c.state.tenants[tenant]
	if !ok {
		return nil
	}
	delete(c.state.tenants, tenant)
	delete(c.state.reports, tenant)
	c.metrics.Tenants(len(c.state.tenants))
	if err := c.manager.Release(handle); err != nil {
		return fmt.Errorf("lifecycle: forget %s: %w", tenant, err)
	}
	logging.Tenant(c.log, tenant).Info("tenant forgotten", zap.Bool("interception_installed", c.manager.Installed()))
	return nil
}

// Tenants lists augmented tenants, sorted.
func (c *Coordinator) Tenants() []string {
	return c.state.Tenants()
}

// AcquireSharedHelper takes a hold on the condition catalog, building it on
// the first hold.
func (c *Coordinator) AcquireSharedHelper() (*bestiary.Catalog, error) {
	if c.state.helper.Acquire() {
		catalog, err := c.load()
		if err != nil {
			_, _ = c.state.helper.Release()
			return nil, fmt.Errorf("lifecycle: build condition catalog: %w", err)
		}
		c.state.catalog = catalog
		c.log.Debug("condition catalog built", zap.Int("conditions", catalog.Len()))
	}
	c.metrics.HelperRefs(c.state.helper.Count())
	return c.state.catalog, nil
}

// ReleaseSharedHelper drops a hold on the condition catalog and clears it
// when none remain. Releasing without a hold returns a *refcount.UsageError.
func (c *Coordinator) ReleaseSharedHelper() error {
	last, err := c.state.helper.Release()
	if err != nil {
		c.log.Error("condition catalog over-released", zap.Error(err))
		return err
	}
	if last {
		c.state.catalog = nil
		c.log.Debug("condition catalog cleared")
	}
	c.metrics.HelperRefs(c.state.helper.Count())
	return nil
}

// SharedHelper returns the condition catalog, or nil when nobody holds it.
func (c *Coordinator) SharedHelper() *bestiary.Catalog {
	return c.state.catalog
}
