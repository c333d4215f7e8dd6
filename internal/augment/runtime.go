// Package augment wires the reference host, the synthesizer, the finalize
// interception and the lifecycle coordinator into one runtime that loads
// tenant units from disk and reloads them when their files change.
package augment

import (
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"github.com/kingrea/companions/internal/bestiary"
	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/host"
	"github.com/kingrea/companions/internal/intercept"
	"github.com/kingrea/companions/internal/lifecycle"
	"github.com/kingrea/companions/internal/logging"
	"github.com/kingrea/companions/internal/metrics"
	"github.com/kingrea/companions/internal/synth"
	"github.com/kingrea/companions/plugins"
)

// ErrUnknownTenant is returned for operations on a tenant that is not loaded.
var ErrUnknownTenant = errors.New("augment: tenant not loaded")

// Options configures a Runtime.
type Options struct {
	Logger *zap.Logger
	Locale string
	// Registerer receives the runtime's metrics. Nil keeps them private.
	Registerer prometheus.Registerer
}

// Result describes one tenant load.
type Result struct {
	Tenant string
	Source string
	// Ran is false when the tenant had already been augmented.
	Ran    bool
	Report synth.Report
	Err    error
}

// Runtime owns one host and the augmentation core attached to it. Like the
// core it is driven from a single goroutine.
type Runtime struct {
	host    *host.Host
	state   *lifecycle.State
	manager *intercept.Manager
	coord   *lifecycle.Coordinator
	metrics *metrics.Recorder
	log     *zap.Logger

	units   map[string]*plugins.Unit
	sources map[string]string
}

// New builds a runtime with an empty host.
func New(opts Options) *Runtime {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	reg := opts.Registerer
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	rec := metrics.New(reg)
	h := host.New()
	state := lifecycle.NewState()
	manager := intercept.New(h, h,
		intercept.WithLogger(log),
		intercept.WithMetrics(rec),
		intercept.WithTenantFilter(state.Augmented),
	)
	s := synth.New(h, synth.WithLocale(opts.Locale), synth.WithMetrics(rec))
	coord := lifecycle.New(s, manager,
		lifecycle.WithState(state),
		lifecycle.WithLogger(log),
		lifecycle.WithMetrics(rec),
	)
	return &Runtime{
		host:    h,
		state:   state,
		manager: manager,
		coord:   coord,
		metrics: rec,
		log:     log,
		units:   map[string]*plugins.Unit{},
		sources: map[string]string{},
	}
}

// Host exposes the reference host.
func (r *Runtime) Host() *host.Host { return r.host }

// Coordinator exposes the lifecycle coordinator.
func (r *Runtime) Coordinator() *lifecycle.Coordinator { return r.coord }

// Manager exposes the interception manager.
func (r *Runtime) Manager() *intercept.Manager { return r.manager }

// Load registers u's definitions with the host, takes a hold on the shared
// condition catalog and runs discovery for the tenant. Loading a tenant that
// is already loaded only re-checks the discovery gate.
func (r *Runtime) Load(u *plugins.Unit) Result {
	if u == nil {
		return Result{}
	}
	res := Result{Tenant: u.Name(), Source: u.Source()}
	log := logging.Tenant(r.log, res.Tenant)
	var errs []error
	if _, loaded := r.units[res.Tenant]; !loaded {
		if err := r.host.Load(u); err != nil {
			log.Warn("host rejected definitions", zap.Error(err))
			errs = append(errs, err)
		}
		if _, err := r.coord.AcquireSharedHelper(); err != nil {
			errs = append(errs, err)
		}
		r.units[res.Tenant] = u
		if res.Source != "" {
			r.sources[filepath.Clean(res.Source)] = res.Tenant
		}
	}
	ran, err := r.coord.EnsureAugmented(u)
	if err != nil {
		errs = append(errs, err)
	}
	res.Ran = ran
	res.Report, _ = r.state.Report(res.Tenant)
	res.Err = errors.Join(errs...)
	return res
}

// LoadDir loads every unit manifest under dir in tenant order.
func (r *Runtime) LoadDir(dir string) ([]Result, error) {
	units, err := plugins.LoadUnitDir(dir)
	if err != nil {
		return nil, err
	}
	results := make([]Result, 0, len(units))
	for _, u := range units {
		results = append(results, r.Load(u))
	}
	return results, nil
}

// Unload forgets tenant, drops its content from the host and releases its
// hold on the condition catalog.
func (r *Runtime) Unload(tenant string) error {
	u, ok := r.units[tenant]
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownTenant, tenant)
	}
	var errs []error
	if err := r.coord.Forget(tenant); err != nil {
		errs = append(errs, err)
	}
	r.host.Unload(tenant)
	if err := r.coord.ReleaseSharedHelper(); err != nil {
		errs = append(errs, err)
	}
	delete(r.units, tenant)
	if src := u.Source(); src != "" {
		delete(r.sources, filepath.Clean(src))
	}
	return errors.Join(errs...)
}

// Reload reacts to a change of the manifest at path: the tenant it declared
// is unloaded and the file, if it still exists, is loaded again.
func (r *Runtime) Reload(path string) (Result, error) {
	clean := filepath.Clean(path)
	if tenant, ok := r.sources[clean]; ok {
		if err := r.Unload(tenant); err != nil {
			return Result{Tenant: tenant, Source: clean}, err
		}
	}
	u, err := plugins.LoadUnitFile(clean)
	if err != nil {
		return Result{Source: clean}, err
	}
	if _, taken := r.units[u.Name()]; taken {
		return Result{Tenant: u.Name(), Source: clean}, fmt.Errorf("augment: %s: tenant %s is already loaded from %s", clean, u.Name(), r.units[u.Name()].Source())
	}
	return r.Load(u), nil
}

// Forget unloads the tenant whose manifest lived at path. It reports whether
// a tenant was unloaded.
func (r *Runtime) Forget(path string) (bool, error) {
	tenant, ok := r.sources[filepath.Clean(path)]
	if !ok {
		return false, nil
	}
	return true, r.Unload(tenant)
}

// Close unloads every tenant.
func (r *Runtime) Close() error {
	var errs []error
	for _, tenant := range r.Tenants() {
		if err := r.Unload(tenant); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Tenants lists loaded tenants, sorted.
func (r *Runtime) Tenants() []string {
	out := make([]string, 0, len(r.units))
	for tenant := range r.units {
		out = append(out, tenant)
	}
	sort.Strings(out)
	return out
}

// Unit returns a loaded tenant's unit.
func (r *Runtime) Unit(tenant string) (*plugins.Unit, bool) {
	u, ok := r.units[tenant]
	return u, ok
}

// Spawn creates and finalizes an instance through the host.
func (r *Runtime) Spawn(tenant, name string) (*content.Entity, error) {
	return r.host.Spawn(tenant, name)
}

// Entry assembles the flavor entry of a loaded definition from the shared
// condition catalog.
func (r *Runtime) Entry(tenant, name string) (bestiary.Entry, error) {
	def, ok := r.host.Definition(tenant, name)
	if !ok {
		return bestiary.Entry{}, fmt.Errorf("augment: %w: %s", host.ErrUnknownEntity, content.FullName(tenant, name))
	}
	catalog := r.coord.SharedHelper()
	if catalog == nil {
		return bestiary.Entry{}, fmt.Errorf("augment: condition catalog is not loaded")
	}
	return catalog.BuildEntry(def, def.Conditions)
}
