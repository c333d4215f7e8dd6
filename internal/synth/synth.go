// Package synth turns the markers discovered on a tenant's entity definitions
// into companion records and hands each one to the host registry as soon as
// it is built.
package synth

import (
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/i18n"
	"github.com/kingrea/companions/internal/logging"
	"github.com/kingrea/companions/internal/marker"
	"github.com/kingrea/companions/internal/metrics"
	"github.com/kingrea/companions/internal/scan"
)

// ErrNameCollision reports a companion name produced twice for one tenant.
var ErrNameCollision = errors.New("synth: companion name collision")

// ResolutionError is reported when a definition or a companion's lookup
// partner cannot be found in the host registry. The affected record is
// skipped and the pass continues.
type ResolutionError struct {
	Tenant  string
	Entity  string
	Variant marker.Kind
	Missing string
}

func (e *ResolutionError) Error() string {
	return fmt.Sprintf("synth: %s: %s marker on %s: cannot resolve %s", e.Tenant, e.Variant, e.Entity, e.Missing)
}

// Report summarizes one discovery pass.
type Report struct {
	Tenant string
	// Banners and Critters list the "<tenant>.<name>" keys of the display and
	// critter companions registered, in registration order.
	Banners  []string
	Critters []string
	Records  []content.Record
	Skipped  int
	// Err joins every collision and registration failure of the pass.
	Err error
}

// Registered is the number of records the host accepted.
func (r Report) Registered() int {
	return len(r.Records)
}

// Synthesizer registers companions through a host registry.
type Synthesizer struct {
	registry content.Registry
	catalog  *i18n.Catalog
	locale   string
	metrics  *metrics.Recorder
}

// Option configures a Synthesizer.
type Option func(*Synthesizer)

// WithLocale selects the tooltip language.
func WithLocale(locale string) Option {
	return func(s *Synthesizer) { s.locale = locale }
}

// WithCatalog overrides the tooltip catalog.
func WithCatalog(c *i18n.Catalog) Option {
	return func(s *Synthesizer) {
		if c != nil {
			s.catalog = c
		}
	}
}

// WithMetrics records registrations and failures.
func WithMetrics(m *metrics.Recorder) Option {
	return func(s *Synthesizer) { s.metrics = m }
}

// New returns a Synthesizer writing to registry.
func New(registry content.Registry, opts ...Option) *Synthesizer {
	s := &Synthesizer{registry: registry}
	for _, opt := range opts {
		opt(s)
	}
	if s.catalog == nil {
		s.catalog = i18n.MustCatalog()
	}
	return s
}

// Run scans u and registers the companions of every marked definition, in
// scan order and, per definition, in marker synthesis order. A nil unit
// produces an empty report.
func (s *Synthesizer) Run(u scan.Unit, log *zap.Logger) Report {
	if scan.Absent(u) {
		return Report{}
	}
	if log == nil {
		log = zap.NewNop()
	}
	p := &pass{
		Synthesizer: s,
		tenant:      u.Name(),
		log:         logging.Tenant(log, u.Name()),
		produced:    map[string]struct{}{},
	}
	p.report.Tenant = p.tenant
	s.metrics.DiscoveryPass(p.tenant)

	for info := range scan.Marked(u) {
		p.entity(info)
	}

	if len(p.report.Banners) > 0 {
		p.log.Info("autoloaded banners: " + strings.Join(p.report.Banners, ", "))
	}
	if len(p.report.Critters) > 0 {
		p.log.Info("autoloaded critters: " + strings.Join(p.report.Critters, ", "))
	}
	p.report.Err = errors.Join(p.errs...)
	return p.report
}

type pass struct {
	*Synthesizer
	tenant   string
	log      *zap.Logger
	produced map[string]struct{}
	report   Report
	errs     []error
}

func (p *pass) entity(info scan.TypeInfo) {
	if err := info.Markers.Validate(); err != nil {
		p.fail(fmt.Errorf("synth: %s: %w", content.FullName(p.tenant, info.Name), err), info.Name)
		return
	}
	def, ok := p.registry.Definition(p.tenant, info.Name)
	for _, m := range info.Markers.Ordered() {
		if !ok {
			p.unresolved(info.Name, m.Kind, content.FullName(p.tenant, info.Name))
			continue
		}
		switch m.Kind {
		case marker.KindBanner:
			p.banner(def)
		case marker.KindCritter:
			p.critter(def, m)
		}
	}
}

func (p *pass) banner(def *content.Definition) {
	display := DisplayRecord(def)
	if _, ok := p.register(display); !ok {
		return
	}
	p.report.Banners = append(p.report.Banners, display.Key())

	place, ok := p.registry.Lookup(p.tenant, content.CategoryDisplay, display.Name)
	if !ok {
		p.unresolved(def.Name, marker.KindBanner, display.Key())
		return
	}
	tooltip := p.catalog.BannerBonus(p.locale, p.registry.DisplayName(def.Type))
	p.register(BannerItemRecord(def, place, tooltip))
}

func (p *pass) critter(def *content.Definition, m marker.Marker) {
	rec := CritterRecord(def, m)
	if _, ok := p.register(rec); ok {
		p.report.Critters = append(p.report.Critters, rec.Key())
	}
}

func (p *pass) register(rec content.Record) (content.ID, bool) {
	key := string(rec.Category) + "/" + rec.Name
	if _, dup := p.produced[key]; dup {
		p.collision(rec, fmt.Errorf("%w: %s produced twice from %s", ErrNameCollision, rec.Key(), rec.SourceKey))
		return content.None, false
	}
	id, err := p.registry.Register(rec)
	if err != nil {
		if errors.Is(err, content.ErrDuplicate) {
			p.collision(rec, fmt.Errorf("%w: %s: %v", ErrNameCollision, rec.Key(), err))
		} else {
			p.fail(fmt.Errorf("synth: register %s: %w", rec.Key(), err), entityName(rec))
		}
		return content.None, false
	}
	p.produced[key] = struct{}{}
	rec.ID = id
	p.report.Records = append(p.report.Records, rec)
	p.metrics.CompanionRegistered(p.tenant, rec.Variant)
	return id, true
}

func (p *pass) unresolved(entity string, variant marker.Kind, missing string) {
	err := &ResolutionError{Tenant: p.tenant, Entity: entity, Variant: variant, Missing: missing}
	p.log.Error("companion resolution failed",
		zap.String("entity", entity),
		zap.String("variant", string(variant)),
		zap.Error(err),
	)
	p.report.Skipped++
	p.metrics.ResolutionFailed(p.tenant, variant)
}

func (p *pass) collision(rec content.Record, err error) {
	p.log.Error("companion name collision",
		zap.String("entity", entityName(rec)),
		zap.String("companion", rec.Name),
		zap.Error(err),
	)
	p.metrics.NameCollision(p.tenant)
	p.errs = append(p.errs, err)
}

func (p *pass) fail(err error, entity string) {
	p.log.Error("companion synthesis failed", zap.String("entity", entity), zap.Error(err))
	p.errs = append(p.errs, err)
}

func entityName(rec content.Record) string {
	if idx := strings.LastIndex(rec.SourceKey, "/"); idx >= 0 {
		return rec.SourceKey[idx+1:]
	}
	return rec.SourceKey
}
