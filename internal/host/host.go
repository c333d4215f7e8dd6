// Package host is an in-memory reference host: a content registry keyed by
// tenant, category and name, plus the per-entity finalize routine that the
// augmentation core redirects. The CLI and the tests drive it the way a real
// host would.
package host

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/scan"
)

var (
	ErrDuplicate     = content.ErrDuplicate
	ErrInvalidRecord = errors.New("host: invalid record")
	ErrUnknownEntity = errors.New("host: unknown entity")
)

type key struct {
	tenant   string
	category content.Category
	name     string
}

// Host holds loaded definitions and registered companions. Registry access is
// guarded; the finalize routine runs outside the lock so a redirection may
// call back into Lookup.
type Host struct {
	mu       sync.RWMutex
	defs     map[key]*content.Definition
	byType   map[content.ID]*content.Definition
	records  map[key]content.Record
	order    []content.Record
	next     map[content.Category]content.ID
	finalize content.FinalizeFunc
}

// New returns an empty host whose finalize routine is the built-in one.
func New() *Host {
	h := &Host{
		defs:    map[key]*content.Definition{},
		byType:  map[content.ID]*content.Definition{},
		records: map[key]content.Record{},
		next:    map[content.Category]content.ID{},
	}
	h.finalize = h.setDefaults
	return h
}

// Load registers every concrete entity definition of u, the way a host does
// when a content unit is loaded. Types flagged NoAutoload are skipped.
// Duplicate names are reported and the first definition wins.
func (h *Host) Load(u scan.Unit) error {
	if scan.Absent(u) {
		return nil
	}
	tenant := u.Name()
	h.mu.Lock()
	defer h.mu.Unlock()
	var errs []error
	for info := range scan.Scan(u) {
		if info.NoAutoload {
			continue
		}
		k := key{tenant: tenant, category: content.CategoryEntity, name: info.Name}
		if _, exists := h.defs[k]; exists {
			errs = append(errs, fmt.Errorf("%w: %s", ErrDuplicate, content.FullName(tenant, info.Name)))
			continue
		}
		def := &content.Definition{
			Tenant:      tenant,
			Name:        info.Name,
			Type:        h.allocate(content.CategoryEntity),
			Texture:     firstNonEmpty(info.Texture, tenant+"/NPCs/"+info.Name),
			DisplayName: firstNonEmpty(info.DisplayName, info.Name),
			Markers:     info.Markers,
			Conditions:  info.Conditions,
			Banner:      content.None,
			BannerItem:  content.None,
		}
		h.defs[k] = def
		h.byType[def.Type] = def
	}
	return errors.Join(errs...)
}

// Unload drops every definition and companion owned by tenant.
func (h *Host) Unload(tenant string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	for k, def := range h.defs {
		if k.tenant == tenant {
			delete(h.byType, def.Type)
			delete(h.defs, k)
		}
	}
	for k := range h.records {
		if k.tenant == tenant {
			delete(h.records, k)
		}
	}
	kept := h.order[:0]
	for _, rec := range h.order {
		if rec.Tenant != tenant {
			kept = append(kept, rec)
		}
	}
	h.order = kept
}

// Register implements content.Registry.
func (h *Host) Register(rec content.Record) (content.ID, error) {
	if strings.TrimSpace(rec.Name) == "" || strings.TrimSpace(rec.Tenant) == "" {
		return content.None, fmt.Errorf("%w: tenant and name are required", ErrInvalidRecord)
	}
	switch rec.Category {
	case content.CategoryDisplay, content.CategoryCollectible:
	default:
		return content.None, fmt.Errorf("%w: category %q cannot be registered", ErrInvalidRecord, rec.Category)
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	k := key{tenant: rec.Tenant, category: rec.Category, name: rec.Name}
	if _, exists := h.records[k]; exists {
		return content.None, fmt.Errorf("%w: %s", ErrDuplicate, rec.Key())
	}
	rec.ID = h.allocate(rec.Category)
	h.records[k] = rec
	h.order = append(h.order, rec)
	return rec.ID, nil
}

// Lookup implements content.Registry.
func (h *Host) Lookup(tenant string, category content.Category, name string) (content.ID, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	k := key{tenant: tenant, category: category, name: name}
	if category == content.CategoryEntity {
		if def, ok := h.defs[k]; ok {
			return def.Type, true
		}
		return content.None, false
	}
	rec, ok := h.records[k]
	if !ok {
		return content.None, false
	}
	return rec.ID, true
}

// Definition implements content.Registry.
func (h *Host) Definition(tenant, name string) (*content.Definition, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	def, ok := h.defs[key{tenant: tenant, category: content.CategoryEntity, name: name}]
	return def, ok
}

// DisplayName implements content.Registry.
func (h *Host) DisplayName(id content.ID) string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if def, ok := h.byType[id]; ok {
		return def.DisplayName
	}
	return ""
}

// Record returns a registered companion by name.
func (h *Host) Record(tenant string, category content.Category, name string) (content.Record, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	rec, ok := h.records[key{tenant: tenant, category: category, name: name}]
	return rec, ok
}

// Records returns the companions of tenant in registration order. An empty
// tenant returns every record.
func (h *Host) Records(tenant string) []content.Record {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []content.Record
	for _, rec := range h.order {
		if tenant == "" || rec.Tenant == tenant {
			out = append(out, rec)
		}
	}
	return out
}

// Definitions returns the loaded definitions of tenant sorted by name.
func (h *Host) Definitions(tenant string) []*content.Definition {
	h.mu.RLock()
	defer h.mu.RUnlock()
	var out []*content.Definition
	for k, def := range h.defs {
		if k.tenant == tenant {
			out = append(out, def)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Tenants returns every tenant with loaded definitions, sorted.
func (h *Host) Tenants() []string {
	h.mu.RLock()
	defer h.mu.RUnlock()
	seen := map[string]struct{}{}
	for k := range h.defs {
		seen[k.tenant] = struct{}{}
	}
	out := make([]string, 0, len(seen))
	for tenant := range seen {
		out = append(out, tenant)
	}
	sort.Strings(out)
	return out
}

func (h *Host) allocate(category content.Category) content.ID {
	id := h.next[category]
	h.next[category] = id + 1
	return id
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if trimmed := strings.TrimSpace(v); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
