// Package bestiary is the condition catalog shared by every tenant: a
// name-keyed table of spawn-condition descriptors used to assemble an
// entity's flavor entry. The lifecycle coordinator builds it on first demand
// and drops it when the last holder releases.
package bestiary

import (
	_ "embed"
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/kingrea/companions/internal/content"
)

// ErrUnknownCondition is returned by BuildEntry for a name not in the catalog.
var ErrUnknownCondition = errors.New("bestiary: unknown condition")

//go:embed conditions.yaml
var builtin []byte

// Condition is an opaque descriptor the host resolves when rendering an entry.
type Condition struct {
	Group string
	Name  string
}

// Key is the descriptor's stable identifier.
func (c Condition) Key() string {
	return "Bestiary." + c.Group + "." + c.Name
}

// Entry is the assembled flavor information for one entity definition.
type Entry struct {
	// FlavorKey is the localization key of the entity's flavor text.
	FlavorKey  string
	Conditions []Condition
}

// FlavorKey returns "Mods.<tenant>.NPCs.<name>.Entry".
func FlavorKey(tenant, name string) string {
	return fmt.Sprintf("Mods.%s.NPCs.%s.Entry", tenant, name)
}

type table struct {
	Groups []struct {
		Name       string   `yaml:"name"`
		Conditions []string `yaml:"conditions"`
	} `yaml:"groups"`
}

// Catalog maps condition names to descriptors.
type Catalog struct {
	byName map[string]Condition
}

// Load builds the catalog from the embedded condition table.
func Load() (*Catalog, error) {
	return Parse(builtin)
}

// Parse builds a catalog from a YAML condition table.
func Parse(data []byte) (*Catalog, error) {
	var t table
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("bestiary: decode conditions: %w", err)
	}
	c := &Catalog{byName: map[string]Condition{}}
	for _, group := range t.Groups {
		gname := strings.TrimSpace(group.Name)
		if gname == "" {
			return nil, fmt.Errorf("bestiary: group name is required")
		}
		for _, raw := range group.Conditions {
			name := strings.TrimSpace(raw)
			if name == "" {
				continue
			}
			cond := Condition{Group: gname, Name: name}
			key := name
			if prev, taken := c.byName[key]; taken {
				if prev.Group == gname {
					return nil, fmt.Errorf("bestiary: condition %s listed twice in %s", name, gname)
				}
				key = gname + "." + name
				if _, dup := c.byName[key]; dup {
					return nil, fmt.Errorf("bestiary: condition %s listed twice in %s", name, gname)
				}
			}
			c.byName[key] = cond
		}
	}
	return c, nil
}

// Lookup resolves a condition by catalog name.
func (c *Catalog) Lookup(name string) (Condition, bool) {
	if c == nil {
		return Condition{}, false
	}
	cond, ok := c.byName[name]
	return cond, ok
}

// Len is the number of catalog names.
func (c *Catalog) Len() int {
	if c == nil {
		return 0
	}
	return len(c.byName)
}

// Names returns every catalog name, sorted.
func (c *Catalog) Names() []string {
	if c == nil {
		return nil
	}
	out := make([]string, 0, len(c.byName))
	for name := range c.byName {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}

// BuildEntry assembles the flavor entry of def. conditions is a
// space-separated list of catalog names, e.g. "NightTime Snow".
func (c *Catalog) BuildEntry(def *content.Definition, conditions string) (Entry, error) {
	if def == nil {
		return Entry{}, fmt.Errorf("bestiary: definition is required")
	}
	entry := Entry{FlavorKey: FlavorKey(def.Tenant, def.Name)}
	for _, name := range strings.Fields(conditions) {
		cond, ok := c.Lookup(name)
		if !ok {
			return Entry{}, fmt.Errorf("%w: %q for %s", ErrUnknownCondition, name, def.FullName())
		}
		entry.Conditions = append(entry.Conditions, cond)
	}
	return entry, nil
}
