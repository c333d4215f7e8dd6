package plugins

import (
	"fmt"
	"strings"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
	"github.com/kingrea/companions/internal/scan"
)

// UnitManifest describes a content unit loaded from YAML or from a Go unit.
//
// The struct mirrors the on-disk schema under .companions/tenants/*.yaml and
// is intentionally narrow so units can be validated before the host loads
// them.
type UnitManifest struct {
	Tenant   string             `json:"tenant" yaml:"tenant"`
	Entities []EntityDefinition `json:"entities" yaml:"entities"`
}

// EntityDefinition declares one type of the unit and the markers it carries.
type EntityDefinition struct {
	Name        string       `json:"name" yaml:"name"`
	Base        string       `json:"base,omitempty" yaml:"base,omitempty"`
	Abstract    bool         `json:"abstract,omitempty" yaml:"abstract,omitempty"`
	Texture     string       `json:"texture,omitempty" yaml:"texture,omitempty"`
	DisplayName string       `json:"display_name,omitempty" yaml:"display_name,omitempty"`
	NoAutoload  bool         `json:"no_autoload,omitempty" yaml:"no_autoload,omitempty"`
	Conditions  string       `json:"conditions,omitempty" yaml:"conditions,omitempty"`
	Markers     []MarkerSpec `json:"markers,omitempty" yaml:"markers,omitempty"`
}

// MarkerSpec is the textual form of a marker. Value and Rarity only apply to
// critter markers and default to 0 and the lowest tier.
type MarkerSpec struct {
	Kind   string `json:"kind" yaml:"kind"`
	Value  *int   `json:"value,omitempty" yaml:"value,omitempty"`
	Rarity string `json:"rarity,omitempty" yaml:"rarity,omitempty"`
}

// Normalized returns a trimmed, copy-on-write variant of the manifest.
func (m UnitManifest) Normalized() UnitManifest {
	clone := UnitManifest{Tenant: strings.TrimSpace(m.Tenant)}
	if len(m.Entities) > 0 {
		clone.Entities = make([]EntityDefinition, len(m.Entities))
		for i, def := range m.Entities {
			clone.Entities[i] = def.normalized()
		}
	}
	return clone
}

// Validate ensures the manifest is well-formed. Repeated entity names are
// allowed here; they surface later as companion name collisions.
func (m UnitManifest) Validate() error {
	normalized := m.Normalized()
	if normalized.Tenant == "" {
		return fmt.Errorf("plugin: tenant is required")
	}
	for idx, def := range normalized.Entities {
		if err := def.Validate(); err != nil {
			return fmt.Errorf("plugin %s: entities[%d]: %w", normalized.Tenant, idx, err)
		}
	}
	return nil
}

// Unit converts the manifest into a loadable unit.
func (m UnitManifest) Unit(source string) (*Unit, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	normalized := m.Normalized()
	u := NewUnit(normalized.Tenant)
	u.source = source
	for _, def := range normalized.Entities {
		info, err := def.typeInfo()
		if err != nil {
			return nil, fmt.Errorf("plugin %s: %s: %w", normalized.Tenant, def.Name, err)
		}
		u.DefineType(info)
	}
	return u, nil
}

func (def EntityDefinition) normalized() EntityDefinition {
	clone := EntityDefinition{
		Name:        strings.TrimSpace(def.Name),
		Base:        strings.ToLower(strings.TrimSpace(def.Base)),
		Abstract:    def.Abstract,
		Texture:     strings.TrimSpace(def.Texture),
		DisplayName: strings.TrimSpace(def.DisplayName),
		NoAutoload:  def.NoAutoload,
		Conditions:  strings.Join(strings.Fields(def.Conditions), " "),
	}
	if clone.Base == "" {
		clone.Base = string(content.CategoryEntity)
	}
	if len(def.Markers) > 0 {
		clone.Markers = make([]MarkerSpec, len(def.Markers))
		for i, spec := range def.Markers {
			clone.Markers[i] = spec.normalized()
		}
	}
	return clone
}

// Validate ensures the entity declaration is usable.
func (def EntityDefinition) Validate() error {
	normalized := def.normalized()
	if normalized.Name == "" {
		return fmt.Errorf("name is required")
	}
	if strings.ContainsAny(normalized.Name, " ./") {
		return fmt.Errorf("name %q must not contain spaces, dots or slashes", normalized.Name)
	}
	switch content.Category(normalized.Base) {
	case content.CategoryEntity, content.CategoryDisplay, content.CategoryCollectible:
	default:
		return fmt.Errorf("unknown base %q", normalized.Base)
	}
	_, err := normalized.markers()
	return err
}

func (def EntityDefinition) typeInfo() (scan.TypeInfo, error) {
	markers, err := def.markers()
	if err != nil {
		return scan.TypeInfo{}, err
	}
	return scan.TypeInfo{
		Name:        def.Name,
		Base:        content.Category(def.Base),
		Abstract:    def.Abstract,
		Texture:     def.Texture,
		DisplayName: def.DisplayName,
		NoAutoload:  def.NoAutoload,
		Conditions:  def.Conditions,
		Markers:     markers,
	}, nil
}

func (def EntityDefinition) markers() (marker.Set, error) {
	if len(def.Markers) == 0 {
		return nil, nil
	}
	set := make(marker.Set, 0, len(def.Markers))
	for idx, spec := range def.Markers {
		m, err := spec.Marker()
		if err != nil {
			return nil, fmt.Errorf("markers[%d]: %w", idx, err)
		}
		set = append(set, m)
	}
	if err := set.Validate(); err != nil {
		return nil, err
	}
	return set, nil
}

func (spec MarkerSpec) normalized() MarkerSpec {
	clone := MarkerSpec{
		Kind:   strings.ToLower(strings.TrimSpace(spec.Kind)),
		Rarity: strings.TrimSpace(spec.Rarity),
	}
	if spec.Value != nil {
		v := *spec.Value
		clone.Value = &v
	}
	return clone
}

// Marker converts the textual form into a marker value.
func (spec MarkerSpec) Marker() (marker.Marker, error) {
	normalized := spec.normalized()
	kind, err := marker.ParseKind(normalized.Kind)
	if err != nil {
		return marker.Marker{}, err
	}
	if kind != marker.KindCritter {
		if normalized.Value != nil || normalized.Rarity != "" {
			return marker.Marker{}, fmt.Errorf("%w: %s markers take no parameters", marker.ErrInvalidValue, kind)
		}
		return marker.Marker{Kind: kind}, nil
	}
	m := marker.Critter()
	if normalized.Value != nil {
		m.Value = *normalized.Value
	}
	if normalized.Rarity != "" {
		rarity, err := marker.ParseRarity(normalized.Rarity)
		if err != nil {
			return marker.Marker{}, err
		}
		m.Rarity = rarity
	}
	return m, m.Validate()
}
