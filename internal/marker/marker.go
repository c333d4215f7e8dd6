// Package marker defines the declarative tags an entity definition can carry
// to request companion content.
package marker

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrUnknownKind     = errors.New("marker: unknown kind")
	ErrDuplicateMarker = errors.New("marker: duplicate marker")
	ErrInvalidValue    = errors.New("marker: invalid value")
)

// Kind identifies a marker variant.
type Kind string

const (
	// KindBanner requests a display companion and its collectible.
	KindBanner Kind = "banner"
	// KindCritter requests a collectible item that releases the entity.
	KindCritter Kind = "critter"
)

// Kinds lists every known kind in the order companions are synthesized.
var Kinds = []Kind{KindBanner, KindCritter}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	for _, known := range Kinds {
		if k == known {
			return true
		}
	}
	return false
}

// ParseKind normalizes a textual kind.
func ParseKind(raw string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(raw)))
	if !k.Valid() {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, raw)
	}
	return k, nil
}

// Marker is a single tag attached to an entity definition. Value and Rarity
// are only meaningful for KindCritter.
type Marker struct {
	Kind   Kind
	Value  int
	Rarity Rarity
}

// Banner returns the display-companion marker.
func Banner() Marker {
	return Marker{Kind: KindBanner}
}

// Critter returns a collectible-item marker with default value and the
// lowest rarity tier.
func Critter() Marker {
	return Marker{Kind: KindCritter, Rarity: RarityWhite}
}

// CritterWith returns a collectible-item marker with explicit parameters.
func CritterWith(value int, rarity Rarity) Marker {
	return Marker{Kind: KindCritter, Value: value, Rarity: rarity}
}

func (m Marker) String() string {
	if m.Kind == KindCritter {
		return fmt.Sprintf("%s(value=%d, rarity=%s)", m.Kind, m.Value, m.Rarity)
	}
	return string(m.Kind)
}

// Validate checks a single marker.
func (m Marker) Validate() error {
	if !m.Kind.Valid() {
		return fmt.Errorf("%w: %q", ErrUnknownKind, m.Kind)
	}
	if m.Kind != KindCritter {
		return nil
	}
	if m.Value < 0 {
		return fmt.Errorf("%w: critter value %d is negative", ErrInvalidValue, m.Value)
	}
	if !m.Rarity.Valid() {
		return fmt.Errorf("%w: rarity %d", ErrInvalidValue, int(m.Rarity))
	}
	return nil
}

// Set is the ordered list of markers attached to one definition. A set holds
// at most one marker per kind.
type Set []Marker

// Of builds a set from markers without validating it.
func Of(markers ...Marker) Set {
	if len(markers) == 0 {
		return nil
	}
	return append(Set(nil), markers...)
}

// Has reports whether the set carries a marker of the given kind.
func (s Set) Has(kind Kind) bool {
	_, ok := s.Get(kind)
	return ok
}

// Get returns the marker of the given kind.
func (s Set) Get(kind Kind) (Marker, bool) {
	for _, m := range s {
		if m.Kind == kind {
			return m, true
		}
	}
	return Marker{}, false
}

// Validate rejects unknown kinds, bad parameters and repeated kinds.
func (s Set) Validate() error {
	seen := make(map[Kind]struct{}, len(s))
	for idx, m := range s {
		if err := m.Validate(); err != nil {
			return fmt.Errorf("markers[%d]: %w", idx, err)
		}
		if _, dup := seen[m.Kind]; dup {
			return fmt.Errorf("markers[%d]: %w: %s", idx, ErrDuplicateMarker, m.Kind)
		}
		seen[m.Kind] = struct{}{}
	}
	return nil
}

// Ordered returns the markers in synthesis order (see Kinds), independent of
// declaration order.
func (s Set) Ordered() []Marker {
	out := make([]Marker, 0, len(s))
	for _, kind := range Kinds {
		if m, ok := s.Get(kind); ok {
			out = append(out, m)
		}
	}
	return out
}

func (s Set) String() string {
	parts := make([]string, len(s))
	for i, m := range s {
		parts[i] = m.String()
	}
	return strings.Join(parts, ", ")
}
