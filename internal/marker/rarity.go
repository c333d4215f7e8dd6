package marker

import (
	"fmt"
	"strings"
)

// Rarity is the tier assigned to a collectible. RarityWhite is the lowest.
type Rarity int

const (
	RarityWhite Rarity = iota
	RarityBlue
	RarityGreen
	RarityOrange
	RarityLightRed
	RarityPink
	RarityLightPurple
	RarityLime
	RarityYellow
	RarityCyan
	RarityRed
	RarityPurple
)

var rarityNames = [...]string{
	RarityWhite:       "white",
	RarityBlue:        "blue",
	RarityGreen:       "green",
	RarityOrange:      "orange",
	RarityLightRed:    "lightred",
	RarityPink:        "pink",
	RarityLightPurple: "lightpurple",
	RarityLime:        "lime",
	RarityYellow:      "yellow",
	RarityCyan:        "cyan",
	RarityRed:         "red",
	RarityPurple:      "purple",
}

// Valid reports whether r is a defined tier.
func (r Rarity) Valid() bool {
	return r >= RarityWhite && int(r) < len(rarityNames)
}

func (r Rarity) String() string {
	if !r.Valid() {
		return fmt.Sprintf("rarity(%d)", int(r))
	}
	return rarityNames[r]
}

// ParseRarity accepts a tier name ("green", "Light Red", "light_red").
func ParseRarity(raw string) (Rarity, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	key = strings.NewReplacer(" ", "", "_", "", "-", "").Replace(key)
	for idx, name := range rarityNames {
		if name == key {
			return Rarity(idx), nil
		}
	}
	return RarityWhite, fmt.Errorf("%w: unknown rarity %q", ErrInvalidValue, raw)
}

// MarshalText implements encoding.TextMarshaler.
func (r Rarity) MarshalText() ([]byte, error) {
	if !r.Valid() {
		return nil, fmt.Errorf("%w: rarity %d", ErrInvalidValue, int(r))
	}
	return []byte(r.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (r *Rarity) UnmarshalText(text []byte) error {
	parsed, err := ParseRarity(string(text))
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
