package plugins

import (
	"errors"
	"strings"
	"testing"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
)

func intPtr(v int) *int { return &v }

func TestUnitManifestValidate(t *testing.T) {
	m := UnitManifest{
		Tenant: "ModA",
		Entities: []EntityDefinition{
			{Name: "Slime", Markers: []MarkerSpec{{Kind: "banner"}}},
			{Name: "Egg", Markers: []MarkerSpec{{Kind: "critter", Value: intPtr(50), Rarity: "green"}}},
		},
	}
	if err := m.Validate(); err != nil {
		t.Fatalf("expected manifest to validate, got %v", err)
	}
}

func TestUnitManifestValidateFailures(t *testing.T) {
	tests := []struct {
		name     string
		manifest UnitManifest
		msg      string
	}{
		{
			name:     "missing tenant",
			manifest: UnitManifest{Entities: []EntityDefinition{{Name: "Slime"}}},
			msg:      "tenant is required",
		},
		{
			name:     "missing name",
			manifest: UnitManifest{Tenant: "ModA", Entities: []EntityDefinition{{}}},
			msg:      "name is required",
		},
		{
			name:     "dotted name",
			manifest: UnitManifest{Tenant: "ModA", Entities: []EntityDefinition{{Name: "Big.Slime"}}},
			msg:      "must not contain",
		},
		{
			name:     "unknown base",
			manifest: UnitManifest{Tenant: "ModA", Entities: []EntityDefinition{{Name: "Slime", Base: "projectile"}}},
			msg:      "unknown base",
		},
		{
			name: "unknown marker",
			manifest: UnitManifest{Tenant: "ModA", Entities: []EntityDefinition{{
				Name:    "Slime",
				Markers: []MarkerSpec{{Kind: "trophy"}},
			}}},
			msg: "markers[0]",
		},
		{
			name: "banner with value",
			manifest: UnitManifest{Tenant: "ModA", Entities: []EntityDefinition{{
				Name:    "Slime",
				Markers: []MarkerSpec{{Kind: "banner", Value: intPtr(3)}},
			}}},
			msg: "take no parameters",
		},
		{
			name: "duplicate marker",
			manifest: UnitManifest{Tenant: "ModA", Entities: []EntityDefinition{{
				Name:    "Slime",
				Markers: []MarkerSpec{{Kind: "banner"}, {Kind: "Banner"}},
			}}},
			msg: "banner",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.manifest.Validate()
			if err == nil {
				t.Fatalf("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.msg) {
				t.Fatalf("expected error to contain %q, got %v", tc.msg, err)
			}
		})
	}
}

func TestMarkerSpecDefaults(t *testing.T) {
	m, err := MarkerSpec{Kind: " Critter "}.Marker()
	if err != nil {
		t.Fatalf("marker: %v", err)
	}
	if m.Kind != marker.KindCritter || m.Value != 0 || m.Rarity != marker.RarityWhite {
		t.Fatalf("unexpected defaults: %+v", m)
	}
	if _, err := (MarkerSpec{Kind: "critter", Rarity: "sparkly"}).Marker(); err == nil {
		t.Fatalf("expected unknown rarity to fail")
	}
	if _, err := (MarkerSpec{Kind: "banner", Rarity: "green"}).Marker(); !errors.Is(err, marker.ErrInvalidValue) {
		t.Fatalf("expected ErrInvalidValue, got %v", err)
	}
}

func TestUnitManifestUnit(t *testing.T) {
	m := UnitManifest{
		Tenant: " ModA ",
		Entities: []EntityDefinition{
			{Name: "Slime", Markers: []MarkerSpec{{Kind: "banner"}}},
			{Name: "SlimeBase", Abstract: true, Markers: []MarkerSpec{{Kind: "banner"}}},
			{Name: "Torch", Base: "Collectible"},
		},
	}
	u, err := m.Unit("mod-a.yaml")
	if err != nil {
		t.Fatalf("unit: %v", err)
	}
	if u.Name() != "ModA" || u.Source() != "mod-a.yaml" {
		t.Fatalf("unexpected unit identity: %q %q", u.Name(), u.Source())
	}
	types := u.Types()
	if len(types) != 3 {
		t.Fatalf("expected 3 types, got %d", len(types))
	}
	if !types[0].Markers.Has(marker.KindBanner) || !types[1].Abstract {
		t.Fatalf("unexpected types: %+v", types)
	}
	if types[2].Base != content.CategoryCollectible {
		t.Fatalf("expected collectible base, got %q", types[2].Base)
	}
}
