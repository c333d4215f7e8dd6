package plugins

import (
	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
	"github.com/kingrea/companions/internal/scan"
)

// Unit is a loaded content unit: a tenant name and the types it declares.
// Native Go tenants build one with NewUnit/Define; file-based tenants get one
// from a manifest.
type Unit struct {
	name   string
	source string
	types  []scan.TypeInfo
}

var _ scan.Unit = (*Unit)(nil)

// NewUnit starts an empty unit for tenant.
func NewUnit(tenant string) *Unit {
	return &Unit{name: tenant}
}

// Name implements scan.Unit.
func (u *Unit) Name() string {
	if u == nil {
		return ""
	}
	return u.name
}

// Types implements scan.Unit. The returned slice is a copy.
func (u *Unit) Types() []scan.TypeInfo {
	if u == nil {
		return nil
	}
	return append([]scan.TypeInfo(nil), u.types...)
}

// Source is the file the unit was loaded from, if any.
func (u *Unit) Source() string {
	if u == nil {
		return ""
	}
	return u.source
}

// Define declares a concrete entity definition carrying markers.
func (u *Unit) Define(name string, markers ...marker.Marker) *Unit {
	return u.DefineType(scan.TypeInfo{
		Name:    name,
		Base:    content.CategoryEntity,
		Markers: marker.Of(markers...),
	})
}

// DefineType declares an arbitrary type.
func (u *Unit) DefineType(info scan.TypeInfo) *Unit {
	u.types = append(u.types, info)
	return u
}
