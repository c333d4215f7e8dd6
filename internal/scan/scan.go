// Package scan enumerates the entity-definition types of a loaded content
// unit together with the markers each type declares.
package scan

import (
	"iter"
	"reflect"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
)

// TypeInfo is the static description of one type declared by a unit. The
// scanner reads it without constructing anything on the host.
type TypeInfo struct {
	Name string
	// Base is the host category the type derives from. Only
	// content.CategoryEntity types are scanned.
	Base     content.Category
	Abstract bool

	Texture     string
	DisplayName string
	// NoAutoload keeps the host from registering the definition on load.
	NoAutoload bool
	// Conditions names the flavor-entry conditions, space separated.
	Conditions string

	Markers marker.Set
}

// Concrete reports whether the type is a non-abstract entity definition.
func (t TypeInfo) Concrete() bool {
	return !t.Abstract && t.Base == content.CategoryEntity
}

// Unit is a dynamically loaded tenant: a name and the types it declares.
type Unit interface {
	Name() string
	Types() []TypeInfo
}

// Scan yields the concrete entity definitions of u in declaration order. The
// sequence is restartable; each range re-reads the unit. A nil unit yields
// nothing.
func Scan(u Unit) iter.Seq[TypeInfo] {
	return func(yield func(TypeInfo) bool) {
		if absent(u) {
			return
		}
		for _, info := range u.Types() {
			if !info.Concrete() {
				continue
			}
			if !yield(info) {
				return
			}
		}
	}
}

// Marked yields only the scanned definitions that carry at least one marker.
func Marked(u Unit) iter.Seq[TypeInfo] {
	return func(yield func(TypeInfo) bool) {
		for info := range Scan(u) {
			if len(info.Markers) == 0 {
				continue
			}
			if !yield(info) {
				return
			}
		}
	}
}

// Absent reports whether u is nil, including a typed nil pointer.
func Absent(u Unit) bool {
	return absent(u)
}

func absent(u Unit) bool {
	if u == nil {
		return true
	}
	v := reflect.ValueOf(u)
	switch v.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Interface, reflect.Func:
		return v.IsNil()
	}
	return false
}
