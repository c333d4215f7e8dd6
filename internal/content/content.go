// Package content declares the host-side contract the augmentation core
// talks to: runtime identifiers, entity definitions and instances, companion
// records, the content registry and the finalize lifecycle function.
package content

import (
	"errors"
	"fmt"

	"github.com/kingrea/companions/internal/marker"
)

// ErrDuplicate is wrapped by Registry.Register when the name is already taken
// within the tenant and category.
var ErrDuplicate = errors.New("content: name already registered")

// ID is a runtime identifier assigned by the host registry.
type ID int

// None is the zero reference. Hosts never assign it.
const None ID = -1

// Valid reports whether id references registered content.
func (id ID) Valid() bool {
	return id >= 0
}

// Category partitions the host registry. Names are unique per tenant and
// category.
type Category string

const (
	// CategoryEntity is the entity-definition base the scanner looks for.
	CategoryEntity Category = "entity"
	// CategoryDisplay holds placeable display companions (banners).
	CategoryDisplay Category = "display"
	// CategoryCollectible holds item companions.
	CategoryCollectible Category = "collectible"
)

// Definition is the host's runtime object for one entity type. Banner and
// BannerItem are back-references written after the host finalizes an entity.
type Definition struct {
	Tenant      string
	Name        string
	Type        ID
	Texture     string
	DisplayName string
	Markers     marker.Set
	Conditions  string

	Banner     ID
	BannerItem ID
}

// FullName returns "<tenant>/<name>".
func (d *Definition) FullName() string {
	return FullName(d.Tenant, d.Name)
}

// FullName joins a tenant and content name.
func FullName(tenant, name string) string {
	return tenant + "/" + name
}

// Entity is one live instance the host initializes through its finalize
// function.
type Entity struct {
	Type        ID
	Definition  *Definition
	CatchItem   ID
	Initialized bool
}

// Record is a synthesized companion handed to the host registry.
type Record struct {
	ID       ID
	Tenant   string
	Name     string
	Category Category
	Variant  marker.Kind

	// Source is the runtime type of the entity the companion was derived from.
	Source ID
	// SourceKey is the source entity's full name.
	SourceKey string
	// Place is the display record a collectible places, when it has one.
	Place   ID
	Texture string
	Tooltip string
	Value   int
	Rarity  marker.Rarity
}

// Key returns "<tenant>.<name>" as used in diagnostics.
func (r Record) Key() string {
	return r.Tenant + "." + r.Name
}

func (r Record) String() string {
	return fmt.Sprintf("%s[%s #%d]", r.Key(), r.Category, r.ID)
}

// Registry is the host content-registration facility.
type Registry interface {
	// Register stores rec and assigns its identifier before returning.
	Register(rec Record) (ID, error)
	// Lookup resolves a registered name within a tenant and category.
	Lookup(tenant string, category Category, name string) (ID, bool)
	// Definition resolves a loaded entity definition by tenant and name.
	Definition(tenant, name string) (*Definition, bool)
	// DisplayName returns the localized name of an entity type.
	DisplayName(id ID) string
}

// FinalizeFunc is the host's per-entity initialization routine.
type FinalizeFunc func(e *Entity, createDefinition bool)

// Lifecycle exposes the single redirection point over the finalize routine.
type Lifecycle interface {
	FinalizeFunc() FinalizeFunc
	// SwapFinalize installs fn and returns the function it replaced.
	SwapFinalize(fn FinalizeFunc) FinalizeFunc
}
