package host

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
	"github.com/kingrea/companions/internal/scan"
	"github.com/kingrea/companions/plugins"
)

func TestLoadFirstDefinitionWins(t *testing.T) {
	u := plugins.NewUnit("ModA").
		DefineType(scan.TypeInfo{Name: "Slime", Base: content.CategoryEntity, Texture: "ModA/First"}).
		DefineType(scan.TypeInfo{Name: "Slime", Base: content.CategoryEntity, Texture: "ModA/Second"})
	h := New()

	err := h.Load(u)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrDuplicate)
	assert.Contains(t, err.Error(), "ModA/Slime")

	def, ok := h.Definition("ModA", "Slime")
	require.True(t, ok)
	assert.Equal(t, "ModA/First", def.Texture)
	assert.Len(t, h.Definitions("ModA"), 1)
}

func TestLoadDefaultsAndNoAutoload(t *testing.T) {
	u := plugins.NewUnit("ModA").
		Define("Slime", marker.Banner()).
		DefineType(scan.TypeInfo{Name: "Ghost", Base: content.CategoryEntity, NoAutoload: true})
	h := New()
	require.NoError(t, h.Load(u))

	def, ok := h.Definition("ModA", "Slime")
	require.True(t, ok)
	assert.Equal(t, "ModA/NPCs/Slime", def.Texture)
	assert.Equal(t, "Slime", def.DisplayName)
	assert.Equal(t, content.None, def.Banner)
	assert.Equal(t, content.None, def.BannerItem)

	_, ok = h.Definition("ModA", "Ghost")
	assert.False(t, ok)
	assert.NoError(t, h.Load(nil))
}

func TestRegisterAllocatesPerCategory(t *testing.T) {
	h := New()

	display, err := h.Register(content.Record{Tenant: "ModA", Name: "SlimeBanner", Category: content.CategoryDisplay})
	require.NoError(t, err)
	item, err := h.Register(content.Record{Tenant: "ModA", Name: "SlimeBannerItem", Category: content.CategoryCollectible})
	require.NoError(t, err)
	next, err := h.Register(content.Record{Tenant: "ModA", Name: "BatBanner", Category: content.CategoryDisplay})
	require.NoError(t, err)

	assert.Equal(t, content.ID(0), display)
	assert.Equal(t, content.ID(0), item)
	assert.Equal(t, content.ID(1), next)

	id, ok := h.Lookup("ModA", content.CategoryCollectible, "SlimeBannerItem")
	require.True(t, ok)
	assert.Equal(t, item, id)

	rec, ok := h.Record("ModA", content.CategoryDisplay, "BatBanner")
	require.True(t, ok)
	assert.Equal(t, next, rec.ID)
}

func TestRegisterRejects(t *testing.T) {
	h := New()
	_, err := h.Register(content.Record{Tenant: "ModA", Name: "SlimeBanner", Category: content.CategoryDisplay})
	require.NoError(t, err)

	_, err = h.Register(content.Record{Tenant: "ModA", Name: "SlimeBanner", Category: content.CategoryDisplay})
	assert.ErrorIs(t, err, ErrDuplicate)

	_, err = h.Register(content.Record{Tenant: "ModA", Name: " ", Category: content.CategoryDisplay})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	_, err = h.Register(content.Record{Tenant: "ModA", Name: "Slime", Category: content.CategoryEntity})
	assert.ErrorIs(t, err, ErrInvalidRecord)

	id, err := h.Register(content.Record{Tenant: "ModB", Name: "SlimeBanner", Category: content.CategoryDisplay})
	require.NoError(t, err)
	assert.Equal(t, content.ID(1), id)
}

func TestUnloadPrunesTenant(t *testing.T) {
	h := New()
	require.NoError(t, h.Load(plugins.NewUnit("ModA").Define("Slime", marker.Banner())))
	require.NoError(t, h.Load(plugins.NewUnit("ModB").Define("Egg", marker.Critter())))
	for _, rec := range []content.Record{
		{Tenant: "ModA", Name: "SlimeBanner", Category: content.CategoryDisplay},
		{Tenant: "ModB", Name: "EggItem", Category: content.CategoryCollectible},
		{Tenant: "ModA", Name: "SlimeBannerItem", Category: content.CategoryCollectible},
	} {
		_, err := h.Register(rec)
		require.NoError(t, err)
	}

	h.Unload("ModA")

	assert.Equal(t, []string{"ModB"}, h.Tenants())
	assert.Empty(t, h.Records("ModA"))
	all := h.Records("")
	require.Len(t, all, 1)
	assert.Equal(t, "EggItem", all[0].Name)
	_, ok := h.Lookup("ModA", content.CategoryDisplay, "SlimeBanner")
	assert.False(t, ok)
	_, ok = h.Lookup("ModA", content.CategoryEntity, "Slime")
	assert.False(t, ok)
}

func TestSpawnAndFinalize(t *testing.T) {
	h := New()
	require.NoError(t, h.Load(plugins.NewUnit("ModA").Define("Slime", marker.Banner())))

	e, err := h.Spawn("ModA", "Slime")
	require.NoError(t, err)
	def, _ := h.Definition("ModA", "Slime")
	assert.True(t, e.Initialized)
	assert.Same(t, def, e.Definition)
	assert.Equal(t, content.None, e.CatchItem)
	assert.Equal(t, "Slime", h.DisplayName(def.Type))

	_, err = h.Spawn("ModA", "Bat")
	assert.ErrorIs(t, err, ErrUnknownEntity)
}

func TestFinalizeUnknownTypePanics(t *testing.T) {
	h := New()
	assert.Panics(t, func() { h.Finalize(&content.Entity{Type: 99}, true) })
}

func TestSwapFinalizeNilRestoresDefault(t *testing.T) {
	h := New()
	require.NoError(t, h.Load(plugins.NewUnit("ModA").Define("Slime")))
	var calls int
	h.SwapFinalize(func(*content.Entity, bool) { calls++ })

	_, err := h.Spawn("ModA", "Slime")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)

	h.SwapFinalize(nil)
	e, err := h.Spawn("ModA", "Slime")
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	assert.True(t, e.Initialized)
}
