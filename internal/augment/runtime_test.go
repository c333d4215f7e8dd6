package augment

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"

	"github.com/kingrea/companions/internal/bestiary"
	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/logging"
	"github.com/kingrea/companions/internal/marker"
	"github.com/kingrea/companions/internal/synth"
	"github.com/kingrea/companions/plugins"
)

const modA = `tenant: Mod A
entities:
  - name: Slime
    conditions: NightTime Snow
    markers:
      - kind: banner
`

const modB = `tenant: ModB
entities:
  - name: Egg
    markers:
      - kind: critter
        value: 50
        rarity: green
  - name: Phantom
    no_autoload: true
    markers:
      - kind: critter
`

func writeManifest(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestSlimeScenario(t *testing.T) {
	log := logging.NewObserved()
	rt := New(Options{Logger: log.Logger})
	u := plugins.NewUnit("Mod A").Define("Slime", marker.Banner())

	res := rt.Load(u)
	require.NoError(t, res.Err)
	assert.True(t, res.Ran)

	records := rt.Host().Records("Mod A")
	require.Len(t, records, 2)
	assert.Equal(t, "SlimeBanner", records[0].Name)
	assert.Equal(t, "SlimeBannerItem", records[1].Name)

	e, err := rt.Spawn("Mod A", "Slime")
	require.NoError(t, err)
	assert.Equal(t, e.Type, e.Definition.Banner)
	assert.Equal(t, records[1].ID, e.Definition.BannerItem)
	assert.Equal(t, records[0].Source, e.Definition.Banner)
	log.AssertLogged(t, zapcore.InfoLevel, "autoloaded banners: Mod A.SlimeBanner")
}

func TestEggScenario(t *testing.T) {
	rt := New(Options{})
	u := plugins.NewUnit("ModA").Define("Egg", marker.CritterWith(50, marker.RarityGreen))

	res := rt.Load(u)
	require.NoError(t, res.Err)

	rec, ok := rt.Host().Record("ModA", content.CategoryCollectible, "EggItem")
	require.True(t, ok)
	assert.Equal(t, 50, rec.Value)
	assert.Equal(t, marker.RarityGreen, rec.Rarity)

	e, err := rt.Spawn("ModA", "Egg")
	require.NoError(t, err)
	assert.Equal(t, rec.ID, e.CatchItem)
}

func TestLoadTwiceRegistersOnce(t *testing.T) {
	rt := New(Options{})
	u := plugins.NewUnit("ModA").Define("Egg", marker.Critter())

	first := rt.Load(u)
	second := rt.Load(u)

	require.NoError(t, first.Err)
	require.NoError(t, second.Err)
	assert.True(t, first.Ran)
	assert.False(t, second.Ran)
	assert.Len(t, rt.Host().Records("ModA"), 1)
	assert.Equal(t, 1, rt.Manager().Refs())
	assert.Equal(t, 1, rt.Coordinator().State().HelperRefs())
}

func TestLoadDir(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "mod-a.yaml", modA)
	writeManifest(t, dir, "mod-b.yaml", modB)
	rt := New(Options{})

	results, err := rt.LoadDir(dir)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "Mod A", results[0].Tenant)
	assert.Equal(t, "ModB", results[1].Tenant)
	assert.Equal(t, 1, results[1].Report.Skipped)
	assert.Equal(t, []string{"Mod A", "ModB"}, rt.Tenants())
	assert.Equal(t, 2, rt.Manager().Refs())
	assert.Equal(t, 2, rt.Coordinator().State().HelperRefs())
}

func TestUnloadAndClose(t *testing.T) {
	rt := New(Options{})
	rt.Load(plugins.NewUnit("ModA").Define("Egg", marker.Critter()))
	rt.Load(plugins.NewUnit("ModB").Define("Slime", marker.Banner()))

	require.NoError(t, rt.Unload("ModA"))
	assert.Empty(t, rt.Host().Records("ModA"))
	assert.True(t, rt.Manager().Installed())
	assert.ErrorIs(t, rt.Unload("ModA"), ErrUnknownTenant)

	require.NoError(t, rt.Close())
	assert.False(t, rt.Manager().Installed())
	assert.Nil(t, rt.Coordinator().SharedHelper())
	assert.Empty(t, rt.Tenants())
}

func TestReload(t *testing.T) {
	dir := t.TempDir()
	path := writeManifest(t, dir, "mod-b.yaml", modB)
	rt := New(Options{})
	_, err := rt.LoadDir(dir)
	require.NoError(t, err)

	updated := modB + `  - name: Firefly
    markers:
      - kind: critter
        rarity: blue
`
	writeManifest(t, dir, "mod-b.yaml", updated)
	res, err := rt.Reload(path)
	require.NoError(t, err)
	assert.True(t, res.Ran)

	names := []string{}
	for _, rec := range rt.Host().Records("ModB") {
		names = append(names, rec.Name)
	}
	assert.Equal(t, []string{"EggItem", "FireflyItem"}, names)
	assert.Equal(t, 1, rt.Manager().Refs())

	require.NoError(t, os.Remove(path))
	unloaded, err := rt.Forget(path)
	require.NoError(t, err)
	assert.True(t, unloaded)
	assert.False(t, rt.Manager().Installed())

	unloaded, err = rt.Forget(path)
	require.NoError(t, err)
	assert.False(t, unloaded)
}

func TestReloadRejectsTenantFromAnotherFile(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "mod-b.yaml", modB)
	rt := New(Options{})
	_, err := rt.LoadDir(dir)
	require.NoError(t, err)

	copyPath := writeManifest(t, dir, "mod-b-copy.yaml", modB)
	_, err = rt.Reload(copyPath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already loaded")
}

func TestEntry(t *testing.T) {
	dir := t.TempDir()
	writeManifest(t, dir, "mod-a.yaml", modA)
	rt := New(Options{})
	_, err := rt.LoadDir(dir)
	require.NoError(t, err)

	entry, err := rt.Entry("Mod A", "Slime")
	require.NoError(t, err)
	assert.Equal(t, "Mods.Mod A.NPCs.Slime.Entry", entry.FlavorKey)
	assert.Equal(t, []bestiary.Condition{{Group: "Times", Name: "NightTime"}, {Group: "Biomes", Name: "Snow"}}, entry.Conditions)

	_, err = rt.Entry("Mod A", "Ghost")
	assert.Error(t, err)
}

func TestCollisionSurfaced(t *testing.T) {
	rt := New(Options{})
	u := plugins.NewUnit("ModA").
		Define("Egg", marker.Critter()).
		Define("Egg", marker.Critter())

	res := rt.Load(u)
	assert.ErrorIs(t, res.Err, synth.ErrNameCollision)
	assert.True(t, res.Ran)
}

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	rt := New(Options{Registerer: reg})
	rt.Load(plugins.NewUnit("ModA").Define("Slime", marker.Banner()))
	_, err := rt.Spawn("ModA", "Slime")
	require.NoError(t, err)

	expected := `
# HELP companions_interception_refs Holders of the shared finalize redirection.
# TYPE companions_interception_refs gauge
companions_interception_refs 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "companions_interception_refs"))
	assert.Equal(t, 1, testutil.CollectAndCount(reg, "companions_augmented_entities_total"))
}
