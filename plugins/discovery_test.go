package plugins

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/companions/internal/marker"
)

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoadUnitDir(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "mod-a.yaml", sampleManifest)
	writeFile(t, dir, "mod-b.go", goUnitSource)

	units, err := LoadUnitDir(dir)
	require.NoError(t, err)
	require.Len(t, units, 2)
	assert.Equal(t, "ModA", units[0].Name())
	assert.Equal(t, "ModB", units[1].Name())
	assert.Equal(t, filepath.Join(dir, "mod-b.go"), units[1].Source())

	m, ok := units[1].Types()[0].Markers.Get(marker.KindCritter)
	require.True(t, ok)
	assert.Equal(t, 10, m.Value)
	assert.Equal(t, marker.RarityBlue, m.Rarity)
}

func TestLoadUnitDirDuplicateTenant(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.yaml", sampleManifest)
	writeFile(t, dir, "b.yml", sampleManifest)

	_, err := LoadUnitDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate tenant ModA")
}

func TestLoadUnitDirMissing(t *testing.T) {
	units, err := LoadUnitDir(filepath.Join(t.TempDir(), "missing"))
	require.NoError(t, err)
	assert.Empty(t, units)
}

func TestLoadUnitFile(t *testing.T) {
	dir := t.TempDir()
	path := writeFile(t, dir, "mod-a.yaml", sampleManifest)

	u, err := LoadUnitFile(path)
	require.NoError(t, err)
	assert.Equal(t, "ModA", u.Name())
	assert.Len(t, u.Types(), 2)

	_, err = LoadUnitFile(writeFile(t, dir, "readme.md", "# hi"))
	assert.Error(t, err)
	assert.True(t, IsManifestFile("x.YML"))
	assert.False(t, IsManifestFile("x.txt"))
}
