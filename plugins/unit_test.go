package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kingrea/companions/internal/content"
	"github.com/kingrea/companions/internal/marker"
	"github.com/kingrea/companions/internal/scan"
)

func TestUnitDefine(t *testing.T) {
	u := NewUnit("ModA").
		Define("Slime", marker.Banner()).
		Define("Egg", marker.CritterWith(50, marker.RarityGreen))

	types := u.Types()
	require.Len(t, types, 2)
	assert.Equal(t, "Slime", types[0].Name)
	assert.Equal(t, content.CategoryEntity, types[0].Base)
	m, ok := types[1].Markers.Get(marker.KindCritter)
	require.True(t, ok)
	assert.Equal(t, 50, m.Value)
	assert.Equal(t, marker.RarityGreen, m.Rarity)
}

func TestUnitTypesIsCopy(t *testing.T) {
	u := NewUnit("ModA").Define("Slime", marker.Banner())
	types := u.Types()
	types[0].Name = "Changed"
	assert.Equal(t, "Slime", u.Types()[0].Name)
}

func TestNilUnit(t *testing.T) {
	var u *Unit
	assert.Empty(t, u.Name())
	assert.Nil(t, u.Types())
	assert.True(t, scan.Absent(u))
}
