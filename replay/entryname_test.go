package replay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEntryNames(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "000", SectionID(0))
	assert.Equal(t, "042", SectionID(42))
	assert.Equal(t, "1000", SectionID(1000))
	assert.Equal(t, "maps/003_12_save", MapSaveEntry(3, 12))
	assert.Equal(t, "maps/003_12_cmds", MapCmdsEntry(3, 12))
	assert.Equal(t, "world/003_save", WorldSaveEntry(3))
	assert.Equal(t, "world/003_cmds", WorldCmdsEntry(3))
}

func TestParseEntryName(t *testing.T) {
	t.Parallel()
	valid := map[string]EntryName{
		"info":             {Category: CategoryInfo},
		"maps/000_1_save":  {Category: CategoryMaps, Section: 0, MapID: 1, Kind: KindSave},
		"maps/017_-1_cmds": {Category: CategoryMaps, Section: 17, MapID: -1, Kind: KindCmds},
		"world/002_save":   {Category: CategoryWorld, Section: 2, Kind: KindSave},
		"world/1000_cmds":  {Category: CategoryWorld, Section: 1000, Kind: KindCmds},
	}
	for name, want := range valid {
		got, ok := ParseEntryName(name)
		require.True(t, ok, name)
		assert.Equal(t, want, got, name)
		assert.Equal(t, name, got.String())
	}

	for _, name := range []string{
		"", "info2", "maps/000_save", "maps/000_x_save", "maps/000_1_data",
		"world/000_1_save", "world/abc_save", "other/000_save", "maps/-01_1_save",
		"recording.tmcpr",
	} {
		_, ok := ParseEntryName(name)
		assert.False(t, ok, name)
	}
}

func TestPattern_Match(t *testing.T) {
	t.Parallel()
	p := MapsPattern(1, KindCmds)
	assert.Equal(t, "maps/001_*_cmds", p.String())
	assert.True(t, p.Match("maps/001_0_cmds"))
	assert.True(t, p.Match("maps/001_25_cmds"))
	assert.False(t, p.Match("maps/001_0_save"))
	assert.False(t, p.Match("maps/010_0_cmds"))
	assert.False(t, p.Match("world/001_cmds"))

	all := SectionPattern(CategoryWorld, 4)
	assert.True(t, all.Match("world/004_save"))
	assert.True(t, all.Match("world/004_cmds"))
	assert.False(t, all.Match("world/005_save"))

	one := Pattern{Category: CategoryMaps, Section: 0, MapID: 2, Kind: KindSave}
	assert.True(t, one.Match("maps/000_2_save"))
	assert.False(t, one.Match("maps/000_3_save"))
}

func TestParsePattern(t *testing.T) {
	t.Parallel()
	for _, s := range []string{"info", "maps/000_*_cmds", "maps/002_5_save", "maps/001_*_*", "world/003_*", "world/000_save"} {
		p, err := ParsePattern(s)
		require.NoError(t, err, s)
		assert.Equal(t, s, p.String())
	}

	for _, s := range []string{"maps/000_cmds", "maps/x_*_save", "world/000_1_save", "foo/000_save", "maps/000_*_zip", "nope"} {
		_, err := ParsePattern(s)
		assert.Error(t, err, s)
	}
}
