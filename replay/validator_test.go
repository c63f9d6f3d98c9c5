package replay

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateFile_Valid(t *testing.T) {
	r := newTestReplay(t)
	require.NoError(t, r.WriteSection(scenarioCaches(), 0, 10))
	require.NoError(t, r.WriteSection(scenarioCaches(), 10, 20))

	assert.NoError(t, ValidateFileQuiet(r.Path()))
}

func TestValidateFile_Errors(t *testing.T) {
	dir := t.TempDir()

	assert.Error(t, ValidateFileQuiet(filepath.Join(dir, "nope.zip")))

	empty := filepath.Join(dir, "empty.zip")
	require.NoError(t, os.WriteFile(empty, nil, 0o644))
	assert.Error(t, ValidateFileQuiet(empty))

	noInfo := filepath.Join(dir, "noinfo.zip")
	a, err := OpenArchive(noInfo)
	require.NoError(t, err)
	a.Put(WorldSaveEntry(0), []byte("W"))
	require.NoError(t, a.Close())
	assert.Error(t, ValidateFileQuiet(noInfo))

	r := newTestReplay(t)
	require.NoError(t, r.WriteSection(scenarioCaches(), 0, 10))
	a, err = OpenArchive(r.Path())
	require.NoError(t, err)
	a.Delete(WorldSaveEntry(0))
	require.NoError(t, a.Close())
	assert.True(t, errors.Is(ValidateFileQuiet(r.Path()), ErrMissingSectionData))
}

func TestValidateFile_DuplicateInfo(t *testing.T) {
	r := newTestReplay(t)
	require.NoError(t, r.WriteSection(scenarioCaches(), 0, 10))

	a, err := OpenArchive(r.Path())
	require.NoError(t, err)
	a.Put(InfoEntry, []byte("{}"))
	require.NoError(t, a.Close())

	assert.Error(t, ValidateFileQuiet(r.Path()))
}

func TestValidateFile_CorruptLog(t *testing.T) {
	r := newTestReplay(t)
	require.NoError(t, r.WriteSection(scenarioCaches(), 0, 10))

	a, err := OpenArchive(r.Path())
	require.NoError(t, err)
	a.Delete(MapCmdsEntry(0, 1))
	a.Put(MapCmdsEntry(0, 1), []byte{2, 0, 0, 0})
	require.NoError(t, a.Close())

	assert.ErrorIs(t, ValidateFileQuiet(r.Path()), ErrCorruptLog)
}

func TestCheckCompat(t *testing.T) {
	t.Parallel()
	info := Info{Protocol: 26, GameVersion: "1.5", ModAssemblyHashes: []int32{1, 2}}

	assert.Empty(t, info.CheckCompat(Build{}))
	assert.Empty(t, info.CheckCompat(Build{Protocol: 26, GameVersion: "1.5", ModHashes: []int32{1, 2}}))

	mm := info.CheckCompat(Build{Protocol: 27, GameVersion: "1.6", ModHashes: []int32{1}})
	require.Len(t, mm, 3)
	assert.Equal(t, "protocol", mm[0].Field)
	assert.Equal(t, "gameVersion", mm[1].Field)
	assert.Equal(t, "modAssemblyHashes", mm[2].Field)

	err := &IncompatibleError{Mismatches: mm}
	assert.ErrorIs(t, err, ErrIncompatible)
	assert.Contains(t, err.Error(), "protocol: recorded 26, running 27")
}
