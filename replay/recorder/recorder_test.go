package recorder

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reallyoldfogie/mp-replay-go/replay"
	"github.com/reallyoldfogie/mp-replay-go/sim"
)

func newRecorder(t *testing.T, start int) (*Recorder, *replay.Replay) {
	t.Helper()
	r := replay.ForSaving(replay.File(t.TempDir(), "rec"), replay.Info{Name: "rec", Protocol: 26})
	return New(r, start), r
}

func TestRecorder_Checkpoints(t *testing.T) {
	t.Parallel()
	rec, r := newRecorder(t, 100)
	rec.SetMapSave(0, []byte("m0"))
	rec.SetWorldSave([]byte("w"))
	rec.Record(sim.ScheduledCommand{MapID: 0, Ticks: 101, Data: []byte("a")})
	rec.Record(sim.ScheduledCommand{MapID: sim.Global, Ticks: 102})
	rec.AddEvent(replay.Event{Name: "raid", Time: 150})
	require.NoError(t, rec.Checkpoint(200))
	assert.Equal(t, 200, rec.Boundary())

	rec.Record(sim.ScheduledCommand{MapID: 0, Ticks: 250})
	require.NoError(t, rec.Close(300))
	require.NoError(t, rec.Close(400), "second close is a no-op")
	assert.ErrorIs(t, rec.Checkpoint(500), ErrClosed)

	assert.Equal(t, []replay.Section{{Start: 100, End: 200}, {Start: 200, End: 300}}, r.Info.Sections)

	loaded := replay.ForLoading(r.Path())
	found, err := loaded.LoadInfo()
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, r.Info.Sections, loaded.Info.Sections)
	require.Len(t, loaded.Info.Events, 1)
	assert.Equal(t, "raid", loaded.Info.Events[0].Name)

	c := sim.NewCaches()
	require.NoError(t, loaded.LoadSection(0, c))
	assert.Len(t, c.MapCmds[0], 1)
	assert.Len(t, c.MapCmds[sim.Global], 1)

	c = sim.NewCaches()
	require.NoError(t, loaded.LoadSection(1, c))
	assert.Equal(t, []sim.ScheduledCommand{{MapID: 0, Ticks: 250}}, c.MapCmds[0])
	assert.NotContains(t, c.MapCmds, sim.Global)
	assert.Equal(t, 200, c.CachedAt)
}

func TestRecorder_CheckpointFailureKeepsBuffer(t *testing.T) {
	t.Parallel()
	rec, r := newRecorder(t, 0)
	rec.Record(sim.ScheduledCommand{MapID: 1, Ticks: 1})

	assert.ErrorIs(t, rec.Checkpoint(10), replay.ErrMissingSectionData)
	assert.Empty(t, r.Info.Sections)
	assert.Equal(t, 0, rec.Boundary())

	rec.SetWorldSave([]byte("w"))
	require.NoError(t, rec.Checkpoint(10))

	c := sim.NewCaches()
	require.NoError(t, r.LoadSection(0, c))
	assert.Len(t, c.MapCmds[1], 1)
}

func TestRecorder_CloseWithoutProgressWritesInfo(t *testing.T) {
	t.Parallel()
	rec, r := newRecorder(t, 50)
	rec.SetWorldSave([]byte("w"))
	require.NoError(t, rec.Close(50))

	loaded := replay.ForLoading(r.Path())
	found, err := loaded.LoadInfo()
	require.NoError(t, err)
	assert.True(t, found)
	assert.Empty(t, loaded.Info.Sections)

	rec.Record(sim.ScheduledCommand{})
	rec.SetMapSave(1, []byte("ignored"))
}

func TestRecorder_RemoveMap(t *testing.T) {
	t.Parallel()
	rec, r := newRecorder(t, 0)
	rec.SetWorldSave([]byte("w"))
	rec.SetMapSave(1, []byte("a"))
	rec.SetMapSave(2, []byte("b"))
	rec.RemoveMap(1)
	require.NoError(t, rec.Checkpoint(5))

	c := sim.NewCaches()
	require.NoError(t, r.LoadSection(0, c))
	assert.Equal(t, []int{2}, c.MapIDs())
}
