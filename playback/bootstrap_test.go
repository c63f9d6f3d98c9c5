package playback

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reallyoldfogie/mp-replay-go/replay"
	"github.com/reallyoldfogie/mp-replay-go/session"
	"github.com/reallyoldfogie/mp-replay-go/sim"
)

type fakeEngine struct {
	calls []string
	skip  sim.SkipOptions
}

func (e *fakeEngine) SetTickUntil(tick int) {
	e.calls = append(e.calls, fmt.Sprintf("until %d", tick))
}

func (e *fakeEngine) SetTimer(tick int) {
	e.calls = append(e.calls, fmt.Sprintf("timer %d", tick))
}

func (e *fakeEngine) SkipTo(target int, opts sim.SkipOptions) {
	e.calls = append(e.calls, fmt.Sprintf("skip %d", target))
	e.skip = opts
}

func (e *fakeEngine) ReloadGame(mapIDs []int) {
	e.calls = append(e.calls, fmt.Sprintf("reload %v", mapIDs))
}

// writeRecording writes sections [0,10] with maps 1 and 2, and [10,25]
// with map 2 only.
func writeRecording(t *testing.T) string {
	t.Helper()
	r := replay.ForSaving(replay.File(t.TempDir(), "rec"), replay.Info{
		Name:          "colony",
		Protocol:      26,
		PlayerFaction: 7,
		GameVersion:   "1.5",
	})

	c := sim.NewCaches()
	c.MapSaves[1] = []byte("m1")
	c.MapSaves[2] = []byte("m2")
	c.MapCmds[1] = []sim.ScheduledCommand{{MapID: 1, Ticks: 3}}
	c.MapCmds[sim.Global] = []sim.ScheduledCommand{{MapID: sim.Global, Ticks: 0}}
	c.WorldSave = []byte("w0")
	require.NoError(t, r.WriteSection(c, 0, 10))

	c = sim.NewCaches()
	c.MapSaves[2] = []byte("m2b")
	c.MapCmds[2] = []sim.ScheduledCommand{{MapID: 2, Ticks: 12}, {MapID: 2, Ticks: 20}}
	c.WorldSave = []byte("w1")
	require.NoError(t, r.WriteSection(c, 10, 25))
	return r.Path()
}

func TestStartReplay_FromStart(t *testing.T) {
	t.Parallel()
	path := writeRecording(t)
	caches := sim.NewCaches()
	eng := &fakeEngine{}

	sess, err := StartReplay(path, caches, eng, Options{StatusKey: "loading"})
	require.NoError(t, err)

	assert.True(t, sess.Replay)
	assert.IsType(t, &session.ReplayConnection{}, sess.Conn)
	assert.Equal(t, "colony", sess.Name)
	assert.Equal(t, 7, sess.FactionID)
	assert.Equal(t, 0, sess.ReplayTimerStart)
	assert.Equal(t, 10, sess.ReplayTimerEnd)

	assert.Equal(t, []string{"until 10", "timer 0", "skip 0", "reload [1 2]"}, eng.calls)
	assert.Equal(t, "loading", eng.skip.StatusKey)
	assert.Equal(t, []byte("w0"), caches.WorldSave)
	assert.Len(t, caches.MapCmds[1], 1)
}

func TestStartReplay_ToEnd(t *testing.T) {
	t.Parallel()
	path := writeRecording(t)
	caches := sim.NewCaches()
	eng := &fakeEngine{}

	sess, err := StartReplay(path, caches, eng, Options{ToEnd: true})
	require.NoError(t, err)

	assert.Equal(t, 10, sess.ReplayTimerStart)
	assert.Equal(t, 25, sess.ReplayTimerEnd)
	assert.Equal(t, []string{"until 25", "timer 10", "skip 25", "reload [2]"}, eng.calls)
	assert.Equal(t, []byte("w1"), caches.WorldSave)
}

func TestStartReplay_ZeroStepCatchUpFinishes(t *testing.T) {
	t.Parallel()
	path := writeRecording(t)
	caches := sim.NewCaches()
	applied := 0
	tl := sim.NewTimeline(caches, func(sim.ScheduledCommand) error {
		applied++
		return nil
	})

	finished, cancelled := 0, 0
	_, err := StartReplay(path, caches, tl, Options{
		OnFinish: func() { finished++ },
		OnCancel: func() { cancelled++ },
	})
	require.NoError(t, err)
	require.NoError(t, tl.Run(context.Background()))

	assert.Equal(t, 1, finished)
	assert.Zero(t, cancelled)
	assert.Zero(t, applied)
}

func TestStartReplay_ToEndRunsTimeline(t *testing.T) {
	t.Parallel()
	path := writeRecording(t)
	caches := sim.NewCaches()
	var ticks []int32
	tl := sim.NewTimeline(caches, func(c sim.ScheduledCommand) error {
		ticks = append(ticks, c.Ticks)
		return nil
	})

	finished := 0
	_, err := StartReplay(path, caches, tl, Options{ToEnd: true, OnFinish: func() { finished++ }})
	require.NoError(t, err)
	require.NoError(t, tl.Run(context.Background()))

	assert.Equal(t, 1, finished)
	assert.Equal(t, []int32{12, 20}, ticks)
	assert.Equal(t, 25, tl.Timer())
}

func TestStartReplay_NotReplay(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	empty := filepath.Join(dir, "empty.zip")
	a, err := replay.OpenArchive(empty)
	require.NoError(t, err)
	require.NoError(t, a.Close())
	_, err = StartReplay(empty, sim.NewCaches(), &fakeEngine{}, Options{})
	assert.ErrorIs(t, err, ErrNotReplay)

	r := replay.ForSaving(replay.File(dir, "nosections"), replay.Info{Name: "x"})
	require.NoError(t, r.WriteInfo())
	eng := &fakeEngine{}
	_, err = StartReplay(r.Path(), sim.NewCaches(), eng, Options{})
	assert.ErrorIs(t, err, ErrNotReplay)
	assert.Empty(t, eng.calls)
}

func TestStartReplay_Compat(t *testing.T) {
	t.Parallel()
	path := writeRecording(t)
	local := &replay.Build{Protocol: 27}

	eng := &fakeEngine{}
	caches := sim.NewCaches()
	_, err := StartReplay(path, caches, eng, Options{Local: local, Strict: true})
	assert.ErrorIs(t, err, replay.ErrIncompatible)
	assert.Empty(t, eng.calls)
	assert.Empty(t, caches.MapSaves)

	_, err = StartReplay(path, sim.NewCaches(), &fakeEngine{}, Options{Local: local})
	assert.NoError(t, err, "mismatches only warn unless strict")
}
