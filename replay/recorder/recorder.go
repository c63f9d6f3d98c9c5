// Package recorder provides a thread-safe helper that accumulates commands
// and snapshots from a running simulation and checkpoints them as replay
// sections. It is transport-agnostic: call Record for every scheduled
// command the simulation accepts, and Checkpoint whenever fresh snapshots
// have been cached.
package recorder

import (
	"errors"
	"sync"

	"github.com/reallyoldfogie/mp-replay-go/replay"
	"github.com/reallyoldfogie/mp-replay-go/sim"
)

// ErrClosed is returned by Checkpoint after Close.
var ErrClosed = errors.New("recorder: closed")

// Recorder buffers the current section's commands and the latest snapshots,
// and writes them to a replay.Replay on Checkpoint.
type Recorder struct {
	r      *replay.Replay
	mu     sync.Mutex
	caches *sim.Caches
	closed bool
}

// New starts recording into r. startTick is the tick of the first section's
// snapshots.
func New(r *replay.Replay, startTick int) *Recorder {
	c := sim.NewCaches()
	c.CachedAt = startTick
	return &Recorder{r: r, caches: c}
}

// Record appends cmd to the log of its target. No-op after Close.
func (rec *Recorder) Record(cmd sim.ScheduledCommand) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.closed {
		return
	}
	id := int(cmd.MapID)
	rec.caches.MapCmds[id] = append(rec.caches.MapCmds[id], cmd)
}

// SetMapSave caches the latest snapshot of a map.
func (rec *Recorder) SetMapSave(mapID int, data []byte) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.closed {
		return
	}
	rec.caches.MapSaves[mapID] = data
}

// RemoveMap forgets a map that no longer exists, so later sections do not
// carry its snapshot.
func (rec *Recorder) RemoveMap(mapID int) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	delete(rec.caches.MapSaves, mapID)
}

// SetWorldSave caches the latest world snapshot.
func (rec *Recorder) SetWorldSave(data []byte) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.closed {
		return
	}
	rec.caches.WorldSave = data
}

// AddEvent annotates the timeline. It is persisted with the next section.
func (rec *Recorder) AddEvent(ev replay.Event) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.closed {
		return
	}
	rec.r.Info.AddEvent(ev)
}

// Boundary returns the tick the current section starts at.
func (rec *Recorder) Boundary() int {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	return rec.caches.CachedAt
}

// Checkpoint writes the buffered data as the section [Boundary(), tick] and
// starts a new one at tick. The cached snapshots must describe the state at
// Boundary(); cache fresh ones after Checkpoint returns. On error nothing is
// cleared, so the call can be retried.
func (rec *Recorder) Checkpoint(tick int) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.closed {
		return ErrClosed
	}
	return rec.checkpoint(tick)
}

func (rec *Recorder) checkpoint(tick int) error {
	if err := rec.r.WriteSection(rec.caches, rec.caches.CachedAt, tick); err != nil {
		return err
	}
	rec.caches.ClearCmds()
	rec.caches.CachedAt = tick
	return nil
}

// Close writes a final section ending at tick if it spans any time, then
// stops recording. Further calls are no-ops.
func (rec *Recorder) Close(tick int) error {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	if rec.closed {
		return nil
	}
	rec.closed = true
	if tick <= rec.caches.CachedAt {
		return rec.r.WriteInfo()
	}
	return rec.checkpoint(tick)
}
