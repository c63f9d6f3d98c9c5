package sim

import (
	"context"
	"sort"
	"sync"
)

// SkipOptions carries the callbacks of a catch-up run. Exactly one of
// OnFinish and OnCancel fires per SkipTo.
type SkipOptions struct {
	OnFinish  func()
	OnCancel  func()
	StatusKey string
}

// ApplyFunc applies one command to the simulation.
type ApplyFunc func(cmd ScheduledCommand) error

// Timeline is a minimal deterministic catch-up engine over Caches. Commands
// are applied tick by tick: Global first, then maps in ascending id, each log
// in insertion order. It only reads the caches.
type Timeline struct {
	mu sync.Mutex

	caches *Caches
	apply  ApplyFunc

	timer     int
	tickUntil int
	target    int
	skip      *SkipOptions

	targets []int
	cursors map[int]int
}

func NewTimeline(caches *Caches, apply ApplyFunc) *Timeline {
	if apply == nil {
		apply = func(ScheduledCommand) error { return nil }
	}
	return &Timeline{caches: caches, apply: apply, cursors: make(map[int]int)}
}

// SetTimer sets the current tick, normally the tick of the loaded snapshots.
func (t *Timeline) SetTimer(tick int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.timer = tick
}

// Timer returns the current tick.
func (t *Timeline) Timer() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.timer
}

// SetTickUntil sets the last tick for which commands are known.
func (t *Timeline) SetTickUntil(tick int) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.tickUntil = tick
}

// SkipTo schedules a catch-up to target. A pending catch-up is cancelled.
func (t *Timeline) SkipTo(target int, opts SkipOptions) {
	t.mu.Lock()
	prev := t.skip
	if target > t.tickUntil {
		target = t.tickUntil
	}
	t.target = target
	t.skip = &opts
	t.mu.Unlock()

	if prev != nil && prev.OnCancel != nil {
		prev.OnCancel()
	}
}

// ReloadGame restricts playback to the given maps and rewinds the command
// cursors.
func (t *Timeline) ReloadGame(mapIDs []int) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.targets = t.targets[:0]
	if _, ok := t.caches.MapCmds[Global]; ok {
		t.targets = append(t.targets, Global)
	}
	ids := append([]int(nil), mapIDs...)
	sort.Ints(ids)
	for _, id := range ids {
		if id != Global {
			t.targets = append(t.targets, id)
		}
	}
	t.cursors = make(map[int]int, len(t.targets))
}

// Run steps the simulation until the pending catch-up reaches its target or
// ctx is done. It returns nil when nothing is pending.
func (t *Timeline) Run(ctx context.Context) error {
	for {
		t.mu.Lock()
		skip := t.skip
		if skip == nil {
			t.mu.Unlock()
			return nil
		}
		if t.timer >= t.target {
			t.skip = nil
			t.mu.Unlock()
			if skip.OnFinish != nil {
				skip.OnFinish()
			}
			return nil
		}
		if err := ctx.Err(); err != nil {
			t.skip = nil
			t.mu.Unlock()
			if skip.OnCancel != nil {
				skip.OnCancel()
			}
			return err
		}
		err := t.step()
		if err != nil {
			t.skip = nil
		}
		t.mu.Unlock()
		if err != nil {
			if skip.OnCancel != nil {
				skip.OnCancel()
			}
			return err
		}
	}
}

// step applies every command due at the current tick and advances it.
// Caller holds mu.
func (t *Timeline) step() error {
	for _, id := range t.targets {
		cmds := t.caches.MapCmds[id]
		i := t.cursors[id]
		for i < len(cmds) && int(cmds[i].Ticks) <= t.timer {
			if err := t.apply(cmds[i]); err != nil {
				return err
			}
			i++
		}
		t.cursors[id] = i
	}
	t.timer++
	return nil
}
