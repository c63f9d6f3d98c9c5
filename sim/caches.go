package sim

import "sort"

// Caches is the engine state exchanged with the archive: map snapshots, the
// command logs accumulated since the last boundary (keyed by map id, or
// Global), and the world snapshot.
type Caches struct {
	MapSaves  map[int][]byte
	MapCmds   map[int][]ScheduledCommand
	WorldSave []byte
	// CachedAt is the tick the snapshots were taken at.
	CachedAt int
}

func NewCaches() *Caches {
	return &Caches{
		MapSaves: make(map[int][]byte),
		MapCmds:  make(map[int][]ScheduledCommand),
	}
}

// MapIDs returns the ids of all cached map snapshots in ascending order.
func (c *Caches) MapIDs() []int {
	ids := make([]int, 0, len(c.MapSaves))
	for id := range c.MapSaves {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Targets returns the ids of all command logs in ascending order, so Global
// comes first.
func (c *Caches) Targets() []int {
	ids := make([]int, 0, len(c.MapCmds))
	for id := range c.MapCmds {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// ClearCmds drops all command logs, keeping snapshots.
func (c *Caches) ClearCmds() {
	c.MapCmds = make(map[int][]ScheduledCommand)
}

func (c *Caches) ensure() {
	if c.MapSaves == nil {
		c.MapSaves = make(map[int][]byte)
	}
	if c.MapCmds == nil {
		c.MapCmds = make(map[int][]ScheduledCommand)
	}
}

// Merge copies every snapshot and log present in src into c, replacing
// existing slots. Slots absent from src are left untouched. The world
// snapshot is replaced only when src has one.
func (c *Caches) Merge(src *Caches) {
	c.ensure()
	for id, b := range src.MapSaves {
		c.MapSaves[id] = b
	}
	for id, cmds := range src.MapCmds {
		c.MapCmds[id] = cmds
	}
	if src.WorldSave != nil {
		c.WorldSave = src.WorldSave
	}
}
