package replay

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/mp-replay-go/sim"
)

// WriteSection appends the cached snapshots and command logs as a new
// section covering [start, end]. Data entries are written and closed before
// the info entry is rewritten, so Info never references a section whose
// data is missing. Info.Sections is only extended once the data is on disk.
func (r *Replay) WriteSection(caches *sim.Caches, start, end int) (err error) {
	if r.Info == nil {
		return ErrNoInfo
	}
	if start >= end {
		return fmt.Errorf("%w: start %d >= end %d", ErrInvalidSection, start, end)
	}
	if caches.WorldSave == nil {
		return fmt.Errorf("%w: no world snapshot cached", ErrMissingSectionData)
	}

	index := len(r.Info.Sections)
	if err := r.writeSectionData(index, caches); err != nil {
		return err
	}

	r.Info.Sections = append(r.Info.Sections, Section{Start: start, End: end})
	if err := r.WriteInfo(); err != nil {
		// Keep memory in line with disk; the next attempt reuses the index
		// and clears the orphaned entries.
		r.Info.Sections = r.Info.Sections[:index]
		return err
	}

	r.log.WithFields(logrus.Fields{
		"section": SectionID(index),
		"start":   start,
		"end":     end,
		"maps":    len(caches.MapSaves),
	}).Debug("section written")
	return nil
}

func (r *Replay) writeSectionData(index int, caches *sim.Caches) (err error) {
	a, err := r.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	// Entries with this index can only be leftovers of an append that never
	// committed its info.
	var orphans []string
	for _, cat := range []Category{CategoryMaps, CategoryWorld} {
		for _, e := range a.Select(SectionPattern(cat, index)) {
			orphans = append(orphans, e.Name)
		}
	}
	for _, name := range orphans {
		a.Delete(name)
	}
	if len(orphans) > 0 {
		r.log.WithField("entries", len(orphans)).Warn("dropped orphaned section entries")
	}

	for _, id := range caches.MapIDs() {
		a.Put(MapSaveEntry(index, id), caches.MapSaves[id])
	}
	for _, id := range caches.Targets() {
		if id < 0 {
			continue
		}
		a.Put(MapCmdsEntry(index, id), EncodeCommands(caches.MapCmds[id]))
	}
	if world, ok := caches.MapCmds[sim.Global]; ok {
		a.Put(WorldCmdsEntry(index), EncodeCommands(world))
	}
	a.Put(WorldSaveEntry(index), caches.WorldSave)
	return nil
}

// WriteInfo replaces the info entry with the current Info.
func (r *Replay) WriteInfo() (err error) {
	if r.Info == nil {
		return ErrNoInfo
	}
	doc, err := marshalInfo(r.Info, r.format)
	if err != nil {
		return fmt.Errorf("marshal info: %w", err)
	}

	a, err := r.open()
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	a.Delete(InfoEntry)
	a.Put(InfoEntry, doc)
	return nil
}
