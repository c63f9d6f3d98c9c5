package replay

import (
	"fmt"

	"github.com/reallyoldfogie/mp-replay-go/sim"
)

// LoadInfo reads the info entry into r.Info. A missing entry is not an
// error: it reports false and leaves r.Info unchanged.
func (r *Replay) LoadInfo() (found bool, err error) {
	a, err := r.open()
	if err != nil {
		return false, err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	doc, ok, err := a.Get(InfoEntry)
	if err != nil {
		return false, err
	}
	if !ok {
		return false, nil
	}
	info, err := unmarshalInfo(doc)
	if err != nil {
		return false, err
	}
	r.Info = info
	return true, nil
}

// LoadSection reads section index into caches. Map slots not present in the
// section are left untouched. Nothing in caches changes unless the whole
// section decodes.
func (r *Replay) LoadSection(index int, caches *sim.Caches) error {
	if r.Info != nil && (index < 0 || index >= len(r.Info.Sections)) {
		return fmt.Errorf("%w: index %d of %d", ErrInvalidSection, index, len(r.Info.Sections))
	}

	staged, err := r.readSection(index)
	if err != nil {
		return err
	}
	caches.Merge(staged)
	if r.Info != nil {
		caches.CachedAt = r.Info.Sections[index].Start
	}
	return nil
}

func (r *Replay) readSection(index int) (staged *sim.Caches, err error) {
	a, err := r.open()
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	staged = sim.NewCaches()

	for _, e := range a.Select(MapsPattern(index, KindCmds)) {
		n, _ := ParseEntryName(e.Name)
		data, err := e.Bytes()
		if err != nil {
			return nil, err
		}
		cmds, err := DecodeCommands(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", e.Name, err)
		}
		staged.MapCmds[n.MapID] = cmds
	}

	for _, e := range a.Select(MapsPattern(index, KindSave)) {
		n, _ := ParseEntryName(e.Name)
		data, err := e.Bytes()
		if err != nil {
			return nil, err
		}
		staged.MapSaves[n.MapID] = data
	}

	worldCmds, ok, err := a.Get(WorldCmdsEntry(index))
	if err != nil {
		return nil, err
	}
	if ok {
		cmds, err := DecodeCommands(worldCmds)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", WorldCmdsEntry(index), err)
		}
		staged.MapCmds[sim.Global] = cmds
	}

	world, ok, err := a.Get(WorldSaveEntry(index))
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingSectionData, WorldSaveEntry(index))
	}
	if world == nil {
		world = []byte{}
	}
	staged.WorldSave = world
	return staged, nil
}
