package replay

import (
	"fmt"
	"strconv"
	"strings"
)

// InfoEntry is the name of the metadata entry.
const InfoEntry = "info"

// Category is the directory part of an entry name.
type Category string

const (
	CategoryInfo  Category = "info"
	CategoryMaps  Category = "maps"
	CategoryWorld Category = "world"
)

// Kind is the trailing part of a section entry name.
type Kind string

const (
	KindSave Kind = "save"
	KindCmds Kind = "cmds"
)

// SectionID formats a section index as used in entry names.
func SectionID(index int) string {
	return fmt.Sprintf("%03d", index)
}

func MapSaveEntry(section, mapID int) string {
	return fmt.Sprintf("maps/%s_%d_save", SectionID(section), mapID)
}

func MapCmdsEntry(section, mapID int) string {
	return fmt.Sprintf("maps/%s_%d_cmds", SectionID(section), mapID)
}

func WorldSaveEntry(section int) string {
	return fmt.Sprintf("world/%s_save", SectionID(section))
}

func WorldCmdsEntry(section int) string {
	return fmt.Sprintf("world/%s_cmds", SectionID(section))
}

// EntryName is a parsed entry name. MapID is only meaningful for
// CategoryMaps; Section and Kind are zero for the info entry.
type EntryName struct {
	Category Category
	Section  int
	MapID    int
	Kind     Kind
}

func (n EntryName) String() string {
	switch n.Category {
	case CategoryInfo:
		return InfoEntry
	case CategoryMaps:
		return fmt.Sprintf("maps/%s_%d_%s", SectionID(n.Section), n.MapID, n.Kind)
	default:
		return fmt.Sprintf("world/%s_%s", SectionID(n.Section), n.Kind)
	}
}

// ParseEntryName parses name with the fixed entry grammar. Names outside the
// grammar report false.
func ParseEntryName(name string) (EntryName, bool) {
	if name == InfoEntry {
		return EntryName{Category: CategoryInfo}, true
	}
	dir, base, ok := strings.Cut(name, "/")
	if !ok {
		return EntryName{}, false
	}
	fields := strings.Split(base, "_")

	var n EntryName
	switch Category(dir) {
	case CategoryMaps:
		if len(fields) != 3 {
			return EntryName{}, false
		}
		id, err := strconv.Atoi(fields[1])
		if err != nil {
			return EntryName{}, false
		}
		n = EntryName{Category: CategoryMaps, MapID: id, Kind: Kind(fields[2])}
	case CategoryWorld:
		if len(fields) != 2 {
			return EntryName{}, false
		}
		n = EntryName{Category: CategoryWorld, Kind: Kind(fields[1])}
	default:
		return EntryName{}, false
	}

	if !isDigits(fields[0]) {
		return EntryName{}, false
	}
	sec, err := strconv.Atoi(fields[0])
	if err != nil {
		return EntryName{}, false
	}
	n.Section = sec
	if n.Kind != KindSave && n.Kind != KindCmds {
		return EntryName{}, false
	}
	return n, true
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// Pattern matches entry names structurally. AnyMap and AnyKind wildcard the
// map id and kind.
type Pattern struct {
	Category Category
	Section  int
	MapID    int
	Kind     Kind
	AnyMap   bool
	AnyKind  bool
}

// MapsPattern matches maps/{section}_*_{kind}.
func MapsPattern(section int, kind Kind) Pattern {
	return Pattern{Category: CategoryMaps, Section: section, AnyMap: true, Kind: kind}
}

// SectionPattern matches every entry of a section.
func SectionPattern(category Category, section int) Pattern {
	return Pattern{Category: category, Section: section, AnyMap: true, AnyKind: true}
}

// Match reports whether name parses and satisfies p.
func (p Pattern) Match(name string) bool {
	n, ok := ParseEntryName(name)
	if !ok || n.Category != p.Category {
		return false
	}
	if p.Category == CategoryInfo {
		return true
	}
	if n.Section != p.Section {
		return false
	}
	if p.Category == CategoryMaps && !p.AnyMap && n.MapID != p.MapID {
		return false
	}
	return p.AnyKind || n.Kind == p.Kind
}

func (p Pattern) String() string {
	if p.Category == CategoryInfo {
		return InfoEntry
	}
	kind := string(p.Kind)
	if p.AnyKind {
		kind = "*"
	}
	if p.Category == CategoryWorld {
		return fmt.Sprintf("world/%s_%s", SectionID(p.Section), kind)
	}
	mapID := "*"
	if !p.AnyMap {
		mapID = strconv.Itoa(p.MapID)
	}
	return fmt.Sprintf("maps/%s_%s_%s", SectionID(p.Section), mapID, kind)
}

// ParsePattern parses the textual form produced by Pattern.String, where
// the map id and kind may be "*".
func ParsePattern(s string) (Pattern, error) {
	if s == InfoEntry {
		return Pattern{Category: CategoryInfo}, nil
	}
	dir, base, ok := strings.Cut(s, "/")
	if !ok {
		return Pattern{}, fmt.Errorf("pattern %q: missing category", s)
	}
	fields := strings.Split(base, "_")
	p := Pattern{Category: Category(dir)}

	var kind string
	switch p.Category {
	case CategoryMaps:
		if len(fields) != 3 {
			return Pattern{}, fmt.Errorf("pattern %q: want maps/sid_map_kind", s)
		}
		if fields[1] == "*" {
			p.AnyMap = true
		} else {
			id, err := strconv.Atoi(fields[1])
			if err != nil {
				return Pattern{}, fmt.Errorf("pattern %q: map id: %w", s, err)
			}
			p.MapID = id
		}
		kind = fields[2]
	case CategoryWorld:
		if len(fields) != 2 {
			return Pattern{}, fmt.Errorf("pattern %q: want world/sid_kind", s)
		}
		p.AnyMap = true
		kind = fields[1]
	default:
		return Pattern{}, fmt.Errorf("pattern %q: unknown category %q", s, dir)
	}

	if !isDigits(fields[0]) {
		return Pattern{}, fmt.Errorf("pattern %q: section id %q", s, fields[0])
	}
	sec, err := strconv.Atoi(fields[0])
	if err != nil {
		return Pattern{}, fmt.Errorf("pattern %q: section id: %w", s, err)
	}
	p.Section = sec

	switch kind {
	case "*":
		p.AnyKind = true
	case string(KindSave), string(KindCmds):
		p.Kind = Kind(kind)
	default:
		return Pattern{}, fmt.Errorf("pattern %q: unknown kind %q", s, kind)
	}
	return p, nil
}
