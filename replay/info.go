package replay

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"github.com/vmihailenco/msgpack/v5"
)

// Info is the metadata document stored in the "info" entry. Exactly one
// exists per archive.
type Info struct {
	Name          string `json:"name" msgpack:"name"`
	Protocol      int    `json:"protocol" msgpack:"protocol"`
	PlayerFaction int    `json:"playerFaction" msgpack:"playerFaction"`

	Sections []Section `json:"sections" msgpack:"sections"`
	Events   []Event   `json:"events" msgpack:"events"`

	GameVersion       string   `json:"gameVersion,omitempty" msgpack:"gameVersion,omitempty"`
	ModIDs            []string `json:"modIds,omitempty" msgpack:"modIds,omitempty"`
	ModNames          []string `json:"modNames,omitempty" msgpack:"modNames,omitempty"`
	ModAssemblyHashes []int32  `json:"modAssemblyHashes,omitempty" msgpack:"modAssemblyHashes,omitempty"`
}

// Section is one committed checkpoint interval. Its index in Info.Sections
// is its id in entry names.
type Section struct {
	Start int `json:"start" msgpack:"start"`
	End   int `json:"end" msgpack:"end"`
}

// Event is a free-form timeline marker.
type Event struct {
	Name  string `json:"name" msgpack:"name"`
	Time  int    `json:"time" msgpack:"time"`
	Color Color  `json:"color" msgpack:"color"`
}

// Color is an RGBA annotation color with components in [0,1].
type Color struct {
	R float32 `json:"r" msgpack:"r"`
	G float32 `json:"g" msgpack:"g"`
	B float32 `json:"b" msgpack:"b"`
	A float32 `json:"a" msgpack:"a"`
}

// AddEvent inserts ev keeping Events ordered by time. Events at the same
// tick keep insertion order.
func (i *Info) AddEvent(ev Event) {
	at := sort.Search(len(i.Events), func(k int) bool { return i.Events[k].Time > ev.Time })
	i.Events = append(i.Events, Event{})
	copy(i.Events[at+1:], i.Events[at:])
	i.Events[at] = ev
}

// Duration returns the tick span covered by all sections.
func (i *Info) Duration() int {
	if len(i.Sections) == 0 {
		return 0
	}
	return i.Sections[len(i.Sections)-1].End - i.Sections[0].Start
}

// Format selects the encoding of the info document.
type Format string

const (
	FormatJSON    Format = "json"
	FormatMsgpack Format = "msgpack"
)

// ParseFormat accepts "json" and "msgpack"; empty means json.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatMsgpack:
		return FormatMsgpack, nil
	}
	return "", fmt.Errorf("unknown info format %q", s)
}

func marshalInfo(info *Info, f Format) ([]byte, error) {
	switch f {
	case FormatMsgpack:
		return msgpack.Marshal(info)
	default:
		return json.MarshalIndent(info, "", "  ")
	}
}

// unmarshalInfo sniffs the document format: JSON documents are objects,
// msgpack maps never start with '{'.
func unmarshalInfo(data []byte) (*Info, error) {
	var info Info
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '{' {
		if err := json.Unmarshal(trimmed, &info); err != nil {
			return nil, fmt.Errorf("parse info: %w", err)
		}
		return &info, nil
	}
	if err := msgpack.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parse info: %w", err)
	}
	return &info, nil
}
