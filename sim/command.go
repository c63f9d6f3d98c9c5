// Package sim defines the boundary between the replay archive and the
// simulation engine: scheduled commands, the caches the engine reads its
// state from, and a reference catch-up engine.
package sim

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	pk "github.com/Tnze/go-mc/net/packet"
)

// Global is the target id of world-scope commands.
const Global = -1

// CommandType tags the kind of a scheduled command.
type CommandType int32

const (
	CmdSync CommandType = iota
	CmdWorldTimeSpeed
	CmdMapTimeSpeed
	CmdDesignator
	CmdSetupFaction
	CmdCreateJoinPoint
	CmdInitPlayerData
	CmdDebug
)

func (t CommandType) String() string {
	switch t {
	case CmdSync:
		return "Sync"
	case CmdWorldTimeSpeed:
		return "WorldTimeSpeed"
	case CmdMapTimeSpeed:
		return "MapTimeSpeed"
	case CmdDesignator:
		return "Designator"
	case CmdSetupFaction:
		return "SetupFaction"
	case CmdCreateJoinPoint:
		return "CreateJoinPoint"
	case CmdInitPlayerData:
		return "InitPlayerData"
	case CmdDebug:
		return "Debug"
	}
	return fmt.Sprintf("CommandType(%d)", int32(t))
}

// ErrBadCommand is returned when a serialized command cannot be parsed.
var ErrBadCommand = errors.New("sim: malformed command")

// ScheduledCommand is one simulation input, due at Ticks on the target map
// (or Global).
type ScheduledCommand struct {
	Type      CommandType
	Ticks     int32
	FactionID int32
	MapID     int32
	PlayerID  int32
	Data      []byte
}

// Serialize encodes the command with protocol field types: five big-endian
// ints followed by a VarInt-prefixed data blob.
func (c ScheduledCommand) Serialize() []byte {
	var buf bytes.Buffer
	// bytes.Buffer writes never fail.
	_, _ = pk.Int(c.Type).WriteTo(&buf)
	_, _ = pk.Int(c.Ticks).WriteTo(&buf)
	_, _ = pk.Int(c.FactionID).WriteTo(&buf)
	_, _ = pk.Int(c.MapID).WriteTo(&buf)
	_, _ = pk.Int(c.PlayerID).WriteTo(&buf)
	_, _ = pk.VarInt(len(c.Data)).WriteTo(&buf)
	buf.Write(c.Data)
	return buf.Bytes()
}

// DeserializeCommand parses the output of Serialize. The whole input must be
// consumed.
func DeserializeCommand(b []byte) (ScheduledCommand, error) {
	r := bytes.NewReader(b)
	var typ, ticks, faction, mapID, player pk.Int
	for _, f := range []io.ReaderFrom{&typ, &ticks, &faction, &mapID, &player} {
		if _, err := f.ReadFrom(r); err != nil {
			return ScheduledCommand{}, fmt.Errorf("%w: header: %v", ErrBadCommand, err)
		}
	}

	var n pk.VarInt
	if _, err := n.ReadFrom(r); err != nil {
		return ScheduledCommand{}, fmt.Errorf("%w: data length: %v", ErrBadCommand, err)
	}
	if n < 0 || int(n) > r.Len() {
		return ScheduledCommand{}, fmt.Errorf("%w: data length %d with %d bytes left", ErrBadCommand, n, r.Len())
	}

	cmd := ScheduledCommand{
		Type:      CommandType(typ),
		Ticks:     int32(ticks),
		FactionID: int32(faction),
		MapID:     int32(mapID),
		PlayerID:  int32(player),
	}
	if n > 0 {
		cmd.Data = make([]byte, n)
		if _, err := io.ReadFull(r, cmd.Data); err != nil {
			return ScheduledCommand{}, fmt.Errorf("%w: data: %v", ErrBadCommand, err)
		}
	}
	if r.Len() != 0 {
		return ScheduledCommand{}, fmt.Errorf("%w: %d trailing bytes", ErrBadCommand, r.Len())
	}
	return cmd, nil
}
