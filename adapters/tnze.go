// Package adapters bridges github.com/Tnze/go-mc packets and the replay
// recorder.
package adapters

import (
	"fmt"

	pk "github.com/Tnze/go-mc/net/packet"

	"github.com/reallyoldfogie/mp-replay-go/internal/logger"
	"github.com/reallyoldfogie/mp-replay-go/replay"
	"github.com/reallyoldfogie/mp-replay-go/replay/recorder"
	"github.com/reallyoldfogie/mp-replay-go/sim"
)

// Packet ids of the recording stream a game host sends.
const (
	// CommandPacketID carries a serialized ScheduledCommand.
	CommandPacketID int32 = 0x10
	// MapSavePacketID carries VarInt map id and ByteArray snapshot.
	MapSavePacketID int32 = 0x11
	// WorldSavePacketID carries a ByteArray snapshot.
	WorldSavePacketID int32 = 0x12
	// CheckpointPacketID carries the VarInt tick that closes the section.
	CheckpointPacketID int32 = 0x13
	// RemoveMapPacketID carries the VarInt id of a map that was abandoned.
	RemoveMapPacketID int32 = 0x14
	// EventPacketID carries a String name and a VarInt tick.
	EventPacketID int32 = 0x15
)

// CommandPacket wraps cmd for sending over a live connection.
func CommandPacket(cmd sim.ScheduledCommand) pk.Packet {
	return pk.Packet{ID: CommandPacketID, Data: cmd.Serialize()}
}

func MapSavePacket(mapID int, data []byte) pk.Packet {
	return pk.Marshal(MapSavePacketID, pk.VarInt(mapID), pk.ByteArray(data))
}

func WorldSavePacket(data []byte) pk.Packet {
	return pk.Marshal(WorldSavePacketID, pk.ByteArray(data))
}

func CheckpointPacket(tick int) pk.Packet {
	return pk.Marshal(CheckpointPacketID, pk.VarInt(tick))
}

func RemoveMapPacket(mapID int) pk.Packet {
	return pk.Marshal(RemoveMapPacketID, pk.VarInt(mapID))
}

func EventPacket(name string, tick int) pk.Packet {
	return pk.Marshal(EventPacketID, pk.String(name), pk.VarInt(tick))
}

// PacketFunc returns a session.Handler-compatible function that feeds the
// recording stream into rec. Unknown packet ids are ignored.
func PacketFunc(rec *recorder.Recorder) func(pk.Packet) error {
	log := logger.With("recorder")
	recordCount := 0
	return func(p pk.Packet) error {
		switch p.ID {
		case CommandPacketID:
			cmd, err := sim.DeserializeCommand(p.Data)
			if err != nil {
				return fmt.Errorf("command packet: %w", err)
			}
			rec.Record(cmd)
			recordCount++
			if recordCount%100 == 0 {
				log.Debugf("recorded %d commands (latest: %s map=%d tick=%d)", recordCount, cmd.Type, cmd.MapID, cmd.Ticks)
			}

		case MapSavePacketID:
			var (
				id   pk.VarInt
				data pk.ByteArray
			)
			if err := p.Scan(&id, &data); err != nil {
				return fmt.Errorf("map save packet: %w", err)
			}
			rec.SetMapSave(int(id), []byte(data))

		case WorldSavePacketID:
			var data pk.ByteArray
			if err := p.Scan(&data); err != nil {
				return fmt.Errorf("world save packet: %w", err)
			}
			rec.SetWorldSave([]byte(data))

		case CheckpointPacketID:
			var tick pk.VarInt
			if err := p.Scan(&tick); err != nil {
				return fmt.Errorf("checkpoint packet: %w", err)
			}
			if err := rec.Checkpoint(int(tick)); err != nil {
				return fmt.Errorf("checkpoint at %d: %w", tick, err)
			}
			log.WithField("tick", int(tick)).Info("checkpoint written")

		case RemoveMapPacketID:
			var id pk.VarInt
			if err := p.Scan(&id); err != nil {
				return fmt.Errorf("remove map packet: %w", err)
			}
			rec.RemoveMap(int(id))

		case EventPacketID:
			var (
				name pk.String
				tick pk.VarInt
			)
			if err := p.Scan(&name, &tick); err != nil {
				return fmt.Errorf("event packet: %w", err)
			}
			rec.AddEvent(replay.Event{Name: string(name), Time: int(tick), Color: replay.Color{R: 1, G: 1, B: 1, A: 1}})
		}
		return nil
	}
}
