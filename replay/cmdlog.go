package replay

import (
	"encoding/binary"
	"fmt"

	"github.com/reallyoldfogie/mp-replay-go/sim"
)

// Command log layout, all integers little-endian int32:
//
//	[count] count × ([length][payload])

type decodeConfig struct {
	strict bool
}

// DecodeOption tunes DecodeFrames and DecodeCommands.
type DecodeOption func(*decodeConfig)

// Strict rejects bytes left over after the declared frames.
func Strict() DecodeOption {
	return func(c *decodeConfig) { c.strict = true }
}

// EncodeFrames writes the count followed by each length-prefixed payload in
// order.
func EncodeFrames(frames [][]byte) []byte {
	size := 4
	for _, f := range frames {
		size += 4 + len(f)
	}
	out := make([]byte, 4, size)
	binary.LittleEndian.PutUint32(out, uint32(len(frames)))
	var hdr [4]byte
	for _, f := range frames {
		binary.LittleEndian.PutUint32(hdr[:], uint32(len(f)))
		out = append(out, hdr[:]...)
		out = append(out, f...)
	}
	return out
}

// DecodeFrames reads exactly the declared number of payloads. The returned
// frames are copies and do not alias data.
func DecodeFrames(data []byte, opts ...DecodeOption) ([][]byte, error) {
	var cfg decodeConfig
	for _, o := range opts {
		o(&cfg)
	}

	if len(data) < 4 {
		return nil, fmt.Errorf("%w: %d bytes, need count", ErrCorruptLog, len(data))
	}
	count := int32(binary.LittleEndian.Uint32(data))
	if count < 0 {
		return nil, fmt.Errorf("%w: negative count %d", ErrCorruptLog, count)
	}
	off := 4
	// Every frame needs at least its length prefix.
	if int64(count)*4 > int64(len(data)-off) {
		return nil, fmt.Errorf("%w: count %d exceeds %d bytes", ErrCorruptLog, count, len(data)-off)
	}

	frames := make([][]byte, 0, count)
	for i := 0; i < int(count); i++ {
		if len(data)-off < 4 {
			return nil, fmt.Errorf("%w: frame %d: truncated length", ErrCorruptLog, i)
		}
		n := int32(binary.LittleEndian.Uint32(data[off:]))
		off += 4
		if n < 0 || int(n) > len(data)-off {
			return nil, fmt.Errorf("%w: frame %d: length %d with %d bytes left", ErrCorruptLog, i, n, len(data)-off)
		}
		f := make([]byte, n)
		copy(f, data[off:off+int(n)])
		frames = append(frames, f)
		off += int(n)
	}

	if cfg.strict && off != len(data) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrCorruptLog, len(data)-off)
	}
	return frames, nil
}

// EncodeCommands serializes cmds as a command log.
func EncodeCommands(cmds []sim.ScheduledCommand) []byte {
	frames := make([][]byte, len(cmds))
	for i, c := range cmds {
		frames[i] = c.Serialize()
	}
	return EncodeFrames(frames)
}

// DecodeCommands parses a command log, deserializing each payload
// independently. Order is preserved.
func DecodeCommands(data []byte, opts ...DecodeOption) ([]sim.ScheduledCommand, error) {
	frames, err := DecodeFrames(data, opts...)
	if err != nil {
		return nil, err
	}
	cmds := make([]sim.ScheduledCommand, len(frames))
	for i, f := range frames {
		c, err := sim.DeserializeCommand(f)
		if err != nil {
			return nil, fmt.Errorf("%w: command %d: %v", ErrCorruptLog, i, err)
		}
		cmds[i] = c
	}
	return cmds, nil
}
