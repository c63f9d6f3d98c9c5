package replay

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/leanovate/gopter"
	"github.com/leanovate/gopter/gen"
	"github.com/leanovate/gopter/prop"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reallyoldfogie/mp-replay-go/sim"
)

func cmd(mapID, ticks int32, data string) sim.ScheduledCommand {
	return sim.ScheduledCommand{Type: sim.CmdSync, Ticks: ticks, FactionID: 3, MapID: mapID, PlayerID: 7, Data: []byte(data)}
}

func TestEncodeCommands_RoundTrip(t *testing.T) {
	t.Parallel()
	cases := map[string][]sim.ScheduledCommand{
		"empty":  {},
		"single": {cmd(1, 10, "a")},
		"many":   {cmd(1, 10, "a"), cmd(sim.Global, 10, "g"), cmd(2, 11, "b"), cmd(1, 9, "out of tick order")},
	}
	for name, in := range cases {
		in := in
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			out, err := DecodeCommands(EncodeCommands(in))
			require.NoError(t, err)
			assert.Equal(t, in, out)
		})
	}
}

func TestEncodeFrames_Layout(t *testing.T) {
	t.Parallel()
	b := EncodeFrames([][]byte{[]byte("ab"), {}, []byte("c")})
	want := []byte{
		3, 0, 0, 0,
		2, 0, 0, 0, 'a', 'b',
		0, 0, 0, 0,
		1, 0, 0, 0, 'c',
	}
	assert.Equal(t, want, b)
}

func TestDecodeFrames_Corrupt(t *testing.T) {
	t.Parallel()
	valid := EncodeFrames([][]byte{[]byte("hello"), []byte("world")})

	negCount := make([]byte, 4)
	binary.LittleEndian.PutUint32(negCount, 0xFFFFFFFF)

	cases := map[string][]byte{
		"empty input":        {},
		"short count":        {1, 0},
		"negative count":     negCount,
		"count too large":    {9, 0, 0, 0, 0, 0, 0, 0},
		"truncated payload":  valid[:len(valid)-1],
		"truncated length":   valid[:4+4+5+2],
		"length past buffer": {1, 0, 0, 0, 10, 0, 0, 0, 'x'},
	}
	for name, data := range cases {
		data := data
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			_, err := DecodeFrames(data)
			assert.True(t, errors.Is(err, ErrCorruptLog), "got %v", err)
		})
	}
}

func TestDecodeFrames_TrailingBytes(t *testing.T) {
	t.Parallel()
	data := append(EncodeFrames([][]byte{[]byte("x")}), 0xDE, 0xAD)

	frames, err := DecodeFrames(data)
	require.NoError(t, err)
	assert.Equal(t, [][]byte{[]byte("x")}, frames)

	_, err = DecodeFrames(data, Strict())
	assert.ErrorIs(t, err, ErrCorruptLog)
}

func TestDecodeFrames_DoesNotAlias(t *testing.T) {
	t.Parallel()
	data := EncodeFrames([][]byte{[]byte("abc")})
	frames, err := DecodeFrames(data)
	require.NoError(t, err)
	data[8] = 'z'
	assert.Equal(t, []byte("abc"), frames[0])
}

func TestDecodeCommands_BadPayload(t *testing.T) {
	t.Parallel()
	data := EncodeFrames([][]byte{cmd(1, 1, "ok").Serialize(), {1, 2, 3}})
	_, err := DecodeCommands(data)
	assert.ErrorIs(t, err, ErrCorruptLog)
}

func genCommand() gopter.Gen {
	return gopter.CombineGens(
		gen.Int32Range(0, 7),
		gen.Int32(),
		gen.Int32(),
		gen.Int32Range(-1, 16),
		gen.Int32(),
		gen.SliceOf(gen.UInt8()),
	).Map(func(v []interface{}) sim.ScheduledCommand {
		return sim.ScheduledCommand{
			Type:      sim.CommandType(v[0].(int32)),
			Ticks:     v[1].(int32),
			FactionID: v[2].(int32),
			MapID:     v[3].(int32),
			PlayerID:  v[4].(int32),
			Data:      v[5].([]uint8),
		}
	})
}

func sameCommand(a, b sim.ScheduledCommand) bool {
	return a.Type == b.Type && a.Ticks == b.Ticks && a.FactionID == b.FactionID &&
		a.MapID == b.MapID && a.PlayerID == b.PlayerID && bytes.Equal(a.Data, b.Data)
}

func TestDecodeCommands_Property(t *testing.T) {
	parameters := gopter.DefaultTestParameters()
	parameters.MinSuccessfulTests = 200

	properties := gopter.NewProperties(parameters)

	properties.Property("decode(encode(log)) preserves commands and order", prop.ForAll(
		func(log []sim.ScheduledCommand) bool {
			out, err := DecodeCommands(EncodeCommands(log), Strict())
			if err != nil || len(out) != len(log) {
				return false
			}
			for i := range log {
				if !sameCommand(log[i], out[i]) {
					return false
				}
			}
			return true
		},
		gen.SliceOf(genCommand()),
	))

	properties.Property("encoding is byte-exact after a round trip", prop.ForAll(
		func(log []sim.ScheduledCommand) bool {
			enc := EncodeCommands(log)
			out, err := DecodeCommands(enc)
			if err != nil {
				return false
			}
			return bytes.Equal(enc, EncodeCommands(out))
		},
		gen.SliceOf(genCommand()),
	))

	properties.TestingRun(t)
}
