package cli

import (
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/mp-replay-go/replay"
	"github.com/reallyoldfogie/mp-replay-go/sim"
)

var (
	createMaps     []string
	createCmds     []string
	createWorld    string
	createStart    int
	createEnd      int
	createName     string
	createProtocol int
	createFaction  int
)

func init() {
	cmd := &cobra.Command{
		Use:   "create <replay>",
		Short: "Append a section built from flags",
		Long: `Append one section to a replay, creating the archive if needed.

  --map id:hexsave            map snapshot (repeatable)
  --cmd target:ticks:hexdata  command, target -1 for global (repeatable)
  --world hexsave             world snapshot

Numbers accept a 0x prefix.`,
		Args: cobra.ExactArgs(1),
		RunE: runCreate,
	}
	cmd.Flags().StringArrayVar(&createMaps, "map", nil, "Map snapshot id:hexsave")
	cmd.Flags().StringArrayVar(&createCmds, "cmd", nil, "Command target:ticks:hexdata")
	cmd.Flags().StringVar(&createWorld, "world", "", "World snapshot as hex")
	cmd.Flags().IntVar(&createStart, "start", -1, "Section start tick (default: previous section end, or 0)")
	cmd.Flags().IntVar(&createEnd, "end", 0, "Section end tick")
	cmd.Flags().StringVar(&createName, "name", "", "Session name for a new replay")
	cmd.Flags().IntVar(&createProtocol, "protocol", 0, "Protocol version for a new replay")
	cmd.Flags().IntVar(&createFaction, "faction", 0, "Player faction for a new replay")
	_ = cmd.MarkFlagRequired("end")

	RootCmd.AddCommand(cmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	path := resolvePath(args[0])
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	caches := sim.NewCaches()
	for _, spec := range createMaps {
		id, data, err := parseMapSpec(spec)
		if err != nil {
			return fmt.Errorf("--map %q: %w", spec, err)
		}
		caches.MapSaves[id] = data
	}
	for _, spec := range createCmds {
		c, err := parseCmdSpec(spec)
		if err != nil {
			return fmt.Errorf("--cmd %q: %w", spec, err)
		}
		caches.MapCmds[int(c.MapID)] = append(caches.MapCmds[int(c.MapID)], c)
	}
	world, err := hex.DecodeString(createWorld)
	if err != nil {
		return fmt.Errorf("--world: %w", err)
	}
	caches.WorldSave = world

	r := replay.ForLoading(path, cfg.ReplayOptions()...)
	var found bool
	if _, statErr := os.Stat(path); statErr == nil {
		if found, err = r.LoadInfo(); err != nil {
			return err
		}
	}
	if !found {
		name := createName
		if name == "" {
			name = strings.TrimSuffix(filepath.Base(path), replay.Ext)
		}
		r = replay.ForSaving(path, replay.Info{
			Name:          name,
			Protocol:      createProtocol,
			PlayerFaction: createFaction,
		}, cfg.ReplayOptions()...)
	}

	start := createStart
	if start < 0 {
		start = 0
		if n := len(r.Info.Sections); n > 0 {
			start = r.Info.Sections[n-1].End
		}
	}
	if err := r.WriteSection(caches, start, createEnd); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s section %s [%d, %d] (%d maps, %d commands)\n",
		path, replay.SectionID(len(r.Info.Sections)-1), start, createEnd, len(createMaps), len(createCmds))
	return nil
}

// parseMapSpec parses id:hexsave.
func parseMapSpec(v string) (int, []byte, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 2 {
		return 0, nil, fmt.Errorf("want id:hexsave")
	}
	id, err := parseInt(parts[0])
	if err != nil {
		return 0, nil, fmt.Errorf("id: %w", err)
	}
	data, err := hex.DecodeString(parts[1])
	if err != nil {
		return 0, nil, fmt.Errorf("hexsave: %w", err)
	}
	return int(id), data, nil
}

// parseCmdSpec parses target:ticks:hexdata.
func parseCmdSpec(v string) (sim.ScheduledCommand, error) {
	parts := strings.Split(v, ":")
	if len(parts) != 3 {
		return sim.ScheduledCommand{}, fmt.Errorf("want target:ticks:hexdata")
	}
	target, err := parseInt(parts[0])
	if err != nil {
		return sim.ScheduledCommand{}, fmt.Errorf("target: %w", err)
	}
	ticks, err := parseInt(parts[1])
	if err != nil {
		return sim.ScheduledCommand{}, fmt.Errorf("ticks: %w", err)
	}
	data, err := hex.DecodeString(parts[2])
	if err != nil {
		return sim.ScheduledCommand{}, fmt.Errorf("hexdata: %w", err)
	}
	return sim.ScheduledCommand{
		Type:      sim.CmdSync,
		Ticks:     int32(ticks),
		FactionID: int32(createFaction),
		MapID:     int32(target),
		Data:      data,
	}, nil
}

func parseInt(s string) (int64, error) {
	neg := strings.HasPrefix(s, "-")
	s = strings.TrimPrefix(s, "-")
	var v int64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		v, err = strconv.ParseInt(s[2:], 16, 32)
	} else {
		v, err = strconv.ParseInt(s, 10, 32)
	}
	if neg {
		v = -v
	}
	return v, err
}
