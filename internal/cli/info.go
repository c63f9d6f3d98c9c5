package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/mp-replay-go/replay"
)

func init() {
	cmd := &cobra.Command{
		Use:   "info <replay>",
		Short: "Show replay metadata and sections",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	RootCmd.AddCommand(cmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	r, err := loadReplay(args[0])
	if err != nil {
		return err
	}
	st, err := os.Stat(r.Path())
	if err != nil {
		return err
	}

	if formatFlag == "json" {
		b, _ := json.MarshalIndent(r.Info, "", "  ")
		fmt.Fprintln(cmd.OutOrStdout(), string(b))
		return nil
	}

	out := cmd.OutOrStdout()
	info := r.Info
	fmt.Fprintf(out, "%s (%s)\n", info.Name, humanize.Bytes(uint64(st.Size())))
	fmt.Fprintf(out, "  protocol:  %d\n", info.Protocol)
	fmt.Fprintf(out, "  version:   %s\n", info.GameVersion)
	fmt.Fprintf(out, "  faction:   %d\n", info.PlayerFaction)
	fmt.Fprintf(out, "  duration:  %s ticks\n", humanize.Comma(int64(info.Duration())))
	if len(info.ModIDs) > 0 {
		fmt.Fprintf(out, "  mods:      %s\n", strings.Join(info.ModIDs, ", "))
	}
	fmt.Fprintf(out, "  sections:  %d\n", len(info.Sections))
	for i, s := range info.Sections {
		fmt.Fprintf(out, "    %s  %d..%d\n", replay.SectionID(i), s.Start, s.End)
	}
	if len(info.Events) > 0 {
		fmt.Fprintf(out, "  events:    %d\n", len(info.Events))
		for _, ev := range info.Events {
			fmt.Fprintf(out, "    %8d  %s\n", ev.Time, ev.Name)
		}
	}
	return nil
}
