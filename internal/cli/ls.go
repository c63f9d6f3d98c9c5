package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/mp-replay-go/replay"
)

var (
	lsGlob    string
	lsPattern string
)

func init() {
	cmd := &cobra.Command{
		Use:   "ls <replay>",
		Short: "List archive entries",
		Long: `List archive entries.

--pattern takes the structural form used by the section reader, e.g.
"maps/000_*_cmds" or "world/002_*". --glob takes any shell glob over the
entry name, e.g. "maps/*_save".`,
		Args: cobra.ExactArgs(1),
		RunE: runLs,
	}
	cmd.Flags().StringVar(&lsGlob, "glob", "", "Filter entry names with a glob")
	cmd.Flags().StringVar(&lsPattern, "pattern", "", "Filter entries with a section pattern")

	RootCmd.AddCommand(cmd)
}

type lsEntry struct {
	Name string `json:"name"`
	Size uint64 `json:"size"`
}

func runLs(cmd *cobra.Command, args []string) (err error) {
	path := resolvePath(args[0])
	if _, err := os.Stat(path); err != nil {
		return err
	}

	match := func(string) bool { return true }
	switch {
	case lsPattern != "":
		p, err := replay.ParsePattern(lsPattern)
		if err != nil {
			return err
		}
		match = p.Match
	case lsGlob != "":
		g, err := glob.Compile(lsGlob, '/')
		if err != nil {
			return fmt.Errorf("glob %q: %w", lsGlob, err)
		}
		match = g.Match
	}

	a, err := replay.OpenArchive(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := a.Close(); err == nil {
			err = cerr
		}
	}()

	var entries []lsEntry
	for _, e := range a.Entries() {
		if match(e.Name) {
			entries = append(entries, lsEntry{Name: e.Name, Size: e.Size})
		}
	}

	out := cmd.OutOrStdout()
	if formatFlag == "json" {
		b, _ := json.MarshalIndent(entries, "", "  ")
		fmt.Fprintln(out, string(b))
		return nil
	}
	for _, e := range entries {
		fmt.Fprintf(out, "%10s  %s\n", humanize.Bytes(e.Size), e.Name)
	}
	return nil
}
