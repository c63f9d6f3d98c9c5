// Package cli implements the mpreplay commands.
package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/mp-replay-go/internal/config"
	"github.com/reallyoldfogie/mp-replay-go/internal/logger"
	"github.com/reallyoldfogie/mp-replay-go/replay"
)

var (
	configPath string
	dirFlag    string
	formatFlag string

	cfg config.Config
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:   "mpreplay",
	Short: "Inspect, build and play sectioned simulation replays",
	Long:  "Tools for replay archives: ZIP files holding map/world snapshots and command logs per section.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		if cfg, err = config.Load(configPath); err != nil {
			return err
		}
		if dirFlag != "" {
			cfg.ReplaysDir = dirFlag
		}
		logger.Init(cfg.LogLevel, cfg.LogFormat)
		return nil
	},
	SilenceUsage: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", config.DefaultPath(), "Config file ($MPREPLAY_CONFIG)")
	RootCmd.PersistentFlags().StringVarP(&dirFlag, "dir", "d", "", "Replays directory (default: config replays_dir or $MPREPLAY_DIR)")
	RootCmd.PersistentFlags().StringVarP(&formatFlag, "format", "f", "text", "Output format: json or text")
}

// Execute runs the root command.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// resolvePath accepts either a file path or a replay name inside the
// replays directory.
func resolvePath(arg string) string {
	if strings.HasSuffix(arg, replay.Ext) || strings.ContainsRune(arg, filepath.Separator) {
		return arg
	}
	return replay.File(cfg.ReplaysDir, arg)
}

// loadReplay opens arg for reading and requires an info entry.
func loadReplay(arg string) (*replay.Replay, error) {
	path := resolvePath(arg)
	if _, err := os.Stat(path); err != nil {
		return nil, err
	}
	r := replay.ForLoading(path, cfg.ReplayOptions()...)
	found, err := r.LoadInfo()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s: not a replay (no %s entry)", path, replay.InfoEntry)
	}
	return r, nil
}
