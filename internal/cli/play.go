package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/mp-replay-go/playback"
	"github.com/reallyoldfogie/mp-replay-go/replay"
	"github.com/reallyoldfogie/mp-replay-go/sim"
)

var (
	playToEnd bool
	playLocal int
)

func init() {
	cmd := &cobra.Command{
		Use:   "play <replay>",
		Short: "Catch a replay up with the reference engine and report applied commands",
		Args:  cobra.ExactArgs(1),
		RunE:  runPlay,
	}
	cmd.Flags().BoolVar(&playToEnd, "to-end", false, "Load the last section and catch up to its end")
	cmd.Flags().IntVar(&playLocal, "protocol", 0, "Local protocol to check the recording against")

	RootCmd.AddCommand(cmd)
}

type playReport struct {
	Session  string         `json:"session"`
	Start    int            `json:"start"`
	End      int            `json:"end"`
	Tick     int            `json:"tick"`
	Finished bool           `json:"finished"`
	Maps     []int          `json:"maps"`
	Applied  map[string]int `json:"applied"`
}

func runPlay(cmd *cobra.Command, args []string) error {
	path := resolvePath(args[0])
	if _, err := os.Stat(path); err != nil {
		return err
	}

	applied := make(map[string]int)
	caches := sim.NewCaches()
	tl := sim.NewTimeline(caches, func(c sim.ScheduledCommand) error {
		target := "global"
		if c.MapID != sim.Global {
			target = fmt.Sprintf("map %d", c.MapID)
		}
		applied[target]++
		return nil
	})

	var finished bool
	opts := playback.Options{
		ToEnd:         playToEnd,
		OnFinish:      func() { finished = true },
		StatusKey:     "replay.loading",
		Strict:        cfg.StrictVersions,
		ReplayOptions: cfg.ReplayOptions(),
	}
	if playLocal != 0 {
		opts.Local = &replay.Build{Protocol: playLocal}
	}
	sess, err := playback.StartReplay(path, caches, tl, opts)
	if err != nil {
		return err
	}

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := tl.Run(ctx); err != nil {
		return err
	}

	rep := playReport{
		Session:  sess.ID.String(),
		Start:    sess.ReplayTimerStart,
		End:      sess.ReplayTimerEnd,
		Tick:     tl.Timer(),
		Finished: finished,
		Maps:     caches.MapIDs(),
		Applied:  applied,
	}
	out := cmd.OutOrStdout()
	if formatFlag == "json" {
		b, _ := json.MarshalIndent(rep, "", "  ")
		fmt.Fprintln(out, string(b))
		return nil
	}
	fmt.Fprintf(out, "session %s: window %d..%d, caught up to tick %d (finished=%t)\n",
		rep.Session, rep.Start, rep.End, rep.Tick, rep.Finished)
	fmt.Fprintf(out, "maps loaded: %v\n", rep.Maps)
	for target, n := range applied {
		fmt.Fprintf(out, "  %-10s %d commands\n", target, n)
	}
	return nil
}
