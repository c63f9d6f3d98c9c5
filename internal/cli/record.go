package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/reallyoldfogie/mp-replay-go/adapters"
	"github.com/reallyoldfogie/mp-replay-go/internal/logger"
	"github.com/reallyoldfogie/mp-replay-go/replay"
	"github.com/reallyoldfogie/mp-replay-go/replay/recorder"
	"github.com/reallyoldfogie/mp-replay-go/session"
)

var (
	recordListen   string
	recordStart    int
	recordProtocol int
	recordFaction  int
	recordVersion  string
)

func init() {
	cmd := &cobra.Command{
		Use:   "record <replay>",
		Short: "Record the stream of one game host into a new replay",
		Long: `Listen for a single game host and record what it streams: commands,
map and world snapshots, events and checkpoints. Every checkpoint packet
appends a section. Recording stops when the host disconnects.`,
		Args: cobra.ExactArgs(1),
		RunE: runRecord,
	}
	cmd.Flags().StringVar(&recordListen, "listen", ":25570", "Listen address")
	cmd.Flags().IntVar(&recordStart, "start", 0, "Tick of the first snapshots")
	cmd.Flags().IntVar(&recordProtocol, "protocol", 0, "Protocol version of the host")
	cmd.Flags().IntVar(&recordFaction, "faction", 0, "Recording player's faction")
	cmd.Flags().StringVar(&recordVersion, "game-version", "", "Game version of the host")

	RootCmd.AddCommand(cmd)
}

func runRecord(cmd *cobra.Command, args []string) error {
	path := resolvePath(args[0])
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s already exists", path)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	log := logger.With("record").WithField("file", path)

	ln, err := net.Listen("tcp", recordListen)
	if err != nil {
		return fmt.Errorf("listen: %w", err)
	}
	log.Infof("listening on %s", ln.Addr())

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() { <-ctx.Done(); _ = ln.Close() }()

	conn, err := ln.Accept()
	_ = ln.Close()
	if err != nil {
		if ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("accept: %w", err)
	}

	r := replay.ForSaving(path, replay.Info{
		Name:          filepath.Base(args[0]),
		Protocol:      recordProtocol,
		PlayerFaction: recordFaction,
		GameVersion:   recordVersion,
	}, cfg.ReplayOptions()...)
	rec := recorder.New(r, recordStart)

	live := session.Wrap(conn, adapters.PacketFunc(rec))
	sess := session.New(r.Info.Name, live)
	sess.FactionID = recordFaction
	live.SetState(session.StatePlaying)
	log = log.WithFields(logrus.Fields{"session": sess.ID.String(), "remote": conn.RemoteAddr().String()})
	log.Info("host connected")

	go func() { <-ctx.Done(); _ = live.Close("interrupted") }()
	readErr := live.ReadLoop()
	_ = live.Close("done")

	// Commands after the last checkpoint have no snapshot to start from.
	if err := rec.Close(rec.Boundary()); err != nil {
		return err
	}
	log.WithField("sections", len(r.Info.Sections)).Info("recording finished")

	if readErr != nil && !errors.Is(readErr, io.EOF) && !errors.Is(readErr, net.ErrClosed) && ctx.Err() == nil {
		return readErr
	}
	return nil
}
