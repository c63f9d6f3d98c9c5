// Package playback starts replay sessions from archived sections.
package playback

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/mp-replay-go/internal/logger"
	"github.com/reallyoldfogie/mp-replay-go/replay"
	"github.com/reallyoldfogie/mp-replay-go/session"
	"github.com/reallyoldfogie/mp-replay-go/sim"
)

// ErrNotReplay is returned when the file has no info entry or no sections.
var ErrNotReplay = errors.New("playback: not a replay")

// Engine is the simulation the replay is handed to.
type Engine interface {
	// SetTickUntil sets the last tick for which commands are known.
	SetTickUntil(tick int)
	// SkipTo catches the simulation up to target and fires exactly one of
	// opts.OnFinish and opts.OnCancel, including when no steps are needed.
	SkipTo(target int, opts sim.SkipOptions)
	// ReloadGame rebuilds the game from the cached snapshots of mapIDs.
	ReloadGame(mapIDs []int)
}

// TimerSetter is implemented by engines that need to be told the tick of
// the loaded snapshots.
type TimerSetter interface {
	SetTimer(tick int)
}

// Options configures StartReplay.
type Options struct {
	// ToEnd loads the last section and catches up to its end instead of
	// starting at the first section's start.
	ToEnd     bool
	OnFinish  func()
	OnCancel  func()
	StatusKey string

	// Local, when set, is compared with the recording's build. Mismatches
	// are logged, and fail the start when Strict is set.
	Local  *replay.Build
	Strict bool

	ReplayOptions []replay.Option
}

// StartReplay loads a section of the archive at path into caches and hands
// it to eng. The returned session is in replay mode with a disconnected
// connection. The archive is only read.
func StartReplay(path string, caches *sim.Caches, eng Engine, opts Options) (*session.Session, error) {
	sess := session.NewReplay()
	log := logger.With("playback").WithFields(logrus.Fields{
		"session": sess.ID.String(),
		"file":    path,
	})

	r := replay.ForLoading(path, opts.ReplayOptions...)
	found, err := r.LoadInfo()
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%w: %s has no info entry", ErrNotReplay, path)
	}
	if len(r.Info.Sections) == 0 {
		return nil, fmt.Errorf("%w: %s has no sections", ErrNotReplay, path)
	}

	if opts.Local != nil {
		if mm := r.Info.CheckCompat(*opts.Local); len(mm) > 0 {
			for _, m := range mm {
				log.WithField("field", m.Field).Warn(m.String())
			}
			if opts.Strict {
				return nil, &replay.IncompatibleError{Mismatches: mm}
			}
		}
	}

	index := 0
	if opts.ToEnd {
		index = len(r.Info.Sections) - 1
	}
	if err := r.LoadSection(index, caches); err != nil {
		return nil, err
	}

	section := r.Info.Sections[index]
	sess.Name = r.Info.Name
	sess.FactionID = r.Info.PlayerFaction
	sess.ReplayTimerStart = section.Start
	sess.ReplayTimerEnd = section.End

	eng.SetTickUntil(section.End)
	if ts, ok := eng.(TimerSetter); ok {
		ts.SetTimer(section.Start)
	}

	target := section.Start
	if opts.ToEnd {
		target = section.End
	}
	log.WithFields(logrus.Fields{
		"section": replay.SectionID(index),
		"start":   section.Start,
		"end":     section.End,
		"target":  target,
	}).Info("starting replay")

	eng.SkipTo(target, sim.SkipOptions{
		OnFinish:  opts.OnFinish,
		OnCancel:  opts.OnCancel,
		StatusKey: opts.StatusKey,
	})
	eng.ReloadGame(caches.MapIDs())
	return sess, nil
}
