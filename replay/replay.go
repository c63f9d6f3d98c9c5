package replay

import (
	"path/filepath"

	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/mp-replay-go/internal/logger"
)

// Ext is the file extension of replay archives.
const Ext = ".zip"

// File returns the archive path for a replay named name inside dir.
func File(dir, name string) string {
	return filepath.Join(dir, name+Ext)
}

// Replay binds an archive file to its in-memory Info. Every operation opens
// and closes the archive itself; a Replay never holds the file open.
type Replay struct {
	path string
	Info *Info

	level  int
	format Format
	log    *logrus.Entry
}

// Option tunes a Replay.
type Option func(*Replay)

// WithCompression sets the deflate level for written entries.
func WithCompression(level int) Option {
	return func(r *Replay) { r.level = level }
}

// WithFormat sets the info document encoding used by WriteInfo.
func WithFormat(f Format) Option {
	return func(r *Replay) { r.format = f }
}

func newReplay(path string, opts []Option) *Replay {
	r := &Replay{
		path:   path,
		level:  DefaultCompressionLevel,
		format: FormatJSON,
	}
	for _, o := range opts {
		o(r)
	}
	r.log = logger.With("replay").WithField("file", filepath.Base(path))
	return r
}

// ForSaving prepares a new recording at path described by info. Nothing is
// written until the first WriteSection or WriteInfo.
func ForSaving(path string, info Info, opts ...Option) *Replay {
	r := newReplay(path, opts)
	r.Info = &info
	return r
}

// ForLoading prepares an existing archive for reading. Call LoadInfo before
// anything that needs metadata.
func ForLoading(path string, opts ...Option) *Replay {
	return newReplay(path, opts)
}

// Path returns the archive file path.
func (r *Replay) Path() string { return r.path }

func (r *Replay) open() (*Archive, error) {
	return OpenArchive(r.path, WithCompressionLevel(r.level))
}
