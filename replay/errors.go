package replay

import "errors"

var (
	// ErrStorageUnavailable is returned when the archive file cannot be
	// opened or written.
	ErrStorageUnavailable = errors.New("replay: storage unavailable")

	// ErrCorruptArchive is returned when an existing file is not a readable
	// container.
	ErrCorruptArchive = errors.New("replay: corrupt archive")

	// ErrCorruptLog is returned when a command log cannot be decoded.
	ErrCorruptLog = errors.New("replay: corrupt command log")

	// ErrMissingSectionData is returned when a section has no world snapshot.
	ErrMissingSectionData = errors.New("replay: missing section data")

	// ErrInvalidSection is returned for sections with start >= end or an
	// index outside the recorded range.
	ErrInvalidSection = errors.New("replay: invalid section")

	// ErrNoInfo is returned by operations that need metadata before it was
	// loaded or created.
	ErrNoInfo = errors.New("replay: no info loaded")

	// ErrIncompatible is returned when a replay was recorded by a different
	// build and strict checking is enabled.
	ErrIncompatible = errors.New("replay: incompatible build")
)
