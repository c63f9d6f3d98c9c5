package replay

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/klauspost/compress/flate"
)

// DefaultCompressionLevel is used for new entries unless overridden.
const DefaultCompressionLevel = flate.DefaultCompression

// Archive is an open replay container. ZIP has no in-place update, so an
// Archive keeps the existing entries referenced from the file and applies
// Put/Delete in memory; Close rewrites the container next to the original
// and renames it into place. Unchanged entries are copied without being
// recompressed.
//
// An Archive is owned by a single goroutine between OpenArchive and Close.
type Archive struct {
	path    string
	file    *os.File
	entries []*entry
	dirty   bool
	level   int
	closed  bool
}

type entry struct {
	name     string
	src      *zip.File
	data     []byte
	modified time.Time
}

func (e *entry) size() uint64 {
	if e.src != nil {
		return e.src.UncompressedSize64
	}
	return uint64(len(e.data))
}

func (e *entry) read() ([]byte, error) {
	if e.src == nil {
		return e.data, nil
	}
	rc, err := e.src.Open()
	if err != nil {
		return nil, fmt.Errorf("open entry %s: %w", e.name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("read entry %s: %w", e.name, err)
	}
	return b, nil
}

// Entry is a handle to one entry of an open Archive. It is valid until the
// Archive is closed.
type Entry struct {
	Name string
	Size uint64
	e    *entry
}

// Bytes returns the entry contents.
func (e Entry) Bytes() ([]byte, error) {
	return e.e.read()
}

// ArchiveOption tunes OpenArchive.
type ArchiveOption func(*Archive)

// WithCompressionLevel sets the deflate level for entries written by this
// handle.
func WithCompressionLevel(level int) ArchiveOption {
	return func(a *Archive) { a.level = level }
}

// OpenArchive opens the container at path for update, creating it if
// absent. The caller must Close it on every path.
func OpenArchive(path string, opts ...ArchiveOption) (*Archive, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	a := &Archive{path: path, file: f, level: DefaultCompressionLevel}
	for _, o := range opts {
		o(a)
	}

	info, err := f.Stat()
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	if info.Size() == 0 {
		// Fresh file: make sure Close leaves a valid empty container.
		a.dirty = true
		return a, nil
	}

	zr, err := zip.NewReader(f, info.Size())
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrCorruptArchive, path, err)
	}
	zr.RegisterDecompressor(zip.Deflate, func(r io.Reader) io.ReadCloser {
		return flate.NewReader(r)
	})
	for _, zf := range zr.File {
		a.entries = append(a.entries, &entry{name: zf.Name, src: zf, modified: zf.Modified})
	}
	return a, nil
}

// Path returns the file backing the archive.
func (a *Archive) Path() string { return a.path }

// Entries lists all entries in container order.
func (a *Archive) Entries() []Entry {
	out := make([]Entry, 0, len(a.entries))
	for _, e := range a.entries {
		out = append(out, Entry{Name: e.name, Size: e.size(), e: e})
	}
	return out
}

// Put adds a new entry. An existing entry with the same name is kept, so
// callers replacing an entry must Delete it first.
func (a *Archive) Put(name string, data []byte) {
	b := make([]byte, len(data))
	copy(b, data)
	a.entries = append(a.entries, &entry{name: name, data: b, modified: time.Now()})
	a.dirty = true
}

// Get returns the first entry named name.
func (a *Archive) Get(name string) ([]byte, bool, error) {
	for _, e := range a.entries {
		if e.name == name {
			b, err := e.read()
			return b, true, err
		}
	}
	return nil, false, nil
}

// Has reports whether an entry named name exists.
func (a *Archive) Has(name string) bool {
	for _, e := range a.entries {
		if e.name == name {
			return true
		}
	}
	return false
}

// Select returns the entries matching p in container order.
func (a *Archive) Select(p Pattern) []Entry {
	var out []Entry
	for _, e := range a.entries {
		if p.Match(e.name) {
			out = append(out, Entry{Name: e.name, Size: e.size(), e: e})
		}
	}
	return out
}

// Delete removes the first entry named name. It reports whether one existed.
func (a *Archive) Delete(name string) bool {
	for i, e := range a.entries {
		if e.name == name {
			a.entries = append(a.entries[:i], a.entries[i+1:]...)
			a.dirty = true
			return true
		}
	}
	return false
}

// Close flushes pending changes and releases the file. It is safe to call
// more than once.
func (a *Archive) Close() error {
	if a.closed {
		return nil
	}
	a.closed = true

	if !a.dirty {
		return a.file.Close()
	}
	tmpName, err := a.writeTemp()
	// Entries are fully copied out of the old file at this point.
	cerr := a.file.Close()
	if err != nil {
		return err
	}
	if cerr != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, cerr)
	}
	if err := os.Rename(tmpName, a.path); err != nil {
		_ = os.Remove(tmpName)
		return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return nil
}

// writeTemp writes the pending container to a temp file beside the archive
// and returns its name.
func (a *Archive) writeTemp() (string, error) {
	tmp, err := os.CreateTemp(filepath.Dir(a.path), filepath.Base(a.path)+".*.tmp")
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	tmpName := tmp.Name()
	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = os.Remove(tmpName)
		return "", err
	}
	if err := tmp.Chmod(0o644); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}

	zw := zip.NewWriter(tmp)
	level := a.level
	zw.RegisterCompressor(zip.Deflate, func(out io.Writer) (io.WriteCloser, error) {
		return flate.NewWriter(out, level)
	})

	for _, e := range a.entries {
		if e.src != nil {
			if err := zw.Copy(e.src); err != nil {
				return fail(fmt.Errorf("copy entry %s: %w", e.name, err))
			}
			continue
		}
		w, err := zw.CreateHeader(&zip.FileHeader{
			Name:     e.name,
			Method:   zip.Deflate,
			Modified: e.modified,
		})
		if err != nil {
			return fail(fmt.Errorf("create entry %s: %w", e.name, err))
		}
		if _, err := w.Write(e.data); err != nil {
			return fail(fmt.Errorf("write entry %s: %w", e.name, err))
		}
	}

	if err := zw.Close(); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}
	if err := tmp.Sync(); err != nil {
		return fail(fmt.Errorf("%w: %v", ErrStorageUnavailable, err))
	}
	if err := tmp.Close(); err != nil {
		_ = os.Remove(tmpName)
		return "", fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}
	return tmpName, nil
}
