package replay

import (
	"archive/zip"
	"fmt"
	"io"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/reallyoldfogie/mp-replay-go/internal/logger"
)

// ValidateFile checks that path is a readable replay archive: it opens as a
// ZIP, carries exactly one info entry, every section is well formed and has
// its world snapshot, and every command log decodes. Recoverable oddities
// are logged as warnings.
func ValidateFile(path string) error {
	log := logger.With("validator").WithField("file", path)

	st, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("replay file not found: %w", err)
	}
	if st.Size() == 0 {
		return fmt.Errorf("replay file is empty (0 bytes)")
	}

	// Read-only: validation must never rewrite the file.
	zr, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("not a valid zip file: %w", err)
	}
	defer zr.Close()

	files := make(map[string][]*zip.File)
	for _, f := range zr.File {
		files[f.Name] = append(files[f.Name], f)
	}

	infos := files[InfoEntry]
	switch {
	case len(infos) == 0:
		return fmt.Errorf("missing required entry: %s", InfoEntry)
	case len(infos) > 1:
		return fmt.Errorf("%d %s entries, want exactly one", len(infos), InfoEntry)
	}
	doc, err := readZipFile(infos[0])
	if err != nil {
		return err
	}
	info, err := unmarshalInfo(doc)
	if err != nil {
		return err
	}

	if len(info.Sections) == 0 {
		log.Warn("replay has no sections")
	}
	for i, s := range info.Sections {
		if s.Start >= s.End {
			return fmt.Errorf("%w: section %s: start %d >= end %d", ErrInvalidSection, SectionID(i), s.Start, s.End)
		}
		if i > 0 && info.Sections[i-1].End != s.Start {
			log.WithFields(logrus.Fields{
				"section":  SectionID(i),
				"prev_end": info.Sections[i-1].End,
				"start":    s.Start,
			}).Warn("section does not start at previous boundary")
		}
		if len(files[WorldSaveEntry(i)]) == 0 {
			return fmt.Errorf("%w: %s", ErrMissingSectionData, WorldSaveEntry(i))
		}
	}

	for name, fs := range files {
		n, ok := ParseEntryName(name)
		if !ok {
			log.WithField("entry", name).Warn("unexpected entry")
			continue
		}
		if len(fs) > 1 {
			log.WithField("entry", name).Warnf("%d entries share this name", len(fs))
		}
		if n.Category != CategoryInfo && n.Section >= len(info.Sections) {
			log.WithField("entry", name).Warn("entry belongs to an uncommitted section")
			continue
		}
		if n.Kind != KindCmds {
			continue
		}
		data, err := readZipFile(fs[0])
		if err != nil {
			return err
		}
		if _, err := DecodeCommands(data); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}

	log.WithFields(logrus.Fields{
		"name":     info.Name,
		"protocol": info.Protocol,
		"sections": len(info.Sections),
		"ticks":    info.Duration(),
		"bytes":    st.Size(),
	}).Info("validated")
	return nil
}

// ValidateFileQuiet is ValidateFile without log output.
func ValidateFileQuiet(path string) error {
	restore := logger.Silence()
	defer restore()
	return ValidateFile(path)
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", f.Name, err)
	}
	defer rc.Close()
	b, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", f.Name, err)
	}
	return b, nil
}
